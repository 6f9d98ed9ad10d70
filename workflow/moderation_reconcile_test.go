package workflow

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/medvisor/sanatoria_backend/models"
	"github.com/medvisor/sanatoria_backend/utils"
)

// NOTE: These tests are intentionally DB-free. ReconcileField and
// ApplyApproval only need a transaction handle for association fields, so a
// publication (text and file fields only) exercises the full reconciler
// decision table with tx == nil. DB+Redis integration paths should be covered
// in an environment that can run MySQL.

func testPublication() *models.Publication {
	return &models.Publication{
		ID:      33,
		TitleRu: "Старый заголовок",
		BodyRu:  "Старый текст",
	}
}

func testRecord(p *models.Publication) *models.ModerationRecord {
	return &models.ModerationRecord{
		EntityType: p.ModerationEntityType(),
		EntityId:   p.ID,
		Fields:     map[string]*models.FieldState{},
	}
}

func TestReconcileField_WithoutBypass_StagesOnly(t *testing.T) {
	p := testPublication()
	r := testRecord(p)
	reg := models.RegistryFor(models.ModeratedEntityPublication)

	changed, err := ReconcileField(nil, p, r, reg["body_ru"], json.RawMessage(`"Новый текст"`), false, time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	if changed {
		t.Fatal("staging must not touch the live side")
	}
	if p.BodyRu != "Старый текст" {
		t.Fatalf("live value changed without approval: %q", p.BodyRu)
	}
	raw, err := r.PendingValue("body_ru")
	if err != nil || string(raw) != `"Новый текст"` {
		t.Fatalf("staged value missing: %s / %v", raw, err)
	}
}

func TestReconcileField_WithBypass_CommitsAndApproves(t *testing.T) {
	p := testPublication()
	r := testRecord(p)
	reg := models.RegistryFor(models.ModeratedEntityPublication)

	changed, err := ReconcileField(nil, p, r, reg["body_ru"], json.RawMessage(`"Новый текст"`), true, time.Now().UTC())
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("bypass commit must report a live change")
	}
	if p.BodyRu != "Новый текст" {
		t.Fatalf("live value not updated: %q", p.BodyRu)
	}
	st := r.State("body_ru")
	if st.StatusId != models.ModerationStatusApproved {
		t.Fatalf("bypass commit must leave the field APPROVED, got %v", st.StatusId)
	}
	if st.Value != nil {
		t.Fatalf("approved field must not keep a snapshot, got %s", st.Value)
	}
}

func TestReconcileField_RejectsInvalidValueBeforeStaging(t *testing.T) {
	p := testPublication()
	r := testRecord(p)
	reg := models.RegistryFor(models.ModeratedEntityPublication)

	if _, err := ReconcileField(nil, p, r, reg["body_ru"], json.RawMessage(`123`), false, time.Now().UTC()); err == nil {
		t.Fatal("invalid value must not be staged")
	}
	if st := r.State("body_ru"); st != nil {
		t.Fatalf("failed validation must leave no trace, got %+v", st)
	}
}

func TestApplyApproval_MovesPendingValueLive(t *testing.T) {
	p := testPublication()
	r := testRecord(p)
	reg := models.RegistryFor(models.ModeratedEntityPublication)
	now := time.Now().UTC()

	if _, err := ReconcileField(nil, p, r, reg["title_ru"], json.RawMessage(`"Новый заголовок"`), false, now); err != nil {
		t.Fatal(err)
	}
	if err := ApplyApproval(nil, p, r, reg["title_ru"], now); err != nil {
		t.Fatal(err)
	}
	if p.TitleRu != "Новый заголовок" {
		t.Fatalf("approval must copy the staged value live, got %q", p.TitleRu)
	}
	st := r.State("title_ru")
	if st.StatusId != models.ModerationStatusApproved || st.Value != nil {
		t.Fatalf("approval must clear the pending slot, got %+v", st)
	}
}

func TestApplyApproval_RequiresPending(t *testing.T) {
	p := testPublication()
	r := testRecord(p)
	reg := models.RegistryFor(models.ModeratedEntityPublication)

	err := ApplyApproval(nil, p, r, reg["title_ru"], time.Now().UTC())
	if !errors.Is(err, utils.ErrorInvalidTransition) {
		t.Fatalf("expected invalid transition without a pending value, got %v", err)
	}
}

// Full submit/reject/resubmit/approve cycle for a single field.
func TestModerationCycle_RejectThenResubmitThenApprove(t *testing.T) {
	p := testPublication()
	r := testRecord(p)
	reg := models.RegistryFor(models.ModeratedEntityPublication)
	now := time.Now().UTC()

	if _, err := ReconcileField(nil, p, r, reg["body_ru"], json.RawMessage(`"v1"`), false, now); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkRejected("body_ru", "too short", now); err != nil {
		t.Fatal(err)
	}
	if p.BodyRu != "Старый текст" {
		t.Fatal("rejection must leave the live value alone")
	}

	if _, err := ReconcileField(nil, p, r, reg["body_ru"], json.RawMessage(`"v2, extended"`), false, now); err != nil {
		t.Fatal(err)
	}
	if st := r.State("body_ru"); st.Message != nil {
		t.Fatal("resubmission must drop the rejection message")
	}
	if err := ApplyApproval(nil, p, r, reg["body_ru"], now); err != nil {
		t.Fatal(err)
	}
	if p.BodyRu != "v2, extended" {
		t.Fatalf("approved resubmission must go live, got %q", p.BodyRu)
	}
}

func TestReconcileField_UnknownFieldsFilteredUpstream(t *testing.T) {
	// SubmitModeratedFields silently drops keys outside the registry; the
	// reconciler itself only ever sees registered fields. This pins the
	// filtering contract.
	reg := models.RegistryFor(models.ModeratedEntityPublication)
	if _, ok := reg["stars"]; ok {
		t.Fatal("publications must not expose object-only fields")
	}
	if _, ok := reg["nonexistent"]; ok {
		t.Fatal("unknown field must not resolve")
	}
}
