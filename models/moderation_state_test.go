package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/medvisor/sanatoria_backend/utils"
)

// NOTE: These tests are intentionally DB-free. The per-field state machine
// lives entirely on ModerationRecord; persistence is the workflow's concern.

func newRecord() *ModerationRecord {
	return &ModerationRecord{
		EntityType: ModeratedEntityObject,
		EntityId:   33,
		Fields:     map[string]*FieldState{},
	}
}

func TestStagePending_FreshField(t *testing.T) {
	r := newRecord()
	now := time.Now().UTC()

	r.StagePending("description_ru", json.RawMessage(`"новый текст"`), now)

	st := r.State("description_ru")
	if st == nil {
		t.Fatal("expected a tracked state after staging")
	}
	if st.StatusId != ModerationStatusPending {
		t.Fatalf("expected PENDING, got %v", st.StatusId)
	}
	if string(st.Value) != `"новый текст"` {
		t.Fatalf("staged value lost: %s", st.Value)
	}
	if st.Message != nil {
		t.Fatalf("fresh pending must have no message, got %q", *st.Message)
	}
}

func TestStagePending_OverwritesPreviousPending(t *testing.T) {
	r := newRecord()
	r.StagePending("description_ru", json.RawMessage(`"first"`), time.Now().UTC())
	r.StagePending("description_ru", json.RawMessage(`"second"`), time.Now().UTC())

	raw, err := r.PendingValue("description_ru")
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) != `"second"` {
		t.Fatalf("last write must win, got %s", raw)
	}
}

func TestMarkApproved_ClearsSnapshotAndMessage(t *testing.T) {
	r := newRecord()
	now := time.Now().UTC()
	r.StagePending("stars", json.RawMessage(`4`), now)
	if err := r.MarkRejected("stars", "too generous", now); err != nil {
		t.Fatal(err)
	}
	r.StagePending("stars", json.RawMessage(`3`), now)
	r.MarkApproved("stars", now)

	st := r.State("stars")
	if st.StatusId != ModerationStatusApproved {
		t.Fatalf("expected APPROVED, got %v", st.StatusId)
	}
	if st.Value != nil {
		t.Fatalf("approved state must not carry a snapshot, got %s", st.Value)
	}
	if st.Message != nil {
		t.Fatalf("approved state must not carry a rejection message, got %q", *st.Message)
	}
}

func TestMarkRejected_RequiresPending(t *testing.T) {
	r := newRecord()
	now := time.Now().UTC()

	// never submitted
	if err := r.MarkRejected("stars", "no", now); !errors.Is(err, utils.ErrorInvalidTransition) {
		t.Fatalf("expected invalid transition on unsubmitted field, got %v", err)
	}

	// already approved
	r.StagePending("stars", json.RawMessage(`3`), now)
	r.MarkApproved("stars", now)
	if err := r.MarkRejected("stars", "no", now); !errors.Is(err, utils.ErrorInvalidTransition) {
		t.Fatalf("expected invalid transition on approved field, got %v", err)
	}

	// double rejection
	r.StagePending("stars", json.RawMessage(`5`), now)
	if err := r.MarkRejected("stars", "too many", now); err != nil {
		t.Fatal(err)
	}
	if err := r.MarkRejected("stars", "again", now); !errors.Is(err, utils.ErrorInvalidTransition) {
		t.Fatalf("expected invalid transition on second rejection, got %v", err)
	}
}

func TestMarkRejected_KeepsStagedValue(t *testing.T) {
	r := newRecord()
	now := time.Now().UTC()
	r.StagePending("description_ru", json.RawMessage(`"spam text"`), now)

	if err := r.MarkRejected("description_ru", "marketing language", now); err != nil {
		t.Fatal(err)
	}
	st := r.State("description_ru")
	if st.StatusId != ModerationStatusRejected {
		t.Fatalf("expected REJECTED, got %v", st.StatusId)
	}
	if string(st.Value) != `"spam text"` {
		t.Fatalf("rejected state must keep the declined value, got %s", st.Value)
	}
	if st.Message == nil || *st.Message != "marketing language" {
		t.Fatalf("rejection message lost: %v", st.Message)
	}
}

func TestResubmitAfterRejection_ClearsMessage(t *testing.T) {
	r := newRecord()
	now := time.Now().UTC()
	r.StagePending("description_ru", json.RawMessage(`"v1"`), now)
	if err := r.MarkRejected("description_ru", "try again", now); err != nil {
		t.Fatal(err)
	}

	r.StagePending("description_ru", json.RawMessage(`"v2"`), now)

	st := r.State("description_ru")
	if st.StatusId != ModerationStatusPending {
		t.Fatalf("resubmission must return to PENDING, got %v", st.StatusId)
	}
	if st.Message != nil {
		t.Fatalf("resubmission must drop the old rejection message, got %q", *st.Message)
	}
	if string(st.Value) != `"v2"` {
		t.Fatalf("resubmitted value lost: %s", st.Value)
	}
}

func TestPendingValue_OnlyWhilePending(t *testing.T) {
	r := newRecord()
	now := time.Now().UTC()

	if _, err := r.PendingValue("stars"); !errors.Is(err, utils.ErrorInvalidTransition) {
		t.Fatalf("expected error for unsubmitted field, got %v", err)
	}
	r.StagePending("stars", json.RawMessage(`2`), now)
	if raw, err := r.PendingValue("stars"); err != nil || string(raw) != `2` {
		t.Fatalf("expected staged value, got %s / %v", raw, err)
	}
	r.MarkApproved("stars", now)
	if _, err := r.PendingValue("stars"); !errors.Is(err, utils.ErrorInvalidTransition) {
		t.Fatalf("expected error after approval, got %v", err)
	}
}

func TestHasPending(t *testing.T) {
	var nilRecord *ModerationRecord
	if nilRecord.HasPending() {
		t.Fatal("nil record must report no pending work")
	}

	r := newRecord()
	if r.HasPending() {
		t.Fatal("empty record must report no pending work")
	}
	now := time.Now().UTC()
	r.StagePending("stars", json.RawMessage(`3`), now)
	if !r.HasPending() {
		t.Fatal("staged field must be reported as pending")
	}
	r.MarkApproved("stars", now)
	if r.HasPending() {
		t.Fatal("approved field must not be reported as pending")
	}
}

func TestState_NeverSubmitted(t *testing.T) {
	r := newRecord()
	if st := r.State("documents"); st != nil {
		t.Fatalf("unsubmitted field must have no state, got %+v", st)
	}
	var nilRecord *ModerationRecord
	if st := nilRecord.State("documents"); st != nil {
		t.Fatal("nil record must have no state")
	}
}
