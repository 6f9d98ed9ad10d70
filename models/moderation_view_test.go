package models

import (
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/medvisor/sanatoria_backend/utils"
)

func TestBuildModerationView_NilRecord(t *testing.T) {
	view, err := BuildModerationView(objectRegistry, nil, LocaleRu)
	if err != nil {
		t.Fatal(err)
	}
	if view != nil {
		t.Fatalf("never-moderated entity must hydrate to nil, got %v", view)
	}
}

func TestBuildModerationView_UnsupportedLocale(t *testing.T) {
	r := newRecord()
	_, err := BuildModerationView(objectRegistry, r, Locale("de"))
	if !errors.Is(err, utils.ErrorUnsupportedLocale) {
		t.Fatalf("expected unsupported locale error, got %v", err)
	}
}

func TestBuildModerationView_CoversWholeRegistry(t *testing.T) {
	r := newRecord()
	now := time.Now().UTC()
	r.StagePending("description_ru", json.RawMessage(`"текст"`), now)

	view, err := BuildModerationView(objectRegistry, r, LocaleRu)
	if err != nil {
		t.Fatal(err)
	}
	if len(view) != len(objectRegistry) {
		t.Fatalf("view must cover every registered field: got %d, want %d", len(view), len(objectRegistry))
	}
	for name := range objectRegistry {
		entry, ok := view[name]
		if !ok {
			t.Fatalf("missing registry field %q in view", name)
		}
		if name == "description_ru" {
			continue
		}
		if entry.StatusId != ModerationStatusNotSubmitted {
			t.Fatalf("field %q never submitted, expected NOT_SUBMITTED, got %v", name, entry.StatusId)
		}
		if entry.Value != nil || entry.Message != nil || entry.Time != nil {
			t.Fatalf("unsubmitted field %q must be bare, got %+v", name, entry)
		}
	}
}

func TestBuildModerationView_ValueVisibility(t *testing.T) {
	r := newRecord()
	now := time.Now().UTC()
	r.StagePending("description_ru", json.RawMessage(`"pending text"`), now)
	r.StagePending("stars", json.RawMessage(`4`), now)
	r.MarkApproved("stars", now)
	r.StagePending("visa_ru", json.RawMessage(`"declined text"`), now)
	if err := r.MarkRejected("visa_ru", "unverifiable", now); err != nil {
		t.Fatal(err)
	}

	view, err := BuildModerationView(objectRegistry, r, LocaleRu)
	if err != nil {
		t.Fatal(err)
	}

	if string(view["description_ru"].Value) != `"pending text"` {
		t.Fatalf("pending field must expose its staged value, got %s", view["description_ru"].Value)
	}
	if view["stars"].StatusId != ModerationStatusApproved || view["stars"].Value != nil {
		t.Fatalf("approved field must not expose a value, got %+v", view["stars"])
	}
	rejected := view["visa_ru"]
	if rejected.StatusId != ModerationStatusRejected {
		t.Fatalf("expected REJECTED, got %v", rejected.StatusId)
	}
	if string(rejected.Value) != `"declined text"` {
		t.Fatalf("rejected field must keep the declined value, got %s", rejected.Value)
	}
	if rejected.Message == nil || *rejected.Message != "unverifiable" {
		t.Fatalf("rejection message lost: %v", rejected.Message)
	}
}

func TestBuildModerationView_LocalizesAssociations(t *testing.T) {
	snapshot, _ := json.Marshal([]AssociationSummary{
		{Id: 7, NameRu: "Грязелечение", NameEn: "Mud therapy"},
		{Id: 9, NameRu: "Массаж", NameEn: "Massage"},
	})
	r := newRecord()
	r.StagePending("therapies", snapshot, time.Now().UTC())

	for locale, want := range map[Locale][]string{
		LocaleRu: {"Грязелечение", "Массаж"},
		LocaleEn: {"Mud therapy", "Massage"},
	} {
		view, err := BuildModerationView(objectRegistry, r, locale)
		if err != nil {
			t.Fatal(err)
		}
		var items []struct {
			Id   int    `json:"id"`
			Name string `json:"name"`
		}
		if err := json.Unmarshal(view["therapies"].Value, &items); err != nil {
			t.Fatalf("locale %s: %v", locale, err)
		}
		if len(items) != 2 || items[0].Name != want[0] || items[1].Name != want[1] {
			t.Fatalf("locale %s: wrong localization: %+v", locale, items)
		}
		if items[0].Id != 7 || items[1].Id != 9 {
			t.Fatalf("locale %s: ids lost: %+v", locale, items)
		}
	}
}

func TestBuildModerationView_Idempotent(t *testing.T) {
	r := newRecord()
	now := time.Now().UTC()
	r.StagePending("description_ru", json.RawMessage(`"текст"`), now)
	if err := r.MarkRejected("description_ru", "short", now); err != nil {
		t.Fatal(err)
	}
	before, _ := json.Marshal(r.Fields)

	first, err := BuildModerationView(objectRegistry, r, LocaleRu)
	if err != nil {
		t.Fatal(err)
	}
	second, err := BuildModerationView(objectRegistry, r, LocaleRu)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("hydration must be deterministic for an unchanged record")
	}

	after, _ := json.Marshal(r.Fields)
	if string(before) != string(after) {
		t.Fatal("hydration must not mutate the record")
	}
}
