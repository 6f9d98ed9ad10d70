package workflow

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/medvisor/sanatoria_backend/models"
)

func TestFlattenPendingQueue_OldestStagingFirst(t *testing.T) {
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	first := &models.ModerationRecord{EntityType: models.ModeratedEntityObject, EntityId: 1}
	first.StagePending("description_ru", json.RawMessage(`"сосновый бор"`), base.Add(3*time.Minute))
	first.StagePending("stars", json.RawMessage(`4`), base)

	second := &models.ModerationRecord{EntityType: models.ModeratedEntityPartner, EntityId: 2}
	second.StagePending("description_en", json.RawMessage(`"tour operator"`), base.Add(time.Minute))
	second.StagePending("logo", json.RawMessage(`["partners/logo.png"]`), base.Add(2*time.Minute))
	second.MarkApproved("logo", base.Add(2*time.Minute))

	// record order must not matter; each field sorts by its own staging time
	queue := flattenPendingQueue([]*models.ModerationRecord{first, second})

	want := []string{"stars", "description_en", "description_ru"}
	if len(queue) != len(want) {
		t.Fatalf("queue length = %d, want %d", len(queue), len(want))
	}
	for i, name := range want {
		if queue[i].Field != name {
			t.Errorf("queue[%d] = %q, want %q", i, queue[i].Field, name)
		}
	}
	for i := 1; i < len(queue); i++ {
		if queue[i].Time.Before(queue[i-1].Time) {
			t.Errorf("queue not ordered by time at %d: %v after %v", i, queue[i].Time, queue[i-1].Time)
		}
	}
}

func TestFlattenPendingQueue_DeterministicOnEqualTimes(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	record := &models.ModerationRecord{EntityType: models.ModeratedEntityPublication, EntityId: 3}
	record.StagePending("title_ru", json.RawMessage(`"весна"`), now)
	record.StagePending("body_ru", json.RawMessage(`"..."`), now)
	record.StagePending("cover", json.RawMessage(`["publications/cover.jpg"]`), now)

	want := flattenPendingQueue([]*models.ModerationRecord{record})
	for n := 0; n < 20; n++ {
		got := flattenPendingQueue([]*models.ModerationRecord{record})
		for i := range want {
			if got[i].Field != want[i].Field {
				t.Fatalf("iteration order leaked into the queue: got %q at %d, want %q", got[i].Field, i, want[i].Field)
			}
		}
	}
}
