package models

import (
	"encoding/json"
	"time"

	"github.com/medvisor/sanatoria_backend/utils"
)

// FieldView is the per-field moderation entry embedded in read responses.
// Value is the pending snapshot while the last submission is PENDING or
// REJECTED and null otherwise; Message is the rejection reason, if any.
type FieldView struct {
	StatusId ModerationStatusId `json:"status_id"`
	Value    json.RawMessage    `json:"value"`
	Message  *string            `json:"message"`
	Time     *time.Time         `json:"time"`
}

type associationItemView struct {
	Id   int    `json:"id"`
	Name string `json:"name"`
}

// BuildModerationView merges a moderation record into the denormalized
// per-field map clients consume. It is a pure read-side transformation: the
// record and entity are never mutated. A nil record yields a nil map, which
// is the steady state for entities that never had a moderated change.
func BuildModerationView(reg FieldRegistry, record *ModerationRecord, locale Locale) (map[string]*FieldView, error) {
	if !locale.Valid() {
		return nil, utils.ErrorUnsupportedLocale
	}
	if record == nil {
		return nil, nil
	}

	view := make(map[string]*FieldView, len(reg))
	for name, field := range reg {
		st := record.State(name)
		if st == nil {
			view[name] = &FieldView{StatusId: ModerationStatusNotSubmitted}
			continue
		}

		entry := &FieldView{
			StatusId: st.StatusId,
			Message:  st.Message,
		}
		t := st.Time
		entry.Time = &t

		if st.StatusId == ModerationStatusPending || st.StatusId == ModerationStatusRejected {
			value, err := renderFieldValue(field, st.Value, locale)
			if err != nil {
				return nil, err
			}
			entry.Value = value
		}
		view[name] = entry
	}
	return view, nil
}

// renderFieldValue returns the pending snapshot as it goes on the wire.
// Association snapshots are localized to {id, name} pairs; everything else is
// passed through as stored.
func renderFieldValue(field ModeratedField, raw json.RawMessage, locale Locale) (json.RawMessage, error) {
	if raw == nil {
		return nil, nil
	}
	if field.Kind != FieldKindAssoc {
		return raw, nil
	}

	var summaries []AssociationSummary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		return nil, err
	}
	items := make([]associationItemView, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, associationItemView{Id: s.Id, Name: s.Name(locale)})
	}
	return json.Marshal(items)
}
