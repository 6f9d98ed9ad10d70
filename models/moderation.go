package models

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/medvisor/sanatoria_backend/utils"
	"gorm.io/gorm"
)

// FieldState is the review state of a single moderated field. Value holds the
// staged (pending) snapshot and is meaningful only while the last submission
// is PENDING or REJECTED; Message is set only on rejection.
type FieldState struct {
	StatusId ModerationStatusId `json:"status_id"`
	Value    json.RawMessage    `json:"value,omitempty"`
	Message  *string            `json:"message,omitempty"`
	Time     time.Time          `json:"time"`
}

// ModerationRecord is the shadow row for one moderated entity instance: one
// row per (entity_type, entity_id), created lazily on the first submission and
// removed together with the entity. Fields maps moderated-field name to its
// state; a field that was never submitted has no entry.
type ModerationRecord struct {
	ID         int                    `gorm:"primary_key" json:"id"`
	EntityType ModeratedEntityType    `gorm:"size:20;not null;uniqueIndex:idx_moderation_entity" json:"entity_type"`
	EntityId   int                    `gorm:"not null;uniqueIndex:idx_moderation_entity" json:"entity_id"`
	Fields     map[string]*FieldState `gorm:"serializer:json;type:json" json:"fields"`
	CreatedAt  time.Time              `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time              `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ModerationRecord) TableName() string { return "moderation_records" }

// State returns the tracked state for a field, or nil if it was never
// submitted.
func (r *ModerationRecord) State(field string) *FieldState {
	if r == nil || r.Fields == nil {
		return nil
	}
	return r.Fields[field]
}

func (r *ModerationRecord) ensureFields() {
	if r.Fields == nil {
		r.Fields = make(map[string]*FieldState)
	}
}

// StagePending parks a submitted value for review. Allowed from any state:
// a fresh field goes NOT_SUBMITTED->PENDING, a rejected or approved field is
// resubmitted. The pending slot is overwritten (last write wins).
func (r *ModerationRecord) StagePending(field string, value json.RawMessage, now time.Time) {
	r.ensureFields()
	r.Fields[field] = &FieldState{
		StatusId: ModerationStatusPending,
		Value:    value,
		Message:  nil,
		Time:     now,
	}
}

// MarkApproved records that the field's current live value is the reviewed
// one. The pending snapshot and any rejection message are cleared. Used both
// for admin direct commits and for moderator approvals (after the pending
// value has been copied to the live column).
func (r *ModerationRecord) MarkApproved(field string, now time.Time) {
	r.ensureFields()
	r.Fields[field] = &FieldState{
		StatusId: ModerationStatusApproved,
		Value:    nil,
		Message:  nil,
		Time:     now,
	}
}

// MarkRejected transitions a pending field to REJECTED, keeping the staged
// value so the submitter sees what was declined, plus the moderator's message.
func (r *ModerationRecord) MarkRejected(field string, message string, now time.Time) error {
	st := r.State(field)
	if st == nil || st.StatusId != ModerationStatusPending {
		return utils.ErrorInvalidTransition
	}
	st.StatusId = ModerationStatusRejected
	st.Message = &message
	st.Time = now
	return nil
}

// PendingValue returns the staged value of a field awaiting review.
func (r *ModerationRecord) PendingValue(field string) (json.RawMessage, error) {
	st := r.State(field)
	if st == nil || st.StatusId != ModerationStatusPending {
		return nil, utils.ErrorInvalidTransition
	}
	return st.Value, nil
}

// HasPending reports whether any field of the record awaits review.
func (r *ModerationRecord) HasPending() bool {
	if r == nil {
		return false
	}
	for _, st := range r.Fields {
		if st != nil && st.StatusId == ModerationStatusPending {
			return true
		}
	}
	return false
}

// LoadModerationRecord fetches the record for an entity; returns (nil, nil)
// when none exists, which is the steady state for never-moderated entities.
func LoadModerationRecord(tx *gorm.DB, entityType ModeratedEntityType, entityId int) (*ModerationRecord, error) {
	var record ModerationRecord
	err := tx.Where("entity_type = ? AND entity_id = ?", entityType, entityId).First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

// LoadOrCreateModerationRecord fetches the record, creating the row lazily on
// first submission. Must run inside the caller's transaction.
func LoadOrCreateModerationRecord(tx *gorm.DB, entityType ModeratedEntityType, entityId int) (*ModerationRecord, error) {
	record, err := LoadModerationRecord(tx, entityType, entityId)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return record, nil
	}
	record = &ModerationRecord{
		EntityType: entityType,
		EntityId:   entityId,
		Fields:     map[string]*FieldState{},
	}
	if err := tx.Create(record).Error; err != nil {
		return nil, err
	}
	return record, nil
}

// DeleteModerationRecord removes the shadow row; called from entity delete
// hooks so the record never outlives its entity.
func DeleteModerationRecord(tx *gorm.DB, entityType ModeratedEntityType, entityId int) error {
	return tx.Where("entity_type = ? AND entity_id = ?", entityType, entityId).
		Delete(&ModerationRecord{}).Error
}
