package models

import (
	"encoding/json"

	"gorm.io/gorm"
)

// Moderated is implemented by every entity type with reviewable fields. The
// reconciler and hydrator are generic over it plus the entity's field
// registry, so the per-field state machine exists exactly once.
type Moderated interface {
	ModerationEntityType() ModeratedEntityType
	GetID() int

	// ApplyModerated commits a reviewed value to the live side: column kinds
	// mutate the struct (persisted by the caller's Save within the same
	// transaction), association kinds replace the m2m set through tx.
	ApplyModerated(tx *gorm.DB, field ModeratedField, raw json.RawMessage) error

	// SearchDocuments builds the per-locale index projections from the live
	// (already loaded) entity.
	SearchDocuments() []SearchDocument
}
