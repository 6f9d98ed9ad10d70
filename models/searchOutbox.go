package models

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/medvisor/sanatoria_backend/utils"
	"gorm.io/gorm"
)

// SearchDocument is the reduced projection of an entity fed to the full-text
// index: title, description and derived tag names, per locale. The index name
// is language-suffixed (objects-ru, objects-en, ...).
type SearchDocument struct {
	EntityType  string   `json:"entity_type"`
	EntityId    int      `json:"entity_id"`
	Locale      string   `json:"locale"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (d SearchDocument) IndexName() string {
	return d.EntityType + "s-" + d.Locale
}

// SearchOutboxRecord implements the transactional outbox for index sync: the
// row is written inside the caller's DB transaction, publishing happens
// asynchronously after commit. Index failures therefore never abort a save.
type SearchOutboxRecord struct {
	ID            int                 `gorm:"primary_key" json:"id"`
	EntityType    ModeratedEntityType `gorm:"size:20;index;not null" json:"entity_type"`
	EntityId      int                 `gorm:"index;not null" json:"entity_id"`
	Action        SearchAction        `gorm:"size:10;not null" json:"action"`
	Payload       []byte              `gorm:"type:json" json:"payload"`
	IsProcessed   bool                `gorm:"index;not null;default:false" json:"is_processed"`
	PublishStatus string              `gorm:"size:20;index;not null;default:PENDING" json:"publish_status"`
	Attempts      int                 `gorm:"not null;default:0" json:"attempts"`
	LastError     string              `gorm:"type:text" json:"last_error"`
	NextAttemptAt *time.Time          `gorm:"index" json:"next_attempt_at"`
	LockedBy      string              `gorm:"size:64" json:"locked_by"`
	LockedAt      *time.Time          `gorm:"index" json:"locked_at"`
	CorrelationId string              `gorm:"size:64" json:"correlation_id"`
	CreatedAt     time.Time           `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time           `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SearchOutboxRecord) TableName() string { return "search_outbox" }

// SearchIndexMessage is what the dispatcher publishes for the index worker.
type SearchIndexMessage struct {
	ID            int              `json:"id"`
	EntityType    string           `json:"entity_type"`
	EntityId      int              `json:"entity_id"`
	Action        string           `json:"action"`
	Documents     []SearchDocument `json:"documents"`
	CorrelationId string           `json:"correlation_id"`
}

func correlationIdFromContextOrNew(ctx context.Context) string {
	if cid, ok := utils.GetCorrelationIdFromContext(ctx); ok && cid != "" {
		return cid
	}
	return uuid.NewString()
}

// PublishToSearchIndex writes the outbox row in the caller's transaction but
// does NOT touch the index; the outbox dispatcher publishes after commit.
func PublishToSearchIndex(ctx context.Context, tx *gorm.DB, entityType ModeratedEntityType, entityId int, action SearchAction, docs []SearchDocument) error {
	payload, err := json.Marshal(docs)
	if err != nil {
		return err
	}

	record := SearchOutboxRecord{
		EntityType:    entityType,
		EntityId:      entityId,
		Action:        action,
		Payload:       payload,
		IsProcessed:   false,
		PublishStatus: OutboxPublishStatusPending,
		CorrelationId: correlationIdFromContextOrNew(ctx),
	}
	return tx.Create(&record).Error
}
