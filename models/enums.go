package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

// ModerationStatusId tracks the review state of one moderated field. The
// numeric values are part of the public API payload (status_id).
type ModerationStatusId int

const (
	ModerationStatusNotSubmitted ModerationStatusId = 1
	ModerationStatusPending      ModerationStatusId = 2
	ModerationStatusApproved     ModerationStatusId = 3
	ModerationStatusRejected     ModerationStatusId = 4
)

func (s ModerationStatusId) Valid() bool {
	return s >= ModerationStatusNotSubmitted && s <= ModerationStatusRejected
}

func (s ModerationStatusId) String() string {
	switch s {
	case ModerationStatusNotSubmitted:
		return "not_submitted"
	case ModerationStatusPending:
		return "pending"
	case ModerationStatusApproved:
		return "approved"
	case ModerationStatusRejected:
		return "rejected"
	}
	return fmt.Sprintf("unknown(%d)", int(s))
}

type ModeratedEntityType string

const (
	ModeratedEntityObject      ModeratedEntityType = "object"
	ModeratedEntityPartner     ModeratedEntityType = "partner"
	ModeratedEntityPublication ModeratedEntityType = "publication"
)

func ParseModeratedEntityType(s string) (ModeratedEntityType, error) {
	switch s {
	case "object":
		return ModeratedEntityObject, nil
	case "partner":
		return ModeratedEntityPartner, nil
	case "publication":
		return ModeratedEntityPublication, nil
	}
	return "", errors.New("invalid entity type")
}

func (t ModeratedEntityType) Value() (driver.Value, error) {
	return string(t), nil
}

func (t *ModeratedEntityType) Scan(value interface{}) error {
	switch v := value.(type) {
	case string:
		*t = ModeratedEntityType(v)
	case []byte:
		*t = ModeratedEntityType(v)
	default:
		return errors.New("invalid entity type column")
	}
	return nil
}

// Locale of client-facing text. Only Russian and English are supported.
type Locale string

const (
	LocaleRu Locale = "ru"
	LocaleEn Locale = "en"
)

func (l Locale) Valid() bool {
	return l == LocaleRu || l == LocaleEn
}

var SupportedLocales = []Locale{LocaleRu, LocaleEn}

type UserRole string

const (
	UserRoleAdmin     UserRole = "admin"
	UserRoleModerator UserRole = "moderator"
	UserRoleOwner     UserRole = "owner"
	UserRoleUser      UserRole = "user"
)

// SearchAction is the operation an outbox row asks of the search index.
type SearchAction string

const (
	SearchActionIndex  SearchAction = "index"
	SearchActionDelete SearchAction = "delete"
)

// Outbox publish lifecycle (same scheme as any transactional outbox: rows are
// PENDING until a dispatcher claims and publishes them).
const (
	OutboxPublishStatusPending    = "PENDING"
	OutboxPublishStatusProcessing = "PROCESSING"
	OutboxPublishStatusPublished  = "PUBLISHED"
	OutboxPublishStatusFailed     = "FAILED"
	OutboxPublishStatusDead       = "DEAD"
)
