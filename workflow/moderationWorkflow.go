package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/medvisor/sanatoria_backend/config"
	"github.com/medvisor/sanatoria_backend/models"
	"github.com/medvisor/sanatoria_backend/utils"
	"gorm.io/gorm"
)

// The moderation reconciler: decides per submitted field whether the value
// commits to the live entity immediately (admin bypass) or parks in the
// moderation record pending review. The per-field state machine itself lives
// on models.ModerationRecord; this package owns transactions, locking and the
// privilege gate.

// ReconcileField applies one recognized field submission to the record and,
// when bypass holds, to the live entity. Returns whether the live side changed.
func ReconcileField(tx *gorm.DB, entity models.Moderated, record *models.ModerationRecord, field models.ModeratedField, raw json.RawMessage, bypass bool, now time.Time) (bool, error) {
	if err := models.ValidateFieldValue(field, raw); err != nil {
		return false, err
	}
	if !bypass {
		record.StagePending(field.Name, raw, now)
		return false, nil
	}
	if err := entity.ApplyModerated(tx, field, raw); err != nil {
		return false, err
	}
	record.MarkApproved(field.Name, now)
	return true, nil
}

// ApplyApproval copies a pending value onto the live entity and marks the
// field approved, clearing the staged snapshot.
func ApplyApproval(tx *gorm.DB, entity models.Moderated, record *models.ModerationRecord, field models.ModeratedField, now time.Time) error {
	raw, err := record.PendingValue(field.Name)
	if err != nil {
		return err
	}
	if err := entity.ApplyModerated(tx, field, raw); err != nil {
		return err
	}
	record.MarkApproved(field.Name, now)
	return nil
}

// SubmitModeratedFields runs one moderated update for an entity. Fields not in
// the entity's registry are skipped silently; everything else happens in a
// single transaction so the entity and its moderation record can never drift.
func SubmitModeratedFields(ctx context.Context, entity models.Moderated, changes map[string]json.RawMessage) (*models.ModerationRecord, error) {
	entityType := entity.ModerationEntityType()
	registry := models.RegistryFor(entityType)
	if registry == nil {
		return nil, fmt.Errorf("no moderation registry for entity type %q", entityType)
	}

	recognized := make(map[string]json.RawMessage)
	for name, raw := range changes {
		if _, ok := registry[name]; ok {
			recognized[name] = raw
		}
	}
	if len(recognized) == 0 {
		return models.LoadModerationRecord(config.GetDB().WithContext(ctx), entityType, entity.GetID())
	}

	var assocRules []utils.ValidationRule[int]
	for name, raw := range recognized {
		if registry[name].Kind != models.FieldKindAssoc {
			continue
		}
		rule, rerr := models.AssocExistenceRule(registry[name], raw)
		if rerr != nil {
			return nil, rerr
		}
		assocRules = append(assocRules, rule)
	}
	if err := utils.MassValidateResourceIds(ctx, assocRules); err != nil {
		return nil, err
	}

	bypass := utils.HasModerationBypass(ctx)

	lockKey := fmt.Sprintf("moderation:%s:%d", entityType, entity.GetID())
	lock, err := utils.EntityLock(ctx, lockKey, "moderationWorkflow.go", "SubmitModeratedFields")
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseEntityLock(ctx, lock)

	var record *models.ModerationRecord
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err = models.LoadOrCreateModerationRecord(tx, entityType, entity.GetID())
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		liveChanged := false
		for name, raw := range recognized {
			changed, rerr := ReconcileField(tx, entity, record, registry[name], raw, bypass, now)
			if rerr != nil {
				return rerr
			}
			liveChanged = liveChanged || changed
		}

		if liveChanged {
			// Save fires the entity's AfterUpdate hook, which writes the
			// search outbox row inside this transaction.
			if err := tx.Save(entity).Error; err != nil {
				return err
			}
		}
		return tx.Save(record).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// ApproveField is the moderator action PENDING -> APPROVED: the staged value
// goes live and the pending slot is cleared.
func ApproveField(ctx context.Context, entity models.Moderated, fieldName string) (*models.ModerationRecord, error) {
	return moderatorAction(ctx, entity, fieldName, func(tx *gorm.DB, record *models.ModerationRecord, field models.ModeratedField, now time.Time) (bool, error) {
		if err := ApplyApproval(tx, entity, record, field, now); err != nil {
			return false, err
		}
		return true, nil
	})
}

// RejectField is the moderator action PENDING -> REJECTED: the live value
// stays, the staged value is kept for resubmission context, the message is
// recorded.
func RejectField(ctx context.Context, entity models.Moderated, fieldName string, message string) (*models.ModerationRecord, error) {
	return moderatorAction(ctx, entity, fieldName, func(tx *gorm.DB, record *models.ModerationRecord, field models.ModeratedField, now time.Time) (bool, error) {
		return false, record.MarkRejected(field.Name, message, now)
	})
}

func moderatorAction(ctx context.Context, entity models.Moderated, fieldName string, action func(tx *gorm.DB, record *models.ModerationRecord, field models.ModeratedField, now time.Time) (bool, error)) (*models.ModerationRecord, error) {
	if !utils.CanModerate(ctx) {
		return nil, utils.ErrorForbidden
	}

	entityType := entity.ModerationEntityType()
	registry := models.RegistryFor(entityType)
	field, ok := registry[fieldName]
	if !ok {
		return nil, utils.ErrorRecordNotFound
	}

	lockKey := fmt.Sprintf("moderation:%s:%d", entityType, entity.GetID())
	lock, err := utils.EntityLock(ctx, lockKey, "moderationWorkflow.go", "moderatorAction")
	if err != nil {
		return nil, err
	}
	defer utils.ReleaseEntityLock(ctx, lock)

	var record *models.ModerationRecord
	db := config.GetDB()
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err = models.LoadModerationRecord(tx, entityType, entity.GetID())
		if err != nil {
			return err
		}
		if record == nil {
			return utils.ErrorRecordNotFound
		}

		liveChanged, aerr := action(tx, record, field, time.Now().UTC())
		if aerr != nil {
			return aerr
		}
		if liveChanged {
			if err := tx.Save(entity).Error; err != nil {
				return err
			}
		}
		return tx.Save(record).Error
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// PendingSubmission is one reviewable item in the moderator queue.
type PendingSubmission struct {
	EntityType models.ModeratedEntityType `json:"entity_type"`
	EntityId   int                        `json:"entity_id"`
	Field      string                     `json:"field"`
	Value      json.RawMessage            `json:"value"`
	Time       time.Time                  `json:"time"`
}

// ListPendingSubmissions flattens all PENDING fields across moderation
// records into the review queue, oldest submissions first.
func ListPendingSubmissions(ctx context.Context, entityType models.ModeratedEntityType) ([]PendingSubmission, error) {
	db := config.GetDB()
	q := db.WithContext(ctx).Model(&models.ModerationRecord{})
	if entityType != "" {
		q = q.Where("entity_type = ?", entityType)
	}
	var records []*models.ModerationRecord
	if err := q.Find(&records).Error; err != nil {
		return nil, err
	}
	return flattenPendingQueue(records), nil
}

// flattenPendingQueue collects every PENDING field across records and orders
// the queue by each field's own staging time, oldest first. A record's
// updated_at moves on every save, so it cannot order the queue.
func flattenPendingQueue(records []*models.ModerationRecord) []PendingSubmission {
	var queue []PendingSubmission
	for _, record := range records {
		for name, st := range record.Fields {
			if st == nil || st.StatusId != models.ModerationStatusPending {
				continue
			}
			queue = append(queue, PendingSubmission{
				EntityType: record.EntityType,
				EntityId:   record.EntityId,
				Field:      name,
				Value:      st.Value,
				Time:       st.Time,
			})
		}
	}
	sort.SliceStable(queue, func(i, j int) bool {
		if queue[i].Time.Equal(queue[j].Time) {
			return queue[i].Field < queue[j].Field
		}
		return queue[i].Time.Before(queue[j].Time)
	})
	return queue
}
