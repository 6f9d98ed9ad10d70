package models

import (
	"context"
	"errors"
	"time"

	"github.com/medvisor/sanatoria_backend/config"
	"github.com/medvisor/sanatoria_backend/utils"
	"gorm.io/gorm"
)

// Feedback is a visitor review of an object. Reviews are moderated wholesale
// (the row is visible only once approved), reusing the moderation status ids.
type Feedback struct {
	ID          int                `gorm:"primary_key" json:"id"`
	ObjectId    int                `gorm:"index;not null" json:"object_id"`
	AuthorName  string             `gorm:"size:255;not null" json:"author_name" binding:"required"`
	AuthorEmail string             `gorm:"size:255" json:"author_email"`
	Rating      int                `gorm:"not null" json:"rating" binding:"required,min=1,max=5"`
	Text        string             `gorm:"type:text;not null" json:"text" binding:"required"`
	StatusId    ModerationStatusId `gorm:"not null;default:2;index" json:"status_id"`
	Message     *string            `gorm:"size:500" json:"message,omitempty"`
	CreatedAt   time.Time          `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time          `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewFeedback struct {
	AuthorName  string `json:"author_name" binding:"required"`
	AuthorEmail string `json:"author_email"`
	Rating      int    `json:"rating" binding:"required,min=1,max=5"`
	Text        string `json:"text" binding:"required"`
}

func (input *NewFeedback) Validate() error {
	if input.AuthorEmail != "" && !utils.IsValidEmail(input.AuthorEmail) {
		return errors.New("invalid author_email")
	}
	return nil
}

func (input *NewFeedback) ToFeedback(objectId int) *Feedback {
	return &Feedback{
		ObjectId:    objectId,
		AuthorName:  input.AuthorName,
		AuthorEmail: input.AuthorEmail,
		Rating:      input.Rating,
		Text:        input.Text,
		StatusId:    ModerationStatusPending,
	}
}

func ListApprovedFeedback(ctx context.Context, objectId int, page, limit int) ([]*Feedback, int64, error) {
	db := config.GetDB()
	q := db.WithContext(ctx).Model(&Feedback{}).
		Where("object_id = ? AND status_id = ?", objectId, ModerationStatusApproved)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []*Feedback
	if err := q.Scopes(Paginate(page, limit)).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ModerateFeedback approves or rejects a pending review.
func ModerateFeedback(ctx context.Context, id int, approve bool, message string) (*Feedback, error) {
	db := config.GetDB()
	var feedback Feedback
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&feedback, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorRecordNotFound
			}
			return err
		}
		if feedback.StatusId != ModerationStatusPending {
			return utils.ErrorInvalidTransition
		}
		if approve {
			feedback.StatusId = ModerationStatusApproved
			feedback.Message = nil
		} else {
			feedback.StatusId = ModerationStatusRejected
			feedback.Message = &message
		}
		return tx.Save(&feedback).Error
	})
	if err != nil {
		return nil, err
	}
	return &feedback, nil
}
