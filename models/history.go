package models

import (
	"encoding/json"
	"time"

	"github.com/medvisor/sanatoria_backend/utils"
	"gorm.io/gorm"
)

// History is the audit trail written from GORM hooks on entity saves.
type History struct {
	ID            int       `gorm:"primary_key" json:"id"`
	ActionType    string    `gorm:"size:10;not null" json:"action_type"`
	Before        string    `gorm:"type:text" json:"before"`
	After         string    `gorm:"type:text" json:"after"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	ReferenceID   int       `gorm:"index" json:"reference_id"`
	ReferenceType string    `gorm:"size:255" json:"reference_type"`
	UserId        int       `gorm:"index" json:"user_id"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func createHistory(tx *gorm.DB,
	actionType string,
	referenceId int,
	referenceType string,
	before interface{},
	after interface{},
	description string) (err error) {

	b, _ := json.Marshal(before)
	a, _ := json.Marshal(after)

	ctx := tx.Statement.Context
	userId, _ := utils.GetUserIdFromContext(ctx)

	history := History{
		ActionType:    actionType,
		Before:        string(b),
		After:         string(a),
		Description:   description,
		ReferenceID:   referenceId,
		ReferenceType: referenceType,
		UserId:        userId,
	}
	return tx.Create(&history).Error
}

func SaveHistoryCreate(tx *gorm.DB, referenceId int, after interface{}, description string) error {
	return createHistory(tx, "CREATE", referenceId, utils.GetType(after), nil, after, description)
}

func SaveHistoryUpdate(tx *gorm.DB, referenceId int, after interface{}, description string) error {
	return createHistory(tx, "UPDATE", referenceId, utils.GetType(after), nil, after, description)
}

func SaveHistoryDelete(tx *gorm.DB, referenceId int, before interface{}, description string) error {
	return createHistory(tx, "DELETE", referenceId, utils.GetType(before), before, nil, description)
}
