package models

import (
	"github.com/medvisor/sanatoria_backend/config"
	"gorm.io/gorm"
)

// Paginate is a gorm scope for page/limit style listings.
func Paginate(page, limit int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 {
			page = 1
		}
		if limit <= 0 || limit > 100 {
			limit = config.SearchLimit
		}
		offset := (page - 1) * limit
		return db.Offset(offset).Limit(limit)
	}
}

// PageInfo is the envelope returned next to list payloads.
type PageInfo struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

func NewPageInfo(page, limit int, total int64) *PageInfo {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = config.SearchLimit
	}
	return &PageInfo{Page: page, Limit: limit, Total: total}
}
