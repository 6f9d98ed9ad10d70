package models

import (
	"context"
	"errors"

	"github.com/medvisor/sanatoria_backend/config"
	"github.com/medvisor/sanatoria_backend/utils"
	"gorm.io/gorm"
)

// first find in redis, then in db, cache result
// (may return RecordNotFound error)
func GetResource[T any](ctx context.Context, id int, associations ...string) (*T, error) {
	// find in redis
	result, err := utils.RetrieveRedis[T](id)
	if err != nil {
		return nil, err
	}
	// if not found in redis
	if result == nil {
		// fetch from db
		db := config.GetDB()
		q := db.WithContext(ctx)
		for _, assoc := range associations {
			q = q.Preload(assoc)
		}
		var row T
		if err := q.First(&row, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.ErrorRecordNotFound
			}
			return nil, err
		}
		result = &row

		// store in redis
		if err := utils.StoreRedis[T](result, id); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// InvalidateResource drops the cached row after a write.
func InvalidateResource[T any](id int) error {
	return utils.RemoveRedisCache[T](id)
}
