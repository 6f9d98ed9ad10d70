package models

import (
	"context"
	"time"

	"github.com/medvisor/sanatoria_backend/config"
	"github.com/medvisor/sanatoria_backend/utils"
)

// Geography is read-only lookup data (seeded, not user-editable).

type Country struct {
	ID        int       `gorm:"primary_key" json:"id"`
	NameRu    string    `gorm:"size:255;not null;index" json:"name_ru"`
	NameEn    string    `gorm:"size:255;index" json:"name_en"`
	Code      string    `gorm:"size:2;uniqueIndex" json:"code"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type Region struct {
	ID        int       `gorm:"primary_key" json:"id"`
	CountryId int       `gorm:"index;not null" json:"country_id"`
	Country   *Country  `json:"country,omitempty"`
	NameRu    string    `gorm:"size:255;not null;index" json:"name_ru"`
	NameEn    string    `gorm:"size:255;index" json:"name_en"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

type City struct {
	ID        int       `gorm:"primary_key" json:"id"`
	RegionId  int       `gorm:"index;not null" json:"region_id"`
	Region    *Region   `json:"region,omitempty"`
	NameRu    string    `gorm:"size:255;not null;index" json:"name_ru"`
	NameEn    string    `gorm:"size:255;index" json:"name_en"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func ListCountries(ctx context.Context) ([]*Country, error) {
	rows, err := utils.RetrieveRedisList[Country]()
	if err != nil {
		return nil, err
	}
	if rows != nil {
		return rows, nil
	}
	db := config.GetDB()
	if err := db.WithContext(ctx).Order("name_ru ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	if err := utils.StoreRedisList[Country](rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func ListRegions(ctx context.Context, countryId int) ([]*Region, error) {
	db := config.GetDB()
	var rows []*Region
	q := db.WithContext(ctx).Order("name_ru ASC")
	if countryId > 0 {
		q = q.Where("country_id = ?", countryId)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func ListCities(ctx context.Context, regionId int) ([]*City, error) {
	db := config.GetDB()
	var rows []*City
	q := db.WithContext(ctx).Order("name_ru ASC")
	if regionId > 0 {
		q = q.Where("region_id = ?", regionId)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
