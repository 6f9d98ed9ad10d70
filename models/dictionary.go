package models

import (
	"context"
	"time"

	"github.com/medvisor/sanatoria_backend/config"
	"github.com/medvisor/sanatoria_backend/utils"
)

// Dictionary rows (medical profiles, diseases, therapies, services) are the
// reference data the directory is filtered and tagged by. They change through
// admin tooling only, so no moderation applies here.

type MedicalProfile struct {
	ID        int       `gorm:"primary_key" json:"id"`
	NameRu    string    `gorm:"size:255;not null;index" json:"name_ru" binding:"required"`
	NameEn    string    `gorm:"size:255;index" json:"name_en"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

type Disease struct {
	ID               int             `gorm:"primary_key" json:"id"`
	MedicalProfileId int             `gorm:"index;not null" json:"medical_profile_id" binding:"required"`
	MedicalProfile   *MedicalProfile `json:"medical_profile,omitempty"`
	NameRu           string          `gorm:"size:255;not null;index" json:"name_ru" binding:"required"`
	NameEn           string          `gorm:"size:255;index" json:"name_en"`
	Therapies        []*Therapy      `gorm:"many2many:disease_therapies" json:"therapies,omitempty"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type Therapy struct {
	ID        int       `gorm:"primary_key" json:"id"`
	NameRu    string    `gorm:"size:255;not null;index" json:"name_ru" binding:"required"`
	NameEn    string    `gorm:"size:255;index" json:"name_en"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Service is an amenity/offering of a sanatorium (pool, spa, diet menu).
type Service struct {
	ID        int       `gorm:"primary_key" json:"id"`
	NameRu    string    `gorm:"size:255;not null;index" json:"name_ru" binding:"required"`
	NameEn    string    `gorm:"size:255;index" json:"name_en"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (m MedicalProfile) Summary() AssociationSummary {
	return AssociationSummary{Id: m.ID, NameRu: m.NameRu, NameEn: m.NameEn}
}

func (t Therapy) Summary() AssociationSummary {
	return AssociationSummary{Id: t.ID, NameRu: t.NameRu, NameEn: t.NameEn}
}

func (s Service) Summary() AssociationSummary {
	return AssociationSummary{Id: s.ID, NameRu: s.NameRu, NameEn: s.NameEn}
}

func (m MedicalProfile) Name(locale Locale) string {
	if locale == LocaleEn {
		return m.NameEn
	}
	return m.NameRu
}

func (t Therapy) Name(locale Locale) string {
	if locale == LocaleEn {
		return t.NameEn
	}
	return t.NameRu
}

func (s Service) Name(locale Locale) string {
	if locale == LocaleEn {
		return s.NameEn
	}
	return s.NameRu
}

func ListMedicalProfiles(ctx context.Context) ([]*MedicalProfile, error) {
	return listDictionary[MedicalProfile](ctx)
}

func ListTherapies(ctx context.Context) ([]*Therapy, error) {
	return listDictionary[Therapy](ctx)
}

func ListServices(ctx context.Context) ([]*Service, error) {
	return listDictionary[Service](ctx)
}

func ListDiseases(ctx context.Context, medicalProfileId int) ([]*Disease, error) {
	db := config.GetDB()
	var rows []*Disease
	q := db.WithContext(ctx).Preload("Therapies").Order("name_ru ASC")
	if medicalProfileId > 0 {
		q = q.Where("medical_profile_id = ?", medicalProfileId)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// list all rows of a dictionary, redis or db, cache result
func listDictionary[T any](ctx context.Context) ([]*T, error) {
	rows, err := utils.RetrieveRedisList[T]()
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
	if err := utils.StoreRedisList[T](rows); err != nil {
		return nil, err
	}
	return rows, nil
}
