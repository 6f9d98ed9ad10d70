package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/medvisor/sanatoria_backend/config"
	"github.com/medvisor/sanatoria_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Partner is a tour operator or agency listed next to the directory.
type Partner struct {
	ID             int             `gorm:"primary_key" json:"id"`
	OwnerId        int             `gorm:"index;not null" json:"owner_id"`
	NameRu         string          `gorm:"size:255;not null;index" json:"name_ru" binding:"required"`
	NameEn         string          `gorm:"size:255;index" json:"name_en"`
	Slug           string          `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	CommissionRate decimal.Decimal `gorm:"type:decimal(5,2)" json:"commission_rate"`
	Website        string          `gorm:"size:255" json:"website"`
	IsActive       *bool           `gorm:"not null;default:true" json:"is_active"`

	// moderated live columns
	DescriptionRu string    `gorm:"type:text" json:"description_ru"`
	DescriptionEn string    `gorm:"type:text" json:"description_en"`
	Logo          []string  `gorm:"serializer:json;type:json" json:"logo"`
	Contacts      []Contact `gorm:"serializer:json;type:json" json:"contacts"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Partner) ModerationEntityType() ModeratedEntityType { return ModeratedEntityPartner }
func (p *Partner) GetID() int                                { return p.ID }

type NewPartner struct {
	NameRu         string `json:"name_ru" binding:"required"`
	NameEn         string `json:"name_en" binding:"required"`
	CommissionRate string `json:"commission_rate"`
	Website        string `json:"website"`
}

func (input *NewPartner) ToPartner(ownerId int) (*Partner, error) {
	rate := decimal.Zero
	if input.CommissionRate != "" {
		parsed, err := decimal.NewFromString(input.CommissionRate)
		if err != nil {
			return nil, errors.New("invalid commission_rate")
		}
		rate = parsed
	}
	return &Partner{
		OwnerId:        ownerId,
		NameRu:         input.NameRu,
		NameEn:         input.NameEn,
		Slug:           utils.Slugify(input.NameEn),
		CommissionRate: rate,
		Website:        input.Website,
		IsActive:       utils.NewTrue(),
	}, nil
}

func (p *Partner) ApplyDirect(ctx context.Context, changes map[string]json.RawMessage) error {
	for name, raw := range changes {
		switch name {
		case "name_ru":
			if err := json.Unmarshal(raw, &p.NameRu); err != nil {
				return err
			}
		case "name_en":
			if err := json.Unmarshal(raw, &p.NameEn); err != nil {
				return err
			}
		case "commission_rate":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			rate, err := decimal.NewFromString(s)
			if err != nil {
				return errors.New("invalid commission_rate")
			}
			p.CommissionRate = rate
		case "website":
			if err := json.Unmarshal(raw, &p.Website); err != nil {
				return err
			}
		case "is_active":
			var b bool
			if err := json.Unmarshal(raw, &b); err != nil {
				return err
			}
			p.IsActive = &b
		}
	}
	return nil
}

func (p *Partner) ApplyModerated(tx *gorm.DB, field ModeratedField, raw json.RawMessage) error {
	switch field.Kind {
	case FieldKindText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		switch field.Column {
		case "description_ru":
			p.DescriptionRu = s
		case "description_en":
			p.DescriptionEn = s
		default:
			return fmt.Errorf("partner has no text column %q", field.Column)
		}
	case FieldKindFiles:
		var keys []string
		if err := json.Unmarshal(raw, &keys); err != nil {
			return err
		}
		p.Logo = keys
	case FieldKindContacts:
		var contacts []Contact
		if err := json.Unmarshal(raw, &contacts); err != nil {
			return err
		}
		p.Contacts = contacts
	default:
		return fmt.Errorf("partner does not moderate field kind %q", field.Kind)
	}
	return nil
}

func (p *Partner) SearchDocuments() []SearchDocument {
	docs := make([]SearchDocument, 0, len(SupportedLocales))
	for _, locale := range SupportedLocales {
		title := p.NameRu
		description := p.DescriptionRu
		if locale == LocaleEn {
			title = p.NameEn
			description = p.DescriptionEn
		}
		docs = append(docs, SearchDocument{
			EntityType:  string(ModeratedEntityPartner),
			EntityId:    p.ID,
			Locale:      string(locale),
			Title:       title,
			Description: description,
		})
	}
	return docs
}

func GetPartnerById(ctx context.Context, id int) (*Partner, error) {
	db := config.GetDB()
	var partner Partner
	if err := db.WithContext(ctx).First(&partner, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &partner, nil
}

func GetPartnerBySlug(ctx context.Context, slug string) (*Partner, error) {
	db := config.GetDB()
	var partner Partner
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &partner, nil
}

func ListPartners(ctx context.Context, activeOnly bool, page, limit int) ([]*Partner, int64, error) {
	db := config.GetDB()
	q := db.WithContext(ctx).Model(&Partner{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []*Partner
	if err := q.Scopes(Paginate(page, limit)).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
