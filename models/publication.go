package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/medvisor/sanatoria_backend/config"
	"github.com/medvisor/sanatoria_backend/utils"
	"gorm.io/gorm"
)

// Publication is an editorial article (health guides, resort reviews).
// Title and body go through moderation; the slug and author are direct.
type Publication struct {
	ID       int    `gorm:"primary_key" json:"id"`
	AuthorId int    `gorm:"index;not null" json:"author_id"`
	Slug     string `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	IsActive *bool  `gorm:"not null;default:true" json:"is_active"`

	// moderated live columns
	TitleRu string   `gorm:"size:500" json:"title_ru"`
	TitleEn string   `gorm:"size:500" json:"title_en"`
	BodyRu  string   `gorm:"type:mediumtext" json:"body_ru"`
	BodyEn  string   `gorm:"type:mediumtext" json:"body_en"`
	Cover   []string `gorm:"serializer:json;type:json" json:"cover"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *Publication) ModerationEntityType() ModeratedEntityType { return ModeratedEntityPublication }
func (p *Publication) GetID() int                                { return p.ID }

type NewPublication struct {
	Slug string `json:"slug" binding:"required"`
}

func (input *NewPublication) ToPublication(authorId int) *Publication {
	return &Publication{
		AuthorId: authorId,
		Slug:     utils.Slugify(input.Slug),
		IsActive: utils.NewTrue(),
	}
}

func (p *Publication) ApplyDirect(ctx context.Context, changes map[string]json.RawMessage) error {
	for name, raw := range changes {
		switch name {
		case "slug":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			p.Slug = utils.Slugify(s)
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

func (p *Publication) ApplyModerated(tx *gorm.DB, field ModeratedField, raw json.RawMessage) error {
	switch field.Kind {
	case FieldKindText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		switch field.Column {
		case "title_ru":
			p.TitleRu = s
		case "title_en":
			p.TitleEn = s
		case "body_ru":
			p.BodyRu = s
		case "body_en":
			p.BodyEn = s
		default:
			return fmt.Errorf("publication has no text column %q", field.Column)
		}
	case FieldKindFiles:
		var keys []string
		if err := json.Unmarshal(raw, &keys); err != nil {
			return err
		}
		p.Cover = keys
	default:
		return fmt.Errorf("publication does not moderate field kind %q", field.Kind)
	}
	return nil
}

func (p *Publication) SearchDocuments() []SearchDocument {
	docs := make([]SearchDocument, 0, len(SupportedLocales))
	for _, locale := range SupportedLocales {
		title := p.TitleRu
		description := p.BodyRu
		if locale == LocaleEn {
			title = p.TitleEn
			description = p.BodyEn
		}
		docs = append(docs, SearchDocument{
			EntityType:  string(ModeratedEntityPublication),
			EntityId:    p.ID,
			Locale:      string(locale),
			Title:       title,
			Description: description,
		})
	}
	return docs
}

func GetPublicationById(ctx context.Context, id int) (*Publication, error) {
	db := config.GetDB()
	var publication Publication
	if err := db.WithContext(ctx).First(&publication, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &publication, nil
}

func GetPublicationBySlug(ctx context.Context, slug string) (*Publication, error) {
	db := config.GetDB()
	var publication Publication
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&publication).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &publication, nil
}

func ListPublications(ctx context.Context, activeOnly bool, page, limit int) ([]*Publication, int64, error) {
	db := config.GetDB()
	q := db.WithContext(ctx).Model(&Publication{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []*Publication
	if err := q.Scopes(Paginate(page, limit)).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
