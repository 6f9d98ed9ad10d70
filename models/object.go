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

// Object is a sanatorium/resort card in the directory. Direct fields are
// written on update as-is; the columns in the "moderated live columns" block
// change only through the moderation flow (admin bypass or approval).
type Object struct {
	ID        int             `gorm:"primary_key" json:"id"`
	OwnerId   int             `gorm:"index;not null" json:"owner_id"`
	NameRu    string          `gorm:"size:255;not null;index" json:"name_ru" binding:"required"`
	NameEn    string          `gorm:"size:255;index" json:"name_en"`
	Slug      string          `gorm:"size:255;not null;uniqueIndex" json:"slug"`
	CountryId int             `gorm:"index" json:"country_id"`
	RegionId  int             `gorm:"index" json:"region_id"`
	CityId    int             `gorm:"index" json:"city_id"`
	Address   string          `gorm:"size:500" json:"address"`
	Latitude  float64         `json:"latitude"`
	Longitude float64         `json:"longitude"`
	PriceFrom decimal.Decimal `gorm:"type:decimal(12,2)" json:"price_from"`
	Email     string          `gorm:"size:255" json:"email"`
	Phone     string          `gorm:"size:50" json:"phone"`
	Website   string          `gorm:"size:255" json:"website"`
	IsActive  *bool           `gorm:"not null;default:true" json:"is_active"`

	// moderated live columns
	DescriptionRu        string    `gorm:"type:text" json:"description_ru"`
	DescriptionEn        string    `gorm:"type:text" json:"description_en"`
	VisaRu               string    `gorm:"type:text" json:"visa_ru"`
	VisaEn               string    `gorm:"type:text" json:"visa_en"`
	ContraindicationsRu  string    `gorm:"type:text" json:"contraindications_ru"`
	ContraindicationsEn  string    `gorm:"type:text" json:"contraindications_en"`
	PaymentDescriptionRu string    `gorm:"type:text" json:"payment_description_ru"`
	PaymentDescriptionEn string    `gorm:"type:text" json:"payment_description_en"`
	Stars                int       `gorm:"not null;default:0" json:"stars"`
	Documents            []string  `gorm:"serializer:json;type:json" json:"documents"`
	Contacts             []Contact `gorm:"serializer:json;type:json" json:"contacts"`

	Services        []*Service        `gorm:"many2many:object_services" json:"services,omitempty"`
	MedicalProfiles []*MedicalProfile `gorm:"many2many:object_medical_profiles" json:"medical_profiles,omitempty"`
	Therapies       []*Therapy        `gorm:"many2many:object_therapies" json:"therapies,omitempty"`

	Feedbacks []*Feedback `gorm:"foreignKey:ObjectId" json:"feedbacks,omitempty"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (o *Object) ModerationEntityType() ModeratedEntityType { return ModeratedEntityObject }
func (o *Object) GetID() int                                { return o.ID }

// NewObject carries the direct fields accepted on create.
type NewObject struct {
	NameRu    string  `json:"name_ru" binding:"required"`
	NameEn    string  `json:"name_en" binding:"required"`
	CountryId int     `json:"country_id" binding:"required"`
	RegionId  int     `json:"region_id"`
	CityId    int     `json:"city_id"`
	Address   string  `json:"address"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	PriceFrom string  `json:"price_from"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	Website   string  `json:"website"`
}

func (input *NewObject) Validate(ctx context.Context) error {
	if input.Email != "" && !utils.IsValidEmail(input.Email) {
		return errors.New("invalid email")
	}
	if input.Phone != "" {
		if err := utils.ValidatePhoneNumber(input.Phone, "RU"); err != nil {
			return err
		}
	}
	if err := utils.ValidateResourceId[Country](ctx, input.CountryId); err != nil {
		return errors.New("country not found")
	}
	if input.RegionId > 0 {
		if err := utils.ValidateResourceId[Region](ctx, input.RegionId); err != nil {
			return errors.New("region not found")
		}
	}
	if input.CityId > 0 {
		if err := utils.ValidateResourceId[City](ctx, input.CityId); err != nil {
			return errors.New("city not found")
		}
	}
	return nil
}

func (input *NewObject) ToObject(ownerId int) (*Object, error) {
	price := decimal.Zero
	if input.PriceFrom != "" {
		parsed, err := decimal.NewFromString(input.PriceFrom)
		if err != nil {
			return nil, errors.New("invalid price_from")
		}
		price = parsed
	}
	return &Object{
		OwnerId:   ownerId,
		NameRu:    input.NameRu,
		NameEn:    input.NameEn,
		Slug:      utils.Slugify(input.NameEn),
		CountryId: input.CountryId,
		RegionId:  input.RegionId,
		CityId:    input.CityId,
		Address:   input.Address,
		Latitude:  input.Latitude,
		Longitude: input.Longitude,
		PriceFrom: price,
		Email:     input.Email,
		Phone:     input.Phone,
		Website:   input.Website,
		IsActive:  utils.NewTrue(),
	}, nil
}

// ApplyDirect overwrites direct columns from a partial update. Keys that are
// not direct fields are left for the moderation reconciler; unknown keys are
// dropped silently.
func (o *Object) ApplyDirect(ctx context.Context, changes map[string]json.RawMessage) error {
	for name, raw := range changes {
		switch name {
		case "name_ru":
			if err := json.Unmarshal(raw, &o.NameRu); err != nil {
				return err
			}
		case "name_en":
			if err := json.Unmarshal(raw, &o.NameEn); err != nil {
				return err
			}
		case "country_id":
			if err := json.Unmarshal(raw, &o.CountryId); err != nil {
				return err
			}
			if err := utils.ValidateResourceId[Country](ctx, o.CountryId); err != nil {
				return errors.New("country not found")
			}
		case "region_id":
			if err := json.Unmarshal(raw, &o.RegionId); err != nil {
				return err
			}
			if o.RegionId > 0 {
				if err := utils.ValidateResourceId[Region](ctx, o.RegionId); err != nil {
					return errors.New("region not found")
				}
			}
		case "city_id":
			if err := json.Unmarshal(raw, &o.CityId); err != nil {
				return err
			}
			if o.CityId > 0 {
				if err := utils.ValidateResourceId[City](ctx, o.CityId); err != nil {
					return errors.New("city not found")
				}
			}
		case "address":
			if err := json.Unmarshal(raw, &o.Address); err != nil {
				return err
			}
		case "latitude":
			if err := json.Unmarshal(raw, &o.Latitude); err != nil {
				return err
			}
		case "longitude":
			if err := json.Unmarshal(raw, &o.Longitude); err != nil {
				return err
			}
		case "price_from":
			var s string
			if err := json.Unmarshal(raw, &s); err != nil {
				return err
			}
			price, err := decimal.NewFromString(s)
			if err != nil {
				return errors.New("invalid price_from")
			}
			o.PriceFrom = price
		case "email":
			if err := json.Unmarshal(raw, &o.Email); err != nil {
				return err
			}
			if o.Email != "" && !utils.IsValidEmail(o.Email) {
				return errors.New("invalid email")
			}
		case "phone":
			if err := json.Unmarshal(raw, &o.Phone); err != nil {
				return err
			}
			if o.Phone != "" {
				if err := utils.ValidatePhoneNumber(o.Phone, "RU"); err != nil {
					return err
				}
			}
		case "website":
			if err := json.Unmarshal(raw, &o.Website); err != nil {
				return err
			}
		case "is_active":
			var b bool
			if err := json.Unmarshal(raw, &b); err != nil {
				return err
			}
			o.IsActive = &b
		}
	}
	return nil
}

// ApplyModerated commits an approved value to the live side of the object.
func (o *Object) ApplyModerated(tx *gorm.DB, field ModeratedField, raw json.RawMessage) error {
	switch field.Kind {
	case FieldKindText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return err
		}
		switch field.Column {
		case "description_ru":
			o.DescriptionRu = s
		case "description_en":
			o.DescriptionEn = s
		case "visa_ru":
			o.VisaRu = s
		case "visa_en":
			o.VisaEn = s
		case "contraindications_ru":
			o.ContraindicationsRu = s
		case "contraindications_en":
			o.ContraindicationsEn = s
		case "payment_description_ru":
			o.PaymentDescriptionRu = s
		case "payment_description_en":
			o.PaymentDescriptionEn = s
		default:
			return fmt.Errorf("object has no text column %q", field.Column)
		}
	case FieldKindScalar:
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return err
		}
		if field.Column != "stars" {
			return fmt.Errorf("object has no scalar column %q", field.Column)
		}
		o.Stars = n
	case FieldKindFiles:
		var keys []string
		if err := json.Unmarshal(raw, &keys); err != nil {
			return err
		}
		o.Documents = keys
	case FieldKindContacts:
		var contacts []Contact
		if err := json.Unmarshal(raw, &contacts); err != nil {
			return err
		}
		o.Contacts = contacts
	case FieldKindAssoc:
		return o.replaceAssociation(tx, field, raw)
	default:
		return fmt.Errorf("unknown field kind %q", field.Kind)
	}
	return nil
}

func (o *Object) replaceAssociation(tx *gorm.DB, field ModeratedField, raw json.RawMessage) error {
	ids, err := SummaryIds(raw)
	if err != nil {
		return err
	}
	switch field.Assoc {
	case "Services":
		var rows []*Service
		if len(ids) > 0 {
			if err := tx.Where("id IN ?", ids).Find(&rows).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(o).Association("Services").Replace(rows); err != nil {
			return err
		}
		o.Services = rows
	case "MedicalProfiles":
		var rows []*MedicalProfile
		if len(ids) > 0 {
			if err := tx.Where("id IN ?", ids).Find(&rows).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(o).Association("MedicalProfiles").Replace(rows); err != nil {
			return err
		}
		o.MedicalProfiles = rows
	case "Therapies":
		var rows []*Therapy
		if len(ids) > 0 {
			if err := tx.Where("id IN ?", ids).Find(&rows).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(o).Association("Therapies").Replace(rows); err != nil {
			return err
		}
		o.Therapies = rows
	default:
		return fmt.Errorf("object has no association %q", field.Assoc)
	}
	return nil
}

// SearchDocuments projects the live object into per-locale index documents.
// Tags are the localized names of the linked dictionary rows.
func (o *Object) SearchDocuments() []SearchDocument {
	docs := make([]SearchDocument, 0, len(SupportedLocales))
	for _, locale := range SupportedLocales {
		title := o.NameRu
		description := o.DescriptionRu
		if locale == LocaleEn {
			title = o.NameEn
			description = o.DescriptionEn
		}
		var tags []string
		for _, s := range o.Services {
			tags = append(tags, s.Name(locale))
		}
		for _, m := range o.MedicalProfiles {
			tags = append(tags, m.Name(locale))
		}
		for _, t := range o.Therapies {
			tags = append(tags, t.Name(locale))
		}
		docs = append(docs, SearchDocument{
			EntityType:  string(ModeratedEntityObject),
			EntityId:    o.ID,
			Locale:      string(locale),
			Title:       title,
			Description: description,
			Tags:        tags,
		})
	}
	return docs
}

var objectPreloads = []string{"Services", "MedicalProfiles", "Therapies"}

func GetObjectById(ctx context.Context, id int) (*Object, error) {
	db := config.GetDB()
	var object Object
	q := db.WithContext(ctx)
	for _, preload := range objectPreloads {
		q = q.Preload(preload)
	}
	if err := q.First(&object, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &object, nil
}

func GetObjectBySlug(ctx context.Context, slug string) (*Object, error) {
	db := config.GetDB()
	var object Object
	q := db.WithContext(ctx)
	for _, preload := range objectPreloads {
		q = q.Preload(preload)
	}
	if err := q.Where("slug = ?", slug).First(&object).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &object, nil
}

// ObjectFilter narrows the public directory listing.
type ObjectFilter struct {
	CountryId        int
	RegionId         int
	CityId           int
	MedicalProfileId int
	ServiceId        int
	TherapyId        int
	MinStars         int
	ActiveOnly       bool
}

func ListObjects(ctx context.Context, filter ObjectFilter, page, limit int) ([]*Object, int64, error) {
	db := config.GetDB()
	q := db.WithContext(ctx).Model(&Object{})

	if filter.ActiveOnly {
		q = q.Where("is_active = ?", true)
	}
	if filter.CountryId > 0 {
		q = q.Where("country_id = ?", filter.CountryId)
	}
	if filter.RegionId > 0 {
		q = q.Where("region_id = ?", filter.RegionId)
	}
	if filter.CityId > 0 {
		q = q.Where("city_id = ?", filter.CityId)
	}
	if filter.MinStars > 0 {
		q = q.Where("stars >= ?", filter.MinStars)
	}
	if filter.MedicalProfileId > 0 {
		q = q.Joins("JOIN object_medical_profiles omp ON omp.object_id = objects.id").
			Where("omp.medical_profile_id = ?", filter.MedicalProfileId)
	}
	if filter.ServiceId > 0 {
		q = q.Joins("JOIN object_services os ON os.object_id = objects.id").
			Where("os.service_id = ?", filter.ServiceId)
	}
	if filter.TherapyId > 0 {
		q = q.Joins("JOIN object_therapies ot ON ot.object_id = objects.id").
			Where("ot.therapy_id = ?", filter.TherapyId)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*Object
	for _, preload := range objectPreloads {
		q = q.Preload(preload)
	}
	if err := q.Scopes(Paginate(page, limit)).Order("objects.id ASC").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
