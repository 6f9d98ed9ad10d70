package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/medvisor/sanatoria_backend/utils"
)

// FieldKind drives how a moderated field's value is decoded and applied.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"     // string column (bilingual fields registered per locale)
	FieldKindScalar   FieldKind = "scalar"   // integer column (stars)
	FieldKindFiles    FieldKind = "files"    // list of stored object keys, JSON column
	FieldKindContacts FieldKind = "contacts" // list of contact entries, JSON column
	FieldKindAssoc    FieldKind = "assoc"    // many2many association, pending value is a denormalized snapshot
)

// ModeratedField describes one reviewable attribute of an entity type.
// Column is the live gorm column for value kinds; Assoc is the gorm
// association name for m2m kinds.
type ModeratedField struct {
	Name   string
	Kind   FieldKind
	Column string
	Assoc  string
}

type FieldRegistry map[string]ModeratedField

// Contact is one entry of a "contacts" moderated field.
type Contact struct {
	Kind    string `json:"kind" binding:"required,oneof=phone email website"`
	Value   string `json:"value" binding:"required"`
	Country string `json:"country,omitempty"`
}

// AssociationSummary is the denormalized snapshot stored for association-type
// pending values. It carries the referenced rows' display attributes because
// the pending set may point at rows not yet linked to the live entity.
type AssociationSummary struct {
	Id     int    `json:"id"`
	NameRu string `json:"name_ru"`
	NameEn string `json:"name_en"`
}

func (s AssociationSummary) Name(locale Locale) string {
	if locale == LocaleEn {
		return s.NameEn
	}
	return s.NameRu
}

func textField(name, column string) ModeratedField {
	return ModeratedField{Name: name, Kind: FieldKindText, Column: column}
}

func assocField(name, assoc string) ModeratedField {
	return ModeratedField{Name: name, Kind: FieldKindAssoc, Assoc: assoc}
}

func buildRegistry(fields ...ModeratedField) FieldRegistry {
	reg := make(FieldRegistry, len(fields))
	for _, f := range fields {
		reg[f.Name] = f
	}
	return reg
}

// Bilingual text fields are tracked as independent fields per locale; the
// field name encodes the language.
var objectRegistry = buildRegistry(
	textField("description_ru", "description_ru"),
	textField("description_en", "description_en"),
	textField("visa_ru", "visa_ru"),
	textField("visa_en", "visa_en"),
	textField("contraindications_ru", "contraindications_ru"),
	textField("contraindications_en", "contraindications_en"),
	textField("payment_description_ru", "payment_description_ru"),
	textField("payment_description_en", "payment_description_en"),
	ModeratedField{Name: "stars", Kind: FieldKindScalar, Column: "stars"},
	ModeratedField{Name: "documents", Kind: FieldKindFiles, Column: "documents"},
	ModeratedField{Name: "contacts", Kind: FieldKindContacts, Column: "contacts"},
	assocField("services", "Services"),
	assocField("medical_profiles", "MedicalProfiles"),
	assocField("therapies", "Therapies"),
)

var partnerRegistry = buildRegistry(
	textField("description_ru", "description_ru"),
	textField("description_en", "description_en"),
	ModeratedField{Name: "logo", Kind: FieldKindFiles, Column: "logo"},
	ModeratedField{Name: "contacts", Kind: FieldKindContacts, Column: "contacts"},
)

var publicationRegistry = buildRegistry(
	textField("title_ru", "title_ru"),
	textField("title_en", "title_en"),
	textField("body_ru", "body_ru"),
	textField("body_en", "body_en"),
	ModeratedField{Name: "cover", Kind: FieldKindFiles, Column: "cover"},
)

func RegistryFor(entityType ModeratedEntityType) FieldRegistry {
	switch entityType {
	case ModeratedEntityObject:
		return objectRegistry
	case ModeratedEntityPartner:
		return partnerRegistry
	case ModeratedEntityPublication:
		return publicationRegistry
	}
	return nil
}

// ValidateFieldValue checks a submitted raw value decodes to the field's
// shape. Contacts additionally go through phone validation.
func ValidateFieldValue(f ModeratedField, raw json.RawMessage) error {
	switch f.Kind {
	case FieldKindText:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return fmt.Errorf("field %s expects a string: %w", f.Name, err)
		}
	case FieldKindScalar:
		var n int
		if err := json.Unmarshal(raw, &n); err != nil {
			return fmt.Errorf("field %s expects an integer: %w", f.Name, err)
		}
		if f.Name == "stars" && (n < 0 || n > 5) {
			return errors.New("stars must be between 0 and 5")
		}
	case FieldKindFiles:
		var keys []string
		if err := json.Unmarshal(raw, &keys); err != nil {
			return fmt.Errorf("field %s expects a list of object keys: %w", f.Name, err)
		}
	case FieldKindContacts:
		var contacts []Contact
		if err := json.Unmarshal(raw, &contacts); err != nil {
			return fmt.Errorf("field %s expects a list of contacts: %w", f.Name, err)
		}
		for _, c := range contacts {
			switch c.Kind {
			case "phone":
				country := c.Country
				if country == "" {
					country = "RU"
				}
				if err := utils.ValidatePhoneNumber(c.Value, country); err != nil {
					return fmt.Errorf("contact %q: %w", c.Value, err)
				}
			case "email":
				if !utils.IsValidEmail(c.Value) {
					return fmt.Errorf("contact %q: invalid email", c.Value)
				}
			}
		}
	case FieldKindAssoc:
		var summaries []AssociationSummary
		if err := json.Unmarshal(raw, &summaries); err != nil {
			return fmt.Errorf("field %s expects a list of {id, name_ru, name_en}: %w", f.Name, err)
		}
		for _, s := range summaries {
			if s.Id <= 0 {
				return fmt.Errorf("field %s references an invalid id", f.Name)
			}
		}
	default:
		return fmt.Errorf("unknown field kind %q", f.Kind)
	}
	return nil
}

// AssocExistenceRule builds the referenced-row existence check for an
// association snapshot. The rules for one submission are evaluated in bulk by
// utils.MassValidateResourceIds before the transaction opens, so a snapshot
// can never stage ids that point at deleted dictionary rows.
func AssocExistenceRule(f ModeratedField, raw json.RawMessage) (utils.ValidationRule[int], error) {
	ids, err := SummaryIds(raw)
	if err != nil {
		return utils.ValidationRule[int]{}, err
	}
	rule := utils.ValidationRule[int]{Ids: ids, Message: f.Name + " references a missing row"}
	switch f.Assoc {
	case "Services":
		rule.Model = Service{}
	case "MedicalProfiles":
		rule.Model = MedicalProfile{}
	case "Therapies":
		rule.Model = Therapy{}
	default:
		return utils.ValidationRule[int]{}, fmt.Errorf("no association %q", f.Assoc)
	}
	return rule, nil
}

// SummaryIds extracts referenced ids from an association snapshot.
func SummaryIds(raw json.RawMessage) ([]int, error) {
	var summaries []AssociationSummary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		return nil, err
	}
	ids := make([]int, 0, len(summaries))
	for _, s := range summaries {
		ids = append(ids, s.Id)
	}
	return utils.UniqueSlice(ids), nil
}
