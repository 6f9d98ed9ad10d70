package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestRegistryFor(t *testing.T) {
	if RegistryFor(ModeratedEntityObject) == nil {
		t.Fatal("object registry missing")
	}
	if RegistryFor(ModeratedEntityPartner) == nil {
		t.Fatal("partner registry missing")
	}
	if RegistryFor(ModeratedEntityPublication) == nil {
		t.Fatal("publication registry missing")
	}
	if RegistryFor(ModeratedEntityType("booking")) != nil {
		t.Fatal("unknown entity type must have no registry")
	}
}

func TestRegistry_BilingualFieldsAreIndependent(t *testing.T) {
	reg := RegistryFor(ModeratedEntityObject)
	ru, okRu := reg["description_ru"]
	en, okEn := reg["description_en"]
	if !okRu || !okEn {
		t.Fatal("both locale variants must be registered")
	}
	if ru.Column == en.Column {
		t.Fatal("locale variants must map to distinct columns")
	}
}

func TestValidateFieldValue_Text(t *testing.T) {
	f := objectRegistry["description_ru"]
	if err := ValidateFieldValue(f, json.RawMessage(`"ok"`)); err != nil {
		t.Fatal(err)
	}
	if err := ValidateFieldValue(f, json.RawMessage(`42`)); err == nil {
		t.Fatal("number must not validate as text")
	}
}

func TestValidateFieldValue_StarsRange(t *testing.T) {
	f := objectRegistry["stars"]
	for _, n := range []string{`0`, `3`, `5`} {
		if err := ValidateFieldValue(f, json.RawMessage(n)); err != nil {
			t.Fatalf("stars=%s: %v", n, err)
		}
	}
	for _, n := range []string{`-1`, `6`, `"three"`} {
		if err := ValidateFieldValue(f, json.RawMessage(n)); err == nil {
			t.Fatalf("stars=%s must not validate", n)
		}
	}
}

func TestValidateFieldValue_Files(t *testing.T) {
	f := objectRegistry["documents"]
	if err := ValidateFieldValue(f, json.RawMessage(`["documents/a.pdf","documents/b.pdf"]`)); err != nil {
		t.Fatal(err)
	}
	if err := ValidateFieldValue(f, json.RawMessage(`"documents/a.pdf"`)); err == nil {
		t.Fatal("bare string must not validate as a file list")
	}
}

func TestValidateFieldValue_Contacts(t *testing.T) {
	f := objectRegistry["contacts"]
	valid := `[{"kind":"phone","value":"+7 495 123-45-67"},{"kind":"email","value":"info@example.com"},{"kind":"website","value":"https://example.com"}]`
	if err := ValidateFieldValue(f, json.RawMessage(valid)); err != nil {
		t.Fatal(err)
	}
	if err := ValidateFieldValue(f, json.RawMessage(`[{"kind":"email","value":"not-an-email"}]`)); err == nil {
		t.Fatal("invalid email must not validate")
	}
	if err := ValidateFieldValue(f, json.RawMessage(`[{"kind":"phone","value":"12"}]`)); err == nil {
		t.Fatal("invalid phone must not validate")
	}
}

func TestValidateFieldValue_Associations(t *testing.T) {
	f := objectRegistry["services"]
	valid := `[{"id":1,"name_ru":"Бассейн","name_en":"Pool"}]`
	if err := ValidateFieldValue(f, json.RawMessage(valid)); err != nil {
		t.Fatal(err)
	}
	if err := ValidateFieldValue(f, json.RawMessage(`[{"id":0,"name_ru":"x","name_en":"x"}]`)); err == nil {
		t.Fatal("zero id must not validate")
	}
	if err := ValidateFieldValue(f, json.RawMessage(`[1,2,3]`)); err == nil {
		t.Fatal("bare id list must not validate as a snapshot")
	}
}

func TestSummaryIds(t *testing.T) {
	raw := json.RawMessage(`[{"id":3},{"id":1},{"id":3}]`)
	ids, err := SummaryIds(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(ids, []int{3, 1}) {
		t.Fatalf("expected deduplicated ids in submission order, got %v", ids)
	}
}

func TestAssocExistenceRule(t *testing.T) {
	reg := RegistryFor(ModeratedEntityObject)
	raw := json.RawMessage(`[{"id":2,"name_ru":"грязелечение","name_en":"Mud therapy"},{"id":2},{"id":5}]`)

	rule, err := AssocExistenceRule(reg["therapies"], raw)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rule.Model.(Therapy); !ok {
		t.Fatalf("therapies must check the therapy table, got %T", rule.Model)
	}
	if !reflect.DeepEqual(rule.Ids, []int{2, 5}) {
		t.Fatalf("expected deduplicated ids, got %v", rule.Ids)
	}

	rule, err = AssocExistenceRule(reg["medical_profiles"], json.RawMessage(`[{"id":9}]`))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := rule.Model.(MedicalProfile); !ok {
		t.Fatalf("medical_profiles must check the medical profile table, got %T", rule.Model)
	}

	if _, err := AssocExistenceRule(ModeratedField{Name: "rooms", Kind: FieldKindAssoc, Assoc: "Rooms"}, json.RawMessage(`[]`)); err == nil {
		t.Fatal("unknown association must not produce a rule")
	}
}
