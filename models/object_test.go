package models

import (
	"encoding/json"
	"testing"
)

func TestObjectApplyModerated_ValueKinds(t *testing.T) {
	o := &Object{ID: 33, NameRu: "Жемчужина", NameEn: "Pearl"}
	reg := RegistryFor(ModeratedEntityObject)

	if err := o.ApplyModerated(nil, reg["description_ru"], json.RawMessage(`"Новое описание"`)); err != nil {
		t.Fatal(err)
	}
	if o.DescriptionRu != "Новое описание" {
		t.Fatalf("description_ru not applied: %q", o.DescriptionRu)
	}

	if err := o.ApplyModerated(nil, reg["stars"], json.RawMessage(`4`)); err != nil {
		t.Fatal(err)
	}
	if o.Stars != 4 {
		t.Fatalf("stars not applied: %d", o.Stars)
	}

	if err := o.ApplyModerated(nil, reg["documents"], json.RawMessage(`["documents/license.pdf"]`)); err != nil {
		t.Fatal(err)
	}
	if len(o.Documents) != 1 || o.Documents[0] != "documents/license.pdf" {
		t.Fatalf("documents not applied: %v", o.Documents)
	}

	contacts := `[{"kind":"email","value":"booking@pearl.example"}]`
	if err := o.ApplyModerated(nil, reg["contacts"], json.RawMessage(contacts)); err != nil {
		t.Fatal(err)
	}
	if len(o.Contacts) != 1 || o.Contacts[0].Value != "booking@pearl.example" {
		t.Fatalf("contacts not applied: %v", o.Contacts)
	}
}

func TestObjectApplyModerated_LocaleVariantsAreIsolated(t *testing.T) {
	o := &Object{DescriptionRu: "русский", DescriptionEn: "english"}
	reg := RegistryFor(ModeratedEntityObject)

	if err := o.ApplyModerated(nil, reg["description_en"], json.RawMessage(`"updated english"`)); err != nil {
		t.Fatal(err)
	}
	if o.DescriptionRu != "русский" {
		t.Fatalf("russian text must be untouched, got %q", o.DescriptionRu)
	}
	if o.DescriptionEn != "updated english" {
		t.Fatalf("english text not applied: %q", o.DescriptionEn)
	}
}

func TestObjectSearchDocuments(t *testing.T) {
	o := &Object{
		ID:            33,
		NameRu:        "Жемчужина",
		NameEn:        "Pearl",
		DescriptionRu: "У моря",
		DescriptionEn: "By the sea",
		Services:      []*Service{{ID: 1, NameRu: "Бассейн", NameEn: "Pool"}},
		Therapies:     []*Therapy{{ID: 2, NameRu: "Массаж", NameEn: "Massage"}},
	}

	docs := o.SearchDocuments()
	if len(docs) != len(SupportedLocales) {
		t.Fatalf("expected one document per locale, got %d", len(docs))
	}

	byLocale := make(map[string]SearchDocument, len(docs))
	for _, d := range docs {
		byLocale[d.Locale] = d
	}

	ru := byLocale["ru"]
	if ru.Title != "Жемчужина" || ru.Description != "У моря" {
		t.Fatalf("wrong ru projection: %+v", ru)
	}
	if ru.IndexName() != "objects-ru" {
		t.Fatalf("wrong index name: %s", ru.IndexName())
	}
	if len(ru.Tags) != 2 || ru.Tags[0] != "Бассейн" || ru.Tags[1] != "Массаж" {
		t.Fatalf("wrong ru tags: %v", ru.Tags)
	}

	en := byLocale["en"]
	if en.Title != "Pearl" || en.Tags[0] != "Pool" {
		t.Fatalf("wrong en projection: %+v", en)
	}
	if en.EntityId != 33 || en.EntityType != "object" {
		t.Fatalf("wrong identity: %+v", en)
	}
}
