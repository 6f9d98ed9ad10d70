package models

import (
	"log"

	"github.com/medvisor/sanatoria_backend/config"
)

func MigrateTable() {
	db := config.GetDB()
	err := db.AutoMigrate(
		&User{},
		&Country{},
		&Region{},
		&City{},
		&MedicalProfile{},
		&Disease{},
		&Therapy{},
		&Service{},
		&Object{},
		&Partner{},
		&Publication{},
		&Feedback{},
		&ModerationRecord{},
		&SearchOutboxRecord{},
		&History{},
	)
	if err != nil {
		log.Printf("auto-migration failed: %v", err)
		return
	}
	log.Println("auto-migration complete")
}
