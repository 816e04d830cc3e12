package database

import (
	"notetrack-be/internal/model"

	"gorm.io/gorm"
)

// Models lists every table owned by this service, in dependency order.
// The users table belongs to the host platform and is only migrated in tests.
func Models() []interface{} {
	return []interface{}{
		&model.Stage{},
		&model.Note{},
		&model.NoteAuditLog{},
		&model.UserPreference{},
	}
}

func AutoMigrate(db *gorm.DB, includeUsers bool) error {
	models := Models()
	if includeUsers {
		models = append([]interface{}{&model.User{}}, models...)
	}
	return db.AutoMigrate(models...)
}
