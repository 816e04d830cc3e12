package scope

import "gorm.io/gorm"

// Notes are soft-deleted through their status column instead of gorm's DeletedAt.
const deletedNoteStatus = "deleted"

func ExcludeDeletedNotes(db *gorm.DB) *gorm.DB {
	return db.Where("status <> ?", deletedNoteStatus)
}

func OnlyDeletedNotes(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", deletedNoteStatus)
}
