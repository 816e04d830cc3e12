package scope

import "gorm.io/gorm"

func OrderByCreatedDesc(db *gorm.DB) *gorm.DB {
	return db.Order("created_at DESC").Order("id DESC")
}

// StageOrder is the display order of workflow stages.
func StageOrder(db *gorm.DB) *gorm.DB {
	return db.Order("sort_order ASC").Order("name ASC")
}

func OrderByDeadlineAsc(db *gorm.DB) *gorm.DB {
	return db.Order("deadline ASC")
}
