package specification

import "gorm.io/gorm"

// Specification narrows a query. Repositories apply them in the order given,
// so ordering and pagination specs go last.
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// ApplyAll chains specs onto db.
func ApplyAll(db *gorm.DB, specs ...Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}
