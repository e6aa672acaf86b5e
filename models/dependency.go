package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// Dependency is one package aggregated across the manifests of all reviewed
// projects, with how many of them declare it as a direct dependency.
type Dependency struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Ecosystem string `json:"ecosystem" gorm:"uniqueIndex:idx_dependency_pkg"`
	Name      string `json:"name" gorm:"uniqueIndex:idx_dependency_pkg"`
	Count     int    `json:"count" gorm:"index"`

	// Package holds the registry metadata resolved for this dependency, when
	// the packages service knows it.
	Package datatypes.JSON `json:"package,omitempty"`
}

// PackageDoc decodes the resolved registry metadata.
func (d *Dependency) PackageDoc() (PackageDoc, bool) {
	var doc PackageDoc
	if len(d.Package) == 0 {
		return doc, false
	}
	if err := json.Unmarshal(d.Package, &doc); err != nil {
		return doc, false
	}
	return doc, true
}
