package services

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"greendex/clients"
	"greendex/models"
)

// PackageResolver resolves a package against the registry index. Tests
// substitute a stub.
type PackageResolver interface {
	LookupPackage(ecosystem, name string) (*models.PackageDoc, error)
}

// DependencyAggregator maintains the corpus-wide dependency table: which
// packages the reviewed projects build on, and how many of them share each.
type DependencyAggregator struct {
	db       *gorm.DB
	resolver PackageResolver
	logger   *zap.Logger
}

// NewDependencyAggregator creates an aggregator.
func NewDependencyAggregator(db *gorm.DB, resolver PackageResolver, logger *zap.Logger) *DependencyAggregator {
	return &DependencyAggregator{db: db, resolver: resolver, logger: logger}
}

// Aggregate rebuilds the dependency counts from the reviewed projects'
// manifests. Packages no longer referenced by any project are removed.
func (a *DependencyAggregator) Aggregate() error {
	var projects []models.Project
	if err := a.db.Select("id", "dependencies").Where("reviewed = ?", true).Find(&projects).Error; err != nil {
		return err
	}

	counts := map[models.DependencyPackage]int{}
	for i := range projects {
		for _, dep := range projects[i].DependencyPackages() {
			counts[dep]++
		}
	}

	var existing []models.Dependency
	if err := a.db.Find(&existing).Error; err != nil {
		return err
	}
	known := map[models.DependencyPackage]*models.Dependency{}
	for i := range existing {
		key := models.DependencyPackage{Ecosystem: existing[i].Ecosystem, Name: existing[i].Name}
		known[key] = &existing[i]
	}

	for dep, count := range counts {
		row, ok := known[dep]
		if !ok {
			row = &models.Dependency{Ecosystem: dep.Ecosystem, Name: dep.Name}
		}
		if ok && row.Count == count {
			continue
		}
		row.Count = count
		if err := a.db.Save(row).Error; err != nil {
			return err
		}
	}
	for dep, row := range known {
		if _, still := counts[dep]; still {
			continue
		}
		if err := a.db.Delete(row).Error; err != nil {
			return err
		}
	}

	a.logger.Info("aggregated dependencies", zap.Int("packages", len(counts)))
	return nil
}

// ResolvePackages enriches up to limit dependency rows that have no registry
// metadata yet. Unknown packages are left for the next run.
func (a *DependencyAggregator) ResolvePackages(limit int) error {
	var rows []models.Dependency
	err := a.db.Where("package IS NULL OR package = ''").
		Order("count DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return err
	}

	for i := range rows {
		doc, err := a.resolver.LookupPackage(rows[i].Ecosystem, rows[i].Name)
		if err != nil {
			if errors.Is(err, clients.ErrNotFound) {
				continue
			}
			a.logger.Warn("package resolution failed",
				zap.String("ecosystem", rows[i].Ecosystem),
				zap.String("name", rows[i].Name),
				zap.Error(err))
			continue
		}
		raw, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		rows[i].Package = raw
		if err := a.db.Save(&rows[i]).Error; err != nil {
			return err
		}
	}
	return nil
}
