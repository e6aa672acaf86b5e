package services

import (
	"strings"
	"time"

	"gorm.io/gorm"

	"greendex/models"
)

// CategorySuggestion is one proposed category with the number of keyword
// matches supporting it.
type CategorySuggestion struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// keywordProfiles maps a category or sub-category to the set of keywords
// that appear only under it.
type keywordProfiles map[string]map[string]struct{}

// Suggester proposes categories for uncategorized projects by comparing
// their keywords with the distinguishing keywords of each existing category.
type Suggester struct {
	db *gorm.DB

	categories    *Cache[keywordProfiles]
	subCategories *Cache[keywordProfiles]
}

// NewSuggester builds a suggester over the categorized project corpus.
func NewSuggester(db *gorm.DB, ttl time.Duration, now func() time.Time) *Suggester {
	s := &Suggester{db: db}
	s.categories = NewCache(ttl, now, func() (keywordProfiles, error) {
		return s.loadProfiles("category")
	})
	s.subCategories = NewCache(ttl, now, func() (keywordProfiles, error) {
		return s.loadProfiles("sub_category")
	})
	return s
}

// loadProfiles computes the unique-keyword profile per value of the given
// column. A keyword lands in a profile only when no project outside that
// group carries it, so shared vocabulary never drives a suggestion.
func (s *Suggester) loadProfiles(column string) (keywordProfiles, error) {
	var projects []models.Project
	err := s.db.Select("keywords", column).
		Where(column + " IS NOT NULL AND " + column + " <> ''").
		Find(&projects).Error
	if err != nil {
		return nil, err
	}

	groups := map[string]struct{}{}
	keywordGroups := map[string]map[string]struct{}{}
	for _, p := range projects {
		group := p.Category
		if column == "sub_category" {
			group = p.SubCategory
		}
		groups[group] = struct{}{}
		for _, kw := range p.Keywords {
			kw = strings.ToLower(kw)
			if keywordGroups[kw] == nil {
				keywordGroups[kw] = map[string]struct{}{}
			}
			keywordGroups[kw][group] = struct{}{}
		}
	}

	profiles := make(keywordProfiles, len(groups))
	for group := range groups {
		profiles[group] = map[string]struct{}{}
	}
	for kw, inGroups := range keywordGroups {
		if len(inGroups) != 1 || IgnoredWord(kw) {
			continue
		}
		for group := range inGroups {
			profiles[group][kw] = struct{}{}
		}
	}
	return profiles, nil
}

// Invalidate drops both profile caches, forcing a rebuild after category
// assignments change.
func (s *Suggester) Invalidate() {
	s.categories.Invalidate()
	s.subCategories.Invalidate()
}

func suggest(p *models.Project, profiles keywordProfiles) *CategorySuggestion {
	if len(p.Keywords) == 0 {
		return nil
	}
	var best *CategorySuggestion
	for group, profile := range profiles {
		score := 0
		for _, kw := range p.Keywords {
			if _, ok := profile[strings.ToLower(kw)]; ok {
				score++
			}
		}
		if best == nil || score > best.Score {
			best = &CategorySuggestion{Name: group, Score: score}
		}
	}
	if best == nil || best.Score == 0 {
		return nil
	}
	return best
}

// SuggestCategory proposes the best-matching category, or nil when no
// category's distinguishing keywords overlap the project's.
func (s *Suggester) SuggestCategory(p *models.Project) (*CategorySuggestion, error) {
	profiles, err := s.categories.Get()
	if err != nil {
		return nil, err
	}
	return suggest(p, profiles), nil
}

// SuggestSubCategory proposes the best-matching sub-category.
func (s *Suggester) SuggestSubCategory(p *models.Project) (*CategorySuggestion, error) {
	profiles, err := s.subCategories.Get()
	if err != nil {
		return nil, err
	}
	return suggest(p, profiles), nil
}
