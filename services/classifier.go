package services

import (
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"greendex/models"
)

// RelevancePolicy decides how many relevant-keyword matches a project needs
// before it counts as on-topic, and which keywords veto it outright.
type RelevancePolicy struct {
	Name       string
	MinMatches int
	StopWords  []string
}

// DefaultRelevancePolicy accepts any project with at least one matching
// keyword. An earlier, stricter policy required three matches and carried a
// veto list; it remains available for comparison runs.
var (
	DefaultRelevancePolicy = RelevancePolicy{Name: "default", MinMatches: 1}
	StrictRelevancePolicy  = RelevancePolicy{Name: "strict", MinMatches: 3}
)

// Accepts reports whether a project with the given matches passes the
// policy.
func (rp RelevancePolicy) Accepts(matches, stopWordMatches int) bool {
	if stopWordMatches > 0 {
		return false
	}
	return matches >= rp.MinMatches
}

// Classifier decides topical relevance against the keyword corpus of the
// reviewed projects.
type Classifier struct {
	db     *gorm.DB
	policy RelevancePolicy
	now    func() time.Time

	relevant *Cache[[]string]
}

// NewClassifier builds a classifier over the project corpus. now is
// injectable for tests.
func NewClassifier(db *gorm.DB, policy RelevancePolicy, ttl time.Duration, now func() time.Time) *Classifier {
	c := &Classifier{db: db, policy: policy, now: now}
	if c.now == nil {
		c.now = time.Now
	}
	c.relevant = NewCache(ttl, now, c.loadRelevantKeywords)
	return c
}

// loadRelevantKeywords derives the relevant-keyword corpus: every keyword
// appearing on more than one reviewed project, most frequent first, minus
// the generic stoplist.
func (c *Classifier) loadRelevantKeywords() ([]string, error) {
	var projects []models.Project
	if err := c.db.Select("keywords").Where("reviewed = ?", true).Find(&projects).Error; err != nil {
		return nil, err
	}

	counts := map[string]int{}
	var order []string
	for _, p := range projects {
		for _, kw := range p.Keywords {
			if counts[kw] == 0 {
				order = append(order, kw)
			}
			counts[kw]++
		}
	}

	var relevant []string
	for _, kw := range order {
		if counts[kw] > 1 && !IgnoredWord(kw) {
			relevant = append(relevant, kw)
		}
	}
	sort.SliceStable(relevant, func(i, j int) bool {
		return counts[relevant[i]] > counts[relevant[j]]
	})
	return relevant, nil
}

// RelevantKeywords returns the cached relevant-keyword corpus.
func (c *Classifier) RelevantKeywords() ([]string, error) {
	return c.relevant.Get()
}

// InvalidateKeywords drops the cached corpus, forcing a rebuild on the next
// classification.
func (c *Classifier) InvalidateKeywords() {
	c.relevant.Invalidate()
}

// MatchingTopics returns the project keywords present in the relevant
// corpus, compared case-insensitively.
func (c *Classifier) MatchingTopics(p *models.Project) ([]string, error) {
	relevant, err := c.RelevantKeywords()
	if err != nil {
		return nil, err
	}
	relevantSet := make(map[string]struct{}, len(relevant))
	for _, kw := range relevant {
		relevantSet[strings.ToLower(kw)] = struct{}{}
	}

	var matches []string
	for _, kw := range p.Keywords {
		if _, ok := relevantSet[strings.ToLower(kw)]; ok {
			matches = append(matches, kw)
		}
	}
	return matches, nil
}

// GoodTopics reports whether the project passes the relevance policy.
func (c *Classifier) GoodTopics(p *models.Project) (bool, error) {
	matches, err := c.MatchingTopics(p)
	if err != nil {
		return false, err
	}
	stopWords := 0
	for _, kw := range p.Keywords {
		for _, stop := range c.policy.StopWords {
			if strings.EqualFold(kw, stop) {
				stopWords++
			}
		}
	}
	return c.policy.Accepts(len(matches), stopWords), nil
}

// MatchingCriteria reports whether an unreviewed project qualifies as a
// directory candidate: on-topic, used by outsiders, openly licensed and
// recently active.
func (c *Classifier) MatchingCriteria(p *models.Project) (bool, error) {
	good, err := c.GoodTopics(p)
	if err != nil {
		return false, err
	}
	return good && p.ExternalUsers() && p.OpenSourceLicense() && p.Active(c.now()), nil
}
