package services

import (
	"errors"
	"sort"
	"strings"

	"github.com/kljensen/snowball"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"greendex/models"
)

// maxCommittersPerSync caps how many committers of one project are
// reconciled per sync. Committers are ranked by commit count first, so the
// cap drops only long-tail one-commit authors.
const maxCommittersPerSync = 50

// Reconciler maintains the cross-project contributor records derived from
// raw committer data.
type Reconciler struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewReconciler creates a reconciler.
func NewReconciler(db *gorm.DB, logger *zap.Logger) *Reconciler {
	return &Reconciler{db: db, logger: logger}
}

// ReconcileProject folds a project's committers into the contributor store.
// Only reviewed projects feed the store; committers of unreviewed candidates
// are never persisted. Bot accounts and committers without an email are
// skipped, and a failure on one committer is logged without blocking the
// rest.
func (r *Reconciler) ReconcileProject(p *models.Project) error {
	if !p.Reviewed {
		return nil
	}
	committers := p.RawCommitters()
	if len(committers) == 0 {
		return nil
	}

	sort.SliceStable(committers, func(i, j int) bool {
		return committers[i].Count > committers[j].Count
	})
	if len(committers) > maxCommittersPerSync {
		committers = committers[:maxCommittersPerSync]
	}

	for _, cm := range committers {
		if cm.Bot() {
			continue
		}
		if err := r.reconcileCommitter(p, cm); err != nil {
			r.logger.Warn("skipping committer",
				zap.Uint("project_id", p.ID),
				zap.String("email", cm.Email),
				zap.Error(err))
		}
	}
	return nil
}

func (r *Reconciler) reconcileCommitter(p *models.Project, cm models.Committer) error {
	email := strings.ToLower(strings.TrimSpace(models.ScrubControl(cm.Email)))
	if email == "" {
		return nil
	}
	contributor, err := r.findOrCreate(email)
	if err != nil {
		return err
	}
	contributor.Merge(cm)
	r.mergeTopics(contributor, p.Keywords)
	contributor.AddCategories(p.Category, p.SubCategory)
	contributor.AddReviewedProject(p.ID)
	if err := r.db.Save(contributor).Error; err != nil {
		return err
	}
	return r.upsertContribution(p.ID, contributor.ID, cm.Count)
}

// findOrCreate locates the contributor row for an email, the identity under
// which committers are deduplicated across projects.
func (r *Reconciler) findOrCreate(email string) (*models.Contributor, error) {
	var contributor models.Contributor
	err := r.db.Where("email = ?", email).First(&contributor).Error
	if err == nil {
		return &contributor, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	contributor = models.Contributor{Email: email}
	if err := r.db.Create(&contributor).Error; err != nil {
		return nil, err
	}
	return &contributor, nil
}

// mergeTopics adds the project's keywords to the contributor's topic list,
// skipping the generic stoplist and stopping at the topic cap.
func (r *Reconciler) mergeTopics(c *models.Contributor, keywords []string) {
	seen := make(map[string]struct{}, len(c.Topics))
	topics := []string(c.Topics)
	for _, t := range topics {
		seen[strings.ToLower(t)] = struct{}{}
	}
	for _, kw := range keywords {
		if len(topics) >= models.MaxContributorTopics {
			break
		}
		kw = strings.TrimSpace(models.ScrubControl(kw))
		if kw == "" || IgnoredWord(strings.ToLower(kw)) {
			continue
		}
		if _, dup := seen[strings.ToLower(kw)]; dup {
			continue
		}
		seen[strings.ToLower(kw)] = struct{}{}
		topics = append(topics, kw)
	}
	c.Topics = topics
}

func (r *Reconciler) upsertContribution(projectID, contributorID uint, commits int) error {
	var contribution models.Contribution
	err := r.db.Where("project_id = ? AND contributor_id = ?", projectID, contributorID).
		First(&contribution).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		contribution = models.Contribution{
			ProjectID:     projectID,
			ContributorID: contributorID,
			Commits:       commits,
		}
		return r.db.Create(&contribution).Error
	}
	if err != nil {
		return err
	}
	contribution.Commits = commits
	return r.db.Save(&contribution).Error
}

// Contributors loads the reconciled contributors of a project.
func (r *Reconciler) Contributors(p *models.Project) ([]models.Contributor, error) {
	var contributors []models.Contributor
	err := r.db.
		Joins("JOIN contributions ON contributions.contributor_id = contributors.id").
		Where("contributions.project_id = ?", p.ID).
		Order("contributions.commits DESC").
		Find(&contributors).Error
	return contributors, err
}

// TopicCount is one contributor topic with how many contributors carry it.
type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

// ContributorTopics derives what else a project's contributors work on:
// their accumulated topics, minus the project's own keywords and the
// stoplist, grouped by word stem so singular and plural spellings count
// together. Groups below minimum are noise and dropped.
func (r *Reconciler) ContributorTopics(p *models.Project, limit, minimum int) ([]TopicCount, error) {
	contributors, err := r.Contributors(p)
	if err != nil {
		return nil, err
	}
	if len(contributors) < 2 {
		return nil, nil
	}

	ignored := make(map[string]struct{}, len(p.Keywords))
	for _, kw := range p.Keywords {
		ignored[strings.ToLower(kw)] = struct{}{}
	}

	// representative original spelling and count per stem
	stemFirst := map[string]string{}
	stemCount := map[string]int{}
	var stemOrder []string
	for _, c := range contributors {
		for _, topic := range c.Topics {
			lower := strings.ToLower(topic)
			if _, skip := ignored[lower]; skip {
				continue
			}
			if IgnoredWord(lower) {
				continue
			}
			stem, err := snowball.Stem(lower, "english", false)
			if err != nil {
				stem = lower
			}
			if _, known := stemFirst[stem]; !known {
				stemFirst[stem] = topic
				stemOrder = append(stemOrder, stem)
			}
			stemCount[stem]++
		}
	}

	var topics []TopicCount
	for _, stem := range stemOrder {
		if stemCount[stem] < minimum {
			continue
		}
		topics = append(topics, TopicCount{Topic: stemFirst[stem], Count: stemCount[stem]})
	}
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].Count > topics[j].Count
	})
	if len(topics) > limit {
		topics = topics[:limit]
	}
	return topics, nil
}

// UpdateKeywordsFromContributors stores the derived contributor topics on
// the project. An empty derivation leaves the previous value alone.
func (r *Reconciler) UpdateKeywordsFromContributors(p *models.Project) error {
	topics, err := r.ContributorTopics(p, 10, 3)
	if err != nil {
		return err
	}
	if len(topics) == 0 {
		return nil
	}
	keywords := make([]string, 0, len(topics))
	for _, t := range topics {
		keywords = append(keywords, t.Topic)
	}
	p.KeywordsFromContributors = keywords
	return r.db.Model(p).Update("keywords_from_contributors", p.KeywordsFromContributors).Error
}
