package models

import (
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Accumulated lists on a contributor are capped. A prolific committer shows
// up in many reviewed projects over years; without the caps their record
// grows without bound.
const (
	MaxContributorTopics     = 100
	MaxContributorCategories = 20
	MaxContributorProjects   = 200
)

// Contributor is one human committer reconciled across reviewed projects,
// deduplicated by email. Bots never get a row.
type Contributor struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name  string `json:"name,omitempty"`
	Email string `json:"email" gorm:"uniqueIndex"`
	Login string `json:"login,omitempty" gorm:"index"`

	// Topics are the keywords of the reviewed projects this contributor
	// commits to, merged under the topic cap.
	Topics        datatypes.JSONSlice[string] `json:"topics"`
	Categories    datatypes.JSONSlice[string] `json:"categories"`
	SubCategories datatypes.JSONSlice[string] `json:"sub_categories"`

	ReviewedProjectIDs    datatypes.JSONSlice[uint] `json:"reviewed_project_ids"`
	ReviewedProjectsCount int                       `json:"reviewed_projects_count"`

	Contributions []Contribution `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// Contribution links a contributor to one project with their commit count
// there.
type Contribution struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	ProjectID     uint      `json:"project_id" gorm:"uniqueIndex:idx_contribution_pair"`
	ContributorID uint      `json:"contributor_id" gorm:"uniqueIndex:idx_contribution_pair"`
	Commits       int       `json:"commits"`
}

// Merge folds a raw committer record into the contributor. It copies every
// identity attribute the record carries except the commit count, which is
// per-project and lives on the Contribution row.
func (c *Contributor) Merge(cm Committer) {
	if name := strings.TrimSpace(ScrubControl(cm.Name)); name != "" {
		c.Name = name
	}
	if email := strings.ToLower(strings.TrimSpace(ScrubControl(cm.Email))); email != "" {
		c.Email = email
	}
	if login := strings.TrimSpace(ScrubControl(cm.Login)); login != "" {
		c.Login = login
	}
}

// AddReviewedProject records a reviewed project on the contributor,
// deduplicated and capped. The denormalized count always mirrors the list
// length.
func (c *Contributor) AddReviewedProject(projectID uint) {
	for _, id := range c.ReviewedProjectIDs {
		if id == projectID {
			return
		}
	}
	if len(c.ReviewedProjectIDs) < MaxContributorProjects {
		c.ReviewedProjectIDs = append(c.ReviewedProjectIDs, projectID)
	}
	c.ReviewedProjectsCount = len(c.ReviewedProjectIDs)
}

// AddCategories accumulates a project's category path under the category
// caps. Blank values are dropped.
func (c *Contributor) AddCategories(category, subCategory string) {
	categories := NewBoundedSet(MaxContributorCategories, c.Categories...)
	categories.Add(category)
	c.Categories = categories.Items()

	subCategories := NewBoundedSet(MaxContributorCategories, c.SubCategories...)
	subCategories.Add(subCategory)
	c.SubCategories = subCategories.Items()
}

// ignoredEmails are committer emails that are known automation accounts but
// do not match any of the structural bot patterns.
var ignoredEmails = map[string]struct{}{
	"badger@gitter.im":                       {},
	"you@example.com":                        {},
	"actions@github.com":                     {},
	"badger@codacy.com":                      {},
	"snyk-bot@snyk.io":                       {},
	"dependabot[bot]@users.noreply.github.com":         {},
	"renovate[bot]@app.renovatebot.com":                {},
	"dependabot-preview[bot]@users.noreply.github.com": {},
	"myrmecocystus+ropenscibot@gmail.com":    {},
	"support@dependabot.com":                 {},
	"action@github.com":                      {},
	"support@stickler-ci.com":                {},
	"github-bot@pyup.io":                     {},
	"iron@waffle.io":                         {},
	"imgbothelp@gmail.com":                   {},
	"compathelper_noreply@julialang.org":     {},
	"bot@deepsource.io":                      {},
	"badges@fossa.io":                        {},
	"github-actions@github.com":              {},
	"bot@stepsecurity.io":                    {},
	"49699333+dependabot[bot]@users.noreply.github.com":      {},
	"41898282+github-actions[bot]@users.noreply.github.com":  {},
	"66853113+pre-commit-ci[bot]@users.noreply.github.com":   {},
	"46447321+allcontributors[bot]@users.noreply.github.com": {},
}

var numericBotEmailRe = regexp.MustCompile(`^\d+\+.+\[bot\]@users\.noreply\.github\.com$`)

// BotEmail reports whether a committer email belongs to an automation
// account.
func BotEmail(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	if _, ignored := ignoredEmails[email]; ignored {
		return true
	}
	if strings.Contains(email, "[bot]") {
		return true
	}
	if strings.HasPrefix(email, "bot@") {
		return true
	}
	return numericBotEmailRe.MatchString(email)
}

// knownBotNames are committer names of widely deployed automation that do
// not carry a bot suffix.
var knownBotNames = map[string]struct{}{
	"github actions": {},
	"dependabot":     {},
	"pre-commit-ci":  {},
	"allcontributors": {},
}

// BotName reports whether a committer display name looks like an automation
// account. A trailing "bot" only counts when it is glued to the preceding
// word, so "Marvin Botsford" passes but "renovate-bot" does not.
func BotName(name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	if strings.Contains(name, "[bot]") {
		return true
	}
	if _, known := knownBotNames[name]; known {
		return true
	}
	return strings.HasSuffix(name, "bot") && !strings.HasSuffix(name, " bot")
}

// Bot reports whether a raw committer record is an automation account, on
// any of its identity fields.
func (cm Committer) Bot() bool {
	if strings.Contains(strings.ToLower(cm.Login), "[bot]") {
		return true
	}
	return BotEmail(cm.Email) || BotName(cm.Name)
}
