package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Issue is one issue or pull request mirrored from the issues service. Rows
// are keyed by the upstream UUID and upserted on each sync.
type Issue struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectID uint   `json:"project_id" gorm:"index"`
	UUID      string `json:"uuid" gorm:"uniqueIndex"`

	Number            int                         `json:"number"`
	State             string                      `json:"state"`
	Title             string                      `json:"title"`
	User              string                      `json:"user"`
	Labels            datatypes.JSONSlice[string] `json:"labels"`
	CommentsCount     int                         `json:"comments_count"`
	PullRequest       bool                        `json:"pull_request"`
	AuthorAssociation string                      `json:"author_association"`
	StateReason       string                      `json:"state_reason"`
	TimeToClose       int                         `json:"time_to_close"`
	ClosedAt          *time.Time                  `json:"closed_at,omitempty"`
	MergedAt          *time.Time                  `json:"merged_at,omitempty"`
	OpenedAt          *time.Time                  `json:"opened_at,omitempty"`
	LastActivityAt    *time.Time                  `json:"last_activity_at,omitempty"`
	HTMLURL           string                      `json:"html_url"`
}

// ApplyDoc copies the upstream issue row onto the mirror record.
func (i *Issue) ApplyDoc(doc IssueDoc) {
	i.UUID = doc.UUID
	i.Number = doc.Number
	i.State = doc.State
	i.Title = ScrubControl(doc.Title)
	i.User = doc.User
	i.Labels = doc.Labels
	i.CommentsCount = doc.CommentsCount
	i.PullRequest = doc.PullRequest
	i.AuthorAssociation = doc.AuthorAssociation
	i.StateReason = doc.StateReason
	i.TimeToClose = doc.TimeToClose
	i.ClosedAt = doc.ClosedAt
	i.MergedAt = doc.MergedAt
	i.OpenedAt = doc.CreatedAt
	i.LastActivityAt = doc.UpdatedAt
	i.HTMLURL = doc.HTMLURL
}

// goodFirstIssueLabels are the label spellings that mark an issue as suited
// to new contributors.
var goodFirstIssueLabels = map[string]struct{}{
	"good first issue":  {},
	"good-first-issue":  {},
	"beginner friendly": {},
	"beginner-friendly": {},
	"first-timers-only": {},
	"up-for-grabs":      {},
	"help wanted":       {},
	"easy":              {},
}

// GoodFirstIssue reports whether the issue carries a newcomer-friendly label.
func (i *Issue) GoodFirstIssue() bool {
	for _, label := range i.Labels {
		if _, ok := goodFirstIssueLabels[strings.ToLower(strings.TrimSpace(label))]; ok {
			return true
		}
	}
	return false
}

// Bot reports whether the issue was opened by an automation account.
func (i *Issue) Bot() bool {
	user := strings.ToLower(i.User)
	return strings.Contains(user, "[bot]") || BotName(user)
}
