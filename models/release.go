package models

import (
	"time"
)

// Release is one repository release mirrored from the repos service, keyed
// by the upstream UUID.
type Release struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	ProjectID uint   `json:"project_id" gorm:"index"`
	UUID      string `json:"uuid" gorm:"uniqueIndex"`

	TagName         string     `json:"tag_name"`
	TargetCommitish string     `json:"target_commitish"`
	Name            string     `json:"name"`
	Body            string     `json:"body" gorm:"type:text"`
	Draft           bool       `json:"draft"`
	Prerelease      bool       `json:"prerelease"`
	Author          string     `json:"author"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
	TagURL          string     `json:"tag_url"`
	HTMLURL         string     `json:"html_url"`
}

// ApplyDoc copies the upstream release row onto the mirror record.
func (r *Release) ApplyDoc(doc ReleaseDoc) {
	r.UUID = doc.UUID
	r.TagName = doc.TagName
	r.TargetCommitish = doc.TargetCommitish
	r.Name = ScrubControl(doc.Name)
	r.Body = ScrubControl(doc.Body)
	r.Draft = doc.Draft
	r.Prerelease = doc.Prerelease
	r.Author = doc.Author
	r.PublishedAt = doc.PublishedAt
	r.TagURL = doc.TagURL
	r.HTMLURL = doc.HTMLURL
}
