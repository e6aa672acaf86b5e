package models

import (
	"time"
)

// The sync pipeline stores each upstream response wholesale as a JSON column
// and parses it on demand through the typed accessors on Project. A nil
// column means the document was never fetched; a non-nil column that decodes
// to an empty document means the upstream had nothing for us. Policy treats
// both the same today, but the accessors keep them distinguishable.

// RepositoryDoc is the repository metadata document from the repos service.
type RepositoryDoc struct {
	FullName        string            `json:"full_name"`
	Owner           string            `json:"owner"`
	Description     string            `json:"description"`
	Language        string            `json:"language"`
	Archived        bool              `json:"archived"`
	Fork            bool              `json:"fork"`
	Topics          []string          `json:"topics"`
	License         string            `json:"license"`
	StargazersCount int               `json:"stargazers_count"`
	OpenIssuesCount int               `json:"open_issues_count"`
	DefaultBranch   string            `json:"default_branch"`
	HTMLURL         string            `json:"html_url"`
	DownloadURL     string            `json:"download_url"`
	ManifestsURL    string            `json:"manifests_url"`
	IconURL         string            `json:"icon_url"`
	PushedAt        *time.Time        `json:"pushed_at"`
	CreatedAt       *time.Time        `json:"created_at"`
	Host            RepositoryHost    `json:"host"`
	Metadata        *RepositoryFiles  `json:"metadata"`
	OwnerRecord     *OwnerRecordStub  `json:"owner_record"`
}

// RepositoryHost identifies the code host a repository lives on.
type RepositoryHost struct {
	Name string `json:"name"`
}

// RepositoryFiles carries the special files the repos service detected in
// the default branch, keyed by role (readme, citation, license, ...).
type RepositoryFiles struct {
	Files   map[string]string `json:"files"`
	Funding map[string]any    `json:"funding"`
}

// OwnerRecordStub is the embedded owner summary on a repository document.
type OwnerRecordStub struct {
	Login    string         `json:"login"`
	Metadata map[string]any `json:"metadata"`
}

// OwnerDoc is the owner metadata document from the repos service.
type OwnerDoc struct {
	Login   string `json:"login"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Website string `json:"website"`
}

// PackageDoc is one package registry match for a repository.
type PackageDoc struct {
	Name                   string              `json:"name"`
	Ecosystem              string              `json:"ecosystem"`
	Keywords               []string            `json:"keywords"`
	Licenses               string              `json:"licenses"`
	Downloads              int64               `json:"downloads"`
	DownloadsPeriod        string              `json:"downloads_period"`
	DependentPackagesCount int64               `json:"dependent_packages_count"`
	DependentReposCount    int64               `json:"dependent_repos_count"`
	DockerDownloadsCount   int64               `json:"docker_downloads_count"`
	DockerDependentsCount  int64               `json:"docker_dependents_count"`
	Maintainers            []PackageMaintainer `json:"maintainers"`
	Registry               PackageRegistry     `json:"registry"`
	RepositoryURL          string              `json:"repository_url"`
	Metadata               map[string]any      `json:"metadata"`
	Rankings               PackageRankings     `json:"rankings"`
	Status                 string              `json:"status"`
}

// PackageMaintainer is one maintainer entry on a package document.
type PackageMaintainer struct {
	UUID string `json:"uuid"`
}

// PackageRegistry identifies the registry a package came from.
type PackageRegistry struct {
	Name string `json:"name"`
}

// PackageRankings carries the registry popularity rankings for a package.
type PackageRankings struct {
	Average float64 `json:"average"`
}

// CommitsDoc is the commit statistics document from the commits service.
type CommitsDoc struct {
	TotalCommitters         int         `json:"total_committers"`
	PastYearTotalCommits    int         `json:"past_year_total_commits"`
	PastYearTotalBotCommits int         `json:"past_year_total_bot_commits"`
	Committers              []Committer `json:"committers"`
}

// Committer is one raw committer record with its per-repository commit count.
type Committer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Login string `json:"login"`
	Count int    `json:"count"`
}

// IssueStatsDoc is the issue statistics document from the issues service.
type IssueStatsDoc struct {
	IssuesURL                        string         `json:"issues_url"`
	IssueAuthorAssociationsCount     map[string]int `json:"issue_author_associations_count"`
	PullRequestAuthorAssociationsCnt map[string]int `json:"pull_request_author_associations_count"`
	PastYearIssuesCount              *int           `json:"past_year_issues_count"`
	PastYearBotIssuesCount           int            `json:"past_year_bot_issues_count"`
	PastYearPullRequestsCount        *int           `json:"past_year_pull_requests_count"`
	PastYearBotPullRequestsCount     int            `json:"past_year_bot_pull_requests_count"`
}

// ManifestDoc is one dependency manifest with its parsed dependencies.
type ManifestDoc struct {
	Dependencies []ManifestDependency `json:"dependencies"`
}

// ManifestDependency is a single declared dependency inside a manifest.
type ManifestDependency struct {
	Ecosystem   string `json:"ecosystem"`
	PackageName string `json:"package_name"`
	Direct      bool   `json:"direct"`
}

// EventsDoc groups the all-time and trailing-year event summaries from the
// timeline service.
type EventsDoc struct {
	Total    map[string]any `json:"total"`
	LastYear map[string]any `json:"last_year"`
}

// JossDoc is the paper metadata for a project published in the Journal of
// Open Source Software.
type JossDoc struct {
	Title string `json:"title"`
	DOI   string `json:"doi"`
	State string `json:"state"`
}

// IssueDoc is one issue or pull request row from the issues service list
// endpoint.
type IssueDoc struct {
	UUID              string     `json:"uuid"`
	Number            int        `json:"number"`
	State             string     `json:"state"`
	Title             string     `json:"title"`
	User              string     `json:"user"`
	Labels            []string   `json:"labels"`
	CommentsCount     int        `json:"comments_count"`
	PullRequest       bool       `json:"pull_request"`
	AuthorAssociation string     `json:"author_association"`
	StateReason       string     `json:"state_reason"`
	TimeToClose       int        `json:"time_to_close"`
	ClosedAt          *time.Time `json:"closed_at"`
	MergedAt          *time.Time `json:"merged_at"`
	CreatedAt         *time.Time `json:"created_at"`
	UpdatedAt         *time.Time `json:"updated_at"`
	HTMLURL           string     `json:"html_url"`
}

// ReleaseDoc is one release row from the repos service releases endpoint.
type ReleaseDoc struct {
	UUID            string     `json:"uuid"`
	TagName         string     `json:"tag_name"`
	TargetCommitish string     `json:"target_commitish"`
	Name            string     `json:"name"`
	Body            string     `json:"body"`
	Draft           bool       `json:"draft"`
	Prerelease      bool       `json:"prerelease"`
	Author          string     `json:"author"`
	PublishedAt     *time.Time `json:"published_at"`
	TagURL          string     `json:"tag_url"`
	HTMLURL         string     `json:"html_url"`
}
