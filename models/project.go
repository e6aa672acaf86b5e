package models

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"gorm.io/datatypes"
)

// Project is the central entity: one open-source project identified by its
// repository URL, enriched with documents pulled from the upstream ecosystem
// services and with signals derived from them.
type Project struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// URL is stored lowercased; uniqueness is therefore case-insensitive.
	URL         string `json:"url" gorm:"uniqueIndex;not null"`
	Name        string `json:"name,omitempty"`
	Description string `json:"description,omitempty"`

	Category    string `json:"category,omitempty" gorm:"index"`
	SubCategory string `json:"sub_category,omitempty" gorm:"index"`

	// Reviewed marks a project curated into the published directory, as
	// opposed to an automatically discovered candidate.
	Reviewed         bool `json:"reviewed" gorm:"index"`
	MatchingCriteria bool `json:"matching_criteria"`

	// Raw upstream documents, replaced wholesale on each successful fetch.
	Repository   datatypes.JSON `json:"repository,omitempty"`
	OwnerDoc     datatypes.JSON `json:"owner,omitempty" gorm:"column:owner"`
	Packages     datatypes.JSON `json:"packages,omitempty"`
	Commits      datatypes.JSON `json:"commits,omitempty"`
	IssuesStats  datatypes.JSON `json:"issues_stats,omitempty"`
	Dependencies datatypes.JSON `json:"dependencies,omitempty"`
	Events       datatypes.JSON `json:"events,omitempty"`
	Works        datatypes.JSON `json:"works,omitempty"`
	JossMetadata datatypes.JSON `json:"joss_metadata,omitempty"`

	CitationFile string `json:"citation_file,omitempty" gorm:"type:text"`
	Readme       string `json:"readme,omitempty" gorm:"type:text"`

	// Derived fields, recomputed by the sync pipeline. Never hand-edited.
	Keywords                 datatypes.JSONSlice[string] `json:"keywords"`
	KeywordsFromContributors datatypes.JSONSlice[string] `json:"keywords_from_contributors"`
	Score                    float64                     `json:"score"`
	ScienceScore             float64                     `json:"science_score"`
	ScienceScoreBreakdown    datatypes.JSON              `json:"science_score_breakdown,omitempty"`

	LastSyncedAt *time.Time `json:"last_synced_at,omitempty"`

	Issues   []Issue   `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Releases []Release `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// NormalizeURL lowercases a project URL and strips the trailing slash, the
// canonical form under which uniqueness is enforced.
func NormalizeURL(u string) string {
	return strings.TrimSuffix(strings.ToLower(strings.TrimSpace(u)), "/")
}

var githubPagesRe = regexp.MustCompile(`^https?://(.+)\.github\.io/(.+)$`)

// GithubPagesToRepoURL converts a GitHub Pages URL to the repository URL
// behind it, or returns "" when the URL is not a pages URL.
func GithubPagesToRepoURL(pagesURL string) string {
	m := githubPagesRe.FindStringSubmatch(strings.TrimSuffix(pagesURL, "/"))
	if m == nil {
		return ""
	}
	return fmt.Sprintf("https://github.com/%s/%s", m[1], m[2])
}

// RepositoryURL is the URL used for all upstream lookups. GitHub Pages URLs
// are mapped to their backing repository even when the project URL itself
// never resolved.
func (p *Project) RepositoryURL() string {
	if repoURL := GithubPagesToRepoURL(p.URL); repoURL != "" {
		return repoURL
	}
	return p.URL
}

func (p *Project) String() string {
	if p.Name != "" {
		return p.Name
	}
	return p.URL
}

// RepositoryDoc decodes the stored repository document. ok is false when the
// document was never fetched or does not decode.
func (p *Project) RepositoryDoc() (RepositoryDoc, bool) {
	var doc RepositoryDoc
	if len(p.Repository) == 0 {
		return doc, false
	}
	if err := json.Unmarshal(p.Repository, &doc); err != nil {
		return doc, false
	}
	return doc, true
}

// Owner decodes the stored owner document.
func (p *Project) Owner() (OwnerDoc, bool) {
	var doc OwnerDoc
	if len(p.OwnerDoc) == 0 {
		return doc, false
	}
	if err := json.Unmarshal(p.OwnerDoc, &doc); err != nil {
		return doc, false
	}
	return doc, true
}

// PackageDocs decodes the stored package registry matches.
func (p *Project) PackageDocs() ([]PackageDoc, bool) {
	if len(p.Packages) == 0 {
		return nil, false
	}
	var docs []PackageDoc
	if err := json.Unmarshal(p.Packages, &docs); err != nil {
		return nil, false
	}
	return docs, true
}

// CommitsDoc decodes the stored commit statistics document.
func (p *Project) CommitsDoc() (CommitsDoc, bool) {
	var doc CommitsDoc
	if len(p.Commits) == 0 {
		return doc, false
	}
	if err := json.Unmarshal(p.Commits, &doc); err != nil {
		return doc, false
	}
	return doc, true
}

// IssueStatsDoc decodes the stored issue statistics document.
func (p *Project) IssueStatsDoc() (IssueStatsDoc, bool) {
	var doc IssueStatsDoc
	if len(p.IssuesStats) == 0 {
		return doc, false
	}
	if err := json.Unmarshal(p.IssuesStats, &doc); err != nil {
		return doc, false
	}
	return doc, true
}

// ManifestDocs decodes the stored dependency manifests.
func (p *Project) ManifestDocs() ([]ManifestDoc, bool) {
	if len(p.Dependencies) == 0 {
		return nil, false
	}
	var docs []ManifestDoc
	if err := json.Unmarshal(p.Dependencies, &docs); err != nil {
		return nil, false
	}
	return docs, true
}

// JossDoc decodes the stored JOSS paper metadata.
func (p *Project) JossDoc() (JossDoc, bool) {
	var doc JossDoc
	if len(p.JossMetadata) == 0 {
		return doc, false
	}
	if err := json.Unmarshal(p.JossMetadata, &doc); err != nil {
		return doc, false
	}
	return doc, true
}

// RawCommitters returns the raw committer records from the commits document.
func (p *Project) RawCommitters() []Committer {
	doc, ok := p.CommitsDoc()
	if !ok {
		return nil
	}
	return doc.Committers
}

// CombineKeywords recomputes the project keyword set as the union of
// repository topics and package keywords, deduplicated case-insensitively
// with blanks dropped.
func (p *Project) CombineKeywords() {
	var raw []string
	if repo, ok := p.RepositoryDoc(); ok {
		raw = append(raw, repo.Topics...)
	}
	if pkgs, ok := p.PackageDocs(); ok {
		for _, pkg := range pkgs {
			raw = append(raw, pkg.Keywords...)
		}
	}

	seen := make(map[string]struct{}, len(raw))
	keywords := make([]string, 0, len(raw))
	for _, kw := range raw {
		kw = strings.TrimSpace(ScrubControl(kw))
		if kw == "" {
			continue
		}
		key := strings.ToLower(kw)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keywords = append(keywords, kw)
	}
	p.Keywords = keywords
}

// IssueAssociations returns the distinct author associations seen across
// issues and pull requests.
func (p *Project) IssueAssociations() []string {
	stats, ok := p.IssueStatsDoc()
	if !ok {
		return nil
	}
	seen := map[string]struct{}{}
	var assocs []string
	for assoc := range stats.IssueAuthorAssociationsCount {
		if _, dup := seen[assoc]; !dup {
			seen[assoc] = struct{}{}
			assocs = append(assocs, assoc)
		}
	}
	for assoc := range stats.PullRequestAuthorAssociationsCnt {
		if _, dup := seen[assoc]; !dup {
			seen[assoc] = struct{}{}
			assocs = append(assocs, assoc)
		}
	}
	return assocs
}

// ExternalUsers reports whether anyone outside the owning organization has
// opened issues or pull requests.
func (p *Project) ExternalUsers() bool {
	for _, assoc := range p.IssueAssociations() {
		if assoc != "OWNER" && assoc != "MEMBER" {
			return true
		}
	}
	return false
}

// RepositoryLicense returns the license declared on the repository document,
// falling back to a detected license file.
func (p *Project) RepositoryLicense() string {
	repo, ok := p.RepositoryDoc()
	if !ok {
		return ""
	}
	if repo.License != "" {
		return repo.License
	}
	if repo.Metadata != nil {
		return repo.Metadata.Files["license"]
	}
	return ""
}

// PackageLicenses returns the license strings across package matches.
func (p *Project) PackageLicenses() []string {
	pkgs, ok := p.PackageDocs()
	if !ok {
		return nil
	}
	var licenses []string
	for _, pkg := range pkgs {
		if pkg.Licenses != "" {
			licenses = append(licenses, pkg.Licenses)
		}
	}
	return licenses
}

// ReadmeLicense reports whether the README embeds a license badge or image.
func (p *Project) ReadmeLicense() bool {
	for _, u := range p.ReadmeImageURLs() {
		if strings.Contains(strings.ToLower(u), "license") {
			return true
		}
	}
	return false
}

// OpenSourceLicense reports whether any license signal was detected, from
// package metadata, repository metadata or the README.
func (p *Project) OpenSourceLicense() bool {
	return len(p.PackageLicenses()) > 0 || p.RepositoryLicense() != "" || p.ReadmeLicense()
}

// Archived reports whether the repository is archived upstream.
func (p *Project) Archived() bool {
	repo, ok := p.RepositoryDoc()
	return ok && repo.Archived
}

// Fork reports whether the repository is a fork.
func (p *Project) Fork() bool {
	repo, ok := p.RepositoryDoc()
	return ok && repo.Fork
}

// PastYearCommitsExcludingBots returns the trailing-year commit count with
// bot commits removed.
func (p *Project) PastYearCommitsExcludingBots() int {
	doc, ok := p.CommitsDoc()
	if !ok {
		return 0
	}
	return doc.PastYearTotalCommits - doc.PastYearTotalBotCommits
}

// CommitsThisYear reports commit activity in the trailing year. Without a
// commit statistics document it falls back to the weaker pushed-at signal
// from the repository document.
func (p *Project) CommitsThisYear(now time.Time) bool {
	repo, ok := p.RepositoryDoc()
	if !ok {
		return false
	}
	if _, haveCommits := p.CommitsDoc(); haveCommits {
		return p.PastYearCommitsExcludingBots() > 0
	}
	if repo.PushedAt == nil {
		return false
	}
	return repo.PushedAt.After(now.AddDate(-1, 0, 0))
}

// IssuesThisYear reports non-bot issue activity in the trailing year.
func (p *Project) IssuesThisYear() bool {
	stats, ok := p.IssueStatsDoc()
	if !ok || stats.PastYearIssuesCount == nil {
		return false
	}
	return *stats.PastYearIssuesCount-stats.PastYearBotIssuesCount > 0
}

// PullRequestsThisYear reports non-bot pull request activity in the trailing
// year.
func (p *Project) PullRequestsThisYear() bool {
	stats, ok := p.IssueStatsDoc()
	if !ok || stats.PastYearPullRequestsCount == nil {
		return false
	}
	return *stats.PastYearPullRequestsCount-stats.PastYearBotPullRequestsCount > 0
}

// Active reports whether the project shows any non-bot activity in the
// trailing year. Archived repositories are never active.
func (p *Project) Active(now time.Time) bool {
	if p.Archived() {
		return false
	}
	return p.CommitsThisYear(now) || p.IssuesThisYear() || p.PullRequestsThisYear()
}

// DependencyPackage is one direct dependency fact extracted from the
// manifests, used by the corpus-wide aggregation.
type DependencyPackage struct {
	Ecosystem string
	Name      string
}

// ignoredEcosystems are packaging ecosystems excluded from dependency
// aggregation because they describe build tooling rather than libraries.
var ignoredEcosystems = map[string]struct{}{
	"actions":  {},
	"docker":   {},
	"homebrew": {},
}

// DependencyPackages returns the distinct direct dependencies across all
// manifests, excluding ignored ecosystems.
func (p *Project) DependencyPackages() []DependencyPackage {
	manifests, ok := p.ManifestDocs()
	if !ok {
		return nil
	}
	seen := map[DependencyPackage]struct{}{}
	var out []DependencyPackage
	for _, m := range manifests {
		for _, d := range m.Dependencies {
			if !d.Direct {
				continue
			}
			if _, skip := ignoredEcosystems[d.Ecosystem]; skip {
				continue
			}
			dep := DependencyPackage{Ecosystem: d.Ecosystem, Name: strings.ToLower(d.PackageName)}
			if _, dup := seen[dep]; dup {
				continue
			}
			seen[dep] = struct{}{}
			out = append(out, dep)
		}
	}
	return out
}

// UpdateScore recomputes the popularity score from the log-scaled document
// components.
func (p *Project) UpdateScore() {
	p.Score = p.repositoryScore() + p.packagesScore() + p.commitsScore()
}

// logScale is a guarded natural log: zero activity scores zero instead of
// negative infinity.
func logScale(sum int64) float64 {
	if sum <= 0 {
		return 0
	}
	return math.Log(float64(sum))
}

func (p *Project) repositoryScore() float64 {
	repo, ok := p.RepositoryDoc()
	if !ok {
		return 0
	}
	return logScale(int64(repo.StargazersCount) + int64(repo.OpenIssuesCount))
}

func (p *Project) packagesScore() float64 {
	pkgs, ok := p.PackageDocs()
	if !ok {
		return 0
	}
	var sum int64
	maintainers := map[string]struct{}{}
	for _, pkg := range pkgs {
		sum += pkg.Downloads + pkg.DependentPackagesCount + pkg.DependentReposCount +
			pkg.DockerDownloadsCount + pkg.DockerDependentsCount
		for _, m := range pkg.Maintainers {
			maintainers[m.UUID] = struct{}{}
		}
	}
	return logScale(sum + int64(len(maintainers)))
}

func (p *Project) commitsScore() float64 {
	doc, ok := p.CommitsDoc()
	if !ok {
		return 0
	}
	return logScale(int64(doc.TotalCommitters))
}

// TotalDependentRepos sums the dependent repository counts across packages.
func (p *Project) TotalDependentRepos() int64 {
	pkgs, _ := p.PackageDocs()
	var sum int64
	for _, pkg := range pkgs {
		sum += pkg.DependentReposCount
	}
	return sum
}

// TotalDependentPackages sums the dependent package counts across packages.
func (p *Project) TotalDependentPackages() int64 {
	pkgs, _ := p.PackageDocs()
	var sum int64
	for _, pkg := range pkgs {
		sum += pkg.DependentPackagesCount
	}
	return sum
}

// CitationFileName returns the detected citation file path, if any.
func (p *Project) CitationFileName() string {
	repo, ok := p.RepositoryDoc()
	if !ok || repo.Metadata == nil {
		return ""
	}
	return repo.Metadata.Files["citation"]
}

// ReadmeFileName returns the detected readme file path, if any.
func (p *Project) ReadmeFileName() string {
	repo, ok := p.RepositoryDoc()
	if !ok || repo.Metadata == nil {
		return ""
	}
	return repo.Metadata.Files["readme"]
}

// DownloadURL returns the archive download URL for the default branch.
func (p *Project) DownloadURL() string {
	repo, ok := p.RepositoryDoc()
	if !ok {
		return ""
	}
	return repo.DownloadURL
}

// RawURL builds the raw-file URL for a path in the default branch.
func (p *Project) RawURL(path string) string {
	repo, ok := p.RepositoryDoc()
	if !ok || repo.HTMLURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/raw/%s/%s", repo.HTMLURL, repo.DefaultBranch, path)
}

// PingURLs lists the upstream endpoints to notify after a sync, deduplicated.
func (p *Project) PingURLs(reposBase, issuesBase, commitsBase, packagesBase string) []string {
	var urls []string
	if repo, ok := p.RepositoryDoc(); ok && repo.Host.Name != "" {
		urls = append(urls,
			fmt.Sprintf("%s/api/v1/hosts/%s/repositories/%s/ping", reposBase, repo.Host.Name, repo.FullName),
			fmt.Sprintf("%s/api/v1/hosts/%s/repositories/%s/ping", issuesBase, repo.Host.Name, repo.FullName),
			fmt.Sprintf("%s/api/v1/hosts/%s/repositories/%s/ping", commitsBase, repo.Host.Name, repo.FullName),
			fmt.Sprintf("%s/api/v1/hosts/%s/owners/%s/ping", reposBase, repo.Host.Name, repo.Owner),
		)
	}
	if pkgs, ok := p.PackageDocs(); ok {
		for _, pkg := range pkgs {
			if pkg.Registry.Name == "" {
				continue
			}
			urls = append(urls, fmt.Sprintf("%s/api/v1/registries/%s/packages/%s/ping", packagesBase, pkg.Registry.Name, pkg.Name))
		}
	}
	seen := map[string]struct{}{}
	deduped := urls[:0]
	for _, u := range urls {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		deduped = append(deduped, u)
	}
	return deduped
}
