package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"greendex/clients"
	"greendex/models"
)

// errAbortSync stops the stage loop without treating the sync as failed,
// used when the project itself disappears mid-sync.
var errAbortSync = errors.New("sync aborted")

// Fetcher is the slice of the upstream client the syncer needs. Tests
// substitute a stub.
type Fetcher interface {
	ResolveURL(rawURL string) (string, error)
	FetchRepository(repoURL string) (*models.RepositoryDoc, error)
	FetchOwner(host, login string) (*models.OwnerDoc, error)
	FetchManifests(manifestsURL string) ([]models.ManifestDoc, error)
	FetchPackages(repoURL string) ([]models.PackageDoc, error)
	FetchCommits(repoURL string) (*models.CommitsDoc, error)
	FetchEventSummaries(host, fullName string, now time.Time) (*models.EventsDoc, error)
	FetchIssueStats(repoURL string) (*models.IssueStatsDoc, error)
	FetchIssueList(issuesURL string) ([]models.IssueDoc, error)
	FetchReleases(host, fullName string) ([]models.ReleaseDoc, error)
	FetchArchiveContents(downloadURL, path string) (string, error)
	FetchRawFile(rawURL string) (string, error)
	FetchWork(doi string) (map[string]any, error)
	FetchJossPaper(doi string) (*models.JossDoc, error)
	Ping(rawURL string)
}

var _ Fetcher = (*clients.Client)(nil)

// syncStage is one step of the enrichment pipeline. Stages run in order; a
// failing stage is logged and skipped so one dead upstream never blocks the
// rest of the sync.
type syncStage struct {
	name         string
	reviewedOnly bool
	run          func(*models.Project) error
}

// Syncer runs the enrichment pipeline for single projects.
type Syncer struct {
	db         *gorm.DB
	fetcher    Fetcher
	classifier *Classifier
	reconciler *Reconciler
	logger     *zap.Logger
	now        func() time.Time

	reposBase    string
	issuesBase   string
	commitsBase  string
	packagesBase string

	stages []syncStage
}

// NewSyncer wires the pipeline. now is injectable for tests.
func NewSyncer(db *gorm.DB, fetcher Fetcher, classifier *Classifier, reconciler *Reconciler,
	logger *zap.Logger, now func() time.Time,
	reposBase, issuesBase, commitsBase, packagesBase string) *Syncer {

	s := &Syncer{
		db:           db,
		fetcher:      fetcher,
		classifier:   classifier,
		reconciler:   reconciler,
		logger:       logger,
		now:          now,
		reposBase:    reposBase,
		issuesBase:   issuesBase,
		commitsBase:  commitsBase,
		packagesBase: packagesBase,
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.stages = []syncStage{
		{name: "resolve_url", run: s.resolveURL},
		{name: "repository", run: s.fetchRepository},
		{name: "owner", run: s.fetchOwner},
		{name: "dependencies", run: s.fetchDependencies},
		{name: "packages", run: s.fetchPackages},
		{name: "keywords", run: s.combineKeywords},
		{name: "commits", run: s.fetchCommits},
		{name: "events", run: s.fetchEvents},
		{name: "issue_stats", run: s.fetchIssueStats},
		{name: "issues", reviewedOnly: true, run: s.syncIssues},
		{name: "releases", reviewedOnly: true, run: s.syncReleases},
		{name: "citation_file", reviewedOnly: true, run: s.fetchCitationFile},
		{name: "readme", reviewedOnly: true, run: s.fetchReadme},
		{name: "works", reviewedOnly: true, run: s.fetchWorks},
		{name: "joss", reviewedOnly: true, run: s.fetchJossMetadata},
		{name: "contributors", reviewedOnly: true, run: s.reconcileContributors},
		{name: "contributor_keywords", run: s.updateContributorKeywords},
	}
	return s
}

// Sync runs the full pipeline for one project. Individual stage failures
// are tolerated; the sync still finalizes with whatever was fetched.
func (s *Syncer) Sync(projectID uint) error {
	var project models.Project
	if err := s.db.First(&project, projectID).Error; err != nil {
		syncsTotal.WithLabelValues("missing").Inc()
		return err
	}

	log := s.logger.With(zap.Uint("project_id", project.ID), zap.String("url", project.URL))
	log.Info("starting sync")

	for _, stage := range s.stages {
		if stage.reviewedOnly && !project.Reviewed {
			continue
		}
		if err := stage.run(&project); err != nil {
			if errors.Is(err, errAbortSync) {
				log.Warn("sync aborted", zap.String("stage", stage.name))
				syncsTotal.WithLabelValues("aborted").Inc()
				return nil
			}
			syncStagesTotal.WithLabelValues(stage.name, "error").Inc()
			log.Warn("sync stage failed", zap.String("stage", stage.name), zap.Error(err))
			continue
		}
		syncStagesTotal.WithLabelValues(stage.name, "ok").Inc()
		// persist incrementally so a crash loses at most one stage
		if err := s.db.Save(&project).Error; err != nil {
			syncsTotal.WithLabelValues("error").Inc()
			return err
		}
	}

	if err := s.finalize(&project); err != nil {
		syncsTotal.WithLabelValues("error").Inc()
		return err
	}
	s.ping(&project)

	syncsTotal.WithLabelValues("ok").Inc()
	log.Info("sync finished", zap.Float64("score", project.Score))
	return nil
}

// resolveURL follows redirects on the project URL. When the canonical URL
// already belongs to another project, this record is a duplicate and is
// removed.
func (s *Syncer) resolveURL(p *models.Project) error {
	resolved, err := s.fetcher.ResolveURL(p.URL)
	if err != nil {
		return err
	}
	normalized := models.NormalizeURL(resolved)
	if normalized == "" || normalized == p.URL {
		return nil
	}

	var existing models.Project
	err = s.db.Where("url = ? AND id <> ?", normalized, p.ID).First(&existing).Error
	if err == nil {
		s.logger.Info("removing duplicate project",
			zap.Uint("project_id", p.ID), zap.Uint("duplicate_of", existing.ID))
		if err := s.db.Delete(p).Error; err != nil {
			return err
		}
		return errAbortSync
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	p.URL = normalized
	return nil
}

func (s *Syncer) fetchRepository(p *models.Project) error {
	doc, err := s.fetcher.FetchRepository(p.RepositoryURL())
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	p.Repository = raw
	if p.Name == "" {
		p.Name = doc.FullName
	}
	if p.Description == "" {
		p.Description = doc.Description
	}
	return nil
}

func (s *Syncer) fetchOwner(p *models.Project) error {
	repo, ok := p.RepositoryDoc()
	if !ok || repo.Host.Name == "" || repo.Owner == "" {
		return nil
	}
	doc, err := s.fetcher.FetchOwner(repo.Host.Name, repo.Owner)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	p.OwnerDoc = raw
	return nil
}

func (s *Syncer) fetchDependencies(p *models.Project) error {
	repo, ok := p.RepositoryDoc()
	if !ok || repo.ManifestsURL == "" {
		return nil
	}
	docs, err := s.fetcher.FetchManifests(repo.ManifestsURL)
	if err != nil {
		return err
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	p.Dependencies = raw
	return nil
}

func (s *Syncer) fetchPackages(p *models.Project) error {
	docs, err := s.fetcher.FetchPackages(p.RepositoryURL())
	if err != nil {
		return err
	}
	raw, err := json.Marshal(docs)
	if err != nil {
		return err
	}
	p.Packages = raw
	return nil
}

func (s *Syncer) combineKeywords(p *models.Project) error {
	p.CombineKeywords()
	return nil
}

func (s *Syncer) fetchCommits(p *models.Project) error {
	doc, err := s.fetcher.FetchCommits(p.RepositoryURL())
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	p.Commits = raw
	return nil
}

func (s *Syncer) fetchEvents(p *models.Project) error {
	repo, ok := p.RepositoryDoc()
	if !ok || repo.FullName == "" {
		return nil
	}
	doc, err := s.fetcher.FetchEventSummaries(repo.Host.Name, repo.FullName, s.now())
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			return nil
		}
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	p.Events = raw
	return nil
}

func (s *Syncer) fetchIssueStats(p *models.Project) error {
	doc, err := s.fetcher.FetchIssueStats(p.RepositoryURL())
	if err != nil {
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	p.IssuesStats = raw
	return nil
}

// syncIssues mirrors the issue rows for reviewed projects, keyed by the
// upstream UUID.
func (s *Syncer) syncIssues(p *models.Project) error {
	stats, ok := p.IssueStatsDoc()
	if !ok || stats.IssuesURL == "" {
		return nil
	}
	docs, err := s.fetcher.FetchIssueList(stats.IssuesURL)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if doc.UUID == "" {
			continue
		}
		var issue models.Issue
		err := s.db.Where("uuid = ?", doc.UUID).First(&issue).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		issue.ProjectID = p.ID
		issue.ApplyDoc(doc)
		if err := s.db.Save(&issue).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Syncer) syncReleases(p *models.Project) error {
	repo, ok := p.RepositoryDoc()
	if !ok || repo.FullName == "" || repo.Host.Name == "" {
		return nil
	}
	docs, err := s.fetcher.FetchReleases(repo.Host.Name, repo.FullName)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		if doc.UUID == "" {
			continue
		}
		var release models.Release
		err := s.db.Where("uuid = ?", doc.UUID).First(&release).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		release.ProjectID = p.ID
		release.ApplyDoc(doc)
		if err := s.db.Save(&release).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *Syncer) fetchCitationFile(p *models.Project) error {
	name := p.CitationFileName()
	if name == "" || p.DownloadURL() == "" {
		return nil
	}
	contents, err := s.fetcher.FetchArchiveContents(p.DownloadURL(), name)
	if err != nil {
		return err
	}
	p.CitationFile = contents
	return nil
}

// fetchReadme reads the README from the repository archive, falling back to
// the code host's raw endpoint when the archive route fails.
func (s *Syncer) fetchReadme(p *models.Project) error {
	name := p.ReadmeFileName()
	if name != "" && p.DownloadURL() != "" {
		contents, err := s.fetcher.FetchArchiveContents(p.DownloadURL(), name)
		if err == nil {
			p.Readme = contents
			return nil
		}
	}

	if name == "" {
		name = "README.md"
	}
	rawURL := p.RawURL(name)
	if rawURL == "" {
		return nil
	}
	contents, err := s.fetcher.FetchRawFile(rawURL)
	if err != nil {
		return err
	}
	p.Readme = contents
	return nil
}

// fetchWorks resolves every DOI in the README against the scholarly index.
// Unresolvable DOIs are recorded as null so they are not retried forever.
func (s *Syncer) fetchWorks(p *models.Project) error {
	dois := p.DOIs()
	if len(dois) == 0 {
		return nil
	}
	works := map[string]any{}
	for _, doi := range dois {
		work, err := s.fetcher.FetchWork(doi)
		if err != nil {
			works[doi] = nil
			continue
		}
		works[doi] = work
	}
	raw, err := json.Marshal(works)
	if err != nil {
		return err
	}
	p.Works = raw
	return nil
}

func (s *Syncer) fetchJossMetadata(p *models.Project) error {
	doi := clients.JossDOI(p.DOIs())
	if doi == "" {
		return nil
	}
	doc, err := s.fetcher.FetchJossPaper(doi)
	if err != nil {
		if errors.Is(err, clients.ErrNotFound) {
			return nil
		}
		return err
	}
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	p.JossMetadata = raw
	return nil
}

func (s *Syncer) reconcileContributors(p *models.Project) error {
	return s.reconciler.ReconcileProject(p)
}

func (s *Syncer) updateContributorKeywords(p *models.Project) error {
	return s.reconciler.UpdateKeywordsFromContributors(p)
}

// finalize recomputes the derived signals and stamps the sync time.
func (s *Syncer) finalize(p *models.Project) error {
	matching, err := s.classifier.MatchingCriteria(p)
	if err != nil {
		return fmt.Errorf("matching criteria: %w", err)
	}
	p.MatchingCriteria = matching
	p.UpdateScore()

	result := CalculateScienceScore(p)
	p.ScienceScore = result.Score
	breakdown, err := json.Marshal(result)
	if err != nil {
		return err
	}
	p.ScienceScoreBreakdown = breakdown

	now := s.now()
	p.LastSyncedAt = &now
	return s.db.Save(p).Error
}

// ping nudges the upstream services to refresh their own copies.
func (s *Syncer) ping(p *models.Project) {
	for _, u := range p.PingURLs(s.reposBase, s.issuesBase, s.commitsBase, s.packagesBase) {
		s.fetcher.Ping(u)
	}
}
