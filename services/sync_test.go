package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"greendex/clients"
	"greendex/models"
)

// stubFetcher satisfies Fetcher with overridable function fields. Unset
// fields behave like an upstream that has nothing for the project.
type stubFetcher struct {
	resolveURL func(string) (string, error)
	repository func(string) (*models.RepositoryDoc, error)
	owner      func(string, string) (*models.OwnerDoc, error)
	commits    func(string) (*models.CommitsDoc, error)
	issueStats func(string) (*models.IssueStatsDoc, error)
	issueList  func(string) ([]models.IssueDoc, error)
	releases   func(string, string) ([]models.ReleaseDoc, error)
	archive    func(string, string) (string, error)
	rawFile    func(string) (string, error)
	work       func(string) (map[string]any, error)

	pinged []string
}

func (f *stubFetcher) ResolveURL(rawURL string) (string, error) {
	if f.resolveURL != nil {
		return f.resolveURL(rawURL)
	}
	return rawURL, nil
}

func (f *stubFetcher) FetchRepository(repoURL string) (*models.RepositoryDoc, error) {
	if f.repository != nil {
		return f.repository(repoURL)
	}
	return &models.RepositoryDoc{}, nil
}

func (f *stubFetcher) FetchOwner(host, login string) (*models.OwnerDoc, error) {
	if f.owner != nil {
		return f.owner(host, login)
	}
	return &models.OwnerDoc{Login: login}, nil
}

func (f *stubFetcher) FetchManifests(manifestsURL string) ([]models.ManifestDoc, error) {
	return nil, nil
}

func (f *stubFetcher) FetchPackages(repoURL string) ([]models.PackageDoc, error) {
	return nil, nil
}

func (f *stubFetcher) FetchCommits(repoURL string) (*models.CommitsDoc, error) {
	if f.commits != nil {
		return f.commits(repoURL)
	}
	return &models.CommitsDoc{}, nil
}

func (f *stubFetcher) FetchEventSummaries(host, fullName string, now time.Time) (*models.EventsDoc, error) {
	return nil, clients.ErrNotFound
}

func (f *stubFetcher) FetchIssueStats(repoURL string) (*models.IssueStatsDoc, error) {
	if f.issueStats != nil {
		return f.issueStats(repoURL)
	}
	return &models.IssueStatsDoc{}, nil
}

func (f *stubFetcher) FetchIssueList(issuesURL string) ([]models.IssueDoc, error) {
	if f.issueList != nil {
		return f.issueList(issuesURL)
	}
	return nil, nil
}

func (f *stubFetcher) FetchReleases(host, fullName string) ([]models.ReleaseDoc, error) {
	if f.releases != nil {
		return f.releases(host, fullName)
	}
	return nil, nil
}

func (f *stubFetcher) FetchArchiveContents(downloadURL, path string) (string, error) {
	if f.archive != nil {
		return f.archive(downloadURL, path)
	}
	return "", clients.ErrNotFound
}

func (f *stubFetcher) FetchRawFile(rawURL string) (string, error) {
	if f.rawFile != nil {
		return f.rawFile(rawURL)
	}
	return "", clients.ErrNotFound
}

func (f *stubFetcher) FetchWork(doi string) (map[string]any, error) {
	if f.work != nil {
		return f.work(doi)
	}
	return nil, clients.ErrNotFound
}

func (f *stubFetcher) FetchJossPaper(doi string) (*models.JossDoc, error) {
	return nil, clients.ErrNotFound
}

func (f *stubFetcher) Ping(rawURL string) {
	f.pinged = append(f.pinged, rawURL)
}

func newTestSyncer(t *testing.T, db *gorm.DB, fetcher Fetcher, now func() time.Time) *Syncer {
	t.Helper()
	classifier := NewClassifier(db, DefaultRelevancePolicy, time.Hour, now)
	reconciler := NewReconciler(db, testLogger())
	return NewSyncer(db, fetcher, classifier, reconciler, testLogger(), now,
		"https://repos.test", "https://issues.test", "https://commits.test", "https://packages.test")
}

func seedRelevantCorpus(t *testing.T, db *gorm.DB) {
	t.Helper()
	for _, url := range []string{"https://github.com/seed/one", "https://github.com/seed/two"} {
		require.NoError(t, db.Create(&models.Project{
			URL: url, Reviewed: true, Keywords: []string{"solar"},
		}).Error)
	}
}

func TestSyncToleratesStageFailure(t *testing.T) {
	db := newTestDB(t)
	seedRelevantCorpus(t, db)

	now := func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }
	pushed := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	fetcher := &stubFetcher{
		repository: func(string) (*models.RepositoryDoc, error) {
			return &models.RepositoryDoc{
				FullName:        "octocat/greentool",
				Owner:           "octocat",
				Description:     "solar monitoring",
				Topics:          []string{"solar"},
				License:         "mit",
				StargazersCount: 12,
				PushedAt:        &pushed,
				Host:            models.RepositoryHost{Name: "GitHub"},
			}, nil
		},
		commits: func(string) (*models.CommitsDoc, error) {
			return nil, errors.New("commits service down")
		},
		issueStats: func(string) (*models.IssueStatsDoc, error) {
			return &models.IssueStatsDoc{
				IssueAuthorAssociationsCount: map[string]int{"NONE": 4},
			}, nil
		},
	}
	syncer := newTestSyncer(t, db, fetcher, now)

	project := &models.Project{URL: "https://github.com/octocat/greentool"}
	require.NoError(t, db.Create(project).Error)
	require.NoError(t, syncer.Sync(project.ID))

	var synced models.Project
	require.NoError(t, db.First(&synced, project.ID).Error)

	repo, ok := synced.RepositoryDoc()
	require.True(t, ok)
	assert.Equal(t, "octocat/greentool", repo.FullName)
	assert.Equal(t, "octocat/greentool", synced.Name)
	assert.Equal(t, "solar monitoring", synced.Description)
	assert.Contains(t, []string(synced.Keywords), "solar")

	// the commits stage failed; everything after it still ran
	assert.Empty(t, synced.RawCommitters())
	assert.True(t, synced.MatchingCriteria)
	assert.Greater(t, synced.Score, 0.0)
	require.NotNil(t, synced.LastSyncedAt)
	assert.True(t, synced.LastSyncedAt.Equal(now()))

	assert.Contains(t, fetcher.pinged,
		"https://repos.test/api/v1/hosts/GitHub/repositories/octocat/greentool/ping")
}

func TestSyncRemovesDuplicateProject(t *testing.T) {
	db := newTestDB(t)
	seedRelevantCorpus(t, db)

	canonical := &models.Project{URL: "https://github.com/octocat/greentool"}
	require.NoError(t, db.Create(canonical).Error)
	duplicate := &models.Project{URL: "https://github.com/octocat/greentool-old"}
	require.NoError(t, db.Create(duplicate).Error)

	fetcher := &stubFetcher{
		resolveURL: func(string) (string, error) {
			return "https://github.com/octocat/greentool", nil
		},
	}
	syncer := newTestSyncer(t, db, fetcher, nil)

	require.NoError(t, syncer.Sync(duplicate.ID))

	err := db.First(&models.Project{}, duplicate.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	var kept models.Project
	require.NoError(t, db.First(&kept, canonical.ID).Error)
	assert.Nil(t, kept.LastSyncedAt)
	assert.Empty(t, fetcher.pinged)
}

func TestSyncReviewedFetchesReadmeAndWorks(t *testing.T) {
	db := newTestDB(t)
	seedRelevantCorpus(t, db)

	now := func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }
	fetcher := &stubFetcher{
		repository: func(string) (*models.RepositoryDoc, error) {
			return &models.RepositoryDoc{
				FullName:      "octocat/greentool",
				Owner:         "octocat",
				DefaultBranch: "main",
				HTMLURL:       "https://github.com/octocat/greentool",
				DownloadURL:   "https://repos.test/archive.tar.gz",
				Host:          models.RepositoryHost{Name: "GitHub"},
				Metadata: &models.RepositoryFiles{Files: map[string]string{
					"readme": "README.md",
				}},
			}, nil
		},
		archive: func(string, string) (string, error) {
			return "", errors.New("archive unavailable")
		},
		rawFile: func(rawURL string) (string, error) {
			assert.Equal(t, "https://github.com/octocat/greentool/raw/main/README.md", rawURL)
			return "Cite https://doi.org/10.1000/xyz123", nil
		},
		work: func(doi string) (map[string]any, error) {
			assert.Equal(t, "10.1000/xyz123", doi)
			return map[string]any{"title": "greentool paper"}, nil
		},
	}
	syncer := newTestSyncer(t, db, fetcher, now)

	project := &models.Project{URL: "https://github.com/octocat/greentool", Reviewed: true}
	require.NoError(t, db.Create(project).Error)
	require.NoError(t, syncer.Sync(project.ID))

	var synced models.Project
	require.NoError(t, db.First(&synced, project.ID).Error)
	assert.Equal(t, "Cite https://doi.org/10.1000/xyz123", synced.Readme)
	assert.Equal(t, []string{"10.1000/xyz123"}, synced.DOIs())
	assert.NotEmpty(t, synced.Works)
	assert.Greater(t, synced.ScienceScore, 0.0)
}

func TestSyncMissingProject(t *testing.T) {
	db := newTestDB(t)
	syncer := newTestSyncer(t, db, &stubFetcher{}, nil)

	assert.Error(t, syncer.Sync(9999))
}
