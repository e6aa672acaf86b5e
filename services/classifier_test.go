package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greendex/models"
)

func seedReviewedCorpus(t *testing.T) *Classifier {
	t.Helper()
	db := newTestDB(t)
	seed := []models.Project{
		{URL: "https://github.com/a/one", Reviewed: true, Keywords: []string{"solar", "python"}},
		{URL: "https://github.com/a/two", Reviewed: true, Keywords: []string{"solar", "python", "climate-change"}},
		{URL: "https://github.com/a/three", Reviewed: true, Keywords: []string{"climate-change", "permaculture"}},
		{URL: "https://github.com/a/noise", Reviewed: false, Keywords: []string{"solar", "solar", "bitcoin"}},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}
	now := func() time.Time { return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC) }
	return NewClassifier(db, DefaultRelevancePolicy, time.Hour, now)
}

func TestRelevantKeywords(t *testing.T) {
	classifier := seedReviewedCorpus(t)

	keywords, err := classifier.RelevantKeywords()
	require.NoError(t, err)

	// frequency above one across reviewed projects, generic words removed
	assert.Equal(t, []string{"solar", "climate-change"}, keywords)
}

func TestMatchingTopicsIsSubsetOfProjectKeywords(t *testing.T) {
	classifier := seedReviewedCorpus(t)

	p := &models.Project{Keywords: []string{"Solar", "rust", "permaculture"}}
	matches, err := classifier.MatchingTopics(p)
	require.NoError(t, err)

	assert.Equal(t, []string{"Solar"}, matches)
}

func TestMatchingTopicsEmptyKeywords(t *testing.T) {
	classifier := seedReviewedCorpus(t)

	matches, err := classifier.MatchingTopics(&models.Project{})
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestGoodTopicsPolicies(t *testing.T) {
	classifier := seedReviewedCorpus(t)

	good, err := classifier.GoodTopics(&models.Project{Keywords: []string{"solar"}})
	require.NoError(t, err)
	assert.True(t, good)

	good, err = classifier.GoodTopics(&models.Project{Keywords: []string{"rust"}})
	require.NoError(t, err)
	assert.False(t, good)
}

func TestRelevancePolicyAccepts(t *testing.T) {
	assert.True(t, DefaultRelevancePolicy.Accepts(1, 0))
	assert.False(t, DefaultRelevancePolicy.Accepts(0, 0))
	assert.False(t, DefaultRelevancePolicy.Accepts(5, 1))

	assert.False(t, StrictRelevancePolicy.Accepts(2, 0))
	assert.True(t, StrictRelevancePolicy.Accepts(3, 0))
}

func TestMatchingCriteria(t *testing.T) {
	classifier := seedReviewedCorpus(t)
	now := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	recent := now.AddDate(0, -1, 0)

	qualifying := &models.Project{
		Keywords: []string{"solar"},
		Repository: mustJSON(t, models.RepositoryDoc{
			License:  "mit",
			PushedAt: &recent,
		}),
		IssuesStats: mustJSON(t, models.IssueStatsDoc{
			IssueAuthorAssociationsCount: map[string]int{"NONE": 3},
		}),
	}
	matching, err := classifier.MatchingCriteria(qualifying)
	require.NoError(t, err)
	assert.True(t, matching)

	offTopic := &models.Project{
		Keywords:    []string{"rust"},
		Repository:  qualifying.Repository,
		IssuesStats: qualifying.IssuesStats,
	}
	matching, err = classifier.MatchingCriteria(offTopic)
	require.NoError(t, err)
	assert.False(t, matching)

	noOutsiders := &models.Project{
		Keywords:   []string{"solar"},
		Repository: qualifying.Repository,
		IssuesStats: mustJSON(t, models.IssueStatsDoc{
			IssueAuthorAssociationsCount: map[string]int{"OWNER": 3},
		}),
	}
	matching, err = classifier.MatchingCriteria(noOutsiders)
	require.NoError(t, err)
	assert.False(t, matching)
}
