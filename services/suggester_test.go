package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greendex/models"
)

func seedCategorizedCorpus(t *testing.T) *Suggester {
	t.Helper()
	db := newTestDB(t)
	seed := []models.Project{
		{
			URL: "https://github.com/e/pv", Category: "Energy", SubCategory: "Solar",
			Keywords: []string{"photovoltaics", "solar-thermal", "renewables"},
		},
		{
			URL: "https://github.com/e/wind", Category: "Energy", SubCategory: "Wind",
			Keywords: []string{"wind-turbines", "renewables"},
		},
		{
			URL: "https://github.com/t/bike", Category: "Transportation", SubCategory: "Cycling",
			Keywords: []string{"cycling", "bike-sharing", "renewables"},
		},
	}
	for i := range seed {
		require.NoError(t, db.Create(&seed[i]).Error)
	}
	return NewSuggester(db, time.Hour, func() time.Time {
		return time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	})
}

func TestSuggestCategory(t *testing.T) {
	suggester := seedCategorizedCorpus(t)

	suggestion, err := suggester.SuggestCategory(&models.Project{
		Keywords: []string{"solar-thermal", "rust"},
	})
	require.NoError(t, err)
	require.NotNil(t, suggestion)
	assert.Equal(t, "Energy", suggestion.Name)
	assert.Equal(t, 1, suggestion.Score)
}

func TestSuggestCategoryIgnoresSharedKeywords(t *testing.T) {
	suggester := seedCategorizedCorpus(t)

	// renewables appears under both categories and cannot decide
	suggestion, err := suggester.SuggestCategory(&models.Project{
		Keywords: []string{"renewables"},
	})
	require.NoError(t, err)
	assert.Nil(t, suggestion)
}

func TestSuggestCategoryNoKeywords(t *testing.T) {
	suggester := seedCategorizedCorpus(t)

	suggestion, err := suggester.SuggestCategory(&models.Project{})
	require.NoError(t, err)
	assert.Nil(t, suggestion)
}

func TestSuggestSubCategory(t *testing.T) {
	suggester := seedCategorizedCorpus(t)

	suggestion, err := suggester.SuggestSubCategory(&models.Project{
		Keywords: []string{"cycling", "bike-sharing"},
	})
	require.NoError(t, err)
	require.NotNil(t, suggestion)
	assert.Equal(t, "Cycling", suggestion.Name)
	assert.Equal(t, 2, suggestion.Score)
}
