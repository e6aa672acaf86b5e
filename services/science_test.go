package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greendex/models"
)

func TestScienceScoreEmptyProject(t *testing.T) {
	result := CalculateScienceScore(&models.Project{})

	assert.Equal(t, 0.0, result.Score)
	assert.Equal(t, 100.0, result.MaxScore)
	for key, ind := range result.Breakdown {
		assert.False(t, ind.Present, key)
	}
}

func TestScienceScoreJossBase(t *testing.T) {
	p := &models.Project{
		JossMetadata: mustJSON(t, models.JossDoc{Title: "greentool", State: "accepted"}),
	}
	result := CalculateScienceScore(p)

	assert.Equal(t, 85.0, result.Score)
	assert.True(t, result.Breakdown["has_joss_paper"].Present)
}

func TestScienceScoreJossWithBonuses(t *testing.T) {
	p := &models.Project{
		JossMetadata: mustJSON(t, models.JossDoc{Title: "greentool", DOI: "10.21105/joss.01234"}),
		CitationFile: "cff-version: 1.2.0",
	}
	result := CalculateScienceScore(p)

	// base 85, +5 citation file, +2 DOI via paper metadata
	assert.Equal(t, 92.0, result.Score)
}

func TestScienceScoreCitationFileOnly(t *testing.T) {
	p := &models.Project{CitationFile: "cff-version: 1.2.0"}
	result := CalculateScienceScore(p)

	assert.Equal(t, 22.0, result.Score)
	assert.True(t, result.Breakdown["has_citation_file"].Present)
}

func TestScienceScoreAllIndicators(t *testing.T) {
	p := &models.Project{
		CitationFile: "cff-version: 1.2.0",
		Repository: mustJSON(t, models.RepositoryDoc{
			Metadata: &models.RepositoryFiles{Files: map[string]string{
				"codemeta": "codemeta.json",
				"zenodo":   ".zenodo.json",
			}},
		}),
		OwnerDoc: mustJSON(t, models.OwnerDoc{
			Login:   "lab",
			Kind:    "organization",
			Website: "https://physics.ethz.ch",
		}),
		Commits: mustJSON(t, models.CommitsDoc{Committers: []models.Committer{
			{Name: "Jane", Email: "jane@student.ethz.ch", Count: 40},
		}}),
		Readme: "Cite https://doi.org/10.1000/xyz123 and see https://arxiv.org/abs/1234.5678",
	}
	result := CalculateScienceScore(p)

	assert.Equal(t, 100.0, result.Score)
	for _, key := range []string{
		"has_citation_file", "has_codemeta", "has_zenodo", "has_doi_in_readme",
		"has_academic_links", "has_academic_committers", "has_institutional_owner",
	} {
		assert.True(t, result.Breakdown[key].Present, key)
	}
	assert.False(t, result.Breakdown["has_joss_paper"].Present)
}

func TestScienceScoreMonotonicity(t *testing.T) {
	base := CalculateScienceScore(&models.Project{CitationFile: "x"})
	more := CalculateScienceScore(&models.Project{
		CitationFile: "x",
		Readme:       "https://doi.org/10.1000/abc",
	})
	assert.Greater(t, more.Score, base.Score)
}

func TestAcademicCommitterDetails(t *testing.T) {
	p := &models.Project{
		Commits: mustJSON(t, models.CommitsDoc{Committers: []models.Committer{
			{Name: "Jane", Email: "jane@mit.edu", Count: 10},
			{Name: "Joe", Email: "joe@example.com", Count: 5},
		}}),
	}
	result := CalculateScienceScore(p)

	ind := result.Breakdown["has_academic_committers"]
	require.True(t, ind.Present)
	require.Len(t, ind.Committers, 1)
	assert.Equal(t, "jane@mit.edu", "jane@"+ind.Committers[0].Domain)
	assert.Contains(t, ind.Details, "1 of 2 committers")
}
