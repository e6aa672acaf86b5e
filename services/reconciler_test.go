package services

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greendex/models"
)

func TestReconcileProjectSkipsBots(t *testing.T) {
	db := newTestDB(t)
	reconciler := NewReconciler(db, testLogger())

	project := &models.Project{
		URL:         "https://github.com/octocat/tool",
		Reviewed:    true,
		Category:    "Energy",
		SubCategory: "Solar",
		Keywords:    []string{"solar", "python"},
		Commits: mustJSON(t, models.CommitsDoc{Committers: []models.Committer{
			{Name: "Jane Doe", Email: "jane@example.com", Login: "jane", Count: 40},
			{Name: "dependabot[bot]", Email: "49699333+dependabot[bot]@users.noreply.github.com", Count: 100},
			{Name: "Joe", Email: "joe@example.com", Count: 5},
		}}),
	}
	require.NoError(t, db.Create(project).Error)
	require.NoError(t, reconciler.ReconcileProject(project))

	var count int64
	db.Model(&models.Contributor{}).Count(&count)
	assert.Equal(t, int64(2), count)

	var jane models.Contributor
	require.NoError(t, db.Where("email = ?", "jane@example.com").First(&jane).Error)
	assert.Equal(t, "Jane Doe", jane.Name)
	assert.Equal(t, "jane", jane.Login)
	// stoplisted keywords never become contributor topics
	assert.Equal(t, []string{"solar"}, []string(jane.Topics))
	assert.Equal(t, []string{"Energy"}, []string(jane.Categories))
	assert.Equal(t, []string{"Solar"}, []string(jane.SubCategories))
	assert.Equal(t, []uint{project.ID}, []uint(jane.ReviewedProjectIDs))
	assert.Equal(t, 1, jane.ReviewedProjectsCount)

	var contribution models.Contribution
	require.NoError(t, db.Where("project_id = ? AND contributor_id = ?", project.ID, jane.ID).
		First(&contribution).Error)
	assert.Equal(t, 40, contribution.Commits)
}

func TestReconcileProjectSkipsUnreviewed(t *testing.T) {
	db := newTestDB(t)
	reconciler := NewReconciler(db, testLogger())

	project := &models.Project{
		URL:      "https://github.com/octocat/candidate",
		Keywords: []string{"solar"},
		Commits: mustJSON(t, models.CommitsDoc{Committers: []models.Committer{
			{Name: "Jane Doe", Email: "jane@example.com", Count: 40},
		}}),
	}
	require.NoError(t, db.Create(project).Error)
	require.NoError(t, reconciler.ReconcileProject(project))

	// committers of unreviewed candidates are never persisted
	var count int64
	db.Model(&models.Contributor{}).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.Contribution{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestReconcileProjectMergesAcrossProjects(t *testing.T) {
	db := newTestDB(t)
	reconciler := NewReconciler(db, testLogger())

	first := &models.Project{
		URL:      "https://github.com/a/one",
		Reviewed: true,
		Keywords: []string{"solar"},
		Commits: mustJSON(t, models.CommitsDoc{Committers: []models.Committer{
			{Name: "Jane Doe", Email: "jane@example.com", Login: "jane", Count: 10},
		}}),
	}
	second := &models.Project{
		URL:      "https://github.com/a/two",
		Reviewed: true,
		Keywords: []string{"permaculture"},
		Commits: mustJSON(t, models.CommitsDoc{Committers: []models.Committer{
			{Name: "J. Doe", Email: "Jane@Example.com", Count: 3},
		}}),
	}
	require.NoError(t, db.Create(first).Error)
	require.NoError(t, db.Create(second).Error)

	require.NoError(t, reconciler.ReconcileProject(first))
	require.NoError(t, reconciler.ReconcileProject(second))

	// the same email, regardless of case, is one contributor
	var count int64
	db.Model(&models.Contributor{}).Count(&count)
	assert.Equal(t, int64(1), count)

	var jane models.Contributor
	require.NoError(t, db.Where("email = ?", "jane@example.com").First(&jane).Error)
	assert.Equal(t, "J. Doe", jane.Name)
	assert.Equal(t, "jane", jane.Login)
	assert.ElementsMatch(t, []string{"solar", "permaculture"}, []string(jane.Topics))
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, []uint(jane.ReviewedProjectIDs))
	assert.Equal(t, 2, jane.ReviewedProjectsCount)
}

func TestReconcileProjectSkipsEmaillessCommitters(t *testing.T) {
	db := newTestDB(t)
	reconciler := NewReconciler(db, testLogger())

	project := &models.Project{
		URL:      "https://github.com/octocat/tool",
		Reviewed: true,
		Commits: mustJSON(t, models.CommitsDoc{Committers: []models.Committer{
			{Name: "Ghost", Email: "   ", Count: 50},
			{Name: "Jane Doe", Email: "jane@example.com", Count: 10},
		}}),
	}
	require.NoError(t, db.Create(project).Error)
	require.NoError(t, reconciler.ReconcileProject(project))

	var count int64
	db.Model(&models.Contributor{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestReconcileProjectCapsTopics(t *testing.T) {
	db := newTestDB(t)
	reconciler := NewReconciler(db, testLogger())

	var projects []*models.Project
	for i := 0; i < 3; i++ {
		keywords := make([]string, 0, 60)
		for j := 0; j < 60; j++ {
			keywords = append(keywords, fmt.Sprintf("topic-%03d", i*60+j))
		}
		project := &models.Project{
			URL:      fmt.Sprintf("https://github.com/a/repo%d", i),
			Reviewed: true,
			Keywords: keywords,
			Commits: mustJSON(t, models.CommitsDoc{Committers: []models.Committer{
				{Name: "Jane Doe", Email: "jane@example.com", Count: 10},
			}}),
		}
		require.NoError(t, db.Create(project).Error)
		projects = append(projects, project)
	}
	for _, p := range projects {
		require.NoError(t, reconciler.ReconcileProject(p))
	}

	var jane models.Contributor
	require.NoError(t, db.Where("email = ?", "jane@example.com").First(&jane).Error)
	assert.Len(t, jane.Topics, models.MaxContributorTopics)
	assert.Equal(t, 3, jane.ReviewedProjectsCount)
}

func TestReconcileProjectSkipsFailingCommitter(t *testing.T) {
	db := newTestDB(t)
	reconciler := NewReconciler(db, testLogger())

	// reject one specific row at the database level
	require.NoError(t, db.Exec(`CREATE TRIGGER reject_bad_row BEFORE INSERT ON contributors
		WHEN NEW.email = 'bad@example.com'
		BEGIN SELECT RAISE(ABORT, 'rejected'); END`).Error)

	project := &models.Project{
		URL:      "https://github.com/octocat/tool",
		Reviewed: true,
		Commits: mustJSON(t, models.CommitsDoc{Committers: []models.Committer{
			{Name: "Jane", Email: "jane@example.com", Count: 30},
			{Name: "Bad", Email: "bad@example.com", Count: 20},
			{Name: "Joe", Email: "joe@example.com", Count: 10},
		}}),
	}
	require.NoError(t, db.Create(project).Error)

	// one failing committer does not abort the others
	require.NoError(t, reconciler.ReconcileProject(project))

	var count int64
	db.Model(&models.Contributor{}).Count(&count)
	assert.Equal(t, int64(2), count)
	db.Model(&models.Contribution{}).Count(&count)
	assert.Equal(t, int64(2), count)
}

func TestReconcileProjectCapsCommitters(t *testing.T) {
	db := newTestDB(t)
	reconciler := NewReconciler(db, testLogger())

	committers := make([]models.Committer, 0, 60)
	for i := 0; i < 60; i++ {
		committers = append(committers, models.Committer{
			Name:  fmt.Sprintf("Person %d", i),
			Email: fmt.Sprintf("person%d@example.com", i),
			Count: 100 - i,
		})
	}
	project := &models.Project{
		URL:      "https://github.com/octocat/big",
		Reviewed: true,
		Commits:  mustJSON(t, models.CommitsDoc{Committers: committers}),
	}
	require.NoError(t, db.Create(project).Error)
	require.NoError(t, reconciler.ReconcileProject(project))

	var count int64
	db.Model(&models.Contributor{}).Count(&count)
	assert.Equal(t, int64(50), count)

	// the cap keeps the most active committers
	var dropped int64
	db.Model(&models.Contributor{}).Where("email = ?", "person59@example.com").Count(&dropped)
	assert.Equal(t, int64(0), dropped)
}

func TestContributorTopicsStemsAndFilters(t *testing.T) {
	db := newTestDB(t)
	reconciler := NewReconciler(db, testLogger())

	project := &models.Project{URL: "https://github.com/octocat/tool", Keywords: []string{"solar"}}
	require.NoError(t, db.Create(project).Error)

	topicSets := [][]string{
		{"forest", "solar"},
		{"forests", "wetlands"},
		{"forest", "wetland"},
	}
	for i, topics := range topicSets {
		contributor := &models.Contributor{
			Email:  fmt.Sprintf("user%d@example.com", i),
			Topics: topics,
		}
		require.NoError(t, db.Create(contributor).Error)
		require.NoError(t, db.Create(&models.Contribution{
			ProjectID:     project.ID,
			ContributorID: contributor.ID,
			Commits:       10,
		}).Error)
	}

	topics, err := reconciler.ContributorTopics(project, 10, 3)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	// solar is the project's own keyword; wetland variants stay below the
	// minimum; forest spellings collapse into one group of three
	assert.Equal(t, "forest", topics[0].Topic)
	assert.Equal(t, 3, topics[0].Count)
}

func TestContributorTopicsRequiresMultipleContributors(t *testing.T) {
	db := newTestDB(t)
	reconciler := NewReconciler(db, testLogger())

	project := &models.Project{URL: "https://github.com/octocat/solo"}
	require.NoError(t, db.Create(project).Error)
	contributor := &models.Contributor{Email: "solo@example.com", Topics: []string{"forest"}}
	require.NoError(t, db.Create(contributor).Error)
	require.NoError(t, db.Create(&models.Contribution{
		ProjectID: project.ID, ContributorID: contributor.ID, Commits: 1,
	}).Error)

	topics, err := reconciler.ContributorTopics(project, 10, 1)
	require.NoError(t, err)
	assert.Nil(t, topics)
}

func TestUpdateKeywordsFromContributors(t *testing.T) {
	db := newTestDB(t)
	reconciler := NewReconciler(db, testLogger())

	project := &models.Project{URL: "https://github.com/octocat/tool"}
	require.NoError(t, db.Create(project).Error)
	for i := 0; i < 3; i++ {
		contributor := &models.Contributor{
			Email:  fmt.Sprintf("u%d@example.com", i),
			Topics: []string{"agroforestry"},
		}
		require.NoError(t, db.Create(contributor).Error)
		require.NoError(t, db.Create(&models.Contribution{
			ProjectID: project.ID, ContributorID: contributor.ID, Commits: 1,
		}).Error)
	}

	require.NoError(t, reconciler.UpdateKeywordsFromContributors(project))

	var reloaded models.Project
	require.NoError(t, db.First(&reloaded, project.ID).Error)
	assert.Equal(t, []string{"agroforestry"}, []string(reloaded.KeywordsFromContributors))
}
