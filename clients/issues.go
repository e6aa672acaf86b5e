package clients

import (
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"greendex/models"
)

// FetchIssueStats looks up the issue statistics document for a repository.
func (c *Client) FetchIssueStats(repoURL string) (*models.IssueStatsDoc, error) {
	lookupURL := apiURL(c.Config.IssuesBaseURL, "/api/v1/repositories/lookup",
		url.Values{"url": {repoURL}})
	c.Logger.Debug("fetching issue stats", zap.String("url", lookupURL))

	var doc models.IssueStatsDoc
	if err := c.getJSON(lookupURL, &doc); err != nil {
		return nil, fmt.Errorf("issue stats lookup: %w", err)
	}
	return &doc, nil
}

// FetchIssueList pages through the issue rows for a repository, starting
// from the issues URL the stats document advertises.
func (c *Client) FetchIssueList(issuesURL string) ([]models.IssueDoc, error) {
	var all []models.IssueDoc
	for page := 1; ; page++ {
		pageURL := apiURL(issuesURL, "/issues",
			url.Values{"per_page": {"100"}, "page": {fmt.Sprint(page)}})
		c.Logger.Debug("fetching issue page", zap.String("url", pageURL))

		var docs []models.IssueDoc
		if err := c.getJSON(pageURL, &docs); err != nil {
			return nil, fmt.Errorf("issue list page %d: %w", page, err)
		}
		all = append(all, docs...)
		if len(docs) < 100 {
			return all, nil
		}
	}
}
