package clients

import (
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"greendex/models"
)

// FetchCommits looks up the commit statistics document for a repository.
func (c *Client) FetchCommits(repoURL string) (*models.CommitsDoc, error) {
	lookupURL := apiURL(c.Config.CommitsBaseURL, "/api/v1/repositories/lookup",
		url.Values{"url": {repoURL}})
	c.Logger.Debug("fetching commits", zap.String("url", lookupURL))

	var doc models.CommitsDoc
	if err := c.getJSON(lookupURL, &doc); err != nil {
		return nil, fmt.Errorf("commits lookup: %w", err)
	}
	return &doc, nil
}
