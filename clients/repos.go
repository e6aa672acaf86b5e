package clients

import (
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"greendex/models"
)

// FetchRepository looks up the repository document behind a project URL.
func (c *Client) FetchRepository(repoURL string) (*models.RepositoryDoc, error) {
	lookupURL := apiURL(c.Config.ReposBaseURL, "/api/v1/repositories/lookup",
		url.Values{"url": {repoURL}})
	c.Logger.Debug("fetching repository", zap.String("url", lookupURL))

	var doc models.RepositoryDoc
	if err := c.getJSON(lookupURL, &doc); err != nil {
		return nil, fmt.Errorf("repository lookup: %w", err)
	}
	return &doc, nil
}

// FetchOwner looks up the owner document for a repository's owning account.
func (c *Client) FetchOwner(host, login string) (*models.OwnerDoc, error) {
	ownerURL := fmt.Sprintf("%s/api/v1/hosts/%s/owners/%s",
		c.Config.ReposBaseURL, url.PathEscape(host), url.PathEscape(login))
	c.Logger.Debug("fetching owner", zap.String("url", ownerURL))

	var doc models.OwnerDoc
	if err := c.getJSON(ownerURL, &doc); err != nil {
		return nil, fmt.Errorf("owner lookup: %w", err)
	}
	return &doc, nil
}

// FetchReleases lists the most recent releases for a repository.
func (c *Client) FetchReleases(host, fullName string) ([]models.ReleaseDoc, error) {
	releasesURL := fmt.Sprintf("%s/api/v1/hosts/%s/repositories/%s/releases?per_page=100",
		c.Config.ReposBaseURL, url.PathEscape(host), fullName)
	c.Logger.Debug("fetching releases", zap.String("url", releasesURL))

	var docs []models.ReleaseDoc
	if err := c.getJSON(releasesURL, &docs); err != nil {
		return nil, fmt.Errorf("releases lookup: %w", err)
	}
	return docs, nil
}

// FetchManifests lists the parsed dependency manifests for a repository.
func (c *Client) FetchManifests(manifestsURL string) ([]models.ManifestDoc, error) {
	c.Logger.Debug("fetching manifests", zap.String("url", manifestsURL))

	var docs []models.ManifestDoc
	if err := c.getJSON(manifestsURL, &docs); err != nil {
		return nil, fmt.Errorf("manifests lookup: %w", err)
	}
	return docs, nil
}
