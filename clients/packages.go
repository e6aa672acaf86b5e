package clients

import (
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"greendex/models"
)

// FetchPackages looks up all package registry entries published from a
// repository.
func (c *Client) FetchPackages(repoURL string) ([]models.PackageDoc, error) {
	lookupURL := apiURL(c.Config.PackagesBaseURL, "/api/v1/packages/lookup",
		url.Values{"repository_url": {repoURL}})
	c.Logger.Debug("fetching packages", zap.String("url", lookupURL))

	var docs []models.PackageDoc
	if err := c.getJSON(lookupURL, &docs); err != nil {
		return nil, fmt.Errorf("packages lookup: %w", err)
	}
	return docs, nil
}

// LookupPackage resolves a single package by ecosystem and name, used when
// enriching aggregated dependencies.
func (c *Client) LookupPackage(ecosystem, name string) (*models.PackageDoc, error) {
	lookupURL := apiURL(c.Config.PackagesBaseURL, "/api/v1/packages/lookup",
		url.Values{"ecosystem": {ecosystem}, "name": {name}})
	c.Logger.Debug("resolving package", zap.String("url", lookupURL))

	var docs []models.PackageDoc
	if err := c.getJSON(lookupURL, &docs); err != nil {
		return nil, fmt.Errorf("package lookup: %w", err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: %s/%s", ErrNotFound, ecosystem, name)
	}
	return &docs[0], nil
}
