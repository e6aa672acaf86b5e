package clients

import (
	"fmt"
	"net/url"

	"go.uber.org/zap"
)

// archiveContents is the archives service response for a file inside a
// repository tarball.
type archiveContents struct {
	Name     string `json:"name"`
	Contents string `json:"contents"`
}

// FetchArchiveContents reads one file out of a repository's default-branch
// archive without cloning it.
func (c *Client) FetchArchiveContents(downloadURL, path string) (string, error) {
	contentsURL := apiURL(c.Config.ArchivesBaseURL, "/api/v1/archives/contents",
		url.Values{"url": {downloadURL}, "path": {path}})
	c.Logger.Debug("fetching archive contents", zap.String("url", contentsURL))

	var doc archiveContents
	if err := c.getJSON(contentsURL, &doc); err != nil {
		return "", fmt.Errorf("archive contents: %w", err)
	}
	return doc.Contents, nil
}

// FetchRawFile reads a file through the code host's raw endpoint, the
// fallback when the archives service cannot serve the repository.
func (c *Client) FetchRawFile(rawURL string) (string, error) {
	c.Logger.Debug("fetching raw file", zap.String("url", rawURL))
	body, err := c.getText(rawURL)
	if err != nil {
		return "", fmt.Errorf("raw file: %w", err)
	}
	return body, nil
}
