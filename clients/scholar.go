package clients

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"greendex/models"
)

// FetchWork resolves a DOI against OpenAlex and returns the work record as
// loose JSON. The scholarly record feeds the science score.
func (c *Client) FetchWork(doi string) (map[string]any, error) {
	workURL := fmt.Sprintf("%s/works/https://doi.org/%s", c.Config.OpenAlexBaseURL, doi)
	c.Logger.Debug("fetching work", zap.String("url", workURL))

	var doc map[string]any
	if err := c.getJSON(workURL, &doc); err != nil {
		return nil, fmt.Errorf("openalex work: %w", err)
	}
	return doc, nil
}

// jossDOIPrefix marks DOIs minted by the Journal of Open Source Software.
const jossDOIPrefix = "10.21105/joss."

// JossDOI returns the first JOSS DOI among the given DOIs, if any.
func JossDOI(dois []string) string {
	for _, doi := range dois {
		if strings.HasPrefix(doi, jossDOIPrefix) {
			return doi
		}
	}
	return ""
}

// FetchJossPaper looks up the JOSS paper metadata behind a JOSS DOI.
func (c *Client) FetchJossPaper(doi string) (*models.JossDoc, error) {
	paperURL := apiURL(c.Config.JossBaseURL, "/papers/lookup",
		url.Values{"doi": {doi}})
	c.Logger.Debug("fetching joss paper", zap.String("url", paperURL))

	var doc models.JossDoc
	if err := c.getJSON(paperURL, &doc); err != nil {
		return nil, fmt.Errorf("joss lookup: %w", err)
	}
	return &doc, nil
}
