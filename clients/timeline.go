package clients

import (
	"fmt"
	"net/url"
	"time"

	"go.uber.org/zap"

	"greendex/models"
)

// FetchEventSummaries fetches the all-time and trailing-year event summaries
// for a repository. The timeline service only indexes GitHub.
func (c *Client) FetchEventSummaries(host, fullName string, now time.Time) (*models.EventsDoc, error) {
	if host != "GitHub" {
		return nil, fmt.Errorf("%w: timeline only covers GitHub, not %s", ErrNotFound, host)
	}

	summaryURL := fmt.Sprintf("%s/api/v1/events/%s/summary", c.Config.TimelineBaseURL, fullName)
	c.Logger.Debug("fetching event summary", zap.String("url", summaryURL))

	var doc models.EventsDoc
	if err := c.getJSON(summaryURL, &doc.Total); err != nil {
		return nil, fmt.Errorf("event summary: %w", err)
	}

	after := now.AddDate(-1, 0, 0).Format(time.RFC3339)
	lastYearURL := apiURL(c.Config.TimelineBaseURL, "/api/v1/events/"+fullName+"/summary",
		url.Values{"after": {after}})
	if err := c.getJSON(lastYearURL, &doc.LastYear); err != nil {
		return nil, fmt.Errorf("event summary last year: %w", err)
	}
	return &doc, nil
}
