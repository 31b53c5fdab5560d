// Package wikipedia fetches article intro summaries for the map's
// detail popups.
package wikipedia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"wikiscope/pkg/request"
)

// ErrNotFound means the wiki has no article (or no extract) under the
// requested title.
var ErrNotFound = errors.New("article not found")

// Client handles Wikipedia API interactions.
type Client struct {
	request     *request.Client
	APIEndpoint string // Optional override for testing
	Language    string
}

// NewClient creates a new Wikipedia client. An empty lang defaults to
// English.
func NewClient(r *request.Client, lang string) *Client {
	if lang == "" {
		lang = "en"
	}
	return &Client{request: r, Language: lang}
}

// Summary is the cleaned intro of one article.
type Summary struct {
	Title   string `json:"title"`
	Extract string `json:"extract"`
	URL     string `json:"url"`
}

// GetSummary fetches the intro section of an article and strips it down
// to plain text. An empty lang falls back to the client's language.
func (c *Client) GetSummary(ctx context.Context, title, lang string) (*Summary, error) {
	if lang == "" {
		lang = c.Language
	}

	var endpoint string
	if c.APIEndpoint != "" {
		endpoint = c.APIEndpoint
	} else {
		endpoint = fmt.Sprintf("https://%s.wikipedia.org/w/api.php", lang)
	}

	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}
	q := u.Query()
	q.Add("action", "query")
	q.Add("prop", "extracts")
	q.Add("exintro", "1")
	q.Add("titles", title)
	q.Add("format", "json")
	q.Add("redirects", "1")
	u.RawQuery = q.Encode()

	body, err := c.request.Get(ctx, u.String())
	if err != nil {
		return nil, err
	}

	var apiResp struct {
		Query struct {
			Pages map[string]struct {
				Title   string `json:"title"`
				Extract string `json:"extract"`
			} `json:"pages"`
		} `json:"query"`
	}
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode json: %w", err)
	}

	// Missing pages come back keyed "-1" with no extract.
	for _, page := range apiResp.Query.Pages {
		if page.Extract == "" {
			continue
		}
		return &Summary{
			Title:   page.Title,
			Extract: StripHTML(page.Extract),
			URL:     articleURL(lang, page.Title),
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrNotFound, title)
}

func articleURL(lang, title string) string {
	return fmt.Sprintf("https://%s.wikipedia.org/wiki/%s",
		lang, url.PathEscape(strings.ReplaceAll(title, " ", "_")))
}
