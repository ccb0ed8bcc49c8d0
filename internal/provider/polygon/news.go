package polygon

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"optiontracker/internal/httpx"
	"optiontracker/internal/provider"
)

const defaultSource = "Polygon"

type newsResponse struct {
	Results []struct {
		Title        string `json:"title"`
		ArticleURL   string `json:"article_url"`
		PublishedUTC string `json:"published_utc"`
		Publisher    *struct {
			Name string `json:"name"`
		} `json:"publisher"`
	} `json:"results"`
}

// LatestNews returns the newest article mentioning ticker, or nil when there
// is none.
func (c *Client) LatestNews(ctx context.Context, ticker string) (*provider.Article, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	query := maps.Clone(c.query)
	query.Set("ticker", ticker)
	query.Set("limit", "1")

	articles, err := c.news(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(articles) == 0 {
		return nil, nil
	}
	return &articles[0], nil
}

// GlobalNews returns up to limit of the most recently published articles.
func (c *Client) GlobalNews(ctx context.Context, limit int) ([]provider.Article, error) {
	if limit <= 0 {
		limit = 10
	}
	query := maps.Clone(c.query)
	query.Set("limit", strconv.Itoa(limit))
	query.Set("sort", "published_utc")
	query.Set("order", "desc")
	return c.news(ctx, query)
}

func (c *Client) news(ctx context.Context, query url.Values) ([]provider.Article, error) {
	endpoint := fmt.Sprintf("%s/v2/reference/news?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header = c.header.Clone()

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing request: %w", err)
	}
	defer res.Body.Close()

	switch res.StatusCode {
	case http.StatusOK:
		break

	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, fmt.Errorf("unauthorized")

	case http.StatusTooManyRequests:
		return nil, fmt.Errorf("rate limited")

	default:
		return nil, httpx.CheckStatus(res)
	}

	var body newsResponse
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding news response: %w", err)
	}

	articles := make([]provider.Article, 0, len(body.Results))
	for _, r := range body.Results {
		source := defaultSource
		if r.Publisher != nil && r.Publisher.Name != "" {
			source = r.Publisher.Name
		}
		articles = append(articles, provider.Article{
			Title:     r.Title,
			URL:       r.ArticleURL,
			Source:    source,
			Published: r.PublishedUTC,
		})
	}
	return articles, nil
}
