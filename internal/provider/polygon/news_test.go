package polygon_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"optiontracker/internal/httpx/httpxmock"
	"optiontracker/internal/provider"
	"optiontracker/internal/provider/polygon"
)

var mockNewsResponse = map[string]any{
	"status": "OK",
	"results": []map[string]any{
		{
			"title":         "Apple unveils new chips",
			"article_url":   "https://news.example/apple",
			"published_utc": "2025-01-02T15:04:05Z",
			"publisher":     map[string]any{"name": "Benzinga"},
		},
		{
			"title":         "Markets close higher",
			"article_url":   "https://news.example/markets",
			"published_utc": "2025-01-02T14:00:00Z",
		},
	},
}

func jsonResponse(t *testing.T, v any) *http.Response {
	t.Helper()
	buffer := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buffer).Encode(v))
	return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(buffer)}
}

func TestLatestNews(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock HTTP client
	httpClient := httpxmock.NewMockHTTPClient(ctrl)

	// Assert: stub the Do method
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, "/v2/reference/news", req.URL.Path)
			require.Equal(t, "AAPL", req.URL.Query().Get("ticker"))
			require.Equal(t, "1", req.URL.Query().Get("limit"))
			require.Equal(t, "test-key", req.URL.Query().Get("apiKey"))
			return jsonResponse(t, mockNewsResponse), nil
		}).
		Times(1)

	client, err := polygon.NewClient("test-key", polygon.WithHTTPClient(httpClient))
	require.NoError(t, err)

	// Act
	article, err := client.LatestNews(t.Context(), "aapl")
	require.NoError(t, err)

	// Assert: the first result is reshaped
	require.Equal(t, &provider.Article{
		Title:     "Apple unveils new chips",
		URL:       "https://news.example/apple",
		Source:    "Benzinga",
		Published: "2025-01-02T15:04:05Z",
	}, article)
}

func TestLatestNews_NoArticleIsNotAnError(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := httpxmock.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		Return(jsonResponse(t, map[string]any{"status": "OK", "results": []any{}}), nil).
		Times(1)

	client, err := polygon.NewClient("k", polygon.WithHTTPClient(httpClient))
	require.NoError(t, err)

	article, err := client.LatestNews(t.Context(), "QQQQ")
	require.NoError(t, err)
	require.Nil(t, article)
}

func TestGlobalNews(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := httpxmock.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Empty(t, req.URL.Query().Get("ticker"))
			require.Equal(t, "10", req.URL.Query().Get("limit"))
			require.Equal(t, "published_utc", req.URL.Query().Get("sort"))
			return jsonResponse(t, mockNewsResponse), nil
		}).
		Times(1)

	client, err := polygon.NewClient("k", polygon.WithHTTPClient(httpClient))
	require.NoError(t, err)

	articles, err := client.GlobalNews(t.Context(), 0)
	require.NoError(t, err)
	require.Len(t, articles, 2)
	// publisher missing falls back to the provider name
	require.Equal(t, "Polygon", articles[1].Source)
}

func TestGlobalNews_EmptyIsEmptySlice(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	httpClient := httpxmock.NewMockHTTPClient(ctrl)
	httpClient.EXPECT().Do(gomock.Any()).Return(jsonResponse(t, map[string]any{}), nil).Times(1)

	client, err := polygon.NewClient("k", polygon.WithHTTPClient(httpClient))
	require.NoError(t, err)

	articles, err := client.GlobalNews(t.Context(), 5)
	require.NoError(t, err)
	require.NotNil(t, articles)
	require.Empty(t, articles)
}

func TestNews_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		res  *http.Response
		err  error
		want string
	}{
		{"transport", nil, fmt.Errorf("dial tcp: timeout"), "performing request"},
		{"forbidden", &http.Response{StatusCode: http.StatusForbidden, Body: io.NopCloser(strings.NewReader(""))}, nil, "unauthorized"},
		{"rate limited", &http.Response{StatusCode: http.StatusTooManyRequests, Body: io.NopCloser(strings.NewReader(""))}, nil, "rate limited"},
		{"bad gateway", &http.Response{StatusCode: http.StatusBadGateway, Body: io.NopCloser(strings.NewReader(""))}, nil, "unexpected status code: 502"},
		{"garbage", &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader("nope"))}, nil, "decoding news response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			httpClient := httpxmock.NewMockHTTPClient(ctrl)
			httpClient.EXPECT().Do(gomock.Any()).Return(tt.res, tt.err).Times(1)

			client, err := polygon.NewClient("k", polygon.WithHTTPClient(httpClient))
			require.NoError(t, err)

			article, err := client.LatestNews(t.Context(), "AAPL")
			require.ErrorContains(t, err, tt.want)
			require.Nil(t, article)
		})
	}
}
