package httpx

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestClientDo_DefaultHeaders(t *testing.T) {
	t.Parallel()

	var gotUA, gotKey, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotKey = r.Header.Get("X-Key")
		gotAccept = r.Header.Get("Accept")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(time.Second)
	c.Headers = map[string]string{"X-Key": "k", "Accept": "application/json"}

	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, srv.URL, http.NoBody)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/plain")

	res, err := c.Do(req)
	require.NoError(t, err)
	res.Body.Close()

	require.Equal(t, "option-tracker/1.0", gotUA)
	require.Equal(t, "k", gotKey)
	// request headers win over defaults
	require.Equal(t, "text/plain", gotAccept)
}

func TestCheckStatus(t *testing.T) {
	t.Parallel()

	ok := &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}
	require.NoError(t, CheckStatus(ok))

	bad := &http.Response{StatusCode: http.StatusBadGateway, Body: io.NopCloser(strings.NewReader(" upstream down \n"))}
	err := CheckStatus(bad)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	require.Equal(t, http.StatusBadGateway, se.Code)
	require.Equal(t, "upstream down", se.Body)
	require.Equal(t, "unexpected status code: 502: upstream down", err.Error())
}
