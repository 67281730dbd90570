package baserow_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petrolnearme/petrolnearme/internal/baserow"
)

func TestFetchAllRows_SinglePage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Token secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, "/api/database/rows/table/12345/", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("user_field_names"))
		assert.Equal(t, "100", r.URL.Query().Get("size"))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"count": 2,
			"next": null,
			"previous": null,
			"results": [
				{"id": 1, "Station Name": "Shell Coburg", "Latitude": "-37.7441"},
				{"id": 2, "Station Name": "BP Brunswick", "Latitude": "-37.7667"}
			]
		}`)
	}))
	defer server.Close()

	client := baserow.NewClient(baserow.ClientConfig{
		BaseURL: server.URL,
		Token:   "secret-token",
	})

	rows, err := client.FetchAllRows(context.Background(), "12345", 100)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Shell Coburg", rows[0]["Station Name"])
	assert.Equal(t, "BP Brunswick", rows[1]["Station Name"])
}

func TestFetchAllRows_MultiPage(t *testing.T) {
	var mu sync.Mutex
	var requested []string

	server := httptest.NewServer(http.HandlerFunc(nil))
	defer server.Close()

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requested = append(requested, r.URL.String())
		page := len(requested)
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if page == 1 {
			// The second page cursor deliberately uses a shape the client
			// could not derive from the first URL: it must be followed as-is.
			next := server.URL + "/api/database/rows/table/777/?cursor=opaque-abc&limit=11"
			fmt.Fprintf(w, `{"count": 61, "next": %q, "results": [`, next)
			for i := 1; i <= 50; i++ {
				if i > 1 {
					fmt.Fprint(w, ",")
				}
				fmt.Fprintf(w, `{"id": %d}`, i)
			}
			fmt.Fprint(w, `]}`)
			return
		}

		fmt.Fprint(w, `{"count": 61, "next": null, "results": [`)
		for i := 51; i <= 61; i++ {
			if i > 51 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"id": %d}`, i)
		}
		fmt.Fprint(w, `]}`)
	})

	client := baserow.NewClient(baserow.ClientConfig{
		BaseURL: server.URL,
		Token:   "secret-token",
	})

	rows, err := client.FetchAllRows(context.Background(), "777", 50)
	require.NoError(t, err)
	assert.Len(t, rows, 61)
	assert.Equal(t, float64(1), rows[0]["id"])
	assert.Equal(t, float64(61), rows[60]["id"])

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, requested, 2)
	assert.Equal(t, "/api/database/rows/table/777/?user_field_names=true&size=50", requested[0])
	assert.Equal(t, "/api/database/rows/table/777/?cursor=opaque-abc&limit=11", requested[1])
}

func TestFetchAllRows_MidPageFailureReturnsNothing(t *testing.T) {
	var mu sync.Mutex
	var pages int

	server := httptest.NewServer(http.HandlerFunc(nil))
	defer server.Close()

	server.Config.Handler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		mu.Lock()
		pages++
		page := pages
		mu.Unlock()

		if page == 1 {
			w.Header().Set("Content-Type", "application/json")
			next := server.URL + "/api/database/rows/table/9/?page=2"
			fmt.Fprintf(w, `{"count": 3, "next": %q, "results": [{"id": 1}, {"id": 2}]}`, next)
			return
		}

		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"error": "ERROR_NO_PERMISSION_TO_TABLE"}`)
	})

	client := baserow.NewClient(baserow.ClientConfig{BaseURL: server.URL, Token: "t"})

	rows, err := client.FetchAllRows(context.Background(), "9", 2)
	assert.Nil(t, rows, "partial results must not be returned")

	var fetchErr *baserow.RemoteFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusForbidden, fetchErr.StatusCode)
	assert.Contains(t, fetchErr.Body, "ERROR_NO_PERMISSION_TO_TABLE")
}

func TestFetchAllRows_ClientError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error": "ERROR_TOKEN_DOES_NOT_EXIST"}`)
	}))
	defer server.Close()

	client := baserow.NewClient(baserow.ClientConfig{BaseURL: server.URL, Token: "bad"})

	rows, err := client.FetchAllRows(context.Background(), "12345", 100)
	assert.Nil(t, rows)

	var fetchErr *baserow.RemoteFetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, http.StatusUnauthorized, fetchErr.StatusCode)
	assert.Contains(t, fetchErr.Error(), "401")
}

func TestFetchAllRows_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"count": 1, "next": null`)
	}))
	defer server.Close()

	client := baserow.NewClient(baserow.ClientConfig{BaseURL: server.URL, Token: "t"})

	_, err := client.FetchAllRows(context.Background(), "12345", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode rows response")
}

func TestFetchAllRows_MissingResultsArray(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"count": 0, "next": null}`)
	}))
	defer server.Close()

	client := baserow.NewClient(baserow.ClientConfig{BaseURL: server.URL, Token: "t"})

	_, err := client.FetchAllRows(context.Background(), "12345", 100)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing results array")
}

func TestFetchAllRows_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := baserow.NewClient(baserow.ClientConfig{BaseURL: server.URL, Token: "t"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchAllRows(ctx, "12345", 100)
	assert.Error(t, err)
}

func TestFetchAllRows_DefaultPageSize(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("size"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"count": 0, "next": null, "results": []}`)
	}))
	defer server.Close()

	client := baserow.NewClient(baserow.ClientConfig{BaseURL: server.URL, Token: "t"})

	rows, err := client.FetchAllRows(context.Background(), "12345", 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
