package adapters

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/require"

	"avular-upgrade/internal/types"
)

func TestReleaseFeedFetchOrdersNewestFirst(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// deliberately out of order
		_, _ = w.Write([]byte(`[
			{"cycle": "11", "codename": "Bullseye"},
			{"cycle": "13", "codename": "Trixie"},
			{"cycle": "12", "codename": "Bookworm"}
		]`))
	}))
	defer server.Close()

	catalog, err := NewReleaseFeedAdapter(server.URL).Fetch(t.Context())
	require.NoError(t, err)
	require.Equal(t, types.CatalogSourceReleaseFeed, catalog.Source)
	require.Equal(t, []types.Codename{"trixie", "bookworm", "bullseye"}, catalog.Codenames)
}

func TestReleaseFeedFetchSkipsEntriesWithoutCodename(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"cycle": "13", "codename": "trixie"}, {"cycle": "12.5"}]`))
	}))
	defer server.Close()

	catalog, err := NewReleaseFeedAdapter(server.URL).Fetch(t.Context())
	require.NoError(t, err)
	require.Equal(t, []types.Codename{"trixie"}, catalog.Codenames)
}

func TestReleaseFeedFetchEmptyResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty array", body: `[]`},
		{name: "entries without codenames", body: `[{"cycle": "13"}]`},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := NewReleaseFeedAdapter(server.URL).Fetch(t.Context())
			require.Error(t, err)
			require.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
		})
	}
}

func TestReleaseFeedFetchMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html>not json</html>`))
	}))
	defer server.Close()

	_, err := NewReleaseFeedAdapter(server.URL).Fetch(t.Context())
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestReleaseFeedFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewReleaseFeedAdapter(server.URL).Fetch(t.Context())
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeUnavailable, errbuilder.CodeOf(err))
}
