package adapters

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/stretchr/testify/require"

	"avular-upgrade/internal/types"
)

const sampleListing = `<html><body>
<h1>Index of /debian/dists</h1>
<a href="../">../</a>
<a href="bookworm/">bookworm/</a>
<a href="bookworm-updates/">bookworm-updates/</a>
<a href="bookworm-backports/">bookworm-backports/</a>
<a href="trixie/">trixie/</a>
<a href="stable/">stable/</a>
<a href="oldstable/">oldstable/</a>
<a href="sid/">sid/</a>
<a href="Dists-README.txt">Dists-README.txt</a>
<a href="?C=M;O=A">Last modified</a>
</body></html>`

func TestMirrorListingFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(sampleListing))
	}))
	defer server.Close()

	catalog, err := NewMirrorListingAdapter(server.URL).Fetch(t.Context())
	require.NoError(t, err)
	require.Equal(t, types.CatalogSourceMirror, catalog.Source)
	require.Equal(t, []types.Codename{"bookworm", "trixie"}, catalog.Codenames)
}

func TestMirrorListingFetchUppercaseAttributes(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<A HREF="trixie/">trixie/</A>`))
	}))
	defer server.Close()

	catalog, err := NewMirrorListingAdapter(server.URL).Fetch(t.Context())
	require.NoError(t, err)
	require.Equal(t, []types.Codename{"trixie"}, catalog.Codenames)
}

func TestMirrorListingFetchAbsolutePaths(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<a href="/debian/dists/bookworm/">bookworm/</a>`))
	}))
	defer server.Close()

	catalog, err := NewMirrorListingAdapter(server.URL).Fetch(t.Context())
	require.NoError(t, err)
	require.Equal(t, []types.Codename{"bookworm"}, catalog.Codenames)
}

func TestMirrorListingFetchNoCodenames(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body><a href="../">../</a></body></html>`))
	}))
	defer server.Close()

	_, err := NewMirrorListingAdapter(server.URL).Fetch(t.Context())
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeFailedPrecondition, errbuilder.CodeOf(err))
}

func TestMirrorListingFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := NewMirrorListingAdapter(server.URL).Fetch(t.Context())
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeUnavailable, errbuilder.CodeOf(err))
}
