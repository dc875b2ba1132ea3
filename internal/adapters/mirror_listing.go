package adapters

import (
	"context"
	"io"
	"net/http"
	"regexp"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"avular-upgrade/internal/ports"
	"avular-upgrade/internal/types"
)

// MirrorListingAdapter fetches the vendor mirror's dists directory listing
// and extracts the codename directories. Listing order is whatever the
// mirror emits; the resolver only uses this catalog as a membership
// filter.
type MirrorListingAdapter struct {
	Endpoint string
	Client   *http.Client
}

func NewMirrorListingAdapter(endpoint string) MirrorListingAdapter {
	return MirrorListingAdapter{
		Endpoint: endpoint,
		Client:   newCatalogClient(),
	}
}

var listingAnchor = regexp.MustCompile(`(?i)<a[^>]*href=["']([^"'?#]+)/["']`)

var codenameToken = regexp.MustCompile(`^[a-z][a-z-]*$`)

// suite aliases are symlinks to codename directories, never codenames
// themselves
var listingAliases = map[string]struct{}{
	"stable":           {},
	"oldstable":        {},
	"oldoldstable":     {},
	"testing":          {},
	"unstable":         {},
	"sid":              {},
	"experimental":     {},
	"devel":            {},
	"rc-buggy":         {},
	"proposed-updates": {},
}

func (a MirrorListingAdapter) Fetch(ctx context.Context) (types.Catalog, error) {
	body, err := fetchCatalogBody(ctx, a.Client, a.Endpoint)
	if err != nil {
		return types.Catalog{}, err
	}
	catalog := types.Catalog{Source: types.CatalogSourceMirror}
	seen := map[types.Codename]struct{}{}
	for _, match := range listingAnchor.FindAllStringSubmatch(string(body), -1) {
		name := strings.TrimSpace(match[1])
		name = strings.TrimSuffix(name, "/")
		if idx := strings.LastIndex(name, "/"); idx >= 0 {
			name = name[idx+1:]
		}
		if !codenameToken.MatchString(name) {
			continue
		}
		if _, alias := listingAliases[name]; alias {
			continue
		}
		// suite variants like codename-updates point back at a base
		// codename directory
		if idx := strings.Index(name, "-"); idx > 0 {
			name = name[:idx]
		}
		codename := types.Codename(name)
		if _, ok := seen[codename]; ok {
			continue
		}
		seen[codename] = struct{}{}
		catalog.Codenames = append(catalog.Codenames, codename)
	}
	if catalog.Empty() {
		return types.Catalog{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("catalog response empty")
	}
	return catalog, nil
}

const maxCatalogBody = 4 << 20

func readAllBounded(r io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(r, maxCatalogBody))
}

var _ ports.CatalogPort = MirrorListingAdapter{}
