package adapters

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"
	debversion "github.com/knqyf263/go-deb-version"

	"avular-upgrade/internal/ports"
	"avular-upgrade/internal/shared"
	"avular-upgrade/internal/types"
)

const catalogConnectTimeout = 10 * time.Second
const catalogTotalTimeout = 30 * time.Second

// ReleaseFeedAdapter fetches the generic release-lifecycle feed: a JSON
// array of release cycles with their codenames. No retries; the caller
// decides whether to retry.
type ReleaseFeedAdapter struct {
	Endpoint string
	Client   *http.Client
}

type releaseCycle struct {
	Cycle    string `json:"cycle"`
	Codename string `json:"codename"`
}

func NewReleaseFeedAdapter(endpoint string) ReleaseFeedAdapter {
	return ReleaseFeedAdapter{
		Endpoint: endpoint,
		Client:   newCatalogClient(),
	}
}

func newCatalogClient() *http.Client {
	dialer := &net.Dialer{Timeout: catalogConnectTimeout}
	return &http.Client{
		Timeout: catalogTotalTimeout,
		Transport: &http.Transport{
			DialContext:         dialer.DialContext,
			TLSHandshakeTimeout: catalogConnectTimeout,
		},
	}
}

func (a ReleaseFeedAdapter) Fetch(ctx context.Context) (types.Catalog, error) {
	body, err := fetchCatalogBody(ctx, a.Client, a.Endpoint)
	if err != nil {
		return types.Catalog{}, err
	}
	var cycles []releaseCycle
	if err := json.Unmarshal(body, &cycles); err != nil {
		return types.Catalog{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("catalog response malformed").
			WithCause(err)
	}
	// newest cycle first; entries with unparsable cycle identifiers sink
	// to the end in their original order
	sort.SliceStable(cycles, func(i, j int) bool {
		vi, erri := debversion.NewVersion(cycles[i].Cycle)
		vj, errj := debversion.NewVersion(cycles[j].Cycle)
		if erri != nil || errj != nil {
			return errj != nil && erri == nil
		}
		return vi.Compare(vj) > 0
	})
	catalog := types.Catalog{Source: types.CatalogSourceReleaseFeed}
	seen := map[types.Codename]struct{}{}
	for _, cycle := range cycles {
		name := types.Codename(strings.ToLower(strings.TrimSpace(cycle.Codename)))
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		catalog.Codenames = append(catalog.Codenames, name)
	}
	if catalog.Empty() {
		return types.Catalog{}, errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("catalog response empty")
	}
	return catalog, nil
}

func fetchCatalogBody(ctx context.Context, client *http.Client, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create catalog request").
			WithCause(err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("catalog fetch failed").
			WithCause(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeUnavailable).
			WithMsg("catalog fetch failed").
			WithCause(shared.HTTPStatusError(resp.StatusCode, url))
	}
	body, err := readAllBounded(resp.Body)
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read catalog response").
			WithCause(err)
	}
	return body, nil
}

var _ ports.CatalogPort = ReleaseFeedAdapter{}
