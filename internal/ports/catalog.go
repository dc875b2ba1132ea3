package ports

import (
	"context"

	"avular-upgrade/internal/types"
)

// CatalogPort fetches the list of known release codenames from one remote
// source. Implementations apply bounded timeouts and never retry; the
// caller decides whether to retry.
type CatalogPort interface {
	Fetch(ctx context.Context) (types.Catalog, error)
}
