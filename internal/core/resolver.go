package core

import (
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"avular-upgrade/internal/types"
)

// ReleaseResolver picks the target codename for a transition by
// intersecting two independently sourced catalogs.
type ReleaseResolver struct{}

func NewReleaseResolver() ReleaseResolver {
	return ReleaseResolver{}
}

// Resolve returns the first codename of primary, in primary's
// most-recent-first order, that secondary also lists. Primary's ordering is
// authoritative; secondary acts only as a membership filter. This encodes
// "prefer the newest upstream release the vendor mirror also carries".
func (r ReleaseResolver) Resolve(primary types.Catalog, secondary types.Catalog) (types.Codename, error) {
	if primary.Empty() || secondary.Empty() {
		return "", errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("no compatible release: a catalog is empty")
	}
	for _, candidate := range primary.Codenames {
		if secondary.Contains(candidate) {
			log.Debug().
				Str("codename", string(candidate)).
				Str("primary", string(primary.Source)).
				Str("secondary", string(secondary.Source)).
				Msg("resolved target release")
			return candidate, nil
		}
	}
	return "", errbuilder.New().
		WithCode(errbuilder.CodeFailedPrecondition).
		WithMsg("no compatible release: catalogs do not intersect")
}
