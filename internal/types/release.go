package types

// Codename identifies one distribution release. Comparison is exact-string;
// no ordering exists between arbitrary codenames.
type Codename string

// Catalog is an ordered list of codenames from one information source,
// most recent first. A catalog is immutable once fetched.
type Catalog struct {
	Source    CatalogSource
	Codenames []Codename
}

func (c Catalog) Contains(name Codename) bool {
	for _, candidate := range c.Codenames {
		if candidate == name {
			return true
		}
	}
	return false
}

func (c Catalog) Empty() bool {
	return len(c.Codenames) == 0
}
