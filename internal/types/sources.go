package types

// RepoEntry is one parsed one-line-style apt source definition. Disabled
// entries are commented-out lines that still parse as a source definition.
type RepoEntry struct {
	Kind       EntryKind
	Options    string
	URI        string
	Suite      Codename
	Components []string
	Enabled    bool
}

// SourceLine is either a parsed entry or a verbatim raw line (comment,
// blank, or anything that does not parse as a source definition). Exactly
// one of the two is set.
type SourceLine struct {
	Raw   string
	Entry *RepoEntry
}

// SourceFile is the ordered content of one repository definition file.
// Line order is preserved across rewrites.
type SourceFile struct {
	Path  string
	Lines []SourceLine
}
