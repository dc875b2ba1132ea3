package core

import "strings"

// OutputMarker is one locale-invariant token scanned for in captured
// package-manager output. Markers are data, not control flow: a match
// raises an advisory and can lift a stage's severity to warning, never
// more.
type OutputMarker struct {
	Token   string
	Message string
}

// MarkerSet is a versioned collection of output markers. The tokens are
// only stable because stage commands run with a pinned C locale; updating
// them for a new apt release means adding a new set, not editing call
// sites.
type MarkerSet struct {
	Version string
	Markers []OutputMarker
}

// AptMarkersV1 covers the apt output of Debian 11 through 13 under LC_ALL=C.
var AptMarkersV1 = MarkerSet{
	Version: "apt-v1",
	Markers: []OutputMarker{
		{Token: "unmet dependencies", Message: "unmet dependencies reported"},
		{Token: "held broken packages", Message: "held broken packages reported"},
		{Token: "The following packages have been kept back", Message: "packages kept back"},
		{Token: "The following packages will be REMOVED", Message: "package removals scheduled"},
		{Token: "dpkg was interrupted", Message: "dpkg was interrupted"},
		{Token: "\nW: ", Message: "apt warning emitted"},
		{Token: "\nE: ", Message: "apt error emitted"},
	},
}

// Scan returns one advisory per marker found in output. Order follows the
// marker set, not the output.
func (s MarkerSet) Scan(output string) []string {
	// leading-line markers would be missed by the \n-anchored tokens
	padded := "\n" + output
	var advisories []string
	for _, marker := range s.Markers {
		if strings.Contains(padded, marker.Token) {
			advisories = append(advisories, marker.Message)
		}
	}
	return advisories
}
