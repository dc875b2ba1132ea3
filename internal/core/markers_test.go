package core

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarkerScanFindsKnownTokens(t *testing.T) {
	output := "Reading package lists...\n" +
		"E: Unable to correct problems, you have held broken packages.\n" +
		"The following packages will be REMOVED:\n  old-agent\n"
	advisories := AptMarkersV1.Scan(output)
	require.Contains(t, advisories, "held broken packages reported")
	require.Contains(t, advisories, "package removals scheduled")
	require.Contains(t, advisories, "apt error emitted")
}

func TestMarkerScanMatchesLeadingLine(t *testing.T) {
	advisories := AptMarkersV1.Scan("W: a warning on the very first line\n")
	require.Contains(t, advisories, "apt warning emitted")
}

func TestMarkerScanCleanOutput(t *testing.T) {
	advisories := AptMarkersV1.Scan("Reading package lists...\nAll packages are up to date.\n")
	require.Empty(t, advisories)
}
