package types

type PackageManagerHealth struct {
	BrokenDeps   bool
	HeldPackages []string
}

type PowerState struct {
	OnBattery  bool
	Percentage int
}

type SpaceEstimate struct {
	RequiredBytes  uint64
	AvailableBytes uint64
	// Heuristic marks estimates produced by the fixed fallback when the
	// simulated-install output could not be parsed.
	Heuristic bool
}
