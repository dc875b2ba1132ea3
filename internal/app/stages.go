package app

import "avular-upgrade/internal/types"

// Stage lists are data: the pipeline treats failure handling per stage
// instead of branching around command invocations.

func refreshStages() []types.Stage {
	return []types.Stage{
		{
			Name:    "update package index",
			Command: []string{"apt-get", "-q", "update"},
			Weight:  1,
		},
		{
			Name:    "upgrade packages",
			Command: []string{"apt-get", "-y", "-o", "Dpkg::Options::=--force-confdef", "-o", "Dpkg::Options::=--force-confold", "upgrade"},
			Weight:  6,
		},
		{
			Name:              "remove unused packages",
			Command:           []string{"apt-get", "-y", "autoremove"},
			ContinueOnFailure: true,
			Weight:            1,
		},
	}
}

func transitionStages() []types.Stage {
	return []types.Stage{
		{
			Name:    "update package index",
			Command: []string{"apt-get", "-q", "update"},
			Weight:  1,
		},
		{
			Name:    "full distribution upgrade",
			Command: []string{"apt-get", "-y", "-o", "Dpkg::Options::=--force-confdef", "-o", "Dpkg::Options::=--force-confold", "full-upgrade"},
			Weight:  8,
		},
		{
			Name:              "remove unused packages",
			Command:           []string{"apt-get", "-y", "autoremove"},
			ContinueOnFailure: true,
			Weight:            1,
		},
	}
}

func resyncStage() types.Stage {
	return types.Stage{
		Name:    "re-synchronize package index",
		Command: []string{"apt-get", "-q", "update"},
		Weight:  1,
	}
}
