package app

import (
	"avular-upgrade/internal/adapters"
	"avular-upgrade/internal/ports"
)

// Config carries the OS-defined locations and endpoints the adapters work
// against. Tests override them to temp directories and httptest servers.
type Config struct {
	ReleaseFeedURL string
	MirrorURL      string
	RootFile       string
	DropInDir      string
	BackupRoot     string
	CaptureDir     string
	LockPath       string
	VendorHosts    []string
	AssumeYes      bool
	Interactive    bool
	// MinBatteryPercent gates a transition attempted on battery power.
	MinBatteryPercent int
}

func DefaultConfig() Config {
	return Config{
		ReleaseFeedURL:    "https://endoflife.date/api/debian.json",
		MirrorURL:         "https://deb.debian.org/debian/dists/",
		RootFile:          "/etc/apt/sources.list",
		DropInDir:         "/etc/apt/sources.list.d",
		BackupRoot:        "/var/backups/avular-upgrade",
		CaptureDir:        "/var/log/avular-upgrade",
		LockPath:          "/run/avular-upgrade.lock",
		VendorHosts:       []string{"deb.debian.org", "security.debian.org", "packages.avular.com"},
		Interactive:       true,
		MinBatteryPercent: 30,
	}
}

type Service struct {
	Primary   ports.CatalogPort
	Secondary ports.CatalogPort
	Store     ports.RepoConfigPort
	Runner    ports.StageRunnerPort
	Preflight ports.PreflightPort
	Presenter ports.PresenterPort
	Lock      ports.TransitionLockPort
	Config    Config
}

func NewService(cfg Config) Service {
	store := adapters.NewRepoConfigFileAdapter(cfg.RootFile, cfg.DropInDir, cfg.BackupRoot)
	var presenter ports.PresenterPort
	if cfg.Interactive {
		presenter = adapters.NewConsolePresenter(cfg.AssumeYes)
	} else {
		presenter = adapters.NewLogPresenter(cfg.AssumeYes)
	}
	return Service{
		Primary:   adapters.NewReleaseFeedAdapter(cfg.ReleaseFeedURL),
		Secondary: adapters.NewMirrorListingAdapter(cfg.MirrorURL),
		Store:     store,
		Runner:    adapters.NewStageExecAdapter(),
		Preflight: adapters.NewSystemPreflightAdapter(store, cfg.MirrorURL, cfg.VendorHosts),
		Presenter: presenter,
		Lock:      adapters.NewFlockTransitionLock(cfg.LockPath),
		Config:    cfg,
	}
}
