package adapters

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v4/disk"

	"avular-upgrade/internal/ports"
	"avular-upgrade/internal/shared"
	"avular-upgrade/internal/types"
)

// fallbackRequiredBytes is the fixed assumption used when the simulated
// install output cannot be parsed. Placeholder policy, not a correctness
// requirement.
const fallbackRequiredBytes = 2 << 30

var requiredBinaries = []string{"apt-get", "apt-mark", "dpkg"}

var spaceLine = regexp.MustCompile(`After this operation, ([0-9.,]+) (B|kB|MB|GB) (?:of additional disk space will be used|disk space will be freed)`)

// SystemPreflightAdapter implements the environment checks against the
// live system: apt, dpkg, sysfs, and the vendor mirror.
type SystemPreflightAdapter struct {
	Store       ports.RepoConfigPort
	MirrorURL   string
	VendorHosts []string
	// PowerSupplyDir is /sys/class/power_supply in production; tests
	// point it elsewhere.
	PowerSupplyDir string
	RootMount      string
}

func NewSystemPreflightAdapter(store ports.RepoConfigPort, mirrorURL string, vendorHosts []string) SystemPreflightAdapter {
	return SystemPreflightAdapter{
		Store:          store,
		MirrorURL:      mirrorURL,
		VendorHosts:    vendorHosts,
		PowerSupplyDir: "/sys/class/power_supply",
		RootMount:      "/",
	}
}

func (a SystemPreflightAdapter) CheckPermissions() error {
	if os.Geteuid() != 0 {
		return errbuilder.New().
			WithCode(errbuilder.CodePermissionDenied).
			WithMsg("root privileges required, re-run with sudo")
	}
	return nil
}

func (a SystemPreflightAdapter) CheckDependencies() error {
	for _, binary := range requiredBinaries {
		if _, err := exec.LookPath(binary); err != nil {
			return errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg("precondition failed: missing dependency " + binary).
				WithCause(err)
		}
	}
	return nil
}

func (a SystemPreflightAdapter) CheckConnectivity(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, a.MirrorURL, nil)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to create connectivity probe").
			WithCause(err)
	}
	resp, err := newCatalogClient().Do(req)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("precondition failed: no connectivity to the package mirror").
			WithCause(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return errbuilder.New().
			WithCode(errbuilder.CodeFailedPrecondition).
			WithMsg("precondition failed: package mirror unavailable").
			WithCause(shared.HTTPStatusError(resp.StatusCode, a.MirrorURL))
	}
	return nil
}

func (a SystemPreflightAdapter) EstimateRequiredSpace(ctx context.Context) (types.SpaceEstimate, error) {
	usage, err := disk.UsageWithContext(ctx, a.RootMount)
	if err != nil {
		return types.SpaceEstimate{}, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to read filesystem usage").
			WithCause(err)
	}
	estimate := types.SpaceEstimate{AvailableBytes: usage.Free}

	cmd := exec.Command("apt-get", "-y", "-s", "full-upgrade")
	cmd.Env = append(os.Environ(), stageEnv...)
	output, _ := cmd.CombinedOutput()
	required, ok := parseSpaceEstimate(string(output))
	if !ok {
		log.Debug().Msg("simulated install output not parsable, using fixed space assumption")
		estimate.RequiredBytes = fallbackRequiredBytes
		estimate.Heuristic = true
		return estimate, nil
	}
	estimate.RequiredBytes = required
	return estimate, nil
}

func parseSpaceEstimate(output string) (uint64, bool) {
	match := spaceLine.FindStringSubmatch(output)
	if match == nil {
		return 0, false
	}
	if strings.Contains(match[0], "freed") {
		return 0, true
	}
	value, err := strconv.ParseFloat(strings.ReplaceAll(match[1], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	switch match[2] {
	case "kB":
		value *= 1000
	case "MB":
		value *= 1000 * 1000
	case "GB":
		value *= 1000 * 1000 * 1000
	}
	return uint64(value), true
}

func (a SystemPreflightAdapter) CheckPackageManagerHealth(ctx context.Context) (types.PackageManagerHealth, error) {
	if err := ctx.Err(); err != nil {
		return types.PackageManagerHealth{}, err
	}
	health := types.PackageManagerHealth{}

	check := exec.Command("apt-get", "-q", "check")
	check.Env = append(os.Environ(), stageEnv...)
	if output, err := check.CombinedOutput(); err != nil {
		log.Warn().Err(shared.CommandError(output, err)).Msg("package manager check failed")
		health.BrokenDeps = true
	}

	held := exec.Command("apt-mark", "showhold")
	held.Env = append(os.Environ(), stageEnv...)
	output, err := held.Output()
	if err != nil {
		return health, errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to list held packages").
			WithCause(err)
	}
	for _, line := range strings.Split(string(output), "\n") {
		if name := strings.TrimSpace(line); name != "" {
			health.HeldPackages = append(health.HeldPackages, name)
		}
	}
	return health, nil
}

func (a SystemPreflightAdapter) CheckPowerState() (types.PowerState, error) {
	entries, err := os.ReadDir(a.PowerSupplyDir)
	if err != nil {
		// no sysfs power info means mains-powered as far as we can tell
		return types.PowerState{OnBattery: false, Percentage: 100}, nil
	}
	state := types.PowerState{OnBattery: false, Percentage: 100}
	for _, entry := range entries {
		base := filepath.Join(a.PowerSupplyDir, entry.Name())
		kind, err := os.ReadFile(filepath.Join(base, "type"))
		if err != nil || strings.TrimSpace(string(kind)) != "Battery" {
			continue
		}
		if capacity, err := os.ReadFile(filepath.Join(base, "capacity")); err == nil {
			if value, err := strconv.Atoi(strings.TrimSpace(string(capacity))); err == nil {
				state.Percentage = value
			}
		}
		if status, err := os.ReadFile(filepath.Join(base, "status")); err == nil {
			if strings.TrimSpace(string(status)) == "Discharging" {
				state.OnBattery = true
			}
		}
	}
	return state, nil
}

func (a SystemPreflightAdapter) DetectThirdPartyRepos() ([]string, error) {
	files, err := a.Store.Load()
	if err != nil {
		return nil, err
	}
	allowed := map[string]struct{}{}
	for _, host := range a.VendorHosts {
		allowed[strings.ToLower(host)] = struct{}{}
	}
	var thirdParty []string
	for _, file := range files {
		for _, line := range file.Lines {
			if line.Entry == nil || !line.Entry.Enabled {
				continue
			}
			parsed, err := url.Parse(line.Entry.URI)
			if err != nil {
				continue
			}
			host := strings.ToLower(parsed.Hostname())
			if host == "" {
				continue
			}
			if _, ok := allowed[host]; !ok {
				thirdParty = append(thirdParty, file.Path)
				break
			}
		}
	}
	return shared.UniqueStrings(thirdParty), nil
}

var _ ports.PreflightPort = SystemPreflightAdapter{}
