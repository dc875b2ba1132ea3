package cli

import (
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------- Command tree tests ----------

func TestRootCommandHasSubcommands(t *testing.T) {
	root := newRootCommand()
	names := make([]string, 0, len(root.Commands()))
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}
	for _, name := range []string{"refresh", "transition"} {
		assert.Contains(t, names, name, "missing subcommand: %s", name)
	}
}

func TestRootCommandVersion(t *testing.T) {
	root := newRootCommand()
	assert.Equal(t, "dev", root.Version)
}

func TestRefreshCommandFlags(t *testing.T) {
	cmd := newRefreshCommand()
	flags := []string{
		"release-feed-url", "mirror-url", "sources-file", "sources-dir",
		"backup-dir", "capture-dir", "assume-yes", "non-interactive",
	}
	for _, name := range flags {
		flag := cmd.Flags().Lookup(name)
		assert.NotNil(t, flag, "missing flag: %s", name)
	}
}

func TestTransitionCommandFlags(t *testing.T) {
	cmd := newTransitionCommand()
	flags := []string{
		"release-feed-url", "mirror-url", "sources-file", "sources-dir",
		"backup-dir", "capture-dir", "assume-yes", "non-interactive",
		"dry-run",
	}
	for _, name := range flags {
		flag := cmd.Flags().Lookup(name)
		assert.NotNil(t, flag, "missing flag: %s", name)
	}
}

// ---------- Config resolution tests ----------

func TestConfigFromViperDefaults(t *testing.T) {
	viper.Reset()
	cfg := configFromViper()
	assert.Equal(t, "/etc/apt/sources.list", cfg.RootFile)
	assert.Equal(t, "/etc/apt/sources.list.d", cfg.DropInDir)
	assert.True(t, cfg.Interactive)
	assert.False(t, cfg.AssumeYes)
}

func TestConfigFromViperOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	viper.Set("sources_file", "/tmp/sources.list")
	viper.Set("mirror_url", "https://mirror.example/debian/dists/")
	viper.Set("assume_yes", true)
	viper.Set("non_interactive", true)

	cfg := configFromViper()
	assert.Equal(t, "/tmp/sources.list", cfg.RootFile)
	assert.Equal(t, "https://mirror.example/debian/dists/", cfg.MirrorURL)
	assert.True(t, cfg.AssumeYes)
	assert.False(t, cfg.Interactive)
}

func TestInitConfigMissingExplicitFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	err := initConfig("/nonexistent/avular-upgrade.yaml")
	require.Error(t, err)
	assert.Equal(t, errbuilder.CodeInvalidArgument, errbuilder.CodeOf(err))
}

// ---------- Exit code tests ----------

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name: "invalid argument",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInvalidArgument).
				WithMsg("bad input"),
			expected: 2,
		},
		{
			name: "permission denied",
			err: errbuilder.New().
				WithCode(errbuilder.CodePermissionDenied).
				WithMsg("must run as root"),
			expected: 3,
		},
		{
			name: "no compatible release",
			err: errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg("no compatible release: catalogs do not intersect"),
			expected: 4,
		},
		{
			name: "catalog response empty",
			err: errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg("catalog response empty"),
			expected: 4,
		},
		{
			name: "generic failed precondition",
			err: errbuilder.New().
				WithCode(errbuilder.CodeFailedPrecondition).
				WithMsg("precondition failed: another upgrade is already running"),
			expected: 3,
		},
		{
			name: "not found",
			err: errbuilder.New().
				WithCode(errbuilder.CodeNotFound).
				WithMsg("failed to read root sources file"),
			expected: 5,
		},
		{
			name: "catalog endpoint unavailable",
			err: errbuilder.New().
				WithCode(errbuilder.CodeUnavailable).
				WithMsg("catalog fetch failed"),
			expected: 5,
		},
		{
			name: "internal error",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("stage failed: full-upgrade"),
			expected: 5,
		},
		{
			name:     "unknown error",
			err:      assert.AnError,
			expected: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := exitCodeForError(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{
			name: "errbuilder with msg",
			err: errbuilder.New().
				WithCode(errbuilder.CodeInternal).
				WithMsg("something broke"),
			expected: "something broke",
		},
		{
			name:     "plain error",
			err:      assert.AnError,
			expected: assert.AnError.Error(),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := errorMessage(tt.err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
