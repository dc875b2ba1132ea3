//go:build integration

package integration

import (
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcexec "github.com/testcontainers/testcontainers-go/exec"
	"github.com/testcontainers/testcontainers-go/wait"

	"avular-upgrade/internal/core"
)

// Runs the real package manager inside a Debian container and feeds its
// output through the marker scanner, so the marker set is validated
// against actual apt output rather than hand-written fixtures.
func TestAptOutputMarkersWithTestcontainers(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping testcontainers integration in short mode")
	}

	ctx := t.Context()
	req := testcontainers.ContainerRequest{
		Image:      "debian:bookworm-slim",
		Cmd:        []string{"sleep", "300"},
		WaitingFor: wait.ForExec([]string{"true"}).WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	// an unreachable repository makes apt-get update emit its E:/W:
	// prefixed diagnostics
	exitCode, reader, err := container.Exec(ctx, []string{"sh", "-c", strings.Join([]string{
		"echo 'deb http://127.0.0.1:1/debian bookworm main' > /etc/apt/sources.list",
		"rm -f /etc/apt/sources.list.d/*.list /etc/apt/sources.list.d/*.sources",
		"LC_ALL=C LANG=C apt-get -q update 2>&1",
	}, " && ")}, tcexec.Multiplexed())
	require.NoError(t, err)
	require.NotEqual(t, 0, exitCode, "apt-get update against an unreachable mirror should fail")

	raw, err := io.ReadAll(reader)
	require.NoError(t, err)
	output := string(raw)
	t.Logf("apt-get update output:\n%s", output)

	advisories := core.AptMarkersV1.Scan(output)
	require.Contains(t, advisories, "apt error emitted", "full output:\n%s", output)

	// healthy invocation stays marker-free
	_, reader, err = container.Exec(ctx, []string{"sh", "-c",
		"LC_ALL=C LANG=C apt-get -q check 2>&1 || true",
	}, tcexec.Multiplexed())
	require.NoError(t, err)
	raw, err = io.ReadAll(reader)
	require.NoError(t, err)
	require.Empty(t, core.AptMarkersV1.Scan(string(raw)))
}
