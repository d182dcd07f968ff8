package render

import (
	"encoding/base64"
	"net/netip"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostinit/hostinit/internal/core/domain"
)

func testDeployment() *domain.Deployment {
	return &domain.Deployment{
		EnvironmentPrefix: "dev",
		NetworkCIDR:       netip.MustParsePrefix("10.0.0.0/16"),
		SubnetCIDR:        netip.MustParsePrefix("10.0.10.0/24"),
		AvailabilityZone:  "us-east-1a",
		AdminSourceIP:     netip.MustParsePrefix("203.0.113.5/32"),
		InstanceSize:      "t2.micro",
	}
}

func TestUserData(t *testing.T) {
	script, err := UserData(testDeployment())
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(script, "#!/bin/bash\n"), "script must start with a shebang")
	assert.Contains(t, script, "set -euo pipefail")

	wantLines := []string{
		"timeout 300 apt-get update -y",
		"timeout 300 apt-get install -y docker.io",
		"timeout 300 systemctl enable --now docker",
		"timeout 300 usermod -aG docker ubuntu",
		"timeout 300 docker rm -f dev-web || true",
		"timeout 300 docker run -d --name dev-web -p 8080:80 nginx:latest",
	}
	lastIdx := -1
	for _, line := range wantLines {
		idx := strings.Index(script, line)
		require.GreaterOrEqual(t, idx, 0, "missing line: %s", line)
		assert.Greater(t, idx, lastIdx, "line out of order: %s", line)
		lastIdx = idx
	}

	assert.NotContains(t, script, "--restart", "the launch deliberately has no restart policy")
}

func TestUserDataBoundsEveryCommand(t *testing.T) {
	script, err := UserData(testDeployment())
	require.NoError(t, err)

	// Every non-comment line after the prologue runs under the same
	// per-step bound the convergence engine applies.
	var commands int
	for _, line := range strings.Split(script, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "set ") {
			continue
		}
		assert.True(t, strings.HasPrefix(line, "timeout 300 "), "unbounded line: %s", line)
		commands++
	}
	assert.Equal(t, 6, commands)
}

func TestUserDataUsesPrefixForContainerName(t *testing.T) {
	dep := testDeployment()
	dep.EnvironmentPrefix = "staging"

	script, err := UserData(dep)
	require.NoError(t, err)
	assert.Contains(t, script, "--name staging-web")
	assert.NotContains(t, script, "dev-web")
}

func TestUserDataBase64RoundTrips(t *testing.T) {
	dep := testDeployment()
	plain, err := UserData(dep)
	require.NoError(t, err)

	encoded, err := UserDataBase64(dep)
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(encoded)
	require.NoError(t, err)
	assert.Equal(t, plain, string(decoded))
}
