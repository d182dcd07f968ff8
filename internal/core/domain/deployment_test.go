package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamesDeriveFromPrefix(t *testing.T) {
	dep := Deployment{EnvironmentPrefix: "staging"}
	names := dep.Names()

	assert.Equal(t, "staging-vpc", names.VPC)
	assert.Equal(t, "staging-subnet", names.Subnet)
	assert.Equal(t, "staging-rt", names.RouteTable)
	assert.Equal(t, "staging-igw", names.InternetGateway)
	assert.Equal(t, "staging-web-sg", names.SecurityGroup)
	assert.Equal(t, "staging-web", names.Instance)
	assert.Equal(t, "staging-key", names.KeyPair)
}

func TestContainerNameMatchesInstanceName(t *testing.T) {
	dep := Deployment{EnvironmentPrefix: "web"}
	assert.Equal(t, dep.Names().Instance, dep.ContainerName())
}

func TestRegionFromZone(t *testing.T) {
	cases := []struct {
		zone string
		want string
	}{
		{"us-east-1a", "us-east-1"},
		{"eu-west-2c", "eu-west-2"},
		{"us-east-1", "us-east-1"},
		{"", ""},
	}
	for _, tc := range cases {
		dep := Deployment{AvailabilityZone: tc.zone}
		assert.Equal(t, tc.want, dep.Region(), "zone %q", tc.zone)
	}
}

func TestFailedAtStep(t *testing.T) {
	assert.Equal(t, ConvergenceState("failed-at-step-2"), FailedAtStep(2))
	assert.False(t, ConvergenceResult{State: FailedAtStep(2)}.IsConverged())
	assert.True(t, ConvergenceResult{State: Converged}.IsConverged())
}
