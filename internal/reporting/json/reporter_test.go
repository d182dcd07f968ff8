package json

import (
	"bytes"
	"context"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostinit/hostinit/internal/core/domain"
	"github.com/hostinit/hostinit/internal/log"
)

func testReporter(t *testing.T) (*Reporter, *bytes.Buffer) {
	t.Helper()
	r, err := NewReporter(Config{}, log.NewNop())
	require.NoError(t, err)

	var buf bytes.Buffer
	r.writer = &buf
	return r, &buf
}

func TestReportResolutionEncodesDeployment(t *testing.T) {
	r, buf := testReporter(t)

	dep := &domain.Deployment{
		EnvironmentPrefix: "dev",
		NetworkCIDR:       netip.MustParsePrefix("10.0.0.0/16"),
		SubnetCIDR:        netip.MustParsePrefix("10.0.10.0/24"),
		AvailabilityZone:  "us-east-1a",
		AdminSourceIP:     netip.MustParsePrefix("203.0.113.5/32"),
		InstanceSize:      "t2.micro",
		PublicKeyPath:     "/home/dev/.ssh/id_ed25519.pub",
	}
	require.NoError(t, r.ReportResolution(context.Background(), dep, nil))

	var report resolutionReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))

	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
	require.NotNil(t, report.Deployment)
	assert.Equal(t, "10.0.10.0/24", report.Deployment.SubnetCIDR)
	assert.Equal(t, "203.0.113.5/32", report.Deployment.AdminSourceIP)
	assert.Equal(t, "dev-web", report.Deployment.InstanceName)
}

func TestReportResolutionEncodesFieldErrors(t *testing.T) {
	r, buf := testReporter(t)

	fieldErrs := []domain.FieldError{
		{Field: "admin_source_ip", Reason: "mask must be exactly /32 (a single host)"},
		{Field: "subnet_cidr", Reason: "must be contained in network_cidr 10.0.0.0/16"},
	}
	require.NoError(t, r.ReportResolution(context.Background(), nil, fieldErrs))

	var report resolutionReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))

	assert.False(t, report.Valid)
	assert.Nil(t, report.Deployment)
	require.Len(t, report.Errors, 2)
	assert.Equal(t, "admin_source_ip", report.Errors[0].Field)
	assert.Contains(t, report.Errors[0].Reason, "/32")
}

func TestReportConvergenceEncodesSteps(t *testing.T) {
	r, buf := testReporter(t)

	result := domain.ConvergenceResult{
		State: domain.FailedAtStep(2),
		Steps: []domain.StepResult{
			{ID: domain.StepRuntimeInstall, Status: domain.StepStatusApplied, Duration: 1500 * time.Millisecond},
			{ID: domain.StepRuntimeService, Status: domain.StepStatusFailed, Err: assert.AnError},
			{ID: domain.StepGroupGrant, Status: domain.StepStatusSkipped},
			{ID: domain.StepContainerLaunch, Status: domain.StepStatusSkipped},
		},
	}
	require.NoError(t, r.ReportConvergence(context.Background(), result))

	var report convergenceReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))

	assert.Equal(t, "failed-at-step-2", report.State)
	require.Len(t, report.Steps, 4)
	assert.Equal(t, "runtime-install", report.Steps[0].ID)
	assert.Equal(t, int64(1500), report.Steps[0].DurationMS)
	assert.Empty(t, report.Steps[0].Error)
	assert.Equal(t, "failed", report.Steps[1].Status)
	assert.NotEmpty(t, report.Steps[1].Error)
}

func TestReportOutputs(t *testing.T) {
	r, buf := testReporter(t)

	outputs := domain.HostOutputs{
		InstanceID:    "i-0abc",
		PublicAddress: "198.51.100.7",
		ImageID:       "ami-0fff999",
	}
	require.NoError(t, r.ReportOutputs(context.Background(), outputs))

	var report outputsReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))

	assert.Equal(t, "i-0abc", report.InstanceID)
	assert.Equal(t, "198.51.100.7", report.PublicAddress)
	assert.Equal(t, "ami-0fff999", report.ImageID)
}
