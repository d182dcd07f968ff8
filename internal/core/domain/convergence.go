package domain

import (
	"fmt"
	"time"
)

// Fixed workload parameters. The image, the port mapping and the host
// account are not operator-configurable.
const (
	ContainerImage = "nginx:latest"
	HostPort       = 8080
	ContainerPort  = 80
	HostAccount    = "ubuntu"
	RuntimeGroup   = "docker"
	RuntimePackage = "docker.io"
)

type StepID string

const (
	StepRuntimeInstall  StepID = "runtime-install"
	StepRuntimeService  StepID = "runtime-service"
	StepGroupGrant      StepID = "group-grant"
	StepContainerLaunch StepID = "container-launch"
)

type StepStatus string

const (
	StepStatusApplied   StepStatus = "applied"
	StepStatusSatisfied StepStatus = "satisfied"
	StepStatusFailed    StepStatus = "failed"
	StepStatusTimedOut  StepStatus = "timed-out"
	StepStatusSkipped   StepStatus = "skipped"
)

type StepResult struct {
	ID       StepID
	Status   StepStatus
	Output   string
	Err      error
	Duration time.Duration
}

// ConvergenceState is the terminal state of one convergence run: either
// Converged, or failed-at-step-N where N is the 1-based index of the step
// that aborted the sequence.
type ConvergenceState string

const Converged ConvergenceState = "converged"

func FailedAtStep(n int) ConvergenceState {
	return ConvergenceState(fmt.Sprintf("failed-at-step-%d", n))
}

type ConvergenceResult struct {
	State ConvergenceState
	Steps []StepResult
}

func (r ConvergenceResult) IsConverged() bool {
	return r.State == Converged
}
