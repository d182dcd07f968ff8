package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hostinit/hostinit/internal/core/domain"
	"github.com/hostinit/hostinit/internal/core/ports"
	apperrors "github.com/hostinit/hostinit/internal/errors"
)

const DefaultStepTimeout = 5 * time.Minute

// ConvergenceEngine drives the first-boot sequence: strictly ordered,
// single-threaded, no retries, no rollback. The first failing step aborts
// the run and the host stays partially converged.
type ConvergenceEngine struct {
	steps       []Step
	runner      ports.CommandRunner
	logger      ports.Logger
	stepTimeout time.Duration
}

func NewConvergenceEngine(dep *domain.Deployment, runner ports.CommandRunner, logger ports.Logger, stepTimeout time.Duration) (*ConvergenceEngine, error) {
	if dep == nil {
		return nil, apperrors.New(apperrors.CodeConfigValidation, "deployment cannot be nil")
	}
	if runner == nil {
		return nil, apperrors.New(apperrors.CodeConfigValidation, "command runner cannot be nil")
	}
	if stepTimeout <= 0 {
		stepTimeout = DefaultStepTimeout
	}
	return &ConvergenceEngine{
		steps:       Plan(dep),
		runner:      runner,
		logger:      logger,
		stepTimeout: stepTimeout,
	}, nil
}

func (e *ConvergenceEngine) Run(ctx context.Context) (domain.ConvergenceResult, error) {
	result := domain.ConvergenceResult{State: domain.Converged}

	for i, step := range e.steps {
		stepLog := e.logger.WithFields(map[string]any{"step": step.ID, "position": i + 1})
		stepLog.Infof(ctx, "Running convergence step %d/%d", i+1, len(e.steps))

		res := e.runStep(ctx, step, stepLog)
		result.Steps = append(result.Steps, res)

		if res.Status == domain.StepStatusFailed || res.Status == domain.StepStatusTimedOut {
			result.State = domain.FailedAtStep(i + 1)
			for _, rest := range e.steps[i+1:] {
				result.Steps = append(result.Steps, domain.StepResult{ID: rest.ID, Status: domain.StepStatusSkipped})
			}
			stepLog.Errorf(ctx, res.Err, "Convergence aborted at step %d, host left partially converged", i+1)
			return result, res.Err
		}
	}

	// The container runs without a restart policy: a crash after launch
	// is a silent failure nothing on the host remediates.
	e.logger.Warnf(ctx, "Converged; note the web container has no restart policy and will stay down if it crashes")
	return result, nil
}

func (e *ConvergenceEngine) runStep(ctx context.Context, step Step, logger ports.Logger) domain.StepResult {
	start := time.Now()
	stepCtx, cancel := context.WithTimeout(ctx, e.stepTimeout)
	defer cancel()

	result := domain.StepResult{ID: step.ID}

	satisfied, err := step.Probe(stepCtx, e.runner)
	if err != nil {
		result.Status, result.Err = e.classify(stepCtx, step.ID, err)
		result.Duration = time.Since(start)
		return result
	}
	if satisfied {
		logger.Infof(ctx, "Step already satisfied, nothing to do")
		result.Status = domain.StepStatusSatisfied
		result.Duration = time.Since(start)
		return result
	}

	var outputs []string
	for _, cmd := range step.Commands {
		logger.Debugf(stepCtx, "Executing: %s", cmd)
		res, err := e.runner.Run(stepCtx, cmd.Name, cmd.Args...)
		if err != nil {
			result.Status, result.Err = e.classify(stepCtx, step.ID, err)
			result.Output = strings.Join(outputs, "\n")
			result.Duration = time.Since(start)
			return result
		}
		if res.Stdout != "" {
			outputs = append(outputs, strings.TrimRight(res.Stdout, "\n"))
		}
		if res.ExitCode != 0 {
			if cmd.IgnoreFailure {
				logger.Debugf(stepCtx, "Ignoring exit code %d from %q", res.ExitCode, cmd)
				continue
			}
			result.Status = domain.StepStatusFailed
			result.Err = apperrors.New(apperrors.CodeStepFailed,
				fmt.Sprintf("step %s: %q exited with code %d: %s", step.ID, cmd.String(), res.ExitCode, strings.TrimSpace(res.Stderr)))
			result.Output = strings.Join(outputs, "\n")
			result.Duration = time.Since(start)
			return result
		}
	}

	result.Status = domain.StepStatusApplied
	result.Output = strings.Join(outputs, "\n")
	result.Duration = time.Since(start)
	return result
}

// classify separates a step hitting its bounded timeout from every other
// failure so operators can tell a hang from a hard error.
func (e *ConvergenceEngine) classify(ctx context.Context, id domain.StepID, err error) (domain.StepStatus, error) {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return domain.StepStatusTimedOut, apperrors.New(apperrors.CodeStepTimeout,
			fmt.Sprintf("step %s exceeded its %s timeout", id, e.stepTimeout))
	}
	return domain.StepStatusFailed, apperrors.Wrap(err, apperrors.CodeStepFailed,
		fmt.Sprintf("step %s failed to execute", id))
}
