package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/hostinit/hostinit/internal/core/domain"
	"github.com/hostinit/hostinit/internal/core/ports"
)

// Command is one host command of a convergence step. IgnoreFailure marks
// commands whose non-zero exit must not abort the step (the pre-launch
// container removal when nothing is running yet).
type Command struct {
	Name          string
	Args          []string
	IgnoreFailure bool
}

func (c Command) String() string {
	s := c.Name
	for _, a := range c.Args {
		s += " " + a
	}
	return s
}

// Step is one ordered unit of the first-boot sequence. Probe reports
// whether the step's outcome is already in place; a satisfied probe skips
// the commands, which is what makes a second run of the sequence a no-op.
type Step struct {
	ID       domain.StepID
	Probe    func(ctx context.Context, runner ports.CommandRunner) (bool, error)
	Commands []Command
}

// Plan builds the four-step convergence sequence for a deployment. The
// order is fixed: runtime install, service activation, group grant,
// container launch.
//
// The container step uses a replace policy: any container holding the
// fixed name is removed before launch, so re-running never hits a name or
// port conflict. The launch deliberately sets no restart policy; a crash
// of the served application stays down until the host is replaced.
func Plan(dep *domain.Deployment) []Step {
	container := dep.ContainerName()

	return []Step{
		{
			ID: domain.StepRuntimeInstall,
			Probe: func(ctx context.Context, runner ports.CommandRunner) (bool, error) {
				res, err := runner.Run(ctx, "sh", "-c", "command -v docker")
				if err != nil {
					return false, err
				}
				return res.ExitCode == 0, nil
			},
			Commands: []Command{
				{Name: "apt-get", Args: []string{"update", "-y"}},
				{Name: "apt-get", Args: []string{"install", "-y", domain.RuntimePackage}},
			},
		},
		{
			ID: domain.StepRuntimeService,
			Probe: func(ctx context.Context, runner ports.CommandRunner) (bool, error) {
				res, err := runner.Run(ctx, "systemctl", "is-active", "--quiet", "docker")
				if err != nil {
					return false, err
				}
				return res.ExitCode == 0, nil
			},
			Commands: []Command{
				{Name: "systemctl", Args: []string{"enable", "--now", "docker"}},
			},
		},
		{
			ID: domain.StepGroupGrant,
			Probe: func(ctx context.Context, runner ports.CommandRunner) (bool, error) {
				res, err := runner.Run(ctx, "sh", "-c",
					fmt.Sprintf("id -nG %s | tr ' ' '\\n' | grep -qx %s", domain.HostAccount, domain.RuntimeGroup))
				if err != nil {
					return false, err
				}
				return res.ExitCode == 0, nil
			},
			Commands: []Command{
				{Name: "usermod", Args: []string{"-aG", domain.RuntimeGroup, domain.HostAccount}},
			},
		},
		{
			ID: domain.StepContainerLaunch,
			Probe: func(ctx context.Context, runner ports.CommandRunner) (bool, error) {
				res, err := runner.Run(ctx, "sh", "-c",
					fmt.Sprintf("docker ps --filter name=^%s$ --filter status=running --format '{{.Image}}'", container))
				if err != nil {
					return false, err
				}
				return res.ExitCode == 0 && strings.TrimSpace(res.Stdout) == domain.ContainerImage, nil
			},
			Commands: []Command{
				{Name: "docker", Args: []string{"rm", "-f", container}, IgnoreFailure: true},
				{Name: "docker", Args: []string{
					"run", "-d",
					"--name", container,
					"-p", fmt.Sprintf("%d:%d", domain.HostPort, domain.ContainerPort),
					domain.ContainerImage,
				}},
			},
		},
	}
}
