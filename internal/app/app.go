package app

import (
	"context"
	stderrs "errors"

	"github.com/hostinit/hostinit/internal/adapters/params/static"
	"github.com/hostinit/hostinit/internal/adapters/params/tfvars"
	"github.com/hostinit/hostinit/internal/adapters/runner/execrunner"
	"github.com/hostinit/hostinit/internal/adapters/state/tfstate"
	"github.com/hostinit/hostinit/internal/config"
	"github.com/hostinit/hostinit/internal/core/domain"
	"github.com/hostinit/hostinit/internal/core/ports"
	"github.com/hostinit/hostinit/internal/core/service"
	"github.com/hostinit/hostinit/internal/errors"
	"github.com/hostinit/hostinit/internal/render"
	"github.com/hostinit/hostinit/internal/resolver"
)

// Application ties the resolver, the convergence engine, and the output
// readers behind the CLI subcommands.
type Application struct {
	Config   *config.Config
	Logger   ports.Logger
	Reporter ports.Reporter

	platformInspector ports.PlatformInspector
}

// ResolveDeployment merges parameter sources and resolves them. The
// tfvars file, when given, sits below flags/env/config in precedence.
// Validation failures are reported field by field before returning.
func (a *Application) ResolveDeployment(ctx context.Context, varFile string) (*domain.Deployment, error) {
	params, err := a.mergeParams(ctx, varFile)
	if err != nil {
		return nil, err
	}

	res, err := a.newResolver(ctx)
	if err != nil {
		return nil, err
	}

	dep, err := res.Resolve(ctx, params)
	if err != nil {
		var resErr *resolver.ResolutionError
		if stderrs.As(err, &resErr) {
			if repErr := a.Reporter.ReportResolution(ctx, nil, resErr.Fields); repErr != nil {
				a.Logger.Errorf(ctx, repErr, "Failed to report resolution errors")
			}
		}
		return nil, err
	}
	return dep, nil
}

// Resolve runs resolution and reports the resolved configuration.
func (a *Application) Resolve(ctx context.Context, varFile string) error {
	dep, err := a.ResolveDeployment(ctx, varFile)
	if err != nil {
		return err
	}
	return a.Reporter.ReportResolution(ctx, dep, nil)
}

// Converge executes the first-boot sequence on this host and reports the
// per-step outcome. The convergence result is reported even when a step
// fails, since failed-at-step-N is the interesting part.
func (a *Application) Converge(ctx context.Context, dep *domain.Deployment) error {
	runner := execrunner.New(a.Logger.WithFields(map[string]any{"component": "runner"}))
	engine, err := service.NewConvergenceEngine(dep, runner,
		a.Logger.WithFields(map[string]any{"component": "engine"}), a.Config.Settings.StepTimeout)
	if err != nil {
		return err
	}

	result, runErr := engine.Run(ctx)
	if repErr := a.Reporter.ReportConvergence(ctx, result); repErr != nil {
		a.Logger.Errorf(ctx, repErr, "Failed to report convergence result")
	}
	return runErr
}

// RenderUserData renders the first-boot script for embedding in the
// provisioning template.
func (a *Application) RenderUserData(dep *domain.Deployment, asBase64 bool) (string, error) {
	if asBase64 {
		return render.UserDataBase64(dep)
	}
	return render.UserData(dep)
}

// Outputs reports the deployed host's public address and image ID, from
// the engine's state file or, with live=true, the platform itself. Only
// the environment prefix matters here, so full resolution is not
// required.
func (a *Application) Outputs(ctx context.Context, varFile string, live bool) error {
	var outputs *domain.HostOutputs
	var err error

	if live {
		prefix, prefErr := a.environmentPrefix(ctx, varFile)
		if prefErr != nil {
			return prefErr
		}
		inspector, inspErr := a.inspector(ctx)
		if inspErr != nil {
			return inspErr
		}
		outputs, err = inspector.FindWebInstance(ctx, prefix+"-web")
	} else {
		if a.Config.State.FilePath == "" {
			return errors.NewUserFacing(errors.CodeConfigValidation,
				"no state file configured", "Set state.file_path or pass --live.")
		}
		reader := tfstate.NewReader(a.Config.State.FilePath, a.Logger)
		outputs, err = reader.Outputs(ctx)
	}
	if err != nil {
		return err
	}
	return a.Reporter.ReportOutputs(ctx, *outputs)
}

func (a *Application) mergeParams(ctx context.Context, varFile string) (map[string]string, error) {
	sources := []ports.ParameterSource{}
	if varFile != "" {
		sources = append(sources, tfvars.NewSource(varFile, a.Logger))
	}
	sources = append(sources, static.NewSource("cli", a.Config.Parameters))
	return resolver.MergeSources(ctx, a.Logger, sources...)
}

func (a *Application) environmentPrefix(ctx context.Context, varFile string) (string, error) {
	params, err := a.mergeParams(ctx, varFile)
	if err != nil {
		return "", err
	}
	if prefix := params[resolver.ParamEnvironmentPrefix]; prefix != "" {
		return prefix, nil
	}
	return "web", nil
}
