// Package render turns a resolved deployment into the first-boot shell
// script the provisioning engine injects as instance user data. The
// script is generated from the same step plan the convergence engine
// executes, so the two can never drift apart.
package render

import (
	"encoding/base64"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/hostinit/hostinit/internal/core/domain"
	"github.com/hostinit/hostinit/internal/core/service"
	"github.com/hostinit/hostinit/internal/errors"
)

var scriptTemplate = template.Must(template.New("userdata").Parse(`#!/bin/bash
set -euo pipefail
{{range .Steps}}
# {{.ID}}
{{- range .Lines}}
{{.}}
{{- end}}
{{end}}`))

type stepView struct {
	ID    domain.StepID
	Lines []string
}

// UserData renders the four-step convergence sequence as a plain bash
// script. Idempotence in script form relies on each command tolerating an
// already-converged host, matching the engine's probe-then-act behavior.
// Every command runs under the same bounded timeout the engine applies
// per step, so neither form can hang on a stalled package or image pull.
func UserData(dep *domain.Deployment) (string, error) {
	bound := int(service.DefaultStepTimeout / time.Second)
	steps := service.Plan(dep)
	views := make([]stepView, 0, len(steps))
	for _, step := range steps {
		view := stepView{ID: step.ID}
		for _, cmd := range step.Commands {
			line := fmt.Sprintf("timeout %d %s", bound, cmd)
			if cmd.IgnoreFailure {
				line += " || true"
			}
			view.Lines = append(view.Lines, line)
		}
		views = append(views, view)
	}

	var b strings.Builder
	if err := scriptTemplate.Execute(&b, map[string]any{"Steps": views}); err != nil {
		return "", errors.Wrap(err, errors.CodeRenderError, "failed to render user data script")
	}
	return b.String(), nil
}

// UserDataBase64 renders the script encoded for direct embedding in the
// provisioning template's user_data_base64 field.
func UserDataBase64(dep *domain.Deployment) (string, error) {
	script, err := UserData(dep)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString([]byte(script)), nil
}
