// Package tfstate reads the observable deployment outputs out of the
// provisioning engine's JSON state (the `show -json` representation).
package tfstate

import (
	"context"
	"fmt"
	"os"
	"sync"

	tfjson "github.com/hashicorp/terraform-json"
	jsoniter "github.com/json-iterator/go"

	"github.com/hostinit/hostinit/internal/core/domain"
	"github.com/hostinit/hostinit/internal/core/ports"
	"github.com/hostinit/hostinit/internal/errors"
)

const SourceTypeTFState = "tfstate"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Output names the template declares, in lookup order.
var (
	publicIPOutputs = []string{"public_ip", "instance_public_ip"}
	imageIDOutputs  = []string{"ami_id", "image_id"}
)

type Reader struct {
	filePath string
	logger   ports.Logger

	mu       sync.Mutex
	state    *tfjson.State
	parseErr error
}

func NewReader(path string, logger ports.Logger) *Reader {
	return &Reader{
		filePath: path,
		logger:   logger.WithFields(map[string]any{"source": SourceTypeTFState, "file_path": path}),
	}
}

// Outputs returns the deployed host's public address and image ID, first
// from declared outputs, then from the aws_instance resource attributes
// when the template declares no outputs.
func (r *Reader) Outputs(ctx context.Context) (*domain.HostOutputs, error) {
	state, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	if state.Values == nil {
		return nil, errors.NewUserFacing(errors.CodeOutputNotFound,
			"state holds no values; the deployment may not be applied yet",
			"Run the provisioning engine's apply first.")
	}

	outputs := &domain.HostOutputs{
		PublicAddress: lookupOutput(state.Values.Outputs, publicIPOutputs),
		ImageID:       lookupOutput(state.Values.Outputs, imageIDOutputs),
	}

	if outputs.PublicAddress == "" || outputs.ImageID == "" || outputs.InstanceID == "" {
		r.fillFromResources(ctx, state.Values.RootModule, outputs)
	}

	if outputs.PublicAddress == "" && outputs.ImageID == "" {
		return nil, errors.NewUserFacing(errors.CodeOutputNotFound,
			fmt.Sprintf("no host outputs found in %s", r.filePath),
			"Check that the state belongs to this deployment and has been applied.")
	}
	return outputs, nil
}

func (r *Reader) load(ctx context.Context) (*tfjson.State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != nil || r.parseErr != nil {
		return r.state, r.parseErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(r.filePath)
	if err != nil {
		r.parseErr = errors.Wrap(err, errors.CodeStateReadError, "failed to read state file")
		return nil, r.parseErr
	}
	if len(raw) == 0 {
		r.parseErr = errors.NewUserFacing(errors.CodeStateParseError, "state file is empty", "")
		return nil, r.parseErr
	}

	var state tfjson.State
	if err := json.Unmarshal(raw, &state); err != nil {
		r.parseErr = errors.WrapUserFacing(err, errors.CodeStateParseError,
			"invalid JSON state", "Regenerate the file with the engine's `show -json`.")
		return nil, r.parseErr
	}

	r.state = &state
	return r.state, nil
}

func lookupOutput(outputs map[string]*tfjson.StateOutput, names []string) string {
	for _, name := range names {
		if out, ok := outputs[name]; ok && out != nil {
			if s, ok := out.Value.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func (r *Reader) fillFromResources(ctx context.Context, module *tfjson.StateModule, outputs *domain.HostOutputs) {
	if module == nil {
		return
	}
	for _, res := range module.Resources {
		if res == nil || res.Mode != tfjson.ManagedResourceMode || res.Type != "aws_instance" {
			continue
		}
		r.logger.Debugf(ctx, "Filling outputs from resource %s.%s", res.Type, res.Name)
		if outputs.InstanceID == "" {
			outputs.InstanceID = stringAttr(res.AttributeValues, "id")
		}
		if outputs.PublicAddress == "" {
			outputs.PublicAddress = stringAttr(res.AttributeValues, "public_ip")
		}
		if outputs.ImageID == "" {
			outputs.ImageID = stringAttr(res.AttributeValues, "ami")
		}
		return
	}
	for _, child := range module.ChildModules {
		r.fillFromResources(ctx, child, outputs)
	}
}

func stringAttr(attrs map[string]interface{}, key string) string {
	if s, ok := attrs[key].(string); ok {
		return s
	}
	return ""
}
