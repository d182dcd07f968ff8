package tfstate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostinit/hostinit/internal/errors"
	"github.com/hostinit/hostinit/internal/log"
)

func writeState(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const stateWithOutputs = `{
  "format_version": "1.0",
  "terraform_version": "1.5.0",
  "values": {
    "outputs": {
      "public_ip": {"sensitive": false, "value": "203.0.113.80"},
      "ami_id": {"sensitive": false, "value": "ami-0dev123"}
    },
    "root_module": {}
  }
}`

const stateWithResourcesOnly = `{
  "format_version": "1.0",
  "terraform_version": "1.5.0",
  "values": {
    "root_module": {
      "resources": [
        {
          "address": "aws_vpc.main",
          "mode": "managed",
          "type": "aws_vpc",
          "name": "main",
          "provider_name": "registry.terraform.io/hashicorp/aws",
          "values": {"id": "vpc-1", "cidr_block": "10.0.0.0/16"}
        },
        {
          "address": "aws_instance.web",
          "mode": "managed",
          "type": "aws_instance",
          "name": "web",
          "provider_name": "registry.terraform.io/hashicorp/aws",
          "values": {"id": "i-0abc", "public_ip": "198.51.100.7", "ami": "ami-0fff999"}
        }
      ]
    }
  }
}`

func TestOutputsFromDeclaredOutputs(t *testing.T) {
	reader := NewReader(writeState(t, stateWithOutputs), log.NewNop())
	outputs, err := reader.Outputs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "203.0.113.80", outputs.PublicAddress)
	assert.Equal(t, "ami-0dev123", outputs.ImageID)
}

func TestOutputsFallsBackToInstanceResource(t *testing.T) {
	reader := NewReader(writeState(t, stateWithResourcesOnly), log.NewNop())
	outputs, err := reader.Outputs(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "i-0abc", outputs.InstanceID)
	assert.Equal(t, "198.51.100.7", outputs.PublicAddress)
	assert.Equal(t, "ami-0fff999", outputs.ImageID)
}

func TestOutputsNotApplied(t *testing.T) {
	reader := NewReader(writeState(t, `{"format_version": "1.0", "terraform_version": "1.5.0"}`), log.NewNop())
	_, err := reader.Outputs(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeOutputNotFound))
}

func TestOutputsMissingFile(t *testing.T) {
	reader := NewReader(filepath.Join(t.TempDir(), "absent.json"), log.NewNop())
	_, err := reader.Outputs(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeStateReadError))
}

func TestOutputsEmptyFile(t *testing.T) {
	reader := NewReader(writeState(t, ""), log.NewNop())
	_, err := reader.Outputs(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeStateParseError))
}

func TestOutputsInvalidJSON(t *testing.T) {
	reader := NewReader(writeState(t, "{not json"), log.NewNop())
	_, err := reader.Outputs(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeStateParseError))
}

func TestOutputsParseIsCached(t *testing.T) {
	path := writeState(t, stateWithOutputs)
	reader := NewReader(path, log.NewNop())

	_, err := reader.Outputs(context.Background())
	require.NoError(t, err)

	// Removing the file must not matter once the state is cached.
	require.NoError(t, os.Remove(path))
	outputs, err := reader.Outputs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.80", outputs.PublicAddress)
}
