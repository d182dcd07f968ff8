package tfvars

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostinit/hostinit/internal/errors"
	"github.com/hostinit/hostinit/internal/log"
)

func writeVarFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadHCLVarFile(t *testing.T) {
	path := writeVarFile(t, "terraform.tfvars", `
environment_prefix = "dev"
network_cidr       = "10.0.0.0/16"
subnet_cidr        = "10.0.10.0/24"
instance_size      = "t2.micro"
`)

	src := NewSource(path, log.NewNop())
	values, err := src.Load(context.Background())
	require.NoError(t, err)

	want := map[string]string{
		"environment_prefix": "dev",
		"network_cidr":       "10.0.0.0/16",
		"subnet_cidr":        "10.0.10.0/24",
		"instance_size":      "t2.micro",
	}
	assert.Empty(t, cmp.Diff(want, values))
}

func TestLoadJSONVarFile(t *testing.T) {
	path := writeVarFile(t, "terraform.tfvars.json", `{
  "environment_prefix": "prod",
  "availability_zone": "us-east-1a"
}`)

	src := NewSource(path, log.NewNop())
	values, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "prod", values["environment_prefix"])
	assert.Equal(t, "us-east-1a", values["availability_zone"])
}

func TestLoadConvertsScalars(t *testing.T) {
	// Numbers and booleans convert to their string forms; structural
	// values are skipped rather than failing the file.
	path := writeVarFile(t, "mixed.tfvars", `
count_hint = 3
flag       = true
tags       = { team = "web" }
`)

	src := NewSource(path, log.NewNop())
	values, err := src.Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "3", values["count_hint"])
	assert.Equal(t, "true", values["flag"])
	assert.NotContains(t, values, "tags")
}

func TestLoadMissingFile(t *testing.T) {
	src := NewSource(filepath.Join(t.TempDir(), "absent.tfvars"), log.NewNop())
	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeConfigReadError))
}

func TestLoadSyntaxError(t *testing.T) {
	path := writeVarFile(t, "broken.tfvars", `environment_prefix = `)

	src := NewSource(path, log.NewNop())
	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeVarFileParse))
}

func TestLoadRejectsBlocks(t *testing.T) {
	path := writeVarFile(t, "blocks.tfvars", `
resource "aws_instance" "web" {
  ami = "ami-123"
}
`)

	src := NewSource(path, log.NewNop())
	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeVarFileParse))
}
