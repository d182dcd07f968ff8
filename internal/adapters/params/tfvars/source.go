// Package tfvars loads deployment parameters from the provisioning
// engine's native HCL variable files (terraform.tfvars or *.tfvars.json),
// so an existing template's values can feed resolution directly.
package tfvars

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"

	"github.com/hostinit/hostinit/internal/core/ports"
	"github.com/hostinit/hostinit/internal/errors"
)

const SourceTypeTFVars = "tfvars"

type Source struct {
	path   string
	logger ports.Logger
}

func NewSource(path string, logger ports.Logger) *Source {
	return &Source{
		path:   path,
		logger: logger.WithFields(map[string]any{"source": SourceTypeTFVars, "var_file": path}),
	}
}

func (s *Source) Name() string {
	return SourceTypeTFVars
}

// Load parses the file's top-level attributes and converts each value to
// its string form. Values that cannot convert to a string are skipped
// with a warning rather than failing the whole file.
func (s *Source) Load(ctx context.Context) (map[string]string, error) {
	src, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeConfigReadError,
			fmt.Sprintf("cannot read variables file %s", s.path))
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	parser := hclparse.NewParser()
	var file *hcl.File
	var diags hcl.Diagnostics
	if strings.HasSuffix(s.path, ".json") {
		file, diags = parser.ParseJSON(src, s.path)
	} else {
		file, diags = parser.ParseHCL(src, s.path)
	}
	if file == nil || diags.HasErrors() {
		return nil, errors.NewUserFacing(errors.CodeVarFileParse,
			fmt.Sprintf("invalid variables file %s: %s", s.path, diags.Error()),
			"Check the file for HCL syntax errors.")
	}

	attrs, attrDiags := file.Body.JustAttributes()
	if attrDiags.HasErrors() {
		return nil, errors.NewUserFacing(errors.CodeVarFileParse,
			fmt.Sprintf("variables file %s must contain only attribute assignments: %s", s.path, attrDiags.Error()),
			"Variable files cannot contain blocks.")
	}

	values := make(map[string]string, len(attrs))
	for name, attr := range attrs {
		val, valDiags := attr.Expr.Value(nil)
		if valDiags.HasErrors() {
			s.logger.Warnf(ctx, "Skipping variable %q: %s", name, valDiags.Error())
			continue
		}
		str, err := stringify(val)
		if err != nil {
			s.logger.Warnf(ctx, "Skipping variable %q: %v", name, err)
			continue
		}
		values[name] = str
	}
	return values, nil
}

func stringify(val cty.Value) (string, error) {
	if val.IsNull() || !val.IsKnown() {
		return "", fmt.Errorf("value is null or unknown")
	}
	converted, err := convert.Convert(val, cty.String)
	if err != nil {
		return "", fmt.Errorf("value is not string-convertible: %w", err)
	}
	return converted.AsString(), nil
}
