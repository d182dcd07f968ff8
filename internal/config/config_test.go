package config

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()

	validate := validator.New()
	require.NoError(t, validate.StructCtx(context.Background(), cfg))

	assert.Equal(t, 5*time.Minute, cfg.Settings.StepTimeout)
	assert.Equal(t, "terraform.tfstate.json", cfg.State.FilePath)
	assert.False(t, cfg.Settings.PlatformChecks)
}

func TestValidationRejectsBadValues(t *testing.T) {
	validate := validator.New()

	cfg := DefaultConfig()
	cfg.Settings.LogLevel = "verbose"
	assert.Error(t, validate.StructCtx(context.Background(), cfg))

	cfg = DefaultConfig()
	cfg.Settings.ReporterType = "xml"
	assert.Error(t, validate.StructCtx(context.Background(), cfg))

	cfg = DefaultConfig()
	cfg.Platform.APIRateLimit = 500
	assert.Error(t, validate.StructCtx(context.Background(), cfg))
}
