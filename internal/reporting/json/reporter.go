package json

import (
	"context"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"

	"github.com/hostinit/hostinit/internal/core/domain"
	"github.com/hostinit/hostinit/internal/core/ports"
)

const ReporterTypeJSON = "json"

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Config struct{}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	return &Reporter{
		config: cfg,
		writer: os.Stdout,
		logger: logger,
	}, nil
}

type resolutionReport struct {
	Valid      bool              `json:"valid"`
	Errors     []fieldErrorItem  `json:"errors,omitempty"`
	Deployment *deploymentReport `json:"deployment,omitempty"`
}

type fieldErrorItem struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

type deploymentReport struct {
	EnvironmentPrefix string `json:"environment_prefix"`
	NetworkCIDR       string `json:"network_cidr"`
	SubnetCIDR        string `json:"subnet_cidr"`
	AvailabilityZone  string `json:"availability_zone"`
	AdminSourceIP     string `json:"admin_source_ip"`
	InstanceSize      string `json:"instance_size"`
	PublicKeyPath     string `json:"public_key_path"`
	InstanceName      string `json:"instance_name"`
}

type convergenceReport struct {
	State string           `json:"state"`
	Steps []stepReportItem `json:"steps"`
}

type stepReportItem struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

type outputsReport struct {
	InstanceID    string `json:"instance_id,omitempty"`
	PublicAddress string `json:"public_address"`
	ImageID       string `json:"image_id"`
}

func (r *Reporter) ReportResolution(ctx context.Context, dep *domain.Deployment, fieldErrs []domain.FieldError) error {
	report := resolutionReport{Valid: len(fieldErrs) == 0}
	for _, fe := range fieldErrs {
		report.Errors = append(report.Errors, fieldErrorItem{Field: fe.Field, Reason: fe.Reason})
	}
	if dep != nil && report.Valid {
		report.Deployment = &deploymentReport{
			EnvironmentPrefix: dep.EnvironmentPrefix,
			NetworkCIDR:       dep.NetworkCIDR.String(),
			SubnetCIDR:        dep.SubnetCIDR.String(),
			AvailabilityZone:  dep.AvailabilityZone,
			AdminSourceIP:     dep.AdminSourceIP.String(),
			InstanceSize:      dep.InstanceSize,
			PublicKeyPath:     dep.PublicKeyPath,
			InstanceName:      dep.Names().Instance,
		}
	}
	return r.encode(ctx, report)
}

func (r *Reporter) ReportConvergence(ctx context.Context, result domain.ConvergenceResult) error {
	report := convergenceReport{State: string(result.State)}
	for _, step := range result.Steps {
		item := stepReportItem{
			ID:         string(step.ID),
			Status:     string(step.Status),
			DurationMS: step.Duration.Milliseconds(),
		}
		if step.Err != nil {
			item.Error = step.Err.Error()
		}
		report.Steps = append(report.Steps, item)
	}
	return r.encode(ctx, report)
}

func (r *Reporter) ReportOutputs(ctx context.Context, outputs domain.HostOutputs) error {
	return r.encode(ctx, outputsReport{
		InstanceID:    outputs.InstanceID,
		PublicAddress: outputs.PublicAddress,
		ImageID:       outputs.ImageID,
	})
}

func (r *Reporter) encode(ctx context.Context, v any) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		r.logger.Errorf(ctx, err, "Failed to encode JSON report")
		return err
	}
	return nil
}
