package text

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/fatih/color"

	"github.com/hostinit/hostinit/internal/core/domain"
	"github.com/hostinit/hostinit/internal/core/ports"
)

const ReporterTypeText = "text"

type Config struct {
	NoColor bool `mapstructure:"no_color"`
}

type Reporter struct {
	config Config
	writer io.Writer
	logger ports.Logger
}

func NewReporter(cfg Config, logger ports.Logger) (*Reporter, error) {
	if cfg.NoColor || !isTerminal(os.Stdout) {
		color.NoColor = true
	}
	return &Reporter{
		config: cfg,
		writer: os.Stdout,
		logger: logger,
	}, nil
}

func isTerminal(f *os.File) bool {
	stat, _ := f.Stat()
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func (r *Reporter) ReportResolution(ctx context.Context, dep *domain.Deployment, fieldErrs []domain.FieldError) error {
	tw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
	defer tw.Flush()

	red := color.New(color.FgRed).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()

	if len(fieldErrs) > 0 {
		fmt.Fprintf(tw, "%s %d parameter(s) failed validation\n\n", red("[INVALID]"), len(fieldErrs))
		fmt.Fprintln(tw, "Parameter\tProblem")
		fmt.Fprintln(tw, "---------\t-------")
		for _, fe := range fieldErrs {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(tw, "%s\t%s\n", red(fe.Field), fe.Reason)
		}
		return nil
	}

	names := dep.Names()
	fmt.Fprintf(tw, "%s deployment configuration resolved\n\n", green("[OK]"))
	fmt.Fprintln(tw, "Parameter\tValue")
	fmt.Fprintln(tw, "---------\t-----")
	fmt.Fprintf(tw, "environment_prefix\t%s\n", dep.EnvironmentPrefix)
	fmt.Fprintf(tw, "network_cidr\t%s\n", dep.NetworkCIDR)
	fmt.Fprintf(tw, "subnet_cidr\t%s\n", dep.SubnetCIDR)
	fmt.Fprintf(tw, "availability_zone\t%s\n", dep.AvailabilityZone)
	fmt.Fprintf(tw, "admin_source_ip\t%s\n", dep.AdminSourceIP)
	fmt.Fprintf(tw, "instance_size\t%s\n", dep.InstanceSize)
	fmt.Fprintf(tw, "public_key_path\t%s\n", dep.PublicKeyPath)
	fmt.Fprintf(tw, "\nDerived resource names: %s, %s, %s, %s, %s, %s\n",
		names.VPC, names.Subnet, names.RouteTable, names.InternetGateway, names.SecurityGroup, names.Instance)
	return nil
}

func (r *Reporter) ReportConvergence(ctx context.Context, result domain.ConvergenceResult) error {
	tw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
	defer tw.Flush()

	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	green := color.New(color.FgGreen).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	fmt.Fprintln(tw, "First-Boot Convergence")
	fmt.Fprintln(tw, "======================")
	fmt.Fprintln(tw, "Status\tStep\tDuration\tDetails")
	fmt.Fprintln(tw, "------\t----\t--------\t-------")

	for _, step := range result.Steps {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		var status, details string
		switch step.Status {
		case domain.StepStatusApplied:
			status = green("[APPLIED]")
		case domain.StepStatusSatisfied:
			status = green("[OK]")
			details = "already satisfied"
		case domain.StepStatusSkipped:
			status = cyan("[SKIPPED]")
			details = "not reached"
		case domain.StepStatusTimedOut:
			status = yellow("[TIMEOUT]")
			details = fmt.Sprintf("%v", step.Err)
		case domain.StepStatusFailed:
			status = red("[FAILED]")
			details = fmt.Sprintf("%v", step.Err)
		default:
			status = "[UNKNOWN]"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", status, step.ID, step.Duration.Round(1e6), details)
	}

	fmt.Fprintf(tw, "\nTerminal state:\t%s\n", result.State)
	if result.IsConverged() {
		fmt.Fprintln(tw, yellow("Note: the web container has no restart policy; a crash is not auto-recovered."))
	}
	return nil
}

func (r *Reporter) ReportOutputs(_ context.Context, outputs domain.HostOutputs) error {
	tw := tabwriter.NewWriter(r.writer, 0, 8, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "Output\tValue")
	fmt.Fprintln(tw, "------\t-----")
	if outputs.InstanceID != "" {
		fmt.Fprintf(tw, "instance_id\t%s\n", outputs.InstanceID)
	}
	fmt.Fprintf(tw, "public_address\t%s\n", valueOrDash(outputs.PublicAddress))
	fmt.Fprintf(tw, "image_id\t%s\n", valueOrDash(outputs.ImageID))
	return nil
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
