// Package resolver turns raw operator parameters into an immutable
// deployment configuration, or a list of field errors covering every
// invalid parameter.
package resolver

import (
	"context"
	"fmt"
	"net/netip"
	"os"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/ssh"
	"golang.org/x/sync/errgroup"

	"github.com/hostinit/hostinit/internal/core/domain"
	"github.com/hostinit/hostinit/internal/core/ports"
	"github.com/hostinit/hostinit/pkg/cidr"
)

const (
	ParamEnvironmentPrefix = "environment_prefix"
	ParamNetworkCIDR       = "network_cidr"
	ParamSubnetCIDR        = "subnet_cidr"
	ParamAvailabilityZone  = "availability_zone"
	ParamAdminSourceIP     = "admin_source_ip"
	ParamInstanceSize      = "instance_size"
	ParamPublicKeyPath     = "public_key_path"
)

const DefaultRegion = "us-east-1"

// Defaults for every optional parameter. admin_source_ip and
// public_key_path have no default; their absence is a hard failure.
var defaults = map[string]string{
	ParamEnvironmentPrefix: "web",
	ParamNetworkCIDR:       "10.0.0.0/16",
	ParamSubnetCIDR:        "10.0.10.0/24",
	ParamInstanceSize:      "t2.micro",
}

var knownParams = map[string]struct{}{
	ParamEnvironmentPrefix: {},
	ParamNetworkCIDR:       {},
	ParamSubnetCIDR:        {},
	ParamAvailabilityZone:  {},
	ParamAdminSourceIP:     {},
	ParamInstanceSize:      {},
	ParamPublicKeyPath:     {},
}

var (
	zoneFormat         = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d[a-z]$`)
	instanceTypeFormat = regexp.MustCompile(`^[a-z][a-z0-9-]*\.[a-z0-9]+$`)
)

// rawParams mirrors the parameter table for struct validation. The param
// tag carries the external parameter name reported in field errors.
//
// admin_source_ip carries no cidrv4 tag: cidrv4 rejects any prefix with
// host bits set, and a host address with the wrong mask must surface as
// a mask error, not a syntax error. The semantic block owns both parse
// and mask for that field.
type rawParams struct {
	EnvironmentPrefix string `param:"environment_prefix" validate:"required,hostname_rfc1123,max=24"`
	NetworkCIDR       string `param:"network_cidr" validate:"required,cidrv4"`
	SubnetCIDR        string `param:"subnet_cidr" validate:"required,cidrv4"`
	AvailabilityZone  string `param:"availability_zone" validate:"required"`
	AdminSourceIP     string `param:"admin_source_ip" validate:"required"`
	InstanceSize      string `param:"instance_size" validate:"required"`
	PublicKeyPath     string `param:"public_key_path" validate:"required,file"`
}

// ResolutionError aggregates one FieldError per invalid parameter, sorted
// by parameter name.
type ResolutionError struct {
	Fields []domain.FieldError
}

func (e *ResolutionError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("parameter resolution failed (%d invalid): %s", len(e.Fields), strings.Join(parts, "; "))
}

type Resolver struct {
	validate  *validator.Validate
	inspector ports.PlatformInspector
	logger    ports.Logger
}

type Option func(*Resolver)

// WithPlatformInspector enables the live region checks for
// availability_zone and instance_size.
func WithPlatformInspector(inspector ports.PlatformInspector) Option {
	return func(r *Resolver) {
		r.inspector = inspector
	}
}

func New(logger ports.Logger, opts ...Option) *Resolver {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("param")
		if name == "" {
			return fld.Name
		}
		return name
	})

	r := &Resolver{validate: v, logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MergeSources loads every source and overlays them left to right, so
// later sources take precedence. Unknown parameter names are dropped with
// a warning.
func MergeSources(ctx context.Context, logger ports.Logger, sources ...ports.ParameterSource) (map[string]string, error) {
	merged := make(map[string]string)
	for _, src := range sources {
		values, err := src.Load(ctx)
		if err != nil {
			return nil, err
		}
		for name, value := range values {
			if _, ok := knownParams[name]; !ok {
				logger.Warnf(ctx, "Ignoring unknown parameter %q from source %s", name, src.Name())
				continue
			}
			if value == "" {
				continue
			}
			merged[name] = value
		}
	}
	return merged, nil
}

// Resolve applies defaults, validates every field, and returns either the
// resolved deployment or a *ResolutionError listing all failures. The only
// side effect is reading the public key file.
func (r *Resolver) Resolve(ctx context.Context, params map[string]string) (*domain.Deployment, error) {
	raw := r.applyDefaults(ctx, params)
	fieldErrs := r.validateShape(ctx, raw)

	failed := make(map[string]bool, len(fieldErrs))
	for _, fe := range fieldErrs {
		failed[fe.Field] = true
	}

	dep := &domain.Deployment{
		EnvironmentPrefix: raw.EnvironmentPrefix,
		AvailabilityZone:  raw.AvailabilityZone,
		InstanceSize:      raw.InstanceSize,
		PublicKeyPath:     raw.PublicKeyPath,
	}

	// Semantic checks only run on fields whose shape already validated,
	// so each parameter yields at most one error.
	if !failed[ParamNetworkCIDR] {
		p, err := cidr.ParseIPv4(raw.NetworkCIDR)
		switch {
		case err != nil:
			fieldErrs = append(fieldErrs, domain.FieldError{Field: ParamNetworkCIDR, Reason: "must be a valid IPv4 CIDR block"})
			failed[ParamNetworkCIDR] = true
		case !cidr.IsPrivate(p):
			fieldErrs = append(fieldErrs, domain.FieldError{Field: ParamNetworkCIDR, Reason: "must be an RFC 1918 private range"})
			failed[ParamNetworkCIDR] = true
		default:
			dep.NetworkCIDR = p
		}
	}

	if !failed[ParamSubnetCIDR] {
		p, err := cidr.ParseIPv4(raw.SubnetCIDR)
		switch {
		case err != nil:
			fieldErrs = append(fieldErrs, domain.FieldError{Field: ParamSubnetCIDR, Reason: "must be a valid IPv4 CIDR block"})
		case !failed[ParamNetworkCIDR] && !cidr.Contains(dep.NetworkCIDR, p):
			fieldErrs = append(fieldErrs, domain.FieldError{
				Field:  ParamSubnetCIDR,
				Reason: fmt.Sprintf("must be contained in network_cidr %s", dep.NetworkCIDR),
			})
		default:
			dep.SubnetCIDR = p
		}
	}

	if !failed[ParamAdminSourceIP] {
		p, err := netip.ParsePrefix(raw.AdminSourceIP)
		switch {
		case err != nil || !p.Addr().Is4():
			fieldErrs = append(fieldErrs, domain.FieldError{Field: ParamAdminSourceIP, Reason: "must be a valid IPv4 CIDR block"})
		case !cidr.IsSingleHost(p):
			fieldErrs = append(fieldErrs, domain.FieldError{Field: ParamAdminSourceIP, Reason: "mask must be exactly /32 (a single host)"})
		default:
			dep.AdminSourceIP = p
		}
	}

	if !failed[ParamAvailabilityZone] && !zoneFormat.MatchString(raw.AvailabilityZone) {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: ParamAvailabilityZone, Reason: "must be an availability zone identifier like us-east-1a"})
		failed[ParamAvailabilityZone] = true
	}

	if !failed[ParamInstanceSize] && !instanceTypeFormat.MatchString(raw.InstanceSize) {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: ParamInstanceSize, Reason: "must be an instance class identifier like t2.micro"})
		failed[ParamInstanceSize] = true
	}

	if !failed[ParamPublicKeyPath] {
		if key, err := readPublicKey(raw.PublicKeyPath); err != nil {
			fieldErrs = append(fieldErrs, domain.FieldError{Field: ParamPublicKeyPath, Reason: err.Error()})
		} else {
			dep.PublicKey = key
		}
	}

	if r.inspector != nil {
		fieldErrs = append(fieldErrs, r.platformChecks(ctx, raw, failed)...)
	}

	if len(fieldErrs) > 0 {
		sort.Slice(fieldErrs, func(i, j int) bool { return fieldErrs[i].Field < fieldErrs[j].Field })
		return nil, &ResolutionError{Fields: fieldErrs}
	}

	r.logger.Debugf(ctx, "Resolved deployment %q (network %s, subnet %s, zone %s, size %s)",
		dep.EnvironmentPrefix, dep.NetworkCIDR, dep.SubnetCIDR, dep.AvailabilityZone, dep.InstanceSize)
	return dep, nil
}

func (r *Resolver) applyDefaults(ctx context.Context, params map[string]string) rawParams {
	get := func(name string) string {
		if v, ok := params[name]; ok && v != "" {
			return v
		}
		return defaults[name]
	}

	zone := params[ParamAvailabilityZone]
	if zone == "" {
		region := DefaultRegion
		if r.inspector != nil {
			region = r.inspector.Region()
		}
		zone = region + "a"
		r.logger.Debugf(ctx, "availability_zone not supplied, defaulting to %s", zone)
	}

	return rawParams{
		EnvironmentPrefix: get(ParamEnvironmentPrefix),
		NetworkCIDR:       get(ParamNetworkCIDR),
		SubnetCIDR:        get(ParamSubnetCIDR),
		AvailabilityZone:  zone,
		AdminSourceIP:     params[ParamAdminSourceIP],
		InstanceSize:      get(ParamInstanceSize),
		PublicKeyPath:     params[ParamPublicKeyPath],
	}
}

func (r *Resolver) validateShape(ctx context.Context, raw rawParams) []domain.FieldError {
	err := r.validate.StructCtx(ctx, raw)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return []domain.FieldError{{Field: "parameters", Reason: err.Error()}}
	}

	fieldErrs := make([]domain.FieldError, 0, len(validationErrs))
	for _, fe := range validationErrs {
		fieldErrs = append(fieldErrs, domain.FieldError{Field: fe.Field(), Reason: reasonForTag(fe)})
	}
	return fieldErrs
}

func reasonForTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "parameter is required and has no default"
	case "cidrv4":
		return "must be a valid IPv4 CIDR block"
	case "file":
		return "file does not exist or is not accessible"
	case "hostname_rfc1123":
		return "must be a short DNS-safe identifier"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func readPublicKey(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("file is not readable: %v", err)
	}
	key := strings.TrimSpace(string(raw))
	if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(key)); err != nil {
		return "", fmt.Errorf("file does not contain a valid SSH public key")
	}
	return key, nil
}

// platformChecks verifies the zone and instance class against the live
// region. Both lookups run concurrently; lookup failures surface as field
// errors so the operator sees them alongside local validation.
func (r *Resolver) platformChecks(ctx context.Context, raw rawParams, failed map[string]bool) []domain.FieldError {
	var zoneErr, sizeErr *domain.FieldError
	g, childCtx := errgroup.WithContext(ctx)

	if !failed[ParamAvailabilityZone] {
		g.Go(func() error {
			ok, err := r.inspector.ZoneInRegion(childCtx, raw.AvailabilityZone)
			if err != nil {
				zoneErr = &domain.FieldError{Field: ParamAvailabilityZone, Reason: fmt.Sprintf("could not verify zone: %v", err)}
				return nil
			}
			if !ok {
				zoneErr = &domain.FieldError{
					Field:  ParamAvailabilityZone,
					Reason: fmt.Sprintf("zone does not exist in region %s", r.inspector.Region()),
				}
			}
			return nil
		})
	}

	if !failed[ParamInstanceSize] {
		g.Go(func() error {
			ok, err := r.inspector.InstanceTypeOffered(childCtx, raw.InstanceSize)
			if err != nil {
				sizeErr = &domain.FieldError{Field: ParamInstanceSize, Reason: fmt.Sprintf("could not verify instance class: %v", err)}
				return nil
			}
			if !ok {
				sizeErr = &domain.FieldError{
					Field:  ParamInstanceSize,
					Reason: fmt.Sprintf("instance class is not offered in region %s", r.inspector.Region()),
				}
			}
			return nil
		})
	}

	_ = g.Wait()

	var out []domain.FieldError
	if zoneErr != nil {
		out = append(out, *zoneErr)
	}
	if sizeErr != nil {
		out = append(out, *sizeErr)
	}
	return out
}
