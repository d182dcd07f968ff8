// Package aws answers read-only questions against the live platform: is
// the configured zone real, is the instance class offered here, and what
// are the observable outputs of the deployed host. It never creates or
// mutates resources; that stays with the external provisioning engine.
package aws

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/hostinit/hostinit/internal/adapters/platform/aws/awserrors"
	"github.com/hostinit/hostinit/internal/adapters/platform/aws/limiter"
	"github.com/hostinit/hostinit/internal/core/domain"
	"github.com/hostinit/hostinit/internal/core/ports"
	apperrors "github.com/hostinit/hostinit/internal/errors"
)

const ProviderTypeAWS = "aws"

type EC2API interface {
	DescribeAvailabilityZones(ctx context.Context, params *ec2.DescribeAvailabilityZonesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error)
	DescribeInstanceTypeOfferings(ctx context.Context, params *ec2.DescribeInstanceTypeOfferingsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceTypeOfferingsOutput, error)
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

type STSAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

type Inspector struct {
	ec2Client EC2API
	stsClient STSAPI
	region    string
	limiter   *limiter.Limiter
	logger    ports.Logger
	accountID string
}

type Option func(*Inspector)

func WithEC2Client(client EC2API) Option {
	return func(i *Inspector) { i.ec2Client = client }
}

func WithSTSClient(client STSAPI) Option {
	return func(i *Inspector) { i.stsClient = client }
}

// NewInspector resolves credentials and region through the standard SDK
// chain. regionOverride, when non-empty, wins over the chain's region.
func NewInspector(ctx context.Context, regionOverride string, rps int, logger ports.Logger, opts ...Option) (*Inspector, error) {
	if logger == nil {
		return nil, apperrors.New(apperrors.CodeConfigValidation, "logger cannot be nil for AWS inspector")
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeConfigValidation, "failed to load default AWS config")
	}
	if regionOverride != "" {
		cfg.Region = regionOverride
	}
	if cfg.Region == "" {
		return nil, apperrors.NewUserFacing(apperrors.CodeConfigValidation,
			"no AWS region configured", "Set platform.region, AWS_REGION, or a profile region.")
	}

	i := &Inspector{
		ec2Client: ec2.NewFromConfig(cfg),
		stsClient: sts.NewFromConfig(cfg),
		region:    cfg.Region,
		limiter:   limiter.New(rps, logger),
		logger:    logger.WithFields(map[string]any{"provider": ProviderTypeAWS, "region": cfg.Region}),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i, nil
}

func (i *Inspector) Region() string {
	return i.region
}

func (i *Inspector) ZoneInRegion(ctx context.Context, zone string) (bool, error) {
	if err := i.limiter.Wait(ctx); err != nil {
		return false, err
	}
	out, err := i.ec2Client.DescribeAvailabilityZones(ctx, &ec2.DescribeAvailabilityZonesInput{
		Filters: []ec2types.Filter{
			{Name: awssdk.String("zone-name"), Values: []string{zone}},
			{Name: awssdk.String("state"), Values: []string{"available"}},
		},
	})
	if err != nil {
		return false, awserrors.Classify(ctx, "DescribeAvailabilityZones", err)
	}
	return len(out.AvailabilityZones) > 0, nil
}

func (i *Inspector) InstanceTypeOffered(ctx context.Context, instanceType string) (bool, error) {
	if err := i.limiter.Wait(ctx); err != nil {
		return false, err
	}
	out, err := i.ec2Client.DescribeInstanceTypeOfferings(ctx, &ec2.DescribeInstanceTypeOfferingsInput{
		LocationType: ec2types.LocationTypeRegion,
		Filters: []ec2types.Filter{
			{Name: awssdk.String("instance-type"), Values: []string{instanceType}},
		},
	})
	if err != nil {
		return false, awserrors.Classify(ctx, "DescribeInstanceTypeOfferings", err)
	}
	return len(out.InstanceTypeOfferings) > 0, nil
}

// FindWebInstance locates the deployed host by its deterministic Name tag
// and reports its public address and image. Exactly one pending or
// running instance is expected per prefix.
func (i *Inspector) FindWebInstance(ctx context.Context, nameTag string) (*domain.HostOutputs, error) {
	if err := i.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	out, err := i.ec2Client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			{Name: awssdk.String("tag:Name"), Values: []string{nameTag}},
			{Name: awssdk.String("instance-state-name"), Values: []string{"pending", "running"}},
		},
	})
	if err != nil {
		return nil, awserrors.Classify(ctx, "DescribeInstances", err)
	}

	var instances []ec2types.Instance
	for _, reservation := range out.Reservations {
		instances = append(instances, reservation.Instances...)
	}
	if len(instances) == 0 {
		return nil, apperrors.NewUserFacing(apperrors.CodeResourceNotFound,
			fmt.Sprintf("no running instance tagged Name=%s in %s", nameTag, i.region),
			"Apply the provisioning template first, or check the environment prefix.")
	}
	if len(instances) > 1 {
		i.logger.Warnf(ctx, "Found %d instances tagged Name=%s, using the first", len(instances), nameTag)
	}

	inst := instances[0]
	outputs := &domain.HostOutputs{
		InstanceID: awssdk.ToString(inst.InstanceId),
		ImageID:    awssdk.ToString(inst.ImageId),
	}
	if inst.PublicIpAddress != nil {
		outputs.PublicAddress = *inst.PublicIpAddress
	}

	if account, err := i.callerAccount(ctx); err == nil {
		i.logger.Debugf(ctx, "Resolved outputs for %s in account %s", nameTag, account)
	}
	return outputs, nil
}

func (i *Inspector) callerAccount(ctx context.Context) (string, error) {
	if i.accountID != "" {
		return i.accountID, nil
	}
	if err := i.limiter.Wait(ctx); err != nil {
		return "", err
	}
	out, err := i.stsClient.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", awserrors.Classify(ctx, "GetCallerIdentity", err)
	}
	if out.Account == nil {
		return "", apperrors.New(apperrors.CodePlatformAPIError, "caller identity response had no account ID")
	}
	i.accountID = *out.Account
	return i.accountID, nil
}
