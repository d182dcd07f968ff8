package aws

import (
	"context"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hostinit/hostinit/internal/adapters/platform/aws/limiter"
	apperrors "github.com/hostinit/hostinit/internal/errors"
	"github.com/hostinit/hostinit/internal/log"
)

type fakeEC2 struct {
	zonesOut     *ec2.DescribeAvailabilityZonesOutput
	zonesErr     error
	offeringsOut *ec2.DescribeInstanceTypeOfferingsOutput
	offeringsErr error
	instancesOut *ec2.DescribeInstancesOutput
	instancesErr error

	lastInstanceFilters []ec2types.Filter
}

func (f *fakeEC2) DescribeAvailabilityZones(_ context.Context, _ *ec2.DescribeAvailabilityZonesInput, _ ...func(*ec2.Options)) (*ec2.DescribeAvailabilityZonesOutput, error) {
	return f.zonesOut, f.zonesErr
}

func (f *fakeEC2) DescribeInstanceTypeOfferings(_ context.Context, _ *ec2.DescribeInstanceTypeOfferingsInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstanceTypeOfferingsOutput, error) {
	return f.offeringsOut, f.offeringsErr
}

func (f *fakeEC2) DescribeInstances(_ context.Context, params *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	f.lastInstanceFilters = params.Filters
	return f.instancesOut, f.instancesErr
}

type fakeSTS struct {
	out *sts.GetCallerIdentityOutput
	err error
}

func (f *fakeSTS) GetCallerIdentity(_ context.Context, _ *sts.GetCallerIdentityInput, _ ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	return f.out, f.err
}

type fakeAPIError struct{ code string }

func (e *fakeAPIError) Error() string                 { return e.code }
func (e *fakeAPIError) ErrorCode() string             { return e.code }
func (e *fakeAPIError) ErrorMessage() string          { return e.code }
func (e *fakeAPIError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func newTestInspector(ec2Client EC2API, stsClient STSAPI) *Inspector {
	nop := log.NewNop()
	return &Inspector{
		ec2Client: ec2Client,
		stsClient: stsClient,
		region:    "us-east-1",
		limiter:   limiter.New(0, nop),
		logger:    nop,
	}
}

func TestZoneInRegion(t *testing.T) {
	t.Run("zone exists", func(t *testing.T) {
		client := &fakeEC2{zonesOut: &ec2.DescribeAvailabilityZonesOutput{
			AvailabilityZones: []ec2types.AvailabilityZone{{ZoneName: awssdk.String("us-east-1a")}},
		}}
		inspector := newTestInspector(client, &fakeSTS{})

		ok, err := inspector.ZoneInRegion(context.Background(), "us-east-1a")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("zone absent", func(t *testing.T) {
		client := &fakeEC2{zonesOut: &ec2.DescribeAvailabilityZonesOutput{}}
		inspector := newTestInspector(client, &fakeSTS{})

		ok, err := inspector.ZoneInRegion(context.Background(), "us-east-1z")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("auth error classified", func(t *testing.T) {
		client := &fakeEC2{zonesErr: &fakeAPIError{code: "UnauthorizedOperation"}}
		inspector := newTestInspector(client, &fakeSTS{})

		_, err := inspector.ZoneInRegion(context.Background(), "us-east-1a")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodePlatformAuth))
	})
}

func TestInstanceTypeOffered(t *testing.T) {
	client := &fakeEC2{offeringsOut: &ec2.DescribeInstanceTypeOfferingsOutput{
		InstanceTypeOfferings: []ec2types.InstanceTypeOffering{
			{InstanceType: ec2types.InstanceTypeT2Micro},
		},
	}}
	inspector := newTestInspector(client, &fakeSTS{})

	ok, err := inspector.InstanceTypeOffered(context.Background(), "t2.micro")
	require.NoError(t, err)
	assert.True(t, ok)

	client.offeringsOut = &ec2.DescribeInstanceTypeOfferingsOutput{}
	ok, err = inspector.InstanceTypeOffered(context.Background(), "x1e.32xlarge")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFindWebInstance(t *testing.T) {
	instance := ec2types.Instance{
		InstanceId:      awssdk.String("i-0abc"),
		ImageId:         awssdk.String("ami-0fff999"),
		PublicIpAddress: awssdk.String("198.51.100.7"),
	}

	t.Run("found", func(t *testing.T) {
		client := &fakeEC2{instancesOut: &ec2.DescribeInstancesOutput{
			Reservations: []ec2types.Reservation{{Instances: []ec2types.Instance{instance}}},
		}}
		inspector := newTestInspector(client, &fakeSTS{
			out: &sts.GetCallerIdentityOutput{Account: awssdk.String("123456789012")},
		})

		outputs, err := inspector.FindWebInstance(context.Background(), "dev-web")
		require.NoError(t, err)
		assert.Equal(t, "i-0abc", outputs.InstanceID)
		assert.Equal(t, "ami-0fff999", outputs.ImageID)
		assert.Equal(t, "198.51.100.7", outputs.PublicAddress)

		// The lookup must filter by the deterministic Name tag.
		require.NotEmpty(t, client.lastInstanceFilters)
		assert.Equal(t, "tag:Name", *client.lastInstanceFilters[0].Name)
		assert.Equal(t, []string{"dev-web"}, client.lastInstanceFilters[0].Values)
	})

	t.Run("not found", func(t *testing.T) {
		client := &fakeEC2{instancesOut: &ec2.DescribeInstancesOutput{}}
		inspector := newTestInspector(client, &fakeSTS{})

		_, err := inspector.FindWebInstance(context.Background(), "dev-web")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.CodeResourceNotFound))
	})

	t.Run("sts failure does not block outputs", func(t *testing.T) {
		client := &fakeEC2{instancesOut: &ec2.DescribeInstancesOutput{
			Reservations: []ec2types.Reservation{{Instances: []ec2types.Instance{instance}}},
		}}
		inspector := newTestInspector(client, &fakeSTS{err: &fakeAPIError{code: "AccessDenied"}})

		outputs, err := inspector.FindWebInstance(context.Background(), "dev-web")
		require.NoError(t, err)
		assert.Equal(t, "i-0abc", outputs.InstanceID)
	})
}
