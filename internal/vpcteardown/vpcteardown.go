package vpcteardown

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/cenkalti/backoff/v4"
	"github.com/outofoffice3/account-bootstrap/internal/errormgr"
	"github.com/outofoffice3/common/logger"
	"github.com/pkg/errors"
)

// Result describes what one teardown did in a region.
type Result struct {
	Region                 string
	VpcId                  string
	Found                  bool
	Skipped                bool
	InternetGateways       int
	RouteTableAssociations int
	SecurityGroups         int
	NetworkInterfaces      int
	Subnets                int
	NetworkAcls            int
	DhcpOptions            int
}

// Dependents is the number of resources deleted before the vpc itself.
func (r Result) Dependents() int {
	return r.InternetGateways + r.RouteTableAssociations + r.SecurityGroups +
		r.NetworkInterfaces + r.Subnets + r.NetworkAcls + r.DhcpOptions
}

type Sequencer interface {
	// delete the default vpc of the region and everything that depends on it
	Run(ctx context.Context) (Result, error)
}

type _Sequencer struct {
	client     EC2API
	region     string
	logger     logger.Logger
	newBackOff func() backoff.BackOff
}

type SequencerInput struct {
	Client EC2API
	Region string
	Logger logger.Logger
	// optional, retry policy for locating the default vpc
	NewBackOff func() backoff.BackOff
}

func NewSequencer(input SequencerInput) Sequencer {
	newBackOff := input.NewBackOff
	if newBackOff == nil {
		newBackOff = DefaultBackOff
	}
	return &_Sequencer{
		client:     input.Client,
		region:     input.Region,
		logger:     input.Logger,
		newBackOff: newBackOff,
	}
}

// DefaultBackOff retries the vpc lookup with exponential backoff starting at 2
// seconds, five attempts in total.
func DefaultBackOff() backoff.BackOff {
	exponential := backoff.NewExponentialBackOff()
	exponential.InitialInterval = DescribeRetryInitialInterval
	exponential.MaxInterval = DescribeRetryMaxInterval
	return backoff.WithMaxRetries(exponential, DescribeRetryMaxRetries)
}

// Run is done when the default vpc is deleted or absent.  Each step only starts once
// the previous one has finished, since ec2 refuses to delete a resource that still
// has dependents.
func (s *_Sequencer) Run(ctx context.Context) (Result, error) {
	result := Result{Region: s.region}

	vpc, err := s.findDefaultVpc(ctx)
	if errormgr.IsRegionSkippable(err) {
		s.logger.Infof("skipping region [%s], %v", s.region, err)
		result.Skipped = true
		return result, nil
	}
	if err != nil {
		return result, errors.Wrapf(err, "describe default vpc in [%s]", s.region)
	}
	if vpc == nil {
		s.logger.Debugf("no default vpc found in [%s]", s.region)
		return result, nil
	}
	vpcId := aws.ToString(vpc.VpcId)
	result.Found = true
	result.VpcId = vpcId
	s.logger.Infof("found default vpc [%s] in [%s]", vpcId, s.region)

	steps := []struct {
		name string
		run  func(context.Context, string, *Result) error
	}{
		{"delete internet gateways", s.deleteInternetGateways},
		{"delete route table associations", s.deleteRouteTableAssociations},
		{"delete security groups", s.deleteSecurityGroups},
		{"delete subnets", s.deleteSubnets},
		{"delete network acls", s.deleteNetworkAcls},
	}
	for _, step := range steps {
		if err := step.run(ctx, vpcId, &result); err != nil {
			return result, errors.Wrapf(err, "%s of vpc [%s] in [%s]", step.name, vpcId, s.region)
		}
	}
	if err := s.replaceDhcpOptions(ctx, vpcId, aws.ToString(vpc.DhcpOptionsId), &result); err != nil {
		return result, errors.Wrapf(err, "replace dhcp options of vpc [%s] in [%s]", vpcId, s.region)
	}

	_, err = s.client.DeleteVpc(ctx, &ec2.DeleteVpcInput{VpcId: aws.String(vpcId)})
	if err != nil {
		return result, errors.Wrapf(err, "delete vpc [%s] in [%s]", vpcId, s.region)
	}
	s.logger.Infof("vpc [%s] and [%d] dependent resources deleted in [%s]", vpcId, result.Dependents(), s.region)
	return result, nil
}

// findDefaultVpc retries transient failures.  Skippable and other provider errors
// end the retry at once.
func (s *_Sequencer) findDefaultVpc(ctx context.Context) (*ec2Types.Vpc, error) {
	var vpc *ec2Types.Vpc
	attempt := 0
	operation := func() error {
		attempt++
		output, err := s.client.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
			Filters: []ec2Types.Filter{
				{Name: aws.String(filterIsDefault), Values: []string{"true"}},
			},
		})
		if err != nil {
			if errormgr.IsRegionSkippable(err) || !errormgr.IsTransient(err) {
				return backoff.Permanent(err)
			}
			s.logger.Errorf("could not describe vpcs in [%s] on attempt [%d], %v", s.region, attempt, err)
			return err
		}
		for i := range output.Vpcs {
			if aws.ToBool(output.Vpcs[i].IsDefault) {
				vpc = &output.Vpcs[i]
				return nil
			}
		}
		return nil
	}
	if err := backoff.Retry(operation, backoff.WithContext(s.newBackOff(), ctx)); err != nil {
		return nil, err
	}
	return vpc, nil
}

func (s *_Sequencer) deleteInternetGateways(ctx context.Context, vpcId string, result *Result) error {
	paginator := ec2.NewDescribeInternetGatewaysPaginator(s.client, &ec2.DescribeInternetGatewaysInput{
		Filters: []ec2Types.Filter{
			{Name: aws.String(filterAttachmentVpcId), Values: []string{vpcId}},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, gateway := range page.InternetGateways {
			_, err := s.client.DetachInternetGateway(ctx, &ec2.DetachInternetGatewayInput{
				InternetGatewayId: gateway.InternetGatewayId,
				VpcId:             aws.String(vpcId),
			})
			if err != nil {
				return err
			}
			_, err = s.client.DeleteInternetGateway(ctx, &ec2.DeleteInternetGatewayInput{
				InternetGatewayId: gateway.InternetGatewayId,
			})
			if err != nil {
				return err
			}
			result.InternetGateways++
			s.logger.Debugf("internet gateway [%s] deleted", aws.ToString(gateway.InternetGatewayId))
		}
	}
	return nil
}

// deleteRouteTableAssociations leaves the main association, it goes with the vpc.
func (s *_Sequencer) deleteRouteTableAssociations(ctx context.Context, vpcId string, result *Result) error {
	paginator := ec2.NewDescribeRouteTablesPaginator(s.client, &ec2.DescribeRouteTablesInput{
		Filters: []ec2Types.Filter{
			{Name: aws.String(filterVpcId), Values: []string{vpcId}},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, routeTable := range page.RouteTables {
			for _, association := range routeTable.Associations {
				if aws.ToBool(association.Main) {
					continue
				}
				_, err := s.client.DisassociateRouteTable(ctx, &ec2.DisassociateRouteTableInput{
					AssociationId: association.RouteTableAssociationId,
				})
				if err != nil {
					return err
				}
				result.RouteTableAssociations++
				s.logger.Debugf("route table association [%s] deleted", aws.ToString(association.RouteTableAssociationId))
			}
		}
	}
	return nil
}

func (s *_Sequencer) deleteSecurityGroups(ctx context.Context, vpcId string, result *Result) error {
	paginator := ec2.NewDescribeSecurityGroupsPaginator(s.client, &ec2.DescribeSecurityGroupsInput{
		Filters: []ec2Types.Filter{
			{Name: aws.String(filterVpcId), Values: []string{vpcId}},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, group := range page.SecurityGroups {
			if aws.ToString(group.GroupName) == defaultSecurityGroupName {
				continue
			}
			_, err := s.client.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{GroupId: group.GroupId})
			if err != nil {
				return err
			}
			result.SecurityGroups++
			s.logger.Debugf("security group [%s] deleted", aws.ToString(group.GroupId))
		}
	}
	return nil
}

// deleteSubnets empties each subnet of network interfaces before deleting it.
func (s *_Sequencer) deleteSubnets(ctx context.Context, vpcId string, result *Result) error {
	paginator := ec2.NewDescribeSubnetsPaginator(s.client, &ec2.DescribeSubnetsInput{
		Filters: []ec2Types.Filter{
			{Name: aws.String(filterVpcId), Values: []string{vpcId}},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, subnet := range page.Subnets {
			subnetId := aws.ToString(subnet.SubnetId)
			if err := s.deleteNetworkInterfaces(ctx, subnetId, result); err != nil {
				return err
			}
			_, err := s.client.DeleteSubnet(ctx, &ec2.DeleteSubnetInput{SubnetId: aws.String(subnetId)})
			if err != nil {
				return err
			}
			result.Subnets++
			s.logger.Debugf("subnet [%s] deleted", subnetId)
		}
	}
	return nil
}

func (s *_Sequencer) deleteNetworkInterfaces(ctx context.Context, subnetId string, result *Result) error {
	paginator := ec2.NewDescribeNetworkInterfacesPaginator(s.client, &ec2.DescribeNetworkInterfacesInput{
		Filters: []ec2Types.Filter{
			{Name: aws.String(filterSubnetId), Values: []string{subnetId}},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, networkInterface := range page.NetworkInterfaces {
			_, err := s.client.DeleteNetworkInterface(ctx, &ec2.DeleteNetworkInterfaceInput{
				NetworkInterfaceId: networkInterface.NetworkInterfaceId,
			})
			if err != nil {
				return err
			}
			result.NetworkInterfaces++
			s.logger.Debugf("network interface [%s] deleted", aws.ToString(networkInterface.NetworkInterfaceId))
		}
	}
	return nil
}

// deleteNetworkAcls leaves the default acl, it goes with the vpc.
func (s *_Sequencer) deleteNetworkAcls(ctx context.Context, vpcId string, result *Result) error {
	paginator := ec2.NewDescribeNetworkAclsPaginator(s.client, &ec2.DescribeNetworkAclsInput{
		Filters: []ec2Types.Filter{
			{Name: aws.String(filterVpcId), Values: []string{vpcId}},
		},
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return err
		}
		for _, acl := range page.NetworkAcls {
			if aws.ToBool(acl.IsDefault) {
				continue
			}
			_, err := s.client.DeleteNetworkAcl(ctx, &ec2.DeleteNetworkAclInput{NetworkAclId: acl.NetworkAclId})
			if err != nil {
				return err
			}
			result.NetworkAcls++
			s.logger.Debugf("network acl [%s] deleted", aws.ToString(acl.NetworkAclId))
		}
	}
	return nil
}

// replaceDhcpOptions points the vpc at no option set and deletes the set it had.  A
// set still used by another vpc, or already gone, is left alone.
func (s *_Sequencer) replaceDhcpOptions(ctx context.Context, vpcId, dhcpOptionsId string, result *Result) error {
	if dhcpOptionsId == "" || dhcpOptionsId == DefaultDhcpOptionsId {
		return nil
	}
	_, err := s.client.AssociateDhcpOptions(ctx, &ec2.AssociateDhcpOptionsInput{
		DhcpOptionsId: aws.String(DefaultDhcpOptionsId),
		VpcId:         aws.String(vpcId),
	})
	if err != nil {
		return err
	}
	_, err = s.client.DeleteDhcpOptions(ctx, &ec2.DeleteDhcpOptionsInput{DhcpOptionsId: aws.String(dhcpOptionsId)})
	switch {
	case err == nil:
		result.DhcpOptions++
		s.logger.Debugf("dhcp options [%s] deleted", dhcpOptionsId)
	case errormgr.HasCode(err, errormgr.CodeDependencyViolation) || errormgr.IsNotFound(err):
		s.logger.Infof("dhcp options [%s] not deleted, %v", dhcpOptionsId, err)
	default:
		return err
	}
	return nil
}
