package vpcteardown

import "time"

const (
	filterIsDefault          = "isDefault"
	filterVpcId              = "vpc-id"
	filterAttachmentVpcId    = "attachment.vpc-id"
	filterSubnetId           = "subnet-id"
	defaultSecurityGroupName = "default"
	// associating this id leaves the vpc with no dhcp option set
	DefaultDhcpOptionsId = "default"

	DescribeRetryInitialInterval = 2 * time.Second
	DescribeRetryMaxInterval     = 30 * time.Second
	// attempts after the first one
	DescribeRetryMaxRetries uint64 = 4
)
