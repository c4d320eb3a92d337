package resources

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/outofoffice3/common/logger"
	"github.com/pkg/errors"
)

type EBSEncryptionAPI interface {
	EnableEbsEncryptionByDefault(ctx context.Context, params *ec2.EnableEbsEncryptionByDefaultInput, optFns ...func(*ec2.Options)) (*ec2.EnableEbsEncryptionByDefaultOutput, error)
}

type EBS struct {
	client EBSEncryptionAPI
	region string
	logger logger.Logger
}

func NewEBS(client EBSEncryptionAPI, region string, log logger.Logger) *EBS {
	return &EBS{client: client, region: region, logger: log}
}

// EnableEncryptionByDefault encrypts new volumes and snapshot copies in the region.
func (e *EBS) EnableEncryptionByDefault(ctx context.Context) error {
	_, err := e.client.EnableEbsEncryptionByDefault(ctx, &ec2.EnableEbsEncryptionByDefaultInput{})
	if err != nil {
		return errors.Wrapf(err, "enable ebs encryption by default in [%s]", e.region)
	}
	e.logger.Infof("ebs encryption by default enabled in [%s]", e.region)
	return nil
}
