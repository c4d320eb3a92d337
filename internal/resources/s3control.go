package resources

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3control"
	s3controlTypes "github.com/aws/aws-sdk-go-v2/service/s3control/types"
	"github.com/outofoffice3/common/logger"
	"github.com/pkg/errors"
)

type S3ControlAPI interface {
	PutPublicAccessBlock(ctx context.Context, params *s3control.PutPublicAccessBlockInput, optFns ...func(*s3control.Options)) (*s3control.PutPublicAccessBlockOutput, error)
}

type S3Control struct {
	client S3ControlAPI
	logger logger.Logger
}

func NewS3Control(client S3ControlAPI, log logger.Logger) *S3Control {
	return &S3Control{client: client, logger: log}
}

// BlockPublicAccess turns on all four account level public access block flags.
func (s *S3Control) BlockPublicAccess(ctx context.Context, accountId string) error {
	_, err := s.client.PutPublicAccessBlock(ctx, &s3control.PutPublicAccessBlockInput{
		AccountId: aws.String(accountId),
		PublicAccessBlockConfiguration: &s3controlTypes.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(true),
			IgnorePublicAcls:      aws.Bool(true),
			BlockPublicPolicy:     aws.Bool(true),
			RestrictPublicBuckets: aws.Bool(true),
		},
	})
	if err != nil {
		return errors.Wrapf(err, "put public access block for account [%s]", accountId)
	}
	s.logger.Infof("public access block enabled for account [%s]", accountId)
	return nil
}
