package resources

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/outofoffice3/common/logger"
	"github.com/pkg/errors"
)

type SSMAPI interface {
	UpdateServiceSetting(ctx context.Context, params *ssm.UpdateServiceSettingInput, optFns ...func(*ssm.Options)) (*ssm.UpdateServiceSettingOutput, error)
}

type SSM struct {
	client SSMAPI
	logger logger.Logger
}

func NewSSM(client SSMAPI, log logger.Logger) *SSM {
	return &SSM{client: client, logger: log}
}

func PublicSharingSettingArn(partition, region, accountId string) string {
	return fmt.Sprintf(ssmPublicSharingSettingArn, partition, region, accountId)
}

// DisableDocumentPublicSharing stops ssm documents in the region from being shared
// publicly.
func (s *SSM) DisableDocumentPublicSharing(ctx context.Context, partition, region, accountId string) error {
	settingId := PublicSharingSettingArn(partition, region, accountId)
	_, err := s.client.UpdateServiceSetting(ctx, &ssm.UpdateServiceSettingInput{
		SettingId:    aws.String(settingId),
		SettingValue: aws.String(SSMSettingDisable),
	})
	if err != nil {
		return errors.Wrapf(err, "update service setting [%s]", settingId)
	}
	s.logger.Infof("ssm document public sharing disabled in [%s]", region)
	return nil
}
