package resources

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	ecsTypes "github.com/aws/aws-sdk-go-v2/service/ecs/types"
	"github.com/outofoffice3/account-bootstrap/internal/errormgr"
	"github.com/outofoffice3/common/logger"
	"github.com/pkg/errors"
)

type ECSAPI interface {
	PutAccountSettingDefault(ctx context.Context, params *ecs.PutAccountSettingDefaultInput, optFns ...func(*ecs.Options)) (*ecs.PutAccountSettingDefaultOutput, error)
}

type ECS struct {
	client ECSAPI
	region string
	logger logger.Logger
}

func NewECS(client ECSAPI, region string, log logger.Logger) *ECS {
	return &ECS{client: client, region: region, logger: log}
}

// SettingsResult counts the account defaults that were and were not applied.
type SettingsResult struct {
	Applied int
	Failed  []string
}

// PutAccountSettingDefaults applies every entry of settings.  A setting the region
// rejects is logged and the rest are still applied.  Errors that mean the region
// cannot be configured at all, or that never reached the provider, stop the loop.
func (e *ECS) PutAccountSettingDefaults(ctx context.Context, settings []ECSSetting) (SettingsResult, error) {
	result := SettingsResult{}
	for _, setting := range settings {
		_, err := e.client.PutAccountSettingDefault(ctx, &ecs.PutAccountSettingDefaultInput{
			Name:  ecsTypes.SettingName(setting.Name),
			Value: aws.String(setting.Value),
		})
		switch {
		case err == nil:
			result.Applied++
			e.logger.Debugf("ecs setting [%s=%s] applied in [%s]", setting.Name, setting.Value, e.region)
		case errormgr.IsRegionSkippable(err) || !errormgr.IsAPIError(err):
			return result, errors.Wrapf(err, "put ecs account setting [%s] in [%s]", setting.Name, e.region)
		default:
			result.Failed = append(result.Failed, setting.Name)
			e.logger.Errorf("unable to enable ecs setting [%s] in [%s], %v", setting.Name, e.region, err)
		}
	}
	e.logger.Infof("ecs account settings in [%s] : applied [%d] failed [%v]", e.region, result.Applied, result.Failed)
	return result, nil
}
