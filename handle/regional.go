package handle

import (
	"context"
	"encoding/json"

	"github.com/outofoffice3/account-bootstrap/internal/awsclientmgr"
	"github.com/outofoffice3/account-bootstrap/internal/errormgr"
	"github.com/outofoffice3/account-bootstrap/internal/metricmgr"
	"github.com/outofoffice3/account-bootstrap/internal/resources"
	"github.com/outofoffice3/account-bootstrap/internal/shared"
	"github.com/outofoffice3/account-bootstrap/internal/vpcteardown"
)

// HandleRegionalSetup applies the regional baseline to one region of a new account.
func (h *Handler) HandleRegionalSetup(ctx context.Context, payload json.RawMessage) error {
	target, err := shared.ParseRegionalEvent(payload)
	if err != nil {
		return err
	}
	session, err := h.clientMgr.AssumeRole(ctx, target.AccountId, shared.SessionAccountSetup)
	if err != nil {
		return err
	}

	// a region the account has not opted into is skipped.  Permission errors from a
	// step fail the run, the vpc step already skips a region it cannot reach.
	err = h.configureRegion(ctx, session, target.Region)
	if errormgr.IsOptInRequired(err) {
		h.metricMgr.IncrementMetric(metricmgr.TotalRegionsSkipped, 1)
		h.logger.Infof("skipping region [%s] of [%s], %v", target.Region, target.AccountId, err)
		return nil
	}
	return err
}

// configureRegion runs the regional steps in order, stopping at the first failure.
func (h *Handler) configureRegion(ctx context.Context, session *awsclientmgr.Session, region string) error {
	h.logger.Infof("deleting default vpc in [%s]", region)
	skipped, err := h.deleteDefaultVpc(ctx, session, region)
	if err != nil || skipped {
		return err
	}

	h.logger.Infof("setting default ecs settings in [%s]", region)
	if err := h.putEcsAccountSettings(ctx, session, region); err != nil {
		return err
	}

	h.logger.Infof("enabling ebs encryption by default in [%s]", region)
	if err := resources.NewEBS(session.EC2(region), region, h.logger).EnableEncryptionByDefault(ctx); err != nil {
		return err
	}
	h.settingApplied()

	h.logger.Infof("blocking ssm documents from being made public in [%s]", region)
	ssm := resources.NewSSM(session.SSM(region), h.logger)
	if err := ssm.DisableDocumentPublicSharing(ctx, h.config.Partition, region, session.AccountId); err != nil {
		return err
	}
	h.settingApplied()

	if !h.config.EnableAccessAnalyzer {
		return nil
	}
	h.logger.Infof("creating access analyzer in [%s]", region)
	if err := resources.NewAccessAnalyzer(session.AccessAnalyzer(region), region, h.logger).EnsureAnalyzer(ctx); err != nil {
		return err
	}
	h.settingApplied()
	return nil
}

// deleteDefaultVpc reports whether the region was skipped.
func (h *Handler) deleteDefaultVpc(ctx context.Context, session *awsclientmgr.Session, region string) (bool, error) {
	sequencer := vpcteardown.NewSequencer(vpcteardown.SequencerInput{
		Client: session.EC2(region),
		Region: region,
		Logger: h.logger,
	})
	result, err := sequencer.Run(ctx)
	if err != nil {
		return false, err
	}
	if result.Skipped {
		h.metricMgr.IncrementMetric(metricmgr.TotalRegionsSkipped, 1)
		return true, nil
	}
	if result.Found {
		h.metricMgr.IncrementMetric(metricmgr.TotalVpcsDeleted, 1)
		h.metricMgr.IncrementMetric(metricmgr.TotalVpcDependentsDeleted, int32(result.Dependents()))
	}
	return false, nil
}

func (h *Handler) putEcsAccountSettings(ctx context.Context, session *awsclientmgr.Session, region string) error {
	ecs := resources.NewECS(session.ECS(region), region, h.logger)
	result, err := ecs.PutAccountSettingDefaults(ctx, resources.ECSAccountSettings)
	h.metricMgr.IncrementMetric(metricmgr.TotalSettingsApplied, int32(result.Applied))
	h.metricMgr.IncrementMetric(metricmgr.TotalSettingsFailed, int32(len(result.Failed)))
	return err
}
