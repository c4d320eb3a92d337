package handle

import (
	"context"
	"encoding/json"

	"github.com/outofoffice3/account-bootstrap/internal/awsclientmgr"
	"github.com/outofoffice3/account-bootstrap/internal/metricmgr"
	"github.com/outofoffice3/account-bootstrap/internal/resources"
	"github.com/outofoffice3/account-bootstrap/internal/shared"
)

// HandleAccountSetup applies the account wide baseline to a new account.
func (h *Handler) HandleAccountSetup(ctx context.Context, payload json.RawMessage) error {
	target, session, err := h.assumeForAccountEvent(ctx, payload, shared.SessionAccountSetup)
	if err != nil {
		return err
	}

	h.logger.Infof("updating iam password policy in [%s]", target.AccountId)
	if err := resources.NewIAM(session.IAM(), h.logger).UpdatePasswordPolicy(ctx); err != nil {
		return err
	}
	h.settingApplied()

	if err := h.blockPublicAccess(ctx, session, target.AccountId); err != nil {
		return err
	}
	return h.putRoute53QueryLogPolicy(ctx, session, target.AccountId)
}

func (h *Handler) HandleS3PublicAccessBlock(ctx context.Context, payload json.RawMessage) error {
	target, session, err := h.assumeForAccountEvent(ctx, payload, shared.SessionS3PublicBlock)
	if err != nil {
		return err
	}
	return h.blockPublicAccess(ctx, session, target.AccountId)
}

func (h *Handler) HandleRoute53QueryLogs(ctx context.Context, payload json.RawMessage) error {
	target, session, err := h.assumeForAccountEvent(ctx, payload, shared.SessionRoute53Policy)
	if err != nil {
		return err
	}
	return h.putRoute53QueryLogPolicy(ctx, session, target.AccountId)
}

func (h *Handler) blockPublicAccess(ctx context.Context, session *awsclientmgr.Session, accountId string) error {
	h.logger.Infof("blocking public s3 buckets in [%s]", accountId)
	if err := resources.NewS3Control(session.S3Control(), h.logger).BlockPublicAccess(ctx, accountId); err != nil {
		return err
	}
	h.settingApplied()
	return nil
}

func (h *Handler) putRoute53QueryLogPolicy(ctx context.Context, session *awsclientmgr.Session, accountId string) error {
	region := h.config.Route53LogRegion
	h.logger.Infof("allowing route 53 query logging to cloudwatch logs in [%s]", region)
	logs := resources.NewCloudWatchLogs(session.CloudWatchLogs(region), h.logger)
	if err := logs.PutRoute53QueryLogPolicy(ctx, h.config.Partition, region, accountId); err != nil {
		return err
	}
	h.settingApplied()
	return nil
}

// assumeForAccountEvent parses an account event and assumes the execution role in it.
// A missing account id is returned before any call is made.
func (h *Handler) assumeForAccountEvent(ctx context.Context, payload json.RawMessage, sessionName shared.SessionName) (shared.TargetAccount, *awsclientmgr.Session, error) {
	target, err := shared.ParseAccountEvent(payload)
	if err != nil {
		return target, nil, err
	}
	session, err := h.clientMgr.AssumeRole(ctx, target.AccountId, sessionName)
	if err != nil {
		return target, nil, err
	}
	return target, session, nil
}

func (h *Handler) settingApplied() {
	h.metricMgr.IncrementMetric(metricmgr.TotalSettingsApplied, 1)
}
