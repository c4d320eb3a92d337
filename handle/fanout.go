package handle

import (
	"context"
	"encoding/json"

	"github.com/outofoffice3/account-bootstrap/internal/awsclientmgr"
	"github.com/outofoffice3/account-bootstrap/internal/shared"
	"github.com/outofoffice3/account-bootstrap/internal/worker"
)

// HandleDeleteDefaultVpc deletes the default vpc in every enabled region.
func (h *Handler) HandleDeleteDefaultVpc(ctx context.Context, payload json.RawMessage) error {
	return h.fanOut(ctx, payload, shared.SessionDeleteDefaultVpc, string(awsclientmgr.EC2),
		func(session *awsclientmgr.Session) worker.RegionTask {
			return func(ctx context.Context, region string) error {
				_, err := h.deleteDefaultVpc(ctx, session, region)
				return err
			}
		})
}

// HandleEcsAccountSettings applies the ecs account defaults in every enabled region.
func (h *Handler) HandleEcsAccountSettings(ctx context.Context, payload json.RawMessage) error {
	return h.fanOut(ctx, payload, shared.SessionEcsAccountSettings, string(awsclientmgr.ECS),
		func(session *awsclientmgr.Session) worker.RegionTask {
			return func(ctx context.Context, region string) error {
				return h.putEcsAccountSettings(ctx, session, region)
			}
		})
}

// fanOut assumes the role once and runs the task built from that session in every
// region that does not need opt-in.
func (h *Handler) fanOut(ctx context.Context, payload json.RawMessage, sessionName shared.SessionName, service string, newTask func(*awsclientmgr.Session) worker.RegionTask) error {
	target, err := shared.ParseAccountEvent(payload)
	if err != nil {
		return err
	}
	regions, err := h.clientMgr.EnabledRegions(ctx)
	if err != nil {
		return err
	}
	session, err := h.clientMgr.AssumeRole(ctx, target.AccountId, sessionName)
	if err != nil {
		return err
	}
	driver := worker.NewDriver(worker.DriverInput{
		Name:       string(sessionName),
		Service:    service,
		MaxWorkers: h.config.MaxWorkers,
		Logger:     h.logger,
		MetricMgr:  h.metricMgr,
	})
	return driver.Run(ctx, target.AccountId, regions, newTask(session))
}
