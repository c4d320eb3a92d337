package handle

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/outofoffice3/account-bootstrap/internal/awsclientmgr"
	"github.com/outofoffice3/account-bootstrap/internal/metricmgr"
	"github.com/outofoffice3/account-bootstrap/internal/shared"
	"github.com/outofoffice3/common/logger"
)

// HandlerFunc runs one procedure for a raw event payload.
type HandlerFunc func(ctx context.Context, payload json.RawMessage) error

// Handler holds what every procedure needs for one invocation.
type Handler struct {
	config    shared.Config
	clientMgr awsclientmgr.AWSClientMgr
	logger    logger.Logger
	metricMgr metricmgr.MetricMgr
	handlers  map[shared.Procedure]HandlerFunc
}

type HandlerInput struct {
	Config    shared.Config
	ClientMgr awsclientmgr.AWSClientMgr
	Logger    logger.Logger
	MetricMgr metricmgr.MetricMgr
}

func New(input HandlerInput) *Handler {
	metricMgr := input.MetricMgr
	if metricMgr == nil {
		metricMgr = metricmgr.Init()
	}
	h := &Handler{
		config:    input.Config,
		clientMgr: input.ClientMgr,
		logger:    input.Logger,
		metricMgr: metricMgr,
	}
	h.handlers = map[shared.Procedure]HandlerFunc{
		shared.ProcedureAccountSetup:            h.HandleAccountSetup,
		shared.ProcedureRegionalSetup:           h.HandleRegionalSetup,
		shared.ProcedureDeleteDefaultVpc:        h.HandleDeleteDefaultVpc,
		shared.ProcedureEcsAccountSettings:      h.HandleEcsAccountSettings,
		shared.ProcedureS3PublicAccessBlock:     h.HandleS3PublicAccessBlock,
		shared.ProcedureRoute53QueryLogs:        h.HandleRoute53QueryLogs,
		shared.ProcedureServiceCatalogPortfolio: h.HandleServiceCatalogPortfolio,
		shared.ProcedureSSOAssignment:           h.HandleSSOAssignment,
	}
	return h
}

// Dispatch runs the configured procedure and logs the invocation metrics.
func (h *Handler) Dispatch(ctx context.Context, payload json.RawMessage) error {
	handler, ok := h.handlers[h.config.Procedure]
	if !ok {
		return fmt.Errorf("unknown procedure [%s]", h.config.Procedure)
	}
	h.logger.Debugf("procedure [%s] event [%s]", h.config.Procedure, string(payload))
	err := handler(ctx, payload)
	h.logger.Infof("procedure [%s] finished : %s", h.config.Procedure, h.metricMgr.Summary())
	if err != nil {
		h.logger.Errorf("procedure [%s] failed, %v", h.config.Procedure, err)
	}
	return err
}

func (h *Handler) MetricMgr() metricmgr.MetricMgr {
	return h.metricMgr
}
