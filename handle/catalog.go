package handle

import (
	"context"
	"encoding/json"

	"github.com/outofoffice3/account-bootstrap/internal/metricmgr"
	"github.com/outofoffice3/account-bootstrap/internal/reconciler"
	"github.com/outofoffice3/account-bootstrap/internal/resources"
	"github.com/outofoffice3/account-bootstrap/internal/shared"
)

// HandleServiceCatalogPortfolio shares the configured portfolios with the account and
// makes the sso roles of the configured permission sets their only principals.
func (h *Handler) HandleServiceCatalogPortfolio(ctx context.Context, payload json.RawMessage) error {
	target, session, err := h.assumeForAccountEvent(ctx, payload, shared.SessionServiceCatalog)
	if err != nil {
		return err
	}

	iam := resources.NewIAM(session.IAM(), h.logger)
	desired := []string{}
	for _, permissionSetName := range h.config.PermissionSetNames {
		roleArn, ok, err := iam.RoleArn(ctx, permissionSetName)
		if err != nil {
			return err
		}
		if !ok {
			h.logger.Errorf("no sso role for permission set [%s] in [%s], skipping", permissionSetName, target.AccountId)
			continue
		}
		desired = append(desired, roleArn)
	}

	portfolio := reconciler.NewPortfolio(resources.NewServiceCatalog(session.ServiceCatalog(), h.logger), h.logger)
	for _, portfolioId := range h.config.PortfolioIds {
		outcome, err := portfolio.Reconcile(ctx, portfolioId, desired)
		h.metricMgr.IncrementMetric(metricmgr.TotalPrincipalsAssociated, int32(outcome.Associated))
		h.metricMgr.IncrementMetric(metricmgr.TotalPrincipalsDisassociated, int32(outcome.Disassociated))
		if err != nil {
			return err
		}
	}
	return nil
}
