package handle

import (
	"context"
	"encoding/json"

	"github.com/outofoffice3/account-bootstrap/internal/assignment"
	"github.com/outofoffice3/account-bootstrap/internal/resources"
	"github.com/outofoffice3/account-bootstrap/internal/shared"
)

// HandleSSOAssignment assigns a new AWS-A- group to its account when triggered by a
// CreateGroup call, and every AWS-O- group to a new account otherwise.  Identity
// center lives in the management account, so no role is assumed.
func (h *Handler) HandleSSOAssignment(ctx context.Context, payload json.RawMessage) error {
	event, err := shared.ParseGroupEvent(payload)
	if err != nil {
		return err
	}
	if event.EventName == shared.CreateGroupEventName {
		group := event.ResponseElements.Group
		if group.GroupId == "" || group.GroupName == "" {
			h.logger.Errorf("no group found in %s event", shared.CreateGroupEventName)
			return nil
		}
		summary, err := h.newAssigner().AssignAccountGroup(ctx, group.GroupId, group.GroupName)
		h.logger.Infof("group [%s] : %+v", group.GroupName, summary)
		return err
	}

	if event.Account.AccountId == "" {
		return shared.ErrMissingAccountId
	}
	if !shared.IsValidAccountId(event.Account.AccountId) {
		return shared.ErrInvalidAccountId
	}
	summary, err := h.newAssigner().AssignOrganizationGroups(ctx, event.Account.AccountId)
	h.logger.Infof("account [%s] : %+v", event.Account.AccountId, summary)
	return err
}

func (h *Handler) newAssigner() *assignment.Assigner {
	session := h.clientMgr.ManagementSession()
	return assignment.NewAssigner(assignment.AssignerInput{
		Directory: resources.NewSSOAdmin(session.SSOAdmin(), h.logger),
		Accounts:  resources.NewOrganizations(session.Organizations(), h.logger),
		Groups:    resources.NewIdentityStore(session.IdentityStore(), h.logger),
		Logger:    h.logger,
		MetricMgr: h.metricMgr,
	})
}
