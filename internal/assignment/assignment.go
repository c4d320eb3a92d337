package assignment

import (
	"context"

	"github.com/outofoffice3/account-bootstrap/internal/groupname"
	"github.com/outofoffice3/account-bootstrap/internal/metricmgr"
	"github.com/outofoffice3/account-bootstrap/internal/resources"
	"github.com/outofoffice3/common/logger"
)

// Directory resolves permission sets and creates assignments in identity center.
type Directory interface {
	ListInstances(ctx context.Context) ([]resources.SSOInstance, error)
	PermissionSetArn(ctx context.Context, instanceArn, name string) (string, bool, error)
	CreateAccountAssignment(ctx context.Context, assignment resources.AccountAssignment) (bool, error)
}

type AccountResolver interface {
	AccountId(ctx context.Context, name string) (string, bool, error)
}

type GroupSource interface {
	GroupsByPrefix(ctx context.Context, identityStoreId, prefix string) ([]resources.IdentityGroup, error)
}

// Summary counts what one invocation did.  Existing assignments are neither created
// nor skipped.
type Summary struct {
	Created  int
	Existing int
	Skipped  int
}

type Assigner struct {
	directory Directory
	accounts  AccountResolver
	groups    GroupSource
	logger    logger.Logger
	metricMgr metricmgr.MetricMgr
}

type AssignerInput struct {
	Directory Directory
	Accounts  AccountResolver
	Groups    GroupSource
	Logger    logger.Logger
	MetricMgr metricmgr.MetricMgr
}

func NewAssigner(input AssignerInput) *Assigner {
	metricMgr := input.MetricMgr
	if metricMgr == nil {
		metricMgr = metricmgr.Init()
	}
	return &Assigner{
		directory: input.Directory,
		accounts:  input.Accounts,
		groups:    input.Groups,
		logger:    input.Logger,
		metricMgr: metricMgr,
	}
}

// AssignAccountGroup assigns a newly created AWS-A- group to the account its name
// points at, using the first instance that has the permission set.  Names that do
// not resolve are logged and skipped.
func (a *Assigner) AssignAccountGroup(ctx context.Context, groupId, groupName string) (Summary, error) {
	summary := Summary{}
	group, err := groupname.Parse(groupName)
	if err != nil {
		a.logger.Errorf("skipping group [%s], %v", groupId, err)
		a.skip(&summary)
		return summary, nil
	}
	if group.Scope != groupname.ScopeAccount {
		a.logger.Infof("group [%s] is assigned when accounts are created, skipping", groupName)
		a.skip(&summary)
		return summary, nil
	}

	accountId, ok, err := a.accounts.AccountId(ctx, group.AccountName)
	if err != nil {
		return summary, err
	}
	if !ok {
		a.logger.Errorf("no account named [%s], skipping group [%s]", group.AccountName, groupName)
		a.skip(&summary)
		return summary, nil
	}

	instances, err := a.directory.ListInstances(ctx)
	if err != nil {
		return summary, err
	}
	for _, instance := range instances {
		permissionSetArn, ok, err := a.directory.PermissionSetArn(ctx, instance.InstanceArn, group.PermissionSetName)
		if err != nil {
			return summary, err
		}
		if !ok {
			continue
		}
		a.logger.Infof("assigning group [%s] permission set [%s] in [%s]", groupName, group.PermissionSetName, accountId)
		err = a.create(ctx, &summary, resources.AccountAssignment{
			InstanceArn:      instance.InstanceArn,
			PermissionSetArn: permissionSetArn,
			GroupId:          groupId,
			AccountId:        accountId,
		})
		return summary, err
	}

	a.logger.Errorf("permission set [%s] not found, skipping group [%s]", group.PermissionSetName, groupName)
	a.skip(&summary)
	return summary, nil
}

// AssignOrganizationGroups assigns every AWS-O- group of every instance to accountId.
func (a *Assigner) AssignOrganizationGroups(ctx context.Context, accountId string) (Summary, error) {
	summary := Summary{}
	instances, err := a.directory.ListInstances(ctx)
	if err != nil {
		return summary, err
	}
	a.logger.Infof("assigning organization groups to account [%s] from [%d] instances", accountId, len(instances))

	for _, instance := range instances {
		groups, err := a.groups.GroupsByPrefix(ctx, instance.IdentityStoreId, groupname.OrganizationPrefix)
		if err != nil {
			return summary, err
		}
		for _, identityGroup := range groups {
			group, err := groupname.Parse(identityGroup.DisplayName)
			if err != nil {
				a.logger.Errorf("skipping group [%s], %v", identityGroup.GroupId, err)
				a.skip(&summary)
				continue
			}
			permissionSetArn, ok, err := a.directory.PermissionSetArn(ctx, instance.InstanceArn, group.PermissionSetName)
			if err != nil {
				return summary, err
			}
			if !ok {
				a.logger.Errorf("permission set [%s] not found in [%s], skipping group [%s]", group.PermissionSetName, instance.InstanceArn, group.Name)
				a.skip(&summary)
				continue
			}
			a.logger.Infof("assigning group [%s] permission set [%s] in [%s]", group.Name, group.PermissionSetName, accountId)
			err = a.create(ctx, &summary, resources.AccountAssignment{
				InstanceArn:      instance.InstanceArn,
				PermissionSetArn: permissionSetArn,
				GroupId:          identityGroup.GroupId,
				AccountId:        accountId,
			})
			if err != nil {
				return summary, err
			}
		}
	}
	return summary, nil
}

func (a *Assigner) create(ctx context.Context, summary *Summary, assignment resources.AccountAssignment) error {
	created, err := a.directory.CreateAccountAssignment(ctx, assignment)
	if err != nil {
		return err
	}
	if created {
		summary.Created++
		a.metricMgr.IncrementMetric(metricmgr.TotalAssignmentsCreated, 1)
	} else {
		summary.Existing++
	}
	return nil
}

func (a *Assigner) skip(summary *Summary) {
	summary.Skipped++
	a.metricMgr.IncrementMetric(metricmgr.TotalAssignmentsSkipped, 1)
}
