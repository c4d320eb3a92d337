package assignment

import (
	"context"
	"errors"
	"testing"

	"github.com/outofoffice3/account-bootstrap/internal/metricmgr"
	"github.com/outofoffice3/account-bootstrap/internal/resources"
	"github.com/outofoffice3/common/logger"
	"github.com/stretchr/testify/assert"
)

type fakeDirectory struct {
	instances      []resources.SSOInstance
	permissionSets map[string]map[string]string // instance arn -> name -> arn
	existing       map[resources.AccountAssignment]bool
	created        []resources.AccountAssignment
	createErr      error
}

func (f *fakeDirectory) ListInstances(ctx context.Context) ([]resources.SSOInstance, error) {
	return f.instances, nil
}

func (f *fakeDirectory) PermissionSetArn(ctx context.Context, instanceArn, name string) (string, bool, error) {
	arn, ok := f.permissionSets[instanceArn][name]
	return arn, ok, nil
}

func (f *fakeDirectory) CreateAccountAssignment(ctx context.Context, assignment resources.AccountAssignment) (bool, error) {
	if f.createErr != nil {
		return false, f.createErr
	}
	if f.existing[assignment] {
		return false, nil
	}
	f.created = append(f.created, assignment)
	return true, nil
}

type fakeAccounts map[string]string

func (f fakeAccounts) AccountId(ctx context.Context, name string) (string, bool, error) {
	id, ok := f[name]
	return id, ok, nil
}

type fakeGroups map[string][]resources.IdentityGroup

func (f fakeGroups) GroupsByPrefix(ctx context.Context, identityStoreId, prefix string) ([]resources.IdentityGroup, error) {
	return f[identityStoreId], nil
}

func newTestDirectory() *fakeDirectory {
	return &fakeDirectory{
		instances: []resources.SSOInstance{
			{InstanceArn: "arn:instance-1", IdentityStoreId: "d-1"},
			{InstanceArn: "arn:instance-2", IdentityStoreId: "d-2"},
		},
		permissionSets: map[string]map[string]string{
			"arn:instance-1": {"AWSReadOnlyAccess": "arn:ps-ro"},
			"arn:instance-2": {"DeveloperAccess": "arn:ps-dev", "AWSReadOnlyAccess": "arn:ps-ro-2"},
		},
		existing: map[resources.AccountAssignment]bool{},
	}
}

func newTestAssigner(directory Directory, groups GroupSource, metricMgr metricmgr.MetricMgr) *Assigner {
	return NewAssigner(AssignerInput{
		Directory: directory,
		Accounts:  fakeAccounts{"AccountA": "111122223333"},
		Groups:    groups,
		Logger:    logger.NewConsoleLogger(logger.LogLevelDebug),
		MetricMgr: metricMgr,
	})
}

func TestAssignAccountGroupTriesEachInstance(t *testing.T) {
	assertion := assert.New(t)
	directory := newTestDirectory()
	metricMgr := metricmgr.Init()
	summary, err := newTestAssigner(directory, fakeGroups{}, metricMgr).AssignAccountGroup(context.Background(), "g-1", "AWS-A-AccountA-DeveloperAccess")
	assertion.NoError(err)
	assertion.Equal(Summary{Created: 1}, summary)
	assertion.Equal([]resources.AccountAssignment{{
		InstanceArn:      "arn:instance-2",
		PermissionSetArn: "arn:ps-dev",
		GroupId:          "g-1",
		AccountId:        "111122223333",
	}}, directory.created)
	created, _ := metricMgr.GetMetric(metricmgr.TotalAssignmentsCreated)
	assertion.Equal(int32(1), created)
}

func TestAssignAccountGroupSkipsUnresolvedNames(t *testing.T) {
	assertion := assert.New(t)
	tests := []struct {
		name      string
		groupName string
	}{
		{"unparseable", "Engineering"},
		{"organization group", "AWS-O-AWSReadOnlyAccess"},
		{"unknown account", "AWS-A-AccountZ-DeveloperAccess"},
		{"unknown permission set", "AWS-A-AccountA-BillingAccess"},
	}
	for _, test := range tests {
		directory := newTestDirectory()
		summary, err := newTestAssigner(directory, fakeGroups{}, metricmgr.Init()).AssignAccountGroup(context.Background(), "g-1", test.groupName)
		assertion.NoError(err, test.name)
		assertion.Equal(Summary{Skipped: 1}, summary, test.name)
		assertion.Empty(directory.created, test.name)
	}
}

func TestAssignAccountGroupPropagatesProviderErrors(t *testing.T) {
	assertion := assert.New(t)
	directory := newTestDirectory()
	directory.createErr = errors.New("access denied")
	_, err := newTestAssigner(directory, fakeGroups{}, metricmgr.Init()).AssignAccountGroup(context.Background(), "g-1", "AWS-A-AccountA-DeveloperAccess")
	assertion.Error(err)
}

func TestAssignOrganizationGroups(t *testing.T) {
	assertion := assert.New(t)
	directory := newTestDirectory()
	directory.existing[resources.AccountAssignment{
		InstanceArn:      "arn:instance-2",
		PermissionSetArn: "arn:ps-ro-2",
		GroupId:          "g-ro-2",
		AccountId:        "444455556666",
	}] = true
	groups := fakeGroups{
		"d-1": {
			{GroupId: "g-ro", DisplayName: "AWS-O-AWSReadOnlyAccess"},
			{GroupId: "g-billing", DisplayName: "AWS-O-BillingAccess"},
		},
		"d-2": {
			{GroupId: "g-ro-2", DisplayName: "AWS-O-AWSReadOnlyAccess"},
			{GroupId: "g-bad", DisplayName: "AWS-O-"},
		},
	}

	summary, err := newTestAssigner(directory, groups, metricmgr.Init()).AssignOrganizationGroups(context.Background(), "444455556666")
	assertion.NoError(err)
	assertion.Equal(Summary{Created: 1, Existing: 1, Skipped: 2}, summary)
	assertion.Equal([]resources.AccountAssignment{{
		InstanceArn:      "arn:instance-1",
		PermissionSetArn: "arn:ps-ro",
		GroupId:          "g-ro",
		AccountId:        "444455556666",
	}}, directory.created)
}
