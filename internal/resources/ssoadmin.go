package resources

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
	ssoTypes "github.com/aws/aws-sdk-go-v2/service/ssoadmin/types"
	"github.com/outofoffice3/account-bootstrap/internal/cache"
	"github.com/outofoffice3/account-bootstrap/internal/errormgr"
	"github.com/outofoffice3/common/logger"
	"github.com/pkg/errors"
)

type SSOAdminAPI interface {
	ListInstances(ctx context.Context, params *ssoadmin.ListInstancesInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.ListInstancesOutput, error)
	ListPermissionSets(ctx context.Context, params *ssoadmin.ListPermissionSetsInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.ListPermissionSetsOutput, error)
	DescribePermissionSet(ctx context.Context, params *ssoadmin.DescribePermissionSetInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.DescribePermissionSetOutput, error)
	CreateAccountAssignment(ctx context.Context, params *ssoadmin.CreateAccountAssignmentInput, optFns ...func(*ssoadmin.Options)) (*ssoadmin.CreateAccountAssignmentOutput, error)
}

// SSOInstance is an identity center instance and the identity store behind it.
type SSOInstance struct {
	InstanceArn     string
	IdentityStoreId string
}

// AccountAssignment grants a group a permission set in an account.
type AccountAssignment struct {
	InstanceArn      string
	PermissionSetArn string
	GroupId          string
	AccountId        string
}

type SSOAdmin struct {
	client         SSOAdminAPI
	logger         logger.Logger
	instances      cache.Cache[[]SSOInstance]
	permissionSets cache.Cache[map[string]string]
}

func NewSSOAdmin(client SSOAdminAPI, log logger.Logger) *SSOAdmin {
	return &SSOAdmin{
		client:         client,
		logger:         log,
		instances:      cache.NewCache[[]SSOInstance](),
		permissionSets: cache.NewCache[map[string]string](),
	}
}

func (s *SSOAdmin) ListInstances(ctx context.Context) ([]SSOInstance, error) {
	return s.instances.GetOrLoad(cache.CacheKey{PK: "instances"}, func() ([]SSOInstance, error) {
		instances := []SSOInstance{}
		paginator := ssoadmin.NewListInstancesPaginator(s.client, &ssoadmin.ListInstancesInput{})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "list sso instances")
			}
			for _, instance := range page.Instances {
				instances = append(instances, SSOInstance{
					InstanceArn:     aws.ToString(instance.InstanceArn),
					IdentityStoreId: aws.ToString(instance.IdentityStoreId),
				})
			}
		}
		return instances, nil
	})
}

// PermissionSets maps permission set names to arns for one instance.  Each instance
// is described once per SSOAdmin value.
func (s *SSOAdmin) PermissionSets(ctx context.Context, instanceArn string) (map[string]string, error) {
	return s.permissionSets.GetOrLoad(cache.CacheKey{PK: instanceArn}, func() (map[string]string, error) {
		permissionSets := make(map[string]string)
		paginator := ssoadmin.NewListPermissionSetsPaginator(s.client, &ssoadmin.ListPermissionSetsInput{
			InstanceArn: aws.String(instanceArn),
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, errors.Wrapf(err, "list permission sets for [%s]", instanceArn)
			}
			for _, permissionSetArn := range page.PermissionSets {
				output, err := s.client.DescribePermissionSet(ctx, &ssoadmin.DescribePermissionSetInput{
					InstanceArn:      aws.String(instanceArn),
					PermissionSetArn: aws.String(permissionSetArn),
				})
				if err != nil {
					return nil, errors.Wrapf(err, "describe permission set [%s]", permissionSetArn)
				}
				if output.PermissionSet == nil {
					continue
				}
				permissionSets[aws.ToString(output.PermissionSet.Name)] = permissionSetArn
			}
		}
		s.logger.Debugf("found [%d] permission sets in [%s]", len(permissionSets), instanceArn)
		return permissionSets, nil
	})
}

func (s *SSOAdmin) PermissionSetArn(ctx context.Context, instanceArn, name string) (string, bool, error) {
	permissionSets, err := s.PermissionSets(ctx, instanceArn)
	if err != nil {
		return "", false, err
	}
	arn, ok := permissionSets[name]
	return arn, ok, nil
}

// CreateAccountAssignment reports false when the assignment already existed.
func (s *SSOAdmin) CreateAccountAssignment(ctx context.Context, assignment AccountAssignment) (bool, error) {
	_, err := s.client.CreateAccountAssignment(ctx, &ssoadmin.CreateAccountAssignmentInput{
		InstanceArn:      aws.String(assignment.InstanceArn),
		PermissionSetArn: aws.String(assignment.PermissionSetArn),
		PrincipalId:      aws.String(assignment.GroupId),
		PrincipalType:    ssoTypes.PrincipalTypeGroup,
		TargetId:         aws.String(assignment.AccountId),
		TargetType:       ssoTypes.TargetTypeAwsAccount,
	})
	if errormgr.IsConflict(err) {
		s.logger.Debugf("assignment of [%s] to [%s] in [%s] already exists", assignment.PermissionSetArn, assignment.GroupId, assignment.AccountId)
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "create account assignment of [%s] to [%s] in [%s]", assignment.PermissionSetArn, assignment.GroupId, assignment.AccountId)
	}
	return true, nil
}
