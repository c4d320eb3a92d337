package resources

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/outofoffice3/account-bootstrap/internal/cache"
	"github.com/outofoffice3/common/logger"
	"github.com/pkg/errors"
)

type IAMAPI interface {
	UpdateAccountPasswordPolicy(ctx context.Context, params *iam.UpdateAccountPasswordPolicyInput, optFns ...func(*iam.Options)) (*iam.UpdateAccountPasswordPolicyOutput, error)
	ListRoles(ctx context.Context, params *iam.ListRolesInput, optFns ...func(*iam.Options)) (*iam.ListRolesOutput, error)
}

type IAM struct {
	client IAMAPI
	logger logger.Logger
	roles  cache.Cache[map[string]string]
}

func NewIAM(client IAMAPI, log logger.Logger) *IAM {
	return &IAM{
		client: client,
		logger: log,
		roles:  cache.NewCache[map[string]string](),
	}
}

// UpdatePasswordPolicy replaces the account password policy.  The call is a full
// replace, so repeating it leaves the same policy in place.
func (i *IAM) UpdatePasswordPolicy(ctx context.Context) error {
	_, err := i.client.UpdateAccountPasswordPolicy(ctx, &iam.UpdateAccountPasswordPolicyInput{
		MinimumPasswordLength:      aws.Int32(MinimumPasswordLength),
		RequireSymbols:             true,
		RequireNumbers:             true,
		RequireUppercaseCharacters: true,
		RequireLowercaseCharacters: true,
		AllowUsersToChangePassword: true,
		MaxPasswordAge:             aws.Int32(MaxPasswordAge),
		PasswordReusePrevention:    aws.Int32(PasswordReusePrevention),
		HardExpiry:                 aws.Bool(false),
	})
	if err != nil {
		return errors.Wrap(err, "update account password policy")
	}
	i.logger.Infof("password policy updated")
	return nil
}

// SSORoleArns maps permission set names to the arns of the roles sso provisioned
// for them in this account.  The listing happens once per IAM value.
func (i *IAM) SSORoleArns(ctx context.Context) (map[string]string, error) {
	return i.roles.GetOrLoad(cache.CacheKey{PK: SSORolePathPrefix}, func() (map[string]string, error) {
		roles := make(map[string]string)
		paginator := iam.NewListRolesPaginator(i.client, &iam.ListRolesInput{
			PathPrefix: aws.String(SSORolePathPrefix),
			MaxItems:   aws.Int32(1000),
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "list sso roles")
			}
			for _, role := range page.Roles {
				name, ok := PermissionSetFromRoleName(aws.ToString(role.RoleName))
				if !ok {
					continue
				}
				roles[name] = aws.ToString(role.Arn)
			}
		}
		i.logger.Debugf("found [%d] sso roles", len(roles))
		return roles, nil
	})
}

// RoleArn returns the role arn for a permission set name, false when the permission
// set is not provisioned in this account.
func (i *IAM) RoleArn(ctx context.Context, permissionSetName string) (string, bool, error) {
	roles, err := i.SSORoleArns(ctx)
	if err != nil {
		return "", false, err
	}
	arn, ok := roles[permissionSetName]
	return arn, ok, nil
}

// PermissionSetFromRoleName extracts the permission set name from an sso role name,
// AWSReservedSSO_AWSAdministratorAccess_a1ff75f56dfb0e2f -> AWSAdministratorAccess.
func PermissionSetFromRoleName(roleName string) (string, bool) {
	if !strings.HasPrefix(roleName, SSORolePrefix) {
		return "", false
	}
	trimmed := strings.TrimPrefix(roleName, SSORolePrefix)
	idx := strings.LastIndex(trimmed, "_")
	if idx <= 0 {
		return "", false
	}
	return trimmed[:idx], true
}
