package resources

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/outofoffice3/account-bootstrap/internal/cache"
	"github.com/outofoffice3/common/logger"
	"github.com/pkg/errors"
)

type OrganizationsAPI interface {
	ListAccounts(ctx context.Context, params *organizations.ListAccountsInput, optFns ...func(*organizations.Options)) (*organizations.ListAccountsOutput, error)
}

type Organizations struct {
	client   OrganizationsAPI
	logger   logger.Logger
	accounts cache.Cache[map[string]string]
}

func NewOrganizations(client OrganizationsAPI, log logger.Logger) *Organizations {
	return &Organizations{
		client:   client,
		logger:   log,
		accounts: cache.NewCache[map[string]string](),
	}
}

// AccountId resolves an account name to its id.  The organization is listed once.
func (o *Organizations) AccountId(ctx context.Context, name string) (string, bool, error) {
	accounts, err := o.accounts.GetOrLoad(cache.CacheKey{PK: "accounts"}, func() (map[string]string, error) {
		accounts := make(map[string]string)
		paginator := organizations.NewListAccountsPaginator(o.client, &organizations.ListAccountsInput{
			MaxResults: aws.Int32(20),
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return nil, errors.Wrap(err, "list accounts")
			}
			for _, account := range page.Accounts {
				accounts[aws.ToString(account.Name)] = aws.ToString(account.Id)
			}
		}
		o.logger.Debugf("found [%d] accounts in organization", len(accounts))
		return accounts, nil
	})
	if err != nil {
		return "", false, err
	}
	id, ok := accounts[name]
	return id, ok, nil
}
