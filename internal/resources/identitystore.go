package resources

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	"github.com/outofoffice3/common/logger"
	"github.com/pkg/errors"
)

type IdentityStoreAPI interface {
	ListGroups(ctx context.Context, params *identitystore.ListGroupsInput, optFns ...func(*identitystore.Options)) (*identitystore.ListGroupsOutput, error)
}

type IdentityGroup struct {
	GroupId     string
	DisplayName string
}

type IdentityStore struct {
	client IdentityStoreAPI
	logger logger.Logger
}

func NewIdentityStore(client IdentityStoreAPI, log logger.Logger) *IdentityStore {
	return &IdentityStore{client: client, logger: log}
}

// GroupsByPrefix lists the groups in an identity store whose display name starts
// with prefix.  The api only filters on exact names, so the prefix match is local.
func (i *IdentityStore) GroupsByPrefix(ctx context.Context, identityStoreId, prefix string) ([]IdentityGroup, error) {
	groups := []IdentityGroup{}
	paginator := identitystore.NewListGroupsPaginator(i.client, &identitystore.ListGroupsInput{
		IdentityStoreId: aws.String(identityStoreId),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "list groups in [%s]", identityStoreId)
		}
		for _, group := range page.Groups {
			name := aws.ToString(group.DisplayName)
			if !strings.HasPrefix(name, prefix) {
				continue
			}
			groups = append(groups, IdentityGroup{
				GroupId:     aws.ToString(group.GroupId),
				DisplayName: name,
			})
		}
	}
	i.logger.Debugf("found [%d] groups with prefix [%s] in [%s]", len(groups), prefix, identityStoreId)
	return groups, nil
}
