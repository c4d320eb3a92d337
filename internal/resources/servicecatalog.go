package resources

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/servicecatalog"
	scTypes "github.com/aws/aws-sdk-go-v2/service/servicecatalog/types"
	"github.com/outofoffice3/account-bootstrap/internal/errormgr"
	"github.com/outofoffice3/common/logger"
	"github.com/pkg/errors"
)

type ServiceCatalogAPI interface {
	AcceptPortfolioShare(ctx context.Context, params *servicecatalog.AcceptPortfolioShareInput, optFns ...func(*servicecatalog.Options)) (*servicecatalog.AcceptPortfolioShareOutput, error)
	ListPrincipalsForPortfolio(ctx context.Context, params *servicecatalog.ListPrincipalsForPortfolioInput, optFns ...func(*servicecatalog.Options)) (*servicecatalog.ListPrincipalsForPortfolioOutput, error)
	AssociatePrincipalWithPortfolio(ctx context.Context, params *servicecatalog.AssociatePrincipalWithPortfolioInput, optFns ...func(*servicecatalog.Options)) (*servicecatalog.AssociatePrincipalWithPortfolioOutput, error)
	DisassociatePrincipalFromPortfolio(ctx context.Context, params *servicecatalog.DisassociatePrincipalFromPortfolioInput, optFns ...func(*servicecatalog.Options)) (*servicecatalog.DisassociatePrincipalFromPortfolioOutput, error)
}

type ServiceCatalog struct {
	client ServiceCatalogAPI
	logger logger.Logger
}

func NewServiceCatalog(client ServiceCatalogAPI, log logger.Logger) *ServiceCatalog {
	return &ServiceCatalog{client: client, logger: log}
}

// AcceptPortfolioShare accepts an organization share of the portfolio into this account.
func (s *ServiceCatalog) AcceptPortfolioShare(ctx context.Context, portfolioId string) error {
	_, err := s.client.AcceptPortfolioShare(ctx, &servicecatalog.AcceptPortfolioShareInput{
		PortfolioId:        aws.String(portfolioId),
		PortfolioShareType: scTypes.PortfolioShareTypeAwsOrganizations,
	})
	if errormgr.IsConflict(err) {
		s.logger.Debugf("portfolio [%s] share already accepted", portfolioId)
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "accept portfolio share [%s]", portfolioId)
	}
	s.logger.Infof("portfolio [%s] share accepted", portfolioId)
	return nil
}

func (s *ServiceCatalog) ListPrincipals(ctx context.Context, portfolioId string) ([]string, error) {
	principals := []string{}
	paginator := servicecatalog.NewListPrincipalsForPortfolioPaginator(s.client, &servicecatalog.ListPrincipalsForPortfolioInput{
		PortfolioId: aws.String(portfolioId),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.Wrapf(err, "list principals for portfolio [%s]", portfolioId)
		}
		for _, principal := range page.Principals {
			principals = append(principals, aws.ToString(principal.PrincipalARN))
		}
	}
	return principals, nil
}

func (s *ServiceCatalog) AssociatePrincipal(ctx context.Context, portfolioId, principalArn string) error {
	_, err := s.client.AssociatePrincipalWithPortfolio(ctx, &servicecatalog.AssociatePrincipalWithPortfolioInput{
		PortfolioId:   aws.String(portfolioId),
		PrincipalARN:  aws.String(principalArn),
		PrincipalType: scTypes.PrincipalTypeIam,
	})
	if errormgr.IsConflict(err) {
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "associate [%s] with portfolio [%s]", principalArn, portfolioId)
	}
	s.logger.Infof("associated [%s] with portfolio [%s]", principalArn, portfolioId)
	return nil
}

// DisassociatePrincipal treats a principal that is already gone as done.
func (s *ServiceCatalog) DisassociatePrincipal(ctx context.Context, portfolioId, principalArn string) error {
	_, err := s.client.DisassociatePrincipalFromPortfolio(ctx, &servicecatalog.DisassociatePrincipalFromPortfolioInput{
		PortfolioId:   aws.String(portfolioId),
		PrincipalARN:  aws.String(principalArn),
		PrincipalType: scTypes.PrincipalTypeIam,
	})
	if errormgr.IsNotFound(err) {
		s.logger.Debugf("principal [%s] already removed from portfolio [%s]", principalArn, portfolioId)
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "disassociate [%s] from portfolio [%s]", principalArn, portfolioId)
	}
	s.logger.Infof("disassociated [%s] from portfolio [%s]", principalArn, portfolioId)
	return nil
}
