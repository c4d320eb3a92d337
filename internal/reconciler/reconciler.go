package reconciler

import (
	"context"
	"sort"

	"github.com/outofoffice3/common/logger"
	"github.com/pkg/errors"
)

// Diff returns the members of desired missing from current and the members of
// current missing from desired.  Both results are sorted and hold no duplicates.
func Diff(desired, current []string) (add []string, remove []string) {
	desiredSet := toSet(desired)
	currentSet := toSet(current)
	for value := range desiredSet {
		if _, ok := currentSet[value]; !ok {
			add = append(add, value)
		}
	}
	for value := range currentSet {
		if _, ok := desiredSet[value]; !ok {
			remove = append(remove, value)
		}
	}
	sort.Strings(add)
	sort.Strings(remove)
	return add, remove
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		set[value] = struct{}{}
	}
	return set
}

// PortfolioAPI is what the reconciler needs from the catalog.  Implementations swallow
// duplicate associations and disassociations of principals that are already gone.
type PortfolioAPI interface {
	AcceptPortfolioShare(ctx context.Context, portfolioId string) error
	ListPrincipals(ctx context.Context, portfolioId string) ([]string, error)
	AssociatePrincipal(ctx context.Context, portfolioId, principalArn string) error
	DisassociatePrincipal(ctx context.Context, portfolioId, principalArn string) error
}

type Outcome struct {
	PortfolioId   string
	Associated    int
	Disassociated int
}

type Portfolio struct {
	catalog PortfolioAPI
	logger  logger.Logger
}

func NewPortfolio(catalog PortfolioAPI, log logger.Logger) *Portfolio {
	return &Portfolio{catalog: catalog, logger: log}
}

// Reconcile makes the principals of a portfolio equal desired, touching only the
// principals that differ.
func (p *Portfolio) Reconcile(ctx context.Context, portfolioId string, desired []string) (Outcome, error) {
	outcome := Outcome{PortfolioId: portfolioId}
	if err := p.catalog.AcceptPortfolioShare(ctx, portfolioId); err != nil {
		return outcome, err
	}
	current, err := p.catalog.ListPrincipals(ctx, portfolioId)
	if err != nil {
		return outcome, err
	}
	add, remove := Diff(desired, current)
	p.logger.Debugf("portfolio [%s] : add [%v] remove [%v]", portfolioId, add, remove)

	for _, principalArn := range add {
		if err := p.catalog.AssociatePrincipal(ctx, portfolioId, principalArn); err != nil {
			return outcome, errors.Wrapf(err, "reconcile portfolio [%s]", portfolioId)
		}
		outcome.Associated++
	}
	for _, principalArn := range remove {
		if err := p.catalog.DisassociatePrincipal(ctx, portfolioId, principalArn); err != nil {
			return outcome, errors.Wrapf(err, "reconcile portfolio [%s]", portfolioId)
		}
		outcome.Disassociated++
	}
	p.logger.Infof("portfolio [%s] reconciled : associated [%d] disassociated [%d]", portfolioId, outcome.Associated, outcome.Disassociated)
	return outcome, nil
}
