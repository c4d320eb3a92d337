package resources

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/accessanalyzer"
	aaTypes "github.com/aws/aws-sdk-go-v2/service/accessanalyzer/types"
	"github.com/outofoffice3/account-bootstrap/internal/errormgr"
	"github.com/outofoffice3/common/logger"
	"github.com/pkg/errors"
)

type AccessAnalyzerAPI interface {
	CreateAnalyzer(ctx context.Context, params *accessanalyzer.CreateAnalyzerInput, optFns ...func(*accessanalyzer.Options)) (*accessanalyzer.CreateAnalyzerOutput, error)
}

type AccessAnalyzer struct {
	client AccessAnalyzerAPI
	region string
	logger logger.Logger
}

func NewAccessAnalyzer(client AccessAnalyzerAPI, region string, log logger.Logger) *AccessAnalyzer {
	return &AccessAnalyzer{client: client, region: region, logger: log}
}

// EnsureAnalyzer creates the account scoped analyzer.  An existing analyzer with the
// same name is left alone.
func (a *AccessAnalyzer) EnsureAnalyzer(ctx context.Context) error {
	_, err := a.client.CreateAnalyzer(ctx, &accessanalyzer.CreateAnalyzerInput{
		AnalyzerName: aws.String(AccessAnalyzerName),
		Type:         aaTypes.TypeAccount,
	})
	if errormgr.IsConflict(err) {
		a.logger.Debugf("access analyzer [%s] already exists in [%s]", AccessAnalyzerName, a.region)
		return nil
	}
	if err != nil {
		return errors.Wrapf(err, "create access analyzer in [%s]", a.region)
	}
	a.logger.Infof("access analyzer [%s] created in [%s]", AccessAnalyzerName, a.region)
	return nil
}
