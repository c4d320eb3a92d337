package awsclientmgr

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/accessanalyzer"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ecs"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/identitystore"
	"github.com/aws/aws-sdk-go-v2/service/organizations"
	"github.com/aws/aws-sdk-go-v2/service/s3control"
	"github.com/aws/aws-sdk-go-v2/service/servicecatalog"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssoadmin"
	"github.com/outofoffice3/account-bootstrap/internal/cache"
)

// Session is a set of credentials for one account, owned by a single invocation.
// Clients are created on first use and reused per service and region.
type Session struct {
	AccountId string
	cfg       aws.Config
	clients   cache.Cache[any]
}

func NewSession(accountId string, cfg aws.Config) *Session {
	return &Session{
		AccountId: accountId,
		cfg:       cfg,
		clients:   cache.NewCache[any](),
	}
}

// Config returns the session's sdk config pinned to region.  An empty region keeps
// the default region.
func (s *Session) Config(region string) aws.Config {
	cfg := s.cfg.Copy()
	if region != globalServicesRegion {
		cfg.Region = region
	}
	return cfg
}

// GetSDKClient returns the cached client for service in region, building it with
// build on first use.
func (s *Session) GetSDKClient(name AWSServiceName, region string, build func(aws.Config) any) any {
	client, _ := s.clients.GetOrLoad(cache.CacheKey{PK: string(name), SK: region}, func() (any, error) {
		return build(s.Config(region)), nil
	})
	return client
}

func (s *Session) IAM() *iam.Client {
	return s.GetSDKClient(IAM, globalServicesRegion, func(cfg aws.Config) any {
		return iam.NewFromConfig(cfg)
	}).(*iam.Client)
}

func (s *Session) EC2(region string) *ec2.Client {
	return s.GetSDKClient(EC2, region, func(cfg aws.Config) any {
		return ec2.NewFromConfig(cfg)
	}).(*ec2.Client)
}

func (s *Session) ECS(region string) *ecs.Client {
	return s.GetSDKClient(ECS, region, func(cfg aws.Config) any {
		return ecs.NewFromConfig(cfg)
	}).(*ecs.Client)
}

func (s *Session) SSM(region string) *ssm.Client {
	return s.GetSDKClient(SSM, region, func(cfg aws.Config) any {
		return ssm.NewFromConfig(cfg)
	}).(*ssm.Client)
}

func (s *Session) S3Control() *s3control.Client {
	return s.GetSDKClient(S3CONTROL, globalServicesRegion, func(cfg aws.Config) any {
		return s3control.NewFromConfig(cfg)
	}).(*s3control.Client)
}

func (s *Session) CloudWatchLogs(region string) *cloudwatchlogs.Client {
	return s.GetSDKClient(LOGS, region, func(cfg aws.Config) any {
		return cloudwatchlogs.NewFromConfig(cfg)
	}).(*cloudwatchlogs.Client)
}

func (s *Session) AccessAnalyzer(region string) *accessanalyzer.Client {
	return s.GetSDKClient(AA, region, func(cfg aws.Config) any {
		return accessanalyzer.NewFromConfig(cfg)
	}).(*accessanalyzer.Client)
}

func (s *Session) ServiceCatalog() *servicecatalog.Client {
	return s.GetSDKClient(SERVICECATALOG, globalServicesRegion, func(cfg aws.Config) any {
		return servicecatalog.NewFromConfig(cfg)
	}).(*servicecatalog.Client)
}

func (s *Session) SSOAdmin() *ssoadmin.Client {
	return s.GetSDKClient(SSOADMIN, globalServicesRegion, func(cfg aws.Config) any {
		return ssoadmin.NewFromConfig(cfg)
	}).(*ssoadmin.Client)
}

func (s *Session) Organizations() *organizations.Client {
	return s.GetSDKClient(ORGANIZATIONS, globalServicesRegion, func(cfg aws.Config) any {
		return organizations.NewFromConfig(cfg)
	}).(*organizations.Client)
}

func (s *Session) IdentityStore() *identitystore.Client {
	return s.GetSDKClient(IDENTITYSTORE, globalServicesRegion, func(cfg aws.Config) any {
		return identitystore.NewFromConfig(cfg)
	}).(*identitystore.Client)
}
