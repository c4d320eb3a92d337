package awsclientmgr

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2Types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/outofoffice3/account-bootstrap/internal/shared"
)

// STSAPI is the part of the sts client the broker needs.
type STSAPI interface {
	AssumeRole(ctx context.Context, params *sts.AssumeRoleInput, optFns ...func(*sts.Options)) (*sts.AssumeRoleOutput, error)
}

// RegionsAPI is the part of the ec2 client used to discover regions.
type RegionsAPI interface {
	DescribeRegions(ctx context.Context, params *ec2.DescribeRegionsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeRegionsOutput, error)
}

type AWSClientMgr interface {
	// exchange an account id for a session scoped to the execution role in that account
	AssumeRole(ctx context.Context, accountId string, sessionName shared.SessionName) (*Session, error)
	// session using the lambda's own credentials
	ManagementSession() *Session
	// regions that do not require opt-in, sorted
	EnabledRegions(ctx context.Context) ([]string, error)
	// role arn of the execution role in an account
	RoleArn(accountId string) string
}

type _AWSClientMgr struct {
	cfg               aws.Config
	stsClient         STSAPI
	regionsClient     RegionsAPI
	executionRoleName string
	partition         string
	management        *Session
}

type AWSClientMgrInitConfig struct {
	Cfg               aws.Config
	ExecutionRoleName string
	Partition         string
	// optional, built from Cfg when nil
	STSClient     STSAPI
	RegionsClient RegionsAPI
}

func Init(pkgConfig AWSClientMgrInitConfig) (AWSClientMgr, error) {
	if pkgConfig.ExecutionRoleName == "" {
		return nil, errors.New("execution role name is not set")
	}
	partition := pkgConfig.Partition
	if partition == "" {
		partition = shared.DefaultPartition
	}
	sdkConfig := pkgConfig.Cfg.Copy()

	stsClient := pkgConfig.STSClient
	if stsClient == nil {
		stsClient = sts.NewFromConfig(sdkConfig)
	}
	regionsClient := pkgConfig.RegionsClient
	if regionsClient == nil {
		regionsClient = ec2.NewFromConfig(sdkConfig)
	}

	log.Printf("aws client mgr initialized with role [%s] in partition [%s]", pkgConfig.ExecutionRoleName, partition)
	return &_AWSClientMgr{
		cfg:               sdkConfig,
		stsClient:         stsClient,
		regionsClient:     regionsClient,
		executionRoleName: pkgConfig.ExecutionRoleName,
		partition:         partition,
		management:        NewSession("", sdkConfig),
	}, nil
}

func (a *_AWSClientMgr) RoleArn(accountId string) string {
	return fmt.Sprintf(iamRoleArnFormat, a.partition, accountId, a.executionRoleName)
}

// AssumeRole fails when the role is missing or cannot be assumed.  The failure is
// fatal for the invocation and is not retried here.
func (a *_AWSClientMgr) AssumeRole(ctx context.Context, accountId string, sessionName shared.SessionName) (*Session, error) {
	if accountId == "" {
		return nil, shared.ErrMissingAccountId
	}
	if sessionName == "" {
		sessionName = shared.SessionAccountSetup
	}
	roleArn := a.RoleArn(accountId)
	log.Printf("assuming role [%s] with session name [%s]", roleArn, sessionName)

	output, err := a.stsClient.AssumeRole(ctx, &sts.AssumeRoleInput{
		RoleArn:         aws.String(roleArn),
		RoleSessionName: aws.String(string(sessionName)),
		DurationSeconds: aws.Int32(shared.AssumeRoleDurationSeconds),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to assume role [%s]: %w", roleArn, err)
	}
	if output == nil || output.Credentials == nil ||
		aws.ToString(output.Credentials.AccessKeyId) == "" || aws.ToString(output.Credentials.SecretAccessKey) == "" {
		return nil, fmt.Errorf("sts returned empty credentials for role [%s]", roleArn)
	}

	cfgCopy := a.cfg.Copy()
	cfgCopy.Credentials = aws.NewCredentialsCache(credentials.NewStaticCredentialsProvider(
		aws.ToString(output.Credentials.AccessKeyId),
		aws.ToString(output.Credentials.SecretAccessKey),
		aws.ToString(output.Credentials.SessionToken),
	))
	return NewSession(accountId, cfgCopy), nil
}

func (a *_AWSClientMgr) ManagementSession() *Session {
	return a.management
}

func (a *_AWSClientMgr) EnabledRegions(ctx context.Context) ([]string, error) {
	output, err := a.regionsClient.DescribeRegions(ctx, &ec2.DescribeRegionsInput{
		AllRegions: aws.Bool(false),
		Filters: []ec2Types.Filter{
			{
				Name:   aws.String(optInStatusFilter),
				Values: []string{optInNotRequired},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe regions: %w", err)
	}
	regions := make([]string, 0, len(output.Regions))
	for _, region := range output.Regions {
		if name := aws.ToString(region.RegionName); name != "" {
			regions = append(regions, name)
		}
	}
	sort.Strings(regions)
	log.Printf("discovered regions [%v]", regions)
	return regions, nil
}
