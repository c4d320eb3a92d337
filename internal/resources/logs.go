package resources

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/outofoffice3/common/logger"
	"github.com/pkg/errors"
)

type CloudWatchLogsAPI interface {
	PutResourcePolicy(ctx context.Context, params *cloudwatchlogs.PutResourcePolicyInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutResourcePolicyOutput, error)
}

type PolicyDocument struct {
	Version   string            `json:"Version"`
	Statement []PolicyStatement `json:"Statement"`
}

type PolicyStatement struct {
	Sid       string            `json:"Sid"`
	Effect    string            `json:"Effect"`
	Principal map[string]string `json:"Principal"`
	Action    []string          `json:"Action"`
	Resource  string            `json:"Resource"`
}

type CloudWatchLogs struct {
	client CloudWatchLogsAPI
	logger logger.Logger
}

func NewCloudWatchLogs(client CloudWatchLogsAPI, log logger.Logger) *CloudWatchLogs {
	return &CloudWatchLogs{client: client, logger: log}
}

// Route53QueryLogPolicy allows route 53 to write query logs to /aws/route53/* log
// groups in region.  Route 53 only delivers query logs to us-east-1.
func Route53QueryLogPolicy(partition, region, accountId string) PolicyDocument {
	return PolicyDocument{
		Version: "2012-10-17",
		Statement: []PolicyStatement{
			{
				Sid:       "Route53LogsToCloudWatchLogs",
				Effect:    "Allow",
				Principal: map[string]string{"Service": route53ServicePrincipal},
				Action:    []string{"logs:CreateLogStream", "logs:PutLogEvents"},
				Resource:  fmt.Sprintf(route53LogGroupArn, partition, region, accountId),
			},
		},
	}
}

// PutRoute53QueryLogPolicy creates or replaces the named resource policy.  The client
// must be bound to region.
func (c *CloudWatchLogs) PutRoute53QueryLogPolicy(ctx context.Context, partition, region, accountId string) error {
	document, err := json.Marshal(Route53QueryLogPolicy(partition, region, accountId))
	if err != nil {
		return errors.Wrap(err, "marshal route 53 log policy")
	}
	_, err = c.client.PutResourcePolicy(ctx, &cloudwatchlogs.PutResourcePolicyInput{
		PolicyName:     aws.String(Route53LogPolicyName),
		PolicyDocument: aws.String(string(document)),
	})
	if err != nil {
		return errors.Wrapf(err, "put resource policy [%s] in [%s]", Route53LogPolicyName, region)
	}
	c.logger.Infof("route 53 query log policy put in [%s]", region)
	return nil
}
