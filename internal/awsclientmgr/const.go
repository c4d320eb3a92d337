package awsclientmgr

type AWSServiceName string

const (
	IAM            AWSServiceName = "IAM"
	EC2            AWSServiceName = "EC2"
	ECS            AWSServiceName = "ECS"
	SSM            AWSServiceName = "SSM"
	S3CONTROL      AWSServiceName = "S3Control"
	LOGS           AWSServiceName = "CloudWatchLogs"
	AA             AWSServiceName = "AccessAnalyzer"
	SERVICECATALOG AWSServiceName = "ServiceCatalog"
	SSOADMIN       AWSServiceName = "SSOAdmin"
	ORGANIZATIONS  AWSServiceName = "Organizations"
	IDENTITYSTORE  AWSServiceName = "IdentityStore"
)

const (
	optInStatusFilter    = "opt-in-status"
	optInNotRequired     = "opt-in-not-required"
	iamRoleArnFormat     = "arn:%s:iam::%s:role/%s"
	globalServicesRegion = ""
)
