package shared

const (
	EnvProcedure            EnvVar = "PROCEDURE"
	EnvExecutionRoleName    EnvVar = "EXECUTION_ROLE_NAME"
	EnvPartition            EnvVar = "AWS_PARTITION"
	EnvPortfolioIds         EnvVar = "PORTFOLIO_IDS"
	EnvPermissionSetNames   EnvVar = "PERMISSION_SET_NAMES"
	EnvMaxWorkers           EnvVar = "MAX_WORKERS"
	EnvRoute53LogRegion     EnvVar = "ROUTE53_LOG_REGION"
	EnvEnableAccessAnalyzer EnvVar = "ENABLE_ACCESS_ANALYZER"
	EnvLogLevel             EnvVar = "LOG_LEVEL"
	EnvBucketName           EnvVar = "CONFIG_FILE_BUCKET_NAME"
	EnvConfigFileKey        EnvVar = "CONFIG_FILE_KEY"

	DefaultExecutionRoleName string = "AWSControlTowerExecution"
	DefaultPartition         string = "aws"
	DefaultMaxWorkers        int    = 10
	MaxWorkersLimit          int    = 50
	DefaultRoute53LogRegion  string = "us-east-1"

	// shortest duration sts allows for an assumed role
	AssumeRoleDurationSeconds int32 = 900

	LogLevelDebug string = "debug"
	LogLevelInfo  string = "info"
)

// role session names, one per procedure so cloudtrail shows who did what
const (
	SessionAccountSetup       SessionName = "AccountSetup"
	SessionDeleteDefaultVpc   SessionName = "delete_default_vpc"
	SessionEcsAccountSettings SessionName = "ecs_account_settings"
	SessionS3PublicBlock      SessionName = "s3_bucket_public_block"
	SessionRoute53Policy      SessionName = "route53_resource_policy"
	SessionServiceCatalog     SessionName = "service_catalog_portfolio"
)
