package resources

const (
	// password policy
	MinimumPasswordLength   int32 = 14
	MaxPasswordAge          int32 = 90
	PasswordReusePrevention int32 = 24

	// iam path and name prefix of the roles sso provisions for permission sets
	SSORolePathPrefix string = "/aws-reserved/sso.amazonaws.com/"
	SSORolePrefix     string = "AWSReservedSSO_"

	// route 53 query logging
	Route53LogPolicyName    string = "AWSServiceRoleForRoute53"
	route53ServicePrincipal string = "route53.amazonaws.com"
	route53LogGroupArn      string = "arn:%s:logs:%s:%s:log-group:/aws/route53/*"

	// ssm
	ssmPublicSharingSettingArn string = "arn:%s:ssm:%s:%s:servicesetting/ssm/documents/console/public-sharing-permission"
	SSMSettingDisable          string = "Disable"

	// ecs
	ECSSettingEnabled string = "enabled"
	ECSSettingOn      string = "on"

	AccessAnalyzerName string = "account-analyzer"
)

// ECSSetting is an account default and the value it is set to.
type ECSSetting struct {
	Name  string
	Value string
}

// ECSAccountSettings are applied in order.  tagResourceAuthorization takes "on"
// instead of "enabled".
var ECSAccountSettings = []ECSSetting{
	{Name: "serviceLongArnFormat", Value: ECSSettingEnabled},
	{Name: "taskLongArnFormat", Value: ECSSettingEnabled},
	{Name: "containerInstanceLongArnFormat", Value: ECSSettingEnabled},
	{Name: "awsvpcTrunking", Value: ECSSettingEnabled},
	{Name: "containerInsights", Value: ECSSettingEnabled},
	{Name: "dualStackIPv6", Value: ECSSettingEnabled},
	{Name: "tagResourceAuthorization", Value: ECSSettingOn},
}
