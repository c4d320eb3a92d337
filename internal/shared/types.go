package shared

type EnvVar string
type SessionName string
type Procedure string

const (
	ProcedureAccountSetup            Procedure = "account_setup"
	ProcedureRegionalSetup           Procedure = "regional_setup"
	ProcedureDeleteDefaultVpc        Procedure = "delete_default_vpc"
	ProcedureEcsAccountSettings      Procedure = "ecs_account_settings"
	ProcedureS3PublicAccessBlock     Procedure = "s3_public_access_block"
	ProcedureRoute53QueryLogs        Procedure = "route53_query_logs"
	ProcedureServiceCatalogPortfolio Procedure = "service_catalog_portfolio"
	ProcedureSSOAssignment           Procedure = "sso_assignment"
)

// Procedures lists every procedure main knows how to dispatch.
var Procedures = []Procedure{
	ProcedureAccountSetup,
	ProcedureRegionalSetup,
	ProcedureDeleteDefaultVpc,
	ProcedureEcsAccountSettings,
	ProcedureS3PublicAccessBlock,
	ProcedureRoute53QueryLogs,
	ProcedureServiceCatalogPortfolio,
	ProcedureSSOAssignment,
}

// TargetAccount identifies where configuration is applied.  Region is empty for
// account-wide procedures.
type TargetAccount struct {
	AccountId string
	Region    string
}

// AccountEvent is the payload emitted for a newly vended account.
type AccountEvent struct {
	Account struct {
		AccountId string `json:"accountId"`
	} `json:"account"`
}

// RegionalEvent is the payload of the per-region setup step.
type RegionalEvent struct {
	AccountId string `json:"account_id"`
	Region    string `json:"region"`
}

// GroupEvent is the cloudtrail record for an identity store CreateGroup call.  The
// account block is populated instead when the same function handles new accounts.
type GroupEvent struct {
	EventName        string `json:"eventName"`
	ResponseElements struct {
		Group struct {
			GroupId   string `json:"groupId"`
			GroupName string `json:"groupName"`
		} `json:"group"`
	} `json:"responseElements"`
	Account struct {
		AccountId string `json:"accountId"`
	} `json:"account"`
}

const CreateGroupEventName string = "CreateGroup"
