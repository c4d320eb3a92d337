package metricmgr

type Metric string

const (
	TotalRegions        Metric = "totalRegions"
	TotalRegionsSkipped Metric = "totalRegionsSkipped"
	TotalRegionsFailed  Metric = "totalRegionsFailed"

	TotalVpcsDeleted          Metric = "totalVpcsDeleted"
	TotalVpcDependentsDeleted Metric = "totalVpcDependentsDeleted"

	TotalSettingsApplied Metric = "totalSettingsApplied"
	TotalSettingsFailed  Metric = "totalSettingsFailed"

	TotalPrincipalsAssociated    Metric = "totalPrincipalsAssociated"
	TotalPrincipalsDisassociated Metric = "totalPrincipalsDisassociated"

	TotalAssignmentsCreated Metric = "totalAssignmentsCreated"
	TotalAssignmentsSkipped Metric = "totalAssignmentsSkipped"
)

// allMetrics is the registration order, also used for summaries
var allMetrics = []Metric{
	TotalRegions,
	TotalRegionsSkipped,
	TotalRegionsFailed,
	TotalVpcsDeleted,
	TotalVpcDependentsDeleted,
	TotalSettingsApplied,
	TotalSettingsFailed,
	TotalPrincipalsAssociated,
	TotalPrincipalsDisassociated,
	TotalAssignmentsCreated,
	TotalAssignmentsSkipped,
}
