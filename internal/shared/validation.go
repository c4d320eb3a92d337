package shared

import (
	"fmt"
	"regexp"
)

var (
	accountIdRegex   = regexp.MustCompile(`^\d{12}$`)
	regionRegex      = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d$`)
	portfolioIdRegex = regexp.MustCompile(`^port-[a-z0-9]+$`)
	roleNameRegex    = regexp.MustCompile(`^[\w+=,.@-]{1,64}$`)
)

var validPartitions = map[string]bool{
	"aws":        true,
	"aws-us-gov": true,
	"aws-cn":     true,
}

// validate aws account id
func IsValidAccountId(accountId string) bool {
	return accountIdRegex.MatchString(accountId)
}

// validate region name
func IsValidRegion(region string) bool {
	return regionRegex.MatchString(region)
}

// validate partition
func IsValidPartition(partition string) bool {
	return validPartitions[partition]
}

func IsValidProcedure(procedure Procedure) bool {
	for _, p := range Procedures {
		if p == procedure {
			return true
		}
	}
	return false
}

// Validate checks the config the same way init checks it before starting the runtime.
func (c Config) Validate() error {
	if !IsValidProcedure(c.Procedure) {
		return fmt.Errorf("invalid procedure [%s]", c.Procedure)
	}
	if !roleNameRegex.MatchString(c.ExecutionRoleName) {
		return fmt.Errorf("invalid execution role name [%s]", c.ExecutionRoleName)
	}
	if !IsValidPartition(c.Partition) {
		return fmt.Errorf("invalid partition [%s]", c.Partition)
	}
	if c.MaxWorkers < 1 || c.MaxWorkers > MaxWorkersLimit {
		return fmt.Errorf("max workers [%d] must be between 1 and %d", c.MaxWorkers, MaxWorkersLimit)
	}
	if !IsValidRegion(c.Route53LogRegion) {
		return fmt.Errorf("invalid route 53 log region [%s]", c.Route53LogRegion)
	}
	if c.LogLevel != LogLevelDebug && c.LogLevel != LogLevelInfo {
		return fmt.Errorf("invalid log level [%s]", c.LogLevel)
	}
	for _, portfolioId := range c.PortfolioIds {
		if !portfolioIdRegex.MatchString(portfolioId) {
			return fmt.Errorf("invalid portfolio id [%s]", portfolioId)
		}
	}
	return nil
}
