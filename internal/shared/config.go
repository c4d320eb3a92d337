package shared

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Config is built once per cold start and handed to every component.
type Config struct {
	Procedure            Procedure
	ExecutionRoleName    string
	Partition            string
	PortfolioIds         []string
	PermissionSetNames   []string
	MaxWorkers           int
	Route53LogRegion     string
	EnableAccessAnalyzer bool
	LogLevel             string
	ConfigBucketName     string
	ConfigFileKey        string
}

// ConfigDocument is the optional json overlay stored in s3.
type ConfigDocument struct {
	ExecutionRoleName  string   `json:"executionRoleName"`
	PortfolioIds       []string `json:"portfolioIds"`
	PermissionSetNames []string `json:"permissionSetNames"`
}

// LoadConfig reads the configuration from the environment.  getenv is normally
// os.Getenv.
func LoadConfig(getenv func(string) string) (Config, error) {
	cfg := Config{
		Procedure:          Procedure(strings.TrimSpace(getenv(string(EnvProcedure)))),
		ExecutionRoleName:  valueOrDefault(getenv(string(EnvExecutionRoleName)), DefaultExecutionRoleName),
		Partition:          valueOrDefault(getenv(string(EnvPartition)), DefaultPartition),
		PortfolioIds:       SplitList(getenv(string(EnvPortfolioIds))),
		PermissionSetNames: SplitList(getenv(string(EnvPermissionSetNames))),
		MaxWorkers:         DefaultMaxWorkers,
		Route53LogRegion:   valueOrDefault(getenv(string(EnvRoute53LogRegion)), DefaultRoute53LogRegion),
		LogLevel:           strings.ToLower(valueOrDefault(getenv(string(EnvLogLevel)), LogLevelInfo)),
		ConfigBucketName:   strings.TrimSpace(getenv(string(EnvBucketName))),
		ConfigFileKey:      strings.TrimSpace(getenv(string(EnvConfigFileKey))),
	}

	if raw := strings.TrimSpace(getenv(string(EnvMaxWorkers))); raw != "" {
		maxWorkers, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, errors.Wrapf(err, "invalid %s [%s]", EnvMaxWorkers, raw)
		}
		cfg.MaxWorkers = maxWorkers
	}

	if raw := strings.TrimSpace(getenv(string(EnvEnableAccessAnalyzer))); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return Config{}, errors.Wrapf(err, "invalid %s [%s]", EnvEnableAccessAnalyzer, raw)
		}
		cfg.EnableAccessAnalyzer = enabled
	}

	return cfg, nil
}

// HasOverlay reports whether a config document should be fetched from s3.
func (c Config) HasOverlay() bool {
	return c.ConfigBucketName != "" && c.ConfigFileKey != ""
}

// MergeDocument applies the non-empty fields of a json config document on top of c.
func (c Config) MergeDocument(content []byte) (Config, error) {
	var doc ConfigDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		return c, errors.Wrap(err, "failed to unmarshal config document")
	}
	if doc.ExecutionRoleName != "" {
		c.ExecutionRoleName = doc.ExecutionRoleName
	}
	if ids := compact(doc.PortfolioIds); len(ids) > 0 {
		c.PortfolioIds = ids
	}
	if names := compact(doc.PermissionSetNames); len(names) > 0 {
		c.PermissionSetNames = names
	}
	return c, nil
}

// SplitList turns a comma separated value into a list, dropping empty items.
func SplitList(value string) []string {
	return compact(strings.Split(value, ","))
}

func compact(values []string) []string {
	result := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value != "" {
			result = append(result, value)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback
	}
	return value
}
