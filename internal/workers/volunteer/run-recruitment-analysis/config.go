// internal/workers/volunteer/run-recruitment-analysis/config.go
package runrecruitmentanalysis

import "time"

type Config struct {
	Timeout time.Duration
	// IncludeProfiles controls whether full profiles are written back as process
	// variables. Summaries and insights are always returned.
	IncludeProfiles bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout:         120 * time.Second,
		IncludeProfiles: true,
	}
}
