// internal/workers/volunteer/run-workload-analysis/config.go
package runworkloadanalysis

import "time"

type Config struct {
	Timeout time.Duration
	// MaxRecommendations caps the recommendations written back to the process. Zero
	// keeps all of them.
	MaxRecommendations int
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 120 * time.Second,
	}
}
