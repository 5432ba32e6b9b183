// internal/workers/assessment/benchmark-industry/config.go
package benchmarkindustry

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}
