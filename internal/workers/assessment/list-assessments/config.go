// internal/workers/assessment/list-assessments/config.go
package listassessments

import "time"

type Config struct {
	Timeout      time.Duration
	DefaultLimit int
	MaxLimit     int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      10 * time.Second,
		DefaultLimit: 50,
		MaxLimit:     500,
	}
}
