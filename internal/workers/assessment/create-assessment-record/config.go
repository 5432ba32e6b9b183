// internal/workers/assessment/create-assessment-record/config.go
package createassessmentrecord

import "time"

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 10 * time.Second,
	}
}
