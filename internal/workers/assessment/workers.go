// internal/workers/assessment/workers.go
package assessmentworkers

import (
	"venture-risk-workers/internal/assessment"
	"venture-risk-workers/internal/common/camunda"
	"venture-risk-workers/internal/common/config"
	"venture-risk-workers/internal/common/logger"

	bi "venture-risk-workers/internal/workers/assessment/benchmark-industry"
	ch "venture-risk-workers/internal/workers/assessment/compare-history"
	car "venture-risk-workers/internal/workers/assessment/create-assessment-record"
	la "venture-risk-workers/internal/workers/assessment/list-assessments"
	sr "venture-risk-workers/internal/workers/assessment/score-risk"
	sa "venture-risk-workers/internal/workers/assessment/submit-assessment"
)

// TaskTypes lists every job type served by this module.
var TaskTypes = []string{
	sr.TaskType,
	ch.TaskType,
	bi.TaskType,
	car.TaskType,
	sa.TaskType,
	la.TaskType,
}

// Handlers builds one handler per task type. A configured worker timeout
// overrides the handler's default.
func Handlers(cfg *config.Config, service *assessment.Service, log logger.Logger) map[string]camunda.JobHandler {
	timeout := func(taskType string) (int, bool) {
		w, ok := cfg.Workers[taskType]
		return w.Timeout, ok && w.Timeout > 0
	}

	srCfg := sr.LoadConfig()
	if ms, ok := timeout(sr.TaskType); ok {
		srCfg.Timeout = config.GetDuration(ms)
	}
	chCfg := ch.LoadConfig()
	if ms, ok := timeout(ch.TaskType); ok {
		chCfg.Timeout = config.GetDuration(ms)
	}
	biCfg := bi.LoadConfig()
	if ms, ok := timeout(bi.TaskType); ok {
		biCfg.Timeout = config.GetDuration(ms)
	}
	carCfg := car.LoadConfig()
	if ms, ok := timeout(car.TaskType); ok {
		carCfg.Timeout = config.GetDuration(ms)
	}
	saCfg := sa.LoadConfig()
	if ms, ok := timeout(sa.TaskType); ok {
		saCfg.Timeout = config.GetDuration(ms)
	}
	laCfg := la.LoadConfig()
	if ms, ok := timeout(la.TaskType); ok {
		laCfg.Timeout = config.GetDuration(ms)
	}

	return map[string]camunda.JobHandler{
		sr.TaskType:  sr.NewHandler(srCfg, service, log),
		ch.TaskType:  ch.NewHandler(chCfg, service, log),
		bi.TaskType:  bi.NewHandler(biCfg, service, log),
		car.TaskType: car.NewHandler(carCfg, service, log),
		sa.TaskType:  sa.NewHandler(saCfg, service, log),
		la.TaskType:  la.NewHandler(laCfg, service, log),
	}
}
