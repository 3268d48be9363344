package entity

import "time"

type ScenarioStatus string

const (
	ScenarioPassed  ScenarioStatus = "passed"
	ScenarioFailed  ScenarioStatus = "failed"
	ScenarioSkipped ScenarioStatus = "skipped"
)

type ScenarioResult struct {
	Name   string
	Group  string
	Tags   []string
	Status ScenarioStatus
	// Attempts counts runs of the scenario, including suite-level retries.
	Attempts  int
	Duration  time.Duration
	Error     string
	Artifacts []string
}

type SuiteResult struct {
	Started  time.Time
	Duration time.Duration
	Results  []ScenarioResult
}

func (r SuiteResult) Count(status ScenarioStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == status {
			n++
		}
	}
	return n
}

func (r SuiteResult) Failed() bool {
	return r.Count(ScenarioFailed) > 0
}
