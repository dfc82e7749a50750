package otel

import "go.opentelemetry.io/otel/metric"

// Metrics holds catalyst's orchestrator-phase metric instruments.
type Metrics struct {
	SkillsInstalled metric.Int64Counter
	SkillsUpdated   metric.Int64Counter
	SkillsSkipped   metric.Int64Counter
	WrappersWritten metric.Int64Counter
	PhaseDuration   metric.Float64Histogram
}

// NewMetrics creates every instrument from the given meter. Called once
// per Provider; a no-op meter (the disabled case) returns no-op
// instruments with the same zero overhead as a disabled tracer.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	m.SkillsInstalled, err = meter.Int64Counter("catalyst.skills.installed",
		metric.WithDescription("Skill bundles installed by `catalyst init`"),
	)
	if err != nil {
		return nil, err
	}

	m.SkillsUpdated, err = meter.Int64Counter("catalyst.skills.updated",
		metric.WithDescription("Skill bundles rewritten by `catalyst update`"),
	)
	if err != nil {
		return nil, err
	}

	m.SkillsSkipped, err = meter.Int64Counter("catalyst.skills.skipped",
		metric.WithDescription("Skill bundles left untouched because the user had edited them"),
	)
	if err != nil {
		return nil, err
	}

	m.WrappersWritten, err = meter.Int64Counter("catalyst.wrappers.written",
		metric.WithDescription("Hook wrapper scripts (re)written"),
	)
	if err != nil {
		return nil, err
	}

	m.PhaseDuration, err = meter.Float64Histogram("catalyst.phase.duration",
		metric.WithDescription("init/update/status phase duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}
