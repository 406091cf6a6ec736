package metrics

import (
	"github.com/pkg/errors"
)

// MetricsModule groups the individual metrics exposed by one module of the
// tool (scorer, db, ...).
type MetricsModule struct {
	name    string
	details string

	indvMetrics []*IndvMetrics
}

func NewMetricsModule(
	name string,
	details string) *MetricsModule {

	return &MetricsModule{
		name:        name,
		details:     details,
		indvMetrics: make([]*IndvMetrics, 0),
	}
}

func (m *MetricsModule) AddIndvMetric(indv *IndvMetrics) {
	if indv == nil {
		return
	}
	m.indvMetrics = append(m.indvMetrics, indv)
}

func (m *MetricsModule) Name() string {
	return m.name
}

func (m *MetricsModule) Details() string {
	return m.details
}

func (m *MetricsModule) Init() error {
	for _, indv := range m.indvMetrics {
		if err := indv.Init(); err != nil {
			return errors.Wrapf(err, "unable to init metric %s", indv.Name())
		}
	}
	return nil
}

func (m *MetricsModule) UpdateSummary() map[string]interface{} {
	summary := make(map[string]interface{})
	for _, indv := range m.indvMetrics {
		status, err := indv.Update()
		if err != nil {
			log.Errorf("unable to update metric %s - %s", indv.Name(), err.Error())
			continue
		}
		summary[indv.Name()] = status
	}
	return summary
}

// IndvMetrics wraps a single prometheus metric with its registration and
// update routines.
type IndvMetrics struct {
	name     string
	initFn   func() error
	updateFn func() (interface{}, error)
}

func NewIndvMetrics(
	name string,
	initFn func() error,
	updateFn func() (interface{}, error)) (*IndvMetrics, error) {

	if initFn == nil || updateFn == nil {
		return nil, errors.Errorf("no init or update function given for metric %s", name)
	}

	return &IndvMetrics{
		name:     name,
		initFn:   initFn,
		updateFn: updateFn,
	}, nil
}

func (m *IndvMetrics) Name() string {
	return m.name
}

func (m *IndvMetrics) Init() error {
	return m.initFn()
}

func (m *IndvMetrics) Update() (interface{}, error) {
	return m.updateFn()
}
