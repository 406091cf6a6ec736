package db

import (
	"strings"

	"github.com/migalabs/scoreth/pkg/metrics"
	"github.com/migalabs/scoreth/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
)

var (

	// List of metrics that we are going to export
	LastScoredSlot = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: strings.ToLower(utils.CliName),
		Subsystem: modName,
		Name:      "last_scored_slot",
		Help:      "Last slot persisted with performance metrics",
	})

	// List of metrics that we are going to export
	RowsPersisted = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: strings.ToLower(utils.CliName),
			Subsystem: modName,
			Name:      "rows_persisted",
			Help:      "Rows persisted on the last insert",
		},
		[]string{
			"table",
		},
	)
	TimePersisted = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: strings.ToLower(utils.CliName),
			Subsystem: modName,
			Name:      "time_persisted",
			Help:      "Duration (seconds) of last insert",
		},
		[]string{
			"table",
		},
	)
	RatePersisted = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: strings.ToLower(utils.CliName),
			Subsystem: modName,
			Name:      "rows_s_persisted",
			Help:      "Rows per second persisted in the last insert",
		},
		[]string{
			"table",
		},
	)
)

func (r *DBService) initMonitorMetrics() {

	tablesArr := []string{
		blocksTable,
		committeesTable,
		attestationsTable,
		performanceTable,
		summariesTable,
		participationTable}

	for _, tableName := range tablesArr {
		r.monitorMetrics[tableName] = &DBMonitorMetrics{}
	}

}

func (r *DBService) GetPrometheusMetrics() *metrics.MetricsModule {
	metricsMod := metrics.NewMetricsModule(
		modName,
		"metrics about the database",
	)
	// compose all the metrics
	metricsMod.AddIndvMetric(r.getPersistMetrics())
	metricsMod.AddIndvMetric(r.lastScoredSlotMetric())
	return metricsMod
}

func (r *DBService) getPersistMetrics() *metrics.IndvMetrics {
	initFn := func() error {
		prometheus.MustRegister(RowsPersisted)
		prometheus.MustRegister(TimePersisted)
		prometheus.MustRegister(RatePersisted)
		return nil
	}
	updateFn := func() (interface{}, error) {
		ratePersisted := make(map[string]float64)

		copyMonitorMetrics := r.getMonitorMetrics()

		for k, v := range copyMonitorMetrics {
			var rate float64
			secondsTime := v.PersistTime.Seconds()

			if secondsTime != 0 {
				rate = float64(v.Rows) / secondsTime
			}

			ratePersisted[k] = rate

			RowsPersisted.WithLabelValues(k).Set(float64(v.Rows))
			TimePersisted.WithLabelValues(k).Set(secondsTime)
			RatePersisted.WithLabelValues(k).Set(rate)
		}

		return ratePersisted, nil
	}
	persistingMetrics, err := metrics.NewIndvMetrics(
		"persisting_metrics",
		initFn,
		updateFn,
	)
	if err != nil {
		return nil
	}
	return persistingMetrics
}

func (r *DBService) lastScoredSlotMetric() *metrics.IndvMetrics {
	initFn := func() error {
		prometheus.MustRegister(LastScoredSlot)
		return nil
	}
	updateFn := func() (interface{}, error) {
		slot, found, err := r.RetrieveLastScoredSlot()
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, nil
		}
		LastScoredSlot.Set(float64(slot))
		return slot, nil
	}
	lastSlot, err := metrics.NewIndvMetrics(
		"last_scored_slot",
		initFn,
		updateFn,
	)
	if err != nil {
		return nil
	}
	return lastSlot
}

func (r *DBService) getMonitorMetrics() map[string]DBMonitorMetrics {
	r.metricsMu.RLock()
	defer r.metricsMu.RUnlock()

	copyMonitorMetrics := make(map[string]DBMonitorMetrics, len(r.monitorMetrics))

	for table, metrics := range r.monitorMetrics {
		copyMonitorMetrics[table] = *metrics
	}

	return copyMonitorMetrics
}
