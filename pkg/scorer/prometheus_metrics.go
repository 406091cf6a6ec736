package scorer

import (
	"strings"

	"github.com/migalabs/scoreth/pkg/metrics"
	"github.com/migalabs/scoreth/pkg/utils"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	modName    = "scorer"
	modDetails = "general metrics about the attestation scorer"

	CanonicalChainLength = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: strings.ToLower(utils.CliName),
		Subsystem: modName,
		Name:      "canonical_chain_length",
		Help:      "The number of blocks on the resolved canonical chain",
	})
	SlotsScored = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: strings.ToLower(utils.CliName),
		Subsystem: modName,
		Name:      "slots_scored",
		Help:      "The number of slots scored so far in this run",
	})
	SlotsInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: strings.ToLower(utils.CliName),
		Subsystem: modName,
		Name:      "slots_in_flight",
		Help:      "The number of slots handed to workers but not yet reduced",
	})
	OrphanedBlocks = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: strings.ToLower(utils.CliName),
		Subsystem: modName,
		Name:      "orphaned_blocks",
		Help:      "The number of ledger blocks left outside the canonical chain",
	})
)

func (s *ChainScorer) GetPrometheusMetrics() *metrics.MetricsModule {
	metricsMod := metrics.NewMetricsModule(
		modName,
		modDetails,
	)
	// compose all the metrics

	metricsMod.AddIndvMetric(s.getCanonicalChainLength())
	metricsMod.AddIndvMetric(s.getSlotsScored())
	metricsMod.AddIndvMetric(s.getSlotsInFlight())
	metricsMod.AddIndvMetric(s.getOrphanedBlocks())

	return metricsMod
}

func (s *ChainScorer) getCanonicalChainLength() *metrics.IndvMetrics {

	initFn := func() error {
		prometheus.MustRegister(CanonicalChainLength)
		return nil
	}

	updateFn := func() (interface{}, error) {
		if s.canonical == nil {
			return 0, nil
		}
		chainLength := s.canonical.Len()
		CanonicalChainLength.Set(float64(chainLength))
		return chainLength, nil
	}

	indvMetr, err := metrics.NewIndvMetrics(
		"canonical_chain_length",
		initFn,
		updateFn,
	)
	if err != nil {
		log.Error(errors.Wrap(err, "unable to init canonical_chain_length"))
		return nil
	}

	return indvMetr
}

func (s *ChainScorer) getSlotsScored() *metrics.IndvMetrics {

	initFn := func() error {
		prometheus.MustRegister(SlotsScored)
		return nil
	}

	updateFn := func() (interface{}, error) {
		scored := s.slotsScored.Load()
		SlotsScored.Set(float64(scored))
		return scored, nil
	}

	indvMetr, err := metrics.NewIndvMetrics(
		"slots_scored",
		initFn,
		updateFn,
	)
	if err != nil {
		log.Error(errors.Wrap(err, "unable to init slots_scored"))
		return nil
	}

	return indvMetr
}

func (s *ChainScorer) getSlotsInFlight() *metrics.IndvMetrics {

	initFn := func() error {
		prometheus.MustRegister(SlotsInFlight)
		return nil
	}

	updateFn := func() (interface{}, error) {
		inFlight := s.scorerBook.ActivePages()
		SlotsInFlight.Set(float64(inFlight))
		return inFlight, nil
	}

	indvMetr, err := metrics.NewIndvMetrics(
		"slots_in_flight",
		initFn,
		updateFn,
	)
	if err != nil {
		log.Error(errors.Wrap(err, "unable to init slots_in_flight"))
		return nil
	}

	return indvMetr
}

func (s *ChainScorer) getOrphanedBlocks() *metrics.IndvMetrics {

	initFn := func() error {
		prometheus.MustRegister(OrphanedBlocks)
		return nil
	}

	updateFn := func() (interface{}, error) {
		orphans, err := s.dbClient.RetrieveOrphanCount()
		if err != nil {
			return nil, err
		}
		OrphanedBlocks.Set(float64(orphans))
		return orphans, nil
	}

	indvMetr, err := metrics.NewIndvMetrics(
		"orphaned_blocks",
		initFn,
		updateFn,
	)
	if err != nil {
		log.Error(errors.Wrap(err, "unable to init orphaned_blocks"))
		return nil
	}

	return indvMetr
}
