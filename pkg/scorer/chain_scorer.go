package scorer

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/migalabs/scoreth/pkg/config"
	"github.com/migalabs/scoreth/pkg/db"
	prom_metrics "github.com/migalabs/scoreth/pkg/metrics"
	"github.com/migalabs/scoreth/pkg/spec"
	"github.com/migalabs/scoreth/pkg/utils"
)

var (
	log = logrus.WithField(
		"module", "scorer",
	)
)

const slotProcesserTag = "slot="

// Participation rates at or below this threshold count as an outage epoch in
// the end-of-run report.
const outageParticipationThreshold = 2.0 / 3.0

type ChainScorer struct {
	ctx    context.Context
	cancel context.CancelFunc

	// Slot range to score
	initSlot  phase0.Slot
	finalSlot phase0.Slot

	// Root of the block the caller knows to be finalized; correctness of the
	// whole run is conditioned on this being true.
	finalizedRoot phase0.Root

	// Connections
	dbClient *db.DBService // ledger store + result sink

	// Scoring state
	canonical     *CanonicalIndex
	summaries     *SummaryAccumulator
	participation *ParticipationTracker
	epochRows     []spec.EpochParticipation

	// Worker plumbing
	slotTaskChan chan phase0.Slot
	resultCache  *utils.AgnosticMap[spec.SlotPerformance]
	scorerBook   *utils.RoutineBook // bounds the slots in flight
	wgWorkers    *sync.WaitGroup
	workerNum    int

	// Control Variables
	stop          bool
	routineClosed chan struct{}
	errMu         sync.Mutex
	runErr        error

	slotsScored atomic.Uint64

	initTime    time.Time
	PromMetrics *prom_metrics.PrometheusMetrics
}

func NewChainScorer(
	pCtx context.Context,
	iConfig config.ScorerConfig) (*ChainScorer, error) {

	// generate new ctx from parent
	ctx, cancel := context.WithCancel(pCtx)

	// generate the central exporting service
	promethMetrics := prom_metrics.NewPrometheusMetrics(ctx, "0.0.0.0", iConfig.PrometheusPort)

	finalizedRoot, err := spec.RootFromString(iConfig.FinalizedRoot)
	if err != nil {
		return &ChainScorer{
			ctx:    ctx,
			cancel: cancel,
		}, errors.Wrap(err, "unable to parse the finalized root.")
	}

	if iConfig.FinalSlot > 0 && iConfig.FinalSlot < iConfig.InitSlot {
		return &ChainScorer{
			ctx:    ctx,
			cancel: cancel,
		}, errors.Errorf("Final Slot cannot be lower than Init Slot")
	}

	idbClient, err := db.New(ctx, iConfig.DBUrl)
	if err != nil {
		return &ChainScorer{
			ctx:    ctx,
			cancel: cancel,
		}, errors.Wrap(err, "unable to generate DB Client.")
	}

	err = idbClient.Connect()
	if err != nil {
		return &ChainScorer{
			ctx:    ctx,
			cancel: cancel,
		}, errors.Wrap(err, "unable to connect DB Client.")
	}

	scorer := &ChainScorer{
		ctx:           ctx,
		cancel:        cancel,
		initSlot:      phase0.Slot(iConfig.InitSlot),
		finalSlot:     phase0.Slot(iConfig.FinalSlot),
		finalizedRoot: finalizedRoot,
		dbClient:      idbClient,
		summaries:     NewSummaryAccumulator(),
		participation: NewParticipationTracker(),
		slotTaskChan:  make(chan phase0.Slot, iConfig.WorkerNum),
		resultCache:   utils.NewAgnosticMap[spec.SlotPerformance](),
		scorerBook:    utils.NewRoutineBook(2*spec.SlotsPerEpoch, "scorer"), // two epochs in flight
		wgWorkers:     &sync.WaitGroup{},
		workerNum:     iConfig.WorkerNum,
		routineClosed: make(chan struct{}, 1),
		PromMetrics:   promethMetrics,
	}

	scorerMet := scorer.GetPrometheusMetrics()
	promethMetrics.AddMeticsModule(scorerMet)
	promethMetrics.AddMeticsModule(idbClient.GetPrometheusMetrics())

	return scorer, nil
}

func (s *ChainScorer) Run() error {
	defer s.cancel()
	defer func() {
		s.routineClosed <- struct{}{}
	}()

	s.initTime = time.Now()
	log.Info("Chain Scorer initialized at ", s.initTime)

	// documented precondition, not validated: a tip that is not actually
	// finalized silently corrupts every derived table
	log.Warnf("taking %s as a finalized root on external authority", s.finalizedRoot.String())

	if err := s.resolveChain(); err != nil {
		return errors.Wrap(err, "chain resolution failed")
	}

	if err := s.prepareSlotRange(); err != nil {
		return err
	}
	if s.initSlot > s.finalSlot {
		log.Infof("slot range %d:%d already scored, nothing to do", s.initSlot, s.finalSlot)
		s.dbClient.Finish()
		return nil
	}

	s.PromMetrics.Start()

	log.Infof("scoring attestation performance over slots %d:%d", s.initSlot, s.finalSlot)

	for i := 0; i < s.workerNum; i++ {
		s.wgWorkers.Add(1)
		go s.runScorerWorker(i)
	}
	go s.runTaskFeeder()

	err := s.runReducer()
	s.wgWorkers.Wait()

	if err == nil {
		err = s.persistFinalTables()
	}

	s.dbClient.Finish()

	analysisDuration := time.Since(s.initTime).Seconds()
	if err != nil {
		return err
	}
	log.Info("Chain Scorer finished in ", analysisDuration)
	return nil
}

func (s *ChainScorer) Close() {
	log.Info("Sudden closed detected, closing ChainScorer")
	s.stop = true
	s.cancel()
	<-s.routineClosed // Wait for services to stop before returning
}

// resolveChain walks the canonical path backward from the finalized tip and
// writes the canonical annotations back into the ledger.
func (s *ChainScorer) resolveChain() error {

	headers, err := NewChainResolver(s.dbClient).Resolve(s.finalizedRoot)
	if err != nil {
		return err
	}
	s.canonical = NewCanonicalIndex(headers)

	roots := s.canonical.Roots()

	// whole-run granularity: wipe stale flags first so a re-run against a
	// different tip cannot leave both forks marked
	if err := s.dbClient.ResetCanonicalFlags(); err != nil {
		return errors.Wrap(err, "unable to reset canonical flags")
	}
	if err := s.dbClient.MarkCanonicalBlocks(roots); err != nil {
		return errors.Wrap(err, "unable to mark canonical blocks")
	}
	if err := s.dbClient.MarkCanonicalAttestations(roots); err != nil {
		return errors.Wrap(err, "unable to mark canonical attestations")
	}

	if orphans, err := s.dbClient.RetrieveOrphanCount(); err != nil {
		log.Warnf("unable to count orphaned blocks: %s", err)
	} else {
		log.Infof("%d orphaned blocks left outside the canonical chain", orphans)
	}
	return nil
}

func (s *ChainScorer) prepareSlotRange() error {

	// votes on the tip slot itself can only be included above the tip, where
	// nothing is canonical yet
	lastComplete := phase0.Slot(0)
	if s.canonical.TipSlot() > 0 {
		lastComplete = s.canonical.TipSlot() - 1
	}
	if s.finalSlot == 0 || s.finalSlot > lastComplete {
		s.finalSlot = lastComplete
	}

	lastScored, found, err := s.dbClient.RetrieveLastScoredSlot()
	if err != nil {
		return errors.Wrap(err, "unable to retrieve the resume point")
	}
	if found && lastScored+1 > s.initSlot {
		s.initSlot = lastScored + 1
		log.Infof("resuming from slot %d, slots below are already scored", s.initSlot)

		// the summary state of the skipped slots has to carry over, or the
		// resumed run would report first/latest epochs of its own range only
		seed, err := s.dbClient.RetrieveSummarySeed(s.initSlot)
		if err != nil {
			return errors.Wrap(err, "unable to rebuild the summary state below the resume point")
		}
		s.summaries.Seed(seed)
		log.Infof("summary state rebuilt for %d validators", len(seed))
	}

	// per-slot records are replaced wholesale, drop anything a previous
	// aborted run may have left at or above the resume point
	if err := s.dbClient.DeleteValidatorPerformanceFrom(s.initSlot); err != nil {
		return errors.Wrap(err, "unable to clean the resume boundary")
	}
	return nil
}

func (s *ChainScorer) runTaskFeeder() {
	defer close(s.slotTaskChan)

	for slot := s.initSlot; slot <= s.finalSlot; slot++ {
		if s.stop {
			return
		}
		if err := s.scorerBook.Acquire(s.ctx, fmt.Sprintf("%s%d", slotProcesserTag, slot)); err != nil {
			// a stalled pipeline must fail the run, not hang it
			if !errors.Is(err, context.Canceled) {
				s.abort(errors.Wrapf(err, "could not hand slot %d to the workers", slot))
			}
			return
		}
		select {
		case s.slotTaskChan <- slot:
		case <-s.ctx.Done():
			return
		}
	}
}

func (s *ChainScorer) runScorerWorker(workerID int) {
	defer s.wgWorkers.Done()
	wlog := log.WithField("scorerWorker", workerID)

	for slot := range s.slotTaskChan {
		performance, err := s.scoreSlot(slot)
		if err != nil {
			s.abort(err)
			return
		}
		wlog.Tracef("slot %d scored, %d seats", slot, len(performance.ValidatorIdxs))
		s.resultCache.Set(uint64(slot), performance)
	}
}

func (s *ChainScorer) scoreSlot(slot phase0.Slot) (spec.SlotPerformance, error) {

	committees, err := s.dbClient.RetrieveCommittees(slot)
	if err != nil {
		return spec.SlotPerformance{}, errors.Wrapf(err, "unable to retrieve committees at slot %d", slot)
	}
	attestations, err := s.dbClient.RetrieveCanonicalAttestations(slot)
	if err != nil {
		return spec.SlotPerformance{}, errors.Wrapf(err, "unable to retrieve attestations voting on slot %d", slot)
	}

	return ScoreSlot(slot, committees, attestations, s.canonical)
}

// runReducer consumes scored slots strictly in slot order: the validator
// summary state carries across slots and cannot be folded out of order.
func (s *ChainScorer) runReducer() error {

	batch := make([]spec.SlotPerformance, 0, spec.SlotsPerEpoch)

	for slot := s.initSlot; slot <= s.finalSlot; slot++ {
		performance, err := s.resultCache.Wait(s.ctx, uint64(slot))
		if err != nil {
			return s.runError(errors.Wrapf(err, "scoring interrupted at slot %d", slot))
		}
		s.resultCache.Delete(uint64(slot))
		s.scorerBook.FreePage(fmt.Sprintf("%s%d", slotProcesserTag, slot))

		s.summaries.ApplySlot(performance)
		if row, done := s.participation.ApplySlot(performance); done {
			s.epochRows = append(s.epochRows, row)
		}
		s.slotsScored.Add(1)

		batch = append(batch, performance)
		if len(batch) >= spec.SlotsPerEpoch {
			if err := s.dbClient.PersistValidatorPerformances(batch); err != nil {
				return s.runError(errors.Wrap(err, "unable to persist performance batch"))
			}
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		if err := s.dbClient.PersistValidatorPerformances(batch); err != nil {
			return s.runError(errors.Wrap(err, "unable to persist performance batch"))
		}
	}
	return s.runError(nil)
}

func (s *ChainScorer) persistFinalTables() error {

	summaries := s.summaries.Summaries()
	if err := s.dbClient.PersistValidatorSummaries(summaries); err != nil {
		return errors.Wrap(err, "unable to persist validator summaries")
	}
	log.Infof("tracked %d validators over slots %d:%d", len(summaries), s.initSlot, s.finalSlot)

	if len(s.epochRows) > 0 {
		if err := s.dbClient.PersistEpochParticipation(s.epochRows); err != nil {
			return errors.Wrap(err, "unable to persist epoch participation")
		}

		rates := make([]float64, len(s.epochRows))
		for i, row := range s.epochRows {
			rates[i] = float64(row.ParticipationRate)
		}
		outages := OutageDistribution(rates, outageParticipationThreshold)
		if len(outages) == 0 {
			log.Infof("no participation outages over %d epochs", len(s.epochRows))
		} else {
			log.Infof("participation outage runs (length: count): %v", outages)
		}
	}
	return nil
}

// abort records the first fatal error and stops the pipeline; no partial,
// inconsistent derived tables are committed past this point.
func (s *ChainScorer) abort(err error) {
	s.errMu.Lock()
	if s.runErr == nil {
		s.runErr = err
	}
	s.errMu.Unlock()
	s.cancel()
}

func (s *ChainScorer) runError(fallback error) error {
	s.errMu.Lock()
	defer s.errMu.Unlock()
	if s.runErr != nil {
		return s.runErr
	}
	return fallback
}
