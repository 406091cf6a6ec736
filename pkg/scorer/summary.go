package scorer

import (
	"sort"

	"github.com/attestantio/go-eth2-client/spec/phase0"

	"github.com/migalabs/scoreth/pkg/spec"
)

// SummaryAccumulator threads the cross-slot validator state through the
// scoring loop. Slots must be applied in increasing order: first attested
// epoch is written once, latest attested epoch only moves forward.
type SummaryAccumulator struct {
	summaries map[phase0.ValidatorIndex]*spec.ValidatorSummary
}

func NewSummaryAccumulator() *SummaryAccumulator {
	return &SummaryAccumulator{
		summaries: make(map[phase0.ValidatorIndex]*spec.ValidatorSummary),
	}
}

// Seed preloads the accumulator with the summary state of slots scored by a
// previous run, so the write-once first attested epoch survives a resume.
func (a *SummaryAccumulator) Seed(prior []spec.ValidatorSummary) {
	for _, summary := range prior {
		seeded := summary
		a.summaries[seeded.ValIdx] = &seeded
	}
}

func (a *SummaryAccumulator) ApplySlot(performance spec.SlotPerformance) {

	epoch := int64(performance.Epoch())

	for i, valIdx := range performance.ValidatorIdxs {
		summary, ok := a.summaries[valIdx]
		if !ok {
			summary = &spec.ValidatorSummary{
				ValIdx:              valIdx,
				FirstAttestedEpoch:  spec.NeverAttestedEpoch,
				LatestAttestedEpoch: spec.NeverAttestedEpoch,
			}
			a.summaries[valIdx] = summary
		}

		if performance.InclusionDistances[i] == spec.MissedInclusionDistance {
			continue
		}

		summary.LatestAttestedEpoch = epoch
		if summary.FirstAttestedEpoch == spec.NeverAttestedEpoch {
			summary.FirstAttestedEpoch = epoch
		}
	}
}

func (a *SummaryAccumulator) Summaries() []spec.ValidatorSummary {
	result := make([]spec.ValidatorSummary, 0, len(a.summaries))
	for _, summary := range a.summaries {
		result = append(result, *summary)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].ValIdx < result[j].ValIdx
	})
	return result
}

// ParticipationTracker folds per-slot performance records into per-epoch
// participation rows. Only complete epochs are emitted.
type ParticipationTracker struct {
	epoch         phase0.Epoch
	slotsSeen     uint64
	totalSeats    uint64
	attestedSeats uint64
	started       bool
}

func NewParticipationTracker() *ParticipationTracker {
	return &ParticipationTracker{}
}

// ApplySlot adds one slot to the tracker and returns the finished epoch row
// when the slot closes its epoch.
func (t *ParticipationTracker) ApplySlot(performance spec.SlotPerformance) (spec.EpochParticipation, bool) {

	epoch := performance.Epoch()
	if !t.started || epoch != t.epoch {
		t.epoch = epoch
		t.slotsSeen = 0
		t.totalSeats = 0
		t.attestedSeats = 0
		t.started = true
	}

	t.slotsSeen++
	for _, distance := range performance.InclusionDistances {
		t.totalSeats++
		if distance != spec.MissedInclusionDistance {
			t.attestedSeats++
		}
	}

	if t.slotsSeen < spec.SlotsPerEpoch {
		return spec.EpochParticipation{}, false
	}

	row := spec.EpochParticipation{
		Epoch:         t.epoch,
		TotalSeats:    t.totalSeats,
		AttestedSeats: t.attestedSeats,
	}
	if t.totalSeats > 0 {
		row.ParticipationRate = float32(t.attestedSeats) / float32(t.totalSeats)
	}
	t.started = false
	return row, true
}
