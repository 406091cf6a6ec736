package scorer

import (
	"testing"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/migalabs/scoreth/pkg/spec"
)

func slotPerformance(slot phase0.Slot, valIdxs []phase0.ValidatorIndex, distances []int64) spec.SlotPerformance {
	performance := spec.SlotPerformance{
		Slot:               slot,
		ValidatorIdxs:      valIdxs,
		InclusionDistances: distances,
		Effectiveness:      make([]float32, len(valIdxs)),
		Correctness:        make([]int8, len(valIdxs)),
	}
	for i, distance := range distances {
		if distance != spec.MissedInclusionDistance {
			performance.Effectiveness[i] = float32(1) / float32(1+distance)
			performance.Correctness[i] = spec.VoteAgreesWithHead
		}
	}
	return performance
}

func TestSummaryAccumulator(t *testing.T) {
	acc := NewSummaryAccumulator()

	// epoch 0: validator 1 attests, validator 2 misses
	acc.ApplySlot(slotPerformance(5, []phase0.ValidatorIndex{1, 2}, []int64{0, -1}))
	// epoch 2: both attest
	acc.ApplySlot(slotPerformance(2*spec.SlotsPerEpoch+3, []phase0.ValidatorIndex{1, 2}, []int64{1, 0}))
	// epoch 3: validator 3 shows up and misses
	acc.ApplySlot(slotPerformance(3*spec.SlotsPerEpoch, []phase0.ValidatorIndex{3}, []int64{-1}))

	summaries := acc.Summaries()
	require.Len(t, summaries, 3)

	// sorted by validator index
	assert.Equal(t, phase0.ValidatorIndex(1), summaries[0].ValIdx)
	assert.Equal(t, int64(0), summaries[0].FirstAttestedEpoch)
	assert.Equal(t, int64(2), summaries[0].LatestAttestedEpoch)

	assert.Equal(t, phase0.ValidatorIndex(2), summaries[1].ValIdx)
	assert.Equal(t, int64(2), summaries[1].FirstAttestedEpoch)
	assert.Equal(t, int64(2), summaries[1].LatestAttestedEpoch)

	// seen but never attested
	assert.Equal(t, phase0.ValidatorIndex(3), summaries[2].ValIdx)
	assert.Equal(t, spec.NeverAttestedEpoch, summaries[2].FirstAttestedEpoch)
	assert.Equal(t, spec.NeverAttestedEpoch, summaries[2].LatestAttestedEpoch)

	for _, summary := range summaries {
		if summary.FirstAttestedEpoch != spec.NeverAttestedEpoch {
			assert.LessOrEqual(t, summary.FirstAttestedEpoch, summary.LatestAttestedEpoch)
		}
	}
}

func TestSummaryFirstEpochWrittenOnce(t *testing.T) {
	acc := NewSummaryAccumulator()

	acc.ApplySlot(slotPerformance(spec.SlotsPerEpoch, []phase0.ValidatorIndex{9}, []int64{2}))
	acc.ApplySlot(slotPerformance(5*spec.SlotsPerEpoch, []phase0.ValidatorIndex{9}, []int64{0}))
	acc.ApplySlot(slotPerformance(9*spec.SlotsPerEpoch, []phase0.ValidatorIndex{9}, []int64{1}))

	summaries := acc.Summaries()
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(1), summaries[0].FirstAttestedEpoch)
	assert.Equal(t, int64(9), summaries[0].LatestAttestedEpoch)
}

func TestSummarySeedAcrossResume(t *testing.T) {
	slots := []phase0.Slot{
		3,
		2 * spec.SlotsPerEpoch,
		5*spec.SlotsPerEpoch + 1,
		9 * spec.SlotsPerEpoch,
	}
	distances := [][]int64{
		{0, -1, 2},
		{-1, 0, -1},
		{1, -1, -1},
		{-1, -1, 0},
	}
	valIdxs := []phase0.ValidatorIndex{1, 2, 3}

	// one run over the whole range
	full := NewSummaryAccumulator()
	for i, slot := range slots {
		full.ApplySlot(slotPerformance(slot, valIdxs, distances[i]))
	}

	// the same range split in two, the second run seeded with the summary
	// state of the first
	first := NewSummaryAccumulator()
	for i, slot := range slots[:2] {
		first.ApplySlot(slotPerformance(slot, valIdxs, distances[i]))
	}
	resumed := NewSummaryAccumulator()
	resumed.Seed(first.Summaries())
	for i, slot := range slots[2:] {
		resumed.ApplySlot(slotPerformance(slot, valIdxs, distances[i+2]))
	}

	assert.Equal(t, full.Summaries(), resumed.Summaries())

	// the write-once first epoch comes from the range before the resume
	summaries := resumed.Summaries()
	require.Len(t, summaries, 3)
	assert.Equal(t, int64(0), summaries[0].FirstAttestedEpoch)
	assert.Equal(t, int64(5), summaries[0].LatestAttestedEpoch)
}

func TestParticipationTrackerCompleteEpoch(t *testing.T) {
	tracker := NewParticipationTracker()

	// epoch 1: two seats per slot, one attested
	for slot := phase0.Slot(spec.SlotsPerEpoch); slot < 2*spec.SlotsPerEpoch; slot++ {
		row, done := tracker.ApplySlot(slotPerformance(slot,
			[]phase0.ValidatorIndex{1, 2}, []int64{0, -1}))

		if slot < 2*spec.SlotsPerEpoch-1 {
			assert.False(t, done, "epoch closed early at slot %d", slot)
			continue
		}

		require.True(t, done)
		assert.Equal(t, phase0.Epoch(1), row.Epoch)
		assert.Equal(t, uint64(2*spec.SlotsPerEpoch), row.TotalSeats)
		assert.Equal(t, uint64(spec.SlotsPerEpoch), row.AttestedSeats)
		assert.Equal(t, float32(0.5), row.ParticipationRate)
	}
}

func TestParticipationTrackerPartialEpoch(t *testing.T) {
	tracker := NewParticipationTracker()

	// only half of epoch 0 is scored, then the range jumps to epoch 1
	for slot := phase0.Slot(spec.SlotsPerEpoch / 2); slot < spec.SlotsPerEpoch; slot++ {
		_, done := tracker.ApplySlot(slotPerformance(slot, []phase0.ValidatorIndex{1}, []int64{0}))
		assert.False(t, done)
	}

	// the fresh epoch starts a new count
	_, done := tracker.ApplySlot(slotPerformance(spec.SlotsPerEpoch, []phase0.ValidatorIndex{1}, []int64{0}))
	assert.False(t, done)
}
