package spec

import (
	"github.com/attestantio/go-eth2-client/spec/phase0"
)

// SlotPerformance gathers the scoring of every committee seat at one slot.
// The four sequences are co-indexed; seat order is the concatenation of the
// slot committees in committee-index order.
type SlotPerformance struct {
	Slot               phase0.Slot
	ValidatorIdxs      []phase0.ValidatorIndex
	InclusionDistances []int64
	Effectiveness      []float32
	Correctness        []int8
}

func (p SlotPerformance) Epoch() phase0.Epoch {
	return EpochAtSlot(p.Slot)
}

// ValidatorSummary tracks the observed attestation activity range of a single
// validator across the scored slot range.
type ValidatorSummary struct {
	ValIdx              phase0.ValidatorIndex
	FirstAttestedEpoch  int64
	LatestAttestedEpoch int64
}

// EpochParticipation summarizes how many of the epoch committee seats were
// covered by canonical attestations.
type EpochParticipation struct {
	Epoch             phase0.Epoch
	TotalSeats        uint64
	AttestedSeats     uint64
	ParticipationRate float32
}
