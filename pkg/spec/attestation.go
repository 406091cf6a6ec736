package spec

import (
	"github.com/attestantio/go-eth2-client/spec/phase0"
	bitfield "github.com/prysmaticlabs/go-bitfield"
)

// Attestation is the ledger view of an aggregated attestation: a vote over
// the seats of one committee for the chain head at Slot, included in the
// block at InclusionSlot.
type Attestation struct {
	Slot               phase0.Slot
	CommitteeIndex     phase0.CommitteeIndex
	InclusionSlot      phase0.Slot
	AggregationBits    bitfield.Bitlist
	InclusionBlockRoot phase0.Root
	BeaconBlockRoot    phase0.Root
	Canonical          bool
}

// InclusionDistance follows the consensus-spec convention: an attestation
// voting on slot s can be included at slot s+1 at the earliest, which counts
// as distance 0.
func (a Attestation) InclusionDistance() int64 {
	return int64(a.InclusionSlot) - int64(a.Slot) - 1
}
