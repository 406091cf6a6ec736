package scorer

import (
	"sort"

	api "github.com/attestantio/go-eth2-client/api/v1"
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"

	"github.com/migalabs/scoreth/pkg/spec"
)

// CanonicalIndex is the sorted (slot, root) view of the resolved canonical
// chain, answering the two queries the scorer needs per slot: the best
// achievable inclusion distance and the chain head a correct vote should
// point at.
type CanonicalIndex struct {
	headers []spec.BlockHeader
}

func NewCanonicalIndex(headers []spec.BlockHeader) *CanonicalIndex {
	sorted := make([]spec.BlockHeader, len(headers))
	copy(sorted, headers)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Slot < sorted[j].Slot
	})
	return &CanonicalIndex{
		headers: sorted,
	}
}

func (c *CanonicalIndex) Len() int {
	return len(c.headers)
}

func (c *CanonicalIndex) TipSlot() phase0.Slot {
	if len(c.headers) == 0 {
		return 0
	}
	return c.headers[len(c.headers)-1].Slot
}

func (c *CanonicalIndex) Roots() []phase0.Root {
	roots := make([]phase0.Root, len(c.headers))
	for i, header := range c.headers {
		roots[i] = header.Root
	}
	return roots
}

// MinInclusionDistance is the distance a vote on the given slot would score
// if it were included in the first canonical block after that slot. Empty
// slots right after the voted one push even a perfect vote above distance 0.
func (c *CanonicalIndex) MinInclusionDistance(slot phase0.Slot) int64 {
	pos := sort.Search(len(c.headers), func(i int) bool {
		return c.headers[i].Slot > slot
	})
	if pos == len(c.headers) {
		// no canonical block after this slot, nothing can be included
		return 0
	}
	return int64(c.headers[pos].Slot) - int64(slot) - 1
}

// HeadAt returns the root of the most recent canonical block at or before
// the given slot.
func (c *CanonicalIndex) HeadAt(slot phase0.Slot) (phase0.Root, bool) {
	pos := sort.Search(len(c.headers), func(i int) bool {
		return c.headers[i].Slot > slot
	})
	if pos == 0 {
		return phase0.Root{}, false
	}
	return c.headers[pos-1].Root, true
}

// seatScore is the write-once accumulator of a single committee seat:
// earliest inclusion wins, later attestations never overwrite it.
type seatScore struct {
	scored      bool
	distance    int64
	correctness int8
}

// ScoreSlot joins the committees assigned to the given slot with the
// canonical attestations that voted on it and produces the per-seat
// performance record. Attestations must arrive ordered by increasing
// inclusion slot.
func ScoreSlot(
	slot phase0.Slot,
	committees []*api.BeaconCommittee,
	attestations []spec.Attestation,
	index *CanonicalIndex) (spec.SlotPerformance, error) {

	if len(committees) == 0 {
		return spec.SlotPerformance{}, errors.Errorf("no committee records for slot %d", slot)
	}

	sort.Slice(committees, func(i, j int) bool {
		return committees[i].Index < committees[j].Index
	})

	totalSeats := 0
	seatOffsets := make(map[phase0.CommitteeIndex]int, len(committees))
	committeeSizes := make(map[phase0.CommitteeIndex]int, len(committees))
	for _, committee := range committees {
		seatOffsets[committee.Index] = totalSeats
		committeeSizes[committee.Index] = len(committee.Validators)
		totalSeats += len(committee.Validators)
	}

	minDistance := index.MinInclusionDistance(slot)
	head, hasHead := index.HeadAt(slot)

	seats := make([]seatScore, totalSeats)

	for _, att := range attestations {
		offset, ok := seatOffsets[att.CommitteeIndex]
		if !ok {
			log.Errorf("attestation at slot %d references committee %d, no such committee record, skipping",
				slot, att.CommitteeIndex)
			continue
		}

		participation, err := DecodeParticipation(att.AggregationBits, committeeSizes[att.CommitteeIndex])
		if err != nil {
			return spec.SlotPerformance{}, errors.Wrapf(err,
				"broken aggregation bits at slot %d committee %d", slot, att.CommitteeIndex)
		}

		correctness := spec.VoteDisagreesWithHead
		if hasHead && att.BeaconBlockRoot == head {
			correctness = spec.VoteAgreesWithHead
		}

		for seat, attested := range participation {
			if !attested {
				continue
			}
			score := &seats[offset+seat]
			if score.scored {
				continue // earliest inclusion already recorded
			}
			score.scored = true
			score.distance = att.InclusionDistance()
			score.correctness = correctness
		}
	}

	performance := spec.SlotPerformance{
		Slot:               slot,
		ValidatorIdxs:      make([]phase0.ValidatorIndex, 0, totalSeats),
		InclusionDistances: make([]int64, 0, totalSeats),
		Effectiveness:      make([]float32, 0, totalSeats),
		Correctness:        make([]int8, 0, totalSeats),
	}

	for _, committee := range committees {
		offset := seatOffsets[committee.Index]
		for seat, valIdx := range committee.Validators {
			score := seats[offset+seat]

			performance.ValidatorIdxs = append(performance.ValidatorIdxs, valIdx)
			if !score.scored {
				performance.InclusionDistances = append(performance.InclusionDistances, spec.MissedInclusionDistance)
				performance.Effectiveness = append(performance.Effectiveness, spec.MissedEffectiveness)
				performance.Correctness = append(performance.Correctness, spec.MissedCorrectness)
				continue
			}

			performance.InclusionDistances = append(performance.InclusionDistances, score.distance)
			performance.Effectiveness = append(performance.Effectiveness,
				float32(1)/float32(1+score.distance-minDistance))
			performance.Correctness = append(performance.Correctness, score.correctness)
		}
	}

	return performance, nil
}
