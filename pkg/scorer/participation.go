package scorer

import (
	"github.com/pkg/errors"
	bitfield "github.com/prysmaticlabs/go-bitfield"
)

// DecodeParticipation unpacks the aggregation bits of an attestation into one
// boolean per committee seat, preserving seat order. The bitlist carries a
// trailing length-marker bit on the wire; bitfield strips it, so Len is the
// number of seats the aggregate was built over.
func DecodeParticipation(bits bitfield.Bitlist, committeeSize int) ([]bool, error) {

	if bits.Len() != uint64(committeeSize) {
		return nil, errors.Errorf(
			"aggregation bits cover %d seats, committee has %d",
			bits.Len(), committeeSize)
	}

	participation := make([]bool, committeeSize)
	for i := 0; i < committeeSize; i++ {
		participation[i] = bits.BitAt(uint64(i))
	}

	return participation, nil
}

// OutageDistribution counts the runs of consecutive epochs whose
// participation rate stayed at or below minParticipation, keyed by run
// length.
func OutageDistribution(participationRates []float64, minParticipation float64) map[int]uint64 {

	distribution := make(map[int]uint64)
	runLength := 0

	for _, rate := range participationRates {
		if rate > minParticipation {
			if runLength > 0 {
				distribution[runLength]++
				runLength = 0
			}
			continue
		}
		runLength++
	}
	if runLength > 0 {
		distribution[runLength]++
	}

	return distribution
}
