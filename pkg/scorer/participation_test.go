package scorer

import (
	"testing"

	bitfield "github.com/prysmaticlabs/go-bitfield"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeParticipationRoundTrip(t *testing.T) {
	// sizes around the byte boundaries of the bitlist encoding
	for _, size := range []int{1, 2, 7, 8, 9, 63, 64, 65} {
		bits := bitfield.NewBitlist(uint64(size))
		for i := 0; i < size; i += 2 {
			bits.SetBitAt(uint64(i), true)
		}

		participation, err := DecodeParticipation(bits, size)
		require.NoError(t, err, "committee size %d", size)
		require.Len(t, participation, size)

		for i := 0; i < size; i++ {
			assert.Equal(t, i%2 == 0, participation[i],
				"seat %d of committee size %d", i, size)
		}
	}
}

func TestDecodeParticipationSizeMismatch(t *testing.T) {
	bits := bitfield.NewBitlist(10)

	_, err := DecodeParticipation(bits, 12)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "10 seats")
}

func TestOutageDistribution(t *testing.T) {
	rates := []float64{
		0.95, 0.20, 0.95, // single epoch outage
		0.10, 0.30, 0.95, // two epochs in a row
		0.90,
		0.50, 0.40, 0.60, // trailing run of three
	}

	distribution := OutageDistribution(rates, 2.0/3.0)

	assert.Equal(t, uint64(1), distribution[1])
	assert.Equal(t, uint64(1), distribution[2])
	assert.Equal(t, uint64(1), distribution[3])
	assert.Len(t, distribution, 3)
}

func TestOutageDistributionNoOutages(t *testing.T) {
	rates := []float64{0.9, 0.95, 0.99}
	assert.Empty(t, OutageDistribution(rates, 2.0/3.0))
}
