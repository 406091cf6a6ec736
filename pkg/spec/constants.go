package spec

/*
Phase0
*/

const SlotsPerEpoch = 32

// Sentinel values for committee seats never included by any canonical
// attestation.
const (
	MissedInclusionDistance = int64(-1)
	MissedEffectiveness     = float32(0)
	MissedCorrectness       = int8(0)
)

// Correctness of a scored vote against the canonical chain head.
const (
	VoteAgreesWithHead    = int8(1)
	VoteDisagreesWithHead = int8(-1)
)

// Epoch sentinel used in validator summaries until the validator is first
// observed attesting.
const NeverAttestedEpoch = int64(-1)
