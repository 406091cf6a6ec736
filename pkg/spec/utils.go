package spec

import (
	"encoding/hex"
	"strings"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"
)

func EpochAtSlot(slot phase0.Slot) phase0.Epoch {
	return phase0.Epoch(slot / SlotsPerEpoch)
}

// RootFromString parses a 0x-prefixed hex string into a phase0.Root, the
// format roots are stored with in the ledger tables.
func RootFromString(input string) (phase0.Root, error) {
	var root phase0.Root

	raw, err := hex.DecodeString(strings.TrimPrefix(input, "0x"))
	if err != nil {
		return root, errors.Wrapf(err, "could not parse root %s", input)
	}
	if len(raw) != len(root) {
		return root, errors.Errorf("root %s has %d bytes, expected %d", input, len(raw), len(root))
	}
	copy(root[:], raw)
	return root, nil
}

// GraffitiFromBytes truncates or pads the raw ledger graffiti into its fixed
// 32 byte representation.
func GraffitiFromBytes(raw []byte) [32]byte {
	var graffiti [32]byte
	copy(graffiti[:], raw)
	return graffiti
}
