package spec

import (
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"
)

// ErrUnknownBlock is returned by ledger lookups when no block with the
// requested root exists.
var ErrUnknownBlock = errors.New("unknown block root")

// AgnosticBlock is the ledger view of a beacon block: enough to rebuild the
// canonical chain and attribute proposals, nothing more.
type AgnosticBlock struct {
	Slot          phase0.Slot
	Root          phase0.Root
	ParentRoot    phase0.Root
	ProposerIndex phase0.ValidatorIndex
	Graffiti      [32]byte
	Canonical     bool
}

// BlockHeader is the light (slot, root) pair the canonical index is built
// from.
type BlockHeader struct {
	Slot phase0.Slot
	Root phase0.Root
}

func (b AgnosticBlock) Header() BlockHeader {
	return BlockHeader{
		Slot: b.Slot,
		Root: b.Root,
	}
}
