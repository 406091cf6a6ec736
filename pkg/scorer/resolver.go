package scorer

import (
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"

	"github.com/migalabs/scoreth/pkg/spec"
)

// BlockReader is the ledger lookup the resolver walks over. The full ledger
// may not fit in memory, so blocks are fetched one root at a time.
type BlockReader interface {
	BlockByRoot(root phase0.Root) (*spec.AgnosticBlock, error)
}

// ChainResolver walks parent links backward from a finalized tip down to
// genesis, rebuilding the single canonical path.
//
// The supplied tip being genuinely finalized is a precondition: the walk
// cannot detect a bogus tip and would silently resolve the wrong chain.
type ChainResolver struct {
	ledger BlockReader
}

func NewChainResolver(ledger BlockReader) *ChainResolver {
	return &ChainResolver{
		ledger: ledger,
	}
}

// Resolve returns the canonical chain headers ordered from genesis to the
// given tip. A missing ancestor means the ledger forks below the finalized
// tip and aborts the whole run.
func (r *ChainResolver) Resolve(tip phase0.Root) ([]spec.BlockHeader, error) {

	var zeroRoot phase0.Root
	headers := make([]spec.BlockHeader, 0)

	current := tip
	lastSlot := phase0.Slot(0)

	for {
		block, err := r.ledger.BlockByRoot(current)
		if err != nil {
			if errors.Is(err, spec.ErrUnknownBlock) && len(headers) > 0 {
				return nil, errors.Errorf(
					"missing ancestor %s below slot %d, chain forks under the finalized tip",
					current.String(), lastSlot)
			}
			return nil, errors.Wrapf(err, "could not look up block %s", current.String())
		}

		if len(headers) > 0 && block.Slot >= lastSlot {
			return nil, errors.Errorf(
				"parent %s at slot %d does not precede its child at slot %d",
				block.Root.String(), block.Slot, lastSlot)
		}

		headers = append(headers, block.Header())
		lastSlot = block.Slot

		if block.Slot == 0 || block.ParentRoot == zeroRoot {
			// reached genesis
			break
		}
		current = block.ParentRoot
	}

	// reverse into genesis -> tip order
	for i, j := 0, len(headers)-1; i < j; i, j = i+1, j-1 {
		headers[i], headers[j] = headers[j], headers[i]
	}

	log.Infof("canonical chain resolved: %d blocks from slot %d to slot %d",
		len(headers), headers[0].Slot, headers[len(headers)-1].Slot)

	return headers, nil
}
