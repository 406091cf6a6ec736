package scorer

import (
	"encoding/binary"
	"testing"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/migalabs/scoreth/pkg/spec"
)

// memoryLedger keeps a whole synthetic ledger in memory, enough to exercise
// the resolver without a database behind it.
type memoryLedger struct {
	blocks map[phase0.Root]*spec.AgnosticBlock
}

func newMemoryLedger() *memoryLedger {
	return &memoryLedger{
		blocks: make(map[phase0.Root]*spec.AgnosticBlock),
	}
}

func (l *memoryLedger) BlockByRoot(root phase0.Root) (*spec.AgnosticBlock, error) {
	block, ok := l.blocks[root]
	if !ok {
		return nil, spec.ErrUnknownBlock
	}
	return block, nil
}

func (l *memoryLedger) add(block *spec.AgnosticBlock) {
	l.blocks[block.Root] = block
}

func testRoot(tag uint64) phase0.Root {
	var root phase0.Root
	binary.BigEndian.PutUint64(root[24:], tag)
	root[0] = 0xff // keep it distinct from the zero root
	return root
}

// buildLinearChain fills the ledger with one block per slot from 0 to
// tipSlot and returns the tip root.
func buildLinearChain(ledger *memoryLedger, tipSlot uint64) phase0.Root {
	var parent phase0.Root
	var tip phase0.Root
	for slot := uint64(0); slot <= tipSlot; slot++ {
		root := testRoot(slot)
		ledger.add(&spec.AgnosticBlock{
			Slot:       phase0.Slot(slot),
			Root:       root,
			ParentRoot: parent,
		})
		parent = root
		tip = root
	}
	return tip
}

func TestResolveLinearChain(t *testing.T) {
	ledger := newMemoryLedger()
	tip := buildLinearChain(ledger, 100)

	headers, err := NewChainResolver(ledger).Resolve(tip)
	require.NoError(t, err)

	require.Len(t, headers, 101)
	assert.Equal(t, phase0.Slot(0), headers[0].Slot)
	assert.Equal(t, phase0.Slot(100), headers[100].Slot)

	// single unbroken path, one block per slot
	for i := 1; i < len(headers); i++ {
		assert.Greater(t, headers[i].Slot, headers[i-1].Slot)
	}
}

func TestResolveIgnoresForkBranch(t *testing.T) {
	ledger := newMemoryLedger()
	tip := buildLinearChain(ledger, 20)

	// abandoned branch forking off slot 10
	orphanRoot := testRoot(1000)
	ledger.add(&spec.AgnosticBlock{
		Slot:       phase0.Slot(11),
		Root:       orphanRoot,
		ParentRoot: testRoot(10),
	})

	headers, err := NewChainResolver(ledger).Resolve(tip)
	require.NoError(t, err)
	require.Len(t, headers, 21)

	for _, header := range headers {
		assert.NotEqual(t, orphanRoot, header.Root)
	}
}

func TestResolveWithEmptySlots(t *testing.T) {
	ledger := newMemoryLedger()

	// slots 3 and 4 are empty: block at slot 5 parents directly on slot 2
	slots := []uint64{0, 1, 2, 5, 6}
	var parent phase0.Root
	var tip phase0.Root
	for _, slot := range slots {
		root := testRoot(slot)
		ledger.add(&spec.AgnosticBlock{
			Slot:       phase0.Slot(slot),
			Root:       root,
			ParentRoot: parent,
		})
		parent = root
		tip = root
	}

	headers, err := NewChainResolver(ledger).Resolve(tip)
	require.NoError(t, err)

	require.Len(t, headers, len(slots))
	for i, slot := range slots {
		assert.Equal(t, phase0.Slot(slot), headers[i].Slot)
	}
}

func TestResolveMissingAncestor(t *testing.T) {
	ledger := newMemoryLedger()
	tip := buildLinearChain(ledger, 30)

	// punch a hole below the tip
	delete(ledger.blocks, testRoot(15))

	_, err := NewChainResolver(ledger).Resolve(tip)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing ancestor")
}

func TestResolveUnknownTip(t *testing.T) {
	ledger := newMemoryLedger()
	buildLinearChain(ledger, 10)

	_, err := NewChainResolver(ledger).Resolve(testRoot(9999))
	require.Error(t, err)
}
