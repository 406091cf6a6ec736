package db

/*

This file together with the migrations has all the needed methods to interact
with the t_blocks ledger table.

*/

import (
	"fmt"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"

	"github.com/migalabs/scoreth/pkg/spec"
)

var (
	blocksTable = "t_blocks"

	selectBlockByRootQuery = `
		SELECT
			f_slot,
			f_root,
			f_parent_root,
			f_proposer_index,
			f_graffiti,
			f_canonical
		FROM %s
		WHERE f_root = $1
		LIMIT 1`

	resetCanonicalBlocksQuery = `
		ALTER TABLE %s
		UPDATE f_canonical = false
		WHERE f_canonical = true`

	markCanonicalBlocksQuery = `
		ALTER TABLE %s
		UPDATE f_canonical = true
		WHERE f_root IN ($1)`

	countOrphanBlocksQuery = `
		SELECT count() AS f_count
		FROM %s
		WHERE f_canonical = false`
)

type blockRow struct {
	Slot          uint64 `ch:"f_slot"`
	Root          string `ch:"f_root"`
	ParentRoot    string `ch:"f_parent_root"`
	ProposerIndex uint64 `ch:"f_proposer_index"`
	Graffiti      string `ch:"f_graffiti"`
	Canonical     bool   `ch:"f_canonical"`
}

// BlockByRoot is the ledger lookup the chain resolver walks over.
func (p *DBService) BlockByRoot(root phase0.Root) (*spec.AgnosticBlock, error) {

	var dest []blockRow

	err := p.highSelect(
		fmt.Sprintf(selectBlockByRootQuery, blocksTable),
		&dest,
		root.String())
	if err != nil {
		return nil, errors.Wrapf(err, "error retrieving block %s", root.String())
	}
	if len(dest) == 0 {
		return nil, spec.ErrUnknownBlock
	}

	return parseBlockRow(dest[0])
}

func parseBlockRow(row blockRow) (*spec.AgnosticBlock, error) {
	blockRoot, err := spec.RootFromString(row.Root)
	if err != nil {
		return nil, err
	}
	parentRoot, err := spec.RootFromString(row.ParentRoot)
	if err != nil {
		return nil, err
	}

	return &spec.AgnosticBlock{
		Slot:          phase0.Slot(row.Slot),
		Root:          blockRoot,
		ParentRoot:    parentRoot,
		ProposerIndex: phase0.ValidatorIndex(row.ProposerIndex),
		Graffiti:      spec.GraffitiFromBytes([]byte(row.Graffiti)),
		Canonical:     row.Canonical,
	}, nil
}

func (p *DBService) ResetCanonicalFlags() error {

	err := p.Mutate(MutationObject{
		query: resetCanonicalBlocksQuery,
		table: blocksTable,
	})
	if err != nil {
		return errors.Wrap(err, "error resetting block canonical flags")
	}

	err = p.Mutate(MutationObject{
		query: resetCanonicalAttestationsQuery,
		table: attestationsTable,
	})
	return errors.Wrap(err, "error resetting attestation canonical flags")
}

// MarkCanonicalBlocks flags the given roots canonical, in chunks to keep the
// mutations bounded.
func (p *DBService) MarkCanonicalBlocks(roots []phase0.Root) error {

	for chunk := range rootChunks(roots, MarkCanonicalChunkSize) {
		err := p.Mutate(MutationObject{
			query: markCanonicalBlocksQuery,
			table: blocksTable,
			args:  []any{chunk},
		})
		if err != nil {
			return errors.Wrap(err, "error marking canonical blocks")
		}
	}
	log.Infof("%d blocks flagged canonical", len(roots))
	return nil
}

func (p *DBService) RetrieveOrphanCount() (uint64, error) {

	var dest []struct {
		Count uint64 `ch:"f_count"`
	}

	err := p.highSelect(
		fmt.Sprintf(countOrphanBlocksQuery, blocksTable),
		&dest)

	if len(dest) > 0 {
		return dest[0].Count, err
	}
	return 0, err
}

// rootChunks yields the roots as string slices of at most chunkSize items.
func rootChunks(roots []phase0.Root, chunkSize int) chan []string {
	out := make(chan []string)
	go func() {
		defer close(out)
		chunk := make([]string, 0, chunkSize)
		for _, root := range roots {
			chunk = append(chunk, root.String())
			if len(chunk) == chunkSize {
				out <- chunk
				chunk = make([]string, 0, chunkSize)
			}
		}
		if len(chunk) > 0 {
			out <- chunk
		}
	}()
	return out
}
