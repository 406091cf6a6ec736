package db

/*

This file together with the migrations has all the needed methods to interact
with the t_attestations ledger table.

*/

import (
	"fmt"

	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"
	bitfield "github.com/prysmaticlabs/go-bitfield"

	"github.com/migalabs/scoreth/pkg/spec"
)

var (
	attestationsTable = "t_attestations"

	// inclusion order matters: the scorer keeps the first inclusion per seat
	selectCanonicalAttestationsQuery = `
		SELECT
			f_committee_index,
			f_inclusion_slot,
			f_aggregation_bits,
			f_inclusion_block_root,
			f_beacon_block_root
		FROM %s
		WHERE f_slot = $1 AND f_canonical = true
		ORDER BY f_inclusion_slot`

	resetCanonicalAttestationsQuery = `
		ALTER TABLE %s
		UPDATE f_canonical = false
		WHERE f_canonical = true`

	markCanonicalAttestationsQuery = `
		ALTER TABLE %s
		UPDATE f_canonical = true
		WHERE f_inclusion_block_root IN ($1)`
)

type attestationRow struct {
	CommitteeIndex     uint64 `ch:"f_committee_index"`
	InclusionSlot      uint64 `ch:"f_inclusion_slot"`
	AggregationBits    string `ch:"f_aggregation_bits"`
	InclusionBlockRoot string `ch:"f_inclusion_block_root"`
	BeaconBlockRoot    string `ch:"f_beacon_block_root"`
}

// RetrieveCanonicalAttestations returns every canonical attestation voting on
// the given slot, ordered by increasing inclusion slot.
func (p *DBService) RetrieveCanonicalAttestations(slot phase0.Slot) ([]spec.Attestation, error) {

	var dest []attestationRow

	err := p.highSelect(
		fmt.Sprintf(selectCanonicalAttestationsQuery, attestationsTable),
		&dest,
		uint64(slot))
	if err != nil {
		return nil, errors.Wrapf(err, "error retrieving attestations voting on slot %d", slot)
	}

	attestations := make([]spec.Attestation, 0, len(dest))
	for _, row := range dest {
		inclusionRoot, err := spec.RootFromString(row.InclusionBlockRoot)
		if err != nil {
			return nil, err
		}
		beaconRoot, err := spec.RootFromString(row.BeaconBlockRoot)
		if err != nil {
			return nil, err
		}
		attestations = append(attestations, spec.Attestation{
			Slot:               slot,
			CommitteeIndex:     phase0.CommitteeIndex(row.CommitteeIndex),
			InclusionSlot:      phase0.Slot(row.InclusionSlot),
			AggregationBits:    bitfield.Bitlist(row.AggregationBits),
			InclusionBlockRoot: inclusionRoot,
			BeaconBlockRoot:    beaconRoot,
			Canonical:          true,
		})
	}

	return attestations, nil
}

// MarkCanonicalAttestations flags canonical every attestation included in one
// of the given canonical blocks.
func (p *DBService) MarkCanonicalAttestations(inclusionRoots []phase0.Root) error {

	for chunk := range rootChunks(inclusionRoots, MarkCanonicalChunkSize) {
		err := p.Mutate(MutationObject{
			query: markCanonicalAttestationsQuery,
			table: attestationsTable,
			args:  []any{chunk},
		})
		if err != nil {
			return errors.Wrap(err, "error marking canonical attestations")
		}
	}
	return nil
}
