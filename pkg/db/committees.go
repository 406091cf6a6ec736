package db

/*

This file together with the migrations has all the needed methods to interact
with the t_beacon_committees ledger table.

*/

import (
	"fmt"

	api "github.com/attestantio/go-eth2-client/api/v1"
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"
)

var (
	committeesTable = "t_beacon_committees"

	selectCommitteesAtSlotQuery = `
		SELECT
			f_committee_index,
			f_validators
		FROM %s
		WHERE f_slot = $1
		ORDER BY f_committee_index`
)

type committeeRow struct {
	CommitteeIndex uint64   `ch:"f_committee_index"`
	Validators     []uint64 `ch:"f_validators"`
}

// RetrieveCommittees returns the committees assigned to vote on the given
// slot, ordered by committee index, seat order preserved.
func (p *DBService) RetrieveCommittees(slot phase0.Slot) ([]*api.BeaconCommittee, error) {

	var dest []committeeRow

	err := p.highSelect(
		fmt.Sprintf(selectCommitteesAtSlotQuery, committeesTable),
		&dest,
		uint64(slot))
	if err != nil {
		return nil, errors.Wrapf(err, "error retrieving committees at slot %d", slot)
	}

	committees := make([]*api.BeaconCommittee, 0, len(dest))
	for _, row := range dest {
		members := make([]phase0.ValidatorIndex, len(row.Validators))
		for i, valIdx := range row.Validators {
			members[i] = phase0.ValidatorIndex(valIdx)
		}
		committees = append(committees, &api.BeaconCommittee{
			Slot:       slot,
			Index:      phase0.CommitteeIndex(row.CommitteeIndex),
			Validators: members,
		})
	}

	return committees, nil
}
