package db

/*

This file together with the migrations has all the needed methods to interact
with the t_validator_performance table of the database

*/

import (
	"fmt"

	"github.com/ClickHouse/ch-go/proto"
	"github.com/attestantio/go-eth2-client/spec/phase0"
	"github.com/pkg/errors"

	"github.com/migalabs/scoreth/pkg/spec"
)

var (
	performanceTable       = "t_validator_performance"
	insertPerformanceQuery = `
	INSERT INTO %s (
		f_slot,
		f_epoch,
		f_val_idxs,
		f_inclusion_distances,
		f_effectiveness,
		f_correctness)
		VALUES`

	selectLastScoredSlotQuery = `
		SELECT f_slot
		FROM %s
		ORDER BY f_slot DESC
		LIMIT 1`

	deletePerformanceFromQuery = `
		DELETE FROM %s
		WHERE f_slot >= $1`

	// rebuilds the cross-slot summary state out of the rows a previous run
	// already persisted below the resume point
	selectSummarySeedQuery = `
		SELECT
			f_val_idx,
			coalesce(minIfOrNull(toInt64(f_epoch), f_distance >= 0), -1) AS f_first_attested_epoch,
			coalesce(maxIfOrNull(toInt64(f_epoch), f_distance >= 0), -1) AS f_latest_attested_epoch
		FROM %s
		ARRAY JOIN
			f_val_idxs AS f_val_idx,
			f_inclusion_distances AS f_distance
		WHERE f_slot < $1
		GROUP BY f_val_idx`
)

func performanceInput(performances []spec.SlotPerformance) proto.Input {
	// one object per column
	var (
		f_slot                = new(proto.ColUInt64)
		f_epoch               = new(proto.ColUInt64)
		f_val_idxs            = new(proto.ColUInt64).Array()
		f_inclusion_distances = new(proto.ColInt64).Array()
		f_effectiveness       = new(proto.ColFloat32).Array()
		f_correctness         = new(proto.ColInt8).Array()
	)

	for _, performance := range performances {
		valIdxs := make([]uint64, len(performance.ValidatorIdxs))
		for i, valIdx := range performance.ValidatorIdxs {
			valIdxs[i] = uint64(valIdx)
		}

		f_slot.Append(uint64(performance.Slot))
		f_epoch.Append(uint64(performance.Epoch()))
		f_val_idxs.Append(valIdxs)
		f_inclusion_distances.Append(performance.InclusionDistances)
		f_effectiveness.Append(performance.Effectiveness)
		f_correctness.Append(performance.Correctness)
	}

	return proto.Input{
		{Name: "f_slot", Data: f_slot},
		{Name: "f_epoch", Data: f_epoch},
		{Name: "f_val_idxs", Data: f_val_idxs},
		{Name: "f_inclusion_distances", Data: f_inclusion_distances},
		{Name: "f_effectiveness", Data: f_effectiveness},
		{Name: "f_correctness", Data: f_correctness},
	}
}

func (p *DBService) PersistValidatorPerformances(data []spec.SlotPerformance) error {
	persistObj := PersistableObject[spec.SlotPerformance]{
		input: performanceInput,
		table: performanceTable,
		query: insertPerformanceQuery,
	}

	for _, item := range data {
		persistObj.Append(item)
	}

	err := p.Persist(persistObj.ExportPersist())
	if err != nil {
		log.Errorf("error persisting validator performance: %s", err.Error())
	}
	return err
}

// RetrieveLastScoredSlot is the resume point of an interrupted run; found is
// false when no slot was scored yet.
func (p *DBService) RetrieveLastScoredSlot() (phase0.Slot, bool, error) {

	var dest []struct {
		Slot uint64 `ch:"f_slot"`
	}

	err := p.highSelect(
		fmt.Sprintf(selectLastScoredSlotQuery, performanceTable),
		&dest)

	if len(dest) > 0 {
		return phase0.Slot(dest[0].Slot), true, err
	}
	return 0, false, err
}

// RetrieveSummarySeed aggregates the already-persisted performance rows below
// the given slot into per-validator summary state, so a resumed run carries
// the first/latest attested epochs of the slots it skips.
func (p *DBService) RetrieveSummarySeed(below phase0.Slot) ([]spec.ValidatorSummary, error) {

	var dest []struct {
		ValIdx uint64 `ch:"f_val_idx"`
		First  int64  `ch:"f_first_attested_epoch"`
		Latest int64  `ch:"f_latest_attested_epoch"`
	}

	err := p.highSelect(
		fmt.Sprintf(selectSummarySeedQuery, performanceTable),
		&dest,
		uint64(below))
	if err != nil {
		return nil, errors.Wrapf(err, "error rebuilding summary state below slot %d", below)
	}

	summaries := make([]spec.ValidatorSummary, 0, len(dest))
	for _, row := range dest {
		summaries = append(summaries, spec.ValidatorSummary{
			ValIdx:              phase0.ValidatorIndex(row.ValIdx),
			FirstAttestedEpoch:  row.First,
			LatestAttestedEpoch: row.Latest,
		})
	}
	return summaries, nil
}

// DeleteValidatorPerformanceFrom drops every per-slot record at or above the
// given slot; those slots get rewritten wholesale.
func (p *DBService) DeleteValidatorPerformanceFrom(slot phase0.Slot) error {

	err := p.Mutate(MutationObject{
		query: deletePerformanceFromQuery,
		table: performanceTable,
		args:  []any{uint64(slot)},
	})
	return errors.Wrapf(err, "error deleting performance records from slot %d", slot)
}
