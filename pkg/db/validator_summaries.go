package db

/*

This file together with the migrations has all the needed methods to interact
with the t_validator_summaries table of the database

*/

import (
	"github.com/ClickHouse/ch-go/proto"

	"github.com/migalabs/scoreth/pkg/spec"
)

var (
	summariesTable       = "t_validator_summaries"
	insertSummariesQuery = `
	INSERT INTO %s (
		f_val_idx,
		f_first_attested_epoch,
		f_latest_attested_epoch)
		VALUES`
)

func summariesInput(summaries []spec.ValidatorSummary) proto.Input {
	// one object per column
	var (
		f_val_idx               proto.ColUInt64
		f_first_attested_epoch  proto.ColInt64
		f_latest_attested_epoch proto.ColInt64
	)

	for _, summary := range summaries {
		f_val_idx.Append(uint64(summary.ValIdx))
		f_first_attested_epoch.Append(summary.FirstAttestedEpoch)
		f_latest_attested_epoch.Append(summary.LatestAttestedEpoch)
	}

	return proto.Input{
		{Name: "f_val_idx", Data: &f_val_idx},
		{Name: "f_first_attested_epoch", Data: &f_first_attested_epoch},
		{Name: "f_latest_attested_epoch", Data: &f_latest_attested_epoch},
	}
}

func (p *DBService) PersistValidatorSummaries(data []spec.ValidatorSummary) error {
	persistObj := PersistableObject[spec.ValidatorSummary]{
		input: summariesInput,
		table: summariesTable,
		query: insertSummariesQuery,
	}

	for _, item := range data {
		persistObj.Append(item)
	}

	err := p.Persist(persistObj.ExportPersist())
	if err != nil {
		log.Errorf("error persisting validator summaries: %s", err.Error())
	}
	return err
}
