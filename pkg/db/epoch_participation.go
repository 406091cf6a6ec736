package db

/*

This file together with the migrations has all the needed methods to interact
with the t_epoch_participation table of the database

*/

import (
	"github.com/ClickHouse/ch-go/proto"

	"github.com/migalabs/scoreth/pkg/spec"
)

var (
	participationTable       = "t_epoch_participation"
	insertParticipationQuery = `
	INSERT INTO %s (
		f_epoch,
		f_total_seats,
		f_attested_seats,
		f_participation_rate)
		VALUES`
)

func participationInput(rows []spec.EpochParticipation) proto.Input {
	// one object per column
	var (
		f_epoch              proto.ColUInt64
		f_total_seats        proto.ColUInt64
		f_attested_seats     proto.ColUInt64
		f_participation_rate proto.ColFloat32
	)

	for _, row := range rows {
		f_epoch.Append(uint64(row.Epoch))
		f_total_seats.Append(row.TotalSeats)
		f_attested_seats.Append(row.AttestedSeats)
		f_participation_rate.Append(row.ParticipationRate)
	}

	return proto.Input{
		{Name: "f_epoch", Data: &f_epoch},
		{Name: "f_total_seats", Data: &f_total_seats},
		{Name: "f_attested_seats", Data: &f_attested_seats},
		{Name: "f_participation_rate", Data: &f_participation_rate},
	}
}

func (p *DBService) PersistEpochParticipation(data []spec.EpochParticipation) error {
	persistObj := PersistableObject[spec.EpochParticipation]{
		input: participationInput,
		table: participationTable,
		query: insertParticipationQuery,
	}

	for _, item := range data {
		persistObj.Append(item)
	}

	err := p.Persist(persistObj.ExportPersist())
	if err != nil {
		log.Errorf("error persisting epoch participation: %s", err.Error())
	}
	return err
}
