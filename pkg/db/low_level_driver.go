package db

import (
	"context"
	"time"

	"github.com/ClickHouse/ch-go"
	"github.com/ClickHouse/ch-go/proto"
)

func (s *DBService) ConnectLowLevel() error {
	ctx := context.Background()

	opts := ParseChUrlIntoOptionsLowLevel(s.connectionUrl)
	lowLevelConn, err := ch.Dial(ctx, opts)
	if err == nil {
		s.lowLevelClient = lowLevelConn
		err = s.makeMigrations()
	}

	return err

}

func ParseChUrlIntoOptionsLowLevel(url string) ch.Options {
	endpoint, database, user, password := parseChUrl(url)

	return ch.Options{
		Address:  endpoint,
		Database: database,
		User:     user,
		Password: password}
}

func (p *DBService) Persist(
	query string,
	table string,
	input proto.Input,
	rows int) error {

	startTime := time.Now()

	p.lowMu.Lock()
	err := p.lowLevelClient.Do(p.ctx, ch.Query{
		Body:  query,
		Input: input,
	})
	p.lowMu.Unlock()
	elapsedTime := time.Since(startTime)

	if err == nil {
		log.Debugf("table %s persisted %d rows in %fs", table, rows, elapsedTime.Seconds())

		p.metricsMu.Lock()
		p.monitorMetrics[table].addNewPersist(rows, elapsedTime)
		p.metricsMu.Unlock()
	}

	return err
}
