package db

import (
	"context"

	"fmt"
	"net"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/migalabs/scoreth/pkg/utils"
)

// Connect to the ClickHouse database and get the multithread-proof
// connection from the given url-composed credentials
func (s *DBService) ConnectHighLevel() error {
	opts := ParseChUrlIntoOptionsHighLevel(s.connectionUrl)
	conn, err := clickhouse.Open(&opts)
	if err != nil {
		return err
	}
	s.highLevelClient = conn
	return conn.Ping(context.Background())

}

func ParseChUrlIntoOptionsHighLevel(url string) clickhouse.Options {
	endpoint, database, user, password := parseChUrl(url)

	var dialCount int
	return clickhouse.Options{
		Addr: []string{endpoint},
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
		DialContext: func(ctx context.Context, addr string) (net.Conn, error) {
			dialCount++
			var d net.Dialer
			return d.DialContext(ctx, "tcp", addr)
		},
		Debug: false,
		Debugf: func(format string, v ...any) {
			fmt.Printf(format, v)
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		DialTimeout:          time.Second * 30,
		MaxOpenConns:         5,
		MaxIdleConns:         5,
		ConnMaxLifetime:      time.Duration(10) * time.Minute,
		ConnOpenStrategy:     clickhouse.ConnOpenInOrder,
		BlockBufferSize:      10,
		MaxCompressionBuffer: 10240,
		ClientInfo: clickhouse.ClientInfo{
			Products: []struct {
				Name    string
				Version string
			}{
				{Name: utils.CliName, Version: utils.Version},
			},
		}}
}

func (p *DBService) highSelect(query string, dest any, args ...any) error {

	p.highMu.Lock()
	err := p.highLevelClient.Select(p.ctx, dest, query, args...)
	p.highMu.Unlock()

	return err
}

// Mutate runs a state-changing statement (canonical-flag updates, resume
// boundary deletes) through the high level client.
func (p *DBService) Mutate(obj MutationObject) error {

	var err error
	startTime := time.Now()

	p.highMu.Lock()
	err = p.highLevelClient.Exec(p.ctx, obj.Query(), obj.Args()...)
	p.highMu.Unlock()

	if err == nil {
		log.Debugf("mutation on %s finished in %f seconds", obj.Table(), time.Since(startTime).Seconds())
	}

	return err
}
