package config

import (
	cli "github.com/urfave/cli/v2"
)

type ScorerConfig struct {
	LogLevel       string `json:"log-level"`
	InitSlot       int    `json:"init-slot"`
	FinalSlot      int    `json:"final-slot"`
	FinalizedRoot  string `json:"finalized-root"`
	DBUrl          string `json:"db-url"`
	WorkerNum      int    `json:"workers-num"`
	PrometheusPort int    `json:"prometheus-port"`
}

func NewScorerConfig() *ScorerConfig {
	// Return Default values for the scorer configuration
	return &ScorerConfig{
		LogLevel:       DefaultLogLevel,
		InitSlot:       DefaultInitSlot,
		FinalSlot:      DefaultFinalSlot,
		FinalizedRoot:  DefaultFinalizedRoot,
		DBUrl:          DefaultDBUrl,
		WorkerNum:      DefaultWorkerNum,
		PrometheusPort: DefaultPrometheusPort,
	}
}

func (c *ScorerConfig) Apply(ctx *cli.Context) {
	// apply to the existing Default configuration the set flags
	// log level
	if ctx.IsSet("log-level") {
		c.LogLevel = ctx.String("log-level")
	}
	// init slot
	if ctx.IsSet("init-slot") {
		c.InitSlot = ctx.Int("init-slot")
	}
	// final slot
	if ctx.IsSet("final-slot") {
		c.FinalSlot = ctx.Int("final-slot")
	}
	// finalized tip root
	if ctx.IsSet("finalized-root") {
		c.FinalizedRoot = ctx.String("finalized-root")
	}
	// db url
	if ctx.IsSet("db-url") {
		c.DBUrl = ctx.String("db-url")
	}
	// worker num
	if ctx.IsSet("workers-num") {
		c.WorkerNum = ctx.Int("workers-num")
	}
	// prometheus port
	if ctx.IsSet("prometheus-port") {
		c.PrometheusPort = ctx.Int("prometheus-port")
	}
}
