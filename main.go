package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	cli "github.com/urfave/cli/v2"

	"github.com/migalabs/scoreth/cmd"
	"github.com/migalabs/scoreth/pkg/utils"
)

var (
	log = logrus.WithField(
		"cli", utils.CliName,
	)
)

func main() {
	fmt.Println(utils.CliName, utils.Version)

	// Set the general log configurations for the entire tool
	logrus.SetFormatter(utils.ParseLogFormatter("text"))
	logrus.SetOutput(utils.ParseLogOutput("terminal"))
	logrus.SetLevel(utils.ParseLogLevel("info"))

	app := &cli.App{
		Name:      utils.CliName,
		Usage:     "Batch tool that resolves the canonical beacon chain and scores the attestation performance of every validator over a slot range.",
		UsageText: "scoreth [commands] [arguments...]",
		Authors: []*cli.Author{
			{
				Name:  "Cortze",
				Email: "cortze@protonmail.com",
			}, {
				Name:  "Tdahar",
				Email: "tarsuno@gmail.com",
			},
		},
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			cmd.ScoreCommand,
		},
	}

	if err := app.RunContext(context.Background(), os.Args); err != nil {
		log.Errorf("error: %v\n", err)
		os.Exit(1)
	}
}
