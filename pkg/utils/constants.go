package utils

import "time"

const (
	Version        = "v0.1.0"
	CliName        = "Scoreth"
	WaitMaxTimeout = 5 * time.Minute
)
