package utils

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// App default logging configuration
var (
	DefaultLoglvl              = logrus.InfoLevel
	DefaultLogOutput io.Writer = os.Stdout
	DefaultFormatter           = &logrus.TextFormatter{
		FullTimestamp: true,
	}
)

// Select Log Level from string
func ParseLogLevel(lvl string) logrus.Level {
	switch lvl {
	case "trace":
		return logrus.TraceLevel
	case "debug":
		return logrus.DebugLevel
	case "info":
		return logrus.InfoLevel
	case "warn":
		return logrus.WarnLevel
	case "error":
		return logrus.ErrorLevel
	default:
		return DefaultLoglvl
	}
}

// Select the log output from string
func ParseLogOutput(output string) io.Writer {
	switch output {
	case "terminal":
		return os.Stdout
	default:
		return DefaultLogOutput
	}
}

// Select the log formatter from string
func ParseLogFormatter(format string) logrus.Formatter {
	switch format {
	case "text":
		return DefaultFormatter
	default:
		return DefaultFormatter
	}
}
