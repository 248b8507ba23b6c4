// Package logging configures the process-wide logrus logger: level parsing
// with an info fallback, and a configured *logrus.Logger handed to
// components that want one injected rather than reaching for the global.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Setup parses level with logrus.ParseLevel (anything unparsable falls back
// to info), applies it to the standard logrus logger, and returns that
// logger. A nil out leaves logrus's default output (stderr) in place.
func Setup(level string, out io.Writer) *logrus.Logger {
	logger := logrus.StandardLogger()

	lv, err := logrus.ParseLevel(level)
	if err != nil {
		lv = logrus.InfoLevel
	}
	logger.SetLevel(lv)

	if out != nil {
		logger.SetOutput(out)
	}
	return logger
}
