package logging

import (
	"bytes"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestSetupParsesLevel(t *testing.T) {
	l := Setup("debug", io.Discard)
	require.Equal(t, logrus.DebugLevel, l.GetLevel())

	l = Setup("WARN", io.Discard)
	require.Equal(t, logrus.WarnLevel, l.GetLevel())
}

func TestSetupFallsBackToInfo(t *testing.T) {
	l := Setup("huh", io.Discard)
	require.Equal(t, logrus.InfoLevel, l.GetLevel())

	l = Setup("", io.Discard)
	require.Equal(t, logrus.InfoLevel, l.GetLevel())
}

func TestLevelGating(t *testing.T) {
	var buf bytes.Buffer
	l := Setup("warn", &buf)

	l.Debugf("hidden %d", 1)
	l.Infof("also hidden")
	require.Empty(t, buf.String())

	l.Warnf("visible %s", "warn")
	require.Contains(t, buf.String(), "visible warn")
}
