// Package logx builds the console's logger.
package logx

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"catalog-admin/internal/config"
)

const FileName = "catadmin.log"

type Options struct {
	// Verbose forces debug level on stderr.
	Verbose bool
	// Stderr is where stderr output goes; os.Stderr when nil.
	Stderr io.Writer
}

// New returns a logger per cfg and a closer for its file output. Logs never
// share stdout with command output.
func New(cfg config.Config, opts Options) (*logrus.Logger, io.Closer, error) {
	l := logrus.New()
	level, err := logrus.ParseLevel(strings.TrimSpace(cfg.LogLevel))
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	output := cfg.LogOutput
	if opts.Verbose {
		output = "stderr"
		l.SetLevel(logrus.DebugLevel)
	}

	switch output {
	case "none":
		l.SetOutput(io.Discard)
		return l, nopCloser{}, nil
	case "stderr":
		l.SetOutput(stderr)
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05.000",
		})
		return l, nopCloser{}, nil
	}

	if err := os.MkdirAll(cfg.LogDir(), 0o755); err != nil {
		return nil, nil, err
	}
	fw := &lumberjack.Logger{
		Filename:   filepath.Join(cfg.LogDir(), FileName),
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
		Compress:   true,
	}
	l.SetOutput(fw)
	l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	return l, fw, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
