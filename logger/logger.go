package logger

import (
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output io.Writer
}

// Init configures the standard logrus logger and returns an entry tagged
// with a fresh run id.
func Init(cfg *Config) *logrus.Entry {
	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)

	if cfg.Format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	logrus.SetOutput(out)

	return logrus.WithField("run_id", uuid.NewString())
}

// Progress logs the start and end of each upstream call at debug level.
type Progress struct {
	Log   logrus.FieldLogger
	label string
}

func (p *Progress) Start(label string) {
	p.label = label
	p.Log.Debugf("%s...", label)
}

func (p *Progress) Stop() {
	p.Log.Debugf("%s: done", p.label)
}
