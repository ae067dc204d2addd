package logging

import (
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

func getLogger() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "gxviewer",
		})
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// SetLevel sets the global log level by name ("debug", "info", "warn",
// "error"). Unknown names are ignored.
func SetLevel(name string) {
	l, err := log.ParseLevel(name)
	if err != nil {
		return
	}
	getLogger().SetLevel(l)
}

func Debugf(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func Infof(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func Warnf(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func Errorf(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}
