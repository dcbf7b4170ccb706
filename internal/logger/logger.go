package logger

import (
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	log  *logrus.Logger
	once sync.Once
)

// Init configures the process logger. level falls back to info when empty
// or unparseable.
func Init(level string) {
	log = logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
}

func Get() *logrus.Logger {
	once.Do(func() {
		if log == nil {
			Init("")
		}
	})
	return log
}
