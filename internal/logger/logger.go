package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Service - значение поля service во всех записях.
const Service = "freelance-escrow"

var Log = newLogger(os.Stderr, logrus.InfoLevel, false)

// Init настраивает глобальный логгер: JSON в production, text в development.
func Init(level, env string) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	Log = newLogger(os.Stderr, lvl, env == "development")
}

func newLogger(out io.Writer, level logrus.Level, text bool) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(level)
	if text {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		l.SetFormatter(&logrus.JSONFormatter{})
	}
	l.AddHook(serviceHook{})
	return l
}

// serviceHook добавляет имя сервиса в каждую запись.
type serviceHook struct{}

func (serviceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (serviceHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["service"]; !ok {
		entry.Data["service"] = Service
	}
	return nil
}

// Op возвращает запись с полем операции движка.
func Op(name string) *logrus.Entry {
	return Log.WithField("op", name)
}
