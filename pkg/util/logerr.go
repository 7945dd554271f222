package util

import (
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// WarnFirstLogger logs the first threshold messages of every window as warnings and
// the rest as errors.
type WarnFirstLogger struct {
	logger      logrus.FieldLogger
	warnLimiter *rate.Limiter
}

func NewWarnFirstLogger(threshold int, window time.Duration, logger logrus.FieldLogger) *WarnFirstLogger {
	return &WarnFirstLogger{
		logger:      logger,
		warnLimiter: rate.NewLimiter(rate.Every(window), threshold),
	}
}

func (w *WarnFirstLogger) WarnOrError(err error, msg string, args ...interface{}) {
	log := w.logger
	if err != nil {
		log = log.WithError(err)
	}

	if w.warnLimiter.Allow() {
		log.Warnf(msg, args...)
	} else {
		log.Errorf(msg, args...)
	}
}
