package p7

import (
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// envBool parses a debug toggle: a small set of case-insensitive truthy
// spellings, everything else (including unset) is false.
func envBool(name string) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

var (
	debugOnce          sync.Once
	recognizerLog      = logrus.New()
	samplerDebugOn     bool
	constrainedDebugOn bool
)

func initDebug() {
	debugOnce.Do(func() {
		constrainedDebugOn = envBool("P7_CONSTRAINED_DEBUG")
		samplerDebugOn = envBool("P7_SAMPLER_DEBUG")
		recognizerLog.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		if constrainedDebugOn || samplerDebugOn {
			recognizerLog.SetLevel(logrus.DebugLevel)
		} else {
			recognizerLog.SetLevel(logrus.WarnLevel)
		}
	})
}

// dbgRecognizer traces recognizer/frontier state transitions, gated by
// P7_CONSTRAINED_DEBUG.
func dbgRecognizer(sessionID string, fields logrus.Fields, format string, args ...any) {
	initDebug()
	if !constrainedDebugOn {
		return
	}
	f := logrus.Fields{"session": sessionID}
	for k, v := range fields {
		f[k] = v
	}
	recognizerLog.WithFields(f).Debugf(format, args...)
}

// dbgSampler traces sampler decisions, gated by P7_SAMPLER_DEBUG.
func dbgSampler(sessionID string, fields logrus.Fields, format string, args ...any) {
	initDebug()
	if !samplerDebugOn {
		return
	}
	f := logrus.Fields{"session": sessionID}
	for k, v := range fields {
		f[k] = v
	}
	recognizerLog.WithFields(f).Debugf(format, args...)
}
