//go:build linux

package cmd

import (
	perf "github.com/hodgesds/perf-utils"
	"github.com/sirupsen/logrus"
)

func measureInstructions(f func() error) (err error) {
	var runErr error
	pv, err := perf.CPUInstructions(func() error {
		runErr = f()
		return runErr
	})
	if runErr != nil {
		return runErr
	}
	if err != nil {
		// Counters are unavailable without perf_event access, the run itself succeeded
		logrus.Warnf("perf counters unavailable: %v", err)
		return nil
	}
	logrus.WithFields(logrus.Fields{
		"instructions": pv.Value,
		"timeRunning":  pv.TimeRunning,
	}).Info("assembly CPU instructions")
	return
}
