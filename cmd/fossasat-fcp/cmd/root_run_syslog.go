//go:build !windows
// +build !windows

package cmd

import (
	"log/syslog"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	lsyslog "github.com/sirupsen/logrus/hooks/syslog"

	"github.com/fossasystems/fossasat-fcp/internal/config"
)

func setSyslog() error {
	if !config.C.General.LogToSyslog {
		return nil
	}

	prio := syslog.LOG_USER
	switch log.StandardLogger().Level {
	case log.DebugLevel, log.TraceLevel:
		prio |= syslog.LOG_DEBUG
	case log.InfoLevel:
		prio |= syslog.LOG_INFO
	case log.WarnLevel:
		prio |= syslog.LOG_WARNING
	case log.ErrorLevel:
		prio |= syslog.LOG_ERR
	default:
		prio |= syslog.LOG_CRIT
	}

	hook, err := lsyslog.NewSyslogHook("", "", prio, "fossasat-fcp")
	if err != nil {
		return errors.Wrap(err, "get syslog hook error")
	}

	log.AddHook(hook)
	return nil
}
