// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import "go.uber.org/zap/zapcore"

// Severity is the severity of a log entry.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// Level specifies a level of verbosity for V logs.
type Level int32

func (s Severity) zapLevel() zapcore.Level {
	switch s {
	case SeverityWarning:
		return zapcore.WarnLevel
	case SeverityError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// SeverityByName parses INFO, WARNING or ERROR.
func SeverityByName(name string) (Severity, bool) {
	switch name {
	case "INFO":
		return SeverityInfo, true
	case "WARNING":
		return SeverityWarning, true
	case "ERROR":
		return SeverityError, true
	}
	return 0, false
}

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	}
	return "UNKNOWN"
}
