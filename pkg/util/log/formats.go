// Copyright 2020 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"github.com/cockroachdb/ttycolor"
	"go.uber.org/zap/zapcore"
)

type logFormatter interface {
	formatterName() string
	// encoder returns the entry encoder. cp is nil when the output does not
	// support colors.
	encoder(cp ttycolor.Profile) zapcore.Encoder
}

var formatters = func() map[string]logFormatter {
	m := make(map[string]logFormatter)
	r := func(f logFormatter) {
		m[f.formatterName()] = f
	}
	r(formatCrdbV1{})
	r(formatJSON{})
	return m
}()

// formatCrdbV1 renders a single human-readable line per entry, prefixed by the
// severity letter and timestamp.
type formatCrdbV1 struct{}

func (formatCrdbV1) formatterName() string { return "crdb-v1" }

func (formatCrdbV1) encoder(cp ttycolor.Profile) zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		LevelKey:         "L",
		TimeKey:          "T",
		MessageKey:       "M",
		EncodeLevel:      encodeSeverityLetter(cp),
		EncodeTime:       zapcore.TimeEncoderOfLayout("060102 15:04:05.999999"),
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
	return zapcore.NewConsoleEncoder(cfg)
}

// formatJSON renders one JSON object per entry. It never uses colors.
type formatJSON struct{}

func (formatJSON) formatterName() string { return "json" }

func (formatJSON) encoder(ttycolor.Profile) zapcore.Encoder {
	cfg := zapcore.EncoderConfig{
		LevelKey:       "severity",
		TimeKey:        "timestamp",
		MessageKey:     "message",
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.RFC3339NanoTimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
	}
	return zapcore.NewJSONEncoder(cfg)
}

func severityLetter(l zapcore.Level) string {
	switch l {
	case zapcore.InfoLevel:
		return "I"
	case zapcore.WarnLevel:
		return "W"
	case zapcore.ErrorLevel:
		return "E"
	}
	return "?"
}

func encodeSeverityLetter(cp ttycolor.Profile) zapcore.LevelEncoder {
	if cp == nil {
		return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(severityLetter(l))
		}
	}
	return func(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		var prefix []byte
		switch l {
		case zapcore.InfoLevel:
			prefix = cp[ttycolor.Cyan]
		case zapcore.WarnLevel:
			prefix = cp[ttycolor.Yellow]
		case zapcore.ErrorLevel:
			prefix = cp[ttycolor.Red]
		}
		enc.AppendString(string(prefix) + severityLetter(l) + string(cp[ttycolor.Reset]))
	}
}
