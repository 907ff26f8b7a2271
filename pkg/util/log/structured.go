// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
)

// FormatWithContextTags formats the string and prepends the context
// tags.
//
// Redaction markers are *not* inserted. The resulting
// string is generally unsafe for reporting.
func FormatWithContextTags(ctx context.Context, format string, args ...interface{}) string {
	var buf strings.Builder
	formatTags(ctx, true /* brackets */, &buf)
	buf.WriteString(renderArgs(false /* redactable */, format, args...))
	return buf.String()
}

// formatTags appends the context tags to buf as "[k1=v1,k2] ". Single-letter
// keys are followed directly by their value ("n1").
func formatTags(ctx context.Context, brackets bool, buf *strings.Builder) bool {
	tags := logtags.FromContext(ctx)
	if tags == nil {
		return false
	}
	if brackets {
		buf.WriteByte('[')
	}
	for i, t := range tags.Get() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(t.Key())
		if v := t.Value(); v != nil {
			if len(t.Key()) > 1 {
				buf.WriteByte('=')
			}
			fmt.Fprint(buf, v)
		}
	}
	if brackets {
		buf.WriteString("] ")
	}
	return true
}

func renderArgs(redactable bool, format string, args ...interface{}) string {
	var msg redact.RedactableString
	if len(args) == 0 {
		msg = redact.Sprint(redact.SafeString(format))
	} else {
		msg = redact.Sprintf(format, args...)
	}
	if redactable {
		return string(msg)
	}
	return msg.StripMarkers()
}

// addStructured renders an entry and hands it to the main logger.
func addStructured(ctx context.Context, sev Severity, format string, args []interface{}) {
	logger := mainLog.getLogger()
	if !logger.Core().Enabled(sev.zapLevel()) {
		return
	}
	var buf strings.Builder
	formatTags(ctx, true /* brackets */, &buf)
	buf.WriteString(renderArgs(mainLog.redactable.Load(), format, args...))
	if ce := logger.Check(sev.zapLevel(), buf.String()); ce != nil {
		ce.Write()
	}
}
