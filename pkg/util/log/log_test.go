// Copyright 2015 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"bytes"
	"context"
	"os"
	"testing"
	"time"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
	"github.com/stretchr/testify/require"
)

func captureLogs(t *testing.T, cfg Config) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, ApplyConfig(&buf, cfg))
	t.Cleanup(func() {
		require.NoError(t, ApplyConfig(os.Stderr, DefaultConfig()))
	})
	return &buf
}

func TestContextTags(t *testing.T) {
	buf := captureLogs(t, Config{Format: "crdb-v1", MinSeverity: SeverityInfo})

	ctx := logtags.AddTag(context.Background(), "n", 1)
	ctx = logtags.AddTag(ctx, "rule", "JoinAssociativity")
	Infof(ctx, "produced %d candidates", 1)
	Flush()

	out := buf.String()
	require.Contains(t, out, "I [n1,rule=JoinAssociativity] produced 1 candidates")
}

func TestMinSeverity(t *testing.T) {
	buf := captureLogs(t, DefaultConfig())

	Infof(context.Background(), "hidden")
	Warningf(context.Background(), "shown")
	Flush()

	out := buf.String()
	require.NotContains(t, out, "hidden")
	require.Contains(t, out, "shown")
}

func TestVerbosity(t *testing.T) {
	buf := captureLogs(t, Config{Format: "json", MinSeverity: SeverityInfo})
	ctx := context.Background()

	require.False(t, V(2))
	VEventf(ctx, 2, "suppressed")

	restore := SetVerbosity(2)
	require.True(t, V(2))
	require.True(t, ExpensiveLogEnabled(ctx, 1))
	VEventf(ctx, 2, "emitted")
	restore()
	require.False(t, V(2))
	Flush()

	out := buf.String()
	require.NotContains(t, out, "suppressed")
	require.Contains(t, out, `"message":"emitted"`)
	require.Contains(t, out, `"severity":"INFO"`)
}

func TestRedactableMessages(t *testing.T) {
	buf := captureLogs(t, Config{Format: "crdb-v1", MinSeverity: SeverityInfo, Redactable: true})

	Infof(context.Background(), "safe %s unsafe %s", redact.Safe("visible"), "secret")
	Flush()
	require.Contains(t, buf.String(), "safe visible unsafe ‹secret›")
}

func TestFormatWithContextTags(t *testing.T) {
	ctx := logtags.AddTag(context.Background(), "rule", "JoinCommutativity")
	require.Equal(t, "[rule=JoinCommutativity] hello world", FormatWithContextTags(ctx, "hello %s", "world"))
}

func TestApplyConfigUnknownFormat(t *testing.T) {
	require.Error(t, ApplyConfig(os.Stderr, Config{Format: "xml"}))
}

func TestEveryN(t *testing.T) {
	defer SetVerbosity(0)()

	start := time.Now()
	e := Every(time.Minute)
	require.True(t, e.shouldLog(start))
	require.False(t, e.shouldLog(start.Add(time.Second)))
	require.True(t, e.shouldLog(start.Add(time.Minute)))
	require.False(t, e.shouldLog(start.Add(time.Minute+time.Second)))

	// High verbosity always logs.
	SetVerbosity(2)
	require.True(t, e.shouldLog(start.Add(time.Minute+time.Second)))
}
