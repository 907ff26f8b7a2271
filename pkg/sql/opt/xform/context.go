// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package xform

import (
	"context"

	"github.com/cockroachdb/cascades/pkg/sql/opt"
)

// SearchContext is passed to every rule invocation. It bundles the column
// factory of the query being planned with the search-wide settings. A
// SearchContext belongs to a single search; independent searches use
// independent contexts and may run concurrently.
type SearchContext struct {
	// Ctx carries log tags and is used for logging only. Rules never block.
	Ctx context.Context

	// Factory mints the ids of any columns a rule synthesizes and resolves
	// existing ids.
	Factory opt.ColumnFactory

	// Settings is never nil.
	Settings *Settings
}

// NewSearchContext returns a context for one search. A nil settings value
// means DefaultSettings.
func NewSearchContext(ctx context.Context, f opt.ColumnFactory, settings *Settings) *SearchContext {
	if settings == nil {
		settings = DefaultSettings()
	}
	return &SearchContext{Ctx: ctx, Factory: f, Settings: settings}
}

// withContext returns a shallow copy of sc with a different Ctx.
func (sc *SearchContext) withContext(ctx context.Context) *SearchContext {
	res := *sc
	res.Ctx = ctx
	return &res
}
