// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// This is the entry point for the cascades binary.
package main

import "github.com/cockroachdb/cascades/pkg/cli"

func main() {
	cli.Main()
}
