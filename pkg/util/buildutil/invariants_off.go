// Copyright 2023 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

//go:build !invariants && !race
// +build !invariants,!race

package buildutil

// Invariants is disabled in regular builds. See invariants_on.go.
const Invariants = false
