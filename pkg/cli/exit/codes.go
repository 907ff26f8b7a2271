// Copyright 2018 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package exit

import "os"

// Code represents an exit code.
type Code struct {
	code int
}

// String implements the fmt.Stringer interface.
func (c Code) String() string {
	switch c.code {
	case 0:
		return "success"
	case 1:
		return "unspecified error"
	case 2:
		return "unspecified go panic"
	case 4:
		return "command-line flag error"
	case 5:
		return "invalid input"
	}
	return "unknown"
}

// WithCode terminates the process with the given exit code.
func WithCode(code Code) {
	os.Exit(code.code)
}

// Success (0) represents a normal process termination.
func Success() Code { return Code{0} }

// UnspecifiedError (1) indicates the process has terminated with an
// error condition. The specific cause of the error can be found in
// the logging output.
func UnspecifiedError() Code { return Code{1} }

// UnspecifiedGoPanic (2) indicates the process has terminated due to
// an uncaught Go panic or some other error in the Go runtime.
//
// The reporting of this exit code likely indicates a programming
// error inside the optimizer.
func UnspecifiedGoPanic() Code { return Code{2} }

// CommandLineFlagError (4) indicates there was an error in the
// command-line parameters.
func CommandLineFlagError() Code { return Code{4} }

// InvalidInput (5) indicates that a plan or settings file could not be
// loaded.
func InvalidInput() Code { return Code{5} }
