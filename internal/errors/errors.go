// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package errors is the CLI-facing error taxonomy: a small set of
// user-meaningful error classes, each carrying a title, a detail, and a
// remediation hint, printed consistently and mapped to the tool's exit
// codes.
package errors

import (
	"encoding/json"
	"fmt"
	"os"
)

// Class distinguishes the CLI-level error categories, each bound to one of
// the tool's documented exit codes.
type Class int

const (
	// ClassInput: malformed arguments or flags. Exit code 2.
	ClassInput Class = iota
	// ClassVCS: the VCS collaborator could not produce changes for the
	// given commit. Exit code 3.
	ClassVCS
	// ClassPartial: the run completed but one or more files failed.
	// Exit code 4.
	ClassPartial
	// ClassInternal: an invariant was violated or an unexpected failure
	// occurred. Exit code 5.
	ClassInternal
)

// ExitCode maps a Class to the CLI's documented exit status.
func (c Class) ExitCode() int {
	switch c {
	case ClassInput:
		return 2
	case ClassVCS:
		return 3
	case ClassPartial:
		return 4
	case ClassInternal:
		return 5
	default:
		return 1
	}
}

// CLIError is a user-facing error: what went wrong, why, and what to do
// about it.
type CLIError struct {
	Class  Class
	Title  string
	Detail string
	Hint   string
	Cause  error
}

func (e *CLIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Title, e.Detail)
	}
	return e.Title
}

func (e *CLIError) Unwrap() error { return e.Cause }

// NewInputError reports a usage mistake: bad flags, missing arguments,
// an unresolvable path. Never carries a cause — the user typed it wrong,
// nothing beneath it failed.
func NewInputError(title, detail, hint string) *CLIError {
	return &CLIError{Class: ClassInput, Title: title, Detail: detail, Hint: hint}
}

// NewVCSError reports a failure reaching or reading the version-control
// system for the given commit.
func NewVCSError(title, detail, hint string, cause error) *CLIError {
	return &CLIError{Class: ClassVCS, Title: title, Detail: detail, Hint: hint, Cause: cause}
}

// NewPartialError reports that the run produced output but one or more
// files could not be processed.
func NewPartialError(title, detail, hint string) *CLIError {
	return &CLIError{Class: ClassPartial, Title: title, Detail: detail, Hint: hint}
}

// NewInternalError reports an invariant violation or otherwise
// unanticipated failure.
func NewInternalError(title, detail, hint string, cause error) *CLIError {
	return &CLIError{Class: ClassInternal, Title: title, Detail: detail, Hint: hint, Cause: cause}
}

// jsonError is the wire shape FatalError emits in --json mode.
type jsonError struct {
	Error string `json:"error"`
	Title string `json:"title"`
	Hint  string `json:"hint,omitempty"`
}

// FatalError prints err (as plain text or JSON, per jsonMode) to stderr
// and exits the process with the exit code its Class maps to. A plain Go
// error not wrapped in a CLIError is treated as ClassInternal.
func FatalError(err error, jsonMode bool) {
	cliErr, ok := err.(*CLIError)
	if !ok {
		cliErr = NewInternalError("Unexpected error", err.Error(), "", err)
	}

	if jsonMode {
		enc := json.NewEncoder(os.Stderr)
		_ = enc.Encode(jsonError{Error: cliErr.Error(), Title: cliErr.Title, Hint: cliErr.Hint})
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", cliErr.Title)
		if cliErr.Detail != "" {
			fmt.Fprintf(os.Stderr, "  %s\n", cliErr.Detail)
		}
		if cliErr.Hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", cliErr.Hint)
		}
	}

	os.Exit(cliErr.Class.ExitCode())
}
