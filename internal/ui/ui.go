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

// Package ui holds the CLI's terminal-facing presentation: color toggling
// and progress-bar construction, kept out of the core so the library entry
// points never touch a terminal.
package ui

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// InitColors disables color output when noColor is set or stderr is not a
// terminal — matching the CLI's --no-color flag and pipe-safe default.
func InitColors(noColor bool) {
	if noColor || !isatty.IsTerminal(os.Stderr.Fd()) {
		color.NoColor = true
	}
}

var (
	// Warn formats warning text (file parse failures, truncated depth).
	Warn = color.New(color.FgYellow).SprintFunc()
	// Fail formats fatal-error text.
	Fail = color.New(color.FgRed, color.Bold).SprintFunc()
	// OK formats success text.
	OK = color.New(color.FgGreen).SprintFunc()
)
