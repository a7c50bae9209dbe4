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

package ui

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// ProgressConfig holds the knobs NewProgressBar needs: whether the run is
// quiet (no bars at all) and whether output should render as a static
// summary instead of an animated bar (non-terminal stderr, e.g. piped
// into a log file).
type ProgressConfig struct {
	Quiet    bool
	Terminal bool
}

// NewProgressConfig derives a ProgressConfig from whether the caller asked
// for quiet output and the current stderr's terminal-ness.
func NewProgressConfig(quiet bool) ProgressConfig {
	return ProgressConfig{
		Quiet:    quiet,
		Terminal: isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// NewProgressBar constructs a bar for one pipeline phase, or nil when the
// config says not to render one.
func NewProgressBar(cfg ProgressConfig, total int64, description string) *progressbar.ProgressBar {
	if cfg.Quiet {
		return nil
	}
	opts := []progressbar.Option{
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionClearOnFinish(),
	}
	if !cfg.Terminal {
		opts = append(opts, progressbar.OptionSetVisibility(false))
	}
	return progressbar.NewOptions64(total, opts...)
}
