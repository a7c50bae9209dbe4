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

// Package config loads the tool's flat, named-field runtime options from
// an optional on-disk YAML file, each field carrying a documented default.
// There is no ambient or global configuration state: every caller holds
// its own *Config.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kraklabs/slicer/internal/errors"
)

const (
	defaultConfigDir  = ".slicer"
	defaultConfigFile = "config.yaml"
	configVersion     = "1"
)

// Config is the tool's flat runtime-options record.
type Config struct {
	Version        string   `yaml:"version"`
	MaxDepth       int      `yaml:"max_depth"`
	Workers        int      `yaml:"workers"`
	FirstPartyOnly bool     `yaml:"first_party_only"`
	Marker         string   `yaml:"marker"`
	HeaderTemplate string   `yaml:"header_template,omitempty"`
	Exclude        []string `yaml:"exclude,omitempty"`
}

// Default returns the documented defaults: depth 5, workers = host core
// count (0 here means "let the driver decide"), first-party-only scoping,
// and the default change marker.
func Default() *Config {
	return &Config{
		Version:        configVersion,
		MaxDepth:       5,
		Workers:        0,
		FirstPartyOnly: true,
		Marker:         " // <-- changed",
		Exclude: []string{
			".git/**",
			"vendor/**",
			"node_modules/**",
		},
	}
}

// Load reads configPath (or discovers <repoRoot>/.slicer/config.yaml if
// configPath is empty) and merges it over Default(). A missing file is
// not an error — the caller gets Default() back — since every field
// already has a usable default; only an unreadable or malformed existing
// file is fatal.
func Load(repoRoot, configPath string) (*Config, error) {
	cfg := Default()

	if configPath == "" {
		configPath = filepath.Join(repoRoot, defaultConfigDir, defaultConfigFile)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, errors.NewInputError(
			"Cannot read configuration file",
			fmt.Sprintf("Failed to read %s: %v", configPath, err),
			"Check file permissions, or omit --config to use the defaults",
		)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.NewInputError(
			"Invalid configuration format",
			fmt.Sprintf("YAML parsing failed for %s: %v", configPath, err),
			"Fix the file's syntax, or delete it to fall back to defaults",
		)
	}

	return cfg, nil
}

// Save writes cfg to configPath as YAML, creating the parent directory if
// needed.
func Save(cfg *Config, configPath string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.NewInternalError(
			"Cannot encode configuration",
			"YAML marshaling failed unexpectedly",
			"This is a bug; please report it with your configuration",
			err,
		)
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return errors.NewInputError(
			"Cannot create configuration directory",
			fmt.Sprintf("Failed creating %s: %v", dir, err),
			"Check directory permissions",
		)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return errors.NewInputError(
			"Cannot write configuration file",
			fmt.Sprintf("Failed writing %s: %v", configPath, err),
			"Check file permissions and available disk space",
		)
	}

	return nil
}
