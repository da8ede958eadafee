/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package config loads the user-editable vecdraw configuration. The YAML file
// in the user scope is merged over Defaults and environment variables
// (VDR_*) are applied last as read-only runtime overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// CurrentVersion is written to config_version on Save.
const CurrentVersion = 2

type GeneralConfig struct {
	Theme       string   `yaml:"theme"` // "system" | "light" | "dark"
	RecentFiles []string `yaml:"recent_files,omitempty"`
}

// EditorConfig tunes interactive editing.
type EditorConfig struct {
	// MinDrawSize is the smallest extent (px) a freshly drawn shape must reach to be committed.
	MinDrawSize float64 `yaml:"min_draw_size"`
	// HitTolerance is the pick distance (px) for line-like shapes.
	HitTolerance float64 `yaml:"hit_tolerance"`
	// InsertMaxDist gates double-click vertex insertion.
	InsertMaxDist float64 `yaml:"insert_max_dist"`
	SmartGuides   bool    `yaml:"smart_guides"`
	SnapThreshold float64 `yaml:"snap_threshold"`
	UndoDepth     int     `yaml:"undo_depth"`
	UndoMaxBytes  int     `yaml:"undo_max_bytes"`
}

type ExportConfig struct {
	Precision int     `yaml:"precision"`
	Normalize string  `yaml:"normalize"` // "" | "translateMinToOrigin"
	PNGScale  float64 `yaml:"png_scale"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Editor        EditorConfig  `yaml:"editor"`
	Export        ExportConfig  `yaml:"export"`
	Server        ServerConfig  `yaml:"server"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: CurrentVersion,
		General:       GeneralConfig{Theme: "system"},
		Editor: EditorConfig{
			MinDrawSize:   3,
			HitTolerance:  6,
			InsertMaxDist: 10,
			SmartGuides:   true,
			SnapThreshold: 4,
			UndoDepth:     100,
			UndoMaxBytes:  16 << 20,
		},
		Export:  ExportConfig{Precision: 2, PNGScale: 1},
		Server:  ServerConfig{Addr: "127.0.0.1:8787", AllowedOrigins: []string{"localhost:*", "127.0.0.1:*"}},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// EnvPrefix is prepended to every override variable, e.g. VDR_LOG_LEVEL.
const EnvPrefix = "VDR"

// EnvConfigPath points Load at a specific file instead of ConfigPath().
const EnvConfigPath = "VDR_CONFIG"

// overrides mirrors the overridable keys. Nil means "not set in the environment".
type overrides struct {
	Theme         *string  `envconfig:"THEME"`
	MinDrawSize   *float64 `envconfig:"MIN_DRAW_SIZE"`
	HitTolerance  *float64 `envconfig:"HIT_TOLERANCE"`
	InsertMaxDist *float64 `envconfig:"INSERT_MAX_DIST"`
	SmartGuides   *bool    `envconfig:"SMART_GUIDES"`
	UndoDepth     *int     `envconfig:"UNDO_DEPTH"`
	Precision     *int     `envconfig:"EXPORT_PRECISION"`
	Normalize     *string  `envconfig:"EXPORT_NORMALIZE"`
	ServerAddr    *string  `envconfig:"SERVER_ADDR"`
	Origins       []string `envconfig:"ALLOWED_ORIGINS"`
	LogLevel      *string  `envconfig:"LOG_LEVEL"`
	LogFormat     *string  `envconfig:"LOG_FORMAT"`
	LogSource     *bool    `envconfig:"LOG_SOURCE"`
	LogFile       *string  `envconfig:"LOG_FILE"`
}

// envKeys maps yaml keys to the variable that overrides them.
var envKeys = map[string]string{
	"general.theme":          "THEME",
	"editor.min_draw_size":   "MIN_DRAW_SIZE",
	"editor.hit_tolerance":   "HIT_TOLERANCE",
	"editor.insert_max_dist": "INSERT_MAX_DIST",
	"editor.smart_guides":    "SMART_GUIDES",
	"editor.undo_depth":      "UNDO_DEPTH",
	"export.precision":       "EXPORT_PRECISION",
	"export.normalize":       "EXPORT_NORMALIZE",
	"server.addr":            "SERVER_ADDR",
	"server.allowed_origins": "ALLOWED_ORIGINS",
	"logging.level":          "LOG_LEVEL",
	"logging.format":         "LOG_FORMAT",
	"logging.source":         "LOG_SOURCE",
	"logging.file":           "LOG_FILE",
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "vecdraw")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "vecdraw")
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "vecdraw")
		} else if h := os.Getenv("HOME"); h != "" {
			base = filepath.Join(h, ".config", "vecdraw")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load resolves ConfigPath and calls LoadFrom.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		return Defaults(), err
	}
	return LoadFrom(path)
}

// LoadFrom reads the YAML file at path (a missing file is fine), merges it over
// the defaults and applies environment overrides. A malformed file is reported
// but the defaults plus overrides are still returned.
func LoadFrom(path string) (AppConfig, error) {
	cfg := Defaults()
	var fileErr error
	if data, err := os.ReadFile(path); err == nil {
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			fileErr = fmt.Errorf("parse %s: %w", path, err)
		} else {
			mergeInto(&cfg, &fileCfg)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		fileErr = err
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return cfg, err
	}
	return cfg, fileErr
}

// Save writes cfg as YAML to the user config path.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

func SaveTo(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	cfg.ConfigVersion = CurrentVersion
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func mergeInto(dst, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if s := strings.TrimSpace(src.General.Theme); s != "" {
		dst.General.Theme = s
	}
	if len(src.General.RecentFiles) > 0 {
		dst.General.RecentFiles = append([]string(nil), src.General.RecentFiles...)
	}

	e := src.Editor
	if e.MinDrawSize > 0 {
		dst.Editor.MinDrawSize = e.MinDrawSize
	}
	if e.HitTolerance > 0 {
		dst.Editor.HitTolerance = e.HitTolerance
	}
	if e.InsertMaxDist > 0 {
		dst.Editor.InsertMaxDist = e.InsertMaxDist
	}
	if e.SnapThreshold > 0 {
		dst.Editor.SnapThreshold = e.SnapThreshold
	}
	if e.UndoDepth > 0 {
		dst.Editor.UndoDepth = e.UndoDepth
	}
	if e.UndoMaxBytes > 0 {
		dst.Editor.UndoMaxBytes = e.UndoMaxBytes
	}
	// v1 files had no smart_guides key; keep the default for them.
	if src.ConfigVersion >= 2 {
		dst.Editor.SmartGuides = e.SmartGuides
	}

	if src.Export.Precision > 0 {
		dst.Export.Precision = src.Export.Precision
	}
	if s := strings.TrimSpace(src.Export.Normalize); s != "" {
		dst.Export.Normalize = s
	}
	if src.Export.PNGScale > 0 {
		dst.Export.PNGScale = src.Export.PNGScale
	}

	if s := strings.TrimSpace(src.Server.Addr); s != "" {
		dst.Server.Addr = s
	}
	if len(src.Server.AllowedOrigins) > 0 {
		dst.Server.AllowedOrigins = append([]string(nil), src.Server.AllowedOrigins...)
	}

	if s := strings.TrimSpace(src.Logging.Level); s != "" {
		dst.Logging.Level = strings.ToLower(s)
	}
	if s := strings.TrimSpace(src.Logging.Format); s != "" {
		dst.Logging.Format = strings.ToLower(s)
	}
	dst.Logging.Source = src.Logging.Source
	if s := strings.TrimSpace(src.Logging.File); s != "" {
		dst.Logging.File = s
	}
}

func applyEnvOverrides(cfg *AppConfig) error {
	var ov overrides
	if err := envconfig.Process(EnvPrefix, &ov); err != nil {
		return fmt.Errorf("env overrides: %w", err)
	}
	setString := func(dst *string, v *string, lower bool) {
		if v == nil || strings.TrimSpace(*v) == "" {
			return
		}
		s := strings.TrimSpace(*v)
		if lower {
			s = strings.ToLower(s)
		}
		*dst = s
	}
	setString(&cfg.General.Theme, ov.Theme, true)
	setString(&cfg.Export.Normalize, ov.Normalize, false)
	setString(&cfg.Server.Addr, ov.ServerAddr, false)
	setString(&cfg.Logging.Level, ov.LogLevel, true)
	setString(&cfg.Logging.Format, ov.LogFormat, true)
	setString(&cfg.Logging.File, ov.LogFile, false)
	if ov.MinDrawSize != nil && *ov.MinDrawSize > 0 {
		cfg.Editor.MinDrawSize = *ov.MinDrawSize
	}
	if ov.HitTolerance != nil && *ov.HitTolerance > 0 {
		cfg.Editor.HitTolerance = *ov.HitTolerance
	}
	if ov.InsertMaxDist != nil && *ov.InsertMaxDist > 0 {
		cfg.Editor.InsertMaxDist = *ov.InsertMaxDist
	}
	if ov.SmartGuides != nil {
		cfg.Editor.SmartGuides = *ov.SmartGuides
	}
	if ov.UndoDepth != nil && *ov.UndoDepth > 0 {
		cfg.Editor.UndoDepth = *ov.UndoDepth
	}
	if ov.Precision != nil && *ov.Precision >= 0 {
		cfg.Export.Precision = *ov.Precision
	}
	if len(ov.Origins) > 0 {
		cfg.Server.AllowedOrigins = ov.Origins
	}
	if ov.LogSource != nil {
		cfg.Logging.Source = *ov.LogSource
	}
	return nil
}

// EnvOverrideFor returns the env var name if the yaml key is currently overridden.
func EnvOverrideFor(key string) (string, bool) {
	suffix, ok := envKeys[key]
	if !ok {
		return "", false
	}
	name := EnvPrefix + "_" + suffix
	if os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
