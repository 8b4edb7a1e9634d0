// Copyright IBM Corp. 2020, 2025
// SPDX-License-Identifier: MPL-2.0

package wargaming

import (
	"fmt"
	"os"
	"time"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk form of a Config.
type fileConfig struct {
	APIKey              string `yaml:"api_key"`
	RedirectURL         string `yaml:"redirect_url"`
	HTTPS               bool   `yaml:"https"`
	Mode                string `yaml:"mode"`
	Region              string `yaml:"region"`
	Timeout             string `yaml:"timeout"`
	Language            string `yaml:"language"`
	ProviderCA          string `yaml:"provider_ca"`
	LegacySlashEscaping bool   `yaml:"legacy_slash_escaping"`
	NoFollow            bool   `yaml:"nofollow"`
	TokenLifetime       string `yaml:"token_lifetime"`
}

// LoadConfigFile reads a YAML config file. Options are applied after the
// file's settings, so they can supply things a file can't (like WithLogger)
// or override it.
//
//	api_key: 0123456789abcdef
//	redirect_url: /auth/callback
//	https: true
//	mode: token
//	region: eu
//	timeout: 5s
//	language: de
func LoadConfigFile(path string, opt ...Option) (*Config, error) {
	const op = "wargaming.LoadConfigFile"
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: unable to read %s: %w", op, path, err)
	}
	c, err := ParseConfig(data, opt...)
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, path, err)
	}
	return c, nil
}

// ParseConfig parses a YAML config. See LoadConfigFile.
func ParseConfig(data []byte, opt ...Option) (*Config, error) {
	const op = "wargaming.ParseConfig"
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%s: unable to parse config: %w", op, err)
	}

	var fileOpts []Option
	fileOpts = append(fileOpts, WithHTTPS(fc.HTTPS))
	if fc.Mode != "" {
		fileOpts = append(fileOpts, WithMode(Mode(fc.Mode)))
	}
	if fc.Region != "" {
		fileOpts = append(fileOpts, WithRegion(Region(fc.Region)))
	}
	if fc.Timeout != "" {
		d, err := time.ParseDuration(fc.Timeout)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid timeout %q: %w", op, fc.Timeout, ErrInvalidParameter)
		}
		fileOpts = append(fileOpts, WithTimeout(d))
	}
	if fc.Language != "" {
		tag, err := language.Parse(fc.Language)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid language %q: %w", op, fc.Language, ErrInvalidParameter)
		}
		fileOpts = append(fileOpts, WithLanguage(tag))
	}
	if fc.ProviderCA != "" {
		fileOpts = append(fileOpts, WithProviderCA(fc.ProviderCA))
	}
	if fc.LegacySlashEscaping {
		fileOpts = append(fileOpts, WithLegacySlashEscaping())
	}
	if fc.NoFollow {
		fileOpts = append(fileOpts, WithNoFollow())
	}
	if fc.TokenLifetime != "" {
		d, err := time.ParseDuration(fc.TokenLifetime)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid token lifetime %q: %w", op, fc.TokenLifetime, ErrInvalidParameter)
		}
		fileOpts = append(fileOpts, WithTokenLifetime(d))
	}
	return NewConfig(fc.APIKey, fc.RedirectURL, append(fileOpts, opt...)...)
}
