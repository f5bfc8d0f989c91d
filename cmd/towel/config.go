// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"io/ioutil"
	"sort"
	"strings"
	"time"

	"github.com/diffeo/go-towel/resource"
	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config holds the server settings read from the YAML file.
type Config struct {
	// APIName names the API in the overview and in metrics.
	APIName string `mapstructure:"api_name"`

	// Prefix is the URL path the API is served under.
	Prefix string `mapstructure:"prefix"`

	// PageSize is the number of items per listing page.
	PageSize int `mapstructure:"page_size"`

	// CacheSize is the number of items of each kind kept in
	// memory.  Zero disables caching.
	CacheSize int `mapstructure:"cache_size"`

	// SessionTTL is how long an idle search session lives.
	SessionTTL time.Duration `mapstructure:"session_ttl"`
}

// DefaultConfig returns the settings used when there is no
// configuration file.
func DefaultConfig() Config {
	return Config{
		APIName:    "towel",
		Prefix:     "/",
		PageSize:   resource.DefaultPageSize,
		CacheSize:  1000,
		SessionTTL: 30 * time.Minute,
	}
}

func loadConfigYaml(filename string) (map[string]interface{}, error) {
	var result map[string]interface{}
	var err error
	var bytes []byte
	bytes, err = ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.Unmarshal(bytes, &result)
	}
	return result, err
}

// decodeConfig overlays a parsed YAML document on the defaults.
// Unknown keys are an error.
func decodeConfig(raw map[string]interface{}) (Config, error) {
	config := DefaultConfig()
	var metadata mapstructure.Metadata
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		WeaklyTypedInput: true,
		Metadata:         &metadata,
		Result:           &config,
	})
	if err != nil {
		return config, err
	}
	if err = decoder.Decode(raw); err != nil {
		return config, errors.Wrap(err, "invalid configuration")
	}
	if len(metadata.Unused) > 0 {
		sort.Strings(metadata.Unused)
		return config, errors.Errorf("unknown configuration keys: %s",
			strings.Join(metadata.Unused, ", "))
	}
	if config.PageSize <= 0 {
		return config, errors.Errorf("page_size must be positive, not %d", config.PageSize)
	}
	if config.CacheSize < 0 {
		return config, errors.Errorf("cache_size must not be negative, not %d", config.CacheSize)
	}
	return config, nil
}

// loadConfig reads the configuration file, if any.
func loadConfig(filename string) (Config, error) {
	if filename == "" {
		return DefaultConfig(), nil
	}
	raw, err := loadConfigYaml(filename)
	if err != nil {
		return Config{}, errors.Wrapf(err, "reading %s", filename)
	}
	return decodeConfig(raw)
}
