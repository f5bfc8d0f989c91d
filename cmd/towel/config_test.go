// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDecodeConfig(t *testing.T) {
	config, err := decodeConfig(map[string]interface{}{
		"api_name":    "crm",
		"page_size":   "50",
		"session_ttl": "2h",
	})
	if assert.NoError(t, err) {
		assert.Equal(t, Config{
			APIName:    "crm",
			Prefix:     "/",
			PageSize:   50,
			CacheSize:  1000,
			SessionTTL: 2 * time.Hour,
		}, config)
	}
}

func TestDecodeConfigErrors(t *testing.T) {
	_, err := decodeConfig(map[string]interface{}{"pagesize": 10})
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "pagesize")
	}

	_, err = decodeConfig(map[string]interface{}{"page_size": 0})
	assert.Error(t, err)

	_, err = decodeConfig(map[string]interface{}{"cache_size": -1})
	assert.Error(t, err)

	_, err = decodeConfig(map[string]interface{}{"session_ttl": "forever"})
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	config, err := loadConfig("")
	if assert.NoError(t, err) {
		assert.Equal(t, DefaultConfig(), config)
	}

	dir, err := ioutil.TempDir("", "towel")
	if !assert.NoError(t, err) {
		return
	}
	defer os.RemoveAll(dir)
	filename := filepath.Join(dir, "towel.yaml")
	yaml := "prefix: /api\ncache_size: 0\n"
	if !assert.NoError(t, ioutil.WriteFile(filename, []byte(yaml), 0644)) {
		return
	}
	config, err = loadConfig(filename)
	if assert.NoError(t, err) {
		assert.Equal(t, "/api", config.Prefix)
		assert.Equal(t, 0, config.CacheSize)
		assert.Equal(t, "towel", config.APIName)
	}

	_, err = loadConfig(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
