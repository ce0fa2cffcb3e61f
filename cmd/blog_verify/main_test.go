package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs("1, 2,,15 ")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 15}, ids)

	ids, err = parseIDs("")
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = parseIDs("1,abc")
	assert.Error(t, err)

	_, err = parseIDs("0")
	assert.Error(t, err)
}

func TestRun_ReturnsErrors(t *testing.T) {
	err := run("dev", "./config.toml", "", false)
	require.ErrorIs(t, err, errNothingToDo)

	err = run("dev", "./config.toml", "1,abc", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse ids")

	err = run("dev", filepath.Join(t.TempDir(), "missing.toml"), "1", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}
