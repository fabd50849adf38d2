/*
SPDX-FileCopyrightText: 2025 Deutsche Telekom AG

SPDX-License-Identifier: Apache-2.0
*/

package cmd

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telekom/gcctl/pkg/gcctl/client"
	"github.com/telekom/gcctl/pkg/gcctl/config"
	"github.com/telekom/gcctl/pkg/version"
)

func TestCompletionCommand(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _, err := runCommand(t, configPath, "", "completion", shell)
			require.NoError(t, err)
			assert.NotEmpty(t, stdout)
		})
	}

	_, _, err := runCommand(t, configPath, "", "completion", "tcsh")
	require.ErrorContains(t, err, "unsupported shell")
}

func TestVersionCommand(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	stdout, _, err := runCommand(t, configPath, "", "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "gcctl "+version.Version)

	stdout, _, err = runCommand(t, configPath, "", "version", "-o", "json")
	require.NoError(t, err)
	var info version.BuildInfo
	require.NoError(t, json.Unmarshal([]byte(stdout), &info))
	assert.Equal(t, version.Version, info.Version)
}

func TestConfigInitAndView(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "gcctl", "config.yaml")

	stdout, _, err := runCommand(t, configPath, "", "--region", "mypurecloud.de", "config", "init", "--client-id", "abc", "--suffix", "TEAM1")
	require.NoError(t, err)
	assert.Contains(t, stdout, configPath)

	_, _, err = runCommand(t, configPath, "", "config", "init")
	require.ErrorContains(t, err, "config already exists")

	cfg, err := config.Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, "mypurecloud.de", cfg.Region)
	assert.Equal(t, "abc", cfg.Credentials.ClientID)
	assert.Equal(t, "TEAM1", cfg.Provisioning.Suffix)

	stdout, _, err = runCommand(t, configPath, "", "config", "view")
	require.NoError(t, err)
	assert.Contains(t, stdout, "region: mypurecloud.de")
	assert.Contains(t, stdout, "suffix: TEAM1")

	stdout, _, err = runCommand(t, configPath, "", "config", "view", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stdout, `"Region": "mypurecloud.de"`)
}

func TestInvalidConfigIsRejected(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	cfg := config.DefaultConfig()
	cfg.Settings.TokenStorage = "vault"
	require.NoError(t, config.Save(configPath, &cfg))

	_, _, err := runCommand(t, configPath, "", "division", "list")
	require.ErrorContains(t, err, "unsupported token storage")
}

func TestInvalidOutputFormat(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "", "division", "list", "-o", "xml")
	require.ErrorContains(t, err, "unknown output format")
	assert.Zero(t, env.platform.tokenRequests)
}

func TestDivisionList(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run(t, "", "division", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Hackathon RUWAZEPZLVUB")
	assert.Contains(t, stdout, "HOME")

	t.Setenv("GCCTL_OUTPUT", "json")
	stdout, _, err = env.run(t, "", "division", "list")
	require.NoError(t, err)
	var divisions []client.Division
	require.NoError(t, json.Unmarshal([]byte(stdout), &divisions))
	assert.Len(t, divisions, 2)
	assert.Equal(t, 1, env.platform.tokenRequests, "second run reuses the stored credential")
}

func TestDivisionGet(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.run(t, "", "division", "get")
	require.NoError(t, err)
	assert.Contains(t, stdout, "D1")
	assert.Contains(t, stdout, "No description")

	_, _, err = env.run(t, "", "division", "get", "Missing")
	require.ErrorIs(t, err, client.ErrNotFound)
}

func TestWhoamiWithClientCredentials(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.run(t, "", "whoami")
	require.ErrorIs(t, err, client.ErrBadRequest)
	assert.ErrorContains(t, err, "not user bound")
}

func TestVerboseLogsToErrWriter(t *testing.T) {
	env := newTestEnv(t)

	stdout, stderr, err := env.run(t, "", "-v", "division", "list", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Fetching new access token")
	assert.Contains(t, stderr, "INFO")
	assert.NotContains(t, stdout, "Fetching new access token")
}
