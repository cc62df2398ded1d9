package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetVersionInfo(t *testing.T) {
	origVersion := versionInfo.Version
	origCommit := versionInfo.Commit
	origBuildDate := versionInfo.BuildDate
	defer func() {
		versionInfo.Version = origVersion
		versionInfo.Commit = origCommit
		versionInfo.BuildDate = origBuildDate
	}()

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
	}{
		{
			name:      "set all values",
			version:   "1.0.0",
			commit:    "abc123",
			buildDate: "2026-01-15",
		},
		{
			name:      "set dev version",
			version:   "dev",
			commit:    "HEAD",
			buildDate: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersionInfo(tt.version, tt.commit, tt.buildDate)

			assert.Equal(t, tt.version, versionInfo.Version)
			assert.Equal(t, tt.commit, versionInfo.Commit)
			assert.Equal(t, tt.buildDate, versionInfo.BuildDate)
		})
	}
}

func TestResolveEndpoint(t *testing.T) {
	origFlag := flagEndpoint
	origConfig := appConfig
	defer func() {
		flagEndpoint = origFlag
		appConfig = origConfig
	}()

	t.Run("flag wins", func(t *testing.T) {
		flagEndpoint = "http://from-flag"
		got, err := resolveEndpoint("http://from-manifest")
		require.NoError(t, err)
		assert.Equal(t, "http://from-flag", got)
	})

	t.Run("manifest over config", func(t *testing.T) {
		flagEndpoint = ""
		got, err := resolveEndpoint("http://from-manifest")
		require.NoError(t, err)
		assert.Equal(t, "http://from-manifest", got)
	})

	t.Run("no endpoint anywhere", func(t *testing.T) {
		flagEndpoint = ""
		appConfig = nil
		_, err := resolveEndpoint("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no service endpoint")
	})
}

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"watch", "status", "cancel", "metrics", "simulate", "sessions", "version"} {
		assert.True(t, names[want], "command %s should be registered", want)
	}
}
