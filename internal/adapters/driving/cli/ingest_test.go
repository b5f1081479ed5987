package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
)

func TestIngestCmd_Use(t *testing.T) {
	assert.Equal(t, "ingest [source]", ingestCmd.Use)
}

func TestIngestCmd_HasFlags(t *testing.T) {
	require.NotNil(t, ingestCmd.Flags().Lookup("max"))
	require.NotNil(t, ingestCmd.Flags().Lookup("query"))
	require.NotNil(t, ingestCmd.Flags().Lookup("readmes"))
	require.NotNil(t, ingestCmd.Flags().Lookup("run"))
}

func TestIngestCmd_RejectsUnknownSource(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "reddit"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}

func TestIngestCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	ingestService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"ingest", "github"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "ingest service not configured")
}

func TestBuildConnector_SourceSelection(t *testing.T) {
	tests := []struct {
		kind domain.SourceKind
	}{
		{domain.SourceGitHub},
		{domain.SourceArxiv},
		{domain.SourceHackerNews},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			connector := buildConnector(tt.kind)
			require.NotNil(t, connector)
			assert.Equal(t, tt.kind, connector.Source())
			assert.NoError(t, connector.Close())
		})
	}
}
