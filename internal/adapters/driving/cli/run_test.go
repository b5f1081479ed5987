package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devpulse-labs/pulse-cli/internal/core/domain"
	"github.com/devpulse-labs/pulse-cli/internal/core/ports/driving"
)

func TestRunCmd_Use(t *testing.T) {
	assert.Equal(t, "run [signal-id]", runCmd.Use)
}

func TestRunCmd_RequiresExactlyOneArg(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"run"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestRunCmd_ExecutesPipeline(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	mock := pipelineService.(*mockPipelineService)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"run", "sig-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "sig-1", mock.gotSignalID)
	assert.Contains(t, buf.String(), "Run run-1: completed")
	assert.Contains(t, buf.String(), "Intelligence: intel-1")
}

func TestRunCmd_FailedRunReportsTerminalStatus(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	pipelineService = &mockPipelineService{
		result: &driving.PipelineResult{RunID: "run-2", Status: domain.RunFailed},
		err:    errors.New("verification rejected twice"),
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"run", "sig-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, buf.String(), "Run run-2: failed")
	assert.Contains(t, err.Error(), "verification rejected twice")
}

func TestRunCmd_TracesFlag(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	traceStore = &mockTraceStore{
		traces: []domain.Trace{
			{
				RunID:     "run-1",
				AgentName: "researcher",
				StepName:  domain.StepSummarizing,
				Status:    domain.StepCompleted,
				LatencyMS: 900,
				ToolCalls: []domain.ToolCall{
					{Tool: "repo.metadata", Transport: "rest", OK: true},
				},
			},
		},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"run", "--traces", "sig-1"})
	defer func() {
		rootCmd.SetArgs(nil)
		runShowTraces = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Traces:")
	assert.Contains(t, buf.String(), "researcher")
	assert.Contains(t, buf.String(), "tool repo.metadata via rest: ok")
}

func TestRunCmd_ServiceNotConfigured(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	pipelineService = nil

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"run", "sig-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline service not configured")
}
