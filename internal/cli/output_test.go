package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/pandafill/internal/config"
)

func TestOutputFormatter_JSONSuccessForRun(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	require.NoError(t, formatter.SuccessForRun("run-1", RunSummary{RunToken: "run-1", Processed: 3}))

	var resp struct {
		CLIResponse
		Data RunSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-1", resp.RunToken)
	assert.Equal(t, 3, resp.Data.Processed)
	assert.Nil(t, resp.Error)
}

func TestOutputFormatter_JSONError(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: buf}

	issues := []ConfigIssue{{Code: config.ErrCodeUnknownFiller, Message: `unknown filler "jets"`}}
	require.NoError(t, formatter.Error(config.ErrCodeUnknownFiller, "failed to load config", issues))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, config.ErrCodeUnknownFiller, resp.Error.Code)
	assert.Equal(t, "failed to load config", resp.Error.Message)
	assert.NotNil(t, resp.Error.Details)
	assert.Empty(t, resp.RunToken)
}

func TestOutputFormatter_Text(t *testing.T) {
	tests := []struct {
		name        string
		verbose     bool
		wantDetails bool
	}{
		{"quiet", false, false},
		{"verbose", true, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &OutputFormatter{Format: "text", Writer: buf, Verbose: tt.verbose}

			require.NoError(t, formatter.Success(RunSummary{RunToken: "run-1", Processed: 2, OK: 2, LastSeq: 2, Database: "panda.db"}))
			assert.Contains(t, buf.String(), "Run run-1: 2 events processed (2 ok, 0 failed), last seq 2, written to panda.db")

			buf.Reset()
			require.NoError(t, formatter.Error("COMMAND_ERROR", "failed to open database", "disk full"))
			assert.Contains(t, buf.String(), "Error [COMMAND_ERROR]: failed to open database")
			if tt.wantDetails {
				assert.Contains(t, buf.String(), "Details: disk full")
			} else {
				assert.NotContains(t, buf.String(), "Details:")
			}
		})
	}
}

func TestOutputFormatter_VerboseLogGoesToErrWriter(t *testing.T) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "json", Writer: out, ErrWriter: errOut, Verbose: true}

	formatter.VerboseLog("Replaying run %s", "run-1")
	assert.Empty(t, out.String())
	assert.Equal(t, "Replaying run run-1\n", errOut.String())

	quiet := &OutputFormatter{Format: "text", Writer: out}
	quiet.VerboseLog("hidden")
	assert.Empty(t, out.String())
	assert.Equal(t, out, quiet.GetErrWriter())
}

func TestExecute_Success(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Execute([]string{"--config", configDir(t, testConfig), "validate"}, &stdout, &stderr)

	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout.String(), "Configuration valid")
	assert.Empty(t, stderr.String())
}

func TestExecute_JSONConfigError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Execute([]string{"--format", "json", "--config", configDir(t, `fillers: ["jets"]`), "branches"}, &stdout, &stderr)

	assert.Equal(t, ExitCommandError, code)
	assert.Empty(t, stdout.String())

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string        `json:"code"`
			Message string        `json:"message"`
			Details []ConfigIssue `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(stderr.Bytes(), &resp), stderr.String())
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, config.ErrCodeUnknownFiller, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "failed to load config")
	require.NotEmpty(t, resp.Error.Details)
	assert.Equal(t, config.ErrCodeUnknownFiller, resp.Error.Details[0].Code)
}

func TestExecute_TextUsageError(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Execute([]string{"dump"}, &stdout, &stderr)

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr.String(), "Error [FAILED]")
	assert.Contains(t, stderr.String(), `"db"`)
}

func TestExecute_InvalidFormatFallsBackToText(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Execute([]string{"--format", "xml", "branches"}, &stdout, &stderr)

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr.String(), "Error [FAILED]: invalid format")
}
