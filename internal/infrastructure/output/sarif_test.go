package output

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/qmcchain/internal/application/dto"
)

type sarifLog struct {
	Version string `json:"version"`
	Runs    []struct {
		Tool struct {
			Driver struct {
				Name  string `json:"name"`
				Rules []struct {
					ID                   string `json:"id"`
					DefaultConfiguration struct {
						Level string `json:"level"`
					} `json:"defaultConfiguration"`
				} `json:"rules"`
			} `json:"driver"`
		} `json:"tool"`
		Results []struct {
			RuleID    string `json:"ruleId"`
			Level     string `json:"level"`
			Kind      string `json:"kind"`
			Message   struct{ Text string } `json:"message"`
			Locations []struct {
				PhysicalLocation struct {
					ArtifactLocation struct {
						URI string `json:"uri"`
					} `json:"artifactLocation"`
				} `json:"physicalLocation"`
			} `json:"locations"`
		} `json:"results"`
		Invocations []struct {
			ExecutionSuccessful bool `json:"executionSuccessful"`
		} `json:"invocations"`
	} `json:"runs"`
}

func decodeSARIF(t *testing.T, data []byte) sarifLog {
	t.Helper()
	var log sarifLog
	require.NoError(t, json.Unmarshal(data, &log))
	require.Len(t, log.Runs, 1)
	return log
}

func Test_SARIFFormatter_FormatCheck(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSARIFFormatter(&buf, "").FormatCheck(createTestCheck()))

	log := decodeSARIF(t, buf.Bytes())
	assert.Equal(t, "2.1.0", log.Version)
	run := log.Runs[0]
	assert.Equal(t, "qmcchain", run.Tool.Driver.Name)

	require.Len(t, run.Tool.Driver.Rules, 3)
	assert.Equal(t, "empty-pipeline", run.Tool.Driver.Rules[0].ID)
	assert.Equal(t, "error", run.Tool.Driver.Rules[1].DefaultConfiguration.Level)

	require.Len(t, run.Results, 3)
	assert.Equal(t, "missing-required", run.Results[0].RuleID)
	assert.Equal(t, "error", run.Results[0].Level)
	assert.Equal(t, "fail", run.Results[0].Kind)
	assert.Equal(t, "request.yaml", run.Results[0].Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, "note", run.Results[2].Level)
	assert.Equal(t, "informational", run.Results[2].Kind)

	require.Len(t, run.Invocations, 1)
	assert.False(t, run.Invocations[0].ExecutionSuccessful)
}

func Test_SARIFFormatter_FormatCheck_Clean(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewSARIFFormatter(&buf, "fallback.yaml").FormatCheck(&dto.CheckResponse{Plan: createTestPlan()}))

	run := decodeSARIF(t, buf.Bytes()).Runs[0]
	assert.Empty(t, run.Results)
	require.Len(t, run.Invocations, 1)
	assert.True(t, run.Invocations[0].ExecutionSuccessful)
}
