package main

import (
	"bytes"
	"encoding/json"
	"testing"
	"work_readiness_backend/internal/readiness"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConsecutiveTable(t *testing.T) {
	out, err := run(t, "consecutive", "--days", "5")
	require.NoError(t, err)
	assert.Contains(t, out, "Excellent")
	assert.Contains(t, out, "85")
}

func TestConsecutiveLegacyJSON(t *testing.T) {
	out, err := run(t, "consecutive", "--days", "2", "--formula", "legacy", "--json")
	require.NoError(t, err)

	var res readiness.ConsecutiveKPI
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, readiness.FormulaLegacy, res.Formula)
}

func TestConsecutiveUnknownFormula(t *testing.T) {
	_, err := run(t, "consecutive", "--days", "2", "--formula", "weekly")
	assert.Error(t, err)
}

func TestAssignmentJSON(t *testing.T) {
	out, err := run(t, "assignment", "--json",
		"--total", "10", "--completed", "8", "--on-time", "6", "--late", "1",
		"--overdue", "1", "--quality", "80")
	require.NoError(t, err)

	var res readiness.KPIResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.InDelta(t, 59.05, res.Score, 0.001)
	assert.Equal(t, 1.0, res.Breakdown.OverduePenalty)
}

func TestAssignmentNoAssignments(t *testing.T) {
	out, err := run(t, "assignment")
	require.NoError(t, err)
	assert.Contains(t, out, readiness.NoAssignmentsRating)
}
