package cli

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scorebook/internal/testutil"
)

func executeCheck(t *testing.T, format string, args ...string) (*bytes.Buffer, error) {
	t.Helper()

	opts := &CheckOptions{RootOptions: &RootOptions{Format: format}}
	opts.RunID = testutil.NewFixedRunIDGenerator("run-check-0001")
	buf := &bytes.Buffer{}
	cmd := newCheckCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return buf, cmd.Execute()
}

func TestCheckCleanSeason(t *testing.T) {
	buf, err := executeCheck(t, "text", writeSeason(t))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "Run run-check-0001")
	assert.Contains(t, out, "✓ ")
	assert.Contains(t, out, "1 game(s), 7 event(s)")
	assert.Contains(t, out, "Files: 2 parsed, 0 failed")
	assert.Contains(t, out, "Play cache:")
}

func TestCheckReportsIssues(t *testing.T) {
	dir := t.TempDir()
	g := testutil.NewGame("HOM202404030", "VIS", "HOM").
		Play(1, 0, "v1", "00", "X", "S7/QQ").
		Raw(`com,"open`).
		Play(1, 0, "v2", "00", "X", "K")
	testutil.WriteEventFile(t, dir, "2024HOM.EVN", g.String())

	buf, err := executeCheck(t, "json", dir)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		RunID  string      `json:"run_id"`
		Data   CheckResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-check-0001", resp.RunID)

	totals := resp.Data.Summary.Totals
	assert.Equal(t, 1, totals.Malformed)
	assert.Equal(t, 1, totals.Unrecognized)
	assert.Equal(t, 2, totals.Events)
	require.Len(t, resp.Data.Summary.Files, 1)
	assert.Equal(t, 2, resp.Data.Summary.Files[0].IssueTotal())
}

func TestCheckStrictExitsWithFailure(t *testing.T) {
	dir := t.TempDir()
	g := testutil.NewGame("HOM202404030", "VIS", "HOM").
		Play(1, 0, "v1", "00", "X", "S7/QQ")
	testutil.WriteEventFile(t, dir, "2024HOM.EVN", g.String())

	buf, err := executeCheck(t, "text", dir, "--strict")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "✗ ")
	assert.Contains(t, buf.String(), "Files: 0 parsed, 1 failed")
}

func TestCheckRejectsNegativeWorkers(t *testing.T) {
	_, err := executeCheck(t, "json", writeSeason(t), "--workers", "-1")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
