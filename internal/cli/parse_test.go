package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/scorebook/internal/store"
	"github.com/roach88/scorebook/internal/testutil"
)

// writeSeason writes two event files with one game each and returns the
// directory.
func writeSeason(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	g1 := testutil.NewGame("HOM202404010", "VIS", "HOM").
		Play(1, 0, "v1", "00", "X", "S8").
		Play(1, 0, "v2", "00", "X", "HR/F7").
		Play(1, 0, "v3", "00", "X", "K").
		Play(1, 0, "v4", "00", "X", "63").
		Play(1, 0, "v5", "00", "X", "8/F").
		Play(1, 1, "h1", "00", "X", "W").
		Play(1, 1, "h2", "00", "X", "D7.1-H")
	g2 := testutil.NewGame("HOM202404020", "VIS", "HOM").
		Play(1, 0, "v1", "00", "X", "E6").
		Play(1, 0, "v2", "00", "X", "64(1)3/GDP").
		Play(1, 0, "v3", "00", "X", "K")
	testutil.WriteEventFile(t, dir, "2024HOM.EVN", g1.String())
	testutil.WriteEventFile(t, dir, "2024HO2.EVN", g2.String())
	return dir
}

type parseCommandResult struct {
	out *bytes.Buffer
	err error
}

func executeParse(t *testing.T, format, runID string, args ...string) parseCommandResult {
	t.Helper()

	opts := &ParseOptions{RootOptions: &RootOptions{Format: format}}
	if runID != "" {
		opts.RunID = testutil.NewFixedRunIDGenerator(runID)
	}
	buf := &bytes.Buffer{}
	cmd := newParseCommand(opts)
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	return parseCommandResult{out: buf, err: cmd.Execute()}
}

func decodeParseResult(t *testing.T, data []byte) (CLIResponse, ParseResult) {
	t.Helper()

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(data, &resp))

	var wrapped struct {
		Data ParseResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &wrapped))
	return resp, wrapped.Data
}

func TestParseToSQLite(t *testing.T) {
	dir := writeSeason(t)
	dbPath := filepath.Join(t.TempDir(), "season.db")

	res := executeParse(t, "json", "run-parse-0001", dir, "--out", dbPath, "--verify", "--workers", "2")
	require.NoError(t, res.err)

	resp, result := decodeParseResult(t, res.out.Bytes())
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "run-parse-0001", resp.RunID)
	assert.Equal(t, "run-parse-0001", result.RunID)
	assert.Equal(t, "sqlite", result.Output)
	require.NotNil(t, result.Verified)
	assert.True(t, *result.Verified)
	assert.Equal(t, 2, result.Summary.Totals.Files)
	assert.Equal(t, 2, result.Summary.Totals.Games)
	assert.Equal(t, 10, result.Summary.Totals.Events)
	assert.NotEmpty(t, result.Fingerprint)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	games, err := st.ReadGames(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 2)
	assert.Equal(t, "HOM202404010", games[0].GameID)

	rec, err := st.ReadRun(context.Background(), "run-parse-0001")
	require.NoError(t, err)
	assert.Equal(t, result.Fingerprint, rec.Fingerprint)
}

func TestParseIsIdempotent(t *testing.T) {
	dir := writeSeason(t)
	dbPath := filepath.Join(t.TempDir(), "season.db")

	first := executeParse(t, "json", "run-a", dir, "--out", dbPath)
	require.NoError(t, first.err)
	second := executeParse(t, "json", "run-b", dir, "--out", dbPath, "--workers", "1")
	require.NoError(t, second.err)

	_, a := decodeParseResult(t, first.out.Bytes())
	_, b := decodeParseResult(t, second.out.Bytes())
	assert.Equal(t, a.Fingerprint, b.Fingerprint)

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	defer st.Close()

	fingerprint, err := st.Fingerprint(context.Background())
	require.NoError(t, err)
	assert.Equal(t, a.Fingerprint, fingerprint)
}

func TestParseToJSONL(t *testing.T) {
	dir := writeSeason(t)
	outDir := filepath.Join(t.TempDir(), "tables")

	res := executeParse(t, "text", "run-jsonl", dir, "--output", "jsonl", "--out", outDir)
	require.NoError(t, res.err)
	assert.Contains(t, res.out.String(), "Run run-jsonl")
	assert.Contains(t, res.out.String(), "Games: 2  Events: 10")

	for _, name := range []string{"games.jsonl", "events.jsonl", "fielding_credits.jsonl"} {
		_, err := os.Stat(filepath.Join(outDir, name))
		assert.NoError(t, err, name)
	}
}

func TestParseSkipsDeducedDuplicates(t *testing.T) {
	dir := writeSeason(t)
	testutil.WriteEventFile(t, dir, "2024HOM.EDN", testutil.NewGame("HOM202404010", "VIS", "HOM").
		Play(1, 0, "v1", "00", "X", "K").
		String())

	res := executeParse(t, "text", "run-dup", dir, "--output", "jsonl", "--out", t.TempDir())
	require.NoError(t, res.err)
	assert.Contains(t, res.out.String(), "2024HOM.EDN: 0 game(s), 0 event(s), 1 duplicate(s) skipped")
	assert.Contains(t, res.out.String(), "Games: 2  Events: 10  Duplicates skipped: 1")
}

func TestParseVerifyNeedsDatabase(t *testing.T) {
	dir := writeSeason(t)

	res := executeParse(t, "text", "", dir, "--output", "jsonl", "--out", t.TempDir(), "--verify")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.out.String(), ErrCodeSink)
}

func TestParseStrictFailsFile(t *testing.T) {
	dir := t.TempDir()
	g := testutil.NewGame("HOM202404030", "VIS", "HOM").
		Play(1, 0, "v1", "00", "X", "S7/QQ")
	testutil.WriteEventFile(t, dir, "2024HOM.EVN", g.String())

	res := executeParse(t, "json", "", dir, "--out", filepath.Join(t.TempDir(), "s.db"), "--strict")
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, GetExitCode(res.err))

	resp, result := decodeParseResult(t, res.out.Bytes())
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeFileFailures, resp.Error.Code)
	assert.Equal(t, 1, result.Summary.Failures)
}

func TestParseMissingInput(t *testing.T) {
	res := executeParse(t, "json", "", filepath.Join(t.TempDir(), "missing"), "--out", filepath.Join(t.TempDir(), "s.db"))
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(res.out.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestParseNoEventFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))

	res := executeParse(t, "json", "", dir, "--out", filepath.Join(t.TempDir(), "s.db"))
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(res.out.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNoFiles, resp.Error.Code)
}

func TestParseMissingDestination(t *testing.T) {
	res := executeParse(t, "json", "", writeSeason(t))
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(res.out.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeConfig, resp.Error.Code)
}

func TestParsePostgresNeedsDSN(t *testing.T) {
	t.Setenv("SCOREBOOK_PG_DSN", "")

	res := executeParse(t, "text", "", writeSeason(t), "--output", "postgres")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
	assert.Contains(t, res.out.String(), ErrCodeConfig)
}

func TestParseConfigFile(t *testing.T) {
	dir := writeSeason(t)
	outDir := filepath.Join(t.TempDir(), "tables")
	cfgPath := filepath.Join(t.TempDir(), "scorebook.cue")
	cfg := "workers: 2\noutput: {\n\tformat: \"jsonl\"\n\tpath: \"" + outDir + "\"\n}\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfg), 0o644))

	res := executeParse(t, "json", "", dir, "--config", cfgPath)
	require.NoError(t, res.err)

	_, result := decodeParseResult(t, res.out.Bytes())
	assert.Equal(t, "jsonl", result.Output)
	assert.Equal(t, outDir, result.Destination)
}

func TestParseInvalidConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "scorebook.cue")
	require.NoError(t, os.WriteFile(cfgPath, []byte("workrs: 2\n"), 0o644))

	res := executeParse(t, "json", "", writeSeason(t), "--config", cfgPath, "--out", "x.db")
	require.Error(t, res.err)
	assert.Equal(t, ExitCommandError, GetExitCode(res.err))
}
