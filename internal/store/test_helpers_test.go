package store

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/scorebook/internal/input"
	"github.com/roach88/scorebook/internal/orchestrator"
)

const testGames = `id,AAA202404010
info,visteam,VIS
info,hometeam,HOM
start,v1,"Vis One",0,1,8
start,v2,"Vis Two",0,2,6
start,vp,"Vis P",0,0,1
start,h1,"Home One",1,1,4
start,hp,"Home P",1,0,1
play,1,0,v1,11,BCX,S8
com,"first hit"
badj,v2,L
play,1,0,v2,00,X,HR/F7
play,1,0,v1,00,X,63
play,1,0,v2,00,X,K
sub,h9,"Home Nine",1,1,4
play,1,0,v1,00,X,8/F
data,er,hp,2
id,BBB202404020
info,visteam,HOM
info,hometeam,VIS
start,h1,"Home One",0,1,4
start,v1,"Vis One",1,1,8
play,1,0,h1,00,X,W
`

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestResult runs the pipeline over testGames.
func createTestResult(t *testing.T, runID string) *orchestrator.Result {
	t.Helper()
	path := filepath.Join(t.TempDir(), "2024AAA.EVN")
	require.NoError(t, os.WriteFile(path, []byte(testGames), 0o644))

	o := orchestrator.New(
		orchestrator.WithRunID(orchestrator.NewSequenceGenerator(runID)),
		orchestrator.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	res, err := o.Run(context.Background(), []input.File{{Path: path}})
	require.NoError(t, err)
	return res
}
