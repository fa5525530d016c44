package input

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const body = "id,ABC202404010\ninfo,visteam,XYZ\n"

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func gzipped(t *testing.T, s string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte(s))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func zstded(t *testing.T, s string) []byte {
	t.Helper()
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	defer enc.Close()
	return enc.EncodeAll([]byte(s), nil)
}

func TestDiscoverDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2024ABC.EVN"), []byte(body))
	writeFile(t, filepath.Join(dir, "sub", "2024XYZ.eva.gz"), gzipped(t, body))
	writeFile(t, filepath.Join(dir, "2023DEF.EVA.zst"), zstded(t, body))
	writeFile(t, filepath.Join(dir, "TEAM2024"), []byte("ABC,N,Alphas,Town\n"))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("x"))

	files, err := Discover(dir, nil)
	require.NoError(t, err)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		filepath.Join(dir, "2023DEF.EVA.zst"),
		filepath.Join(dir, "2024ABC.EVN"),
		filepath.Join(dir, "sub", "2024XYZ.eva.gz"),
	}, paths)
	assert.Equal(t, int64(len(body)), files[1].Size)
}

func TestDiscoverAccounts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "2024ZZZ.EDN"), []byte(body))
	writeFile(t, filepath.Join(dir, "2024ABC.EVN"), []byte(body))
	writeFile(t, filepath.Join(dir, "1950AAA.eda"), []byte(body))
	writeFile(t, filepath.Join(dir, "2024XYZ.EVA"), []byte(body))
	writeFile(t, filepath.Join(dir, "2024ABC.EBN"), []byte(body))

	files, err := DiscoverAccounts(dir, DefaultPatterns, DeducedPatterns)
	require.NoError(t, err)

	type entry struct {
		name    string
		account Account
	}
	var got []entry
	for _, f := range files {
		got = append(got, entry{filepath.Base(f.Path), f.Account})
	}
	assert.Equal(t, []entry{
		{"2024ABC.EVN", PlayByPlay},
		{"2024XYZ.EVA", PlayByPlay},
		{"1950AAA.eda", Deduced},
		{"2024ZZZ.EDN", Deduced},
	}, got)

	t.Run("no deduced patterns", func(t *testing.T) {
		files, err := DiscoverAccounts(dir, nil, nil)
		require.NoError(t, err)
		assert.Len(t, files, 2)
	})

	t.Run("single deduced file", func(t *testing.T) {
		files, err := DiscoverAccounts(filepath.Join(dir, "2024ZZZ.EDN"), DefaultPatterns, DeducedPatterns)
		require.NoError(t, err)
		require.Len(t, files, 1)
		assert.Equal(t, Deduced, files[0].Account)
	})

	assert.Equal(t, "deduced", Deduced.String())
	assert.Equal(t, "play_by_play", PlayByPlay.String())
}

func TestDiscoverSingleFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.txt")
	writeFile(t, path, []byte(body))

	files, err := Discover(path, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, path, files[0].Path)
}

func TestDiscoverErrors(t *testing.T) {
	_, err := Discover(filepath.Join(t.TempDir(), "missing"), nil)
	assert.ErrorIs(t, err, ErrInputNotFound)

	_, err = Discover(t.TempDir(), nil)
	assert.ErrorIs(t, err, ErrNoInputFiles)

	_, err = Discover(t.TempDir(), []string{"[bad"})
	assert.Error(t, err)
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"2024NYA.EVA", true},
		{"2024nya.evn", true},
		{"2024NYA.EVA.gz", true},
		{"2024NYA.EVA.zst", true},
		{"2024NYA.EVA.bz2", false},
		{"2024NYA.ROS", false},
		{"TEAM2024", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Matches(tt.name, DefaultPatterns))
		})
	}
}

func TestReadAll(t *testing.T) {
	dir := t.TempDir()
	cases := map[string][]byte{
		"plain.EVN":   []byte(body),
		"gz.EVN.gz":   gzipped(t, body),
		"zst.EVN.zst": zstded(t, body),
		// compression is sniffed, not taken from the name
		"misnamed.EVN": gzipped(t, body),
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			writeFile(t, path, data)
			got, err := File{Path: path}.ReadAll(context.Background())
			require.NoError(t, err)
			assert.Equal(t, body, string(got))
		})
	}
}

func TestReadAllErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := File{Path: filepath.Join(dir, "gone.EVN")}.ReadAll(context.Background())
	require.Error(t, err)
	assert.True(t, IsFileIOError(err))

	corrupt := filepath.Join(dir, "corrupt.EVN.gz")
	writeFile(t, corrupt, []byte{0x1f, 0x8b, 0x00, 0x01, 0x02})
	_, err = File{Path: corrupt}.ReadAll(context.Background())
	require.Error(t, err)
	var fe *FileIOError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "decompress", fe.Op)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = File{Path: corrupt}.ReadAll(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
