// Package input finds event files and reads them into memory.
//
// Files may be stored plain or compressed with gzip or zstd. Compression is
// detected from the leading magic bytes, not the file name.
package input

import (
	"bytes"
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Sentinel errors.
var (
	ErrInputNotFound = errors.New("input not found")
	ErrNoInputFiles  = errors.New("no input files")
)

// DefaultPatterns match regular-season event files of both cases.
var DefaultPatterns = []string{"*.EV?", "*.ev?"}

// DeducedPatterns match deduced play-by-play files of both cases.
var DeducedPatterns = []string{"*.ED?", "*.ed?"}

// Account is the kind of game account a file holds.
type Account uint8

const (
	// PlayByPlay files are conventional play-by-play accounts.
	PlayByPlay Account = iota
	// Deduced files hold accounts reconstructed from other sources. They
	// are read after PlayByPlay files.
	Deduced
)

func (a Account) String() string {
	if a == Deduced {
		return "deduced"
	}
	return "play_by_play"
}

// compressedSuffixes are stripped before a name is matched against patterns.
var compressedSuffixes = []string{".gz", ".zst"}

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// FileIOError reports a failure to read or decompress one file.
type FileIOError struct {
	Path string
	Op   string
	Err  error
}

func (e *FileIOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileIOError) Unwrap() error {
	return e.Err
}

// IsFileIOError reports whether err is or wraps a FileIOError.
func IsFileIOError(err error) bool {
	var fe *FileIOError
	return errors.As(err, &fe)
}

// File is one discovered input file.
type File struct {
	Path    string
	Size    int64
	Account Account
}

type patternSet struct {
	account  Account
	patterns []string
}

// Discover returns the input files under root. A root naming a file is
// returned as is, whatever its name. A directory is walked recursively and
// every file whose name matches one of patterns is returned. Results are
// sorted by path.
func Discover(root string, patterns []string) ([]File, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	return discover(root, []patternSet{{PlayByPlay, patterns}})
}

// DiscoverAccounts is Discover for both account types: play-by-play files
// match patterns, deduced files match deduced. Play-by-play files come
// first, each group sorted by path. A name matching both is play-by-play.
// A root naming a file is classified by its name. An empty deduced list
// reads no deduced files.
func DiscoverAccounts(root string, patterns, deduced []string) ([]File, error) {
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}
	sets := []patternSet{{PlayByPlay, patterns}}
	if len(deduced) > 0 {
		sets = append(sets, patternSet{Deduced, deduced})
	}
	return discover(root, sets)
}

func discover(root string, sets []patternSet) ([]File, error) {
	for _, set := range sets {
		for _, p := range set.patterns {
			if _, err := filepath.Match(p, ""); err != nil {
				return nil, fmt.Errorf("invalid pattern %q: %w", p, err)
			}
		}
	}
	classify := func(name string) (Account, bool) {
		for _, set := range sets {
			if Matches(name, set.patterns) {
				return set.account, true
			}
		}
		return PlayByPlay, false
	}

	info, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, root)
		}
		return nil, &FileIOError{Path: root, Op: "stat", Err: err}
	}
	if !info.IsDir() {
		account, _ := classify(filepath.Base(root))
		return []File{{Path: root, Size: info.Size(), Account: account}}, nil
	}

	var files []File
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		account, ok := classify(d.Name())
		if !ok {
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, File{Path: path, Size: fi.Size(), Account: account})
		return nil
	})
	if err != nil {
		return nil, &FileIOError{Path: root, Op: "walk", Err: err}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%w under %s", ErrNoInputFiles, root)
	}
	slices.SortFunc(files, func(a, b File) int {
		return cmp.Or(cmp.Compare(a.Account, b.Account), strings.Compare(a.Path, b.Path))
	})
	return files, nil
}

// Matches reports whether name matches any pattern once a compression
// suffix is removed.
func Matches(name string, patterns []string) bool {
	for _, suffix := range compressedSuffixes {
		if trimmed, ok := strings.CutSuffix(name, suffix); ok {
			name = trimmed
			break
		}
	}
	for _, p := range patterns {
		if ok, _ := filepath.Match(p, name); ok {
			return true
		}
	}
	return false
}

// ReadAll reads the whole file and decompresses it if needed.
func (f File) ReadAll(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, &FileIOError{Path: f.Path, Op: "read", Err: err}
	}
	out, err := Decompress(data)
	if err != nil {
		return nil, &FileIOError{Path: f.Path, Op: "decompress", Err: err}
	}
	return out, nil
}

// Decompress returns data unchanged unless it starts with a gzip or zstd
// header.
func Decompress(data []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(data, gzipMagic):
		zr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		out, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		return out, nil
	case bytes.HasPrefix(data, zstdMagic):
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("create zstd decoder: %w", err)
		}
		defer dec.Close()
		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd: %w", err)
		}
		return out, nil
	}
	return data, nil
}
