package api

import (
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cerr "github.com/saeidalz13/battleship-duel/internal/error"
	mb "github.com/saeidalz13/battleship-duel/models/battleship"
)

func writeMapFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "map.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func splitRows(encoding, sep string) string {
	rows := make([]string, 0, mb.GridSize)
	for i := 0; i < mb.GridEncodingLength; i += mb.GridSize {
		rows = append(rows, encoding[i:i+mb.GridSize])
	}
	return strings.Join(rows, sep)
}

func TestLoadMapFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{name: "single line", content: testFleetEncoding},
		{name: "ten lines", content: splitRows(testFleetEncoding, "\n") + "\n"},
		{name: "crlf lines", content: splitRows(testFleetEncoding, "\r\n")},
		{name: "trailing characters", content: testFleetEncoding + "\nnot part of the map"},
		{name: "too short", content: testFleetEncoding[:90], wantErr: true},
		{name: "invalid character", content: "X" + testFleetEncoding[1:], wantErr: true},
		{name: "invalid fleet", content: testLoneShipEncoding, wantErr: true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			encoding, err := LoadMapFile(writeMapFile(t, test.content))
			if test.wantErr {
				if err == nil {
					t.Fatalf("expected error, got encoding: %s", encoding)
				}
				return
			}

			if err != nil {
				t.Fatal(err)
			}
			if encoding != testFleetEncoding {
				t.Fatalf("expected encoding:\n%s\ngot:\n%s", testFleetEncoding, encoding)
			}
		})
	}
}

func TestLoadMapFileMissing(t *testing.T) {
	_, err := LoadMapFile(filepath.Join(t.TempDir(), "missing.txt"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected error: %v\tgot: %v", os.ErrNotExist, err)
	}
}

func TestFileOrRandomMapSource(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		fromFile bool
	}{
		{name: "valid file", path: writeMapFile(t, testFleetEncoding), fromFile: true},
		{name: "no path", path: ""},
		{name: "missing file", path: filepath.Join(t.TempDir(), "missing.txt")},
		{name: "invalid file", path: writeMapFile(t, testLoneShipEncoding)},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			source := NewFileOrRandomMapSource(test.path, mb.NewFleetGenerator(rand.New(rand.NewSource(7))), nil)

			encoding, err := source.LoadOrGenerateMap()
			if err != nil {
				t.Fatal(err)
			}
			if test.fromFile != (encoding == testFleetEncoding) {
				t.Fatalf("expected map from file: %t, got: %s", test.fromFile, encoding)
			}

			grid, err := mb.DecodeGrid(encoding)
			if err != nil {
				t.Fatal(err)
			}
			if err := mb.ValidateFleet(grid); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestFileOrRandomMapSourceGenerationFailure(t *testing.T) {
	fg := mb.NewFleetGenerator(rand.New(rand.NewSource(7)))
	fg.MaxShipAttempts = 0
	fg.MaxGridAttempts = 2

	_, err := NewFileOrRandomMapSource("", fg, nil).LoadOrGenerateMap()
	if !errors.Is(err, cerr.ErrFleetGenerationFailed) {
		t.Fatalf("expected error: %v\tgot: %v", cerr.ErrFleetGenerationFailed, err)
	}
}
