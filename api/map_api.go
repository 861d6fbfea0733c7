package api

import (
	"os"
	"strings"

	"go.uber.org/zap"

	cerr "github.com/saeidalz13/battleship-duel/internal/error"
	mb "github.com/saeidalz13/battleship-duel/models/battleship"
)

type MapSource interface {
	LoadOrGenerateMap() (string, error)
}

// FileOrRandomMapSource reads the fleet from a map file when a path is
// set and falls back to a generated fleet when that fails.
type FileOrRandomMapSource struct {
	path      string
	generator *mb.FleetGenerator
	logger    *zap.Logger
}

var _ MapSource = (*FileOrRandomMapSource)(nil)

func NewFileOrRandomMapSource(path string, generator *mb.FleetGenerator, logger *zap.Logger) *FileOrRandomMapSource {
	if generator == nil {
		generator = mb.NewFleetGenerator(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &FileOrRandomMapSource{path: path, generator: generator, logger: logger}
}

func (s *FileOrRandomMapSource) LoadOrGenerateMap() (string, error) {
	if s.path != "" {
		encoding, err := LoadMapFile(s.path)
		if err == nil {
			s.logger.Info("map loaded from file", zap.String("path", s.path))
			return encoding, nil
		}
		s.logger.Warn(cerr.ConstErrMapLoadFailed, zap.String("path", s.path), zap.Error(err))
	}

	encoding, err := s.generator.Generate()
	if err != nil {
		return "", err
	}
	s.logger.Info("random map generated")
	return encoding, nil
}

// LoadMapFile reads a grid encoding that may be split over several
// lines. Only the first 100 characters are used and they must describe
// a valid fleet.
func LoadMapFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	encoding := strings.NewReplacer("\n", "", "\r", "").Replace(strings.TrimSpace(string(data)))
	if len(encoding) < mb.GridEncodingLength {
		return "", cerr.ErrInvalidGridEncoding(len(encoding))
	}
	encoding = encoding[:mb.GridEncodingLength]

	grid, err := mb.DecodeGrid(encoding)
	if err != nil {
		return "", err
	}
	if err := mb.ValidateFleet(grid); err != nil {
		return "", err
	}
	return encoding, nil
}
