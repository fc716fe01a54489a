package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"dinoevo/internal/config"
	"dinoevo/internal/model"
)

const (
	paramsFileName      = "params.json"
	runInfoFileName     = "run.json"
	diagnosticsFileName = "diagnostics.json"
	checkpointPrefix    = "brain"
	checkpointSuffix    = ".json"
)

// FileStore keeps a run folder on disk: params.json, run.json,
// diagnostics.json and one brain<N>.json per checkpoint.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) Dir() string {
	return s.dir
}

func (s *FileStore) Init(_ context.Context) error {
	if s.dir == "" {
		return errors.New("run folder is required")
	}
	return os.MkdirAll(s.dir, 0o755)
}

func CheckpointFileName(generation int) string {
	return checkpointPrefix + strconv.Itoa(generation) + checkpointSuffix
}

func (s *FileStore) SaveParams(_ context.Context, cfg config.Config) error {
	data, err := EncodeParams(cfg)
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.dir, paramsFileName), data)
}

func (s *FileStore) GetParams(_ context.Context) (config.Config, bool, error) {
	data, ok, err := s.read(paramsFileName)
	if err != nil || !ok {
		return config.Config{}, ok, err
	}
	cfg, err := DecodeParams(data)
	if err != nil {
		return config.Config{}, false, fmt.Errorf("decode %s: %w", paramsFileName, err)
	}
	return cfg, true, nil
}

func (s *FileStore) SaveRunInfo(_ context.Context, info model.RunInfo) error {
	data, err := EncodeRunInfo(info)
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.dir, runInfoFileName), data)
}

func (s *FileStore) GetRunInfo(_ context.Context) (model.RunInfo, bool, error) {
	data, ok, err := s.read(runInfoFileName)
	if err != nil || !ok {
		return model.RunInfo{}, ok, err
	}
	info, err := DecodeRunInfo(data)
	if err != nil {
		return model.RunInfo{}, false, fmt.Errorf("decode %s: %w", runInfoFileName, err)
	}
	return info, true, nil
}

func (s *FileStore) SaveCheckpoint(_ context.Context, generation int, checkpoint model.Checkpoint) error {
	data, err := EncodeCheckpoint(checkpoint)
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.dir, CheckpointFileName(generation)), data)
}

func (s *FileStore) GetCheckpoint(_ context.Context, generation int) (model.Checkpoint, bool, error) {
	name := CheckpointFileName(generation)
	data, ok, err := s.read(name)
	if err != nil || !ok {
		return model.Checkpoint{}, ok, err
	}
	checkpoint, err := DecodeCheckpoint(data)
	if err != nil {
		return model.Checkpoint{}, false, fmt.Errorf("decode %s: %w", name, err)
	}
	return checkpoint, true, nil
}

func (s *FileStore) ListCheckpoints(_ context.Context) ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]int, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasPrefix(name, checkpointPrefix) || !strings.HasSuffix(name, checkpointSuffix) {
			continue
		}
		generation, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, checkpointPrefix), checkpointSuffix))
		if err != nil || generation < 0 {
			continue
		}
		out = append(out, generation)
	}
	sort.Ints(out)
	return out, nil
}

func (s *FileStore) SaveGenerationDiagnostics(_ context.Context, diagnostics []model.GenerationDiagnostics) error {
	data, err := EncodeGenerationDiagnostics(diagnostics)
	if err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.dir, diagnosticsFileName), data)
}

func (s *FileStore) GetGenerationDiagnostics(_ context.Context) ([]model.GenerationDiagnostics, bool, error) {
	data, ok, err := s.read(diagnosticsFileName)
	if err != nil || !ok {
		return nil, ok, err
	}
	diagnostics, err := DecodeGenerationDiagnostics(data)
	if err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", diagnosticsFileName, err)
	}
	return diagnostics, true, nil
}

func (s *FileStore) read(name string) ([]byte, bool, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("%w: read %s: %v", ErrCheckpointCorrupt, name, err)
	}
	return data, true, nil
}

// writeFileAtomic writes to a temp file in the same folder and renames it into place.
func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return nil
}
