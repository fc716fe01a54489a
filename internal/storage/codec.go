package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"dinoevo/internal/config"
	"dinoevo/internal/model"
)

const (
	CurrentSchemaVersion = 1
	CurrentCodecVersion  = 1
)

var (
	ErrVersionMismatch   = errors.New("record version mismatch")
	ErrCheckpointCorrupt = errors.New("checkpoint corrupt or unreadable")
)

func EncodeCheckpoint(cp model.Checkpoint) ([]byte, error) {
	return json.Marshal(cp)
}

func DecodeCheckpoint(data []byte) (model.Checkpoint, error) {
	var cp model.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return model.Checkpoint{}, fmt.Errorf("%w: %v", ErrCheckpointCorrupt, err)
	}
	if len(cp.Brains) == 0 {
		return model.Checkpoint{}, fmt.Errorf("%w: no brains", ErrCheckpointCorrupt)
	}
	if len(cp.RNG) == 0 {
		return model.Checkpoint{}, fmt.Errorf("%w: missing rng state", ErrCheckpointCorrupt)
	}
	return cp, nil
}

func EncodeParams(cfg config.Config) ([]byte, error) {
	return cfg.Canonical()
}

// DecodeParams rejects unknown fields so a params file from another build
// cannot be silently accepted.
func DecodeParams(data []byte) (config.Config, error) {
	var cfg config.Config
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return config.Config{}, fmt.Errorf("%w: params: %v", ErrCheckpointCorrupt, err)
	}
	return cfg, nil
}

func EncodeRunInfo(info model.RunInfo) ([]byte, error) {
	return json.MarshalIndent(info, "", "  ")
}

func DecodeRunInfo(data []byte) (model.RunInfo, error) {
	var info model.RunInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return model.RunInfo{}, fmt.Errorf("%w: run info: %v", ErrCheckpointCorrupt, err)
	}
	if err := checkVersion(info.VersionedRecord); err != nil {
		return model.RunInfo{}, err
	}
	return info, nil
}

func EncodeGenerationDiagnostics(diagnostics []model.GenerationDiagnostics) ([]byte, error) {
	return json.MarshalIndent(diagnostics, "", "  ")
}

func DecodeGenerationDiagnostics(data []byte) ([]model.GenerationDiagnostics, error) {
	var diagnostics []model.GenerationDiagnostics
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, fmt.Errorf("%w: diagnostics: %v", ErrCheckpointCorrupt, err)
	}
	return diagnostics, nil
}

func NewRunInfo(id, createdAtUTC string) model.RunInfo {
	return model.RunInfo{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              id,
		CreatedAtUTC:    createdAtUTC,
	}
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != CurrentSchemaVersion || v.CodecVersion != CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
