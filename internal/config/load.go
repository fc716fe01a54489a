package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"dinoevo/internal/model"
)

const envPrefix = "DINOEVO_"

// Load overlays the file at path on Default. The format is picked from the
// extension: .toml, .yaml/.yml or .json. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("decode toml config %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("decode yaml config %s: %w", path, err)
		}
	case ".json":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&cfg); err != nil {
			return Config{}, fmt.Errorf("decode json config %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("unsupported config extension %q", ext)
	}
	if err := normalizeActions(cfg.Actions); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// normalizeActions rewrites action names to their canonical spelling.
func normalizeActions(actions []model.Action) error {
	for i, a := range actions {
		parsed, err := model.ParseAction(string(a))
		if err != nil {
			return err
		}
		actions[i] = parsed
	}
	return nil
}

// ApplyEnv reads an optional dotenv file and applies DINOEVO_* overrides.
// A missing dotenv file is not an error; variables already set in the
// process environment win over the file.
func ApplyEnv(cfg Config, dotenv string) (Config, error) {
	if dotenv != "" {
		if err := godotenv.Load(dotenv); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load env file %s: %w", dotenv, err)
		}
	}
	out := cfg.Clone()
	if v, ok := os.LookupEnv(envPrefix + "BRAIN_SEED"); ok {
		out.BrainSeed = v
	}
	if v, ok := os.LookupEnv(envPrefix + "LAND_SEED"); ok {
		out.LandSeed = v
	}
	if v, ok := os.LookupEnv(envPrefix + "POPULATION_SIZE"); ok {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("parse %sPOPULATION_SIZE: %w", envPrefix, err)
		}
		out.PopulationSize = n
	}
	if v, ok := os.LookupEnv(envPrefix + "MAX_SCORE"); ok {
		n, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse %sMAX_SCORE: %w", envPrefix, err)
		}
		out.MaxScore = n
	}
	return out, nil
}

// Encode renders cfg in one of the supported file formats.
func Encode(cfg Config, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "json", "":
		data, err := cfg.Canonical()
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "toml":
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case "yaml", "yml":
		return yaml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// fieldOrder lists the json keys of Config in declaration order.
func fieldOrder() []string {
	t := reflect.TypeOf(Config{})
	keys := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "" || name == "-" {
			continue
		}
		keys = append(keys, name)
	}
	return keys
}
