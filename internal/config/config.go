package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"

	"dinoevo/internal/model"
)

// ErrMismatch reports a resumed run whose stored parameters differ from the active ones.
var ErrMismatch = errors.New("configuration mismatch")

// Config is the immutable parameter record shared by every simulation and the trainer.
type Config struct {
	GameWidth  float64 `json:"game_width" toml:"game_width" yaml:"game_width"`
	GameHeight float64 `json:"game_height" toml:"game_height" yaml:"game_height"`
	GameFPS    int     `json:"game_fps" toml:"game_fps" yaml:"game_fps"`

	Gravity              float64 `json:"gravity" toml:"gravity" yaml:"gravity"`
	DinosaurX            float64 `json:"dinosaur_x" toml:"dinosaur_x" yaml:"dinosaur_x"`
	DinosaurWidth        float64 `json:"dinosaur_width" toml:"dinosaur_width" yaml:"dinosaur_width"`
	DinosaurHeight       float64 `json:"dinosaur_height" toml:"dinosaur_height" yaml:"dinosaur_height"`
	DinosaurJumpVelocity float64 `json:"dinosaur_jump_velocity" toml:"dinosaur_jump_velocity" yaml:"dinosaur_jump_velocity"`

	CactusWidth               float64 `json:"cactus_width" toml:"cactus_width" yaml:"cactus_width"`
	CactusHeight              float64 `json:"cactus_height" toml:"cactus_height" yaml:"cactus_height"`
	RockWidth                 float64 `json:"rock_width" toml:"rock_width" yaml:"rock_width"`
	RockHeight                float64 `json:"rock_height" toml:"rock_height" yaml:"rock_height"`
	PterodactylWidth          float64 `json:"pterodactyl_width" toml:"pterodactyl_width" yaml:"pterodactyl_width"`
	PterodactylHeight         float64 `json:"pterodactyl_height" toml:"pterodactyl_height" yaml:"pterodactyl_height"`
	PterodactylFlyHeight      float64 `json:"pterodactyl_fly_height" toml:"pterodactyl_fly_height" yaml:"pterodactyl_fly_height"`
	PterodactylWithRockHeight float64 `json:"pterodactyl_with_rock_height" toml:"pterodactyl_with_rock_height" yaml:"pterodactyl_with_rock_height"`
	PterodactylOffsetWithRock float64 `json:"pterodactyl_offset_with_rock" toml:"pterodactyl_offset_with_rock" yaml:"pterodactyl_offset_with_rock"`
	HoleWidth                 float64 `json:"hole_width" toml:"hole_width" yaml:"hole_width"`
	HoleHeight                float64 `json:"hole_height" toml:"hole_height" yaml:"hole_height"`

	MinObstacleGenerationTime           float64 `json:"min_obstacle_generation_time" toml:"min_obstacle_generation_time" yaml:"min_obstacle_generation_time"`
	MaxObstacleGenerationTime           float64 `json:"max_obstacle_generation_time" toml:"max_obstacle_generation_time" yaml:"max_obstacle_generation_time"`
	ObstacleGenerationTimeDecreaseSpeed float64 `json:"obstacle_generation_time_decrease_speed" toml:"obstacle_generation_time_decrease_speed" yaml:"obstacle_generation_time_decrease_speed"`
	ScoreIncreaseSpeedInterval          float64 `json:"score_increase_speed_interval" toml:"score_increase_speed_interval" yaml:"score_increase_speed_interval"`
	MinObstacleSpeed                    float64 `json:"min_obstacle_speed" toml:"min_obstacle_speed" yaml:"min_obstacle_speed"`
	MaxObstacleSpeed                    float64 `json:"max_obstacle_speed" toml:"max_obstacle_speed" yaml:"max_obstacle_speed"`
	ObstacleIncreaseSpeedStep           float64 `json:"obstacle_increase_speed_step" toml:"obstacle_increase_speed_step" yaml:"obstacle_increase_speed_step"`
	ScoreIncreaseObstacleSpeedInterval  float64 `json:"score_increase_obstacle_speed_interval" toml:"score_increase_obstacle_speed_interval" yaml:"score_increase_obstacle_speed_interval"`

	LandSeed                   string `json:"land_seed" toml:"land_seed" yaml:"land_seed"`
	LandSeedRegenerateInterval int    `json:"land_seed_regenerate_interval" toml:"land_seed_regenerate_interval" yaml:"land_seed_regenerate_interval"`
	LandSeedLength             int    `json:"land_seed_length" toml:"land_seed_length" yaml:"land_seed_length"`
	BrainSeed                  string `json:"brain_seed" toml:"brain_seed" yaml:"brain_seed"`

	Actions []model.Action `json:"actions" toml:"actions" yaml:"actions"`

	NeuroneWidth               float64 `json:"neurone_width" toml:"neurone_width" yaml:"neurone_width"`
	NeuroneHeight              float64 `json:"neurone_height" toml:"neurone_height" yaml:"neurone_height"`
	HoleSafeMargin             float64 `json:"hole_safe_margin" toml:"hole_safe_margin" yaml:"hole_safe_margin"`
	NeuroneXMutationRange      float64 `json:"neurone_x_mutation_range" toml:"neurone_x_mutation_range" yaml:"neurone_x_mutation_range"`
	NeuroneYMutationRange      float64 `json:"neurone_y_mutation_range" toml:"neurone_y_mutation_range" yaml:"neurone_y_mutation_range"`
	NeuroneChangeConditionRate float64 `json:"neurone_change_condition_rate" toml:"neurone_change_condition_rate" yaml:"neurone_change_condition_rate"`
	NeuroneChangePolarityRate  float64 `json:"neurone_change_polarity_rate" toml:"neurone_change_polarity_rate" yaml:"neurone_change_polarity_rate"`
	NeuroneRemoveRate          float64 `json:"neurone_remove_rate" toml:"neurone_remove_rate" yaml:"neurone_remove_rate"`
	NeuroneWebAddNeuroneRate   float64 `json:"neurone_web_add_neurone_rate" toml:"neurone_web_add_neurone_rate" yaml:"neurone_web_add_neurone_rate"`
	NeuroneWebChangeActionRate float64 `json:"neurone_web_change_action_rate" toml:"neurone_web_change_action_rate" yaml:"neurone_web_change_action_rate"`
	NeuroneWebRemoveRate       float64 `json:"neurone_web_remove_rate" toml:"neurone_web_remove_rate" yaml:"neurone_web_remove_rate"`
	BrainAddWebRate            float64 `json:"brain_add_web_rate" toml:"brain_add_web_rate" yaml:"brain_add_web_rate"`

	WebCreationNeuronesMin int `json:"web_creation_neurones_min" toml:"web_creation_neurones_min" yaml:"web_creation_neurones_min"`
	WebCreationNeuronesMax int `json:"web_creation_neurones_max" toml:"web_creation_neurones_max" yaml:"web_creation_neurones_max"`
	BrainCreationWebsMin   int `json:"brain_creation_webs_min" toml:"brain_creation_webs_min" yaml:"brain_creation_webs_min"`
	BrainCreationWebsMax   int `json:"brain_creation_webs_max" toml:"brain_creation_webs_max" yaml:"brain_creation_webs_max"`

	NeuroneCostMult float64 `json:"neurone_cost_mult" toml:"neurone_cost_mult" yaml:"neurone_cost_mult"`
	NeuroneCostFlat float64 `json:"neurone_cost_flat" toml:"neurone_cost_flat" yaml:"neurone_cost_flat"`
	WebCostMult     float64 `json:"web_cost_mult" toml:"web_cost_mult" yaml:"web_cost_mult"`
	WebCostFlat     float64 `json:"web_cost_flat" toml:"web_cost_flat" yaml:"web_cost_flat"`

	PopulationSize     int    `json:"population_size" toml:"population_size" yaml:"population_size"`
	MaxElites          int    `json:"max_elites" toml:"max_elites" yaml:"max_elites"`
	MaxScore           uint64 `json:"max_score" toml:"max_score" yaml:"max_score"`
	CheckpointInterval int    `json:"checkpoint_interval" toml:"checkpoint_interval" yaml:"checkpoint_interval"`
}

func Default() Config {
	return Config{
		GameWidth:  1200,
		GameHeight: 300,
		GameFPS:    60,

		Gravity:              2000,
		DinosaurX:            50,
		DinosaurWidth:        40,
		DinosaurHeight:       100,
		DinosaurJumpVelocity: 800,

		CactusWidth:               40,
		CactusHeight:              80,
		RockWidth:                 40,
		RockHeight:                40,
		PterodactylWidth:          50,
		PterodactylHeight:         40,
		PterodactylFlyHeight:      50,
		PterodactylWithRockHeight: 180,
		PterodactylOffsetWithRock: 200,
		HoleWidth:                 60,
		HoleHeight:                10,

		MinObstacleGenerationTime:           1.5,
		MaxObstacleGenerationTime:           2.0,
		ObstacleGenerationTimeDecreaseSpeed: 0.1,
		ScoreIncreaseSpeedInterval:          20,
		MinObstacleSpeed:                    150,
		MaxObstacleSpeed:                    200,
		ObstacleIncreaseSpeedStep:           10,
		ScoreIncreaseObstacleSpeedInterval:  10,

		LandSeed:                   "42",
		LandSeedRegenerateInterval: 0,
		LandSeedLength:             16,
		BrainSeed:                  "42",

		Actions: []model.Action{model.ActionJump, model.ActionBend, model.ActionUnbend},

		NeuroneWidth:               20,
		NeuroneHeight:              20,
		HoleSafeMargin:             5,
		NeuroneXMutationRange:      50,
		NeuroneYMutationRange:      20,
		NeuroneChangeConditionRate: 0.05,
		NeuroneChangePolarityRate:  0.05,
		NeuroneRemoveRate:          0.05,
		NeuroneWebAddNeuroneRate:   0.1,
		NeuroneWebChangeActionRate: 0.05,
		NeuroneWebRemoveRate:       0.05,
		BrainAddWebRate:            0.1,

		WebCreationNeuronesMin: 1,
		WebCreationNeuronesMax: 5,
		BrainCreationWebsMin:   1,
		BrainCreationWebsMax:   4,

		NeuroneCostMult: 0.01,
		NeuroneCostFlat: 1,
		WebCostMult:     1,
		WebCostFlat:     1,

		PopulationSize:     100,
		MaxElites:          10,
		MaxScore:           100,
		CheckpointInterval: 10,
	}
}

// Clone returns a deep copy that shares no slices with c.
func (c Config) Clone() Config {
	var out Config
	if err := copier.CopyWithOption(&out, &c, copier.Option{DeepCopy: true}); err != nil {
		// copier only fails on mismatched kinds, which cannot happen for identical types.
		panic(fmt.Sprintf("clone config: %v", err))
	}
	return out
}

// Canonical returns the JSON encoding used for params files and compatibility checks.
func (c Config) Canonical() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Equal reports whether two configurations encode to identical bytes.
func Equal(a, b Config) (bool, error) {
	ab, err := a.Canonical()
	if err != nil {
		return false, err
	}
	bb, err := b.Canonical()
	if err != nil {
		return false, err
	}
	return bytes.Equal(ab, bb), nil
}

// CheckCompatible returns ErrMismatch naming the first differing field.
func CheckCompatible(stored, active Config) error {
	ok, err := Equal(stored, active)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMismatch, firstDifference(stored, active))
}

func firstDifference(a, b Config) string {
	var am, bm map[string]json.RawMessage
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	_ = json.Unmarshal(ab, &am)
	_ = json.Unmarshal(bb, &bm)
	for _, key := range fieldOrder() {
		if !bytes.Equal(am[key], bm[key]) {
			return fmt.Sprintf("%s stored=%s active=%s", key, am[key], bm[key])
		}
	}
	return "encoding differs"
}

// ActionEnabled reports whether the action is part of the configured action set.
func (c Config) ActionEnabled(a model.Action) bool {
	for _, item := range c.Actions {
		if item == a {
			return true
		}
	}
	return false
}

// SeedBytes copies the UTF-8 bytes of seed left-aligned into a zero-padded
// 32-byte array, truncating longer seeds.
func SeedBytes(seed string) [32]byte {
	var out [32]byte
	copy(out[:], seed)
	return out
}
