package config

import (
	"fmt"

	"dinoevo/internal/model"
)

// GroundHazardsEnabled reports whether cactus, rock and gap obstacles may spawn.
func (c Config) GroundHazardsEnabled() bool {
	return c.ActionEnabled(model.ActionJump)
}

// FlyerEnabled reports whether the lone pterodactyl may spawn.
func (c Config) FlyerEnabled() bool {
	return c.ActionEnabled(model.ActionBend) && c.ActionEnabled(model.ActionUnbend)
}

func (c Config) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"game_width", c.GameWidth},
		{"game_height", c.GameHeight},
		{"gravity", c.Gravity},
		{"dinosaur_width", c.DinosaurWidth},
		{"dinosaur_height", c.DinosaurHeight},
		{"cactus_width", c.CactusWidth},
		{"cactus_height", c.CactusHeight},
		{"rock_width", c.RockWidth},
		{"rock_height", c.RockHeight},
		{"pterodactyl_width", c.PterodactylWidth},
		{"pterodactyl_height", c.PterodactylHeight},
		{"hole_width", c.HoleWidth},
		{"hole_height", c.HoleHeight},
		{"neurone_width", c.NeuroneWidth},
		{"neurone_height", c.NeuroneHeight},
		{"min_obstacle_generation_time", c.MinObstacleGenerationTime},
		{"score_increase_speed_interval", c.ScoreIncreaseSpeedInterval},
		{"score_increase_obstacle_speed_interval", c.ScoreIncreaseObstacleSpeedInterval},
		{"min_obstacle_speed", c.MinObstacleSpeed},
	}
	for _, p := range positive {
		if p.value <= 0 {
			return fmt.Errorf("%s must be > 0, got %g", p.name, p.value)
		}
	}
	if c.GameFPS <= 0 {
		return fmt.Errorf("game_fps must be > 0, got %d", c.GameFPS)
	}
	if c.DinosaurJumpVelocity < 0 || c.ObstacleGenerationTimeDecreaseSpeed < 0 || c.ObstacleIncreaseSpeedStep < 0 {
		return fmt.Errorf("velocities and staircase steps must be >= 0")
	}
	if c.MaxObstacleGenerationTime < c.MinObstacleGenerationTime {
		return fmt.Errorf("max_obstacle_generation_time %g < min_obstacle_generation_time %g", c.MaxObstacleGenerationTime, c.MinObstacleGenerationTime)
	}
	if c.MaxObstacleSpeed < c.MinObstacleSpeed {
		return fmt.Errorf("max_obstacle_speed %g < min_obstacle_speed %g", c.MaxObstacleSpeed, c.MinObstacleSpeed)
	}
	if c.NeuroneWidth > c.GameWidth {
		return fmt.Errorf("neurone_width %g exceeds game_width %g", c.NeuroneWidth, c.GameWidth)
	}
	if c.HoleHeight+c.HoleSafeMargin+c.NeuroneHeight > c.GameHeight {
		return fmt.Errorf("neurones cannot fit between hole_safe_margin and game_height")
	}
	if c.NeuroneXMutationRange < 0 || c.NeuroneYMutationRange < 0 || c.HoleSafeMargin < 0 {
		return fmt.Errorf("mutation ranges and hole_safe_margin must be >= 0")
	}

	rates := []struct {
		name  string
		value float64
	}{
		{"neurone_change_condition_rate", c.NeuroneChangeConditionRate},
		{"neurone_change_polarity_rate", c.NeuroneChangePolarityRate},
		{"neurone_remove_rate", c.NeuroneRemoveRate},
		{"neurone_web_add_neurone_rate", c.NeuroneWebAddNeuroneRate},
		{"neurone_web_change_action_rate", c.NeuroneWebChangeActionRate},
		{"neurone_web_remove_rate", c.NeuroneWebRemoveRate},
		{"brain_add_web_rate", c.BrainAddWebRate},
	}
	for _, r := range rates {
		if r.value < 0 || r.value > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %g", r.name, r.value)
		}
	}

	if c.WebCreationNeuronesMin < 0 || c.WebCreationNeuronesMax < c.WebCreationNeuronesMin {
		return fmt.Errorf("invalid web creation bounds [%d, %d)", c.WebCreationNeuronesMin, c.WebCreationNeuronesMax)
	}
	if c.BrainCreationWebsMin < 0 || c.BrainCreationWebsMax < c.BrainCreationWebsMin {
		return fmt.Errorf("invalid brain creation bounds [%d, %d)", c.BrainCreationWebsMin, c.BrainCreationWebsMax)
	}

	if len(c.Actions) == 0 {
		return fmt.Errorf("actions must not be empty")
	}
	seen := make(map[model.Action]bool, len(c.Actions))
	for _, a := range c.Actions {
		parsed, err := model.ParseAction(string(a))
		if err != nil {
			return err
		}
		if parsed != a {
			return fmt.Errorf("action %q must be spelled %q", a, parsed)
		}
		if seen[a] {
			return fmt.Errorf("duplicate action %q", a)
		}
		seen[a] = true
	}
	if !c.GroundHazardsEnabled() && !c.FlyerEnabled() {
		return fmt.Errorf("actions %v enable no obstacle archetype", c.Actions)
	}

	if c.LandSeedRegenerateInterval < 0 {
		return fmt.Errorf("land_seed_regenerate_interval must be >= 0")
	}
	if c.LandSeedRegenerateInterval > 0 && c.LandSeedLength <= 0 {
		return fmt.Errorf("land_seed_length must be > 0 when reseeding")
	}
	if c.PopulationSize <= 0 {
		return fmt.Errorf("population_size must be > 0")
	}
	if c.MaxScore == 0 {
		return fmt.Errorf("max_score must be > 0")
	}
	if c.CheckpointInterval <= 0 {
		return fmt.Errorf("checkpoint_interval must be > 0")
	}
	return nil
}
