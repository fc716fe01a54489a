package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Rect is an axis-aligned box with its origin at the bottom-left corner.
// The y axis points up from the ground line.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"width"`
	H float64 `json:"height"`
}

// Overlaps reports a strict AABB overlap; touching edges do not count.
func (r Rect) Overlaps(o Rect) bool {
	return r.X < o.X+o.W && o.X < r.X+r.W &&
		r.Y < o.Y+o.H && o.Y < r.Y+r.H
}

func (r Rect) Center() (float64, float64) {
	return r.X + r.W/2, r.Y + r.H/2
}

type Condition string

const (
	// ConditionClear fires when the sensor overlaps no obstacle.
	ConditionClear Condition = "clear"
	// ConditionCollide fires when the sensor overlaps at least one obstacle.
	ConditionCollide Condition = "collide"
)

type Polarity string

const (
	PolarityAssert Polarity = "assert"
	PolarityVeto   Polarity = "veto"
)

type Neurone struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Width     float64   `json:"width"`
	Height    float64   `json:"height"`
	Condition Condition `json:"condition"`
	Polarity  Polarity  `json:"polarity"`
}

func (n Neurone) Rect() Rect {
	return Rect{X: n.X, Y: n.Y, W: n.Width, H: n.Height}
}

type NeuroneWeb struct {
	Neurones []Neurone `json:"neurones"`
	Action   Action    `json:"action"`
}

type Brain struct {
	Webs []NeuroneWeb `json:"webs"`
}

// NeuroneCount returns the number of sensors across all webs.
func (b Brain) NeuroneCount() int {
	total := 0
	for _, web := range b.Webs {
		total += len(web.Neurones)
	}
	return total
}

// Checkpoint is the resumable state written after a generation is selected.
type Checkpoint struct {
	Brains   []Brain `json:"brains"`
	RNG      []byte  `json:"rng"`
	Score    uint64  `json:"score"`
	LandSeed string  `json:"land_seed,omitempty"`
}

type RunInfo struct {
	VersionedRecord
	ID             string `json:"id"`
	CreatedAtUTC   string `json:"created_at_utc"`
	LastGeneration int    `json:"last_generation"`
	BestScore      uint64 `json:"best_score"`
}

type GenerationDiagnostics struct {
	Generation int     `json:"generation"`
	BestScore  uint64  `json:"best_score"`
	BestEnergy float64 `json:"best_energy"`
	MeanScore  float64 `json:"mean_score"`
	MinScore   uint64  `json:"min_score"`
	Population int     `json:"population"`
	Evaluated  int     `json:"evaluated"`
	Failed     int     `json:"failed"`
	Survivors  int     `json:"survivors"`
	Diversity  int     `json:"fingerprint_diversity"`
	LandSeed   string  `json:"land_seed"`
	ElapsedMS  int64   `json:"elapsed_ms"`
	CPUPercent float64 `json:"cpu_percent,omitempty"`
}
