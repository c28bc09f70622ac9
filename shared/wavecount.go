package shared

// LevelKind represents the type of a Fibonacci level.
type LevelKind int

const (
	Retracement LevelKind = iota
	Extension
)

// String stringifies the provided level kind.
func (l *LevelKind) String() string {
	switch *l {
	case Retracement:
		return "retracement"
	case Extension:
		return "extension"
	default:
		return "unknown"
	}
}

// FibLevel represents a derived Fibonacci price level.
type FibLevel struct {
	Level float64   `json:"level"`
	Price float64   `json:"price"`
	Label string    `json:"label"`
	Kind  LevelKind `json:"-"`
}

// WaveLabel ties a wave name to the pivot terminating it.
type WaveLabel struct {
	Index int    `json:"index"`
	Wave  string `json:"wave"`
}

// Invalidation describes the price beyond which a wave count's defining
// structure is contradicted.
type Invalidation struct {
	Price  float64 `json:"price"`
	Reason string  `json:"reason"`
}

// WaveCount is a labeled, scored structural interpretation of a price path.
type WaveCount struct {
	Labels          []WaveLabel  `json:"labels"`
	FibRetracements []FibLevel   `json:"fib_retracements"`
	FibExtensions   []FibLevel   `json:"fib_extensions"`
	Invalidation    Invalidation `json:"invalidation"`
	Score           float64      `json:"score"`
	Summary         string       `json:"summary"`
}

// Empty reports whether the wave count carries no labeled pattern.
func (w *WaveCount) Empty() bool {
	return len(w.Labels) == 0
}

// AnalysisResult is the final, immutable output of one analysis run.
type AnalysisResult struct {
	Primary   WaveCount `json:"primary"`
	Alternate WaveCount `json:"alternate"`
	Pivots    []Pivot   `json:"pivots"`
}
