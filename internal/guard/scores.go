package guard

import (
	"time"

	"github.com/st3v3nmw/focusguard/internal/tracker"
	"github.com/st3v3nmw/focusguard/pkg/threadsafe"
)

type ScoreSnapshot struct {
	Score     float64 `json:"score"`
	RawScore  float64 `json:"rawScore"`
	Timestamp int64   `json:"timestamp"`
}

// Scores holds the latest score per open tab.
type Scores struct {
	tabs *threadsafe.Map[tracker.TabID, ScoreSnapshot]
}

func NewScores() *Scores {
	return &Scores{tabs: threadsafe.NewMap[tracker.TabID, ScoreSnapshot]()}
}

func (s *Scores) Report(tab tracker.TabID, score, rawScore float64, at time.Time) ScoreSnapshot {
	snapshot := ScoreSnapshot{Score: score, RawScore: rawScore, Timestamp: at.UnixMilli()}
	s.tabs.Set(tab, snapshot)
	return snapshot
}

func (s *Scores) Current(tab tracker.TabID) (ScoreSnapshot, bool) {
	return s.tabs.Get(tab)
}

// Forget drops the snapshot of a closed tab.
func (s *Scores) Forget(tab tracker.TabID) {
	s.tabs.Delete(tab)
}

func (s *Scores) Len() int {
	return s.tabs.Len()
}
