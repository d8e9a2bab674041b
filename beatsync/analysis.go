package beatsync

import (
	"sort"

	"github.com/samber/lo"
)

// Beat timestamps are seconds from track start
type Beat struct {
	Start      float64 `json:"start"`
	Duration   float64 `json:"duration"`
	Confidence float64 `json:"confidence"`
}

type Tatum struct {
	Start      float64 `json:"start"`
	Duration   float64 `json:"duration"`
	Confidence float64 `json:"confidence"`
}

type Segment struct {
	Start           float64 `json:"start"`
	Duration        float64 `json:"duration"`
	LoudnessStart   float64 `json:"loudness_start"`
	LoudnessMax     float64 `json:"loudness_max"`
	LoudnessMaxTime float64 `json:"loudness_max_time"`
	LoudnessEnd     float64 `json:"loudness_end"`
}

// Section key is a pitch class 0..11, -1 when no key was detected
type Section struct {
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
	Loudness float64 `json:"loudness"`
	Tempo    float64 `json:"tempo"`
	Key      int     `json:"key"`
}

// Analysis is immutable once fetched for a track
type Analysis struct {
	Beats    []Beat    `json:"beats"`
	Tatums   []Tatum   `json:"tatums"`
	Segments []Segment `json:"segments"`
	Sections []Section `json:"sections"`
}

// Playback is one poll result, nil when nothing is playing
type Playback struct {
	TrackID    string
	Name       string
	Artist     string
	ProgressMs int64
	DurationMs int64
	IsPlaying  bool
}

// FilterBeats keeps beats strictly above minConfidence
func FilterBeats(beats []Beat, minConfidence float64) []Beat {
	return lo.Filter(beats, func(b Beat, _ int) bool {
		return b.Confidence > minConfidence
	})
}

// FilterTatums keeps tatums strictly above minConfidence
func FilterTatums(tatums []Tatum, minConfidence float64) []Tatum {
	return lo.Filter(tatums, func(t Tatum, _ int) bool {
		return t.Confidence > minConfidence
	})
}

// sorted returns a by-start sorted copy, payloads are documented sorted but not trusted
func (a *Analysis) sorted() *Analysis {
	out := &Analysis{
		Beats:    append([]Beat(nil), a.Beats...),
		Tatums:   append([]Tatum(nil), a.Tatums...),
		Segments: append([]Segment(nil), a.Segments...),
		Sections: append([]Section(nil), a.Sections...),
	}
	sort.SliceStable(out.Beats, func(i, j int) bool { return out.Beats[i].Start < out.Beats[j].Start })
	sort.SliceStable(out.Tatums, func(i, j int) bool { return out.Tatums[i].Start < out.Tatums[j].Start })
	sort.SliceStable(out.Segments, func(i, j int) bool { return out.Segments[i].Start < out.Segments[j].Start })
	sort.SliceStable(out.Sections, func(i, j int) bool { return out.Sections[i].Start < out.Sections[j].Start })
	return out
}
