// Package model defines the canonical match record every codstats component
// consumes, the raw shapes it is built from, and the fixed vocabularies
// (ranked modes, ranked maps, metric names) shared across packages.
package model

import (
	"strings"
	"time"
)

// Outcome is the tri-state result of a match.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeWin
	OutcomeLoss
)

func (o Outcome) String() string {
	switch o {
	case OutcomeWin:
		return "win"
	case OutcomeLoss:
		return "loss"
	default:
		return "unknown"
	}
}

// MarshalText encodes Unknown as the empty string so cached records keep the
// distinction between "no outcome" and "loss".
func (o Outcome) MarshalText() ([]byte, error) {
	if o == OutcomeUnknown {
		return []byte{}, nil
	}
	return []byte(o.String()), nil
}

func (o *Outcome) UnmarshalText(b []byte) error {
	*o = ParseOutcome(string(b))
	return nil
}

// ParseOutcome classifies a raw match-outcome string. Only "win" (any case) is
// a win; empty input, "draw", "tie" and "unknown" are unknown; anything else is
// a loss. Draw-like values are deliberately Unknown rather than Loss so they
// stay out of win rates.
func ParseOutcome(raw string) Outcome {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "":
		return OutcomeUnknown
	case "win":
		return OutcomeWin
	case "draw", "tie", "unknown":
		return OutcomeUnknown
	default:
		return OutcomeLoss
	}
}

// Source tags which ingestion path produced a record.
type Source int

const (
	SourceAPI Source = iota
	SourceCSV
	SourceUpload
)

func (s Source) String() string {
	switch s {
	case SourceAPI:
		return "api"
	case SourceCSV:
		return "csv"
	case SourceUpload:
		return "upload"
	default:
		return "?"
	}
}

// RankedModes is the closed set of game types treated as ranked.
var RankedModes = []string{"Hardpoint", "Search and Destroy", "Control"}

// RankedMaps is the ranked map pool used by the veto guide and win-rate grid.
var RankedMaps = []string{"Vault", "Rewind", "Protocol", "Hacienda", "Skyline", "Red Card", "Dealership"}

// MainModes are the game modes shown in the map x mode win-rate grid.
var MainModes = []string{
	"Control", "Domination", "FFA", "Hardpoint", "Search and Destroy",
	"Search & Destroy", "S&D", "SnD", "Team Deathmatch", "Kill Confirmed",
}

// IsRankedMode reports whether gameType is one of RankedModes.
func IsRankedMode(gameType string) bool {
	return contains(RankedModes, gameType)
}

// IsRankedMap reports whether m is one of RankedMaps.
func IsRankedMap(m string) bool {
	return contains(RankedMaps, m)
}

func contains(set []string, s string) bool {
	for _, v := range set {
		if v == s {
			return true
		}
	}
	return false
}

// CanonicalMatch is the normalized record. It is built once per raw record
// and never mutated afterwards; views hold pointers into the published slice.
//
// Numeric fields are pointers: nil means the source did not provide the value,
// which is distinct from zero (headshot % in particular).
type CanonicalMatch struct {
	Timestamp            time.Time `json:"timestamp"`
	TimestampSynthesized bool      `json:"timestampSynthesized,omitempty"`
	Source               Source    `json:"source"`

	GameType     string `json:"gameType"`
	Map          string `json:"map"`
	Team         string `json:"team,omitempty"`
	Operator     string `json:"operator,omitempty"`
	OperatorSkin string `json:"operatorSkin,omitempty"`

	Outcome         Outcome `json:"outcome"`
	MatchOutcomeRaw string  `json:"matchOutcomeRaw,omitempty"`
	Ranked          bool    `json:"isRanked"`

	Skill       *float64 `json:"skill,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	Kills       *float64 `json:"kills,omitempty"`
	Deaths      *float64 `json:"deaths,omitempty"`
	Assists     *float64 `json:"assists,omitempty"`
	Headshots   *float64 `json:"headshots,omitempty"`
	Shots       *float64 `json:"shots,omitempty"`
	Hits        *float64 `json:"hits,omitempty"`
	DamageDone  *float64 `json:"damageDone,omitempty"`
	DamageTaken *float64 `json:"damageTaken,omitempty"`

	KDRatio     *float64 `json:"kdRatio,omitempty"`
	EKIA        *float64 `json:"ekia,omitempty"`
	EKIAOverD   *float64 `json:"ekiaOverD,omitempty"`
	HeadshotPct *float64 `json:"headshotPct,omitempty"`
	AccuracyPct *float64 `json:"accuracyPct,omitempty"`

	TotalXP     *float64 `json:"totalXp,omitempty"`
	ScoreXP     *float64 `json:"scoreXp,omitempty"`
	ChallengeXP *float64 `json:"challengeXp,omitempty"`
	MatchXP     *float64 `json:"matchXp,omitempty"`
	MedalXP     *float64 `json:"medalXp,omitempty"`

	PctTimeMoving *float64 `json:"pctTimeMoving,omitempty"`
}

// IsWin reports a decided win. Unknown outcomes are neither wins nor losses.
func (m *CanonicalMatch) IsWin() bool { return m.Outcome == OutcomeWin }

// IsLoss reports a decided loss.
func (m *CanonicalMatch) IsLoss() bool { return m.Outcome == OutcomeLoss }

// Float returns a pointer to v, for building records.
func Float(v float64) *float64 { return &v }

// Value dereferences p, returning 0 for nil.
func Value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Refs returns pointers into ms without copying the records.
func Refs(ms []CanonicalMatch) []*CanonicalMatch {
	out := make([]*CanonicalMatch, len(ms))
	for i := range ms {
		out[i] = &ms[i]
	}
	return out
}

// Selector values that are not literal game types or maps.
const (
	AllModes  = "all"
	RankedSel = "ranked"
	AllMaps   = "all"
)

// Query is the live selection driving every filtered view.
type Query struct {
	Gamemode string `json:"mode" validate:"required"`
	Map      string `json:"map" validate:"required"`
	Metric   string `json:"metric" validate:"required"`
}

// DefaultQuery selects everything and charts skill.
func DefaultQuery() Query {
	return Query{Gamemode: AllModes, Map: AllMaps, Metric: DefaultMetric}
}
