package model

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Number is a JSON number that may also arrive as a numeric string or null.
// Set is false when the key was absent, null, or not numeric.
type Number struct {
	V   float64
	Set bool
}

func (n *Number) UnmarshalJSON(b []byte) error {
	*n = Number{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		b = []byte(strings.TrimSpace(s))
	}
	if v, err := strconv.ParseFloat(string(b), 64); err == nil {
		n.V, n.Set = v, true
	}
	return nil
}

// Ptr returns the value as an optional float.
func (n Number) Ptr() *float64 {
	if !n.Set {
		return nil
	}
	v := n.V
	return &v
}

// Text is a JSON scalar read as text. Numbers keep their literal form, which
// lets epoch timestamps flow through the same parser as ISO strings.
type Text struct {
	S   string
	Set bool
}

func (t *Text) UnmarshalJSON(b []byte) error {
	*t = Text{}
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		t.S, t.Set = s, true
		return nil
	}
	t.S, t.Set = string(b), true
	return nil
}

// Flag is a JSON boolean that tolerates 0/1 and "true"/"false".
type Flag struct {
	V   bool
	Set bool
}

func (f *Flag) UnmarshalJSON(b []byte) error {
	*f = Flag{}
	s := strings.Trim(strings.ToLower(string(bytes.TrimSpace(b))), `"`)
	switch s {
	case "true", "1":
		f.V, f.Set = true, true
	case "false", "0":
		f.Set = true
	}
	return nil
}

// RawAPIRecord is one element of the remote service's data array. The upload
// endpoint returns the same shape.
type RawAPIRecord struct {
	MatchStartTimestamp Text `json:"match_start_timestamp"`
	UTCTimestamp        Text `json:"utc_timestamp"`

	GameType     Text `json:"game_type"`
	Map          Text `json:"map"`
	Team         Text `json:"team"`
	MatchOutcome Text `json:"match_outcome"`
	Operator     Text `json:"operator"`
	OperatorSkin Text `json:"operator_skin"`
	IsRanked     Flag `json:"is_ranked"`

	Skill       Number `json:"skill"`
	Score       Number `json:"score"`
	Kills       Number `json:"kills"`
	Deaths      Number `json:"deaths"`
	Assists     Number `json:"assists"`
	Headshots   Number `json:"headshots"`
	Shots       Number `json:"shots"`
	Hits        Number `json:"hits"`
	DamageDone  Number `json:"damage_done"`
	DamageTaken Number `json:"damage_taken"`

	KDRatio            Number `json:"kd_ratio"`
	EKIA               Number `json:"ekia"`
	EKIADRatio         Number `json:"ekia_d_ratio"`
	HeadshotPercentage Number `json:"headshot_percentage"`
	AccuracyPercentage Number `json:"accuracy_percentage"`

	TotalXP     Number `json:"total_xp"`
	ScoreXP     Number `json:"score_xp"`
	ChallengeXP Number `json:"challenge_xp"`
	MatchXP     Number `json:"match_xp"`
	MedalXP     Number `json:"medal_xp"`

	PercentageOfTimeMoving Number `json:"percentage_of_time_moving"`
}

// CSV column names of the exported match history.
const (
	ColTimestamp    = "UTC Timestamp"
	ColGameType     = "Game Type"
	ColMap          = "Map"
	ColTeam         = "Team"
	ColMatchOutcome = "Match Outcome"
	ColOperator     = "Operator"
	ColOperatorSkin = "Operator Skin"
)

// RawCSVRow is one data row keyed by header name. Values are untrimmed strings.
type RawCSVRow map[string]string

// Lookup returns the trimmed value of col and whether the column exists.
func (r RawCSVRow) Lookup(col string) (string, bool) {
	v, ok := r[col]
	return strings.TrimSpace(v), ok
}
