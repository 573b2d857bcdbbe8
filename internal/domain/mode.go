package domain

import "strings"

// Mode is the display form of a scenario category, e.g. "Crisis Olympics".
type Mode string

// GameType is the slug stored on a game session, e.g. "crisis-olympics".
type GameType string

// LeaderboardMode is the bucket label a score contributes to, e.g. "Crisis-Olympics".
type LeaderboardMode string

const (
	ModeSinglePlayer Mode = "Single-Player Strategy"
	ModeMultiplayer  Mode = "Multiplayer Challenge"
	ModeAIvsHuman    Mode = "AI vs. Human Battle"
	ModeRealWorld    Mode = "Real-World Simulation"
	ModePolicy       Mode = "Policy & Governance"
	ModeOlympics     Mode = "Crisis Olympics"
)

const (
	GameTypeSinglePlayer GameType = "single-player"
	GameTypeMultiplayer  GameType = "multiplayer"
	GameTypeAIvsHuman    GameType = "ai-vs-human"
	GameTypeRealWorld    GameType = "real-world-crisis"
	GameTypePolicy       GameType = "policy-governance"
	GameTypeOlympics     GameType = "crisis-olympics"
)

const (
	LeaderboardSinglePlayer LeaderboardMode = "Single-Player"
	LeaderboardMultiplayer  LeaderboardMode = "Multiplayer"
	LeaderboardAIvsHuman    LeaderboardMode = "AI-vs-Human"
	LeaderboardRealWorld    LeaderboardMode = "Real-World-Crisis"
	LeaderboardPolicy       LeaderboardMode = "Policy-Governance"
	LeaderboardOlympics     LeaderboardMode = "Crisis-Olympics"
)

type modeForms struct {
	mode     Mode
	gameType GameType
	label    LeaderboardMode
}

// modeTable is the single source of truth for the three vocabularies.
var modeTable = []modeForms{
	{ModeSinglePlayer, GameTypeSinglePlayer, LeaderboardSinglePlayer},
	{ModeMultiplayer, GameTypeMultiplayer, LeaderboardMultiplayer},
	{ModeAIvsHuman, GameTypeAIvsHuman, LeaderboardAIvsHuman},
	{ModeRealWorld, GameTypeRealWorld, LeaderboardRealWorld},
	{ModePolicy, GameTypePolicy, LeaderboardPolicy},
	{ModeOlympics, GameTypeOlympics, LeaderboardOlympics},
}

// Modes returns every scenario mode in canonical order.
func Modes() []Mode {
	out := make([]Mode, 0, len(modeTable))
	for _, f := range modeTable {
		out = append(out, f.mode)
	}
	return out
}

// LeaderboardModes returns every leaderboard label in canonical order.
func LeaderboardModes() []LeaderboardMode {
	out := make([]LeaderboardMode, 0, len(modeTable))
	for _, f := range modeTable {
		out = append(out, f.label)
	}
	return out
}

// lookup matches any of the three spellings, case-insensitively.
func lookup(raw string) (modeForms, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return modeForms{}, false
	}
	for _, f := range modeTable {
		if strings.EqualFold(s, string(f.mode)) ||
			strings.EqualFold(s, string(f.gameType)) ||
			strings.EqualFold(s, string(f.label)) {
			return f, true
		}
	}
	return modeForms{}, false
}

// ParseMode resolves a display name, slug, or label to its Mode.
func ParseMode(raw string) (Mode, bool) {
	f, ok := lookup(raw)
	return f.mode, ok
}

// ParseLeaderboardMode resolves any spelling of a mode to its leaderboard label.
func ParseLeaderboardMode(raw string) (LeaderboardMode, bool) {
	f, ok := lookup(raw)
	return f.label, ok
}

// GameTypeFor normalises any spelling of a mode to a session slug.
// Unknown or empty input falls back to single-player.
func GameTypeFor(raw string) GameType {
	if f, ok := lookup(raw); ok {
		return f.gameType
	}
	return GameTypeSinglePlayer
}

// Valid reports whether m is one of the six scenario modes.
func (m Mode) Valid() bool {
	for _, f := range modeTable {
		if f.mode == m {
			return true
		}
	}
	return false
}

// GameType returns the session slug for m.
func (m Mode) GameType() GameType {
	for _, f := range modeTable {
		if f.mode == m {
			return f.gameType
		}
	}
	return GameTypeSinglePlayer
}

// LeaderboardMode returns the leaderboard label for m.
func (m Mode) LeaderboardMode() (LeaderboardMode, bool) {
	for _, f := range modeTable {
		if f.mode == m {
			return f.label, true
		}
	}
	return "", false
}

// Mode returns the scenario mode for a session slug.
func (g GameType) Mode() (Mode, bool) {
	for _, f := range modeTable {
		if f.gameType == g {
			return f.mode, true
		}
	}
	return "", false
}

// LeaderboardMode returns the leaderboard label for a session slug.
func (g GameType) LeaderboardMode() (LeaderboardMode, bool) {
	for _, f := range modeTable {
		if f.gameType == g {
			return f.label, true
		}
	}
	return "", false
}

// Valid reports whether l is one of the six canonical labels.
func (l LeaderboardMode) Valid() bool {
	for _, f := range modeTable {
		if f.label == l {
			return true
		}
	}
	return false
}

// Mode returns the scenario mode for a leaderboard label.
func (l LeaderboardMode) Mode() (Mode, bool) {
	for _, f := range modeTable {
		if f.label == l {
			return f.mode, true
		}
	}
	return "", false
}
