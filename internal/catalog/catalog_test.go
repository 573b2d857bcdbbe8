package catalog

import "testing"

func TestScenariosCoverEveryMode(t *testing.T) {
	seen := map[string]bool{}
	modes := map[string]bool{}
	for _, s := range Scenarios() {
		if seen[s.ID] {
			t.Fatalf("duplicate id %s", s.ID)
		}
		seen[s.ID] = true
		if !s.Mode.Valid() {
			t.Fatalf("scenario %s has invalid mode %q", s.ID, s.Mode)
		}
		if s.ID != string(s.Mode.GameType()) {
			t.Fatalf("scenario id %s should match its game type %s", s.ID, s.Mode.GameType())
		}
		modes[string(s.Mode)] = true
		if s.Context == "" || s.Title == "" {
			t.Fatalf("scenario %s incomplete", s.ID)
		}
	}
	if len(modes) != 6 {
		t.Fatalf("expected six modes, got %d", len(modes))
	}
}
