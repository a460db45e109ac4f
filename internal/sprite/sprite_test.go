package sprite

import "testing"

func TestFinalNamePrecedence(t *testing.T) {
	tests := []struct {
		name      string
		user      string
		suggested string
		index     int
		want      string
	}{
		{"default", "", "", 3, "item_3"},
		{"suggestion", "", "health_potion", 0, "health_potion"},
		{"user wins", "my_potion", "health_potion", 0, "my_potion"},
		{"blank user falls through", "   ", "health_potion", 0, "health_potion"},
		{"path chars sanitized", "a/b\\c", "", 0, "a_b_c"},
		{"all-dots collapses to default", "...", "", 5, "item_5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Sprite{Index: tt.index, UserName: tt.user, SuggestedName: tt.suggested}
			if got := s.FinalName(); got != tt.want {
				t.Errorf("FinalName = %q, want %q", got, tt.want)
			}
			if got := s.FileName(); got != tt.want+".png" {
				t.Errorf("FileName = %q, want %q", got, tt.want+".png")
			}
		})
	}
}

func TestStateString(t *testing.T) {
	if StatePending.String() != "pending" || StateReady.String() != "ready" {
		t.Error("state names changed")
	}
	if State(42).String() != "state(42)" {
		t.Errorf("unknown state = %q", State(42).String())
	}
}
