package logformat

import "testing"

func TestFilterLevelVisibility(t *testing.T) {
	vis := AllVisible()
	vis.Error = false
	f := Filter{Visibility: vis}

	tests := []struct {
		name string
		raw  string
		want bool
	}{
		{"error hidden", "2024.01.01 10:00:00 Error - boom", false},
		{"exception hidden with error flag", "caught EXCEPTION in handler", false},
		{"warning still visible", "2024.01.01 10:00:00 Warning - careful", true},
		{"plain visible", "plain line", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Show(tt.raw); got != tt.want {
				t.Fatalf("Show(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestFilterHiddenIfAnyMatchingLevelDisabled(t *testing.T) {
	// A line mentioning both info and error stays hidden when only one of
	// the two levels is disabled.
	raw := "Info - error while saving"

	vis := AllVisible()
	vis.Error = false
	if (Filter{Visibility: vis}).Show(raw) {
		t.Fatal("line matching a disabled level must be hidden")
	}

	vis = AllVisible()
	vis.Info = false
	if (Filter{Visibility: vis}).Show(raw) {
		t.Fatal("line matching a disabled level must be hidden")
	}
}

func TestFilterQuery(t *testing.T) {
	f := Filter{Visibility: AllVisible(), Query: "PLAYER"}

	if !f.Show("2024.01.01 10:00:00 Log - OnPlayerJoined") {
		t.Fatal("query match should be case-insensitive")
	}
	if f.Show("2024.01.01 10:00:00 Log - world loaded") {
		t.Fatal("line without the query must be hidden")
	}
}

func TestFilterQueryAndsWithVisibility(t *testing.T) {
	vis := AllVisible()
	vis.Warning = false
	f := Filter{Visibility: vis, Query: "joined"}

	if f.Show("Warning - player joined") {
		t.Fatal("disabled level wins even when the query matches")
	}
	if f.Show("Log - player left") {
		t.Fatal("query must still apply")
	}
	if !f.Show("Log - player joined") {
		t.Fatal("visible level with matching query should show")
	}
}

func TestFilterIsActive(t *testing.T) {
	if (Filter{Visibility: AllVisible()}).IsActive() {
		t.Fatal("default filter should be inactive")
	}
	if !(Filter{Visibility: AllVisible(), Query: "x"}).IsActive() {
		t.Fatal("query makes the filter active")
	}
	vis := AllVisible()
	vis.Debug = false
	if !(Filter{Visibility: vis}).IsActive() {
		t.Fatal("disabled level makes the filter active")
	}
}
