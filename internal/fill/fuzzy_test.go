package fill

import "testing"

func TestFuzzyMatch_Chain(t *testing.T) {
	cases := []struct {
		name      string
		value     string
		options   []string
		wantIdx   int
		wantStage matchStage
	}{
		{"exact case-insensitive", "Yes", []string{"No", "yes"}, 1, matchExact},
		{"normalized exact", "United-States", []string{"United States", "Canada"}, 0, matchNormalized},
		{"substring option in value", "United States of America", []string{"Canada", "United States"}, 1, matchSubstring},
		{"substring value in option", "Bachelor", []string{"Bachelor's Degree", "Master's Degree"}, 0, matchSubstring},
		{"first word across scripts", "Male", []string{"Female / महिला", "Male / पुरुष"}, 1, matchNormalized},
		{"no match", "United States", []string{"USA", "Canada"}, -1, matchNone},
		{"placeholder never matches", "Select", []string{"Select...", "Yes", "No"}, -1, matchNone},
		{"empty value", "", []string{"Yes"}, -1, matchNone},
		{"first word fallback", "California Republic", []string{"California - CA", "Texas - TX"}, 0, matchFirstWord},
	}

	for _, tc := range cases {
		idx, stage := fuzzyMatch(tc.value, tc.options)
		if idx != tc.wantIdx || stage != tc.wantStage {
			t.Errorf("%s: fuzzyMatch(%q, %v) = (%d, %d), want (%d, %d)",
				tc.name, tc.value, tc.options, idx, stage, tc.wantIdx, tc.wantStage)
		}
	}
}

// Stricter stages must win even when a looser stage would also match an
// earlier option.
func TestFuzzyMatch_StageOrder(t *testing.T) {
	// Option 0 matches by substring, option 1 exactly. Exact must win.
	idx, stage := fuzzyMatch("Yes", []string{"Yes, with accommodation", "YES"})
	if idx != 1 || stage != matchExact {
		t.Errorf("got (%d, %d), want (1, %d)", idx, stage, matchExact)
	}
}

func TestIsPlaceholderOption(t *testing.T) {
	for _, o := range []string{"", "  ", "Select...", "-- Please select --", "Choose an option"} {
		if !isPlaceholderOption(o) {
			t.Errorf("isPlaceholderOption(%q): got false, want true", o)
		}
	}
	for _, o := range []string{"Yes", "None of the above", "Other"} {
		if isPlaceholderOption(o) {
			t.Errorf("isPlaceholderOption(%q): got true, want false", o)
		}
	}
}

func TestParseDate(t *testing.T) {
	cases := []struct {
		in   string
		want dateParts
	}{
		{"2024-03-04", dateParts{2024, 3, 4}},
		{"03/04/2024", dateParts{2024, 3, 4}},
		{"3/4/2024", dateParts{2024, 3, 4}},
		{"03-04-2024", dateParts{2024, 3, 4}},
		{"March 4, 2024", dateParts{2024, 3, 4}},
		{"4 March 2024", dateParts{2024, 3, 4}},
		{"March 2024", dateParts{2024, 3, 0}},
		{"03/2024", dateParts{2024, 3, 0}},
		{"2024", dateParts{2024, 0, 0}},
	}
	for _, tc := range cases {
		got, err := parseDate(tc.in)
		if err != nil {
			t.Errorf("parseDate(%q): unexpected error %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseDate(%q): got %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseDate_RoundTripEquivalence(t *testing.T) {
	a, err := parseDate("03/04/2024")
	if err != nil {
		t.Fatal(err)
	}
	b, err := parseDate("2024-03-04")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("equivalent dates diverged: %+v vs %+v", a, b)
	}
	if a.ISO() != "2024-03-04" {
		t.Errorf("ISO: got %s, want 2024-03-04", a.ISO())
	}
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "soon", "13/32/2024x"} {
		if _, err := parseDate(in); err == nil {
			t.Errorf("parseDate(%q): expected error", in)
		}
	}
}
