package identity

import (
	"strings"
	"testing"
)

// Parity vectors shared with the mapping backend. If these break, cached
// mappings keyed on old fingerprints become unreachable.
var parityCases = []struct {
	label   string
	typ     string
	options []string
	want    string
}{
	{"Email Address", "email", nil, "63f7d866455be7051296c8481faf4f52"},
	{"First Name", "text", nil, "45f4978ac1745bb1bce038713de057bc"},
	{"Phone Number", "tel", nil, "1145787cf3ecf62a67931f1decd07d5e"},
	{"Current Location", "select", []string{"United States", "Canada", "United Kingdom"}, "daf5f70ca031659f3e64d79137d37d54"},
	{"", "text", nil, "52b667b6a7a77b51c85dec1555777c81"},
	{"Are you authorized to work?", "radio", []string{"Yes", "No"}, "4fa890e6879685bf12ac16f22e019fd0"},
}

func TestFingerprint_BackendParity(t *testing.T) {
	for _, tc := range parityCases {
		got := Fingerprint(tc.label, tc.options, tc.typ)
		if got != tc.want {
			t.Errorf("Fingerprint(%q, %v, %q): got %s, want %s",
				tc.label, tc.options, tc.typ, got, tc.want)
		}
	}
}

func TestFingerprint_Shape(t *testing.T) {
	for _, tc := range parityCases {
		fp := Fingerprint(tc.label, tc.options, tc.typ)
		if len(fp) != 32 {
			t.Fatalf("Fingerprint length: got %d, want 32", len(fp))
		}
		if strings.Trim(fp, "0123456789abcdef") != "" {
			t.Errorf("Fingerprint %q contains non-hex characters", fp)
		}
	}
}

func TestFingerprint_Deterministic(t *testing.T) {
	a := Fingerprint("School", []string{"MIT", "Stanford"}, "select")
	b := Fingerprint("School", []string{"MIT", "Stanford"}, "select")
	if a != b {
		t.Errorf("same input produced different fingerprints: %s vs %s", a, b)
	}
}

func TestFingerprint_LabelNormalization(t *testing.T) {
	a := Fingerprint("Email Address", nil, "email")
	b := Fingerprint("  EMAIL   address!  ", nil, "email")
	if a != b {
		t.Errorf("case/whitespace variants diverged: %s vs %s", a, b)
	}
}

func TestFingerprint_OptionOrderInsensitive(t *testing.T) {
	a := Fingerprint("Country", []string{"USA", "Canada"}, "select")
	b := Fingerprint("Country", []string{"Canada", "USA"}, "select")
	if a != b {
		t.Errorf("option order changed fingerprint: %s vs %s", a, b)
	}
}

func TestFingerprint_SensitiveToContent(t *testing.T) {
	base := Fingerprint("Email", nil, "email")
	if got := Fingerprint("Email Address", nil, "email"); got == base {
		t.Error("different labels produced identical fingerprints")
	}
	if got := Fingerprint("Email", nil, "text"); got == base {
		t.Error("different types produced identical fingerprints")
	}
	if got := Fingerprint("Email", []string{"work", "home"}, "email"); got == base {
		t.Error("added options did not change fingerprint")
	}
}

func TestFingerprintPayload_WireShape(t *testing.T) {
	got := string(fingerprintPayload("email address", []string{"a", "b"}, "select"))
	want := `{"label":"email address","options":["a","b"],"type":"select"}`
	if got != want {
		t.Errorf("payload: got %s, want %s", got, want)
	}

	got = string(fingerprintPayload("x", nil, "text"))
	want = `{"label":"x","options":[],"type":"text"}`
	if got != want {
		t.Errorf("empty options payload: got %s, want %s", got, want)
	}
}

func TestNormalizeText(t *testing.T) {
	cases := []struct{ in, want string }{
		{"First Name *", "first name"},
		{"E-mail (required)", "e mail required"},
		{"  Résumé / CV  ", "r sum cv"},
		{"PHONE", "phone"},
		{"", ""},
		{"a\t\nb", "a b"},
	}
	for _, tc := range cases {
		if got := NormalizeText(tc.in); got != tc.want {
			t.Errorf("NormalizeText(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}
