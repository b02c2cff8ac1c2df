package scrape

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hiremate/formfill/field"
)

func TestFingerprintLabelFallbacks(t *testing.T) {
	cases := []struct {
		name string
		d    field.Descriptor
		want string
	}{
		{"label wins", field.Descriptor{Label: "Email", Placeholder: "you@example.com", Name: "email"}, "Email"},
		{"placeholder next", field.Descriptor{Label: "", Placeholder: "you@example.com", Name: "email"}, "you@example.com"},
		{"name last", field.Descriptor{Name: "email"}, "email"},
		{"sentinel is absence", field.Descriptor{Label: field.SentinelLabel, Placeholder: "Phone"}, "Phone"},
		{"all empty", field.Descriptor{}, ""},
	}
	for _, c := range cases {
		if got := fingerprintLabel(c.d); got != c.want {
			t.Errorf("%s: fingerprintLabel = %q, want %q", c.name, got, c.want)
		}
	}
}

func TestRawCandidateDecodesHarvestShape(t *testing.T) {
	// One candidate as the harvest script emits it.
	payload := `[{
		"ref": 0,
		"signals": {"ariaLabel": "First Name", "name": "first_name"},
		"name": "first_name",
		"id": "first-name",
		"placeholder": "",
		"required": true,
		"disabled": false,
		"type": "text",
		"autocomplete": "given-name",
		"options": [],
		"radioValue": "",
		"constraints": {"max_length": 64},
		"locators": [{"kind": "id", "expr": "#first-name"}]
	}]`

	var raws []rawCandidate
	if err := json.Unmarshal([]byte(payload), &raws); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(raws) != 1 {
		t.Fatalf("candidates = %d, want 1", len(raws))
	}
	r := raws[0]
	if r.Signals.AriaLabel != "First Name" {
		t.Errorf("ariaLabel = %q", r.Signals.AriaLabel)
	}
	if !r.Required || r.Type != "text" {
		t.Errorf("required/type = %v/%q", r.Required, r.Type)
	}
	if r.Constraints.MaxLength != 64 {
		t.Errorf("max_length = %d", r.Constraints.MaxLength)
	}
	if len(r.Locators) != 1 || r.Locators[0].Kind != field.LocatorID {
		t.Errorf("locators = %+v", r.Locators)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.defaults()
	if cfg.SettleIdle <= 0 || cfg.SettleIdle > 5*time.Second {
		t.Errorf("settle idle default = %v", cfg.SettleIdle)
	}
	if cfg.Logger == nil {
		t.Error("logger default missing")
	}
}
