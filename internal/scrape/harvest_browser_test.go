package scrape

import (
	"encoding/json"
	"testing"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// harvestFixture is a small application form with the shapes the harvest
// script must get right: a labeled native input, a combobox wrapper whose
// real input is hidden, duplicate-name inputs, and controls that are never
// fillable.
const harvestFixture = `<!DOCTYPE html><html><body><form id="apply">
	<label for="first-name">First Name</label>
	<input id="first-name" name="first_name" type="text"/>

	<div class="field">
		<label>School</label>
		<div role="combobox" aria-label="School" style="width:200px;height:32px">
			Select a school
			<input name="school" style="display:none"/>
		</div>
	</div>

	<input name="city" type="text" placeholder="City"/>
	<input name="city" type="text" placeholder="Shipping city"/>

	<input type="hidden" name="csrf" value="x"/>
	<input type="submit" value="Apply"/>
</form></body></html>`

// harvestPage runs the harvest script against fixture markup in a real
// Chromium. Environments without a local browser skip.
func harvestPage(t *testing.T, markup string) (*rod.Page, []rawCandidate) {
	t.Helper()

	wsURL, err := launcher.New().Headless(true).Launch()
	if err != nil {
		t.Skipf("no local chromium: %v", err)
	}
	b := rod.New().ControlURL(wsURL)
	if err := b.Connect(); err != nil {
		t.Skipf("connect chromium: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		t.Fatalf("open page: %v", err)
	}
	if err := page.SetDocumentContent(markup); err != nil {
		t.Fatalf("set content: %v", err)
	}

	return page, runHarvest(t, page)
}

func runHarvest(t *testing.T, page *rod.Page) []rawCandidate {
	t.Helper()
	res, err := page.Eval(harvestJS, "generic")
	if err != nil {
		t.Fatalf("harvest: %v", err)
	}
	var raws []rawCandidate
	if err := json.Unmarshal([]byte(res.Value.Str()), &raws); err != nil {
		t.Fatalf("decode harvest: %v", err)
	}
	return raws
}

func byName(raws []rawCandidate, name string) []rawCandidate {
	var out []rawCandidate
	for _, r := range raws {
		if r.Name == name {
			out = append(out, r)
		}
	}
	return out
}

// A combobox wrapper and its hidden inner input must collapse to exactly one
// candidate, canonicalized to the input, typed from the wrapper's role.
func TestHarvestWrapperDedup(t *testing.T) {
	_, raws := harvestPage(t, harvestFixture)

	if len(raws) != 4 {
		t.Fatalf("candidates = %d, want 4 (first_name, school, city x2): %+v", len(raws), raws)
	}

	school := byName(raws, "school")
	if len(school) != 1 {
		t.Fatalf("school candidates = %d, want exactly 1", len(school))
	}
	if school[0].Type != "select" {
		t.Errorf("school type = %q, want select (combobox role on wrapper)", school[0].Type)
	}
	if school[0].Signals.AriaLabel != "School" {
		t.Errorf("school ariaLabel = %q, wrapper signals not harvested", school[0].Signals.AriaLabel)
	}

	if got := byName(raws, "csrf"); len(got) != 0 {
		t.Errorf("hidden input harvested: %+v", got)
	}
}

// Every emitted locator expression must match exactly one node in the page
// it was built from; ambiguous expressions are rejected at build time.
func TestHarvestLocatorUniqueness(t *testing.T) {
	page, raws := harvestPage(t, harvestFixture)

	checked := 0
	for _, raw := range raws {
		for _, loc := range raw.Locators {
			res, err := page.Eval(`(expr) => document.querySelectorAll(expr).length`, loc.Expr)
			if err != nil {
				t.Fatalf("count %q: %v", loc.Expr, err)
			}
			if n := res.Value.Int(); n != 1 {
				t.Errorf("locator %s %q matches %d nodes, want 1", loc.Kind, loc.Expr, n)
			}
			checked++
		}
	}
	if checked == 0 {
		t.Fatal("no locators emitted at all")
	}

	// The duplicate-name inputs cannot be told apart by [name="city"].
	for _, raw := range byName(raws, "city") {
		for _, loc := range raw.Locators {
			if loc.Expr == `[name="city"]` {
				t.Errorf("ambiguous locator survived validation: %q", loc.Expr)
			}
		}
	}

	first := byName(raws, "first_name")
	if len(first) != 1 || len(first[0].Locators) == 0 {
		t.Fatalf("first_name locators = %+v, want at least the id locator", first)
	}
	if first[0].Locators[0].Expr != "#first-name" {
		t.Errorf("first locator = %q, want #first-name", first[0].Locators[0].Expr)
	}
}

// Harvesting is read-only: a second pass over the untouched page sees the
// identical candidate list.
func TestHarvestIdempotent(t *testing.T) {
	page, first := harvestPage(t, harvestFixture)
	second := runHarvest(t, page)

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Errorf("second pass differs:\n first: %s\nsecond: %s", a, b)
	}
}
