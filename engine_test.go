package formfill

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hiremate/formfill/cache"
	"github.com/hiremate/formfill/field"
	"github.com/hiremate/formfill/mapper"
)

func testSession() *Session {
	return &Session{
		ID: "ses_t",
		Fields: []field.Descriptor{
			{Index: 0, Label: "First Name", Type: field.TypeText, Fingerprint: "fp-first"},
			{Index: 1, Label: "Resume", Type: field.TypeFile, Fingerprint: "fp-resume"},
			{Index: 2, Label: "Why us?", Type: field.TypeTextarea, Fingerprint: "fp-why"},
		},
	}
}

func TestResolveValuesExplicitWins(t *testing.T) {
	e := New(nil)
	s := testSession()

	values, err := e.resolveValues(context.Background(), s, FillRequest{
		Values: map[string]Value{"0": {Text: "Ada"}},
	})
	if err != nil {
		t.Fatalf("resolveValues: %v", err)
	}
	if values["0"].Text != "Ada" {
		t.Errorf(`values["0"] = %+v`, values["0"])
	}
	if len(values) != 1 {
		t.Errorf("values = %d entries, want 1 (no cache, no mapper)", len(values))
	}
}

func TestResolveValuesAttachesResume(t *testing.T) {
	e := New(nil)
	s := testSession()

	pdf := buildTestPDF(t)
	values, err := e.resolveValues(context.Background(), s, FillRequest{
		Resume: &Resume{Name: "resume.pdf", Data: pdf},
	})
	if err != nil {
		t.Fatalf("resolveValues: %v", err)
	}
	v, ok := values["1"]
	if !ok || v.FileName != "resume.pdf" || len(v.FileData) == 0 {
		t.Errorf(`file value = %+v`, v)
	}
}

func TestResolveValuesRejectsBadResume(t *testing.T) {
	e := New(nil)
	_, err := e.resolveValues(context.Background(), testSession(), FillRequest{
		Resume: &Resume{Name: "resume.pdf", Data: []byte("not a pdf")},
	})
	if err == nil {
		t.Fatal("corrupt resume should be rejected before any page interaction")
	}
}

func TestResolveValuesCacheThenMapper(t *testing.T) {
	profile := json.RawMessage(`{"first_name":"Ada"}`)
	hash := cache.ProfileHash(profile)

	store := cache.OpenMemory(t)
	if err := store.Put(context.Background(), "fp-first", "First Name", "Ada", hash); err != nil {
		t.Fatal(err)
	}

	var mapped []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req mapper.Request
		json.NewDecoder(r.Body).Decode(&req)
		for _, f := range req.Fields {
			mapped = append(mapped, f.Fingerprint)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"assignments": map[string]mapper.Assignment{
				"2": {Value: "Because of the mission.", Confidence: 0.7},
			},
		})
	}))
	defer srv.Close()
	mc, err := mapper.New(mapper.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatal(err)
	}

	e := New(nil, WithCache(store), WithMapper(mc))
	values, err := e.resolveValues(context.Background(), testSession(), FillRequest{Profile: profile})
	if err != nil {
		t.Fatalf("resolveValues: %v", err)
	}

	if values["0"].Text != "Ada" {
		t.Errorf("cached value not used: %+v", values["0"])
	}
	if values["2"].Text != "Because of the mission." {
		t.Errorf("mapper value not used: %+v", values["2"])
	}
	// Only the cache miss goes to the service, and never the file field.
	if len(mapped) != 1 || mapped[0] != "fp-why" {
		t.Errorf("mapper saw %v, want only fp-why", mapped)
	}

	// The mapper's answer is now cached for next time.
	if v, hit, _ := store.Get(context.Background(), "fp-why", hash); !hit || v != "Because of the mission." {
		t.Errorf("mapper answer not written back: (%q, %v)", v, hit)
	}
}

// buildTestPDF writes a minimal valid one-page PDF.
func buildTestPDF(t *testing.T) []byte {
	t.Helper()
	const stream = "BT\n/F1 12 Tf\n72 720 Td\n(Ada Lovelace) Tj\nET"

	var b []byte
	add := func(s string) int {
		off := len(b)
		b = append(b, s...)
		return off
	}

	add("%PDF-1.4\n")
	o1 := add("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")
	o2 := add("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")
	o3 := add("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>\nendobj\n")
	o4 := add(fmt.Sprintf("4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(stream), stream))
	o5 := add("5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	xref := len(b)
	add("xref\n0 6\n0000000000 65535 f \n")
	for _, off := range []int{o1, o2, o3, o4, o5} {
		add(fmt.Sprintf("%010d 00000 n \n", off))
	}
	add(fmt.Sprintf("trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref))
	return b
}
