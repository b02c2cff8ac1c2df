package mapper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hiremate/formfill/field"
)

func TestMapWireShape(t *testing.T) {
	var gotPath, gotAuth string
	var gotReq Request

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"assignments": map[string]Assignment{
				"0": {Value: "Ada", Confidence: 0.98, Reason: "profile first name"},
				"1": {Value: "ada@example.com", Confidence: 0.99},
			},
		})
	}))
	defer srv.Close()

	c, err := New(Config{BaseURL: srv.URL, APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	fields := []field.Descriptor{
		{Index: 0, Label: "First Name", Type: field.TypeText},
		{Index: 1, Label: "Email", Type: field.TypeText},
	}
	got, err := c.Map(context.Background(), Request{
		Fields:  fields,
		Profile: json.RawMessage(`{"first_name":"Ada"}`),
	})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}

	if gotPath != "/map-fields" {
		t.Errorf("path = %q, want /map-fields", gotPath)
	}
	if gotAuth != "Bearer sk-test" {
		t.Errorf("auth = %q, want bearer token", gotAuth)
	}
	if len(gotReq.Fields) != 2 || gotReq.Fields[1].Label != "Email" {
		t.Errorf("server saw fields %+v", gotReq.Fields)
	}

	if len(got) != 2 {
		t.Fatalf("assignments = %d, want 2", len(got))
	}
	if a := got["0"]; a.Value != "Ada" || a.Confidence != 0.98 {
		t.Errorf(`assignment["0"] = %+v`, a)
	}
}

func TestMapServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"error": "profile too large"})
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	if _, err := c.Map(context.Background(), Request{}); err == nil {
		t.Fatal("Map should surface a service-reported error")
	}
}

func TestMapHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream overloaded", http.StatusBadGateway)
	}))
	defer srv.Close()

	c, _ := New(Config{BaseURL: srv.URL})
	if _, err := c.Map(context.Background(), Request{}); err == nil {
		t.Fatal("Map should fail on non-200")
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("New should reject an empty base URL")
	}
}
