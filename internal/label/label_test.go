package label

import (
	"testing"

	"github.com/hiremate/formfill/field"
)

func TestInfer_ChainOrder(t *testing.T) {
	cases := []struct {
		name string
		sig  Signals
		want string
	}{
		{"labelledby wins over everything",
			Signals{LabelledBy: "Work Email", ExplicitLabel: "Email", Placeholder: "you@example.com"},
			"Work Email"},
		{"explicit label before aria",
			Signals{ExplicitLabel: "First Name", AriaLabel: "first"},
			"First Name"},
		{"aria label before enclosing",
			Signals{AriaLabel: "Phone", EnclosingLabel: "Phone number with country code"},
			"Phone"},
		{"enclosing label",
			Signals{EnclosingLabel: "Are you authorized to work? "},
			"Are you authorized to work?"},
		{"sibling label before automation id",
			Signals{SiblingLabel: "Resume/CV", AutomationID: "resumeUpload"},
			"Resume/CV"},
		{"automation id humanized",
			Signals{AutomationID: "legalNameSection_firstName"},
			"legal name section first name"},
		{"question container before placeholder",
			Signals{QuestionLabel: "Why do you want to join?", Placeholder: "Your answer"},
			"Why do you want to join?"},
		{"placeholder before name",
			Signals{Placeholder: "Enter your email", Name: "email_addr"},
			"Enter your email"},
		{"name humanized",
			Signals{Name: "job_application[first_name]"},
			"first name"},
		{"data label before preceding text",
			Signals{DataLabel: "Expected Salary", PrecedingText: "Compensation details below"},
			"Expected Salary"},
		{"legend then heading then title then id",
			Signals{Legend: "Demographic Questions"},
			"Demographic Questions"},
		{"id humanized last",
			Signals{ID: "candidate-phone-number"},
			"candidate phone number"},
		{"exhaustion yields sentinel", Signals{}, field.SentinelLabel},
		{"numeric id is noise, falls to sentinel",
			Signals{ID: "4521"},
			field.SentinelLabel},
	}

	for _, tc := range cases {
		if got := Infer(tc.sig); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestInfer_CleansWhitespaceAndMarkers(t *testing.T) {
	got := Infer(Signals{ExplicitLabel: "  First   Name *  "})
	if got != "First Name" {
		t.Errorf("got %q, want %q", got, "First Name")
	}
}

func TestHumanize(t *testing.T) {
	cases := []struct{ in, want string }{
		{"first_name", "first name"},
		{"firstName", "first name"},
		{"job_application[answers_attributes][0][text_value]", "text value"},
		{"data-automation-id", "data automation id"},
		{"candidate.phone", "candidate phone"},
		{"x", ""},
		{"12345", ""},
		{"", ""},
		{"deadbeef01", ""},
	}
	for _, tc := range cases {
		if got := Humanize(tc.in); got != tc.want {
			t.Errorf("Humanize(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}
