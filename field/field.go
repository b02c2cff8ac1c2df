// Package field defines the serializable descriptor for one discovered form
// control. Descriptors are the contract between discovery and fill: discovery
// emits them, callers ship them across process or execution-context
// boundaries as JSON, and fill re-resolves them against the live page.
package field

import (
	"strconv"

	"github.com/go-rod/rod"
)

// Type is the generic UI idiom of a control. It decides which fill strategy
// runs, independent of the control's semantic meaning.
type Type string

const (
	TypeText        Type = "text"
	TypeTextarea    Type = "textarea"
	TypeRichText    Type = "richtext"
	TypeSelect      Type = "select"
	TypeMultiSelect Type = "multiselect"
	TypeDate        Type = "date"
	TypeCheckbox    Type = "checkbox"
	TypeRadio       Type = "radio"
	TypeFile        Type = "file"
)

// Category is the semantic meaning of a control, derived from its textual
// signals. CategoryCustom means no rule matched; the remote mapper still
// receives the field and may map it from context.
type Category string

const (
	CatFirstName       Category = "first_name"
	CatLastName        Category = "last_name"
	CatFullName        Category = "full_name"
	CatEmail           Category = "email"
	CatPhone           Category = "phone"
	CatResume          Category = "resume"
	CatCoverLetter     Category = "cover_letter"
	CatLinkedIn        Category = "linkedin"
	CatGitHub          Category = "github"
	CatPortfolio       Category = "portfolio"
	CatAddress         Category = "address"
	CatCity            Category = "city"
	CatState           Category = "state"
	CatZip             Category = "zip"
	CatCountry         Category = "country"
	CatLocation        Category = "location"
	CatSchool          Category = "school"
	CatDegree          Category = "degree"
	CatMajor           Category = "major"
	CatCompany         Category = "company"
	CatJobTitle        Category = "job_title"
	CatYearsExperience Category = "years_experience"
	CatStartDate       Category = "start_date"
	CatEndDate         Category = "end_date"
	CatDateOfBirth     Category = "date_of_birth"
	CatSalary          Category = "salary"
	CatWorkAuth        Category = "work_authorization"
	CatSponsorship     Category = "sponsorship"
	CatGender          Category = "gender"
	CatRace            Category = "race"
	CatVeteran         Category = "veteran"
	CatDisability      Category = "disability"
	CatReferral        Category = "referral"
	CatSkills          Category = "skills"
	CatLanguages       Category = "languages"
	CatCertifications  Category = "certifications"
	CatCustom          Category = "custom"
)

// LocatorKind ranks how a locator expression was derived. Kinds are listed
// in descending confidence; resolution tries them in this order.
type LocatorKind string

const (
	LocatorID           LocatorKind = "id"
	LocatorAutomationID LocatorKind = "automation_id"
	LocatorAriaLabel    LocatorKind = "aria_label"
	LocatorFormName     LocatorKind = "form_name"
	LocatorWrapperScope LocatorKind = "wrapper_scope"
	LocatorAncestorPath LocatorKind = "ancestor_path"
)

// Locator is one independent way to find the control again. Expr is a CSS
// selector that matched exactly one element when the bundle was built.
type Locator struct {
	Kind LocatorKind `json:"kind"`
	Expr string      `json:"expr"`
}

// Constraints carries validation limits harvested from the control.
// Zero values mean the constraint is absent.
type Constraints struct {
	MaxLength int    `json:"max_length,omitempty"`
	Min       string `json:"min,omitempty"`
	Max       string `json:"max,omitempty"`
	Pattern   string `json:"pattern,omitempty"`
	Accept    string `json:"accept,omitempty"`
}

// Descriptor describes one logical interactive control. Exactly one
// Descriptor exists per canonical control per discovery pass.
//
// Live holds the rod element handle from the discovering session. It is
// never serialized; after a descriptor crosses a context boundary the fill
// session re-derives the element from Locators (or, failing that, from a
// Fingerprint scan).
type Descriptor struct {
	Index       int         `json:"index"`
	FrameID     string      `json:"frame_id,omitempty"`
	Label       string      `json:"label"`
	Name        string      `json:"name,omitempty"`
	ID          string      `json:"id,omitempty"`
	Placeholder string      `json:"placeholder,omitempty"`
	Required    bool        `json:"required"`
	Type        Type        `json:"type"`
	Category    Category    `json:"category"`
	Options     []string    `json:"options,omitempty"`
	Constraints Constraints `json:"constraints,omitempty"`
	Locators    []Locator   `json:"locators"`
	Fingerprint string      `json:"fingerprint"`

	Live *rod.Element `json:"-"`
}

// Key is the stable lookup key for value maps within one discovery pass.
// It is the decimal field index; the remote mapper keys its assignments the
// same way. Keys are only stable within a single pass, which is why callers
// must retain full descriptors rather than bare indices.
func (d *Descriptor) Key() string {
	return strconv.Itoa(d.Index)
}

// SentinelLabel is used when every label inference stage comes up empty.
// Discovery never fails on a nameless control; classification confidence
// just drops.
const SentinelLabel = "unlabeled field"

// IsSelectLike reports whether the control presents a closed list of choices.
func (t Type) IsSelectLike() bool {
	return t == TypeSelect || t == TypeMultiSelect
}
