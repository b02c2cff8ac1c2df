package classify

import (
	"regexp"
	"strings"

	"github.com/hiremate/formfill/field"
)

// rule maps a pattern to a category. Rules are evaluated in table order and
// the first match wins, so specific rules must precede generic ones: email
// before address ("email address"), cover letter before letter-ish text,
// date of birth before generic dates.
type rule struct {
	category field.Category
	re       *regexp.Regexp
}

var semanticRules = []rule{
	{field.CatResume, regexp.MustCompile(`resume|\bcv\b|curriculum\s*vitae`)},
	{field.CatCoverLetter, regexp.MustCompile(`cover\s*letter`)},
	{field.CatFirstName, regexp.MustCompile(`first\s*name|\bfname\b|given\s*name|firstname`)},
	{field.CatLastName, regexp.MustCompile(`last\s*name|\blname\b|surname|family\s*name|lastname`)},
	{field.CatFullName, regexp.MustCompile(`full\s*name|candidate\s*name|legal\s*name|your\s*name|^name$`)},
	{field.CatEmail, regexp.MustCompile(`e[\s-]?mail`)},
	{field.CatPhone, regexp.MustCompile(`phone|mobile|\bcell\b|\btel\b|telephone|contact\s*number`)},
	{field.CatLinkedIn, regexp.MustCompile(`linked\s*-?in`)},
	{field.CatGitHub, regexp.MustCompile(`git\s*hub`)},
	{field.CatPortfolio, regexp.MustCompile(`portfolio|personal\s*(web)?site|website`)},
	{field.CatDateOfBirth, regexp.MustCompile(`date\s*of\s*birth|\bdob\b|birth\s*date|birthday`)},
	{field.CatYearsExperience, regexp.MustCompile(`years?\W*(of\W*)?experience|experience\W*(in\W*)?years?`)},
	{field.CatStartDate, regexp.MustCompile(`start\s*date|available\s*(from|date)|notice\s*period|when\s*can\s*you\s*start`)},
	{field.CatEndDate, regexp.MustCompile(`end\s*date|until|to\s*date`)},
	{field.CatSalary, regexp.MustCompile(`salary|compensation|expected\s*pay|desired\s*pay|\bctc\b`)},
	{field.CatWorkAuth, regexp.MustCompile(`work\s*authori[sz]ation|authori[sz]ed\s*to\s*work|legally\s*(able|eligible)\s*to\s*work|right\s*to\s*work`)},
	{field.CatSponsorship, regexp.MustCompile(`sponsorship|require\s*visa|visa\s*status`)},
	{field.CatSchool, regexp.MustCompile(`school|university|college|institution|alma\s*mater`)},
	{field.CatDegree, regexp.MustCompile(`degree|qualification|education\s*level`)},
	{field.CatMajor, regexp.MustCompile(`major|field\s*of\s*study|discipline|concentration`)},
	{field.CatCompany, regexp.MustCompile(`(current|previous|recent)\s*(company|employer)|company\s*name|employer`)},
	{field.CatJobTitle, regexp.MustCompile(`job\s*title|current\s*title|current\s*(role|position)|^title$`)},
	{field.CatCity, regexp.MustCompile(`\bcity\b|\btown\b`)},
	{field.CatState, regexp.MustCompile(`\bstate\b|province|region`)},
	{field.CatZip, regexp.MustCompile(`zip|postal\s*code|postcode`)},
	{field.CatCountry, regexp.MustCompile(`country|nationality`)},
	{field.CatAddress, regexp.MustCompile(`address|street`)},
	{field.CatLocation, regexp.MustCompile(`location|where\s*(are\s*you|do\s*you)\s*(based|live)`)},
	{field.CatGender, regexp.MustCompile(`gender|\bsex\b`)},
	{field.CatRace, regexp.MustCompile(`race|ethnicity|ethnic`)},
	{field.CatVeteran, regexp.MustCompile(`veteran|military`)},
	{field.CatDisability, regexp.MustCompile(`disability|disabilities|disabled`)},
	{field.CatReferral, regexp.MustCompile(`referr?al|how\s*did\s*you\s*(hear|find)|referred\s*by|source`)},
	{field.CatSkills, regexp.MustCompile(`skills?|technologies|tech\s*stack`)},
	{field.CatLanguages, regexp.MustCompile(`languages?\s*(spoken|known)?`)},
	{field.CatCertifications, regexp.MustCompile(`certificat(e|ion)s?|licen[cs]es?`)},
}

// Semantic assigns a category from the field's textual signals. The signals
// are concatenated (name, id, label, placeholder, automation id, aria-label,
// autocomplete) and matched against the rule table; no match means
// CategoryCustom, which is not a failure — the remote mapper still sees the
// field with its label.
func Semantic(signals ...string) field.Category {
	joined := strings.ToLower(strings.Join(signals, " "))
	// Machine names join words with underscores or hyphens
	// (job_application[last_name], data-automation-id values); fold them to
	// spaces so the rule patterns see word boundaries.
	joined = strings.NewReplacer("_", " ", "-", " ").Replace(joined)
	if strings.TrimSpace(joined) == "" {
		return field.CatCustom
	}
	for _, r := range semanticRules {
		if r.re.MatchString(joined) {
			return r.category
		}
	}
	return field.CatCustom
}
