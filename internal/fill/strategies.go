package fill

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"github.com/hiremate/formfill/field"
	"github.com/hiremate/formfill/internal/identity"
	"github.com/hiremate/formfill/internal/popup"
)

// Value is what a strategy writes into a control. Text carries the mapped
// answer for every type except file uploads, which carry the document
// itself.
type Value struct {
	Text     string `json:"text"`
	FileName string `json:"file_name,omitempty"`
	FileData []byte `json:"file_data,omitempty"`
}

// Strategies executes per-idiom fill logic against live elements. One
// instance is shared by a whole session; it carries the typing cadence and
// the popup poll bounds.
type Strategies struct {
	// MinKeyDelay and MaxKeyDelay bound the randomized inter-keystroke
	// pause. Defaults: 30ms and 90ms.
	MinKeyDelay time.Duration
	MaxKeyDelay time.Duration

	// Poll bounds the option-popup wait loop for custom comboboxes.
	Poll popup.PollConfig

	Logger *slog.Logger
}

func (s *Strategies) defaults() {
	if s.MinKeyDelay <= 0 {
		s.MinKeyDelay = 30 * time.Millisecond
	}
	if s.MaxKeyDelay <= s.MinKeyDelay {
		s.MaxKeyDelay = s.MinKeyDelay + 60*time.Millisecond
	}
	if s.Logger == nil {
		s.Logger = slog.Default()
	}
}

// Apply dispatches to the strategy for the descriptor's type and verifies
// the result. All returned errors are local to the field.
func (s *Strategies) Apply(ctx context.Context, page *rod.Page, el *rod.Element, d field.Descriptor, v Value) error {
	s.defaults()

	if disabled, err := evalBool(ctx, el, isDisabledJS); err == nil && disabled {
		return ErrDisabled
	}

	switch d.Type {
	case field.TypeText, field.TypeTextarea:
		return s.fillText(ctx, el, d, v.Text)
	case field.TypeRichText:
		return s.fillRichText(ctx, el, v.Text)
	case field.TypeSelect:
		return s.fillSelect(ctx, page, el, d, v.Text)
	case field.TypeMultiSelect:
		return s.fillMultiSelect(ctx, page, el, d, v.Text)
	case field.TypeDate:
		return s.fillDate(ctx, el, v.Text)
	case field.TypeCheckbox:
		return s.fillCheckbox(ctx, el, v.Text)
	case field.TypeRadio:
		return s.fillRadio(ctx, el, v.Text)
	case field.TypeFile:
		return s.fillFile(ctx, el, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnhandledType, d.Type)
	}
}

func (s *Strategies) delayArgs() (float64, float64) {
	return float64(s.MinKeyDelay.Milliseconds()), float64(s.MaxKeyDelay.Milliseconds())
}

func (s *Strategies) fillText(ctx context.Context, el *rod.Element, d field.Descriptor, value string) error {
	if d.Constraints.MaxLength > 0 {
		value = truncateRunes(value, d.Constraints.MaxLength)
	}
	minMs, maxMs := s.delayArgs()
	ok, err := evalBool(ctx, el, typeTextJS, value, minMs, maxMs)
	if err != nil {
		return fmt.Errorf("fill: type text: %w", err)
	}
	if !ok {
		return ErrVerifyFailed
	}
	return nil
}

func (s *Strategies) fillRichText(ctx context.Context, el *rod.Element, value string) error {
	minMs, maxMs := s.delayArgs()
	ok, err := evalBool(ctx, el, richTextJS, value, minMs, maxMs)
	if err != nil {
		return fmt.Errorf("fill: rich text: %w", err)
	}
	if !ok {
		return ErrVerifyFailed
	}
	return nil
}

// fillSelect handles both native selects and custom combobox widgets; the
// live tag decides which path runs.
func (s *Strategies) fillSelect(ctx context.Context, page *rod.Page, el *rod.Element, d field.Descriptor, value string) error {
	native, err := isNativeSelect(ctx, el)
	if err != nil {
		return fmt.Errorf("fill: probe select: %w", err)
	}
	if native {
		return s.fillNativeSelect(ctx, el, value)
	}
	return s.fillCombobox(ctx, page, el, d, value)
}

func (s *Strategies) fillNativeSelect(ctx context.Context, el *rod.Element, value string) error {
	// Read options fresh: dependent selects repopulate after earlier fields.
	opts, err := evalStrings(ctx, el, readSelectOptionsJS)
	if err != nil {
		return fmt.Errorf("fill: read select options: %w", err)
	}

	idx, stage := fuzzyMatch(value, opts)
	if stage == matchNone {
		return fmt.Errorf("%w: %q among %d options", ErrOptionNotFound, value, len(opts))
	}

	ok, err := evalBool(ctx, el, setSelectIndexJS, idx)
	if err != nil {
		return fmt.Errorf("fill: set select: %w", err)
	}
	if !ok {
		return ErrVerifyFailed
	}
	return nil
}

// fillCombobox drives a custom dropdown: open, optionally filter by typing
// a prefix, poll for visible options, fuzzy-match, click. School and
// employer pickers additionally fall back to an "Other / not listed" escape
// hatch with a free-text follow-up.
func (s *Strategies) fillCombobox(ctx context.Context, page *rod.Page, el *rod.Element, d field.Descriptor, value string) error {
	defer popup.Close(ctx, el)

	var opts []popup.Option
	var err error
	if searchable, _ := evalBool(ctx, el, isSearchableJS); searchable {
		if err := popup.Open(ctx, el); err != nil {
			return err
		}
		prefix := searchPrefix(value)
		minMs, _ := s.delayArgs()
		if _, err := el.Context(ctx).Eval(typeSearchPrefixJS, prefix, minMs); err != nil {
			s.Logger.Debug("fill: search prefix failed, falling back to full list", "error", err)
		}
		// The popup is already open and filtered; re-dispatching the open
		// burst would toggle it shut on click-to-toggle widgets.
		opts, err = popup.PollOpened(ctx, el, s.Poll)
	} else {
		opts, err = popup.Poll(ctx, el, s.Poll)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOptionNotFound, err)
	}

	idx, stage := fuzzyMatch(value, popup.Texts(opts))
	if stage != matchNone {
		return s.clickOption(ctx, page, opts[idx])
	}

	if d.Category == field.CatSchool || d.Category == field.CatCompany {
		if oidx := otherOptionIndex(opts); oidx >= 0 {
			return s.pickOtherAndType(ctx, page, el, opts[oidx], value)
		}
	}

	return fmt.Errorf("%w: %q among %d options", ErrOptionNotFound, value, len(opts))
}

func (s *Strategies) clickOption(ctx context.Context, page *rod.Page, opt popup.Option) error {
	node, err := popup.ElementForRef(ctx, page, opt.Ref)
	if err != nil {
		return err
	}
	if _, err := node.Context(ctx).Eval(clickJS); err != nil {
		return fmt.Errorf("fill: click option %q: %w", opt.Text, err)
	}
	return nil
}

// pickOtherAndType clicks the "Other" escape option and fills the free-text
// input that the form reveals in its place.
func (s *Strategies) pickOtherAndType(ctx context.Context, page *rod.Page, el *rod.Element, other popup.Option, value string) error {
	if err := s.clickOption(ctx, page, other); err != nil {
		return err
	}

	// The follow-up input renders asynchronously.
	deadline := time.Now().Add(2 * time.Second)
	for {
		found, err := evalBool(ctx, el, freeTextAfterOtherJS)
		if err == nil && found {
			break
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: no free-text input after %q", ErrOptionNotFound, other.Text)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(150 * time.Millisecond):
		}
	}

	free, err := page.Context(ctx).ElementByJS(rod.Eval(`() => window.__ffOtherInput`))
	if err != nil {
		return fmt.Errorf("fill: other input: %w", err)
	}
	minMs, maxMs := s.delayArgs()
	ok, err := evalBool(ctx, free, typeTextJS, value, minMs, maxMs)
	if err != nil {
		return fmt.Errorf("fill: other input: %w", err)
	}
	if !ok {
		return ErrVerifyFailed
	}
	s.Logger.Info("fill: used other-option fallback", "option", other.Text, "value", value)
	return nil
}

// fillMultiSelect selects every listed value. Values arrive comma- or
// semicolon-separated; each one runs the full match chain independently,
// and one miss does not undo the others.
func (s *Strategies) fillMultiSelect(ctx context.Context, page *rod.Page, el *rod.Element, d field.Descriptor, value string) error {
	values := splitMulti(value)
	if len(values) == 0 {
		return fmt.Errorf("%w: empty multiselect value", ErrOptionNotFound)
	}

	native, err := isNativeSelect(ctx, el)
	if err != nil {
		return fmt.Errorf("fill: probe select: %w", err)
	}

	var matched int
	var lastErr error
	for _, v := range values {
		if native {
			lastErr = s.selectOneNativeMulti(ctx, el, v)
		} else {
			lastErr = s.selectOneCustomMulti(ctx, page, el, v)
		}
		if lastErr == nil {
			matched++
		} else {
			s.Logger.Debug("fill: multiselect value missed", "value", v, "error", lastErr)
		}
	}

	if matched == 0 {
		return lastErr
	}
	return nil
}

func (s *Strategies) selectOneNativeMulti(ctx context.Context, el *rod.Element, value string) error {
	opts, err := evalStrings(ctx, el, readSelectOptionsJS)
	if err != nil {
		return fmt.Errorf("fill: read select options: %w", err)
	}
	idx, stage := fuzzyMatch(value, opts)
	if stage == matchNone {
		return fmt.Errorf("%w: %q", ErrOptionNotFound, value)
	}
	ok, err := evalBool(ctx, el, selectMultiOptionJS, idx)
	if err != nil {
		return fmt.Errorf("fill: select option: %w", err)
	}
	if !ok {
		return ErrVerifyFailed
	}
	return nil
}

func (s *Strategies) selectOneCustomMulti(ctx context.Context, page *rod.Page, el *rod.Element, value string) error {
	opts, err := popup.Poll(ctx, el, s.Poll)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOptionNotFound, err)
	}
	idx, stage := fuzzyMatch(value, popup.Texts(opts))
	if stage == matchNone {
		popup.Close(ctx, el)
		return fmt.Errorf("%w: %q", ErrOptionNotFound, value)
	}
	err = s.clickOption(ctx, page, opts[idx])
	popup.Close(ctx, el)
	return err
}

// fillDate probes the control's shape and renders the parsed date the way
// that shape wants it.
func (s *Strategies) fillDate(ctx context.Context, el *rod.Element, value string) error {
	parts, err := parseDate(value)
	if err != nil {
		return err
	}

	kindRes, err := el.Context(ctx).Eval(dateProbeJS)
	if err != nil {
		return fmt.Errorf("fill: date probe: %w", err)
	}

	switch kindRes.Value.Str() {
	case "native":
		iso := parts.ISO()
		ok, err := evalBool(ctx, el, setNativeDateJS, iso)
		if err != nil {
			return fmt.Errorf("fill: native date: %w", err)
		}
		if !ok {
			return ErrVerifyFailed
		}
		return nil

	case "year":
		return s.typePlain(ctx, el, fmt.Sprintf("%d", parts.Year))

	case "split":
		ok, err := evalBool(ctx, el, fillDateSectionsJS, parts.Month, parts.Day, parts.Year)
		if err != nil {
			return fmt.Errorf("fill: date sections: %w", err)
		}
		if !ok {
			return ErrVerifyFailed
		}
		return nil

	default: // single free-text field
		rendered := fmt.Sprintf("%02d/%02d/%04d", parts.Month, parts.Day, parts.Year)
		if parts.Month == 0 {
			rendered = fmt.Sprintf("%04d", parts.Year)
		} else if parts.Day == 0 {
			rendered = fmt.Sprintf("%02d/%04d", parts.Month, parts.Year)
		}
		return s.typePlain(ctx, el, rendered)
	}
}

func (s *Strategies) typePlain(ctx context.Context, el *rod.Element, value string) error {
	minMs, maxMs := s.delayArgs()
	ok, err := evalBool(ctx, el, typeTextJS, value, minMs, maxMs)
	if err != nil {
		return fmt.Errorf("fill: type: %w", err)
	}
	if !ok {
		return ErrVerifyFailed
	}
	return nil
}

// fillCheckbox clicks only when the current state differs from the desired
// one, so re-running a session never un-checks an already correct box.
func (s *Strategies) fillCheckbox(ctx context.Context, el *rod.Element, value string) error {
	want := truthy(value)

	got, err := evalBool(ctx, el, checkboxStateJS)
	if err != nil {
		return fmt.Errorf("fill: checkbox state: %w", err)
	}
	if got == want {
		return nil
	}

	if _, err := el.Context(ctx).Eval(clickJS); err != nil {
		return fmt.Errorf("fill: checkbox click: %w", err)
	}

	got, err = evalBool(ctx, el, checkboxStateJS)
	if err != nil {
		return fmt.Errorf("fill: checkbox verify: %w", err)
	}
	if got != want {
		return ErrVerifyFailed
	}
	return nil
}

// fillRadio fills one radio candidate out of its group. The value must
// match this candidate's own value or visible label; a miss is
// ErrRadioMismatch, which the session treats as "not this one" rather than
// a failure.
func (s *Strategies) fillRadio(ctx context.Context, el *rod.Element, value string) error {
	res, err := el.Context(ctx).Eval(radioInfoJS)
	if err != nil {
		return fmt.Errorf("fill: radio info: %w", err)
	}
	var info struct {
		Value string `json:"value"`
		Label string `json:"label"`
	}
	if err := unmarshalEval(res, &info); err != nil {
		return fmt.Errorf("fill: radio info: %w", err)
	}

	if _, stage := fuzzyMatch(value, []string{info.Value, info.Label}); stage == matchNone {
		return ErrRadioMismatch
	}

	if _, err := el.Context(ctx).Eval(clickJS); err != nil {
		return fmt.Errorf("fill: radio click: %w", err)
	}

	checked, err := evalBool(ctx, el, isCheckedJS)
	if err != nil {
		return fmt.Errorf("fill: radio verify: %w", err)
	}
	if !checked {
		return ErrVerifyFailed
	}
	return nil
}

// fillFile attaches the document through the native file-list first and
// falls back to a synthetic drag-and-drop for dropzone widgets that hide
// the real input.
func (s *Strategies) fillFile(ctx context.Context, el *rod.Element, v Value) error {
	if len(v.FileData) == 0 || v.FileName == "" {
		return fmt.Errorf("fill: file field without file payload")
	}

	tmp, err := os.CreateTemp("", "formfill-*"+filepath.Ext(v.FileName))
	if err == nil {
		path := tmp.Name()
		_, werr := tmp.Write(v.FileData)
		cerr := tmp.Close()
		defer os.Remove(path)
		if werr == nil && cerr == nil {
			if err := el.Context(ctx).SetFiles([]string{path}); err == nil {
				if n, err := evalInt(ctx, el, fileCountJS); err == nil && n > 0 {
					return nil
				}
			}
		}
	}

	b64 := base64.StdEncoding.EncodeToString(v.FileData)
	ok, err := evalBool(ctx, el, dropFileJS, v.FileName, mimeForName(v.FileName), b64)
	if err != nil {
		return fmt.Errorf("fill: drop file: %w", err)
	}
	if !ok {
		return ErrVerifyFailed
	}
	return nil
}

// isNativeSelect reports whether the canonical element is a real <select>.
func isNativeSelect(ctx context.Context, el *rod.Element) (bool, error) {
	return evalBool(ctx, el, `() => this.tagName === 'SELECT'`)
}

// searchPrefix picks a short distinctive prefix to filter a searchable
// combobox without typing the whole value.
func searchPrefix(value string) string {
	v := strings.TrimSpace(value)
	if i := strings.IndexByte(v, ' '); i > 0 {
		v = v[:i]
	}
	return truncateRunes(v, 8)
}

// truncateRunes cuts s to at most n runes, never splitting a multi-byte
// character.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	seen := 0
	for i := range s {
		if seen == n {
			return s[:i]
		}
		seen++
	}
	return s
}

// otherOptionIndex finds an "Other / not listed" escape option.
func otherOptionIndex(opts []popup.Option) int {
	for i, o := range opts {
		n := identity.NormalizeText(o.Text)
		if n == "other" || strings.HasPrefix(n, "other ") ||
			strings.Contains(n, "not listed") || strings.Contains(n, "not in this list") {
			return i
		}
	}
	return -1
}

func splitMulti(value string) []string {
	parts := strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ';' })
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// truthy maps a mapped answer onto a checkbox state. Anything that is not
// an explicit negative counts as checked, because mappers only assign
// checkbox values they want set.
func truthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "no", "false", "0", "n", "off", "unchecked":
		return false
	}
	return true
}

func mimeForName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".txt":
		return "text/plain"
	case ".rtf":
		return "application/rtf"
	default:
		return "application/octet-stream"
	}
}
