// Package resumecheck validates a resume blob before the file-upload
// strategy touches the page. Rejecting a corrupt or absurd document here is
// cheap; discovering it after the form flagged the upload is not.
package resumecheck

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// MaxPages is the page-count ceiling. Recruiting platforms routinely
// reject long documents, and a 50-page "resume" is a wrong file pick.
const MaxPages = 15

// MaxBytes is the size ceiling, matching common ATS upload limits.
const MaxBytes = 10 << 20

var (
	ErrEmpty    = errors.New("resumecheck: empty document")
	ErrTooLarge = errors.New("resumecheck: document too large")
	ErrNotPDF   = errors.New("resumecheck: not a valid PDF")
	ErrTooLong  = errors.New("resumecheck: too many pages")
)

// Info describes a validated resume.
type Info struct {
	Pages int
	Bytes int
}

// Validate checks that data is a structurally sound PDF within the size
// and page limits. Non-PDF resume formats (docx, txt) are passed through
// untouched: only PDFs have structure worth validating here.
func Validate(name string, data []byte) (Info, error) {
	if len(data) == 0 {
		return Info{}, ErrEmpty
	}
	if len(data) > MaxBytes {
		return Info{}, fmt.Errorf("%w: %d bytes", ErrTooLarge, len(data))
	}

	if !strings.EqualFold(ext(name), ".pdf") {
		return Info{Bytes: len(data)}, nil
	}

	conf := model.NewDefaultConfiguration()
	ctx, err := api.ReadValidateAndOptimize(bytes.NewReader(data), conf)
	if err != nil {
		return Info{}, fmt.Errorf("%w: %v", ErrNotPDF, err)
	}

	if ctx.PageCount > MaxPages {
		return Info{}, fmt.Errorf("%w: %d pages", ErrTooLong, ctx.PageCount)
	}

	return Info{Pages: ctx.PageCount, Bytes: len(data)}, nil
}

func ext(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i:]
	}
	return ""
}
