package resumecheck

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// buildPDF assembles a minimal but structurally valid single-page PDF with
// the given text, xref table included.
func buildPDF(text string) []byte {
	escaped := strings.NewReplacer(`\`, `\\`, "(", `\(`, ")", `\)`).Replace(text)
	stream := "BT\n/F1 12 Tf\n72 720 Td\n(" + escaped + ") Tj\nET"

	var b strings.Builder
	b.WriteString("%PDF-1.4\n")

	offsets := make([]int, 6)

	offsets[1] = b.Len()
	b.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	offsets[2] = b.Len()
	b.WriteString("2 0 obj\n<< /Type /Pages /Kids [3 0 R] /Count 1 >>\nendobj\n")

	offsets[3] = b.Len()
	b.WriteString("3 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>\nendobj\n")

	offsets[4] = b.Len()
	fmt.Fprintf(&b, "4 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n", len(stream), stream)

	offsets[5] = b.Len()
	b.WriteString("5 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	xref := b.Len()
	b.WriteString("xref\n0 6\n0000000000 65535 f \n")
	for i := 1; i <= 5; i++ {
		fmt.Fprintf(&b, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&b, "trailer\n<< /Size 6 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", xref)

	return []byte(b.String())
}

func TestValidatePDF(t *testing.T) {
	info, err := Validate("resume.pdf", buildPDF("Ada Lovelace - Software Engineer"))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if info.Pages != 1 {
		t.Errorf("pages = %d, want 1", info.Pages)
	}
	if info.Bytes == 0 {
		t.Error("bytes should be recorded")
	}
}

func TestValidateRejectsEmpty(t *testing.T) {
	if _, err := Validate("resume.pdf", nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("err = %v, want ErrEmpty", err)
	}
}

func TestValidateRejectsGarbagePDF(t *testing.T) {
	_, err := Validate("resume.pdf", []byte("this is not a pdf at all"))
	if !errors.Is(err, ErrNotPDF) {
		t.Errorf("err = %v, want ErrNotPDF", err)
	}
}

func TestValidatePassesThroughNonPDF(t *testing.T) {
	info, err := Validate("resume.docx", []byte("PK\x03\x04 pretend docx"))
	if err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if info.Pages != 0 {
		t.Errorf("pages = %d, want 0 for a non-PDF passthrough", info.Pages)
	}
}

func TestValidateRejectsOversize(t *testing.T) {
	big := make([]byte, MaxBytes+1)
	if _, err := Validate("resume.pdf", big); !errors.Is(err, ErrTooLarge) {
		t.Errorf("err = %v, want ErrTooLarge", err)
	}
}
