package extract

import (
	"testing"

	"github.com/medishare/medlabel/internal/catalog"
)

func TestNormalizeWhitespace(t *testing.T) {
	cat := catalog.Default()
	in := "Itragreat-100\r\n\r\n\r\n\r\nItraconazole\tCapsules   IP  \n"
	got := Normalize(in, cat)
	want := "Itragreat-100\n\nItraconazole Capsules IP"
	if got != want {
		t.Errorf("Normalize() = %q, want %q", got, want)
	}
}

func TestNormalizeFixesConfusions(t *testing.T) {
	cat := catalog.Default()
	got := Normalize("ARACIP-500 Tablets", cat)
	if got != "PARACIP-500 Tablets" {
		t.Errorf("Normalize() = %q, want ARACIP corrected", got)
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	cat := catalog.Default()
	inputs := []string{
		"Itragreat-100\r\nB.NO. CP12345\n\n\nEXP. 07/2024",
		"ARACIP-500   \t  Paracetamol Tablets IP",
		"",
		"  \n  \n  ",
	}
	for _, in := range inputs {
		once := Normalize(in, cat)
		twice := Normalize(once, cat)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: %q vs %q", in, once, twice)
		}
	}
}
