package repository

import (
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func TestBuildUpdateEmptyPatch(t *testing.T) {
	q, args := buildUpdate(7, MedicinePatch{})
	if q != "" || args != nil {
		t.Errorf("buildUpdate(empty) = (%q, %v), want empty", q, args)
	}
}

func TestBuildUpdateSingleField(t *testing.T) {
	q, args := buildUpdate(7, MedicinePatch{MedicineName: strPtr("Nicip Plus")})
	want := "UPDATE donated_meds SET medicine_name = $1, updated_at = now() WHERE id = $2"
	if q != want {
		t.Errorf("query = %q, want %q", q, want)
	}
	if len(args) != 2 || args[0] != "Nicip Plus" || args[1] != int64(7) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildUpdateFullPatch(t *testing.T) {
	q, args := buildUpdate(3, MedicinePatch{
		MedicineName: strPtr("PARACIP-500"),
		Quantity:     intPtr(10),
		ExpiryDate:   strPtr("07/2025"),
		Ingredients:  strPtr("Paracetamol IP 500 mg"),
		RawText:      strPtr("raw"),
		Status:       strPtr("uploaded"),
	})
	if len(args) != 7 {
		t.Fatalf("args = %v, want 7 entries", args)
	}
	for _, col := range []string{"medicine_name", "quantity", "expiry_date", "ingredients", "raw_text", "status", "updated_at"} {
		if !strings.Contains(q, col) {
			t.Errorf("query missing column %s: %q", col, q)
		}
	}
	if !strings.HasSuffix(q, "WHERE id = $7") {
		t.Errorf("query placeholder numbering wrong: %q", q)
	}
}

func TestBuildUpdateSkipsNilFields(t *testing.T) {
	q, _ := buildUpdate(1, MedicinePatch{ExpiryDate: strPtr("08/2026"), Status: strPtr("approved")})
	if strings.Contains(q, "medicine_name") || strings.Contains(q, "quantity") {
		t.Errorf("nil fields leaked into query: %q", q)
	}
	if !strings.Contains(q, "expiry_date = $1") || !strings.Contains(q, "status = $2") {
		t.Errorf("set clauses wrong: %q", q)
	}
}
