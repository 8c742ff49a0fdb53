package extract

import (
	"testing"
	"time"
)

func TestExpandYear(t *testing.T) {
	cases := []struct{ in, want string }{
		{"AUG.21", "AUG 2021"},
		{"JUL.24", "JUL 2024"},
		{"Aug21", "Aug 2021"},
		{"AUG21", "AUG 2021"},
		{"07/24", "07/2024"},
		{"07/2024", "07/2024"},
		{"12-05-2023", "12-05-2023"},
		{"", ""},
	}
	for _, c := range cases {
		if got := ExpandYear(c.in); got != c.want {
			t.Errorf("ExpandYear(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseExpiry(t *testing.T) {
	cases := []struct {
		in     string
		want   time.Time
		wantOK bool
	}{
		{"JUL 2024", time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC), true},
		{"07/2025", time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC), true},
		{"Aug-2023", time.Date(2023, time.August, 1, 0, 0, 0, 0, time.UTC), true},
		{"12/05/2023", time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC), true},
		{"not a date", time.Time{}, false},
		{"", time.Time{}, false},
	}
	for _, c := range cases {
		got, ok := ParseExpiry(c.in)
		if ok != c.wantOK {
			t.Errorf("ParseExpiry(%q) ok = %v, want %v", c.in, ok, c.wantOK)
			continue
		}
		if ok && !got.Equal(c.want) {
			t.Errorf("ParseExpiry(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestTimeUntilExpiry(t *testing.T) {
	now := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		expiry string
		want   string
		wantOK bool
	}{
		{"07/2026", "1 month left", true},
		{"12/2026", "6 months left", true},
		{"06/2026", "EXPIRED", true},
		{"01/2024", "EXPIRED", true},
		{"JUL 2024", "EXPIRED", true},
		{"garbage", "", false},
	}
	for _, c := range cases {
		got, ok := TimeUntilExpiry(c.expiry, now)
		if ok != c.wantOK || got != c.want {
			t.Errorf("TimeUntilExpiry(%q) = (%q, %v), want (%q, %v)", c.expiry, got, ok, c.want, c.wantOK)
		}
	}
}

func TestAllCapsNoDotDateExpands(t *testing.T) {
	got := mfgRules.apply("PARACIP-500\nMFG.AUG21\nEXP.JUL23")
	if got != "AUG21" {
		t.Fatalf("mfg cascade captured %q, want AUG21", got)
	}
	if exp := ExpandYear(got); exp != "AUG 2021" {
		t.Errorf("ExpandYear(%q) = %q, want AUG 2021", got, exp)
	}
}

func TestExpiryScenarioAbbreviatedYear(t *testing.T) {
	raw := "JUL.24"
	expanded := ExpandYear(raw)
	if expanded != "JUL 2024" {
		t.Fatalf("ExpandYear(%q) = %q", raw, expanded)
	}
	got, ok := TimeUntilExpiry(expanded, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC))
	if !ok || got != "EXPIRED" {
		t.Errorf("TimeUntilExpiry = (%q, %v), want EXPIRED", got, ok)
	}
}
