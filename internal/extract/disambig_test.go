package extract

import (
	"testing"

	"github.com/medishare/medlabel/internal/entity"
)

func TestDisambiguateLocationName(t *testing.T) {
	d := NewDisambiguator(nil)
	rec := entity.Record{MedicineName: "Mumbai"}
	d.Apply(&rec, "Itraconazole Capsules IP 100 mg, Mfd. at Mumbai")
	if want := "Itragreat-100 (Itraconazole Capsules IP)"; rec.MedicineName != want {
		t.Errorf("MedicineName = %q, want %q", rec.MedicineName, want)
	}
}

func TestDisambiguateRetailBoilerplateName(t *testing.T) {
	d := NewDisambiguator(nil)
	rec := entity.Record{
		MedicineName: "Not to be sold",
		Ingredients:  "Itraconazole Pellets equivalent to Itraconazole IP 100 mg",
	}
	d.Apply(&rec, "Not to be sold by retail without prescription")
	if want := "Itragreat-100 (Itraconazole Capsules IP)"; rec.MedicineName != want {
		t.Errorf("MedicineName = %q, want %q", rec.MedicineName, want)
	}
}

func TestDisambiguateDosageInstructionName(t *testing.T) {
	d := NewDisambiguator(nil)
	rec := entity.Record{MedicineName: "Each uncoated tablet"}
	d.Apply(&rec, "Nicip Plus\nEach uncoated tablet contains Nimesulide BP 100 mg")
	if want := "Nicip Plus (Nimesulide & Paracetamol Tablets)"; rec.MedicineName != want {
		t.Errorf("MedicineName = %q, want %q", rec.MedicineName, want)
	}
}

func TestDisambiguateStrengthOnlyName(t *testing.T) {
	d := NewDisambiguator(nil)
	rec := entity.Record{MedicineName: "500"}
	d.Apply(&rec, "PARACIP-500 Paracetamol Tablets IP")
	if want := "PARACIP-500 (Paracetamol Tablet 500 mg)"; rec.MedicineName != want {
		t.Errorf("MedicineName = %q, want %q", rec.MedicineName, want)
	}
}

func TestDisambiguateRoxithromycinPriority(t *testing.T) {
	d := NewDisambiguator(nil)
	rec := entity.Record{MedicineName: ""}
	d.Apply(&rec, "RANBAXY\nRoxithromycin Tablets IP\nRAXITID: 150")
	if want := "RAXITID-150 (Roxithromycin Tablets IP)"; rec.MedicineName != want {
		t.Errorf("MedicineName = %q, want %q", rec.MedicineName, want)
	}
}

func TestDisambiguateGenericReconstruction(t *testing.T) {
	d := NewDisambiguator(nil)
	rec := entity.Record{MedicineName: ""}
	d.Apply(&rec, "Azithromycin Tablets IP\n250 mg\nStore below 30 C")
	if want := "Azithromycin Tablets IP 250 mg"; rec.MedicineName != want {
		t.Errorf("MedicineName = %q, want %q", rec.MedicineName, want)
	}
}

func TestDisambiguateFixesConfusionAgain(t *testing.T) {
	d := NewDisambiguator(nil)
	rec := entity.Record{MedicineName: "ARACIP-500 Tablets"}
	d.Apply(&rec, "ARACIP-500 Tablets")
	if want := "PARACIP-500 Tablets"; rec.MedicineName != want {
		t.Errorf("MedicineName = %q, want %q", rec.MedicineName, want)
	}
}

func TestDisambiguateClearsPlaceholders(t *testing.T) {
	d := NewDisambiguator(nil)
	rec := entity.Record{
		MedicineName:      "Itragreat-100",
		BatchNumber:       "B.NO.",
		ManufacturingDate: "MFG.MM/YYYY",
		ExpiryDate:        "EXP.MM/YYYY",
	}
	d.Apply(&rec, "")
	if rec.BatchNumber != "" || rec.ManufacturingDate != "" || rec.ExpiryDate != "" {
		t.Errorf("placeholders not cleared: %+v", rec)
	}
}

func TestDisambiguateLeavesGoodRecordAlone(t *testing.T) {
	d := NewDisambiguator(nil)
	rec := entity.Record{
		MedicineName: "Itragreat-100 (Itraconazole Capsules IP)",
		BatchNumber:  "GIC2105",
		ExpiryDate:   "07/2025",
	}
	before := rec
	d.Apply(&rec, itragreatLabel)
	if rec != before {
		t.Errorf("record changed: %+v vs %+v", rec, before)
	}
}
