package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/medishare/medlabel/constants"
	"github.com/medishare/medlabel/internal/async"
	"github.com/medishare/medlabel/internal/cache"
	"github.com/medishare/medlabel/internal/llm"
	"github.com/medishare/medlabel/internal/ocr"
)

type fakeOCR struct {
	text  string
	err   error
	calls atomic.Int32
}

func (f *fakeOCR) Extract(context.Context, ocr.Input) (ocr.Result, error) {
	f.calls.Add(1)
	if f.err != nil {
		return ocr.Result{}, f.err
	}
	return ocr.Result{Text: f.text}, nil
}

type fakeLLM struct {
	fields map[constants.Field]string
	err    error
	gotReq *llm.ExtractRequest
}

func (f *fakeLLM) ExtractFields(_ context.Context, req llm.ExtractRequest) (map[constants.Field]string, []byte, error) {
	f.gotReq = &req
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.fields, nil, nil
}

type fakeQueue struct {
	jobs []async.Job
}

func (f *fakeQueue) Enqueue(_ context.Context, job async.Job) error {
	f.jobs = append(f.jobs, job)
	return nil
}
func (f *fakeQueue) Shutdown(context.Context) {}

const fullLabel = `Itragreat-100
Itraconazole Capsules IP
B.NO.GIC2105
MFG. 07/2023
EXP. 07/2035
10 Capsules`

func TestProcessTextFullLabel(t *testing.T) {
	p := NewProcessor(nil, nil, nil, nil, nil, nil)
	rec := p.ProcessText(context.Background(), fullLabel, true)

	if want := "Itragreat-100 (Itraconazole Capsules IP)"; rec.MedicineName != want {
		t.Errorf("MedicineName = %q, want %q", rec.MedicineName, want)
	}
	if rec.RawText != fullLabel {
		t.Errorf("RawText not preserved")
	}
	if rec.TimeUntilExpiry == "" {
		t.Errorf("TimeUntilExpiry not derived from %q", rec.ExpiryDate)
	}
}

func TestProcessTextEmptyShortCircuits(t *testing.T) {
	p := NewProcessor(nil, nil, nil, nil, nil, nil)
	rec := p.ProcessText(context.Background(), "   \n  ", true)
	if rec.MedicineName != "" || rec.Ingredients != "" {
		t.Errorf("empty text produced fields: %+v", rec)
	}
}

func TestLLMFailureFallsBackToRules(t *testing.T) {
	model := &fakeLLM{err: errors.New("context deadline exceeded")}
	p := NewProcessor(nil, nil, nil, model, nil, nil)

	// batch and dates are missing, so the LLM pass runs and fails
	rec := p.ProcessText(context.Background(), "Itragreat-100\nItraconazole Capsules IP", true)
	if want := "Itragreat-100 (Itraconazole Capsules IP)"; rec.MedicineName != want {
		t.Errorf("MedicineName = %q, want rule result %q", rec.MedicineName, want)
	}
	if model.gotReq == nil {
		t.Fatalf("LLM pass did not run")
	}
}

func TestLLMOnlyFillsUncertainFields(t *testing.T) {
	model := &fakeLLM{fields: map[constants.Field]string{
		constants.FieldMedicineName: "WrongName-999",
		constants.FieldBatchNumber:  "ZX4321",
	}}
	p := NewProcessor(nil, nil, nil, model, nil, nil)

	rec := p.ProcessText(context.Background(), "Itragreat-100\nItraconazole Capsules IP", true)

	// name was certain from the rules; the model's answer must be discarded
	if want := "Itragreat-100 (Itraconazole Capsules IP)"; rec.MedicineName != want {
		t.Errorf("MedicineName = %q, want %q", rec.MedicineName, want)
	}
	if rec.BatchNumber != "ZX4321" {
		t.Errorf("BatchNumber = %q, want LLM answer ZX4321", rec.BatchNumber)
	}
	for _, f := range model.gotReq.Fields {
		if f == constants.FieldMedicineName {
			t.Errorf("certain field requested from LLM")
		}
	}
}

func TestLLMSkippedWhenAllFieldsCertain(t *testing.T) {
	model := &fakeLLM{}
	p := NewProcessor(nil, nil, nil, model, nil, nil)
	p.ProcessText(context.Background(), fullLabel, true)
	if model.gotReq != nil {
		t.Errorf("LLM consulted although all fields were certain")
	}
}

func TestRulesOnlyRunSkipsLLM(t *testing.T) {
	model := &fakeLLM{fields: map[constants.Field]string{constants.FieldBatchNumber: "ZX4321"}}
	p := NewProcessor(nil, nil, nil, model, nil, nil)

	rec := p.ProcessText(context.Background(), "Itragreat-100\nItraconazole Capsules IP", false)
	if model.gotReq != nil {
		t.Errorf("LLM consulted on a rules-only run")
	}
	if rec.BatchNumber != "" {
		t.Errorf("BatchNumber = %q, want empty without the LLM pass", rec.BatchNumber)
	}
}

func TestProcessImageCachesResult(t *testing.T) {
	fo := &fakeOCR{text: fullLabel}
	store := cache.NewMemory(0)
	p := NewProcessor(nil, nil, fo, nil, store, nil)

	in := ocr.Input{FileName: "a.jpg", Data: []byte("same-bytes")}
	first, err := p.ProcessImage(context.Background(), in, 0, true)
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	second, err := p.ProcessImage(context.Background(), in, 0, true)
	if err != nil {
		t.Fatalf("ProcessImage(cached): %v", err)
	}
	if fo.calls.Load() != 1 {
		t.Errorf("ocr calls = %d, want 1 (second served from cache)", fo.calls.Load())
	}
	if first != second {
		t.Errorf("cached record differs: %+v vs %+v", first, second)
	}
}

func TestProcessImageQueuesStore(t *testing.T) {
	fo := &fakeOCR{text: fullLabel}
	q := &fakeQueue{}
	p := NewProcessor(nil, nil, fo, nil, nil, q)

	_, err := p.ProcessImage(context.Background(), ocr.Input{FileName: "a.jpg", Data: []byte("x")}, 42, true)
	if err != nil {
		t.Fatalf("ProcessImage: %v", err)
	}
	if len(q.jobs) != 1 || q.jobs[0].MedicineID != 42 {
		t.Errorf("jobs = %+v, want one for medicine 42", q.jobs)
	}
}

func TestProcessImageOCRErrorPropagates(t *testing.T) {
	fo := &fakeOCR{err: errors.New("upstream down")}
	q := &fakeQueue{}
	p := NewProcessor(nil, nil, fo, nil, nil, q)

	_, err := p.ProcessImage(context.Background(), ocr.Input{FileName: "a.jpg", Data: []byte("x")}, 42, true)
	if err == nil {
		t.Fatalf("expected OCR error")
	}
	if len(q.jobs) != 0 {
		t.Errorf("store queued despite OCR failure")
	}
}

func TestProcessTextExpandsAbbreviatedYears(t *testing.T) {
	p := NewProcessor(nil, nil, nil, nil, nil, nil)
	rec := p.ProcessText(context.Background(), "PARACIP-500\nMFG. JAN.23\nEXP. JUL.24", true)
	if rec.ManufacturingDate != "JAN 2023" {
		t.Errorf("ManufacturingDate = %q, want JAN 2023", rec.ManufacturingDate)
	}
	if rec.ExpiryDate != "JUL 2024" {
		t.Errorf("ExpiryDate = %q, want JUL 2024", rec.ExpiryDate)
	}
	if rec.TimeUntilExpiry == "" {
		t.Errorf("TimeUntilExpiry empty for parseable expiry")
	}
}
