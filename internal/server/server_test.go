package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medishare/medlabel/internal/common"
	"github.com/medishare/medlabel/internal/entity"
	"github.com/medishare/medlabel/internal/export"
	"github.com/medishare/medlabel/internal/match"
	"github.com/medishare/medlabel/internal/ocr"
	"github.com/medishare/medlabel/internal/repository"
	"github.com/medishare/medlabel/internal/selftest"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakePipeline struct {
	rec      entity.Record
	err      error
	gotInput ocr.Input
	gotText  string
	gotID    int64
	gotLLM   bool
}

func (f *fakePipeline) ProcessImage(_ context.Context, in ocr.Input, medicineID int64, useLLM bool) (entity.Record, error) {
	f.gotInput = in
	f.gotID = medicineID
	f.gotLLM = useLLM
	return f.rec, f.err
}

func (f *fakePipeline) ProcessText(_ context.Context, rawText string, useLLM bool) entity.Record {
	f.gotText = rawText
	f.gotLLM = useLLM
	return f.rec
}

type fakeRepo struct {
	meds map[int64]*entity.DonatedMedicine
	list []*entity.DonatedMedicine
}

func (f *fakeRepo) GetByID(_ context.Context, id int64) (*entity.DonatedMedicine, error) {
	if m, ok := f.meds[id]; ok {
		return m, nil
	}
	return nil, common.NewAppError("MEDICINE_NOT_FOUND", "missing", common.ErrNotFound)
}
func (f *fakeRepo) Exists(_ context.Context, id int64) (bool, error) {
	_, ok := f.meds[id]
	return ok, nil
}
func (f *fakeRepo) List(context.Context, string) ([]*entity.DonatedMedicine, error) {
	return f.list, nil
}
func (f *fakeRepo) Create(context.Context, *entity.DonatedMedicine) (int64, error) { return 0, nil }
func (f *fakeRepo) UpdateExtraction(context.Context, int64, repository.MedicinePatch) error {
	return nil
}

func strp(s string) *string { return &s }

func newTestServer(p ImageProcessor, repo repository.MedicineRepository) *Server {
	if repo == nil {
		repo = &fakeRepo{}
	}
	return New(
		common.ServerConfig{HTTPAddr: ":0"},
		nil,
		p,
		repo,
		match.NewMatcher(common.MatchConfig{MinSimilarity: 70, MaxSimilarity: 80}),
		export.NewService(repo, nil),
		&selftest.Checker{Timeout: time.Second},
	)
}

func doRequest(s *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakePipeline{}, nil)
	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func multipartBody(t *testing.T, fields map[string]string, fileName string, fileData []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	part, err := w.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	_, _ = part.Write(fileData)
	_ = w.Close()
	return &buf, w.FormDataContentType()
}

func TestExtractUpload(t *testing.T) {
	p := &fakePipeline{rec: entity.Record{MedicineName: "Nicip Plus", ExpiryDate: "07/2025"}}
	s := newTestServer(p, nil)

	body, ctype := multipartBody(t, map[string]string{"medicine_id": "42"}, "label.jpg", []byte("img"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", body)
	req.Header.Set("Content-Type", ctype)

	w := doRequest(s, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if p.gotID != 42 {
		t.Errorf("medicine id = %d, want 42", p.gotID)
	}
	if p.gotInput.FileName != "label.jpg" || len(p.gotInput.Data) == 0 {
		t.Errorf("input = %+v", p.gotInput)
	}

	var rec entity.Record
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if rec.MedicineName != "Nicip Plus" {
		t.Errorf("medicineName = %q", rec.MedicineName)
	}
}

func TestExtractByURL(t *testing.T) {
	p := &fakePipeline{rec: entity.Record{MedicineName: "PARACIP-500"}}
	s := newTestServer(p, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract",
		strings.NewReader(`{"url":"https://example.com/label.png","medicine_id":7}`))
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(s, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if p.gotInput.URL != "https://example.com/label.png" || p.gotID != 7 {
		t.Errorf("input = %+v id = %d", p.gotInput, p.gotID)
	}
	if !p.gotLLM {
		t.Errorf("use_llm should default to true")
	}
}

func TestExtractRawText(t *testing.T) {
	p := &fakePipeline{rec: entity.Record{MedicineName: "Itragreat-100 (Itraconazole Capsules IP)"}}
	s := newTestServer(p, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract",
		strings.NewReader(`{"raw_text":"Itragreat-100\nItraconazole Capsules IP","use_llm":false}`))
	req.Header.Set("Content-Type", "application/json")

	w := doRequest(s, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if p.gotText == "" {
		t.Fatalf("raw text path not taken")
	}
	if p.gotLLM {
		t.Errorf("use_llm=false not honored")
	}
}

func TestExtractNoInput(t *testing.T) {
	s := newTestServer(&fakePipeline{}, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	if w := doRequest(s, req); w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestExtractNoTextMapsTo422(t *testing.T) {
	p := &fakePipeline{err: common.ErrNoText}
	s := newTestServer(p, nil)

	body, ctype := multipartBody(t, nil, "blank.jpg", []byte("img"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", body)
	req.Header.Set("Content-Type", ctype)

	if w := doRequest(s, req); w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
}

func TestExtractUpstreamFailureMapsTo502(t *testing.T) {
	p := &fakePipeline{err: errors.New("ocr down")}
	s := newTestServer(p, nil)

	body, ctype := multipartBody(t, nil, "a.jpg", []byte("img"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/extract", body)
	req.Header.Set("Content-Type", ctype)

	if w := doRequest(s, req); w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", w.Code)
	}
}

func TestGetMedicine(t *testing.T) {
	repo := &fakeRepo{meds: map[int64]*entity.DonatedMedicine{
		5: {ID: 5, MedicineName: strp("RAXITID-150")},
	}}
	s := newTestServer(&fakePipeline{}, repo)

	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/medicines/5", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	w = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/medicines/99", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	w = doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/medicines/abc", nil))
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestSimilarMedicines(t *testing.T) {
	target := &entity.DonatedMedicine{ID: 1, Ingredients: strp("Nimesulide, Paracetamol, Caffeine, Phenylephrine, Chlorpheniramine")}
	repo := &fakeRepo{
		meds: map[int64]*entity.DonatedMedicine{1: target},
		list: []*entity.DonatedMedicine{
			target,
			{ID: 2, Ingredients: strp("Nimesulide, Paracetamol, Caffeine, Phenylephrine")},
		},
	}
	s := newTestServer(&fakePipeline{}, repo)

	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/medicines/1/similar", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp struct {
		Count   int `json:"count"`
		Matches []struct {
			Similarity int `json:"similarity"`
		} `json:"matches"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 1 || resp.Matches[0].Similarity != 80 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSelfTestHealthy(t *testing.T) {
	s := newTestServer(&fakePipeline{}, nil)
	w := doRequest(s, httptest.NewRequest(http.MethodGet, "/api/v1/selftest", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	s := newTestServer(&fakePipeline{}, nil)
	w := doRequest(s, httptest.NewRequest(http.MethodOptions, "/api/v1/medicines", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Errorf("CORS header missing")
	}
}
