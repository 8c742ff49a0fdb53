// Package pipeline coordinates the hybrid extraction flow: OCR text in,
// normalized rule extraction, an optional LLM pass over the fields the rules
// could not settle, then cross-field disambiguation and date normalization.
// The LLM is strictly advisory; every stage after OCR degrades to the
// deterministic path on failure.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/medishare/medlabel/constants"
	"github.com/medishare/medlabel/internal/async"
	"github.com/medishare/medlabel/internal/cache"
	"github.com/medishare/medlabel/internal/catalog"
	"github.com/medishare/medlabel/internal/entity"
	"github.com/medishare/medlabel/internal/extract"
	"github.com/medishare/medlabel/internal/llm"
	"github.com/medishare/medlabel/internal/ocr"
)

// Processor coordinates OCR then the extraction stages.
type Processor struct {
	logger    *slog.Logger
	cat       *catalog.Catalog
	ocr       ocr.TextExtractor
	llm       llm.FieldExtractor // nil disables the LLM pass
	extractor *extract.Extractor
	disambig  *extract.Disambiguator
	cache     cache.Store // nil disables caching
	queue     async.Queue // nil disables persistence
	now       func() time.Time
}

func NewProcessor(
	logger *slog.Logger,
	cat *catalog.Catalog,
	textExtractor ocr.TextExtractor,
	fieldExtractor llm.FieldExtractor,
	store cache.Store,
	queue async.Queue,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	if cat == nil {
		cat = catalog.Default()
	}
	return &Processor{
		logger:    logger,
		cat:       cat,
		ocr:       textExtractor,
		llm:       fieldExtractor,
		extractor: extract.NewExtractor(cat),
		disambig:  extract.NewDisambiguator(cat),
		cache:     store,
		queue:     queue,
		now:       time.Now,
	}
}

// ProcessImage runs the full flow for one label image. medicineID > 0 queues
// a background write of the result onto that donated_meds row; persistence
// never affects the returned record or error. useLLM false skips the model
// pass even when a client is configured.
func (p *Processor) ProcessImage(ctx context.Context, in ocr.Input, medicineID int64, useLLM bool) (entity.Record, error) {
	key := cacheKey(in, useLLM)

	if p.cache != nil {
		if rec, ok, err := p.cache.Get(ctx, key); err != nil {
			p.logger.Warn("pipeline.cache.get_failed", "error", err)
		} else if ok {
			p.logger.Info("pipeline.cache.hit", "medicine_id", medicineID)
			p.enqueueStore(ctx, medicineID, rec)
			return rec, nil
		}
	}

	res, err := p.ocr.Extract(ctx, in)
	if err != nil {
		return entity.Record{}, err
	}

	rec := p.ProcessText(ctx, res.Text, useLLM)

	if p.cache != nil {
		if err := p.cache.Put(ctx, key, rec); err != nil {
			p.logger.Warn("pipeline.cache.put_failed", "error", err)
		}
	}
	p.enqueueStore(ctx, medicineID, rec)
	return rec, nil
}

// ProcessText runs every stage after OCR. It cannot fail: whatever the LLM
// or the rules could not determine is simply left empty.
func (p *Processor) ProcessText(ctx context.Context, rawText string, useLLM bool) entity.Record {
	start := p.now()

	text := extract.Normalize(rawText, p.cat)
	if text == "" {
		return entity.Record{RawText: rawText}
	}

	rec := p.extractor.Extract(text)
	rec.RawText = rawText

	uncertain := extract.UncertainFields(rec)
	if useLLM && p.llm != nil && len(uncertain) > 0 {
		p.runLLMPass(ctx, &rec, text, uncertain)
	}

	p.disambig.Apply(&rec, rawText)

	rec.ManufacturingDate = extract.ExpandYear(rec.ManufacturingDate)
	rec.ExpiryDate = extract.ExpandYear(rec.ExpiryDate)
	if left, ok := extract.TimeUntilExpiry(rec.ExpiryDate, p.now()); ok {
		rec.TimeUntilExpiry = left
	}

	p.logger.Info("pipeline.extract.done",
		"uncertain_before_llm", len(uncertain),
		"elapsed_ms", p.now().Sub(start).Milliseconds(),
	)
	return rec
}

// runLLMPass asks the model about the uncertain fields only and merges
// answers for exactly those fields. Any failure leaves the record as the
// rules produced it.
func (p *Processor) runLLMPass(ctx context.Context, rec *entity.Record, text string, uncertain []constants.Field) {
	req := llm.ExtractRequest{
		OCRText:    text,
		Fields:     uncertain,
		Candidates: p.cat.DetectCandidates(text),
	}
	fields, _, err := p.llm.ExtractFields(ctx, req)
	if err != nil {
		p.logger.Warn("pipeline.llm.skipped", "error", err)
		return
	}
	for _, f := range uncertain {
		if v, ok := fields[f]; ok && v != "" {
			extract.SetField(rec, f, v)
		}
	}
}

func (p *Processor) enqueueStore(ctx context.Context, medicineID int64, rec entity.Record) {
	if p.queue == nil || medicineID <= 0 {
		return
	}
	job := async.Job{MedicineID: medicineID, Record: rec, SubmittedAt: p.now()}
	if err := p.queue.Enqueue(ctx, job); err != nil {
		p.logger.Warn("pipeline.store.enqueue_failed", "medicine_id", medicineID, "error", err)
	}
}

// Rules-only results are cached under a distinct key so a later run with the
// LLM enabled does not serve them.
func cacheKey(in ocr.Input, useLLM bool) string {
	key := cache.Key(in.Data)
	if in.URL != "" {
		key = cache.KeyForURL(in.URL)
	}
	if !useLLM {
		key += ":rules"
	}
	return key
}
