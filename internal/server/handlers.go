package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/medishare/medlabel/internal/common"
	"github.com/medishare/medlabel/internal/ocr"
)

// Health reports process liveness only; dependency health lives in SelfTest.
func (s *Server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type extractRequest struct {
	URL        string `json:"url"`
	RawText    string `json:"raw_text"`
	MedicineID int64  `json:"medicine_id"`
	UseLLM     *bool  `json:"use_llm"` // default true
}

// Extract runs the pipeline on an uploaded label image (multipart "file"), a
// JSON body carrying an image URL, or already-extracted raw text. An optional
// medicine_id attaches the result to an existing donated_meds row in the
// background; use_llm=false restricts the run to the rule cascade.
func (s *Server) Extract(c *gin.Context) {
	in, rawText, medicineID, useLLM, ok := s.extractInput(c)
	if !ok {
		return
	}

	if rawText != "" {
		c.JSON(http.StatusOK, s.pipeline.ProcessText(c.Request.Context(), rawText, useLLM))
		return
	}

	rec, err := s.pipeline.ProcessImage(c.Request.Context(), in, medicineID, useLLM)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNoText):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no readable text in image"})
		case errors.Is(err, common.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			s.logger.Error("extract failed", "error", err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "extraction failed"})
		}
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) extractInput(c *gin.Context) (in ocr.Input, rawText string, medicineID int64, useLLM, ok bool) {
	if file, err := c.FormFile("file"); err == nil {
		f, err := file.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file"})
			return ocr.Input{}, "", 0, false, false
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read file content"})
			return ocr.Input{}, "", 0, false, false
		}
		medicineID, _ = strconv.ParseInt(c.PostForm("medicine_id"), 10, 64)
		useLLM = true
		if v, err := strconv.ParseBool(c.PostForm("use_llm")); err == nil {
			useLLM = v
		}
		return ocr.Input{FileName: file.Filename, Data: data}, "", medicineID, useLLM, true
	}

	var req extractRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.URL == "" && req.RawText == "") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "provide a file upload, an image url, or raw_text"})
		return ocr.Input{}, "", 0, false, false
	}
	useLLM = req.UseLLM == nil || *req.UseLLM
	return ocr.Input{URL: req.URL}, req.RawText, req.MedicineID, useLLM, true
}

// GetMedicine returns one donated_meds row.
func (s *Server) GetMedicine(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid medicine id"})
		return
	}
	med, err := s.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "medicine not found"})
			return
		}
		s.logger.Error("get medicine failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	c.JSON(http.StatusOK, med)
}

// ListMedicines returns the inventory, optionally filtered by ?status=.
func (s *Server) ListMedicines(c *gin.Context) {
	meds, err := s.repo.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		s.logger.Error("list medicines failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"medicines": meds, "count": len(meds)})
}

// SimilarMedicines returns inventory rows whose ingredients fall inside the
// similarity band relative to the given row.
func (s *Server) SimilarMedicines(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid medicine id"})
		return
	}
	target, err := s.repo.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "medicine not found"})
			return
		}
		s.logger.Error("similar lookup failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	pool, err := s.repo.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		s.logger.Error("similar pool failed", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	matches := s.matcher.FindSimilar(target, pool)
	c.JSON(http.StatusOK, gin.H{"matches": matches, "count": len(matches)})
}

// ExportInventory streams the inventory as an XLSX workbook.
func (s *Server) ExportInventory(c *gin.Context) {
	out, err := s.exporter.ExportInventoryXLSX(c.Request.Context(), c.Query("status"))
	if err != nil {
		s.logger.Error("export failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	name := "inventory-" + time.Now().Format("2006-01-02") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", out)
}

// SelfTest probes the external dependencies and reports per-dependency
// health. 200 when everything answered, 503 otherwise.
func (s *Server) SelfTest(c *gin.Context) {
	rep := s.checker.Run(c.Request.Context())
	status := http.StatusOK
	if !rep.Healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, rep)
}
