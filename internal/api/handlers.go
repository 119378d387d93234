package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"cardscan-go/internal/aggregator"
	"cardscan-go/internal/dataset"
	"cardscan-go/internal/export"
	"cardscan-go/internal/extractor"
	"cardscan-go/internal/logger"
	"cardscan-go/internal/ocr"
	"cardscan-go/internal/processor"
	"cardscan-go/internal/storage"
	"cardscan-go/internal/types"
)

type HandlerConfig struct {
	MaxUploadBytes int64
	BatchWorkers   int
}

type CardHandler struct {
	proc      *processor.Processor
	store     storage.Store
	maxUpload int64
	workers   int
	log       *logger.Logger
}

func NewCardHandler(proc *processor.Processor, store storage.Store, cfg HandlerConfig, log *logger.Logger) *CardHandler {
	return &CardHandler{
		proc:      proc,
		store:     store,
		maxUpload: cfg.MaxUploadBytes,
		workers:   cfg.BatchWorkers,
		log:       log.Component("api"),
	}
}

func (h *CardHandler) reqLog(r *http.Request) *logger.Logger {
	l := h.log.WithRequest(r)
	if id := middleware.GetReqID(r.Context()); id != "" {
		l = l.With("req_id", id)
	}
	return l
}

// UploadCard stores the image, runs OCR and extraction, and returns the
// editable record.
func (h *CardHandler) UploadCard(w http.ResponseWriter, r *http.Request) {
	log := h.reqLog(r).With("handler", "upload")
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}

	key := storage.UploadKey(up.name)
	url, err := h.store.Save(r.Context(), key, up.data, up.contentType)
	if err != nil {
		log.WithError(err).Error("store upload failed")
		writeError(w, http.StatusInternalServerError, "store upload failed")
		return
	}
	log = log.With("storage_url", url)

	res, err := h.proc.ProcessImage(r.Context(), up.data, up.name)
	res.StorageURL = url
	res.UploadKey = key
	if !debug(r) {
		res.Sources = nil
	}
	if err != nil {
		log.WithError(err).Warn("processing failed")
		writeFailure(w, err, res)
		return
	}
	log.WithField("card_id", res.ID).WithField("duration_ms", res.DurationMs).Info("card extracted")
	writeJSON(w, http.StatusOK, res)
}

type extractRequest struct {
	Transcript string `json:"transcript"`
}

// Extract runs the pipeline on a transcript supplied by the caller.
func (h *CardHandler) Extract(w http.ResponseWriter, r *http.Request) {
	var req extractRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, h.maxUpload)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res, err := h.proc.ProcessTranscript(r.Context(), req.Transcript)
	if !debug(r) {
		res.Sources = nil
	}
	if err != nil {
		h.reqLog(r).WithError(err).Warn("extract failed")
		writeFailure(w, err, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Download returns the (possibly user-edited) record as an attachment.
func (h *CardHandler) Download(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	rec, err := decodeRecord(r, h.maxUpload)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": format.FileName("contact"),
	}))
	if err := export.WriteRecord(w, format, rec); err != nil {
		h.reqLog(r).WithError(err).Error("failed to write download")
	}
}

// UploadSheet extracts records for every transcript row of an uploaded XLSX
// workbook and returns them as JSON with a coverage summary, or as XLSX.
func (h *CardHandler) UploadSheet(w http.ResponseWriter, r *http.Request) {
	log := h.reqLog(r).With("handler", "batch")
	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	up, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	rows, err := dataset.LoadReader(bytes.NewReader(up.data), up.name)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	results, err := h.proc.ProcessRows(r.Context(), rows, h.workers)
	if err != nil {
		log.WithError(err).Warn("batch failed")
		writeError(w, statusFor(err), err.Error())
		return
	}
	summary := aggregator.Aggregate(results)
	log.WithField("rows", summary.Rows).WithField("failed", summary.Failed).Info("batch extracted")

	if format == export.FormatJSON {
		writeJSON(w, http.StatusOK, batchResponse{Summary: summary, Results: results})
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": format.FileName("contacts"),
	}))
	if err := export.WriteBatchXLSX(w, results); err != nil {
		log.WithError(err).Error("failed to write batch report")
	}
}

type batchResponse struct {
	Summary aggregator.Summary  `json:"summary"`
	Results []types.BatchResult `json:"results"`
}

// GetUpload serves a stored card image back by its upload key.
func (h *CardHandler) GetUpload(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	data, err := h.store.Get(r.Context(), key)
	if err != nil {
		h.reqLog(r).WithError(err).WithField("upload_key", key).Debug("upload lookup failed")
		writeError(w, http.StatusNotFound, "upload not found")
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Write(data)
}

type upload struct {
	name        string
	contentType string
	data        []byte
}

// readUpload reads the multipart "file" part, writing the error response
// itself when it fails.
func (h *CardHandler) readUpload(w http.ResponseWriter, r *http.Request) (upload, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		if tooLarge(err) {
			writeError(w, http.StatusRequestEntityTooLarge, "file too large")
			return upload{}, false
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return upload{}, false
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "no file part")
		return upload{}, false
	}
	defer file.Close()
	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "no selected file")
		return upload{}, false
	}
	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "read upload failed")
		return upload{}, false
	}
	return upload{name: header.Filename, contentType: header.Header.Get("Content-Type"), data: data}, true
}

func tooLarge(err error) bool {
	var tooBig *http.MaxBytesError
	return errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large")
}

// decodeRecord reads a record from JSON, urlencoded or multipart form fields.
// Repeated form keys keep their first value; unknown keys are ignored.
func decodeRecord(r *http.Request, limit int64) (types.ContactRecord, error) {
	var rec types.ContactRecord
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch ct {
	case "application/json":
		if err := json.NewDecoder(io.LimitReader(r.Body, limit)).Decode(&rec); err != nil {
			return rec, fmt.Errorf("invalid JSON body")
		}
		return rec, nil
	case "multipart/form-data":
		if err := r.ParseMultipartForm(limit); err != nil {
			return rec, fmt.Errorf("invalid multipart body")
		}
	default:
		if err := r.ParseForm(); err != nil {
			return rec, fmt.Errorf("invalid form body")
		}
	}
	for key, vals := range r.PostForm {
		k, ok := types.ParseFieldKey(key)
		if !ok || len(vals) == 0 {
			continue
		}
		rec.Set(k, vals[0])
	}
	return rec, nil
}

func debug(r *http.Request) bool {
	v := strings.ToLower(r.URL.Query().Get("debug"))
	return v == "1" || v == "true"
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, extractor.ErrModelUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ocr.ErrUnsupportedImage):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// failureResponse is the CardResult envelope without a record.
type failureResponse struct {
	ID         string `json:"id"`
	FileName   string `json:"file_name,omitempty"`
	StorageURL string `json:"storage_url,omitempty"`
	UploadKey  string `json:"upload_key,omitempty"`
	Transcript string `json:"transcript,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error"`
}

func writeFailure(w http.ResponseWriter, err error, res types.CardResult) {
	msg := res.Error
	if msg == "" {
		msg = err.Error()
	}
	writeJSON(w, statusFor(err), failureResponse{
		ID:         res.ID,
		FileName:   res.FileName,
		StorageURL: res.StorageURL,
		UploadKey:  res.UploadKey,
		Transcript: res.Transcript,
		DurationMs: res.DurationMs,
		Error:      msg,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
