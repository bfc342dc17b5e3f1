package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/zapponejosh/shift-rota/internal/calendar"
	"github.com/zapponejosh/shift-rota/internal/database"
	"github.com/zapponejosh/shift-rota/internal/export"
	"github.com/zapponejosh/shift-rota/internal/rota"
)

// maxRequestBody bounds export request bodies.
const maxRequestBody = 64 << 10

// CreateExportsRequest is the body of POST /api/v1/exports.
type CreateExportsRequest struct {
	Workers []string `json:"workers"`
	Months  []int    `json:"months"` // 1..12 of the displayed year
}

// Validate checks the request. Both lists must be non-empty.
func (req CreateExportsRequest) Validate(schedule *rota.Schedule) error {
	var errs []error
	if len(req.Workers) == 0 {
		errs = append(errs, errors.New("select at least one worker"))
	}
	if len(req.Months) == 0 {
		errs = append(errs, errors.New("select at least one month"))
	}
	for _, w := range req.Workers {
		if !schedule.HasWorker(strings.ToUpper(w)) {
			errs = append(errs, fmt.Errorf("unknown worker %q", w))
		}
	}
	for _, m := range req.Months {
		if m < 1 || m > 12 {
			errs = append(errs, fmt.Errorf("month %d must be between 1 and 12", m))
		}
	}
	return errors.Join(errs...)
}

type exportItem struct {
	ID        string    `json:"id"`
	Month     string    `json:"month"`
	Title     string    `json:"title"`
	Workers   []string  `json:"workers"`
	Filename  string    `json:"filename"`
	SizeBytes int       `json:"size_bytes"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

type batchResponse struct {
	ID      string       `json:"id"`
	Exports []exportItem `json:"exports"`
}

func newBatchResponse(b *database.Batch) batchResponse {
	resp := batchResponse{ID: b.ID, Exports: make([]exportItem, len(b.Exports))}
	for i, e := range b.Exports {
		m := calendar.Month{Year: e.Year, Month: time.Month(e.Month)}
		resp.Exports[i] = exportItem{
			ID:        e.ID,
			Month:     m.String(),
			Title:     m.Title(),
			Workers:   e.Workers,
			Filename:  e.Filename,
			SizeBytes: e.SizeBytes,
			URL:       fmt.Sprintf("/api/v1/exports/%s/%s.png", b.ID, e.ID),
			CreatedAt: e.CreatedAt,
		}
	}
	return resp
}

// CreateExports handles POST /api/v1/exports
//
// The batch is rendered and stored before the response is written. If the
// client goes away the batch is abandoned and nothing is stored.
func (h *Handlers) CreateExports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateExportsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if err := req.Validate(h.schedule); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
		return
	}

	names := make([]string, len(req.Workers))
	for i, n := range req.Workers {
		names[i] = strings.ToUpper(n)
	}
	sel := calendar.NewSelection(h.schedule.Roster(), names...)

	months := make([]calendar.Month, len(req.Months))
	for i, n := range req.Months {
		months[i] = calendar.Month{Year: rota.DefaultYear, Month: time.Month(n)}
	}

	images, err := h.exporter.Batch(ctx, months, sel)
	if err != nil {
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			h.logger.Info("export request abandoned", slog.Any("error", err))
			WriteError(w, http.StatusServiceUnavailable, "Export cancelled", "CANCELLED")
		case errors.Is(err, export.ErrNoMonths), errors.Is(err, export.ErrMonthOutOfRange):
			WriteBadRequest(w, err.Error())
		default:
			h.logger.Error("failed to render export batch", slog.Any("error", err))
			WriteInternalError(w, "Failed to render images")
		}
		return
	}

	batchID := uuid.NewString()
	exports := make([]*database.Export, len(images))
	for i, img := range images {
		exports[i] = &database.Export{
			ID:       uuid.NewString(),
			BatchID:  batchID,
			Year:     img.Month.Year,
			Month:    int(img.Month.Month),
			Workers:  img.Workers,
			Filename: img.Filename,
			PNG:      img.PNG,
		}
	}

	if err := h.db.CreateExports(ctx, exports); err != nil {
		h.logger.Error("failed to store export batch", slog.Any("error", err))
		WriteInternalError(w, "Failed to store images")
		return
	}

	h.logger.Info("export batch stored",
		slog.String("batch_id", batchID),
		slog.Int("images", len(exports)),
	)

	batch := &database.Batch{ID: batchID, Exports: make([]database.Export, len(exports))}
	for i, e := range exports {
		batch.Exports[i] = *e
	}
	WriteCreated(w, newBatchResponse(batch))
}

// GetExportBatch handles GET /api/v1/exports/{batchID}
func (h *Handlers) GetExportBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")

	batch, err := h.db.ListBatch(r.Context(), batchID)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Export batch not found")
			return
		}
		h.logger.Error("failed to list export batch", slog.String("batch_id", batchID), slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve export batch")
		return
	}

	WriteSuccess(w, newBatchResponse(batch))
}

// DownloadExport handles GET /api/v1/exports/{batchID}/{exportID}.png
func (h *Handlers) DownloadExport(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")
	exportID := chi.URLParam(r, "exportID")

	e, err := h.db.GetExport(r.Context(), batchID, exportID)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Export not found")
			return
		}
		h.logger.Error("failed to get export", slog.String("export_id", exportID), slog.Any("error", err))
		WriteInternalError(w, "Failed to retrieve export")
		return
	}

	WritePNG(w, e.Filename, e.PNG, true)
}

// DeleteExportBatch handles DELETE /api/v1/exports/{batchID}
func (h *Handlers) DeleteExportBatch(w http.ResponseWriter, r *http.Request) {
	batchID := chi.URLParam(r, "batchID")

	n, err := h.db.DeleteBatch(r.Context(), batchID)
	if err != nil {
		if database.IsNotFound(err) {
			WriteNotFound(w, "Export batch not found")
			return
		}
		h.logger.Error("failed to delete export batch", slog.String("batch_id", batchID), slog.Any("error", err))
		WriteInternalError(w, "Failed to delete export batch")
		return
	}

	WriteSuccess(w, map[string]any{
		"id":      batchID,
		"deleted": n,
	})
}
