package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/go-chi/chi/v5"

	"github.com/zapponejosh/shift-rota/internal/calendar"
	"github.com/zapponejosh/shift-rota/internal/config"
	"github.com/zapponejosh/shift-rota/internal/database"
	"github.com/zapponejosh/shift-rota/internal/export"
	"github.com/zapponejosh/shift-rota/internal/metrics"
	"github.com/zapponejosh/shift-rota/internal/palette"
	"github.com/zapponejosh/shift-rota/internal/rota"
)

// maxRangeDays bounds the worker range endpoint.
const maxRangeDays = 366

// Handlers contains all HTTP handlers and their dependencies.
type Handlers struct {
	db       *database.DB
	schedule *rota.Schedule
	assigner calendar.Assigner
	palette  palette.Palette
	exporter *export.Exporter
	metrics  *metrics.Collector
	cfg      *config.Config
	logger   *slog.Logger
}

// Deps are the collaborators the handlers need.
type Deps struct {
	DB       *database.DB
	Schedule *rota.Schedule
	Palette  palette.Palette
	Exporter *export.Exporter
	Metrics  *metrics.Collector
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(deps Deps, cfg *config.Config, logger *slog.Logger) *Handlers {
	return &Handlers{
		db:       deps.DB,
		schedule: deps.Schedule,
		assigner: deps.Metrics.CountAssignments(deps.Schedule),
		palette:  deps.Palette,
		exporter: deps.Exporter,
		metrics:  deps.Metrics,
		cfg:      cfg,
		logger:   logger,
	}
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.db.Health(r.Context()); err != nil {
		h.logger.Warn("health check failed", slog.Any("error", err))
		WriteError(w, http.StatusServiceUnavailable, "Database unhealthy", "HEALTH_CHECK_FAILED")
		return
	}

	WriteSuccess(w, map[string]string{
		"status": "healthy",
	})
}

type rosterResponse struct {
	AnchorDate  civil.Date       `json:"anchor_date"`
	CycleLength int              `json:"cycle_length"`
	SuperCycle  int              `json:"super_cycle"`
	Rotation    []rota.ShiftKind `json:"rotation"`
	Workers     []workerInfo     `json:"workers"`
	Palette     palette.Palette  `json:"palette"`
	FirstMonth  string           `json:"first_month"`
	LastMonth   string           `json:"last_month"`
}

type workerInfo struct {
	Name   string            `json:"name"`
	Anchor rota.WorkerAnchor `json:"anchor"`
}

// GetRoster handles GET /api/v1/roster
func (h *Handlers) GetRoster(w http.ResponseWriter, r *http.Request) {
	roster := h.schedule.Roster()
	workers := make([]workerInfo, 0, len(roster))
	for _, name := range roster {
		anchor, _ := h.schedule.Anchor(name)
		workers = append(workers, workerInfo{Name: name, Anchor: anchor})
	}

	WriteSuccess(w, rosterResponse{
		AnchorDate:  h.schedule.AnchorDate(),
		CycleLength: h.schedule.CycleLength(),
		SuperCycle:  h.schedule.SuperCycle(),
		Rotation:    h.schedule.Rotation(),
		Workers:     workers,
		Palette:     h.palette,
		FirstMonth:  calendar.MinMonth.String(),
		LastMonth:   calendar.MaxMonth.String(),
	})
}

// entryResponse is one worker's assignment with its display style.
type entryResponse struct {
	Worker        string         `json:"worker,omitempty"`
	Date          *civil.Date    `json:"date,omitempty"`
	Shift         rota.ShiftKind `json:"shift"`
	CyclePosition int            `json:"cycle_position"`
	Badge         string         `json:"badge,omitempty"`
	Label         string         `json:"label"`
	Background    string         `json:"background"`
	Foreground    string         `json:"foreground"`
}

func (h *Handlers) entry(worker string, a rota.Assignment) entryResponse {
	style := h.palette.Style(a.Shift)
	return entryResponse{
		Worker:        worker,
		Shift:         a.Shift,
		CyclePosition: a.CyclePosition,
		Badge:         a.DayBadge(),
		Label:         style.Label,
		Background:    style.Background,
		Foreground:    style.Foreground,
	}
}

// selection parses the workers query parameter. Unlike the engine, the
// API rejects names that are not on the roster.
func (h *Handlers) selection(r *http.Request) (calendar.Selection, error) {
	names := calendar.SplitNames(r.URL.Query().Get("workers"))
	for i, n := range names {
		names[i] = strings.ToUpper(n)
		if !h.schedule.HasWorker(names[i]) {
			return calendar.Selection{}, fmt.Errorf("unknown worker %q", n)
		}
	}
	return calendar.NewSelection(h.schedule.Roster(), names...), nil
}

// GetDayAssignments handles GET /api/v1/assignments/{date}
func (h *Handlers) GetDayAssignments(w http.ResponseWriter, r *http.Request) {
	dateStr := chi.URLParam(r, "date")
	date, err := calendar.ParseDate(dateStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid date format: %s. Use YYYY-MM-DD", dateStr))
		return
	}

	sel, err := h.selection(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "UNKNOWN_WORKER")
		return
	}

	workers := sel.Workers()
	entries := make([]entryResponse, 0, len(workers))
	for _, name := range workers {
		entries = append(entries, h.entry(name, h.assigner.Assign(name, date)))
	}

	WriteSuccess(w, map[string]any{
		"date":        date,
		"weekday":     calendar.Weekday(date).String(),
		"assignments": entries,
	})
}

// GetWorkerAssignments handles GET /api/v1/workers/{worker}/assignments?start=YYYY-MM-DD&end=YYYY-MM-DD
func (h *Handlers) GetWorkerAssignments(w http.ResponseWriter, r *http.Request) {
	worker := strings.ToUpper(chi.URLParam(r, "worker"))
	if !h.schedule.HasWorker(worker) {
		WriteNotFound(w, fmt.Sprintf("Worker %s not found", worker))
		return
	}

	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr == "" || endStr == "" {
		WriteBadRequest(w, "Both start and end date parameters are required")
		return
	}

	start, err := calendar.ParseDate(startStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid start date format: %s. Use YYYY-MM-DD", startStr))
		return
	}
	end, err := calendar.ParseDate(endStr)
	if err != nil {
		WriteBadRequest(w, fmt.Sprintf("Invalid end date format: %s. Use YYYY-MM-DD", endStr))
		return
	}

	if start.After(end) {
		WriteBadRequest(w, "Start date must be before or equal to end date")
		return
	}
	if end.DaysSince(start)+1 > maxRangeDays {
		WriteBadRequest(w, fmt.Sprintf("Date range cannot exceed %d days", maxRangeDays))
		return
	}

	days := make([]entryResponse, 0, end.DaysSince(start)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		date := d
		e := h.entry("", h.assigner.Assign(worker, date))
		e.Date = &date
		days = append(days, e)
	}

	WriteSuccess(w, map[string]any{
		"worker":      worker,
		"start":       start,
		"end":         end,
		"assignments": days,
	})
}

type calendarResponse struct {
	Month    string         `json:"month"`
	Title    string         `json:"title"`
	Prev     string         `json:"prev"`
	Next     string         `json:"next"`
	Workers  []string       `json:"workers"`
	DayNames []string       `json:"day_names"`
	Cells    []cellResponse `json:"cells"`
}

type cellResponse struct {
	Empty   bool            `json:"empty"`
	Date    *civil.Date     `json:"date,omitempty"`
	Day     int             `json:"day,omitempty"`
	Entries []entryResponse `json:"entries,omitempty"`
}

// month parses and range-checks the {month} path parameter.
func (h *Handlers) month(w http.ResponseWriter, r *http.Request) (calendar.Month, bool) {
	m, err := calendar.ParseMonth(chi.URLParam(r, "month"))
	if err != nil {
		WriteBadRequest(w, err.Error())
		return calendar.Month{}, false
	}
	if !calendar.InRange(m) {
		WriteError(w, http.StatusBadRequest,
			fmt.Sprintf("Month %s is outside %s..%s", m, calendar.MinMonth, calendar.MaxMonth), "MONTH_OUT_OF_RANGE")
		return calendar.Month{}, false
	}
	return m, true
}

// GetCalendar handles GET /api/v1/calendar/{month}
func (h *Handlers) GetCalendar(w http.ResponseWriter, r *http.Request) {
	m, ok := h.month(w, r)
	if !ok {
		return
	}
	sel, err := h.selection(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "UNKNOWN_WORKER")
		return
	}

	view := calendar.BuildMonth(h.assigner, m, sel)

	cells := make([]cellResponse, len(view.Cells))
	for i, c := range view.Cells {
		if c.Empty {
			cells[i] = cellResponse{Empty: true}
			continue
		}
		date := c.Date
		cell := cellResponse{Date: &date, Day: date.Day, Entries: make([]entryResponse, len(c.Entries))}
		for j, e := range c.Entries {
			cell.Entries[j] = h.entry(e.Worker, e.Assignment)
		}
		cells[i] = cell
	}

	WriteSuccess(w, calendarResponse{
		Month:    m.String(),
		Title:    view.Title(),
		Prev:     calendar.PrevMonth(m).String(),
		Next:     calendar.NextMonth(m).String(),
		Workers:  view.Workers,
		DayNames: calendar.DayNames,
		Cells:    cells,
	})
}

// GetCalendarImage handles GET /api/v1/calendar/{month}/image
// With ?download=1 the image is sent as an attachment.
func (h *Handlers) GetCalendarImage(w http.ResponseWriter, r *http.Request) {
	m, ok := h.month(w, r)
	if !ok {
		return
	}
	sel, err := h.selection(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error(), "UNKNOWN_WORKER")
		return
	}

	img, err := h.exporter.Month(m, sel)
	if err != nil {
		h.logger.Error("failed to render month",
			slog.String("month", m.String()),
			slog.Any("error", err))
		WriteInternalError(w, "Failed to render image")
		return
	}

	download := r.URL.Query().Get("download")
	WritePNG(w, img.Filename, img.PNG, download == "1" || download == "true")
}
