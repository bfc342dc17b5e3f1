package main

import (
	"bytes"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/zapponejosh/shift-rota/internal/rota"
)

type dayEntry struct {
	Worker        string         `json:"worker"`
	Date          string         `json:"date"`
	Shift         rota.ShiftKind `json:"shift"`
	CyclePosition int            `json:"cycle_position"`
	Badge         string         `json:"badge"`
}

type calendarData struct {
	Month string `json:"month"`
	Prev  string `json:"prev"`
	Next  string `json:"next"`
	Cells []struct {
		Empty bool `json:"empty"`
	} `json:"cells"`
}

type exportBatch struct {
	ID      string `json:"id"`
	Exports []struct {
		ID       string `json:"id"`
		Filename string `json:"filename"`
		URL      string `json:"url"`
	} `json:"exports"`
}

// smokeRunner exercises every endpoint of a running server once.
type smokeRunner struct {
	api          *apiClient
	out          io.Writer
	schedule     *rota.Schedule
	withExports  bool
	successCount int
	errorCount   int
	errors       []string
}

func newSmokeCmd() *cobra.Command {
	var (
		baseURL string
		apiKey  string
		exports bool
	)

	cmd := &cobra.Command{
		Use:   "smoke",
		Short: "Smoke-test a running API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r := &smokeRunner{
				api:         newAPIClient(baseURL, apiKey, 2*time.Minute),
				out:         cmd.OutOrStdout(),
				schedule:    rota.Default2026(),
				withExports: exports,
			}
			if err := r.api.get("/health", nil); err != nil {
				return fmt.Errorf("cannot connect to %s, make sure the API server is running: %w", baseURL, err)
			}

			r.run()
			if r.errorCount > 0 {
				return fmt.Errorf("%d smoke check(s) failed", r.errorCount)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&baseURL, "url", "http://localhost:8080", "base URL of the API")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for export routes")
	cmd.Flags().BoolVar(&exports, "exports", true, "also create, download and revoke an export batch")
	return cmd
}

func (r *smokeRunner) run() {
	fmt.Fprintln(r.out, "==============================================")
	fmt.Fprintln(r.out, "Shift Rota API Smoke Test")
	fmt.Fprintln(r.out, "==============================================")
	fmt.Fprintf(r.out, "Base URL: %s\n", r.api.baseURL)

	r.testRoster()
	r.testAnchorDay()
	r.testCalendarNavigation()
	r.testCalendarImage()
	if r.withExports {
		r.testExportLifecycle()
	}

	r.printSummary()
}

func (r *smokeRunner) testRoster() {
	r.printSection("Roster")

	var data struct {
		CycleLength int `json:"cycle_length"`
		Workers     []struct {
			Name string `json:"name"`
		} `json:"workers"`
	}
	if err := r.api.get("/api/v1/roster", &data); err != nil {
		r.recordError("Roster", err.Error())
		return
	}

	roster := r.schedule.Roster()
	if len(data.Workers) != len(roster) {
		r.recordError("Roster", fmt.Sprintf("got %d workers, want %d", len(data.Workers), len(roster)))
		return
	}
	for i, w := range data.Workers {
		if w.Name != roster[i] {
			r.recordError("Roster", fmt.Sprintf("worker %d is %s, want %s", i, w.Name, roster[i]))
			return
		}
	}
	r.recordSuccess(fmt.Sprintf("Roster order and %d-day cycle", data.CycleLength))
}

func (r *smokeRunner) testAnchorDay() {
	r.printSection("Anchor Day")

	anchor := r.schedule.AnchorDate()
	var data struct {
		Assignments []dayEntry `json:"assignments"`
	}
	if err := r.api.get("/api/v1/assignments/"+anchor.String(), &data); err != nil {
		r.recordError("Anchor day", err.Error())
		return
	}

	for _, e := range data.Assignments {
		anchorPos, _ := r.schedule.Anchor(e.Worker)
		want := r.schedule.Assign(e.Worker, anchor)
		if e.Shift != want.Shift || e.CyclePosition != anchorPos.CyclePosition {
			r.recordError("Anchor day", fmt.Sprintf("%s is %s/%d, want %s/%d",
				e.Worker, e.Shift, e.CyclePosition, want.Shift, anchorPos.CyclePosition))
			continue
		}
		r.recordSuccess(fmt.Sprintf("%s %s day %d", e.Worker, e.Shift, e.CyclePosition))
	}
}

func (r *smokeRunner) testCalendarNavigation() {
	r.printSection("Calendar Navigation")

	tests := []struct{ month, prev, next string }{
		{"2026-01", "2026-12", "2026-02"},
		{"2026-06", "2026-05", "2026-07"},
		{"2026-12", "2026-11", "2026-01"},
	}
	for _, tt := range tests {
		var data calendarData
		if err := r.api.get("/api/v1/calendar/"+tt.month, &data); err != nil {
			r.recordError(tt.month, err.Error())
			continue
		}
		if data.Prev != tt.prev || data.Next != tt.next || len(data.Cells) != 42 {
			r.recordError(tt.month, fmt.Sprintf("prev=%s next=%s cells=%d", data.Prev, data.Next, len(data.Cells)))
			continue
		}
		r.recordSuccess(fmt.Sprintf("%s: prev %s, next %s", tt.month, tt.prev, tt.next))
	}

	if err := r.api.get("/api/v1/calendar/2027-01", nil); err == nil {
		r.recordError("Out of range", "2027-01 was accepted")
	} else {
		r.recordSuccess("Months outside 2026 are rejected")
	}
}

func (r *smokeRunner) testCalendarImage() {
	r.printSection("Calendar Image")

	resp, body, err := r.api.getRaw("/api/v1/calendar/2026-03/image?workers=SITI")
	if err != nil {
		r.recordError("Image", err.Error())
		return
	}
	if resp.StatusCode != http.StatusOK {
		r.recordError("Image", fmt.Sprintf("status %d", resp.StatusCode))
		return
	}
	r.checkPNG("Image", body)
}

func (r *smokeRunner) testExportLifecycle() {
	r.printSection("Export Lifecycle")

	var batch exportBatch
	body := map[string]any{"workers": []string{"SITI", "IRA"}, "months": []int{2, 1}}
	if err := r.api.do(http.MethodPost, "/api/v1/exports", body, &batch); err != nil {
		r.recordError("Create", err.Error())
		return
	}
	if len(batch.Exports) != 2 || batch.Exports[0].Filename != "01_2026_SITI-IRA.png" {
		r.recordError("Create", fmt.Sprintf("unexpected batch %+v", batch.Exports))
	} else {
		r.recordSuccess("Created batch " + batch.ID)
	}

	for _, e := range batch.Exports {
		_, data, err := r.api.getRaw(e.URL)
		if err != nil {
			r.recordError("Download "+e.Filename, err.Error())
			continue
		}
		r.checkPNG("Download "+e.Filename, data)
	}

	if err := r.api.do(http.MethodDelete, "/api/v1/exports/"+batch.ID, nil, nil); err != nil {
		r.recordError("Revoke", err.Error())
		return
	}
	if err := r.api.get("/api/v1/exports/"+batch.ID, nil); err == nil {
		r.recordError("Revoke", "batch still listed after delete")
		return
	}
	r.recordSuccess("Revoked batch")
}

func (r *smokeRunner) checkPNG(context string, data []byte) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		r.recordError(context, fmt.Sprintf("not a PNG: %v", err))
		return
	}
	r.recordSuccess(fmt.Sprintf("%s: %dx%d PNG, %d bytes", context, cfg.Width, cfg.Height, len(data)))
}

func (r *smokeRunner) printSection(name string) {
	fmt.Fprintf(r.out, "\n--- %s ---\n\n", name)
}

func (r *smokeRunner) recordSuccess(msg string) {
	r.successCount++
	fmt.Fprintf(r.out, "  ✓ %s\n", msg)
}

func (r *smokeRunner) recordError(context, msg string) {
	r.errorCount++
	errStr := fmt.Sprintf("%s: %s", context, msg)
	r.errors = append(r.errors, errStr)
	fmt.Fprintf(r.out, "  ✗ %s\n", errStr)
}

func (r *smokeRunner) printSummary() {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, "==============================================")
	fmt.Fprintf(r.out, "  Passed: %d\n", r.successCount)
	fmt.Fprintf(r.out, "  Failed: %d\n", r.errorCount)
	for _, err := range r.errors {
		fmt.Fprintf(r.out, "  • %s\n", err)
	}
}
