package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/lromero/covid-data-pipeline/internal/covid"
	"github.com/lromero/covid-data-pipeline/internal/store"
)

// TestLatestRunNotFound verifies the latest-run endpoint reports 404 before
// any pipeline run has completed.
func TestLatestRunNotFound(t *testing.T) {
	app := fiber.New()
	RegisterRoutes(app, store.NewRunHistory(10))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected status %d, got %d", http.StatusNotFound, resp.StatusCode)
	}
}

func TestLatestRun(t *testing.T) {
	app := fiber.New()
	history := store.NewRunHistory(10)
	history.Record(covid.RunResult{Rows: 42, Path: "data/raw/covid_historical_data.parquet"}, nil)
	history.Record(covid.RunResult{}, errors.New("push failed"))
	RegisterRoutes(app, history)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var outcome store.RunOutcome
	if err := json.NewDecoder(resp.Body).Decode(&outcome); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if outcome.Error != "push failed" {
		t.Fatalf("expected latest run to be the failed one, got %+v", outcome)
	}
}

func TestRunList(t *testing.T) {
	app := fiber.New()
	history := store.NewRunHistory(10)
	history.Record(covid.RunResult{Rows: 10}, nil)
	history.Record(covid.RunResult{Rows: 11}, nil)
	RegisterRoutes(app, history)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}

	var body struct {
		Runs []store.RunOutcome `json:"runs"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(body.Runs))
	}
}
