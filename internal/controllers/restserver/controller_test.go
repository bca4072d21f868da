package restserver

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"

	"github.com/chrissnell/telemetrychart/internal/loader"
	"github.com/chrissnell/telemetrychart/internal/log"
	"github.com/chrissnell/telemetrychart/pkg/config"
	"github.com/chrissnell/telemetrychart/pkg/responseformat"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func newTestController(t *testing.T) *Controller {
	t.Helper()
	root := t.TempDir()
	writeFile(t, root, "laps/a.csv", "xPos,yPos,distanceTraveled\n0,0,0\n1,1,1\n2,1,3\n")
	writeFile(t, root, "laps/b.csv", "xPos,yPos,distanceTraveled\n0,0,0\n1,2,2\n2,2,2\n3,3,5\n")
	writeFile(t, root, "laps/short.csv", "xPos,yPos,distanceTraveled\n0,0,0\n")
	writeFile(t, root, "laps/nodist.csv", "xPos,yPos\n0,0\n1,1\n")
	writeFile(t, root, "top.csv", "Latitude,Longitude\n46.05,14.5\n46.06,14.51\n")

	cfg := config.ConfigData{
		Data:  config.DataSourceData{RootDir: root, ThumbnailSize: 80},
		Chart: config.ChartData{WidthPx: 320, HeightPx: 240},
	}
	ctrl, err := NewController(context.Background(), &sync.WaitGroup{}, cfg, loader.NewDirSource(root), zap.NewNop().Sugar())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return ctrl
}

func get(t *testing.T, ctrl *Controller, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ctrl.Server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestNewControllerDefaults(t *testing.T) {
	ctrl := newTestController(t)
	if ctrl.Server.Addr != "0.0.0.0:8080" {
		t.Errorf("expected default address, got %s", ctrl.Server.Addr)
	}
	if ctrl.cfg.Chart.LineWidth != config.DefaultLineWidth || ctrl.cfg.Chart.WidthPx != 320 {
		t.Errorf("unexpected chart config %+v", ctrl.cfg.Chart)
	}
	if ctrl.cfg.Data.ThumbnailSize != 80 {
		t.Errorf("configured thumbnail size overwritten: %d", ctrl.cfg.Data.ThumbnailSize)
	}
}

func TestNewControllerRejectsBadChartConfig(t *testing.T) {
	tests := []struct {
		name  string
		chart config.ChartData
	}{
		{"unknown ramp", config.ChartData{Ramp: "rainbow"}},
		{"bad leading color", config.ChartData{LeadingColor: "green"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.ConfigData{Chart: tt.chart}
			_, err := NewController(context.Background(), &sync.WaitGroup{}, cfg, loader.MultiSource{}, zap.NewNop().Sugar())
			if err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestGetGroups(t *testing.T) {
	ctrl := newTestController(t)

	rec := get(t, ctrl, "/groups")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}
	if rec.Header().Get(log.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}

	var groups []GroupInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &groups); err != nil {
		t.Fatal(err)
	}
	if len(groups) != 2 || groups[0].Name != "." || groups[1].Name != "laps" {
		t.Fatalf("unexpected groups %+v", groups)
	}
	if got := strings.Join(groups[1].Tracks, ","); got != "a,b,nodist,short" {
		t.Errorf("unexpected tracks %s", got)
	}

	rec = get(t, ctrl, "/groups?format=msgpack")
	var packed []GroupInfo
	if err := msgpack.Unmarshal(rec.Body.Bytes(), &packed); err != nil {
		t.Fatal(err)
	}
	if len(packed) != 2 {
		t.Errorf("unexpected msgpack groups %+v", packed)
	}
}

func TestTrackRoutes(t *testing.T) {
	ctrl := newTestController(t)

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantKind   string
	}{
		{"continuous", "/tracks/laps/a.png", http.StatusOK, ""},
		{"discrete", "/tracks/laps/a.png?style=discrete", http.StatusOK, ""},
		{"plain variable width", "/tracks/laps/b.png?style=plain&width_base=1&width_scale=0.5", http.StatusOK, ""},
		{"plain without distance", "/tracks/laps/nodist.png?style=plain", http.StatusOK, ""},
		{"fixed bounds", "/tracks/laps/a.png?xmin=0&xmax=5&ymin=0&ymax=5&hide_axes=1", http.StatusOK, ""},
		{"root group", "/tracks/./top.png?style=plain&cmap=kindlmann", http.StatusOK, ""},
		{"unknown track", "/tracks/laps/missing.png", http.StatusNotFound, "not_found"},
		{"unknown group", "/tracks/other/a.png", http.StatusNotFound, "not_found"},
		{"single sample", "/tracks/laps/short.png", http.StatusUnprocessableEntity, "insufficient_data"},
		{"styled without distance", "/tracks/laps/nodist.png", http.StatusUnprocessableEntity, "unrecognized_schema"},
		{"bad style", "/tracks/laps/a.png?style=zigzag", http.StatusBadRequest, "bad_request"},
		{"bad ramp", "/tracks/laps/a.png?cmap=nope", http.StatusBadRequest, "bad_request"},
		{"bad bounds", "/tracks/laps/a.png?xmin=5&xmax=0&ymin=0&ymax=1", http.StatusBadRequest, "bad_request"},
		{"bad width", "/tracks/laps/a.png?width_scale=wide", http.StatusBadRequest, "bad_request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(t, ctrl, tt.target)
			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body)
			}
			if tt.wantStatus == http.StatusOK {
				if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
					t.Errorf("expected image/png, got %s", ct)
				}
				if !bytes.HasPrefix(rec.Body.Bytes(), pngMagic) {
					t.Error("body is not a PNG")
				}
				return
			}
			var body responseformat.ErrorBody
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Error != tt.wantKind {
				t.Errorf("expected error kind %s, got %s", tt.wantKind, body.Error)
			}
		})
	}
}

func TestServeTrackHTML(t *testing.T) {
	ctrl := newTestController(t)
	rec := get(t, ctrl, "/tracks/laps/a")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "<img src='data:image/png;base64,") {
		t.Error("expected inline image")
	}
}

func TestGetDelta(t *testing.T) {
	ctrl := newTestController(t)

	rec := get(t, ctrl, "/compare/laps/delta?a=a&b=b")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
	}

	var got DeltaResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}

	// b is one sample longer and is truncated to a's length.
	wantDeltas := []float64{0, -1, 1}
	wantIndices := []int{-1, 1, -1}
	wantColors := []string{"#008000", "#11ff00", "#008000"}
	if len(got.Deltas) != len(wantDeltas) {
		t.Fatalf("unexpected deltas %v", got.Deltas)
	}
	for i := range wantDeltas {
		if got.Deltas[i] != wantDeltas[i] || got.Indices[i] != wantIndices[i] || got.Colors[i] != wantColors[i] {
			t.Errorf("sample %d: got (%v, %d, %s), want (%v, %d, %s)", i,
				got.Deltas[i], got.Indices[i], got.Colors[i], wantDeltas[i], wantIndices[i], wantColors[i])
		}
	}
	if got.Summary.Samples != 3 || got.Summary.LeadingSamples != 2 || got.Summary.PeakIndex != 1 {
		t.Errorf("unexpected summary %+v", got.Summary)
	}
}

func TestCompareErrors(t *testing.T) {
	ctrl := newTestController(t)

	tests := []struct {
		target     string
		wantStatus int
	}{
		{"/compare/laps/delta?a=a", http.StatusBadRequest},
		{"/compare/laps/delta?a=a&b=missing", http.StatusNotFound},
		{"/compare/laps/delta?a=a&b=nodist", http.StatusUnprocessableEntity},
		{"/compare/laps.png?b=b", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			if rec := get(t, ctrl, tt.target); rec.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body)
			}
		})
	}
}

func TestCompareCharts(t *testing.T) {
	ctrl := newTestController(t)

	rec := get(t, ctrl, "/compare/laps.png?a=b&b=a")
	if rec.Code != http.StatusOK || !bytes.HasPrefix(rec.Body.Bytes(), pngMagic) {
		t.Fatalf("expected PNG, got %d: %s", rec.Code, rec.Body)
	}

	rec = get(t, ctrl, "/compare/laps?a=a&b=b")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "a vs b") || !strings.Contains(body, "data:image/png;base64,") {
		t.Errorf("unexpected comparison page %s", body)
	}
}

func TestGalleryAndGroupPages(t *testing.T) {
	ctrl := newTestController(t)

	rec := get(t, ctrl, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`href="/groups/laps"`, "(top level)", "data:image/png;base64,"} {
		if !strings.Contains(body, want) {
			t.Errorf("gallery missing %q", want)
		}
	}

	rec = get(t, ctrl, "/groups/laps")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body = rec.Body.String()
	if strings.Count(body, "data:image/png;base64,") != 2 {
		t.Errorf("expected two rendered tracks in group page")
	}
	if n := strings.Count(body, `class="error"`); n != 2 {
		t.Errorf("expected two data errors listed inline, got %d", n)
	}

	if rec := get(t, ctrl, "/groups/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown group, got %d", rec.Code)
	}
}

func TestDemoRoutes(t *testing.T) {
	ctrl := newTestController(t)

	for _, target := range []string{
		"/demo/line",
		"/demo/var-width-line",
		"/demo/derivative",
		"/demo/derivative?style=discrete",
		"/demo/derivative?style=continuous&cmap=rdylgn",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, ctrl, target)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
			}
			if !strings.HasPrefix(rec.Body.String(), "<img src='data:image/png;base64,") {
				t.Error("expected an inline image tag")
			}
		})
	}

	if rec := get(t, ctrl, "/demo/derivative?style=discrete&boundaries=1,0"); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for descending boundaries, got %d", rec.Code)
	}
}

func TestHTMLResponsesAllowAnyOrigin(t *testing.T) {
	ctrl := newTestController(t)

	for _, target := range []string{
		"/",
		"/groups/laps",
		"/tracks/laps/a",
		"/compare/laps?a=a&b=b",
		"/demo/line",
	} {
		t.Run(target, func(t *testing.T) {
			rec := get(t, ctrl, target)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body)
			}
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
				t.Errorf("expected Access-Control-Allow-Origin *, got %q", got)
			}
		})
	}
}
