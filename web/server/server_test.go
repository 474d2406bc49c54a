package server

import (
	"bufio"
	"encoding/base64"
	"encoding/json"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	NewServer(0).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHandleHealth(t *testing.T) {
	rec := get(t, "/api/health")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("Unexpected body %q", rec.Body.String())
	}
}

func TestHandleScenes(t *testing.T) {
	rec := get(t, "/api/scenes")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var body struct {
		Scenes []struct {
			Name            string `json:"name"`
			SamplesPerPixel int    `json:"samplesPerPixel"`
		} `json:"scenes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(body.Scenes) != 3 {
		t.Fatalf("Expected 3 scenes, got %d", len(body.Scenes))
	}
	for _, s := range body.Scenes {
		if s.Name == "" || s.SamplesPerPixel < 1 {
			t.Errorf("Incomplete scene entry %+v", s)
		}
	}
}

func TestHandleRender_PNG(t *testing.T) {
	rec := get(t, "/api/render?scene=two-spheres&width=32&samples=2&depth=4")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Expected image/png, got %q", ct)
	}

	img, err := png.Decode(rec.Body)
	if err != nil {
		t.Fatalf("Failed to decode PNG: %v", err)
	}
	// 32 / (16/9) = 18 rows
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 18 {
		t.Errorf("Expected 32x18 image, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestHandleRender_PPM(t *testing.T) {
	rec := get(t, "/api/render?width=16&samples=1&depth=2&format=ppm")
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.HasPrefix(rec.Body.String(), "P3\n16 9\n255\n") {
		t.Errorf("Unexpected PPM header %q", rec.Body.String()[:min(rec.Body.Len(), 20)])
	}
}

func TestHandleRender_Errors(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		expected int
	}{
		{"unknown scene", "/api/render?scene=cornell&width=16&samples=1", http.StatusNotFound},
		{"width too small", "/api/render?width=2", http.StatusBadRequest},
		{"bad samples", "/api/render?samples=lots", http.StatusBadRequest},
		{"negative depth", "/api/render?depth=-3", http.StatusBadRequest},
		{"bad seed", "/api/render?seed=x", http.StatusBadRequest},
		{"bad format", "/api/render?format=gif", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := get(t, tt.path); rec.Code != tt.expected {
				t.Errorf("Expected %d, got %d", tt.expected, rec.Code)
			}
		})
	}
}

func TestHandleRenderStream(t *testing.T) {
	rec := get(t, "/api/render/stream?width=16&samples=1&depth=2")
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("Expected text/event-stream, got %q", ct)
	}

	events := map[string][]string{}
	var event string
	scanner := bufio.NewScanner(rec.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			events[event] = append(events[event], strings.TrimPrefix(line, "data: "))
		}
	}

	if len(events["console"]) == 0 {
		t.Error("Expected console events from the render log")
	}
	if len(events["complete"]) != 1 {
		t.Fatalf("Expected one complete event, got %d (events: %v)", len(events["complete"]), events)
	}

	var update CompleteUpdate
	if err := json.Unmarshal([]byte(events["complete"][0]), &update); err != nil {
		t.Fatalf("Failed to decode complete event: %v", err)
	}
	if update.Stats.Width != 16 || update.Stats.Height != 9 {
		t.Errorf("Expected 16x9 stats, got %dx%d", update.Stats.Width, update.Stats.Height)
	}
	data, err := base64.StdEncoding.DecodeString(update.ImageData)
	if err != nil {
		t.Fatalf("Invalid base64 image: %v", err)
	}
	if _, err := png.Decode(strings.NewReader(string(data))); err != nil {
		t.Errorf("Invalid PNG in complete event: %v", err)
	}
}

func TestHandleRenderStream_InvalidRequest(t *testing.T) {
	rec := get(t, "/api/render/stream?width=abc")
	if !strings.Contains(rec.Body.String(), "event: error") {
		t.Errorf("Expected error event, got %q", rec.Body.String())
	}
}
