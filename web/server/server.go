package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/df07/go-sphere-raytracer/pkg/config"
	"github.com/df07/go-sphere-raytracer/pkg/core"
	"github.com/df07/go-sphere-raytracer/pkg/output"
	"github.com/df07/go-sphere-raytracer/pkg/renderer"
	"github.com/df07/go-sphere-raytracer/pkg/scene"
)

// Server handles web requests for the raytracer
type Server struct {
	port     int
	renderID atomic.Int64
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	return &Server{port: port}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene   string        `json:"scene"`   // Builtin scene name
	Width   int           `json:"width"`   // Image width
	Samples int           `json:"samples"` // Samples per pixel
	Depth   int           `json:"depth"`   // Maximum bounces, config.Unset keeps the scene value
	Seed    int64         `json:"seed"`    // Random seed
	Format  output.Format `json:"format"`  // Image format of the response
}

// Stats represents render statistics
type Stats struct {
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	TotalSamples    int64   `json:"totalSamples"`
	TotalRays       int64   `json:"totalRays"`
	MaxBounces      int     `json:"maxBounces"`
	MeanLuminance   float64 `json:"meanLuminance"`
	StdDevLuminance float64 `json:"stdDevLuminance"`
}

// CompleteUpdate is the final event of a streamed render
type CompleteUpdate struct {
	ImageData string `json:"imageData"` // Base64 encoded PNG
	Stats     Stats  `json:"stats"`
	ElapsedMs int64  `json:"elapsedMs"`
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/render/stream", s.handleRenderStream)
	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleScenes lists the builtin scenes with their camera defaults
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	type sceneDefaults struct {
		scene.SceneInfo
		Width           int     `json:"width"`
		AspectRatio     float64 `json:"aspectRatio"`
		SamplesPerPixel int     `json:"samplesPerPixel"`
		MaxDepth        int     `json:"maxDepth"`
	}

	var scenes []sceneDefaults
	for _, info := range scene.List() {
		sceneObj, err := scene.Lookup(info.Name)
		if err != nil {
			continue
		}
		cfg := sceneObj.CameraConfig
		scenes = append(scenes, sceneDefaults{
			SceneInfo:       info,
			Width:           cfg.ImageWidth,
			AspectRatio:     cfg.AspectRatio,
			SamplesPerPixel: cfg.SamplesPerPixel,
			MaxDepth:        cfg.MaxDepth,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"scenes": scenes})
}

// handleRender renders a scene and responds with the encoded image.
// The render is cancelled if the client disconnects.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	raytracer, err := s.setupRaytracer(req, NewWebLogger(s.nextRenderID(), nil))
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
		return
	}

	frame, _, err := raytracer.Render(r.Context())
	if err != nil {
		log.Printf("Render error: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := output.Encode(&buf, frame, req.Format); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", contentType(req.Format))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleRenderStream renders a scene while streaming console output as SSE
// "console" events, then sends a "complete" event with the PNG image
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		sendSSEEvent(w, "error", fmt.Sprintf("Invalid request: %v", err))
		return
	}

	consoleChan := make(chan ConsoleMessage, 100)
	raytracer, err := s.setupRaytracer(req, NewWebLogger(s.nextRenderID(), consoleChan))
	if err != nil {
		sendSSEEvent(w, "error", err.Error())
		return
	}

	type renderResult struct {
		frame *renderer.Frame
		stats renderer.RenderStats
		err   error
	}
	done := make(chan renderResult, 1)
	startTime := time.Now()
	go func() {
		frame, stats, err := raytracer.Render(r.Context())
		done <- renderResult{frame, stats, err}
	}()

	// This goroutine is the only writer to w
	for {
		select {
		case msg := <-consoleChan:
			sendConsoleMessage(w, msg)
		case result := <-done:
			for len(consoleChan) > 0 {
				sendConsoleMessage(w, <-consoleChan)
			}
			if result.err != nil {
				sendSSEEvent(w, "error", fmt.Sprintf("Render error: %v", result.err))
				return
			}
			sendComplete(w, result.frame, result.stats, time.Since(startTime))
			return
		}
	}
}

func (s *Server) nextRenderID() string {
	return fmt.Sprintf("render-%d", s.renderID.Add(1))
}

var errUnknownScene = errors.New("unknown scene")

// setupRaytracer builds the requested scene with the request overrides applied
func (s *Server) setupRaytracer(req *RenderRequest, logger core.Logger) (*renderer.Raytracer, error) {
	sceneObj, err := scene.Lookup(req.Scene)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", errUnknownScene, req.Scene)
	}

	overrides := config.CameraConfig{
		ImageWidth:      req.Width,
		SamplesPerPixel: req.Samples,
		MaxDepth:        req.Depth,
		DefocusAngle:    config.Unset,
	}
	sceneObj.CameraConfig = overrides.ApplyTo(sceneObj.CameraConfig)

	camera, err := sceneObj.Camera()
	if err != nil {
		return nil, err
	}

	renderConfig := renderer.DefaultRenderConfig()
	renderConfig.Seed = req.Seed
	return renderer.NewRaytracer(sceneObj.World, camera, renderConfig, logger), nil
}

// parseRenderRequest parses request parameters
func parseRenderRequest(values url.Values) (*RenderRequest, error) {
	req := &RenderRequest{Scene: "two-spheres", Format: output.FormatPNG}

	if name := values.Get("scene"); name != "" {
		req.Scene = name
	}

	var err error
	if req.Width, err = parseIntParam(values, "width", 400, 16, 2000); err != nil {
		return nil, err
	}
	if req.Samples, err = parseIntParam(values, "samples", 50, 1, 10000); err != nil {
		return nil, err
	}
	if req.Depth, err = parseIntParam(values, "depth", config.Unset, 0, 1000); err != nil {
		return nil, err
	}
	if seed := values.Get("seed"); seed != "" {
		if req.Seed, err = strconv.ParseInt(seed, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", seed)
		}
	} else {
		req.Seed = renderer.DefaultRenderConfig().Seed
	}
	if format := values.Get("format"); format != "" {
		if req.Format, err = output.ParseFormat(format); err != nil {
			return nil, err
		}
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

func statusFor(err error) int {
	if errors.Is(err, errUnknownScene) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

func contentType(format output.Format) string {
	if format == output.FormatPPM {
		return "image/x-portable-pixmap"
	}
	return "image/png"
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func sendConsoleMessage(w http.ResponseWriter, msg ConsoleMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	sendSSEEvent(w, "console", string(data))
}

func sendComplete(w http.ResponseWriter, frame *renderer.Frame, stats renderer.RenderStats, elapsed time.Duration) {
	var buf bytes.Buffer
	if err := output.WritePNG(&buf, frame); err != nil {
		sendSSEEvent(w, "error", err.Error())
		return
	}

	data, err := json.Marshal(CompleteUpdate{
		ImageData: base64.StdEncoding.EncodeToString(buf.Bytes()),
		Stats: Stats{
			Width:           stats.Width,
			Height:          stats.Height,
			TotalSamples:    stats.TotalSamples,
			TotalRays:       stats.TotalRays,
			MaxBounces:      stats.MaxBounces,
			MeanLuminance:   stats.MeanLuminance,
			StdDevLuminance: stats.StdDevLuminance,
		},
		ElapsedMs: elapsed.Milliseconds(),
	})
	if err != nil {
		sendSSEEvent(w, "error", err.Error())
		return
	}
	sendSSEEvent(w, "complete", string(data))
}

// sendSSEEvent sends a generic SSE event
func sendSSEEvent(w http.ResponseWriter, event, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}
