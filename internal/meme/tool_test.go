package meme

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"mememaker/internal/config"
)

// fakeTool stands in for gm: identify prints a verbose block, convert writes
// the last argument as the output file.
type fakeTool struct {
	mu    sync.Mutex
	calls [][]string

	geometry    string
	identifyErr error
	convertErr  error
	skipOutput  bool
}

func (f *fakeTool) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, append([]string{name}, args...))
	f.mu.Unlock()

	switch args[0] {
	case "identify":
		if f.identifyErr != nil {
			return nil, f.identifyErr
		}
		geometry := f.geometry
		if geometry == "" {
			geometry = "1200x800"
		}
		return []byte("Image: " + args[len(args)-1] + "\n  Format: JPEG (Joint Photographic Experts Group JFIF format)\n  Geometry: " + geometry + "\n  Class: DirectClass\n"), nil
	case "convert":
		if f.convertErr != nil {
			return nil, f.convertErr
		}
		if !f.skipOutput {
			if err := os.WriteFile(args[len(args)-1], []byte("rendered-image"), 0o600); err != nil {
				return nil, err
			}
		}
		return nil, nil
	}
	return nil, nil
}

func (f *fakeTool) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeTool) lastCall() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return nil
	}
	return f.calls[len(f.calls)-1]
}

// imageHost serves a fixed body and counts requests.
type imageHost struct {
	*httptest.Server
	hits atomic.Int32
}

func newImageHost(t *testing.T, status int, body []byte) *imageHost {
	t.Helper()
	h := &imageHost{}
	h.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.hits.Add(1)
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(status)
		_, _ = w.Write(body)
	}))
	t.Cleanup(h.Close)
	return h
}

func testMemeConfig(t *testing.T) config.MemeConfig {
	t.Helper()
	cfg := config.Default().Meme
	cfg.TmpDir = t.TempDir()
	cfg.FontPath = "/fonts/impact.ttf"
	return cfg
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, filepath.Join(dir, e.Name()))
	}
	return names
}
