package meme

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"mememaker/internal/config"
	"mememaker/internal/infra/logging"
	"mememaker/internal/infra/magick"
)

// State is a step of the caption pipeline.
type State int

const (
	StateValidating State = iota
	StateFetching
	StateProbing
	StateCompositing
	StateEncoding
	StateCleaningUp
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateValidating:  "validating",
	StateFetching:    "fetching",
	StateProbing:     "probing",
	StateCompositing: "compositing",
	StateEncoding:    "encoding",
	StateCleaningUp:  "cleaning_up",
	StateDone:        "done",
	StateFailed:      "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// StageError records the state a pipeline run failed in.
type StageError struct {
	State State
	Err   error
}

func (e *StageError) Error() string { return e.State.String() + ": " + e.Err.Error() }

func (e *StageError) Unwrap() error { return e.Err }

// Result is the outcome of a successful run.
type Result struct {
	Base64     string
	Dimensions Dimensions
	Layout     Layout
}

// Service runs caption jobs. It holds no per-request state and is safe for
// concurrent use.
type Service struct {
	cfg        config.MemeConfig
	fetcher    Fetcher
	prober     Prober
	compositor Compositor
}

// New creates a Service. runner executes the external image tool; a nil
// client falls back to http.DefaultClient.
func New(cfg config.MemeConfig, runner magick.Runner, client *http.Client) *Service {
	if cfg.TmpDir == "" {
		cfg.TmpDir = os.TempDir()
	}
	return &Service{
		cfg: cfg,
		fetcher: Fetcher{
			Client:   client,
			Timeout:  cfg.FetchTimeout,
			MaxBytes: cfg.MaxImageBytes,
		},
		prober:     Prober{Runner: runner, Tool: cfg.ToolPath},
		compositor: Compositor{Runner: runner, Tool: cfg.ToolPath},
	}
}

// Generate validates req, captions the image and returns it base64-encoded.
// Both temp files are removed whatever the outcome.
func (s *Service) Generate(ctx context.Context, req Request) (Result, error) {
	r := &run{state: StateValidating, started: time.Now()}

	if err := req.Validate(s.cfg.MaxTextLength); err != nil {
		return Result{}, r.fail(err)
	}

	paths := newTempPaths(s.cfg.TmpDir)
	r.id = paths.id

	cleaned := false
	defer func() {
		if !cleaned {
			Cleanup(paths.source, paths.rendered)
		}
	}()

	res, err := s.execute(ctx, r, req, paths)
	if err != nil {
		return Result{}, r.fail(err)
	}

	r.enter(StateCleaningUp)
	Cleanup(paths.source, paths.rendered)
	cleaned = true

	r.enter(StateDone)
	return res, nil
}

func (s *Service) execute(ctx context.Context, r *run, req Request, paths tempPaths) (Result, error) {
	r.enter(StateFetching)
	if err := s.fetcher.Fetch(ctx, req.Image, paths.source); err != nil {
		return Result{}, err
	}

	r.enter(StateProbing)
	dims, err := s.prober.Probe(ctx, paths.source)
	if err != nil {
		return Result{}, err
	}

	layout := ComputeLayout(dims, s.cfg.Padding)

	r.enter(StateCompositing)
	if err := s.compositor.Compose(ctx, s.renderParameters(req, layout, paths.source), paths.rendered); err != nil {
		return Result{}, err
	}

	r.enter(StateEncoding)
	data, err := Encode(paths.rendered)
	if err != nil {
		return Result{}, err
	}

	return Result{Base64: data, Dimensions: dims, Layout: layout}, nil
}

func (s *Service) renderParameters(req Request, layout Layout, imagePath string) RenderParameters {
	return RenderParameters{
		ImagePath:    imagePath,
		Font:         s.cfg.FontPath,
		FontSize:     layout.FontSize,
		Fill:         s.cfg.FillColor,
		Stroke:       s.cfg.StrokeColor,
		StrokeWeight: s.cfg.StrokeWeight,
		Gravity:      strings.ToLower(s.cfg.Gravity),
		Padding:      s.cfg.Padding,
		TopText:      req.TopText,
		BottomText:   req.BottomText,
		Top:          layout.Top,
		Bottom:       layout.Bottom,
	}
}

type run struct {
	id      string
	state   State
	started time.Time
}

func (r *run) enter(s State) {
	r.state = s
	logging.Info("Meme pipeline state", "job", r.id, "state", s.String())
}

func (r *run) fail(err error) error {
	at := r.state
	r.state = StateFailed
	logging.Warn("Meme pipeline failed", "job", r.id, "state", at.String(), "elapsed_ms", time.Since(r.started).Milliseconds(), "error", err)
	return &StageError{State: at, Err: err}
}
