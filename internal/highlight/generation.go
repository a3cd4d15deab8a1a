package highlight

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/RaufunNazin/Highlighter/internal/gateway"
	"github.com/RaufunNazin/Highlighter/internal/logging"
	"github.com/RaufunNazin/Highlighter/internal/runs"
	"github.com/RaufunNazin/Highlighter/internal/session"
)

// GenerationState is the lifecycle of the segment generation stage. There is
// no terminal failure state: a failed submission returns to awaiting_inputs
// with the chosen files intact so the user can resubmit.
type GenerationState string

const (
	GenerationAwaitingInputs GenerationState = "awaiting_inputs"
	GenerationSubmitting     GenerationState = "submitting"
	GenerationGenerated      GenerationState = "generated"
)

var (
	// ErrMissingInputs is returned by Submit before any request when either
	// the video or the subtitle has not been selected.
	ErrMissingInputs = errors.New("both a video and a subtitle file must be selected")

	// ErrSubmissionInFlight guards against duplicate submission: at most one
	// generation request is in flight per stage instance.
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
)

// GenerationResult is the durable outcome of one generation run.
type GenerationResult struct {
	VideoRef      string
	TotalSegments int
	TotalTime     float64
}

// GenerationStage drives submit video+subtitle -> await remote segmentation
// -> receive the segment-set summary.
type GenerationStage struct {
	gw      *gateway.Client
	store   *session.Store
	journal *runs.Repository
	logger  *slog.Logger

	mu       sync.Mutex
	state    GenerationState
	video    *Asset
	subtitle *Asset
	result   *GenerationResult
}

func NewGenerationStage(gw *gateway.Client, store *session.Store, journal *runs.Repository, logger *slog.Logger) *GenerationStage {
	return &GenerationStage{
		gw:      gw,
		store:   store,
		journal: journal,
		logger:  logging.WithComponent(logger, "generation"),
		state:   GenerationAwaitingInputs,
	}
}

func (s *GenerationStage) State() GenerationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Video returns the currently selected video asset, or nil.
func (s *GenerationStage) Video() *Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.video
}

// Subtitle returns the currently selected subtitle asset, or nil.
func (s *GenerationStage) Subtitle() *Asset {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subtitle
}

// Result returns the outcome of the last successful submission, or nil.
func (s *GenerationStage) Result() *GenerationResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// SelectVideo validates and records the video input. A rejected file leaves
// any previously selected valid video in place.
func (s *GenerationStage) SelectVideo(a Asset) error {
	if err := ValidateVideo(a); err != nil {
		return err
	}
	s.mu.Lock()
	s.video = &a
	s.mu.Unlock()
	return nil
}

// SelectSubtitle validates and records the subtitle input, retaining the
// previous valid selection on rejection.
func (s *GenerationStage) SelectSubtitle(a Asset) error {
	if err := ValidateSubtitle(a); err != nil {
		return err
	}
	s.mu.Lock()
	s.subtitle = &a
	s.mu.Unlock()
	return nil
}

// Submit uploads the selected pair and awaits the segment-set summary. On
// success the produced video reference is persisted to the session store and
// the stage reaches Generated. On failure the stage returns to
// awaiting_inputs; the chosen files are kept for resubmission.
func (s *GenerationStage) Submit(ctx context.Context) (*GenerationResult, error) {
	s.mu.Lock()
	if s.state == GenerationSubmitting {
		s.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if s.video == nil || s.subtitle == nil {
		s.mu.Unlock()
		return nil, ErrMissingInputs
	}
	video, subtitle := *s.video, *s.subtitle
	s.state = GenerationSubmitting
	s.mu.Unlock()

	runID := s.beginRun(ctx)

	resp, err := s.gw.CreateSegments(ctx,
		gateway.FilePart{Name: video.Name, Path: video.Path},
		gateway.FilePart{Name: subtitle.Name, Path: subtitle.Path},
	)
	if err != nil {
		s.failRun(ctx, runID, err)
		s.setState(GenerationAwaitingInputs)
		return nil, err
	}

	result := &GenerationResult{
		VideoRef:      resp.VideoURL,
		TotalSegments: resp.TotalSegments,
		TotalTime:     resp.TotalTime,
	}

	if err := s.store.SetVideoRef(ctx, result.VideoRef); err != nil {
		s.failRun(ctx, runID, err)
		s.setState(GenerationAwaitingInputs)
		return nil, fmt.Errorf("persist video reference: %w", err)
	}

	s.completeRun(ctx, runID, result)

	s.mu.Lock()
	s.result = result
	s.state = GenerationGenerated
	s.mu.Unlock()

	s.logger.Info("generation complete",
		"video_ref", result.VideoRef,
		"total_segments", result.TotalSegments,
		"total_time_s", result.TotalTime,
	)
	return result, nil
}

func (s *GenerationStage) setState(state GenerationState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *GenerationStage) beginRun(ctx context.Context) string {
	if s.journal == nil {
		return ""
	}
	id, err := s.journal.Begin(ctx, runs.TypeGenerate, "")
	if err != nil {
		s.logger.Warn("run journal begin failed", "error", err)
		return ""
	}
	return id
}

func (s *GenerationStage) completeRun(ctx context.Context, runID string, result *GenerationResult) {
	if s.journal == nil || runID == "" {
		return
	}
	detail := fmt.Sprintf("%d segments in %.1fs", result.TotalSegments, result.TotalTime)
	if err := s.journal.Complete(ctx, runID, result.VideoRef, detail); err != nil {
		s.logger.Warn("run journal complete failed", "error", err)
	}
}

func (s *GenerationStage) failRun(ctx context.Context, runID string, cause error) {
	if s.journal == nil || runID == "" {
		return
	}
	if err := s.journal.Fail(ctx, runID, surfacedMessage(cause)); err != nil {
		s.logger.Warn("run journal fail failed", "error", err)
	}
}

// surfacedMessage extracts the user-visible text for a failure: the server
// detail when present, the generic gateway fallback otherwise.
func surfacedMessage(err error) string {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		return gwErr.Message()
	}
	return err.Error()
}
