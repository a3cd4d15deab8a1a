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

// SelectionState is the lifecycle of the clip selection stage.
type SelectionState string

const (
	SelectionLoading       SelectionState = "loading"
	SelectionSelecting     SelectionState = "selecting"
	SelectionConcatenating SelectionState = "concatenating"
	SelectionFinished      SelectionState = "finished"
)

var (
	// ErrNoVideoRef means the session store holds no generated video
	// reference; the stage must not be entered without one.
	ErrNoVideoRef = errors.New("no generated video found; run a generation first")

	// ErrEmptySelection is returned by Submit before any request when no
	// segment has been selected.
	ErrEmptySelection = errors.New("select at least one segment")

	// ErrNotSelecting is returned when Toggle or Submit is called outside the
	// selecting state.
	ErrNotSelecting = errors.New("segments are not loaded yet")
)

// SelectionStage drives fetch segments -> accumulate a selection -> submit
// for concatenation -> await the final artifact.
type SelectionStage struct {
	gw      *gateway.Client
	store   *session.Store
	journal *runs.Repository
	logger  *slog.Logger

	videoRef string

	mu       sync.Mutex
	state    SelectionState
	segments []gateway.Segment
	selected []string            // submission order
	chosen   map[string]struct{} // membership
	finalRef string
}

// NewSelectionStage reads the generated video reference from the session
// store. Its absence is a precondition failure, not a recoverable in-stage
// error.
func NewSelectionStage(ctx context.Context, gw *gateway.Client, store *session.Store, journal *runs.Repository, logger *slog.Logger) (*SelectionStage, error) {
	videoRef, err := store.VideoRef(ctx)
	if err != nil {
		return nil, fmt.Errorf("read video reference: %w", err)
	}
	if videoRef == "" {
		return nil, ErrNoVideoRef
	}

	return &SelectionStage{
		gw:       gw,
		store:    store,
		journal:  journal,
		logger:   logging.WithVideoRef(logging.WithComponent(logger, "selection"), videoRef),
		videoRef: videoRef,
		state:    SelectionLoading,
		chosen:   make(map[string]struct{}),
	}, nil
}

func (s *SelectionStage) State() SelectionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *SelectionStage) VideoRef() string {
	return s.videoRef
}

// Segments returns the fetched segment sequence in display order.
func (s *SelectionStage) Segments() []gateway.Segment {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]gateway.Segment, len(s.segments))
	copy(out, s.segments)
	return out
}

// Selected returns the selected refs in insertion order.
func (s *SelectionStage) Selected() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.selected))
	copy(out, s.selected)
	return out
}

// FinalVideoRef returns the concatenated artifact reference once finished.
func (s *SelectionStage) FinalVideoRef() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finalRef
}

// Load fetches the ordered segment sequence. On failure the stage stays in
// loading and Load may be retried.
func (s *SelectionStage) Load(ctx context.Context) error {
	segments, err := s.gw.Segments(ctx, s.videoRef)
	if err != nil {
		s.logger.Warn("segment fetch failed", "error", err)
		return err
	}

	s.mu.Lock()
	s.segments = segments
	s.state = SelectionSelecting
	s.mu.Unlock()

	s.logger.Info("segments loaded", "count", len(segments))
	return nil
}

// Toggle adds the ref to the selection if absent and removes it if present.
// A double toggle restores the prior selection.
func (s *SelectionStage) Toggle(segmentRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != SelectionSelecting {
		return ErrNotSelecting
	}

	if _, ok := s.chosen[segmentRef]; ok {
		delete(s.chosen, segmentRef)
		for i, ref := range s.selected {
			if ref == segmentRef {
				s.selected = append(s.selected[:i], s.selected[i+1:]...)
				break
			}
		}
		return nil
	}

	s.chosen[segmentRef] = struct{}{}
	s.selected = append(s.selected, segmentRef)
	return nil
}

// Submit sends the selection for concatenation. An empty selection is
// rejected without a request. On success the final video reference is
// persisted and the stage finishes; on failure the stage returns to
// selecting with the selection unchanged.
func (s *SelectionStage) Submit(ctx context.Context) (string, error) {
	s.mu.Lock()
	switch s.state {
	case SelectionConcatenating:
		s.mu.Unlock()
		return "", ErrSubmissionInFlight
	case SelectionSelecting:
		// proceed
	default:
		s.mu.Unlock()
		return "", ErrNotSelecting
	}
	if len(s.selected) == 0 {
		s.mu.Unlock()
		return "", ErrEmptySelection
	}
	names := make([]string, len(s.selected))
	copy(names, s.selected)
	s.state = SelectionConcatenating
	s.mu.Unlock()

	runID := s.beginRun(ctx)

	resp, err := s.gw.TrimVideo(ctx, names)
	if err != nil {
		s.failRun(ctx, runID, err)
		s.setState(SelectionSelecting)
		return "", err
	}

	if err := s.store.SetFinalVideoRef(ctx, resp.FinalVideoURL); err != nil {
		s.failRun(ctx, runID, err)
		s.setState(SelectionSelecting)
		return "", fmt.Errorf("persist final video reference: %w", err)
	}

	s.completeRun(ctx, runID, resp)

	s.mu.Lock()
	s.finalRef = resp.FinalVideoURL
	s.state = SelectionFinished
	s.mu.Unlock()

	s.logger.Info("concatenation complete",
		"final_video_ref", resp.FinalVideoURL,
		"segment_count", len(names),
	)
	return resp.FinalVideoURL, nil
}

func (s *SelectionStage) setState(state SelectionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *SelectionStage) beginRun(ctx context.Context) string {
	if s.journal == nil {
		return ""
	}
	id, err := s.journal.Begin(ctx, runs.TypeConcatenate, s.videoRef)
	if err != nil {
		s.logger.Warn("run journal begin failed", "error", err)
		return ""
	}
	return id
}

func (s *SelectionStage) completeRun(ctx context.Context, runID string, resp *gateway.TrimResult) {
	if s.journal == nil || runID == "" {
		return
	}
	detail := fmt.Sprintf("concatenated in %.1fs", resp.TotalTime)
	if err := s.journal.Complete(ctx, runID, resp.FinalVideoURL, detail); err != nil {
		s.logger.Warn("run journal complete failed", "error", err)
	}
}

func (s *SelectionStage) failRun(ctx context.Context, runID string, cause error) {
	if s.journal == nil || runID == "" {
		return
	}
	if err := s.journal.Fail(ctx, runID, surfacedMessage(cause)); err != nil {
		s.logger.Warn("run journal fail failed", "error", err)
	}
}
