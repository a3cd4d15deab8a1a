package api

import (
	"time"

	"github.com/RaufunNazin/Highlighter/internal/runs"
)

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	UptimeS int64  `json:"uptime_s"`
}

type StatusResponse struct {
	Authenticated bool         `json:"authenticated"`
	Username      string       `json:"username,omitempty"`
	VideoRef      string       `json:"video_ref,omitempty"`
	FinalVideoRef string       `json:"final_video_ref,omitempty"`
	RunsRunning   int          `json:"runs_running"`
	LastError     string       `json:"last_error,omitempty"`
	ActiveRun     *RunResponse `json:"active_run,omitempty"`
}

type RunResponse struct {
	ID        string `json:"id"`
	Type      string `json:"type"`
	Status    string `json:"status"`
	VideoRef  string `json:"video_ref,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

type RunsResponse struct {
	Runs []RunResponse `json:"runs"`
}

type SegmentResponse struct {
	ID         int    `json:"id"`
	SegmentRef string `json:"segment"`
}

type SegmentsResponse struct {
	VideoRef string            `json:"video_ref"`
	Segments []SegmentResponse `json:"segments"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func RunToResponse(r *runs.Run) RunResponse {
	return RunResponse{
		ID:        r.ID,
		Type:      r.Type,
		Status:    r.Status,
		VideoRef:  r.VideoRef,
		Detail:    r.Detail,
		Error:     r.Error,
		CreatedAt: r.CreatedAt.Format(time.RFC3339),
		UpdatedAt: r.UpdatedAt.Format(time.RFC3339),
	}
}
