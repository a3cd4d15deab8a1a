package gateway

import "github.com/RaufunNazin/Highlighter/internal/session"

// TokenResponse is the body of POST /login and POST /register.
type TokenResponse struct {
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type"`
	User        *session.Profile `json:"user,omitempty"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /register. Role 2 is a regular user.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     int    `json:"role"`
}

// GenerationResult is the body of POST /create_segments/.
type GenerationResult struct {
	Message       string   `json:"message"`
	VideoURL      string   `json:"video_url"`
	Segments      []string `json:"segments,omitempty"`
	TotalSegments int      `json:"total_segments"`
	TotalTime     float64  `json:"total_time"`
}

// Segment is one candidate highlight clip as returned by
// GET /segments/video/{videoRef}. The response order defines display order.
type Segment struct {
	ID         int    `json:"id"`
	SegmentRef string `json:"segment"`
	VideoRef   string `json:"video,omitempty"`
	UserID     int    `json:"user_id,omitempty"`
}

type TrimRequest struct {
	SegmentNames []string `json:"segment_names"`
}

// TrimResult is the body of POST /trim_video/.
type TrimResult struct {
	Message       string  `json:"message"`
	FinalVideoURL string  `json:"final_video_url"`
	TotalTime     float64 `json:"total_time"`
}

// EditRecord is one row of the remote edit history.
type EditRecord struct {
	ID          int    `json:"id"`
	InputVideo  string `json:"inputVideo"`
	OutputVideo string `json:"outputVideo,omitempty"`
	Subtitle    string `json:"subtitle"`
	Time        string `json:"time,omitempty"`
	UserID      int    `json:"user_id"`
}

// FilePart names one local file for a multipart upload.
type FilePart struct {
	Name string // filename sent to the server
	Path string // local path read at submission time
}
