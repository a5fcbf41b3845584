// Package video resolves video page URLs into structured video information via yt-dlp.
package video

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

const (
	// DefaultBinary is the yt-dlp executable looked up on PATH
	DefaultBinary = "yt-dlp"
	// DefaultTimeout bounds a single yt-dlp invocation
	DefaultTimeout = 60 * time.Second
)

// Info is the subset of yt-dlp's info dictionary the pipeline consumes.
type Info struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Thumbnail   string  `json:"thumbnail"`
	Channel     string  `json:"channel"`
	Uploader    string  `json:"uploader"`
	UploadDate  string  `json:"upload_date"`
	Duration    float64 `json:"duration"`
	ViewCount   int64   `json:"view_count"`
	LikeCount   int64   `json:"like_count"`
	WebpageURL  string  `json:"webpage_url"`
}

// FormattedUploadDate turns yt-dlp's YYYYMMDD upload date into YYYY-MM-DD.
// Dates of any other length are returned unchanged.
func (i *Info) FormattedUploadDate() string {
	d := i.UploadDate
	if len(d) != 8 {
		return d
	}
	return d[:4] + "-" + d[4:6] + "-" + d[6:]
}

// Author returns the channel name, falling back to the uploader.
func (i *Info) Author() string {
	if i.Channel != "" {
		return i.Channel
	}
	return i.Uploader
}

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// YTDLP fetches video information by shelling out to yt-dlp.
type YTDLP struct {
	Path    string
	Timeout time.Duration
	run     Runner
}

// NewYTDLP creates a fetcher using the given binary, or DefaultBinary when path is empty.
func NewYTDLP(path string, timeout time.Duration) *YTDLP {
	if path == "" {
		path = DefaultBinary
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &YTDLP{Path: path, Timeout: timeout, run: execRunner}
}

// FetchInfo extracts info for a video URL without downloading the media.
func (y *YTDLP) FetchInfo(ctx context.Context, url string) (*Info, error) {
	ctx, cancel := context.WithTimeout(ctx, y.Timeout)
	defer cancel()

	out, err := y.run(ctx, y.Path, "--dump-single-json", "--skip-download", "--no-warnings", url)
	if err != nil {
		return nil, &Error{URL: url, Message: "yt-dlp failed", Cause: err}
	}
	return ParseInfo(url, out)
}

// ParseInfo decodes yt-dlp JSON output.
func ParseInfo(url string, data []byte) (*Info, error) {
	var info Info
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, &Error{URL: url, Message: "failed to decode yt-dlp output", Cause: err}
	}
	if info.ID == "" && info.Title == "" {
		return nil, &Error{URL: url, Message: "yt-dlp returned no video"}
	}
	return &info, nil
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%w: %s", err, msg)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}
