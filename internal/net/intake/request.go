package intake

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"mech-arena/server/internal/net/proto"
)

const (
	// MaxFeedInterval caps how many ticks a client may ask to skip between frames.
	MaxFeedInterval = 300

	RejectMissingViewer = "missing_viewer"
	RejectBadViewer     = "bad_viewer"
	RejectBadInterval   = "bad_interval"
	RejectBadEncoding   = "bad_encoding"
)

// Rejection is a client request the feed refused. Reason is one of the
// Reject constants.
type Rejection struct {
	Reason string
	Err    error
}

func (r *Rejection) Error() string {
	if r.Err == nil {
		return r.Reason
	}
	return fmt.Sprintf("%s: %v", r.Reason, r.Err)
}

func (r *Rejection) Unwrap() error {
	return r.Err
}

func reject(reason string, err error) error {
	return &Rejection{Reason: reason, Err: err}
}

// RejectReason extracts the Reject constant from err, or "" if err is not a
// Rejection.
func RejectReason(err error) string {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Reason
	}
	return ""
}

// FeedRequest is a validated feed subscription.
type FeedRequest struct {
	Viewer   uuid.UUID
	Interval int
	Encoding proto.Encoding
}

// ParseFeedRequest reads viewer, every and encoding from query. A missing
// every falls back to defaultInterval.
func ParseFeedRequest(query url.Values, defaultInterval int) (FeedRequest, error) {
	var req FeedRequest

	viewer, err := ParseViewer(query.Get("viewer"))
	if err != nil {
		return req, err
	}
	req.Viewer = viewer

	req.Interval = ClampInterval(defaultInterval)
	if raw := query.Get("every"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, reject(RejectBadInterval, fmt.Errorf("every=%q", raw))
		}
		req.Interval = ClampInterval(n)
	}

	enc, err := proto.ParseEncoding(query.Get("encoding"))
	if err != nil {
		return req, reject(RejectBadEncoding, err)
	}
	req.Encoding = enc
	return req, nil
}

// ParseViewer validates a viewer id.
func ParseViewer(raw string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, reject(RejectMissingViewer, nil)
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, reject(RejectBadViewer, err)
	}
	return id, nil
}

// ClampInterval limits a feed interval to [1, MaxFeedInterval].
func ClampInterval(n int) int {
	return max(1, min(n, MaxFeedInterval))
}
