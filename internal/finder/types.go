package finder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// HealthStatus is the service state reported by /health.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthDegraded HealthStatus = "degraded"
	HealthError    HealthStatus = "error"
	// HealthChecking is a local placeholder shown before the first answer.
	// The service never reports it.
	HealthChecking HealthStatus = "checking"
)

// Health mirrors the payload returned by /health.
type Health struct {
	Status   HealthStatus `json:"status"`
	Service  string       `json:"service,omitempty"`
	Version  string       `json:"version,omitempty"`
	Database string       `json:"database,omitempty"`
}

// ObjectID is assigned by the service. It arrives as a JSON number or string
// and is treated as opaque.
type ObjectID string

// UnmarshalJSON accepts numbers and strings.
func (id *ObjectID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("object id: %w", err)
		}
		*id = ObjectID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("object id: %w", err)
	}
	*id = ObjectID(n.String())
	return nil
}

// EpochMillis is a Unix timestamp in milliseconds. Integer, float and numeric
// string encodings are accepted.
type EpochMillis int64

// UnmarshalJSON accepts numbers and numeric strings.
func (m *EpochMillis) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if raw == "" || raw == "null" {
		*m = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("timestamp %q: %w", raw, err)
	}
	*m = EpochMillis(f)
	return nil
}

// Time converts the timestamp to time.Time. Zero maps to the zero time.
func (m EpochMillis) Time() time.Time {
	if m == 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(m))
}

// TrackedObject describes an object the service has been taught to find.
type TrackedObject struct {
	ID             ObjectID     `json:"id"`
	Name           string       `json:"name"`
	Alias          string       `json:"alias"`
	CreatedAt      string       `json:"created_at"`
	LastSeen       *EpochMillis `json:"last_seen_timestamp,omitempty"`
	LocationPhrase string       `json:"location_phrase,omitempty"`
	VideoNo        string       `json:"video_no,omitempty"`
	Confidence     *float64     `json:"confidence,omitempty"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (o TrackedObject) ParsedCreatedAt() time.Time {
	return parseTime(o.CreatedAt)
}

// LastSeenAt returns when the object was last located, or the zero time.
func (o TrackedObject) LastSeenAt() time.Time {
	if o.LastSeen == nil {
		return time.Time{}
	}
	return o.LastSeen.Time()
}

// ObjectTemplate is a quick-add suggestion from /api/objects/suggestions/common.
type ObjectTemplate struct {
	Name  string `json:"name"`
	Alias string `json:"alias"`
}

type commonObjectsResponse struct {
	CommonObjects []ObjectTemplate `json:"common_objects"`
}

type objectRequest struct {
	Name  string `json:"name"`
	Alias string `json:"alias"`
}

// Confirmation mirrors the generic acknowledgement body.
type Confirmation struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// UploadResult mirrors the payload returned by /api/upload.
type UploadResult struct {
	Success  bool   `json:"success"`
	VideoNo  string `json:"video_no"`
	FileName string `json:"file_name"`
	Message  string `json:"message,omitempty"`
	FileSize int64  `json:"file_size,omitempty"`
}

// UploadStatus mirrors /api/upload/status/{video_no}.
type UploadStatus struct {
	VideoNo             string `json:"video_no"`
	Status              string `json:"status"`
	Message             string `json:"message"`
	ProcessedAt         string `json:"processed_at,omitempty"`
	EstimatedCompletion string `json:"estimated_completion,omitempty"`
}

type searchRequest struct {
	Query string `json:"query"`
}

// SearchResult is the answer to a "where is my X" query.
type SearchResult struct {
	Found      bool           `json:"found"`
	Location   string         `json:"location,omitempty"`
	Timestamp  *EpochMillis   `json:"timestamp,omitempty"`
	Confidence *float64       `json:"confidence,omitempty"`
	VideoNo    string         `json:"video_no,omitempty"`
	ObjectInfo *TrackedObject `json:"object_info,omitempty"`
	Message    string         `json:"message,omitempty"`

	// Failure is set when the result was synthesized from a failed call
	// rather than returned by the service.
	Failure *Error `json:"-"`
}

const (
	defaultNotFoundMessage = "No matching object found."
	defaultLocation        = "Location details not available"
)

// normalize fills the fields the result shape promises.
func (r *SearchResult) normalize() {
	if !r.Found && strings.TrimSpace(r.Message) == "" {
		r.Message = defaultNotFoundMessage
	}
	if r.Found && strings.TrimSpace(r.Location) == "" {
		r.Location = defaultLocation
	}
	if r.Confidence != nil {
		c := math.Min(1, math.Max(0, *r.Confidence))
		r.Confidence = &c
	}
}

// SeenAt returns the sighting time, or the zero time.
func (r SearchResult) SeenAt() time.Time {
	if r.Timestamp == nil {
		return time.Time{}
	}
	return r.Timestamp.Time()
}

// ConfidencePercent returns the confidence as a rounded percentage, or -1 when
// the service did not report one.
func (r SearchResult) ConfidencePercent() int {
	if r.Confidence == nil {
		return -1
	}
	return ConfidencePercent(*r.Confidence)
}

// ConfidencePercent rounds a [0,1] confidence to a whole percentage.
func ConfidencePercent(c float64) int {
	return int(math.Round(c * 100))
}

// ConfidenceLabel describes a [0,1] confidence in words.
func ConfidenceLabel(c float64) string {
	switch {
	case c >= 0.9:
		return "Very Confident"
	case c >= 0.7:
		return "Confident"
	case c >= 0.5:
		return "Somewhat Confident"
	default:
		return "Low Confidence"
	}
}

// SearchHistory mirrors /api/search/history.
type SearchHistory struct {
	FoundObjects []TrackedObject `json:"found_objects"`
	TotalFound   int             `json:"total_found"`
	TotalTracked int             `json:"total_tracked"`
}

type suggestionsResponse struct {
	Suggestions []string `json:"suggestions"`
}

func parseTime(value string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	// Python isoformat without a zone.
	for _, layout := range []string{"2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"} {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t
		}
	}
	return time.Time{}
}
