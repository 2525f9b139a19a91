package finder

import (
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

const (
	MaxObjectNameLen  = 100
	MaxObjectAliasLen = 500
	MaxQueryLen       = 200
	MaxListLimit      = 100
	// MaxVideoSize is the largest upload the service accepts.
	MaxVideoSize int64 = 50 * 1024 * 1024
)

func validateVideo(op string, f *VideoFile) error {
	if f == nil || f.Body == nil {
		return invalidf(op, "no file provided")
	}
	if strings.TrimSpace(f.Name) == "" {
		return invalidf(op, "file name is required")
	}
	if !isVideoType(f.ContentType) {
		return invalidf(op, "please select a video file (got %q)", strings.TrimSpace(f.ContentType))
	}
	if f.Size < 0 {
		return invalidf(op, "file size is unknown")
	}
	if f.Size > MaxVideoSize {
		return invalidf(op, "file size %s exceeds the %s limit",
			humanize.IBytes(uint64(f.Size)), humanize.IBytes(uint64(MaxVideoSize)))
	}
	return nil
}

func isVideoType(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "video/")
}

// validateObject trims both values and checks them against the service
// limits. The trimmed values are what gets sent.
func validateObject(op, name, alias string) (string, string, error) {
	name = strings.TrimSpace(name)
	alias = strings.TrimSpace(alias)
	if name == "" {
		return "", "", invalidf(op, "object name is required")
	}
	if alias == "" {
		return "", "", invalidf(op, "object description is required")
	}
	if utf8.RuneCountInString(name) > MaxObjectNameLen {
		return "", "", invalidf(op, "object name must be at most %d characters", MaxObjectNameLen)
	}
	if utf8.RuneCountInString(alias) > MaxObjectAliasLen {
		return "", "", invalidf(op, "object description must be at most %d characters", MaxObjectAliasLen)
	}
	return name, alias, nil
}

func validateQuery(op, query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", invalidf(op, "search query cannot be empty")
	}
	if utf8.RuneCountInString(query) > MaxQueryLen {
		return "", invalidf(op, "search query must be at most %d characters", MaxQueryLen)
	}
	return query, nil
}

func validateID(op, what, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", invalidf(op, "%s is required", what)
	}
	return id, nil
}
