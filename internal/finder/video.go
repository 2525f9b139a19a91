package finder

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// VideoFile is a video ready for upload. ContentType is the declared media
// type; only video/* types are accepted.
type VideoFile struct {
	Name        string
	ContentType string
	Size        int64
	Body        io.Reader

	// Progress, when set, is called as bytes are handed to the transport.
	Progress func(sent, total int64)
}

// Close closes Body when it is an io.Closer.
func (v *VideoFile) Close() error {
	if v == nil {
		return nil
	}
	if c, ok := v.Body.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// OpenVideoFile opens a local file for upload. The declared media type is
// sniffed from the file contents, falling back to the extension.
func OpenVideoFile(path string) (*VideoFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat video: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("detect media type: %w", err)
	}
	contentType := detected.String()
	if !isVideoType(contentType) {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); isVideoType(byExt) {
			contentType = byExt
		}
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open video: %w", err)
	}
	return &VideoFile{
		Name:        filepath.Base(path),
		ContentType: mediaType(contentType),
		Size:        info.Size(),
		Body:        file,
	}, nil
}

// mediaType drops parameters such as "; charset=utf-8".
func mediaType(value string) string {
	if mt, _, err := mime.ParseMediaType(value); err == nil {
		return mt
	}
	return strings.TrimSpace(value)
}

type progressReader struct {
	r     io.Reader
	sent  int64
	total int64
	fn    func(sent, total int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	if n > 0 {
		p.sent += int64(n)
		p.fn(p.sent, p.total)
	}
	return n, err
}
