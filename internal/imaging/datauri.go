package imaging

import (
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// DecodeDataURI splits a "data:<media>;base64,<payload>" string into its
// media type and raw bytes. A bare base64 string (no "data:" prefix) is
// accepted too and reported with an empty media type.
func DecodeDataURI(s string) (mediaType string, data []byte, err error) {
	s = strings.TrimSpace(s)
	payload := s

	if rest, ok := strings.CutPrefix(s, "data:"); ok {
		header, body, found := strings.Cut(rest, ",")
		if !found {
			return "", nil, fmt.Errorf("%w: malformed data URI", ErrUndecodable)
		}
		params := strings.Split(header, ";")
		mediaType = params[0]
		isBase64 := false
		for _, p := range params[1:] {
			if p == "base64" {
				isBase64 = true
			}
		}
		if !isBase64 {
			return "", nil, fmt.Errorf("%w: data URI is not base64 encoded", ErrUndecodable)
		}
		payload = body
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		// Some encoders drop the padding.
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(payload, "="))
		if err != nil {
			return "", nil, fmt.Errorf("%w: invalid base64: %v", ErrUndecodable, err)
		}
	}
	return mediaType, data, nil
}

// EncodeDataURI wraps raw bytes in a base64 data URI.
func EncodeDataURI(mediaType string, data []byte) string {
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// LoadFile reads an image file and returns it as a data URI. The media type
// is sniffed from the content, falling back to the file extension.
func LoadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading image: %w", err)
	}

	mediaType := http.DetectContentType(data)
	if !strings.HasPrefix(mediaType, "image/") {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); strings.HasPrefix(byExt, "image/") {
			mediaType = byExt
		} else {
			return "", fmt.Errorf("%s: %w: not an image (%s)", filepath.Base(path), ErrUndecodable, mediaType)
		}
	}
	return EncodeDataURI(mediaType, data), nil
}
