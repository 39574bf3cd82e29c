package recordings

import (
	"encoding/base64"
	"fmt"
	"strings"
)

const defaultContentType = "audio/webm"

var extensions = map[string]string{
	"audio/webm":  "webm",
	"audio/ogg":   "ogg",
	"audio/mpeg":  "mp3",
	"audio/mp4":   "m4a",
	"audio/aac":   "aac",
	"audio/wav":   "wav",
	"audio/wave":  "wav",
	"audio/x-wav": "wav",
}

// Audio is decoded submission audio.
type Audio struct {
	Data        []byte
	ContentType string
	Extension   string
}

// DecodeAudio decodes base64 audio, accepting either bare base64 or a data URL
// such as "data:audio/webm;codecs=opus;base64,...". Bare base64 is assumed to
// be audio/webm.
func DecodeAudio(s string) (*Audio, error) {
	contentType := defaultContentType
	payload := strings.TrimSpace(s)

	if rest, ok := strings.CutPrefix(payload, "data:"); ok {
		header, data, found := strings.Cut(rest, ",")
		if !found {
			return nil, fmt.Errorf("%w: malformed data url", ErrInvalidAudio)
		}

		params := strings.Split(header, ";")
		if params[len(params)-1] != "base64" {
			return nil, fmt.Errorf("%w: data url is not base64", ErrInvalidAudio)
		}
		if mediaType := strings.ToLower(params[0]); mediaType != "" {
			contentType = mediaType
		}
		payload = data
	}

	ext, ok := extensions[contentType]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported type %q", ErrInvalidAudio, contentType)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAudio, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidAudio)
	}

	return &Audio{
		Data:        data,
		ContentType: contentType,
		Extension:   ext,
	}, nil
}
