// Package imaging converts downloaded images into formats the typesetter accepts.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	// registered decoders
	_ "image/gif"

	_ "golang.org/x/image/webp"
)

// Format is an output image format.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
)

// JPEGQuality is the quality used when encoding JPEG output.
const JPEGQuality = 90

// Transcoder decodes JPEG, PNG, GIF and WebP images and re-encodes them.
type Transcoder struct{}

// NewTranscoder creates a Transcoder.
func NewTranscoder() *Transcoder {
	return &Transcoder{}
}

// Transcode decodes data in any registered format and encodes it as format.
func (t *Transcoder) Transcode(data []byte, format Format) ([]byte, error) {
	img, source, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, &Error{Message: "failed to decode image", Cause: err}
	}

	var buf bytes.Buffer
	switch format {
	case FormatPNG:
		err = png.Encode(&buf, img)
	case FormatJPEG:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality})
	default:
		return nil, &Error{Message: fmt.Sprintf("unsupported output format %q", format)}
	}
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to encode %s image as %s", source, format), Cause: err}
	}
	return buf.Bytes(), nil
}

// Error represents an image transcoding failure.
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("imaging error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("imaging error: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
