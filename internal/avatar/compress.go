package avatar

import (
	"bytes"
	"image"
	"io"

	"padel-server/internal/shared/errors"

	"github.com/disintegration/imaging"

	_ "golang.org/x/image/webp" // register webp decoding
)

// CompressOptions bound the output dimensions and set the encoding quality.
// Quality runs 0–1 and only affects JPEG output.
type CompressOptions struct {
	MaxWidth  int
	MaxHeight int
	Quality   float64
}

// Image is a re-encoded image variant ready for upload.
type Image struct {
	Data        []byte
	ContentType string
	Ext         string
	Width       int
	Height      int
}

// Compress decodes the image and scales it down so neither dimension exceeds
// the configured bounds, preserving aspect ratio. Images already within
// bounds keep their dimensions. JPEG stays JPEG and PNG stays PNG; WebP can
// only be decoded, so it comes back out as JPEG. The input reader is consumed
// but its backing data is never modified.
func Compress(r io.Reader, opts CompressOptions) (*Image, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, errors.WrapValidation("not a decodable image", err)
	}

	dst := imaging.Fit(src, opts.MaxWidth, opts.MaxHeight, imaging.Lanczos)
	bounds := dst.Bounds()

	var buf bytes.Buffer
	contentType := "image/jpeg"
	ext := "jpg"

	switch format {
	case "png":
		if err := imaging.Encode(&buf, dst, imaging.PNG); err != nil {
			return nil, errors.WrapInternal("failed to encode png", err)
		}
		contentType = "image/png"
		ext = "png"
	default:
		// jpeg, and webp re-encoded as jpeg
		quality := int(opts.Quality * 100)
		if quality < 1 {
			quality = 1
		}
		if quality > 100 {
			quality = 100
		}
		if err := imaging.Encode(&buf, dst, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
			return nil, errors.WrapInternal("failed to encode jpeg", err)
		}
	}

	return &Image{
		Data:        buf.Bytes(),
		ContentType: contentType,
		Ext:         ext,
		Width:       bounds.Dx(),
		Height:      bounds.Dy(),
	}, nil
}
