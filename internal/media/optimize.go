package media

import (
	"bytes"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"math"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"

	"funprofile/internal/middleware"
)

// MaxImageWidth is the width ceiling for uploaded images. Wider images are
// downscaled to it before upload, preserving aspect ratio.
const MaxImageWidth = 1920

// encodeQuality matches the lossy re-encode quality used for jpeg and webp.
const encodeQuality = 85

// Optimize downscales an image wider than MaxImageWidth and re-encodes it
// in its original format. Files that are not images, or that fail to decode,
// are returned unchanged: optimization must never block an upload.
func Optimize(f File) File {
	if Detect(f.Name, f.ContentType) != KindImage {
		return f
	}

	img, format, err := decode(f.ContentType, f.Data)
	if err != nil {
		slog.Debug("image decode failed, uploading original", "file", f.Name, "error", err)
		return f
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= MaxImageWidth {
		return f
	}

	newH := int(math.Round(float64(h) * MaxImageWidth / float64(w)))
	dst := image.NewRGBA(image.Rect(0, 0, MaxImageWidth, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)

	encoded, err := encode(format, dst)
	if err != nil {
		slog.Debug("image re-encode failed, uploading original", "file", f.Name, "error", err)
		return f
	}
	if saved := len(f.Data) - len(encoded); saved > 0 {
		middleware.MediaBytesOptimized.Add(float64(saved))
	}

	out := f
	out.Data = encoded
	out.Size = int64(len(encoded))
	return out
}

func decode(contentType string, data []byte) (image.Image, string, error) {
	switch contentType {
	case "image/webp":
		img, err := webp.Decode(bytes.NewReader(data))
		return img, "webp", err
	default:
		img, format, err := image.Decode(bytes.NewReader(data))
		return img, format, err
	}
}

func encode(format string, img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "gif":
		err = gif.Encode(&buf, img, nil)
	case "webp":
		err = webp.Encode(&buf, img, &webp.Options{Quality: encodeQuality})
	default:
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: encodeQuality})
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
