package pipeline

import (
	"image"

	"github.com/nfnt/resize"
)

const DefaultPreviewSize = 256

// Preview 缩放到最长边 <= maxSize，本身不大于 maxSize 时原样返回
func Preview(img image.Image, maxSize uint) image.Image {
	if maxSize == 0 {
		maxSize = DefaultPreviewSize
	}

	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	longest := uint(max(w, h))
	if longest <= maxSize {
		return img
	}

	newW, newH := maxSize, maxSize
	if w >= h {
		newH = max(1, uint(h)*maxSize/longest)
	} else {
		newW = max(1, uint(w)*maxSize/longest)
	}

	return resize.Resize(newW, newH, img, resize.Lanczos3)
}
