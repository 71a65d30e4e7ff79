package letterbox

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/yolodata/internal/geometry"
	"github.com/MeKo-Tech/yolodata/internal/mempool"
)

// Scale returns the aspect-ratio-preserving letterbox factor that fits a
// srcW x srcH image inside a dstW x dstH canvas.
//
// This is the single definition of the letterbox ratio. Label normalization
// and image resizing both go through it; recomputing it independently in two
// places risks silently misaligned targets.
func Scale(srcW, srcH, dstW, dstH int) float64 {
	return min(float64(dstW)/float64(srcW), float64(dstH)/float64(srcH))
}

// NormalizeBoxes rescales pixel-space boxes for one image into normalized
// [0,1] network-input space. Every coordinate of (cx, cy, w, h) is
// multiplied element-wise by (scale/inputW, scale/inputH, scale/inputW,
// scale/inputH). Boxes are returned as a new slice; the input is not
// modified.
func NormalizeBoxes(boxes []geometry.Box, srcW, srcH, inputW, inputH int) ([]geometry.Box, error) {
	if srcW <= 0 || srcH <= 0 {
		return nil, fmt.Errorf("invalid source dimensions: %dx%d", srcW, srcH)
	}
	if inputW <= 0 || inputH <= 0 {
		return nil, fmt.Errorf("invalid input dimensions: %dx%d", inputW, inputH)
	}

	scale := Scale(srcW, srcH, inputW, inputH)
	ratioW := scale / float64(inputW)
	ratioH := scale / float64(inputH)

	out := make([]geometry.Box, len(boxes))
	for i, b := range boxes {
		out[i] = geometry.Box{
			CX: b.CX * ratioW,
			CY: b.CY * ratioH,
			W:  b.W * ratioW,
			H:  b.H * ratioH,
		}
	}
	return out, nil
}

// Image letterboxes an image to the network input resolution: resized by
// Scale with Lanczos resampling, then pasted top-left onto a black canvas.
// The top-left paste matches the coordinate convention of NormalizeBoxes
// (no centering offset is added to box coordinates).
func Image(img image.Image, inputW, inputH int) (image.Image, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	if inputW <= 0 || inputH <= 0 {
		return nil, fmt.Errorf("invalid input dimensions: %dx%d", inputW, inputH)
	}

	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW <= 0 || srcH <= 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", srcW, srcH)
	}

	scale := Scale(srcW, srcH, inputW, inputH)
	newW := int(float64(srcW) * scale)
	newH := int(float64(srcH) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	resized := imaging.Resize(img, newW, newH, imaging.Lanczos)
	canvas := imaging.New(inputW, inputH, color.Black)
	return imaging.Paste(canvas, resized, image.Pt(0, 0)), nil
}

// ToTensor converts a letterboxed image into a float32 NCHW tensor with
// values scaled to [0,1]. The buffer comes from the mempool; callers that
// hand the tensor to a short-lived consumer should return it via
// mempool.PutFloat32.
func ToTensor(img image.Image) ([]float32, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}

	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid image dimensions: %dx%d", width, height)
	}

	tensor := mempool.GetFloat32(3 * height * width)
	for y := range height {
		for x := range width {
			r, g, b, _ := nrgba.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			idx := y*width + x
			tensor[idx] = float32(r>>8) / 255.0
			tensor[height*width+idx] = float32(g>>8) / 255.0
			tensor[2*height*width+idx] = float32(b>>8) / 255.0
		}
	}
	return tensor, nil
}
