package tile

import (
	"image"
	"sync"
)

// fieldPool recycles tile field pixel buffers between Apply calls. A buffer
// too small for the requested field is dropped and replaced, so the pool
// drifts toward the largest diagonal recently seen.
var fieldPool sync.Pool

func getField(side int) *image.NRGBA {
	n := side * side * 4
	if buf, ok := fieldPool.Get().(*[]uint8); ok && cap(*buf) >= n {
		pix := (*buf)[:n]
		clear(pix)
		return &image.NRGBA{Pix: pix, Stride: side * 4, Rect: image.Rect(0, 0, side, side)}
	}
	return image.NewNRGBA(image.Rect(0, 0, side, side))
}

func putField(field *image.NRGBA) {
	pix := field.Pix[:cap(field.Pix)]
	fieldPool.Put(&pix)
}
