package render

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"image"
	"image/png"

	xdraw "golang.org/x/image/draw"
)

// DataURI returns a base64 data URI for a PNG
func DataURI(pngData []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngData)
}

// ImgTag returns an <img> element embedding the PNG inline
func ImgTag(pngData []byte) template.HTML {
	return template.HTML(fmt.Sprintf("<img src='%s'/>", DataURI(pngData)))
}

// Thumbnail scales a PNG down so that its longer side is maxPx. Images that
// already fit are returned unchanged.
func Thumbnail(pngData []byte, maxPx int) ([]byte, error) {
	src, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return nil, fmt.Errorf("error decoding PNG: %w", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxPx <= 0 || (w <= maxPx && h <= maxPx) {
		return pngData, nil
	}

	tw, th := maxPx, h*maxPx/w
	if h > w {
		tw, th = w*maxPx/h, maxPx
	}
	if tw < 1 {
		tw = 1
	}
	if th < 1 {
		th = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("error encoding thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
