package restserver

import (
	"math"
	"net/http"

	"gonum.org/v1/gonum/floats"

	"github.com/chrissnell/telemetrychart/internal/render"
	"github.com/chrissnell/telemetrychart/internal/segment"
	"github.com/chrissnell/telemetrychart/internal/style"
	"github.com/chrissnell/telemetrychart/internal/telemetry"
)

const (
	varWidthSamples   = 10000
	derivativeSamples = 500
)

// curve samples f at n evenly spaced x values across [lo, hi]
func curve(n int, lo, hi float64, f func(float64) float64) []telemetry.Point {
	xs := floats.Span(make([]float64, n), lo, hi)
	points := make([]telemetry.Point, n)
	for i, x := range xs {
		points[i] = telemetry.Point{X: x, Y: f(x)}
	}
	return points
}

// GetDemoLine draws the straight line through (0, 1) and (1, 2)
func (h *Handlers) GetDemoLine(w http.ResponseWriter, req *http.Request) {
	points := []telemetry.Point{{X: 0, Y: 1}, {X: 1, Y: 2}}
	png, err := render.Line(points, render.PlainColor, h.controller.chartOptions())
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	writeImgTag(w, png)
}

// GetDemoVarWidthLine draws cos(x) over [0, 4π] with a stroke width of 1 + x
func (h *Handlers) GetDemoVarWidthLine(w http.ResponseWriter, req *http.Request) {
	points := curve(varWidthSamples, 0, 4*math.Pi, math.Cos)

	segments, err := segment.Build(points, segment.IndexWidthBasis(points))
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	styles, err := style.Apply(segments, style.Fixed{C: style.Blue}, &style.Width{Base: 1, Scale: 1}, nil)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	opts := h.controller.chartOptions()
	opts.Bounds = &render.Bounds{XMin: 0, XMax: 4 * math.Pi, YMin: -1.1, YMax: 1.1}
	png, err := render.Segments(segments, styles, opts)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	writeImgTag(w, png)
}

// GetDemoDerivative draws sin(x) over [0, 3π], each segment colored by
// cos(x) at its midpoint
func (h *Handlers) GetDemoDerivative(w http.ResponseWriter, req *http.Request) {
	params, err := parseTrackParams(req.URL.Query(), h.controller.cfg.Chart.Ramp)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	points := curve(derivativeSamples, 0, 3*math.Pi, math.Sin)
	segments, err := segment.Build(points, segment.MidpointDerivative(points, math.Cos))
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	var strategy style.Strategy
	switch params.Mode {
	case render.ModeDiscrete:
		strategy = params.Discrete
	case render.ModePlain:
		strategy = style.Fixed{C: render.PlainColor}
	default:
		strategy = style.NewContinuous(params.Ramp, segment.Values(segments))
	}

	width := params.Width
	if width == nil {
		width = &style.Width{Base: 2}
	}
	styles, err := style.Apply(segments, strategy, width, nil)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	opts := h.controller.chartOptions()
	opts.HideAxes = params.HideAxes
	opts.Bounds = params.Bounds
	if opts.Bounds == nil {
		opts.Bounds = &render.Bounds{XMin: 0, XMax: 3 * math.Pi, YMin: -1.1, YMax: 1.1}
	}
	png, err := render.Segments(segments, styles, opts)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	writeImgTag(w, png)
}

func writeImgTag(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Write([]byte(render.ImgTag(png)))
}
