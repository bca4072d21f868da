package restserver

import (
	"fmt"
	"image/color"
	"net/url"
	"strconv"
	"strings"

	"github.com/chrissnell/telemetrychart/internal/render"
	"github.com/chrissnell/telemetrychart/internal/style"
	"github.com/chrissnell/telemetrychart/internal/telemetry"
)

// paramError reports a malformed query parameter
type paramError struct {
	Param string
	Err   error
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %v", e.Param, e.Err)
}

func (e *paramError) Unwrap() error {
	return e.Err
}

// trackParams is the parsed form of the single-track query parameters
type trackParams struct {
	render.TrackStyle
	HideAxes bool
	Bounds   *render.Bounds
}

func parseTrackParams(q url.Values, defaultRamp string) (trackParams, error) {
	var p trackParams
	p.Mode = render.ModeContinuous
	p.Discrete = style.DefaultDiscrete()

	if s := q.Get("style"); s != "" {
		switch s {
		case render.ModePlain, render.ModeContinuous, render.ModeDiscrete:
			p.Mode = s
		default:
			return p, &paramError{Param: "style", Err: fmt.Errorf("unknown style %q", s)}
		}
	}

	rampName := defaultRamp
	if s := q.Get("cmap"); s != "" {
		rampName = s
	}
	ramp, err := style.RampByName(rampName)
	if err != nil {
		return p, &paramError{Param: "cmap", Err: err}
	}
	p.Ramp = ramp

	if q.Has("boundaries") || q.Has("colors") {
		d, err := parseDiscrete(q.Get("boundaries"), q.Get("colors"))
		if err != nil {
			return p, err
		}
		p.Discrete = d
	}

	if q.Has("width_base") || q.Has("width_scale") {
		w := style.Width{Base: 1}
		if w.Base, err = floatParam(q, "width_base", w.Base); err != nil {
			return p, err
		}
		if w.Scale, err = floatParam(q, "width_scale", 0); err != nil {
			return p, err
		}
		p.Width = &w
	}

	switch q.Get("hide_axes") {
	case "", "0", "false":
	default:
		p.HideAxes = true
	}

	p.Bounds, err = parseBounds(q)
	return p, err
}

// parseDiscrete reads comma-separated boundaries and hex colors. Either may
// be empty to keep the default.
func parseDiscrete(boundaries, colors string) (style.Discrete, error) {
	b := style.DefaultBoundaries
	if boundaries != "" {
		b = nil
		for _, f := range strings.Split(boundaries, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return style.Discrete{}, &paramError{Param: "boundaries", Err: err}
			}
			b = append(b, v)
		}
	}

	c := style.DefaultBoundaryColors
	if colors != "" {
		c = nil
		for _, f := range strings.Split(colors, ",") {
			rgba, err := style.ParseHex(strings.TrimSpace(f))
			if err != nil {
				return style.Discrete{}, &paramError{Param: "colors", Err: err}
			}
			c = append(c, color.Color(rgba))
		}
	}

	d, err := style.NewDiscrete(b, c)
	if err != nil {
		return style.Discrete{}, &paramError{Param: "boundaries", Err: err}
	}
	return d, nil
}

// parseBounds returns fixed bounds only when all four limits are present
func parseBounds(q url.Values) (*render.Bounds, error) {
	names := []string{"xmin", "xmax", "ymin", "ymax"}
	var v [4]float64
	for i, name := range names {
		if !q.Has(name) {
			return nil, nil
		}
		f, err := floatParam(q, name, 0)
		if err != nil {
			return nil, err
		}
		v[i] = f
	}

	b := &render.Bounds{XMin: v[0], XMax: v[1], YMin: v[2], YMax: v[3]}
	if !b.Valid() {
		return nil, &paramError{Param: "xmin", Err: fmt.Errorf("bounds must satisfy xmin < xmax and ymin < ymax")}
	}
	return b, nil
}

func floatParam(q url.Values, name string, def float64) (float64, error) {
	s := q.Get(name)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &paramError{Param: name, Err: err}
	}
	if !telemetry.IsFinite(f) {
		return 0, &paramError{Param: name, Err: fmt.Errorf("%v is not finite", f)}
	}
	return f, nil
}

// comparePair returns the a and b track names of a comparison request
func comparePair(q url.Values) (string, string, error) {
	a, b := q.Get("a"), q.Get("b")
	if a == "" {
		return "", "", &paramError{Param: "a", Err: fmt.Errorf("missing track name")}
	}
	if b == "" {
		return "", "", &paramError{Param: "b", Err: fmt.Errorf("missing track name")}
	}
	return a, b, nil
}
