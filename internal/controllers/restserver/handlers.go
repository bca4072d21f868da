package restserver

import (
	"context"
	"fmt"
	"html/template"
	"image/color"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/chrissnell/telemetrychart/internal/compare"
	"github.com/chrissnell/telemetrychart/internal/loader"
	"github.com/chrissnell/telemetrychart/internal/log"
	"github.com/chrissnell/telemetrychart/internal/render"
	"github.com/chrissnell/telemetrychart/internal/style"
	"github.com/chrissnell/telemetrychart/internal/telemetry"
	"github.com/chrissnell/telemetrychart/pkg/responseformat"
)

// Handlers contains all HTTP handlers for the REST server
type Handlers struct {
	controller *Controller
	formatter  *responseformat.Formatter
	palette    style.Palette
	leading    color.Color
}

// NewHandlers creates a new handlers instance
func NewHandlers(ctrl *Controller, leading color.Color) *Handlers {
	return &Handlers{
		controller: ctrl,
		formatter:  responseformat.NewFormatter(),
		palette:    style.TrendPalette(),
		leading:    leading,
	}
}

// GroupInfo is one entry of the /groups listing
type GroupInfo struct {
	Name   string   `json:"name"`
	Tracks []string `json:"tracks"`
}

// DeltaResponse is the payload of /compare/{group}/delta
type DeltaResponse struct {
	Group   string          `json:"group"`
	A       string          `json:"a"`
	B       string          `json:"b"`
	Deltas  []float64       `json:"deltas"`
	Colors  []string        `json:"colors"`
	Indices []int           `json:"indices"`
	Summary compare.Summary `json:"summary"`
}

// GetGroups lists every logical group and its tracks
func (h *Handlers) GetGroups(w http.ResponseWriter, req *http.Request) {
	groups, err := h.controller.source.Groups(req.Context())
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	out := make([]GroupInfo, 0, len(groups))
	for _, g := range groups {
		info := GroupInfo{Name: g.Name, Tracks: make([]string, 0, len(g.Tracks))}
		for _, t := range g.Tracks {
			info.Tracks = append(info.Tracks, t.Name)
		}
		out = append(out, info)
	}

	if err := h.formatter.WriteResponse(w, req, out, nil); err != nil {
		log.Errorf("error writing groups response: %v", err)
	}
}

type galleryEntry struct {
	Label  string
	Link   string
	Tracks int
	Image  template.HTML
}

// ServeGallery renders one thumbnail per group
func (h *Handlers) ServeGallery(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	groups, err := h.controller.source.Groups(ctx)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	entries := make([]galleryEntry, 0, len(groups))
	for _, g := range groups {
		entry := galleryEntry{Label: groupLabel(g.Name), Link: "/groups/" + g.Name, Tracks: len(g.Tracks)}
		if len(g.Tracks) > 0 {
			thumb, err := h.thumbnail(ctx, g.Name, g.Tracks[0].Name)
			if err != nil {
				h.controller.logger.Warnw("could not render group thumbnail",
					"request_id", log.RequestID(ctx), "group", g.Name, "error", err)
			} else {
				entry.Image = render.ImgTag(thumb)
			}
		}
		entries = append(entries, entry)
	}

	h.executeTemplate(w, req, "gallery.html.tmpl", struct {
		ThumbnailSize int
		Groups        []galleryEntry
	}{h.controller.cfg.Data.ThumbnailSize, entries})
}

type groupTrack struct {
	Name  string
	Link  string
	Image template.HTML
	Error string
}

// ServeGroup renders every track of a group inline. Tracks that fail with a
// data error are listed with the error instead of a chart.
func (h *Handlers) ServeGroup(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	name := mux.Vars(req)["group"]

	group, err := h.findGroup(ctx, name)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	params, err := parseTrackParams(req.URL.Query(), h.controller.cfg.Chart.Ramp)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	tracks := make([]groupTrack, 0, len(group.Tracks))
	for _, ref := range group.Tracks {
		entry := groupTrack{Name: ref.Name, Link: "/tracks/" + group.Name + "/" + ref.Name}
		png, err := h.renderTrack(ctx, group.Name, ref.Name, params)
		switch {
		case err == nil:
			entry.Image = render.ImgTag(png)
		case telemetry.IsDataError(err):
			entry.Error = err.Error()
		default:
			h.writeError(w, req, err)
			return
		}
		tracks = append(tracks, entry)
	}

	h.executeTemplate(w, req, "group.html.tmpl", struct {
		Label  string
		Tracks []groupTrack
	}{groupLabel(group.Name), tracks})
}

// GetTrackPNG renders a single styled track
func (h *Handlers) GetTrackPNG(w http.ResponseWriter, req *http.Request) {
	png, err := h.trackFromRequest(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	writePNG(w, png)
}

// ServeTrack renders a single styled track embedded in HTML
func (h *Handlers) ServeTrack(w http.ResponseWriter, req *http.Request) {
	png, err := h.trackFromRequest(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	vars := mux.Vars(req)
	h.executeTemplate(w, req, "chart.html.tmpl", chartPage{
		Title: vars["track"],
		Back:  "/groups/" + vars["group"],
		Image: render.ImgTag(png),
	})
}

// GetComparePNG renders a two-track comparison
func (h *Handlers) GetComparePNG(w http.ResponseWriter, req *http.Request) {
	png, _, err := h.compareFromRequest(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	writePNG(w, png)
}

// ServeCompare renders a two-track comparison with its summary in HTML
func (h *Handlers) ServeCompare(w http.ResponseWriter, req *http.Request) {
	png, res, err := h.compareFromRequest(req)
	if err != nil {
		h.writeError(w, req, err)
		return
	}
	h.executeTemplate(w, req, "chart.html.tmpl", chartPage{
		Title:   fmt.Sprintf("%s vs %s", res.A.Name, res.B.Name),
		Back:    "/groups/" + mux.Vars(req)["group"],
		Image:   render.ImgTag(png),
		Summary: &res.Summary,
	})
}

// GetDelta returns the delta series and trend colors of a comparison
func (h *Handlers) GetDelta(w http.ResponseWriter, req *http.Request) {
	group := mux.Vars(req)["group"]
	res, err := h.runComparison(req, group)
	if err != nil {
		h.writeError(w, req, err)
		return
	}

	colors := make([]string, len(res.Assignment.Colors))
	for i, c := range res.Assignment.Colors {
		colors[i] = style.Hex(c)
	}

	out := DeltaResponse{
		Group:   group,
		A:       res.A.Name,
		B:       res.B.Name,
		Deltas:  res.Deltas,
		Colors:  colors,
		Indices: res.Assignment.Indices,
		Summary: res.Summary,
	}
	if err := h.formatter.WriteResponse(w, req, out, nil); err != nil {
		log.Errorf("error writing delta response: %v", err)
	}
}

type chartPage struct {
	Title   string
	Back    string
	Image   template.HTML
	Summary *compare.Summary
}

func (h *Handlers) trackFromRequest(req *http.Request) ([]byte, error) {
	params, err := parseTrackParams(req.URL.Query(), h.controller.cfg.Chart.Ramp)
	if err != nil {
		return nil, err
	}
	vars := mux.Vars(req)
	return h.renderTrack(req.Context(), vars["group"], vars["track"], params)
}

// renderTrack loads a track and draws it with the requested styling
func (h *Handlers) renderTrack(ctx context.Context, group, name string, params trackParams) ([]byte, error) {
	track, err := h.controller.source.Track(ctx, group, name)
	if err != nil {
		return nil, err
	}

	opts := h.controller.chartOptions()
	opts.HideAxes = params.HideAxes
	opts.Bounds = params.Bounds
	return render.Track(track, params.TrackStyle, opts)
}

func (h *Handlers) runComparison(req *http.Request, group string) (compare.Result, error) {
	a, b, err := comparePair(req.URL.Query())
	if err != nil {
		return compare.Result{}, err
	}

	ctx := req.Context()
	ta, err := h.controller.source.Track(ctx, group, a)
	if err != nil {
		return compare.Result{}, err
	}
	tb, err := h.controller.source.Track(ctx, group, b)
	if err != nil {
		return compare.Result{}, err
	}
	return compare.Run(ta, tb, h.palette, h.leading)
}

func (h *Handlers) compareFromRequest(req *http.Request) ([]byte, compare.Result, error) {
	q := req.URL.Query()
	params, err := parseTrackParams(q, h.controller.cfg.Chart.Ramp)
	if err != nil {
		return nil, compare.Result{}, err
	}

	res, err := h.runComparison(req, mux.Vars(req)["group"])
	if err != nil {
		return nil, compare.Result{}, err
	}

	opts := h.controller.chartOptions()
	opts.Title = fmt.Sprintf("%s vs %s", res.A.Name, res.B.Name)
	opts.HideAxes = params.HideAxes
	opts.Bounds = params.Bounds

	png, err := render.Compare(render.Comparison{
		Points:    res.A.Points(),
		Colors:    res.Assignment.Colors,
		Reference: res.B.Points(),
	}, opts)
	return png, res, err
}

// thumbnail renders a plain, axis-free chart of one track scaled down to
// the configured thumbnail size.
func (h *Handlers) thumbnail(ctx context.Context, group, name string) ([]byte, error) {
	track, err := h.controller.source.Track(ctx, group, name)
	if err != nil {
		return nil, err
	}

	opts := h.controller.chartOptions()
	opts.HideAxes = true
	png, err := render.Line(track.Points(), render.PlainColor, opts)
	if err != nil {
		return nil, err
	}
	return render.Thumbnail(png, h.controller.cfg.Data.ThumbnailSize)
}

func (h *Handlers) findGroup(ctx context.Context, name string) (loader.Group, error) {
	groups, err := h.controller.source.Groups(ctx)
	if err != nil {
		return loader.Group{}, err
	}
	for _, g := range groups {
		if g.Name == name {
			return g, nil
		}
	}
	return loader.Group{}, fmt.Errorf("group %s: %w", name, loader.ErrNotFound)
}

func (h *Handlers) executeTemplate(w http.ResponseWriter, req *http.Request, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if err := h.controller.templates.ExecuteTemplate(w, name, data); err != nil {
		h.controller.logger.Errorw("error executing template",
			"request_id", log.RequestID(req.Context()), "template", name, "error", err)
	}
}

func writePNG(w http.ResponseWriter, png []byte) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Write(png)
}

func groupLabel(name string) string {
	if name == loader.RootGroup {
		return "(top level)"
	}
	return name
}
