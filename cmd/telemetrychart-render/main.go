package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/chrissnell/telemetrychart/internal/loader"
	"github.com/chrissnell/telemetrychart/internal/log"
	"github.com/chrissnell/telemetrychart/internal/render"
	"github.com/chrissnell/telemetrychart/internal/style"
	"github.com/chrissnell/telemetrychart/internal/telemetry"
	"github.com/chrissnell/telemetrychart/pkg/config"
)

const thumbnailFile = "thumbnail.png"

func main() {
	dataDir := flag.String("data", config.DefaultRootDir, "Directory of track files (CSV or GPX) to render")
	outDir := flag.String("out", "charts", "Directory the charts are written to")
	mode := flag.String("style", render.ModeContinuous, "Track styling: plain, continuous or discrete")
	cmap := flag.String("cmap", style.DefaultRamp, "Color ramp for continuous styling")
	widthPx := flag.Int("width", config.DefaultWidthPx, "Chart width in pixels")
	heightPx := flag.Int("height", config.DefaultHeightPx, "Chart height in pixels")
	thumbPx := flag.Int("thumbnail-size", config.DefaultThumbnailSize, "Longest side of group thumbnails in pixels")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ramp, err := style.RampByName(*cmap)
	if err != nil {
		log.Fatalf("invalid -cmap: %v", err)
	}

	r := &renderer{
		source: loader.NewDirSource(*dataDir),
		out:    *outDir,
		style:  render.TrackStyle{Mode: *mode, Ramp: ramp, Discrete: style.DefaultDiscrete()},
		opts: render.Options{
			Width:     render.Pixels(*widthPx),
			Height:    render.Pixels(*heightPx),
			LineWidth: render.DefaultOptions().LineWidth,
		},
		thumbPx: *thumbPx,
	}

	rendered, skipped, err := r.run(context.Background())
	if err != nil {
		log.Fatalf("rendering failed: %v", err)
	}
	log.Infof("rendered %d tracks to %s (%d skipped)", rendered, *outDir, skipped)
}

type renderer struct {
	source  loader.Source
	out     string
	style   render.TrackStyle
	opts    render.Options
	thumbPx int
}

// run renders every track of every group. Tracks whose data cannot be
// charted are logged and skipped; any other failure aborts the run.
func (r *renderer) run(ctx context.Context) (rendered, skipped int, err error) {
	groups, err := r.source.Groups(ctx)
	if err != nil {
		return 0, 0, err
	}

	total := 0
	for _, g := range groups {
		total += len(g.Tracks)
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetDescription("rendering"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSetWriter(os.Stderr),
	)
	defer bar.Finish()

	for _, g := range groups {
		dir := filepath.Join(r.out, filepath.FromSlash(g.Name))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return rendered, skipped, err
		}

		thumbDone := false
		for _, ref := range g.Tracks {
			_ = bar.Add(1)

			track, err := r.source.Track(ctx, g.Name, ref.Name)
			if err == nil {
				err = r.renderTrack(dir, track, !thumbDone)
			}
			switch {
			case err == nil:
				rendered++
				thumbDone = true
			case telemetry.IsDataError(err):
				skipped++
				log.Warnw("skipping track", "group", g.Name, "track", ref.Name, "error", err)
			default:
				return rendered, skipped, fmt.Errorf("%s/%s: %w", g.Name, ref.Name, err)
			}
		}
	}
	return rendered, skipped, nil
}

func (r *renderer) renderTrack(dir string, track telemetry.Track, withThumbnail bool) error {
	png, err := render.Track(track, r.style, r.opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, track.Name+".png"), png, 0o644); err != nil {
		return err
	}
	if !withThumbnail {
		return nil
	}

	thumb, err := render.Thumbnail(png, r.thumbPx)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, thumbnailFile), thumb, 0o644)
}
