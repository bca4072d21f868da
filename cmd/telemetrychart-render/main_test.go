package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/chrissnell/telemetrychart/internal/loader"
	"github.com/chrissnell/telemetrychart/internal/render"
	"github.com/chrissnell/telemetrychart/internal/style"
)

func TestRendererRun(t *testing.T) {
	data := t.TempDir()
	files := map[string]string{
		"a.csv":          "xPos,yPos,distanceTraveled\n0,0,0\n1,1,1\n2,0,3\n",
		"laps/b.csv":     "xPos,yPos,distanceTraveled\n0,0,0\n1,2,2\n",
		"laps/short.csv": "xPos,yPos,distanceTraveled\n0,0,0\n",
	}
	for rel, content := range files {
		p := filepath.Join(data, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out := t.TempDir()
	r := &renderer{
		source:  loader.NewDirSource(data),
		out:     out,
		style:   render.TrackStyle{Mode: render.ModeDiscrete, Discrete: style.DefaultDiscrete()},
		opts:    render.DefaultOptions(),
		thumbPx: 64,
	}

	rendered, skipped, err := r.run(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rendered != 2 || skipped != 1 {
		t.Errorf("expected 2 rendered and 1 skipped, got %d and %d", rendered, skipped)
	}

	for _, rel := range []string{"a.png", thumbnailFile, "laps/b.png", "laps/" + thumbnailFile} {
		if _, err := os.Stat(filepath.Join(out, filepath.FromSlash(rel))); err != nil {
			t.Errorf("expected %s: %v", rel, err)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "laps", "short.png")); !os.IsNotExist(err) {
		t.Error("short track should not be rendered")
	}
}
