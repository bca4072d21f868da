// Package loader discovers telemetry files and decodes them into tracks.
package loader

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chrissnell/telemetrychart/internal/telemetry"
)

// ErrNotFound is returned when a group or track does not exist in a source
var ErrNotFound = errors.New("not found")

// RootGroup names the group formed by files directly in the data root
const RootGroup = "."

// TrackRef identifies one track inside a group
type TrackRef struct {
	Name string `json:"name"`
	File string `json:"file,omitempty"`
}

// Group is a logical set of tracks, one directory of the data tree
type Group struct {
	Name   string     `json:"name"`
	Tracks []TrackRef `json:"tracks"`
}

// Find returns the track named name
func (g Group) Find(name string) (TrackRef, bool) {
	for _, t := range g.Tracks {
		if t.Name == name {
			return t, true
		}
	}
	return TrackRef{}, false
}

// Source lists groups and loads tracks from them
type Source interface {
	Groups(ctx context.Context) ([]Group, error)
	Track(ctx context.Context, group, track string) (telemetry.Track, error)
}

type decodeFunc func(f *os.File, name string) (telemetry.Track, error)

var decoders = map[string]decodeFunc{
	".csv": func(f *os.File, name string) (telemetry.Track, error) { return ReadCSV(f, name) },
	".gpx": func(f *os.File, name string) (telemetry.Track, error) { return ReadGPX(f, name) },
}

// Supported reports whether a file name has a loadable extension
func Supported(name string) bool {
	_, ok := decoders[strings.ToLower(filepath.Ext(name))]
	return ok
}

// LoadFile decodes the file at p based on its extension
func LoadFile(p string) (telemetry.Track, error) {
	decode, ok := decoders[strings.ToLower(filepath.Ext(p))]
	if !ok {
		return telemetry.Track{}, fmt.Errorf("unsupported file type: %s", p)
	}
	f, err := os.Open(p)
	if err != nil {
		return telemetry.Track{}, err
	}
	defer f.Close()

	base := filepath.Base(p)
	return decode(f, strings.TrimSuffix(base, filepath.Ext(base)))
}

// DirSource serves tracks from a directory tree. Every directory holding at
// least one supported file is a group named by its slash-separated path
// relative to Root.
type DirSource struct {
	Root string
}

// NewDirSource returns a source rooted at root
func NewDirSource(root string) *DirSource {
	return &DirSource{Root: root}
}

// Groups walks the tree and returns groups sorted by name, tracks sorted by
// name. Hidden files and directories are skipped.
func (d *DirSource) Groups(ctx context.Context) ([]Group, error) {
	byName := make(map[string]*Group)

	err := filepath.WalkDir(d.Root, func(p string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if strings.HasPrefix(entry.Name(), ".") && p != d.Root {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if entry.IsDir() || !Supported(entry.Name()) {
			return nil
		}

		rel, err := filepath.Rel(d.Root, filepath.Dir(p))
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		g, ok := byName[name]
		if !ok {
			g = &Group{Name: name}
			byName[name] = g
		}
		base := entry.Name()
		g.Tracks = append(g.Tracks, TrackRef{
			Name: strings.TrimSuffix(base, filepath.Ext(base)),
			File: path.Join(name, base),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", d.Root, err)
	}

	groups := make([]Group, 0, len(byName))
	for _, g := range byName {
		sort.Slice(g.Tracks, func(i, j int) bool { return g.Tracks[i].File < g.Tracks[j].File })
		groups = append(groups, *g)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	return groups, nil
}

// Track loads one track. Only names returned by Groups resolve, so request
// input never reaches the filesystem as a path.
func (d *DirSource) Track(ctx context.Context, group, track string) (telemetry.Track, error) {
	groups, err := d.Groups(ctx)
	if err != nil {
		return telemetry.Track{}, err
	}
	for _, g := range groups {
		if g.Name != group {
			continue
		}
		ref, ok := g.Find(track)
		if !ok {
			break
		}
		return LoadFile(filepath.Join(d.Root, filepath.FromSlash(ref.File)))
	}
	return telemetry.Track{}, fmt.Errorf("track %s/%s: %w", group, track, ErrNotFound)
}

// MultiSource merges several sources; the first source that knows a group
// serves its tracks.
type MultiSource []Source

func (m MultiSource) Groups(ctx context.Context) ([]Group, error) {
	var all []Group
	for _, s := range m {
		groups, err := s.Groups(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, groups...)
	}
	return all, nil
}

func (m MultiSource) Track(ctx context.Context, group, track string) (telemetry.Track, error) {
	for _, s := range m {
		t, err := s.Track(ctx, group, track)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return t, err
	}
	return telemetry.Track{}, fmt.Errorf("track %s/%s: %w", group, track, ErrNotFound)
}
