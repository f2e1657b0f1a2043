package levels

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"

	"github.com/milk9111/echoes/physics"
)

//go:embed *.json
var LevelsFS embed.FS

var (
	ErrInvalidLevel = errors.New("levels: invalid level")
	ErrUnknownKind  = errors.New("levels: unknown object kind")
)

// Level is a parsed, validated level.
type Level struct {
	Name       string
	Title      string
	Chapter    int
	Width      float64
	Height     float64
	Spawn      physics.Vector
	OpenBottom bool
	Objects    []Object
	Tiles      *TileLayer
	Script     string
}

type point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type rawLevel struct {
	Name       string      `json:"name"`
	Title      string      `json:"title,omitempty"`
	Chapter    int         `json:"chapter,omitempty"`
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Spawn      point       `json:"spawn"`
	OpenBottom bool        `json:"open_bottom,omitempty"`
	Objects    []rawObject `json:"objects"`
	Tiles      *TileLayer  `json:"tiles,omitempty"`
	Script     string      `json:"script,omitempty"`
}

// Bounds returns the world bounds the level plays in.
func (l *Level) Bounds() physics.Bounds {
	return physics.Bounds{
		Max:        physics.Vector{X: l.Width, Y: l.Height},
		OpenBottom: l.OpenBottom,
	}
}

// Solids returns the solid rectangles of the level: walls, platforms and merged tiles.
func (l *Level) Solids() []Rect {
	var out []Rect
	for _, obj := range l.Objects {
		if s, ok := obj.(Solid); ok {
			out = append(out, s.Rect)
		}
	}
	if l.Tiles != nil {
		out = append(out, l.Tiles.Merge()...)
	}
	return out
}

// Placed returns every object to build into the world. Merged tiles come last,
// as platforms.
func (l *Level) Placed() []Object {
	out := slices.Clone(l.Objects)
	for _, r := range l.Tiles.Merge() {
		out = append(out, Solid{Rect: r, kind: KindPlatform})
	}
	return out
}

// Parse decodes and validates a level document.
func Parse(data []byte) (*Level, error) {
	var raw rawLevel
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal level: %w", err)
	}
	if !(raw.Width > 0) || !(raw.Height > 0) {
		return nil, fmt.Errorf("%w: size %vx%v", ErrInvalidLevel, raw.Width, raw.Height)
	}

	lvl := &Level{
		Name:       raw.Name,
		Title:      raw.Title,
		Chapter:    raw.Chapter,
		Width:      raw.Width,
		Height:     raw.Height,
		Spawn:      physics.Vector{X: raw.Spawn.X, Y: raw.Spawn.Y},
		OpenBottom: raw.OpenBottom,
		Tiles:      raw.Tiles,
		Script:     raw.Script,
	}
	if !lvl.Bounds().Contains(lvl.Spawn) {
		return nil, fmt.Errorf("%w: spawn (%v, %v) outside level", ErrInvalidLevel, lvl.Spawn.X, lvl.Spawn.Y)
	}
	if lvl.Tiles != nil {
		if err := lvl.Tiles.validate(); err != nil {
			return nil, err
		}
	}

	barriers := make(map[string]bool)
	ids := make(map[string]Kind)
	for i, ro := range raw.Objects {
		obj, err := ro.resolve()
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		if ro.ID != "" {
			if prev, dup := ids[ro.ID]; dup {
				return nil, fmt.Errorf("%w: id %q used by %s and %s", ErrInvalidLevel, ro.ID, prev, ro.Kind)
			}
			ids[ro.ID] = ro.Kind
		}
		if b, ok := obj.(Barrier); ok {
			barriers[b.ID] = true
		}
		lvl.Objects = append(lvl.Objects, obj)
	}

	// Switches and memories without an explicit id are numbered in file order.
	var switches, memories int
	for i, obj := range lvl.Objects {
		switch o := obj.(type) {
		case Switch:
			switches++
			if o.ID == "" {
				o.ID = fmt.Sprintf("switch_%d", switches)
				lvl.Objects[i] = o
			}
			if o.Target != "" && !barriers[o.Target] {
				return nil, fmt.Errorf("%w: switch %q targets unknown barrier %q", ErrInvalidLevel, o.ID, o.Target)
			}
		case Memory:
			memories++
			if o.ID == "" {
				o.ID = fmt.Sprintf("memory_%d", memories)
				lvl.Objects[i] = o
			}
		}
	}
	return lvl, nil
}

// MarshalJSON writes the level back in its on-disk form.
func (l *Level) MarshalJSON() ([]byte, error) {
	raw := rawLevel{
		Name:       l.Name,
		Title:      l.Title,
		Chapter:    l.Chapter,
		Width:      l.Width,
		Height:     l.Height,
		Spawn:      point{X: l.Spawn.X, Y: l.Spawn.Y},
		OpenBottom: l.OpenBottom,
		Tiles:      l.Tiles,
		Script:     l.Script,
	}
	for _, obj := range l.Objects {
		raw.Objects = append(raw.Objects, toRaw(obj))
	}
	return json.Marshal(raw)
}

// LoadLevelFromFS loads a level from the embedded catalog. The ".json" suffix is optional.
func LoadLevelFromFS(name string) (*Level, error) {
	data, err := fs.ReadFile(LevelsFS, fileName(name))
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return parseNamed(name, data)
}

// Load prefers a level file in dir and falls back to the embedded catalog. An empty
// dir always uses the embedded catalog.
func Load(dir, name string) (*Level, error) {
	if dir != "" {
		path := filepath.Join(dir, fileName(name))
		data, err := os.ReadFile(path)
		if err == nil {
			log.Printf("levels: loaded %s from disk", path)
			return parseNamed(name, data)
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read level %s: %w", path, err)
		}
	}
	return LoadLevelFromFS(name)
}

// List returns the embedded level names in chapter order.
func List() []string {
	entries, err := fs.ReadDir(LevelsFS, ".")
	if err != nil {
		return nil
	}
	type entry struct {
		name    string
		chapter int
	}
	var found []entry
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(e.Name(), ".json")
		lvl, err := LoadLevelFromFS(name)
		if err != nil {
			log.Printf("levels: skipping %s: %v", e.Name(), err)
			continue
		}
		found = append(found, entry{name: name, chapter: lvl.Chapter})
	}
	sort.SliceStable(found, func(i, j int) bool {
		if found[i].chapter != found[j].chapter {
			return found[i].chapter < found[j].chapter
		}
		return found[i].name < found[j].name
	})
	out := make([]string, len(found))
	for i, e := range found {
		out[i] = e.name
	}
	return out
}

func parseNamed(name string, data []byte) (*Level, error) {
	lvl, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("level %s: %w", name, err)
	}
	if lvl.Name == "" {
		lvl.Name = strings.TrimSuffix(name, ".json")
	}
	return lvl, nil
}

func fileName(name string) string {
	if strings.HasSuffix(name, ".json") {
		return name
	}
	return name + ".json"
}
