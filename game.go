package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"slices"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.design/x/clipboard"

	"github.com/milk9111/echoes/common"
	"github.com/milk9111/echoes/levels"
	"github.com/milk9111/echoes/metrics"
	"github.com/milk9111/echoes/prefabs"
	"github.com/milk9111/echoes/puzzle"
	"github.com/milk9111/echoes/savestore"
	"github.com/milk9111/echoes/session"
)

const (
	quickSlot   = "quick"
	statusTicks = 180
)

// Options are the command line settings the game starts with.
type Options struct {
	Level       string
	LevelDir    string
	SavePath    string
	MetricsAddr string
	Debug       bool
}

type Game struct {
	opts Options

	input   *Input
	tuning  prefabs.Tuning
	session *session.Session

	store     *savestore.Store
	watcher   *prefabs.Watcher
	collector *metrics.Collector
	clipboard bool

	paused  bool
	quit    bool
	pauseUI *ebitenui.UI

	status      string
	statusTicks int
}

func NewGame(opts Options) (*Game, error) {
	tuning, err := prefabs.LoadTuning()
	if err != nil {
		return nil, err
	}

	g := &Game{
		opts:   opts,
		input:  NewInput(),
		tuning: tuning,
	}

	if opts.MetricsAddr != "" {
		g.collector = metrics.New(nil)
		metrics.Serve(opts.MetricsAddr, nil)
	}

	g.store, err = savestore.Open(opts.SavePath)
	if err != nil {
		return nil, err
	}

	g.watcher, err = prefabs.NewWatcher("prefabs", opts.LevelDir)
	if err != nil {
		log.Printf("hot reload disabled: %v", err)
		g.watcher = nil
	}

	if err := clipboard.Init(); err != nil {
		log.Printf("clipboard unavailable: %v", err)
	} else {
		g.clipboard = true
	}

	name := opts.Level
	if name == "" {
		if all := levels.List(); len(all) > 0 {
			name = all[0]
		}
	}
	if err := g.startLevel(name); err != nil {
		return nil, errors.Join(err, g.Close())
	}

	g.pauseUI = NewPauseUI(g)
	return g, nil
}

// Close releases the save store and the file watcher.
func (g *Game) Close() error {
	var errs []error
	if g.watcher != nil {
		errs = append(errs, g.watcher.Close())
	}
	if g.store != nil {
		errs = append(errs, g.store.Close())
	}
	return errors.Join(errs...)
}

func (g *Game) config() session.Config {
	cfg := session.ConfigFromTuning(g.tuning)
	cfg.Metrics = g.collector
	return cfg
}

func (g *Game) startLevel(name string) error {
	lvl, err := levels.Load(g.opts.LevelDir, name)
	if err != nil {
		return err
	}
	s, err := session.New(g.config(), lvl)
	if err != nil {
		return err
	}
	if g.session != nil {
		g.session.Stop()
	}
	g.session = s
	g.paused = false
	g.setStatus(lvl.Title)
	return nil
}

// rebuild recreates the running session from fresh tuning or level data and carries
// the current progress over.
func (g *Game) rebuild(lvl *levels.Level) {
	snap := g.session.Snapshot()
	s, err := session.New(g.config(), lvl)
	if err != nil {
		log.Printf("reload: %v", err)
		return
	}
	if err := s.Restore(snap); err != nil {
		log.Printf("reload: keeping fresh state: %v", err)
	}
	g.session.Stop()
	g.session = s
}

func (g *Game) restart() {
	if err := g.startLevel(g.session.Level().Name); err != nil {
		log.Printf("restart: %v", err)
	}
}

func (g *Game) nextLevel() {
	all := levels.List()
	i := slices.Index(all, g.session.Level().Name)
	if i < 0 || i+1 >= len(all) {
		g.setStatus("That was the last memory.")
		return
	}
	if err := g.startLevel(all[i+1]); err != nil {
		log.Printf("next level: %v", err)
	}
}

func (g *Game) clearEchoes() {
	g.session.Echoes().ClearAll()
	g.session.Recorder().Start()
}

func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusTicks = statusTicks
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}

	g.input.Update()
	g.drainWatcher()

	if g.input.PausePressed {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	switch {
	case g.input.RestartPressed:
		g.restart()
	case g.input.NextPressed && g.session.Complete():
		g.nextLevel()
	case g.input.SavePressed:
		g.save()
	case g.input.LoadPressed:
		g.load()
	case g.input.CopyPressed:
		g.copySnapshot()
	case g.input.PastePressed:
		g.pasteSnapshot()
	}

	for _, evt := range g.session.Tick(1/float64(ebiten.TPS()), g.input.Intent()) {
		switch evt.Kind {
		case puzzle.MemoryCollected:
			g.setStatus(evt.Text)
		case puzzle.GoalReached:
			g.setStatus("Level complete. Press N to continue.")
		case puzzle.BarrierOpened:
			g.setStatus(fmt.Sprintf("Something opened: %s", evt.ID))
		}
	}

	if g.statusTicks > 0 {
		g.statusTicks--
	}
	return nil
}

func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.reload(path)
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("watcher: %v", err)
			}
		default:
			return
		}
	}
}

func (g *Game) reload(path string) {
	switch {
	case prefabs.IsTuningFile(path):
		tuning, err := prefabs.LoadTuning()
		if err != nil {
			log.Printf("reload %s: %v", path, err)
			return
		}
		g.tuning = tuning
		log.Printf("reloaded tuning from %s", path)
		g.rebuild(g.session.Level())
	case prefabs.IsLevelFile(path):
		name := g.session.Level().Name
		if strings.TrimSuffix(filepath.Base(path), ".json") != name {
			return
		}
		lvl, err := levels.Load(g.opts.LevelDir, name)
		if err != nil {
			log.Printf("reload %s: %v", path, err)
			return
		}
		log.Printf("reloaded level %s", name)
		g.rebuild(lvl)
	}
}

func (g *Game) save() {
	snap := g.session.Snapshot()
	if _, err := g.store.Save(quickSlot, snap.Level, snap); err != nil {
		log.Printf("save: %v", err)
		g.setStatus("Save failed.")
		return
	}
	g.setStatus("Saved.")
}

func (g *Game) load() {
	var snap session.SaveData
	if _, err := g.store.Load(quickSlot, &snap); err != nil {
		log.Printf("load: %v", err)
		g.setStatus("Nothing to load.")
		return
	}
	g.apply(snap)
}

func (g *Game) apply(snap session.SaveData) {
	if snap.Level != g.session.Level().Name {
		if err := g.startLevel(snap.Level); err != nil {
			log.Printf("load: %v", err)
			return
		}
	}
	if err := g.session.Restore(snap); err != nil {
		log.Printf("load: %v", err)
		g.setStatus("Save could not be restored.")
		return
	}
	g.setStatus("Loaded.")
}

func (g *Game) copySnapshot() {
	if !g.clipboard {
		return
	}
	data, err := json.MarshalIndent(g.session.Snapshot(), "", "  ")
	if err != nil {
		log.Printf("copy: %v", err)
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	g.setStatus("Snapshot copied to clipboard.")
}

func (g *Game) pasteSnapshot() {
	if !g.clipboard {
		return
	}
	var snap session.SaveData
	if err := json.Unmarshal(clipboard.Read(clipboard.FmtText), &snap); err != nil {
		g.setStatus("Clipboard does not hold a snapshot.")
		return
	}
	g.apply(snap)
}

func (g *Game) Draw(screen *ebiten.Image) {
	drawLevel(screen, g.session)
	drawEchoes(screen, g.session)
	drawPlayer(screen, g.session)
	drawHUD(screen, g.session, g.opts.Debug)
	if g.statusTicks > 0 {
		drawStatus(screen, g.status)
	}
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return common.BaseWidth, common.BaseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return common.BaseWidth, common.BaseHeight
}
