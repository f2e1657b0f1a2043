package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/echoes/common"
)

func main() {
	debug := flag.Bool("debug", false, "enable debug overlay")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	levelName := flag.String("level", "", "level name (basename, .json optional); defaults to the first level")
	levelDir := flag.String("levels", "levels", "directory of level files that override the embedded ones")
	savePath := flag.String("save", "", "save directory; empty keeps saves in memory")
	metricsAddr := flag.String("metrics", "", "serve prometheus metrics on this address, e.g. :2112")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(common.BaseWidth, common.BaseHeight)
	ebiten.SetWindowTitle("echoes")

	game, err := NewGame(Options{
		Level:       *levelName,
		LevelDir:    *levelDir,
		SavePath:    *savePath,
		MetricsAddr: *metricsAddr,
		Debug:       *debug,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
