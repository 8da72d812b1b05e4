package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"
)

const version = "0.1.0"

func main() {
	var (
		help       = flag.Bool("help", false, "Show help message")
		h          = flag.Bool("h", false, "Show help message (short)")
		width      = flag.Int("width", 80, "Grid width in cells")
		height     = flag.Int("height", 40, "Grid height in cells")
		seed       = flag.Int64("seed", 0, "Random seed (0 derives one from the current time)")
		ver        = flag.Bool("version", false, "Show version information")
		webMode    = flag.Bool("web", false, "Serve a live websocket/JSON feed instead of the terminal UI")
		webAddr    = flag.String("web-addr", ":8080", "Listen address when -web is set")
		tickRate   = flag.Duration("tick-rate", 150*time.Millisecond, "Tick interval in -web mode")
		verbose    = flag.Bool("verbose", false, "Enable debug-level logging")
	)

	flag.Parse()

	if *help || *h {
		printHelp()
		return
	}
	if *ver {
		fmt.Println("morphsim version", version)
		return
	}

	initLogging(*verbose)

	actualSeed := *seed
	if actualSeed == 0 {
		actualSeed = time.Now().UnixNano()
	}
	log.Info().Int64("seed", actualSeed).Int("width", *width).Int("height", *height).Msg("starting simulation")

	e := New(*width, *height, DefaultParameters(), actualSeed)

	if *webMode {
		if err := runWeb(e, *webAddr, *tickRate); err != nil {
			log.Fatal().Err(err).Msg("web host exited")
		}
		return
	}

	if err := runTUI(e); err != nil {
		log.Fatal().Err(err).Msg("terminal host exited")
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println("morphsim — a four-layer cellular world simulator")
	fmt.Println()
	fmt.Println("Layers: geosphere (mantle energy & terrain), atmosphere (temperature &")
	fmt.Println("storms), resource (alpha/beta crystal networks), and biosphere (settlements")
	fmt.Println("and migrants growing, mutating, and spreading across the crystal network).")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Printf("  %s [options]\n", os.Args[0])
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Controls (terminal UI):")
	fmt.Println("  space      pause/resume")
	fmt.Println("  enter      step one tick while paused")
	fmt.Println("  v          cycle grid/stats/events view")
	fmt.Println("  arrows     pan the grid view")
	fmt.Println("  ?          toggle help")
	fmt.Println("  q          quit")
	fmt.Println()
	fmt.Println("Web mode (-web):")
	fmt.Println("  GET  /ws        websocket feed, one JSON frame per tick")
	fmt.Println("  GET  /snapshot  single JSON snapshot of current state")
}
