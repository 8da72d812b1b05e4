package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/net/websocket"
)

// wireCell is one cell's projection into the JSON frame pushed to every
// connected viewer. It mirrors Cell fields the host actually renders rather
// than the whole Cell, the same trimming the teacher's web_interface.go does
// for its own broadcast frame.
type wireCell struct {
	Exists       bool    `json:"exists"`
	MantleEnergy float64 `json:"mantleEnergy"`
	Temperature  float64 `json:"temperature"`
	CrystalState int     `json:"crystalState"`
	SpeciesID    int     `json:"speciesId,omitempty"`
	Storm        bool    `json:"storm"`
}

type wireFrame struct {
	Tick   uint64      `json:"tick"`
	Width  int         `json:"width"`
	Height int         `json:"height"`
	Cells  []wireCell  `json:"cells"`
	Events []LogEvent  `json:"events"`
}

// webHub fans a single Engine's tick output out to any number of websocket
// viewers, grounded on the teacher's WebInterface (web_interface.go) which
// does the same broadcast-to-all-clients job over golang.org/x/net/websocket.
// The engine has no idea this exists; the hub only reads engine state, through
// Engine.Grid's At accessor and Engine.Events, and never writes it.
type webHub struct {
	engine *Engine

	mu      sync.Mutex
	clients map[*websocket.Conn]chan wireFrame
}

func newWebHub(e *Engine) *webHub {
	return &webHub{engine: e, clients: make(map[*websocket.Conn]chan wireFrame)}
}

func (h *webHub) handler(ws *websocket.Conn) {
	ch := make(chan wireFrame, 4)
	h.mu.Lock()
	h.clients[ws] = ch
	h.mu.Unlock()

	log.Info().Str("remote", ws.Request().RemoteAddr).Msg("viewer connected")

	defer func() {
		h.mu.Lock()
		delete(h.clients, ws)
		h.mu.Unlock()
		ws.Close()
		log.Info().Str("remote", ws.Request().RemoteAddr).Msg("viewer disconnected")
	}()

	for frame := range ch {
		if err := websocket.JSON.Send(ws, frame); err != nil {
			return
		}
	}
}

// broadcast builds a fresh wire frame from the engine's current state and
// fans it out, dropping it for any client whose outbound buffer is full
// rather than blocking the simulation loop on a slow viewer.
func (h *webHub) broadcast() {
	g := h.engine.Grid
	frame := wireFrame{
		Tick:   h.engine.TimeStep,
		Width:  g.Width,
		Height: g.Height,
		Cells:  make([]wireCell, 0, g.Width*g.Height),
		Events: h.engine.Events.Recent(20),
	}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			wc := wireCell{
				Exists:       c.Exists,
				MantleEnergy: c.MantleEnergy,
				Temperature:  c.Temperature,
				CrystalState: int(c.CrystalState),
				Storm:        c.HasThunderstorm,
			}
			if c.BioAttributes != nil {
				wc.SpeciesID = c.BioAttributes.SpeciesID
			}
			frame.Cells = append(frame.Cells, wc)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ws, ch := range h.clients {
		select {
		case ch <- frame:
		default:
			log.Warn().Str("remote", ws.Request().RemoteAddr).Msg("dropping frame for slow viewer")
		}
	}
}

// snapshotHandler serves a single JSON snapshot over plain HTTP, for clients
// that just want a one-shot poll instead of a live feed.
func (h *webHub) snapshotHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	g := h.engine.Grid
	frame := wireFrame{
		Tick:   h.engine.TimeStep,
		Width:  g.Width,
		Height: g.Height,
		Events: h.engine.Events.Recent(20),
	}
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := g.At(x, y)
			frame.Cells = append(frame.Cells, wireCell{
				Exists:       c.Exists,
				MantleEnergy: c.MantleEnergy,
				Temperature:  c.Temperature,
				CrystalState: int(c.CrystalState),
				Storm:        c.HasThunderstorm,
			})
		}
	}
	json.NewEncoder(w).Encode(frame)
}

// runWeb drives the engine headlessly at the given tick interval, pushing a
// frame to every connected viewer after each tick, and serves both the
// websocket feed and a plain HTTP snapshot endpoint.
func runWeb(e *Engine, addr string, tickInterval time.Duration) error {
	hub := newWebHub(e)

	mux := http.NewServeMux()
	mux.Handle("/ws", websocket.Handler(hub.handler))
	mux.HandleFunc("/snapshot", hub.snapshotHandler)

	go func() {
		ticker := time.NewTicker(tickInterval)
		defer ticker.Stop()
		for range ticker.C {
			e.Tick()
			hub.broadcast()
		}
	}()

	log.Info().Str("addr", addr).Msg("serving live simulation")
	return http.ListenAndServe(addr, mux)
}
