//go:build js && wasm

// Command yearchart-wasm drives the chart inside a browser page. The page provides
// <div id="area-chart" data-source="..."> and <div id="chart-note">.
package main

import (
	"context"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"sync"
	"syscall/js"

	"github.com/pranegit/yearly-chart/internal/chart"
	"github.com/pranegit/yearly-chart/internal/config"
	"github.com/pranegit/yearly-chart/internal/logging"
)

// domSurface writes scenes into the page. Every method runs on a Go goroutine, never inside
// a js callback, so controller locks are never held by the browser event loop.
type domSurface struct {
	doc       js.Value
	container js.Value
	frame     js.Value
	note      js.Value
	tooltip   js.Value
	send      func(func())
	ctrl      func() *chart.Controller

	mu        sync.Mutex
	scene     *chart.Scene
	listeners []js.Func
}

// newDOMSurface draws into a positioned frame inside container; the container's own
// attributes are left as the page set them.
func newDOMSurface(doc, container, note js.Value, send func(func())) *domSurface {
	frame := doc.Call("createElement", "div")
	frame.Set("className", "chart-frame")
	frame.Get("style").Set("position", "relative")
	container.Call("replaceChildren", frame)

	tip := doc.Call("createElement", "div")
	tip.Set("id", "chart-tooltip")
	tip.Set("className", "chart-tooltip")
	style := tip.Get("style")
	style.Set("position", "absolute")
	style.Set("pointerEvents", "none")
	style.Set("display", "none")
	return &domSurface{doc: doc, container: container, frame: frame, note: note, tooltip: tip, send: send}
}

func (s *domSurface) Width() float64 {
	return s.container.Get("clientWidth").Float()
}

func (s *domSurface) Commit(sc *chart.Scene) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, fn := range s.listeners {
		fn.Release()
	}
	s.listeners = nil
	s.scene = sc

	if sc == nil {
		s.frame.Set("innerHTML", "")
		s.frame.Call("appendChild", s.tooltip)
		return
	}
	s.frame.Set("innerHTML", sc.Markup())
	s.frame.Call("appendChild", s.tooltip)

	overlay := s.doc.Call("getElementById", sc.OverlayID)
	if overlay.IsNull() {
		return
	}
	plotWidth := sc.Layout.PlotWidth()
	s.listen(overlay, "mouseenter", func(js.Value) {
		s.send(func() { s.ctrl().PointerEnter() })
	})
	s.listen(overlay, "mousemove", func(ev js.Value) {
		rect := overlay.Call("getBoundingClientRect")
		w := rect.Get("width").Float()
		if w <= 0 {
			return
		}
		x := (ev.Get("clientX").Float() - rect.Get("left").Float()) * plotWidth / w
		s.send(func() { s.ctrl().PointerMove(x) })
	})
	s.listen(overlay, "mouseleave", func(js.Value) {
		s.send(func() { s.ctrl().PointerLeave() })
	})
}

func (s *domSurface) listen(target js.Value, event string, fn func(js.Value)) {
	cb := js.FuncOf(func(_ js.Value, args []js.Value) any {
		if len(args) > 0 {
			fn(args[0])
		}
		return nil
	})
	target.Call("addEventListener", event, cb)
	s.listeners = append(s.listeners, cb)
}

func (s *domSurface) SetNote(text string) {
	if !s.note.IsNull() && !s.note.IsUndefined() {
		s.note.Set("textContent", text)
	}
}

func (s *domSurface) MoveFocus(f chart.Focus) {
	s.mu.Lock()
	sc := s.scene
	s.mu.Unlock()
	if sc == nil {
		return
	}
	g := s.doc.Call("getElementById", sc.FocusID)
	if g.IsNull() {
		return
	}
	if f.Visible {
		g.Call("setAttribute", "display", "inline")
	} else {
		g.Call("setAttribute", "display", "none")
	}
	if f.Label == "" {
		return
	}
	g.Call("setAttribute", "transform", "translate("+ftoa(f.X)+","+ftoa(f.Y)+")")
	if text := g.Call("querySelector", "text"); !text.IsNull() {
		text.Set("textContent", f.Label)
	}
}

func (s *domSurface) ShowTooltip(t chart.Tooltip) {
	style := s.tooltip.Get("style")
	if !t.Visible {
		style.Set("display", "none")
		return
	}
	s.tooltip.Set("textContent", t.Text)
	style.Set("left", ftoa(t.X)+"px")
	style.Set("top", ftoa(t.Y)+"px")
	style.Set("display", "block")
}

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

// resolveSource turns a page-relative path into an absolute url for fetch
func resolveSource(doc js.Value, source string) string {
	base, err := url.Parse(doc.Get("baseURI").String())
	if err != nil {
		return source
	}
	ref, err := url.Parse(source)
	if err != nil {
		return source
	}
	return base.ResolveReference(ref).String()
}

func main() {
	log, err := logging.New(logging.Config{Level: "info", JSON: true, Output: os.Stderr})
	if err != nil {
		panic(err)
	}

	doc := js.Global().Get("document")
	container := doc.Call("getElementById", "area-chart")
	if container.IsNull() {
		log.Error("wasm.no_container", "id", "area-chart")
		return
	}
	source := config.DefaultSource
	if ds := container.Get("dataset").Get("source"); ds.Type() == js.TypeString && ds.String() != "" {
		source = ds.String()
	}

	// events from js callbacks run here, in arrival order
	events := make(chan func(), 128)
	send := func(fn func()) {
		select {
		case events <- fn:
		default:
			log.Warn("wasm.event_dropped")
		}
	}
	go func() {
		for fn := range events {
			fn()
		}
	}()

	surf := newDOMSurface(doc, container, doc.Call("getElementById", "chart-note"), send)
	ctrl := chart.NewController(chart.Deps{
		Surface: surf,
		Loader:  chart.NewLoader(http.DefaultClient),
		Logger:  log,
	}, chart.Options{Source: resolveSource(doc, source)})
	surf.ctrl = func() *chart.Controller { return ctrl }

	onResize := js.FuncOf(func(js.Value, []js.Value) any {
		send(ctrl.Resize)
		return nil
	})
	js.Global().Get("window").Call("addEventListener", "resize", onResize)

	go func() { _ = ctrl.Draw(context.Background()) }()
	select {}
}
