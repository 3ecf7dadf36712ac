package monitor

import (
	"fmt"
	"net/http"

	"github.com/banshee-data/blockvr/internal/block"
	"github.com/banshee-data/blockvr/internal/config"
	"github.com/banshee-data/blockvr/internal/httputil"
	"github.com/banshee-data/blockvr/internal/replay"
)

type handView struct {
	Controller string  `json:"controller"`
	Rule       string  `json:"rule"`
	Decision   string  `json:"decision"`
	Speed      float64 `json:"speed"`
	Down       float64 `json:"forward_dot_down"`
	Forward    float64 `json:"forward_dot_forward"`
	Outward    float64 `json:"forward_dot_outward"`
	Vertical   float64 `json:"vertical_offset"`
}

type outcomeView struct {
	Frame      uint64    `json:"frame"`
	Event      string    `json:"event"`
	Forced     bool      `json:"forced,omitempty"`
	Suppressed string    `json:"suppressed,omitempty"`
	Skip       string    `json:"skip,omitempty"`
	Smoothed   bool      `json:"smoothed"`
	Main       *handView `json:"main,omitempty"`
	Off        *handView `json:"off,omitempty"`
}

func viewHand(h block.Hand) *handView {
	return &handView{
		Controller: h.Controller.String(),
		Rule:       h.Rule.String(),
		Decision:   h.Decision.String(),
		Speed:      h.Features.Speed,
		Down:       h.Features.ForwardDotDown,
		Forward:    h.Features.ForwardDotForward,
		Outward:    h.Features.ForwardDotOutward,
		Vertical:   h.Features.VerticalOffset,
	}
}

func viewOutcome(o block.Outcome) outcomeView {
	v := outcomeView{
		Frame:    o.Frame,
		Event:    o.Event.String(),
		Forced:   o.Forced,
		Skip:     o.Skip.String(),
		Smoothed: o.Smoothed,
	}
	if o.Suppressed != block.EventNone {
		v.Suppressed = o.Suppressed.String()
	}
	if o.Evaluated() {
		v.Main = viewHand(o.Main)
		v.Off = viewHand(o.Off)
	}
	return v
}

// AttachRoutes registers the tracker's endpoints on mux:
//
//	/health          liveness
//	/api/status      counters as JSON
//	/api/outcomes    the last ?n= outcomes as JSON (default 100)
//	/report          interactive charts of the retained outcomes
//
// cfg supplies the threshold lines drawn on the report; nil uses defaults.
func (t *Tracker) AttachRoutes(mux *http.ServeMux, cfg *config.BlockConfig) {
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSONOK(w, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httputil.MethodNotAllowed(w, http.MethodGet)
			return
		}
		httputil.WriteJSONOK(w, t.Status())
	})
	mux.HandleFunc("/api/outcomes", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			httputil.MethodNotAllowed(w, http.MethodGet)
			return
		}
		n, err := httputil.IntParam(r, "n", 100)
		if err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		recent := t.Recent(n)
		views := make([]outcomeView, len(recent))
		for i, o := range recent {
			views[i] = viewOutcome(o)
		}
		httputil.WriteJSONOK(w, views)
	})
	mux.HandleFunc("/report", func(w http.ResponseWriter, r *http.Request) {
		recent := t.Recent(0)
		title := fmt.Sprintf("Live block session (%d frames)", len(recent))
		doc, err := replay.RenderHTMLReport(title, recent, cfg)
		if err != nil {
			httputil.InternalServerError(w, fmt.Sprintf("render error: %v", err))
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(doc)
	})
}
