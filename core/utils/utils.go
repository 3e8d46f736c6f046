package utils

import (
	"bytes"
	"expvar"
	"fmt"
	"io"
	"log"
	"net/http"
	_ "net/http/pprof"
	"os"
	"strings"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

type Iteration struct {
	StartTime  time.Time
	Duration   time.Duration
	Perplexity float64
}
type Iterations []*Iteration

func (is *Iterations) String() string { // Implements expvar.Var
	var buf bytes.Buffer
	for i, iter := range *is {
		fmt.Fprintf(&buf, "%05d: %s\t%s\n", i, iter.StartTime, iter.Duration)
	}
	return buf.String()
}

func (is *Iterations) Start() *Iteration {
	i := &Iteration{StartTime: time.Now()}
	*is = append(*is, i)
	return i
}

func (is *Iterations) End(perplexity float64) *Iteration {
	i := (*is)[len(*is)-1]
	i.Duration = time.Since(i.StartTime)
	i.Perplexity = perplexity
	return i
}

func EnableExpvar(addr string) *Iterations {
	is := new(Iterations)
	*is = make(Iterations, 0)

	expvar.Publish("Iterations", is)
	http.Handle("/progress/perplexity", newPerplexityFigureHandler(is))
	http.Handle("/progress/duration", newDurationFigureHandler(is))

	go func() {
		if e := http.ListenAndServe(addr, nil); e != nil {
			log.Fatalf("ListenAndServe on %s failed: %v", addr, e)
		}
	}()

	return is
}

func newPerplexityFigureHandler(is *Iterations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps := make(plotter.XYs, 0, len(*is))
		for i, _ := range *is {
			if (*is)[i].Perplexity > 0.0 {
				ps = append(ps,
					struct{ X, Y float64 }{float64(i), (*is)[i].Perplexity})
			}
		}
		if e := plotFigure(w, ps, "Iteration", "Perplexity"); e != nil {
			http.Error(w, e.Error(), http.StatusInternalServerError)
		}
	}
}

func newDurationFigureHandler(is *Iterations) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ps := make(plotter.XYs, 0, len(*is))
		for i, _ := range *is {
			if i > 0 && (*is)[i].Duration > 0 {
				// Skip the initialization and yet-complete iterations.
				ps = append(ps, struct{ X, Y float64 }{
					float64(i), (*is)[i].Duration.Minutes()})
			}
		}
		if e := plotFigure(w, ps, "Iteration", "Duration"); e != nil {
			http.Error(w, e.Error(), http.StatusInternalServerError)
		}
	}
}

// plotFigure renders ps as a line-and-points PNG to w.
func plotFigure(w io.Writer, ps plotter.XYs, xLabel, yLabel string) error {
	p := plot.New()
	p.Title.Text = strings.Join(os.Args, " ")
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel

	p.Add(plotter.NewGrid())
	line, points, e := plotter.NewLinePoints(ps)
	if e != nil {
		return fmt.Errorf("plotter.NewLinePoints failed: %v", e)
	}
	p.Add(line, points)

	wt, e := p.WriterTo(vg.Length(640), vg.Length(480), "png")
	if e != nil {
		return fmt.Errorf("plot.Plot.WriterTo failed: %v", e)
	}
	_, e = wt.WriteTo(w)
	return e
}
