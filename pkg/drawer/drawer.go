// Package drawer renders a pipeline's steps and last-run timings as a
// Graphviz DOT graph.
package drawer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1"

	"github.com/vnykmshr/stepflow/pkg/scheduling/pipeline"
)

const (
	startVertex = "start"
	endVertex   = "end"
	maxRGB      = 240
)

// Options tweak the rendered graph.
type Options struct {
	// Title is shown as the graph label.
	Title string

	// RankDir is the Graphviz layout direction. Defaults to "LR".
	RankDir string
}

// Draw writes the DOT form of steps to w. Each operation is a vertex between
// the join points of its step; edges leaving an operation carry its duration
// from times and are coloured from blue (fastest) to red (slowest).
// StartOver steps get a dashed edge back to the start.
func Draw(w io.Writer, steps []pipeline.Step, times pipeline.TimeTable, opts Options) error {
	g := graph.New(graph.StringHash, graph.Directed())
	heat, err := heatmap(times)
	if err != nil {
		return err
	}

	if err := g.AddVertex(startVertex, graph.VertexAttribute("shape", "circle")); err != nil {
		return errors.Wrap(err, "unable to add start vertex")
	}

	prev := startVertex
	for i, step := range steps {
		join := fmt.Sprintf("step %d", i+1)
		if err := g.AddVertex(join,
			graph.VertexAttribute("shape", "box"),
			graph.VertexAttribute("label", fmt.Sprintf("step %d\\n%s", i+1, step.Policy)),
		); err != nil {
			return errors.Wrapf(err, "unable to add vertex for step %d", i+1)
		}

		if len(step.Operations) == 0 {
			if err := g.AddEdge(prev, join); err != nil {
				return errors.Wrapf(err, "unable to link %s to %s", prev, join)
			}
		}

		for j, op := range step.Operations {
			id := fmt.Sprintf("%d.%d %s", i+1, j+1, op.Name)
			if err := g.AddVertex(id, graph.VertexAttribute("label", escape(op.Name))); err != nil {
				return errors.Wrapf(err, "unable to add vertex for operation %s", op.Name)
			}
			if err := g.AddEdge(prev, id); err != nil {
				return errors.Wrapf(err, "unable to link %s to %s", prev, id)
			}

			edgeAttrs := []func(*graph.EdgeProperties){}
			if d, ok := times[op.Name]; ok {
				edgeAttrs = append(edgeAttrs,
					graph.EdgeAttribute("label", d.Round(time.Microsecond).String()),
					graph.EdgeAttribute("fontcolor", "blue"),
					graph.EdgeAttribute("color", heat[d]),
				)
			}
			if err := g.AddEdge(id, join, edgeAttrs...); err != nil {
				return errors.Wrapf(err, "unable to link %s to %s", id, join)
			}
		}

		if step.Policy == pipeline.StartOver {
			if err := g.AddEdge(join, startVertex,
				graph.EdgeAttribute("style", "dashed"),
				graph.EdgeAttribute("label", pipeline.StartOver.String()),
			); err != nil {
				return errors.Wrapf(err, "unable to add restart edge for step %d", i+1)
			}
		}

		prev = join
	}

	if err := g.AddVertex(endVertex, graph.VertexAttribute("shape", "doublecircle")); err != nil {
		return errors.Wrap(err, "unable to add end vertex")
	}
	if err := g.AddEdge(prev, endVertex); err != nil {
		return errors.Wrapf(err, "unable to link %s to end", prev)
	}

	rankDir := opts.RankDir
	if rankDir == "" {
		rankDir = "LR"
	}
	err = draw.DOT(g, w,
		draw.GraphAttribute("rankdir", rankDir),
		draw.GraphAttribute("label", escape(opts.Title)),
	)
	return errors.Wrap(err, "unable to render dot")
}

// DrawFile renders p's steps and last time table into the file at path.
func DrawFile(path string, p pipeline.Pipeline, opts Options) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "unable to create file %s", path)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, "unable to close file %s", path)
		}
	}()

	return Draw(file, p.Steps(), p.TimeTable(), opts)
}

// heatmap assigns each distinct duration a colour between blue and red.
func heatmap(times pipeline.TimeTable) (map[time.Duration]string, error) {
	distinct := make([]time.Duration, 0, len(times))
	seen := make(map[time.Duration]bool, len(times))
	for _, d := range times {
		if !seen[d] {
			seen[d] = true
			distinct = append(distinct, d)
		}
	}
	sort.Slice(distinct, func(i, j int) bool { return distinct[i] < distinct[j] })

	heat := make(map[time.Duration]string, len(distinct))
	if len(distinct) == 0 {
		return heat, nil
	}

	lo, hi := distinct[0], distinct[len(distinct)-1]
	for _, d := range distinct {
		fraction := 1.0
		if hi > lo {
			fraction = float64(d-lo) / float64(hi-lo)
		}

		c, err := colors.RGB(uint8(maxRGB*fraction), 0, uint8(maxRGB-maxRGB*fraction))
		if err != nil {
			return nil, errors.Wrap(err, "unable to get colour")
		}
		heat[d] = c.ToHEX().String()
	}
	return heat, nil
}

func escape(s string) string {
	return strings.ReplaceAll(s, `"`, `\"`)
}
