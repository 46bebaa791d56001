package pipeline

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/kintower/pkg/diagram"
	"github.com/matzehuels/kintower/pkg/errors"
	"github.com/matzehuels/kintower/pkg/family"
	"github.com/matzehuels/kintower/pkg/graph"
)

// ResolvePrimary returns the person named by id, or the graph's primary
// person when id is empty. That is nil only for an empty family, which lays
// out as a diagram without rows.
func ResolvePrimary(g *family.Graph, id string) (*family.Person, error) {
	if id == "" {
		return g.Primary(), nil
	}
	p, ok := g.Person(id)
	if !ok {
		return nil, errors.New(errors.ErrCodePersonNotFound, "person %q not found", id)
	}
	return p, nil
}

// GenerateLayout runs a full diagram pass around the primary person and
// captures it. The populate is committed immediately, so no node is hidden.
// Options must already be validated.
func GenerateLayout(g *family.Graph, opts Options, logger *log.Logger) (graph.Layout, error) {
	p, err := ResolvePrimary(g, opts.Primary)
	if err != nil {
		return graph.Layout{}, err
	}

	c := diagram.NewController(opts.DiagramOptions(), logger)
	c.CommitPopulate(c.BeginPopulate(p))
	if opts.Year != 0 {
		c.SetDisplayYear(opts.Year)
	}
	return graph.FromController(c), nil
}
