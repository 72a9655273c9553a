package stripes

import (
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/DavidJourdan/stripes/geometry"
)

// ExtractPolylinesFromStripePattern extracts the stripe isolines and
// realizes them in 3D: a flat point list plus index pairs for the
// segments. Closed isolines get one extra segment joining their last point
// back to the first.
func ExtractPolylinesFromStripePattern(g *geometry.Geometry, stripeValues []float64,
	stripeIndices, fieldIndices []int) ([]r3.Vec, [][2]int, error) {

	isolines, err := ExtractIsolinesFromStripePattern(g, stripeValues, stripeIndices, fieldIndices)
	if err != nil {
		return nil, nil, err
	}

	m := g.Mesh
	var points []r3.Vec
	var edges [][2]int

	i := 0
	for _, iso := range isolines {
		start := i
		for _, pt := range iso.Points {
			tail := g.VertexPositions[m.Tail(pt.Halfedge)]
			tip := g.VertexPositions[m.Tip(pt.Halfedge)]
			points = append(points, r3.Add(r3.Scale(pt.T, tail), r3.Scale(1-pt.T, tip)))
			if i < start+len(iso.Points)-1 {
				edges = append(edges, [2]int{i, i + 1})
			}
			i++
		}
		if !iso.Open {
			edges = append(edges, [2]int{i - 1, start})
		}
	}
	return points, edges, nil
}
