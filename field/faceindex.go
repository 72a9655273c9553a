// Package field provides utilities for per-vertex direction fields with
// n-fold rotational symmetry, stored in the power representation: a field
// value's argument is n times the represented direction's angle, which
// removes the n-way labeling ambiguity.
package field

import (
	"fmt"
	"math"
	"math/cmplx"

	"github.com/DavidJourdan/stripes/geometry"
	"github.com/DavidJourdan/stripes/mesh"
)

// ComputeFaceIndex returns the singularity index of the field on each face:
// the winding number of the field around the face, measured against the
// parallel transport raised to the field's symmetry power. Regular faces
// get index zero.
func ComputeFaceIndex(g *geometry.Geometry, directionField []complex128, power int) ([]int, error) {
	m := g.Mesh
	if len(directionField) != m.NumVertices() {
		return nil, fmt.Errorf("field: %d field values for %d vertices", len(directionField), m.NumVertices())
	}
	if power < 1 {
		return nil, fmt.Errorf("field: symmetry power must be positive, got %d", power)
	}

	transport := g.TransportVectorsAlongHalfedge()
	indices := make([]int, m.NumFaces())
	for f := 0; f < m.NumFaces(); f++ {
		rot := 0.0
		for _, h := range m.FaceHalfedges(mesh.Face(f)) {
			x0 := directionField[m.Tail(h)]
			x1 := directionField[m.Tip(h)]
			// transport the tail value into the tip's basis, accounting for
			// the field's symmetry
			t := cmplx.Exp(complex(0, float64(power)*cmplx.Phase(transport[h])))
			rot += cmplx.Phase(x1 / (t * x0))
		}
		indices[f] = int(math.Round(rot / (2 * math.Pi)))
	}
	return indices, nil
}
