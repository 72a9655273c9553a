package field

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/DavidJourdan/stripes/geometry"
	"github.com/DavidJourdan/stripes/mesh"
)

// FromExtrinsic expresses per-vertex 3D directions as a power-representation
// field in the vertices' intrinsic tangent bases. Each direction is located
// in the fan of wedges around its vertex by projecting into the incident
// face planes, then mapped to the fan's rescaled angular coordinate.
//
// For even powers the sign of a direction is immaterial (a line field), and
// both orientations are tried when locating the wedge. Directions that are
// near-normal to the surface give poorly conditioned results; zero
// directions are an error.
func FromExtrinsic(g *geometry.Geometry, directions []r3.Vec, power int) ([]complex128, error) {
	m := g.Mesh
	if len(directions) != m.NumVertices() {
		return nil, fmt.Errorf("field: %d directions for %d vertices", len(directions), m.NumVertices())
	}
	if power < 1 {
		return nil, fmt.Errorf("field: symmetry power must be positive, got %d", power)
	}

	angles := g.CornerAngles()
	scaled := g.CornerScaledAngles()
	normals := g.FaceNormals()

	out := make([]complex128, m.NumVertices())
	for v := 0; v < m.NumVertices(); v++ {
		d := directions[v]
		if r3.Norm(d) == 0 {
			return nil, fmt.Errorf("field: zero direction at vertex %d", v)
		}
		d = r3.Unit(d)

		signs := []float64{1}
		if power%2 == 0 {
			signs = []float64{1, -1}
		}

		// walk the fan, keeping the best wedge fit as a fallback for
		// directions that fall outside a boundary fan
		best := math.Inf(1)
		local := 0.0
		coord := 0.0
		for _, h := range m.OutgoingHalfedges(mesh.Vertex(v)) {
			e0 := r3.Unit(r3.Sub(g.VertexPositions[m.Tip(h)], g.VertexPositions[m.Tail(h)]))
			n := normals[m.FaceOf(h)]
			e1 := r3.Cross(n, e0)
			for _, s := range signs {
				theta := math.Atan2(r3.Dot(e1, r3.Scale(s, d)), r3.Dot(e0, r3.Scale(s, d)))
				miss := 0.0
				switch {
				case theta < 0:
					miss = -theta
				case theta > angles[h]:
					miss = theta - angles[h]
				}
				if miss < best {
					best = miss
					clamped := math.Min(math.Max(theta, 0), angles[h])
					local = coord + clamped*scaled[h]/angles[h]
				}
			}
			coord += scaled[h]
		}
		out[v] = cmplx.Exp(complex(0, float64(power)*local))
	}
	return out, nil
}
