package field

import (
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/DavidJourdan/stripes/geometry"
	"github.com/DavidJourdan/stripes/mesh"
)

func planeGrid(t *testing.T, nx, ny int) *geometry.Geometry {
	t.Helper()
	var faces [][3]int
	var positions []r3.Vec
	idx := func(i, j int) int { return j*(nx+1) + i }
	for j := 0; j <= ny; j++ {
		for i := 0; i <= nx; i++ {
			positions = append(positions, r3.Vec{X: float64(i), Y: float64(j)})
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			faces = append(faces,
				[3]int{idx(i, j), idx(i+1, j), idx(i+1, j+1)},
				[3]int{idx(i, j), idx(i+1, j+1), idx(i, j+1)})
		}
	}
	m, err := mesh.NewSurfaceMesh(faces)
	require.NoError(t, err)
	g, err := geometry.New(m, positions)
	require.NoError(t, err)
	return g
}

// uniformLineField builds the doubled-angle representation of one global
// in-plane direction across the whole (flat) mesh.
func uniformLineField(t *testing.T, g *geometry.Geometry, globalAngle float64) []complex128 {
	t.Helper()
	dirs := make([]r3.Vec, g.Mesh.NumVertices())
	for v := range dirs {
		dirs[v] = r3.Vec{X: math.Cos(globalAngle), Y: math.Sin(globalAngle)}
	}
	out, err := FromExtrinsic(g, dirs, 2)
	require.NoError(t, err)
	return out
}

func TestUniformFieldHasNoSingularities(t *testing.T) {
	g := planeGrid(t, 5, 4)
	for _, angle := range []float64{0, math.Pi / 3, math.Pi / 2} {
		indices, err := ComputeFaceIndex(g, uniformLineField(t, g, angle), 2)
		require.NoError(t, err)
		for f, idx := range indices {
			assert.Equalf(t, 0, idx, "face %d, angle %g", f, angle)
		}
	}
}

func TestFromExtrinsicRecoversLocalAngles(t *testing.T) {
	g := planeGrid(t, 3, 3)
	m := g.Mesh

	// on a flat interior vertex, the doubled local angle of a global
	// direction must differ from the canonical halfedge's global angle by
	// exactly the direction's angle
	values := uniformLineField(t, g, math.Pi/6)
	for v := 0; v < m.NumVertices(); v++ {
		if m.IsBoundaryVertex(mesh.Vertex(v)) {
			continue
		}
		h := m.VertexHalfedge[v]
		d := r3.Sub(g.VertexPositions[m.Tip(h)], g.VertexPositions[m.Tail(h)])
		offset := math.Atan2(d.Y, d.X)
		want := cmplx.Exp(complex(0, 2*(math.Pi/6-offset)))
		assert.InDeltaf(t, 0, cmplx.Phase(values[v]/want), 1e-9, "vertex %d", v)
	}
}

func TestFaceIndexValidation(t *testing.T) {
	g := planeGrid(t, 2, 2)

	_, err := ComputeFaceIndex(g, make([]complex128, 3), 2)
	assert.Error(t, err, "wrong field length")

	_, err = ComputeFaceIndex(g, uniformLineField(t, g, 0), 0)
	assert.Error(t, err, "invalid power")

	_, err = FromExtrinsic(g, make([]r3.Vec, g.Mesh.NumVertices()), 2)
	assert.Error(t, err, "zero direction")
}
