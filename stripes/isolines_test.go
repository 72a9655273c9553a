package stripes

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/DavidJourdan/stripes/geometry"
	"github.com/DavidJourdan/stripes/mesh"
)

func TestCrossesModulo2Pi(t *testing.T) {
	cases := []struct {
		name       string
		val1, val2 float64
		crosses    bool
		bary       float64
	}{
		{"equal values", 1.0, 1.0, false, 0},
		{"straddles zero", -1.0, 1.0, true, 0.5},
		{"same period", 1.0, 2.0, false, 0},
		{"straddles 2pi", 5.0, 7.0, true, (2*math.Pi - 7) / (5 - 7)},
		{"straddles 2pi reversed", 7.0, 5.0, true, (2*math.Pi - 5) / (7 - 5)},
		{"starts exactly on multiple", 0.0, 1.0, true, 1.0},
		{"spans several periods", -0.1, 4 * math.Pi, true, (0 - 4*math.Pi) / (-0.1 - 4*math.Pi)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			bary, ok := crossesModulo2Pi(tc.val1, tc.val2)
			assert.Equal(t, tc.crosses, ok)
			if tc.crosses {
				assert.InDelta(t, tc.bary, bary, 1e-12)
				assert.GreaterOrEqual(t, bary, 0.0)
				assert.LessOrEqual(t, bary, 1.0)
			}
		})
	}
}

func TestBranchingFaceIsAnError(t *testing.T) {
	m, err := mesh.NewSurfaceMesh([][3]int{{0, 1, 2}})
	require.NoError(t, err)
	g, err := geometry.New(m, []r3.Vec{{}, {X: 1}, {Y: 1}})
	require.NoError(t, err)

	// all three corner pairs straddle a multiple of 2π: the face branches
	values := []float64{-1, 1, 7}
	_, err = ExtractIsolinesFromStripePattern(g, values, []int{0}, []int{0})
	assert.ErrorIs(t, err, ErrIsolineBranch)
}

func TestSingularFacesAreNeverTraced(t *testing.T) {
	g := planeGrid(t, 8, 4)
	df := uniformField(t, g, 0)
	freq := constantFrequencies(g.Mesh.NumVertices(), 0.25)

	tex, stripeIdx, fieldIdx, err := ComputeStripePattern(g, freq, df)
	require.NoError(t, err)

	// declare a handful of faces singular after the fact; the tracer must
	// treat them as hard walls
	marked := map[mesh.Face]bool{3: true, 11: true, 20: true}
	for f := range marked {
		fieldIdx[f] = 1
	}

	isolines, err := ExtractIsolinesFromStripePattern(g, tex, stripeIdx, fieldIdx)
	require.NoError(t, err)
	for _, iso := range isolines {
		for _, pt := range iso.Points {
			assert.False(t, marked[g.Mesh.FaceOf(pt.Halfedge)],
				"isoline crosses a singular face")
		}
	}
}

func TestIsolinesStayFaceAdjacent(t *testing.T) {
	g := planeGrid(t, 8, 4)
	df := uniformField(t, g, 0)
	freq := constantFrequencies(g.Mesh.NumVertices(), 0.25)

	tex, stripeIdx, fieldIdx, err := ComputeStripePattern(g, freq, df)
	require.NoError(t, err)
	isolines, err := ExtractIsolinesFromStripePattern(g, tex, stripeIdx, fieldIdx)
	require.NoError(t, err)
	require.NotEmpty(t, isolines)

	m := g.Mesh
	for _, iso := range isolines {
		for k := 1; k < len(iso.Points); k++ {
			// consecutive crossings lie on edges of the same or adjacent faces
			a := iso.Points[k-1].Halfedge
			b := iso.Points[k].Halfedge
			fa, fb := m.FaceOf(a), m.FaceOf(b)
			adjacent := fa == fb || m.OppositeFace(a) == fb || m.OppositeFace(b) == fa ||
				(m.OppositeFace(a) != mesh.Invalid && m.OppositeFace(a) == m.OppositeFace(b))
			assert.Truef(t, adjacent, "points %d and %d are not face-adjacent", k-1, k)
		}
		for _, pt := range iso.Points {
			assert.GreaterOrEqual(t, pt.T, 0.0)
			assert.LessOrEqual(t, pt.T, 1.0)
		}
	}
}
