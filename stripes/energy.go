package stripes

import (
	"math"

	"github.com/james-bowman/sparse"

	"github.com/DavidJourdan/stripes/geometry"
	"github.com/DavidJourdan/stripes/mesh"
)

// Small uniform diagonal shift keeping the energy matrix positive definite
// when the mesh or field is near-degenerate.
const energyShift = 1e-4

// buildVertexEnergyMatrix assembles the doubled-real quadratic form of the
// stripe energy: one 2x2 block per vertex pair, the off-diagonal blocks
// encoding multiplication by w·e^{iω} and, across sheet-crossing edges,
// complex conjugation. Faces carrying a direction-field singularity are
// excluded from the stencil.
func buildVertexEnergyMatrix(g *geometry.Geometry, directionField []complex128,
	branchIndices []int, frequencies []float64) *sparse.CSR {

	m := g.Mesh
	cotan := g.HalfedgeCotanWeights()

	n := 2 * m.NumVertices()
	coo := sparse.NewCOO(n, n, nil, nil, nil)

	// degree terms accumulate here so each diagonal entry is stored exactly
	// once: COO triplets at the same position survive into the CSR as
	// repeated entries, which At would then misread
	degree := make([]float64, m.NumVertices())

	for e := 0; e < m.NumEdges(); e++ {
		omega, crossesSheets := computeOmega(g, directionField, frequencies, mesh.Edge(e))

		h := m.Halfedge(mesh.Edge(e))
		w := 0.0
		if branchIndices[m.FaceOf(h)] == 0 {
			w += cotan[h]
		}
		if t := m.Twin(h); t != mesh.Invalid && branchIndices[m.FaceOf(t)] == 0 {
			w += cotan[t]
		}

		i := 2 * int(m.Tail(h))
		j := 2 * int(m.Tip(h))

		degree[m.Tail(h)] += w
		degree[m.Tip(h)] += w

		// transport coefficient w·e^{iω}
		rx := w * math.Cos(omega)
		ry := w * math.Sin(omega)

		// these terms are the same whether or not the edge crosses sheets
		coo.Set(i, j, -rx)
		coo.Set(i+1, j, ry)
		coo.Set(j, i, -rx)
		coo.Set(j, i+1, ry)

		// across a sheet crossing the block also conjugates
		if crossesSheets {
			rx, ry = -rx, -ry
		}
		coo.Set(i, j+1, -ry)
		coo.Set(i+1, j+1, -rx)
		coo.Set(j+1, i, -ry)
		coo.Set(j+1, i+1, -rx)
	}

	for v, w := range degree {
		coo.Set(2*v, 2*v, w+energyShift)
		coo.Set(2*v+1, 2*v+1, w+energyShift)
	}
	return coo.ToCSR()
}

// buildVertexMassMatrix assembles the lumped mass matrix: each vertex's
// dual area, replicated on both coordinates of its 2x2 block.
func buildVertexMassMatrix(g *geometry.Geometry) *sparse.DIA {
	areas := g.VertexDualAreas()
	diag := make([]float64, 2*len(areas))
	for v, a := range areas {
		diag[2*v] = a
		diag[2*v+1] = a
	}
	return sparse.NewDIA(len(diag), len(diag), diag)
}
