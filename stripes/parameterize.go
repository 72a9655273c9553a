package stripes

import (
	"fmt"
	"math"

	"github.com/DavidJourdan/stripes/geometry"
	"github.com/DavidJourdan/stripes/solver"
)

// computeParameterization solves the generalized eigenvalue problem of
// [Knoppel et al. 2015] eq. 9 and reshapes the smallest eigenvector into a
// unit complex value per vertex.
func computeParameterization(g *geometry.Geometry, directionField []complex128,
	branchIndices []int, frequencies []float64) ([]complex128, error) {

	energy := buildVertexEnergyMatrix(g, directionField, branchIndices, frequencies)
	massMatrix := buildVertexMassMatrix(g)

	solution, err := solver.SmallestEigenvector(energy, massMatrix)
	if err != nil {
		return nil, fmt.Errorf("stripes: parameterization eigenproblem failed: %w", err)
	}

	nV := g.Mesh.NumVertices()
	psi := make([]complex128, nV)
	for v := 0; v < nV; v++ {
		x, y := solution[2*v], solution[2*v+1]
		norm := math.Hypot(x, y)
		if norm == 0 || math.IsNaN(norm) {
			return nil, fmt.Errorf("stripes: degenerate parameterization at vertex %d", v)
		}
		psi[v] = complex(x/norm, y/norm)
	}
	return psi, nil
}
