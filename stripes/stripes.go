// Package stripes implements "Stripe Patterns on Surfaces"
// [Knoppel et al. 2015]: given per-vertex target frequencies and a line
// field with possible singularities, it computes a 2π-periodic function on
// triangle corners whose 0 (mod 2π) isolines trace evenly spaced stripes
// aligned with the field, and extracts those isolines as polylines.
//
// The pipeline runs strictly forward: a discrete connection 1-form derived
// from the field, a sparse generalized eigenvalue problem whose smallest
// eigenvector is the periodic parameterization, a per-face phase
// integration onto corners, and a graph trace stitching per-edge crossings
// into curves.
package stripes

import (
	"fmt"
	"math"

	"github.com/DavidJourdan/stripes/field"
	"github.com/DavidJourdan/stripes/geometry"
)

// ComputeStripePattern computes the per-corner stripe phases for the given
// target frequencies (stripe cycles per unit length) and per-vertex line
// field in doubled-angle power representation. It returns the corner
// phases indexed by halfedge, the stripe singularity index per face, and
// the direction field's own singularity index per face.
func ComputeStripePattern(g *geometry.Geometry, frequencies []float64,
	directionField []complex128) ([]float64, []int, []int, error) {

	nV := g.Mesh.NumVertices()
	if len(frequencies) != nV {
		return nil, nil, nil, fmt.Errorf("stripes: %d frequencies for %d vertices", len(frequencies), nV)
	}
	if len(directionField) != nV {
		return nil, nil, nil, fmt.Errorf("stripes: %d field values for %d vertices", len(directionField), nV)
	}

	// singularities of the direction field; the power reflects the line
	// field's two-fold symmetry
	branchIndices, err := field.ComputeFaceIndex(g, directionField, 2)
	if err != nil {
		return nil, nil, nil, err
	}

	// frequencies are cycles per unit length, the connection works in radians
	scaled := make([]float64, nV)
	for v, f := range frequencies {
		scaled[v] = 2 * math.Pi * f
	}

	psi, err := computeParameterization(g, directionField, branchIndices, scaled)
	if err != nil {
		return nil, nil, nil, err
	}

	textureCoordinates, stripeIndices, err := computeTextureCoordinates(g, directionField, scaled, psi)
	if err != nil {
		return nil, nil, nil, err
	}
	return textureCoordinates, stripeIndices, branchIndices, nil
}
