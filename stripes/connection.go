package stripes

import (
	"math"
	"math/cmplx"

	"github.com/DavidJourdan/stripes/geometry"
	"github.com/DavidJourdan/stripes/mesh"
)

// computeOmega evaluates the discrete connection 1-form on edge e: the
// phase advance a stripe pattern with the target frequencies should pick up
// along the edge, following eq. 7 of [Knoppel et al. 2015]. The returned
// flag reports a sheet crossing: the two endpoints' field roots land on
// opposite sheets of the line field's double cover, so downstream uses of
// the tip value must conjugate.
//
// Frequencies are expected pre-scaled by 2π. The value is oriented along
// the edge's canonical halfedge.
func computeOmega(g *geometry.Geometry, directionField []complex128, frequencies []float64,
	e mesh.Edge) (float64, bool) {

	m := g.Mesh
	lengths := g.EdgeLengths()
	vecs := g.HalfedgeVectorsInVertex()
	transport := g.TransportVectorsAlongHalfedge()

	h := m.Halfedge(e)
	vi := m.Tail(h)
	vj := m.Tip(h)

	// roots of the doubled-angle representation
	xi := cmplx.Exp(complex(0, cmplx.Phase(directionField[vi])/2))
	xj := cmplx.Exp(complex(0, cmplx.Phase(directionField[vj])/2))

	// do the two roots agree once transported into the same basis?
	rij := transport[h]
	moved := rij * xi
	s := 1.0
	crossesSheets := real(moved)*real(xj)+imag(moved)*imag(xj) <= 0
	if crossesSheets {
		s = -1
	}

	lij := lengths[e]
	phiI := cmplx.Phase(xi)
	phiJ := cmplx.Phase(complex(s, 0) * xj)

	// angle of the edge in each endpoint's basis
	thetaI := cmplx.Phase(vecs[h])
	thetaJ := thetaI + cmplx.Phase(rij)

	omega := (lij / 2) * (frequencies[vi]*math.Cos(phiI-thetaI) + frequencies[vj]*math.Cos(phiJ-thetaJ))
	return omega, crossesSheets
}
