package stripes

import (
	"math"
	"math/cmplx"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/DavidJourdan/stripes/geometry"
	"github.com/DavidJourdan/stripes/mesh"
)

// computeTextureCoordinates integrates the connection around every face,
// assigning one real phase per corner so that corner differences match the
// per-edge ω values as closely as the parameterization allows. The rounded
// closing discrepancy of the walk is the face's stripe singularity index.
//
// The sheet-crossing sign rules below follow the reference formulation of
// [Knoppel et al. 2015] case by case: a crossing conjugates the far
// endpoint's parameterization value and flips the ω terms that the rest of
// the walk sees through the crossed edge.
func computeTextureCoordinates(g *geometry.Geometry, directionField []complex128,
	frequencies []float64, psi []complex128) ([]float64, []int, error) {

	m := g.Mesh
	nF := m.NumFaces()
	textureCoordinates := make([]float64, m.NumHalfedges())
	stripeIndices := make([]int, nF)

	// populate the geometry cache up front, faces only read from it below
	g.EdgeLengths()
	g.HalfedgeVectorsInVertex()
	g.TransportVectorsAlongHalfedge()

	workers := runtime.GOMAXPROCS(0)
	chunk := (nF + workers - 1) / workers
	var group errgroup.Group
	for lo := 0; lo < nF; lo += chunk {
		lo, hi := lo, min(lo+chunk, nF)
		group.Go(func() error {
			for f := lo; f < hi; f++ {
				integrateFace(g, directionField, frequencies, psi, mesh.Face(f),
					textureCoordinates, stripeIndices)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}
	return textureCoordinates, stripeIndices, nil
}

// integrateFace walks one face and fills its three corner phases. It returns
// the raw closing discrepancy of the walk, whose nearest multiple of 2π is
// recorded as the face's stripe index.
func integrateFace(g *geometry.Geometry, directionField []complex128, frequencies []float64,
	psi []complex128, f mesh.Face, textureCoordinates []float64, stripeIndices []int) float64 {

	m := g.Mesh
	halfedges := m.FaceHalfedges(f)
	hij, hjk, hki := halfedges[0], halfedges[1], halfedges[2]

	psiI := psi[m.Tail(hij)]
	psiJ := psi[m.Tail(hjk)]
	psiK := psi[m.Tail(hki)]

	// orientation of each halfedge against its edge's canonical direction
	cIJ, cJK, cKI := 1.0, 1.0, 1.0
	if m.Halfedge(m.EdgeOf(hij)) != hij {
		cIJ = -1
	}
	if m.Halfedge(m.EdgeOf(hjk)) != hjk {
		cJK = -1
	}
	if m.Halfedge(m.EdgeOf(hki)) != hki {
		cKI = -1
	}

	omegaIJRaw, crossesIJ := computeOmega(g, directionField, frequencies, m.EdgeOf(hij))
	omegaJKRaw, _ := computeOmega(g, directionField, frequencies, m.EdgeOf(hjk))
	omegaKIRaw, crossesKI := computeOmega(g, directionField, frequencies, m.EdgeOf(hki))
	omegaIJ := cIJ * omegaIJRaw
	omegaJK := cJK * omegaJKRaw
	omegaKI := cKI * omegaKIRaw

	if crossesIJ {
		psiJ = cmplx.Conj(psiJ)
		omegaIJ *= cIJ
		omegaJK *= -cJK
	}
	if crossesKI {
		psiK = cmplx.Conj(psiK)
		omegaKI *= -cKI
		omegaJK *= cJK
	}

	rij := cmplx.Exp(complex(0, omegaIJ))
	rjk := cmplx.Exp(complex(0, omegaJK))
	rki := cmplx.Exp(complex(0, omegaKI))

	// corner phases closest to the target ω along each edge
	alphaI := cmplx.Phase(psiI)
	alphaJ := alphaI + omegaIJ - cmplx.Phase(rij*psiI/psiJ)
	alphaK := alphaJ + omegaJK - cmplx.Phase(rjk*psiJ/psiK)
	alphaL := alphaK + omegaKI - cmplx.Phase(rki*psiK/psiI)

	textureCoordinates[hij] = alphaI
	textureCoordinates[hjk] = alphaJ
	textureCoordinates[hki] = alphaK

	// winding left over after closing the walk
	discrepancy := alphaL - alphaI
	stripeIndices[f] = int(math.Round(discrepancy / (2 * math.Pi)))
	return discrepancy
}
