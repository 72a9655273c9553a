package stripes

import (
	"errors"
	"math"

	"github.com/DavidJourdan/stripes/geometry"
	"github.com/DavidJourdan/stripes/mesh"
)

// ErrIsolineBranch reports a face with more than two stripe crossings.
// Isolines stop at singularities, so a branching face means the singularity
// indices passed to the tracer are inconsistent with the corner values.
var ErrIsolineBranch = errors.New("stripes: isolines may only branch at singularities")

// IsolinePoint locates one point of an isoline: the crossing sits on the
// edge of Halfedge, at barycentric parameter T from its tip toward its
// tail.
type IsolinePoint struct {
	Halfedge mesh.Halfedge
	T        float64
}

// Isoline is one connected stripe: an ordered run of edge crossings over
// face-adjacent triangles. Open isolines end on the mesh boundary or at a
// singular face; closed ones loop back onto their first face.
type Isoline struct {
	Points []IsolinePoint
	Open   bool
}

// crossesModulo2Pi reports whether some whole multiple of 2π lies strictly
// between val1 and val2, and if so at which fraction along the segment the
// crossing occurs.
func crossesModulo2Pi(val1, val2 float64) (float64, bool) {
	if val1 == val2 {
		return 0, false
	}
	lo, hi := val1, val2
	if lo > hi {
		lo, hi = hi, lo
	}
	isoval := 2 * math.Pi * math.Ceil(lo/(2*math.Pi))
	if hi > isoval {
		return (isoval - val2) / (val1 - val2), true
	}
	return 0, false
}

// ExtractIsolinesFromStripePattern walks the face adjacency graph and
// stitches the 0 (mod 2π) crossings of the corner values into isolines.
// Faces carrying a stripe or field singularity terminate traces and are
// never traversed. Corner values are indexed by halfedge, as returned by
// ComputeStripePattern.
func ExtractIsolinesFromStripePattern(g *geometry.Geometry, stripeValues []float64,
	stripeIndices, fieldIndices []int) ([]Isoline, error) {

	m := g.Mesh

	var isolines []Isoline
	visited := make([]bool, m.NumFaces())

	for f := 0; f < m.NumFaces(); f++ {
		if visited[f] || stripeIndices[f] != 0 || fieldIndices[f] != 0 {
			continue
		}
		visited[f] = true

		iso := Isoline{Open: true}
		pieces := 0
		for _, h := range m.FaceHalfedges(mesh.Face(f)) {
			bary, ok := crossesModulo2Pi(stripeValues[h], stripeValues[m.Next(h)])
			if !ok {
				continue
			}
			pieces++
			points := []IsolinePoint{{Halfedge: h, T: bary}}

			prevFace := mesh.Face(f)
			curFace := m.OppositeFace(h)
			done := false
			for curFace != mesh.Invalid && !done &&
				stripeIndices[curFace] == 0 && fieldIndices[curFace] == 0 {
				visited[curFace] = true
				done = true
				for _, he := range m.FaceHalfedges(curFace) {
					oppFace := m.OppositeFace(he)
					if oppFace == prevFace {
						// don't examine the shared edge twice
						continue
					}
					b, crosses := crossesModulo2Pi(stripeValues[he], stripeValues[m.Next(he)])
					if !crosses {
						continue
					}
					if oppFace != mesh.Invalid && visited[oppFace] {
						done = true
						if oppFace == mesh.Face(f) {
							// back at the seed face, the trace is a loop
							iso.Open = false
						}
					} else {
						done = oppFace == mesh.Invalid ||
							stripeIndices[oppFace] != 0 || fieldIndices[oppFace] != 0
						points = append(points, IsolinePoint{Halfedge: he, T: b})
						prevFace = curFace
						curFace = oppFace
					}
					break
				}
			}

			if len(iso.Points) == 0 {
				// first piece walks away from the seed, store it reversed so
				// the second piece continues in the same direction
				for k := len(points) - 1; k >= 0; k-- {
					iso.Points = append(iso.Points, points[k])
				}
			} else {
				iso.Points = append(iso.Points, points...)
			}
		}
		if pieces > 0 {
			isolines = append(isolines, iso)
		}
		if pieces > 2 {
			return nil, ErrIsolineBranch
		}
	}
	return isolines, nil
}
