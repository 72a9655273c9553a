// Package geometry computes differential-geometry quantities of an embedded
// triangle mesh: lengths, angles, cotan weights, dual areas, per-vertex
// tangent bases and the parallel transport between them. Quantities are
// computed on first access and memoized for the lifetime of the Geometry.
//
// Accessor calls are not safe for concurrent use; the slices they return
// are immutable afterwards and safe for concurrent reads.
package geometry

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/DavidJourdan/stripes/mesh"
)

// Geometry owns a mesh, its vertex positions, and a cache of derived
// quantities keyed per element.
type Geometry struct {
	Mesh            *mesh.SurfaceMesh
	VertexPositions []r3.Vec

	edgeLengths          []float64
	faceAreas            []float64
	faceNormals          []r3.Vec
	cornerAngles         []float64
	cornerScaledAngles   []float64
	vertexAngleSums      []float64
	halfedgeCotanWeights []float64
	vertexDualAreas      []float64
	halfedgeVectors      []complex128
	transportVectors     []complex128
	edgeDihedralAngles   []float64
	principalDirections  []complex128
}

// New wraps a mesh and its embedding. The position slice must have one
// entry per mesh vertex.
func New(m *mesh.SurfaceMesh, positions []r3.Vec) (*Geometry, error) {
	if m == nil {
		return nil, fmt.Errorf("geometry: nil mesh")
	}
	if len(positions) != m.NumVertices() {
		return nil, fmt.Errorf("geometry: %d positions for %d vertices", len(positions), m.NumVertices())
	}
	return &Geometry{Mesh: m, VertexPositions: positions}, nil
}

// vector returns the embedded edge vector of halfedge h, tail to tip.
func (g *Geometry) vector(h mesh.Halfedge) r3.Vec {
	return r3.Sub(g.VertexPositions[g.Mesh.Tip(h)], g.VertexPositions[g.Mesh.Tail(h)])
}

// EdgeLengths returns the length of each edge.
func (g *Geometry) EdgeLengths() []float64 {
	if g.edgeLengths == nil {
		m := g.Mesh
		g.edgeLengths = make([]float64, m.NumEdges())
		for e := 0; e < m.NumEdges(); e++ {
			g.edgeLengths[e] = r3.Norm(g.vector(m.Halfedge(mesh.Edge(e))))
		}
	}
	return g.edgeLengths
}

// FaceAreas returns the area of each face.
func (g *Geometry) FaceAreas() []float64 {
	if g.faceAreas == nil {
		m := g.Mesh
		g.faceAreas = make([]float64, m.NumFaces())
		for f := 0; f < m.NumFaces(); f++ {
			h := mesh.Halfedge(3 * f)
			c := r3.Cross(g.vector(h), g.vector(m.Next(h)))
			g.faceAreas[f] = 0.5 * r3.Norm(c)
		}
	}
	return g.faceAreas
}

// FaceNormals returns the unit normal of each face.
func (g *Geometry) FaceNormals() []r3.Vec {
	if g.faceNormals == nil {
		m := g.Mesh
		g.faceNormals = make([]r3.Vec, m.NumFaces())
		for f := 0; f < m.NumFaces(); f++ {
			h := mesh.Halfedge(3 * f)
			c := r3.Cross(g.vector(h), g.vector(m.Next(h)))
			g.faceNormals[f] = r3.Unit(c)
		}
	}
	return g.faceNormals
}

// CornerAngles returns the interior angle at each corner, indexed by the
// halfedge rooted at that corner.
func (g *Geometry) CornerAngles() []float64 {
	if g.cornerAngles == nil {
		m := g.Mesh
		g.cornerAngles = make([]float64, m.NumHalfedges())
		for h := 0; h < m.NumHalfedges(); h++ {
			u := g.vector(mesh.Halfedge(h))
			// the other edge leaving this corner, reversed previous halfedge
			w := r3.Scale(-1, g.vector(m.Prev(mesh.Halfedge(h))))
			g.cornerAngles[h] = math.Atan2(r3.Norm(r3.Cross(u, w)), r3.Dot(u, w))
		}
	}
	return g.cornerAngles
}

// VertexAngleSums returns the total corner angle around each vertex.
func (g *Geometry) VertexAngleSums() []float64 {
	if g.vertexAngleSums == nil {
		m := g.Mesh
		angles := g.CornerAngles()
		g.vertexAngleSums = make([]float64, m.NumVertices())
		for h := 0; h < m.NumHalfedges(); h++ {
			g.vertexAngleSums[m.Tail(mesh.Halfedge(h))] += angles[h]
		}
	}
	return g.vertexAngleSums
}

// CornerScaledAngles returns corner angles rescaled so that each vertex's
// fan spans exactly 2π, or π on the boundary. These are the angular
// coordinates of the per-vertex tangent bases.
func (g *Geometry) CornerScaledAngles() []float64 {
	if g.cornerScaledAngles == nil {
		m := g.Mesh
		angles := g.CornerAngles()
		sums := g.VertexAngleSums()
		g.cornerScaledAngles = make([]float64, m.NumHalfedges())
		for h := 0; h < m.NumHalfedges(); h++ {
			v := m.Tail(mesh.Halfedge(h))
			span := 2 * math.Pi
			if m.IsBoundaryVertex(v) {
				span = math.Pi
			}
			g.cornerScaledAngles[h] = angles[h] * span / sums[v]
		}
	}
	return g.cornerScaledAngles
}

// HalfedgeCotanWeights returns, for each halfedge, half the cotangent of
// the angle opposite it in its face.
func (g *Geometry) HalfedgeCotanWeights() []float64 {
	if g.halfedgeCotanWeights == nil {
		m := g.Mesh
		g.halfedgeCotanWeights = make([]float64, m.NumHalfedges())
		for h := 0; h < m.NumHalfedges(); h++ {
			// edges from the opposite corner to this halfedge's endpoints
			p := m.Prev(mesh.Halfedge(h))
			u := r3.Scale(-1, g.vector(p))
			w := g.vector(m.Next(mesh.Halfedge(h)))
			cross := r3.Norm(r3.Cross(u, w))
			if cross == 0 {
				g.halfedgeCotanWeights[h] = 0
				continue
			}
			g.halfedgeCotanWeights[h] = 0.5 * r3.Dot(u, w) / cross
		}
	}
	return g.halfedgeCotanWeights
}

// VertexDualAreas returns the barycentric dual area of each vertex, one
// third of the incident face areas.
func (g *Geometry) VertexDualAreas() []float64 {
	if g.vertexDualAreas == nil {
		m := g.Mesh
		areas := g.FaceAreas()
		g.vertexDualAreas = make([]float64, m.NumVertices())
		for h := 0; h < m.NumHalfedges(); h++ {
			g.vertexDualAreas[m.Tail(mesh.Halfedge(h))] += areas[int(h)/3] / 3
		}
	}
	return g.vertexDualAreas
}

// HalfedgeVectorsInVertex returns each halfedge expressed in the tangent
// basis of its tail vertex: a complex number whose argument is the angular
// coordinate of the edge in the vertex's rescaled fan and whose magnitude
// is the edge length. The canonical vertex halfedge sits at angle zero.
func (g *Geometry) HalfedgeVectorsInVertex() []complex128 {
	if g.halfedgeVectors == nil {
		m := g.Mesh
		lengths := g.EdgeLengths()
		scaled := g.CornerScaledAngles()
		g.halfedgeVectors = make([]complex128, m.NumHalfedges())
		for v := 0; v < m.NumVertices(); v++ {
			coord := 0.0
			for _, h := range m.OutgoingHalfedges(mesh.Vertex(v)) {
				l := lengths[m.EdgeOf(h)]
				g.halfedgeVectors[h] = complex(l*math.Cos(coord), l*math.Sin(coord))
				coord += scaled[h]
			}
		}
	}
	return g.halfedgeVectors
}

// TransportVectorsAlongHalfedge returns, per halfedge, the unit rotation
// taking tangent vectors at the tail vertex to the tip vertex's basis.
func (g *Geometry) TransportVectorsAlongHalfedge() []complex128 {
	if g.transportVectors == nil {
		m := g.Mesh
		vecs := g.HalfedgeVectorsInVertex()
		g.transportVectors = make([]complex128, m.NumHalfedges())
		for h := 0; h < m.NumHalfedges(); h++ {
			angleI := cmplx.Phase(vecs[h])
			// the same edge seen from the tip, pointing back at the tail
			angleJ := math.Pi
			if t := m.Twin(mesh.Halfedge(h)); t != mesh.Invalid {
				angleJ = cmplx.Phase(vecs[t])
			}
			// at a boundary tip the reversed edge closes the rescaled fan at π
			g.transportVectors[h] = cmplx.Exp(complex(0, angleJ+math.Pi-angleI))
		}
	}
	return g.transportVectors
}

// EdgeDihedralAngles returns the signed dihedral angle at each edge,
// positive for convex folds and zero on the boundary.
func (g *Geometry) EdgeDihedralAngles() []float64 {
	if g.edgeDihedralAngles == nil {
		m := g.Mesh
		normals := g.FaceNormals()
		g.edgeDihedralAngles = make([]float64, m.NumEdges())
		for e := 0; e < m.NumEdges(); e++ {
			h := m.Halfedge(mesh.Edge(e))
			t := m.Twin(h)
			if t == mesh.Invalid {
				continue
			}
			n1 := normals[m.FaceOf(h)]
			n2 := normals[m.FaceOf(t)]
			dir := r3.Unit(g.vector(h))
			g.edgeDihedralAngles[e] = math.Atan2(r3.Dot(dir, r3.Cross(n1, n2)), r3.Dot(n1, n2))
		}
	}
	return g.edgeDihedralAngles
}

// VertexPrincipalCurvatureDirections returns a per-vertex 2-symmetric
// direction field pointing along the principal curvature direction, in the
// doubled-angle power representation used by line fields. The magnitude
// reflects the local bending strength; flat regions give near-zero vectors.
func (g *Geometry) VertexPrincipalCurvatureDirections() []complex128 {
	if g.principalDirections == nil {
		m := g.Mesh
		lengths := g.EdgeLengths()
		dihedral := g.EdgeDihedralAngles()
		scaled := g.CornerScaledAngles()
		g.principalDirections = make([]complex128, m.NumVertices())
		for v := 0; v < m.NumVertices(); v++ {
			dir := complex(0, 0)
			coord := 0.0
			for _, h := range m.OutgoingHalfedges(mesh.Vertex(v)) {
				e := m.EdgeOf(h)
				dir += cmplx.Exp(complex(0, 2*coord)) * complex(-lengths[e]*dihedral[e]/2, 0)
				coord += scaled[h]
			}
			g.principalDirections[v] = dir
		}
	}
	return g.principalDirections
}
