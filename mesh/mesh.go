// Package mesh provides a halfedge representation of a manifold triangle
// surface. Vertices, edges, faces and halfedges are integer handles into
// flat arrays; all adjacency queries are index lookups.
//
// Halfedges are stored three per face: halfedge h belongs to face h/3 and
// occupies corner h%3 of that face, so Next is pure index arithmetic and a
// corner is identified with the halfedge rooted at it. Twin pointers are
// resolved from an edge map during construction; a twin of Invalid marks a
// boundary halfedge.
package mesh

import (
	"fmt"

	"github.com/notargets/gocfd/types"
)

// Invalid is the sentinel for a missing adjacency pointer, e.g. the twin of
// a boundary halfedge.
const Invalid = -1

// Handle types for the mesh elements. They are plain indices; all adjacency
// queries go through the owning SurfaceMesh.
type (
	Vertex   int
	Edge     int
	Face     int
	Halfedge int
)

// SurfaceMesh is a halfedge arena for an oriented manifold triangle mesh,
// possibly with boundary.
type SurfaceMesh struct {
	// Tail vertex of each halfedge
	HalfedgeVertex []Vertex
	// Opposite halfedge across the shared edge, Invalid on boundary
	HalfedgeTwin []Halfedge
	// Undirected edge of each halfedge
	HalfedgeEdge []Edge
	// Canonical halfedge of each edge (the one created first)
	EdgeHalfedge []Halfedge
	// One outgoing halfedge per vertex. For boundary vertices this is the
	// unique outgoing boundary halfedge, so walking NextOutgoing from it
	// covers the whole fan before falling off the boundary.
	VertexHalfedge []Halfedge

	nVertices int
	nFaces    int
}

// NewSurfaceMesh builds the halfedge structure from a face-vertex list.
// Faces must be consistently oriented; every edge may be shared by at most
// two faces, in opposite directions.
func NewSurfaceMesh(faces [][3]int) (*SurfaceMesh, error) {
	if len(faces) == 0 {
		return nil, fmt.Errorf("mesh: empty face list")
	}

	nV := 0
	for f, tri := range faces {
		if tri[0] == tri[1] || tri[1] == tri[2] || tri[2] == tri[0] {
			return nil, fmt.Errorf("mesh: face %d has repeated vertices %v", f, tri)
		}
		for _, v := range tri {
			if v < 0 {
				return nil, fmt.Errorf("mesh: face %d has negative vertex index %d", f, v)
			}
			if v+1 > nV {
				nV = v + 1
			}
		}
	}

	nF := len(faces)
	nH := 3 * nF
	m := &SurfaceMesh{
		HalfedgeVertex: make([]Vertex, nH),
		HalfedgeTwin:   make([]Halfedge, nH),
		HalfedgeEdge:   make([]Edge, nH),
		VertexHalfedge: make([]Halfedge, nV),
		nVertices:      nV,
		nFaces:         nF,
	}
	for h := range m.HalfedgeTwin {
		m.HalfedgeTwin[h] = Invalid
	}
	for v := range m.VertexHalfedge {
		m.VertexHalfedge[v] = Invalid
	}

	// Resolve twins through a packed edge-key map, the same construction
	// gocfd uses for its triangulation connectivity.
	firstHalfedge := make(map[types.EdgeKey]Halfedge, nH/2)
	for f := 0; f < nF; f++ {
		for c := 0; c < 3; c++ {
			h := Halfedge(3*f + c)
			tail := faces[f][c]
			tip := faces[f][(c+1)%3]
			m.HalfedgeVertex[h] = Vertex(tail)

			key := types.NewEdgeKey([2]int{tail, tip})
			other, seen := firstHalfedge[key]
			if !seen {
				e := Edge(len(m.EdgeHalfedge))
				m.EdgeHalfedge = append(m.EdgeHalfedge, h)
				m.HalfedgeEdge[h] = e
				firstHalfedge[key] = h
				continue
			}
			if m.HalfedgeTwin[other] != Invalid {
				v := key.GetVertices(false)
				return nil, fmt.Errorf("mesh: edge (%d,%d) is shared by more than two faces", v[0], v[1])
			}
			if m.HalfedgeVertex[other] == Vertex(tail) {
				v := key.GetVertices(false)
				return nil, fmt.Errorf("mesh: inconsistent orientation across edge (%d,%d)", v[0], v[1])
			}
			m.HalfedgeTwin[other] = h
			m.HalfedgeTwin[h] = other
			m.HalfedgeEdge[h] = m.HalfedgeEdge[other]
		}
	}

	// Pick vertex halfedges. Boundary outgoing halfedges win so that vertex
	// fans can always be walked with NextOutgoing from VertexHalfedge.
	for h := 0; h < nH; h++ {
		v := m.HalfedgeVertex[h]
		if m.VertexHalfedge[v] == Invalid {
			m.VertexHalfedge[v] = Halfedge(h)
		}
	}
	boundarySeen := make([]bool, nV)
	for h := 0; h < nH; h++ {
		if m.HalfedgeTwin[h] != Invalid {
			continue
		}
		v := m.HalfedgeVertex[h]
		if boundarySeen[v] {
			return nil, fmt.Errorf("mesh: vertex %d touches more than one boundary wedge", v)
		}
		boundarySeen[v] = true
		m.VertexHalfedge[v] = Halfedge(h)
	}

	for v := 0; v < nV; v++ {
		if m.VertexHalfedge[v] == Invalid {
			return nil, fmt.Errorf("mesh: vertex %d is not referenced by any face", v)
		}
	}
	return m, nil
}

// Element counts.
func (m *SurfaceMesh) NumVertices() int  { return m.nVertices }
func (m *SurfaceMesh) NumEdges() int     { return len(m.EdgeHalfedge) }
func (m *SurfaceMesh) NumFaces() int     { return m.nFaces }
func (m *SurfaceMesh) NumHalfedges() int { return 3 * m.nFaces }

// Next returns the next halfedge around h's face.
func (m *SurfaceMesh) Next(h Halfedge) Halfedge {
	f := int(h) / 3
	return Halfedge(3*f + (int(h)+1)%3)
}

// Prev returns the previous halfedge around h's face.
func (m *SurfaceMesh) Prev(h Halfedge) Halfedge {
	f := int(h) / 3
	return Halfedge(3*f + (int(h)+2)%3)
}

// Twin returns the opposite halfedge, or Invalid if h is on the boundary.
func (m *SurfaceMesh) Twin(h Halfedge) Halfedge { return m.HalfedgeTwin[h] }

// Tail returns the vertex h points away from.
func (m *SurfaceMesh) Tail(h Halfedge) Vertex { return m.HalfedgeVertex[h] }

// Tip returns the vertex h points toward.
func (m *SurfaceMesh) Tip(h Halfedge) Vertex { return m.HalfedgeVertex[m.Next(h)] }

// FaceOf returns the face h belongs to.
func (m *SurfaceMesh) FaceOf(h Halfedge) Face { return Face(int(h) / 3) }

// EdgeOf returns the undirected edge underlying h.
func (m *SurfaceMesh) EdgeOf(h Halfedge) Edge { return m.HalfedgeEdge[h] }

// Halfedge returns the canonical halfedge of e; its direction defines the
// edge's orientation.
func (m *SurfaceMesh) Halfedge(e Edge) Halfedge { return m.EdgeHalfedge[e] }

// FirstVertex returns the tail of e's canonical halfedge.
func (m *SurfaceMesh) FirstVertex(e Edge) Vertex { return m.Tail(m.EdgeHalfedge[e]) }

// SecondVertex returns the tip of e's canonical halfedge.
func (m *SurfaceMesh) SecondVertex(e Edge) Vertex { return m.Tip(m.EdgeHalfedge[e]) }

// IsBoundaryEdge reports whether e has a face on only one side.
func (m *SurfaceMesh) IsBoundaryEdge(e Edge) bool {
	return m.HalfedgeTwin[m.EdgeHalfedge[e]] == Invalid
}

// IsBoundaryVertex reports whether v lies on the mesh boundary.
func (m *SurfaceMesh) IsBoundaryVertex(v Vertex) bool {
	return m.HalfedgeTwin[m.VertexHalfedge[v]] == Invalid
}

// OppositeFace returns the face across h's edge, or Invalid when h is on
// the boundary.
func (m *SurfaceMesh) OppositeFace(h Halfedge) Face {
	t := m.HalfedgeTwin[h]
	if t == Invalid {
		return Invalid
	}
	return m.FaceOf(t)
}

// FaceHalfedges returns the three halfedges of f in orientation order.
func (m *SurfaceMesh) FaceHalfedges(f Face) [3]Halfedge {
	return [3]Halfedge{Halfedge(3 * int(f)), Halfedge(3*int(f) + 1), Halfedge(3*int(f) + 2)}
}

// NextOutgoing rotates counterclockwise to the next halfedge leaving
// Tail(h), or Invalid when the rotation leaves the mesh at a boundary.
func (m *SurfaceMesh) NextOutgoing(h Halfedge) Halfedge {
	return m.HalfedgeTwin[m.Prev(h)]
}

// OutgoingHalfedges returns all halfedges leaving v in counterclockwise
// order, starting at v's canonical halfedge. For a boundary vertex the walk
// covers the complete fan.
func (m *SurfaceMesh) OutgoingHalfedges(v Vertex) []Halfedge {
	var out []Halfedge
	start := m.VertexHalfedge[v]
	h := start
	for {
		out = append(out, h)
		h = m.NextOutgoing(h)
		if h == Invalid || h == start {
			return out
		}
	}
}

// VertexDegree returns the number of edges incident to v.
func (m *SurfaceMesh) VertexDegree(v Vertex) int {
	n := len(m.OutgoingHalfedges(v))
	if m.IsBoundaryVertex(v) {
		// the incoming boundary edge has no outgoing counterpart at v
		n++
	}
	return n
}
