package mesh

import (
	"errors"
	"log/slog"
	"math"
	"sort"

	"github.com/soypat/digistone/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

const (
	leafNode = iota
	xClip
	yClip
	zClip
)

// maxLeafTriangles is the number of triangles below which
// a node is no longer subdivided.
const maxLeafTriangles = 4

// ErrEmptyMesh is returned when a mesh has no usable triangles.
var ErrEmptyMesh = errors.New("mesh has no triangles")

type bihNode struct {
	flags       int // offset to children is stored in the upper bits, lower two bits are used as flags
	left, right int64
	// either:
	// - left and right clipping plane values (float64 bits)
	// - or offset into the index list and the end of the leaf range.
}

func (b *bihNode) isLeaf() bool { return (b.flags & 3) == leafNode }

func (b *bihNode) axis() int { return (b.flags & 3) - 1 }

func (b *bihNode) leftClip() float64 { return math.Float64frombits(uint64(b.left)) }

func (b *bihNode) rightClip() float64 { return math.Float64frombits(uint64(b.right)) }

// Mesh is an indexed triangle soup.
type Mesh struct {
	Indices  [][3]int // indices into the vertex list
	Vertices []r3.Vec
	Bb       r3.Box
}

// Triangle returns the ith triangle of the mesh.
func (m *Mesh) Triangle(i int) r3.Triangle {
	idx := m.Indices[i]
	return r3.Triangle{m.Vertices[idx[0]], m.Vertices[idx[1]], m.Vertices[idx[2]]}
}

// Bounds returns the bounding box of the mesh.
func (m *Mesh) Bounds() r3.Box { return m.Bb }

// BIH is a bounding interval hierarchy over a Mesh. It is read-only
// after construction and safe for concurrent queries.
type BIH struct {
	Mesh
	nodes []bihNode
	// OpenEdges is the number of edges with a single adjacent triangle.
	OpenEdges int
}

// NewBIH welds the vertices of model within vertTol and builds the hierarchy.
// A vertTol of zero infers a tolerance from the shortest triangle side.
// Open edges do not fail the build; they are counted and reported to logger
// once. A nil logger uses slog.Default.
func NewBIH(model []r3.Triangle, vertTol float64, logger *slog.Logger) (*BIH, error) {
	if len(model) == 0 {
		return nil, ErrEmptyMesh
	}
	if logger == nil {
		logger = slog.Default()
	}
	if vertTol == 0 {
		vertTol = inferTolerance(model)
	}
	if vertTol <= 0 || math.IsNaN(vertTol) {
		return nil, errors.New("could not infer vertex tolerance: degenerate model")
	}
	vertices := make([]r3.Vec, 0, len(model))
	indices := make([][3]int, len(model))
	bb := d3.EmptyBox()

	vertCache := make(map[[3]int64]int)
	hvertTol := 0.5 * vertTol
	for i, tri := range model {
		for j, v := range tri {
			key := [3]int64{
				int64(math.Floor((v.X + hvertTol) / vertTol)),
				int64(math.Floor((v.Y + hvertTol) / vertTol)),
				int64(math.Floor((v.Z + hvertTol) / vertTol)),
			}
			vidx, ok := vertCache[key]
			if !ok {
				vertices = append(vertices, v)
				bb.Min = d3.MinElem(bb.Min, v)
				bb.Max = d3.MaxElem(bb.Max, v)
				vidx = len(vertices) - 1
				vertCache[key] = vidx
			}
			indices[i][j] = vidx
		}
	}

	centroids := make([]r3.Vec, len(indices))
	for i, tri := range indices {
		centroids[i] = r3.Scale(1./3., r3.Add(r3.Add(vertices[tri[0]], vertices[tri[1]]), vertices[tri[2]]))
	}
	order := make([]int, len(indices))
	for i := range order {
		order[i] = i
	}
	nodes := make([]bihNode, 1)
	nodes = subdivide(nodes, 0, 0, order, indices, vertices, centroids, bb)
	sorted := make([][3]int, len(indices))
	for i, o := range order {
		sorted[i] = indices[o]
	}

	b := &BIH{
		Mesh: Mesh{
			Indices:  sorted,
			Vertices: vertices,
			Bb:       bb,
		},
		nodes: nodes,
	}
	b.OpenEdges = countOpenEdges(sorted)
	if b.OpenEdges > 0 {
		logger.Warn("non closed mesh detected", "openEdges", b.OpenEdges, "triangles", len(sorted))
	}
	return b, nil
}

func inferTolerance(model []r3.Triangle) float64 {
	minDist2 := math.MaxFloat64
	for i := range model {
		for j := range model[i] {
			side2 := r3.Norm2(r3.Sub(model[i][(j+1)%3], model[i][j]))
			if side2 > 0 {
				minDist2 = math.Min(minDist2, side2)
			}
		}
	}
	return math.Sqrt(minDist2) / 256
}

// countOpenEdges returns the number of directed edges that have no
// oppositely directed twin.
func countOpenEdges(indices [][3]int) int {
	edges := make(map[[2]int]struct{}, 3*len(indices))
	for _, tri := range indices {
		for j := range tri {
			edges[[2]int{tri[j], tri[(j+1)%3]}] = struct{}{}
		}
	}
	open := 0
	for e := range edges {
		if _, ok := edges[[2]int{e[1], e[0]}]; !ok {
			open++
		}
	}
	return open
}

func subdivide(b []bihNode, bihIdx, meshIdx int, order []int, indices [][3]int, verts, centroids []r3.Vec, bb r3.Box) []bihNode {
	if len(order) <= maxLeafTriangles {
		b[bihIdx] = bihNode{
			flags: leafNode,
			left:  int64(meshIdx),
			right: int64(meshIdx + len(order)),
		}
		return b
	}
	// classical heuristic, the longest axis
	// using the median as the pivot point.
	dims := r3.Sub(bb.Max, bb.Min)
	clip := zClip
	switch {
	case dims.X >= dims.Y && dims.X >= dims.Z:
		clip = xClip
	case dims.Y >= dims.X && dims.Y >= dims.Z:
		clip = yClip
	}
	sort.Slice(order, func(i, j int) bool {
		return component(centroids[order[i]], clip-1) < component(centroids[order[j]], clip-1)
	})

	half := len(order) / 2
	leftBB, rightBB := d3.EmptyBox(), d3.EmptyBox()
	for _, o := range order[:half] {
		for _, idx := range indices[o] {
			leftBB.Min = d3.MinElem(leftBB.Min, verts[idx])
			leftBB.Max = d3.MaxElem(leftBB.Max, verts[idx])
		}
	}
	for _, o := range order[half:] {
		for _, idx := range indices[o] {
			rightBB.Min = d3.MinElem(rightBB.Min, verts[idx])
			rightBB.Max = d3.MaxElem(rightBB.Max, verts[idx])
		}
	}

	// append two new nodes to store the children
	children := len(b)
	b = append(b, bihNode{}, bihNode{})
	b = subdivide(b, children, meshIdx, order[:half], indices, verts, centroids, leftBB)
	b = subdivide(b, children+1, meshIdx+half, order[half:], indices, verts, centroids, rightBB)

	b[bihIdx] = bihNode{
		flags: (children << 2) | clip,
		left:  int64(math.Float64bits(component(leftBB.Max, clip-1))),
		right: int64(math.Float64bits(component(rightBB.Min, clip-1))),
	}
	return b
}

func component(v r3.Vec, axis int) float64 {
	switch axis {
	case 0:
		return v.X
	case 1:
		return v.Y
	}
	return v.Z
}

func setComponent(v *r3.Vec, axis int, f float64) {
	switch axis {
	case 0:
		v.X = f
	case 1:
		v.Y = f
	default:
		v.Z = f
	}
}
