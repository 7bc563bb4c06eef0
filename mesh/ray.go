package mesh

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Ray is a half line starting at Origin. Dir need not be normalized,
// in which case Hit.T is measured in multiples of Dir's length.
type Ray struct {
	Origin r3.Vec
	Dir    r3.Vec
}

// At returns the point on the ray at parameter t.
func (r Ray) At(t float64) r3.Vec {
	return r3.Add(r.Origin, r3.Scale(t, r.Dir))
}

// Hit is the result of a successful ray query.
type Hit struct {
	Triangle int     // index into Mesh.Indices
	T        float64 // ray parameter at the intersection
}

const (
	// barycentric slack so rays grazing a shared edge still hit one of its triangles.
	edgeTol = 1e-9
	// minimum ray parameter accepted as a hit.
	minT = 1e-12
)

// NearestHit returns the triangle closest to the ray origin
// along the ray direction. ok is false when the ray hits nothing.
func (b *BIH) NearestHit(ray Ray) (hit Hit, ok bool) {
	best := Hit{Triangle: -1, T: math.Inf(1)}
	if _, _, ok := slab(ray, b.Bb); !ok {
		return best, false
	}
	best = b.nearestHitHelper(ray, 0, b.Bb, best)
	return best, best.Triangle >= 0
}

// TriangleIntersection returns the ray parameter at which ray
// crosses triangle i of the mesh.
func (m *Mesh) TriangleIntersection(i int, ray Ray) (t float64, ok bool) {
	return intersectTriangle(ray, m.Triangle(i))
}

func (b *BIH) nearestHitHelper(ray Ray, idx int, bb r3.Box, best Hit) Hit {
	node := &b.nodes[idx]
	if node.isLeaf() {
		for i := node.left; i < node.right; i++ {
			t, ok := intersectTriangle(ray, b.Triangle(int(i)))
			if ok && t < best.T {
				best = Hit{Triangle: int(i), T: t}
			}
		}
		return best
	}
	axis := node.axis()
	leftBB, rightBB := bb, bb
	setComponent(&leftBB.Max, axis, node.leftClip())
	setComponent(&rightBB.Min, axis, node.rightClip())

	leftIdx := node.flags >> 2
	rightIdx := leftIdx + 1
	tl, _, okl := slab(ray, leftBB)
	tr, _, okr := slab(ray, rightBB)
	// Visit the nearer child first so the farther one can be pruned.
	if okl && okr && tr < tl {
		leftIdx, rightIdx = rightIdx, leftIdx
		leftBB, rightBB = rightBB, leftBB
		tl, tr = tr, tl
	} else if !okl {
		leftIdx, rightIdx = rightIdx, -1
		leftBB = rightBB
		tl = tr
		okl, okr = okr, false
	}
	if okl && tl <= best.T {
		best = b.nearestHitHelper(ray, leftIdx, leftBB, best)
	}
	if okr && rightIdx >= 0 && tr <= best.T {
		best = b.nearestHitHelper(ray, rightIdx, rightBB, best)
	}
	return best
}

// slab intersects ray with an axis aligned box slightly padded to
// account for flat boxes. tmin is clamped to zero for origins inside the box.
func slab(ray Ray, bb r3.Box) (tmin, tmax float64, ok bool) {
	tmin, tmax = 0, math.Inf(1)
	for axis := 0; axis < 3; axis++ {
		o := component(ray.Origin, axis)
		d := component(ray.Dir, axis)
		lo := component(bb.Min, axis)
		hi := component(bb.Max, axis)
		pad := 1e-9 * (1 + math.Abs(lo) + math.Abs(hi))
		lo -= pad
		hi += pad
		if math.Abs(d) < 1e-300 {
			if o < lo || o > hi {
				return 0, 0, false
			}
			continue
		}
		t0 := (lo - o) / d
		t1 := (hi - o) / d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tmin = math.Max(tmin, t0)
		tmax = math.Min(tmax, t1)
		if tmin > tmax {
			return 0, 0, false
		}
	}
	return tmin, tmax, true
}

// intersectTriangle implements the Möller–Trumbore ray/triangle test.
func intersectTriangle(ray Ray, tri r3.Triangle) (t float64, ok bool) {
	e1 := r3.Sub(tri[1], tri[0])
	e2 := r3.Sub(tri[2], tri[0])
	p := r3.Cross(ray.Dir, e2)
	det := r3.Dot(e1, p)
	if math.Abs(det) < 1e-300 {
		return 0, false // ray parallel to triangle plane
	}
	inv := 1 / det
	s := r3.Sub(ray.Origin, tri[0])
	u := r3.Dot(s, p) * inv
	if u < -edgeTol || u > 1+edgeTol {
		return 0, false
	}
	q := r3.Cross(s, e1)
	v := r3.Dot(ray.Dir, q) * inv
	if v < -edgeTol || u+v > 1+edgeTol {
		return 0, false
	}
	t = r3.Dot(e2, q) * inv
	if t < minT {
		return 0, false
	}
	return t, true
}
