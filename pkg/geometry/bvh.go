package geometry

import (
	"sort"

	"github.com/df07/go-material-eval/pkg/core"
)

// leafThreshold is the largest shape count stored in a single leaf
const leafThreshold = 8

// BVHNode represents a node in the Bounding Volume Hierarchy.
// Leaves hold Shapes, internal nodes hold Left and Right.
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Shapes      []Shape
}

// BVH accelerates closest-hit queries over a set of shapes
type BVH struct {
	Root *BVHNode
}

// NewBVH builds a hierarchy over shapes by median split along the longest axis.
// The input slice is not reordered.
func NewBVH(shapes []Shape) *BVH {
	if len(shapes) == 0 {
		return &BVH{}
	}
	owned := append([]Shape(nil), shapes...)
	return &BVH{Root: buildNode(owned)}
}

func buildNode(shapes []Shape) *BVHNode {
	box := shapes[0].BoundingBox()
	for _, s := range shapes[1:] {
		box = box.Union(s.BoundingBox())
	}
	if len(shapes) <= leafThreshold {
		return &BVHNode{BoundingBox: box, Shapes: shapes}
	}

	axis := box.LongestAxis()
	sort.Slice(shapes, func(i, j int) bool {
		return shapes[i].BoundingBox().Center().Component(axis) < shapes[j].BoundingBox().Center().Component(axis)
	})
	mid := len(shapes) / 2
	return &BVHNode{
		BoundingBox: box,
		Left:        buildNode(shapes[:mid]),
		Right:       buildNode(shapes[mid:]),
	}
}

// Hit returns the closest intersection along ray within [tMin, tMax]
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64) (*Intersection, bool) {
	if bvh.Root == nil {
		return nil, false
	}
	closest := bvh.Root.hit(ray, tMin, tMax)
	return closest, closest != nil
}

func (n *BVHNode) hit(ray core.Ray, tMin, tMax float64) *Intersection {
	if !n.BoundingBox.Hit(ray, tMin, tMax) {
		return nil
	}

	var closest *Intersection
	if n.Shapes != nil {
		for _, shape := range n.Shapes {
			if isect, ok := shape.Hit(ray, tMin, tMax); ok {
				closest, tMax = isect, isect.T
			}
		}
		return closest
	}

	for _, child := range []*BVHNode{n.Left, n.Right} {
		if child == nil {
			continue
		}
		if isect := child.hit(ray, tMin, tMax); isect != nil {
			closest, tMax = isect, isect.T
		}
	}
	return closest
}

// HitDifferential is Hit for a ray carrying pixel differentials
func (bvh *BVH) HitDifferential(rd core.RayDifferential, tMin, tMax float64) (*Intersection, bool) {
	isect, ok := bvh.Hit(rd.Ray, tMin, tMax)
	if ok && rd.HasDifferentials {
		ApplyRayDifferentials(&isect.Interaction, rd)
	}
	return isect, ok
}

// bvhStats summarizes the shape of a hierarchy
type bvhStats struct {
	totalNodes  int
	leafNodes   int
	maxDepth    int
	totalShapes int
}

func (bvh *BVH) stats() bvhStats {
	var st bvhStats
	if bvh.Root != nil {
		bvh.Root.collect(0, &st)
	}
	return st
}

func (n *BVHNode) collect(depth int, st *bvhStats) {
	st.totalNodes++
	st.maxDepth = max(st.maxDepth, depth)
	if n.Shapes != nil {
		st.leafNodes++
		st.totalShapes += len(n.Shapes)
		return
	}
	for _, child := range []*BVHNode{n.Left, n.Right} {
		if child != nil {
			child.collect(depth+1, st)
		}
	}
}
