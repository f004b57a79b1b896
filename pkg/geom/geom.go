// Package geom provides pure 2D geometric predicates used throughout the
// renderer: segment intersection, point-side tests, box overlap, and line
// intersection. These are the primitive vocabulary every other package
// builds on; nothing else duplicates them.
package geom

// Point is a 2D point in map space.
type Point struct {
	X, Y float64
}

// Segment is a line segment between two points.
type Segment struct {
	A, B Point
}

// Cross returns the 2D cross product of vectors (ax,ay) and (bx,by).
func Cross(ax, ay, bx, by float64) float64 {
	return ax*by - ay*bx
}

// PointSide returns the sign of the cross product of edge (x0,y0)-(x1,y1)
// with the vector from (x0,y0) to (px,py): -1, 0, or +1.
func PointSide(px, py, x0, y0, x1, y1 float64) int {
	c := Cross(x1-x0, y1-y0, px-x0, py-y0)
	switch {
	case c < 0:
		return -1
	case c > 0:
		return 1
	default:
		return 0
	}
}

// Overlap reports whether the closed ranges [a0,a1] and [b0,b1] intersect,
// regardless of whether each pair is given in increasing order.
func Overlap(a0, a1, b0, b1 float64) bool {
	if a0 > a1 {
		a0, a1 = a1, a0
	}
	if b0 > b1 {
		b0, b1 = b1, b0
	}
	return a0 <= b1 && b0 <= a1
}

// BoxOverlap reports whether the axis-aligned bounding boxes of segments s1
// and s2 intersect.
func BoxOverlap(s1, s2 Segment) bool {
	return Overlap(s1.A.X, s1.B.X, s2.A.X, s2.B.X) &&
		Overlap(s1.A.Y, s1.B.Y, s2.A.Y, s2.B.Y)
}

// SegmentsIntersect reports whether s1 and s2 cross. It is true iff their
// bounding boxes overlap AND neither segment has both endpoints of the
// other strictly on the same side.
func SegmentsIntersect(s1, s2 Segment) bool {
	if !BoxOverlap(s1, s2) {
		return false
	}

	d1 := PointSide(s2.A.X, s2.A.Y, s1.A.X, s1.A.Y, s1.B.X, s1.B.Y)
	d2 := PointSide(s2.B.X, s2.B.Y, s1.A.X, s1.A.Y, s1.B.X, s1.B.Y)
	if d1 != 0 && d1 == d2 {
		return false
	}

	d3 := PointSide(s1.A.X, s1.A.Y, s2.A.X, s2.A.Y, s2.B.X, s2.B.Y)
	d4 := PointSide(s1.B.X, s1.B.Y, s2.A.X, s2.A.Y, s2.B.X, s2.B.Y)
	if d3 != 0 && d3 == d4 {
		return false
	}

	return true
}

// IntersectPoint returns the 2D intersection of the two infinite lines
// through l1 and l2. The result is undefined (and ok is false) if the lines
// are parallel; callers must guarantee they are not when they need ok==true.
func IntersectPoint(l1, l2 Segment) (Point, bool) {
	x1, y1 := l1.A.X, l1.A.Y
	x2, y2 := l1.B.X, l1.B.Y
	x3, y3 := l2.A.X, l2.A.Y
	x4, y4 := l2.B.X, l2.B.Y

	denom := Cross(x2-x1, y2-y1, x4-x3, y4-y3)
	if denom == 0 {
		return Point{}, false
	}

	t := Cross(x3-x1, y3-y1, x4-x3, y4-y3) / denom
	return Point{
		X: x1 + t*(x2-x1),
		Y: y1 + t*(y2-y1),
	}, true
}
