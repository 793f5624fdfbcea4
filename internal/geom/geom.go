// Package geom provides the spatial primitives shared by bodies, collision
// checkers and viewers: rigid transforms, axis-aligned boxes, rays and
// triangle meshes.
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a rigid transform: rotation followed by translation.
type Pose struct {
	Rot   mgl64.Quat
	Trans mgl64.Vec3
}

// IdentityPose returns the identity transform.
func IdentityPose() Pose {
	return Pose{Rot: mgl64.QuatIdent()}
}

// Apply transforms a point from local into parent coordinates.
func (p Pose) Apply(v mgl64.Vec3) mgl64.Vec3 {
	return p.Rot.Rotate(v).Add(p.Trans)
}

// Compose returns the transform equivalent to applying o first, then p.
func (p Pose) Compose(o Pose) Pose {
	return Pose{
		Rot:   p.Rot.Mul(o.Rot),
		Trans: p.Rot.Rotate(o.Trans).Add(p.Trans),
	}
}

// Inverse returns the transform q such that p.Compose(q) is the identity.
func (p Pose) Inverse() Pose {
	inv := p.Rot.Conjugate()
	return Pose{
		Rot:   inv,
		Trans: inv.Rotate(p.Trans).Mul(-1),
	}
}

// Translation returns a pure translation transform.
func Translation(x, y, z float64) Pose {
	return Pose{Rot: mgl64.QuatIdent(), Trans: mgl64.Vec3{x, y, z}}
}

// ApproxEqual reports whether two poses match within eps per component.
func (p Pose) ApproxEqual(o Pose, eps float64) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(p.Trans[i]-o.Trans[i]) > eps {
			return false
		}
	}
	// q and -q represent the same rotation
	d := p.Rot.Dot(o.Rot)
	return math.Abs(math.Abs(d)-1) < eps
}

// AABB is an axis-aligned box given by its center and half-extents.
type AABB struct {
	Pos     mgl64.Vec3
	Extents mgl64.Vec3
}

// Overlaps reports whether two boxes intersect.
func (a AABB) Overlaps(b AABB) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(a.Pos[i]-b.Pos[i]) > a.Extents[i]+b.Extents[i] {
			return false
		}
	}
	return true
}

// Contains reports whether the point lies inside the box.
func (a AABB) Contains(pt mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if math.Abs(pt[i]-a.Pos[i]) > a.Extents[i] {
			return false
		}
	}
	return true
}

// Merge returns the smallest box enclosing both a and b.
func Merge(a, b AABB) AABB {
	var lo, hi mgl64.Vec3
	for i := 0; i < 3; i++ {
		lo[i] = math.Min(a.Pos[i]-a.Extents[i], b.Pos[i]-b.Extents[i])
		hi[i] = math.Max(a.Pos[i]+a.Extents[i], b.Pos[i]+b.Extents[i])
	}
	return AABB{
		Pos:     lo.Add(hi).Mul(0.5),
		Extents: hi.Sub(lo).Mul(0.5),
	}
}

// Transformed returns the tightest axis-aligned box containing the rotated
// and translated box.
func (a AABB) Transformed(p Pose) AABB {
	m := p.Rot.Mat4()
	var ext mgl64.Vec3
	for i := 0; i < 3; i++ {
		ext[i] = math.Abs(m.At(i, 0))*a.Extents[0] +
			math.Abs(m.At(i, 1))*a.Extents[1] +
			math.Abs(m.At(i, 2))*a.Extents[2]
	}
	return AABB{Pos: p.Apply(a.Pos), Extents: ext}
}

// Ray is a finite segment from Origin along Dir; the segment length is the
// length of Dir.
type Ray struct {
	Origin mgl64.Vec3
	Dir    mgl64.Vec3
}

// IntersectSphere reports whether the ray hits a sphere, and if so the
// nearest hit point along the ray.
func (r Ray) IntersectSphere(center mgl64.Vec3, radius float64) (mgl64.Vec3, bool) {
	length := r.Dir.Len()
	if length == 0 {
		return mgl64.Vec3{}, false
	}
	d := r.Dir.Mul(1 / length)
	oc := r.Origin.Sub(center)
	b := oc.Dot(d)
	c := oc.Dot(oc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		return mgl64.Vec3{}, false
	}
	t := -b - math.Sqrt(disc)
	if t < 0 {
		t = -b + math.Sqrt(disc)
	}
	if t < 0 || t > length {
		return mgl64.Vec3{}, false
	}
	return r.Origin.Add(d.Mul(t)), true
}

// IntersectAABB reports whether the ray passes through the box, and if so
// the nearest entry point.
func (r Ray) IntersectAABB(box AABB) (mgl64.Vec3, bool) {
	length := r.Dir.Len()
	if length == 0 {
		return mgl64.Vec3{}, false
	}
	d := r.Dir.Mul(1 / length)
	tmin, tmax := 0.0, length
	for i := 0; i < 3; i++ {
		lo := box.Pos[i] - box.Extents[i]
		hi := box.Pos[i] + box.Extents[i]
		if math.Abs(d[i]) < 1e-12 {
			if r.Origin[i] < lo || r.Origin[i] > hi {
				return mgl64.Vec3{}, false
			}
			continue
		}
		t1 := (lo - r.Origin[i]) / d[i]
		t2 := (hi - r.Origin[i]) / d[i]
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return mgl64.Vec3{}, false
		}
	}
	return r.Origin.Add(d.Mul(tmin)), true
}
