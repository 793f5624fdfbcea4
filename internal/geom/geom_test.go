package geom

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestPoseComposeInverse(t *testing.T) {
	p := Pose{
		Rot:   mgl64.QuatRotate(math.Pi/3, mgl64.Vec3{0, 0, 1}),
		Trans: mgl64.Vec3{1, 2, 3},
	}
	id := p.Compose(p.Inverse())
	if !id.ApproxEqual(IdentityPose(), 1e-9) {
		t.Fatalf("p * p^-1 != identity: %+v", id)
	}

	v := mgl64.Vec3{0.5, -1, 2}
	back := p.Inverse().Apply(p.Apply(v))
	if !back.ApproxEqualThreshold(v, 1e-9) {
		t.Fatalf("roundtrip point mismatch: %v != %v", back, v)
	}
}

func TestPoseApproxEqualNearZero(t *testing.T) {
	// a float residual of one ulp near zero is within any sane tolerance
	a := Translation(2.2e-16, 4.4e-16, 0)
	if !a.ApproxEqual(IdentityPose(), 1e-9) {
		t.Fatalf("tiny residual rejected: %+v", a)
	}
	b := Translation(1e-6, 0, 0)
	if b.ApproxEqual(IdentityPose(), 1e-9) {
		t.Fatal("1e-6 offset must not pass a 1e-9 tolerance")
	}
}

func TestPoseApplyTranslation(t *testing.T) {
	p := Translation(1, 0, 0)
	got := p.Apply(mgl64.Vec3{1, 1, 1})
	want := mgl64.Vec3{2, 1, 1}
	if !got.ApproxEqualThreshold(want, 1e-12) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestAABBOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b AABB
		want bool
	}{
		{"identical", AABB{Extents: mgl64.Vec3{1, 1, 1}}, AABB{Extents: mgl64.Vec3{1, 1, 1}}, true},
		{"touching", AABB{Extents: mgl64.Vec3{1, 1, 1}}, AABB{Pos: mgl64.Vec3{2, 0, 0}, Extents: mgl64.Vec3{1, 1, 1}}, true},
		{"separated x", AABB{Extents: mgl64.Vec3{1, 1, 1}}, AABB{Pos: mgl64.Vec3{2.5, 0, 0}, Extents: mgl64.Vec3{1, 1, 1}}, false},
		{"separated z", AABB{Extents: mgl64.Vec3{1, 1, 1}}, AABB{Pos: mgl64.Vec3{0, 0, 3}, Extents: mgl64.Vec3{1, 1, 1}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Overlaps(tt.b); got != tt.want {
				t.Errorf("Overlaps = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	a := AABB{Pos: mgl64.Vec3{-1, 0, 0}, Extents: mgl64.Vec3{1, 1, 1}}
	b := AABB{Pos: mgl64.Vec3{3, 0, 0}, Extents: mgl64.Vec3{1, 1, 1}}
	m := Merge(a, b)
	if !m.Contains(mgl64.Vec3{-2, 0, 0}) || !m.Contains(mgl64.Vec3{4, 0, 0}) {
		t.Fatalf("merged box does not contain both inputs: %+v", m)
	}
	if m.Contains(mgl64.Vec3{5, 0, 0}) {
		t.Fatalf("merged box too large: %+v", m)
	}
}

func TestRayIntersectSphere(t *testing.T) {
	r := Ray{Origin: mgl64.Vec3{-5, 0, 0}, Dir: mgl64.Vec3{10, 0, 0}}
	hit, ok := r.IntersectSphere(mgl64.Vec3{0, 0, 0}, 1)
	if !ok {
		t.Fatal("expected hit")
	}
	if !hit.ApproxEqualThreshold(mgl64.Vec3{-1, 0, 0}, 1e-9) {
		t.Fatalf("hit point %v, want (-1,0,0)", hit)
	}

	// ray too short to reach
	short := Ray{Origin: mgl64.Vec3{-5, 0, 0}, Dir: mgl64.Vec3{1, 0, 0}}
	if _, ok := short.IntersectSphere(mgl64.Vec3{0, 0, 0}, 1); ok {
		t.Fatal("short ray should miss")
	}
}

func TestRayIntersectAABB(t *testing.T) {
	box := AABB{Pos: mgl64.Vec3{0, 0, 0}, Extents: mgl64.Vec3{1, 1, 1}}
	r := Ray{Origin: mgl64.Vec3{0, 0, 5}, Dir: mgl64.Vec3{0, 0, -10}}
	hit, ok := r.IntersectAABB(box)
	if !ok {
		t.Fatal("expected hit")
	}
	if math.Abs(hit[2]-1) > 1e-9 {
		t.Fatalf("entry z = %f, want 1", hit[2])
	}

	miss := Ray{Origin: mgl64.Vec3{3, 3, 5}, Dir: mgl64.Vec3{0, 0, -10}}
	if _, ok := miss.IntersectAABB(box); ok {
		t.Fatal("expected miss")
	}
}

func TestTriMeshAppend(t *testing.T) {
	var m TriMesh
	box := BoxMesh(mgl64.Vec3{1, 1, 1})
	m.Append(box, IdentityPose())
	m.Append(box, Translation(5, 0, 0))
	if m.NumTriangles() != 2*box.NumTriangles() {
		t.Fatalf("triangle count %d, want %d", m.NumTriangles(), 2*box.NumTriangles())
	}
	// second copy must be offset
	last := m.Vertices[len(m.Vertices)-1]
	if last[0] < 3 {
		t.Fatalf("appended mesh not transformed: %v", last)
	}
}

func TestSphereMeshClosed(t *testing.T) {
	m := SphereMesh(2, 8)
	for _, v := range m.Vertices {
		if math.Abs(v.Len()-2) > 1e-9 {
			t.Fatalf("vertex %v not on sphere", v)
		}
	}
	if m.NumTriangles() == 0 {
		t.Fatal("empty sphere mesh")
	}
}
