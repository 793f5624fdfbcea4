package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/geom"
	"github.com/mkalland/simworld/internal/world"
)

// On-disk schema. Poses are a position plus a w-first quaternion; an
// omitted quaternion means identity.

type sceneYAML struct {
	Name    string     `yaml:"name,omitempty"`
	Checker string     `yaml:"checker,omitempty"`
	Engine  string     `yaml:"engine,omitempty"`
	Gravity *[3]float64 `yaml:"gravity,omitempty"`
	Bodies  []bodyYAML `yaml:"bodies,omitempty"`
	Robots  []bodyYAML `yaml:"robots,omitempty"`
}

type bodyYAML struct {
	Name        string      `yaml:"name"`
	Static      bool        `yaml:"static,omitempty"`
	Disabled    bool        `yaml:"disabled,omitempty"`
	Pose        *poseYAML   `yaml:"pose,omitempty"`
	Links       []linkYAML  `yaml:"links"`
	Joints      []jointYAML `yaml:"joints,omitempty"`
	JointValues []float64   `yaml:"jointvalues,omitempty"`
}

type linkYAML struct {
	Name       string         `yaml:"name"`
	Pose       *poseYAML      `yaml:"pose,omitempty"`
	Mass       float64        `yaml:"mass,omitempty"`
	Geometries []geometryYAML `yaml:"geometries,omitempty"`
}

type geometryYAML struct {
	Type    string      `yaml:"type"`
	Pose    *poseYAML   `yaml:"pose,omitempty"`
	Extents *[3]float64 `yaml:"extents,omitempty"`
	Radius  float64     `yaml:"radius,omitempty"`
	Height  float64     `yaml:"height,omitempty"`
	Color   *[4]float64 `yaml:"color,omitempty"`

	Vertices []float64 `yaml:"vertices,omitempty"`
	Indices  []int     `yaml:"indices,omitempty"`
}

type jointYAML struct {
	Name   string      `yaml:"name"`
	Type   string      `yaml:"type,omitempty"`
	Parent int         `yaml:"parent"`
	Child  int         `yaml:"child"`
	Origin *poseYAML   `yaml:"origin,omitempty"`
	Axis   *[3]float64 `yaml:"axis,omitempty"`
	Limits *[2]float64 `yaml:"limits,omitempty"`
}

type poseYAML struct {
	Position [3]float64  `yaml:"position"`
	Rotation *[4]float64 `yaml:"rotation,omitempty"` // w, x, y, z
}

type interfaceYAML struct {
	Kind        string         `yaml:"kind"`
	Type        string         `yaml:"type"`
	Description string         `yaml:"description,omitempty"`
	Tags        map[string]any `yaml:"tags,omitempty"`
}

func (p *poseYAML) pose() geom.Pose {
	if p == nil {
		return geom.IdentityPose()
	}
	out := geom.Pose{
		Rot:   mgl64.QuatIdent(),
		Trans: mgl64.Vec3(p.Position),
	}
	if p.Rotation != nil {
		r := *p.Rotation
		out.Rot = mgl64.Quat{W: r[0], V: mgl64.Vec3{r[1], r[2], r[3]}}.Normalize()
	}
	return out
}

func fromPose(p geom.Pose) *poseYAML {
	out := &poseYAML{Position: p.Trans}
	if !p.Rot.ApproxEqual(mgl64.QuatIdent()) {
		out.Rotation = &[4]float64{p.Rot.W, p.Rot.V[0], p.Rot.V[1], p.Rot.V[2]}
	}
	return out
}

func parseGeomType(s string) (body.GeometryType, error) {
	for _, t := range []body.GeometryType{body.GeomBox, body.GeomSphere, body.GeomCylinder, body.GeomTriMesh} {
		if t.String() == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("scene: unknown geometry type %q", s)
}

func buildGeometry(raw *geometryYAML) (body.Geometry, error) {
	t, err := parseGeomType(raw.Type)
	if err != nil {
		return body.Geometry{}, err
	}
	g := body.Geometry{
		Type:      t,
		LocalPose: raw.Pose.pose(),
		Radius:    raw.Radius,
		Height:    raw.Height,
	}
	if raw.Extents != nil {
		g.Extents = mgl64.Vec3(*raw.Extents)
	}
	if raw.Color != nil {
		g.Color = mgl64.Vec4(*raw.Color)
	}
	if t == body.GeomTriMesh {
		if len(raw.Vertices)%3 != 0 || len(raw.Indices)%3 != 0 {
			return body.Geometry{}, fmt.Errorf("scene: trimesh of %d vertex floats, %d indices", len(raw.Vertices), len(raw.Indices))
		}
		mesh := geom.TriMesh{Indices: raw.Indices}
		for i := 0; i < len(raw.Vertices); i += 3 {
			mesh.Vertices = append(mesh.Vertices, mgl64.Vec3{raw.Vertices[i], raw.Vertices[i+1], raw.Vertices[i+2]})
		}
		g.Mesh = mesh
	}
	return g, nil
}

func buildBody(existing *body.Body, raw *bodyYAML) (*body.Body, error) {
	if raw.Name == "" {
		return nil, fmt.Errorf("scene: body without a name")
	}
	if len(raw.Links) == 0 {
		return nil, fmt.Errorf("scene: body %q has no links", raw.Name)
	}
	b := existing
	if b == nil {
		b = body.New(raw.Name)
	} else {
		b.SetName(raw.Name)
	}
	b.SetStatic(raw.Static)
	b.SetEnabled(!raw.Disabled)

	for _, lr := range raw.Links {
		var geoms []body.Geometry
		for i := range lr.Geometries {
			g, err := buildGeometry(&lr.Geometries[i])
			if err != nil {
				return nil, fmt.Errorf("scene: body %q link %q: %w", raw.Name, lr.Name, err)
			}
			geoms = append(geoms, g)
		}
		l := body.NewLink(lr.Name, geoms...)
		l.SetLocalPose(lr.Pose.pose())
		if lr.Mass > 0 {
			l.SetMass(lr.Mass)
		}
		b.AddLink(l)
	}

	n := len(b.Links())
	for _, jr := range raw.Joints {
		if jr.Parent < 0 || jr.Parent >= n || jr.Child < 0 || jr.Child >= n {
			return nil, fmt.Errorf("scene: body %q joint %q links out of range", raw.Name, jr.Name)
		}
		jt := body.JointRevolute
		if jr.Type == "prismatic" {
			jt = body.JointPrismatic
		}
		axis := mgl64.Vec3{0, 0, 1}
		if jr.Axis != nil {
			axis = mgl64.Vec3(*jr.Axis)
		}
		j := body.NewJoint(jr.Name, jt, jr.Parent, jr.Child, jr.Origin.pose(), axis)
		if jr.Limits != nil {
			j.SetLimits(jr.Limits[0], jr.Limits[1])
		}
		b.AddJoint(j)
	}

	b.SetPose(raw.Pose.pose())
	if len(raw.JointValues) > 0 {
		if len(raw.JointValues) != b.DOF() {
			return nil, fmt.Errorf("scene: body %q has %d joint values for %d joints", raw.Name, len(raw.JointValues), b.DOF())
		}
		b.SetJointValues(raw.JointValues)
	}
	return b, nil
}

func buildDoc(raw *sceneYAML) (*world.SceneDoc, error) {
	doc := &world.SceneDoc{
		CheckerType: raw.Checker,
		EngineType:  raw.Engine,
	}
	if raw.Gravity != nil {
		g := mgl64.Vec3(*raw.Gravity)
		doc.Gravity = &g
	}
	for i := range raw.Bodies {
		b, err := buildBody(nil, &raw.Bodies[i])
		if err != nil {
			return nil, err
		}
		doc.Bodies = append(doc.Bodies, b)
	}
	for i := range raw.Robots {
		r := body.NewRobot(raw.Robots[i].Name)
		if _, err := buildBody(&r.Body, &raw.Robots[i]); err != nil {
			return nil, err
		}
		doc.Robots = append(doc.Robots, r)
	}
	return doc, nil
}

func flattenGeometry(g *body.Geometry) geometryYAML {
	out := geometryYAML{
		Type:   g.Type.String(),
		Pose:   fromPose(g.LocalPose),
		Radius: g.Radius,
		Height: g.Height,
	}
	if g.Extents != (mgl64.Vec3{}) {
		e := [3]float64(g.Extents)
		out.Extents = &e
	}
	if g.Color != (mgl64.Vec4{}) {
		c := [4]float64(g.Color)
		out.Color = &c
	}
	if len(g.Mesh.Vertices) > 0 {
		out.Indices = append([]int(nil), g.Mesh.Indices...)
		for _, v := range g.Mesh.Vertices {
			out.Vertices = append(out.Vertices, v[0], v[1], v[2])
		}
	}
	return out
}

func flattenBody(b *body.Body) bodyYAML {
	out := bodyYAML{
		Name:     b.Name(),
		Static:   b.IsStatic(),
		Disabled: !b.Enabled(),
		Pose:     fromPose(b.Pose()),
	}
	for _, l := range b.Links() {
		lr := linkYAML{Name: l.Name(), Pose: fromPose(l.LocalPose()), Mass: l.Mass()}
		for i := range l.Geometries() {
			lr.Geometries = append(lr.Geometries, flattenGeometry(&l.Geometries()[i]))
		}
		out.Links = append(out.Links, lr)
	}
	for _, j := range b.Joints() {
		lo, hi := j.Limits()
		jr := jointYAML{
			Name:   j.Name(),
			Type:   j.Type().String(),
			Parent: j.ParentLink(),
			Child:  j.ChildLink(),
			Origin: fromPose(j.Origin()),
		}
		axis := [3]float64(j.Axis())
		jr.Axis = &axis
		if !infLimits(lo, hi) {
			jr.Limits = &[2]float64{lo, hi}
		}
		out.Joints = append(out.Joints, jr)
	}
	if b.DOF() > 0 {
		out.JointValues = b.JointValues()
	}
	return out
}

func infLimits(lo, hi float64) bool {
	return math.IsInf(lo, -1) && math.IsInf(hi, 1)
}

func flattenDoc(doc *world.SceneDoc) *sceneYAML {
	out := &sceneYAML{
		Checker: doc.CheckerType,
		Engine:  doc.EngineType,
	}
	if doc.Gravity != nil {
		g := [3]float64(*doc.Gravity)
		out.Gravity = &g
	}
	for _, b := range doc.Bodies {
		out.Bodies = append(out.Bodies, flattenBody(b))
	}
	for _, r := range doc.Robots {
		out.Robots = append(out.Robots, flattenBody(&r.Body))
	}
	return out
}
