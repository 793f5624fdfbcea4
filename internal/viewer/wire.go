package viewer

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/geom"
	"github.com/mkalland/simworld/internal/iface"
)

// message is one JSON frame sent to clients. Type is "bodies", "draw" or
// "remove".
type message struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`

	Bodies []bodyState `json:"bodies,omitempty"`

	// draw payload
	Shape   string       `json:"shape,omitempty"`
	Points  [][3]float64 `json:"points,omitempty"`
	From    *[3]float64  `json:"from,omitempty"`
	To      *[3]float64  `json:"to,omitempty"`
	Pos     *[3]float64  `json:"pos,omitempty"`
	Extents *[3]float64  `json:"extents,omitempty"`
	Pose    *wirePose    `json:"pose,omitempty"`
	Indices []int        `json:"indices,omitempty"`
	Width   float64      `json:"width,omitempty"`
	Color   [4]float64   `json:"color,omitempty"`
}

type bodyState struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	Pose        wirePose   `json:"pose"`
	JointValues []float64  `json:"jointvalues,omitempty"`
	Enabled     bool       `json:"enabled"`
	UpdateStamp int        `json:"stamp"`
}

type wirePose struct {
	Position [3]float64 `json:"position"`
	Rotation [4]float64 `json:"rotation"` // w, x, y, z
}

func toWirePose(p geom.Pose) wirePose {
	return wirePose{
		Position: p.Trans,
		Rotation: [4]float64{p.Rot.W, p.Rot.V[0], p.Rot.V[1], p.Rot.V[2]},
	}
}

func bodiesMessage(states []body.PublishedState) *message {
	msg := &message{Type: "bodies", Bodies: make([]bodyState, len(states))}
	for i, s := range states {
		msg.Bodies[i] = bodyState{
			ID:          s.ID,
			Name:        s.Name,
			Pose:        toWirePose(s.Pose),
			JointValues: s.JointValues,
			Enabled:     s.Enabled,
			UpdateStamp: s.UpdateStamp,
		}
	}
	return msg
}

func toPoints(points []mgl64.Vec3) [][3]float64 {
	out := make([][3]float64, len(points))
	for i, p := range points {
		out[i] = p
	}
	return out
}

func drawMessage(shape string) *message {
	return &message{Type: "draw", ID: uuid.NewString(), Shape: shape}
}

func (v *Viewer) DrawPoints(points []mgl64.Vec3, size float64, color mgl64.Vec4) iface.Graph {
	msg := drawMessage("points")
	msg.Points = toPoints(points)
	msg.Width = size
	msg.Color = color
	return v.addPrimitive(msg)
}

func (v *Viewer) DrawLineStrip(points []mgl64.Vec3, width float64, color mgl64.Vec4) iface.Graph {
	msg := drawMessage("linestrip")
	msg.Points = toPoints(points)
	msg.Width = width
	msg.Color = color
	return v.addPrimitive(msg)
}

func (v *Viewer) DrawLineList(points []mgl64.Vec3, width float64, color mgl64.Vec4) iface.Graph {
	msg := drawMessage("linelist")
	msg.Points = toPoints(points)
	msg.Width = width
	msg.Color = color
	return v.addPrimitive(msg)
}

func (v *Viewer) DrawArrow(from, to mgl64.Vec3, width float64, color mgl64.Vec4) iface.Graph {
	msg := drawMessage("arrow")
	f, t := [3]float64(from), [3]float64(to)
	msg.From, msg.To = &f, &t
	msg.Width = width
	msg.Color = color
	return v.addPrimitive(msg)
}

func (v *Viewer) DrawBox(pos, extents mgl64.Vec3, color mgl64.Vec4) iface.Graph {
	msg := drawMessage("box")
	p, e := [3]float64(pos), [3]float64(extents)
	msg.Pos, msg.Extents = &p, &e
	msg.Color = color
	return v.addPrimitive(msg)
}

func (v *Viewer) DrawPlane(pose geom.Pose, extents mgl64.Vec3, color mgl64.Vec4) iface.Graph {
	msg := drawMessage("plane")
	wp := toWirePose(pose)
	e := [3]float64(extents)
	msg.Pose, msg.Extents = &wp, &e
	msg.Color = color
	return v.addPrimitive(msg)
}

func (v *Viewer) DrawTriMesh(mesh geom.TriMesh, color mgl64.Vec4) iface.Graph {
	msg := drawMessage("trimesh")
	msg.Points = toPoints(mesh.Vertices)
	msg.Indices = append([]int(nil), mesh.Indices...)
	msg.Color = color
	return v.addPrimitive(msg)
}
