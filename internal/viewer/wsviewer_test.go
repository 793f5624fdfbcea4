package viewer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/geom"
	"github.com/mkalland/simworld/internal/iface"
	"github.com/mkalland/simworld/internal/world"
)

func startViewer(t *testing.T) (*world.Environment, *Viewer) {
	t.Helper()
	e := world.New()
	t.Cleanup(e.Destroy)

	v := New("127.0.0.1:0")
	require.True(t, e.AttachViewer(v))
	return e, v
}

func dial(t *testing.T, v *Viewer) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial("ws://"+v.Addr()+"/ws", nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) message {
	t.Helper()
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg message
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func TestPluginRegistered(t *testing.T) {
	e := world.New()
	defer e.Destroy()
	assert.True(t, e.HasInterface(iface.KindViewer, TypeName))
}

func TestClientReceivesSnapshots(t *testing.T) {
	e, v := startViewer(t)

	b := body.New("crate")
	b.AddLink(body.NewLink("base"))
	b.SetPose(geom.Translation(1, 2, 3))
	require.True(t, e.Add(b, false))
	e.UpdatePublishedBodies()

	conn := dial(t, v)
	msg := readMessage(t, conn)
	require.Equal(t, "bodies", msg.Type)
	require.Len(t, msg.Bodies, 1)
	assert.Equal(t, "crate", msg.Bodies[0].Name)
	assert.Equal(t, b.ID(), msg.Bodies[0].ID)
	assert.Equal(t, [3]float64{1, 2, 3}, msg.Bodies[0].Pose.Position)

	// a later refresh reaches the connected client
	b.SetPose(geom.Translation(4, 5, 6))
	e.UpdatePublishedBodies()
	msg = readMessage(t, conn)
	require.Equal(t, "bodies", msg.Type)
	assert.Equal(t, [3]float64{4, 5, 6}, msg.Bodies[0].Pose.Position)
}

func TestDrawAndRemove(t *testing.T) {
	e, v := startViewer(t)
	conn := dial(t, v)

	h := e.DrawBox(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0.5, 0.5, 0.5}, mgl64.Vec4{1, 0, 0, 1})
	msg := readMessage(t, conn)
	require.Equal(t, "draw", msg.Type)
	assert.Equal(t, "box", msg.Shape)
	require.NotNil(t, msg.Pos)
	assert.Equal(t, [3]float64{1, 0, 0}, *msg.Pos)
	assert.Equal(t, [4]float64{1, 0, 0, 1}, msg.Color)
	id := msg.ID

	h.Release()
	msg = readMessage(t, conn)
	assert.Equal(t, "remove", msg.Type)
	assert.Equal(t, id, msg.ID)
}

func TestLateClientGetsLivePrimitives(t *testing.T) {
	e, v := startViewer(t)

	e.DrawPoints([]mgl64.Vec3{{0, 0, 1}}, 2, mgl64.Vec4{0, 1, 0, 1})
	b := body.New("crate")
	b.AddLink(body.NewLink("base"))
	require.True(t, e.Add(b, false))
	e.UpdatePublishedBodies()

	conn := dial(t, v)
	var gotBodies, gotDraw bool
	for i := 0; i < 2; i++ {
		switch msg := readMessage(t, conn); msg.Type {
		case "bodies":
			gotBodies = true
		case "draw":
			gotDraw = true
			assert.Equal(t, "points", msg.Shape)
		}
	}
	assert.True(t, gotBodies)
	assert.True(t, gotDraw)
}

func TestQuitDisconnectsClients(t *testing.T) {
	e, v := startViewer(t)
	conn := dial(t, v)

	require.True(t, e.AttachViewer(nil)) // quits the old viewer
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
	_ = v
}

func TestDrawShapes(t *testing.T) {
	e, v := startViewer(t)
	conn := dial(t, v)

	pts := []mgl64.Vec3{{0, 0, 0}, {1, 1, 1}}
	color := mgl64.Vec4{0, 0, 1, 1}
	e.DrawLineStrip(pts, 1, color)
	e.DrawLineList(pts, 1, color)
	e.DrawArrow(pts[0], pts[1], 0.1, color)
	e.DrawPlane(geom.IdentityPose(), mgl64.Vec3{1, 1, 0}, color)
	e.DrawTriMesh(geom.TriMesh{
		Vertices: []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:  []int{0, 1, 2},
	}, color)

	want := map[string]bool{"linestrip": false, "linelist": false, "arrow": false, "plane": false, "trimesh": false}
	for i := 0; i < len(want); i++ {
		msg := readMessage(t, conn)
		require.Equal(t, "draw", msg.Type)
		want[msg.Shape] = true
	}
	for shape, seen := range want {
		assert.True(t, seen, "missing %s", shape)
	}
	_ = v
}
