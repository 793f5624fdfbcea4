package world

import (
	"os"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/iface"
)

// Attr is one key/value attribute pair passed through to the scene
// parser.
type Attr struct {
	Name  string
	Value string
}

// TagReader consumes the decoded value of one custom tag encountered
// while building an interface from a scene description.
type TagReader interface {
	ReadNode(value any) error
}

// TagReaderFactory produces a TagReader bound to the interface instance
// under construction.
type TagReaderFactory func(target iface.Interface, atts []Attr) (TagReader, error)

// TagReaderLookup resolves a custom tag to its registered factory.
type TagReaderLookup func(kind iface.Kind, tag string) (TagReaderFactory, bool)

// InterfaceFactory constructs interface instances for the parser; the
// environment passes its plugin registry through this seam.
type InterfaceFactory func(kind iface.Kind, typeName string) (iface.Interface, error)

// SceneDoc is the parsed content of a scene description, decoupled from
// any environment.
type SceneDoc struct {
	Bodies      []*body.Body
	Robots      []*body.Robot
	CheckerType string
	EngineType  string
	Gravity     *mgl64.Vec3
}

// SceneParser is the external parser/serializer collaborator. The
// environment guarantees parse failures leave its registry unchanged; the
// parser guarantees a returned SceneDoc is fully formed.
type SceneParser interface {
	ParseFile(path string, tags TagReaderLookup) (*SceneDoc, error)
	Parse(data []byte, tags TagReaderLookup) (*SceneDoc, error)
	ParseBody(existing *body.Body, data []byte, atts []Attr) (*body.Body, error)
	ParseRobot(existing *body.Robot, data []byte, atts []Attr) (*body.Robot, error)
	ParseInterface(factory InterfaceFactory, existing iface.Interface, data []byte, atts []Attr, tags TagReaderLookup) (iface.Interface, error)
	Serialize(doc *SceneDoc) ([]byte, error)
	SerializeFile(path string, doc *SceneDoc) error
}

// SetSceneParser installs the parser used by Load, Save and the Read
// helpers.
func (e *Environment) SetSceneParser(p SceneParser) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.parser = p
}

type tagKey struct {
	kind iface.Kind
	tag  string
}

// TagHandle keeps a custom tag reader registered; Release unregisters it
// and is idempotent.
type TagHandle struct {
	env  *Environment
	key  tagKey
	id   uuid.UUID
	once sync.Once
}

// Release unregisters the tag reader.
func (h *TagHandle) Release() {
	if h == nil {
		return
	}
	h.once.Do(func() {
		h.env.mu.Lock()
		defer h.env.mu.Unlock()
		if cur, ok := h.env.tagReaders[h.key]; ok && cur.id == h.id {
			delete(h.env.tagReaders, h.key)
		}
	})
}

type tagEntry struct {
	id      uuid.UUID
	factory TagReaderFactory
}

// RegisterTagReader registers a factory invoked when the scene parser
// encounters tag while building an interface of the given kind. A later
// registration for the same kind and tag shadows the earlier one until
// released.
func (e *Environment) RegisterTagReader(kind iface.Kind, tag string, factory TagReaderFactory) *TagHandle {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := tagKey{kind: kind, tag: tag}
	entry := tagEntry{id: uuid.New(), factory: factory}
	e.tagReaders[key] = entry
	return &TagHandle{env: e, key: key, id: entry.id}
}

func (e *Environment) tagLookup(kind iface.Kind, tag string) (TagReaderFactory, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	entry, ok := e.tagReaders[tagKey{kind: kind, tag: tag}]
	if !ok {
		return nil, false
	}
	return entry.factory, true
}

// Load reads a scene file and merges its contents into the environment.
// The call is internally locked and safe from any thread; on a parse
// error the registry is left exactly as it was, and Load returns false.
func (e *Environment) Load(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.parser == nil {
		logger.Error("Load: no scene parser installed")
		return false
	}
	doc, err := e.parser.ParseFile(path, e.tagLookup)
	if err != nil {
		logger.Warn("scene load failed", "path", path, "err", err)
		return false
	}
	e.applySceneLocked(doc)
	return true
}

// LoadData parses an in-memory scene description, with the same
// guarantees as Load.
func (e *Environment) LoadData(data []byte) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.parser == nil {
		logger.Error("LoadData: no scene parser installed")
		return false
	}
	doc, err := e.parser.Parse(data, e.tagLookup)
	if err != nil {
		logger.Warn("scene data load failed", "err", err)
		return false
	}
	e.applySceneLocked(doc)
	return true
}

// applySceneLocked merges a fully parsed scene. Bodies are added
// anonymously so name clashes rename instead of failing halfway through.
func (e *Environment) applySceneLocked(doc *SceneDoc) {
	for _, b := range doc.Bodies {
		e.addLocked(b, true)
	}
	for _, r := range doc.Robots {
		if e.addLocked(&r.Body, true) {
			e.robots = append(e.robots, r)
		}
	}
	if doc.CheckerType != "" {
		if c, err := e.registry.Create(iface.KindCollisionChecker, doc.CheckerType); err == nil {
			e.installCheckerRaw(c.(iface.CollisionChecker))
		} else {
			logger.Warn("scene names unknown collision checker", "type", doc.CheckerType)
		}
	}
	if doc.EngineType != "" {
		if p, err := e.registry.Create(iface.KindPhysicsEngine, doc.EngineType); err == nil {
			e.installEngineRaw(p.(iface.PhysicsEngine))
		} else {
			logger.Warn("scene names unknown physics engine", "type", doc.EngineType)
		}
	}
	if doc.Gravity != nil && e.engine != nil {
		e.engine.SetGravity(*doc.Gravity)
	}
	e.updatePublishedLocked()
}

// Save serializes the current scene to a file. It reports whether both
// serialization and the write succeeded.
func (e *Environment) Save(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.parser == nil {
		logger.Error("Save: no scene parser installed")
		return false
	}
	doc := &SceneDoc{}
	for _, b := range e.bodies {
		if r := e.robotForBodyLocked(b); r != nil {
			doc.Robots = append(doc.Robots, r)
		} else {
			doc.Bodies = append(doc.Bodies, b)
		}
	}
	if e.checker != nil {
		doc.CheckerType = e.checker.TypeName()
	}
	if e.engine != nil && e.engine.TypeName() != NullEngineType {
		doc.EngineType = e.engine.TypeName()
		g := e.engine.Gravity()
		doc.Gravity = &g
	}
	if err := e.parser.SerializeFile(path, doc); err != nil {
		logger.Warn("scene save failed", "path", path, "err", err)
		return false
	}
	return true
}

// ReadBodyData builds (or fills) a body from an in-memory description
// without adding it to the environment. A nil result means the
// description could not be parsed.
func (e *Environment) ReadBodyData(existing *body.Body, data []byte, atts []Attr) *body.Body {
	e.mu.Lock()
	p := e.parser
	e.mu.Unlock()
	if p == nil {
		return nil
	}
	b, err := p.ParseBody(existing, data, atts)
	if err != nil {
		logger.Debug("body description rejected", "err", err)
		return nil
	}
	return b
}

// ReadBodyFile is ReadBodyData reading the description from a file.
func (e *Environment) ReadBodyFile(existing *body.Body, path string, atts []Attr) *body.Body {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("body file unreadable", "path", path, "err", err)
		return nil
	}
	return e.ReadBodyData(existing, data, atts)
}

// ReadRobotData builds (or fills) a robot from an in-memory description
// without adding it to the environment.
func (e *Environment) ReadRobotData(existing *body.Robot, data []byte, atts []Attr) *body.Robot {
	e.mu.Lock()
	p := e.parser
	e.mu.Unlock()
	if p == nil {
		return nil
	}
	r, err := p.ParseRobot(existing, data, atts)
	if err != nil {
		logger.Debug("robot description rejected", "err", err)
		return nil
	}
	return r
}

// ReadRobotFile is ReadRobotData reading the description from a file.
func (e *Environment) ReadRobotFile(existing *body.Robot, path string, atts []Attr) *body.Robot {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("robot file unreadable", "path", path, "err", err)
		return nil
	}
	return e.ReadRobotData(existing, data, atts)
}

// ReadInterfaceData builds (or fills) an interface instance from an
// in-memory description, consulting registered tag readers for custom
// tags. The instance is not owned by the environment.
func (e *Environment) ReadInterfaceData(existing iface.Interface, data []byte, atts []Attr) iface.Interface {
	e.mu.Lock()
	p := e.parser
	e.mu.Unlock()
	if p == nil {
		return nil
	}
	inst, err := p.ParseInterface(e.registry.Create, existing, data, atts, e.tagLookup)
	if err != nil {
		logger.Debug("interface description rejected", "err", err)
		return nil
	}
	return inst
}

// ReadInterfaceFile is ReadInterfaceData reading the description from a
// file.
func (e *Environment) ReadInterfaceFile(existing iface.Interface, path string, atts []Attr) iface.Interface {
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Debug("interface file unreadable", "path", path, "err", err)
		return nil
	}
	return e.ReadInterfaceData(existing, data, atts)
}
