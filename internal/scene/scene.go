// Package scene implements the YAML scene description format and its
// parser. The parser satisfies world.SceneParser; parsed files are cached
// by path and modification time so repeated loads of an unchanged scene
// skip the YAML decode.
package scene

import (
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"

	"github.com/mkalland/simworld/internal/body"
	"github.com/mkalland/simworld/internal/iface"
	"github.com/mkalland/simworld/internal/world"
)

const cacheSize = 32

// Parser decodes and encodes YAML scene descriptions.
type Parser struct {
	cache *lru.Cache[string, cachedFile]
}

type cachedFile struct {
	modTime int64
	size    int64
	doc     sceneYAML
}

// NewParser returns a parser with an empty file cache.
func NewParser() *Parser {
	c, _ := lru.New[string, cachedFile](cacheSize)
	return &Parser{cache: c}
}

// ParseFile decodes a scene file, serving unchanged files from the cache.
// Fresh body instances are built per call; cached entries hold only the
// decoded document.
func (p *Parser) ParseFile(path string, tags world.TagReaderLookup) (*world.SceneDoc, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("scene: stat %s: %w", path, err)
	}
	if entry, ok := p.cache.Get(path); ok &&
		entry.modTime == info.ModTime().UnixNano() && entry.size == info.Size() {
		return buildDoc(&entry.doc)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}
	var raw sceneYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("scene: parse %s: %w", path, err)
	}
	doc, err := buildDoc(&raw)
	if err != nil {
		return nil, err
	}
	p.cache.Add(path, cachedFile{
		modTime: info.ModTime().UnixNano(),
		size:    info.Size(),
		doc:     raw,
	})
	return doc, nil
}

// Parse decodes an in-memory scene description.
func (p *Parser) Parse(data []byte, tags world.TagReaderLookup) (*world.SceneDoc, error) {
	var raw sceneYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("scene: parse: %w", err)
	}
	return buildDoc(&raw)
}

// ParseBody decodes one body description. A non-nil existing body is
// filled in place and returned.
func (p *Parser) ParseBody(existing *body.Body, data []byte, atts []world.Attr) (*body.Body, error) {
	var raw bodyYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("scene: parse body: %w", err)
	}
	applyAttrs(&raw, atts)
	return buildBody(existing, &raw)
}

// ParseRobot decodes one robot description.
func (p *Parser) ParseRobot(existing *body.Robot, data []byte, atts []world.Attr) (*body.Robot, error) {
	var raw bodyYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("scene: parse robot: %w", err)
	}
	applyAttrs(&raw, atts)
	if existing == nil {
		existing = body.NewRobot(raw.Name)
	}
	if _, err := buildBody(&existing.Body, &raw); err != nil {
		return nil, err
	}
	return existing, nil
}

// ParseInterface decodes an interface description: kind, type, optional
// description, plus custom tags dispatched to registered tag readers.
func (p *Parser) ParseInterface(factory world.InterfaceFactory, existing iface.Interface, data []byte, atts []world.Attr, tags world.TagReaderLookup) (iface.Interface, error) {
	var raw interfaceYAML
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("scene: parse interface: %w", err)
	}
	kind, err := iface.ParseKind(raw.Kind)
	if err != nil {
		return nil, fmt.Errorf("scene: %w", err)
	}
	inst := existing
	if inst == nil {
		inst, err = factory(kind, raw.Type)
		if err != nil {
			return nil, fmt.Errorf("scene: %w", err)
		}
	}
	if raw.Description != "" {
		if d, ok := inst.(interface{ SetDescription(string) }); ok {
			d.SetDescription(raw.Description)
		}
	}
	for tag, value := range raw.Tags {
		if tags == nil {
			continue
		}
		f, ok := tags(kind, tag)
		if !ok {
			continue
		}
		reader, err := f(inst, atts)
		if err != nil {
			return nil, fmt.Errorf("scene: tag %q: %w", tag, err)
		}
		if err := reader.ReadNode(value); err != nil {
			return nil, fmt.Errorf("scene: tag %q: %w", tag, err)
		}
	}
	return inst, nil
}

// Serialize encodes a scene document.
func (p *Parser) Serialize(doc *world.SceneDoc) ([]byte, error) {
	return yaml.Marshal(flattenDoc(doc))
}

// SerializeFile writes the encoded scene to a file.
func (p *Parser) SerializeFile(path string, doc *world.SceneDoc) error {
	data, err := p.Serialize(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("scene: write %s: %w", path, err)
	}
	return nil
}

// applyAttrs lets callers override simple fields of a body description.
func applyAttrs(raw *bodyYAML, atts []world.Attr) {
	for _, a := range atts {
		switch a.Name {
		case "name":
			raw.Name = a.Value
		case "static":
			raw.Static = a.Value == "true"
		}
	}
}
