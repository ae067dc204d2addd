// Package heprep parses HepRep XML geometry exports into a scene
// component tree. The format nests typed elements: type declares a
// component, instance carries its attributes and primitives, attvalue
// holds scalar attributes and primitive holds point lists.
package heprep

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/detgeo/gxviewer/scene"
	"github.com/seqsense/pcgol/mat"
)

// node is the generic XML element. Namespace prefixes on tag names are
// resolved by the decoder, so matching on the local name is enough.
type node struct {
	XMLName  xml.Name
	Name     string  `xml:"name,attr"`
	Value    string  `xml:"value,attr"`
	X        float32 `xml:"x,attr"`
	Y        float32 `xml:"y,attr"`
	Z        float32 `xml:"z,attr"`
	Children []node  `xml:",any"`
}

// primitive is one geometric instance of a component. Prisms and
// polygons carry points only; cylinders carry two radii and the two
// axis endpoints.
type primitive struct {
	points []mat.Vec3
	radii  []float32
}

// Parser parses HepRep XML. Progress, when set, is called once per
// built component with monotonically increasing counts. Segments sets
// the cylinder tessellation; values below 3 use the default.
type Parser struct {
	Progress func(cur, max int)
	Segments int
}

// Parse decodes the document and returns a single root component named
// after the file, holding the declared type hierarchy as children.
// Components are reduced so repeated same-named siblings share one
// combined mesh.
func (p *Parser) Parse(r io.Reader, name string) ([]*scene.Component, error) {
	var root node
	if err := xml.NewDecoder(r).Decode(&root); err != nil {
		return nil, fmt.Errorf("decode heprep: %w", err)
	}

	segments := p.Segments
	if segments < 3 {
		segments = cylinderSegments
	}
	b := &builder{prims: map[string][]primitive{}, segments: segments}
	top := newComponent(name)
	b.populate(&root, top)

	total := countComponents(top)
	var done int
	progress := func() {
		done++
		if p.Progress != nil {
			p.Progress(done, total)
		}
	}
	if err := b.build(top, progress); err != nil {
		return nil, err
	}

	comps := []*scene.Component{top}
	if err := scene.Reduce(comps); err != nil {
		return nil, err
	}
	if err := finalize(top); err != nil {
		return nil, err
	}
	return comps, nil
}

// newComponent creates a HepRep component. Components start invisible;
// only an explicit Visibility=True attvalue makes them renderable.
func newComponent(name string) *scene.Component {
	c := scene.New(name)
	c.Visible = false
	return c
}

// populate walks the element tree filling in component attributes and
// collecting primitives. An instance element continues the current
// component; a type element starts a child component.
func (b *builder) populate(n *node, comp *scene.Component) {
	for i := range n.Children {
		child := &n.Children[i]
		switch child.XMLName.Local {
		case "instance":
			b.populate(child, comp)
		case "attvalue":
			b.applyAttribute(child, comp)
		case "primitive":
			b.prims[comp.ID] = append(b.prims[comp.ID], parsePrimitive(child))
		case "type":
			cc := newComponent(trimCopySuffix(child.Name))
			b.populate(child, cc)
			comp.Children = append(comp.Children, cc)
		}
	}
}

func (b *builder) applyAttribute(n *node, comp *scene.Component) {
	switch n.Name {
	case "DrawAs":
		comp.Shape = scene.ParseShapeKind(n.Value)
	case "LineColor":
		comp.Colors = [][]scene.RGBA{{parseColor(n.Value)}}
	case "MarkColor":
		comp.Colors = [][]scene.RGBA{{parseColor(n.Value)}}
		comp.IsDot = true
	case "Visibility":
		comp.Visible = n.Value == "True"
	}
}

func parsePrimitive(n *node) primitive {
	var prim primitive
	for i := range n.Children {
		g := &n.Children[i]
		switch {
		case g.XMLName.Local == "point":
			prim.points = append(prim.points, mat.Vec3{g.X, g.Y, g.Z})
		case g.XMLName.Local == "attvalue" && strings.HasPrefix(g.Name, "Radius"):
			if r, err := strconv.ParseFloat(g.Value, 32); err == nil {
				prim.radii = append(prim.radii, float32(r))
			}
		}
	}
	return prim
}

// trimCopySuffix strips one trailing _<digits> copy-number suffix so
// repeated placements of the same volume share a name and reduce into
// one component.
func trimCopySuffix(name string) string {
	i := strings.LastIndex(name, "_")
	if i < 0 || i == len(name)-1 {
		return name
	}
	for _, r := range name[i+1:] {
		if r < '0' || r > '9' {
			return name
		}
	}
	return name[:i]
}

// parseColor parses a comma-separated 0-255 color attribute. A missing
// alpha channel means opaque.
func parseColor(s string) scene.RGBA {
	c := scene.RGBA{1, 1, 1, 1}
	for i, field := range strings.Split(s, ",") {
		if i > 3 {
			break
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
		if err != nil {
			continue
		}
		c[i] = float32(f) / 255
	}
	return c
}

func countComponents(c *scene.Component) int {
	n := 1
	for _, ch := range c.Children {
		n += countComponents(ch)
	}
	return n
}

// finalize builds the combined mesh of every visible component with a
// known shape. Invisible components and bare grouping nodes keep a nil
// mesh but stay in the tree so their descendants remain reachable.
// A combine failure aborts the file load.
func finalize(c *scene.Component) error {
	for _, ch := range c.Children {
		if err := finalize(ch); err != nil {
			return err
		}
	}
	if c.Shape == scene.ShapeNone || !c.Visible {
		return nil
	}
	if err := c.BuildMesh(); err != nil {
		return fmt.Errorf("build mesh for %s: %w", c.Name, err)
	}
	return nil
}
