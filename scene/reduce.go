package scene

import "github.com/seqsense/pcgol/mat"

// Reduce merges same-named sibling components throughout the tree.
// Repeated instances of one logical shape parse into separate siblings
// sharing a stripped name; combining them keeps the tree small and the
// draw count low. Groups of size 1 pass through unchanged.
func Reduce(comps []*Component) error {
	for _, c := range comps {
		if len(c.Children) > 1 {
			var names []string
			seen := map[string]bool{}
			for _, child := range c.Children {
				if !seen[child.Name] {
					seen[child.Name] = true
					names = append(names, child.Name)
				}
			}
			reduced := make([]*Component, 0, len(names))
			for _, name := range names {
				var group []*Component
				for _, child := range c.Children {
					if child.Name == name {
						group = append(group, child)
					}
				}
				if len(group) > 1 {
					combined, err := combineComponents(group)
					if err != nil {
						return err
					}
					reduced = append(reduced, combined)
				} else {
					reduced = append(reduced, group[0])
				}
			}
			c.Children = reduced
		}
		if err := Reduce(c.Children); err != nil {
			return err
		}
	}
	return nil
}

// combineComponents merges a group of same-named components into one,
// keeping the first component's shape and flags and concatenating all
// descendants. Each component's own multi-entry buffers are combined
// first, then the single entries are combined across the group.
func combineComponents(group []*Component) (*Component, error) {
	if len(group) < 2 {
		return group[0], nil
	}
	result := New(group[0].Name)
	result.Shape = group[0].Shape
	result.Visible = group[0].Visible
	result.IsDot = group[0].IsDot

	for _, g := range group {
		if len(g.Points) > 1 {
			pts, cells, colors, err := Combine(g.Points, g.Cells, g.Colors)
			if err != nil {
				return nil, err
			}
			g.Points = [][]mat.Vec3{pts}
			g.Cells = [][]int32{cells}
			g.Colors = [][]RGBA{colors}
		}
	}

	points := make([][]mat.Vec3, 0, len(group))
	cells := make([][]int32, 0, len(group))
	colors := make([][]RGBA, 0, len(group))
	var children []*Component
	for _, g := range group {
		if len(g.Points) == 1 {
			points = append(points, g.Points[0])
			cells = append(cells, g.Cells[0])
			colors = append(colors, g.Colors[0])
		}
		children = append(children, g.Children...)
	}
	pts, cl, co, err := Combine(points, cells, colors)
	if err != nil {
		return nil, err
	}
	result.Points = [][]mat.Vec3{pts}
	result.Cells = [][]int32{cl}
	result.Colors = [][]RGBA{co}
	result.Children = children
	return result, nil
}
