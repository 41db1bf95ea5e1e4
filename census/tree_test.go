package census

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dhamidi/gfcedit/gfc"
)

func labels(nodes []*Node) []string {
	var out []string
	Walk(nodes, func(n *Node, depth int) bool {
		prefix := ""
		for i := 0; i < depth; i++ {
			prefix += "  "
		}
		out = append(out, prefix+n.Label())
		return true
	})
	return out
}

func TestTreeHidesEmptyClasses(t *testing.T) {
	h := hierarchy(buildingSchema)
	c := Count(gfc.Scan("#1=CURTAINWALL();\n#2=SLAB();\n"), h)

	got := labels(c.Tree(h, TreeOptions{HideEmpty: true}))
	assert.Equal(t, []string{
		"Element (0/2)",
		"  Slab (1/1)",
		"  Wall (0/1)",
		"    ExteriorWall (0/1)",
		"      CurtainWall (1/1)",
	}, got)
}

func TestTreeShowsWholeSchemaWithoutInstances(t *testing.T) {
	h := hierarchy(buildingSchema)
	c := Count(nil, h)

	got := labels(c.Tree(h, TreeOptions{HideEmpty: true}))
	assert.Equal(t, []string{
		"Element (0/0)",
		"  Slab (0/0)",
		"  Wall (0/0)",
		"    ExteriorWall (0/0)",
		"      CurtainWall (0/0)",
		"Point (0/0)",
	}, got)
}

func TestTreeInstancesAndRoot(t *testing.T) {
	h := hierarchy(buildingSchema)
	text := "#4=WALL();\n#5=Wall();\n"
	c := Count(gfc.Scan(text), h)

	forest := c.Tree(h, TreeOptions{Root: "Wall"})
	require.Len(t, forest, 1)
	wall := forest[0]
	require.Len(t, wall.Instances, 2)
	assert.Equal(t, "#4 WALL", InstanceLabel(wall.Instances[0]))
	assert.Equal(t, "#5 Wall", InstanceLabel(wall.Instances[1]))
	assert.Equal(t, 11, wall.Instances[1].Pos)

	assert.Same(t, wall, Find(forest, "wall"))
	assert.Nil(t, Find(forest, "Slab"))
}
