package streetgraph

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/require"
)

// buildQuad makes a single square city block: four intersections joined by four
// 100 meter roads.
func buildQuad(t *testing.T) (*StreetNetwork, []IntersectionID) {
	t.Helper()
	net := testNet()
	pts := []orb.Point{{0, 0}, {100, 0}, {100, 100}, {0, 100}}
	ids := make([]IntersectionID, 0, len(pts))
	for _, pt := range pts {
		ids = append(ids, net.AddIntersection(pt, CONTROL_UNCONTROLLED).ID)
	}
	for i := range ids {
		next := (i + 1) % len(ids)
		mustAddRoad(t, net, ids[i], ids[next],
			orb.LineString{pts[i], pts[next]}, twoWayDriving(), residentialTags("Block"))
	}
	require.NoError(t, net.GenerateIntersectionGeometry())
	return net, ids
}

func TestFindBlock(t *testing.T) {
	net, ids := buildQuad(t)

	block, err := net.FindBlock(ids[0])
	require.NoError(t, err)

	// 4 roads and 4 intersections, starting and ending on a road step
	require.Len(t, block.Steps, 9)
	roadSteps := 0
	for _, step := range block.Steps {
		if step.IsRoad {
			roadSteps++
		}
	}
	require.Equal(t, 5, roadSteps)

	require.GreaterOrEqual(t, len(block.Polygon), 4)
	require.Equal(t, block.Polygon[0], block.Polygon[len(block.Polygon)-1])
}

func TestFindBlockRequiresGeometry(t *testing.T) {
	net := testNet()
	a := net.AddIntersection(orb.Point{0, 0}, CONTROL_UNCONTROLLED)
	b := net.AddIntersection(orb.Point{100, 0}, CONTROL_UNCONTROLLED)
	c := net.AddIntersection(orb.Point{50, 80}, CONTROL_UNCONTROLLED)
	mustAddRoad(t, net, a.ID, b.ID, orb.LineString{{0, 0}, {100, 0}}, twoWayDriving(), residentialTags("Block"))
	mustAddRoad(t, net, b.ID, c.ID, orb.LineString{{100, 0}, {50, 80}}, twoWayDriving(), residentialTags("Block"))
	mustAddRoad(t, net, c.ID, a.ID, orb.LineString{{50, 80}, {0, 0}}, twoWayDriving(), residentialTags("Block"))

	_, err := net.FindBlock(a.ID)
	require.ErrorIs(t, err, ErrStaleGeometry)

	require.NoError(t, net.GenerateIntersectionGeometry())
	_, err = net.FindBlock(a.ID)
	require.NoError(t, err)
}

func TestFindBlockNoRoads(t *testing.T) {
	net := testNet()
	isolated := net.AddIntersection(orb.Point{0, 0}, CONTROL_UNCONTROLLED)
	_, err := net.FindBlock(isolated.ID)
	require.ErrorIs(t, err, ErrTopology)
}

func TestFindAllBlocksDeduplicates(t *testing.T) {
	net, _ := buildQuad(t)

	// Every start intersection traces the same square
	blocks := net.FindAllBlocks()
	require.Len(t, blocks, 1)
}
