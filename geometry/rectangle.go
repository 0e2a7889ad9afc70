package geometry

import (
	"math"

	"github.com/notargets/gorans/readfiles"
	"github.com/notargets/gorans/types"
)

// NewRectangleMesh triangulates [0,lx]x[0,ly] with nx by ny cells. Rows are clustered toward y=0 with a
// geometric growth ratio between consecutive spacings. Markers are "bottom", "top", "left" and "right".
func NewRectangleMesh(nx, ny int, lx, ly, ratio float64) (mesh *readfiles.SU2Mesh) {
	var (
		npx = nx + 1
		id  = func(i, j int) int { return j*npx + i }
	)
	mesh = &readfiles.SU2Mesh{
		NDim:    2,
		Markers: make(map[string][]types.EdgeInt),
	}
	for j := 0; j <= ny; j++ {
		y := ly * float64(j) / float64(ny)
		if ratio != 1 {
			y = ly * (math.Pow(ratio, float64(j)) - 1) / (math.Pow(ratio, float64(ny)) - 1)
		}
		for i := 0; i <= nx; i++ {
			mesh.VX = append(mesh.VX, lx*float64(i)/float64(nx))
			mesh.VY = append(mesh.VY, y)
		}
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			mesh.Triangles = append(mesh.Triangles,
				[3]int{id(i, j), id(i+1, j), id(i+1, j+1)},
				[3]int{id(i, j), id(i+1, j+1), id(i, j+1)})
		}
	}
	addSeg := func(tag string, a, b int) {
		if _, ok := mesh.Markers[tag]; !ok {
			mesh.MarkerOrder = append(mesh.MarkerOrder, tag)
		}
		mesh.Markers[tag] = append(mesh.Markers[tag], types.NewEdgeInt([2]int{a, b}))
	}
	for i := 0; i < nx; i++ {
		addSeg("bottom", id(i, 0), id(i+1, 0))
	}
	for i := 0; i < nx; i++ {
		addSeg("top", id(i+1, ny), id(i, ny))
	}
	for j := 0; j < ny; j++ {
		addSeg("left", id(0, j+1), id(0, j))
	}
	for j := 0; j < ny; j++ {
		addSeg("right", id(nx, j), id(nx, j+1))
	}
	return
}
