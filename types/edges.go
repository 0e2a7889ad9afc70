package types

import (
	"fmt"
	"math"
)

// EdgeKey identifies an undirected edge of the dual mesh, the smaller point
// index is held in the low 32 bits so both orientations map to one key
type EdgeKey uint64

func packPair(lo, hi int, limit int) uint64 {
	if lo < 0 || hi < 0 || lo > limit || hi > limit {
		panic(fmt.Errorf("point indices %d and %d exceed the edge key range [0, %d]", lo, hi, limit))
	}
	return uint64(lo) | uint64(hi)<<32
}

func unpackPair(packed uint64) (lo, hi int) {
	return int(packed & math.MaxUint32), int(packed >> 32)
}

func NewEdgeKey(verts [2]int) EdgeKey {
	lo, hi := verts[0], verts[1]
	if hi < lo {
		lo, hi = hi, lo
	}
	return EdgeKey(packPair(lo, hi, math.MaxUint32))
}

// GetVertices returns the points in ascending order, or descending when rev is set
func (ek EdgeKey) GetVertices(rev bool) (verts [2]int) {
	verts[0], verts[1] = unpackPair(uint64(ek))
	if rev {
		verts[0], verts[1] = verts[1], verts[0]
	}
	return
}

// EdgeInt is a directed boundary segment as read from the mesh file, a
// negative value marks a segment running from the larger to the smaller index
type EdgeInt int64

func NewEdgeInt(verts [2]int) EdgeInt {
	lo, hi := verts[0], verts[1]
	if hi < lo {
		lo, hi = hi, lo
		return -EdgeInt(packPair(lo, hi, math.MaxUint32>>1))
	}
	return EdgeInt(packPair(lo, hi, math.MaxUint32>>1))
}

func (e EdgeInt) GetVertices() (verts [2]int) {
	if e < 0 {
		verts[1], verts[0] = unpackPair(uint64(-e))
		return
	}
	verts[0], verts[1] = unpackPair(uint64(e))
	return
}

// GetKey drops the direction of the segment
func (e EdgeInt) GetKey() EdgeKey { return NewEdgeKey(e.GetVertices()) }
