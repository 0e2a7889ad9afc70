package utils

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ResidualVector is the accumulate-only contract for the global right hand side
type ResidualVector interface {
	AddBlock(iPoint int, vals *BlockVec)
	SubtractBlock(iPoint int, vals *BlockVec)
	SetBlockZero(iPoint int)
	AddVal(iPoint, iVar int, val float64)
	Set(iPoint, iVar int, val float64)
	At(iPoint, iVar int) float64
}

// BlockVector stores nVar values per point contiguously
type BlockVector struct {
	NBlocks int
	nVar    int
	data    []float64
}

func NewBlockVector(nBlocks, nVar int) *BlockVector {
	return &BlockVector{
		NBlocks: nBlocks,
		nVar:    nVar,
		data:    make([]float64, nBlocks*nVar),
	}
}

func (bv *BlockVector) NVar() int       { return bv.nVar }
func (bv *BlockVector) Data() []float64 { return bv.data }

func (bv *BlockVector) Block(iPoint int) []float64 {
	return bv.data[iPoint*bv.nVar : (iPoint+1)*bv.nVar]
}

func (bv *BlockVector) AddBlock(iPoint int, vals *BlockVec) {
	floats.Add(bv.Block(iPoint), vals[:bv.nVar])
}

func (bv *BlockVector) SubtractBlock(iPoint int, vals *BlockVec) {
	floats.Sub(bv.Block(iPoint), vals[:bv.nVar])
}

func (bv *BlockVector) SetBlockZero(iPoint int) {
	b := bv.Block(iPoint)
	for i := range b {
		b[i] = 0
	}
}

func (bv *BlockVector) AddVal(iPoint, iVar int, val float64) { bv.data[iPoint*bv.nVar+iVar] += val }
func (bv *BlockVector) Set(iPoint, iVar int, val float64)    { bv.data[iPoint*bv.nVar+iVar] = val }
func (bv *BlockVector) At(iPoint, iVar int) float64          { return bv.data[iPoint*bv.nVar+iVar] }

func (bv *BlockVector) SetValZero() {
	for i := range bv.data {
		bv.data[i] = 0
	}
}

// RMS returns the root mean square of equation iVar over all points
func (bv *BlockVector) RMS(iVar int) float64 {
	if bv.NBlocks == 0 {
		return 0
	}
	col := make([]float64, bv.NBlocks)
	for i := range col {
		col[i] = bv.data[i*bv.nVar+iVar]
	}
	return floats.Norm(col, 2) / math.Sqrt(float64(bv.NBlocks))
}
