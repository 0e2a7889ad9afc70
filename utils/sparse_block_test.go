package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockSparse(t *testing.T) {
	// Three points in a chain: 0-1, 1-2
	newJac := func() *BlockSparse {
		return NewBlockSparse(3, 4, [][2]int{{0, 1}, {1, 2}, {2, 1}})
	}
	fill := func(v float64) (b Block) {
		for i := 0; i < MaxNVar; i++ {
			for j := 0; j < MaxNVar; j++ {
				b[i][j] = v + float64(i*10+j)
			}
		}
		return
	}
	{ // Sparsity pattern is symmetric and includes the diagonal, duplicates collapse
		bs := newJac()
		assert.Equal(t, 7, bs.NNZBlocks())
		assert.Equal(t, []int{0, 1}, bs.RowCols(0))
		assert.Equal(t, []int{0, 1, 2}, bs.RowCols(1))
		assert.Equal(t, []int{1, 2}, bs.RowCols(2))
		assert.Panics(t, func() { bs.GetBlockView(0, 2) })
		assert.Panics(t, func() { NewBlockSparse(1, MaxNVar+1, nil) })
	}
	{ // Add and subtract only touch the leading nVar x nVar entries
		bs := newJac()
		b := fill(1)
		bs.AddBlock2Diag(1, &b)
		bs.AddBlock2Diag(1, &b)
		bs.SubtractBlock2Diag(1, &b)
		v := bs.GetBlockView(1, 1)
		r, c := v.Dims()
		assert.Equal(t, 4, r)
		assert.Equal(t, 4, c)
		assert.Equal(t, 1., v.At(0, 0))
		assert.Equal(t, 24., v.At(2, 3))
		assert.Equal(t, 24., bs.At(1*4+2, 1*4+3))
		bs.AddBlock(1, 2, &b)
		bs.SubtractBlock(2, 1, &b)
		assert.Equal(t, 1., bs.At(4, 8))
		assert.Equal(t, -1., bs.At(8, 4))
		assert.Equal(t, 0., bs.At(0, 8))
		bs.AddVal2Diag(0, 3, 2.5)
		assert.Equal(t, 2.5, bs.At(3, 3))
	}
	{ // Views share storage
		bs := newJac()
		v := bs.GetBlockView(0, 1)
		v.Set(1, 2, 7)
		assert.Equal(t, 7., bs.At(1, 4+2))
	}
	{ // Row deletion leaves an identity row and spares the other rows
		bs := newJac()
		b := fill(3)
		bs.AddBlock2Diag(1, &b)
		bs.AddBlock(1, 0, &b)
		bs.AddBlock(1, 2, &b)
		row := 1*4 + 2
		bs.DeleteValsRowi(row)
		for col := 0; col < 12; col++ {
			if col == row {
				assert.Equal(t, 1., bs.At(row, col))
			} else {
				assert.Equal(t, 0., bs.At(row, col))
			}
		}
		assert.Equal(t, b[1][2], bs.At(1*4+1, 2))
		assert.Equal(t, b[3][0], bs.At(1*4+3, 8))
	}
	{ // CSR export carries every nonzero
		bs := newJac()
		b := Block{}
		b[0][0], b[1][3] = 2, -4
		bs.AddBlock2Diag(2, &b)
		bs.DeleteValsRowi(0)
		csr := bs.ToCSR()
		r, c := csr.Dims()
		require.Equal(t, 12, r)
		require.Equal(t, 12, c)
		assert.Equal(t, 3, csr.NNZ())
		assert.Equal(t, 2., csr.At(8, 8))
		assert.Equal(t, -4., csr.At(9, 11))
		assert.Equal(t, 1., csr.At(0, 0))
		bs.SetValZero()
		assert.Equal(t, 0, bs.ToCSR().NNZ())
	}
}

func TestBlockVector(t *testing.T) {
	bv := NewBlockVector(4, 3)
	vals := BlockVec{1, 2, 3, 99, 99}
	bv.AddBlock(0, &vals)
	bv.AddBlock(0, &vals)
	bv.SubtractBlock(1, &vals)
	assert.Equal(t, []float64{2, 4, 6}, bv.Block(0))
	assert.Equal(t, []float64{-1, -2, -3}, bv.Block(1))
	assert.Equal(t, 0., bv.At(2, 0))
	bv.Set(3, 1, 5)
	bv.AddVal(3, 1, 1)
	assert.Equal(t, 6., bv.At(3, 1))
	bv.SetBlockZero(0)
	assert.Equal(t, []float64{0, 0, 0}, bv.Block(0))
	// RMS of column 0: sqrt((0+1+0+0)/4)
	assert.InDelta(t, 0.5, bv.RMS(0), 1e-15)
	assert.False(t, IsNan(bv))
	bv.SetValZero()
	assert.Equal(t, 0., bv.RMS(1))
}

func TestGeometryToolbox(t *testing.T) {
	a, b := Vec3{3, 4, 12}, Vec3{0, 0, 0}
	assert.Equal(t, 5., Norm(2, &a))
	assert.InDelta(t, 13., Norm(3, &a), 1e-14)
	assert.Equal(t, 25., SquaredNorm(2, &a))
	assert.Equal(t, 5., Distance(2, &a, &b))
	assert.Equal(t, Vec3{-3, -4, 0}, DistanceVector(2, &a, &b))
	unit, area := UnitNormal(2, &Vec3{0, -2, 0})
	assert.Equal(t, 2., area)
	assert.Equal(t, Vec3{0, 1, 0}, unit)
	// Pure shear: tau_xy only, wall normal along y gives a tangential traction along x
	tau := [MaxNDim]Vec3{{0, 3, 0}, {3, 0, 0}}
	tan := TangentProjection(2, &tau, &unit)
	assert.Equal(t, Vec3{3, 0, 0}, tan)
	assert.Equal(t, 1., POW(1, 7))
	assert.Equal(t, 64., POW(2, 6))
	assert.Equal(t, 0.125, POW(2, -3))
	assert.Equal(t, -1., Sign(-0.1))
	assert.Equal(t, 3.375, POW(1.5, 3))
	assert.Equal(t, 19683., POW(3, 9))
	assert.Equal(t, 1., POW(5, 0))
}

func TestSystem(t *testing.T) {
	assert.True(t, IsNan(math.NaN()))
	assert.True(t, IsNan([]float64{0, math.NaN()}))
	assert.False(t, IsNan("x"))
	bs := NewBlockSparse(2, 2, [][2]int{{0, 1}})
	assert.False(t, IsNan(bs))
	bs.AddVal2Diag(1, 0, math.NaN())
	assert.True(t, IsNan(bs))
	mu := GetMemUsage()
	assert.True(t, mu.Sys > 0 || mu.Alloc == 0)
	assert.Contains(t, mu.String(), "MiB")
}
