package utils

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// MaxNVar bounds the number of equations solved at a point (nDim+2 in 3D)
const MaxNVar = 5

// Block is a fixed size scratch Jacobian block, only the leading nVar x nVar
// entries are meaningful
type Block [MaxNVar][MaxNVar]float64

// BlockVec is a fixed size per point residual
type BlockVec [MaxNVar]float64

// JacobianMatrix is the accumulate-only contract the assembly kernels use
// against the global block sparse Jacobian
type JacobianMatrix interface {
	AddBlock2Diag(iPoint int, block *Block)
	SubtractBlock2Diag(iPoint int, block *Block)
	AddVal2Diag(iPoint, iVar int, val float64)
	AddBlock(iPoint, jPoint int, block *Block)
	SubtractBlock(iPoint, jPoint int, block *Block)
	// DeleteValsRowi clears the scalar row iPoint*nVar+iVar and sets its diagonal to one
	DeleteValsRowi(row int)
}

// BlockSparse represents a sparse matrix of square nVar x nVar blocks. Only blocks provided via addresses are
// allocated; all other blocks are implicitly zero. The diagonal is always allocated.
type BlockSparse struct {
	NrBlocks int
	nVar     int

	// Contiguous storage for all allocated (nonzero) blocks.
	data []float64

	// addresses maps a block coordinate [i,j] to the offset (in floats) within data.
	addresses map[[2]int]int

	// rowCols lists the allocated block columns of each block row, sorted
	rowCols [][]int
}

// NewBlockSparse allocates the diagonal blocks plus one block for each (i,j) and (j,i) of the pairs given
func NewBlockSparse(nrBlocks, nVar int, pairs [][2]int) *BlockSparse {
	if nVar > MaxNVar || nVar < 1 {
		panic(fmt.Errorf("block size %d out of range [1,%d]", nVar, MaxNVar))
	}
	rowCols := make([][]int, nrBlocks)
	seen := make(map[[2]int]struct{}, nrBlocks+2*len(pairs))
	add := func(i, j int) {
		if _, ok := seen[[2]int{i, j}]; ok {
			return
		}
		seen[[2]int{i, j}] = struct{}{}
		rowCols[i] = append(rowCols[i], j)
	}
	for i := 0; i < nrBlocks; i++ {
		add(i, i)
	}
	for _, p := range pairs {
		add(p[0], p[1])
		add(p[1], p[0])
	}
	var (
		bs = &BlockSparse{
			NrBlocks:  nrBlocks,
			nVar:      nVar,
			addresses: make(map[[2]int]int, len(seen)),
			rowCols:   rowCols,
		}
		offset int
	)
	// Each nonzero block gets a contiguous slice of length nVar*nVar, in row order
	for i := range rowCols {
		sort.Ints(rowCols[i])
		for _, j := range rowCols[i] {
			bs.addresses[[2]int{i, j}] = offset
			offset += nVar * nVar
		}
	}
	bs.data = make([]float64, offset)
	return bs
}

func (bs *BlockSparse) NVar() int { return bs.nVar }

// NNZBlocks is the number of allocated blocks
func (bs *BlockSparse) NNZBlocks() int { return len(bs.addresses) }

func (bs *BlockSparse) blockData(i, j int) []float64 {
	offset, ok := bs.addresses[[2]int{i, j}]
	if !ok {
		panic(fmt.Sprintf("block (%d,%d) not allocated", i, j))
	}
	return bs.data[offset : offset+bs.nVar*bs.nVar]
}

// GetBlockView returns a gonum view sharing storage with the block at coordinate (i, j)
func (bs *BlockSparse) GetBlockView(i, j int) *mat.Dense {
	return mat.NewDense(bs.nVar, bs.nVar, bs.blockData(i, j))
}

func (bs *BlockSparse) At(row, col int) float64 {
	var (
		i, iVar = row / bs.nVar, row % bs.nVar
		j, jVar = col / bs.nVar, col % bs.nVar
	)
	offset, ok := bs.addresses[[2]int{i, j}]
	if !ok {
		return 0
	}
	return bs.data[offset+iVar*bs.nVar+jVar]
}

func (bs *BlockSparse) accumulate(i, j int, block *Block, sign float64) {
	d := bs.blockData(i, j)
	for iVar := 0; iVar < bs.nVar; iVar++ {
		for jVar := 0; jVar < bs.nVar; jVar++ {
			d[iVar*bs.nVar+jVar] += sign * block[iVar][jVar]
		}
	}
}

func (bs *BlockSparse) AddBlock2Diag(iPoint int, block *Block) { bs.accumulate(iPoint, iPoint, block, 1) }

func (bs *BlockSparse) SubtractBlock2Diag(iPoint int, block *Block) {
	bs.accumulate(iPoint, iPoint, block, -1)
}

func (bs *BlockSparse) AddBlock(iPoint, jPoint int, block *Block) { bs.accumulate(iPoint, jPoint, block, 1) }

func (bs *BlockSparse) SubtractBlock(iPoint, jPoint int, block *Block) {
	bs.accumulate(iPoint, jPoint, block, -1)
}

func (bs *BlockSparse) AddVal2Diag(iPoint, iVar int, val float64) {
	bs.blockData(iPoint, iPoint)[iVar*bs.nVar+iVar] += val
}

func (bs *BlockSparse) DeleteValsRowi(row int) {
	var (
		iPoint, iVar = row / bs.nVar, row % bs.nVar
	)
	for _, j := range bs.rowCols[iPoint] {
		d := bs.blockData(iPoint, j)
		for jVar := 0; jVar < bs.nVar; jVar++ {
			d[iVar*bs.nVar+jVar] = 0
		}
	}
	bs.blockData(iPoint, iPoint)[iVar*bs.nVar+iVar] = 1
}

// SetValZero clears every allocated block, keeping the sparsity pattern
func (bs *BlockSparse) SetValZero() {
	for i := range bs.data {
		bs.data[i] = 0
	}
}

// RowCols returns the allocated block columns of block row i
func (bs *BlockSparse) RowCols(i int) []int { return bs.rowCols[i] }
