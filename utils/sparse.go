package utils

import (
	"github.com/james-bowman/sparse"
)

// ToCSR exports the assembled block Jacobian as a scalar CSR matrix, dropping explicit zeros
func (bs *BlockSparse) ToCSR() *sparse.CSR {
	var (
		nVar = bs.nVar
		n    = bs.NrBlocks * nVar
		dok  = sparse.NewDOK(n, n)
	)
	for i := 0; i < bs.NrBlocks; i++ {
		for _, j := range bs.rowCols[i] {
			d := bs.blockData(i, j)
			for iVar := 0; iVar < nVar; iVar++ {
				for jVar := 0; jVar < nVar; jVar++ {
					if v := d[iVar*nVar+jVar]; v != 0 {
						dok.Set(i*nVar+iVar, j*nVar+jVar, v)
					}
				}
			}
		}
	}
	return dok.ToCSR()
}
