package Turbulence

import (
	"fmt"

	"github.com/notargets/gorans/types"
	"github.com/notargets/gorans/utils"
)

// PointState is the snapshot of flow and turbulence state read by a source kernel at one point
type PointState struct {
	NDim         int
	Coord        utils.Vec3
	Volume, Dist float64
	// Flow primitives
	Density, LamVisc, EddyVisc float64
	SoundSpeed2                float64
	Velocity                   utils.Vec3
	VelGrad                    [utils.MaxNDim]utils.Vec3 // VelGrad[i][j] = du_i/dx_j
	Vorticity                  utils.Vec3
	StrainMag                  float64
	// Turbulence scalars: nu_tilde for SA, (k, omega) for SST
	TurbVar  [2]float64
	TurbGrad [2]utils.Vec3
	// SST blending, computed from the state with SSTConstants.Blending
	F1, F2, CDkw float64
}

func (ps *PointState) divergence() (div float64) {
	for i := 0; i < ps.NDim; i++ {
		div += ps.VelGrad[i][i]
	}
	return
}

// SourceKernel computes the volume integrated source residual and its
// Jacobian with respect to the local turbulence unknowns. Implementations
// keep no state between calls.
type SourceKernel interface {
	NVar() int
	ComputeResidual(ps *PointState) (res utils.BlockVec, jac utils.Block)
}

type SourceOptions struct {
	Axisymmetric       bool
	RotatingFrame      bool
	UseStrainMagnitude bool
	// Ambient turbulence sustained by SST_SUST
	AmbientK, AmbientOmega float64
}

// NewSourceKernel resolves the turbulence model into its source kernel once, at setup
func NewSourceKernel(model types.TURB_MODEL, opt SourceOptions) (sk SourceKernel, err error) {
	switch model {
	case types.TURB_SA:
		sk = &SASource{C: NewSAConstants(), Opt: opt}
	case types.TURB_SA_Neg:
		sk = &SASource{C: NewSAConstants(), Opt: opt, Negative: true}
	case types.TURB_SA_COMP:
		sk = &SASource{C: NewSAConstants(), Opt: opt, Compressible: true}
	case types.TURB_SA_E:
		sk = &SASource{C: NewSAConstants(), Opt: opt, Edwards: true}
	case types.TURB_SA_E_COMP:
		sk = &SASource{C: NewSAConstants(), Opt: opt, Edwards: true, Compressible: true}
	case types.TURB_SST:
		sk = &SSTSource{C: NewSSTConstants(), Opt: opt}
	case types.TURB_SST_SUST:
		sk = &SSTSource{C: NewSSTConstants(), Opt: opt, Sustaining: true}
	default:
		err = fmt.Errorf("no source kernel for turbulence model %s", model)
	}
	return
}
