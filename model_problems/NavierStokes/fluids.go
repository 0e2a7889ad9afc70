package NavierStokes

import (
	"math"

	"github.com/notargets/gorans/InputParameters"
	"github.com/notargets/gorans/types"
	"github.com/notargets/gorans/utils"
)

type FlowFunction uint8

func (pm FlowFunction) String() string {
	strings := []string{
		"Density",
		"Pressure",
		"Temperature",
		"Velocity",
		"XVelocity",
		"YVelocity",
		"Mach",
		"Enthalpy",
		"Laminar Viscosity",
		"Eddy Viscosity",
		"Wall Shear Stress",
	}
	return strings[int(pm)]
}

const (
	Density FlowFunction = iota
	Pressure
	Temperature
	Velocity
	XVelocity
	YVelocity
	Mach             // 6
	Enthalpy         // 7
	LaminarViscosity // 8
	EddyViscosity    // 9
	WallShearStress  // 10
)

// Sutherland's law for air
const (
	sutherlandMuRef = 1.716e-5
	sutherlandTRef  = 273.15
	sutherlandS     = 110.4
)

// GasModel is a calorically perfect gas with constant Prandtl numbers
type GasModel struct {
	Gamma, R, Cp float64
	PrandtlLam   float64
	PrandtlTurb  float64
	Sutherland   bool
	MuConstant   float64
	DensityInc   float64 // Constant density of the incompressible regime
}

func NewGasModel(ip *InputParameters.RANSParameters) (gm *GasModel) {
	gm = &GasModel{
		Gamma:       ip.Gamma,
		R:           ip.GasConstant,
		Cp:          ip.Cp(),
		PrandtlLam:  ip.PrandtlLam,
		PrandtlTurb: ip.PrandtlTurb,
		Sutherland:  ip.Sutherland,
		MuConstant:  ip.ViscosityInf,
		DensityInc:  ip.DensityInf,
	}
	return
}

func (gm *GasModel) LaminarViscosity(T float64) float64 {
	if !gm.Sutherland {
		return gm.MuConstant
	}
	return sutherlandMuRef * math.Pow(T/sutherlandTRef, 1.5) * (sutherlandTRef + sutherlandS) / (T + sutherlandS)
}

// ThermalConductivity is the effective conductivity including the turbulent contribution
func (gm *GasModel) ThermalConductivity(mu, muT float64) float64 {
	return gm.Cp * (mu/gm.PrandtlLam + muT/gm.PrandtlTurb)
}

// ComputeStressTensor returns the Newtonian viscous stress given gradVel[i][j] = du_i/dx_j
func ComputeStressTensor(nDim int, gradVel *[utils.MaxNDim]utils.Vec3, mu float64) (tau [utils.MaxNDim]utils.Vec3) {
	var div float64
	for i := 0; i < nDim; i++ {
		div += gradVel[i][i]
	}
	for i := 0; i < nDim; i++ {
		for j := 0; j < nDim; j++ {
			tau[i][j] = mu * (gradVel[i][j] + gradVel[j][i])
		}
		tau[i][i] -= 2. / 3. * mu * div
	}
	return
}

// GetFlowFunction evaluates a derived quantity at one point from the primitive state
func (fn *FlowNodes) GetFlowFunction(iPoint int, pf FlowFunction) (f float64) {
	var (
		vel = &fn.Velocity[iPoint]
		q2  = utils.SquaredNorm(fn.NDim, vel)
	)
	switch pf {
	case Density:
		f = fn.Density[iPoint]
	case Pressure:
		f = fn.Pressure[iPoint]
	case Temperature:
		f = fn.Temperature[iPoint]
	case Velocity:
		f = math.Sqrt(q2)
	case XVelocity:
		f = vel[0]
	case YVelocity:
		f = vel[1]
	case Mach:
		if fn.Regime == types.Compressible {
			f = math.Sqrt(q2 / fn.SoundSpeed2[iPoint])
		}
	case Enthalpy:
		f = fn.Enthalpy[iPoint]
	case LaminarViscosity:
		f = fn.LamVisc[iPoint]
	case EddyViscosity:
		f = fn.EddyVisc[iPoint]
	case WallShearStress:
		f = fn.TauWall[iPoint]
	}
	return
}
