package types

import (
	"fmt"
	"strings"
)

type BCKIND uint8

const (
	BC_None BCKIND = iota
	BC_HeatFlux
	BC_Isothermal
	BC_HeatTransfer
	BC_CHTInterface
	BC_Farfield
	BC_Symmetry
)

var BCKindNameMap = map[string]BCKIND{
	"heatflux":      BC_HeatFlux,
	"heat_flux":     BC_HeatFlux,
	"adiabatic":     BC_HeatFlux,
	"isothermal":    BC_Isothermal,
	"heattransfer":  BC_HeatTransfer,
	"heat_transfer": BC_HeatTransfer,
	"cht":           BC_CHTInterface,
	"cht_interface": BC_CHTInterface,
	"far":           BC_Farfield,
	"farfield":      BC_Farfield,
	"symmetry":      BC_Symmetry,
}

func NewBCKind(label string) (bc BCKIND, err error) {
	var ok bool
	if bc, ok = BCKindNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown boundary condition kind [%s]", label)
	}
	return
}

// IsViscousWall is true for the markers that receive the no-slip treatment
func (bc BCKIND) IsViscousWall() bool {
	switch bc {
	case BC_HeatFlux, BC_Isothermal, BC_HeatTransfer, BC_CHTInterface:
		return true
	}
	return false
}

func (bc BCKIND) String() string {
	switch bc {
	case BC_None:
		return "None"
	case BC_HeatFlux:
		return "HeatFlux"
	case BC_Isothermal:
		return "Isothermal"
	case BC_HeatTransfer:
		return "HeatTransfer"
	case BC_CHTInterface:
		return "CHTInterface"
	case BC_Farfield:
		return "Farfield"
	case BC_Symmetry:
		return "Symmetry"
	}
	return fmt.Sprintf("BCKIND(%d)", uint8(bc))
}

type TURB_MODEL uint8

const (
	TURB_None TURB_MODEL = iota
	TURB_SA
	TURB_SA_Neg
	TURB_SA_E
	TURB_SA_COMP
	TURB_SA_E_COMP
	TURB_SST
	TURB_SST_SUST
)

var TurbModelNameMap = map[string]TURB_MODEL{
	"none":      TURB_None,
	"sa":        TURB_SA,
	"sa_neg":    TURB_SA_Neg,
	"sa_e":      TURB_SA_E,
	"sa_comp":   TURB_SA_COMP,
	"sa_e_comp": TURB_SA_E_COMP,
	"sst":       TURB_SST,
	"sst_sust":  TURB_SST_SUST,
}

func NewTurbModel(label string) (tm TURB_MODEL, err error) {
	var ok bool
	if len(label) == 0 {
		return TURB_None, nil
	}
	if tm, ok = TurbModelNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown turbulence model [%s]", label)
	}
	return
}

func (tm TURB_MODEL) IsSA() bool {
	return tm >= TURB_SA && tm <= TURB_SA_E_COMP
}

func (tm TURB_MODEL) IsSST() bool {
	return tm == TURB_SST || tm == TURB_SST_SUST
}

// NVar is the number of transported turbulence scalars
func (tm TURB_MODEL) NVar() int {
	switch {
	case tm.IsSA():
		return 1
	case tm.IsSST():
		return 2
	}
	return 0
}

func (tm TURB_MODEL) String() string {
	for name, val := range TurbModelNameMap {
		if val == tm {
			return strings.ToUpper(name)
		}
	}
	return fmt.Sprintf("TURB_MODEL(%d)", uint8(tm))
}

type CHT_COUPLING uint8

const (
	CHT_DirectTemperatureNeumannHeatFlux CHT_COUPLING = iota
	CHT_AveragedTemperatureNeumannHeatFlux
	CHT_DirectTemperatureRobinHeatFlux
	CHT_AveragedTemperatureRobinHeatFlux
)

var CHTCouplingNameMap = map[string]CHT_COUPLING{
	"direct_temperature_neumann_heatflux":   CHT_DirectTemperatureNeumannHeatFlux,
	"averaged_temperature_neumann_heatflux": CHT_AveragedTemperatureNeumannHeatFlux,
	"direct_temperature_robin_heatflux":     CHT_DirectTemperatureRobinHeatFlux,
	"averaged_temperature_robin_heatflux":   CHT_AveragedTemperatureRobinHeatFlux,
}

func NewCHTCoupling(label string) (cc CHT_COUPLING, err error) {
	var ok bool
	if len(label) == 0 {
		return CHT_DirectTemperatureNeumannHeatFlux, nil
	}
	if cc, ok = CHTCouplingNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown CHT coupling method [%s]", label)
	}
	return
}

func (cc CHT_COUPLING) IsAveraged() bool {
	return cc == CHT_AveragedTemperatureNeumannHeatFlux || cc == CHT_AveragedTemperatureRobinHeatFlux
}

func (cc CHT_COUPLING) IsDirect() bool {
	return cc == CHT_DirectTemperatureNeumannHeatFlux || cc == CHT_DirectTemperatureRobinHeatFlux
}

type WALL_FUNCTION uint8

const (
	WF_None WALL_FUNCTION = iota
	WF_Standard
	WF_Adaptive
	WF_Scalable
	WF_Equilibrium
	WF_NonEquilibrium
	WF_Logarithmic
)

var WallFunctionNameMap = map[string]WALL_FUNCTION{
	"no_wall_function":          WF_None,
	"none":                      WF_None,
	"standard_wall_function":    WF_Standard,
	"standard":                  WF_Standard,
	"adaptive_wall_function":    WF_Adaptive,
	"scalable_wall_function":    WF_Scalable,
	"equilibrium_wall_model":    WF_Equilibrium,
	"nonequilibrium_wall_model": WF_NonEquilibrium,
	"logarithmic_wall_model":    WF_Logarithmic,
}

func NewWallFunction(label string) (wf WALL_FUNCTION, err error) {
	var ok bool
	if len(label) == 0 {
		return WF_None, nil
	}
	if wf, ok = WallFunctionNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown wall function treatment [%s]", label)
	}
	return
}

type COMM_LEVEL uint8

const (
	COMM_None COMM_LEVEL = iota
	COMM_Minimal
	COMM_Full
)

var CommLevelNameMap = map[string]COMM_LEVEL{
	"none":    COMM_None,
	"minimal": COMM_Minimal,
	"full":    COMM_Full,
}

func NewCommLevel(label string) (cl COMM_LEVEL, err error) {
	var ok bool
	if len(label) == 0 {
		return COMM_Full, nil
	}
	if cl, ok = CommLevelNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown communication level [%s]", label)
	}
	return
}

type FLOW_REGIME uint8

const (
	Compressible FLOW_REGIME = iota
	Incompressible
)

var FlowRegimeNameMap = map[string]FLOW_REGIME{
	"compressible":   Compressible,
	"incompressible": Incompressible,
}

func NewFlowRegime(label string) (fr FLOW_REGIME, err error) {
	var ok bool
	if len(label) == 0 {
		return Compressible, nil
	}
	if fr, ok = FlowRegimeNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown flow regime [%s]", label)
	}
	return
}
