package InputParameters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/spf13/cast"
	"go.uber.org/multierr"

	"github.com/notargets/gorans/types"
)

// StreamwisePeriodic holds the data of a streamwise periodic heat transfer case
type StreamwisePeriodic struct {
	Translation        [3]float64 `json:"Translation"`
	IntegratedHeatFlow float64    `json:"IntegratedHeatFlow"`
	MassFlow           float64    `json:"MassFlow"`
	Temperature        bool       `json:"Temperature"`
}

// Parameters obtained from the YAML input file
type RANSParameters struct {
	Title           string `json:"Title"`
	FlowRegime      string `json:"FlowRegime"`
	TurbulenceModel string `json:"TurbulenceModel"`
	Explicit        bool   `json:"Explicit"`
	// Gas model
	Gamma       float64 `json:"Gamma"`
	GasConstant float64 `json:"GasConstant"`
	PrandtlLam  float64 `json:"PrandtlLam"`
	PrandtlTurb float64 `json:"PrandtlTurb"`
	Sutherland  bool    `json:"Sutherland"`
	// Incompressible flow may run without its energy equation
	NoEnergyEquation bool `json:"NoEnergyEquation"`
	// Freestream
	VelocityInf         [3]float64 `json:"FreestreamVelocity"`
	PressureInf         float64    `json:"FreestreamPressure"`
	TemperatureInf      float64    `json:"FreestreamTemperature"`
	ViscosityInf        float64    `json:"FreestreamViscosity"`
	DensityInf          float64    `json:"FreestreamDensity"`
	TurbulenceIntensity float64    `json:"TurbulenceIntensity"`
	TurbViscRatio       float64    `json:"TurbViscRatio"`
	// Non-dimensionalization
	TemperatureRef float64 `json:"TemperatureRef"`
	HeatFluxRef    float64 `json:"HeatFluxRef"`
	ViscosityRef   float64 `json:"ViscosityRef"`
	// Wall model
	WallModelKappa   float64 `json:"WallModelKappa"`
	WallModelB       float64 `json:"WallModelB"`
	WallModelMaxIter int     `json:"WallModelMaxIter"`
	WallModelRelax   float64 `json:"WallModelRelax"`
	WallModelMinYPl  float64 `json:"WallModelMinYPlus"`
	// Options
	CommLevel         string  `json:"CommLevel"`
	DynamicGrid       bool    `json:"DynamicGrid"`
	Axisymmetric      bool    `json:"Axisymmetric"`
	RotatingFrame     bool    `json:"RotatingFrame"`
	SAStrainMagnitude bool    `json:"SAStrainMagnitude"`
	SSTAmbientK       float64 `json:"SSTAmbientK"`
	SSTAmbientOmega   float64 `json:"SSTAmbientOmega"`
	// Buffet monitoring
	BuffetK      float64 `json:"BuffetK"`
	BuffetLambda float64 `json:"BuffetLambda"`
	RefArea      float64 `json:"RefArea"`
	// Conjugate heat transfer
	CHTCoupling string `json:"CHTCoupling"`
	// Markers is keyed by the mesh marker tag, the second key is the parameter name
	Markers            map[string]map[string]interface{} `json:"Markers"`
	StreamwisePeriodic *StreamwisePeriodic               `json:"StreamwisePeriodic"`
	// Turbulence is held at freestream values where coord.unit(V_inf) < FixedTurbulenceMaxProj
	FixedTurbulence        bool    `json:"FixedTurbulence"`
	FixedTurbulenceMaxProj float64 `json:"FixedTurbulenceMaxScalarProd"`
	ProcLimit              int     `json:"ProcLimit"`
}

// MarkerParameters is the typed form of one entry of RANSParameters.Markers
type MarkerParameters struct {
	Tag             string
	Kind            types.BCKIND
	HeatFlux        float64
	Temperature     float64
	HTC, TInfinity  float64
	WallFunction    types.WALL_FUNCTION
	Monitoring      bool
	ObjectiveWeight float64
	// Conjugate side temperature and heat flux factor used by CHT interfaces
	ConjugateTemperature, ConjugateHFFactor float64
}

func NewRANSParameters() (ip *RANSParameters) {
	ip = &RANSParameters{}
	ip.SetDefaults()
	ip.setDensityInf()
	return
}

// Parse reads the deck over the standard values, a key given in the deck wins even when it is zero
func (ip *RANSParameters) Parse(data []byte) (err error) {
	*ip = RANSParameters{}
	ip.SetDefaults()
	if err = yaml.Unmarshal(data, ip); err != nil {
		return
	}
	ip.setDensityInf()
	return
}

// SetDefaults resets every defaulted scalar to its standard value
func (ip *RANSParameters) SetDefaults() {
	ip.Gamma = 1.4
	ip.GasConstant = 287.058
	ip.PrandtlLam = 0.72
	ip.PrandtlTurb = 0.9
	ip.PressureInf = 101325.
	ip.TemperatureInf = 288.15
	ip.ViscosityInf = 1.853e-5
	ip.TurbulenceIntensity = 0.05
	ip.TurbViscRatio = 10
	ip.TemperatureRef = 1
	ip.HeatFluxRef = 1
	ip.ViscosityRef = 1
	ip.WallModelKappa = 0.41
	ip.WallModelB = 5.0
	ip.WallModelRelax = 0.5
	ip.WallModelMinYPl = 5
	ip.WallModelMaxIter = 200
	ip.BuffetK = 10
	ip.RefArea = 1
}

// setDensityInf derives the freestream density from the equation of state unless the deck gives it
func (ip *RANSParameters) setDensityInf() {
	if ip.DensityInf == 0 && ip.GasConstant*ip.TemperatureInf != 0 {
		ip.DensityInf = ip.PressureInf / (ip.GasConstant * ip.TemperatureInf)
	}
}

// Cp is the specific heat at constant pressure of the ideal gas
func (ip *RANSParameters) Cp() float64 {
	return ip.Gamma / (ip.Gamma - 1) * ip.GasConstant
}

// MarkerTags returns the configured marker tags in sorted order
func (ip *RANSParameters) MarkerTags() (keys []string) {
	keys = make([]string, 0, len(ip.Markers))
	for k := range ip.Markers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return
}

func lookup(m map[string]interface{}, key string) (val interface{}, ok bool) {
	for k, v := range m {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return nil, false
}

// GetMarker converts the loosely typed marker entry into MarkerParameters
func (ip *RANSParameters) GetMarker(tag string) (mp MarkerParameters, err error) {
	m, ok := ip.Markers[tag]
	if !ok {
		err = fmt.Errorf("marker [%s] not present in input", tag)
		return
	}
	mp.Tag = tag
	mp.ObjectiveWeight = 1
	var v interface{}
	if v, ok = lookup(m, "Kind"); !ok {
		err = fmt.Errorf("marker [%s]: missing Kind", tag)
		return
	}
	if mp.Kind, err = types.NewBCKind(cast.ToString(v)); err != nil {
		err = fmt.Errorf("marker [%s]: %w", tag, err)
		return
	}
	floatFields := []struct {
		name string
		dst  *float64
	}{
		{"HeatFlux", &mp.HeatFlux},
		{"Temperature", &mp.Temperature},
		{"HTC", &mp.HTC},
		{"TInfinity", &mp.TInfinity},
		{"ObjectiveWeight", &mp.ObjectiveWeight},
		{"ConjugateTemperature", &mp.ConjugateTemperature},
		{"ConjugateHFFactor", &mp.ConjugateHFFactor},
	}
	for _, f := range floatFields {
		if v, ok = lookup(m, f.name); ok {
			var fv float64
			if fv, err = cast.ToFloat64E(v); err != nil {
				err = fmt.Errorf("marker [%s] field %s: %w", tag, f.name, err)
				return
			}
			*f.dst = fv
		}
	}
	if v, ok = lookup(m, "Monitoring"); ok {
		if mp.Monitoring, err = cast.ToBoolE(v); err != nil {
			err = fmt.Errorf("marker [%s] field Monitoring: %w", tag, err)
			return
		}
	}
	if v, ok = lookup(m, "WallFunction"); ok {
		if mp.WallFunction, err = types.NewWallFunction(cast.ToString(v)); err != nil {
			err = fmt.Errorf("marker [%s]: %w", tag, err)
			return
		}
	}
	return
}

// Validate reports every configuration error found in the deck
func (ip *RANSParameters) Validate() (err error) {
	if _, e := types.NewFlowRegime(ip.FlowRegime); e != nil {
		err = multierr.Append(err, e)
	}
	if _, e := types.NewTurbModel(ip.TurbulenceModel); e != nil {
		err = multierr.Append(err, e)
	}
	if _, e := types.NewCHTCoupling(ip.CHTCoupling); e != nil {
		err = multierr.Append(err, e)
	}
	if _, e := types.NewCommLevel(ip.CommLevel); e != nil {
		err = multierr.Append(err, e)
	}
	if ip.Gamma <= 1 {
		err = multierr.Append(err, fmt.Errorf("gamma must be > 1, have %g", ip.Gamma))
	}
	if ip.GasConstant <= 0 || ip.PrandtlLam <= 0 || ip.PrandtlTurb <= 0 {
		err = multierr.Append(err, fmt.Errorf("gas constant and Prandtl numbers must be positive"))
	}
	if ip.TemperatureRef <= 0 || ip.HeatFluxRef <= 0 || ip.ViscosityRef <= 0 || ip.RefArea <= 0 {
		err = multierr.Append(err, fmt.Errorf("reference values and RefArea must be positive"))
	}
	if ip.WallModelMaxIter < 1 || ip.WallModelRelax <= 0 || ip.WallModelRelax > 1 {
		err = multierr.Append(err, fmt.Errorf("wall model needs MaxIter >= 1 and 0 < Relax <= 1, have %d, %g",
			ip.WallModelMaxIter, ip.WallModelRelax))
	}
	regime, _ := types.NewFlowRegime(ip.FlowRegime)
	for _, tag := range ip.MarkerTags() {
		mp, e := ip.GetMarker(tag)
		if e != nil {
			err = multierr.Append(err, e)
			continue
		}
		switch mp.Kind {
		case types.BC_Isothermal:
			if mp.Temperature <= 0 {
				err = multierr.Append(err, fmt.Errorf("marker [%s]: isothermal wall needs Temperature > 0", tag))
			}
		case types.BC_HeatTransfer:
			if mp.HTC < 0 {
				err = multierr.Append(err, fmt.Errorf("marker [%s]: HTC must be >= 0", tag))
			}
			if regime == types.Incompressible {
				err = multierr.Append(err, fmt.Errorf("marker [%s]: heat transfer walls are compressible only", tag))
			}
		}
		if mp.WallFunction != types.WF_None {
			if mp.WallFunction != types.WF_Standard {
				err = multierr.Append(err, fmt.Errorf("marker [%s]: wall function treatment not implemented", tag))
			} else if regime == types.Incompressible {
				err = multierr.Append(err, fmt.Errorf("marker [%s]: wall function treatment not implemented for incompressible flow", tag))
			} else if !mp.Kind.IsViscousWall() {
				err = multierr.Append(err, fmt.Errorf("marker [%s]: wall function on a non viscous wall", tag))
			}
		}
	}
	if model, _ := types.NewTurbModel(ip.TurbulenceModel); ip.FixedTurbulence && !model.IsSST() {
		err = multierr.Append(err, fmt.Errorf("fixed turbulence values need an SST model, have %s", model))
	}
	if ip.FixedTurbulence && ip.VelocityInf == [3]float64{} {
		err = multierr.Append(err, fmt.Errorf("far-field velocity is zero, cannot fix turbulence quantities to inflow values"))
	}
	if ip.StreamwisePeriodic != nil && ip.StreamwisePeriodic.Temperature && ip.StreamwisePeriodic.MassFlow == 0 {
		err = multierr.Append(err, fmt.Errorf("streamwise periodic temperature needs a non zero MassFlow"))
	}
	return
}

func (ip *RANSParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t\t= Flow Regime\n", ip.FlowRegime)
	fmt.Printf("[%s]\t\t\t= Turbulence Model\n", ip.TurbulenceModel)
	fmt.Printf("%8.5f\t\t= Gamma\n", ip.Gamma)
	fmt.Printf("%8.3f\t\t= Gas Constant\n", ip.GasConstant)
	fmt.Printf("%8.5f, %8.5f\t= Prandtl Lam, Turb\n", ip.PrandtlLam, ip.PrandtlTurb)
	fmt.Printf("%v\t= Freestream Velocity\n", ip.VelocityInf)
	fmt.Printf("%8.5g, %8.5g, %8.5g\t= Freestream P, T, rho\n", ip.PressureInf, ip.TemperatureInf, ip.DensityInf)
	fmt.Printf("%8.5f, %8.5f\t= Wall Model Kappa, B\n", ip.WallModelKappa, ip.WallModelB)
	for _, key := range ip.MarkerTags() {
		fmt.Printf("Markers[%s] = %v\n", key, ip.Markers[key])
	}
}
