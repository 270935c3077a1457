package reactor

// Design holds the constants fixed for a whole run.
type Design struct {
	RatedPower       float64 // W
	CoolantMass      float64 // kg
	Volume           float64 // m³
	FuelEnrichment   float64 // %
	ControlRods      int
	VoidCoefficient  float64
	PowerCoefficient float64
	MaxPressure      float64 // Pa
	MaxTemperature   float64 // °C

	// Arm the time-driven equipment failures.
	EmergencyCoolingEnabled bool
	EmergencyPowerEnabled   bool
}

// Controls are the operator inputs read by the engine on every tick.
type Controls struct {
	RodInsertion float64 // 0 = fully withdrawn, 1 = fully inserted
	Paused       bool
	Speed        float64
}

// CoolingStatus is the emergency core cooling state.
type CoolingStatus int

const (
	CoolingActive CoolingStatus = iota
	CoolingDegrading
	CoolingFailed
)

func (c CoolingStatus) String() string {
	switch c {
	case CoolingActive:
		return "active"
	case CoolingDegrading:
		return "degrading"
	case CoolingFailed:
		return "failed"
	}
	return "unknown"
}

// PowerStatus is the emergency power supply state.
type PowerStatus int

const (
	PowerActive PowerStatus = iota
	PowerFailed
)

func (p PowerStatus) String() string {
	if p == PowerFailed {
		return "failed"
	}
	return "active"
}

// ContainmentStatus is derived from the explosion and running flags.
type ContainmentStatus int

const (
	ContainmentIntact ContainmentStatus = iota
	ContainmentBreaching
	ContainmentCollapsed
)

func (c ContainmentStatus) String() string {
	switch c {
	case ContainmentIntact:
		return "intact"
	case ContainmentBreaching:
		return "breaching"
	case ContainmentCollapsed:
		return "collapsed"
	}
	return "unknown"
}

// State is the single mutable aggregate advanced by the engine.
type State struct {
	Design   Design
	Controls Controls

	ThermalPower  float64 // W
	Temperature   float64 // °C
	Pressure      float64 // Pa
	VaporFraction float64
	SteamQuality  float64
	FlowRate      float64 // kg/s

	Reactivity float64
	Xenon      float64
	Iodine     float64
	Samarium   float64

	CoolingStatus        CoolingStatus
	CoolingEfficiency    float64
	PowerStatus          PowerStatus
	ContainmentIntegrity float64 // %
	ExplosionOccurred    bool
	Running              bool

	FissionProducts float64
	RadiationLevel  float64 // Sv/h
	ReleaseRate     float64 // Sv/h

	Time float64 // simulated seconds
	Dt   float64
	Tick uint64
}

// Snapshot is a read-only copy of State handed to renderers and recorders.
type Snapshot State

// DefaultDesign returns the RBMK-like plant the model is tuned for.
func DefaultDesign() Design {
	return Design{
		RatedPower:              3200e6,
		CoolantMass:             1500,
		Volume:                  150,
		FuelEnrichment:          2.0,
		ControlRods:             211,
		VoidCoefficient:         4.7,
		PowerCoefficient:        -0.1,
		MaxPressure:             8.8e6,
		MaxTemperature:          1000,
		EmergencyCoolingEnabled: true,
		EmergencyPowerEnabled:   true,
	}
}

// NominalState returns the startup state at rated power.
func NominalState() State {
	return State{
		Design: DefaultDesign(),
		Controls: Controls{
			RodInsertion: 0.7,
			Speed:        DefaultSpeed,
		},
		ThermalPower:         3200e6,
		Temperature:          NominalTemperature,
		Pressure:             NominalPressure,
		VaporFraction:        0.2,
		FlowRate:             1000,
		CoolingStatus:        CoolingActive,
		CoolingEfficiency:    0.7,
		PowerStatus:          PowerActive,
		ContainmentIntegrity: 100,
		Running:              true,
		Dt:                   DefaultDt,
	}
}

// Containment reports where the containment state machine currently is.
func (s *State) Containment() ContainmentStatus {
	switch {
	case !s.Running && s.ContainmentIntegrity <= 0:
		return ContainmentCollapsed
	case s.ExplosionOccurred:
		return ContainmentBreaching
	}
	return ContainmentIntact
}

// Snapshot copies the state.
func (s State) Snapshot() Snapshot {
	return Snapshot(s)
}

// Containment reports the containment status at the time of the snapshot.
func (s Snapshot) Containment() ContainmentStatus {
	st := State(s)
	return st.Containment()
}

// Columns names the values returned by Values, in order.
var Columns = []string{
	"power_w", "temperature_c", "pressure_pa", "vapor_fraction", "steam_quality",
	"reactivity", "xenon", "iodine", "samarium", "cooling_efficiency",
	"containment_integrity", "fission_products", "radiation_sv_h", "release_sv_h",
	"rod_insertion",
}

// Values flattens the physical fields of the snapshot for tabular export.
func (s Snapshot) Values() []float64 {
	return []float64{
		s.ThermalPower, s.Temperature, s.Pressure, s.VaporFraction, s.SteamQuality,
		s.Reactivity, s.Xenon, s.Iodine, s.Samarium, s.CoolingEfficiency,
		s.ContainmentIntegrity, s.FissionProducts, s.RadiationLevel, s.ReleaseRate,
		s.Controls.RodInsertion,
	}
}
