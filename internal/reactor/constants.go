package reactor

// Reference operating point.
const (
	NominalTemperature = 270.0 // °C
	NominalPressure    = 7e6   // Pa
)

// Clock defaults and the bounded speed range.
const (
	DefaultDt    = 0.001
	DefaultSpeed = 0.1
	MinSpeed     = 0.1
	MaxSpeed     = 2.0
	SpeedStep    = 0.1
)

// Material properties.
const (
	SpecificHeatWater = 4186.0  // J/kg°C
	SpecificHeatVapor = 1996.0  // J/kg°C
	LatentHeat        = 2257e3  // J/kg
	GasConstant       = 8.314   // J/(mol·K), applied per kg of vapor
	KelvinOffset      = 273.15
	BoilingPoint      = 100.0 // °C
)

// Feedback coefficients.
const (
	xenonWorth       = -0.1
	rodWorth         = -0.1
	fuelTempFeedback = -0.0001
)

// Containment and equipment thresholds.
const (
	breachPressureFactor = 1.5
	breachDecrement      = 10.0
	coolingFailureAfter  = 100.0 // s
	coolingDecayPerTick  = 0.0001
	powerFailureAfter    = 150.0 // s
)

// Poison kinetics rates.
const (
	xenonRate    = 0.1
	iodineRate   = 0.05
	samariumRate = 0.01
)

// Radiation model scales.
const (
	energyPerFissionUnit = 200e6
	radiationScale       = 1e-6
	temperatureSpan      = 1000.0
	pressureSpan         = 1e7
)
