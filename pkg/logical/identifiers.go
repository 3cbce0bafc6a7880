package logical

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Data source type identifiers.
var (
	DataSourceTypeMeasure   = uuid.MustParse("e6b51730-f747-11cf-9d89-0080c72e70a3")
	DataSourceTypeManual    = uuid.MustParse("e6b51731-f747-11cf-9d89-0080c72e70a3")
	DataSourceTypeSimulate  = uuid.MustParse("e6b51732-f747-11cf-9d89-0080c72e70a3")
	DataSourceTypeBenchmark = uuid.MustParse("e6b51733-f747-11cf-9d89-0080c72e70a3")
	DataSourceTypeDebug     = uuid.MustParse("e6b51734-f747-11cf-9d89-0080c72e70a3")
)

// Value type identifiers, naming the role of a series within its channel.
var (
	ValueTypeVal      = uuid.MustParse("67f6af97-f753-11cf-9d89-0080c72e70a3")
	ValueTypeTime     = uuid.MustParse("c690e862-f755-11cf-b8ea-0080c72e70a3")
	ValueTypeMax      = uuid.MustParse("67f6af98-f753-11cf-9d89-0080c72e70a3")
	ValueTypeMin      = uuid.MustParse("67f6af99-f753-11cf-9d89-0080c72e70a3")
	ValueTypeAvg      = uuid.MustParse("67f6af9a-f753-11cf-9d89-0080c72e70a3")
	ValueTypeInst     = uuid.MustParse("67f6af9b-f753-11cf-9d89-0080c72e70a3")
	ValueTypeDuration = uuid.MustParse("67f6af9c-f753-11cf-9d89-0080c72e70a3")
)

// Quantity type identifiers.
var (
	QuantityTypeWaveform  = uuid.MustParse("67f6af80-f753-11cf-9d89-0080c72e70a3")
	QuantityTypePhasor    = uuid.MustParse("67f6af81-f753-11cf-9d89-0080c72e70a3")
	QuantityTypeValueLog  = uuid.MustParse("67f6af82-f753-11cf-9d89-0080c72e70a3")
	QuantityTypeResponse  = uuid.MustParse("67f6af83-f753-11cf-9d89-0080c72e70a3")
	QuantityTypeFlash     = uuid.MustParse("67f6af84-f753-11cf-9d89-0080c72e70a3")
	QuantityTypeHistogram = uuid.MustParse("67f6af85-f753-11cf-9d89-0080c72e70a3")
)

// Quantity characteristic identifiers.
var (
	CharacteristicNone          = uuid.MustParse("a6b31ff0-dbb5-11d0-8d4a-0080c72e70a3")
	CharacteristicInstantaneous = uuid.MustParse("a6b31ff1-dbb5-11d0-8d4a-0080c72e70a3")
	CharacteristicRMS           = uuid.MustParse("a6b31ff2-dbb5-11d0-8d4a-0080c72e70a3")
	CharacteristicPeak          = uuid.MustParse("a6b31ff3-dbb5-11d0-8d4a-0080c72e70a3")
	CharacteristicFrequency     = uuid.MustParse("a6b31ff4-dbb5-11d0-8d4a-0080c72e70a3")
	CharacteristicTHD           = uuid.MustParse("a6b31ff5-dbb5-11d0-8d4a-0080c72e70a3")
)

var identifierNames = map[uuid.UUID]string{
	DataSourceTypeMeasure:   "Measure",
	DataSourceTypeManual:    "Manual",
	DataSourceTypeSimulate:  "Simulate",
	DataSourceTypeBenchmark: "Benchmark",
	DataSourceTypeDebug:     "Debug",

	ValueTypeVal:      "Val",
	ValueTypeTime:     "Time",
	ValueTypeMax:      "Max",
	ValueTypeMin:      "Min",
	ValueTypeAvg:      "Avg",
	ValueTypeInst:     "Inst",
	ValueTypeDuration: "Duration",

	QuantityTypeWaveform:  "Waveform",
	QuantityTypePhasor:    "Phasor",
	QuantityTypeValueLog:  "ValueLog",
	QuantityTypeResponse:  "Response",
	QuantityTypeFlash:     "Flash",
	QuantityTypeHistogram: "Histogram",

	CharacteristicNone:          "None",
	CharacteristicInstantaneous: "Instantaneous",
	CharacteristicRMS:           "RMS",
	CharacteristicPeak:          "Peak",
	CharacteristicFrequency:     "Frequency",
	CharacteristicTHD:           "THD",
}

// IdentifierName returns the short name of a well-known identifier, or its
// string form.
func IdentifierName(id uuid.UUID) string {
	if name, ok := identifierNames[id]; ok {
		return name
	}
	return id.String()
}

// Phase identifies which conductors a channel measures.
type Phase uint32

const (
	PhaseNone Phase = iota
	PhaseAN
	PhaseBN
	PhaseCN
	PhaseNG
	PhaseAB
	PhaseBC
	PhaseCA
	PhaseResidual
	PhaseNet
	PhasePlusSequence
	PhaseMinusSequence
	PhaseZeroSequence
	PhaseTotal
	PhaseLineToNeutralAverage
	PhaseLineToLineAverage
	PhaseWorst
)

var phaseNames = [...]string{
	"None", "AN", "BN", "CN", "NG", "AB", "BC", "CA", "Residual", "Net",
	"PlusSequence", "MinusSequence", "ZeroSequence", "Total",
	"LineToNeutralAverage", "LineToLineAverage", "Worst",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Phase(%d)", uint32(p))
}

// QuantityMeasured identifies the physical quantity of a channel.
type QuantityMeasured uint32

const (
	QuantityMeasuredNone QuantityMeasured = iota
	QuantityMeasuredVoltage
	QuantityMeasuredCurrent
	QuantityMeasuredPower
	QuantityMeasuredEnergy
	QuantityMeasuredTemperature
	QuantityMeasuredPressure
	QuantityMeasuredCharge
	QuantityMeasuredElectricalField
	QuantityMeasuredMagneticField
	QuantityMeasuredVelocity
	QuantityMeasuredBearing
	QuantityMeasuredForce
	QuantityMeasuredTorque
	QuantityMeasuredPosition
	QuantityMeasuredFluxLinkage
	QuantityMeasuredFluxDensity
	QuantityMeasuredStatus
)

var quantityMeasuredNames = [...]string{
	"None", "Voltage", "Current", "Power", "Energy", "Temperature", "Pressure",
	"Charge", "ElectricalField", "MagneticField", "Velocity", "Bearing", "Force",
	"Torque", "Position", "FluxLinkage", "FluxDensity", "Status",
}

func (q QuantityMeasured) String() string {
	if int(q) < len(quantityMeasuredNames) {
		return quantityMeasuredNames[q]
	}
	return fmt.Sprintf("QuantityMeasured(%d)", uint32(q))
}

// QuantityUnits identifies the unit of a series' values.
type QuantityUnits uint32

const (
	UnitsNone         QuantityUnits = 0
	UnitsTimestamp    QuantityUnits = 1
	UnitsSeconds      QuantityUnits = 2
	UnitsCycles       QuantityUnits = 3
	UnitsVolts        QuantityUnits = 5
	UnitsAmps         QuantityUnits = 6
	UnitsVoltAmps     QuantityUnits = 7
	UnitsWatts        QuantityUnits = 8
	UnitsVars         QuantityUnits = 9
	UnitsOhms         QuantityUnits = 10
	UnitsSiemens      QuantityUnits = 11
	UnitsVoltsPerAmp  QuantityUnits = 12
	UnitsJoules       QuantityUnits = 13
	UnitsHertz        QuantityUnits = 14
	UnitsCelsius      QuantityUnits = 15
	UnitsDegrees      QuantityUnits = 16
	UnitsDecibels     QuantityUnits = 17
	UnitsPercent      QuantityUnits = 18
	UnitsPerUnit      QuantityUnits = 19
	UnitsSamples      QuantityUnits = 20
	UnitsVarHours     QuantityUnits = 21
	UnitsWattHours    QuantityUnits = 22
	UnitsVoltAmpHours QuantityUnits = 23
)

var unitNames = map[QuantityUnits]string{
	UnitsNone:         "None",
	UnitsTimestamp:    "Timestamp",
	UnitsSeconds:      "Seconds",
	UnitsCycles:       "Cycles",
	UnitsVolts:        "Volts",
	UnitsAmps:         "Amps",
	UnitsVoltAmps:     "VoltAmps",
	UnitsWatts:        "Watts",
	UnitsVars:         "Vars",
	UnitsOhms:         "Ohms",
	UnitsSiemens:      "Siemens",
	UnitsVoltsPerAmp:  "VoltsPerAmp",
	UnitsJoules:       "Joules",
	UnitsHertz:        "Hertz",
	UnitsCelsius:      "Celsius",
	UnitsDegrees:      "Degrees",
	UnitsDecibels:     "Decibels",
	UnitsPercent:      "Percent",
	UnitsPerUnit:      "PerUnit",
	UnitsSamples:      "Samples",
	UnitsVarHours:     "VarHours",
	UnitsWattHours:    "WattHours",
	UnitsVoltAmpHours: "VoltAmpHours",
}

func (u QuantityUnits) String() string {
	if name, ok := unitNames[u]; ok {
		return name
	}
	return fmt.Sprintf("QuantityUnits(%d)", uint32(u))
}

// StorageMethods is the flag set selecting how series values are encoded.
// Flags combine freely.
type StorageMethods uint32

const (
	StorageMethodValues    StorageMethods = 1
	StorageMethodScaled    StorageMethods = 2
	StorageMethodIncrement StorageMethods = 4
)

// Has reports whether every flag in f is set.
func (s StorageMethods) Has(f StorageMethods) bool {
	return s&f == f
}

func (s StorageMethods) String() string {
	var parts []string
	if s.Has(StorageMethodValues) {
		parts = append(parts, "Values")
	}
	if s.Has(StorageMethodScaled) {
		parts = append(parts, "Scaled")
	}
	if s.Has(StorageMethodIncrement) {
		parts = append(parts, "Increment")
	}
	if rest := s &^ (StorageMethodValues | StorageMethodScaled | StorageMethodIncrement); rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, "|")
}

// TriggerMethod identifies what started an observation.
type TriggerMethod uint32

const (
	TriggerMethodNone TriggerMethod = iota
	TriggerMethodChannel
	TriggerMethodPeriodic
	TriggerMethodExternal
	TriggerMethodPeriodicStats
)

func (t TriggerMethod) String() string {
	switch t {
	case TriggerMethodNone:
		return "None"
	case TriggerMethodChannel:
		return "Channel"
	case TriggerMethodPeriodic:
		return "Periodic"
	case TriggerMethodExternal:
		return "External"
	case TriggerMethodPeriodicStats:
		return "PeriodicStats"
	default:
		return fmt.Sprintf("TriggerMethod(%d)", uint32(t))
	}
}
