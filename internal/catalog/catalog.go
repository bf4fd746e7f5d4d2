// internal/catalog/catalog.go
package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Variant is an analyzer product family.
type Variant int

const (
	EEA Variant = iota + 1
	Razor
)

func (v Variant) String() string {
	switch v {
	case EEA:
		return "eea"
	case Razor:
		return "razor"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

func ParseVariant(s string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "eea":
		return EEA, nil
	case "razor", "raz":
		return Razor, nil
	default:
		return 0, fmt.Errorf("catalog: unknown variant %q", s)
	}
}

// TemplateFile is the empty catalog shipped for v.
func TemplateFile(v Variant) string {
	return v.String() + ".csv"
}

// MaxPipe is the number of pipes one installation addresses.
const MaxPipe = 18

const (
	baseAddress = 1
	stride      = 2
)

// common is the field order shared by both families. Field i lives at
// baseAddress + stride*i.
var common = []string{
	"SN_PIPE", "WATERCUT", "TEMPERATURE", "EMULSION_PHASE", "SALINITY",
	"HARDWARE_VERSION", "FIRMWARE_VERSION", "OIL_ADJUST", "WATER_ADJUST", "FREQ",
	"FREQ_AVG", "WATERCUT_AVG", "WATERCUT_RAW", "ANALYZER_MODE", "TEMP_AVG",
	"TEMP_ADJUST", "TEMP_USER", "PROC_AVGING", "OIL_INDEX", "OIL_P0",
	"OIL_P1", "OIL_FREQ_LOW", "OIL_FREQ_HIGH", "SAMPLE_PERIOD", "AO_LRV",
	"AO_URV", "AO_DAMPEN", "BAUD_RATE", "SLAVE_ADDRESS", "STOP_BITS",
	"OIL_RP", "WATER_RP", "DENSITY_MODE", "OIL_CALC_MAX", "OIL_PHASE_CUTOFF",
	"TEMP_OIL_NUM_CURVES", "STREAM", "OIL_RP_AVG", "PLACE_HOLDER", "OIL_SAMPLE",
	"RTC_SEC", "RTC_MIN", "RTC_HR", "RTC_DAY", "RTC_MON",
	"RTC_YR", "RTC_SEC_IN", "RTC_MIN_IN", "RTC_HR_IN", "RTC_DAY_IN",
	"RTC_MON_IN", "RTC_YR_IN", "AO_MANUAL_VAL", "AO_TRIMLO", "AO_TRIMHI",
	"DENSITY_ADJ", "DENSITY_UNIT", "WC_ADJ_DENS", "DENSITY_D3", "DENSITY_D2",
	"DENSITY_D1", "DENSITY_D0", "DENSITY_CAL_VAL", "MODEL_CODE_0", "MODEL_CODE_1",
	"MODEL_CODE_2", "MODEL_CODE_3", "LOGGING_PERIOD", "PASSWORD", "STATISTICS",
	"ACTIVE_ERROR", "AO_ALARM_MODE", "AO_OUTPUT", "PHASE_HOLD_CYCLES", "RELAY_DELAY",
	"RELAY_SETPOINT", "AO_MODE", "OIL_DENSITY", "OIL_DENSITY_MODBUS", "OIL_DENSITY_AI",
	"OIL_DENSITY_MANUAL", "OIL_DENSITY_AI_LRV", "OIL_DENSITY_AI_URV", "OIL_DENS_CORR_MODE", "AI_TRIMLO",
	"AI_TRIMHI", "AI_MEASURE", "AI_TRIMMED",
}

// tables maps each variant to its name -> address index.
var tables = map[Variant]map[string]uint16{
	EEA:   index(common),
	Razor: index(common),
}

func index(names []string) map[string]uint16 {
	out := make(map[string]uint16, len(names))
	for i, n := range names {
		out[n] = uint16(baseAddress + stride*i)
	}
	return out
}

// AddressFor returns the displayed register address of name on v.
func AddressFor(v Variant, name string) (uint16, error) {
	t, ok := tables[v]
	if !ok {
		return 0, fmt.Errorf("catalog: unknown variant %d", int(v))
	}
	addr, ok := t[strings.ToUpper(name)]
	if !ok {
		return 0, fmt.Errorf("catalog: %s has no parameter %q", v, name)
	}
	return addr, nil
}

// Address resolves name for one pipe. Every pipe shares the layout; the
// index only has to be in range.
func Address(v Variant, pipe int, name string) (uint16, error) {
	if pipe < 0 || pipe >= MaxPipe {
		return 0, fmt.Errorf("catalog: pipe %d out of range 0..%d", pipe, MaxPipe-1)
	}
	return AddressFor(v, name)
}

// Names lists the parameters of v alphabetically.
func Names(v Variant) []string {
	names := maps.Keys(tables[v])
	slices.Sort(names)
	return names
}
