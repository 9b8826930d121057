// Package parse turns the raw StokerCloud controller payload into a typed
// snapshot. The payload layout is hostile: values live in id-keyed lists
// under several section keys, numbers arrive as strings, and missing sensors
// show up as "N/A" or empty strings.
package parse

import (
	"strconv"
	"strings"
	"time"
)

// Snapshot is one poll of boiler state. Pointer fields are nil when the
// remote did not report the sensor this cycle.
type Snapshot struct {
	Serial string `json:"serial,omitempty"`
	Alias  string `json:"alias,omitempty"`
	Model  string `json:"model,omitempty"`

	BoilerTempC       *float64 `json:"boiler_temp_c,omitempty"`
	WantedBoilerTempC *float64 `json:"wanted_boiler_temp_c,omitempty"`
	SmokeTempC        *float64 `json:"smoke_temp_c,omitempty"`
	PowerKW           *float64 `json:"power_kw,omitempty"`
	PowerPct          *float64 `json:"power_pct,omitempty"`
	PhotoSensorPct    *float64 `json:"photo_sensor_pct,omitempty"`
	OxygenPct         *float64 `json:"oxygen_pct,omitempty"`
	OxygenRefPct      *float64 `json:"oxygen_ref_pct,omitempty"`
	OnlineTimePct     *float64 `json:"online_time_pct,omitempty"`

	HopperContentKG      *float64 `json:"hopper_content_kg,omitempty"`
	AugerCapacityG       *float64 `json:"auger_capacity_g,omitempty"`
	ConsumptionLast24hKG *float64 `json:"consumption_last_24h_kg,omitempty"`
	ConsumptionTotalKG   *float64 `json:"consumption_total_kg,omitempty"`

	DHWTempC       *float64 `json:"dhw_temp_c,omitempty"`
	WantedDHWTempC *float64 `json:"wanted_dhw_temp_c,omitempty"`

	OutdoorTempC *float64 `json:"outdoor_temp_c,omitempty"`
	WindSpeedMS  *float64 `json:"wind_speed_ms,omitempty"`

	PumpOutput string `json:"pump_output,omitempty"`

	ObservedAt time.Time `json:"observed_at"`
}

// Controller builds a Snapshot from the decoded controller payload.
func Controller(data map[string]any, observedAt time.Time) Snapshot {
	return Snapshot{
		Serial: asString(data["serial"]),
		Alias:  asString(data["alias"]),
		Model:  asString(data["model"]),

		BoilerTempC:       asFloat(frontValue(data, "boilertemp")),
		WantedBoilerTempC: asFloat(frontValue(data, "-wantedboilertemp")),
		SmokeTempC:        asFloat(listValue(data, "boilerdata", "3")),
		PowerPct:          asFloat(listValue(data, "boilerdata", "4")),
		PowerKW:           asFloat(listValue(data, "boilerdata", "5")),
		PhotoSensorPct:    asFloat(listValue(data, "boilerdata", "6")),
		OxygenPct:         asFloat(listValue(data, "boilerdata", "12")),
		OxygenRefPct:      asFloat(frontValue(data, "refoxygen")),
		OnlineTimePct:     asFloat(listValue(data, "boilerdata", "9")),

		HopperContentKG:      asFloat(frontValue(data, "hoppercontent")),
		AugerCapacityG:       asFloat(listValue(data, "hopperdata", "2")),
		ConsumptionLast24hKG: asFloat(listValue(data, "hopperdata", "3")),
		ConsumptionTotalKG:   asFloat(listValue(data, "hopperdata", "4")),

		DHWTempC:       asFloat(frontValue(data, "dhw")),
		WantedDHWTempC: asFloat(frontValue(data, "dhwwanted")),

		OutdoorTempC: asFloat(listValue(data, "weatherdata", "1")),
		WindSpeedMS:  asFloat(listValue(data, "weatherdata", "2")),

		PumpOutput: asString(leftOutputValue(data, "output-2")),

		ObservedAt: observedAt,
	}
}

// listValue finds the entry with the wanted id in an id-keyed section list
// (boilerdata, hopperdata, dhwdata, weatherdata) and returns its value.
func listValue(data map[string]any, section, wantedID string) any {
	items, ok := data[section].([]any)
	if !ok {
		return nil
	}
	for _, raw := range items {
		item, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if asString(item["id"]) == wantedID {
			return item["value"]
		}
	}
	return nil
}

// frontValue finds an entry in the frontdata section by id.
func frontValue(data map[string]any, frontID string) any {
	return listValue(data, "frontdata", frontID)
}

// leftOutputValue reads leftoutput.<outputID>.val.
func leftOutputValue(data map[string]any, outputID string) any {
	leftoutput, ok := data["leftoutput"].(map[string]any)
	if !ok {
		return nil
	}
	output, ok := leftoutput[outputID].(map[string]any)
	if !ok {
		return nil
	}
	return output["val"]
}

// asFloat coerces a payload value to a float, treating "", "N/A" and
// non-numeric strings as absent.
func asFloat(value any) *float64 {
	switch v := value.(type) {
	case nil:
		return nil
	case float64:
		return &v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" || trimmed == "N/A" {
			return nil
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func asString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}
