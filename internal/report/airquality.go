package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"weather-aqi-agent/internal/owm"
)

// Component is one pollutant concentration in μg/m³. Value keeps the number
// literal exactly as the API sent it.
type Component struct {
	Name  string      `json:"name"`
	Value json.Number `json:"value"`
}

// AirQuality is what the report reads from list[0] of a pollution body.
type AirQuality struct {
	AQI        int
	ObservedAt time.Time
	// Components keeps the order of the response body.
	Components []Component
}

// ExtractAirQuality reads list[0].main.aqi, list[0].dt and
// list[0].components from rec. Any missing key, short list or wrongly typed
// value is an error naming the offending path.
func ExtractAirQuality(rec owm.PollutionRecord) (AirQuality, error) {
	list, err := objectField(rec.Body, "body", "list")
	if err != nil {
		return AirQuality{}, err
	}
	first, err := arrayElem(list, "list", 0)
	if err != nil {
		return AirQuality{}, err
	}
	mainObj, err := objectField(first, "list[0]", "main")
	if err != nil {
		return AirQuality{}, err
	}
	aqiRaw, err := objectField(mainObj, "list[0].main", "aqi")
	if err != nil {
		return AirQuality{}, err
	}
	aqi, err := asInt(aqiRaw, "list[0].main.aqi")
	if err != nil {
		return AirQuality{}, err
	}
	dtRaw, err := objectField(first, "list[0]", "dt")
	if err != nil {
		return AirQuality{}, err
	}
	observedAt, err := asEpoch(dtRaw, "list[0].dt")
	if err != nil {
		return AirQuality{}, err
	}
	compRaw, err := objectField(first, "list[0]", "components")
	if err != nil {
		return AirQuality{}, err
	}
	components, err := orderedComponents(compRaw, "list[0].components")
	if err != nil {
		return AirQuality{}, err
	}

	return AirQuality{AQI: aqi, ObservedAt: observedAt, Components: components}, nil
}

func objectField(raw json.RawMessage, path, key string) (json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil, fmt.Errorf("%s is not an object", path)
	}
	v, ok := obj[key]
	if !ok {
		return nil, fmt.Errorf("missing key %q in %s", key, path)
	}
	return v, nil
}

func arrayElem(raw json.RawMessage, path string, i int) (json.RawMessage, error) {
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil || arr == nil {
		return nil, fmt.Errorf("%s is not a list", path)
	}
	if i >= len(arr) {
		return nil, fmt.Errorf("%s index %d out of range (length %d)", path, i, len(arr))
	}
	return arr[i], nil
}

func asNumber(raw json.RawMessage, path string) (json.Number, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	n, ok := v.(json.Number)
	if !ok {
		return "", fmt.Errorf("%s is %s, want number", path, jsonType(v))
	}
	return n, nil
}

func asInt(raw json.RawMessage, path string) (int, error) {
	n, err := asNumber(raw, path)
	if err != nil {
		return 0, err
	}
	i, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("%s is %s, want integer", path, n)
	}
	return int(i), nil
}

func asEpoch(raw json.RawMessage, path string) (time.Time, error) {
	n, err := asNumber(raw, path)
	if err != nil {
		return time.Time{}, err
	}
	if i, err := n.Int64(); err == nil {
		return time.Unix(i, 0).UTC(), nil
	}
	f, err := n.Float64()
	if err != nil {
		return time.Time{}, fmt.Errorf("%s is %s, want epoch seconds", path, n)
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(), nil
}

// orderedComponents walks the components object token by token; decoding
// into a map would lose the pollutant order.
func orderedComponents(raw json.RawMessage, path string) ([]Component, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("%s is not an object", path)
	}

	var out []Component
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		name, _ := keyTok.(string)

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%s[%q]: %w", path, name, err)
		}
		n, ok := v.(json.Number)
		if !ok {
			return nil, fmt.Errorf("%s[%q] is %s, want number", path, name, jsonType(v))
		}
		out = append(out, Component{Name: name, Value: n})
	}
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return out, nil
}

func jsonType(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case []any:
		return "list"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
