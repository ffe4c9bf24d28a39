package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// Temperature returns the temperature in °C for location. The query form
// of the endpoint is tried first, then the path form; the error of the
// last attempt is returned.
func (c *Client) Temperature(ctx context.Context, location string) (float64, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return 0, &RequestError{Op: "Temperature", Message: "location is required"}
	}

	var raw json.RawMessage
	err := c.do(ctx, "Temperature", http.MethodGet, "/api/weather", url.Values{"location": {location}}, nil, &raw)
	if err != nil {
		raw = nil
		err = c.do(ctx, "Temperature", http.MethodGet, "/api/weather/"+url.PathEscape(location), nil, nil, &raw)
	}
	if err != nil {
		return 0, err
	}

	temp, ok := parseTemperature(raw)
	if !ok {
		return 0, &RequestError{Op: "Temperature", Status: http.StatusOK, Err: ErrInvalidResponse}
	}
	return temp, nil
}

// parseTemperature accepts a bare number or an object carrying
// "temperature" or "temp_c".
func parseTemperature(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return 0, false
	}
	if raw[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(raw, &obj); err != nil {
			return 0, false
		}
		for _, key := range []string{"temperature", "temp_c"} {
			if v, ok := obj[key]; ok {
				if temp, ok := parseNumber(v); ok {
					return temp, true
				}
			}
		}
		return 0, false
	}
	return parseNumber(raw)
}

func parseNumber(raw json.RawMessage) (float64, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, false
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatCelsius renders a temperature the way the weather widget shows it.
func FormatCelsius(temp float64) string {
	return fmt.Sprintf("%s°C", strconv.FormatFloat(temp, 'f', -1, 64))
}
