// services/config/decode.go
package config

import (
	"telemetrykit-go/types"
)

// Hand decoders for the JSON sections, shared by the services. tinyjson (and
// encoding/json on the host) both surface objects as map[string]any with
// float64 numbers; missing keys keep the struct's zero value.

func section(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

func num(m map[string]any, k string) int {
	if f, ok := m[k].(float64); ok {
		return int(f)
	}
	return 0
}

func str(m map[string]any, k string) string {
	s, _ := m[k].(string)
	return s
}

func flag(m map[string]any, k string) bool {
	b, _ := m[k].(bool)
	return b
}

func DecodeIndicator(v any) (types.IndicatorConfig, bool) {
	m, ok := section(v)
	if !ok {
		return types.IndicatorConfig{}, false
	}
	return types.IndicatorConfig{
		Profile:    str(m, "profile"),
		PixelPin:   num(m, "pixel_pin"),
		PixelCount: num(m, "pixel_count"),
		Brightness: uint8(num(m, "brightness")),
		SpeakerPin: num(m, "speaker_pin"),
	}, true
}

func DecodeTelemetry(v any) (types.TelemetryConfig, bool) {
	m, ok := section(v)
	if !ok {
		return types.TelemetryConfig{}, false
	}
	return types.TelemetryConfig{
		EnvSensor:  str(m, "env_sensor"),
		EnvBus:     str(m, "env_bus"),
		PollMS:     num(m, "poll_ms"),
		GNSSUART:   str(m, "gnss_uart"),
		GNSSBaud:   num(m, "gnss_baud"),
		RequireFix: flag(m, "require_fix"),
		FreshMaxMS: num(m, "fresh_max_ms"),
	}, true
}

func DecodeUplink(v any) (types.UplinkConfig, bool) {
	m, ok := section(v)
	if !ok {
		return types.UplinkConfig{}, false
	}
	return types.UplinkConfig{
		Transport: str(m, "transport"),
		UART:      str(m, "uart"),
		Baud:      num(m, "baud"),
		RetryMS:   num(m, "retry_ms"),
	}, true
}

func DecodeWatchdog(v any) (types.WatchdogConfig, bool) {
	m, ok := section(v)
	if !ok {
		return types.WatchdogConfig{}, false
	}
	return types.WatchdogConfig{
		TimeoutMS: num(m, "timeout_ms"),
	}, true
}
