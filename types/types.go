package types

// Shared bus payloads. All values are fixed-point integers so payloads stay
// allocation-light on the MCU and unambiguous over the uplink.

// ------------------------
// Environment readings
// ------------------------

type TemperatureValue struct {
	// Tenths of °C (e.g. 231 => 23.1°C).
	DeciC int16 `json:"deci_c"`
}

type HumidityValue struct {
	// Hundredths of %RH (0..10000 for 0..100.00%).
	RHx100 uint16 `json:"rh_x100"`
}

type PressureValue struct {
	// Tenths of hPa (e.g. 10132 => 1013.2 hPa).
	DecihPa uint32 `json:"deci_hpa"`
}

// ------------------------
// Position
// ------------------------

type PositionValue struct {
	// Microdegrees (e.g. 51_501_364 => 51.501364°).
	LatUDeg int32 `json:"lat_udeg"`
	LonUDeg int32 `json:"lon_udeg"`
	// Metres above sea level.
	AltM int32 `json:"alt_m"`
	// Satellites used in the fix.
	Sats int16 `json:"sats"`
}

// FixState is the retained GNSS fix summary. Position carries the last
// fresh fix and is zero while Valid is false.
type FixState struct {
	Valid    bool          `json:"valid"`
	Position PositionValue `json:"position"`
	TS       int64         `json:"ts_ms"`
}

// ------------------------
// Reading envelope
// ------------------------

// Reading is one datum for one kind, as published on
// "telemetry/reading/<kind>".
type Reading struct {
	Kind    string `json:"kind"` // "temperature", "humidity", "pressure", "position"
	Payload any    `json:"payload"`
	TsMs    int64  `json:"ts_ms"`
}

// ------------------------
// Uplink
// ------------------------

type LinkState string

const (
	LinkUp   LinkState = "up"
	LinkDown LinkState = "down"
)

// UplinkState is retained on "uplink/state".
type UplinkState struct {
	Link  LinkState `json:"link"`
	TS    int64     `json:"ts_ms"`
	Error string    `json:"error,omitempty"`
}

// ------------------------
// Service configuration (topics "config/<service>")
// ------------------------

// IndicatorConfig selects the indicator profile and hardware wiring.
type IndicatorConfig struct {
	Profile    string `json:"profile"` // "vanilla" | "sensory"
	PixelPin   int    `json:"pixel_pin"`
	PixelCount int    `json:"pixel_count"`
	Brightness uint8  `json:"brightness"` // 0..255
	SpeakerPin int    `json:"speaker_pin"`
}

// TelemetryConfig drives the sensor poll / publish loop.
type TelemetryConfig struct {
	EnvSensor  string `json:"env_sensor"` // "bme280" | "sht4x"
	EnvBus     string `json:"env_bus"`    // "i2c0" | "i2c1"
	PollMS     int    `json:"poll_ms"`
	GNSSUART   string `json:"gnss_uart"` // "uart0" | "uart1"
	GNSSBaud   int    `json:"gnss_baud"`
	RequireFix bool   `json:"require_fix"`
	FreshMaxMS int    `json:"fresh_max_ms"`
}

// UplinkConfig configures the framed link off the device.
type UplinkConfig struct {
	Transport string `json:"transport"` // "uart" (device) | "pipe" (tests)
	UART      string `json:"uart,omitempty"`
	Baud      int    `json:"baud,omitempty"`
	RetryMS   int    `json:"retry_ms,omitempty"`
}

// WatchdogConfig arms the hardware watchdog.
type WatchdogConfig struct {
	TimeoutMS int `json:"timeout_ms"`
}
