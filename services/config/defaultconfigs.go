// services/config/defaultconfigs.go
package config

// -----------------------------------------------------------------------------
// Embedded device profiles
//
// Key: device ID (the value placed in ctx under CtxDeviceKey).
// Val: raw JSON for that kit build. Replace at build time via code
// generation, or edit here during development.
// -----------------------------------------------------------------------------

const cfgKitVanilla = `{
  "indicator": {
    "profile": "vanilla",
    "pixel_pin": 8,
    "pixel_count": 2,
    "brightness": 51,
    "speaker_pin": 9
  },
  "telemetry": {
    "env_sensor": "bme280",
    "env_bus": "i2c0",
    "poll_ms": 2000,
    "gnss_uart": "uart1",
    "gnss_baud": 9600,
    "require_fix": true,
    "fresh_max_ms": 10000
  },
  "uplink": {
    "transport": "uart",
    "uart": "uart0",
    "baud": 115200,
    "retry_ms": 5000
  },
  "watchdog": {
    "timeout_ms": 8000
  }
}`

const cfgKitSensory = `{
  "indicator": {
    "profile": "sensory",
    "pixel_pin": 8,
    "pixel_count": 2,
    "brightness": 51,
    "speaker_pin": 9
  },
  "telemetry": {
    "env_sensor": "sht4x",
    "env_bus": "i2c0",
    "poll_ms": 2000,
    "gnss_uart": "uart1",
    "gnss_baud": 9600,
    "require_fix": false,
    "fresh_max_ms": 10000
  },
  "uplink": {
    "transport": "uart",
    "uart": "uart0",
    "baud": 115200,
    "retry_ms": 5000
  },
  "watchdog": {
    "timeout_ms": 8000
  }
}`

var embeddedConfigs = map[string][]byte{
	"kit-vanilla": []byte(cfgKitVanilla),
	"kit-sensory": []byte(cfgKitSensory),
}
