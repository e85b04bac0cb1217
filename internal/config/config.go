// Package config loads the bridge's .env-style configuration file and
// builds the transport it selects.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/rockcat/slapi-bridge/internal/transport"
	"github.com/rockcat/slapi-bridge/internal/transport/gpio"
	"github.com/rockcat/slapi-bridge/internal/transport/serial"
)

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Mode selects which physical transport the bridge speaks SLAPI over.
type Mode string

const (
	ModeUART    Mode = "uart"
	ModeGPIO4   Mode = "gpio-4bit"
	ModeGPIO8   Mode = "gpio-8bit"
)

// Config is the parsed content of the .env file plus the transport it
// describes, already opened.
type Config struct {
	Mode      Mode
	WifiSSID  string
	WifiPass  string
	Interface string

	MetricsAddr string // empty disables the /metrics endpoint

	Transport transport.Transport
}

// Load reads path (a godotenv-format file: KEY=value, '#' comments, blank
// lines ignored) and opens the transport it selects.
func Load(path string) (*Config, error) {
	env, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := &Config{
		Mode:        Mode(getOr(env, "MODE", string(ModeUART))),
		WifiSSID:    env["SSID"],
		WifiPass:    env["PASSWORD"],
		Interface:   getOr(env, "WIFI_INTERFACE", "wlan0"),
		MetricsAddr: env["METRICS_ADDR"],
	}

	t, err := openTransport(cfg.Mode, env)
	if err != nil {
		return nil, err
	}
	cfg.Transport = t
	return cfg, nil
}

func openTransport(mode Mode, env map[string]string) (transport.Transport, error) {
	switch mode {
	case ModeUART:
		return openUART(env)
	case ModeGPIO4:
		return openGPIO(env, 4)
	case ModeGPIO8:
		return openGPIO(env, 8)
	default:
		return nil, fmt.Errorf("config: unknown MODE %q", mode)
	}
}

func openUART(env map[string]string) (transport.Transport, error) {
	device := getOr(env, "DEVICE", "/dev/ttyS0")
	baud, err := intOr(env, "BAUD", 9600)
	if err != nil {
		return nil, err
	}
	bits, err := intOr(env, "BITS", 8)
	if err != nil {
		return nil, err
	}
	stop, err := intOr(env, "STOP", 1)
	if err != nil {
		return nil, err
	}
	rts, err := intOr(env, "RTS_PIN", 0)
	if err != nil {
		return nil, err
	}
	cts, err := intOr(env, "CTS_PIN", 0)
	if err != nil {
		return nil, err
	}

	opts := transport.Options{
		BaudRate: baud,
		DataBits: bits,
		StopBits: stop,
		RTSPin:   rts,
		CTSPin:   cts,
		Parity:   parseParity(getOr(env, "PARITY", "None")),
	}
	return serial.Open(device, opts)
}

func parseParity(s string) transport.Parity {
	switch strings.ToUpper(s) {
	case "E", "EVEN":
		return transport.ParityEven
	case "O", "ODD":
		return transport.ParityOdd
	default:
		return transport.ParityNone
	}
}

func openGPIO(env map[string]string, width int) (transport.Transport, error) {
	pins := strings.Split(env["DATA_PINS"], ",")
	if len(pins) != width {
		return nil, fmt.Errorf("config: %d-bit GPIO mode requires %d DATA_PINS, got %d", width, width, len(pins))
	}
	for i := range pins {
		pins[i] = strings.TrimSpace(pins[i])
	}

	timeoutMS, err := intOr(env, "TIMEOUT_MS", 0)
	if err != nil {
		return nil, err
	}
	holdMS, err := intOr(env, "MIN_HOLD_TIME_MS", 10)
	if err != nil {
		return nil, err
	}

	cfg := gpio.Config{
		DataPins:    pins,
		ValidPin:    getOr(env, "VALID_PIN", ""),
		AckPin:      getOr(env, "ACK_PIN", ""),
		Timeout:     msDuration(timeoutMS),
		MinHoldTime: msDuration(holdMS),
	}
	if cfg.ValidPin == "" || cfg.AckPin == "" {
		return nil, fmt.Errorf("config: VALID_PIN and ACK_PIN are required for GPIO modes")
	}

	if width == 4 {
		return gpio.NewNibble4(cfg)
	}
	return gpio.NewByte8(cfg)
}

func getOr(env map[string]string, key, def string) string {
	if v, ok := env[key]; ok && v != "" {
		return v
	}
	return def
}

func intOr(env map[string]string, key string, def int) (int, error) {
	v, ok := env[key]
	if !ok || v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer: %w", key, v, err)
	}
	return n, nil
}
