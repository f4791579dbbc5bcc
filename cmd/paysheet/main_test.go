package main

import (
	"strings"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/paysheet/internal/app"
)

func TestReadConfigFromEnv_Defaults(t *testing.T) {
	cfg, warnings := readConfigFromEnv(mapLookup(map[string]string{
		envPayPalClient: "client",
		envPayPalSecret: "secret",
	}))

	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}

	want := app.DefaultConfig()
	want.PayPalClientID = "client"
	want.PayPalClientSecret = "secret"
	if cfg != want {
		t.Fatalf("expected default config, got %#v", cfg)
	}
}

func TestReadConfigFromEnv_MissingCredentialsWarns(t *testing.T) {
	cfg, warnings := readConfigFromEnv(mapLookup(nil))

	if len(warnings) != 1 || !strings.Contains(warnings[0], envPayPalClient) {
		t.Fatalf("expected credentials warning, got %v", warnings)
	}
	if cfg != app.DefaultConfig() {
		t.Fatalf("expected default config, got %#v", cfg)
	}

	_, warnings = readConfigFromEnv(mapLookup(map[string]string{envProcessor: "mock"}))
	if len(warnings) != 0 {
		t.Fatalf("mock processor must not require credentials, got %v", warnings)
	}
}

func TestReadConfigFromEnv_ValidOverrides(t *testing.T) {
	cfg, warnings := readConfigFromEnv(mapLookup(map[string]string{
		envPayPalClient:   " client ",
		envPayPalSecret:   "secret",
		envPayPalBaseURL:  "https://api-m.paypal.com",
		envPayPalTimeout:  "3s",
		envScheme:         "myapp",
		envRedirectPath:   "checkout/done",
		envPublicBaseURL:  "https://lab.example.com",
		envPort:           "8080",
		envMetricsAddr:    "localhost:9191",
		envProcessor:      " MOCK ",
		envCurrency:       "EUR",
		envAmount:         "2.50",
		envStrategiesFile: "/etc/paysheet/strategies.yaml",
		envKafkaBrokers:   "b1:9092,b2:9092",
		envKafkaTopic:     "lab.events",
	}))

	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}

	if cfg.PayPalClientID != "client" {
		t.Fatalf("unexpected client id: %q", cfg.PayPalClientID)
	}
	if cfg.PayPalBaseURL != "https://api-m.paypal.com" {
		t.Fatalf("unexpected base url: %s", cfg.PayPalBaseURL)
	}
	if cfg.PayPalTimeout != 3*time.Second {
		t.Fatalf("unexpected timeout: %s", cfg.PayPalTimeout)
	}
	if cfg.AppLink() != "myapp://checkout/done" {
		t.Fatalf("unexpected app link: %s", cfg.AppLink())
	}
	if cfg.PublicBaseURL != "https://lab.example.com" {
		t.Fatalf("unexpected public base url: %s", cfg.PublicBaseURL)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Fatalf("unexpected http addr: %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != "localhost:9191" {
		t.Fatalf("unexpected metrics addr: %s", cfg.MetricsAddr)
	}
	if cfg.Processor != app.ProcessorMock {
		t.Fatalf("unexpected processor: %s", cfg.Processor)
	}
	if cfg.Currency != "EUR" || cfg.Amount != "2.50" {
		t.Fatalf("unexpected amount: %s %s", cfg.Currency, cfg.Amount)
	}
	if cfg.StrategiesFile != "/etc/paysheet/strategies.yaml" {
		t.Fatalf("unexpected strategies file: %s", cfg.StrategiesFile)
	}
	if len(cfg.Brokers()) != 2 || cfg.KafkaTopic != "lab.events" {
		t.Fatalf("unexpected kafka settings: %q %q", cfg.KafkaBrokers, cfg.KafkaTopic)
	}
}

func TestReadConfigFromEnv_InvalidValuesFallbackToDefaults(t *testing.T) {
	defaultCfg := app.DefaultConfig()

	cfg, warnings := readConfigFromEnv(mapLookup(map[string]string{
		envProcessor:     "mock",
		envPort:          "70000",
		envPayPalTimeout: "-1s",
	}))

	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
	if cfg.HTTPAddr != defaultCfg.HTTPAddr {
		t.Fatal("expected HTTPAddr to keep default on invalid value")
	}
	if cfg.PayPalTimeout != defaultCfg.PayPalTimeout {
		t.Fatal("expected PayPalTimeout to keep default on invalid value")
	}
}

func TestSetupLogger(t *testing.T) {
	t.Cleanup(func() {
		log.SetLevel(log.InfoLevel)
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	})

	warnings := setupLogger(mapLookup(map[string]string{envLogLevel: "debug", envLogJSON: "yes"}))
	if len(warnings) != 0 {
		t.Fatalf("expected no warnings, got %v", warnings)
	}
	if log.GetLevel() != log.DebugLevel {
		t.Fatalf("expected debug level, got %s", log.GetLevel())
	}
	if _, ok := log.StandardLogger().Formatter.(*log.JSONFormatter); !ok {
		t.Fatal("expected JSON formatter")
	}

	warnings = setupLogger(mapLookup(map[string]string{envLogLevel: "loud", envLogJSON: "maybe"}))
	if len(warnings) != 2 {
		t.Fatalf("expected 2 warnings, got %v", warnings)
	}
	if log.GetLevel() != log.InfoLevel {
		t.Fatalf("expected info level fallback, got %s", log.GetLevel())
	}
}

func TestParseBool(t *testing.T) {
	trueValue, err := parseBool(" YES ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !trueValue {
		t.Fatal("expected true result")
	}

	falseValue, err := parseBool("off")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if falseValue {
		t.Fatal("expected false result")
	}

	if _, err := parseBool("sometimes"); err == nil {
		t.Fatal("expected error for invalid bool value")
	}
}

func TestParseInt(t *testing.T) {
	value, err := parseInt(" 12 ", func(v int) bool { return v > 0 }, "must be > 0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 12 {
		t.Fatalf("unexpected value: %d", value)
	}

	if _, err := parseInt("0", func(v int) bool { return v > 0 }, "must be > 0"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestParseDuration(t *testing.T) {
	value, err := parseDuration(" 250ms ", func(v time.Duration) bool { return v >= 0 }, "must be >= 0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if value != 250*time.Millisecond {
		t.Fatalf("unexpected value: %s", value)
	}

	if _, err := parseDuration("-1ms", func(v time.Duration) bool { return v >= 0 }, "must be >= 0"); err == nil {
		t.Fatal("expected validation error")
	}
}

func mapLookup(values map[string]string) envLookup {
	return func(key string) (string, bool) {
		value, ok := values[key]
		return value, ok
	}
}
