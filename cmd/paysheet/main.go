package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/paysheet/internal/app"
	"github.com/vladislavdragonenkov/paysheet/internal/version"
)

const (
	envPayPalClient     = "PAYPAL_CLIENT"
	envPayPalSecret     = "PAYPAL_SECRET"
	envPayPalBaseURL    = "PAYPAL_BASE_URL"
	envPayPalSDKURL     = "PAYPAL_SDK_URL"
	envPayPalTimeout    = "PAYPAL_TIMEOUT"
	envScheme           = "SCHEME"
	envRedirectPath     = "REDIRECT_PATH"
	envPublicBaseURL    = "PUBLIC_BASE_URL"
	envPort             = "PORT"
	envMetricsAddr      = "PAYSHEET_METRICS_ADDR"
	envProcessor        = "PAYSHEET_PROCESSOR"
	envCurrency         = "PAYSHEET_CURRENCY"
	envAmount           = "PAYSHEET_AMOUNT"
	envStrategiesFile   = "DEEPLINK_STRATEGIES_FILE"
	envKafkaBrokers     = "KAFKA_BROKERS"
	envKafkaTopic       = "KAFKA_TOPIC"
	envLogLevel         = "LOG_LEVEL"
	envLogJSON          = "LOG_JSON"
	defaultPort         = 3000
	maxPort             = 65535
	defaultLogLevelName = "info"
)

type envLookup func(string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(lookup envLookup) []string {
	var warnings []string

	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if raw, ok := lookupTrimmed(lookup, envLogJSON); ok {
		jsonFormat, err := parseBool(raw)
		switch {
		case err != nil:
			warnings = append(warnings, fmt.Sprintf("%s: %v", envLogJSON, err))
		case jsonFormat:
			log.SetFormatter(&log.JSONFormatter{})
		}
	}

	levelName := defaultLogLevelName
	if raw, ok := lookupTrimmed(lookup, envLogLevel); ok {
		levelName = raw
	}
	level, err := log.ParseLevel(levelName)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("%s: %v, using %s", envLogLevel, err, defaultLogLevelName))
		level = log.InfoLevel
	}
	log.SetLevel(level)

	return warnings
}

// readConfigFromEnv собирает конфигурацию из окружения. Некорректные значения
// не прерывают запуск: остаётся значение по умолчанию, а в warnings попадает причина.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string

	setString := func(key string, target *string) {
		if v, ok := lookupTrimmed(lookup, key); ok {
			*target = v
		}
	}

	setString(envPayPalClient, &cfg.PayPalClientID)
	setString(envPayPalSecret, &cfg.PayPalClientSecret)
	setString(envPayPalBaseURL, &cfg.PayPalBaseURL)
	setString(envPayPalSDKURL, &cfg.PayPalSDKURL)
	setString(envScheme, &cfg.Scheme)
	setString(envRedirectPath, &cfg.RedirectPath)
	setString(envPublicBaseURL, &cfg.PublicBaseURL)
	setString(envMetricsAddr, &cfg.MetricsAddr)
	setString(envCurrency, &cfg.Currency)
	setString(envAmount, &cfg.Amount)
	setString(envStrategiesFile, &cfg.StrategiesFile)
	setString(envKafkaBrokers, &cfg.KafkaBrokers)
	setString(envKafkaTopic, &cfg.KafkaTopic)

	if v, ok := lookupTrimmed(lookup, envProcessor); ok {
		cfg.Processor = strings.ToLower(v)
	}

	if v, ok := lookupTrimmed(lookup, envPort); ok {
		port, err := parseInt(v, func(p int) bool { return p > 0 && p <= maxPort }, fmt.Sprintf("must be in 1..%d", maxPort))
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v, using %d", envPort, err, defaultPort))
		} else {
			cfg.HTTPAddr = ":" + strconv.Itoa(port)
		}
	}

	if v, ok := lookupTrimmed(lookup, envPayPalTimeout); ok {
		timeout, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0")
		if err != nil {
			warnings = append(warnings, fmt.Sprintf("%s: %v, using %s", envPayPalTimeout, err, cfg.PayPalTimeout))
		} else {
			cfg.PayPalTimeout = timeout
		}
	}

	if cfg.Processor == app.ProcessorPayPal && (cfg.PayPalClientID == "" || cfg.PayPalClientSecret == "") {
		warnings = append(warnings, fmt.Sprintf("set %s and %s (or %s=%s)", envPayPalClient, envPayPalSecret, envProcessor, app.ProcessorMock))
	}

	return cfg, warnings
}

func lookupTrimmed(lookup envLookup, key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool %q", raw)
	}
}

func parseInt(raw string, valid func(int) bool, rule string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", raw)
	}
	if !valid(value) {
		return 0, fmt.Errorf("value %d %s", value, rule)
	}
	return value, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, rule string) (time.Duration, error) {
	value, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", raw)
	}
	if !valid(value) {
		return 0, fmt.Errorf("value %s %s", value, rule)
	}
	return value, nil
}

func main() {
	warnings := setupLogger(os.LookupEnv)
	cfg, cfgWarnings := readConfigFromEnv(os.LookupEnv)
	for _, warning := range append(warnings, cfgWarnings...) {
		log.Warn(warning)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":    cfg.HTTPAddr,
		"metrics_addr": cfg.MetricsAddr,
		"processor":    cfg.Processor,
		"app_link":     cfg.AppLink(),
		"version":      version.String(),
	}).Info("запускаем paysheet")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("paysheet остановлен")
}
