package app

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/vladislavdragonenkov/paysheet/internal/deeplink"
	"github.com/vladislavdragonenkov/paysheet/internal/domain"
	"github.com/vladislavdragonenkov/paysheet/internal/paypal"
	"github.com/vladislavdragonenkov/paysheet/internal/service/checkout"
)

// Поддерживаемые реализации платёжного провайдера.
const (
	ProcessorPayPal = "paypal"
	ProcessorMock   = "mock"
)

// Значения по умолчанию.
const (
	DefaultHTTPAddr      = ":3000"
	DefaultMetricsAddr   = ":9090"
	DefaultScheme        = "screwfixapp"
	DefaultRedirectPath  = "order-confirmation"
	DefaultSDKURL        = "https://www.paypal.com/sdk/js"
	DefaultPayPalTimeout = 15 * time.Second
)

var errInvalidConfig = errors.New("invalid config")

// Config описывает настройки запуска приложения. Собирается один раз в main
// и дальше передаётся по значению: обработчики не читают окружение.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	Processor          string
	PayPalClientID     string
	PayPalClientSecret string
	PayPalBaseURL      string
	PayPalSDKURL       string
	PayPalTimeout      time.Duration

	Scheme        string
	RedirectPath  string
	PublicBaseURL string

	Currency string
	Amount   string

	StrategiesFile string

	// KafkaBrokers - список брокеров через запятую; пусто отключает события.
	KafkaBrokers string
	KafkaTopic   string
}

// DefaultConfig возвращает настройки sandbox-окружения с локальными адресами.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:      DefaultHTTPAddr,
		MetricsAddr:   DefaultMetricsAddr,
		Processor:     ProcessorPayPal,
		PayPalBaseURL: paypal.SandboxBaseURL,
		PayPalSDKURL:  DefaultSDKURL,
		PayPalTimeout: DefaultPayPalTimeout,
		Scheme:        DefaultScheme,
		RedirectPath:  DefaultRedirectPath,
		Currency:      checkout.DefaultCurrency,
		Amount:        checkout.DefaultAmount,
	}
}

// Validate проверяет согласованность настроек до старта серверов.
func (c Config) Validate() error {
	var problems []string

	if c.HTTPAddr == "" {
		problems = append(problems, "http address is required")
	}
	switch c.Processor {
	case ProcessorPayPal:
		if c.PayPalClientID == "" || c.PayPalClientSecret == "" {
			problems = append(problems, domain.ErrCredentialsRequired.Error())
		}
		if _, err := url.ParseRequestURI(c.PayPalBaseURL); err != nil {
			problems = append(problems, "paypal base url is invalid")
		}
	case ProcessorMock:
	default:
		problems = append(problems, fmt.Sprintf("unsupported processor %q", c.Processor))
	}
	if c.Scheme == "" {
		problems = append(problems, "deeplink scheme is required")
	}
	if strings.Contains(c.Scheme, "://") {
		problems = append(problems, "deeplink scheme must not contain ://")
	}
	if c.PayPalTimeout <= 0 {
		problems = append(problems, "paypal timeout must be > 0")
	}
	if c.PublicBaseURL != "" {
		if u, err := url.Parse(c.PublicBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			problems = append(problems, "public base url must be absolute")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", errInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

// AppLink возвращает базовую ссылку приложения, в которую возвращается плательщик.
func (c Config) AppLink() string {
	return deeplink.AppBase(c.Scheme, c.RedirectPath)
}

// Brokers разбирает KafkaBrokers, отбрасывая пустые элементы.
func (c Config) Brokers() []string {
	var brokers []string
	for _, broker := range strings.Split(c.KafkaBrokers, ",") {
		if broker = strings.TrimSpace(broker); broker != "" {
			brokers = append(brokers, broker)
		}
	}
	return brokers
}
