package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/pelletier/go-toml/v2"

	"erpick/internal/eventbus"
)

// LocalFile is looked up in the working directory before the user config dir
const LocalFile = ".erpick.toml"

// Config represents the application configuration
type Config struct {
	Version   int                 `toml:"version" validate:"gte=1"`
	API       APISettings         `toml:"api"`
	Picker    PickerSettings      `toml:"picker"`
	Document  DocumentSettings    `toml:"document"`
	Log       LogSettings         `toml:"log"`
	Endpoints map[string]Endpoint `toml:"endpoints" validate:"required,dive"`
}

// APISettings describes how to reach the backend
type APISettings struct {
	BaseURL        string `toml:"base_url" validate:"required,url"`
	TokenEnv       string `toml:"token_env" validate:"required"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"gte=1,lte=300"`
	PageSize       int    `toml:"page_size" validate:"gte=1,lte=100"`
}

// PickerSettings tunes the selector fields
type PickerSettings struct {
	DebounceMillis   int `toml:"debounce_ms" validate:"gte=0,lte=5000"`
	FocusDelayMillis int `toml:"focus_delay_ms" validate:"gte=0,lte=1000"`
	VisibleRows      int `toml:"visible_rows" validate:"gte=3,lte=50"`
}

// DocumentSettings holds defaults for new documents
type DocumentSettings struct {
	Kind            string `toml:"kind" validate:"oneof=sales purchase"`
	MaxLines        int    `toml:"max_lines" validate:"gte=1,lte=500"`
	DiscountPercent string `toml:"discount_percent" validate:"omitempty,numeric"`
	TaxPercent      string `toml:"tax_percent" validate:"omitempty,numeric"`
}

// LogSettings is passed to the logging package
type LogSettings struct {
	Level  string `toml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `toml:"format" validate:"omitempty,oneof=json console"`
	Output string `toml:"output"`
}

// Endpoint is one backend collection
type Endpoint struct {
	Path        string            `toml:"path" validate:"required"`
	SearchParam string            `toml:"search_param"`
	Params      map[string]string `toml:"params,omitempty"`
}

// Endpoint names used by the client
const (
	EndpointCustomers      = "customers"
	EndpointSuppliers      = "suppliers"
	EndpointWarehouses     = "warehouses"
	EndpointCurrencies     = "currencies"
	EndpointProducts       = "products"
	EndpointSalesOrders    = "sales-orders"
	EndpointPurchaseOrders = "purchase-orders"
	EndpointAttachments    = "attachments"
)

var requiredEndpoints = []string{
	EndpointCustomers, EndpointSuppliers, EndpointWarehouses, EndpointCurrencies,
	EndpointProducts, EndpointSalesOrders, EndpointPurchaseOrders, EndpointAttachments,
}

// ConfigService handles configuration management
type ConfigService interface {
	Load() (*Config, error)
	Save(config *Config) error
	LoadFromPath(path string) (*Config, error)
	SaveToPath(config *Config, path string) error
	Path() string
}

type configService struct {
	bus      eventbus.EventBus
	filePath string
}

// NewConfigService creates a config service that reads .erpick.toml when it
// exists in the working directory and the user config file otherwise
func NewConfigService() ConfigService {
	return &configService{filePath: DefaultPath()}
}

// NewConfigServiceWithBus creates a config service with event bus support
func NewConfigServiceWithBus(bus eventbus.EventBus, path string) ConfigService {
	if path == "" {
		path = DefaultPath()
	}
	return &configService{bus: bus, filePath: path}
}

// DefaultPath returns the config file location
func DefaultPath() string {
	if _, err := os.Stat(LocalFile); err == nil {
		return LocalFile
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir, err = os.UserHomeDir()
		if err != nil {
			return LocalFile
		}
		configDir = filepath.Join(configDir, ".config")
	}
	return filepath.Join(configDir, "erpick", "config.toml")
}

func (cs *configService) Path() string {
	return cs.filePath
}

// Load reads the configuration file. A missing file yields the defaults
func (cs *configService) Load() (*Config, error) {
	var cfg *Config
	if _, err := os.Stat(cs.filePath); errors.Is(err, os.ErrNotExist) {
		cfg = DefaultConfig()
	} else {
		cfg, err = cs.LoadFromPath(cs.filePath)
		if err != nil {
			return nil, err
		}
	}

	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigLoadedEvent{Path: cs.filePath})
	}
	return cfg, nil
}

// Save writes the configuration to the service's path
func (cs *configService) Save(config *Config) error {
	if err := cs.SaveToPath(config, cs.filePath); err != nil {
		return err
	}
	if cs.bus != nil {
		cs.bus.Publish(eventbus.ConfigSavedEvent{Path: cs.filePath})
	}
	return nil
}

// LoadFromPath loads configuration from a specific path. Keys missing from
// the file keep their default values
func (cs *configService) LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// SaveToPath saves configuration to a specific path
func (cs *configService) SaveToPath(config *Config, path string) error {
	if err := Validate(config); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Parse decodes TOML on top of the defaults and validates the result
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	// Endpoints listed in the file are merged over the defaults, so fill in
	// anything the file left out
	defaults := DefaultConfig().Endpoints
	for name, ep := range defaults {
		if _, ok := cfg.Endpoints[name]; !ok {
			cfg.Endpoints[name] = ep
		}
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("toml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks field constraints and the presence of every endpoint the
// client needs
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s: failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	for _, name := range requiredEndpoints {
		if _, ok := cfg.Endpoints[name]; !ok {
			return fmt.Errorf("invalid config: endpoint %q is not configured", name)
		}
	}
	return nil
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		API: APISettings{
			BaseURL:        "http://localhost:8080/api/v1",
			TokenEnv:       "ERPICK_TOKEN",
			TimeoutSeconds: 15,
			PageSize:       20,
		},
		Picker: PickerSettings{
			DebounceMillis:   300,
			FocusDelayMillis: 50,
			VisibleRows:      8,
		},
		Document: DocumentSettings{
			Kind:            "sales",
			MaxLines:        50,
			DiscountPercent: "0",
			TaxPercent:      "11",
		},
		Log: LogSettings{
			Level:  "info",
			Format: "json",
			Output: "erpick.log",
		},
		Endpoints: map[string]Endpoint{
			EndpointCustomers:      {Path: "partner/customers", SearchParam: "search"},
			EndpointSuppliers:      {Path: "partner/suppliers", SearchParam: "search"},
			EndpointWarehouses:     {Path: "partner/warehouses", SearchParam: "search"},
			EndpointCurrencies:     {Path: "finance/currencies", SearchParam: "search"},
			EndpointProducts:       {Path: "catalog/products", SearchParam: "search", Params: map[string]string{"status": "active"}},
			EndpointSalesOrders:    {Path: "trade/sales-orders"},
			EndpointPurchaseOrders: {Path: "trade/purchase-orders"},
			EndpointAttachments:    {Path: "attachments"},
		},
	}
}
