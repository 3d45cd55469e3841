package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"erpick/internal/api"
	"erpick/internal/attachment"
	"erpick/internal/config"
	"erpick/internal/domain"
	"erpick/internal/eventbus"
	"erpick/internal/logging"
	"erpick/internal/ui"
)

type flags struct {
	configPath  string
	baseURL     string
	kind        string
	logLevel    string
	partner     string
	warehouse   string
	currency    string
	writeConfig bool
}

func parseFlags(args []string) (flags, error) {
	var f flags
	fs := pflag.NewFlagSet("erpick", pflag.ContinueOnError)
	fs.StringVarP(&f.configPath, "config", "c", "", "config file (default .erpick.toml or the user config dir)")
	fs.StringVar(&f.baseURL, "base-url", "", "ERP API base URL, overrides api.base_url")
	fs.StringVarP(&f.kind, "kind", "k", "", "document kind: sales or purchase")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.partner, "partner", "", "preselect customer/vendor by id")
	fs.StringVar(&f.warehouse, "warehouse", "", "preselect warehouse by id")
	fs.StringVar(&f.currency, "currency", "", "preselect currency by code")
	fs.BoolVar(&f.writeConfig, "write-config", false, "write the effective config file and exit")
	if err := fs.Parse(args); err != nil {
		return flags{}, err
	}
	return f, nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "erpick: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	// Load configuration
	configSvc := config.NewConfigServiceWithBus(nil, opts.configPath)
	cfg, err := configSvc.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.baseURL != "" {
		cfg.API.BaseURL = opts.baseURL
	}
	if opts.kind != "" {
		cfg.Document.Kind = opts.kind
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	// Set up logging
	log, closeLog, err := logging.New(&logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("set up logging: %w", err)
	}
	defer func() { _ = closeLog() }()
	defer func() { _ = log.Sync() }()

	// Create event bus
	bus := eventbus.New(log)
	defer bus.Close()
	subscribeLogging(bus, log)

	configSvc = config.NewConfigServiceWithBus(bus, configSvc.Path())
	bus.Publish(eventbus.ConfigLoadedEvent{Path: configSvc.Path()})
	log.Info("config loaded", zap.String("path", configSvc.Path()), zap.String("kind", cfg.Document.Kind))
	if opts.writeConfig {
		if err := configSvc.Save(cfg); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("wrote %s\n", configSvc.Path())
		return nil
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	token := os.Getenv(cfg.API.TokenEnv)
	if token == "" {
		log.Warn("no API token in environment", zap.String("env", cfg.API.TokenEnv))
	}
	cred := api.Credentials{Token: token}

	client, err := api.NewClient(cfg.API.BaseURL,
		api.WithTimeout(time.Duration(cfg.API.TimeoutSeconds)*time.Second),
		api.WithLogger(log))
	if err != nil {
		return err
	}

	ep := func(name string) api.Endpoint {
		e := cfg.Endpoints[name]
		return api.Endpoint{Path: e.Path, SearchParam: e.SearchParam, Params: e.Params}
	}
	pageSize := cfg.API.PageSize
	customers := api.NewResource[domain.Customer](client, cred, ep(config.EndpointCustomers), pageSize)
	vendors := api.NewResource[domain.Vendor](client, cred, ep(config.EndpointSuppliers), pageSize)
	warehouses := api.NewResource[domain.Warehouse](client, cred, ep(config.EndpointWarehouses), pageSize)
	currencies := api.NewResource[domain.Currency](client, cred, ep(config.EndpointCurrencies), pageSize)
	items := api.NewResource[domain.Item](client, cred, ep(config.EndpointProducts), pageSize)

	documents := api.NewDocumentService(client, cred,
		cfg.Endpoints[config.EndpointSalesOrders].Path,
		cfg.Endpoints[config.EndpointPurchaseOrders].Path)
	attachments := attachment.NewSet(api.NewAttachmentService(client, cred, cfg.Endpoints[config.EndpointAttachments].Path))

	// Create UI model
	model, err := ui.NewModel(ui.Options{
		Config: cfg,
		Initial: ui.Initial{
			PartnerID:    opts.partner,
			WarehouseID:  opts.warehouse,
			CurrencyCode: opts.currency,
		},
		Sources: ui.Sources{
			Customers:       customers.Search,
			CustomerLookup:  customers.Lookup,
			Vendors:         vendors.Search,
			VendorLookup:    vendors.Lookup,
			Warehouses:      warehouses.Search,
			WarehouseLookup: warehouses.Lookup,
			Currencies:      currencies.Search,
			CurrencyLookup:  currencies.Lookup,
			Items:           items.Search,
		},
		Documents:   documents,
		Attachments: attachments,
		Bus:         bus,
		Logger:      log,
		Context:     ctx,
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	model.SetProgram(p)

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running program: %w", err)
	}
	return nil
}

// subscribeLogging records every domain event in the log file
func subscribeLogging(bus eventbus.EventBus, log *zap.Logger) {
	types := []eventbus.EventType{
		eventbus.EventSelectionChanged,
		eventbus.EventFetchFailed,
		eventbus.EventDocumentSubmitted,
		eventbus.EventSubmitFailed,
		eventbus.EventAttachmentUploaded,
		eventbus.EventAttachmentFailed,
		eventbus.EventAttachmentRemoved,
		eventbus.EventConfigLoaded,
		eventbus.EventConfigSaved,
	}
	for _, t := range types {
		bus.Subscribe(t, func(e eventbus.DomainEvent) {
			log.Debug("event", append([]zap.Field{zap.String("type", string(e.Type()))}, eventFields(e)...)...)
		})
	}
}

func eventFields(e eventbus.DomainEvent) []zap.Field {
	switch ev := e.(type) {
	case eventbus.SelectionChangedEvent:
		return []zap.Field{zap.String("field", ev.Field), zap.String("id", ev.ID), zap.String("label", ev.Label)}
	case eventbus.FetchFailedEvent:
		return []zap.Field{zap.String("resource", ev.Resource), zap.Error(ev.Err)}
	case eventbus.DocumentSubmittedEvent:
		return []zap.Field{zap.String("kind", string(ev.Kind)), zap.String("id", ev.ID), zap.String("grand_total", ev.GrandTotal)}
	case eventbus.SubmitFailedEvent:
		return []zap.Field{zap.String("kind", string(ev.Kind)), zap.Error(ev.Err)}
	case eventbus.AttachmentUploadedEvent:
		return []zap.Field{zap.String("id", ev.Attachment.ID), zap.String("file", ev.Attachment.Filename)}
	case eventbus.AttachmentFailedEvent:
		return []zap.Field{zap.String("file", ev.Filename), zap.Error(ev.Err)}
	case eventbus.AttachmentRemovedEvent:
		return []zap.Field{zap.String("id", ev.ID)}
	case eventbus.ConfigLoadedEvent:
		return []zap.Field{zap.String("path", ev.Path)}
	case eventbus.ConfigSavedEvent:
		return []zap.Field{zap.String("path", ev.Path)}
	}
	return nil
}
