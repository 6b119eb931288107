package app

import (
	"crypto/tls"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/taxiiproxy/internal/common"
	"github.com/ternarybob/taxiiproxy/internal/handlers"
	"github.com/ternarybob/taxiiproxy/internal/taxii"
)

// App holds all application components and dependencies
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	// TAXII outbound client and proxy dispatcher
	Client     *taxii.Client
	Dispatcher *taxii.Dispatcher

	// HTTP handlers
	APIHandler   *handlers.APIHandler
	TAXIIHandler *handlers.TAXIIHandler
}

// New initializes the application with all dependencies
func New(config *common.Config, logger arbor.ILogger) (*App, error) {
	client, err := NewTAXIIClient(config, logger)
	if err != nil {
		return nil, err
	}

	dispatcher := taxii.NewDispatcher(client, logger)

	app := &App{
		Config:       config,
		Logger:       logger,
		Client:       client,
		Dispatcher:   dispatcher,
		APIHandler:   handlers.NewAPIHandler(logger),
		TAXIIHandler: handlers.NewTAXIIHandler(dispatcher, logger, config.Server.MaxBodyBytes),
	}

	logger.Info().
		Str("timeout", config.TAXII.Timeout).
		Float64("rate_limit", config.TAXII.RateLimit).
		Bool("insecure_skip_verify", config.TAXII.InsecureSkipVerify).
		Msg("TAXII client initialized")

	return app, nil
}

// NewTAXIIClient builds the outbound TAXII client from configuration
func NewTAXIIClient(config *common.Config, logger arbor.ILogger) (*taxii.Client, error) {
	timeout, err := config.TAXIITimeout()
	if err != nil {
		return nil, fmt.Errorf("failed to configure TAXII client: %w", err)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	if config.TAXII.InsecureSkipVerify {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec // opt-in for self-signed TAXII servers
	}

	return taxii.NewClient(
		taxii.WithHTTPClient(&http.Client{
			Timeout:   timeout,
			Transport: transport,
		}),
		taxii.WithLogger(logger),
		taxii.WithRateLimit(config.TAXII.RateLimit),
		taxii.WithUserAgent(config.TAXII.UserAgent),
	), nil
}
