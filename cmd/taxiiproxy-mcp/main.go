package main

import (
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/ternarybob/arbor"
	arbor_models "github.com/ternarybob/arbor/models"
	"github.com/ternarybob/taxiiproxy/internal/app"
	"github.com/ternarybob/taxiiproxy/internal/common"
	"github.com/ternarybob/taxiiproxy/internal/taxii"
)

func main() {
	// An unset or missing config file falls back to defaults + env
	var configPaths []string
	if configPath := os.Getenv("TAXIIPROXY_CONFIG"); configPath != "" {
		configPaths = append(configPaths, configPath)
	} else if _, err := os.Stat("taxiiproxy.toml"); err == nil {
		configPaths = append(configPaths, "taxiiproxy.toml")
	}

	config, err := common.LoadFromFiles(configPaths...)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Console only at warn so stdio stays clean for the MCP protocol
	logger := arbor.NewLogger().WithConsoleWriter(arbor_models.WriterConfiguration{
		Type:             arbor_models.LogWriterTypeConsole,
		TimeFormat:       "15:04:05",
		DisableTimestamp: false,
	}).WithLevelFromString("warn")

	client, err := app.NewTAXIIClient(config, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize TAXII client")
	}

	tools := newToolSet(taxii.NewDispatcher(client, logger), logger)

	mcpServer := server.NewMCPServer(
		"taxiiproxy",
		common.GetVersion(),
		server.WithToolCapabilities(true),
		server.WithRecovery(),
	)
	tools.register(mcpServer)

	// Start server (blocks on stdio)
	if err := server.ServeStdio(mcpServer); err != nil {
		logger.Fatal().Err(err).Msg("MCP server failed")
	}
}
