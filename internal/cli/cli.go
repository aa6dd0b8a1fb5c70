// Package cli provides the command-line interface for the OpenAPI tool
// bridge: serving a spec as MCP tools, listing the generated tool set, and
// exporting it as a reviewable catalog.
package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/GabrielNunesIT/go-libs/logger"
	"github.com/spf13/cobra"

	"github.com/GabrielNunesIT/openapi-mcp/internal/adapters/exporters"
	"github.com/GabrielNunesIT/openapi-mcp/internal/adapters/invoker"
	"github.com/GabrielNunesIT/openapi-mcp/internal/adapters/mcpserver"
	"github.com/GabrielNunesIT/openapi-mcp/internal/adapters/spec"
	"github.com/GabrielNunesIT/openapi-mcp/internal/adapters/toolgen"
	"github.com/GabrielNunesIT/openapi-mcp/internal/auth"
	"github.com/GabrielNunesIT/openapi-mcp/internal/config"
	"github.com/GabrielNunesIT/openapi-mcp/internal/domain"
)

// CLI holds the command-line interface configuration.
type CLI struct {
	log     logger.ILogger
	rootCmd *cobra.Command

	specSource     string
	serverName     string
	serverURL      string
	bearerToken    string
	headers        []string
	constants      []string
	includePattern string
	excludePattern string
	timeoutSeconds int

	outputFile string
	format     string
}

// New creates a new CLI instance.
func New(log logger.ILogger) *CLI {
	cli := &CLI{
		log: log,
	}

	cli.rootCmd = &cobra.Command{
		Use:   "openapi-mcp",
		Short: "Serve an OpenAPI specification as MCP tools",
		Long:  "Converts an OpenAPI/Swagger specification into MCP tools and invokes the described API on the agent's behalf over stdio.",
		RunE:  cli.runServe,
	}

	cli.setupFlags()
	cli.setupCommands()

	return cli
}

func (c *CLI) setupFlags() {
	flags := c.rootCmd.PersistentFlags()
	flags.StringVarP(&c.specSource, "spec", "s", "", "Specification source: file path, URL, or raw JSON/YAML")
	flags.StringVar(&c.serverName, "name", "", "Server name (defaults to the spec title)")
	flags.StringVarP(&c.serverURL, "url", "u", "", "Base URL for API calls (overrides servers in the spec)")
	flags.StringVar(&c.bearerToken, "token", "", "Bearer token for authenticated requests")
	flags.StringArrayVar(&c.headers, "header", nil, "Default header as key=value (repeatable)")
	flags.StringArrayVar(&c.constants, "constant", nil, "Constant parameter override as key=value (repeatable)")
	flags.StringVar(&c.includePattern, "include-pattern", "", "Only expose endpoints whose path matches this regex")
	flags.StringVar(&c.excludePattern, "exclude-pattern", "", "Hide endpoints whose path matches this regex")
	flags.IntVar(&c.timeoutSeconds, "timeout", 0, "HTTP timeout in seconds (non-positive uses the 30s default)")
}

func (c *CLI) setupCommands() {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "Print the generated tool set without serving",
		RunE:  c.runList,
	}

	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export the generated tool catalog to a document",
		RunE:  c.runExport,
	}
	exportCmd.Flags().StringVarP(&c.outputFile, "output", "o", "", "Path for the output file (required)")
	exportCmd.Flags().StringVarP(&c.format, "format", "f", "json", "Output format: pdf, docx, json")
	_ = exportCmd.MarkFlagRequired("output")

	c.rootCmd.AddCommand(listCmd, exportCmd)
}

// Execute runs the CLI.
func (c *CLI) Execute() error {
	return c.rootCmd.Execute()
}

// bridge is the wired pipeline shared by serve, list and export.
type bridge struct {
	cfg     *config.Config
	title   string
	version string
	toolset *toolgen.Toolset
	invoker *invoker.Invoker
	ictx    *invoker.Context
}

func (c *CLI) runServe(_ *cobra.Command, _ []string) error {
	b, err := c.build()
	if err != nil {
		return err
	}

	name := b.cfg.Name
	if name == "" {
		name = b.title
	}
	if name == "" {
		name = "openapi-mcp"
	}

	c.log.Infof("Serving %d tools as %q over stdio", b.toolset.Len(), name)

	srv := mcpserver.New(name, b.version, b.toolset, b.invoker, b.ictx, c.log)

	return srv.ServeStdio()
}

func (c *CLI) runList(_ *cobra.Command, _ []string) error {
	b, err := c.build()
	if err != nil {
		return err
	}

	catalog := b.toolset.Catalog(b.title, b.version, b.cfg.ServerURL)

	return exporters.NewJSONExporter().Export(catalog, os.Stdout)
}

func (c *CLI) runExport(_ *cobra.Command, _ []string) error {
	b, err := c.build()
	if err != nil {
		return err
	}

	exporter, err := c.getExporter()
	if err != nil {
		return err
	}

	c.log.Infof("Exporting tool catalog to %s format...", exporter.Format())

	outputFile, err := os.Create(c.outputFile)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outputFile.Close()

	catalog := b.toolset.Catalog(b.title, b.version, b.cfg.ServerURL)
	if err := exporter.Export(catalog, outputFile); err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	c.log.Infof("Successfully created: %s", c.outputFile)

	return nil
}

func (c *CLI) getExporter() (domain.Exporter, error) {
	switch strings.ToLower(c.format) {
	case "pdf":
		return exporters.NewPDFExporter(), nil
	case "docx", "word":
		return exporters.NewDocxExporter(), nil
	case "json":
		return exporters.NewJSONExporter(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s (supported: pdf, docx, json)", c.format)
	}
}

// build loads configuration, the specification, and wires the tool set and
// invoker. Spec and filter problems fail here, before anything is served.
func (c *CLI) build() (*bridge, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if cfg.Spec == "" {
		return nil, fmt.Errorf("no specification source: set --spec or OPENAPI_MCP_SPEC")
	}

	c.log.Infof("Loading specification from: %s", describeSource(cfg.Spec))

	doc, err := spec.NewLoader(c.log).Load(cfg.Spec)
	if err != nil {
		return nil, err
	}

	title, version := "", ""
	if doc.Info != nil {
		title, version = doc.Info.Title, doc.Info.Version
	}
	if title != "" {
		c.log.Infof("Loaded API: %s (v%s)", title, version)
	}

	endpoints := spec.NewExtractor(c.log).Extract(doc)

	opts := toolgen.Options{}
	if cfg.IncludePattern != "" {
		if opts.IncludePattern, err = regexp.Compile(cfg.IncludePattern); err != nil {
			return nil, fmt.Errorf("invalid include pattern: %w", err)
		}
	}
	if cfg.ExcludePattern != "" {
		if opts.ExcludePattern, err = regexp.Compile(cfg.ExcludePattern); err != nil {
			return nil, fmt.Errorf("invalid exclude pattern: %w", err)
		}
	}

	toolset := toolgen.Build(endpoints, opts, c.log)

	ictx := &invoker.Context{
		ServerURL:      cfg.ServerURL,
		DefaultHeaders: cfg.Headers,
		BearerToken:    cfg.BearerToken,
		Constants:      cfg.Constants,
	}
	if cfg.OAuth.TokenURL != "" {
		ictx.Tokens = auth.NewOAuth2Provider(context.Background(),
			cfg.OAuth.ClientID, cfg.OAuth.ClientSecret, cfg.OAuth.TokenURL, cfg.OAuth.Scopes)
	}

	return &bridge{
		cfg:     cfg,
		title:   title,
		version: version,
		toolset: toolset,
		invoker: invoker.New(httpClient(cfg.TimeoutSeconds), c.log),
		ictx:    ictx,
	}, nil
}

// httpClient builds the client for the configured timeout. Non-positive
// values yield nil, letting the invoker fall back to its 30s default.
func httpClient(timeoutSeconds int) *http.Client {
	if timeoutSeconds <= 0 {
		return nil
	}
	return &http.Client{Timeout: time.Duration(timeoutSeconds) * time.Second}
}

// loadConfig loads the environment-backed configuration and overlays any
// flags the operator set.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if c.specSource != "" {
		cfg.Spec = c.specSource
	}
	if c.serverName != "" {
		cfg.Name = c.serverName
	}
	if c.serverURL != "" {
		cfg.ServerURL = c.serverURL
	}
	if c.bearerToken != "" {
		cfg.BearerToken = c.bearerToken
	}
	if c.includePattern != "" {
		cfg.IncludePattern = c.includePattern
	}
	if c.excludePattern != "" {
		cfg.ExcludePattern = c.excludePattern
	}
	if c.timeoutSeconds > 0 {
		cfg.TimeoutSeconds = c.timeoutSeconds
	}

	if len(c.headers) > 0 {
		if cfg.Headers == nil {
			cfg.Headers = make(map[string]string, len(c.headers))
		}
		if err := mergePairs(cfg.Headers, c.headers); err != nil {
			return nil, fmt.Errorf("invalid --header: %w", err)
		}
	}
	if len(c.constants) > 0 {
		if cfg.Constants == nil {
			cfg.Constants = make(map[string]string, len(c.constants))
		}
		if err := mergePairs(cfg.Constants, c.constants); err != nil {
			return nil, fmt.Errorf("invalid --constant: %w", err)
		}
	}

	return cfg, nil
}

func mergePairs(dst map[string]string, pairs []string) error {
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return fmt.Errorf("expected key=value, got %q", pair)
		}
		dst[key] = value
	}
	return nil
}

// describeSource keeps raw spec text out of the logs.
func describeSource(source string) string {
	if strings.HasPrefix(source, "{") || strings.ContainsAny(source, "\n") {
		return "(inline specification)"
	}
	return source
}
