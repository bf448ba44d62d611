package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/VictoriaMetrics/metrics"
	"github.com/urfave/cli/v3"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/arloliu/cqltask"
	"github.com/arloliu/cqltask/adapter/cql"
	v1 "github.com/arloliu/cqltask/adapter/cql/v1" //nolint:revive // version package name
	v2 "github.com/arloliu/cqltask/adapter/cql/v2"
	"github.com/arloliu/cqltask/contrib/metrics/vm"
	"github.com/arloliu/cqltask/internal/config"
	"github.com/arloliu/cqltask/internal/logging"
	"github.com/arloliu/cqltask/internal/output"
	"github.com/arloliu/cqltask/internal/secret"
	"github.com/arloliu/cqltask/types"
)

var (
	errNoQuery       = errors.New("one of --query or --file is required")
	errQueryAndFile  = errors.New("--query and --file are mutually exclusive")
	errNoUsername    = errors.New("--username is required")
	errEmptyPassword = errors.New("no password read from stdin")
)

// passwordStore is the subset of secret.Store used by the CLI.
type passwordStore interface {
	Lookup(username string) (string, error)
	Set(username, password string) error
}

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	connectors map[string]func() cql.Connector
	openStore  func(service string) (passwordStore, error)
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *app {
	return &app{
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
		connectors: map[string]func() cql.Connector{
			"v1": func() cql.Connector { return v1.NewConnector() },
			"v2": func() cql.Connector { return v2.NewConnector() },
		},
		openStore: func(service string) (passwordStore, error) {
			return secret.Open(service)
		},
	}
}

func (a *app) command() *cli.Command {
	return &cli.Command{
		Name:      "cqlexec",
		Usage:     "execute one CQL statement against a Cassandra cluster",
		Reader:    a.stdin,
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML or TOML config file"},
			&cli.StringFlag{Name: "env-file", Usage: "dotenv file loaded before CQLTASK_* overrides"},
			&cli.StringSliceFlag{Name: "contact-point", Aliases: []string{"c"}, Usage: "cluster contact point (repeatable)"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "native protocol port"},
			&cli.StringFlag{Name: "keyspace", Aliases: []string{"k"}, Usage: "keyspace to use"},
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "CQL statement"},
			&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "read the CQL statement from a file"},
			&cli.StringFlag{Name: "username", Usage: "username for password authentication"},
			&cli.StringFlag{Name: "password", Usage: "password for password authentication"},
			&cli.StringFlag{Name: "keyring-service", Usage: "look the password up in the OS keyring under this service"},
			&cli.StringFlag{Name: "consistency", Usage: "consistency level, e.g. ONE, QUORUM, LOCAL_QUORUM"},
			&cli.DurationFlag{Name: "timeout", Usage: "query timeout"},
			&cli.IntFlag{Name: "page-size", Usage: "rows per page"},
			&cli.StringFlag{Name: "driver", Usage: "driver: v1 (gocql) or v2 (apache cassandra-gocql-driver)"},
			&cli.StringFlag{Name: "format", Usage: "output format: json, table or xlsx"},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "output file (stdout when empty)"},
			&cli.StringFlag{Name: "metrics-file", Usage: "write Prometheus metrics to this file"},
			&cli.BoolFlag{Name: "trace", Usage: "print OpenTelemetry spans to stderr"},
			&cli.StringFlag{Name: "log-level", Usage: "console log level: debug, info, warn, error"},
		},
		Commands: []*cli.Command{
			{
				Name:  "password",
				Usage: "manage passwords in the OS keyring",
				Commands: []*cli.Command{
					{
						Name:  "set",
						Usage: "store the password read from stdin",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "username", Usage: "username the password belongs to"},
							&cli.StringFlag{Name: "keyring-service", Value: secret.DefaultService, Usage: "keyring service"},
						},
						Action: a.setPassword,
					},
				},
			},
		},
		Action: a.execute,
	}
}

// loadConfig resolves file, env and flag settings, flags last.
func (a *app) loadConfig(cmd *cli.Command) (*config.Config, error) {
	conf, err := config.Load(cmd.String("config"), cmd.String("env-file"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("contact-point") {
		conf.Cluster.ContactPoints = cmd.StringSlice("contact-point")
	}
	if cmd.IsSet("port") {
		conf.Cluster.Port = cmd.Int("port")
	}
	if cmd.IsSet("keyspace") {
		conf.Cluster.Keyspace = cmd.String("keyspace")
	}
	if cmd.IsSet("consistency") {
		conf.Cluster.Consistency = cmd.String("consistency")
	}
	if cmd.IsSet("timeout") {
		conf.Cluster.Timeout = cmd.Duration("timeout")
	}
	if cmd.IsSet("page-size") {
		conf.Cluster.PageSize = cmd.Int("page-size")
	}
	if cmd.IsSet("driver") {
		conf.Cluster.Driver = cmd.String("driver")
	}
	if cmd.IsSet("username") {
		conf.Auth.Username = cmd.String("username")
	}
	if cmd.IsSet("password") {
		conf.Auth.Password = cmd.String("password")
	}
	if cmd.IsSet("keyring-service") {
		conf.Auth.KeyringService = cmd.String("keyring-service")
	}
	if cmd.IsSet("format") {
		conf.Output.Format = cmd.String("format")
	}
	if cmd.IsSet("output") {
		conf.Output.Path = cmd.String("output")
	}
	if cmd.IsSet("metrics-file") {
		conf.Telemetry.MetricsFile = cmd.String("metrics-file")
	}
	if cmd.IsSet("trace") {
		conf.Telemetry.Trace = cmd.Bool("trace")
	}
	if cmd.IsSet("log-level") {
		conf.Logging.ConsoleLevel = cmd.String("log-level")
	}

	if err := conf.Validate(); err != nil {
		return nil, err
	}

	return conf, nil
}

// readQuery returns the statement from --query or --file, unchanged.
func readQuery(cmd *cli.Command) (string, error) {
	query, file := cmd.String("query"), cmd.String("file")
	switch {
	case query != "" && file != "":
		return "", errQueryAndFile
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("failed to read query file: %w", err)
		}
		return string(data), nil
	case query != "":
		return query, nil
	default:
		return "", errNoQuery
	}
}

func (a *app) password(conf *config.Config) (string, error) {
	if conf.Auth.Password != "" || conf.Auth.KeyringService == "" || conf.Auth.Username == "" {
		return conf.Auth.Password, nil
	}

	store, err := a.openStore(conf.Auth.KeyringService)
	if err != nil {
		return "", err
	}

	return store.Lookup(conf.Auth.Username)
}

func (a *app) execute(ctx context.Context, cmd *cli.Command) error {
	conf, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, closeLog, err := logging.New(conf.Logging, a.stderr)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = closeLog() }()

	query, err := readQuery(cmd)
	if err != nil {
		return err
	}

	password, err := a.password(conf)
	if err != nil {
		return err
	}

	consistency, err := types.ParseConsistency(conf.Cluster.Consistency)
	if err != nil {
		return err
	}

	newConnector, ok := a.connectors[strings.ToLower(conf.Cluster.Driver)]
	if !ok {
		return fmt.Errorf("%w: %q", config.ErrInvalidDriver, conf.Cluster.Driver)
	}

	opts := []cqltask.Option{
		cqltask.WithConnector(newConnector()),
		cqltask.WithLogger(logging.NewSlogLogger(logger)),
		cqltask.WithConsistency(consistency),
		cqltask.WithTimeout(conf.Cluster.Timeout),
		cqltask.WithConnectTimeout(conf.Cluster.ConnectTimeout),
		cqltask.WithPageSize(conf.Cluster.PageSize),
	}
	if conf.Auth.Username != "" {
		opts = append(opts, cqltask.WithCredentials(conf.Auth.Username, password))
	}

	if conf.Telemetry.MetricsFile != "" {
		collector := vm.New(vm.WithMetricsSet(metrics.NewSet()))
		opts = append(opts, cqltask.WithMetrics(collector))
		defer func() {
			if err := writeMetrics(conf.Telemetry.MetricsFile, collector); err != nil {
				logger.Error("failed to write metrics", "path", conf.Telemetry.MetricsFile, "error", err)
			}
		}()
	}

	if conf.Telemetry.Trace {
		tp, err := newTracerProvider(a.stderr)
		if err != nil {
			return err
		}
		defer func() { _ = tp.Shutdown(context.Background()) }()
		opts = append(opts, cqltask.WithTracerProvider(tp))
	}

	executor, err := cqltask.NewExecutor(opts...)
	if err != nil {
		return err
	}

	result, err := executor.Execute(ctx, cqltask.Input{
		ContactPoints: conf.Cluster.ContactPoints,
		Port:          conf.Cluster.Port,
		Keyspace:      conf.Cluster.Keyspace,
		Query:         query,
	})
	if err != nil {
		return err
	}

	return a.render(conf, result, logger)
}

func (a *app) render(conf *config.Config, result *cqltask.Result, logger *slog.Logger) error {
	w := a.stdout
	if conf.Output.Path != "" {
		f, err := os.Create(conf.Output.Path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := output.Render(w, conf.Output.Format, result); err != nil {
		return fmt.Errorf("failed to render result: %w", err)
	}

	if !strings.EqualFold(conf.Output.Format, output.FormatJSON) {
		output.Warnings(a.stderr, result.Warnings)
	}
	if conf.Output.Path != "" {
		logger.Info("result written", "path", conf.Output.Path, "rows", result.RowCount())
	}

	return nil
}

func (a *app) setPassword(_ context.Context, cmd *cli.Command) error {
	username := cmd.String("username")
	if username == "" {
		return errNoUsername
	}

	line, err := bufio.NewReader(a.stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return errEmptyPassword
	}

	store, err := a.openStore(cmd.String("keyring-service"))
	if err != nil {
		return err
	}
	if err := store.Set(username, password); err != nil {
		return err
	}

	fmt.Fprintf(a.stdout, "password stored for %s\n", username)

	return nil
}

func newTracerProvider(w io.Writer) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter)), nil
}

func writeMetrics(path string, collector *vm.Collector) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	collector.WritePrometheus(f)

	return f.Close()
}
