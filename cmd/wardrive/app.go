package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nerrad567/wardrive-core/internal/api"
	"github.com/nerrad567/wardrive-core/internal/catalog"
	"github.com/nerrad567/wardrive-core/internal/infrastructure/config"
	"github.com/nerrad567/wardrive-core/internal/infrastructure/database"
	"github.com/nerrad567/wardrive-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/wardrive-core/internal/infrastructure/logging"
	"github.com/nerrad567/wardrive-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/wardrive-core/internal/sinks"
	"github.com/nerrad567/wardrive-core/internal/survey"
)

// app holds the converter and whichever optional back ends are enabled.
type app struct {
	cfg       *config.Config
	log       *logging.Logger
	converter *survey.Converter

	db     *database.DB
	repo   catalog.Repository
	mqtt   *mqtt.Client
	influx *influxdb.Client
}

// newApp opens the enabled back ends and builds the converter with a sink
// for each. The catalog is required once enabled; MQTT and InfluxDB only
// log when unreachable, so an offline laptop can still convert.
func newApp(ctx context.Context, cfg *config.Config, log *logging.Logger) (*app, error) {
	a := &app{cfg: cfg, log: log}
	var outputs []survey.Sink

	if cfg.Database.Enabled {
		db, err := database.OpenConfig(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		a.db = db
		if err := db.Migrate(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		a.repo = catalog.NewSQLiteRepository(db.DB)
		outputs = append(outputs, sinks.NewCatalogSink(a.repo, log))
		log.Info("catalog ready", "path", db.Path())
	}

	if cfg.MQTT.Enabled {
		client, err := mqtt.Connect(cfg.MQTT, log, version)
		if err != nil {
			log.Warn("MQTT unavailable, conversion events disabled", "error", err)
		} else {
			a.mqtt = client
			outputs = append(outputs, sinks.NewMQTTSink(client))
			log.Info("MQTT connected",
				"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
				"client_id", cfg.MQTT.Broker.ClientID,
			)
		}
	}

	if cfg.InfluxDB.Enabled {
		client, err := influxdb.Connect(cfg.InfluxDB, log)
		if err != nil {
			log.Warn("InfluxDB unavailable, observations disabled", "error", err)
		} else {
			a.influx = client
			outputs = append(outputs, sinks.NewInfluxSink(client, log))
			log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
		}
	}

	a.converter = survey.NewConverter(nil, log, survey.Options{
		SampleSize: cfg.Converter.SampleSize,
		Table: survey.TableOptions{
			Delimiter:     cfg.Converter.DelimiterRune(),
			ProgressEvery: cfg.Converter.ProgressEvery,
		},
		Sinks: outputs,
	})
	return a, nil
}

// Close releases every open back end in reverse order of opening.
func (a *app) Close() {
	if a.influx != nil {
		if err := a.influx.Close(); err != nil {
			a.log.Error("error closing InfluxDB", "error", err)
		}
		if n := a.influx.RejectedBatches(); n > 0 {
			a.log.Warn("InfluxDB refused observation batches this session", "rejected_batches", n)
		}
	}
	if a.mqtt != nil {
		if err := a.mqtt.Close(); err != nil {
			a.log.Error("error closing MQTT", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.log.Error("error closing database", "error", err)
		}
	}
}

func (a *app) convertFile(ctx context.Context, stdout io.Writer, in, out string) error {
	res, err := a.converter.ConvertFile(ctx, in, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s: %d records (%s) -> %s\n", in, len(res.Records), res.Format, res.Output)
	for _, w := range res.Warnings {
		fmt.Fprintf(stdout, "  warning %s: %s\n", w.Code, w.Message)
	}
	return nil
}

func (a *app) convertFolder(ctx context.Context, stdout io.Writer, folder string, opts survey.BatchOptions) error {
	batch, err := a.converter.ConvertFolder(ctx, folder, opts)
	if err != nil {
		return err
	}

	for _, res := range batch.Results {
		if res.Succeeded() {
			fmt.Fprintf(stdout, "ok     %s: %d records (%s)\n", res.Source, len(res.Records), res.Format)
		} else {
			fmt.Fprintf(stdout, "failed %s: %s\n", res.Source, res.Error)
		}
	}
	fmt.Fprintf(stdout, "%d of %d files converted into %s\n", len(batch.Succeeded), len(batch.Files), batch.OutputDir)
	if batch.MergedOutput != "" {
		fmt.Fprintf(stdout, "merged table: %s\n", batch.MergedOutput)
	}

	if !batch.OK() {
		return fmt.Errorf("no file in %s could be converted", folder)
	}
	return nil
}

// serve runs the HTTP API, and the MQTT convert command listener when a
// broker is connected, until ctx is cancelled.
func (a *app) serve(ctx context.Context) error {
	health := map[string]api.HealthChecker{}
	deps := api.Deps{
		Config:    a.cfg.API,
		Logger:    a.log,
		Converter: a.converter,
		Health:    health,
		Version:   version,
	}
	if a.db != nil {
		health["database"] = a.db
		deps.Catalog = a.repo
		deps.DB = a.db
	}
	if a.mqtt != nil {
		health["mqtt"] = a.mqtt
	}
	if a.influx != nil {
		health["influxdb"] = a.influx
	}

	server, err := api.New(deps)
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if err := server.Close(); err != nil {
			a.log.Error("error closing API server", "error", err)
		}
	}()

	switch {
	case a.mqtt == nil:
	case a.cfg.Converter.InputDir == "":
		a.log.Warn("convert commands disabled, converter.input_dir is not set")
	default:
		topic := mqtt.Topics{}.ConvertCommand()
		if err := a.mqtt.Subscribe(topic, byte(a.cfg.MQTT.QoS), a.convertCommandHandler(ctx)); err != nil {
			return fmt.Errorf("subscribing to %s: %w", topic, err)
		}
		defer func() {
			if err := a.mqtt.Unsubscribe(topic); err != nil {
				a.log.Warn("error unsubscribing", "topic", topic, "error", err)
			}
		}()
		a.log.Info("listening for convert commands", "topic", topic,
			"input_dir", a.cfg.Converter.InputDir,
			"output_dir", a.cfg.Converter.CommandOutputDir(),
		)
	}

	a.log.Info("wardrive serving", "version", version)
	<-ctx.Done()
	a.log.Info("shutdown signal received")
	return nil
}

// ConvertCommand is the payload accepted on wardrive/command/convert.
// Path is relative to converter.input_dir. Output is a file name inside
// the command output directory.
type ConvertCommand struct {
	Path   string `json:"path"`
	Output string `json:"output,omitempty"`
}

var (
	errEmptyCommandPath = errors.New("convert command: path is required")
	errCommandsDisabled = errors.New("convert command: converter.input_dir is not set")
	errCommandPath      = errors.New("convert command: path must stay inside the input directory")
	errCommandOutput    = errors.New("convert command: output must be a .csv file name")
)

// commandPaths resolves a command against the configured directories.
// Absolute paths and ".." segments are rejected.
func (a *app) commandPaths(cmd ConvertCommand) (in, out string, err error) {
	conv := a.cfg.Converter
	if conv.InputDir == "" {
		return "", "", errCommandsDisabled
	}
	if cmd.Path == "" {
		return "", "", errEmptyCommandPath
	}

	rel := filepath.FromSlash(cmd.Path)
	if !filepath.IsLocal(rel) {
		return "", "", fmt.Errorf("%w: %q", errCommandPath, cmd.Path)
	}
	in = filepath.Join(conv.InputDir, rel)

	name := filepath.Base(survey.DefaultOutputPath(rel))
	if cmd.Output != "" {
		name = filepath.FromSlash(cmd.Output)
		if !filepath.IsLocal(name) || filepath.Base(name) != name ||
			!strings.EqualFold(filepath.Ext(name), ".csv") {
			return "", "", fmt.Errorf("%w: %q", errCommandOutput, cmd.Output)
		}
	}
	return in, filepath.Join(conv.CommandOutputDir(), name), nil
}

// convertCommandHandler converts the file named by each command. The result
// is announced by the MQTT sink like any other conversion.
func (a *app) convertCommandHandler(ctx context.Context) mqtt.MessageHandler {
	return func(_ string, payload []byte) error {
		var cmd ConvertCommand
		if err := json.Unmarshal(payload, &cmd); err != nil {
			return fmt.Errorf("convert command: %w", err)
		}

		in, out, err := a.commandPaths(cmd)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return fmt.Errorf("convert command: creating output directory: %w", err)
		}

		res, err := a.converter.ConvertFile(ctx, in, out)
		if err != nil {
			return fmt.Errorf("converting %s: %w", cmd.Path, err)
		}
		a.log.Info("convert command done", "run_id", res.RunID, "output", res.Output, "records", len(res.Records))
		return nil
	}
}
