package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formbuilder/internal/logging"
	"github.com/goliatone/go-formbuilder/pkg/forms"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/renderers/tui"
	"github.com/goliatone/go-formbuilder/pkg/schemaio"
	"github.com/goliatone/go-formbuilder/pkg/storage"
	"github.com/goliatone/go-formbuilder/pkg/storage/sqlitekv"
)

var (
	errFormNotFound  = errors.New("form not found")
	errUnknownDriver = errors.New("unknown storage driver")
)

// app holds the collaborators shared by every command. It is populated in
// the root command's PersistentPreRunE.
type app struct {
	cfg     *viper.Viper
	io      streams
	print   *printer
	logger  *zap.SugaredLogger
	forms   *forms.Repository
	driver  tui.PromptDriver
	closers []func() error
}

func newApp(io streams, driver tui.PromptDriver) *app {
	return &app{
		cfg:    newConfig(),
		io:     io,
		print:  newPrinter(io.out),
		logger: zap.NewNop().Sugar(),
		driver: driver,
	}
}

func (a *app) init() error {
	logger, err := logging.New(a.cfg.GetString(keyLogLevel), a.cfg.GetString(keyLogFormat))
	if err != nil {
		return err
	}
	a.logger = logger

	kv, closer, err := openStore(a.cfg.GetString(keyStorageDriver), a.cfg.GetString(keyStoragePath))
	if err != nil {
		return err
	}
	if closer != nil {
		a.closers = append(a.closers, closer)
	}

	opts := []forms.Option{forms.WithLogger(a.logger)}
	if key := a.cfg.GetString(keyStorageKey); key != "" {
		opts = append(opts, forms.WithKey(key))
	}
	a.forms = forms.New(kv, opts...)
	a.logger.Debugw("storage ready",
		"driver", a.cfg.GetString(keyStorageDriver),
		"path", a.cfg.GetString(keyStoragePath),
	)
	return nil
}

func (a *app) close() {
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			a.logger.Warnw("close failed", zap.Error(err))
		}
	}
	a.closers = nil
	_ = a.logger.Sync()
}

func (a *app) promptDriver() tui.PromptDriver {
	if a.driver == nil {
		a.driver = tui.NewSurveyDriver(a.io.errOut)
	}
	return a.driver
}

func openStore(driver, path string) (storage.KV, func() error, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case driverMemory:
		return storage.NewMemory(), nil, nil
	case driverDir, "":
		dir, err := storage.NewDir(path)
		if err != nil {
			return nil, nil, err
		}
		return dir, nil, nil
	case driverSQLite:
		if path != sqlitekv.MemoryPath && filepath.Ext(path) == "" {
			path = filepath.Join(path, "forms.db")
		}
		store, err := sqlitekv.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", errUnknownDriver, driver)
	}
}

// loadSchema resolves ref as a schema file when one exists at that path,
// otherwise as a saved form id.
func (a *app) loadSchema(ctx context.Context, ref string) (model.FormSchema, error) {
	if info, err := os.Stat(ref); err == nil && !info.IsDir() {
		return schemaio.ReadFile(ref)
	}
	schema, ok, err := a.forms.GetFormByID(ctx, ref)
	if err != nil {
		return model.FormSchema{}, err
	}
	if !ok {
		return model.FormSchema{}, fmt.Errorf("%w: %q", errFormNotFound, ref)
	}
	return schema, nil
}

// loadValues reads a JSON or YAML object of field values. Lists become
// []string so checkbox values match what the session produces.
func loadValues(path string) (model.FormValues, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read values: %w", err)
	}
	raw := map[string]any{}
	if schemaio.FormatFromPath(path) == schemaio.FormatJSON {
		err = json.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("decode values %s: %w", path, err)
	}
	values := make(model.FormValues, len(raw))
	for key, value := range raw {
		if list, ok := value.([]any); ok {
			items := make([]string, 0, len(list))
			for _, item := range list {
				items = append(items, model.ValueString(item))
			}
			values[key] = items
			continue
		}
		values[key] = value
	}
	return values, nil
}

func writeOutput(a *app, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := a.io.out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
