package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/handiism/trackyear/internal/audio"
	"github.com/handiism/trackyear/internal/catalog"
	"github.com/handiism/trackyear/internal/checkpoint"
	"github.com/handiism/trackyear/internal/config"
	"github.com/handiism/trackyear/internal/enrich"
	apphttp "github.com/handiism/trackyear/internal/http"
	"github.com/handiism/trackyear/internal/logging"
	"github.com/handiism/trackyear/internal/oracle"
)

type commandContext struct {
	configFlag  *string
	verboseFlag *bool

	configOnce sync.Once
	settings   *config.Settings
	logger     *slog.Logger
	logCloser  io.Closer
	configErr  error

	closers []io.Closer
}

func newCommandContext(configFlag *string, verboseFlag *bool) *commandContext {
	return &commandContext{
		configFlag:  configFlag,
		verboseFlag: verboseFlag,
	}
}

func (c *commandContext) configPath() string {
	if c.configFlag != nil {
		if path := strings.TrimSpace(*c.configFlag); path != "" {
			return path
		}
	}
	return config.DefaultPath()
}

func (c *commandContext) verbose() bool {
	return c.verboseFlag != nil && *c.verboseFlag
}

func (c *commandContext) ensureConfig() (*config.Settings, error) {
	c.configOnce.Do(func() {
		settings, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}

		level := settings.LogLevel
		if c.verbose() {
			level = "debug"
		}
		logger, closer, err := logging.New(logging.Options{
			Level:      level,
			Format:     settings.LogFormat,
			OutputPath: settings.LogFile,
		})
		if err != nil {
			c.configErr = err
			return
		}

		c.settings = settings
		c.logger = logger.With("run_id", uuid.NewString())
		c.logCloser = closer
	})
	return c.settings, c.configErr
}

func (c *commandContext) log() *slog.Logger {
	if c.logger == nil {
		return logging.Discard()
	}
	return c.logger
}

// track registers a resource released after the command returns.
func (c *commandContext) track(closer io.Closer) {
	c.closers = append(c.closers, closer)
}

func (c *commandContext) close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i].Close())
	}
	c.closers = nil
	if c.logCloser != nil {
		errs = append(errs, c.logCloser.Close())
		c.logCloser = nil
	}
	return errors.Join(errs...)
}

func (c *commandContext) extractor() *catalog.Extractor {
	return catalog.NewExtractor(catalog.Filter{
		LibraryRoot: c.settings.LibraryRoot,
		Categories:  c.settings.Categories,
		Extensions:  c.settings.Extensions,
	})
}

func (c *commandContext) openStore() (*checkpoint.Store, error) {
	store, err := checkpoint.Open(c.settings.ResultPath, c.settings.SnapshotPath)
	if errors.Is(err, checkpoint.ErrLocked) {
		return nil, fmt.Errorf("%w; is another trackyear command running?", err)
	}
	if err != nil {
		return nil, err
	}
	c.track(store)
	return store, nil
}

func (c *commandContext) tagStore() *audio.Store {
	return audio.NewStore(nil)
}

// lookup builds the oracle client, wrapped with the answer cache when one
// is configured.
func (c *commandContext) lookup() (oracle.Lookup, error) {
	s := c.settings
	base, maxDelay := s.OracleBackoff()
	client := oracle.NewClient(
		oracle.Config{
			APIKey:         s.OracleAPIKey,
			BaseURL:        s.OracleBaseURL,
			Model:          s.OracleModel,
			TimeoutSeconds: s.OracleTimeoutSeconds,
		},
		oracle.WithHTTPClient(apphttp.NewClient(apphttp.WithTimeout(s.OracleTimeout()))),
		oracle.WithRetryMaxAttempts(s.OracleMaxRetries+1),
		oracle.WithRetryBackoff(base, maxDelay),
	)
	if s.CachePath == "" {
		return client, nil
	}

	cache, err := oracle.OpenCache(s.CachePath)
	if err != nil {
		return nil, fmt.Errorf("open answer cache: %w", err)
	}
	c.track(cache)

	cached := oracle.NewCached(client, cache)
	cached.OnCacheError = func(err error) {
		c.log().Warn("answer cache unavailable", "error", err)
	}
	return cached, nil
}

// logProgress maps pipeline events onto the logger.
func (c *commandContext) logProgress(event enrich.ProgressEvent) {
	logger := c.log()
	switch event.Level {
	case enrich.LevelError:
		logger.Error(event.Message)
	case enrich.LevelWarning:
		logger.Warn(event.Message)
	case enrich.LevelVerbose:
		logger.Debug(event.Message)
	default:
		logger.Info(event.Message)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// stdinIsTerminal reports whether interactive prompts can be shown.
var stdinIsTerminal = func() bool {
	return isTerminal(os.Stdin) && isTerminal(os.Stdout)
}
