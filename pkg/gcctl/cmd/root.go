package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/telekom/gcctl/pkg/gcctl/config"
	"github.com/telekom/gcctl/pkg/gcctl/output"
	"github.com/telekom/gcctl/pkg/metrics"
)

type Config struct {
	ConfigPath   string
	OutputWriter io.Writer
	// ErrWriter receives log output. Defaults to stderr.
	ErrWriter io.Writer
	// Input feeds interactive commands. Defaults to stdin.
	Input io.Reader
}

type runtimeState struct {
	configPath             string
	cfg                    *config.Config
	outputFormat           string
	regionOverride         string
	tokenStorageOverride   string
	credentialFileOverride string
	metricsTextfile        string
	verbose                bool
	writer                 io.Writer
	errWriter              io.Writer
	input                  io.Reader

	log            *zap.SugaredLogger
	correlationID  string
	metricsWritten bool
}

type runtimeKey struct{}

func DefaultConfig() Config {
	return Config{
		ConfigPath:   config.DefaultConfigPath(),
		OutputWriter: os.Stdout,
		ErrWriter:    os.Stderr,
		Input:        os.Stdin,
	}
}

func NewRootCommand(cfg Config) *cobra.Command {
	rt := &runtimeState{
		configPath: cfg.ConfigPath,
		writer:     cfg.OutputWriter,
		errWriter:  cfg.ErrWriter,
		input:      cfg.Input,
	}

	root := &cobra.Command{
		Use:           "gcctl",
		Short:         "Genesys Cloud provisioning and messaging CLI",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if rt.writer == nil {
				rt.writer = os.Stdout
			}
			if rt.errWriter == nil {
				rt.errWriter = os.Stderr
			}
			if rt.input == nil {
				rt.input = os.Stdin
			}
			if rt.configPath == "" {
				rt.configPath = config.DefaultConfigPath()
			}
			if rt.outputFormat == "" {
				rt.outputFormat = os.Getenv("GCCTL_OUTPUT")
			}
			if rt.regionOverride == "" {
				rt.regionOverride = os.Getenv("GCCTL_REGION")
			}
			if rt.tokenStorageOverride == "" {
				rt.tokenStorageOverride = os.Getenv("GCCTL_TOKEN_STORAGE")
			}
			if !rt.verbose {
				rt.verbose = strings.EqualFold(os.Getenv("GCCTL_VERBOSE"), "true")
			}
			rt.log = newLogger(rt.verbose, rt.errWriter).Sugar()
			rt.correlationID = uuid.NewString()

			if cmd.Name() == "init" && cmd.Parent() != nil && cmd.Parent().Name() == "config" {
				return nil
			}
			if cmd.Name() == "version" || cmd.Name() == "completion" {
				return nil
			}
			return rt.EnsureConfigLoaded()
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			return rt.writeMetrics()
		},
	}

	root.PersistentFlags().StringVar(&rt.configPath, "config", rt.configPath, "Path to config file")
	root.PersistentFlags().StringVarP(&rt.outputFormat, "output", "o", "", "Output format: table, json, yaml")
	root.PersistentFlags().StringVar(&rt.regionOverride, "region", "", "Region host, e.g. cac1.pure.cloud")
	root.PersistentFlags().StringVar(&rt.tokenStorageOverride, "token-storage", "", "Credential storage backend: file or keychain")
	root.PersistentFlags().StringVar(&rt.credentialFileOverride, "credential-file", "", "Credential file used by file storage")
	root.PersistentFlags().StringVar(&rt.metricsTextfile, "metrics-textfile", "", "Write run metrics in Prometheus text format to this file")
	root.PersistentFlags().BoolVarP(&rt.verbose, "verbose", "v", false, "Enable debug logging")

	root.SetContext(context.WithValue(context.Background(), runtimeKey{}, rt))

	root.AddCommand(
		NewConfigCommand(),
		NewAuthCommand(),
		NewProvisionCommand(),
		NewMessageCommand(),
		NewDivisionCommand(),
		NewWhoamiCommand(),
		NewCompletionCommand(),
		NewVersionCommand(),
	)

	return root
}

// newLogger builds the console logger on w; stdout stays reserved for
// command results.
func newLogger(verbose bool, w io.Writer) *zap.Logger {
	cfg := zap.NewProductionConfig()
	if verbose {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.EncodeTime = func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(t.UTC().Format(time.RFC3339))
	}
	cfg.EncoderConfig.TimeKey = "ts"
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(cfg.EncoderConfig), zapcore.AddSync(w), cfg.Level)
	return zap.New(core)
}

func getRuntime(cmd *cobra.Command) (*runtimeState, error) {
	rt, ok := cmd.Context().Value(runtimeKey{}).(*runtimeState)
	if !ok || rt == nil {
		return nil, errors.New("runtime not initialized")
	}
	return rt, nil
}

func (rt *runtimeState) EnsureConfigLoaded() error {
	if rt.cfg != nil {
		return nil
	}
	cfg, err := config.Load(rt.configPathValue())
	if err != nil {
		return err
	}
	if rt.regionOverride != "" {
		cfg.Region = rt.regionOverride
	}
	if rt.tokenStorageOverride != "" {
		cfg.Settings.TokenStorage = rt.tokenStorageOverride
	}
	if rt.credentialFileOverride != "" {
		cfg.Settings.CredentialFile = rt.credentialFileOverride
	}
	if rt.metricsTextfile != "" {
		cfg.Settings.MetricsTextfile = rt.metricsTextfile
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	rt.cfg = cfg
	return nil
}

func (rt *runtimeState) OutputFormat() (output.Format, error) {
	if rt.outputFormat != "" {
		return output.ParseFormat(rt.outputFormat)
	}
	if rt.cfg != nil && rt.cfg.Settings.OutputFormat != "" {
		return output.ParseFormat(rt.cfg.Settings.OutputFormat)
	}
	return output.FormatTable, nil
}

func (rt *runtimeState) TokenStorage() string {
	if rt.tokenStorageOverride != "" {
		return rt.tokenStorageOverride
	}
	if rt.cfg != nil && rt.cfg.Settings.TokenStorage != "" {
		return rt.cfg.Settings.TokenStorage
	}
	return config.TokenStorageFile
}

func (rt *runtimeState) CredentialFile() string {
	if rt.credentialFileOverride != "" {
		return rt.credentialFileOverride
	}
	if rt.cfg != nil && rt.cfg.Settings.CredentialFile != "" {
		return rt.cfg.Settings.CredentialFile
	}
	return config.DefaultCredentialPath()
}

func (rt *runtimeState) Writer() io.Writer {
	if rt.writer != nil {
		return rt.writer
	}
	return os.Stdout
}

func (rt *runtimeState) Logger() *zap.SugaredLogger {
	if rt.log == nil {
		return zap.NewNop().Sugar()
	}
	return rt.log
}

func (rt *runtimeState) configPathValue() string {
	if rt.configPath == "" {
		return config.DefaultConfigPath()
	}
	return rt.configPath
}

// writeMetrics exports the metrics textfile once per run.
func (rt *runtimeState) writeMetrics() error {
	if rt.metricsWritten {
		return nil
	}
	rt.metricsWritten = true
	path := rt.metricsTextfile
	if path == "" && rt.cfg != nil {
		path = rt.cfg.Settings.MetricsTextfile
	}
	return metrics.WriteTextfile(path)
}
