package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"chief-of-staff-client/internal/config"
	"chief-of-staff-client/internal/integrations/backend"
	"chief-of-staff-client/internal/integrations/paramstore"
	"chief-of-staff-client/internal/repository"
	"chief-of-staff-client/internal/session"
)

var (
	flagProfile string
	flagStorage string
	flagDataDir string
	flagEnvFile string
)

var rootCmd = &cobra.Command{
	Use:           "cos",
	Short:         "Chief of Staff chat client",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTUI,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagProfile, "profile", "", "session profile (env COS_PROFILE)")
	flags.StringVar(&flagStorage, "storage", "", "token storage: pebble, dynamodb or memory (env COS_STORAGE)")
	flags.StringVar(&flagDataDir, "data-dir", "", "directory of the local token store (env COS_DATA_DIR)")
	flags.StringVar(&flagEnvFile, "env-file", ".env", "optional dotenv file")

	rootCmd.AddCommand(newAuthCmd("login"), newAuthCmd("register"), logoutCmd, googleLoginCmd, sendCmd, statusCmd)
}

// exitError ends the process with code after the failure has already
// been shown to the user.
type exitError struct {
	code int
}

func (e exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err == nil {
		return
	}
	var exit exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}
	fmt.Fprintln(os.Stderr, "Error:", err)
	os.Exit(1)
}

// runtime is what every command shares: settings, logger and the two
// halves of the client state (stored token, backend).
type runtime struct {
	cfg     *config.Config
	log     zerolog.Logger
	store   *session.Store
	backend *backend.Client
}

// loadConfig reads env (and the dotenv file) then applies explicit flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagEnvFile)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if flags.Changed("profile") {
		cfg.Profile = flagProfile
	}
	if flags.Changed("storage") {
		cfg.Storage = flagStorage
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = flagDataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func consoleLogger(cfg *config.Config) zerolog.Logger {
	return newLogger(cfg, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
}

// openRuntime wires storage and the backend client. AWS config is only
// loaded when DynamoDB storage or an SSM base URL is configured.
func openRuntime(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*runtime, error) {
	rt := &runtime{cfg: cfg, log: log}

	needsAWS := cfg.Storage == config.StorageDynamoDB || cfg.NeedsParamStore()
	var awsCfg *awsAPIs
	if needsAWS {
		loaded, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		awsCfg = &awsAPIs{
			dynamo: awsdynamodb.NewFromConfig(loaded),
			ssm:    awsssm.NewFromConfig(loaded),
		}
	}

	storage, err := openStorage(cfg, awsCfg, log)
	if err != nil {
		return nil, err
	}
	rt.store, err = session.New(storage, session.KeyForProfile(cfg.Profile))
	if err != nil {
		return nil, err
	}

	baseURL, err := resolveBaseURL(ctx, cfg, awsCfg)
	if err != nil {
		return nil, err
	}
	rt.backend, err = backend.NewClient(baseURL, backend.WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout}))
	if err != nil {
		return nil, err
	}
	log.Debug().
		Str("base_url", baseURL).
		Str("storage", cfg.Storage).
		Str("profile", cfg.Profile).
		Msg("client configured")
	return rt, nil
}

type awsAPIs struct {
	dynamo *awsdynamodb.Client
	ssm    *awsssm.Client
}

func openStorage(cfg *config.Config, aws *awsAPIs, log zerolog.Logger) (session.Storage, error) {
	switch cfg.Storage {
	case config.StorageMemory:
		return session.NewMemoryStorage(), nil
	case config.StorageDynamoDB:
		return repository.NewDynamoStore(aws.dynamo, cfg.SessionTable)
	default:
		dir := cfg.DataDir
		if dir == "" {
			base, err := os.UserConfigDir()
			if err != nil {
				return nil, fmt.Errorf("resolve data dir: %w", err)
			}
			dir = filepath.Join(base, "chief-of-staff", "session")
		}
		return repository.NewPebbleStore(dir, repository.WithPebbleLogger(log))
	}
}

func resolveBaseURL(ctx context.Context, cfg *config.Config, aws *awsAPIs) (string, error) {
	if !cfg.NeedsParamStore() {
		return cfg.BaseURL()
	}
	params, err := paramstore.New(aws.ssm)
	if err != nil {
		return "", err
	}
	return params.BaseURL(ctx, cfg.BaseURLParam)
}
