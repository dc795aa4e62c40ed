package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"fasterdata-tuning/internal/application/usecases"
	domainErrors "fasterdata-tuning/internal/domain/errors"
	"fasterdata-tuning/internal/domain/services"
	"fasterdata-tuning/internal/infrastructure/catalogue"
	"fasterdata-tuning/internal/infrastructure/config"
	"fasterdata-tuning/internal/infrastructure/container"
	"fasterdata-tuning/internal/infrastructure/health"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// ldflags로 주입됩니다
var version = "dev"

// exitError는 종료 코드를 가진 에러입니다
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit code %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func fatal(err error) error {
	return &exitError{code: usecases.ExitFatal, err: err}
}

// globalOptions는 모든 하위 명령이 공유하는 플래그입니다
type globalOptions struct {
	logLevel  string
	logFormat string
	quiet     bool
}

// tuneOptions는 튜닝 실행 플래그입니다
type tuneOptions struct {
	dryRun        bool
	pacingGbps    float64
	cataloguePath string
	persist       bool
	ringMax       bool
	pauseFrames   string
	interfaces    []string
	metricsFile   string
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := newRootCommand()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)
	if err == nil {
		return usecases.ExitOK
	}

	var exitErr *exitError
	if errors.As(err, &exitErr) {
		if exitErr.err != nil {
			fmt.Fprintln(os.Stderr, "error:", exitErr.err)
		}
		return exitErr.code
	}

	// 플래그 파싱 등 cobra 자체 에러
	fmt.Fprintln(os.Stderr, "error:", err)
	return usecases.ExitFatal
}

func newRootCommand() *cobra.Command {
	global := &globalOptions{}
	tune := &tuneOptions{}

	root := &cobra.Command{
		Use:   "fasterdata-tuning",
		Short: "Apply fasterdata.es.net Linux host network tuning",
		Long: `Applies the Linux host tuning recommendations from https://fasterdata.es.net/host-tuning/linux/:
sysctl TCP buffer sizes, fq pacing, NIC ring buffer sizes and pause frame checks.

Every directive is read first and only changed when it differs from the desired value.
Use --dry-run to see what would change without touching the host.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTune(cmd.Context(), cmd, global, tune)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&global.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")
	pf.StringVar(&global.logFormat, "log-format", "json", "log format: json or text")
	pf.BoolVarP(&global.quiet, "quiet", "q", false, "only log errors")

	f := root.Flags()
	f.BoolVarP(&tune.dryRun, "dry-run", "n", false, "show planned changes without applying them")
	f.Float64Var(&tune.pacingGbps, "pacing", 0, "fq maxrate pacing in Gbit/s for every interface (0 disables)")
	f.StringVar(&tune.cataloguePath, "catalogue", "", "YAML catalogue file to apply instead of the computed recommendations")
	f.BoolVar(&tune.persist, "persist", true, "write the sysctl values to the managed block in the sysctl config file")
	f.BoolVar(&tune.ringMax, "ring-max", false, "raise RX/TX ring buffers to the NIC maximum")
	f.StringVar(&tune.pauseFrames, "pause-frames", "", "verify that RX/TX pause frames are on|off (empty skips the check)")
	f.StringSliceVar(&tune.interfaces, "interfaces", nil, "restrict NIC directives to these interfaces")
	f.StringVar(&tune.metricsFile, "metrics-file", "", "write Prometheus metrics to this textfile (overrides METRICS_FILE)")

	root.AddCommand(newCheckCommand(global), newCatalogueCommand(global, tune))
	return root
}

// newCheckCommand는 도구와 권한을 점검하는 check 명령을 만듭니다
func newCheckCommand(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Check that the host has the tools needed for tuning",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(global, "")
			if err != nil {
				return fatal(err)
			}
			appContainer, err := container.NewContainer(cfg, logger)
			if err != nil {
				return fatal(err)
			}

			response := appContainer.GetHealthService().Check(cmd.Context())
			if err := health.WriteJSON(cmd.OutOrStdout(), response); err != nil {
				return fatal(err)
			}
			if response.Status == health.StatusUnhealthy {
				return &exitError{code: usecases.ExitDirectiveFailed}
			}
			return nil
		},
	}
}

// newCatalogueCommand는 계산된 카탈로그를 YAML로 출력하는 명령을 만듭니다.
// 출력은 --catalogue로 다시 읽을 수 있습니다.
func newCatalogueCommand(global *globalOptions, tune *tuneOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalogue",
		Short: "Print the computed tuning catalogue as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(global, "")
			if err != nil {
				return fatal(err)
			}
			appContainer, err := container.NewContainer(cfg, logger)
			if err != nil {
				return fatal(err)
			}

			cat, _, err := appContainer.GetCatalogueBuilder().Build(cmd.Context(), buildOptions(tune))
			if err != nil {
				return fatal(err)
			}
			data, err := catalogue.Marshal(cat)
			if err != nil {
				return fatal(err)
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}

	f := cmd.Flags()
	f.Float64Var(&tune.pacingGbps, "pacing", 0, "fq maxrate pacing in Gbit/s for every interface (0 disables)")
	f.BoolVar(&tune.ringMax, "ring-max", false, "raise RX/TX ring buffers to the NIC maximum")
	f.StringVar(&tune.pauseFrames, "pause-frames", "", "verify that RX/TX pause frames are on|off (empty skips the check)")
	f.StringSliceVar(&tune.interfaces, "interfaces", nil, "restrict NIC directives to these interfaces")
	return cmd
}

// setup은 설정을 읽고 플래그를 반영한 뒤 로거를 만듭니다
func setup(global *globalOptions, metricsFile string) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.NewEnvironmentConfigLoader().Load()
	if err != nil {
		return nil, nil, err
	}

	if global.logLevel != "" {
		cfg.Output.LogLevel = global.logLevel
	}
	if metricsFile != "" {
		cfg.Output.MetricsFile = metricsFile
	}
	if err := config.Validate(cfg); err != nil {
		return nil, nil, err
	}

	logger, err := newLogger(cfg.Output.LogLevel, global.logFormat, global.quiet)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

func newLogger(level, format string, quiet bool) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	switch strings.ToLower(format) {
	case "json", "":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, domainErrors.NewValidationError(fmt.Sprintf("unknown log format: %s", format), nil)
	}

	logLevel, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, domainErrors.NewValidationError("invalid log level", err)
	}
	if quiet && logLevel > logrus.ErrorLevel {
		logLevel = logrus.ErrorLevel
	}
	logger.SetLevel(logLevel)
	return logger, nil
}

func buildOptions(tune *tuneOptions) services.BuildOptions {
	return services.BuildOptions{
		PacingGbps:  tune.pacingGbps,
		RingMax:     tune.ringMax,
		PauseFrames: tune.pauseFrames,
		Interfaces:  tune.interfaces,
	}
}

// checkHost는 Linux 여부와 변경 실행에 필요한 root 권한을 확인합니다
func checkHost(dryRun bool) error {
	if runtime.GOOS != "linux" {
		return domainErrors.NewSystemError(fmt.Sprintf("unsupported operating system: %s (Linux only)", runtime.GOOS), nil)
	}
	if !dryRun && os.Geteuid() != 0 {
		return domainErrors.NewPermissionDeniedError("root privileges are required to apply tuning (use --dry-run to preview)", nil)
	}
	return nil
}

func runTune(ctx context.Context, cmd *cobra.Command, global *globalOptions, tune *tuneOptions) error {
	cfg, logger, err := setup(global, tune.metricsFile)
	if err != nil {
		return fatal(err)
	}

	if err := checkHost(tune.dryRun); err != nil {
		return fatal(err)
	}

	if tune.pacingGbps < 0 {
		return fatal(domainErrors.NewValidationError("--pacing must not be negative", nil))
	}

	appContainer, err := container.NewContainer(cfg, logger)
	if err != nil {
		return fatal(err)
	}

	app := NewApplication(appContainer, logger, cmd.OutOrStdout())
	code, err := app.Run(ctx, tune)
	if err != nil {
		return &exitError{code: code, err: err}
	}
	if code != usecases.ExitOK {
		return &exitError{code: code}
	}
	return nil
}
