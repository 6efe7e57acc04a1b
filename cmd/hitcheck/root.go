package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"hitbuilder/internal/server/infra/mp"
)

var errInvalid = errors.New("hit is invalid")

type options struct {
	v      *viper.Viper
	logger *zap.SugaredLogger
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	opts := &options{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "hitcheck",
		Short:         "Parse, validate and send Measurement Protocol hits",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.init(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if opts.logger != nil {
				_ = opts.logger.Sync()
			}
		},
	}

	rootCmd.SetIn(in)
	rootCmd.SetOut(out)

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "config file (yaml)")
	flags.String("debug-endpoint", mp.DefaultDebugEndpoint, "validation endpoint")
	flags.String("collect-endpoint", mp.DefaultCollectEndpoint, "collect endpoint")
	flags.Duration("timeout", mp.DefaultTimeout, "request timeout")
	flags.Bool("verbose", false, "log requests")

	rootCmd.AddCommand(
		newParseCmd(),
		newValidateCmd(opts),
		newSendCmd(opts),
		newTypesCmd(),
	)

	return rootCmd
}

func (o *options) init(cmd *cobra.Command) error {
	if err := o.v.BindPFlags(cmd.Flags()); err != nil {
		return fmt.Errorf("failed to bind flags: %w", err)
	}

	o.v.SetEnvPrefix("HITCHECK")
	o.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	o.v.AutomaticEnv()

	if path := o.v.GetString("config"); path != "" {
		o.v.SetConfigFile(path)
		o.v.SetConfigType("yaml")

		if err := o.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	if !o.v.GetBool("verbose") {
		o.logger = zap.NewNop().Sugar()
		return nil
	}

	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("can't initialize logger: %w", err)
	}
	o.logger = logger.Sugar()

	return nil
}

func (o *options) client() *mp.Client {
	return mp.NewClient(mp.Config{
		Logger:          o.logger,
		DebugEndpoint:   o.v.GetString("debug-endpoint"),
		CollectEndpoint: o.v.GetString("collect-endpoint"),
		Timeout:         o.v.GetDuration("timeout"),
	})
}

func (o *options) timeout() time.Duration {
	return o.v.GetDuration("timeout")
}

// readHit берет хит из аргумента или из stdin, если аргумента нет или он равен "-".
func readHit(cmd *cobra.Command, args []string) (string, error) {
	if len(args) > 0 && args[0] != "-" {
		return args[0], nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read hit: %w", err)
	}

	return strings.TrimSpace(string(data)), nil
}
