package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	app "github.com/rocketscienceinc/whoisthemole/internal"
	"github.com/rocketscienceinc/whoisthemole/internal/config"
)

const releaseVersion = "0.1.0"

type flags struct {
	config string
	server string
	name   string
	resume bool
}

// main - is the entry point of the application. It loads .env, parses the command line and runs the client.
func main() {
	defer func() {
		if err := recover(); err != nil {
			fmt.Fprintf(os.Stderr, "recovered from panic: %v\n", err)
			os.Exit(1)
		}
	}()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "could not load .env: %v\n", err)
	}

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}

	play := func(cmd *cobra.Command, _ []string) error {
		conf := initConfig(f)
		logger, closeLog := initLogger(conf)
		defer closeLog()

		if err := app.RunApp(logger, conf, app.Options{Name: f.name, Resume: f.resume}); err != nil {
			return fmt.Errorf("app run failed: %w", err)
		}
		return nil
	}

	root := &cobra.Command{
		Use:           "mole",
		Short:         "Terminal client for the Who is the Mole party game.",
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		RunE:          play,
	}

	root.SetGlobalNormalizationFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	pf := root.PersistentFlags()
	pf.StringVarP(&f.config, "config", "c", "config.yml", "path to the config file")
	pf.StringVarP(&f.server, "server", "s", "", "game server URL (env: MOLE_SERVER_URL)")

	root.Flags().StringVarP(&f.name, "name", "n", "", "pre-fill the join screen with this name")
	root.Flags().BoolVar(&f.resume, "resume", false, "re-join with the identity remembered for this server")

	playCmd := &cobra.Command{
		Use:   "play",
		Short: "Join the game (default command)",
		Args:  cobra.NoArgs,
		RunE:  play,
	}
	playCmd.Flags().AddFlagSet(root.Flags())

	shareCmd := &cobra.Command{
		Use:   "share",
		Short: "Print the server URL as a QR code for other players",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := initConfig(f)
			return printQRCode(cmd.OutOrStdout(), conf.Server.URL)
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "mole v%s\n", releaseVersion)
		},
	}

	root.AddCommand(playCmd, shareCmd, versionCmd)

	return root
}

func printQRCode(w io.Writer, url string) error {
	code, err := qrcode.New(url, qrcode.Medium)
	if err != nil {
		return fmt.Errorf("failed to encode %s as QR code: %w", url, err)
	}

	if _, err = fmt.Fprintf(w, "%s\n%s\n", code.ToSmallString(false), url); err != nil {
		return fmt.Errorf("failed to write QR code: %w", err)
	}
	return nil
}

// initialize config.
func initConfig(f *flags) *config.Config {
	path := f.config
	if !filepath.IsAbs(path) {
		baseDir, err := os.Getwd()
		if err != nil {
			panic(fmt.Errorf("failed to get current directory: %w", err))
		}
		path = filepath.Join(baseDir, path)
	}

	conf := config.MustLoad(path)
	if f.server != "" {
		conf.Server.URL = f.server
	}

	return conf
}

// initialize logger. Stdout belongs to the terminal UI, so records go to the log file.
func initLogger(conf *config.Config) (*slog.Logger, func()) {
	var level slog.Level

	switch conf.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var (
		out     io.Writer = os.Stderr
		closeFn           = func() {}
	)

	if conf.LogFile != "-" {
		file, err := os.OpenFile(conf.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			panic(fmt.Errorf("failed to open log file: %w", err))
		}
		out = file
		closeFn = func() { _ = file.Close() }
	}

	return slog.New(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level})), closeFn
}
