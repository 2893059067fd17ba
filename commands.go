package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"league_results_importer/internal/csvimport"
	"league_results_importer/internal/logger"
	"league_results_importer/internal/output"
	"league_results_importer/internal/protocol"
	"league_results_importer/internal/standings"
	"league_results_importer/internal/timecodec"
	"league_results_importer/internal/usererr"
)

const shutdownTimeout = 10 * time.Second

func newImportCmd(a *app) *cobra.Command {
	var (
		session  csvimport.SessionContext
		format   string
		xlsxPath string
	)
	cmd := &cobra.Command{
		Use:   "import <file.csv>",
		Short: "Parse a results CSV and print the standings",
		Long: `Parse a race or qualifying results CSV, match drivers against the roster
and print the resulting positions. Use "-" to read the CSV from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := openInput(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			defer in.Close()

			result, err := a.service.Import(cmd.Context(), in, session)
			if err != nil {
				return err
			}

			if xlsxPath != "" {
				if err := writeProtocolFile(xlsxPath, result.Standings); err != nil {
					return err
				}
				logger.L().Info("Protocol written", zap.String("path", xlsxPath))
			}

			if err := output.Render(cmd.OutOrStdout(), format, result); err != nil {
				if errors.Is(err, output.ErrUnknownFormat) {
					return usererr.NewExpectedError(err)
				}
				return err
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&session.IsQualifying, "qualifying", false, "the CSV holds qualifying results")
	cmd.Flags().BoolVar(&session.RaceTimesRequired, "race-times-required", true, "require the time columns for the session type")
	cmd.Flags().StringVarP(&format, "output", "o", output.FormatTable, "output format: table, json or yaml")
	cmd.Flags().StringVar(&xlsxPath, "xlsx", "", "also write an xlsx protocol to this path")
	return cmd
}

func openInput(path string, stdin io.Reader) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, usererr.NewExpectedError(
			errors.WithHint(errors.Wrapf(err, "open %s", path), "pass the path of a results CSV or - for stdin"))
	}
	return f, nil
}

func writeProtocolFile(path string, s standings.Standings) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "create %s", path)
	}
	if err := protocol.Write(f, s); err != nil {
		f.Close()
		return err
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the import API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
	cmd.Flags().String("addr", ":8080", "listen address")
	bindKey(cmd.Flags(), "addr", "server.addr")
	return cmd
}

func (a *app) serve(ctx context.Context) error {
	cfg := a.cfg.Server
	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      newServer(a.service, cfg.MaxUploadBytes).routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	logger.L().Info("Listening", zap.String("addr", cfg.Addr))

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrapf(err, "listen on %s", cfg.Addr)
	case <-ctx.Done():
		logger.L().Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Wrap(httpServer.Shutdown(shutdownCtx), "shutdown")
	}
}

func newNormalizeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "normalize <time>...",
		Short:   "Show how times are normalized and converted to milliseconds",
		Example: `  leagueresults normalize 1:30.1 "+ 2.5" 1:23:45.678`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			times := make([]timecodec.Inspection, 0, len(args))
			for _, arg := range args {
				times = append(times, timecodec.Inspect(arg))
			}
			if err := output.Render(cmd.OutOrStdout(), format, times); err != nil {
				return usererr.NewExpectedError(err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&format, "output", "o", output.FormatTable, "output format: table, json or yaml")
	return cmd
}
