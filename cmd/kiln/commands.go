package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ARTM2000/kiln/config"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the stored definition keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.open()
			if err != nil {
				return err
			}
			for _, key := range st.Keys() {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
			return nil
		},
	}
}

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print one definition as nested YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.open()
			if err != nil {
				return err
			}
			def, err := st.GetDefinition(args[0])
			if err != nil {
				return err
			}

			view := config.NewStore(nil, config.Nested)
			if err := view.SaveDefinition(args[0], def); err != nil {
				return err
			}
			data, err := view.Marshal(config.FormatYAML)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete KEY",
		Short: "Remove a definition and save the file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.open()
			if err != nil {
				return err
			}
			if err := st.DeleteDefinition(args[0]); err != nil {
				return err
			}
			a.logger.Info("definition deleted", zap.String("key", args[0]), zap.String("path", st.Path()))
			return nil
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Parse every definition and report the ones that fail",
		Long: `Parse every stored definition and report failures.

With watch enabled in the settings, validation runs again after every change
to the file until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.open()
			if err != nil {
				return err
			}
			if !a.settings.Watch {
				return validateAll(cmd.OutOrStdout(), st)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := validateAll(cmd.OutOrStdout(), st); err != nil {
				a.logger.Warn("validation failed", zap.Error(err))
			}
			return st.Watch(ctx, func() {
				if err := validateAll(cmd.OutOrStdout(), st); err != nil {
					a.logger.Warn("validation failed", zap.Error(err))
				}
			})
		},
	}
}

func validateAll(w io.Writer, st *config.FileStore) error {
	keys := st.Keys()
	failed := 0
	for _, key := range keys {
		if _, err := st.GetDefinition(key); err != nil {
			failed++
			fmt.Fprintf(w, "FAIL %s: %v\n", key, err)
			continue
		}
		fmt.Fprintf(w, "ok   %s\n", key)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d definitions are invalid", failed, len(keys))
	}
	return nil
}

func newConvertCmd(a *app) *cobra.Command {
	var to, out string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Write the definitions to another file in another encoding",
		Example: `  # Move a legacy flat file to the nested layout as JSON
  kiln convert --store legacy.yaml --encoding flat --to nested --out defs.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			enc, err := config.ParseEncoding(to)
			if err != nil {
				return err
			}
			st, err := a.open()
			if err != nil {
				return err
			}

			converted, failed := st.Reencode(enc)
			for key, err := range failed {
				a.logger.Error("definition skipped", zap.String("key", key), zap.Error(err))
			}

			data, err := converted.Marshal(config.FormatFromPath(out))
			if err != nil {
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			a.logger.Info("definitions converted",
				zap.String("path", out),
				zap.Stringer("encoding", enc),
				zap.Int("count", len(converted.Keys())),
			)
			if len(failed) > 0 {
				return fmt.Errorf("%d definitions could not be converted", len(failed))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&to, "to", "nested", "target encoding: nested or flat")
	cmd.Flags().StringVar(&out, "out", "", "output file; .json selects JSON")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Reload the definition file on change and log each reload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.open()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return watch(ctx, st, a.logger)
		},
	}
}

func watch(ctx context.Context, st *config.FileStore, logger *zap.Logger) error {
	logger.Info("watching definitions", zap.String("path", st.Path()), zap.Int("count", len(st.Keys())))
	return st.Watch(ctx, func() {
		logger.Info("definitions changed", zap.String("path", st.Path()), zap.Int("count", len(st.Keys())))
	})
}
