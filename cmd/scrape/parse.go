package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"fnsearch/internal/elm"
	"fnsearch/internal/gateway/app"
	"fnsearch/internal/indexer"
	"fnsearch/internal/safeio"

	"github.com/spf13/cobra"
)

func runParse(cmd *cobra.Command, args []string) error {
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	fsys, err := safeio.NewSafeFS(filepath.Dir(abs))
	if err != nil {
		return err
	}
	exports, err := indexer.ParseFile(fsys, filepath.Base(abs))
	if err != nil {
		return err
	}
	if exports == nil {
		exports = elm.Exports{}
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(exports)
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	st, err := app.OpenStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()
	if err := st.Migrate(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", st.Backend())
	return nil
}
