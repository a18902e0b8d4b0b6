package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"earthborne-tracker/apperr"
	"earthborne-tracker/catalog"
	"earthborne-tracker/database"
	"earthborne-tracker/services"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)

	exportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")
	importCmd.Flags().String("owner", "", "External user id to own the imported campaign")
}

var exportCmd = &cobra.Command{
	Use:   "export CAMPAIGN_ID",
	Short: "Write a campaign snapshot as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Create a campaign from a snapshot file",
	Long:  `Validates the whole document first and reports every problem; nothing is written unless it is clean.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func snapshotService() (*services.SnapshotService, error) {
	db, err := database.Postgres(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load(db)
	if err != nil {
		return nil, err
	}
	return services.NewSnapshotService(db, cat, services.NewPoolService(db, cat), logger), nil
}

func runExport(cmd *cobra.Command, args []string) error {
	svc, err := snapshotService()
	if err != nil {
		return err
	}
	snap, err := svc.Export(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

func runImport(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	doc, err := decodeSnapshot(f)
	if err != nil {
		return err
	}

	svc, err := snapshotService()
	if err != nil {
		return err
	}
	var owner *string
	if o, _ := cmd.Flags().GetString("owner"); o != "" {
		owner = &o
	}

	campaign, err := svc.Import(doc, owner)
	if err != nil {
		if details := apperr.DetailsOf(err); len(details) > 0 {
			return fmt.Errorf("%w:\n  %s", err, strings.Join(details, "\n  "))
		}
		return err
	}
	logger.Info("[import] campaign created", zap.String("campaign_id", campaign.ID), zap.String("name", campaign.Name))
	fmt.Fprintln(cmd.OutOrStdout(), campaign.ID)
	return nil
}

func decodeSnapshot(r io.Reader) (*services.Snapshot, error) {
	var doc services.Snapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("invalid snapshot file: %w", err)
	}
	return &doc, nil
}
