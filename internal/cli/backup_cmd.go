package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Arpanmondalz/zen-spend/internal/backup"
)

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the ledger to a backup file (stdout when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExport,
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the ledger with the contents of a backup file",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	exportCmd.Flags().StringVarP(&flagPassphrase, "passphrase", "p", "", "Encrypt the backup with this passphrase")
	importCmd.Flags().StringVarP(&flagPassphrase, "passphrase", "p", "", "Passphrase for encrypted backups")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	loadEnvFile()
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	repo, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	data, err := backup.NewService(repo, nil).Export(context.Background(), flagPassphrase)
	if err != nil {
		return fmt.Errorf("export ledger: %w", err)
	}

	if len(args) == 0 {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(args[0], data, 0600); err != nil {
		return fmt.Errorf("write backup file: %w", err)
	}
	logger.Info("Backup written", "file", args[0], "bytes", len(data))
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	loadEnvFile()
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	repo, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read backup file: %w", err)
	}

	if err := backup.NewService(repo, nil).Import(context.Background(), data, flagPassphrase); err != nil {
		return fmt.Errorf("import ledger: %w", err)
	}
	logger.Info("Backup restored", "file", args[0])
	return nil
}
