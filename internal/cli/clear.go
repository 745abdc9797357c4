package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var flagYes bool

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all expenses, parked items, and settings",
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Skip the confirmation prompt")
	rootCmd.AddCommand(clearCmd)
}

func runClear(cmd *cobra.Command, _ []string) error {
	loadEnvFile()
	logger := setupLogger()

	if !flagYes {
		fmt.Fprint(os.Stderr, "This wipes the entire ledger. Type 'yes' to continue: ")
		line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
		if strings.TrimSpace(line) != "yes" {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return nil
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	repo, err := openStorage(cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.ClearAll(context.Background()); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	logger.Info("Ledger cleared")
	return nil
}
