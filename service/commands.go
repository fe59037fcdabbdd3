package service

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"feedgram/app/logging"
	"feedgram/app/repositories"

	"github.com/spf13/cobra"
)

func (c *cli) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a new empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := c.cfg.Storage.Path
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintln(out, "Database already exists. Use 'clean' first if you want to reinitialize.")
				return nil
			}
			if err := os.MkdirAll(path, 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
			store, err := c.openStore()
			if err != nil {
				return err
			}
			if err := store.Close(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Database initialized successfully")
			return nil
		},
	}
}

func (c *cli) cleanCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := c.cfg.Storage.Path
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintln(out, "Database is already clean (does not exist)")
				return nil
			}
			if !yes && !confirm(cmd, "Are you sure you want to clean the database? This cannot be undone.") {
				fmt.Fprintln(out, "Operation cancelled")
				return nil
			}
			if err := os.RemoveAll(path); err != nil {
				return fmt.Errorf("failed to clean database: %w", err)
			}
			fmt.Fprintln(out, "Database cleaned successfully")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (c *cli) backupCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Write a full backup of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if _, err := os.Stat(c.cfg.Storage.Path); errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("no database exists at %s", c.cfg.Storage.Path)
			}

			if output == "" {
				output = filepath.Join(c.cfg.Storage.BackupDir, fmt.Sprintf("backup_%d.db", time.Now().Unix()))
			}
			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				return fmt.Errorf("failed to create backup directory: %w", err)
			}

			store, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create backup file: %w", err)
			}
			defer f.Close()

			version, err := store.Backup(f)
			if err != nil {
				return err
			}
			if err := f.Sync(); err != nil {
				return fmt.Errorf("failed to flush backup file: %w", err)
			}
			fmt.Fprintf(out, "Database backed up successfully to %s (version %d)\n", output, version)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "out", "o", "", "backup file, defaults to <backup_dir>/backup_<unix>.db")
	return cmd
}

func (c *cli) restoreCmd() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Replace the database with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			backupFile := args[0]

			f, err := os.Open(backupFile)
			if err != nil {
				return fmt.Errorf("backup file does not exist: %s", backupFile)
			}
			defer f.Close()

			path := c.cfg.Storage.Path
			_, statErr := os.Stat(path)
			existing := statErr == nil
			if existing && !yes && !confirm(cmd, "Existing database found. Do you want to replace it?") {
				fmt.Fprintln(out, "Operation cancelled")
				return nil
			}
			if err := os.MkdirAll(path, 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}

			store, err := c.openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			if existing {
				if err := store.Clear(); err != nil {
					return fmt.Errorf("failed to clear existing database: %w", err)
				}
			}
			// An empty file is the backup of an empty database.
			if err := store.Restore(f); err != nil {
				return err
			}
			fmt.Fprintln(out, "Database restored successfully")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func (c *cli) openStore() (*repositories.Store, error) {
	return repositories.Open(repositories.Options{
		Path:       c.cfg.Storage.Path,
		SyncWrites: c.cfg.Storage.SyncWrites,
		Logger:     logging.NewBadgerLogger(c.logger),
	})
}

// confirm asks a yes/no question on the command's input. Only "y" or "Y" accepts.
func confirm(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", question)
	answer, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false
	}
	answer = strings.TrimSpace(answer)
	return answer == "y" || answer == "Y"
}
