package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ersonp/chara/internal/application/handlers"
	"github.com/ersonp/chara/internal/infrastructure/config"
	"github.com/ersonp/chara/internal/infrastructure/relationaldb/sqlite"
)

func newInitCmd() *cobra.Command {
	var noArchive bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize chara in the current directory",
		Long:  "Creates a .chara directory with default configuration and an empty SQLite export archive.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, noArchive)
		},
	}

	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Do not create the SQLite export archive")

	return cmd
}

func runInit(cmd *cobra.Command, noArchive bool) error {
	ctx := cmd.Context()

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if config.Exists(cwd) {
		return fmt.Errorf("chara already initialized in %s", cwd)
	}

	if noArchive {
		return reportInit(handlers.NewInitHandler(nil).Handle(ctx, cwd))
	}

	if err := os.MkdirAll(config.ConfigDir(cwd), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	repo, err := sqlite.NewRepository(config.SQLiteConfig{
		Path: filepath.Join(config.ConfigDir(cwd), config.DefaultArchiveFile),
	})
	if err != nil {
		return fmt.Errorf("creating sqlite repository: %w", err)
	}
	defer repo.Close()

	return reportInit(handlers.NewInitHandler(repo).Handle(ctx, cwd))
}

func reportInit(result *handlers.InitResult, err error) error {
	if err != nil {
		return err
	}

	fmt.Printf("Created %s\n", result.ConfigPath)
	if result.ArchiveReady {
		fmt.Println("Created export archive")
	}
	fmt.Printf("Default character: %s\n", result.CharacterName)
	fmt.Println("Chara initialized successfully!")

	return nil
}
