package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	_ "github.com/joho/godotenv/autoload"

	"github.com/fdg312/curo/internal/config"
	"github.com/fdg312/curo/internal/dbmigrate"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Long: `Apply the embedded goose migrations.

Uses DATABASE_URL_DIRECT, then DATABASE_URL, then DATABASE_URL_POOLED.`,
		SilenceUsage: true,
	}

	for _, command := range dbmigrate.Commands {
		rootCmd.AddCommand(&cobra.Command{
			Use:   command,
			Short: "goose " + command,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := config.Load()
				src, err := dbmigrate.Select(cfg, false)
				if err != nil {
					return err
				}
				if src.Warning != "" {
					log.Printf("WARN migrate: %s", src.Warning)
				}
				log.Printf("migrate: command=%s using=%s", cmd.Name(), src.Name)

				if err := dbmigrate.Run(cmd.Context(), cmd.Name(), src.URL); err != nil {
					return err
				}
				log.Printf("migrate: %s completed successfully", cmd.Name())
				return nil
			},
		})
	}

	if err := rootCmd.Execute(); err != nil {
		log.Printf("FATAL migrate: %v", err)
		os.Exit(1)
	}
}
