/*
Copyright © 2025 Ambor <saltbo@foxmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eslsoft/gradebook/internal/infrastructure/config"
	"github.com/eslsoft/gradebook/internal/infrastructure/database"
	"github.com/eslsoft/gradebook/internal/infrastructure/database/migrate"
	"github.com/eslsoft/gradebook/internal/infrastructure/server"
)

// migrateCmd creates or upgrades the relational schema used by `serve`.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or upgrade the server database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		logger, err := server.NewLogger(cfg)
		if err != nil {
			return err
		}
		db, cleanup, err := database.Open(cfg, logger)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer cleanup()

		if err := runMigrations(cmd.Context(), db); err != nil {
			return err
		}
		logger.WithField("driver", cfg.DatabaseDriver()).Info("database migration complete")
		return nil
	},
}

func runMigrations(ctx context.Context, db *database.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := migrate.Create(ctx, db.DB, db.Dialect, migrate.CourseTables...); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
