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
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "gradebook",
	Short: "Track module grades and degree classification",
	Long: `gradebook keeps a degree course as academic years, modules and weighted
assessments, and reports running grades, classifications and target progress.

The course is stored on this device (SQLite or Redis) or on a gradebook server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("user", "", "session user id (default \"local\")")
	rootCmd.PersistentFlags().String("store", "", "where the course lives: local or remote")
	rootCmd.PersistentFlags().String("store-backend", "", "local store backend: sqlite or redis")
	rootCmd.PersistentFlags().String("store-path", "", "SQLite file for the local store")
	rootCmd.PersistentFlags().String("remote-url", "", "gradebook server URL for the remote store")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")

	bindFlagToViper("user.id", rootCmd.PersistentFlags().Lookup("user"))
	bindFlagToViper("store.mode", rootCmd.PersistentFlags().Lookup("store"))
	bindFlagToViper("store.local.backend", rootCmd.PersistentFlags().Lookup("store-backend"))
	bindFlagToViper("store.local.path", rootCmd.PersistentFlags().Lookup("store-path"))
	bindFlagToViper("store.remote_url", rootCmd.PersistentFlags().Lookup("remote-url"))
	bindFlagToViper("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
}
