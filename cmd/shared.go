package cmd

import (
	"fmt"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/eslsoft/gradebook/internal/app"
	"github.com/eslsoft/gradebook/internal/infrastructure/config"
	"github.com/eslsoft/gradebook/internal/infrastructure/server"
	"github.com/eslsoft/gradebook/internal/usecase"
)

func bindFlagToViper(key string, flag *pflag.Flag) {
	if flag == nil {
		return
	}
	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// session is one CLI invocation's loaded course tree.
type session struct {
	cfg    *config.Config
	logger *logrus.Logger
	tree   usecase.CourseTree
	close  func()
}

func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := server.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	logger.SetOutput(cmd.ErrOrStderr())

	tree, cleanup, err := app.OpenCourseTree(cmd.Context(), cfg, logger)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, logger: logger, tree: tree, close: cleanup}, nil
}

// withTree runs fn against a freshly loaded course tree.
func withTree(fn func(cmd *cobra.Command, args []string, tree usecase.CourseTree) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()
		return fn(cmd, args, s.tree)
	}
}

func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func changedInt(cmd *cobra.Command, name string) *int {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetInt(name)
	return &v
}

func changedFloat(cmd *cobra.Command, name string) *float64 {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetFloat64(name)
	return &v
}

func changedBool(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

func parsePercent(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid percentage %q", s)
	}
	return v, nil
}

// targetArg reads a target from the last positional argument, or nil with --clear.
func targetArg(cmd *cobra.Command, args []string, ids int) (*float64, error) {
	clearTarget, _ := cmd.Flags().GetBool("clear")
	switch {
	case clearTarget && len(args) == ids:
		return nil, nil
	case !clearTarget && len(args) == ids+1:
		v, err := parsePercent(args[ids])
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, fmt.Errorf("pass a target percentage or --clear")
	}
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("clear", false, "remove the target")
}
