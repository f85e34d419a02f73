package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			// repos() 内部会执行 AutoMigrate
			if _, err := ctx.repos(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Migrated %s database\n", ctx.cfg().DBDriver)
			return nil
		},
	}
}
