package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/user/where2watch/internal/service"
)

func newCategoriesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Show the browse sections as they appear on the home page",
		RunE: func(cmd *cobra.Command, args []string) error {
			repos, err := ctx.repos()
			if err != nil {
				return err
			}
			svc := service.NewCategoryService(repos.Content, repos.Category, ctx.logger())
			sections, err := svc.BuildSections(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(sections) == 0 {
				fmt.Fprintln(out, "No sections: the catalog is empty")
				return nil
			}

			rows := make([][]string, 0, len(sections))
			for _, s := range sections {
				first := ""
				if len(s.Contents) > 0 {
					first = s.Contents[0].Title
				}
				rows = append(rows, []string{s.Title, string(s.Kind), strconv.Itoa(len(s.Contents)), first})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Section", "Kind", "Titles", "First"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
			))
			return nil
		},
	}
}
