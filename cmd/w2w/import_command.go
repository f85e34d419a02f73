package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/where2watch/internal/model"
	"github.com/user/where2watch/internal/service"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var contentType string
	var save bool

	cmd := &cobra.Command{
		Use:   "import <externalId>",
		Short: "Import a title from TMDB (mock data when no credentials are set)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t := model.ContentType(strings.ToLower(strings.TrimSpace(contentType)))
			if !t.IsValid() {
				return fmt.Errorf("--type must be movie or tv, got %q", contentType)
			}

			cfg := ctx.cfg()
			log := ctx.logger()
			importer := service.NewImportService(service.NewTMDBClient(cfg, log), cfg.TMDBTimeout, log)

			content, err := importer.Import(cmd.Context(), args[0], t)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printContentSummary(out, content)

			if !save {
				return nil
			}
			repos, err := ctx.repos()
			if err != nil {
				return err
			}
			existing, err := repos.Content.GetByID(cmd.Context(), content.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				_, err = repos.Content.Update(cmd.Context(), *content)
			} else {
				_, err = repos.Content.Create(cmd.Context(), *content)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved %s\n", content.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&contentType, "type", "t", string(model.ContentTypeMovie), "Content type: movie or tv")
	cmd.Flags().BoolVar(&save, "save", false, "Persist the imported title")

	return cmd
}

func printContentSummary(out io.Writer, c *model.Content) {
	rows := [][]string{
		{"ID", c.ID},
		{"Title", c.Title},
		{"Type", string(c.Type)},
		{"Source", string(c.Source)},
		{"Released", c.ReleaseDate},
		{"Rating", strconv.FormatFloat(c.Rating, 'f', 1, 64)},
		{"Duration", c.Duration},
		{"Genres", strings.Join(c.Genres, ", ")},
		{"Cast", strconv.Itoa(len(c.Cast))},
		{"Images", strconv.Itoa(len(c.Images))},
	}
	if c.Type == model.ContentTypeTV {
		rows = append(rows, []string{"Seasons", strconv.Itoa(len(c.Seasons))})
	}
	fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, nil))

	if len(c.WatchProviders) == 0 {
		fmt.Fprintln(out, "Providers: none")
		return
	}
	providers := make([][]string, 0, len(c.WatchProviders))
	for _, p := range c.WatchProviders {
		providers = append(providers, []string{p.Name, p.RedirectLink})
	}
	fmt.Fprintln(out, renderTable([]string{"Provider", "Link"}, providers, nil))
}
