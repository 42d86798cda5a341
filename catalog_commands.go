package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/cardstudio/catalog"
	"github.com/ByLCY/cardstudio/content"
	"github.com/ByLCY/cardstudio/layout"
)

func newLayoutsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "layouts",
		Short:       "List the available layouts",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			rows := make([][]string, 0, len(layout.IDs))
			for _, id := range layout.IDs {
				def := ""
				if id == layout.Default {
					def = "default"
				}
				rows = append(rows, []string{
					string(id),
					id.Title(),
					strconv.Itoa(layout.ListCap(id, layout.FormatStory)),
					strconv.Itoa(layout.ListCap(id, layout.FormatPost)),
					def,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable(
				[]string{"ID", "Name", "Story items", "Post items", ""},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight},
			))
			return nil
		},
	}
}

func newTemplatesCommand(ctx *commandContext) *cobra.Command {
	var kindFlag string
	var formatFlag string
	var favoritesOnly bool

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List catalog templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			cat := catalog.Default()
			var kind content.Kind
			if strings.TrimSpace(kindFlag) != "" {
				k, ok := content.ResolveKind(kindFlag)
				if !ok {
					return fmt.Errorf("unknown content kind %q", kindFlag)
				}
				kind = k
			}
			var format layout.Format
			if strings.TrimSpace(formatFlag) != "" {
				f, err := layout.ParseFormat(formatFlag)
				if err != nil {
					return err
				}
				format = f
			}
			templates := cat.Filter(kind, format)

			manager, err := ctx.openPrefs()
			if err != nil {
				return err
			}
			settings, err := manager.LoadSettings(cmd.Context())
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(templates))
			for _, tpl := range templates {
				fav := ""
				if settings.IsFavorite(tpl.ID) {
					fav = "★"
				} else if favoritesOnly {
					continue
				}
				rows = append(rows, []string{fav, tpl.ID, tpl.Name, string(tpl.Kind()), string(tpl.Format), string(tpl.Layout)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"", "ID", "Name", "Kind", "Format", "Layout"}, rows, nil))
			counts := cat.Counts()
			fmt.Fprintf(out, "%d of %d templates (recipe %d, blog %d, guide %d)\n",
				len(rows), len(cat.Templates), counts["recipe"], counts["blog"], counts["guide"])
			return nil
		},
	}

	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "", "Only templates for this content kind")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "", "Only templates in this format")
	cmd.Flags().BoolVar(&favoritesOnly, "favorites", false, "Only favorite templates")
	return cmd
}

func newThemesCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "themes",
		Short:       "List theme presets",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cat := catalog.Default()
			rows := make([][]string, 0, len(cat.Themes))
			for _, preset := range cat.Themes {
				t := preset.Theme()
				rows = append(rows, []string{preset.ID, preset.Name, t.Accent.Hex(), t.Primary.Hex(), t.Secondary.Hex()})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "Accent", "Primary", "Secondary"}, rows, nil))
			return nil
		},
	}
}
