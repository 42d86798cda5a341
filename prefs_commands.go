package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ByLCY/cardstudio/catalog"
	"github.com/ByLCY/cardstudio/dsl"
	"github.com/ByLCY/cardstudio/prefs"
)

func newPrefsCommand(ctx *commandContext) *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Inspect and edit persisted preferences",
	}

	prefsCmd.AddCommand(newPrefsShowCommand(ctx))
	prefsCmd.AddCommand(newPrefsSetCommand(ctx))
	prefsCmd.AddCommand(newPrefsResetCommand(ctx))
	prefsCmd.AddCommand(newPrefsFavoriteCommand(ctx))
	prefsCmd.AddCommand(newPrefsWatermarkCommand(ctx))
	prefsCmd.AddCommand(newPrefsPresetCommand(ctx))
	prefsCmd.AddCommand(newPrefsThemeCommand(ctx))
	return prefsCmd
}

func newPrefsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored preference documents",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			manager, err := ctx.openPrefs()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, ns := range []string{prefs.EditorNamespace, prefs.SettingsNamespace} {
				data, err := manager.Raw(cmd.Context(), ns)
				if errors.Is(err, prefs.ErrNotFound) {
					fmt.Fprintf(out, "%s: (not set)\n", ns)
					continue
				}
				if err != nil {
					return err
				}
				var buf bytes.Buffer
				if err := json.Indent(&buf, data, "", "  "); err != nil {
					buf.Reset()
					buf.Write(data)
				}
				fmt.Fprintf(out, "%s:\n%s\n", ns, buf.String())
			}
			return nil
		},
	}
}

func newPrefsSetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "set <script>",
		Short: "Persist format and watermark edits",
		Example: `  cardstudio prefs set 'format = post'
  cardstudio prefs set 'watermark.position = bottom-left; watermark.opacity = 0.6'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			edits, err := dsl.CompileString(args[0])
			if err != nil {
				return err
			}
			if edits.Format == nil && edits.Patch.Watermark == nil {
				return fmt.Errorf("only format and watermark.* are persisted")
			}
			session, _, err := ctx.openSession(cmd.Context(), nil)
			if err != nil {
				return err
			}
			if err := session.Apply(cmd.Context(), edits); err != nil {
				return err
			}
			st := session.Snapshot()
			wm := st.Content.Watermark
			fmt.Fprintf(cmd.OutOrStdout(), "Saved format=%s watermark=%s visible=%s opacity=%.2f scale=%.2f\n",
				st.Format, wm.Position, yesNo(wm.Visible), wm.Opacity, wm.Scale)
			return nil
		},
	}
}

func newPrefsResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default watermark",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			session, _, err := ctx.openSession(cmd.Context(), nil)
			if err != nil {
				return err
			}
			session.Reset(cmd.Context())
			fmt.Fprintln(cmd.OutOrStdout(), "Editor preferences reset")
			return nil
		},
	}
}

func newPrefsFavoriteCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "favorite <template-id>",
		Short: "Toggle a favorite template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			tpl, err := catalog.Default().Template(args[0])
			if err != nil {
				return err
			}
			settings, err := updateSettings(cmd, ctx, func(s *prefs.Settings) { s.ToggleFavorite(tpl.ID) })
			if err != nil {
				return err
			}
			state := "removed from"
			if settings.IsFavorite(tpl.ID) {
				state = "added to"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s favorites\n", tpl.ID, state)
			return nil
		},
	}
}

func newPrefsWatermarkCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "default-watermark [url]",
		Short: "Set or clear the default watermark image",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			url := ""
			if len(args) == 1 {
				url = args[0]
			}
			settings, err := updateSettings(cmd, ctx, func(s *prefs.Settings) { s.DefaultWatermarkURL = url })
			if err != nil {
				return err
			}
			if settings.DefaultWatermarkURL == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Default watermark cleared")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Default watermark set to %s\n", settings.DefaultWatermarkURL)
			return nil
		},
	}
}

func newPrefsPresetCommand(ctx *commandContext) *cobra.Command {
	presetCmd := &cobra.Command{
		Use:   "preset",
		Short: "Manage watermark presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			manager, err := ctx.openPrefs()
			if err != nil {
				return err
			}
			settings, err := manager.LoadSettings(cmd.Context())
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(settings.WatermarkPresets))
			for _, p := range settings.WatermarkPresets {
				rows = append(rows, []string{p.ID, p.Name, p.URL})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"ID", "Name", "URL"}, rows, nil))
			return nil
		},
	}

	presetCmd.AddCommand(&cobra.Command{
		Use:   "add <id> <name> <url>",
		Short: "Add or replace a watermark preset",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			p := prefs.WatermarkPreset{ID: strings.TrimSpace(args[0]), Name: strings.TrimSpace(args[1]), URL: strings.TrimSpace(args[2])}
			if p.ID == "" || p.URL == "" {
				return fmt.Errorf("preset id and url are required")
			}
			if _, err := updateSettings(cmd, ctx, func(s *prefs.Settings) { s.AddPreset(p) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Preset %s saved\n", p.ID)
			return nil
		},
	})
	presetCmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a watermark preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			if _, err := updateSettings(cmd, ctx, func(s *prefs.Settings) { s.RemovePreset(args[0]) }); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Preset %s removed\n", args[0])
			return nil
		},
	})
	return presetCmd
}

func newPrefsThemeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle-theme",
		Short: "Switch the studio between dark and light",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			settings, err := updateSettings(cmd, ctx, func(s *prefs.Settings) { s.ToggleTheme() })
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Studio theme: %s\n", settings.Theme)
			return nil
		},
	}
}

func updateSettings(cmd *cobra.Command, ctx *commandContext, fn func(*prefs.Settings)) (prefs.Settings, error) {
	manager, err := ctx.openPrefs()
	if err != nil {
		return prefs.Settings{}, err
	}
	return manager.UpdateSettings(cmd.Context(), fn)
}
