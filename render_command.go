package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ByLCY/cardstudio/compose"
	"github.com/ByLCY/cardstudio/layout"
	"github.com/ByLCY/cardstudio/preview"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var content contentFlags
	var output outputFlags
	var debugPath string
	var previewWidth float64

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the current card in one format",
		Long: `Render loads a record, applies the requested template, theme, layout and
edit scripts, and writes one image in the current format.

Format and watermark edits are remembered between runs.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			session, svc, err := ctx.openSession(cmd.Context(), nil)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := content.apply(cmd.Context(), session, svc, out); err != nil {
				return err
			}

			comp, err := session.Compose()
			if err != nil {
				return err
			}
			svc.log.WithField("composition", compose.Describe(comp)).Debug("composed")
			if previewWidth > 0 {
				vp := preview.NewViewport(comp, previewWidth)
				view, err := vp.View()
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Preview %.0fx%.0f at scale %.4f\n", view.Width, vp.Height(), vp.Scale())
				comp = view
			}
			if debugPath != "" {
				if err := layout.WriteDebugJSON(comp, debugPath); err != nil {
					return fmt.Errorf("write debug json: %w", err)
				}
				fmt.Fprintf(out, "Wrote layout debug to %s\n", debugPath)
			}

			dir, opts, err := output.resolve(svc)
			if err != nil {
				return err
			}
			res, err := session.Export(cmd.Context(), opts)
			if err != nil {
				return err
			}
			target := filepath.Join(dir, res.Filename)
			if err := os.WriteFile(target, res.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
			fmt.Fprintf(out, "Wrote %s (%s, %d bytes)\n", target, res.MimeType, len(res.Data))
			return nil
		},
	}

	content.bind(cmd, true)
	output.bind(cmd)
	cmd.Flags().StringVar(&debugPath, "debug", "", "Write the layout debug JSON to this path")
	cmd.Flags().Float64Var(&previewWidth, "preview-width", 0, "Scale the debug output to a preview container of this width")
	return cmd
}
