package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ByLCY/cardstudio/export"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var content contentFlags
	var output outputFlags
	var upload bool

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Export the card in every format as a zip archive",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer ctx.close()
			errOut := cmd.ErrOrStderr()
			bar := newExportProgress(errOut)
			session, svc, err := ctx.openSession(cmd.Context(), bar.update)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := content.apply(cmd.Context(), session, svc, out); err != nil {
				return err
			}
			dir, opts, err := output.resolve(svc)
			if err != nil {
				return err
			}

			shouldUpload := svc.cfg.Export.Upload
			if cmd.Flags().Changed("upload") {
				shouldUpload = upload
			}
			archive, err := session.Batch(cmd.Context(), opts, shouldUpload)
			bar.finish()
			if err != nil {
				return err
			}

			target := filepath.Join(dir, archive.Name)
			if err := os.WriteFile(target, archive.Data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", target, err)
			}
			fmt.Fprintf(out, "Wrote %s (%d files)\n", target, len(archive.Entries))
			for _, name := range archive.Entries {
				fmt.Fprintf(out, "  %s\n", name)
			}
			if archive.Location != "" {
				fmt.Fprintf(out, "Uploaded to %s\n", archive.Location)
			}
			return nil
		},
	}

	content.bind(cmd, false)
	output.bind(cmd)
	cmd.Flags().BoolVar(&upload, "upload", false, "Upload the archive to object storage (defaults to export.upload)")
	return cmd
}

// exportProgress draws batch progress when stderr is a terminal.
type exportProgress struct {
	bar *progressbar.ProgressBar
}

func newExportProgress(w io.Writer) *exportProgress {
	if !isTerminal(w) {
		return &exportProgress{}
	}
	return &exportProgress{bar: progressbar.NewOptions(100,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription("exporting"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)}
}

func (p *exportProgress) update(st export.Status) {
	if p.bar == nil || st.State != export.StateExporting {
		return
	}
	_ = p.bar.Set(int(st.Progress))
}

func (p *exportProgress) finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
