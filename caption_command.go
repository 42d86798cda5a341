package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ByLCY/cardstudio/caption"
	"github.com/ByLCY/cardstudio/content"
	"github.com/ByLCY/cardstudio/logging"
	"github.com/ByLCY/cardstudio/normalize"
)

func newCaptionCommand() *cobra.Command {
	var input string
	var kindFlag string
	var title string
	var excerpt string
	var hashtags int
	var seed uint64

	cmd := &cobra.Command{
		Use:         "caption",
		Short:       "Generate a post caption with hashtags",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			req := caption.Request{Kind: content.KindRecipe, Hashtags: hashtags}
			if input != "" {
				data, err := os.ReadFile(input)
				if err != nil {
					return fmt.Errorf("read record: %w", err)
				}
				raw, err := normalize.DecodeRecord(data)
				if err != nil {
					return err
				}
				rec, err := normalize.New(logging.Discard()).Normalize(raw)
				if err != nil {
					return err
				}
				req.Kind, req.Title, req.Excerpt = rec.Kind, rec.Title, rec.Summary
			}
			if strings.TrimSpace(kindFlag) != "" {
				kind, ok := content.ResolveKind(kindFlag)
				if !ok {
					return fmt.Errorf("unknown content kind %q", kindFlag)
				}
				req.Kind = kind
			}
			if cmd.Flags().Changed("title") {
				req.Title = title
			}
			if cmd.Flags().Changed("excerpt") {
				req.Excerpt = excerpt
			}
			if !cmd.Flags().Changed("seed") {
				seed = uint64(time.Now().UnixNano())
			}

			out := caption.New(seed).Generate(req)
			fmt.Fprintln(cmd.OutOrStdout(), out.Text)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "in", "i", "", "JSON record file to caption")
	cmd.Flags().StringVarP(&kindFlag, "kind", "k", "", "Content kind (recipe, article, guide)")
	cmd.Flags().StringVar(&title, "title", "", "Title placed in the caption")
	cmd.Flags().StringVar(&excerpt, "excerpt", "", "Excerpt placed in the caption")
	cmd.Flags().IntVar(&hashtags, "hashtags", caption.DefaultHashtags, "Number of hashtags (5-20)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed for a reproducible caption")
	return cmd
}
