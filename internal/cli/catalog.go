package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/tessro/showcase/internal/catalog"
	"github.com/tessro/showcase/internal/core"
	"github.com/tessro/showcase/internal/log"
)

var (
	catalogType   string
	catalogFilter string
)

var catalogCmd = &cobra.Command{
	Use:     "catalog",
	Aliases: []string{"ls"},
	Short:   "List approved showcase posts",
	Long: `List the approved audio and video posts the player can load.

Examples:
  showcase catalog
  showcase catalog --type video
  showcase catalog --filter raga`,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().StringVarP(&catalogType, "type", "t", "all", "audio, video or all")
	catalogCmd.Flags().StringVarP(&catalogFilter, "filter", "f", "", "only titles or authors containing this text")
	rootCmd.AddCommand(catalogCmd)
}

type catalogEntry struct {
	ID       string    `json:"id"`
	Kind     core.Kind `json:"kind"`
	Title    string    `json:"title"`
	Author   string    `json:"author"`
	Duration string    `json:"duration,omitempty"`
	Views    int       `json:"views"`
	Votes    int       `json:"votes"`
	Uploaded time.Time `json:"uploaded,omitempty"`
	Source   string    `json:"source,omitempty"`
}

func newCatalog() *catalog.Catalog {
	client := catalog.NewClient(cfg.Backend.APIURL,
		time.Duration(cfg.Backend.Timeout)*time.Second, log.Component("catalog"))
	return catalog.New(client, cfg.Backend.MediaURL, 0)
}

func runCatalog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cat := newCatalog()

	var items []catalog.Item
	switch catalogType {
	case "all", "":
		result := cat.ListAll(ctx)
		if result.HasErrors() {
			if len(result.Data) == 0 {
				return fmt.Errorf("failed to list posts: %s", result.ErrorSummary())
			}
			fmt.Fprintf(os.Stderr, "Warning: %s\n", result.ErrorSummary())
		}
		items = result.Data
	case string(core.KindAudio), string(core.KindVideo):
		var err error
		items, err = cat.List(ctx, core.Kind(catalogType))
		if err != nil {
			return fmt.Errorf("failed to list posts: %w", err)
		}
	default:
		return fmt.Errorf("unknown type %q (use audio, video or all)", catalogType)
	}
	items = catalog.Filter(items, catalogFilter)

	entries := make([]catalogEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, catalogEntry{
			ID:       item.Post.ID,
			Kind:     item.Track.Kind,
			Title:    item.Post.Title,
			Author:   item.Post.AuthorName,
			Duration: item.Post.Duration,
			Views:    item.Post.Views,
			Votes:    item.Post.Votes,
			Uploaded: item.Post.Uploaded(),
			Source:   item.Track.SourceURL,
		})
	}

	if JSONOutput() {
		return printJSON(entries)
	}

	if len(entries) == 0 {
		fmt.Println("No posts found")
		return nil
	}

	table := NewTable("ID", "TYPE", "TITLE", "AUTHOR", "LENGTH", "VIEWS", "UPLOADED")
	for _, e := range entries {
		uploaded := "-"
		if !e.Uploaded.IsZero() {
			uploaded = humanize.Time(e.Uploaded)
		}
		length := e.Duration
		if e.Source == "" {
			length = "no media"
		} else if length == "" {
			length = "-"
		}
		table.Row(e.ID, string(e.Kind), TruncateString(e.Title, 40), TruncateString(e.Author, 20),
			length, humanize.Comma(int64(e.Views)), uploaded)
	}
	table.Flush()
	return nil
}
