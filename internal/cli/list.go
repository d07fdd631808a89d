package cli

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"javabox/internal/dist"
)

type cachedRow struct {
	dist.Cached
	Bytes int64 `json:"bytes"`
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List distributions unpacked in the wrapper caches",
		Args:  cobra.NoArgs,
		RunE:  runList,
	}
}

func runList(cmd *cobra.Command, _ []string) error {
	var rows []cachedRow
	for _, l := range dist.Layouts() {
		cached, err := l.List(env.Home)
		if err != nil {
			return err
		}
		for _, c := range cached {
			rows = append(rows, cachedRow{Cached: c, Bytes: dirSize(c.HomeDir)})
		}
	}

	if outputJSON {
		if rows == nil {
			rows = []cachedRow{}
		}
		return printJSON(cmd, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "(no cached distributions)")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LAYOUT\tDISTRIBUTION\tHASH\tSIZE\tHOME")
	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", r.Layout, r.Stem, r.Hash, humanize.Bytes(uint64(r.Bytes)), r.HomeDir)
	}
	return w.Flush()
}

func dirSize(root string) int64 {
	var total int64
	_ = filepath.WalkDir(root, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type().IsRegular() {
			if info, err := d.Info(); err == nil {
				total += info.Size()
			}
		}
		return nil
	})
	return total
}
