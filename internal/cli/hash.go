package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"javabox/internal/dist"
)

type bucket struct {
	Layout  string `json:"layout"`
	Hash    string `json:"hash,omitempty"`
	BaseDir string `json:"base_dir,omitempty"`
	HomeDir string `json:"home_dir,omitempty"`
	Error   string `json:"error,omitempty"`
}

func newHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <distribution-url>",
		Short: "Print the wrapper cache buckets for a distribution URL",
		Args:  cobra.ExactArgs(1),
		RunE:  runHash,
	}
}

func runHash(cmd *cobra.Command, args []string) error {
	buckets := hashBuckets(env.Home, args[0])
	if outputJSON {
		return printJSON(cmd, buckets)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "LAYOUT\tHASH\tHOME")
	for _, b := range buckets {
		if b.Error != "" {
			fmt.Fprintf(w, "%s\t-\terror: %s\n", b.Layout, b.Error)
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", b.Layout, b.Hash, b.HomeDir)
	}
	return w.Flush()
}

func hashBuckets(home, rawURL string) []bucket {
	var out []bucket
	for _, l := range dist.Layouts() {
		entry, err := l.Entry(home, rawURL)
		if err != nil {
			out = append(out, bucket{Layout: l.Name, Error: err.Error()})
			continue
		}
		out = append(out, bucket{Layout: l.Name, Hash: entry.Hash, BaseDir: entry.BaseDir, HomeDir: entry.HomeDir})
	}
	return out
}
