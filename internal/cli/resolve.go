package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"javabox/internal/dist"
	"javabox/internal/paths"
	"javabox/internal/resolve"
)

var resolveSource sourceFlags

type resolution struct {
	Tool       string    `json:"tool"`
	ModuleDir  string    `json:"module_dir"`
	ProjectDir string    `json:"project_dir"`
	WrapperDir string    `json:"wrapper_dir,omitempty"`
	RepoRoot   string    `json:"repo_root,omitempty"`
	Spec       dist.Spec `json:"distribution"`
	HomeDir    string    `json:"home_dir"`
	Launcher   string    `json:"launcher"`
	Cached     bool      `json:"cached"`
}

func newResolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolve <maven|gradle>",
		Short: "Show which distribution a project would run",
		Args:  cobra.ExactArgs(1),
		RunE:  runResolve,
	}
	resolveSource.register(cmd.Flags())
	return cmd
}

func runResolve(cmd *cobra.Command, args []string) error {
	fam, err := parseTool(args[0])
	if err != nil {
		return err
	}
	res, _, err := resolveProject(cmd.Context(), fam, resolveSource)
	if err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd, res)
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Tool:\t%s\n", res.Tool)
	fmt.Fprintf(w, "Module:\t%s\n", res.ModuleDir)
	fmt.Fprintf(w, "Project:\t%s\n", res.ProjectDir)
	fmt.Fprintf(w, "Repository:\t%s\n", nonEmptyOrDash(res.RepoRoot))
	fmt.Fprintf(w, "Version:\t%s\n", nonEmptyOrDash(res.Spec.Version))
	fmt.Fprintf(w, "Source:\t%s\n", res.Spec.Source)
	fmt.Fprintf(w, "URL:\t%s\n", res.Spec.URL)
	fmt.Fprintf(w, "Home:\t%s\n", res.HomeDir)
	fmt.Fprintf(w, "Cached:\t%t\n", res.Cached)
	return w.Flush()
}

// resolveProject locates the project around the start dir and resolves the
// distribution it asks for, unless src names one explicitly.
func resolveProject(ctx context.Context, fam resolve.Family, src sourceFlags) (resolution, dist.Entry, error) {
	start, err := startDir()
	if err != nil {
		return resolution{}, dist.Entry{}, err
	}
	loc := paths.Locate(start, env.Home, fam.Markers)

	spec, explicit, err := src.spec(fam)
	if err != nil {
		return resolution{}, dist.Entry{}, err
	}
	if !explicit {
		r := &resolve.Resolver{
			Family:  fam,
			Fetcher: env.FeedManager(),
			Home:    env.Home,
			MaxAge:  env.Settings.MetadataMaxAge,
			Logger:  env.Logger,
		}
		if spec, err = r.Resolve(ctx, loc); err != nil {
			return resolution{}, dist.Entry{}, err
		}
	}

	entry, err := fam.Layout.Entry(env.Home, spec.URL)
	if err != nil {
		return resolution{}, dist.Entry{}, err
	}
	return resolution{
		Tool:       fam.Name,
		ModuleDir:  loc.ModuleDir,
		ProjectDir: loc.ProjectDir,
		WrapperDir: loc.WrapperDir,
		RepoRoot:   loc.RepoRoot,
		Spec:       spec,
		HomeDir:    entry.HomeDir,
		Launcher:   entry.Launcher,
		Cached:     paths.NonEmptyDir(entry.HomeDir),
	}, entry, nil
}
