package cli

import (
	"context"

	"github.com/spf13/cobra"

	"javabox/internal/launcher"
)

var (
	projectDir string
	outputJSON bool

	// env is the process setup shared by every subcommand.
	env *launcher.Env
)

// Execute runs the javabox management CLI with args.
func Execute(ctx context.Context, e *launcher.Env, args []string) error {
	env = e
	cmd := newRootCmd()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "javabox",
		Short: "Run Maven and Gradle without installing them",
		Long: "javabox is installed under the names mvn, mvnw, gradle and gradlew and\n" +
			"runs the distribution each project asks for. Invoked as javabox it\n" +
			"manages those aliases and the shared wrapper caches.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&projectDir, "project", "", "Start the project search here instead of the working directory")
	cmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "Output machine-readable JSON")

	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newHashCmd())
	cmd.AddCommand(newFetchCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newPinCmd())
	cmd.AddCommand(newInstallCmd())
	cmd.AddCommand(newUninstallCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}
