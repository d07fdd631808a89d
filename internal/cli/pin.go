package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"javabox/internal/config"
	"javabox/internal/paths"
)

func newPinCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pin <maven|gradle> <version|url>",
		Short: "Pin a project to a distribution in " + config.PinFileName,
		Args:  cobra.ExactArgs(2),
		RunE:  runPin,
	}
}

func runPin(cmd *cobra.Command, args []string) error {
	fam, err := parseTool(args[0])
	if err != nil {
		return err
	}
	start, err := startDir()
	if err != nil {
		return err
	}
	dir := paths.Locate(start, env.Home, fam.Markers).ProjectDir

	pin, _, err := config.LoadPin(dir)
	if err != nil {
		return err
	}
	target := strings.TrimSpace(args[1])
	tp := &config.ToolPin{Version: target}
	if strings.Contains(target, "://") {
		tp = &config.ToolPin{Version: fam.VersionOf(target), DownloadURL: target}
	}
	if err := pin.SetTool(fam.Name, tp); err != nil {
		return err
	}
	if err := config.SavePin(dir, pin); err != nil {
		return err
	}

	if outputJSON {
		return printJSON(cmd, map[string]any{"path": config.PinPath(dir), "tool": fam.Name, "pin": tp})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pinned %s to %s in %s\n", fam.Name, target, config.PinPath(dir))
	return nil
}
