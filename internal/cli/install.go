package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"javabox/internal/identity"
	"javabox/internal/paths"
)

var (
	binDir       string
	installForce bool

	// executablePath locates the running binary; tests swap it out.
	executablePath = os.Executable
)

type aliasResult struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	Status string `json:"status"`
}

func newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Link the mvn, mvnw, gradle and gradlew aliases to javabox",
		Args:  cobra.NoArgs,
		RunE:  runInstall,
	}
	cmd.Flags().StringVar(&binDir, "bin-dir", "", "Directory for the alias links (default ~/bin)")
	cmd.Flags().BoolVar(&installForce, "force", false, "Replace existing files that are not javabox links")
	return cmd
}

func newUninstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove alias links that point at javabox",
		Args:  cobra.NoArgs,
		RunE:  runUninstall,
	}
	cmd.Flags().StringVar(&binDir, "bin-dir", "", "Directory holding the alias links (default ~/bin)")
	return cmd
}

func resolveBinDir() (string, error) {
	if binDir != "" {
		return filepath.Abs(binDir)
	}
	return paths.DefaultBinDir()
}

func self() (string, error) {
	exe, err := executablePath()
	if err != nil {
		return "", fmt.Errorf("locate javabox binary: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return exe, nil
}

// pointsAt reports whether link is a symlink resolving to target.
func pointsAt(link, target string) bool {
	info, err := os.Lstat(link)
	if err != nil || info.Mode()&os.ModeSymlink == 0 {
		return false
	}
	resolved, err := filepath.EvalSymlinks(link)
	if err != nil {
		return false
	}
	return paths.SamePath(resolved, target)
}

func runInstall(cmd *cobra.Command, _ []string) error {
	dir, err := resolveBinDir()
	if err != nil {
		return err
	}
	exe, err := self()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create bin dir: %w", err)
	}

	var results []aliasResult
	var errs []error
	for _, name := range identity.LauncherAliases() {
		link := filepath.Join(dir, name)
		res := aliasResult{Name: name, Path: link, Status: "linked"}
		switch {
		case pointsAt(link, exe):
			res.Status = "unchanged"
		default:
			if _, err := os.Lstat(link); err == nil {
				if !installForce {
					res.Status = "skipped"
					errs = append(errs, fmt.Errorf("%s exists; use --force to replace it", link))
					break
				}
				if err := os.Remove(link); err != nil {
					res.Status = "error"
					errs = append(errs, fmt.Errorf("replace %s: %w", link, err))
					break
				}
			}
			if err := os.Symlink(exe, link); err != nil {
				res.Status = "error"
				errs = append(errs, fmt.Errorf("link %s: %w", link, err))
			}
		}
		results = append(results, res)
	}

	if outputJSON {
		if err := printJSON(cmd, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-10s %s\n", r.Name, r.Status, r.Path)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Make sure %s is on your PATH before any other Maven or Gradle install.\n", dir)
	}
	return errors.Join(errs...)
}

func runUninstall(cmd *cobra.Command, _ []string) error {
	dir, err := resolveBinDir()
	if err != nil {
		return err
	}
	exe, err := self()
	if err != nil {
		return err
	}

	var results []aliasResult
	var errs []error
	for _, name := range identity.LauncherAliases() {
		link := filepath.Join(dir, name)
		res := aliasResult{Name: name, Path: link, Status: "removed"}
		if !pointsAt(link, exe) {
			res.Status = "not ours"
			if _, err := os.Lstat(link); errors.Is(err, os.ErrNotExist) {
				res.Status = "absent"
			}
		} else if err := os.Remove(link); err != nil {
			res.Status = "error"
			errs = append(errs, fmt.Errorf("remove %s: %w", link, err))
		}
		results = append(results, res)
	}

	if outputJSON {
		if err := printJSON(cmd, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-10s %s\n", r.Name, r.Status, r.Path)
		}
	}
	return errors.Join(errs...)
}
