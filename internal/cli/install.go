package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mip-org/mip-package-manager/internal/registry"
	"github.com/mip-org/mip-package-manager/internal/userdata"
)

var (
	installNoDeps  bool
	installYes     bool
	installDryRun  bool
	installIndexes indexFlags
)

var installCmd = &cobra.Command{
	Use:   "install <package | file.mhl | url.mhl>",
	Short: "Install a package and its dependencies",
	Long: `Install a package from the package index, or from a local or remote .mhl archive.

Dependencies are resolved from the index and installed before the packages that
need them. Packages that are already installed are skipped. Use --no-deps to
install only the named package.`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installNoDeps, "no-deps", false, "Install only the specified package, skip dependencies")
	installCmd.Flags().BoolVarP(&installYes, "yes", "y", false, "Skip confirmation prompt")
	installCmd.Flags().BoolVar(&installDryRun, "dry-run", false, "Print the install plan without installing anything")
	installIndexes.register(installCmd)
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	out := cmd.OutOrStdout()

	packagesRoot, err := userdata.GetPackagesRoot()
	if err != nil {
		return fmt.Errorf("resolving package store: %w", err)
	}

	client := newClient(cmd.ErrOrStderr())
	reg := registry.NewDirRegistry(packagesRoot, logger)
	store := registry.NewStore(packagesRoot, client, logger)

	var (
		root      = args[0]
		lookup    registry.Lookuper
		installer registry.Installer = store
	)

	if registry.IsArchiveSource(root) {
		archive, err := registry.OpenArchive(ctx, client, root)
		if err != nil {
			return err
		}
		defer archive.Close()

		root = archive.Record.Name
		if reg.IsInstalled(root) {
			fmt.Fprintf(out, "Package '%s' is already installed\n", root)
			return nil
		}

		// The index is only needed to resolve the archive's dependencies.
		var base registry.Lookuper
		if len(archive.Record.Dependencies) > 0 && !installNoDeps {
			fmt.Fprintf(out, "Package '%s' has dependencies: %s\n", root, strings.Join(archive.Record.Dependencies, ", "))
			idx, err := installIndexes.load(ctx, out, client, logger)
			if err != nil {
				return err
			}
			base = idx
		}
		lookup = registry.WithRoot(base, archive.Record)
		installer = archive.Installer(store)
	} else {
		idx, err := installIndexes.load(ctx, out, client, logger)
		if err != nil {
			return err
		}
		lookup = idx
	}

	plan, err := registry.BuildInstallPlan(root, lookup, reg, installNoDeps)
	if err != nil {
		return err
	}

	// Resolution failures leave the filesystem untouched.
	refreshIntegration(logger)

	if plan.NothingToDo() {
		for _, name := range plan.AlreadyInstalled {
			fmt.Fprintf(out, "Package '%s' is already installed\n", name)
		}
		if len(plan.AlreadyInstalled) > 1 {
			fmt.Fprintln(out, "All packages already installed")
		}
		return nil
	}

	registry.PrintPlan(out, plan)

	if installDryRun {
		fmt.Fprintln(out, "Dry run: nothing was installed.")
		return nil
	}

	if !installYes && interactive(cmd) {
		if !ask(cmd.InOrStdin(), out, "? Proceed with installation? (Y/n) ", true) {
			fmt.Fprintln(out, "Installation cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Installing...")
	n, err := registry.ExecuteInstall(ctx, out, plan, installer, stepMark)
	if err != nil {
		reportPartial(cmd, err, "installed")
		return err
	}

	fmt.Fprintf(out, "\nSuccessfully installed %d package(s)\n", n)
	return nil
}

// reportPartial tells the user how far a failed plan got.
func reportPartial(cmd *cobra.Command, err error, verb string) {
	var se *registry.StepError
	if !errors.As(err, &se) {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d packages were %s before the failure; no rollback was performed\n",
		se.Completed, se.Total, verb)
}
