package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mip-org/mip-package-manager/internal/registry"
	"github.com/mip-org/mip-package-manager/internal/userdata"
)

var (
	uninstallYes    bool
	uninstallDryRun bool
)

var uninstallCmd = &cobra.Command{
	Use:   "uninstall <package>",
	Short: "Uninstall a package and everything that depends on it",
	Long: `Remove an installed package. Installed packages that depend on it, directly or
through other packages, are removed first so that no package is left with a
missing dependency.`,
	Args: cobra.ExactArgs(1),
	RunE: runUninstall,
}

func init() {
	uninstallCmd.Flags().BoolVarP(&uninstallYes, "yes", "y", false, "Skip confirmation prompt")
	uninstallCmd.Flags().BoolVar(&uninstallDryRun, "dry-run", false, "Print the uninstall plan without removing anything")
	rootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	out := cmd.OutOrStdout()
	name := args[0]

	packagesRoot, err := userdata.GetPackagesRoot()
	if err != nil {
		return fmt.Errorf("resolving package store: %w", err)
	}
	reg := registry.NewDirRegistry(packagesRoot, logger)

	if !reg.IsInstalled(name) {
		fmt.Fprintf(out, "Package '%s' is not installed\n", name)
		return nil
	}

	fmt.Fprintf(out, "Scanning for packages that depend on '%s'...\n", name)
	plan, err := registry.BuildUninstallPlan(name, reg)
	if err != nil {
		return err
	}
	refreshIntegration(logger)
	registry.PrintUninstallPlan(out, plan)

	if uninstallDryRun {
		fmt.Fprintln(out, "Dry run: nothing was uninstalled.")
		return nil
	}

	if !uninstallYes {
		if !interactive(cmd) {
			return fmt.Errorf("refusing to uninstall without confirmation; re-run with --yes")
		}
		question := fmt.Sprintf("Are you sure you want to uninstall '%s'? (y/n): ", name)
		if len(plan.Order) > 1 {
			question = fmt.Sprintf("Are you sure you want to uninstall these %d packages? (y/n): ", len(plan.Order))
		}
		if !ask(cmd.InOrStdin(), out, question, false) {
			fmt.Fprintln(out, "Uninstallation cancelled")
			return nil
		}
	}

	store := registry.NewStore(packagesRoot, nil, logger)
	n, err := registry.ExecuteUninstall(ctx, out, plan, store, stepMark)
	if err != nil {
		reportPartial(cmd, err, "uninstalled")
		return err
	}

	fmt.Fprintf(out, "\nSuccessfully uninstalled %d package(s)\n", n)
	return nil
}
