package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mip-org/mip-package-manager/internal/registry"
	"github.com/mip-org/mip-package-manager/internal/userdata"
)

var collisionsJSON bool

var collisionsCmd = &cobra.Command{
	Use:   "find-name-collisions",
	Short: "Report symbols exposed by more than one installed package",
	Long: `Scan the exposed_symbols of every installed package's mip.json and report symbols
that more than one package exposes. Such symbols shadow each other on the MATLAB path.`,
	Args: cobra.NoArgs,
	RunE: runCollisions,
}

func init() {
	collisionsCmd.Flags().BoolVar(&collisionsJSON, "json", false, "Output in JSON format")
	rootCmd.AddCommand(collisionsCmd)
}

func runCollisions(cmd *cobra.Command, args []string) error {
	logger := loggerFromContext(cmd.Context())
	out := cmd.OutOrStdout()

	packagesRoot, err := userdata.GetPackagesRoot()
	if err != nil {
		return fmt.Errorf("resolving package store: %w", err)
	}
	reg := registry.NewDirRegistry(packagesRoot, logger)

	if !collisionsJSON {
		fmt.Fprintln(out, "Scanning installed packages for exposed symbols...")
		fmt.Fprintln(out)
	}

	if len(reg.InstalledPackages()) == 0 && !collisionsJSON {
		fmt.Fprintln(out, "No packages installed yet")
		return nil
	}

	report := registry.FindNameCollisions(reg)
	if collisionsJSON {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	registry.PrintCollisionReport(out, report)
	return nil
}
