package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mip-org/mip-package-manager/internal/userdata"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create the package store and install the MATLAB integration",
	Long: `Create ~/.mip and write the MATLAB integration (mip.m and the +mip package) to
~/.mip/matlab. Run it once, then add that directory to your MATLAB path.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()

		matlabRoot, err := userdata.Setup(out)
		if err != nil {
			return fmt.Errorf("setting up MATLAB integration: %w", err)
		}

		fmt.Fprintf(out, "\nMATLAB integration updated at: %s\n", matlabRoot)
		fmt.Fprintf(out, "\nMake sure to add '%s' to your MATLAB path.\n", matlabRoot)
		fmt.Fprintln(out, "You can do this by running in MATLAB:")
		fmt.Fprintf(out, "  addpath('%s')\n", matlabRoot)
		fmt.Fprintln(out, "  savepath")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
}
