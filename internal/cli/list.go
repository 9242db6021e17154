package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mip-org/mip-package-manager/internal/platform"
	"github.com/mip-org/mip-package-manager/internal/registry"
	"github.com/mip-org/mip-package-manager/internal/userdata"
)

var (
	listJSON     bool
	listOutdated bool
	listIndexes  indexFlags
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List installed packages",
	Long: `List all packages in the package store with the version recorded in their mip.json.
Use --outdated to compare against the package index.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVar(&listOutdated, "outdated", false, "Show the index version and flag packages with a newer one")
	listIndexes.register(listCmd)
	rootCmd.AddCommand(listCmd)
}

// listEntry represents an installed package for display.
type listEntry struct {
	Name     string `json:"name"`
	Version  string `json:"version"`
	Latest   string `json:"latest,omitempty"`
	Outdated bool   `json:"outdated,omitempty"`
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	packagesRoot, err := userdata.GetPackagesRoot()
	if err != nil {
		return fmt.Errorf("resolving package store: %w", err)
	}
	reg := registry.NewDirRegistry(packagesRoot, logger)

	names := reg.InstalledPackages()
	if len(names) == 0 {
		if listJSON {
			fmt.Fprintln(cmd.OutOrStdout(), "[]")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No packages installed yet")
		return nil
	}

	var idx *registry.Index
	if listOutdated {
		idx, err = listIndexes.load(ctx, cmd.ErrOrStderr(), newClient(cmd.ErrOrStderr()), logger)
		if err != nil {
			return err
		}
	}

	entries := make([]listEntry, 0, len(names))
	for _, name := range names {
		pkg, _ := reg.Get(name)
		entry := listEntry{Name: name, Version: pkg.Version}
		if idx != nil {
			if rec, err := idx.Lookup(name); err == nil {
				entry.Latest = rec.Version
				entry.Outdated = pkg.Version != "" && platform.CompareVersions(rec.Version, pkg.Version) > 0
			}
		}
		entries = append(entries, entry)
	}

	if listJSON {
		return printListJSON(cmd.OutOrStdout(), entries)
	}
	return printListTable(cmd.OutOrStdout(), entries, listOutdated)
}

func printListTable(out io.Writer, entries []listEntry, withLatest bool) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	if withLatest {
		fmt.Fprintln(w, "NAME\tVERSION\tLATEST\t")
	} else {
		fmt.Fprintln(w, "NAME\tVERSION")
	}
	for _, e := range entries {
		version := orDash(e.Version)
		if !withLatest {
			fmt.Fprintf(w, "%s\t%s\n", e.Name, version)
			continue
		}
		mark := ""
		if e.Outdated {
			mark = "update available"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", e.Name, version, orDash(e.Latest), mark)
	}
	return w.Flush()
}

func printListJSON(out io.Writer, entries []listEntry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
