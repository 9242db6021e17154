package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mip-org/mip-package-manager/internal/registry"
	"github.com/mip-org/mip-package-manager/internal/userdata"
)

var (
	searchJSON    bool
	searchIndexes indexFlags
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the package index",
	Long: `List packages available in the package index for this machine's architecture.

The query matches against package names (case-insensitive substring). Without a
query every available package is listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Output in JSON format")
	searchIndexes.register(searchCmd)
	rootCmd.AddCommand(searchCmd)
}

// searchEntry represents an available package for display.
type searchEntry struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Architecture string   `json:"architecture"`
	Dependencies []string `json:"dependencies"`
	Installed    bool     `json:"installed"`
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	query := ""
	if len(args) > 0 {
		query = args[0]
	}

	idx, err := searchIndexes.load(ctx, cmd.ErrOrStderr(), newClient(cmd.ErrOrStderr()), logger)
	if err != nil {
		return err
	}

	var reg registry.LocalRegistry = registry.NewMemRegistry()
	if packagesRoot, err := userdata.GetPackagesRoot(); err == nil {
		reg = registry.NewDirRegistry(packagesRoot, logger)
	}

	entries := searchIndex(idx, reg, query)

	if searchJSON {
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	if len(entries) == 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "No packages matching %q\n", query)
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tARCHITECTURE\tDEPENDENCIES\t")
	for _, e := range entries {
		deps := strings.Join(e.Dependencies, ", ")
		if deps == "" {
			deps = "-"
		}
		name := e.Name
		if e.Installed {
			name += " (installed)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n", name, e.Version, e.Architecture, deps)
	}
	return w.Flush()
}

// searchIndex returns index entries whose name contains query, sorted by name.
func searchIndex(idx *registry.Index, reg registry.LocalRegistry, query string) []searchEntry {
	q := strings.ToLower(query)
	entries := []searchEntry{}
	for _, name := range idx.Names() {
		if q != "" && !strings.Contains(strings.ToLower(name), q) {
			continue
		}
		rec, err := idx.Lookup(name)
		if err != nil {
			continue
		}
		arch := rec.Architecture
		if arch == "" {
			arch = "any"
		}
		entries = append(entries, searchEntry{
			Name:         rec.Name,
			Version:      rec.Version,
			Architecture: arch,
			Dependencies: rec.Dependencies,
			Installed:    reg.IsInstalled(name),
		})
	}
	return entries
}
