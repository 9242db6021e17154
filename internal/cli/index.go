package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mip-org/mip-package-manager/internal/catalog"
	"github.com/mip-org/mip-package-manager/internal/fetch"
	"github.com/mip-org/mip-package-manager/internal/registry"
	"github.com/mip-org/mip-package-manager/internal/userdata"
)

// indexFlags are the flags shared by commands that read the package index.
type indexFlags struct {
	source  string
	offline bool
}

func (f *indexFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "index", "", "Package index URL or path (default: config index_url)")
	cmd.Flags().BoolVar(&f.offline, "offline", false, "Use the cached package index instead of the network")
}

// load fetches the package index selected by the flags.
func (f *indexFlags) load(ctx context.Context, out io.Writer, client *fetch.Client, logger *log.Logger) (*registry.Index, error) {
	source := f.source
	if source == "" {
		source = catalog.IndexURL()
	}

	opts := []catalog.Option{
		catalog.WithClient(client),
		catalog.WithOffline(f.offline),
		catalog.WithLogger(logger),
	}
	if cacheDir, err := userdata.GetCacheDir(); err == nil {
		opts = append(opts, catalog.WithCacheDir(cacheDir))
	}

	if f.offline {
		fmt.Fprintln(out, "Using cached package index...")
	} else {
		fmt.Fprintln(out, "Fetching package index...")
	}
	logger.Debug("loading package index", "source", source, "offline", f.offline)
	return catalog.Load(ctx, source, opts...)
}

// newClient returns a fetch client that reports download progress to w.
func newClient(w io.Writer) *fetch.Client {
	return fetch.New(fetch.WithProgress(downloadProgress(w)))
}

// downloadProgress prints a percentage line for downloads of known size.
func downloadProgress(w io.Writer) fetch.ProgressFunc {
	lastPercent := -1
	return func(downloaded, total int64) {
		if total <= 0 {
			return
		}
		percent := int(downloaded * 100 / total)
		if percent == lastPercent {
			return
		}
		lastPercent = percent
		fmt.Fprintf(w, "\r    Downloading... %d%%", percent)
		if downloaded >= total {
			fmt.Fprintln(w)
			lastPercent = -1
		}
	}
}

// refreshIntegration keeps the MATLAB integration in step with this binary.
func refreshIntegration(logger *log.Logger) {
	if err := userdata.RefreshMatlabIntegration(); err != nil {
		logger.Warn("failed to update MATLAB integration", "err", err)
	}
}
