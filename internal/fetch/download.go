package fetch

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Download streams url into destPath, reporting progress if configured.
// A partially written file is removed on failure.
func (c *Client) Download(ctx context.Context, url, destPath string) (err error) {
	resp, err := c.do(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("creating download file: %w", err)
	}
	defer func() {
		f.Close()
		if err != nil {
			os.Remove(destPath)
		}
	}()

	total := resp.ContentLength
	var downloaded int64

	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, writeErr := f.Write(buf[:n]); writeErr != nil {
				return fmt.Errorf("writing download: %w", writeErr)
			}
			downloaded += int64(n)
			if c.progress != nil {
				c.progress(downloaded, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return fmt.Errorf("reading download stream: %w", readErr)
		}
	}

	return f.Close()
}
