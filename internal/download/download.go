package download

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/pgstools/pgmatch/internal/pgserr"
	"github.com/pgstools/pgmatch/internal/scorefile"
)

// Download fetches one scoring file for the requested build into destDir
// and returns the local path. The file is staged with a temp name and only
// renamed into place after the md5 checksum published next to it matches.
// An existing file with a matching checksum is kept as-is.
func (c *Client) Download(ctx context.Context, meta *ScoreMetadata, build scorefile.GenomeBuild, destDir string) (string, error) {
	fileURL, err := meta.FileURL(build)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("create download directory: %w", err)
	}
	dest := filepath.Join(destDir, path.Base(fileURL))

	wantSum, err := c.fetchChecksum(ctx, meta.ID, fileURL)
	if err != nil {
		return "", err
	}

	if _, statErr := os.Stat(dest); statErr == nil {
		if wantSum == "" {
			c.logger.Info("scoring file already downloaded", zap.String("path", dest))
			return dest, nil
		}
		if sum, sumErr := fileMD5(dest); sumErr == nil && sum == wantSum {
			c.logger.Info("scoring file already downloaded and verified", zap.String("path", dest))
			return dest, nil
		}
		c.logger.Warn("existing scoring file failed checksum, re-downloading", zap.String("path", dest))
	}

	body, err := c.get(ctx, meta.ID, fileURL)
	if err != nil {
		return "", err
	}
	defer body.Close()

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create download file: %w", err)
	}

	hasher := md5.New()
	if _, err := io.Copy(io.MultiWriter(f, hasher), body); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", &pgserr.Error{
			Kind:      pgserr.KindDownloadFailed,
			Accession: meta.ID,
			Msg:       "download interrupted",
			Err:       err,
		}
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close download file: %w", err)
	}

	if wantSum != "" {
		got := hex.EncodeToString(hasher.Sum(nil))
		if got != wantSum {
			os.Remove(tmp)
			return "", &pgserr.Error{
				Kind:      pgserr.KindChecksumMismatch,
				Accession: meta.ID,
				Msg:       fmt.Sprintf("md5 mismatch for %s: got %s, want %s", path.Base(fileURL), got, wantSum),
			}
		}
	}

	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("commit download: %w", err)
	}

	c.logger.Info("downloaded scoring file",
		zap.String("accession", meta.ID),
		zap.String("path", dest))
	return dest, nil
}

// fetchChecksum retrieves the md5 file the catalog publishes next to each
// scoring file. A missing checksum file downgrades to unverified download
// with a warning rather than failing the run.
func (c *Client) fetchChecksum(ctx context.Context, accession, fileURL string) (string, error) {
	body, err := c.get(ctx, accession, fileURL+".md5")
	if err != nil {
		if pgserr.KindOf(err) == pgserr.KindQueryInvalid {
			c.logger.Warn("no md5 file published, skipping checksum verification",
				zap.String("url", fileURL))
			return "", nil
		}
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read md5 file: %w", err)
	}

	// md5sum format: "<hex>  <filename>"
	fields := strings.Fields(string(data))
	if len(fields) == 0 || len(fields[0]) != 32 {
		c.logger.Warn("malformed md5 file, skipping checksum verification",
			zap.String("url", fileURL))
		return "", nil
	}
	return strings.ToLower(fields[0]), nil
}

func fileMD5(p string) (string, error) {
	f, err := os.Open(p)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := md5.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
