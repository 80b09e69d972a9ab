// Package tarball implements ports.Installer for gzipped npm package tarballs.
package tarball

import (
	"archive/tar"
	"context"
	"crypto/sha1" //nolint:gosec // npm publishes SHA-1 shasums
	"encoding/hex"
	"errors"
	"hash"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.trai.ch/fans/internal/core/domain"
	"go.trai.ch/zerr"
)

// Installer downloads package tarballs and unpacks them into their install path.
type Installer struct {
	httpClient *http.Client
}

// NewInstaller creates an Installer using the configured HTTP timeout.
func NewInstaller(cfg *domain.Config) *Installer {
	return NewInstallerWithClient(&http.Client{Timeout: cfg.Timeout})
}

// NewInstallerWithClient creates an Installer that uses client for downloads.
func NewInstallerWithClient(client *http.Client) *Installer {
	return &Installer{httpClient: client}
}

// Install fetches a.TarballURL and extracts it into a.Path, replacing
// whatever was there. On failure the destination is removed.
func (i *Installer) Install(ctx context.Context, a domain.Artifact) error {
	if err := os.RemoveAll(a.Path); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrExtractFailed, err.Error()), "path", a.Path)
	}
	if err := os.MkdirAll(a.Path, domain.DirPerm); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrExtractFailed, err.Error()), "path", a.Path)
	}

	if err := i.install(ctx, a); err != nil {
		_ = os.RemoveAll(a.Path)
		return zerr.With(zerr.With(err, "package", a.Name), "version", a.Version)
	}
	return nil
}

func (i *Installer) install(ctx context.Context, a domain.Artifact) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.TarballURL, http.NoBody)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrDownloadFailed, err.Error()), "url", a.TarballURL)
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return zerr.With(zerr.Wrap(domain.ErrDownloadFailed, err.Error()), "url", a.TarballURL)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrDownloadFailed, "unexpected status"),
			"status", resp.StatusCode), "url", a.TarballURL)
	}

	digest := sha1.New() //nolint:gosec // npm publishes SHA-1 shasums
	body := io.TeeReader(resp.Body, digest)

	if err := extract(body, a.Path); err != nil {
		return err
	}

	// Trailing padding after the tar end marker still belongs to the digest.
	if _, err := io.Copy(io.Discard, body); err != nil {
		return zerr.With(zerr.Wrap(domain.ErrDownloadFailed, err.Error()), "url", a.TarballURL)
	}

	return verify(digest, a.Shasum)
}

func verify(digest hash.Hash, want string) error {
	if want == "" {
		return nil
	}
	got := hex.EncodeToString(digest.Sum(nil))
	if !strings.EqualFold(got, want) {
		return zerr.With(zerr.With(zerr.Wrap(domain.ErrChecksumMismatch, "tarball digest differs"),
			"expected", want), "actual", got)
	}
	return nil
}

// extract unpacks a gzipped tar stream into dest, dropping the leading
// directory component every npm tarball carries.
func extract(r io.Reader, dest string) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return zerr.Wrap(domain.ErrExtractFailed, err.Error())
	}
	defer func() {
		_ = gz.Close()
	}()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return zerr.Wrap(domain.ErrExtractFailed, err.Error())
		}

		rel, ok := stripFirstComponent(hdr.Name)
		if !ok {
			continue
		}
		target, err := safeJoin(dest, rel)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, domain.DirPerm); err != nil {
				return zerr.With(zerr.Wrap(domain.ErrExtractFailed, err.Error()), "entry", hdr.Name)
			}
		case tar.TypeReg:
			if err := writeFile(target, tr, hdr.FileInfo().Mode()); err != nil {
				return zerr.With(err, "entry", hdr.Name)
			}
		default:
			// Links, devices and fifos are not installed.
		}
	}
}

func stripFirstComponent(name string) (string, bool) {
	_, rest, found := strings.Cut(strings.TrimPrefix(name, "./"), "/")
	if !found || strings.Trim(rest, "/") == "" {
		return "", false
	}
	return rest, true
}

func safeJoin(dest, rel string) (string, error) {
	target := filepath.Join(dest, filepath.FromSlash(rel))
	within, err := filepath.Rel(dest, target)
	if err != nil || within == ".." || strings.HasPrefix(within, ".."+string(filepath.Separator)) {
		return "", zerr.With(zerr.Wrap(domain.ErrUnsafeArchivePath, "entry escapes destination"), "entry", rel)
	}
	return target, nil
}

func writeFile(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), domain.DirPerm); err != nil {
		return zerr.Wrap(domain.ErrExtractFailed, err.Error())
	}

	perm := os.FileMode(domain.FilePerm)
	if mode&0o111 != 0 {
		perm = domain.ExecFilePerm
	}

	//nolint:gosec // target is confined to the install directory by safeJoin
	f, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return zerr.Wrap(domain.ErrExtractFailed, err.Error())
	}
	//nolint:gosec // archive size is bounded by the registry
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return zerr.Wrap(domain.ErrExtractFailed, err.Error())
	}
	if err := f.Close(); err != nil {
		return zerr.Wrap(domain.ErrExtractFailed, err.Error())
	}
	return nil
}
