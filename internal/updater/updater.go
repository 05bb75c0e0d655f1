// Package updater checks GitHub releases for a newer recall and can
// replace the running binary with it.
//
// Releases follow GoReleaser naming: recall_<version>_<os>_<arch>.tar.gz,
// or .zip on Windows. The new binary is written next to the current one
// and renamed over it; the MCP server must be restarted afterwards.
package updater

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

const (
	// Repo is the GitHub repository releases are published to.
	Repo = "HendryAvila/recall"

	// Binary is the executable name inside release archives.
	Binary = "recall"

	checkTimeout = 10 * time.Second

	// maxArchive bounds downloaded release archives.
	maxArchive = 200 << 20
)

// ErrUpToDate is returned by Apply when no newer release exists.
var ErrUpToDate = errors.New("already at latest version")

// ReleaseInfo holds the relevant fields from a GitHub release.
type ReleaseInfo struct {
	TagName string  `json:"tag_name"`
	HTMLURL string  `json:"html_url"`
	Assets  []Asset `json:"assets"`
}

// Asset represents a downloadable file in a GitHub release.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// UpdateResult is the outcome of a version check.
type UpdateResult struct {
	CurrentVersion  string
	LatestVersion   string
	UpdateAvailable bool
	ReleaseURL      string
}

// Updater talks to the releases endpoint.
type Updater struct {
	endpoint string
	http     *http.Client
	// executable locates the binary Apply replaces.
	executable func() (string, error)
}

// New creates an Updater for the latest release of Repo.
func New() *Updater {
	return &Updater{
		endpoint:   "https://api.github.com/repos/" + Repo + "/releases/latest",
		http:       &http.Client{Timeout: checkTimeout},
		executable: os.Executable,
	}
}

// Check compares current against the latest release. It is best-effort:
// network and decode failures leave UpdateAvailable false.
func (u *Updater) Check(ctx context.Context, current string) *UpdateResult {
	result := &UpdateResult{CurrentVersion: normalizeVersion(current)}

	release, err := u.latest(ctx, current)
	if err != nil {
		return result
	}

	result.LatestVersion = normalizeVersion(release.TagName)
	result.ReleaseURL = release.HTMLURL
	result.UpdateAvailable = isNewer(result.CurrentVersion, result.LatestVersion)
	return result
}

// Apply downloads the release asset for this OS/arch and swaps it in for
// the running executable. It returns the installed version.
func (u *Updater) Apply(ctx context.Context, current string) (string, error) {
	release, err := u.latest(ctx, current)
	if err != nil {
		return "", err
	}

	latest := normalizeVersion(release.TagName)
	if !isNewer(normalizeVersion(current), latest) {
		return "", fmt.Errorf("%w (%s)", ErrUpToDate, current)
	}

	assetName := buildAssetName(latest, runtime.GOOS, runtime.GOARCH)
	var downloadURL string
	for _, asset := range release.Assets {
		if asset.Name == assetName {
			downloadURL = asset.BrowserDownloadURL
			break
		}
	}
	if downloadURL == "" {
		return "", fmt.Errorf("no release asset for %s/%s (looking for %s)", runtime.GOOS, runtime.GOARCH, assetName)
	}

	archive, err := u.download(ctx, downloadURL)
	if err != nil {
		return "", err
	}
	binary, err := extractBinary(archive, assetName)
	if err != nil {
		return "", fmt.Errorf("extracting binary: %w", err)
	}

	execPath, err := u.executable()
	if err != nil {
		return "", fmt.Errorf("finding current executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(execPath); err == nil {
		execPath = resolved
	}
	if err := replaceBinary(execPath, binary); err != nil {
		return "", err
	}
	return latest, nil
}

// latest fetches the latest release description.
func (u *Updater) latest(ctx context.Context, current string) (*ReleaseInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", Binary+"/"+current)

	resp, err := u.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("checking latest release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned %d", resp.StatusCode)
	}

	var release ReleaseInfo
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, fmt.Errorf("parsing release info: %w", err)
	}
	return &release, nil
}

func (u *Updater) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %w", err)
	}
	resp, err := u.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading release: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxArchive))
	if err != nil {
		return nil, fmt.Errorf("reading release archive: %w", err)
	}
	return data, nil
}

// replaceBinary writes data beside path and renames it over path. Windows
// cannot overwrite a running executable, so the old one is moved aside.
func replaceBinary(path string, data []byte) error {
	tmpPath := path + ".new"
	if err := os.WriteFile(tmpPath, data, 0o755); err != nil {
		return fmt.Errorf("writing new binary: %w", err)
	}

	if runtime.GOOS == "windows" {
		oldPath := path + ".old"
		_ = os.Remove(oldPath)
		if err := os.Rename(path, oldPath); err != nil {
			_ = os.Remove(tmpPath)
			return fmt.Errorf("backing up current binary: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing binary: %w", err)
	}
	return nil
}

// extractBinary returns the recall executable from a release archive.
func extractBinary(archive []byte, assetName string) ([]byte, error) {
	if strings.HasSuffix(assetName, ".zip") {
		return extractFromZip(archive)
	}
	return extractFromTarGz(archive)
}

func extractFromTarGz(archive []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return nil, fmt.Errorf("opening gzip: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading tar: %w", err)
		}
		if isBinaryName(header.Name) {
			return readBinary(tr)
		}
	}
	return nil, fmt.Errorf("%s binary not found in archive", Binary)
}

func extractFromZip(archive []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, fmt.Errorf("opening zip: %w", err)
	}
	for _, f := range zr.File {
		if !isBinaryName(f.Name) {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		defer func() { _ = rc.Close() }()
		return readBinary(rc)
	}
	return nil, fmt.Errorf("%s binary not found in archive", Binary)
}

// maxBinary bounds the decompressed executable.
var maxBinary int64 = maxArchive

// readBinary reads an extracted file, failing when it exceeds maxBinary.
func readBinary(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxBinary+1))
	if err != nil {
		return nil, fmt.Errorf("reading binary: %w", err)
	}
	if int64(len(data)) > maxBinary {
		return nil, fmt.Errorf("%s binary exceeds %d bytes", Binary, maxBinary)
	}
	return data, nil
}

func isBinaryName(name string) bool {
	base := filepath.Base(name)
	return base == Binary || base == Binary+".exe"
}

// buildAssetName matches GoReleaser's default name_template.
func buildAssetName(version, goos, goarch string) string {
	ext := "tar.gz"
	if goos == "windows" {
		ext = "zip"
	}
	return fmt.Sprintf("%s_%s_%s_%s.%s", Binary, version, goos, goarch, ext)
}

// normalizeVersion strips one leading "v".
func normalizeVersion(v string) string {
	return strings.TrimPrefix(v, "v")
}

// isNewer reports whether latest is a higher semantic version than current.
// Unparseable versions, including "dev", never compare as newer.
func isNewer(current, latest string) bool {
	if current == "" || latest == "" || current == "dev" {
		return false
	}
	cv, err := semver.NewVersion(current)
	if err != nil {
		return false
	}
	lv, err := semver.NewVersion(latest)
	if err != nil {
		return false
	}
	return lv.GreaterThan(cv)
}
