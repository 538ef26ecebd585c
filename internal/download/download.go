// Package download fetches the WebDriver servers and browsers the suites
// drive into a local directory.
package download

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/golang/glog"
	"github.com/google/go-github/v27/github"
	"golang.org/x/sync/errgroup"
	"google.golang.org/api/option"
)

const (
	// DesiredGeckodriverVersion is downloaded unless the latest release is
	// requested.
	DesiredGeckodriverVersion = "0.34.0"

	// DesiredFirefoxVersion is the known version of Firefox to download.
	//
	// Update this periodically.
	DesiredFirefoxVersion = "115.9.1esr"
)

// Bucket holding the Chromium continuous builds, with a directory per build.
const (
	SnapshotBucket  = "chromium-browser-snapshots"
	prefixLinux64   = "Linux_x64"
	lastChangeFile  = "Linux_x64/LAST_CHANGE"
	chromiumZip     = "chrome-linux.zip"
	chromeDriverZip = "chromedriver_linux64.zip"
)

// File describes how to download a file from the Web.
type File struct {
	URL  string
	Name string
	// Hash is the hex encoded digest of the file. It is not checked if
	// empty.
	Hash     string
	HashType string // default is sha256
	// Rename holds a source and a destination, relative to the download
	// directory, applied after extraction.
	Rename  []string
	Browser bool
	// The directory in which to store the file.
	directory string
}

// Path returns where the file is stored.
func (f File) Path() string {
	if f.directory != "" {
		return filepath.Join(f.directory, f.Name)
	}
	return f.Name
}

func (f File) newHash() hash.Hash {
	switch strings.ToLower(f.HashType) {
	case "md5":
		return md5.New()
	case "sha1":
		return sha1.New()
	default:
		return sha256.New()
	}
}

// Options select what Files returns.
type Options struct {
	// Browsers adds Chromium and Firefox next to the drivers.
	Browsers bool
	// Latest picks the newest geckodriver, Chromium snapshot and Firefox
	// nightly instead of the pinned versions.
	Latest bool
	// ChromiumBuild pins the Chromium snapshot. If empty, the last change
	// of the snapshot bucket is used.
	ChromiumBuild string
}

// Fetcher resolves and downloads files.
type Fetcher struct {
	HTTP   *http.Client
	GitHub *github.Client
	// Bucket holds the Chromium snapshots.
	Bucket *storage.BucketHandle
}

// NewFetcher returns a Fetcher that talks to GitHub and Google Cloud Storage
// through client.
func NewFetcher(ctx context.Context, client *http.Client) (*Fetcher, error) {
	if client == nil {
		client = http.DefaultClient
	}
	gcs, err := storage.NewClient(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("cannot create a storage client for downloading Chromium: %v", err)
	}
	return &Fetcher{
		HTTP:   client,
		GitHub: github.NewClient(client),
		Bucket: gcs.Bucket(SnapshotBucket),
	}, nil
}

// Files returns the files to download for opts. A source that cannot be
// resolved is logged and left out.
func (f *Fetcher) Files(ctx context.Context, opts Options) []File {
	var files []File
	if opts.Latest {
		gecko, err := f.LatestRelease(ctx, "mozilla", "geckodriver", `geckodriver-.*linux64\.tar\.gz$`, "geckodriver.tar.gz")
		if err != nil {
			glog.Errorf("Unable to find the latest Geckodriver: %v", err)
		} else {
			files = append(files, gecko)
		}
	} else {
		files = append(files, GeckodriverFile(DesiredGeckodriverVersion))
	}

	chromium, err := f.ChromiumSnapshot(ctx, opts.ChromiumBuild)
	if err != nil {
		glog.Errorf("Unable to find the Chromium snapshot: %v", err)
	}
	for _, file := range chromium {
		if file.Browser && !opts.Browsers {
			continue
		}
		files = append(files, file)
	}

	if opts.Browsers {
		version := DesiredFirefoxVersion
		if opts.Latest {
			version = ""
		}
		files = append(files, FirefoxFile(version))
	}
	return files
}

// GeckodriverFile describes the Linux geckodriver release version.
func GeckodriverFile(version string) File {
	v := url.PathEscape(version)
	return File{
		URL:  "https://github.com/mozilla/geckodriver/releases/download/v" + v + "/geckodriver-v" + v + "-linux64.tar.gz",
		Name: "geckodriver.tar.gz",
	}
}

// FirefoxFile describes a Firefox release. If version is empty, the latest
// nightly is used.
func FirefoxFile(version string) File {
	if version == "" {
		return File{
			URL:     "https://download.mozilla.org/?product=firefox-nightly-latest-ssl&os=linux64&lang=en-US",
			Name:    "firefox-nightly.tar.bz2",
			Browser: true,
		}
	}
	v := url.PathEscape(version)
	return File{
		URL:     "https://download-installer.cdn.mozilla.net/pub/firefox/releases/" + v + "/linux-x86_64/en-US/firefox-" + v + ".tar.bz2",
		Name:    "firefox.tar.bz2",
		Browser: true,
	}
}

// LatestRelease describes the first asset of the latest GitHub release of
// owner/repo whose name matches assetName. It is stored as localName.
func (f *Fetcher) LatestRelease(ctx context.Context, owner, repo, assetName, localName string) (File, error) {
	assetNameRE, err := regexp.Compile(assetName)
	if err != nil {
		return File{}, fmt.Errorf("invalid asset name regular expression %q: %v", assetName, err)
	}
	rel, _, err := f.GitHub.Repositories.GetLatestRelease(ctx, owner, repo)
	if err != nil {
		return File{}, err
	}
	for _, a := range rel.Assets {
		if !assetNameRE.MatchString(a.GetName()) {
			continue
		}
		u := a.GetBrowserDownloadURL()
		if u == "" {
			return File{}, fmt.Errorf("%s does not have a download URL", a.GetName())
		}
		return File{Name: localName, URL: u}, nil
	}
	return File{}, fmt.Errorf("release for %s not found at https://github.com/%s/%s/releases", assetName, owner, repo)
}

// ChromiumSnapshot describes the Chromium and ChromeDriver archives of a
// snapshot build. If build is empty, the last change is used.
func (f *Fetcher) ChromiumSnapshot(ctx context.Context, build string) ([]File, error) {
	gcsPath := fmt.Sprintf("gs://%s/", SnapshotBucket)
	if build == "" {
		r, err := f.Bucket.Object(lastChangeFile).NewReader(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot create a reader for %s%s file: %v", gcsPath, lastChangeFile, err)
		}
		defer r.Close()
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("cannot read from %s%s file: %v", gcsPath, lastChangeFile, err)
		}
		build = strings.TrimSpace(string(data))
	}
	return snapshotFiles(build, func(object string) (*storage.ObjectAttrs, error) {
		attrs, err := f.Bucket.Object(object).Attrs(ctx)
		if err != nil {
			return nil, fmt.Errorf("cannot get the attrs of %s%s: %v", gcsPath, object, err)
		}
		return attrs, nil
	})
}

func snapshotFiles(build string, attrs func(object string) (*storage.ObjectAttrs, error)) ([]File, error) {
	browser, err := attrs(path.Join(prefixLinux64, build, chromiumZip))
	if err != nil {
		return nil, err
	}
	driver, err := attrs(path.Join(prefixLinux64, build, chromeDriverZip))
	if err != nil {
		return nil, err
	}
	return []File{
		{
			URL:      browser.MediaLink,
			Name:     chromiumZip,
			Hash:     hex.EncodeToString(browser.MD5),
			HashType: "md5",
			Browser:  true,
			Rename:   []string{"chrome-linux", "chromium"},
		},
		{
			URL:      driver.MediaLink,
			Name:     "chromedriver.zip",
			Hash:     hex.EncodeToString(driver.MD5),
			HashType: "md5",
			Rename:   []string{"chromedriver_linux64/chromedriver", "chromedriver"},
		},
	}, nil
}

// Download fetches file into directory unless a copy with the same hash is
// already there, then extracts and renames it. If directory is the empty
// string, the current directory is used.
func (f *Fetcher) Download(ctx context.Context, file File, directory string) error {
	file.directory = directory

	if file.Hash != "" && fileSameHash(file) {
		glog.Infof("Skipping file %q which has already been downloaded.", file.Name)
	} else {
		glog.Infof("Downloading %q from %q", file.Name, file.URL)
		if err := f.downloadFile(ctx, file); err != nil {
			return err
		}
	}

	if err := extractArchive(file); err != nil {
		return err
	}

	if rename := file.Rename; len(rename) == 2 {
		from := filepath.Join(file.directory, rename[0])
		to := filepath.Join(file.directory, rename[1])
		glog.Infof("Renaming %q to %q", from, to)
		os.RemoveAll(to) // Ignore error.
		if err := os.Rename(from, to); err != nil {
			glog.Warningf("Error renaming %q to %q: %v", from, to, err)
		}
	}
	return nil
}

// DownloadAll downloads files concurrently into directory, which is created
// if needed.
func (f *Fetcher) DownloadAll(ctx context.Context, files []File, directory string) error {
	if directory != "" {
		if err := os.MkdirAll(directory, 0755); err != nil {
			return err
		}
	}
	g, ctx := errgroup.WithContext(ctx)
	for _, file := range files {
		file := file
		g.Go(func() error {
			if err := f.Download(ctx, file, directory); err != nil {
				return fmt.Errorf("error handling %s: %v", file.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

func (f *Fetcher) downloadFile(ctx context.Context, file File) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, file.URL, nil)
	if err != nil {
		return fmt.Errorf("%s: %v", file.Name, err)
	}
	resp, err := f.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s: error downloading %q: %v", file.Name, file.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s: error downloading %q: %s", file.Name, file.URL, resp.Status)
	}

	out, err := os.Create(file.Path())
	if err != nil {
		return fmt.Errorf("error creating %q: %v", file.Path(), err)
	}
	defer func() {
		if closeErr := out.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("error closing %q: %v", file.Path(), closeErr)
		}
	}()

	if file.Hash == "" {
		if _, err := io.Copy(out, resp.Body); err != nil {
			return fmt.Errorf("%s: error downloading %q: %v", file.Name, file.URL, err)
		}
		return nil
	}
	h := file.newHash()
	if _, err := io.Copy(io.MultiWriter(out, h), resp.Body); err != nil {
		return fmt.Errorf("%s: error downloading %q: %v", file.Name, file.URL, err)
	}
	if sum := hex.EncodeToString(h.Sum(nil)); sum != file.Hash {
		return fmt.Errorf("%s: got %s hash %q, want %q", file.Name, file.hashName(), sum, file.Hash)
	}
	return nil
}

func (f File) hashName() string {
	if f.HashType == "" {
		return "sha256"
	}
	return strings.ToLower(f.HashType)
}

func fileSameHash(file File) bool {
	in, err := os.Open(file.Path())
	if err != nil {
		return false
	}
	defer in.Close()

	h := file.newHash()
	if _, err := io.Copy(h, in); err != nil {
		return false
	}
	sum := hex.EncodeToString(h.Sum(nil))
	if sum != file.Hash {
		glog.Warningf("File %q: got hash %q, expect hash %q", file.Name, sum, file.Hash)
		return false
	}
	return true
}

// newExecCommand is replaced in tests.
var newExecCommand = exec.Command

func extractCommand(file File) []string {
	dir := "."
	if file.directory != "" {
		dir = file.directory
	}
	switch {
	case strings.HasSuffix(file.Name, ".zip"):
		return []string{"unzip", "-o", "-q", file.Path(), "-d", dir}
	case strings.HasSuffix(file.Name, ".tar.gz"), strings.HasSuffix(file.Name, ".tgz"):
		return []string{"tar", "-xzf", file.Path(), "-C", dir}
	case strings.HasSuffix(file.Name, ".tar.bz2"):
		return []string{"tar", "-xjf", file.Path(), "-C", dir}
	}
	return nil
}

func extractArchive(file File) error {
	args := extractCommand(file)
	if args == nil {
		return nil
	}
	glog.Infof("Extracting %q", file.Path())
	if out, err := newExecCommand(args[0], args[1:]...).CombinedOutput(); err != nil {
		return fmt.Errorf("error extracting %q: %v\n%s", file.Name, err, out)
	}
	return nil
}
