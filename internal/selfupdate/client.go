package selfupdate

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 10 * time.Second

// Release represents a GitHub release
type Release struct {
	TagName    string  `json:"tag_name"`
	Name       string  `json:"name"`
	Body       string  `json:"body"`
	Prerelease bool    `json:"prerelease"`
	Draft      bool    `json:"draft"`
	Assets     []Asset `json:"assets"`
}

// Asset represents a release asset
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

// client talks to the GitHub releases API for one repository
type client struct {
	owner      string
	repo       string
	apiBase    string
	webBase    string
	httpClient *http.Client
}

func newClient(owner, repo string) *client {
	return &client{
		owner:      owner,
		repo:       repo,
		apiBase:    "https://api.github.com",
		webBase:    "https://github.com",
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

// latestRelease fetches the latest stable release
func (c *client) latestRelease() (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.apiBase, c.owner, c.repo)
	body, err := c.get(url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var release Release
	if err := json.NewDecoder(body).Decode(&release); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &release, nil
}

// latestPreRelease fetches the newest non-draft release on a channel
// ("alpha", "beta", "rc"), or the newest stable one when channel is
// empty.
func (c *client) latestPreRelease(channel string) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases", c.apiBase, c.owner, c.repo)
	body, err := c.get(url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var releases []Release
	if err := json.NewDecoder(body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	for _, release := range releases {
		if release.Draft {
			continue
		}
		switch {
		case channel == "" && release.Prerelease:
			continue
		case channel != "" && release.Prerelease:
			if matchesChannel(release.TagName, channel) {
				return &release, nil
			}
		case channel == "" && !release.Prerelease:
			return &release, nil
		}
	}

	return nil, fmt.Errorf("no release found for channel: %s", channel)
}

// releaseURL returns the web URL for a release
func (c *client) releaseURL(tagName string) string {
	return fmt.Sprintf("%s/%s/%s/releases/tag/%s", c.webBase, c.owner, c.repo, tagName)
}

// downloadAsset streams an asset into out
func (c *client) downloadAsset(url string, out io.Writer) error {
	body, err := c.get(url)
	if err != nil {
		return err
	}
	defer body.Close()

	_, err = io.Copy(out, body)
	return err
}

// matchesChannel checks if a tag name matches the given pre-release channel
func matchesChannel(tagName, channel string) bool {
	tagName = strings.TrimPrefix(tagName, "v")
	return strings.Contains(tagName, "-"+channel)
}

func (c *client) get(url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(context.Background(), "GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, fmt.Errorf("GitHub API returned status %d: %s", resp.StatusCode, string(body))
	}
	return resp.Body, nil
}
