package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"golang.org/x/net/html"

	"blenderctl/internal/buildinfo"
	"blenderctl/internal/bversion"
)

const stableReleasesURL = "https://download.blender.org/release/"

var (
	seriesDirRE = regexp.MustCompile(`Blender(\d+\.\d+)`)
	// Directory index rows carry a "02-Jan-2006 15:04" timestamp next
	// to each link.
	indexDateRE = regexp.MustCompile(`\d{2}-\w{3}-\d{4} \d{2}:\d{2}`)
)

const indexDateLayout = "02-Jan-2006 15:04"

// Stable scrapes the official release mirror. The mirror is a plain
// directory listing: one folder per minor series, archives inside.
type Stable struct {
	baseURL    string
	minimum    bversion.Version
	httpClient *http.Client
}

// NewStable creates a scraper for releases at or above minimum.
func NewStable(minimum bversion.Version) *Stable {
	return &Stable{
		baseURL:    stableReleasesURL,
		minimum:    minimum,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
}

func (s *Stable) Branch() string { return buildinfo.BranchStable }

func (s *Stable) Scrape(ctx context.Context) ([]RawBuild, error) {
	links, err := s.fetchIndex(ctx, s.baseURL)
	if err != nil {
		return nil, err
	}

	var builds []RawBuild
	for _, link := range links {
		m := seriesDirRE.FindStringSubmatch(link.href)
		if m == nil {
			continue
		}
		ver, err := bversion.Parse(m[1], false)
		if err != nil || ver.LessThan(s.minimum) {
			continue
		}
		series, err := s.scrapeSeries(ctx, link.href)
		if err != nil {
			return nil, fmt.Errorf("series %s: %w", m[1], err)
		}
		builds = append(builds, series...)
	}
	return builds, nil
}

func (s *Stable) scrapeSeries(ctx context.Context, href string) ([]RawBuild, error) {
	base, err := url.Parse(s.baseURL)
	if err != nil {
		return nil, err
	}
	ref, err := url.Parse(href)
	if err != nil {
		return nil, err
	}
	seriesURL := base.ResolveReference(ref).String()

	links, err := s.fetchIndex(ctx, seriesURL)
	if err != nil {
		return nil, err
	}

	var builds []RawBuild
	for _, link := range links {
		if !packageFileName(link.href) {
			continue
		}
		version, err := bversion.Parse(link.href, true)
		if err != nil {
			continue
		}
		builds = append(builds, RawBuild{
			URL:        seriesURL + link.href,
			Version:    version.String(),
			CommitTime: link.modified,
			Branch:     buildinfo.BranchStable,
		})
	}
	return builds, nil
}

// indexLink is one row of a mirror directory listing.
type indexLink struct {
	href     string
	modified time.Time
}

func (s *Stable) fetchIndex(ctx context.Context, pageURL string) ([]indexLink, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", pageURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("release mirror returned status %d: %s", resp.StatusCode, string(body))
	}

	doc, err := html.Parse(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse listing: %w", err)
	}
	return collectIndexLinks(doc), nil
}

// collectIndexLinks walks the document and pairs each anchor with the
// modification timestamp printed after it, when one is present.
func collectIndexLinks(doc *html.Node) []indexLink {
	var links []indexLink
	for n := range doc.Descendants() {
		if n.Type != html.ElementNode || n.Data != "a" {
			continue
		}
		href := ""
		for _, attr := range n.Attr {
			if attr.Key == "href" {
				href = attr.Val
				break
			}
		}
		if href == "" || strings.HasPrefix(href, "?") || href == "../" {
			continue
		}
		links = append(links, indexLink{href: href, modified: siblingDate(n)})
	}
	return links
}

func siblingDate(anchor *html.Node) time.Time {
	for n := anchor.NextSibling; n != nil; n = n.NextSibling {
		if n.Type != html.TextNode {
			continue
		}
		m := indexDateRE.FindString(n.Data)
		if m == "" {
			continue
		}
		if t, err := time.Parse(indexDateLayout, m); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
