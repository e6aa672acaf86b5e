package models

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	readmeURLRe      = regexp.MustCompile(`https?://[^\s<>"'\)\]]+`)
	markdownImageRe  = regexp.MustCompile(`!\[[^\]]*\]\(([^)]+)\)`)
	htmlImageRe      = regexp.MustCompile(`<img[^>]*?src="([^"]+)"`)
	zenodoBadgeDOIRe = regexp.MustCompile(`zenodo\.org/badge/DOI/(10\.\d{4,}/[^\s"')]+?)\.svg`)
)

var doiDomains = []string{"doi.org", "dx.doi.org", "www.doi.org"}

// ReadmeURLs extracts the HTTP(S) URLs from the README, with trailing
// markdown punctuation stripped.
func (p *Project) ReadmeURLs() []string {
	if p.Readme == "" {
		return nil
	}
	text := strings.NewReplacer("[", " ", "]", " ").Replace(p.Readme)
	matches := readmeURLRe.FindAllString(text, -1)
	seen := map[string]struct{}{}
	var urls []string
	for _, m := range matches {
		m = strings.ReplaceAll(m, "&nbsp;", "")
		m = strings.TrimRight(m, ":*.,)")
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		urls = append(urls, m)
	}
	return urls
}

// ReadmeDomains returns the distinct hosts of all README URLs.
func (p *Project) ReadmeDomains() []string {
	seen := map[string]struct{}{}
	var domains []string
	for _, u := range p.ReadmeURLs() {
		parsed, err := url.Parse(u)
		if err != nil || parsed.Host == "" {
			continue
		}
		if _, dup := seen[parsed.Host]; dup {
			continue
		}
		seen[parsed.Host] = struct{}{}
		domains = append(domains, parsed.Host)
	}
	return domains
}

// ReadmeDOIURLs returns README URLs pointing at a DOI resolver.
func (p *Project) ReadmeDOIURLs() []string {
	var out []string
	for _, u := range p.ReadmeURLs() {
		parsed, err := url.Parse(u)
		if err != nil {
			continue
		}
		for _, d := range doiDomains {
			if parsed.Host == d {
				out = append(out, u)
				break
			}
		}
	}
	return out
}

// DOIs returns the DOI identifiers behind the README's DOI URLs.
func (p *Project) DOIs() []string {
	seen := map[string]struct{}{}
	var dois []string
	for _, u := range p.ReadmeDOIURLs() {
		parsed, err := url.Parse(u)
		if err != nil {
			continue
		}
		doi := strings.TrimPrefix(parsed.Path, "/")
		if doi == "" {
			continue
		}
		if _, dup := seen[doi]; dup {
			continue
		}
		seen[doi] = struct{}{}
		dois = append(dois, doi)
	}
	return dois
}

// ZenodoDomains lists the hosts recognized as Zenodo.
func (p *Project) ZenodoDomains() []string {
	return []string{"zenodo.org", "www.zenodo.org"}
}

// ReadmeZenodoURLs returns README URLs hosted on Zenodo.
func (p *Project) ReadmeZenodoURLs() []string {
	out := []string{}
	for _, u := range p.ReadmeURLs() {
		parsed, err := url.Parse(u)
		if err != nil {
			continue
		}
		for _, d := range p.ZenodoDomains() {
			if parsed.Host == d {
				out = append(out, u)
				break
			}
		}
	}
	return out
}

// ZenodoDOIs returns the README DOIs minted by Zenodo.
func (p *Project) ZenodoDOIs() []string {
	var out []string
	for _, doi := range p.DOIs() {
		if strings.HasPrefix(doi, "10.5281/zenodo.") {
			out = append(out, doi)
		}
	}
	return out
}

// ZenodoBadgeURLs returns README image URLs hosted on Zenodo.
func (p *Project) ZenodoBadgeURLs() []string {
	out := []string{}
	for _, u := range p.ReadmeImageURLs() {
		if strings.Contains(u, "zenodo.org/") {
			out = append(out, u)
		}
	}
	return out
}

// ZenodoURL derives the project's Zenodo deposit URL from the README. DOI
// links win over record links; a badge image that embeds a DOI is converted
// to a resolver URL; a bare badge with no DOI yields nothing.
func (p *Project) ZenodoURL() string {
	zenodoURLs := p.ReadmeZenodoURLs()
	for _, u := range zenodoURLs {
		if strings.Contains(u, "/doi/") {
			return u
		}
	}
	for _, u := range zenodoURLs {
		if strings.Contains(u, "/record/") {
			return u
		}
	}
	if p.Readme != "" {
		if m := zenodoBadgeDOIRe.FindStringSubmatch(p.Readme); m != nil {
			return "https://doi.org/" + m[1]
		}
	}
	if dois := p.ZenodoDOIs(); len(dois) > 0 {
		return "https://doi.org/" + dois[0]
	}
	return ""
}

// ReadmeImageURLs extracts image URLs from markdown and HTML image tags,
// resolving relative paths against the repository raw URL.
func (p *Project) ReadmeImageURLs() []string {
	if p.Readme == "" {
		return nil
	}
	var raw []string
	for _, m := range markdownImageRe.FindAllStringSubmatch(p.Readme, -1) {
		raw = append(raw, m[1])
	}
	for _, m := range htmlImageRe.FindAllStringSubmatch(p.Readme, -1) {
		raw = append(raw, m[1])
	}

	seen := map[string]struct{}{}
	var urls []string
	for _, u := range raw {
		// drop markdown titles after the URL
		u = strings.Split(u, " ")[0]
		if u == "" {
			continue
		}
		if !strings.HasPrefix(u, "http") {
			if strings.HasPrefix(u, "/") || isAlpha(rune(u[0])) {
				u = p.RawURL(strings.TrimPrefix(u, "/"))
			} else {
				continue
			}
		}
		if u == "" {
			continue
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
	}
	return urls
}

func isAlpha(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// fundingDomains are hosts whose presence in a README counts as a funding
// link.
var fundingDomains = []string{
	"opencollective.com", "ko-fi.com", "liberapay.com", "patreon.com",
	"otechie.com", "issuehunt.io", "communitybridge.org", "tidelift.com",
	"buymeacoffee.com", "paypal.com", "paypal.me", "givebutter.com", "polar.sh",
}

// FundingLinks collects funding URLs from package metadata, repository
// funding metadata, the owner's sponsors listing and the README.
func (p *Project) FundingLinks() []string {
	var links []string
	links = append(links, p.packageFundingLinks()...)
	links = append(links, p.repoFundingLinks()...)
	links = append(links, p.ownerFundingLinks()...)
	links = append(links, p.readmeFundingLinks()...)

	seen := map[string]struct{}{}
	deduped := links[:0]
	for _, l := range links {
		if _, dup := seen[l]; dup {
			continue
		}
		seen[l] = struct{}{}
		deduped = append(deduped, l)
	}
	return deduped
}

func (p *Project) packageFundingLinks() []string {
	pkgs, ok := p.PackageDocs()
	if !ok {
		return nil
	}
	var links []string
	for _, pkg := range pkgs {
		links = append(links, fundingValues(pkg.Metadata["funding"])...)
	}
	return links
}

func (p *Project) ownerFundingLinks() []string {
	repo, ok := p.RepositoryDoc()
	if !ok || repo.OwnerRecord == nil {
		return nil
	}
	if has, _ := repo.OwnerRecord.Metadata["has_sponsors_listing"].(bool); !has {
		return nil
	}
	return []string{"https://github.com/sponsors/" + repo.OwnerRecord.Login}
}

// fundingPlatformURLs maps funding-manifest keys to URL templates.
var fundingPlatformURLs = map[string]string{
	"github":           "https://github.com/sponsors/%s",
	"tidelift":         "https://tidelift.com/funding/github/%s",
	"community_bridge": "https://funding.communitybridge.org/projects/%s",
	"issuehunt":        "https://issuehunt.io/r/%s",
	"open_collective":  "https://opencollective.com/%s",
	"ko_fi":            "https://ko-fi.com/%s",
	"liberapay":        "https://liberapay.com/%s",
	"otechie":          "https://otechie.com/%s",
	"patreon":          "https://patreon.com/%s",
	"polar":            "https://polar.sh/%s",
	"buy_me_a_coffee":  "https://buymeacoffee.com/%s",
}

func (p *Project) repoFundingLinks() []string {
	repo, ok := p.RepositoryDoc()
	if !ok || repo.Metadata == nil {
		return nil
	}
	var links []string
	for key, v := range repo.Metadata.Funding {
		for _, val := range fundingValues(v) {
			if tmpl, known := fundingPlatformURLs[key]; known {
				links = append(links, fmt.Sprintf(tmpl, val))
			} else {
				links = append(links, val)
			}
		}
	}
	return links
}

// fundingValues flattens a funding manifest value, which may be a string, a
// list or a map with a url entry.
func fundingValues(v any) []string {
	switch val := v.(type) {
	case string:
		if val == "" {
			return nil
		}
		return []string{val}
	case []any:
		var out []string
		for _, item := range val {
			out = append(out, fundingValues(item)...)
		}
		return out
	case map[string]any:
		if u, ok := val["url"].(string); ok && u != "" {
			return []string{u}
		}
	}
	return nil
}

func (p *Project) readmeFundingLinks() []string {
	var links []string
	for _, u := range p.ReadmeURLs() {
		if strings.HasSuffix(u, ".svg") || strings.HasSuffix(u, ".png") {
			continue
		}
		matched := strings.Contains(u, "github.com/sponsors")
		for _, d := range fundingDomains {
			if matched {
				break
			}
			matched = strings.Contains(u, d)
		}
		if !matched {
			continue
		}
		// strip anchors and open collective tier suffixes
		u = strings.SplitN(u, "#", 2)[0]
		u = sponsorTierRe.ReplaceAllString(u, "")
		links = append(links, u)
	}
	return links
}

var sponsorTierRe = regexp.MustCompile(`/sponsor/\d+/website$`)
