package services

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"greendex/models"
)

// academicDomains are email and website domain fragments that indicate an
// academic or research institution.
var academicDomains = []string{
	"edu", "ac.uk", "edu.au", "edu.cn", "edu.br", "edu.mx", "edu.ar",
	"edu.co", "edu.in", "ac.jp", "ac.za", "edu.sg", "edu.hk", "edu.my",
	"edu.ph", "edu.tw", "edu.eg", "edu.pk", "edu.vn", "edu.tr",
	"univ", "university", "college", "institute", "academia",
	"umontpellier.fr", "sorbonne", "cnrs.fr", "inria.fr", "inserm.fr",
	"pasteur.fr", "polytechnique", "centralesupelec.fr", "ens.fr",
	"univ-", "u-",
	"mpg.de", "fraunhofer.de", "helmholtz", "uni-", "tu-", "fh-",
	"dlr.de", "fz-juelich.de", "tum.de", "rwth-aachen.de", "dfki.de",
	"tudelft.nl", "uva.nl", "vu.nl", "rug.nl", "tue.nl", "leiden",
	"ethz.ch", "epfl.ch", "cern.ch", "unige.ch", "unibas.ch", "psi.ch",
	"ac.at", "tuwien.ac.at", "uibk.ac.at",
	"ac.il", "huji.ac.il", "weizmann.ac.il", "technion.ac.il",
	"ac.in", "iitb.ac.in", "iiitd.ac.in", "iitk.ac.in", "iisc.ac.in",
	"embl", "ebi.ac.uk", "ku.dk", "dtu.dk", "kth.se", "chalmers.se",
	"ntnu.no", "uio.no", "ucl.ac.uk", "cam.ac.uk", "ox.ac.uk", "ic.ac.uk",
	"utoronto.ca", "ubc.ca", "mcgill.ca", "uwaterloo.ca", "ualberta.ca",
	"csiro.au", "unsw.edu.au", "anu.edu.au", "unimelb.edu.au",
	"nih.gov", "nasa.gov", "noaa.gov", "usgs.gov", "nist.gov",
	"ornl.gov", "lbl.gov", "anl.gov", "bnl.gov", "fnal.gov",
	"lanl.gov", "llnl.gov", "pnnl.gov", "inl.gov",
	"ligo.org", "ieee.org",
}

var doiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`10\.\d{4,}/[-._;()/:a-z0-9]+`),
	regexp.MustCompile(`doi\.org/10\.\d{4,}`),
	regexp.MustCompile(`dx\.doi\.org/10\.\d{4,}`),
}

// academicLinkDomains are publication and preprint hosts whose presence in a
// README counts as an academic link.
var academicLinkDomains = []string{
	"arxiv.org", "biorxiv.org", "medrxiv.org", "preprints.org",
	"researchgate.net", "academia.edu", "scholar.google", "pubmed.ncbi",
	"ncbi.nlm.nih.gov", "sciencedirect.com", "springer.com", "wiley.com",
	"nature.com", "science.org", "plos.org", "frontiersin.org", "mdpi.com",
	"ieee.org", "acm.org", "aps.org", "iop.org", "rsc.org", "acs.org",
	"joss.theoj.org", "zenodo.org",
}

// AcademicCommitter is one committer matched against the academic domains,
// kept in the breakdown for display.
type AcademicCommitter struct {
	Name    string `json:"name"`
	Domain  string `json:"domain"`
	Commits int    `json:"commits"`
}

// Indicator is one scored signal with its human-readable explanation.
type Indicator struct {
	Present     bool                `json:"present"`
	Description string              `json:"description"`
	Details     string              `json:"details,omitempty"`
	Committers  []AcademicCommitter `json:"committers,omitempty"`
}

// ScienceBreakdown maps indicator keys to their evaluation.
type ScienceBreakdown map[string]Indicator

// ScienceResult is the scored outcome with the full breakdown behind it.
type ScienceResult struct {
	Score     float64          `json:"score"`
	MaxScore  float64          `json:"max_score"`
	Breakdown ScienceBreakdown `json:"breakdown"`
}

// jossBonusWeights top a peer-reviewed project's base score up for each
// additional indicator.
var jossBonusWeights = map[string]float64{
	"has_citation_file":       0.05,
	"has_codemeta":            0.03,
	"has_zenodo":              0.03,
	"has_doi_in_readme":       0.02,
	"has_academic_committers": 0.02,
	"has_institutional_owner": 0.03,
}

// scoringWeights weight the indicators for projects without a peer-reviewed
// paper. They sum to 1.
var scoringWeights = map[string]float64{
	"has_citation_file":       0.22,
	"has_codemeta":            0.13,
	"has_zenodo":              0.13,
	"has_doi_in_readme":       0.17,
	"has_academic_links":      0.13,
	"has_academic_committers": 0.13,
	"has_institutional_owner": 0.09,
}

const jossBaseScore = 85.0

// CalculateScienceScore evaluates how strongly a project presents itself as
// research software. A published JOSS paper is treated as peer review and
// dominates the score; everything else is weighted circumstantial evidence.
func CalculateScienceScore(p *models.Project) ScienceResult {
	breakdown := ScienceBreakdown{
		"has_citation_file":       checkCitationFile(p),
		"has_codemeta":            checkMetadataFile(p, "codemeta", "codemeta.json file"),
		"has_zenodo":              checkMetadataFile(p, "zenodo", ".zenodo.json file"),
		"has_doi_in_readme":       checkDOIInReadme(p),
		"has_academic_links":      checkAcademicLinks(p),
		"has_academic_committers": checkAcademicCommitters(p),
		"has_institutional_owner": checkInstitutionalOwner(p),
		"has_joss_paper":          checkJossPaper(p),
	}

	var score float64
	if _, joss := p.JossDoc(); joss {
		bonus := 0.0
		for key, weight := range jossBonusWeights {
			if breakdown[key].Present {
				bonus += weight
			}
		}
		score = jossBaseScore + bonus*100
	} else {
		var totalWeight, weightedScore float64
		for key, weight := range scoringWeights {
			totalWeight += weight
			if breakdown[key].Present {
				weightedScore += weight
			}
		}
		score = weightedScore / totalWeight * 100
	}
	if score > 100 {
		score = 100
	}

	return ScienceResult{
		Score:     roundTo(score, 2),
		MaxScore:  100,
		Breakdown: breakdown,
	}
}

func roundTo(v float64, places int) float64 {
	shift := 1.0
	for i := 0; i < places; i++ {
		shift *= 10
	}
	return float64(int64(v*shift+0.5)) / shift
}

func checkCitationFile(p *models.Project) Indicator {
	ind := Indicator{Description: "CITATION.cff file"}
	if p.CitationFile != "" {
		ind.Present = true
		ind.Details = "Found CITATION.cff file"
	}
	return ind
}

// checkMetadataFile reports whether the repository carries a detected special
// file whose role contains the marker.
func checkMetadataFile(p *models.Project, marker, description string) Indicator {
	ind := Indicator{Description: description}
	repo, ok := p.RepositoryDoc()
	if !ok || repo.Metadata == nil {
		return ind
	}
	for role := range repo.Metadata.Files {
		if strings.Contains(strings.ToLower(role), marker) {
			ind.Present = true
			ind.Details = "Found " + description
			return ind
		}
	}
	return ind
}

func checkDOIInReadme(p *models.Project) Indicator {
	ind := Indicator{Description: "DOI references"}
	count := 0
	var sources []string

	if p.Readme != "" {
		readme := strings.ToLower(p.Readme)
		for _, pattern := range doiPatterns {
			if matches := pattern.FindAllString(readme, -1); len(matches) > 0 {
				count += len(matches)
			}
		}
		if count > 0 {
			sources = append(sources, "README")
		}
	}
	if doc, ok := p.JossDoc(); ok && doc.DOI != "" {
		count++
		sources = append(sources, "JOSS metadata")
	}

	if count > 0 {
		ind.Present = true
		ind.Details = fmt.Sprintf("Found %d DOI reference(s) in %s", count, strings.Join(sources, " and "))
	}
	return ind
}

func checkAcademicLinks(p *models.Project) Indicator {
	ind := Indicator{Description: "Academic publication links"}
	if p.Readme == "" {
		return ind
	}
	readme := strings.ToLower(p.Readme)
	var sites []string
	for _, domain := range academicLinkDomains {
		if strings.Contains(readme, domain) {
			sites = append(sites, domain)
		}
	}
	if len(sites) > 0 {
		ind.Present = true
		ind.Details = "Links to: " + strings.Join(sites, ", ")
	}
	return ind
}

func checkAcademicCommitters(p *models.Project) Indicator {
	ind := Indicator{Description: "Committers with academic emails"}
	committers := p.RawCommitters()
	if len(committers) == 0 {
		return ind
	}

	var academic []AcademicCommitter
	for _, cm := range committers {
		at := strings.LastIndex(cm.Email, "@")
		if at < 0 {
			continue
		}
		domain := strings.ToLower(cm.Email[at+1:])
		if domain == "" {
			continue
		}
		for _, acad := range academicDomains {
			if strings.Contains(domain, acad) {
				academic = append(academic, AcademicCommitter{
					Name:    cm.Name,
					Domain:  domain,
					Commits: cm.Count,
				})
				break
			}
		}
	}
	if len(academic) == 0 {
		return ind
	}

	pct := float64(len(academic)) / float64(len(committers)) * 100
	ind.Present = true
	ind.Details = fmt.Sprintf("%d of %d committers (%.1f%%) from academic institutions",
		len(academic), len(committers), pct)
	if len(academic) > 5 {
		academic = academic[:5]
	}
	ind.Committers = academic
	return ind
}

func checkInstitutionalOwner(p *models.Project) Indicator {
	ind := Indicator{Description: "Institutional organization owner"}
	owner, ok := p.Owner()
	if !ok || owner.Kind != "organization" || owner.Website == "" {
		return ind
	}

	website := strings.ToLower(owner.Website)
	if !strings.HasPrefix(website, "http") {
		website = "https://" + website
	}
	domain := ""
	if parsed, err := url.Parse(website); err == nil {
		domain = parsed.Host
	}
	if domain == "" {
		return ind
	}

	for _, acad := range academicDomains {
		if strings.Contains(domain, acad) {
			ind.Present = true
			ind.Details = fmt.Sprintf("Organization %s has institutional domain (%s)", owner.Login, domain)
			return ind
		}
	}
	return ind
}

func checkJossPaper(p *models.Project) Indicator {
	ind := Indicator{Description: "JOSS paper metadata"}
	if _, ok := p.JossDoc(); ok {
		ind.Present = true
		ind.Details = "Published in Journal of Open Source Software"
	}
	return ind
}
