package extraction

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/jonathan/candidate-tracker/internal/dom"
	"github.com/jonathan/candidate-tracker/internal/textnorm"
	"github.com/jonathan/candidate-tracker/internal/types"
)

// MaxSkills caps the number of skills recorded per candidate.
const MaxSkills = 5

var nameSelectors = []string{
	// Top card
	"h1.text-heading-xlarge",
	"div.pv-text-details__left-panel h1",
	"h1.profile-topcard__name",
	"h1.t-24",
	".artdeco-entity-lockup__title",
	"[data-test-profile-name]",
	"[data-test-row-lockup-full-name]",
	".ph5 h1",
	// Details pages
	".pv-top-card h1",
	".scaffold-layout__detail h1",
	".artdeco-card h1",
	".scaffold-layout__detail .artdeco-entity-lockup__title span",
	".pv-profile-card__anchor span.t-bold",
	".scaffold-layout__detail header h1",
	`[class*="profile-card"] h3`,
	// Recruiter
	".profile-topcard__title",
	"span.pv-entity__subtitle",
	"span.text-heading-medium",
	".profile-title",
	".profile-name",
}

var headlineSelectors = []string{
	".text-body-medium.break-words",
	".pv-text-details__left-panel .text-body-medium",
	"[data-test-profile-headline]",
	".artdeco-entity-lockup__subtitle",
	".pv-top-card .text-body-medium",
	".pv-text-details__headline",
	"span.text-body-medium",
	".headline",
	`[class*="headline"]`,
	`.pvs-entity__headline span[aria-hidden="true"]`,
	".profile-card-headline",
}

var locationSelectors = []string{
	"span.text-body-small.inline.t-black--light.break-words",
	".pv-text-details__left-panel .text-body-small:not(.break-words)",
	"[data-test-profile-location]",
	".pv-top-card .text-body-small",
	".profile-topcard__location",
	".artdeco-entity-lockup__caption",
	".profile-location",
	`[class*="location"]`,
	".pv-text-details__left-panel span.text-body-small",
}

var topCardCompanySelectors = []string{
	".profile-topcard__company-link",
	"[data-test-profile-company]",
	".pv-top-card--experience-list-item .t-14",
	`a[href*="company"] span[aria-hidden="true"]`,
}

var industrySelectors = []string{
	"[data-test-profile-industry]",
	".pv-about-section .text-body-small",
	".profile-industry",
	`span[aria-label*="industry"]`,
	`[class*="industry"]`,
}

var (
	nameExclusion        = regexp.MustCompile(`(?i)(linkedin|experience|education|skills|company|pending|message|follow|endorsement)`)
	profileLinkExclusion = regexp.MustCompile(`(?i)(linkedin|experience|education)`)
	titlePrefix          = regexp.MustCompile(`^([^|–\-()]+)`)
	siteTitle            = regexp.MustCompile(`(?i)^(\(\d+\)\s*)?linkedin$`)
	descriptionName      = regexp.MustCompile(`(?i)^([^|–\-]+?)\s+(?:is|at|works|current)\b`)
	sentenceEnd          = regexp.MustCompile(`[.!?]`)
	profileChatter       = regexp.MustCompile(`(?i)(view|profile)`)
	locationNoise        = regexp.MustCompile(`(?i)(·|•|\bfollowers?\b|\bconnections?\b|\bfollowing\b|\bsave\b|\bmessage\b|\bmore\b)`)
	topCardCompanyNoise  = regexp.MustCompile(`(?i)\b(full[- ]?time|part[- ]?time|contract|intern)\b`)
	skillNoise           = regexp.MustCompile(`(?i)(endorse|pending|remove|skill)`)
	industryNoise        = regexp.MustCompile(`(?i)(industry|profile|about)`)
	industryInHeadline   = regexp.MustCompile(`(?i)\b(?:in|at|with)\s+([A-Za-z\s&]+)`)
	industrySuffix       = regexp.MustCompile(`(?i)\s+(industry|field)$`)
	connectionCount      = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?[KM]|\d+(?:,\d+)*\+?)\s*(?:connections?|followers?)\b`)
	countToken           = regexp.MustCompile(`(?i)\d+(?:[.,]\d+)?[KM]|\d+(?:,\d+)*\+?`)
)

// Name resolves the candidate's full name, or types.UnknownCandidate.
func Name(root dom.Node) string {
	name := cascade(func(s string) bool {
		return longerThan(s, 1) && !nameExclusion.MatchString(s)
	}, selectorStrategies(root, nameSelectors...)...)
	if name != "" {
		return name
	}

	name = firstValid(root, `a[href*="/in/"] span.t-bold, .scaffold-layout__detail a span.t-bold`, func(s string) bool {
		return longerThan(s, 1) && !profileLinkExclusion.MatchString(s)
	})
	if name != "" {
		return name
	}

	if person := linkedData(root); person != nil {
		if v, ok := person["name"].(string); ok && longerThan(textnorm.Normalize(v), 1) {
			return textnorm.Normalize(v)
		}
	}

	titles := []struct {
		text       string
		strictSite bool
	}{
		{dom.MetaContent(root, "og:title"), false},
		{dom.MetaContent(root, "twitter:title"), false},
		{dom.TextOf(root.First("title")), true},
	}
	for _, t := range titles {
		m := titlePrefix.FindStringSubmatch(t.text)
		if m == nil {
			continue
		}
		candidate := textnorm.Normalize(m[1])
		if !longerThan(candidate, 1) || siteTitle.MatchString(candidate) {
			continue
		}
		if t.strictSite && strings.Contains(strings.ToLower(candidate), "linkedin") {
			continue
		}
		return candidate
	}

	if m := descriptionName.FindStringSubmatch(dom.MetaContent(root, "description")); m != nil {
		if v := textnorm.Normalize(m[1]); v != "" {
			return v
		}
	}
	return types.UnknownCandidate
}

// Headline resolves the profile headline.
func Headline(root dom.Node) string {
	headline := cascade(func(s string) bool {
		return longerThan(s, 3) && !textnorm.NavigationNoise.MatchString(s)
	}, selectorStrategies(root, headlineSelectors...)...)
	if headline != "" {
		return headline
	}

	valid := func(s string) bool { return longerThan(s, 3) }
	return cascade(valid,
		func() string {
			d := dom.MetaContent(root, "og:description")
			if profileChatter.MatchString(d) {
				return ""
			}
			return firstSentence(d)
		},
		func() string {
			d := dom.MetaContent(root, "twitter:description")
			if strings.Contains(strings.ToLower(d), "profile") {
				return ""
			}
			return firstSentence(d)
		},
		func() string {
			s := firstSentence(dom.MetaContent(root, "description"))
			if profileChatter.MatchString(s) {
				return ""
			}
			return s
		},
	)
}

// Location resolves the candidate's location.
func Location(root dom.Node) string {
	location := cascade(func(s string) bool {
		return longerThan(s, 2) && !locationNoise.MatchString(s)
	}, selectorStrategies(root, locationSelectors...)...)
	if location != "" {
		return location
	}
	if person := linkedData(root); person != nil && person["jobTitle"] != nil {
		switch area := person["areaServed"].(type) {
		case string:
			return textnorm.Normalize(area)
		case map[string]any:
			if name, ok := area["name"].(string); ok {
				return textnorm.Normalize(name)
			}
		}
	}
	return ""
}

// TopCardCompany resolves the current employer shown in the profile header.
func TopCardCompany(root dom.Node) string {
	return cascade(func(s string) bool {
		return longerThan(s, 2) && !topCardCompanyNoise.MatchString(s)
	}, selectorStrategies(root, topCardCompanySelectors...)...)
}

// Skills returns up to MaxSkills distinct skill labels in page order.
func Skills(root dom.Node) []string {
	skills := make([]string, 0, MaxSkills)
	seen := make(map[string]bool)
	add := func(n dom.Node) {
		if len(skills) >= MaxSkills {
			return
		}
		s := dom.TextOf(n)
		if !longerThan(s, 1) || skillNoise.MatchString(s) || seen[s] {
			return
		}
		seen[s] = true
		skills = append(skills, s)
	}

	section := skillsSection(root)
	scope := section
	if scope == nil {
		scope = root
	}
	for _, n := range scope.Find(`[data-test-profile-skill-item] span[aria-hidden="true"], .pv-skill-category-entity__name`) {
		add(n)
	}
	for _, n := range scope.Find(`[class*="skill-item"], .skill-badge, span.skill-text`) {
		add(n)
	}
	if section != nil {
		for _, n := range section.Find(`[data-view-name="profile-component-entity"] .t-bold span[aria-hidden="true"], .pvs-entity .t-bold span[aria-hidden="true"]`) {
			add(n)
		}
	}
	return skills
}

func skillsSection(root dom.Node) dom.Node {
	if anchor := root.First("#skills"); anchor != nil {
		if section := anchor.Closest("section"); section != nil {
			return section
		}
	}
	return sectionWithHeader(root, "skills")
}

// Industry resolves the candidate's industry. It is a low-confidence field.
func Industry(root dom.Node) string {
	industry := cascade(func(s string) bool {
		return longerThan(s, 2) && !industryNoise.MatchString(s)
	}, selectorStrategies(root, industrySelectors...)...)
	if industry != "" {
		return industry
	}
	headline := dom.TextOf(root.First("[data-test-profile-headline]"))
	if m := industryInHeadline.FindStringSubmatch(headline); m != nil {
		return textnorm.Normalize(industrySuffix.ReplaceAllString(strings.TrimSpace(m[1]), ""))
	}
	return ""
}

// Connections returns the raw connection or follower count, such as "500+".
func Connections(root dom.Node) string {
	if v := countToken.FindString(dom.TextOf(root.First("[data-test-profile-connection-count]"))); v != "" {
		return v
	}
	body := root.First("body")
	if body == nil {
		body = root
	}
	if m := connectionCount.FindStringSubmatch(body.InnerText()); m != nil {
		return m[1]
	}
	return ""
}

// sectionWithHeader returns the first <section> whose heading mentions word.
func sectionWithHeader(root dom.Node, word string) dom.Node {
	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(word))
	for _, section := range root.Find("section") {
		if header := section.First("h2, .pvs-header__title"); header != nil && pattern.MatchString(header.Text()) {
			return section
		}
	}
	return nil
}

func firstSentence(s string) string {
	if s == "" {
		return ""
	}
	return textnorm.Normalize(sentenceEnd.Split(s, 2)[0])
}

// linkedData returns the first JSON-LD object describing a person.
func linkedData(root dom.Node) map[string]any {
	for _, script := range root.Find(`script[type="application/ld+json"]`) {
		var doc any
		if err := json.Unmarshal([]byte(script.Text()), &doc); err != nil {
			continue
		}
		if person := findPerson(doc); person != nil {
			return person
		}
	}
	return nil
}

func findPerson(doc any) map[string]any {
	switch v := doc.(type) {
	case []any:
		for _, item := range v {
			if p := findPerson(item); p != nil {
				return p
			}
		}
	case map[string]any:
		if t, _ := v["@type"].(string); t == "Person" || v["jobTitle"] != nil {
			return v
		}
		if graph, ok := v["@graph"]; ok {
			return findPerson(graph)
		}
	}
	return nil
}
