package extraction

import (
	"regexp"
	"strings"

	"github.com/jonathan/candidate-tracker/internal/dom"
	"github.com/jonathan/candidate-tracker/internal/textnorm"
	"github.com/jonathan/candidate-tracker/internal/types"
)

var (
	degreeSpanPattern = regexp.MustCompile(`(?i)bachelor|master|\bb\.?e\b|b\.?tech|m\.?tech|\bm\.?e\b|engineering|diploma|\bmba\b|\bmca\b|\bbca\b|b\.?sc|m\.?sc`)
	degreeLinePattern = regexp.MustCompile(`(?i)bachelor|master|b\.?tech|\bb\.?e\b|m\.?tech|\bm\.?e\b|b\.?sc|m\.?sc|\bmba\b|\bmca\b|\bbca\b|ph\.?d|diploma|b\.?com|m\.?com|\bb\.?a\b|\bm\.?a\b|engineering|intermediate`)

	yearRange = regexp.MustCompile(`\b(?:19|20)\d{2}\s*[-–]\s*(?:\w+\s+)?(?:19|20)\d{2}\b`)
	yearToken = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)

	qualificationAfterHyphen = regexp.MustCompile(`(?i)[-–]\s*(B\.?E\.?|B\.?Tech|M\.?Tech|M\.?E\.?|MBA|MCA|BCA|B\.?Sc|M\.?Sc|B\.?Com|M\.?Com|BA|MA|Ph\.?D|BBA|Diploma)\b`)

	// Two-letter codes are matched in capitals only; "be", "me" and "ma" are
	// ordinary words.
	qualificationStandalone = regexp.MustCompile(`\b((?i:B\.E\.?|B\.?Tech|B\.?Sc|M\.E\.?|M\.?Tech|M\.?Sc|MBA|MCA|BCA|Ph\.?D|B\.?Com|M\.?Com|B\.?Arch|LLB|LLM|MBBS|BBA|Intermediate|Diploma)|BE|ME|BA|MA|MD)\b`)
)

type keywordCode struct {
	keyword *regexp.Regexp
	code    string
}

var (
	bachelorCodes = []keywordCode{
		{regexp.MustCompile(`(?i)engineering`), "BE"},
		{regexp.MustCompile(`(?i)technology`), "BTECH"},
		{regexp.MustCompile(`(?i)science`), "BSC"},
		{regexp.MustCompile(`(?i)commerce`), "BCOM"},
		{regexp.MustCompile(`(?i)arts`), "BA"},
	}
	masterCodes = []keywordCode{
		{regexp.MustCompile(`(?i)engineering`), "ME"},
		{regexp.MustCompile(`(?i)technology`), "MTECH"},
		{regexp.MustCompile(`(?i)science`), "MSC"},
		{regexp.MustCompile(`(?i)business`), "MBA"},
	}
)

// LatestEducation reads the first entry of the education section.
func LatestEducation(root dom.Node) types.Education {
	section := educationSection(root)
	if section == nil {
		return types.Education{}
	}
	entity := section.First(`[data-view-name="profile-component-entity"], li.artdeco-list__item, .pvs-entity`)
	if entity == nil {
		return types.Education{}
	}

	lines := textnorm.Lines(entity.InnerText())
	school := renderedText(entity.First(`a span[aria-hidden="true"], .t-bold span[aria-hidden="true"], a.optional-action-target-wrapper span`))
	if school == "" && len(lines) > 0 {
		school = lines[0]
	}

	degree := ""
	for _, span := range entity.Find(`span.t-14.t-normal span[aria-hidden="true"]`) {
		if t := renderedText(span); degreeSpanPattern.MatchString(t) {
			degree = t
			break
		}
	}
	if degree == "" {
		degree = degreeFromLines(lines, school)
	}

	var dates []string
	for _, span := range entity.Find(`span.t-14.t-normal.t-black--light span[aria-hidden="true"], span.pvs-entity__caption-wrapper`) {
		dates = append(dates, renderedText(span))
	}
	passout := PassoutYear(dates...)
	if passout == "" {
		passout = PassoutYear(lines...)
	}

	return types.Education{
		School:            school,
		Degree:            degree,
		QualificationCode: QualificationCode(degree),
		PassoutYear:       passout,
	}
}

func educationSection(root dom.Node) dom.Node {
	if root == nil {
		return nil
	}
	if anchor := root.First("#education"); anchor != nil {
		if section := anchor.Closest("section"); section != nil {
			return section
		}
	}
	return sectionWithHeader(root, "education")
}

func degreeFromLines(lines []string, school string) string {
	for _, l := range lines {
		if degreeLinePattern.MatchString(l) && !textnorm.EqualFold(l, school) {
			return l
		}
	}
	for i, l := range lines {
		if i == 0 || textnorm.EqualFold(l, school) || yearToken.MatchString(l) {
			continue
		}
		return l
	}
	return ""
}

// PassoutYear returns the graduation year from the first text carrying a
// year. Ranges yield their later year. Longer digit runs such as postal codes
// are never read as years.
func PassoutYear(texts ...string) string {
	for _, t := range texts {
		var years []string
		if r := yearRange.FindString(t); r != "" {
			years = yearToken.FindAllString(r, -1)
		} else {
			years = yearToken.FindAllString(t, -1)
		}
		if len(years) == 0 {
			continue
		}
		latest := years[0]
		for _, y := range years[1:] {
			if y > latest {
				latest = y
			}
		}
		return latest
	}
	return ""
}

// QualificationCode derives a short code such as "BE" or "MBA" from degree text.
func QualificationCode(degree string) string {
	if degree == "" {
		return ""
	}
	if m := qualificationAfterHyphen.FindStringSubmatch(degree); m != nil {
		return abbreviation(m[1])
	}
	if m := qualificationStandalone.FindStringSubmatch(degree); m != nil {
		return abbreviation(m[1])
	}
	lower := strings.ToLower(degree)
	var codes []keywordCode
	switch {
	case strings.Contains(lower, "bachelor"):
		codes = bachelorCodes
	case strings.Contains(lower, "master"):
		codes = masterCodes
	}
	for _, c := range codes {
		if c.keyword.MatchString(degree) {
			return c.code
		}
	}
	return ""
}

func abbreviation(s string) string {
	return strings.ToUpper(strings.ReplaceAll(s, ".", ""))
}
