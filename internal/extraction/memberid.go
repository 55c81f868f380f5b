package extraction

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/jonathan/candidate-tracker/internal/dom"
)

var (
	memberIDPaths = []*regexp.Regexp{
		regexp.MustCompile(`(?i)linkedin\.com/talent/profile/([^/?#]+)`),
		regexp.MustCompile(`(?i)linkedin\.com/recruiter/profile/([^/?#]+)`),
		regexp.MustCompile(`(?i)linkedin\.com/in/([^/?#]+)`),
	}
	memberURN      = regexp.MustCompile(`urn:li:member:(\d+)`)
	publicProfile  = regexp.MustCompile(`(https?://[^/]+/in/[^/?#]+)`)
	profilePageURL = regexp.MustCompile(`(?i)linkedin\.com/(talent|recruiter|in)/`)
)

// ResolveMemberID derives a stable candidate identifier from the page URL or
// from identifiers embedded in the document. It returns false when no
// strategy yields an identifier.
func ResolveMemberID(page *Page) (string, bool) {
	if page == nil {
		return "", false
	}
	for _, resolve := range []func(*Page) string{
		fromProfileIDParam,
		fromProfilePath,
		fromMemberAttr,
		fromProfileMeta,
		fromMemberURN,
	} {
		if id := strings.TrimSpace(resolve(page)); id != "" {
			return id, true
		}
	}
	return "", false
}

func fromProfileIDParam(page *Page) string {
	u, err := url.Parse(page.URL)
	if err != nil {
		return ""
	}
	return u.Query().Get("profileId")
}

func fromProfilePath(page *Page) string {
	for _, p := range memberIDPaths {
		if m := p.FindStringSubmatch(page.URL); m != nil {
			if id, err := url.PathUnescape(m[1]); err == nil {
				return id
			}
			return m[1]
		}
	}
	return ""
}

func fromMemberAttr(page *Page) string {
	if page.Root == nil {
		return ""
	}
	return dom.AttrOf(page.Root.First("[data-member-id]"), "data-member-id")
}

func fromProfileMeta(page *Page) string {
	if page.Root == nil {
		return ""
	}
	return dom.MetaContent(page.Root, "profile:id")
}

func fromMemberURN(page *Page) string {
	if page.Root == nil {
		return ""
	}
	if m := memberURN.FindStringSubmatch(page.Root.HTML()); m != nil {
		return m[1]
	}
	return ""
}

// CanonicalProfileURL strips the query string and fragment. Public profile
// URLs are reduced to their root, dropping detail sub-pages.
func CanonicalProfileURL(raw string) string {
	canonical := raw
	if i := strings.IndexAny(canonical, "?#"); i >= 0 {
		canonical = canonical[:i]
	}
	if m := publicProfile.FindStringSubmatch(canonical); m != nil {
		return m[1] + "/"
	}
	return canonical
}

// IsProfileURL reports whether raw points at a recruiter, talent or public
// profile page.
func IsProfileURL(raw string) bool {
	return profilePageURL.MatchString(raw)
}
