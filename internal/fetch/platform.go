package fetch

import (
	"net/url"
	"strings"
)

// Surface is the LinkedIn product a profile URL belongs to.
type Surface string

const (
	// SurfacePublic is the member-facing /in/ profile.
	SurfacePublic Surface = "public"
	// SurfaceRecruiter is the LinkedIn Recruiter /talent/ profile.
	SurfaceRecruiter Surface = "recruiter"
	// SurfaceSalesNavigator is the /sales/ lead page.
	SurfaceSalesNavigator Surface = "sales"
	// SurfaceUnknown is any other page.
	SurfaceUnknown Surface = "unknown"
)

// DetectSurface identifies the LinkedIn surface from a URL.
func DetectSurface(urlStr string) Surface {
	parsed, err := url.Parse(urlStr)
	if err != nil || !strings.HasSuffix(strings.ToLower(parsed.Hostname()), "linkedin.com") {
		return SurfaceUnknown
	}

	p := strings.ToLower(parsed.Path)
	switch {
	case strings.HasPrefix(p, "/in/"):
		return SurfacePublic
	case strings.HasPrefix(p, "/talent/"):
		return SurfaceRecruiter
	case strings.HasPrefix(p, "/sales/"):
		return SurfaceSalesNavigator
	}
	return SurfaceUnknown
}

// RequiresBrowser reports whether pages on the surface only render client side.
func RequiresBrowser(s Surface) bool {
	return s == SurfaceRecruiter || s == SurfaceSalesNavigator
}

// SurfaceContentSelectors returns the selectors holding profile content.
func SurfaceContentSelectors(s Surface) []string {
	switch s {
	case SurfaceRecruiter:
		return []string{
			".profile__main-container",
			"[data-test-profile-container]",
			"main",
		}
	case SurfaceSalesNavigator:
		return []string{
			"#profile-card-section",
			"main",
		}
	default:
		return []string{
			".pv-top-card",
			".top-card-layout",
			"main",
			"#main-content",
		}
	}
}

// SurfaceNoiseSelectors returns chrome to strip before measuring content.
func SurfaceNoiseSelectors(s Surface) []string {
	common := []string{
		".artdeco-toasts",
		".msg-overlay-container",
		"#global-nav",
		".global-footer",
		"aside",
	}
	switch s {
	case SurfacePublic:
		return append(common,
			".authwall-join-form",
			".contextual-sign-in-modal",
			".join-form",
		)
	case SurfaceRecruiter:
		return append(common,
			".project-pipeline",
			".recruiter-nav",
		)
	default:
		return common
	}
}
