package helpers

import "net/url"

// IsValidHttpUrl reports whether rawUrl is an absolute http or https URL.
func IsValidHttpUrl(rawUrl string) bool {
	parsedUrl, err := url.ParseRequestURI(rawUrl)
	if err != nil || parsedUrl == nil {
		return false
	}
	if parsedUrl.Scheme != "http" && parsedUrl.Scheme != "https" {
		return false
	}
	return parsedUrl.Host != ""
}
