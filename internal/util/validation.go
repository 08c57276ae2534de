package util

import (
	"regexp"
	"strings"
)

var (
	usernamePattern = regexp.MustCompile(`^\w{3,30}$`)
	websitePattern  = regexp.MustCompile(`(?i)^https?://`)
)

// IsValidUsername checks the 3-30 word character rule
func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// IsValidWebsite checks that a profile website is an http(s) URL
func IsValidWebsite(website string) bool {
	return websitePattern.MatchString(website)
}

// LooksLikeEmail reports whether a login identifier is an email address
func LooksLikeEmail(identifier string) bool {
	return strings.Contains(identifier, "@")
}

// AllowedImageTypes maps accepted upload content types to file extensions
var AllowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

// IsAllowedImageType checks an upload's content type
func IsAllowedImageType(contentType string) bool {
	_, ok := AllowedImageTypes[strings.ToLower(contentType)]
	return ok
}
