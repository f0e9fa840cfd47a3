package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var multiSpaceRegex = regexp.MustCompile(`\s+`)

// PropertyID derives a stable, content-addressed identifier for a
// listing. The same listing seen in two runs of the same query gets the
// same id, so callers can layer caching or "new since last search" on
// top. Identity is source + canonical URL when the URL is usable, and
// source + normalized title + total price otherwise.
func PropertyID(source, rawURL, title string, totalPrice int) string {
	var input string
	if canonical := CanonicalURL(rawURL); canonical != "" {
		input = source + "|" + canonical
	} else {
		input = fmt.Sprintf("%s|%s|%d", source, NormalizeTitle(title), totalPrice)
	}
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:12])
}

// CanonicalURL strips query noise and fragments from an absolute
// listing URL. Relative or malformed URLs canonicalize to "".
func CanonicalURL(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return ""
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

func NormalizeTitle(title string) string {
	title = strings.ToLower(strings.TrimSpace(title))
	return multiSpaceRegex.ReplaceAllString(title, " ")
}
