// Package botfilter classifies user-agents of automated fetchers such as
// link-preview crawlers, chat unfurlers, mail security scanners, headless
// browsers and generic HTTP clients.
package botfilter

import (
	"strings"

	"github.com/samber/lo"
)

// Signatures is the maintained list of user-agent substrings that identify
// automated traffic. Entries are lower case.
var Signatures = []string{
	// link previews and social unfurlers
	"facebookexternalhit",
	"facebot",
	"twitterbot",
	"linkedinbot",
	"slackbot",
	"slack-imgproxy",
	"discordbot",
	"telegrambot",
	"whatsapp",
	"skypeuripreview",
	"pinterestbot",
	"redditbot",
	"embedly",
	"iframely",
	"vkshare",
	"mastodon",
	"bitlybot",
	// search engine crawlers
	"googlebot",
	"google-inspectiontool",
	"adsbot-google",
	"bingbot",
	"bingpreview",
	"applebot",
	"yandexbot",
	"baiduspider",
	"duckduckbot",
	"ahrefsbot",
	"semrushbot",
	"crawler",
	"spider",
	// mail security scanners
	"barracuda",
	"proofpoint",
	"mimecast",
	"ms-office-urlscan",
	// headless browsers and automation
	"headlesschrome",
	"phantomjs",
	"puppeteer",
	"playwright",
	"selenium",
	"electron",
	// generic HTTP clients
	"curl/",
	"wget/",
	"python-requests",
	"python-urllib",
	"aiohttp",
	"go-http-client",
	"okhttp",
	"axios/",
	"node-fetch",
	"undici",
	"java/",
	"apache-httpclient",
	"libwww-perl",
	"postmanruntime",
	"insomnia",
}

// Filter matches user-agents against a fixed signature set.
type Filter struct {
	signatures []string
}

// New returns a filter with the built-in signatures plus any extra ones.
// Extra signatures are matched case-insensitively; blanks are ignored.
func New(extra ...string) *Filter {
	normalized := lo.FilterMap(extra, func(s string, _ int) (string, bool) {
		s = strings.ToLower(strings.TrimSpace(s))

		return s, s != ""
	})

	return &Filter{signatures: lo.Uniq(append(append([]string{}, Signatures...), normalized...))}
}

// Classify reports whether userAgent contains any known signature,
// ignoring case. An empty user-agent is never classified as automated.
func (f *Filter) Classify(userAgent string) bool {
	if userAgent == "" {
		return false
	}

	ua := strings.ToLower(userAgent)

	for _, sig := range f.signatures {
		if strings.Contains(ua, sig) {
			return true
		}
	}

	return false
}

var defaultFilter = New()

// Classify checks userAgent against the built-in signatures.
func Classify(userAgent string) bool {
	return defaultFilter.Classify(userAgent)
}
