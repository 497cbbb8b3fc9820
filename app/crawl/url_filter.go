package crawl

import (
	"net/url"
	"regexp"
	"strings"
)

// excludePatterns is the denylist of substrings that mark a URL as noise:
// job boards, real-estate portals, search/listing pages, video channels.
// Matching is case-insensitive.
var excludePatterns = []string{
	// Job boards
	"jobkorea.co.kr",
	"saramin.co.kr",
	"incruit.com",
	"albamon.com",
	"alba.co.kr",
	"work.go.kr",

	// Real-estate portals
	"land.naver.com",
	"realestate.daum.net",
	"zigbang.com",
	"dabangapp.com",
	"peterpanz.com",
	"kbland.kr",

	// Search result pages
	"/search?",
	"/search/",
	"?query=",
	"?q=",
	"?stext=",

	// Video channels and playlists (individual videos are allowed)
	"youtube.com/channel",
	"youtube.com/@",
	"youtube.com/playlist",
	"youtube.com/results",

	// Board listing pages
	"/board/list",
	"/bbs/list",
}

// articlePatterns mark a URL as pointing at a single article: id-like query
// parameters and common article path segments used by Korean news sites.
var articlePatterns = []string{
	// Article id parameters
	"idxno=",
	"aid=",
	"articleid=",
	"article_id=",
	"newsid=",
	"news_id=",
	"idx=",
	"no=",
	"seq=",
	"bbs_id=",

	// Article path segments
	"/articleview",
	"/article/",
	"/articles/",
	"/news/view",
	"/newsview",
	"/view/",
	"/read/",
	"/detail/",
	"/content/",
	"/post/",
	"/story/",

	// Publisher-specific layouts
	"/news/article",
	"/newshome/mtnews",
	"/jsp/article",
}

var (
	numericSegmentRe = regexp.MustCompile(`/\d{4,}`)
	numericHTMLRe    = regexp.MustCompile(`/\d+\.html`)
)

// ShouldExclude reports whether the URL matches the denylist.
func ShouldExclude(rawURL string) bool {
	urlLower := strings.ToLower(rawURL)
	for _, pattern := range excludePatterns {
		if strings.Contains(urlLower, pattern) {
			return true
		}
	}
	return false
}

// IsArticleURL reports whether the URL likely points at a single article
// rather than a home, search, or listing page. The heuristic is deliberately
// conservative: missing an article is cheaper than ingesting a listing page.
// Malformed URLs are treated as non-articles.
func IsArticleURL(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return false
	}

	path := parsed.Path
	if path == "/" || path == "" || path == "/index.html" || path == "/main" {
		return false
	}

	fullURL := strings.ToLower(rawURL)
	for _, pattern := range articlePatterns {
		if strings.Contains(fullURL, pattern) {
			return true
		}
	}

	// A long numeric path segment is almost always an article id,
	// e.g. /news/12345 or /2024/01/article-title.
	if numericSegmentRe.MatchString(path) || numericHTMLRe.MatchString(path) {
		return true
	}

	// Deep-enough paths with some length tend to be articles.
	segments := 0
	for _, part := range strings.Split(path, "/") {
		if part != "" {
			segments++
		}
	}
	if segments >= 2 && len(path) > 20 {
		return true
	}

	return false
}
