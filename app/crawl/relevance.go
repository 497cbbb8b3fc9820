package crawl

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// regionKeywords is the static place-name list used for first-pass topical
// filtering, covering the east-coast districts and landmarks the service
// targets. The list is intentionally not configurable per call; candidates
// are additionally matched against the run's own region name.
var regionKeywords = []string{
	"강릉", "경포", "주문진", "정동진", "안목", "사천", "연곡",
	"속초", "동해", "양양", "삼척", "정선",
	"강원", "영동", "동해안",
}

// IsRelevant reports whether the title mentions the region or any known
// regional place name. Titles are NFC-normalized before matching so that
// decomposed Hangul from feed sources still matches.
func IsRelevant(title, regionName string) bool {
	titleNorm := strings.ToLower(norm.NFC.String(title))

	if regionName != "" && strings.Contains(titleNorm, strings.ToLower(norm.NFC.String(regionName))) {
		return true
	}

	for _, keyword := range regionKeywords {
		if strings.Contains(titleNorm, strings.ToLower(keyword)) {
			return true
		}
	}

	return false
}
