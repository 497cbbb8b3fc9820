package crawl

import (
	"testing"
)

func TestShouldExclude_JobBoard(t *testing.T) {
	url := "https://www.jobkorea.co.kr/Recruit/GI_Read/12345"

	if !ShouldExclude(url) {
		t.Errorf("Expected job board URL to be excluded: %s", url)
	}
}

func TestShouldExclude_CaseInsensitive(t *testing.T) {
	url := "https://example.com/JobKorea/listing"

	if !ShouldExclude(url) {
		t.Error("Expected exclusion to match regardless of case")
	}
}

func TestShouldExclude_RegularNewsSite(t *testing.T) {
	url := "https://www.kado.net/news/articleView.html?idxno=1234567"

	if ShouldExclude(url) {
		t.Errorf("Expected news URL not to be excluded: %s", url)
	}
}

func TestShouldExclude_RealEstateListing(t *testing.T) {
	urls := []string{
		"https://land.naver.com/article/12345",
		"https://www.zigbang.com/home/apt/12345",
	}

	for _, url := range urls {
		if !ShouldExclude(url) {
			t.Errorf("Expected listing URL to be excluded: %s", url)
		}
	}
}

func TestIsArticleURL_PathPattern(t *testing.T) {
	urls := []string{
		"https://news.example.com/article/88471",
		"https://www.example.co.kr/news/view/202408300001",
		"https://paper.example.com/articleView.html?idxno=981234",
	}

	for _, url := range urls {
		if !IsArticleURL(url) {
			t.Errorf("Expected URL to look like an article: %s", url)
		}
	}
}

func TestIsArticleURL_RootURL(t *testing.T) {
	urls := []string{
		"https://www.example.com/",
		"https://www.example.com",
		"https://www.example.com/index.html",
		"https://www.example.com/main",
	}

	for _, url := range urls {
		if IsArticleURL(url) {
			t.Errorf("Expected root URL to be rejected: %s", url)
		}
	}
}

func TestIsArticleURL_NumericID(t *testing.T) {
	if !IsArticleURL("https://www.example.com/2024083012345") {
		t.Error("Expected long numeric path segment to qualify as article")
	}

	if !IsArticleURL("https://www.example.com/news/88471.html") {
		t.Error("Expected numeric .html path to qualify as article")
	}
}

func TestIsArticleURL_DeepPath(t *testing.T) {
	url := "https://www.example.com/local/gangneung/tourism-festival-opens"

	if !IsArticleURL(url) {
		t.Errorf("Expected deep multi-segment path to qualify: %s", url)
	}
}

func TestIsArticleURL_ShortPath(t *testing.T) {
	url := "https://www.example.com/about"

	if IsArticleURL(url) {
		t.Errorf("Expected short single-segment path to be rejected: %s", url)
	}
}

func TestIsArticleURL_Unparseable(t *testing.T) {
	if IsArticleURL("://not-a-url") {
		t.Error("Expected unparseable URL to be rejected")
	}

	if IsArticleURL("") {
		t.Error("Expected empty URL to be rejected")
	}
}
