package sources

import "time"

// Defaults is the built-in catalogue. Regional Uttarakhand feeds carry the
// lowest priority numbers so they survive the per-cycle cap first.
func Defaults() []Source {
	return []Source{
		{
			Key: "amarujala-uttarakhand", Name: "Amar Ujala Uttarakhand", Kind: KindRSS, Priority: 1,
			URL: "https://www.amarujala.com/rss/uttarakhand.xml", ItemCap: 20, MaxAge: 48 * time.Hour,
		},
		{
			Key: "livehindustan-uttarakhand", Name: "Live Hindustan Uttarakhand", Kind: KindRSS, Priority: 1,
			URL: "https://api.livehindustan.com/feeds/rss/uttarakhand/rssfeed.xml", ItemCap: 20, MaxAge: 48 * time.Hour,
		},
		{
			Key: "jagran-uttarakhand", Name: "Dainik Jagran Uttarakhand", Kind: KindRSS, Priority: 2,
			URL: "https://www.jagran.com/rss/uttarakhand.xml", ItemCap: 15, MaxAge: 48 * time.Hour,
		},
		{
			Key: "newsdata-uttarakhand", Name: "NewsData Uttarakhand", Kind: KindNewsData, Priority: 3,
			URL: "https://newsdata.io/api/1/news", ItemCap: 10, Language: "hi", Country: "in", Query: "uttarakhand",
		},
		{
			Key: "gnews-india", Name: "GNews India", Kind: KindGNews, Priority: 4,
			URL: "https://gnews.io/api/v4/top-headlines", ItemCap: 10, Language: "hi", Country: "in",
		},
		{
			Key: "ndtv-india", Name: "NDTV India", Kind: KindRSS, Priority: 5,
			URL: "https://feeds.feedburner.com/ndtvkhabar-latest", ItemCap: 10, MaxAge: 24 * time.Hour,
		},
		{
			Key: "bbc-hindi", Name: "BBC Hindi", Kind: KindRSS, Priority: 6,
			URL: "https://feeds.bbci.co.uk/hindi/rss.xml", ItemCap: 10, MaxAge: 24 * time.Hour,
		},
	}
}
