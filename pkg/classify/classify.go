// Package classify tags article text with a genre and a region using fixed,
// ordered keyword rules. The order of regionTiers and genreRules is the
// tie-break policy: the first matching entry wins.
package classify

import (
	"net/url"
	"regexp"
	"strings"

	"hindinews/pkg/domain"
)

// Result is the classification of one article.
type Result struct {
	Genre  domain.Genre
	Region domain.Region
}

// keywords matches Latin terms on word boundaries and native-script terms as
// substrings, since Devanagari has no ASCII word boundaries.
type keywords struct {
	latin  *regexp.Regexp
	native []string
}

func newKeywords(latin, native []string) keywords {
	k := keywords{native: native}
	if len(latin) > 0 {
		quoted := make([]string, len(latin))
		for i, w := range latin {
			quoted[i] = regexp.QuoteMeta(w)
		}
		k.latin = regexp.MustCompile(`\b(` + strings.Join(quoted, "|") + `)\b`)
	}
	return k
}

func (k keywords) match(lower string) bool {
	if k.latin != nil && k.latin.MatchString(lower) {
		return true
	}
	for _, w := range k.native {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

type regionTier struct {
	region domain.Region
	words  keywords
}

type genreRule struct {
	genre domain.Genre
	words keywords
}

var regionTiers = []regionTier{
	{domain.RegionUttarakhand, newKeywords(
		[]string{"uttarakhand", "uttrakhand", "dehradun", "haridwar", "rishikesh", "nainital", "almora",
			"pithoragarh", "chamoli", "rudraprayag", "tehri", "uttarkashi", "pauri", "bageshwar",
			"champawat", "udham singh nagar", "haldwani", "rudrapur", "kashipur", "roorkee",
			"mussoorie", "kedarnath", "badrinath", "gangotri", "yamunotri", "garhwal", "kumaon", "gairsain"},
		[]string{"उत्तराखंड", "उत्तराखण्ड", "देहरादून", "हरिद्वार", "ऋषिकेश", "नैनीताल", "अल्मोड़ा",
			"पिथौरागढ़", "चमोली", "रुद्रप्रयाग", "टिहरी", "उत्तरकाशी", "पौड़ी", "बागेश्वर",
			"चंपावत", "ऊधमसिंह नगर", "उधम सिंह नगर", "हल्द्वानी", "रुद्रपुर", "काशीपुर", "रुड़की",
			"मसूरी", "केदारनाथ", "बदरीनाथ", "बद्रीनाथ", "गंगोत्री", "यमुनोत्री", "गढ़वाल", "कुमाऊं", "गैरसैंण"},
	)},
	{domain.RegionIndia, newKeywords(
		[]string{"india", "indian", "delhi", "mumbai", "lok sabha", "rajya sabha", "supreme court",
			"high court", "bjp", "congress", "modi", "uttar pradesh", "bihar", "rajasthan", "punjab",
			"himachal", "haryana", "gujarat", "maharashtra", "kolkata", "chennai", "bengaluru", "rupee"},
		[]string{"भारत", "भारतीय", "दिल्ली", "मुंबई", "लोकसभा", "राज्यसभा", "सुप्रीम कोर्ट", "हाईकोर्ट",
			"भाजपा", "कांग्रेस", "मोदी", "केंद्र सरकार", "उत्तर प्रदेश", "बिहार", "राजस्थान", "पंजाब",
			"हिमाचल", "हरियाणा", "गुजरात", "महाराष्ट्र", "कोलकाता", "चेन्नई", "बेंगलुरु", "रुपये"},
	)},
}

var genreRules = []genreRule{
	{domain.GenreCrime, newKeywords(
		[]string{"crime", "murder", "police", "arrest", "arrested", "theft", "robbery", "fraud", "rape", "smuggling", "accused", "fir"},
		[]string{"अपराध", "हत्या", "पुलिस", "गिरफ्तार", "चोरी", "लूट", "धोखाधड़ी", "दुष्कर्म", "तस्करी", "आरोपी", "मुकदमा"},
	)},
	{domain.GenrePolitics, newKeywords(
		[]string{"election", "elections", "minister", "chief minister", "government", "parliament", "assembly", "politics", "vote", "party", "mla", "mp"},
		[]string{"चुनाव", "मंत्री", "मुख्यमंत्री", "सरकार", "संसद", "विधानसभा", "राजनीति", "मतदान", "पार्टी", "विधायक", "सांसद", "पंचायत"},
	)},
	{domain.GenreSports, newKeywords(
		[]string{"cricket", "football", "hockey", "match", "tournament", "olympic", "olympics", "ipl", "player", "sports", "medal"},
		[]string{"क्रिकेट", "फुटबॉल", "हॉकी", "मैच", "टूर्नामेंट", "ओलंपिक", "खिलाड़ी", "खेल", "पदक"},
	)},
	{domain.GenreEntertainment, newKeywords(
		[]string{"film", "movie", "bollywood", "actor", "actress", "music", "song", "web series", "box office"},
		[]string{"फिल्म", "बॉलीवुड", "अभिनेता", "अभिनेत्री", "संगीत", "वेब सीरीज", "मनोरंजन"},
	)},
	{domain.GenreBusiness, newKeywords(
		[]string{"business", "market", "sensex", "nifty", "economy", "stock", "stocks", "bank", "gdp", "inflation", "company"},
		[]string{"व्यापार", "बाजार", "सेंसेक्स", "निफ्टी", "अर्थव्यवस्था", "शेयर", "बैंक", "महंगाई", "कंपनी", "कारोबार"},
	)},
	{domain.GenreTechnology, newKeywords(
		[]string{"technology", "smartphone", "internet", "ai", "artificial intelligence", "app", "software", "cyber", "isro", "satellite"},
		[]string{"तकनीक", "प्रौद्योगिकी", "स्मार्टफोन", "इंटरनेट", "मोबाइल", "साइबर", "इसरो", "उपग्रह"},
	)},
	{domain.GenreHealth, newKeywords(
		[]string{"health", "hospital", "doctor", "disease", "covid", "vaccine", "medical", "dengue", "patients"},
		[]string{"स्वास्थ्य", "अस्पताल", "डॉक्टर", "बीमारी", "कोरोना", "टीका", "वैक्सीन", "डेंगू", "मरीज"},
	)},
	{domain.GenreEnvironment, newKeywords(
		[]string{"environment", "forest", "wildlife", "pollution", "climate", "glacier", "landslide", "earthquake", "tiger", "leopard"},
		[]string{"पर्यावरण", "जंगल", "वन्यजीव", "प्रदूषण", "जलवायु", "ग्लेशियर", "भूस्खलन", "भूकंप", "बाघ", "गुलदार", "तेंदुआ"},
	)},
	{domain.GenreEducation, newKeywords(
		[]string{"education", "school", "college", "university", "exam", "exams", "students", "teacher", "board result"},
		[]string{"शिक्षा", "स्कूल", "विद्यालय", "कॉलेज", "विश्वविद्यालय", "परीक्षा", "छात्र", "शिक्षक"},
	)},
	{domain.GenreLifestyle, newKeywords(
		[]string{"lifestyle", "fashion", "food", "travel", "festival", "yoga", "recipe", "tourism"},
		[]string{"जीवनशैली", "फैशन", "खान-पान", "यात्रा", "त्योहार", "योग दिवस", "योगाभ्यास", "पर्यटन"},
	)},
	{domain.GenreWeather, newKeywords(
		[]string{"weather", "rain", "rainfall", "snowfall", "monsoon", "imd", "cold wave", "heatwave", "temperature", "forecast"},
		[]string{"मौसम", "बारिश", "वर्षा", "बर्फबारी", "मानसून", "ठंड", "शीतलहर", "तापमान", "पूर्वानुमान"},
	)},
}

// Classify tags text with a genre and region. sourceURL's hostname is also
// considered for the region. It never fails: no match yields GenreOther and
// RegionInternational.
func Classify(text, sourceURL string) Result {
	lower := strings.ToLower(text)
	return Result{
		Genre:  genre(lower),
		Region: region(lower, hostname(sourceURL)),
	}
}

func genre(lower string) domain.Genre {
	for _, rule := range genreRules {
		if rule.words.match(lower) {
			return rule.genre
		}
	}
	return domain.GenreOther
}

func region(lower, host string) domain.Region {
	for _, tier := range regionTiers {
		if tier.words.match(lower) || (host != "" && tier.words.matchHost(host)) {
			return tier.region
		}
	}
	return domain.RegionInternational
}

// matchHost checks Latin keywords inside a hostname, where words are
// joined by dots or hyphens.
func (k keywords) matchHost(host string) bool {
	if k.latin == nil {
		return false
	}
	return k.latin.MatchString(strings.NewReplacer(".", " ", "-", " ").Replace(host))
}

func hostname(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}
