package rewrite

import (
	"strings"

	"hindinews/pkg/domain"
)

const (
	// FallbackProvider tags template output so readers can tell it from AI copy.
	FallbackProvider = "fallback"
	// FallbackWordCount is the word count recorded for template output.
	FallbackWordCount = 300

	fallbackExcerpt = 500
)

// fallbackTemplates take the original title twice, then an excerpt of the source.
var fallbackTemplates = []string{
	"{title} से जुड़ी यह खबर इस समय चर्चा में है। उपलब्ध जानकारी के अनुसार, {excerpt}\n\n" +
		"स्थानीय लोगों और संबंधित विभागों की नज़र इस मामले पर बनी हुई है। जानकारों के अनुसार इस विषय के कई पहलुओं पर अभी विचार किया जाना बाकी है। " +
		"अधिकारियों की ओर से आगे की जानकारी जल्द साझा किए जाने की उम्मीद है। " +
		"इस पूरे घटनाक्रम का असर आने वाले समय में आम लोगों के जीवन पर भी देखने को मिल सकता है। {title} से संबंधित हर नए अपडेट के लिए हमारे साथ बने रहें।",
	"ताज़ा समाचार: {title}\n\n{excerpt}\n\n" +
		"इस घटनाक्रम को लेकर विभिन्न पक्षों की प्रतिक्रियाएं सामने आ रही हैं। जानकारों का मानना है कि आने वाले दिनों में इस विषय पर और स्पष्टता आएगी। " +
		"प्रशासन स्थिति पर लगातार नज़र रखे हुए है और आम जनता से अफवाहों पर ध्यान न देने की अपील की गई है। " +
		"इस खबर से जुड़े सभी पहलुओं पर हमारी टीम लगातार नज़र बनाए हुए है और हर नई जानकारी आप तक पहुंचाई जाएगी।",
	"{title} — इस मामले में अब तक जो जानकारी सामने आई है, उसके मुताबिक {excerpt}\n\n" +
		"फिलहाल इस विषय पर आधिकारिक बयान का इंतज़ार किया जा रहा है। सूत्रों के अनुसार संबंधित विभाग पूरे मामले की समीक्षा कर रहा है। " +
		"स्थानीय स्तर पर भी इस विषय को लेकर लोगों में उत्सुकता बनी हुई है और कई लोग इस पर अपनी राय रख रहे हैं। " +
		"हम इस खबर से जुड़ी हर अहम जानकारी आप तक पहुंचाते रहेंगे।",
	"प्राप्त जानकारी के अनुसार, {title}। विस्तृत विवरण इस प्रकार है: {excerpt}\n\n" +
		"इस खबर ने क्षेत्र के लोगों का ध्यान अपनी ओर खींचा है। संबंधित अधिकारियों का कहना है कि सभी आवश्यक कदम उठाए जा रहे हैं। " +
		"विशेषज्ञों के अनुसार इस तरह के मामलों में समय पर सही जानकारी मिलना सभी के लिए बेहद ज़रूरी होता है। " +
		"आगे की स्थिति स्पष्ट होते ही विस्तृत जानकारी साझा की जाएगी।",
}

// Fallback builds a template result from the original title and content.
// pick chooses a template index in [0, n).
func Fallback(title, content string, pick func(n int) int) domain.RewriteResult {
	title = strings.TrimSpace(title)
	excerpt := strings.TrimSpace(domain.Truncate(strings.Join(strings.Fields(content), " "), fallbackExcerpt))
	if excerpt == "" {
		excerpt = title
	}

	i := 0
	if pick != nil {
		i = pick(len(fallbackTemplates))
		if i < 0 || i >= len(fallbackTemplates) {
			i = 0
		}
	}

	body := strings.NewReplacer("{title}", title, "{excerpt}", excerpt).Replace(fallbackTemplates[i])
	return domain.RewriteResult{
		Title:     title,
		Content:   body,
		Provider:  FallbackProvider,
		WordCount: FallbackWordCount,
		Success:   false,
	}
}
