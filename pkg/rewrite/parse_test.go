package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"hindinews/pkg/domain"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		name        string
		raw         string
		wantTitle   string
		wantContent string
	}{
		{
			name:        "plain",
			raw:         "पंचायत चुनाव घोषित\n\nपहला अनुच्छेद।\n\nदूसरा अनुच्छेद।",
			wantTitle:   "पंचायत चुनाव घोषित",
			wantContent: "पहला अनुच्छेद।\n\nदूसरा अनुच्छेद।",
		},
		{
			name:        "preamble and label",
			raw:         "Here is the rewritten article:\n**शीर्षक: पंचायत चुनाव घोषित**\n\nपहला अनुच्छेद।",
			wantTitle:   "पंचायत चुनाव घोषित",
			wantContent: "पहला अनुच्छेद।",
		},
		{
			name:        "headline opening with here",
			raw:         "यहां बादल फटने से भारी तबाही, कई घर बहे\nपहला अनुच्छेद यहाँ है।\nदूसरा अनुच्छेद।",
			wantTitle:   "यहां बादल फटने से भारी तबाही, कई घर बहे",
			wantContent: "पहला अनुच्छेद यहाँ है।\n\nदूसरा अनुच्छेद।",
		},
		{
			name:        "hindi preamble with colon",
			raw:         "यहाँ पुनर्लिखित समाचार है:\nपंचायत चुनाव घोषित\nपहला अनुच्छेद।",
			wantTitle:   "पंचायत चुनाव घोषित",
			wantContent: "पहला अनुच्छेद।",
		},
		{
			name:        "hindi preamble naming the article",
			raw:         "नीचे लेख दिया गया है\nपंचायत चुनाव घोषित\nपहला अनुच्छेद।",
			wantTitle:   "पंचायत चुनाव घोषित",
			wantContent: "पहला अनुच्छेद।",
		},
		{
			name:        "markdown heading and quotes",
			raw:         "# \"नया शीर्षक\"\n- पहली पंक्ति\n> दूसरी पंक्ति",
			wantTitle:   "नया शीर्षक",
			wantContent: "पहली पंक्ति\n\nदूसरी पंक्ति",
		},
		{
			name:        "html",
			raw:         "<h1>Title</h1><p>Body one</p><p>Body two</p>",
			wantTitle:   "Title",
			wantContent: "Body one\n\nBody two",
		},
		{
			name:        "windows newlines",
			raw:         "Title\r\nBody",
			wantTitle:   "Title",
			wantContent: "Body",
		},
		{
			name: "empty",
			raw:  "  \n\n ",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			title, content := ParseResponse(tt.raw)
			assert.Equal(t, tt.wantTitle, title)
			assert.Equal(t, tt.wantContent, content)
		})
	}
}

func TestParseResponse_PreambleOnlyFirstLine(t *testing.T) {
	_, content := ParseResponse("Title\nयहाँ बाजार में भीड़ रही।")
	assert.Equal(t, "यहाँ बाजार में भीड़ रही।", content)
}

func TestParseResponse_LongTitle(t *testing.T) {
	t.Run("first sentence", func(t *testing.T) {
		title, _ := ParseResponse("यह पहला वाक्य है। " + strings.Repeat("क", 160) + "\nbody")
		assert.Equal(t, "यह पहला वाक्य है।", title)
	})

	t.Run("no sentence break", func(t *testing.T) {
		title, _ := ParseResponse(strings.Repeat("ख", 200) + "\nbody")
		assert.Equal(t, shortTitleLen, domain.RuneLen(title))
	})
}
