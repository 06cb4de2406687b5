package keyword

// stopWords holds function words that are never chosen as keywords. Entries of
// two runes or fewer are listed for completeness even though the length filter
// drops them first.
var stopWords = map[string]struct{}{}

func init() {
	lists := [][]string{
		// en
		{"the", "and", "for", "are", "but", "not", "you", "all", "any", "can", "had",
			"her", "was", "one", "our", "out", "has", "his", "how", "its", "who", "this",
			"that", "with", "from", "have", "they", "will", "would", "there", "their",
			"what", "when", "where", "which", "about", "into", "than", "them", "then",
			"these", "those", "your", "been", "were", "very"},
		// de
		{"der", "die", "das", "und", "ist", "ein", "eine", "einen", "einem", "einer",
			"nicht", "mit", "auf", "für", "von", "sich", "auch", "dem", "den", "des",
			"ich", "sie", "wir", "ihr", "aber", "oder", "wie", "noch", "nach", "bei"},
		// fr
		{"les", "une", "des", "est", "pas", "que", "qui", "dans", "pour", "avec",
			"sur", "par", "mais", "ou", "son", "ses", "nous", "vous", "ils", "elle",
			"elles", "cette", "leur", "aux", "du", "au"},
		// es / pt / it
		{"los", "las", "una", "uno", "unos", "unas", "del", "por", "para", "con",
			"pero", "como", "más", "este", "esta", "que", "muy", "sus", "nos", "uma",
			"não", "com", "mas", "dos", "das", "pelo", "pela", "gli", "della", "delle",
			"degli", "per", "che", "non", "sono", "questo", "questa"},
		// ru
		{"и", "в", "не", "на", "что", "как", "это", "его", "она", "они", "мне",
			"так", "уже", "или", "был", "была", "было", "для", "при", "все", "вот"},
		// pl
		{"się", "nie", "jest", "jak", "ale", "tak", "dla", "czy", "już", "przez",
			"tylko", "jego", "jej", "oraz", "też"},
	}
	for _, list := range lists {
		for _, w := range list {
			stopWords[w] = struct{}{}
		}
	}
}
