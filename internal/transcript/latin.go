package transcript

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/transform"
)

// latinFor maps lowercase Uzbek Cyrillic letters to their Latin script
// spelling. Letters absent from the map pass through unchanged. The soft sign
// maps to an empty string and is dropped.
var latinFor = map[rune]string{
	'а': "a",
	'б': "b",
	'в': "v",
	'г': "g",
	'д': "d",
	'е': "e",
	'ё': "yo",
	'ж': "j",
	'з': "z",
	'и': "i",
	'й': "y",
	'к': "k",
	'л': "l",
	'м': "m",
	'н': "n",
	'о': "o",
	'п': "p",
	'р': "r",
	'с': "s",
	'т': "t",
	'у': "u",
	'ф': "f",
	'х': "x",
	'ц': "ts",
	'ч': "ch",
	'ш': "sh",
	'щ': "sh",
	'ъ': "'",
	'ь': "",
	'э': "e",
	'ю': "yu",
	'я': "ya",
	'ў': "o'",
	'қ': "q",
	'ғ': "g'",
	'ҳ': "h",
}

// uzbekLatin transliterates Uzbek Cyrillic text to Latin script. It satisfies
// transform.Transformer so it composes with other text transforms.
type uzbekLatin struct {
	transform.NopResetter
}

// NewUzbekLatin returns a transformer that rewrites Uzbek Cyrillic letters as
// their Latin script equivalents, leaving all other runes untouched.
func NewUzbekLatin() transform.Transformer {
	return uzbekLatin{}
}

func (uzbekLatin) Transform(dst, src []byte, atEOF bool) (nDst, nSrc int, err error) {
	for nSrc < len(src) {
		r, size := utf8.DecodeRune(src[nSrc:])
		if r == utf8.RuneError && size == 1 && !atEOF && !utf8.FullRune(src[nSrc:]) {
			return nDst, nSrc, transform.ErrShortSrc
		}

		out, ok := latinMapping(r)
		if !ok {
			out = string(r)
		}
		if len(dst)-nDst < len(out) {
			return nDst, nSrc, transform.ErrShortDst
		}
		nDst += copy(dst[nDst:], out)
		nSrc += size
	}
	return nDst, nSrc, nil
}

func latinMapping(r rune) (string, bool) {
	if out, ok := latinFor[r]; ok {
		return out, true
	}
	lower := unicode.ToLower(r)
	if lower == r {
		return "", false
	}
	out, ok := latinFor[lower]
	if !ok {
		return "", false
	}
	return titleCase(out), true
}

func titleCase(value string) string {
	if value == "" {
		return value
	}
	first, size := utf8.DecodeRuneInString(value)
	return string(unicode.ToUpper(first)) + value[size:]
}

// ConvertToUzbekLatin transliterates any Uzbek Cyrillic in the input to Latin
// script. Text already in Latin script is returned as is.
func ConvertToUzbekLatin(text string) string {
	converted, _, err := transform.String(NewUzbekLatin(), text)
	if err != nil {
		return text
	}
	return converted
}
