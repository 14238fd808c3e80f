// Package transcript assembles the per-segment edited texts into the final
// presentation transcript: segment joining, marker cleanup, Cyrillic to Uzbek
// Latin transliteration, and the HTML wrapper shown to the reader.
package transcript
