package transcript

import "testing"

func TestConvertToUzbekLatin(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain word", input: "Тошкент", want: "Toshkent"},
		{name: "uzbek specific letters", input: "ўғил қизи ҳаёт", want: "o'g'il qizi hayot"},
		{name: "digraph casing", input: "Чўлпон", want: "Cho'lpon"},
		{name: "soft sign dropped", input: "фильм", want: "film"},
		{name: "hard sign apostrophe", input: "маъно", want: "ma'no"},
		{name: "latin passes through", input: "Assalomu alaykum", want: "Assalomu alaykum"},
		{name: "mixed scripts", input: "Video: дарс 3-qism", want: "Video: dars 3-qism"},
		{name: "empty", input: "", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConvertToUzbekLatin(tc.input); got != tc.want {
				t.Fatalf("ConvertToUzbekLatin(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
