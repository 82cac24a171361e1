package tokenize

import (
	"reflect"
	"testing"
)

func TestTokens(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "lowercases and strips punctuation",
			text: "The Quick-Brown Fox!",
			want: []string{"quick", "brown", "fox"},
		},
		{
			name: "drops stop words but keeps duplicates",
			text: "to be or not to be",
			want: []string{"be", "not", "be"},
		},
		{
			name: "numbers are tokens",
			text: "HTTP 404 error",
			want: []string{"http", "404", "error"},
		},
		{
			name: "empty input",
			text: "",
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokens(tt.text)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokens(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsStopWord(t *testing.T) {
	if !IsStopWord("the") {
		t.Error("expected 'the' to be a stop word")
	}
	if IsStopWord("golang") {
		t.Error("did not expect 'golang' to be a stop word")
	}
}
