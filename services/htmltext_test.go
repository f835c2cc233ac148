package services

import "testing"

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text passes through", "Teclado mecánico RGB", "Teclado mecánico RGB"},
		{"plain text trimmed", "  con espacios  ", "con espacios"},
		{"tags stripped", "<p>Switch <b>azul</b></p>", "Switch azul"},
		{"list items flattened", "<ul><li>USB</li><li>RGB</li></ul>", "- USB - RGB"},
		{"whitespace collapsed", "<div>una\n\n   descripción</div>", "una descripción"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HTMLToText(tt.input); got != tt.want {
				t.Errorf("HTMLToText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
