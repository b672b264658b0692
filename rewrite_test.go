package locpatch

import (
	"strings"
	"testing"
)

func TestEscapeValue(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{`say "hi"`, `say ""hi""`},
		{"one\ntwo", `one\ntwo`},
		{"one\r\ntwo", `one\ntwo`},
	}
	for _, tt := range tests {
		if got := EscapeValue(tt.in); got != tt.want {
			t.Errorf("EscapeValue(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := UnescapeValue(`say ""hi""`); got != `say "hi"` {
		t.Errorf("UnescapeValue = %q", got)
	}
}

func TestRewrite(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		text string
		want string
	}{
		{"simple", ` k_a:0 "Hello"` + "\n", "Hallo", ` k_a:0 "Hallo"  #~TR~` + "\n"},
		{"crlf", ` k_a:0 "Hello"` + "\r\n", "Hallo", ` k_a:0 "Hallo"  #~TR~` + "\r\n"},
		{"no eol", ` k_a:0 "Hello"`, "Hallo", ` k_a:0 "Hallo"  #~TR~`},
		{"comment", ` k_a:0 "Hello" #greeting`, "Hallo", ` k_a:0 "Hallo" #greeting  #~TR~`},
		{"wide gap", "\tk_a:12   \"Hello\"", "Hallo", "\tk_a:12 \"Hallo\"  #~TR~"},
		{"marker once", ` k_a:0 "Hallo" #x  #~TR~`, "Moin", ` k_a:0 "Moin" #x  #~TR~`},
		{"quotes", ` k_a:0 "x"`, `"a" b`, ` k_a:0 """a"" b"  #~TR~`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, ok := ParseLine(0, tt.raw)
			if !ok {
				t.Fatalf("ParseLine(%q) failed", tt.raw)
			}
			got := Rewrite(line, tt.text)
			if got != tt.want {
				t.Errorf("Rewrite = %q, want %q", got, tt.want)
			}
			if strings.Count(got, ProcessedMarker) != 1 {
				t.Errorf("marker count in %q", got)
			}

			again, ok := ParseLine(0, got)
			if !ok || !again.Processed || again.Value != tt.text {
				t.Errorf("rewritten line does not parse back: %+v", again)
			}
		})
	}
}

func TestKeepSpacing(t *testing.T) {
	tests := []struct {
		original, corrected, want string
	}{
		{"$the_$ ", "der", "der "},
		{"$the_$ ", " die ", "die "},
		{"  $the_$", "das", "  das"},
		{"$the_$ King", "der König", "der König"},
	}
	for _, tt := range tests {
		if got := keepSpacing(tt.original, tt.corrected); got != tt.want {
			t.Errorf("keepSpacing(%q, %q) = %q, want %q", tt.original, tt.corrected, got, tt.want)
		}
	}
}
