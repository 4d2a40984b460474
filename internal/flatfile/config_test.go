package flatfile

import "testing"

func TestParseDelimiter(t *testing.T) {
	tests := []struct {
		input   string
		want    rune
		wantErr bool
	}{
		{",", ',', false},
		{"\t", '\t', false},
		{`\t`, '\t', false},
		{"TAB", '\t', false},
		{"semicolon", ';', false},
		{"pipe", '|', false},
		{"comma", ',', false},
		{"|", '|', false},
		{"§", '§', false},
		{"", ',', false},
		{`"`, 0, true},
		{"\n", 0, true},
		{",,", 0, true},
		{"ab", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseDelimiter(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDelimiter(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseDelimiter(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewConfig(t *testing.T) {
	cfg, err := NewConfig("  orders.csv ", "semicolon", TextContent("a;b"))
	if err != nil {
		t.Fatalf("NewConfig() error = %v", err)
	}
	if cfg.Filename != "orders.csv" {
		t.Errorf("Filename = %q, want %q", cfg.Filename, "orders.csv")
	}
	if cfg.Delimiter != ';' {
		t.Errorf("Delimiter = %q, want ';'", cfg.Delimiter)
	}
	if !cfg.Content.Present() {
		t.Error("Content not present")
	}

	if _, err := NewConfig("x.csv", "::", NoContent()); err == nil {
		t.Error("NewConfig() expected error for two-character delimiter")
	}
}

func TestConfig_WithContentDoesNotMutate(t *testing.T) {
	base := Config{Filename: "a.csv", Delimiter: ','}
	next := base.WithContent(TextContent("x"))

	if base.Content.Present() {
		t.Error("original config gained content")
	}
	if !next.Content.Present() {
		t.Error("copy has no content")
	}
}
