package filter

import (
	"errors"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{
			name: "compact numeric",
			args: []string{"where", "value=1"},
			want: " value = '1'",
		},
		{
			name: "compact string",
			args: []string{"where", "value=abc"},
			want: " value = 'abc'",
		},
		{
			name: "spaced equals",
			args: []string{"where", "value", "=", "asdf"},
			want: " value = 'asdf'",
		},
		{
			name: "and",
			args: []string{"where", "value", "=", "foobar", "and", "id", "=", "1"},
			want: " value = 'foobar' and id = '1'",
		},
		{
			name: "like",
			args: []string{"where", "value", "like", "%foobar"},
			want: " value like '%foobar'",
		},
		{
			name: "not equals",
			args: []string{"where", "value", "!=", "x"},
			want: " value != 'x'",
		},
		{
			name: "not equals quotes its value",
			args: []string{"where", "value", "!=", "a'b", "and", "id", "!=", "1"},
			want: " value != 'a''b' and id != '1'",
		},
		{
			name: "operator is case insensitive",
			args: []string{"WHERE", "value", "LIKE", "%.example.com"},
			want: " value LIKE '%.example.com'",
		},
		{
			name: "mixed case where",
			args: []string{"WhErE", "value=1"},
			want: " value = '1'",
		},
		{
			name: "compact backslash",
			args: []string{"where", "value=\\"},
			want: " value = '\\'",
		},
		{
			name: "spaced backslash",
			args: []string{"where", "value", "=", "\\"},
			want: " value = '\\'",
		},
		{
			name: "compact quote",
			args: []string{"where", "value=a'b"},
			want: " value = 'a''b'",
		},
		{
			name: "spaced quote",
			args: []string{"where", "value", "=", "a'b"},
			want: " value = 'a''b'",
		},
		{
			name: "compact splits at first equals",
			args: []string{"where", "value=a=b"},
			want: " value = 'a=b'",
		},
		{
			name: "compact empty value",
			args: []string{"where", "value="},
			want: " value = ''",
		},
		{
			name: "value after operator is always quoted",
			args: []string{"where", "value", "=", "1=1"},
			want: " value = '1=1'",
		},
		{
			name: "leading equals is passed through",
			args: []string{"where", "=x"},
			want: " =x",
		},
		{
			name: "parentheses and or",
			args: []string{"where", "(", "value=a", "or", "value=b", ")", "and", "unscoped=0"},
			want: " ( value = 'a' or value = 'b' ) and unscoped = '0'",
		},
		{
			name: "bare where",
			args: []string{"where"},
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.args)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.args, err)
			}
			if got != New(tt.want) {
				t.Errorf("Parse(%q) = %q, want %q", tt.args, got.Query(), tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr error
	}{
		{name: "empty", args: nil, wantErr: ErrConditionRequired},
		{name: "missing where", args: []string{"value=1"}, wantErr: ErrMissingWhere},
		{name: "where not first", args: []string{"value", "where", "x"}, wantErr: ErrMissingWhere},
		{name: "dangling operator", args: []string{"where", "value", "like"}, wantErr: ErrMissingValue},
		{name: "dangling not equals", args: []string{"where", "value", "!="}, wantErr: ErrMissingValue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.args)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Parse(%q) error = %v, want %v", tt.args, err, tt.wantErr)
			}
			if !errors.Is(err, ErrSyntax) {
				t.Errorf("Parse(%q) error %v does not match ErrSyntax", tt.args, err)
			}
		})
	}
}

func TestParse_ErrorDoesNotEchoInput(t *testing.T) {
	_, err := Parse([]string{"'; DROP TABLE domains; --"})
	if err == nil {
		t.Fatal("Parse() expected error")
	}
	if strings.Contains(err.Error(), "DROP") {
		t.Errorf("error message echoes input: %q", err.Error())
	}
}

func TestParseOptional(t *testing.T) {
	t.Run("empty matches everything", func(t *testing.T) {
		got, err := ParseOptional(nil)
		if err != nil {
			t.Fatalf("ParseOptional() error = %v", err)
		}
		if got.Query() != "1" {
			t.Errorf("ParseOptional() = %q, want %q", got.Query(), "1")
		}
	})

	t.Run("delegates to Parse", func(t *testing.T) {
		got, err := ParseOptional([]string{"where", "value=1"})
		if err != nil {
			t.Fatalf("ParseOptional() error = %v", err)
		}
		if got.Query() != " value = '1'" {
			t.Errorf("ParseOptional() = %q, want %q", got.Query(), " value = '1'")
		}
	})

	t.Run("still requires where", func(t *testing.T) {
		if _, err := ParseOptional([]string{"value=1"}); !errors.Is(err, ErrMissingWhere) {
			t.Errorf("ParseOptional() error = %v, want %v", err, ErrMissingWhere)
		}
	})
}

func TestQuote(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: "''"},
		{in: "abc", want: "'abc'"},
		{in: "a'b", want: "'a''b'"},
		{in: "''", want: "''''''"},
		{in: `\`, want: `'\'`},
		{in: `"x"`, want: `'"x"'`},
		{in: "ünï", want: "'ünï'"},
	}

	for _, tt := range tests {
		if got := Quote(tt.in); got != tt.want {
			t.Errorf("Quote(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuote_RoundTrip(t *testing.T) {
	values := []string{"", "plain", "a'b", "'", "it's 'quoted'", `back\slash'`, "x''y"}

	for _, v := range values {
		if got := unquote(t, Quote(v)); got != v {
			t.Errorf("unquote(Quote(%q)) = %q", v, got)
		}
	}
}

// unquote reads a SQL string literal the way the database does.
func unquote(t *testing.T, lit string) string {
	t.Helper()

	if len(lit) < 2 || lit[0] != '\'' || lit[len(lit)-1] != '\'' {
		t.Fatalf("not a string literal: %q", lit)
	}
	body := lit[1 : len(lit)-1]

	var b strings.Builder
	for i := 0; i < len(body); i++ {
		if body[i] == '\'' {
			if i+1 >= len(body) || body[i+1] != '\'' {
				t.Fatalf("unescaped quote in literal: %q", lit)
			}
			i++
		}
		b.WriteByte(body[i])
	}
	return b.String()
}
