package core

import (
	"reflect"
	"strings"
	"testing"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{
			name:  "simple rows",
			input: "a,b,c\n1,2,3",
			want:  [][]string{{"a", "b", "c"}, {"1", "2", "3"}},
		},
		{
			name:  "quoted field with comma",
			input: "name,note\nWidget,\"small, blue\"",
			want:  [][]string{{"name", "note"}, {"Widget", "small, blue"}},
		},
		{
			name:  "quoted field with newline",
			input: "name,note\nWidget,\"line one\nline two\"",
			want:  [][]string{{"name", "note"}, {"Widget", "line one\nline two"}},
		},
		{
			name:  "doubled quotes emit literal quote",
			input: "name\n\"the \"\"big\"\" one\"",
			want:  [][]string{{"name"}, {`the "big" one`}},
		},
		{
			name:  "crlf terminators",
			input: "a,b\r\n1,2\r\n",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "bare cr terminator",
			input: "a,b\r1,2",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "trailing row without newline",
			input: "a,b\n1,2",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "cells are trimmed",
			input: " a , b \n 1 ,2 ",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "blank lines discarded",
			input: "a,b\n\n1,2\n\n",
			want:  [][]string{{"a", "b"}, {"1", "2"}},
		},
		{
			name:  "delimiter-only row survives",
			input: "a,b,c\n,,",
			want:  [][]string{{"a", "b", "c"}, {"", "", ""}},
		},
		{
			name:  "trailing comma yields empty cell",
			input: "a,b\n1,",
			want:  [][]string{{"a", "b"}, {"1", ""}},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "only blank lines",
			input: "\n\n\r\n",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.input)
			if len(got) == 0 && len(tt.want) == 0 {
				return
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Tokenize(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestTokenize_RoundTrip verifies that escaping cells and re-tokenizing the
// result reproduces the original table for awkward cell values.
func TestTokenize_RoundTrip(t *testing.T) {
	table := [][]string{
		{"sku", "name", "note"},
		{"SKU-1", "has, comma", `has "quotes"`},
		{"SKU-2", "has\nnewline", "plain"},
		{"SKU-3", `mix, of "all`, "tail\r\nend"},
	}

	var b strings.Builder
	for _, row := range table {
		writeCSVRow(&b, row)
	}

	got := Tokenize(b.String())
	if !reflect.DeepEqual(got, table) {
		t.Errorf("round trip mismatch:\n got %q\nwant %q", got, table)
	}
}

func TestSanitizeUTF8(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"valid ascii", "hello", "hello"},
		{"valid korean", "입고", "입고"},
		{"invalid byte replaced", "a\x80b", "a�b"},
		{"truncated sequence", "\xc3", "�"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeUTF8(tt.input); got != tt.want {
				t.Errorf("sanitizeUTF8(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
