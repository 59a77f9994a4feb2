package cli

import (
	"bufio"
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("hello world\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetMultiline_DoubleEnter(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("a\nb\n\n\n"))
	var out bytes.Buffer
	got, err := GetMultiline(in, "Enter text", &out)
	if err != nil {
		t.Fatal(err)
	}
	want := "a\nb"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func rdr(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestGetProperties(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "Unix newlines, stop on empty line",
			input:    "a=1\nb=2\n\n",
			expected: []string{"a=1", "b=2"},
		},
		{
			name:     "Windows CRLF, stop on empty line",
			input:    "a=1\r\nb=2\r\n\r\n",
			expected: []string{"a=1", "b=2"},
		},
		{
			name:     "Immediate blank line gives empty slice",
			input:    "\n",
			expected: []string{},
		},
		{
			name:     "EOF without trailing blank line",
			input:    "a=1\nb=2",
			expected: []string{"a=1", "b=2"},
		},
		{
			name:     "Spaces are preserved (no trimming except CR/LF)",
			input:    " name = value \n\n",
			expected: []string{" name = value "},
		},
		{
			name:     "Line with only spaces is considered non-empty and kept",
			input:    "   \n\n",
			expected: []string{"   "},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			got, err := GetProperties(rdr(tc.input), &out)
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
			require.Contains(t, out.String(), "name=value")
		})
	}
}

func TestGetList(t *testing.T) {
	var out bytes.Buffer
	got, err := GetList(rdr(" hero, ,mage ,\n"), "Tags", &out)
	require.NoError(t, err)
	require.Equal(t, []string{"hero", "mage"}, got)

	got, err = GetList(rdr("\n"), "Tags", &out)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestGetFile(t *testing.T) {
	old := readFile
	defer func() { readFile = old }()
	readFile = func(name string) ([]byte, error) {
		if name == "avatar.webp" {
			return []byte("RIFF"), nil
		}
		return nil, os.ErrNotExist
	}

	var out bytes.Buffer
	tests := []struct {
		name    string
		input   string
		want    []byte
		wantErr bool
	}{
		{name: "empty keeps", input: "\n", want: nil},
		{name: "dash clears", input: "-\n", want: []byte{}},
		{name: "reads file", input: "avatar.webp\n", want: []byte("RIFF")},
		{name: "missing file", input: "nope.webp\n", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := GetFile(rdr(tc.input), "Avatar", &out)
			if tc.wantErr {
				require.ErrorIs(t, err, os.ErrNotExist)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}
}

func TestConfirm(t *testing.T) {
	var out bytes.Buffer
	require.True(t, Confirm(rdr("y\n"), "Sure?", &out))
	require.True(t, Confirm(rdr("YES\n"), "Sure?", &out))
	require.False(t, Confirm(rdr("\n"), "Sure?", &out))
	require.False(t, Confirm(rdr(""), "Sure?", &out))
	require.Contains(t, out.String(), "Sure? [y/N]")
}
