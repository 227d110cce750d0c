package main

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTabDict(t *testing.T, dir string, n int) string {
	t.Helper()
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "word%d\t<p>it's <img src=\"%d.png\"><a href=\"x\">entry %d</a></p>\n", i, i, i)
	}
	path := filepath.Join(dir, "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))
	return path
}

func countRows(t *testing.T, path string) int {
	t.Helper()
	conn, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer conn.Close()
	var n int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM stardict").Scan(&n))
	return n
}

func TestRunConvertsDictionary(t *testing.T) {
	dir := t.TempDir()
	input := writeTabDict(t, dir, 250)

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-workers", "3", "-r", "-fingerprint", "-progress-every", "100", input}, &stdout, &stderr)
	require.Equal(t, 0, code, stderr.String())

	out := filepath.Join(dir, "sample.db")
	assert.Equal(t, 250, countRows(t, out))
	assert.Regexp(t, `^250-[0-9a-f]{32}\n$`, stdout.String())
	assert.Contains(t, stderr.String(), "inserted records")

	conn, err := sql.Open("sqlite3", out)
	require.NoError(t, err)
	defer conn.Close()
	var html string
	require.NoError(t, conn.QueryRow("SELECT source_html FROM stardict WHERE word = 'word7'").Scan(&html))
	assert.Equal(t, `<p>it\"s entry 7</p>`, html)
}

func TestRunSameFingerprintAcrossWorkerCounts(t *testing.T) {
	dir := t.TempDir()
	input := writeTabDict(t, dir, 500)

	fingerprint := func(workers, out string) string {
		var stdout, stderr bytes.Buffer
		code := run(context.Background(), []string{"-workers", workers, "-fingerprint", input, filepath.Join(dir, out)}, &stdout, &stderr)
		require.Equal(t, 0, code, stderr.String())
		return stdout.String()
	}

	assert.Equal(t, fingerprint("1", "one.db"), fingerprint("16", "sixteen.db"))
}

func TestRunReusesExistingOutput(t *testing.T) {
	dir := t.TempDir()
	input := writeTabDict(t, dir, 10)
	out := filepath.Join(dir, "custom.db")

	var stderr bytes.Buffer
	require.Equal(t, 0, run(context.Background(), []string{input, out}, &bytes.Buffer{}, &stderr))
	stderr.Reset()
	require.Equal(t, 0, run(context.Background(), []string{input, out}, &bytes.Buffer{}, &stderr))

	assert.Contains(t, stderr.String(), "already exists")
	assert.Equal(t, 20, countRows(t, out))
}

func TestRunSetupFailures(t *testing.T) {
	dir := t.TempDir()
	input := writeTabDict(t, dir, 3)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no args", nil, 2},
		{"too many args", []string{"a", "b", "c"}, 2},
		{"bad flag", []string{"-nope", input}, 2},
		{"missing input", []string{filepath.Join(dir, "missing.txt")}, 1},
		{"unknown format", []string{filepath.Join(dir, "dict.mdx")}, 1},
		{"bad format flag", []string{"-format", "mdx", input}, 2},
		{"uncreatable output", []string{input, filepath.Join(dir, "no", "such", "dir.db")}, 1},
		{"output is input", []string{input, input}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			code := run(context.Background(), tt.args, &bytes.Buffer{}, &stderr)
			assert.Equal(t, tt.want, code, stderr.String())
		})
	}
}

func TestRunParseFailure(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "broken.json")
	require.NoError(t, os.WriteFile(input, []byte("{not json"), 0o644))

	code := run(context.Background(), []string{input}, &bytes.Buffer{}, &bytes.Buffer{})
	assert.Equal(t, 1, code)
	_, err := os.Stat(filepath.Join(dir, "broken.db"))
	assert.True(t, os.IsNotExist(err), "no database should be created before parsing succeeds")
}

func TestDefaultOutputPath(t *testing.T) {
	assert.Equal(t, "dicts/oxford.db", defaultOutputPath("dicts/oxford.json"))
	assert.Equal(t, "dicts/oxford.db", defaultOutputPath("dicts/oxford.json.gz"))
	assert.Equal(t, "oxford.db", defaultOutputPath("oxford"))
}
