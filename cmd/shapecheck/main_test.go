package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const statsSchema = `
types:
  Stats:
    fields:
      host: string
      load: float
      count: {type: int, default: 3}
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.yaml", statsSchema)
	valid := writeFile(t, dir, "valid.json", `{"host": "h1", "load": 0.5}`)
	invalid := writeFile(t, dir, "invalid.json", `{"host": 1, "load": "high"}`)
	yamlDoc := writeFile(t, dir, "stats.yml", "host: h1\nload: 0.5\ncount: 7\n")

	tests := []struct {
		name       string
		args       []string
		stdin      string
		wantCode   int
		wantStdout []string
		wantStderr []string
	}{
		{
			name:       "valid",
			args:       []string{"--input", valid},
			wantStderr: []string{"ok " + valid + " as Stats"},
		},
		{
			name:     "invalid",
			args:     []string{"--input", invalid},
			wantCode: 1,
			wantStderr: []string{
				"invalid " + invalid + " as Stats: 2 errors",
				"  .host  Expected a JSON string but received something else.",
				"  .load  Value not convertible to decimal: 'high'.",
			},
		},
		{
			name:       "yaml by extension",
			args:       []string{"--input", yamlDoc, "--emit", "json"},
			wantStdout: []string{"\"count\": 7", "\"host\": \"h1\""},
		},
		{
			name:       "stdin",
			args:       []string{"--format", "yaml", "--emit", "yaml"},
			stdin:      "host: h2\nload: 1\n",
			wantStdout: []string{"count: 3", "host: h2"},
			wantStderr: []string{"ok stdin as Stats"},
		},
		{
			name:       "list type",
			args:       []string{"--type", "list[Stats]"},
			stdin:      `[{"host": "a", "load": 1}, {"host": 2, "load": 1}]`,
			wantCode:   1,
			wantStderr: []string{"[1].host"},
		},
		{
			name: "metrics",
			args: []string{"--input", valid, "--metrics"},
			wantStdout: []string{
				"# TYPE shapecheck_load gauge",
				`shapecheck_load{host="h1"} 0.5`,
				`shapecheck_count{host="h1"} 3`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"--schema", schemaPath}, tt.args...)
			if !hasFlag(args, "--type") {
				args = append(args, "--type", "Stats")
			}
			var stdout, stderr bytes.Buffer
			code, err := run(args, strings.NewReader(tt.stdin), &stdout, &stderr)
			if err != nil {
				t.Fatalf("run error: %v", err)
			}
			if code != tt.wantCode {
				t.Errorf("exit code = %d, want %d\nstderr: %s", code, tt.wantCode, stderr.String())
			}
			for _, want := range tt.wantStdout {
				if !strings.Contains(stdout.String(), want) {
					t.Errorf("stdout missing %q:\n%s", want, stdout.String())
				}
			}
			for _, want := range tt.wantStderr {
				if !strings.Contains(stderr.String(), want) {
					t.Errorf("stderr missing %q:\n%s", want, stderr.String())
				}
			}
		})
	}
}

func hasFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.yaml", statsSchema)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing type", []string{"--schema", schemaPath}, "exactly one of --schema or --wit"},
		{"two sources", []string{"--schema", schemaPath, "--wit", schemaPath, "--type", "Stats"}, "exactly one of --schema or --wit"},
		{"unreadable wit", []string{"--wit", filepath.Join(dir, "none.json"), "--type", "point"}, "read WIT"},
		{"unknown type", []string{"--schema", schemaPath, "--type", "Nope"}, "Nope"},
		{"unknown dialect", []string{"--schema", schemaPath, "--type", "Stats", "--dialect", "toml"}, "unknown dialect"},
		{"unknown emit", []string{"--schema", schemaPath, "--type", "Stats", "--emit", "xml"}, "xml"},
		{"missing schema", []string{"--schema", filepath.Join(dir, "none.yaml"), "--type", "Stats"}, "read schema"},
		{"extra argument", []string{"--schema", schemaPath, "--type", "Stats", "extra"}, "unexpected argument"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			_, err := run(tt.args, strings.NewReader("{}"), &stdout, &stderr)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("got %v, want error containing %q", err, tt.want)
			}
		})
	}

	t.Run("help", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code, err := run([]string{"--help"}, strings.NewReader(""), &stdout, &stderr)
		if err != nil || code != 0 {
			t.Errorf("got %d, %v", code, err)
		}
		if !strings.Contains(stderr.String(), "Usage: shapecheck") {
			t.Errorf("usage not printed: %s", stderr.String())
		}
	})
}

func TestHOCONDialect(t *testing.T) {
	dir := t.TempDir()
	schemaPath := writeFile(t, dir, "schema.yaml", `
types:
  Server:
    fields:
      net.port: int
      debug: bool
`)
	var stdout, stderr bytes.Buffer
	code, err := run([]string{"--schema", schemaPath, "--type", "Server", "--dialect", "hocon", "--format", "yaml", "--emit", "json"},
		strings.NewReader("net:\n  port: 80\ndebug: \"yes\"\n"), &stdout, &stderr)
	if err != nil || code != 0 {
		t.Fatalf("got %d, %v: %s", code, err, stderr.String())
	}
	if !strings.Contains(stdout.String(), `"debug": true`) || !strings.Contains(stdout.String(), `"net.port": 80`) {
		t.Errorf("got %s", stdout.String())
	}
}

const shapesWIT = `{
  "types": [
    {"name": "point", "kind": {"record": {"fields": [
      {"name": "x", "type": "u32"},
      {"name": "color", "type": 1}
    ]}}},
    {"name": "color", "kind": {"enum": {"cases": [{"name": "red"}, {"name": "green"}]}}},
    {"name": "file", "kind": "resource"}
  ]
}`

func TestWITTypes(t *testing.T) {
	dir := t.TempDir()
	witPath := writeFile(t, dir, "shapes.json", shapesWIT)

	t.Run("valid", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code, err := run([]string{"--wit", witPath, "--type", "list[point]", "--emit", "json"},
			strings.NewReader(`[{"x": 1, "color": "red"}]`), &stdout, &stderr)
		if err != nil || code != 0 {
			t.Fatalf("got %d, %v: %s", code, err, stderr.String())
		}
		if !strings.Contains(stdout.String(), `"color": "red"`) || !strings.Contains(stdout.String(), `"x": 1`) {
			t.Errorf("got %s", stdout.String())
		}
	})

	t.Run("invalid", func(t *testing.T) {
		var stdout, stderr bytes.Buffer
		code, err := run([]string{"--wit", witPath, "--type", "list[point]"},
			strings.NewReader(`[{"x": "a", "color": "blue"}]`), &stdout, &stderr)
		if err != nil || code != 1 {
			t.Fatalf("got %d, %v", code, err)
		}
		for _, want := range []string{
			"2 errors",
			"Value not convertible to decimal: 'a'.",
			"Unexpected value blue while deserializing enum color.",
		} {
			if !strings.Contains(stderr.String(), want) {
				t.Errorf("stderr missing %q:\n%s", want, stderr.String())
			}
		}
	})
}
