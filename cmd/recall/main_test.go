package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// fixture lays out an OpenCode storage tree plus a config pointing at it
// and at an empty archive. It returns the config path.
func fixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	storage := filepath.Join(root, "storage")

	files := map[string]string{
		"session/proj/ses_billing.json": `{"id":"ses_billing","title":"Billing logs","time":{"created":1767225600000}}`,
		"session/proj/ses_other.json":   `{"id":"ses_other","title":"Docs","time":{"created":1767000000000}}`,
		"message/ses_billing/m1.json":   `{"id":"m1","role":"user","time":{"created":1},"summary":{"title":"add billing logs"}}`,
		"message/ses_billing/m2.json":   `{"id":"m2","role":"assistant","time":{"created":2},"summary":{"body":"logged every billing call"}}`,
		"message/ses_other/m1.json":     `{"id":"m1","role":"user","time":{"created":1},"summary":{"title":"write the README"}}`,
	}
	for rel, content := range files {
		path := filepath.Join(storage, rel)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := "source: opencode\n" +
		"opencode:\n  storage_dir: " + storage + "\n" +
		"archive:\n  data_dir: " + filepath.Join(root, "archive") + "\n"
	cfgPath := filepath.Join(root, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(cfg), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfgPath
}

// run executes the CLI and returns stdout.
func run(t *testing.T, cfgPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append([]string{"--config", cfgPath, "--plain"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, cfgPath string, args ...string) string {
	t.Helper()
	out, err := run(t, cfgPath, args...)
	if err != nil {
		t.Fatalf("recall %s: %v", strings.Join(args, " "), err)
	}
	return out
}

func TestVersion(t *testing.T) {
	if out := mustRun(t, fixture(t), "version"); out != "recall vdev\n" {
		t.Errorf("version = %q", out)
	}
}

func TestFindAndRead(t *testing.T) {
	cfg := fixture(t)

	found := mustRun(t, cfg, "find", "BILLING")
	for _, want := range []string{`## Sessions matching "BILLING"`, "`ses_billing`", "- **Matches**: 2", "Found matches in 1 of 2 sessions scanned."} {
		if !strings.Contains(found, want) {
			t.Errorf("find output missing %q:\n%s", want, found)
		}
	}

	read := mustRun(t, cfg, "read", "ses_billing", "--focus", "call")
	if !strings.Contains(read, `## Messages matching "call" (1)`) ||
		!strings.Contains(read, "- **assistant**: logged every billing call") {
		t.Errorf("read output:\n%s", read)
	}

	if out := mustRun(t, cfg, "read", "ses_nope"); !strings.Contains(out, `Session "ses_nope" not found.`) {
		t.Errorf("unknown session output = %q", out)
	}
}

func TestList(t *testing.T) {
	out := mustRun(t, fixture(t), "list", "--limit", "1")
	if !strings.HasPrefix(out, "1 sessions\n") || !strings.Contains(out, "ses_billing") {
		t.Errorf("list output:\n%s", out)
	}
}

func TestExportImportForget(t *testing.T) {
	cfg := fixture(t)
	exportPath := filepath.Join(t.TempDir(), "export.json")

	out := mustRun(t, cfg, "export", exportPath)
	if !strings.Contains(out, "Exported 2 sessions from opencode") {
		t.Errorf("export output = %q", out)
	}

	out = mustRun(t, cfg, "import", exportPath)
	if !strings.Contains(out, "Imported 2 sessions (3 messages)") {
		t.Errorf("import output = %q", out)
	}

	found := mustRun(t, cfg, "--source", "archive", "find", "readme")
	if !strings.Contains(found, "`ses_other`") {
		t.Errorf("archive search:\n%s", found)
	}

	mustRun(t, cfg, "forget", "ses_other")
	if out := mustRun(t, cfg, "--source", "archive", "list"); strings.Contains(out, "ses_other") {
		t.Errorf("forgotten session still listed:\n%s", out)
	}
	if _, err := run(t, cfg, "forget", "ses_other"); err == nil {
		t.Error("forgetting twice should fail")
	}
}

func TestFlagErrors(t *testing.T) {
	cfg := fixture(t)

	tests := []struct {
		name string
		args []string
	}{
		{"bad source", []string{"--source", "fax", "list"}},
		{"zero limit", []string{"find", "x", "--limit", "0"}},
		{"missing query", []string{"find"}},
		{"empty query", []string{"find", ""}},
		{"blank query", []string{"find", "   "}},
		{"missing import file", []string{"import", filepath.Join(t.TempDir(), "none.json")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, cfg, tt.args...); err == nil {
				t.Errorf("recall %v: expected an error", tt.args)
			}
		})
	}
}
