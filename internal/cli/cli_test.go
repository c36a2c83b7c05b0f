package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pankajredekar/stockroom/internal/utils"
)

// setupCLI points the commands at a fresh sqlite database and captures their output.
func setupCLI(t *testing.T) (dir string, out *bytes.Buffer) {
	t.Helper()
	dir = t.TempDir()
	t.Setenv("DATABASE_URL", "sqlite://"+filepath.Join(dir, "stockroom.db"))
	t.Setenv("REDIS_URL", "")
	t.Setenv("TELEGRAM_TOKEN", "")

	out = &bytes.Buffer{}
	prevOut, prevExit := utils.Output, exit
	utils.Output = out
	exit = func(msg string, args ...interface{}) {
		t.Fatalf("command failed: "+msg, args...)
	}
	t.Cleanup(func() {
		utils.Output = prevOut
		exit = prevExit
	})
	return dir, out
}

func run(t *testing.T, out *bytes.Buffer, args ...string) string {
	t.Helper()
	out.Reset()
	rootCmd.SetArgs(args)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("stockroom %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func TestCommandsEndToEnd(t *testing.T) {
	dir, out := setupCLI(t)
	cfgPath := filepath.Join(dir, "stockroom.yml")
	env := filepath.Join(dir, "missing.env")

	got := run(t, out, "init", "--config", cfgPath, "--env-file", env)
	if !strings.Contains(got, "Initialized stockroom") {
		t.Fatalf("init output: %q", got)
	}
	if !utils.FileExists(cfgPath) {
		t.Fatal("init did not write the config file")
	}

	got = run(t, out, "migrate", "--config", cfgPath, "--env-file", env)
	if !strings.Contains(got, "Applied 3 migration(s)") {
		t.Errorf("migrate output: %q", got)
	}
	got = run(t, out, "migrate", "--config", cfgPath, "--env-file", env)
	if !strings.Contains(got, "No pending migrations") {
		t.Errorf("second migrate output: %q", got)
	}

	got = run(t, out, "show", "--config", cfgPath, "--env-file", env, "--schema")
	for _, want := range []string{"Table: products", "idx_products_barcode", "Database schema matches the migrations"} {
		if !strings.Contains(got, want) {
			t.Errorf("show output missing %q:\n%s", want, got)
		}
	}

	got = run(t, out, "seed", "--config", cfgPath, "--env-file", env)
	if !strings.Contains(got, "Added 9 categories and 7 products") {
		t.Errorf("seed output: %q", got)
	}

	got = run(t, out, "scan", "4567890123456", "--action", "decrease", "--quantity", "5", "--config", cfgPath, "--env-file", env)
	if !strings.Contains(got, "(30 → 25)") {
		t.Errorf("scan output: %q", got)
	}

	got = run(t, out, "stats", "--config", cfgPath, "--env-file", env)
	if !strings.Contains(got, "Stock value:   2248.92 €") {
		t.Errorf("stats output: %q", got)
	}

	csvPath := filepath.Join(dir, "products.csv")
	run(t, out, "export", "csv", "--output", csvPath, "--config", cfgPath, "--env-file", env)
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if lines := strings.Count(string(data), "\n"); lines != 8 {
		t.Errorf("expected 8 csv lines, got %d", lines)
	}

	sheetPath := filepath.Join(dir, "cables.svg")
	got = run(t, out, "products", "labels", "--category", "Cable", "--output", sheetPath, "--config", cfgPath, "--env-file", env)
	if !strings.Contains(got, "Wrote 2 label(s)") {
		t.Errorf("labels output: %q", got)
	}
	sheet, err := os.ReadFile(sheetPath)
	if err != nil {
		t.Fatalf("read label sheet: %v", err)
	}
	if n := strings.Count(string(sheet), "<svg x="); n != 2 {
		t.Errorf("expected 2 labels on the sheet, got %d", n)
	}

	got = run(t, out, "rollback", "3", "--config", cfgPath, "--env-file", env)
	if !strings.Contains(got, "Rolled back 3 migration(s)") {
		t.Errorf("rollback output: %q", got)
	}
}

func TestInitKeepsExistingConfig(t *testing.T) {
	dir, out := setupCLI(t)
	cfgPath := filepath.Join(dir, "stockroom.yml")
	if err := os.WriteFile(cfgPath, []byte("stock:\n  low_threshold: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	got := run(t, out, "init", "--config", cfgPath, "--env-file", filepath.Join(dir, "missing.env"))
	if !strings.Contains(got, "already exists") {
		t.Errorf("init output: %q", got)
	}
	data, _ := os.ReadFile(cfgPath)
	if string(data) != "stock:\n  low_threshold: 3\n" {
		t.Errorf("config was overwritten: %q", data)
	}
}
