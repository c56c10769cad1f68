package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeScriptFile(t *testing.T, dir, name, text string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestQueueAddListAndStatus(t *testing.T) {
	env := setupCLITestEnv(t)
	script := writeScriptFile(t, env.baseDir, "story.txt", "A tiny story about lighthouses.")

	out, _, err := runCLI(t, []string{"queue", "add", script, "--id", "story-1"}, env.configPath)
	if err != nil {
		t.Fatalf("queue add: %v", err)
	}
	requireContains(t, out, "Queued script story-1")

	// duplicate ids are rejected
	if _, _, err := runCLI(t, []string{"queue", "add", script, "--id", "story-1"}, env.configPath); err == nil {
		t.Fatal("expected duplicate add to fail")
	}

	out, _, err = runCLI(t, []string{"queue", "list"}, env.configPath)
	if err != nil {
		t.Fatalf("queue list: %v", err)
	}
	requireContains(t, out, "story-1")
	requireContains(t, out, "Pending")

	out, _, err = runCLI(t, []string{"queue", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "Pending")
	requireContains(t, out, "1")
}

func TestQueueAddRejectsEmptyScript(t *testing.T) {
	env := setupCLITestEnv(t)
	script := writeScriptFile(t, env.baseDir, "empty.txt", "   \n")

	if _, _, err := runCLI(t, []string{"queue", "add", script}, env.configPath); err == nil {
		t.Fatal("expected empty script to be rejected")
	}
}

func TestQueueClearRequiresForce(t *testing.T) {
	env := setupCLITestEnv(t)
	script := writeScriptFile(t, env.baseDir, "story.txt", "Another story.")

	if _, _, err := runCLI(t, []string{"queue", "add", script}, env.configPath); err != nil {
		t.Fatalf("queue add: %v", err)
	}
	if _, _, err := runCLI(t, []string{"queue", "clear"}, env.configPath); err == nil {
		t.Fatal("expected clear without --force to fail")
	}

	out, _, err := runCLI(t, []string{"queue", "clear", "--force"}, env.configPath)
	if err != nil {
		t.Fatalf("queue clear --force: %v", err)
	}
	requireContains(t, out, "Removed 1")

	out, _, err = runCLI(t, []string{"queue", "status"}, env.configPath)
	if err != nil {
		t.Fatalf("queue status: %v", err)
	}
	requireContains(t, out, "Queue is empty")
}

func TestQueueListRejectsUnknownStatus(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"queue", "list", "--status", "bogus"}, env.configPath); err == nil {
		t.Fatal("expected unknown status filter to fail")
	}
}
