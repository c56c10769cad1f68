package main

import "testing"

func TestStatusReportsToolsAndQueue(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"status"}, env.configPath)
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	requireContains(t, out, "External tools:")
	requireContains(t, out, "Kokoro TTS")
	requireContains(t, out, "faster-whisper")
	requireContains(t, out, "Script store:")
	requireContains(t, out, "local queue")
	requireContains(t, out, "Queue:")
}

func TestTestNotifyRequiresTopic(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"test-notify"}, env.configPath); err == nil {
		t.Fatal("expected test-notify to fail without a topic")
	}
}
