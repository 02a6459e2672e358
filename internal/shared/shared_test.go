package shared

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	t.Run("ids are unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			id := GenerateID()
			if seen[id] {
				t.Fatalf("duplicate id generated: %s", id)
			}
			seen[id] = true
		}
	})

	t.Run("id looks like a uuid", func(t *testing.T) {
		id := GenerateID()
		if len(id) != 36 || strings.Count(id, "-") != 4 {
			t.Errorf("unexpected id shape: %s", id)
		}
	})
}

func TestGenerateState(t *testing.T) {
	t.Run("states are unique", func(t *testing.T) {
		first, err := GenerateState()
		if err != nil {
			t.Fatalf("failed to generate state: %v", err)
		}
		second, err := GenerateState()
		if err != nil {
			t.Fatalf("failed to generate state: %v", err)
		}
		if first == second {
			t.Error("expected distinct state tokens")
		}
	})

	t.Run("state is URL safe", func(t *testing.T) {
		state, err := GenerateState()
		if err != nil {
			t.Fatalf("failed to generate state: %v", err)
		}
		if strings.ContainsAny(state, "+/=") {
			t.Errorf("expected URL-safe encoding, got %q", state)
		}
		if len(state) < 32 {
			t.Errorf("state looks too short: %q", state)
		}
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("writes to the given writer", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf)

		logger.Info("hello")
		if !strings.Contains(buf.String(), "hello") {
			t.Errorf("expected log output to contain message, got %q", buf.String())
		}
	})

	t.Run("nil writer defaults to stderr", func(t *testing.T) {
		logger := NewLogger(nil)
		if logger == nil {
			t.Fatal("expected a logger")
		}
	})
}

func TestBrowserCommand(t *testing.T) {
	const url = "https://moodmix.app/app/login.html"

	t.Run("picks the platform launcher", func(t *testing.T) {
		t.Setenv("BROWSER", "")

		cases := []struct {
			goos string
			want []string
		}{
			{"darwin", []string{"open", url}},
			{"linux", []string{"xdg-open", url}},
			{"windows", []string{"cmd", "/c", "start", url}},
		}

		for _, tc := range cases {
			cmd, err := browserCommand(tc.goos, url)
			if err != nil {
				t.Fatalf("browserCommand(%s) failed: %v", tc.goos, err)
			}
			if strings.Join(cmd.Args, " ") != strings.Join(tc.want, " ") {
				t.Errorf("browserCommand(%s) = %v, want %v", tc.goos, cmd.Args, tc.want)
			}
		}
	})

	t.Run("BROWSER overrides the platform default", func(t *testing.T) {
		t.Setenv("BROWSER", "firefox --new-tab")

		cmd, err := browserCommand("linux", url)
		if err != nil {
			t.Fatalf("browserCommand failed: %v", err)
		}
		want := []string{"firefox", "--new-tab", url}
		if strings.Join(cmd.Args, " ") != strings.Join(want, " ") {
			t.Errorf("expected override args %v, got %v", want, cmd.Args)
		}
	})

	t.Run("rejects unknown platforms", func(t *testing.T) {
		t.Setenv("BROWSER", "")

		if _, err := browserCommand("plan9", url); err == nil {
			t.Error("expected an error for an unsupported platform")
		}
	})
}

func TestMarshalJSON(t *testing.T) {
	payload := map[string]string{"mode": "calm"}

	t.Run("compact", func(t *testing.T) {
		data, err := MarshalJSON(payload, false)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if string(data) != `{"mode":"calm"}` {
			t.Errorf("unexpected output: %s", data)
		}
	})

	t.Run("indented", func(t *testing.T) {
		data, err := MarshalJSON(payload, true)
		if err != nil {
			t.Fatalf("marshal failed: %v", err)
		}
		if !strings.Contains(string(data), "\n") {
			t.Errorf("expected indented output, got %s", data)
		}
	})
}
