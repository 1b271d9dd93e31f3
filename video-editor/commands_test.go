package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := NewRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func writePassage(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestPhrasesCommand(t *testing.T) {
	path := writePassage(t, "story.txt", "Mark's world crumbled. A failing grade stared back.")
	out, err := runCLI(t, "phrases", path)
	if err != nil {
		t.Fatalf("phrases error = %v", err)
	}
	want := "1\t1\tMark's world crumbled\n2\t2\tA failing grade stared back\n"
	if out != want {
		t.Errorf("phrases output = %q, want %q", out, want)
	}
}

func TestPhrasesCommandJSONPassage(t *testing.T) {
	path := writePassage(t, "story.json", `{"story": "One line only."}`)
	out, err := runCLI(t, "phrases", "--json", path)
	if err != nil {
		t.Fatalf("phrases error = %v", err)
	}
	if !strings.Contains(out, `"content": "One line only"`) {
		t.Errorf("json output = %s", out)
	}
}

func TestSRTCommand(t *testing.T) {
	path := writePassage(t, "story.txt", "Mark's world crumbled. A failing grade stared back.")
	out, err := runCLI(t, "srt", path, "--duration", "20")
	if err != nil {
		t.Fatalf("srt error = %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:10,000\nMark's world crumbled\n\n" +
		"2\n00:00:10,000 --> 00:00:20,000\nA failing grade stared back\n\n"
	if out != want {
		t.Errorf("srt output = %q, want %q", out, want)
	}
}

func TestSRTCommandToFile(t *testing.T) {
	path := writePassage(t, "story.txt", "Hello there.")
	dest := filepath.Join(t.TempDir(), "out.srt")
	if _, err := runCLI(t, "srt", path, "--duration", "2", "-o", dest); err != nil {
		t.Fatalf("srt error = %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "1\n00:00:00,000 --> 00:00:02,000\nHello there\n\n" {
		t.Errorf("file = %q", data)
	}
}

func TestSRTCommandNeedsTiming(t *testing.T) {
	path := writePassage(t, "story.txt", "Hello there.")
	if _, err := runCLI(t, "srt", path); err == nil {
		t.Error("expected an error without --duration or --audio")
	}
	if _, err := runCLI(t, "srt", path, "--duration", "0"); err == nil {
		t.Error("expected an error for a zero duration")
	}
}

func TestFilterCommand(t *testing.T) {
	path := writePassage(t, "story.txt", "Mark's world crumbled. A failing grade stared back.")
	out, err := runCLI(t, "filter", path, "--duration", "20")
	if err != nil {
		t.Fatalf("filter error = %v", err)
	}
	if strings.Count(out, "drawtext=") != 2 || !strings.Contains(out, "enable='gte(t,10)*lt(t,20)'") {
		t.Errorf("filter output = %q", out)
	}

	out, err = runCLI(t, "filter", path, "--duration", "20", "--complex")
	if err != nil {
		t.Fatalf("filter --complex error = %v", err)
	}
	if !strings.HasPrefix(out, "[0:v]drawtext=") || !strings.HasSuffix(strings.TrimSpace(out), "[v]") {
		t.Errorf("filter --complex output = %q", out)
	}
}

func TestRenderCommandRequiresFlags(t *testing.T) {
	if _, err := runCLI(t, "render", "--video", "in.mp4"); err == nil {
		t.Error("expected an error without --text")
	}
}

func TestVoicesCommandNeedsKey(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "")
	if _, err := runCLI(t, "voices"); err == nil || !strings.Contains(err.Error(), "ELEVENLABS_API_KEY") {
		t.Errorf("voices error = %v, want missing key", err)
	}
}
