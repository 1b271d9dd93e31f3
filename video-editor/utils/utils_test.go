package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestParseProbeDuration(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		want    float64
		wantErr bool
	}{
		{"format duration", `{"format": {"duration": "12.345000"}, "streams": []}`, 12.345, false},
		{"longest stream", `{"format": {}, "streams": [{"codec_type": "video", "duration": "9.5"}, {"codec_type": "audio", "duration": "10.25"}]}`, 10.25, false},
		{"no duration", `{"format": {"duration": "N/A"}, "streams": [{"codec_type": "audio"}]}`, 0, true},
		{"garbage", `not json`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseProbeDuration([]byte(tt.data))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseProbeDuration() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseProbeDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDurationOrDefault(t *testing.T) {
	d, fallback := DurationOrDefault(filepath.Join(t.TempDir(), "missing.mp3"))
	if !fallback || d != DefaultDuration {
		t.Errorf("DurationOrDefault() = %v, %v; want %v, true", d, fallback, DefaultDuration)
	}
}

func TestUnwrapPassage(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"plain", "  Once upon a time.\n", "Once upon a time."},
		{"story field", `{"story": "The end.", "description": "ignored"}`, "The end."},
		{"description field", `{"title": "x", "description": "Only this."}`, "Only this."},
		{"json without text", `{"title": "x"}`, `{"title": "x"}`},
		{"broken json", `{"story": `, `{"story": `},
	}
	for _, tt := range tests {
		if got := UnwrapPassage([]byte(tt.in)); got != tt.want {
			t.Errorf("%s: UnwrapPassage() = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestReadPassage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "story.json")
	if err := os.WriteFile(path, []byte(`{"story": "Mark's world crumbled."}`), 0644); err != nil {
		t.Fatal(err)
	}
	got, err := ReadPassage(path)
	if err != nil || got != "Mark's world crumbled." {
		t.Errorf("ReadPassage() = %q, %v", got, err)
	}
	if _, err := ReadPassage(path + ".missing"); err == nil {
		t.Error("ReadPassage() of a missing file returned no error")
	}
}

func TestCreateConcatFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "list.txt")
	if err := CreateConcatFile([]string{"/tmp/a.mp3", "/tmp/it's.mp3"}, out); err != nil {
		t.Fatalf("CreateConcatFile() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "file '/tmp/a.mp3'\nfile '/tmp/it'\\''s.mp3'\n"
	if string(data) != want {
		t.Errorf("concat file = %q, want %q", data, want)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"my video.mp4":    "my video.mp4",
		`a/b\c:d*e?.srt`:  "a_b_c_d_e_.srt",
		"  ..  ":          "untitled",
		`"quoted"<name>|`: "_quoted__name__",
	}
	for in, want := range tests {
		if got := SanitizeFilename(in); got != want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestEnsureDirectoryExistsAndCleanup(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	if err := EnsureDirectoryExists(dir); err != nil {
		t.Fatalf("EnsureDirectoryExists() error = %v", err)
	}
	if !FileExists(dir) {
		t.Fatal("directory was not created")
	}

	f := filepath.Join(dir, "tmp.txt")
	if err := os.WriteFile(f, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	CleanupTempFiles([]string{f, filepath.Join(dir, "never-existed")})
	if FileExists(f) {
		t.Error("CleanupTempFiles() left the file behind")
	}
}

func TestSetupLogger(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.InfoLevel)

	SetupLogger("debug")
	if zerolog.GlobalLevel() != zerolog.DebugLevel {
		t.Errorf("level = %v, want debug", zerolog.GlobalLevel())
	}
	SetupLogger("loud")
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("level = %v, want info for an unknown name", zerolog.GlobalLevel())
	}
}
