package elevenlabs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestTextToSpeech(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/text-to-speech/voice-1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("xi-api-key") != "secret" {
			t.Errorf("xi-api-key = %q", r.Header.Get("xi-api-key"))
		}
		var body TTSRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if body.Text != "Hello there." || body.ModelID != DefaultModel {
			t.Errorf("body = %+v", body)
		}
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3audio"))
	}))
	defer srv.Close()

	c := NewClient("secret", nil)
	c.BaseURL = srv.URL
	audio, err := c.TextToSpeech(context.Background(), "Hello there.", "voice-1")
	if err != nil {
		t.Fatalf("TextToSpeech() error = %v", err)
	}
	if string(audio) != "ID3audio" {
		t.Errorf("audio = %q", audio)
	}
}

func TestTextToSpeechAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"detail": "quota exceeded"}`, http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient("secret", nil)
	c.BaseURL = srv.URL
	_, err := c.TextToSpeech(context.Background(), "Hi.", "v")
	if err == nil || !strings.Contains(err.Error(), "429") || !strings.Contains(err.Error(), "quota exceeded") {
		t.Errorf("TextToSpeech() error = %v", err)
	}
}

func TestGetVoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/voices" {
			t.Errorf("path = %s", r.URL.Path)
		}
		w.Write([]byte(`{"voices": [{"voice_id": "a1", "name": "Frederick", "category": "premade"}]}`))
	}))
	defer srv.Close()

	c := NewClient("secret", nil)
	c.BaseURL = srv.URL
	voices, err := c.GetVoices(context.Background())
	if err != nil {
		t.Fatalf("GetVoices() error = %v", err)
	}
	if len(voices) != 1 || voices[0].VoiceID != "a1" || voices[0].Name != "Frederick" {
		t.Errorf("voices = %+v", voices)
	}
}

func TestNewClientProxy(t *testing.T) {
	c := NewClient("k", &Proxy{Server: "127.0.0.1:3128", Username: "u", Password: "p"})
	tr, ok := c.HTTP.Transport.(*http.Transport)
	if !ok || tr.Proxy == nil {
		t.Fatal("proxy transport not configured")
	}
	req, _ := http.NewRequest(http.MethodGet, "https://api.elevenlabs.io/v1/voices", nil)
	u, err := tr.Proxy(req)
	if err != nil || u.Host != "127.0.0.1:3128" || u.User.Username() != "u" {
		t.Errorf("proxy URL = %v, %v", u, err)
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("ELEVENLABS_API_KEY", "key")
	t.Setenv("VOICE_ID", "")
	t.Setenv("PROXY_SERVER", "")

	c := ConfigFromEnv()
	if !c.Enabled() || c.VoiceID != DefaultVoiceID || c.Proxy != nil {
		t.Errorf("ConfigFromEnv() = %+v", c)
	}
	n := c.NewNarrator(3)
	if n.VoiceID != DefaultVoiceID || n.Concurrency != 3 || n.Speaker == nil {
		t.Errorf("NewNarrator() = %+v", n)
	}
}
