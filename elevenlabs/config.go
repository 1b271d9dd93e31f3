package elevenlabs

import "os"

// DefaultVoiceID is used when VOICE_ID is unset.
const DefaultVoiceID = "j9jfwdrw7BRfcR43Qohk"

// Config carries the API credentials and voice.
type Config struct {
	APIKey  string
	VoiceID string
	Proxy   *Proxy
}

// ConfigFromEnv reads ELEVENLABS_API_KEY, VOICE_ID and the PROXY_* variables.
// The returned Config has an empty APIKey when narration is not configured.
func ConfigFromEnv() Config {
	config := Config{
		APIKey:  os.Getenv("ELEVENLABS_API_KEY"),
		VoiceID: os.Getenv("VOICE_ID"),
	}
	if config.VoiceID == "" {
		config.VoiceID = DefaultVoiceID
	}
	if server := os.Getenv("PROXY_SERVER"); server != "" {
		config.Proxy = &Proxy{
			Server:   server,
			Username: os.Getenv("PROXY_USERNAME"),
			Password: os.Getenv("PROXY_PASSWORD"),
		}
	}
	return config
}

// Enabled reports whether an API key is present.
func (c Config) Enabled() bool {
	return c.APIKey != ""
}

// NewNarrator builds a narrator backed by a live client.
func (c Config) NewNarrator(concurrency int) *Narrator {
	return &Narrator{
		Speaker:     NewClient(c.APIKey, c.Proxy),
		VoiceID:     c.VoiceID,
		Concurrency: concurrency,
	}
}
