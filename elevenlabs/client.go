package elevenlabs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	BaseURL      = "https://api.elevenlabs.io/v1"
	DefaultModel = "eleven_multilingual_v2"
)

type Proxy struct {
	Server   string
	Username string
	Password string
}

type TTSRequest struct {
	Text          string         `json:"text"`
	ModelID       string         `json:"model_id"`
	VoiceSettings map[string]any `json:"voice_settings"`
}

// Voice is one entry of the voice library.
type Voice struct {
	VoiceID  string `json:"voice_id"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// Client talks to the ElevenLabs text-to-speech API.
type Client struct {
	APIKey  string
	BaseURL string
	ModelID string
	HTTP    *http.Client
}

func NewClient(apiKey string, proxy *Proxy) *Client {
	client := &http.Client{Timeout: 60 * time.Second}

	if proxy != nil && proxy.Server != "" {
		proxyURL, err := url.Parse("http://" + proxy.Server)
		if err != nil {
			log.Warn().Err(err).Msg("invalid proxy server format, connecting directly")
		} else {
			if proxy.Username != "" {
				proxyURL.User = url.UserPassword(proxy.Username, proxy.Password)
			}
			client.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
			log.Info().Str("proxy", proxy.Server).Msg("using proxy")
		}
	}

	return &Client{
		APIKey:  apiKey,
		BaseURL: BaseURL,
		ModelID: DefaultModel,
		HTTP:    client,
	}
}

// TextToSpeech returns MPEG audio for text spoken by voiceID.
func (c *Client) TextToSpeech(ctx context.Context, text, voiceID string) ([]byte, error) {
	requestBody := TTSRequest{
		Text:    text,
		ModelID: c.ModelID,
		VoiceSettings: map[string]any{
			"stability":        0.5,
			"similarity_boost": 0.75,
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/text-to-speech/%s", c.BaseURL, url.PathEscape(voiceID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	return audioData, nil
}

func (c *Client) GetVoices(ctx context.Context) ([]Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/voices", nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("xi-api-key", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("API error (%d): %s", resp.StatusCode, string(body))
	}

	var result struct {
		Voices []Voice `json:"voices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	return result.Voices, nil
}
