// Package gemini is a REST client for the Gemini image and speech models.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/user/storyreel/pkg/ports"
	"github.com/user/storyreel/pkg/storyboard"
	"github.com/user/storyreel/pkg/wavfile"
)

const (
	// DefaultBaseURL is the public Generative Language endpoint.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	ImageModel  = "gemini-2.5-flash-image"
	SpeechModel = "gemini-2.5-flash-preview-tts"
)

// Config configures the client.
type Config struct {
	APIKey     string
	BaseURL    string        // Default: DefaultBaseURL
	Timeout    time.Duration // Per request (default: 120s)
	HTTPClient *http.Client
}

// Client implements ports.GenerativeClient.
type Client struct {
	apiKey  string
	baseURL string
	http    *http.Client
	logger  ports.Logger
}

// New creates a client.
func New(cfg Config, logger ports.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 120 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    hc,
		logger:  logger.WithComponent("gemini"),
	}
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseModalities []string      `json:"responseModalities,omitempty"`
	ImageConfig        *imageConfig  `json:"imageConfig,omitempty"`
	SpeechConfig       *speechConfig `json:"speechConfig,omitempty"`
}

type imageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type speechConfig struct {
	VoiceConfig voiceConfig `json:"voiceConfig"`
}

type voiceConfig struct {
	PrebuiltVoiceConfig prebuiltVoiceConfig `json:"prebuiltVoiceConfig"`
}

type prebuiltVoiceConfig struct {
	VoiceName string `json:"voiceName"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

// GenerateImage renders prompt in style at aspectRatio.
func (c *Client) GenerateImage(ctx context.Context, prompt, style, aspectRatio string) (ports.Asset, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: ImagePrompt(prompt, style)}}}},
		GenerationConfig: &generationConfig{
			ImageConfig: &imageConfig{AspectRatio: aspectRatio},
		},
	}

	data, mimeType, err := c.generate(ctx, ImageModel, req)
	if err != nil {
		return ports.Asset{}, err
	}
	c.logger.Debug("Image generated: %d bytes (%s)", len(data), mimeType)
	return ports.Asset{Data: data, MimeType: mimeType}, nil
}

// GenerateNarrationAudio speaks text with voice and returns WAV audio.
func (c *Client) GenerateNarrationAudio(ctx context.Context, text string, voice storyboard.Voice) (ports.Asset, error) {
	return c.speak(ctx, NarrationPrompt(text), voice)
}

// PreviewVoice returns a short WAV sample of voice.
func (c *Client) PreviewVoice(ctx context.Context, voice storyboard.Voice) (ports.Asset, error) {
	return c.speak(ctx, PreviewText(voice), voice)
}

func (c *Client) speak(ctx context.Context, text string, voice storyboard.Voice) (ports.Asset, error) {
	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: text}}}},
		GenerationConfig: &generationConfig{
			ResponseModalities: []string{"AUDIO"},
			SpeechConfig: &speechConfig{
				VoiceConfig: voiceConfig{PrebuiltVoiceConfig: prebuiltVoiceConfig{VoiceName: string(voice)}},
			},
		},
	}

	pcm, mimeType, err := c.generate(ctx, SpeechModel, req)
	if err != nil {
		return ports.Asset{}, err
	}
	wav := wavfile.Encode(pcm, wavfile.Format{SampleRate: sampleRate(mimeType), Channels: 1, BitsPerSample: 16})
	c.logger.Debug("Speech generated with voice %s: %d bytes PCM (%s)", voice, len(pcm), mimeType)
	return ports.Asset{Data: wav, MimeType: "audio/wav"}, nil
}

// generate posts req to model and returns the first inline data part.
func (c *Client) generate(ctx context.Context, model string, req generateRequest) ([]byte, string, error) {
	if c.apiKey == "" {
		return nil, "", ErrMissingAPIKey
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", &APIError{Status: resp.StatusCode, Body: string(respBody)}
	}

	var out generateResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, "", fmt.Errorf("parse response: %w", err)
	}
	for _, cand := range out.Candidates {
		for _, p := range cand.Content.Parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			data, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return nil, "", fmt.Errorf("decode inline data: %w", err)
			}
			return data, p.InlineData.MimeType, nil
		}
	}
	return nil, "", ErrNoInlineData
}

// ImagePrompt builds the image generation prompt.
func ImagePrompt(prompt, style string) string {
	return fmt.Sprintf("High quality cinematic %s, %s", style, prompt)
}

// NarrationPrompt builds the speech prompt for scene narration.
func NarrationPrompt(text string) string {
	return "Diga com naturalidade e clareza: " + text
}

// PreviewText is spoken by PreviewVoice.
func PreviewText(voice storyboard.Voice) string {
	return fmt.Sprintf("Esta é uma prévia da voz %s.", voice)
}

// sampleRate parses "audio/L16;codec=pcm;rate=24000".
func sampleRate(mimeType string) int {
	for _, param := range strings.Split(mimeType, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(param), "=")
		if ok && strings.EqualFold(k, "rate") {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				return n
			}
		}
	}
	return wavfile.DefaultFormat.SampleRate
}

// Ensure Client implements ports.GenerativeClient
var _ ports.GenerativeClient = (*Client)(nil)
