package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/storyreel/pkg/adapters/logger"
	"github.com/user/storyreel/pkg/storyboard"
	"github.com/user/storyreel/pkg/wavfile"
)

type captured struct {
	path   string
	key    string
	body   map[string]any
	called int32
}

func newServer(t *testing.T, c *captured, status int, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&c.called, 1)
		c.path = r.URL.Path
		c.key = r.Header.Get("x-goog-api-key")
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &c.body)
		w.WriteHeader(status)
		io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func inlineReply(mimeType string, data []byte) string {
	return `{"candidates":[{"content":{"parts":[{"text":"ok"},{"inlineData":{"mimeType":"` + mimeType +
		`","data":"` + base64.StdEncoding.EncodeToString(data) + `"}}]}}]}`
}

func TestGenerateImage(t *testing.T) {
	var c captured
	srv := newServer(t, &c, http.StatusOK, inlineReply("image/png", []byte("PNGDATA")))
	client := New(Config{APIKey: "k", BaseURL: srv.URL}, logger.NewNoop())

	asset, err := client.GenerateImage(context.Background(), "a lighthouse", "Photorealistic", "9:16")
	if err != nil {
		t.Fatalf("GenerateImage failed: %v", err)
	}
	if string(asset.Data) != "PNGDATA" || asset.MimeType != "image/png" {
		t.Errorf("unexpected asset %q %s", asset.Data, asset.MimeType)
	}
	if c.path != "/models/gemini-2.5-flash-image:generateContent" {
		t.Errorf("unexpected path %s", c.path)
	}
	if c.key != "k" {
		t.Errorf("expected API key header, got %q", c.key)
	}

	text := c.body["contents"].([]any)[0].(map[string]any)["parts"].([]any)[0].(map[string]any)["text"]
	if text != "High quality cinematic Photorealistic, a lighthouse" {
		t.Errorf("unexpected prompt %v", text)
	}
	ratio := c.body["generationConfig"].(map[string]any)["imageConfig"].(map[string]any)["aspectRatio"]
	if ratio != "9:16" {
		t.Errorf("unexpected aspect ratio %v", ratio)
	}
}

func TestGenerateNarrationAudio_WrapsPCM(t *testing.T) {
	var c captured
	pcm := make([]byte, 16000) // 0.5s at 16kHz
	srv := newServer(t, &c, http.StatusOK, inlineReply("audio/L16;codec=pcm;rate=16000", pcm))
	client := New(Config{APIKey: "k", BaseURL: srv.URL}, logger.NewNoop())

	asset, err := client.GenerateNarrationAudio(context.Background(), "Bom dia", storyboard.VoicePuck)
	if err != nil {
		t.Fatalf("GenerateNarrationAudio failed: %v", err)
	}
	if asset.MimeType != "audio/wav" {
		t.Errorf("expected audio/wav, got %s", asset.MimeType)
	}
	d, err := wavfile.Duration(asset.Data)
	if err != nil || d != 500*time.Millisecond {
		t.Errorf("expected 500ms WAV, got %v (%v)", d, err)
	}

	cfg := c.body["generationConfig"].(map[string]any)
	voice := cfg["speechConfig"].(map[string]any)["voiceConfig"].(map[string]any)["prebuiltVoiceConfig"].(map[string]any)["voiceName"]
	if voice != "Puck" {
		t.Errorf("expected voice Puck, got %v", voice)
	}
	if mods := cfg["responseModalities"].([]any); len(mods) != 1 || mods[0] != "AUDIO" {
		t.Errorf("unexpected modalities %v", mods)
	}
	text := c.body["contents"].([]any)[0].(map[string]any)["parts"].([]any)[0].(map[string]any)["text"].(string)
	if !strings.HasPrefix(text, "Diga com naturalidade e clareza: ") || !strings.HasSuffix(text, "Bom dia") {
		t.Errorf("unexpected prompt %q", text)
	}
}

func TestPreviewVoice(t *testing.T) {
	var c captured
	srv := newServer(t, &c, http.StatusOK, inlineReply("audio/L16", make([]byte, 480)))
	client := New(Config{APIKey: "k", BaseURL: srv.URL}, logger.NewNoop())

	if _, err := client.PreviewVoice(context.Background(), storyboard.VoiceZephyr); err != nil {
		t.Fatalf("PreviewVoice failed: %v", err)
	}
	if c.path != "/models/gemini-2.5-flash-preview-tts:generateContent" {
		t.Errorf("unexpected path %s", c.path)
	}
}

func TestMissingAPIKey_NoRequest(t *testing.T) {
	var c captured
	srv := newServer(t, &c, http.StatusOK, "{}")
	client := New(Config{APIKey: "  ", BaseURL: srv.URL}, logger.NewNoop())

	_, err := client.GenerateImage(context.Background(), "x", "y", "16:9")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
	if atomic.LoadInt32(&c.called) != 0 {
		t.Error("expected no network call without an API key")
	}
}

func TestAPIError(t *testing.T) {
	var c captured
	srv := newServer(t, &c, http.StatusTooManyRequests, `{"error":{"message":"quota"}}`)
	client := New(Config{APIKey: "k", BaseURL: srv.URL}, logger.NewNoop())

	_, err := client.GenerateNarrationAudio(context.Background(), "x", storyboard.VoiceKore)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusTooManyRequests || !strings.Contains(apiErr.Body, "quota") {
		t.Errorf("unexpected APIError %+v", apiErr)
	}
	if atomic.LoadInt32(&c.called) != 1 {
		t.Errorf("expected exactly one request (no retries), got %d", c.called)
	}
}

func TestNoInlineData(t *testing.T) {
	var c captured
	srv := newServer(t, &c, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"refused"}]}}]}`)
	client := New(Config{APIKey: "k", BaseURL: srv.URL}, logger.NewNoop())

	if _, err := client.GenerateImage(context.Background(), "x", "y", "16:9"); !errors.Is(err, ErrNoInlineData) {
		t.Errorf("expected ErrNoInlineData, got %v", err)
	}
}

func TestSampleRate(t *testing.T) {
	tests := map[string]int{
		"audio/L16;codec=pcm;rate=24000": 24000,
		"audio/L16; rate=16000":          16000,
		"audio/L16":                      24000,
		"audio/L16;rate=abc":             24000,
	}
	for mime, want := range tests {
		if got := sampleRate(mime); got != want {
			t.Errorf("sampleRate(%q) = %d, want %d", mime, got, want)
		}
	}
}
