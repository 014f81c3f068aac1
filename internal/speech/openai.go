package speech

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sashabaranov/go-openai"
)

// OpenAIEngine synthesizes speech via the OpenAI audio API and
// transcribes voice notes via Whisper.
type OpenAIEngine struct {
	client *openai.Client
}

func NewOpenAI(apiKey string) *OpenAIEngine {
	return &OpenAIEngine{client: openai.NewClient(apiKey)}
}

func (e *OpenAIEngine) Synthesize(ctx context.Context, text, voice string) (string, error) {
	resp, err := e.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return "", fmt.Errorf("failed to synthesize speech: %w", err)
	}
	defer func() {
		_ = resp.Close()
	}()

	f, err := os.CreateTemp("", "tts-*.mp3")
	if err != nil {
		return "", fmt.Errorf("failed to create temp audio file: %w", err)
	}
	if _, err := io.Copy(f, resp); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to write audio file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("failed to close audio file: %w", err)
	}
	return f.Name(), nil
}

func (e *OpenAIEngine) Transcribe(ctx context.Context, audioPath string) (string, error) {
	resp, err := e.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioPath,
	})
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}
	return resp.Text, nil
}
