package provider

import (
	"context"
	"fmt"
	"os"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	"cloud.google.com/go/speech/apiv1/speechpb"
)

// GoogleSpeechTranscriber implements Transcriber using the Google Cloud
// Speech-to-Text batch Recognize API. Authentication relies on Application
// Default Credentials.
type GoogleSpeechTranscriber struct {
	client   *speech.Client
	language string
}

// NewGoogleSpeechTranscriber creates the Cloud Speech client.
func NewGoogleSpeechTranscriber(ctx context.Context, language string) (*GoogleSpeechTranscriber, error) {
	client, err := speech.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create speech client: %w", err)
	}
	if language == "" {
		language = "en-US"
	}
	return &GoogleSpeechTranscriber{client: client, language: language}, nil
}

// Close releases the underlying gRPC connection.
func (t *GoogleSpeechTranscriber) Close() error {
	return t.client.Close()
}

// Transcribe sends the audio file content for batch recognition.
// Encoding is left unspecified so the service detects it from the container
// header (WAV/FLAC).
func (t *GoogleSpeechTranscriber) Transcribe(ctx context.Context, path string) (*Transcription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, providerErr("gspeech", 0, fmt.Errorf("read audio: %w", err))
	}

	resp, err := t.client.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:     speechpb.RecognitionConfig_ENCODING_UNSPECIFIED,
			LanguageCode: t.language,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: data},
		},
	})
	if err != nil {
		return nil, providerErr("gspeech", 0, err)
	}

	var parts []string
	language := t.language
	for _, result := range resp.Results {
		if len(result.Alternatives) == 0 {
			continue
		}
		parts = append(parts, strings.TrimSpace(result.Alternatives[0].Transcript))
		if result.LanguageCode != "" {
			language = result.LanguageCode
		}
	}

	return &Transcription{
		Text:     strings.Join(parts, " "),
		Language: language,
	}, nil
}
