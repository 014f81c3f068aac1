package speech

import "context"

// Engine converts text into a synthesized voice note on local disk.
// Synthesize returns the path of a freshly created audio file with a
// unique name; the caller owns the file and must remove it when done.
type Engine interface {
	Synthesize(ctx context.Context, text, voice string) (string, error)
}

// Transcriber turns a local audio file into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (string, error)
}

const DefaultVoice = "alloy"

var knownVoices = map[string]bool{
	"alloy":   true,
	"echo":    true,
	"fable":   true,
	"onyx":    true,
	"nova":    true,
	"shimmer": true,
}

func IsKnownVoice(voice string) bool { return knownVoices[voice] }

// Voices returns the accepted voice identifiers.
func Voices() []string {
	out := make([]string, 0, len(knownVoices))
	for v := range knownVoices {
		out = append(out, v)
	}
	return out
}
