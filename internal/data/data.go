package data

import (
	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/repo"
)

// Repositories contains all repositories
type Repositories struct {
	Transcript repo.TranscriptRepo
	Responder  repo.ResponderRepo
}

// NewRepositories creates all repositories. The OpenAI responder is used
// only when an API key is configured; otherwise replies stay scripted.
func NewRepositories(transcriptDBPath, openaiAPIKey, openaiModel string) (*Repositories, error) {
	transcriptRepo, err := NewTranscriptRepo(transcriptDBPath)
	if err != nil {
		return nil, err
	}

	responder := NewScriptedResponder()
	if openaiAPIKey != "" {
		responder = NewOpenAIResponder(openaiAPIKey, openaiModel)
	}

	return &Repositories{
		Transcript: transcriptRepo,
		Responder:  responder,
	}, nil
}
