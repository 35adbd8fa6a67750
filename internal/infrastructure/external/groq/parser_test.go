package groq

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
)

func TestParseReplyWellFormed(t *testing.T) {
	raw := `RESPONSE: ¡Hola! ¿Cómo estás hoy?
ANALYSIS: {"feedback": "Gunakan tanda tanya pembuka", "detectedLevel": "beginner", "vocabularyUsed": ["hola"], "grammarScore": 80, "pointsEarned": 5}`

	reply := ParseReply(raw)

	assert.Equal(t, "¡Hola! ¿Cómo estás hoy?", reply.Response)
	require.NotNil(t, reply.Analysis)
	assert.Equal(t, "Gunakan tanda tanya pembuka", reply.Analysis.Feedback)
	assert.Equal(t, session.LevelBeginner, reply.Analysis.DetectedLevel)
	assert.Equal(t, []string{"hola"}, reply.Analysis.VocabularyUsed)
	require.NotNil(t, reply.Analysis.GrammarScore)
	assert.Equal(t, 80, *reply.Analysis.GrammarScore)
	require.NotNil(t, reply.Analysis.PointsEarned)
	assert.Equal(t, 5, *reply.Analysis.PointsEarned)
}

func TestParseReplyMissingMarkers(t *testing.T) {
	reply := ParseReply("Just a plain reply with no structure at all.")

	assert.Equal(t, "Just a plain reply with no structure at all.", reply.Response)
	assert.Nil(t, reply.Analysis)
}

func TestParseReplyMalformedAnalysis(t *testing.T) {
	raw := `RESPONSE: Bonjour!
ANALYSIS: {not valid json`

	reply := ParseReply(raw)

	assert.Equal(t, "Bonjour!", reply.Response)
	assert.Nil(t, reply.Analysis)
}

func TestParseReplyAnalysisWithSurroundingProse(t *testing.T) {
	raw := `RESPONSE: Guten Tag!
ANALYSIS: Here is my analysis: {"feedback": "Bagus!", "grammarScore": 90} hope it helps`

	reply := ParseReply(raw)

	require.NotNil(t, reply.Analysis)
	assert.Equal(t, "Bagus!", reply.Analysis.Feedback)
	require.NotNil(t, reply.Analysis.GrammarScore)
	assert.Equal(t, 90, *reply.Analysis.GrammarScore)
}

func TestParseReplyDropsInvalidFields(t *testing.T) {
	raw := `RESPONSE: Ciao!
ANALYSIS: {"feedback": "ok", "detectedLevel": "guru", "grammarScore": 250, "pointsEarned": -3}`

	reply := ParseReply(raw)

	require.NotNil(t, reply.Analysis)
	assert.Empty(t, reply.Analysis.DetectedLevel)
	assert.Nil(t, reply.Analysis.GrammarScore)
	assert.Nil(t, reply.Analysis.PointsEarned)
	assert.Equal(t, "ok", reply.Analysis.Feedback)
}

func TestParseReplyAnalysisOnly(t *testing.T) {
	raw := `The tutor forgot the RESPONSE marker.
ANALYSIS: {"feedback": "tip"}`

	reply := ParseReply(raw)

	assert.Equal(t, "The tutor forgot the RESPONSE marker.", reply.Response)
	require.NotNil(t, reply.Analysis)
	assert.Equal(t, "tip", reply.Analysis.Feedback)
}

func TestSystemPromptContents(t *testing.T) {
	s := session.NewSession("u1", time.Now())
	s.Language = session.LanguageSpanish
	s.Mode = session.ModeStructured
	s.ProficiencyLevel = session.LevelIntermediate

	prompt := SystemPrompt(s)

	assert.Contains(t, prompt, "Spanish (Español)")
	assert.Contains(t, prompt, "intermediate")
	assert.Contains(t, prompt, "structured mode")
	assert.Contains(t, prompt, "RESPONSE:")
	assert.Contains(t, prompt, "ANALYSIS:")
	assert.Contains(t, prompt, "Bahasa Indonesia")
}

func TestBuildMessagesOrder(t *testing.T) {
	s := session.NewSession("u1", time.Now())
	s.RecordMessage("hola", "¡hola!")

	msgs := buildMessages(s, "¿qué tal?")

	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].Role)
	assert.Equal(t, "user", msgs[1].Role)
	assert.Equal(t, "hola", msgs[1].Content)
	assert.Equal(t, "assistant", msgs[2].Role)
	assert.Equal(t, "user", msgs[3].Role)
	assert.Equal(t, "¿qué tal?", msgs[3].Content)
}
