package groq

import (
	"fmt"
	"strings"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
)

// languageNames maps language codes to the display names used in prompts.
var languageNames = map[session.Language]string{
	session.LanguageEnglish:    "English (Inggris)",
	session.LanguageSpanish:    "Spanish (Español)",
	session.LanguageFrench:     "French (Français)",
	session.LanguageGerman:     "German (Deutsch)",
	session.LanguageJapanese:   "Japanese (日本語)",
	session.LanguageItalian:    "Italian (Italiano)",
	session.LanguagePortuguese: "Portuguese (Português)",
	session.LanguageMandarin:   "Mandarin Chinese (中文)",
	session.LanguageKorean:     "Korean (한국어)",
	session.LanguageArabic:     "Arabic (العربية)",
}

// LanguageName returns the prompt display name for a language.
func LanguageName(l session.Language) string {
	if name, ok := languageNames[l]; ok {
		return name
	}
	return string(l)
}

const promptTemplate = `You are a friendly and encouraging %s language tutor. The student's proficiency level is %s and they are in %s mode.

Their learning goals are: %s

In %s.

Instructions:
1. Respond naturally in %s at an appropriate level for a %s learner
2. Keep responses concise and suitable for mobile messaging (2-3 paragraphs max)
3. After your response, provide brief analysis in the following JSON format:
{
  "feedback": "One helpful tip in Indonesian",
  "detectedLevel": "beginner"|"intermediate"|"advanced",
  "vocabularyUsed": ["word1", "word2"],
  "grammarScore": 0-100,
  "pointsEarned": 0-20
}

IMPORTANT: All feedback must be in Indonesian (Bahasa Indonesia).

Format your response as:
RESPONSE: [Your %s response]
ANALYSIS: [JSON analysis]`

// SystemPrompt renders the tutor's system prompt from the session state.
func SystemPrompt(s *session.Session) string {
	name := LanguageName(s.Language)

	modeHint := "casual mode, maintain natural conversation while providing gentle learning opportunities"
	if s.Mode == session.ModeStructured {
		modeHint = "structured mode, focus on teaching specific grammar points and vocabulary systematically"
	}

	return fmt.Sprintf(promptTemplate,
		name, s.ProficiencyLevel, s.Mode,
		strings.Join(s.Goals, ", "),
		modeHint,
		name, s.ProficiencyLevel,
		name,
	)
}

// buildMessages assembles the completion request: system prompt, the most
// recent conversation turns, then the new user message.
func buildMessages(s *session.Session, userMessage string) []chatMessage {
	turns := s.RecentTurns(session.ContextTurns)

	messages := make([]chatMessage, 0, len(turns)+2)
	messages = append(messages, chatMessage{Role: "system", Content: SystemPrompt(s)})
	for _, t := range turns {
		messages = append(messages, chatMessage{Role: string(t.Role), Content: t.Content})
	}
	messages = append(messages, chatMessage{Role: "user", Content: userMessage})
	return messages
}
