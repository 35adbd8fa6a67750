package groq

import (
	"encoding/json"
	"strings"

	"github.com/lingua-hub/lingua-tutor-hub/internal/domain/session"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESPONSE PARSING
// ══════════════════════════════════════════════════════════════════════════════

// TutorReply is the parsed form of the model's raw completion.
type TutorReply struct {
	// Response is the natural-language reply shown to the user.
	Response string

	// Analysis is the structured feedback block, nil when the model omitted
	// it or produced something unparseable.
	Analysis *session.Analysis
}

// ParseReply splits the raw completion into the reply text and the optional
// analysis block. The model is asked to format its output as
//
//	RESPONSE: <text>
//	ANALYSIS: <json>
//
// but it is only partially trustworthy: a missing RESPONSE marker means the
// whole text is the reply, and a missing or malformed ANALYSIS block is
// treated as "no analysis", never as an error.
func ParseReply(raw string) *TutorReply {
	reply := &TutorReply{Response: strings.TrimSpace(raw)}

	analysisIdx := strings.Index(raw, "ANALYSIS:")

	if respIdx := strings.Index(raw, "RESPONSE:"); respIdx >= 0 {
		end := len(raw)
		if analysisIdx > respIdx {
			end = analysisIdx
		}
		reply.Response = strings.TrimSpace(raw[respIdx+len("RESPONSE:") : end])
	} else if analysisIdx >= 0 {
		reply.Response = strings.TrimSpace(raw[:analysisIdx])
	}

	if analysisIdx >= 0 {
		reply.Analysis = parseAnalysis(raw[analysisIdx+len("ANALYSIS:"):])
	}
	return reply
}

// parseAnalysis extracts the outermost JSON object from the analysis tail
// and decodes it leniently. Returns nil when nothing usable was found.
func parseAnalysis(tail string) *session.Analysis {
	start := strings.Index(tail, "{")
	end := strings.LastIndex(tail, "}")
	if start < 0 || end <= start {
		return nil
	}

	var a session.Analysis
	if err := json.Unmarshal([]byte(tail[start:end+1]), &a); err != nil {
		return nil
	}
	if a.IsEmpty() {
		return nil
	}

	// Drop out-of-range or invalid fields instead of failing the whole
	// analysis.
	if a.DetectedLevel != "" && !a.DetectedLevel.IsValid() {
		a.DetectedLevel = ""
	}
	if a.GrammarScore != nil {
		if *a.GrammarScore < session.GrammarScoreMin || *a.GrammarScore > session.GrammarScoreMax {
			a.GrammarScore = nil
		}
	}
	if a.PointsEarned != nil && *a.PointsEarned < 0 {
		a.PointsEarned = nil
	}

	if a.IsEmpty() {
		return nil
	}
	return &a
}
