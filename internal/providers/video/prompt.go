package video

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"scriptreel/internal/domain"
)

// BuildPrompt renders the natural-language prompt sent to the provider. Voice
// and background music become an audio clause; without either the prompt asks
// explicitly for a silent video with no audio track.
func BuildPrompt(req domain.GenerationRequest) string {
	lower := cases.Lower(language.English)
	style := lower.String(strings.TrimSpace(req.CreativeStyle))
	script := strings.TrimSpace(req.Script)

	length := ""
	if n := domain.ClampVideoLength(req.VideoLength); n > 0 {
		length = fmt.Sprintf(" %d-second", n)
	}

	var clauses []string
	if domain.HasVoice(req.Voice) {
		clauses = append(clauses, fmt.Sprintf("a %s voiceover reading the script", lower.String(strings.TrimSpace(req.Voice))))
	}
	if music := strings.TrimSpace(req.BackgroundMusic); music != "" {
		clauses = append(clauses, fmt.Sprintf(`background music described as: "%s"`, music))
	}

	if len(clauses) == 0 {
		return fmt.Sprintf("Generate a %s, high-quality, silent%s video based on the following script: \"%s\". The video must have no audio track.",
			style, length, script)
	}
	return fmt.Sprintf("Generate a %s, high-quality%s video based on the following script: \"%s\". The video must have a full audio track containing %s.",
		style, length, script, strings.Join(clauses, " and "))
}
