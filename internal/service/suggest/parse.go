package suggest

import (
	"encoding/json"
	"strings"

	"github.com/Engineernoob/ai-interview-buddy/internal/model/interview"
)

// maxBullets caps how many tips one response carries.
const maxBullets = 3

type coachingPayload struct {
	Bullets  []string `json:"bullets"`
	FollowUp string   `json:"follow_up"`
}

// parseCoaching extracts a coaching result from raw model output. It tries
// JSON first, then falls back to scanning for bullet lines. The second
// return is false when nothing usable was found.
func parseCoaching(content string) (*interview.CoachingResult, bool) {
	if raw := extractJSON(content); raw != "" {
		var payload coachingPayload
		if err := json.Unmarshal([]byte(raw), &payload); err == nil {
			if bullets := cleanBullets(payload.Bullets); len(bullets) > 0 {
				return &interview.CoachingResult{
					Bullets:  bullets,
					FollowUp: strings.TrimSpace(payload.FollowUp),
				}, true
			}
		}
	}
	return parseTextResponse(content)
}

// extractJSON returns the outermost JSON object in content, tolerating
// markdown code fences around it.
func extractJSON(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return ""
	}
	return content[start : end+1]
}

// parseTextResponse scans free-form output for bullet or numbered lines and
// an optional follow-up section.
func parseTextResponse(content string) (*interview.CoachingResult, bool) {
	var (
		bullets        []string
		followUp       string
		inFollowUpPart bool
	)

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if text, ok := stripBulletMarker(line); ok {
			if text != "" {
				bullets = append(bullets, text)
			}
			continue
		}

		lower := strings.ToLower(line)
		if strings.Contains(lower, "follow") && strings.Contains(lower, "up") {
			inFollowUpPart = true
			continue
		}
		if inFollowUpPart && followUp == "" {
			followUp = line
		}
	}

	if len(bullets) == 0 {
		return nil, false
	}
	if len(bullets) > maxBullets {
		bullets = bullets[:maxBullets]
	}
	return &interview.CoachingResult{Bullets: bullets, FollowUp: followUp}, true
}

// stripBulletMarker removes a leading bullet or numbered-list marker.
func stripBulletMarker(line string) (string, bool) {
	for _, marker := range []string{"•", "-", "*"} {
		if strings.HasPrefix(line, marker) {
			return strings.TrimSpace(strings.TrimPrefix(line, marker)), true
		}
	}
	if len(line) >= 3 && line[0] >= '0' && line[0] <= '9' && strings.ContainsRune(".):", rune(line[1])) {
		return strings.TrimSpace(line[2:]), true
	}
	return "", false
}

func cleanBullets(raw []string) []string {
	bullets := make([]string, 0, len(raw))
	for _, bullet := range raw {
		bullet = strings.TrimSpace(bullet)
		if bullet == "" {
			continue
		}
		bullets = append(bullets, bullet)
		if len(bullets) == maxBullets {
			break
		}
	}
	return bullets
}
