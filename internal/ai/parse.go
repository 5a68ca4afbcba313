package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencedBlock = regexp.MustCompile("(?s)```[A-Za-z0-9_+-]*[ \t]*\r?\n?(.*?)```")

// ParsePlan извлекает JSON маршрута из ответа модели и декодирует его.
// Fenced code blocks take precedence over brace slicing of the whole text.
func ParsePlan(raw string) (PlanResponse, error) {
	payload, ok := extractJSON(raw)
	if !ok {
		return PlanResponse{}, newError(KindMalformedOutput, nil, "ai response does not contain a json object")
	}

	var plan PlanResponse
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return PlanResponse{}, newError(KindMalformedOutput, err, "ai response is not a valid itinerary")
	}

	return plan, nil
}

func extractJSON(input string) (string, bool) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", false
	}

	if block, ok := firstFencedObject(trimmed); ok {
		trimmed = block
	} else {
		trimmed = stripFence(trimmed)
	}

	start := strings.Index(trimmed, "{")
	end := strings.LastIndex(trimmed, "}")
	if start == -1 || end == -1 || end <= start {
		return "", false
	}

	return trimmed[start : end+1], true
}

func firstFencedObject(input string) (string, bool) {
	for _, match := range fencedBlock.FindAllStringSubmatch(input, -1) {
		body := strings.TrimSpace(match[1])
		if strings.Contains(body, "{") {
			return body, true
		}
	}
	return "", false
}

// stripFence снимает незакрытую или одностороннюю ограду; тег языка отсекается срезом по скобкам.
func stripFence(input string) string {
	trimmed := strings.TrimPrefix(input, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
