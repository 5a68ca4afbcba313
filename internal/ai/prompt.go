package ai

import "fmt"

const (
	systemInstruction = "You are a professional travel planner assistant. You ONLY respond with valid JSON."
	budgetCurrency    = "INR"
)

// BuildPrompt детерминированно формирует инструкции для модели по запросу маршрута.
func BuildPrompt(req PlanRequest) Prompt {
	user := fmt.Sprintf(`Plan a detailed travel itinerary from %[1]s to %[2]s with a strict budget of %[4]s %.2[3]f.
The plan must be day-wise, including specific activities and estimated expenses for each day.

Requirements:
- Your entire response must be a single, valid JSON object following this exact structure:
{"source": "%[1]s", "destination": "%[2]s", "budget": %.2[3]f, "days": [{"day": 1, "activities": "...", "expenses": {"category": amount}}]}
- "day" is a 1-based integer, days are listed in order.
- "expenses" maps an expense category to a numeric amount in %[4]s.
- DO NOT include any text, explanations, markdown code blocks, or formatting outside of this JSON object.
- Respond ONLY with the raw JSON.`,
		req.Source, req.Destination, req.Budget, budgetCurrency,
	)

	return Prompt{System: systemInstruction, User: user}
}
