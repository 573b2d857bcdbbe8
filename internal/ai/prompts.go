package ai

import "fmt"

func questionsPrompt(scenarioContext string, count int) string {
	return fmt.Sprintf(`Act as the "Lord KALKI Judgment System" for a corporate personality assessment game.
Your task is to generate EXACTLY %[2]d situational multiple-choice questions based on the context of: %[1]q.

YOU MUST ADHERE TO THE FOLLOWING RULES:
1. The output MUST be a single, valid JSON array.
2. The array MUST contain EXACTLY %[2]d question objects.
3. Each question object MUST have two keys: "questionText" (a string) and "options" (an array).
4. The "options" array for each question MUST contain EXACTLY 4 option objects.
5. Each option object MUST have two keys: "text" (a string) and "score" (an integer: 20, 15, 10, or 5).
6. DO NOT include any extra text, explanations, or markdown fences. Output ONLY the raw JSON array.`, scenarioContext, count)
}

func policyPrompt(policyText, scenarioContext string) string {
	return fmt.Sprintf(`Act as the "Lord KALKI Judgment System." Your task is to evaluate a user-submitted policy for a crisis management scenario.

Crisis context: %q
User's policy: %q

Provide a JSON object in this exact format:
{
  "evaluation": "Detailed, constructive feedback.",
  "scores": {
    "RiskMitigation": 0,
    "DecisionEffectiveness": 0,
    "EthicalResponsibility": 0,
    "PASSIONIT_PRUTL": 0
  },
  "totalScore": 0
}

Scoring rules:
- RiskMitigation (0-30)
- DecisionEffectiveness (0-30)
- EthicalResponsibility (0-20)
- PASSIONIT_PRUTL (0-20)
- "totalScore" must be the sum of all four scores.`, scenarioContext, policyText)
}
