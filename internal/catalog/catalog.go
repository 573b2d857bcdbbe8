// Package catalog holds the built-in crisis scenarios, one per game mode.
// They back the service when no document store is configured and are what
// the seed command writes to Postgres.
package catalog

import "crisis-quiz-service/internal/domain"

// Scenarios returns the built-in scenarios in mode order. IDs are stable
// across restarts so clients can bookmark them.
func Scenarios() []domain.Scenario {
	return []domain.Scenario{
		{
			ID:          "single-player",
			Title:       "Single Player",
			Description: "Tackle rising AI challenges on your own. Your choices are all that matter.",
			Mode:        domain.ModeSinglePlayer,
			Context:     "A mid-level manager facing a sudden and unexpected project failure that threatens a major client relationship. The situation requires immediate damage control, team motivation, and strategic communication with stakeholders.",
		},
		{
			ID:          "multiplayer",
			Title:       "Multiplayer",
			Description: "Team up or face off against others to solve a tough business problem.",
			Mode:        domain.ModeMultiplayer,
			Context:     "A publicly-traded company experiencing a major data breach. Players must handle the technical response, public relations, legal liabilities, and internal communication, with their decisions impacting the company stock price.",
		},
		{
			ID:          "ai-vs-human",
			Title:       "AI vs Human",
			Description: "Solve a crisis, then see how your plan stacks up against the best one, chosen by the AI.",
			Mode:        domain.ModeAIvsHuman,
			Context:     "A supply chain disruption for a global manufacturing company. The player must make decisions on logistics, sourcing, and production, while the AI calculates the most financially and ethically optimal path in parallel.",
		},
		{
			ID:          "real-world-crisis",
			Title:       "Real World Crisis",
			Description: "Step into history and handle a real-world crisis, like a pandemic or a market crash.",
			Mode:        domain.ModeRealWorld,
			Context:     "The early days of a novel global pandemic. Players must make decisions regarding public health advisories, economic support packages, and international travel restrictions based on limited and evolving information.",
		},
		{
			ID:          "policy-governance",
			Title:       "Policy & Governance",
			Description: "Shape the future. Your decisions as a leader will be projected to show their social and economic impact.",
			Mode:        domain.ModePolicy,
			Context:     "A regional government facing a severe drought. Players must decide on water rationing policies, agricultural subsidies, and long-term infrastructure investments, with the AI simulating the effects on public approval, economic stability, and environmental recovery.",
		},
		{
			ID:          "crisis-olympics",
			Title:       "Crisis Olympics",
			Description: "Race against players worldwide in a live, intense crisis challenge.",
			Mode:        domain.ModeOlympics,
			Context:     "A geopolitical crisis triggered by a sudden resource scarcity. Players represent different nations and must negotiate, form alliances, or take decisive action under a strict time limit.",
		},
	}
}
