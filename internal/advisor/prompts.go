package advisor

import (
	"fmt"
	"strings"
)

const (
	// DefaultRoundType is used when a caller does not name an interview round.
	DefaultRoundType = "Technical"

	maxRoles     = 5
	maxQuestions = 5
)

func rolesPrompt(skills []string) string {
	return fmt.Sprintf("Suggest 5 job roles for someone with these skills: %s", strings.Join(skills, ", "))
}

func missingSkillsPrompt(role string, skills []string) string {
	return fmt.Sprintf("What skills are missing for %s, given these skills: %s?", role, strings.Join(skills, ", "))
}

func questionsPrompt(role, roundType string) string {
	return fmt.Sprintf("Generate 5 %s interview questions for %s.", roundType, role)
}

func evaluationPrompt(questions, answers []string) string {
	n := len(questions)
	if len(answers) < n {
		n = len(answers)
	}
	pairs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, fmt.Sprintf("Q: %s\nA: %s", questions[i], answers[i]))
	}
	return "Evaluate the following interview answers and provide feedback:\n" + strings.Join(pairs, "\n")
}
