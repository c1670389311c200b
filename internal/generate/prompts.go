package generate

import "fmt"

// Prompt-shaping policies are fixed string templates with no language
// understanding. They are pure so tests can assert exact outputs.

// SplitPrompt turns a job prompt into count ordered sub-prompts, one per
// scene. Three scenes get the opening/main/closing framing; any other count
// falls back to ordinal labels.
func SplitPrompt(prompt string, count int) []string {
	if count == 3 {
		return []string{
			"Opening scene: " + prompt,
			"Main content: " + prompt,
			"Closing scene: " + prompt,
		}
	}

	subPrompts := make([]string, count)
	for i := range subPrompts {
		subPrompts[i] = fmt.Sprintf("Scene %d: %s", i+1, prompt)
	}
	return subPrompts
}

// BuildScript wraps the prompt in the fixed narration template.
func BuildScript(prompt string) string {
	return fmt.Sprintf(
		"This is a short film about %s. Each scene that follows brings %s to life, from the opening shot to the closing frame.",
		prompt, prompt,
	)
}
