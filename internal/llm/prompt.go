package llm

import (
	_ "embed"
	"strings"
)

//go:embed prompts/analysis.txt
var analysisTemplate string

const (
	jobContextTargeted = "Target Job Context: The candidate is applying for a role with this job description: %s. Tailor your analysis to this specific position."
	jobContextGeneral  = "Provide general professional analysis without specific job targeting."
)

// Message is a provider-neutral chat message.
type Message struct {
	Role    string
	Content string
}

// BuildPrompt returns the system and user messages for a resume analysis request.
func BuildPrompt(input AnalyzeInput) []Message {
	return []Message{
		{Role: "system", Content: SystemPrompt(input)},
		{Role: "user", Content: UserPrompt(input.ResumeText)},
	}
}

// SystemPrompt renders the analysis instructions, conditioned on the job description.
func SystemPrompt(input AnalyzeInput) string {
	jobContext := jobContextGeneral
	if input.HasJobDescription() {
		jobContext = strings.Replace(jobContextTargeted, "%s", trimmed(*input.JobDescription), 1)
	}
	replacer := strings.NewReplacer("{{JOB_CONTEXT}}", jobContext)
	return strings.TrimSpace(replacer.Replace(analysisTemplate))
}

// UserPrompt wraps the resume text.
func UserPrompt(resumeText string) string {
	return "Please analyze this resume:\n\n" + resumeText
}

func trimmed(s string) string {
	return strings.TrimSpace(s)
}
