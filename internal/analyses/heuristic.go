package analyses

import (
	"regexp"
	"strings"
)

var (
	emailPattern      = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Z|a-z]{2,}\b`)
	phonePattern      = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
	skillsPattern     = regexp.MustCompile(`(?i)skills?|technologies?|programming|software`)
	experiencePattern = regexp.MustCompile(`(?i)experience|work|job|position|company`)
)

const (
	heuristicBaseScore    = 60
	heuristicOverallCap   = 92
	heuristicLongResume   = 200
	heuristicDetailedText = 400
)

// Signals are the text features the heuristic scores on.
type Signals struct {
	WordCount     int
	HasEmail      bool
	HasPhone      bool
	HasSkills     bool
	HasExperience bool
}

// DetectSignals extracts heuristic signals from résumé text.
func DetectSignals(text string) Signals {
	return Signals{
		WordCount:     len(strings.Fields(text)),
		HasEmail:      emailPattern.MatchString(text),
		HasPhone:      phonePattern.MatchString(text),
		HasSkills:     skillsPattern.MatchString(text),
		HasExperience: experiencePattern.MatchString(text),
	}
}

// BaseScore sums the signal bonuses on top of 60; the result is between 60 and 100.
func (s Signals) BaseScore() int {
	score := heuristicBaseScore
	if s.WordCount > heuristicLongResume {
		score += 10
	}
	if s.WordCount > heuristicDetailedText {
		score += 5
	}
	if s.HasEmail {
		score += 5
	}
	if s.HasPhone {
		score += 5
	}
	if s.HasSkills {
		score += 10
	}
	if s.HasExperience {
		score += 5
	}
	return score
}

// AnalyzeHeuristic scores résumé text without any external calls.
// It is deterministic and always succeeds; the overall score lies in [60, 92].
func AnalyzeHeuristic(text string) Result {
	b := DetectSignals(text).BaseScore()

	return Result{
		OverallScore: min(heuristicOverallCap, b),
		Feedback: Feedback{
			Grammar: CategoryFeedback{
				Score:   min(95, b+10),
				Summary: "Good grammar and writing style with room for minor improvements",
				Suggestions: []string{
					"Consider using more action verbs to start bullet points",
					"Ensure consistent verb tenses throughout the document",
				},
			},
			ATS: ATSFeedback{
				CategoryFeedback: CategoryFeedback{
					Score:   min(88, b+5),
					Summary: "Resume contains relevant keywords but could be optimized further",
					Suggestions: []string{
						"Include more industry-specific keywords",
						"Add technical skills section with relevant technologies",
					},
				},
				MissingKeywords: []string{"project management", "data analysis", "team leadership"},
			},
			Formatting: CategoryFeedback{
				Score:   min(90, b+8),
				Summary: "Clean and professional formatting with good structure",
				Suggestions: []string{
					"Consider using bullet points for better readability",
					"Ensure consistent spacing and alignment",
				},
			},
			Content: CategoryFeedback{
				Score:   min(87, b+3),
				Summary: "Strong content with quantifiable achievements",
				Suggestions: []string{
					"Add more specific metrics and numbers to achievements",
					"Include relevant projects or portfolio items",
				},
			},
			Skills: SkillsFeedback{
				CategoryFeedback: CategoryFeedback{
					Score:   min(85, b),
					Summary: "Good skills representation with room for expansion",
					Suggestions: []string{
						"Add trending technical skills relevant to your field",
						"Include both hard and soft skills",
					},
				},
				MissingSkills: []string{"Cloud Computing", "Machine Learning", "Agile Methodologies"},
			},
			Experience: CategoryFeedback{
				Score:   min(89, b+7),
				Summary: "Well-documented experience with clear progression",
				Suggestions: []string{
					"Use STAR method to describe achievements",
					"Quantify impact with specific numbers and metrics",
				},
			},
			Improvements:   heuristicImprovements(),
			TrendingSkills: heuristicTrendingSkills(),
		},
	}
}

func heuristicImprovements() []Improvement {
	return []Improvement{
		{
			Title:       "Quantify Achievements",
			Description: "Add specific numbers and metrics to demonstrate impact",
			Before:      strPtr("Improved team productivity"),
			After:       strPtr("Improved team productivity by 25% through process optimization"),
			Category:    CategoryContent,
		},
		{
			Title:       "Add Technical Skills",
			Description: "Include a dedicated technical skills section",
			Category:    CategorySkills,
		},
		{
			Title:       "Optimize Keywords",
			Description: "Include more industry-specific keywords for ATS compatibility",
			Category:    CategoryATS,
		},
		{
			Title:       "Action Verbs",
			Description: "Start bullet points with strong action verbs",
			Before:      strPtr("Was responsible for managing projects"),
			After:       strPtr("Managed cross-functional projects delivering results on time"),
			Category:    CategoryGrammar,
		},
		{
			Title:       "Contact Information",
			Description: "Ensure all contact information is current and professional",
			Category:    CategoryFormatting,
		},
	}
}

func heuristicTrendingSkills() []TrendingSkill {
	return []TrendingSkill{
		{Skill: "Cloud Computing (AWS/Azure)", Relevance: 92, Category: SkillTechnical},
		{Skill: "Data Analysis", Relevance: 88, Category: SkillTechnical},
		{Skill: "Project Management", Relevance: 85, Category: SkillSoft},
		{Skill: "Machine Learning", Relevance: 82, Category: SkillTechnical},
		{Skill: "Agile Methodologies", Relevance: 80, Category: SkillSoft},
		{Skill: "Python Programming", Relevance: 78, Category: SkillTechnical},
		{Skill: "Leadership", Relevance: 85, Category: SkillSoft},
		{Skill: "Communication", Relevance: 90, Category: SkillSoft},
	}
}

func strPtr(s string) *string {
	return &s
}
