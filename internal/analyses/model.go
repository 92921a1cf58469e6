package analyses

import (
	"math"
	"time"
)

// Category names a feedback dimension.
type Category string

const (
	CategoryGrammar    Category = "grammar"
	CategoryATS        Category = "ats"
	CategoryFormatting Category = "formatting"
	CategoryContent    Category = "content"
	CategorySkills     Category = "skills"
	CategoryExperience Category = "experience"
)

// Valid reports whether c is one of the six feedback categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryGrammar, CategoryATS, CategoryFormatting, CategoryContent, CategorySkills, CategoryExperience:
		return true
	}
	return false
}

// SkillCategory classifies a trending skill.
type SkillCategory string

const (
	SkillTechnical SkillCategory = "technical"
	SkillSoft      SkillCategory = "soft"
)

// Valid reports whether c is technical or soft.
func (c SkillCategory) Valid() bool {
	return c == SkillTechnical || c == SkillSoft
}

// CategoryFeedback is the score and advice for one category.
type CategoryFeedback struct {
	Score       int      `json:"score"`
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
}

// ATSFeedback adds the keywords an applicant tracking system would look for.
type ATSFeedback struct {
	CategoryFeedback
	MissingKeywords []string `json:"missingKeywords"`
}

// SkillsFeedback adds skills the résumé does not mention.
type SkillsFeedback struct {
	CategoryFeedback
	MissingSkills []string `json:"missingSkills"`
}

// Improvement is a concrete, optionally illustrated, change to make.
type Improvement struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Before      *string  `json:"before,omitempty"`
	After       *string  `json:"after,omitempty"`
	Category    Category `json:"category"`
}

// TrendingSkill is an in-demand skill with a relevance score.
type TrendingSkill struct {
	Skill     string        `json:"skill"`
	Relevance int           `json:"relevance"`
	Category  SkillCategory `json:"category"`
}

// Feedback is the full per-category assessment.
type Feedback struct {
	Grammar        CategoryFeedback `json:"grammar"`
	ATS            ATSFeedback      `json:"ats"`
	Formatting     CategoryFeedback `json:"formatting"`
	Content        CategoryFeedback `json:"content"`
	Skills         SkillsFeedback   `json:"skills"`
	Experience     CategoryFeedback `json:"experience"`
	Improvements   []Improvement    `json:"improvements"`
	TrendingSkills []TrendingSkill  `json:"trendingSkills"`
}

// Result is what an analyzer produces.
type Result struct {
	OverallScore int      `json:"overallScore"`
	Feedback     Feedback `json:"feedback"`
}

// Analysis is a persisted analysis record. Records are immutable once created.
type Analysis struct {
	ID             string    `json:"id"`
	ResumeText     string    `json:"resumeText"`
	JobDescription *string   `json:"jobDescription"`
	OverallScore   int       `json:"overallScore"`
	Feedback       Feedback  `json:"feedback"`
	CreatedAt      time.Time `json:"createdAt"`
}

// NewAnalysis is the payload for Repo.Create; the store assigns ID and CreatedAt.
type NewAnalysis struct {
	ResumeText     string
	JobDescription *string
	OverallScore   int
	Feedback       Feedback
}

// ClampScore rounds v and bounds it to [0, 100].
func ClampScore(v float64) int {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 100:
		return 100
	}
	return int(v + 0.5)
}

// Clone returns a deep copy so callers cannot mutate stored records.
func (f Feedback) Clone() Feedback {
	out := f
	out.Grammar = f.Grammar.clone()
	out.ATS.CategoryFeedback = f.ATS.CategoryFeedback.clone()
	out.ATS.MissingKeywords = cloneStrings(f.ATS.MissingKeywords)
	out.Formatting = f.Formatting.clone()
	out.Content = f.Content.clone()
	out.Skills.CategoryFeedback = f.Skills.CategoryFeedback.clone()
	out.Skills.MissingSkills = cloneStrings(f.Skills.MissingSkills)
	out.Experience = f.Experience.clone()
	if f.Improvements != nil {
		out.Improvements = make([]Improvement, len(f.Improvements))
		for i, imp := range f.Improvements {
			imp.Before = cloneStringPtr(imp.Before)
			imp.After = cloneStringPtr(imp.After)
			out.Improvements[i] = imp
		}
	}
	if f.TrendingSkills != nil {
		out.TrendingSkills = append([]TrendingSkill(nil), f.TrendingSkills...)
	}
	return out
}

// clampInt bounds an already integral score to [0, 100].
func clampInt(v int) int {
	return ClampScore(float64(v))
}

// normalized clamps every score and replaces nil slices with empty ones so JSON
// output always carries arrays.
func (f Feedback) normalized() Feedback {
	out := f.Clone()
	for _, c := range []*CategoryFeedback{&out.Grammar, &out.ATS.CategoryFeedback, &out.Formatting, &out.Content, &out.Skills.CategoryFeedback, &out.Experience} {
		c.Score = clampInt(c.Score)
		if c.Suggestions == nil {
			c.Suggestions = []string{}
		}
	}
	for i := range out.TrendingSkills {
		out.TrendingSkills[i].Relevance = clampInt(out.TrendingSkills[i].Relevance)
	}
	if out.ATS.MissingKeywords == nil {
		out.ATS.MissingKeywords = []string{}
	}
	if out.Skills.MissingSkills == nil {
		out.Skills.MissingSkills = []string{}
	}
	if out.Improvements == nil {
		out.Improvements = []Improvement{}
	}
	if out.TrendingSkills == nil {
		out.TrendingSkills = []TrendingSkill{}
	}
	return out
}

// normalized clamps the result whatever analyzer produced it.
func (r Result) normalized() Result {
	r.OverallScore = clampInt(r.OverallScore)
	r.Feedback = r.Feedback.normalized()
	return r
}

// Clone returns a deep copy of the analysis.
func (a Analysis) Clone() Analysis {
	out := a
	out.JobDescription = cloneStringPtr(a.JobDescription)
	out.Feedback = a.Feedback.Clone()
	return out
}

func (c CategoryFeedback) clone() CategoryFeedback {
	c.Suggestions = cloneStrings(c.Suggestions)
	return c
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
