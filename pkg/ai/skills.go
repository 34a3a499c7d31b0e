package ai

import "context"

// SkillExtractor turns resume free text into a comma-separated skill list
type SkillExtractor interface {
	ExtractSkills(ctx context.Context, resumeText string) (string, error)
	Name() string
}

const skillsSystemPrompt = "Extract the candidate's technical and professional skills from the resume text. " +
	"Reply with a single line of comma-separated skills and nothing else."

var (
	_ SkillExtractor = (*GroqClient)(nil)
	_ SkillExtractor = (*GeminiClient)(nil)
)
