package entities

// AnalysisSection is one report subsection a caller can opt into. The order
// of requested keys determines section order in the final report.
type AnalysisSection struct {
	Key         string `json:"key"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Section catalog keys
const (
	SectionExecutiveSummary     = "executive_summary"
	SectionMainDiscussions      = "main_discussions"
	SectionMainTopics           = "main_topics"
	SectionActionPlan           = "action_plan"
	SectionDecisionsMade        = "decisions_made"
	SectionKeyPoints            = "key_points"
	SectionQuestionsDiscussions = "questions_discussions"
	SectionNextSteps            = "next_steps"
	SectionFollowUpItems        = "follow_up_items"
)

// MeetingType selects a default section preset
type MeetingType string

const (
	MeetingTypeAction      MeetingType = "action"      // Decision-oriented meeting
	MeetingTypeInformation MeetingType = "information" // Informational meeting
)

// sectionCatalog is the fixed catalog of available report sections
var sectionCatalog = []AnalysisSection{
	{
		Key:         SectionExecutiveSummary,
		Title:       "Executive Summary",
		Description: "Concise overview of the meeting in 2-3 sentences",
	},
	{
		Key:         SectionMainDiscussions,
		Title:       "Main Discussions",
		Description: "Detailed account of the discussions, who said what and the positions taken",
	},
	{
		Key:         SectionMainTopics,
		Title:       "Main Topics",
		Description: "The subjects covered during the meeting, with context for each",
	},
	{
		Key:         SectionActionPlan,
		Title:       "Action Plan",
		Description: "Concrete actions to carry out, with owner and deadline when mentioned",
	},
	{
		Key:         SectionDecisionsMade,
		Title:       "Decisions Made",
		Description: "Decisions reached during the meeting and their rationale",
	},
	{
		Key:         SectionKeyPoints,
		Title:       "Key Points",
		Description: "Important facts, figures and statements worth retaining",
	},
	{
		Key:         SectionQuestionsDiscussions,
		Title:       "Questions & Discussions",
		Description: "Open questions raised and unresolved debates",
	},
	{
		Key:         SectionNextSteps,
		Title:       "Next Steps",
		Description: "What happens after this meeting, including planned follow-up meetings",
	},
	{
		Key:         SectionFollowUpItems,
		Title:       "Follow-up Items",
		Description: "Topics to monitor or revisit later",
	},
}

// SectionCatalog returns a copy of the full section catalog
func SectionCatalog() []AnalysisSection {
	catalog := make([]AnalysisSection, len(sectionCatalog))
	copy(catalog, sectionCatalog)
	return catalog
}

// OverrideSection replaces the title and description of a known catalog
// entry, for deployments that customize prompt wording. Unknown keys are
// ignored. Call during startup, before any requests are served.
func OverrideSection(key, title, description string) {
	for i := range sectionCatalog {
		if sectionCatalog[i].Key == key {
			if title != "" {
				sectionCatalog[i].Title = title
			}
			if description != "" {
				sectionCatalog[i].Description = description
			}
			return
		}
	}
}

// LookupSection finds a catalog entry by key
func LookupSection(key string) (AnalysisSection, bool) {
	for _, s := range sectionCatalog {
		if s.Key == key {
			return s, true
		}
	}
	return AnalysisSection{}, false
}

// ResolveSections maps requested keys to catalog entries, preserving request
// order and skipping unknown keys
func ResolveSections(keys []string) []AnalysisSection {
	sections := make([]AnalysisSection, 0, len(keys))
	for _, key := range keys {
		if s, ok := LookupSection(key); ok {
			sections = append(sections, s)
		}
	}
	return sections
}

// DefaultSectionKeys returns the default section preset for a meeting type
func DefaultSectionKeys(meetingType MeetingType) []string {
	switch meetingType {
	case MeetingTypeInformation:
		return []string{
			SectionExecutiveSummary,
			SectionMainTopics,
			SectionKeyPoints,
			SectionFollowUpItems,
		}
	default:
		return []string{
			SectionExecutiveSummary,
			SectionActionPlan,
			SectionDecisionsMade,
			SectionNextSteps,
		}
	}
}
