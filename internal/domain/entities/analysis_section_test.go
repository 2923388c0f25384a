package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionCatalogIsStable(t *testing.T) {
	catalog := SectionCatalog()
	require.Len(t, catalog, 9)
	assert.Equal(t, SectionExecutiveSummary, catalog[0].Key)

	// Returned slice is a copy, mutations must not leak into the catalog
	catalog[0].Title = "mutated"
	assert.NotEqual(t, "mutated", SectionCatalog()[0].Title)
}

func TestResolveSectionsPreservesRequestOrder(t *testing.T) {
	sections := ResolveSections([]string{SectionNextSteps, SectionExecutiveSummary, "bogus"})
	require.Len(t, sections, 2)
	assert.Equal(t, SectionNextSteps, sections[0].Key)
	assert.Equal(t, SectionExecutiveSummary, sections[1].Key)
}

func TestDefaultSectionKeysByMeetingType(t *testing.T) {
	action := DefaultSectionKeys(MeetingTypeAction)
	assert.Equal(t, []string{
		SectionExecutiveSummary,
		SectionActionPlan,
		SectionDecisionsMade,
		SectionNextSteps,
	}, action)

	info := DefaultSectionKeys(MeetingTypeInformation)
	assert.Equal(t, []string{
		SectionExecutiveSummary,
		SectionMainTopics,
		SectionKeyPoints,
		SectionFollowUpItems,
	}, info)
}
