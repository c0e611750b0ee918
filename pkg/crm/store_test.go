package crm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultStore(t *testing.T) *Store {
	s, err := NewDefaultStore()
	require.NoError(t, err)
	return s
}

func TestLeadPartialName(t *testing.T) {
	s := defaultStore(t)

	l, ok := s.Lead("acme")
	require.True(t, ok)
	assert.Equal(t, "Acme Corp", l.CompanyName)
	assert.Equal(t, "Manufacturing", l.Industry)

	l, ok = s.Lead("  GLOBAL ")
	require.True(t, ok)
	assert.Equal(t, "Global Bank", l.CompanyName)

	_, ok = s.Lead("Initech")
	assert.False(t, ok)
	_, ok = s.Lead("")
	assert.False(t, ok)

	assert.Len(t, s.Leads(), 7)
}

func TestNewsFallsBackToNotice(t *testing.T) {
	s := defaultStore(t)
	assert.Len(t, s.News("TechStart"), 3)
	assert.Equal(t, []string{NoNewsHeadline}, s.News("Initech"))
}

func TestEmailsAndOrgChanges(t *testing.T) {
	s := defaultStore(t)
	assert.NotEmpty(t, s.Emails("acme"))
	assert.NotEmpty(t, s.OrgChanges("medicare"))

	assert.NotNil(t, s.Emails("Initech"))
	assert.Empty(t, s.Emails("Initech"))
	assert.Empty(t, s.OrgChanges("Fabrikam"))
}

func TestPricing(t *testing.T) {
	s := defaultStore(t)

	items := s.Pricing("Cloud")
	require.Len(t, items, 1)
	assert.Equal(t, "CLD-001", items[0].SKU)
	assert.Equal(t, 12000, items[0].Price)

	assert.Len(t, s.Pricing("s"), 4)
	assert.Empty(t, s.Pricing("quantum"))
}

func TestLegalClause(t *testing.T) {
	s := defaultStore(t)
	assert.Contains(t, s.LegalClause("FINANCE"), "GDPR/CCPA")
	assert.Contains(t, s.LegalClause("Healthcare"), "State of Washington")
	assert.Equal(t, s.LegalClause("standard"), s.LegalClause(""))
}

func TestSearchKnowledgeBase(t *testing.T) {
	s := defaultStore(t)

	hits := s.SearchKnowledgeBase("acme")
	require.Len(t, hits, 1)
	assert.Equal(t, "Acme_Corp_Past_Proposal_2023.docx", hits[0].Name)
	assert.Contains(t, hits[0].Snippet, "Basic Cloud Pack")

	assert.Len(t, s.SearchKnowledgeBase("pdf"), 2)
	assert.Empty(t, s.SearchKnowledgeBase("blockchain"))
}

func TestLeadMentionedIn(t *testing.T) {
	s := defaultStore(t)
	l, ok := s.LeadMentionedIn("@Velocity draft proposal for ACME CORP please")
	require.True(t, ok)
	assert.Equal(t, "1", l.ID)

	_, ok = s.LeadMentionedIn("draft proposal for acme")
	assert.False(t, ok)
}

func TestNewStoreFromYAMLRejectsEmpty(t *testing.T) {
	_, err := NewStoreFromYAML(strings.NewReader("leads: []\n"))
	assert.Error(t, err)

	_, err = NewStoreFromYAML(strings.NewReader("leads:\n  - companyName: X\n"))
	assert.Error(t, err)
}
