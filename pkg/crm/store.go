package crm

import (
	"bytes"
	_ "embed"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed crm.yaml
var defaultDataset []byte

const (
	// NoNewsHeadline is returned by News when no account matches.
	NoNewsHeadline = "No recent news found for this company."
	// DefaultLegalIndustry is the clause used for unknown industries.
	DefaultLegalIndustry = "standard"
)

// Directory is the read-only data collaborator the lookup tools call into.
// Company names are matched case-insensitively by substring, so "acme" finds "Acme Corp".
type Directory interface {
	Leads() []Lead
	Lead(companyName string) (Lead, bool)
	News(companyName string) []string
	Emails(companyName string) []Email
	OrgChanges(companyName string) []OrgChange
	Pricing(keyword string) []PricingItem
	LegalClause(industry string) string
	SearchKnowledgeBase(query string) []DocumentHit
	// LeadMentionedIn returns the first lead whose name appears in text.
	LeadMentionedIn(text string) (Lead, bool)
}

// Store is a Directory over an immutable Dataset. It is safe for concurrent use.
type Store struct {
	data Dataset
}

var _ Directory = (*Store)(nil)

// NewDefaultStore loads the embedded fixtures.
func NewDefaultStore() (*Store, error) {
	return NewStoreFromYAML(bytes.NewReader(defaultDataset))
}

func NewStoreFromYAML(r io.Reader) (*Store, error) {
	var d Dataset
	if err := yaml.NewDecoder(r).Decode(&d); err != nil {
		return nil, errors.Wrap(err, "decode crm dataset")
	}
	if len(d.Leads) == 0 {
		return nil, errors.New("crm dataset has no leads")
	}
	if _, ok := d.LegalClauses[DefaultLegalIndustry]; !ok {
		return nil, errors.Errorf("crm dataset is missing the %q legal clause", DefaultLegalIndustry)
	}
	return &Store{data: d}, nil
}

// LoadFile reads a dataset from path, or the embedded one when path is empty.
func LoadFile(path string) (*Store, error) {
	if path == "" {
		return NewDefaultStore()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open crm dataset %s", path)
	}
	defer func() { _ = f.Close() }()
	return NewStoreFromYAML(f)
}

func matches(name, query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), q)
}

func (s *Store) Leads() []Lead {
	ret := make([]Lead, len(s.data.Leads))
	copy(ret, s.data.Leads)
	return ret
}

func (s *Store) Lead(companyName string) (Lead, bool) {
	for _, l := range s.data.Leads {
		if matches(l.CompanyName, companyName) {
			return l, true
		}
	}
	return Lead{}, false
}

func (s *Store) account(companyName string) (Account, bool) {
	for _, a := range s.data.Accounts {
		if matches(a.Company, companyName) {
			return a, true
		}
	}
	return Account{}, false
}

func (s *Store) News(companyName string) []string {
	a, ok := s.account(companyName)
	if !ok || len(a.News) == 0 {
		return []string{NoNewsHeadline}
	}
	return append([]string(nil), a.News...)
}

func (s *Store) Emails(companyName string) []Email {
	a, _ := s.account(companyName)
	return append([]Email{}, a.Emails...)
}

func (s *Store) OrgChanges(companyName string) []OrgChange {
	a, _ := s.account(companyName)
	return append([]OrgChange{}, a.OrgChanges...)
}

// Pricing returns the items whose name contains keyword. An empty keyword matches nothing.
func (s *Store) Pricing(keyword string) []PricingItem {
	ret := []PricingItem{}
	for _, p := range s.data.Pricing {
		if matches(p.Name, keyword) {
			ret = append(ret, p)
		}
	}
	return ret
}

// LegalClause matches the industry key exactly (ignoring case) and falls back to the standard clause.
func (s *Store) LegalClause(industry string) string {
	for k, v := range s.data.LegalClauses {
		if strings.EqualFold(k, strings.TrimSpace(industry)) {
			return v
		}
	}
	return s.data.LegalClauses[DefaultLegalIndustry]
}

func (s *Store) SearchKnowledgeBase(query string) []DocumentHit {
	ret := []DocumentHit{}
	for _, d := range s.data.KnowledgeBase {
		if matches(d.Content, query) || matches(d.Name, query) {
			ret = append(ret, DocumentHit{Name: d.Name, Link: d.Link, Snippet: d.Content})
		}
	}
	return ret
}

func (s *Store) LeadMentionedIn(text string) (Lead, bool) {
	lower := strings.ToLower(text)
	for _, l := range s.data.Leads {
		if l.CompanyName != "" && strings.Contains(lower, strings.ToLower(l.CompanyName)) {
			return l, true
		}
	}
	return Lead{}, false
}
