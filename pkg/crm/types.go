package crm

// Signal is a short deal indicator shown next to a lead.
type Signal struct {
	Type string `yaml:"type" json:"type"`
	Text string `yaml:"text" json:"text"`
}

type Lead struct {
	ID              string   `yaml:"id" json:"id"`
	CompanyName     string   `yaml:"companyName" json:"companyName"`
	ContactName     string   `yaml:"contactName" json:"contactName"`
	Email           string   `yaml:"email" json:"email"`
	Industry        string   `yaml:"industry" json:"industry"`
	Status          string   `yaml:"status" json:"status"`
	Needs           []string `yaml:"needs" json:"needs"`
	EstimatedValue  int      `yaml:"estimatedValue" json:"estimatedValue"`
	LastInteraction string   `yaml:"lastInteraction" json:"lastInteraction"`
	AISummary       string   `yaml:"aiSummary,omitempty" json:"aiSummary,omitempty"`
	MeetingTime     string   `yaml:"meetingTime,omitempty" json:"meetingTime,omitempty"`
	Signals         []Signal `yaml:"signals,omitempty" json:"signals,omitempty"`
	SuggestedAction string   `yaml:"suggestedAction,omitempty" json:"suggestedAction,omitempty"`
}

type Email struct {
	From      string `yaml:"from" json:"from"`
	Subject   string `yaml:"subject" json:"subject"`
	Date      string `yaml:"date" json:"date"`
	Summary   string `yaml:"summary" json:"summary"`
	Sentiment string `yaml:"sentiment,omitempty" json:"sentiment,omitempty"`
}

type OrgChange struct {
	Name   string `yaml:"name" json:"name"`
	Role   string `yaml:"role" json:"role"`
	Change string `yaml:"change" json:"change"`
	Date   string `yaml:"date" json:"date"`
}

type PricingItem struct {
	SKU      string `yaml:"sku" json:"sku"`
	Name     string `yaml:"name" json:"name"`
	Price    int    `yaml:"price" json:"price"`
	Currency string `yaml:"currency" json:"currency"`
}

// Document is a knowledge base entry.
type Document struct {
	ID      string `yaml:"id" json:"id"`
	Name    string `yaml:"name" json:"name"`
	Type    string `yaml:"type" json:"type"`
	Link    string `yaml:"link" json:"link"`
	Content string `yaml:"content" json:"content"`
}

// DocumentHit is what a knowledge base search returns for one document.
type DocumentHit struct {
	Name    string `json:"name"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// Account groups the cached signals of one company.
type Account struct {
	Company    string      `yaml:"company"`
	News       []string    `yaml:"news,omitempty"`
	Emails     []Email     `yaml:"emails,omitempty"`
	OrgChanges []OrgChange `yaml:"orgChanges,omitempty"`
}

// Dataset is the full read-only fixture set.
type Dataset struct {
	Leads         []Lead            `yaml:"leads"`
	Accounts      []Account         `yaml:"accounts"`
	Pricing       []PricingItem     `yaml:"pricing"`
	LegalClauses  map[string]string `yaml:"legalClauses"`
	KnowledgeBase []Document        `yaml:"knowledgeBase"`
}
