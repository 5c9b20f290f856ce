package domain

import (
	"time"

	"github.com/google/uuid"
)

type ApplicationStatus string

const (
	StatusSubmitted        ApplicationStatus = "submitted"
	StatusAnalyzing        ApplicationStatus = "analyzing"
	StatusScored           ApplicationStatus = "scored"
	StatusReportDispatched ApplicationStatus = "report_dispatched"
	StatusFailed           ApplicationStatus = "failed"
)

// IsTerminal reports whether no further forward transition exists.
// Scored is terminal for analysis but may still move to ReportDispatched.
func (s ApplicationStatus) IsTerminal() bool {
	return s == StatusReportDispatched || s == StatusFailed
}

// CanTransition enforces the monotonic forward lifecycle. Any non-terminal
// state may fall to Failed on an internal fault.
func (s ApplicationStatus) CanTransition(to ApplicationStatus) bool {
	if to == StatusFailed {
		return !s.IsTerminal()
	}
	switch s {
	case StatusSubmitted:
		return to == StatusAnalyzing
	case StatusAnalyzing:
		return to == StatusScored
	case StatusScored:
		return to == StatusReportDispatched
	default:
		return false
	}
}

// Field names a piece of application data a verification source may require.
type Field string

const (
	FieldLegalName      Field = "legal_name"
	FieldTradeName      Field = "trade_name"
	FieldMersisNumber   Field = "mersis_number"
	FieldTaxNumber      Field = "tax_number"
	FieldBKMNumber      Field = "bkm_number"
	FieldWebsiteURL     Field = "website_url"
	FieldMonthlyRevenue Field = "monthly_revenue"
	FieldCity           Field = "city"
)

type CompanyInfo struct {
	CompanyType    string  `json:"company_type"`
	LegalName      string  `json:"legal_name"`
	TradeName      string  `json:"trade_name"`
	MersisNumber   string  `json:"mersis_number,omitempty"`
	TaxNumber      string  `json:"tax_number,omitempty"`
	BKMNumber      string  `json:"bkm_number,omitempty"`
	MonthlyRevenue float64 `json:"monthly_revenue,omitempty"`
	WebsiteURL     string  `json:"website_url,omitempty"`
	Country        string  `json:"country"`
	City           string  `json:"city"`
	District       string  `json:"district"`
	PostalCode     string  `json:"postal_code,omitempty"`
	Address        string  `json:"address"`
}

type AuthorizedPerson struct {
	NationalID  string `json:"national_id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	MobilePhone string `json:"mobile_phone"`
}

// Document is an opaque uploaded blob. The scoring core never inspects it.
type Document struct {
	Name    string `json:"name"`
	Content []byte `json:"content,omitempty"`
}

type Application struct {
	ID           string
	Company      CompanyInfo
	Person       AuthorizedPerson
	Documents    []Document
	Status       ApplicationStatus
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func NewApplication(company CompanyInfo, person AuthorizedPerson, documents []Document) *Application {
	now := time.Now().UTC()
	return &Application{
		ID:        uuid.New().String(),
		Company:   company,
		Person:    person,
		Documents: documents,
		Status:    StatusSubmitted,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Clone returns a copy safe to hand to another goroutine. Repositories
// return clones so lifecycle writes never alias a snapshot a reader holds.
func (a *Application) Clone() *Application {
	clone := *a
	if a.Documents != nil {
		clone.Documents = make([]Document, len(a.Documents))
		copy(clone.Documents, a.Documents)
	}
	return &clone
}

// HasField reports whether the application carries a usable value for f.
func (a *Application) HasField(f Field) bool {
	switch f {
	case FieldLegalName:
		return a.Company.LegalName != ""
	case FieldTradeName:
		return a.Company.TradeName != ""
	case FieldMersisNumber:
		return a.Company.MersisNumber != ""
	case FieldTaxNumber:
		return a.Company.TaxNumber != ""
	case FieldBKMNumber:
		return a.Company.BKMNumber != ""
	case FieldWebsiteURL:
		return a.Company.WebsiteURL != ""
	case FieldMonthlyRevenue:
		return a.Company.MonthlyRevenue > 0
	case FieldCity:
		return a.Company.City != ""
	default:
		return false
	}
}

// MissingFields returns the subset of fields not present on the application.
func (a *Application) MissingFields(fields []Field) []Field {
	var missing []Field
	for _, f := range fields {
		if !a.HasField(f) {
			missing = append(missing, f)
		}
	}
	return missing
}

func (a *Application) transition(to ApplicationStatus) error {
	if !a.Status.CanTransition(to) {
		return ErrInvalidTransition
	}
	a.Status = to
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (a *Application) MarkAnalyzing() error {
	return a.transition(StatusAnalyzing)
}

func (a *Application) MarkScored() error {
	return a.transition(StatusScored)
}

func (a *Application) MarkReportDispatched() error {
	return a.transition(StatusReportDispatched)
}

func (a *Application) MarkFailed(errorMessage string) error {
	if err := a.transition(StatusFailed); err != nil {
		return err
	}
	a.ErrorMessage = errorMessage
	return nil
}
