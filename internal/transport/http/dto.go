package http

import "github.com/payrisk/merchant-risk/internal/domain"

type SubmitApplicationRequest struct {
	Company   CompanyInfoDTO      `json:"company" validate:"required"`
	Person    AuthorizedPersonDTO `json:"authorized_person" validate:"required"`
	Documents []DocumentDTO       `json:"documents"`
}

type CompanyInfoDTO struct {
	CompanyType    string  `json:"company_type" validate:"required,oneof=LIMITED ANONIM SOLE_PROPRIETORSHIP COLLECTIVE"`
	LegalName      string  `json:"legal_name" validate:"required"`
	TradeName      string  `json:"trade_name" validate:"required"`
	MersisNumber   string  `json:"mersis_number,omitempty" validate:"omitempty,len=16,numeric"`
	TaxNumber      string  `json:"tax_number,omitempty" validate:"omitempty,len=10,numeric"`
	BKMNumber      string  `json:"bkm_number,omitempty"`
	MonthlyRevenue float64 `json:"monthly_revenue,omitempty" validate:"omitempty,gte=0"`
	WebsiteURL     string  `json:"website_url,omitempty" validate:"omitempty,url"`
	Country        string  `json:"country" validate:"required"`
	City           string  `json:"city" validate:"required"`
	District       string  `json:"district" validate:"required"`
	PostalCode     string  `json:"postal_code,omitempty"`
	Address        string  `json:"address" validate:"required"`
}

type AuthorizedPersonDTO struct {
	NationalID  string `json:"national_id" validate:"required,len=11,numeric"`
	FirstName   string `json:"first_name" validate:"required"`
	LastName    string `json:"last_name" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	MobilePhone string `json:"mobile_phone" validate:"required"`
}

type DocumentDTO struct {
	Name    string `json:"name" validate:"required"`
	Content []byte `json:"content,omitempty"`
}

type SubmitAcceptedResponse struct {
	ApplicationID string `json:"application_id"`
	Status        string `json:"status"`
	Message       string `json:"message"`
	PollURL       string `json:"poll_url"`
}

type AssessmentResponse struct {
	ApplicationID   string       `json:"application_id"`
	Status          string       `json:"status"`
	CompositeScore  float64      `json:"composite_score"`
	RiskCategory    string       `json:"risk_category"`
	Summary         string       `json:"summary"`
	Findings        []FindingDTO `json:"findings"`
	Recommendations []string     `json:"recommendations"`
	PDFURL          string       `json:"pdf_url,omitempty"`
}

type FindingDTO struct {
	SourceName  string  `json:"source_name"`
	Status      string  `json:"status"`
	DataFound   string  `json:"data_found"`
	RiskImpact  string  `json:"risk_impact"`
	RawScore    float64 `json:"raw_score"`
	Weight      float64 `json:"weight"`
	Blacklisted bool    `json:"blacklisted,omitempty"`
}

type DispatchReportRequest struct {
	Recipients []RecipientDTO `json:"recipients" validate:"required,min=1,dive"`
}

type RecipientDTO struct {
	Department string `json:"department" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
}

type DispatchReportResponse struct {
	ApplicationID string              `json:"application_id"`
	Results       []DispatchResultDTO `json:"results"`
}

type DispatchResultDTO struct {
	Department string `json:"department"`
	Email      string `json:"email"`
	Delivered  bool   `json:"delivered"`
	Error      string `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (r SubmitApplicationRequest) ToCompany() domain.CompanyInfo {
	return domain.CompanyInfo{
		CompanyType:    r.Company.CompanyType,
		LegalName:      r.Company.LegalName,
		TradeName:      r.Company.TradeName,
		MersisNumber:   r.Company.MersisNumber,
		TaxNumber:      r.Company.TaxNumber,
		BKMNumber:      r.Company.BKMNumber,
		MonthlyRevenue: r.Company.MonthlyRevenue,
		WebsiteURL:     r.Company.WebsiteURL,
		Country:        r.Company.Country,
		City:           r.Company.City,
		District:       r.Company.District,
		PostalCode:     r.Company.PostalCode,
		Address:        r.Company.Address,
	}
}

func (r SubmitApplicationRequest) ToPerson() domain.AuthorizedPerson {
	return domain.AuthorizedPerson{
		NationalID:  r.Person.NationalID,
		FirstName:   r.Person.FirstName,
		LastName:    r.Person.LastName,
		Email:       r.Person.Email,
		MobilePhone: r.Person.MobilePhone,
	}
}

func (r SubmitApplicationRequest) ToDocuments() []domain.Document {
	if len(r.Documents) == 0 {
		return nil
	}
	documents := make([]domain.Document, 0, len(r.Documents))
	for _, d := range r.Documents {
		documents = append(documents, domain.Document{Name: d.Name, Content: d.Content})
	}
	return documents
}

func (r DispatchReportRequest) ToRecipients() []domain.Recipient {
	recipients := make([]domain.Recipient, 0, len(r.Recipients))
	for _, rec := range r.Recipients {
		recipients = append(recipients, domain.Recipient{Department: rec.Department, Email: rec.Email})
	}
	return recipients
}

func ToFindingDTOs(findings []domain.SourceFinding) []FindingDTO {
	dtos := make([]FindingDTO, 0, len(findings))
	for _, f := range findings {
		dtos = append(dtos, FindingDTO{
			SourceName:  f.SourceName,
			Status:      string(f.Status),
			DataFound:   f.DataFound,
			RiskImpact:  f.RiskImpact,
			RawScore:    f.RawScore,
			Weight:      f.Weight,
			Blacklisted: f.Blacklisted,
		})
	}
	return dtos
}

func ToDispatchResultDTOs(results []domain.DispatchResult) []DispatchResultDTO {
	dtos := make([]DispatchResultDTO, 0, len(results))
	for _, res := range results {
		dtos = append(dtos, DispatchResultDTO{
			Department: res.Recipient.Department,
			Email:      res.Recipient.Email,
			Delivered:  res.Delivered,
			Error:      res.Error,
		})
	}
	return dtos
}
