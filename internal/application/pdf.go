package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/payrisk/merchant-risk/internal/domain"
)

func GeneratePDF(app *domain.Application, assessment *domain.RiskAssessment) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 20)
	pdf.Cell(0, 10, "Merchant Risk Assessment Report")
	pdf.Ln(15)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s UTC", time.Now().UTC().Format("2006-01-02 15:04:05")))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Merchant Information")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 6, "Legal Name:")
	pdf.SetFont("Arial", "B", 11)
	pdf.MultiCell(0, 6, app.Company.LegalName, "", "", false)
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 6, "Trade Name:")
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, app.Company.TradeName)
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 6, "Location:")
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, fmt.Sprintf("%s, %s", app.Company.City, app.Company.District))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Risk Assessment")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 6, "Composite Score:")
	pdf.SetFont("Arial", "B", 11)
	pdf.Cell(0, 6, fmt.Sprintf("%.0f / 100", assessment.CompositeScore))
	pdf.Ln(6)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(40, 6, "Category:")
	pdf.SetFont("Arial", "B", 11)

	switch assessment.Category {
	case domain.CategoryExcellent, domain.CategoryLow:
		pdf.SetTextColor(0, 128, 0)
	case domain.CategoryMedium:
		pdf.SetTextColor(255, 165, 0)
	case domain.CategoryHigh:
		pdf.SetTextColor(255, 0, 0)
	case domain.CategoryCritical:
		pdf.SetTextColor(139, 0, 0)
	}
	pdf.Cell(0, 6, string(assessment.Category))
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Verification Findings")
	pdf.Ln(8)

	for _, finding := range assessment.Findings {
		pdf.SetFont("Arial", "B", 10)
		pdf.Cell(0, 5, fmt.Sprintf("%s (%.0f/%.0f) - %s", finding.SourceName, finding.RawScore, finding.Weight, strings.ToUpper(string(finding.Status))))
		pdf.Ln(5)

		pdf.SetFont("Arial", "", 10)
		pdf.Cell(10, 5, "")
		pdf.MultiCell(0, 5, finding.DataFound, "", "", false)

		if finding.Blacklisted {
			pdf.SetFont("Arial", "B", 10)
			pdf.SetTextColor(255, 0, 0)
			pdf.Cell(10, 5, "")
			pdf.Cell(0, 5, "BLACKLIST SIGNAL")
			pdf.SetTextColor(0, 0, 0)
			pdf.Ln(5)
		}
		pdf.Ln(2)
	}
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Recommendations")
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	for _, item := range assessment.Recommendations {
		pdf.Cell(10, 5, "")
		pdf.MultiCell(0, 5, fmt.Sprintf("- %s", item), "", "", false)
	}

	pdf.SetY(-20)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.Cell(0, 10, fmt.Sprintf("Application ID: %s / Assessment ID: %s", assessment.ApplicationID, assessment.ID))

	var buf strings.Builder
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate pdf output: %w", err)
	}

	return []byte(buf.String()), nil
}
