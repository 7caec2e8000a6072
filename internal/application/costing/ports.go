package costing

import "context"

// ReportPDFGenerator genera la representación PDF del reporte de valorización.
type ReportPDFGenerator interface {
	GenerateValuationPDF(ctx context.Context, report *Report) ([]byte, error)
}
