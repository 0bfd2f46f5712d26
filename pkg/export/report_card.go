package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// SubjectLine is one row of the report-card subject table.
type SubjectLine struct {
	Subject      string
	CA1          float64
	CA2          float64
	Exam         float64
	Total        float64
	Grade        string
	Position     int
	ClassAverage float64
	Comment      string
}

// ReportCard carries everything needed to render a student's term report.
type ReportCard struct {
	SchoolName     string
	SchoolMotto    string
	StudentName    string
	AdmissionNo    string
	ClassName      string
	TermName       string
	SessionName    string
	Subjects       []SubjectLine
	TotalScore     float64
	AverageScore   float64
	GPA            float64
	ClassPosition  int
	TotalStudents  int
	DaysPresent    int
	DaysAbsent     int
	Psychomotor    string
	Affective      string
	TeacherComment string
	HeadComment    string
	NextTermBegins string
}

// ReportCardPDF renders report cards with gofpdf.
type ReportCardPDF struct{}

// NewReportCardPDF constructs a report card renderer.
func NewReportCardPDF() *ReportCardPDF {
	return &ReportCardPDF{}
}

// Render produces the PDF bytes for a single report card.
func (e *ReportCardPDF) Render(card ReportCard) ([]byte, error) {
	if card.StudentName == "" {
		return nil, fmt.Errorf("report card requires a student name")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 12, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 9, strings.ToUpper(card.SchoolName), "", 1, "C", false, 0, "")
	if card.SchoolMotto != "" {
		pdf.SetFont("Arial", "I", 9)
		pdf.CellFormat(0, 5, card.SchoolMotto, "", 1, "C", false, 0, "")
	}
	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("%s REPORT CARD - %s", strings.ToUpper(card.TermName), card.SessionName), "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(95, 6, fmt.Sprintf("Name: %s", card.StudentName), "", 0, "", false, 0, "")
	pdf.CellFormat(95, 6, fmt.Sprintf("Admission No: %s", card.AdmissionNo), "", 1, "", false, 0, "")
	pdf.CellFormat(95, 6, fmt.Sprintf("Class: %s", card.ClassName), "", 0, "", false, 0, "")
	pdf.CellFormat(95, 6, fmt.Sprintf("Position: %s of %d", ordinal(card.ClassPosition), card.TotalStudents), "", 1, "", false, 0, "")
	pdf.Ln(2)

	headers := []struct {
		label string
		width float64
	}{
		{"Subject", 48}, {"CA1", 14}, {"CA2", 14}, {"Exam", 16},
		{"Total", 16}, {"Grade", 16}, {"Pos", 14}, {"Class Avg", 20}, {"Remark", 32},
	}
	pdf.SetFont("Arial", "B", 9)
	for _, h := range headers {
		pdf.CellFormat(h.width, 7, h.label, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, line := range card.Subjects {
		pdf.CellFormat(48, 6, line.Subject, "1", 0, "", false, 0, "")
		pdf.CellFormat(14, 6, formatScore(line.CA1), "1", 0, "C", false, 0, "")
		pdf.CellFormat(14, 6, formatScore(line.CA2), "1", 0, "C", false, 0, "")
		pdf.CellFormat(16, 6, formatScore(line.Exam), "1", 0, "C", false, 0, "")
		pdf.CellFormat(16, 6, formatScore(line.Total), "1", 0, "C", false, 0, "")
		pdf.CellFormat(16, 6, line.Grade, "1", 0, "C", false, 0, "")
		pdf.CellFormat(14, 6, ordinal(line.Position), "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, formatScore(line.ClassAverage), "1", 0, "C", false, 0, "")
		pdf.CellFormat(32, 6, truncate(line.Comment, 24), "1", 0, "", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(3)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 7, "SUMMARY", "", 1, "", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(63, 6, fmt.Sprintf("Total Score: %.2f", card.TotalScore), "", 0, "", false, 0, "")
	pdf.CellFormat(63, 6, fmt.Sprintf("Average: %.2f", card.AverageScore), "", 0, "", false, 0, "")
	pdf.CellFormat(64, 6, fmt.Sprintf("GPA: %.2f", card.GPA), "", 1, "", false, 0, "")
	pdf.CellFormat(63, 6, fmt.Sprintf("Days Present: %d", card.DaysPresent), "", 0, "", false, 0, "")
	pdf.CellFormat(63, 6, fmt.Sprintf("Days Absent: %d", card.DaysAbsent), "", 1, "", false, 0, "")
	pdf.CellFormat(63, 6, fmt.Sprintf("Psychomotor: %s", card.Psychomotor), "", 0, "", false, 0, "")
	pdf.CellFormat(63, 6, fmt.Sprintf("Affective: %s", card.Affective), "", 1, "", false, 0, "")
	pdf.Ln(2)

	if card.TeacherComment != "" {
		pdf.MultiCell(0, 6, fmt.Sprintf("Class Teacher: %s", card.TeacherComment), "", "", false)
	}
	if card.HeadComment != "" {
		pdf.MultiCell(0, 6, fmt.Sprintf("Principal: %s", card.HeadComment), "", "", false)
	}
	if card.NextTermBegins != "" {
		pdf.CellFormat(0, 6, fmt.Sprintf("Next term begins: %s", card.NextTermBegins), "", 1, "", false, 0, "")
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render report card: %w", err)
	}
	return buf.Bytes(), nil
}

func formatScore(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

func ordinal(n int) string {
	if n <= 0 {
		return "-"
	}
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
