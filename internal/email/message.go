// Package email builds the notification sent when an analysis completes.
// Delivery lives in the ses and noop subpackages.
package email

import (
	"fmt"
	"html"
	"strings"

	"medscan/internal/domain"
)

// Message is a rendered notification.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// ReportURL returns the frontend link for a report.
func ReportURL(frontendURL string, report *domain.Report) string {
	return fmt.Sprintf("%s/reports/%s", strings.TrimRight(frontendURL, "/"), report.ID)
}

// BuildAnalysisReady renders the analysis-ready notification for report.
func BuildAnalysisReady(report *domain.Report, frontendURL string) Message {
	link := ReportURL(frontendURL, report)
	verdict := verdictLine(report)

	var abnormal []string
	for _, p := range report.Result.Parameters {
		if p.Status.OutOfRange() {
			abnormal = append(abnormal, fmt.Sprintf("%s: %s (%s)", p.Name, p.Value, p.Status))
		}
	}

	var text strings.Builder
	fmt.Fprintf(&text, "Your document %q has been analysed.\n\n%s\n", report.OriginalFilename, verdict)
	if len(abnormal) > 0 {
		text.WriteString("\nValues outside the normal range:\n")
		for _, a := range abnormal {
			fmt.Fprintf(&text, "  - %s\n", a)
		}
	}
	fmt.Fprintf(&text, "\nView the full report: %s\n\n%s\n", link, footer)

	var items strings.Builder
	for _, a := range abnormal {
		fmt.Fprintf(&items, "<li>%s</li>", html.EscapeString(a))
	}
	abnormalHTML := ""
	if items.Len() > 0 {
		abnormalHTML = "<p>Values outside the normal range:</p><ul>" + items.String() + "</ul>"
	}

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Your report analysis is ready</h2>
  <p>Your document <strong>%s</strong> has been analysed.</p>
  <p>%s</p>
  %s
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #0F766E; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Report</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">%s</p>
</body>
</html>`,
		html.EscapeString(report.OriginalFilename), html.EscapeString(verdict), abnormalHTML,
		html.EscapeString(link), html.EscapeString(footer))

	return Message{
		Subject: subjectFor(report),
		HTML:    htmlBody,
		Text:    text.String(),
	}
}

const footer = "This summary is informational only and is not a medical diagnosis. " +
	"Please consult a qualified healthcare professional."

func subjectFor(report *domain.Report) string {
	if rt := report.Result.Classification.ReportType; rt != nil {
		return "Your " + rt.DisplayName() + " analysis is ready"
	}
	return "Your document analysis is ready"
}

func verdictLine(report *domain.Report) string {
	switch report.Result.Status {
	case domain.AnalysisStatusMedical:
		if report.Result.Summary != nil {
			return *report.Result.Summary
		}
		return "The document was recognised as a medical report."
	case domain.AnalysisStatusNotMedical:
		return "The document does not appear to be a medical report."
	default:
		return "The file format is not supported. Please upload a PDF or image file."
	}
}
