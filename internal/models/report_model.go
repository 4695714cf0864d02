package models

// ReportItem is a single document, image or note as it appears in the
// assembled report: a display filename (basename of the stored path, never
// the full object key), a human-readable date and an absolute retrieval URL.
type ReportItem struct {
	DisplayName string `json:"displayName"`
	Date        string `json:"date"`
	URL         string `json:"url,omitempty"`
	Content     string `json:"content,omitempty"` // set for notes only
}

// ReportSection is one ordered section of the report with its bucketed
// children, each list in chronological order.
type ReportSection struct {
	Title     string       `json:"title"`
	Documents []ReportItem `json:"documents"`
	Images    []ReportItem `json:"images"`
	Notes     []ReportItem `json:"notes"`
}

// ReportDocument is the intermediate document model handed to the PDF
// renderer. It is assembled deterministically: identical inputs produce a
// structurally identical tree.
type ReportDocument struct {
	PropertyAddress     string          `json:"propertyAddress"`
	PropertyDescription string          `json:"propertyDescription,omitempty"`
	GeneratedAt         string          `json:"generatedAt"`
	Sections            []ReportSection `json:"sections"`

	// Aggregate counts over the bucketed items, for the summary page.
	TotalSections  int `json:"totalSections"`
	TotalDocuments int `json:"totalDocuments"`
	TotalImages    int `json:"totalImages"`
	TotalNotes     int `json:"totalNotes"`
}
