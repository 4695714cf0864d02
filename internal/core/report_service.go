package core

import (
	"path"
	"sort"
	"time"

	"sellerprep-backend-go/internal/models"
)

const reportDateLayout = "2006-01-02"

// reportEntry pairs a rendered item with its sort keys.
type reportEntry struct {
	item models.ReportItem
	at   time.Time
	id   string
}

// AssembleReport builds the intermediate report document handed to the PDF
// renderer. It is deterministic: identical inputs, including generatedAt,
// produce a structurally identical document regardless of input slice order.
//
// Sections appear in creation order (ID as tiebreak) and each bucket lists
// its items chronologically. Items whose SectionID matches no section, or is
// empty, do not appear in the report.
func AssembleReport(
	property *models.Property,
	sections []*models.Section,
	documents []*models.Document,
	images []*models.Image,
	notes []*models.Note,
	generatedAt time.Time,
) *models.ReportDocument {
	ordered := make([]*models.Section, len(sections))
	copy(ordered, sections)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
		}
		return ordered[i].ID < ordered[j].ID
	})

	doc := &models.ReportDocument{
		PropertyAddress:     property.Address,
		PropertyDescription: property.Description,
		GeneratedAt:         generatedAt.Format(reportDateLayout),
	}

	for _, section := range ordered {
		reportSection := models.ReportSection{
			Title:     section.Title,
			Documents: documentItems(documents, section.ID),
			Images:    imageItems(images, section.ID),
			Notes:     noteItems(notes, section.ID),
		}
		doc.TotalDocuments += len(reportSection.Documents)
		doc.TotalImages += len(reportSection.Images)
		doc.TotalNotes += len(reportSection.Notes)
		doc.Sections = append(doc.Sections, reportSection)
	}
	doc.TotalSections = len(doc.Sections)

	return doc
}

func documentItems(documents []*models.Document, sectionID string) []models.ReportItem {
	var entries []reportEntry
	for _, d := range documents {
		if d.SectionID != sectionID {
			continue
		}
		entries = append(entries, reportEntry{
			item: models.ReportItem{
				DisplayName: path.Base(d.FileName),
				Date:        d.UploadedAt.Format(reportDateLayout),
				URL:         d.URL,
			},
			at: d.UploadedAt,
			id: d.ID,
		})
	}
	return sortedItems(entries)
}

func imageItems(images []*models.Image, sectionID string) []models.ReportItem {
	var entries []reportEntry
	for _, img := range images {
		if img.SectionID != sectionID {
			continue
		}
		entries = append(entries, reportEntry{
			item: models.ReportItem{
				DisplayName: path.Base(img.FileName),
				Date:        img.UploadedAt.Format(reportDateLayout),
				URL:         img.URL,
			},
			at: img.UploadedAt,
			id: img.ID,
		})
	}
	return sortedItems(entries)
}

func noteItems(notes []*models.Note, sectionID string) []models.ReportItem {
	var entries []reportEntry
	for _, n := range notes {
		if n.SectionID != sectionID {
			continue
		}
		entries = append(entries, reportEntry{
			item: models.ReportItem{
				DisplayName: "Note",
				Date:        n.CreatedAt.Format(reportDateLayout),
				Content:     n.Content,
			},
			at: n.CreatedAt,
			id: n.ID,
		})
	}
	return sortedItems(entries)
}

// sortedItems orders entries chronologically with the record ID breaking
// ties, then strips the sort keys. Always returns a non-nil slice so the
// rendered report has stable empty buckets.
func sortedItems(entries []reportEntry) []models.ReportItem {
	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].at.Equal(entries[j].at) {
			return entries[i].at.Before(entries[j].at)
		}
		return entries[i].id < entries[j].id
	})
	items := make([]models.ReportItem, 0, len(entries))
	for _, e := range entries {
		items = append(items, e.item)
	}
	return items
}
