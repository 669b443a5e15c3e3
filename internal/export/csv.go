// Package export writes issue lists in spreadsheet-friendly formats.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/mtlprog/panchayat/internal/domain"
)

var header = []string{
	"id", "category", "title", "location", "urgency", "status",
	"created_at", "updated_at", "anonymous", "phone", "email", "images",
}

// WriteCSV writes one row per issue, in the given order.
// Contact columns are empty for anonymous issues.
func WriteCSV(w io.Writer, issues []*domain.Issue) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, issue := range issues {
		updated := issue.CreatedAt
		if last, ok := issue.LastChange(); ok {
			updated = last.Timestamp
		}

		var phone, email string
		if issue.Contact != nil && !issue.IsAnonymous {
			phone, email = issue.Contact.Phone, issue.Contact.Email
		}

		row := []string{
			issue.ID,
			string(issue.Category),
			issue.Title,
			issue.Location,
			string(issue.Urgency),
			string(issue.Status),
			issue.CreatedAt.UTC().Format(time.RFC3339),
			updated.UTC().Format(time.RFC3339),
			strconv.FormatBool(issue.IsAnonymous),
			phone,
			email,
			strconv.Itoa(len(issue.Images)),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", issue.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}
