package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"calltrack_backend/internal/leads/repository"
	"calltrack_backend/internal/leads/transport"
	"calltrack_backend/platform/apperr"
	"calltrack_backend/platform/phone"

	"github.com/google/uuid"
)

// csvHeaderAliases maps accepted column headers to canonical field names.
// Headers are matched case-insensitively after trimming.
var csvHeaderAliases = map[string]string{
	"company_name":   "company_name",
	"company":        "company_name",
	"contact_person": "contact_person",
	"contact":        "contact_person",
	"name":           "contact_person",
	"email":          "email",
	"phone":          "phone",
	"phone_number":   "phone",
	"priority":       "priority",
	"notes":          "notes",
}

// ImportCSV parses a CSV stream and bulk-inserts the leads it contains.
// Rows missing a company name or phone are skipped and reported in the
// result rather than failing the whole import.
func (s *Service) ImportCSV(ctx context.Context, uploadedBy uuid.UUID, r io.Reader) (*transport.ImportResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, apperr.BadRequest("csv file is empty or unreadable")
	}

	fields := make([]string, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		fields[i] = csvHeaderAliases[key]
	}

	result := &transport.ImportResult{Errors: []string{}}
	var batch []repository.Lead
	now := time.Now()

	for line := 2; ; line++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: %v", line, err))
			continue
		}

		row := map[string]string{}
		for i, value := range record {
			if i < len(fields) && fields[i] != "" {
				row[fields[i]] = strings.TrimSpace(value)
			}
		}

		if row["company_name"] == "" || row["phone"] == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("line %d: missing company_name or phone", line))
			continue
		}

		priority := transport.LeadPriority(row["priority"])
		switch priority {
		case transport.LeadPriorityLow, transport.LeadPriorityMedium, transport.LeadPriorityHigh:
		default:
			priority = transport.LeadPriorityMedium
		}

		batch = append(batch, repository.Lead{
			ID:            uuid.New(),
			CompanyName:   row["company_name"],
			ContactPerson: row["contact_person"],
			Email:         row["email"],
			Phone:         phone.NormalizeE164(row["phone"]),
			Status:        string(transport.LeadStatusNew),
			Priority:      string(priority),
			UploadedBy:    uploadedBy,
			Notes:         row["notes"],
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	if len(batch) > 0 {
		if err := s.repo.CreateBatch(ctx, batch); err != nil {
			return nil, apperr.Wrap(apperr.KindInternal, "failed to import leads", err)
		}
	}

	result.Imported = len(batch)
	return result, nil
}
