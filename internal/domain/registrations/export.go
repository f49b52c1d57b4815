package registrations

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
)

const (
	ExportFilename    = "conference_registrations.xlsx"
	ExportContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ExportSheetName   = "Registrations"

	// ExportTimeLayout renders registration timestamps independent of server locale.
	ExportTimeLayout = time.RFC3339
)

// Column binds one registration field to a worksheet column.
type Column struct {
	Header string
	Key    string
	Width  float64
	value  func(*Registration) any
}

// Columns is the fixed export layout, in worksheet order.
var Columns = []Column{
	{Header: "First Name", Key: "firstName", Width: 15, value: func(r *Registration) any { return r.FirstName }},
	{Header: "Last Name", Key: "lastName", Width: 15, value: func(r *Registration) any { return r.LastName }},
	{Header: "Middle Name", Key: "middleName", Width: 15, value: func(r *Registration) any { return r.MiddleName }},
	{Header: "Age Bracket", Key: "ageBracket", Width: 15, value: func(r *Registration) any { return r.AgeBracket }},
	{Header: "Email", Key: "email", Width: 25, value: func(r *Registration) any { return r.Email }},
	{Header: "WhatsApp Phone", Key: "whatsappPhone", Width: 20, value: func(r *Registration) any { return r.WhatsAppPhone }},
	{Header: "Passport Country", Key: "passportCountry", Width: 20, value: func(r *Registration) any { return r.PassportCountry }},
	{Header: "Country of Residence", Key: "countryOfResidence", Width: 20, value: func(r *Registration) any { return r.CountryOfResidence }},
	{Header: "Region/State", Key: "regionState", Width: 15, value: func(r *Registration) any { return r.RegionState }},
	{Header: "Sex", Key: "sex", Width: 10, value: func(r *Registration) any { return r.Sex }},
	{Header: "Education Level", Key: "educationLevel", Width: 20, value: func(r *Registration) any { return r.EducationLevel }},
	{Header: "Course of Study", Key: "courseOfStudy", Width: 20, value: func(r *Registration) any { return r.CourseOfStudy }},
	{Header: "Occupation", Key: "occupation", Width: 20, value: func(r *Registration) any { return r.Occupation }},
	{Header: "Sending Organization", Key: "sendingOrganization", Width: 25, value: func(r *Registration) any { return r.SendingOrganization }},
	{Header: "Applicant Type", Key: "applicantType", Width: 20, value: func(r *Registration) any { return r.ApplicantType }},
	{Header: "First Time Attending", Key: "firstTimeAttending", Width: 20, value: func(r *Registration) any { return r.FirstTimeAttending }},
	{Header: "Self Funding", Key: "selfFunding", Width: 15, value: func(r *Registration) any { return r.SelfFunding }},
	{Header: "Scholarship Needed", Key: "scholarshipNeeded", Width: 20, value: func(r *Registration) any { return r.ScholarshipNeeded }},
	{Header: "Belongs to MK Group", Key: "belongsToMKGroup", Width: 20, value: func(r *Registration) any { return r.BelongsToMKGroup }},
	{Header: "Reference Info", Key: "referenceInfo", Width: 40, value: func(r *Registration) any { return r.ReferenceInfo }},
	{Header: "Registration Date", Key: "registrationDate", Width: 20, value: func(r *Registration) any {
		return r.RegistrationDate.UTC().Format(ExportTimeLayout)
	}},
}

// Export writes every registration to w as an xlsx workbook and returns the
// number of data rows. Nothing is written to w unless the whole workbook
// serialised successfully.
func (s *Service) Export(ctx context.Context, w io.Writer) (int, error) {
	regs, err := s.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	var buf bytes.Buffer
	if err := WriteWorkbook(&buf, regs); err != nil {
		return 0, err
	}
	if _, err := buf.WriteTo(w); err != nil {
		return 0, fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Info().Int("rows", len(regs)).Msg("registrations exported")
	return len(regs), nil
}

// WriteWorkbook renders regs into a single-sheet workbook with a bold header
// row followed by one row per registration.
func WriteWorkbook(w io.Writer, regs []Registration) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close workbook: %w", cerr)
		}
	}()

	if err := f.SetSheetName("Sheet1", ExportSheetName); err != nil {
		return fmt.Errorf("name worksheet: %w", err)
	}

	sw, err := f.NewStreamWriter(ExportSheetName)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	// Column widths must be declared before the first row is streamed.
	for i, col := range Columns {
		if err := sw.SetColWidth(i+1, i+1, col.Width); err != nil {
			return fmt.Errorf("set width for %s: %w", col.Key, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	header := make([]any, len(Columns))
	for i, col := range Columns {
		header[i] = excelize.Cell{StyleID: headerStyle, Value: col.Header}
	}
	if err := sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	for i := range regs {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i+2, err)
		}
		if err := sw.SetRow(cell, rowValues(&regs[i])); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flush worksheet: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("serialise workbook: %w", err)
	}
	return nil
}

func rowValues(reg *Registration) []any {
	row := make([]any, len(Columns))
	for i, col := range Columns {
		row[i] = col.value(reg)
	}
	return row
}
