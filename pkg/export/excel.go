// Package export renders the final catalogue as a spreadsheet: one row
// per broadcast × person, for people who want to filter and pivot the
// guest data without touching JSON.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"talk-catalog/pkg/domain"
)

const sheetName = "Auftritte"

var header = []string{
	"showAuthor", "showTitle", "showUrl",
	"bcTitle", "bcDate", "bcDescription", "bcUrl",
	"personName", "personFunction", "isGuest",
}

// Row is one flattened broadcast × person appearance.
type Row struct {
	ShowAuthor     string
	ShowTitle      string
	ShowURL        string
	BcTitle        string
	BcDate         string
	BcDescription  string
	BcURL          string
	PersonName     string
	PersonFunction string
	IsGuest        bool
}

// Rows flattens the catalogue into appearance rows. A person with
// multiple functions gets them joined into one cell; a person without
// functions gets an empty cell.
func Rows(shows []domain.Show) []Row {
	var rows []Row
	for _, show := range shows {
		for _, broadcast := range show.Broadcasts {
			appendPersons := func(persons []domain.Person, isGuest bool) {
				for _, person := range persons {
					rows = append(rows, Row{
						ShowAuthor:     show.Author,
						ShowTitle:      show.Title,
						ShowURL:        show.URL,
						BcTitle:        broadcast.Title,
						BcDate:         broadcast.Date,
						BcDescription:  broadcast.Description,
						BcURL:          broadcast.URL,
						PersonName:     person.Name,
						PersonFunction: joinFunctions(person.Functions),
						IsGuest:        isGuest,
					})
				}
			}
			appendPersons(broadcast.Moderators, false)
			appendPersons(broadcast.Guests, true)
		}
	}
	return rows
}

func joinFunctions(functions []string) string {
	joined := ""
	for i, function := range functions {
		if i > 0 {
			joined += ", "
		}
		joined += function
	}
	return joined
}

// WriteFile writes the spreadsheet to path, with a bold, frozen header row.
func WriteFile(shows []domain.Show, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", sheetName)

	for col, title := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(sheetName, cell, title); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	lastHeaderCell, _ := excelize.CoordinatesToCellName(len(header), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastHeaderCell, bold); err != nil {
		return fmt.Errorf("apply header style: %w", err)
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	for i, r := range Rows(shows) {
		values := []interface{}{
			r.ShowAuthor, r.ShowTitle, r.ShowURL,
			r.BcTitle, r.BcDate, r.BcDescription, r.BcURL,
			r.PersonName, r.PersonFunction, r.IsGuest,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return fmt.Errorf("write row %d: %w", i+2, err)
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save spreadsheet %s: %w", path, err)
	}
	return nil
}
