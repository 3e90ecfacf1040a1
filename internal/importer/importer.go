// Package importer reads clinic room programs from CSV and Excel sheets and
// building shells from DXF drawings. It supports automatic delimiter
// detection, flexible column mapping and case-insensitive header
// recognition. Bad rows are reported, never fatal.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/ClinicLayout/internal/model"
	"github.com/piwi3910/ClinicLayout/internal/rules"
)

// ImportResult holds the results of an import operation.
type ImportResult struct {
	Rooms    []model.RoomRequest
	Metadata model.ProgramMetadata
	// Shell is parsed from the project size metadata; zero when absent.
	Shell    model.Shell
	Errors   []string
	Warnings []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Category int
	Space    int
	Quantity int
	Size     int
	People   int
	Comments int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"category": {"category", "categories", "zone"},
	"space":    {"space", "spaces", "room", "room name", "room type", "name"},
	"quantity": {"qty", "quantity", "count", "number", "num"},
	"size":     {"size", "dimensions", "dims", "room size"},
	"people":   {"# of people", "people", "occupants", "occupancy"},
	"comments": {"comments", "comment", "notes", "note", "remarks"},
}

// maxHeaderScan is how many leading rows may hold metadata before the
// program header.
const maxHeaderScan = 12

// DetectCSVDelimiter reads the file content and determines the most likely CSV delimiter.
// It tries comma, semicolon, tab, and pipe. The delimiter that produces the most
// consistent (non-one) column count across lines wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		// Score by the most common column count above one.
		counts := make(map[int]int)
		for _, row := range records {
			if len(row) > 1 {
				counts[len(row)]++
			}
		}
		for cols, n := range counts {
			if weighted := n*10 + cols; weighted > bestScore {
				bestScore = weighted
				bestDelimiter = delim
			}
		}
	}

	return bestDelimiter
}

// DetectColumns examines a row and returns a ColumnMapping. It reports
// true only when the row names a space column, which every program header
// must have.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{
		Category: -1,
		Space:    -1,
		Quantity: -1,
		Size:     -1,
		People:   -1,
		Comments: -1,
	}

	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				var slot *int
				switch role {
				case "category":
					slot = &mapping.Category
				case "space":
					slot = &mapping.Space
				case "quantity":
					slot = &mapping.Quantity
				case "size":
					slot = &mapping.Size
				case "people":
					slot = &mapping.People
				case "comments":
					slot = &mapping.Comments
				}
				if *slot == -1 {
					*slot = i
				}
			}
		}
	}

	return mapping, mapping.Space != -1
}

// findHeader returns the index of the first row within maxHeaderScan that
// looks like a program header.
func findHeader(rows [][]string) (int, ColumnMapping, bool) {
	for i := 0; i < len(rows) && i < maxHeaderScan; i++ {
		if mapping, ok := DetectColumns(rows[i]); ok {
			return i, mapping, true
		}
	}
	return -1, ColumnMapping{}, false
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// Importer converts program rows into room requests, matching space names
// against the rule repository.
type Importer struct {
	repo *rules.Repository
}

// New creates an Importer. With a nil repository every normalized space
// name is accepted as a room type.
func New(repo *rules.Repository) *Importer {
	return &Importer{repo: repo}
}

// ImportCSV imports a program from a CSV file.
// It automatically detects the delimiter and maps columns by header names.
// Supports comma, semicolon, tab, and pipe delimiters.
func (im *Importer) ImportCSV(path string) ImportResult {
	result := ImportResult{}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open file: %v", err))
		return result
	}

	if len(bytes.TrimSpace(data)) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	delimiter := DetectCSVDelimiter(data)
	var warnings []string
	if delimiter != ',' {
		delimName := map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}[delimiter]
		warnings = append(warnings, fmt.Sprintf("Detected %s delimiter", delimName))
	}

	result = im.ImportCSVFromReader(bytes.NewReader(data), delimiter)
	result.Warnings = append(warnings, result.Warnings...)
	return result
}

// ImportCSVFromReader imports a program from a CSV reader with a specific delimiter.
// This is useful for testing or when the delimiter is already known.
func (im *Importer) ImportCSVFromReader(reader io.Reader, delimiter rune) ImportResult {
	result := ImportResult{}

	csvReader := csv.NewReader(reader)
	csvReader.Comma = delimiter
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1

	records, err := csvReader.ReadAll()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read CSV: %v", err))
		return result
	}

	if len(records) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	return im.importFromRows(records, "Line")
}

// ImportExcel imports a program from an Excel (.xlsx) file. The first sheet
// with a program header is used, else the first sheet.
func (im *Importer) ImportExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	var rows [][]string
	for i, sheet := range sheets {
		sheetRows, err := f.GetRows(sheet)
		if err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Cannot read sheet %q: %v", sheet, err))
			continue
		}
		if i == 0 {
			rows = sheetRows
		}
		if _, _, ok := findHeader(sheetRows); ok {
			rows = sheetRows
			if i > 0 {
				result.Warnings = append(result.Warnings, fmt.Sprintf("Using program sheet %q", sheet))
			}
			break
		}
	}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "Sheet is empty")
		return result
	}

	imported := im.importFromRows(rows, "Row")
	imported.Warnings = append(result.Warnings, imported.Warnings...)
	return imported
}

// importFromRows is the shared import logic for both CSV and Excel data.
// Rows above the header are read as metadata; each row below it is one
// program line.
func (im *Importer) importFromRows(rows [][]string, rowPrefix string) ImportResult {
	result := ImportResult{}

	headerIdx, mapping, ok := findHeader(rows)
	if !ok {
		result.Errors = append(result.Errors, "Required column not found in header: Space")
		return result
	}
	if headerIdx > 0 {
		result.Metadata = parseMetadata(rows[:headerIdx])
		if result.Metadata.ProjectSize != "" {
			if shell, ok := ParseShell(result.Metadata.ProjectSize); ok {
				result.Shell = shell
			} else {
				result.Warnings = append(result.Warnings, fmt.Sprintf("Cannot read project size '%s'", result.Metadata.ProjectSize))
			}
		}
	}

	category := ""
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}
		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)

		// Categories are written once per block.
		if c := getCell(row, mapping.Category); c != "" {
			category = strings.ToUpper(c)
		}

		req, errMsg, warning := im.parseRow(row, mapping, rowLabel, category)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		if warning != "" {
			result.Warnings = append(result.Warnings, warning)
		}
		if req.Type != "" {
			result.Rooms = append(result.Rooms, req)
		}
	}

	if len(result.Rooms) == 0 && len(result.Errors) == 0 {
		result.Errors = append(result.Errors, "No program rows found")
	}
	return result
}

// parseRow extracts a RoomRequest from a row. A row without a space name
// (a category heading) yields an empty request and no messages.
func (im *Importer) parseRow(row []string, mapping ColumnMapping, rowLabel, category string) (model.RoomRequest, string, string) {
	space := getCell(row, mapping.Space)
	if space == "" {
		return model.RoomRequest{}, "", ""
	}

	roomType, ok := im.matchSpace(space)
	if !ok {
		return model.RoomRequest{}, "", fmt.Sprintf("%s: Unknown space '%s', skipped", rowLabel, space)
	}

	count := 1
	if qtyStr := getCell(row, mapping.Quantity); qtyStr != "" {
		qty, err := strconv.ParseFloat(qtyStr, 64)
		if err != nil {
			return model.RoomRequest{}, fmt.Sprintf("%s: Invalid quantity '%s'", rowLabel, qtyStr), ""
		}
		if qty <= 0 || qty != math.Trunc(qty) {
			return model.RoomRequest{}, fmt.Sprintf("%s: Quantity must be a positive whole number", rowLabel), ""
		}
		count = int(qty)
	}

	req := model.NewRoomRequest(roomType, count)
	req.Label = space
	req.WidthHint, req.HeightHint = -1, -1

	var warning string
	if sizeStr := getCell(row, mapping.Size); sizeStr != "" {
		w, h := ParseSize(sizeStr)
		if w < 0 {
			warning = fmt.Sprintf("%s: Cannot read size '%s', ignoring it", rowLabel, sizeStr)
		} else {
			req.WidthHint, req.HeightHint = int(math.Round(w)), int(math.Round(h))
		}
	}

	var notes []string
	if c := getCell(row, mapping.Comments); c != "" {
		notes = append(notes, c)
	}
	if p := getCell(row, mapping.People); p != "" {
		notes = append(notes, "people: "+p)
	}
	req.Notes = strings.Join(notes, "; ")

	if warning == "" && category != "" && im.repo != nil {
		if rule, ok := im.repo.Get(roomType); ok && !sameCategory(category, rule.Category) {
			warning = fmt.Sprintf("%s: '%s' listed under %s but is a %s room", rowLabel, space, category, rule.Category)
		}
	}
	return req, "", warning
}

// sameCategory compares a sheet category heading with a rule category.
// Unrecognized headings never conflict.
func sameCategory(heading string, c rules.Category) bool {
	switch rules.Category(heading) {
	case rules.CategoryClinical, rules.CategoryPublic, rules.CategoryPrivate:
		return rules.Category(heading) == c
	}
	return true
}

// matchSpace resolves a space name to a room type: the normalized name
// itself, then the alias table.
func (im *Importer) matchSpace(space string) (string, bool) {
	name := NormalizeSpace(space)
	if name == "" {
		return "", false
	}
	if im.repo == nil {
		if alias, ok := spaceAliases[name]; ok {
			return alias, true
		}
		return name, true
	}
	if im.repo.Has(name) {
		return name, true
	}
	if alias, ok := spaceAliases[name]; ok && im.repo.Has(alias) {
		return alias, true
	}
	return "", false
}

// parseMetadata reads "key value" pairs from the rows above the header:
// the first non-empty cell is the key, the next one the value.
func parseMetadata(rows [][]string) model.ProgramMetadata {
	var meta model.ProgramMetadata
	for _, row := range rows {
		var cells []string
		for _, c := range row {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) == 0 {
			continue
		}
		key, value := cells[0], ""
		if k, v, found := strings.Cut(key, ":"); found && strings.TrimSpace(v) != "" {
			key, value = k, strings.TrimSpace(v)
		} else if len(cells) > 1 {
			value = cells[1]
		}
		key = strings.ToLower(strings.TrimSuffix(strings.TrimSpace(key), ":"))

		switch key {
		case "client", "client name", "customer":
			meta.Client = value
		case "date":
			meta.Date = value
		case "project type", "type":
			meta.ProjectType = strings.ToUpper(value)
		case "project size", "size", "building size", "shell":
			meta.ProjectSize = value
		}
	}
	return meta
}
