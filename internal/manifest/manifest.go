// =============================================================================
// Easy Enigma Virtual Box Builder - XLSX Manifest
// =============================================================================
//
// This module writes an inventory of the virtual file tree to an XLSX
// workbook, one row per node, so a build can be reviewed before packaging.
//
// WORKBOOK STRUCTURE:
//   A single sheet named "Manifest" with a bold header row.
//
//   | Column A         | Column B          | Column C  | Column D       | Column E |
//   |------------------|-------------------|-----------|----------------|----------|
//   | Folder           | Virtual Path      | Kind      | Source Path    | Size     |
//   | %DEFAULT FOLDER% | %DEFAULT FOLDER%\x| File      | C:\app\data\x  | 1024     |
//   | %DEFAULT FOLDER% | %DEFAULT FOLDER%\y| Directory | C:\app\data\y  |          |
//
//   Size is left blank for directories.
//
// =============================================================================

package manifest

import (
	"fmt"
	"strconv"

	"github.com/eevb-tools/eevb/internal/types"
	"github.com/eevb-tools/eevb/pkg/utils"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the manifest sheet.
const SheetName = "Manifest"

// Header is the manifest's header row.
var Header = []string{"Folder", "Virtual Path", "Kind", "Source Path", "Size"}

// =============================================================================
// DATA STRUCTURES
// =============================================================================

// Entry is one row of the manifest.
type Entry struct {
	// Folder is the virtual folder literal, e.g. "%DEFAULT FOLDER%".
	Folder string

	// VirtualPath is the node's path inside the box, starting at the folder.
	VirtualPath string

	// Kind is "File" or "Directory".
	Kind string

	// SourcePath is the canonical path on disk.
	SourcePath string

	// Size is the file size in bytes; -1 for directories and unreadable files.
	Size int64
}

// Entries flattens sections into manifest rows, depth-first.
func Entries(sections []*types.VirtualFolderSection) []Entry {
	var entries []Entry
	for _, section := range sections {
		section.Walk(func(node *types.VirtualFileNode, virtualPath string) {
			entry := Entry{
				Folder:      section.Literal,
				VirtualPath: virtualPath,
				Kind:        node.Kind.String(),
				SourcePath:  node.SourcePath,
				Size:        -1,
			}
			if !node.IsDir() {
				if size, err := utils.GetFileSize(node.SourcePath); err == nil {
					entry.Size = size
				}
			}
			entries = append(entries, entry)
		})
	}
	return entries
}

// =============================================================================
// WRITER
// =============================================================================

// Write writes the manifest of sections to an XLSX file.
//
// PARAMETERS:
//   - path: The workbook to create. An existing file is overwritten.
//   - sections: The built virtual folder sections.
//
// RETURNS:
//   - The number of rows written, header excluded.
//   - An error if the workbook cannot be built or saved.
func Write(path string, sections []*types.VirtualFolderSection) (int, error) {
	entries := Entries(sections)

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return 0, fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(SheetName, "A1", &Header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return 0, fmt.Errorf("failed to create header style: %w", err)
	}
	lastHeader, err := excelize.CoordinatesToCellName(len(Header), 1)
	if err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(SheetName, "A1", lastHeader, bold); err != nil {
		return 0, fmt.Errorf("failed to style header: %w", err)
	}

	for i, entry := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return 0, err
		}
		row := []interface{}{entry.Folder, entry.VirtualPath, entry.Kind, entry.SourcePath, nil}
		if entry.Size >= 0 {
			row[4] = entry.Size
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return 0, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.SetColWidth(SheetName, "A", "A", 24); err != nil {
		return 0, err
	}
	if err := f.SetColWidth(SheetName, "B", "D", 48); err != nil {
		return 0, err
	}

	if err := f.SaveAs(path); err != nil {
		return 0, fmt.Errorf("failed to save manifest: %w", err)
	}
	return len(entries), nil
}

// =============================================================================
// READER
// =============================================================================

// Read loads the entries of a manifest written by Write.
func Read(path string) ([]Entry, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	var entries []Entry
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 4 {
			continue
		}
		entry := Entry{
			Folder:      row[0],
			VirtualPath: row[1],
			Kind:        row[2],
			SourcePath:  row[3],
			Size:        -1,
		}
		if len(row) > 4 && row[4] != "" {
			size, err := strconv.ParseInt(row[4], 10, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: invalid size %q: %w", i+1, row[4], err)
			}
			entry.Size = size
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
