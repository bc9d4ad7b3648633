// =============================================================================
// Easy Enigma Virtual Box Builder - XML Writer Module
// =============================================================================
//
// This module is responsible for generating the project document read by the
// packager. It handles the specific nesting structure of the project format.
//
// XML STRUCTURE:
//   The generated XML follows this nesting pattern:
//
//   <?xml version="1.0" encoding="utf-8"?>
//   <>                                          <!-- Anonymous document element -->
//     <InputFile>C:\app\app.exe</InputFile>
//     <OutputFile>C:\app\app_boxed.exe</OutputFile>
//     <Files>
//       <Enabled>True</Enabled>
//       <DeleteExtractedOnExit>False</DeleteExtractedOnExit>
//       <CompressFiles>True</CompressFiles>
//       <Files>
//         <File>                                <!-- One per virtual folder -->
//           <Type>3</Type>
//           <Name>%DEFAULT FOLDER%</Name>
//           <Files>
//             <File>                            <!-- File node -->
//               <Type>2</Type>
//               <Name>x.txt</Name>
//               <File>C:\app\data\x.txt</File>
//             </File>
//             <File>                            <!-- Directory node -->
//               <Type>3</Type>
//               <Name>y</Name>
//               <Files>...</Files>
//             </File>
//           </Files>
//         </File>
//       </Files>
//     </Files>
//   </>
//
// The packager's project format uses an element with an empty name as the
// document element. The writer emits those tokens itself; serialized text is
// never rewritten afterwards.
//
// =============================================================================

package xmlwriter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"unicode/utf8"

	eevberrors "github.com/eevb-tools/eevb/internal/errors"
	"github.com/eevb-tools/eevb/internal/types"
)

// =============================================================================
// XML GENERATION OPTIONS
// =============================================================================

// GenerateOptions contains options for XML generation.
type GenerateOptions struct {
	// Indent is the string used for indentation.
	// Default: "  " (two spaces)
	Indent string

	// IncludeXMLDeclaration determines whether to include the XML declaration.
	// Default: true
	IncludeXMLDeclaration bool

	// XMLVersion is the XML version for the declaration.
	// Default: "1.0"
	XMLVersion string

	// Encoding is the encoding for the XML declaration.
	// Default: "utf-8"
	Encoding string

	// AnonymousRoot wraps the document in the packager's empty-named element.
	// When false the top-level elements are written as a fragment.
	// Default: true
	AnonymousRoot bool
}

// DefaultGenerateOptions returns the default generation options.
func DefaultGenerateOptions() GenerateOptions {
	return GenerateOptions{
		Indent:                "  ",
		IncludeXMLDeclaration: true,
		XMLVersion:            "1.0",
		Encoding:              "utf-8",
		AnonymousRoot:         true,
	}
}

// =============================================================================
// PROJECT
// =============================================================================

// Project is everything the packager needs, with paths already resolved.
type Project struct {
	// InputFile is the absolute path of the executable to wrap.
	InputFile string

	// OutputFile is the absolute path of the boxed executable.
	OutputFile string

	// DeleteOnExit and Compress map to DeleteExtractedOnExit and CompressFiles.
	DeleteOnExit bool
	Compress     bool

	// Sections are the non-empty virtual folders, in folder order.
	Sections []*types.VirtualFolderSection
}

// =============================================================================
// XML GENERATION FUNCTIONS
// =============================================================================

// Generate creates the project document with the default options.
//
// RETURNS:
//   - The XML document as a byte slice.
//   - A SerializationError if a name or path cannot be represented in XML.
func Generate(project *Project) ([]byte, error) {
	return GenerateWithOptions(project, DefaultGenerateOptions())
}

// GenerateWithOptions creates the project document with custom options.
func GenerateWithOptions(project *Project, options GenerateOptions) ([]byte, error) {
	if project == nil {
		return nil, eevberrors.NewSerializationError("no project to serialize", nil)
	}

	elements := buildDocument(project)
	if err := checkElements(elements); err != nil {
		return nil, eevberrors.NewSerializationError("failed to serialize project", err)
	}

	var buffer bytes.Buffer

	// Write XML declaration if requested.
	if options.IncludeXMLDeclaration {
		buffer.WriteString(fmt.Sprintf("<?xml version=\"%s\" encoding=\"%s\"?>\n",
			options.XMLVersion, options.Encoding))
	}

	level := 0
	if options.AnonymousRoot {
		buffer.WriteString("<>\n")
		level = 1
	}

	for _, element := range elements {
		writeElement(&buffer, element, options.Indent, level)
	}

	if options.AnonymousRoot {
		buffer.WriteString("</>\n")
	}

	return buffer.Bytes(), nil
}

// =============================================================================
// XML DOCUMENT BUILDING
// =============================================================================

// XMLElement represents a generic XML element.
type XMLElement struct {
	XMLName  xml.Name
	Value    string
	Children []XMLElement
}

// buildDocument constructs the top-level elements of the project.
func buildDocument(project *Project) []XMLElement {
	files := XMLElement{
		XMLName: xml.Name{Local: "Files"},
		Children: []XMLElement{
			createSimpleElement("Enabled", formatBool(true)),
			createSimpleElement("DeleteExtractedOnExit", formatBool(project.DeleteOnExit)),
			createSimpleElement("CompressFiles", formatBool(project.Compress)),
			buildFolderList(project.Sections),
		},
	}

	return []XMLElement{
		createSimpleElement("InputFile", project.InputFile),
		createSimpleElement("OutputFile", project.OutputFile),
		files,
	}
}

// buildFolderList constructs the container holding one element per folder.
func buildFolderList(sections []*types.VirtualFolderSection) XMLElement {
	list := XMLElement{XMLName: xml.Name{Local: "Files"}}

	for _, section := range sections {
		list.Children = append(list.Children, XMLElement{
			XMLName: xml.Name{Local: "File"},
			Children: []XMLElement{
				createSimpleElement("Type", strconv.Itoa(types.KindDirectory.PackagerType())),
				createSimpleElement("Name", section.Literal),
				buildNodeList(section.Nodes),
			},
		})
	}

	return list
}

// buildNodeList constructs a "Files" container for a list of nodes.
func buildNodeList(nodes []*types.VirtualFileNode) XMLElement {
	list := XMLElement{XMLName: xml.Name{Local: "Files"}}
	for _, node := range nodes {
		list.Children = append(list.Children, buildNodeElement(node))
	}
	return list
}

// buildNodeElement constructs the element for one file or directory.
//
// STRUCTURE:
//   <File>                          <File>
//     <Type>2</Type>                  <Type>3</Type>
//     <Name>x.txt</Name>              <Name>y</Name>
//     <File>C:\data\x.txt</File>      <Files>...</Files>
//   </File>                         </File>
func buildNodeElement(node *types.VirtualFileNode) XMLElement {
	element := XMLElement{
		XMLName: xml.Name{Local: "File"},
		Children: []XMLElement{
			createSimpleElement("Type", strconv.Itoa(node.Kind.PackagerType())),
			createSimpleElement("Name", node.Name),
		},
	}

	if node.IsDir() {
		element.Children = append(element.Children, buildNodeList(node.Children))
	} else {
		element.Children = append(element.Children, createSimpleElement("File", node.SourcePath))
	}

	return element
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// createSimpleElement creates a simple XML element with a text value.
func createSimpleElement(name, value string) XMLElement {
	return XMLElement{
		XMLName: xml.Name{Local: name},
		Value:   value,
	}
}

// formatBool renders a boolean the way the packager writes it.
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// checkElements rejects text that cannot appear in an XML 1.0 document.
func checkElements(elements []XMLElement) error {
	for _, element := range elements {
		if !utf8.ValidString(element.Value) {
			return fmt.Errorf("<%s>: invalid UTF-8 in %q", element.XMLName.Local, element.Value)
		}
		for _, r := range element.Value {
			if !isXMLChar(r) {
				return fmt.Errorf("<%s>: character %U is not allowed in XML: %q", element.XMLName.Local, r, element.Value)
			}
		}
		if err := checkElements(element.Children); err != nil {
			return err
		}
	}
	return nil
}

// isXMLChar reports whether r is in the XML 1.0 Char production.
func isXMLChar(r rune) bool {
	return r == 0x09 || r == 0x0A || r == 0x0D ||
		r >= 0x20 && r <= 0xD7FF ||
		r >= 0xE000 && r <= 0xFFFD ||
		r >= 0x10000 && r <= 0x10FFFF
}

// writeElement writes an XML element to the buffer with indentation.
func writeElement(buffer *bytes.Buffer, element XMLElement, indent string, level int) {
	// Write indentation.
	for i := 0; i < level; i++ {
		buffer.WriteString(indent)
	}

	// Write opening tag.
	buffer.WriteString("<")
	buffer.WriteString(element.XMLName.Local)

	// Check if element has children or value.
	if len(element.Children) == 0 && element.Value == "" {
		// Self-closing tag.
		buffer.WriteString("/>\n")
		return
	}

	buffer.WriteString(">")

	// Write value or children.
	if element.Value != "" {
		// Simple element with text value.
		buffer.WriteString(escapeXML(element.Value))
	} else {
		// Element with children.
		buffer.WriteString("\n")

		for _, child := range element.Children {
			writeElement(buffer, child, indent, level+1)
		}

		// Write indentation for closing tag.
		for i := 0; i < level; i++ {
			buffer.WriteString(indent)
		}
	}

	// Write closing tag.
	buffer.WriteString("</")
	buffer.WriteString(element.XMLName.Local)
	buffer.WriteString(">\n")
}

// escapeXML escapes special characters for XML.
func escapeXML(s string) string {
	var buffer bytes.Buffer

	for _, r := range s {
		switch r {
		case '&':
			buffer.WriteString("&amp;")
		case '<':
			buffer.WriteString("&lt;")
		case '>':
			buffer.WriteString("&gt;")
		case '"':
			buffer.WriteString("&quot;")
		case '\'':
			buffer.WriteString("&apos;")
		default:
			buffer.WriteRune(r)
		}
	}

	return buffer.String()
}
