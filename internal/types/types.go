// =============================================================================
// Easy Enigma Virtual Box Builder - Shared Types
// =============================================================================
//
// This package contains the virtual file tree shared by:
//   - filetree   (builds it)
//   - xmlwriter  (serializes it)
//   - manifest   (reports it)
//   - validation (inspects it)
//
// A tree is built fresh for every build and never modified afterwards.
//
// =============================================================================

package types

// =============================================================================
// VIRTUAL FILE TREE
// =============================================================================

// NodeKind distinguishes files from directories.
type NodeKind int

const (
	// KindFile is a single embedded file.
	KindFile NodeKind = iota

	// KindDirectory is a directory whose children are embedded under it.
	KindDirectory
)

// String returns "File" or "Directory".
func (k NodeKind) String() string {
	if k == KindDirectory {
		return "Directory"
	}
	return "File"
}

// PackagerType is the numeric type code the packager uses for the kind.
func (k NodeKind) PackagerType() int {
	if k == KindDirectory {
		return 3
	}
	return 2
}

// VirtualFileNode is one entry of the virtual file tree.
type VirtualFileNode struct {
	// Kind is File or Directory.
	Kind NodeKind

	// Name is the entry name inside its container (the base name on disk).
	Name string

	// SourcePath is the absolute path of the local file or directory.
	SourcePath string

	// Children are the entries of a directory, in listing order.
	// Always empty for files.
	Children []*VirtualFileNode
}

// IsDir reports whether the node is a directory.
func (n *VirtualFileNode) IsDir() bool {
	return n.Kind == KindDirectory
}

// Walk visits n and all of its descendants depth-first. virtualPath is the
// node's path relative to its section, using "\" as the packager does.
func (n *VirtualFileNode) Walk(parentPath string, visit func(node *VirtualFileNode, virtualPath string)) {
	path := n.Name
	if parentPath != "" {
		path = parentPath + `\` + n.Name
	}
	visit(n, path)
	for _, child := range n.Children {
		child.Walk(path, visit)
	}
}

// VirtualFolderSection holds the nodes embedded in one virtual folder.
type VirtualFolderSection struct {
	// Literal is the folder's XML token, e.g. "%DEFAULT FOLDER%".
	Literal string

	// Key is the folder's configuration key, e.g. "DefaultFolder".
	Key string

	// Nodes are the section's top-level entries, in configuration order.
	Nodes []*VirtualFileNode
}

// Walk visits every node of the section depth-first.
func (s *VirtualFolderSection) Walk(visit func(node *VirtualFileNode, virtualPath string)) {
	for _, node := range s.Nodes {
		node.Walk(s.Literal, visit)
	}
}

// TreeStats counts the nodes of a set of sections.
type TreeStats struct {
	Folders     int
	Files       int
	Directories int
}

// CountNodes returns statistics for sections.
func CountNodes(sections []*VirtualFolderSection) TreeStats {
	stats := TreeStats{Folders: len(sections)}
	for _, section := range sections {
		section.Walk(func(node *VirtualFileNode, _ string) {
			if node.IsDir() {
				stats.Directories++
			} else {
				stats.Files++
			}
		})
	}
	return stats
}
