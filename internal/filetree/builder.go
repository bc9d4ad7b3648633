// =============================================================================
// Easy Enigma Virtual Box Builder - File Tree Builder
// =============================================================================
//
// This module turns the items listed under each virtual folder into the
// virtual file tree embedded by the packager.
//
// ITEM RULES:
//   - Trailing "*" markers and surrounding whitespace are stripped, then the
//     path is resolved against the build's base directory
//   - Items that do not exist are skipped without error
//   - A file becomes one File node
//   - A directory listed directly under a folder is flattened one level: its
//     entries are placed in the folder itself
//   - A directory marked with "*" is kept as one Directory node
//   - Below that first level every directory nests as a Directory node
//
// EXAMPLE (DefaultFolder: ["data"], data/ holds x.txt and y/z.txt):
//
//   %DEFAULT FOLDER%
//   ├── x.txt          (File)
//   └── y              (Directory)
//       └── z.txt      (File)
//
//   With "data*" the same folder holds a single "data" Directory instead.
//
// ORDERING:
//   Entries of a directory are listed by name (os.ReadDir order), so the
//   output is identical on every platform.
//
// =============================================================================

package filetree

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/eevb-tools/eevb/internal/config"
	"github.com/eevb-tools/eevb/internal/logging"
	"github.com/eevb-tools/eevb/internal/types"
	"github.com/eevb-tools/eevb/pkg/utils"
)

// =============================================================================
// ERRORS
// =============================================================================

// CycleError reports a directory that contains itself through a symlink.
type CycleError struct {
	// Path is the directory entry that leads back to an ancestor.
	Path string

	// Target is the ancestor it resolves to.
	Target string
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("directory cycle: %s resolves to ancestor %s", e.Path, e.Target)
}

// =============================================================================
// BUILDER
// =============================================================================

// Logger is the subset of the logging interface the builder uses.
type Logger interface {
	Debug(msg string, args ...interface{})
}

// Builder builds virtual folder sections for one build.
type Builder struct {
	resolver *utils.Resolver
	logger   Logger
}

// NewBuilder creates a Builder resolving items with resolver. A nil logger
// discards messages.
func NewBuilder(resolver *utils.Resolver, logger Logger) *Builder {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Builder{
		resolver: resolver,
		logger:   logger,
	}
}

// BuildSections builds a section for every folder that has items, in folder order.
func (b *Builder) BuildSections(items config.EmbeddedItems) ([]*types.VirtualFolderSection, error) {
	var sections []*types.VirtualFolderSection
	for _, folder := range config.Folders() {
		section, err := b.BuildFolderSection(folder, items.Get(folder))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", folder.Alias(), err)
		}
		if section != nil {
			sections = append(sections, section)
		}
	}
	return sections, nil
}

// BuildFolderSection builds the section for one folder.
//
// RETURNS:
//   - nil when items is empty, so the folder is left out of the project.
//   - An error if a directory cannot be listed or contains a cycle.
func (b *Builder) BuildFolderSection(folder config.Folder, items []string) (*types.VirtualFolderSection, error) {
	if len(items) == 0 {
		return nil, nil
	}

	section := &types.VirtualFolderSection{
		Literal: folder.Literal(),
		Key:     folder.Alias(),
		Nodes:   []*types.VirtualFileNode{},
	}

	for _, item := range items {
		nodes, err := b.buildItem(item)
		if err != nil {
			return nil, err
		}
		section.Nodes = append(section.Nodes, nodes...)
	}

	return section, nil
}

// buildItem returns the nodes one configured item contributes to its folder.
func (b *Builder) buildItem(item string) ([]*types.VirtualFileNode, error) {
	path, forceDir := utils.StripMarker(item, config.ForceDirectoryMarker)
	if path == "" {
		b.logger.Debug("Skipping empty item %q", item)
		return nil, nil
	}

	source := b.resolver.Resolve(path)
	info, err := os.Stat(source)
	if err != nil {
		if os.IsNotExist(err) {
			b.logger.Debug("Skipping missing item %q (%s)", item, source)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to inspect %s: %w", source, err)
	}

	name := itemName(path, source)
	if !info.IsDir() {
		return []*types.VirtualFileNode{fileNode(name, source)}, nil
	}

	ancestors := map[string]bool{source: true}
	children, err := b.expand(source, ancestors)
	if err != nil {
		return nil, err
	}

	if forceDir {
		b.logger.Debug("Wrapping directory %s", source)
		return []*types.VirtualFileNode{dirNode(name, source, children)}, nil
	}

	b.logger.Debug("Flattening directory %s (%d entries)", source, len(children))
	return children, nil
}

// expand lists dir, nesting every subdirectory fully. ancestors holds the
// canonical directories on the current descent path.
func (b *Builder) expand(dir string, ancestors map[string]bool) ([]*types.VirtualFileNode, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list directory %s: %w", dir, err)
	}

	nodes := make([]*types.VirtualFileNode, 0, len(entries))
	for _, entry := range entries {
		entryPath := filepath.Join(dir, entry.Name())
		source := utils.Resolve(entryPath, dir)

		info, err := os.Stat(source)
		if err != nil {
			if os.IsNotExist(err) {
				b.logger.Debug("Skipping dangling entry %s", entryPath)
				continue
			}
			return nil, fmt.Errorf("failed to inspect %s: %w", entryPath, err)
		}

		if !info.IsDir() {
			nodes = append(nodes, fileNode(entry.Name(), source))
			continue
		}

		if ancestors[source] {
			return nil, &CycleError{Path: entryPath, Target: source}
		}
		ancestors[source] = true
		children, err := b.expand(source, ancestors)
		delete(ancestors, source)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, dirNode(entry.Name(), source, children))
	}

	return nodes, nil
}

// itemName is the node name for a configured item: its last path element as
// written, so a symlink keeps its own name. Items such as "." or "/" fall
// back to the resolved directory's name.
func itemName(path, source string) string {
	name := filepath.Base(filepath.Clean(path))
	if name == "." || name == ".." || name == string(filepath.Separator) {
		return filepath.Base(source)
	}
	return name
}

func fileNode(name, source string) *types.VirtualFileNode {
	return &types.VirtualFileNode{
		Kind:       types.KindFile,
		Name:       name,
		SourcePath: source,
	}
}

func dirNode(name, source string, children []*types.VirtualFileNode) *types.VirtualFileNode {
	return &types.VirtualFileNode{
		Kind:       types.KindDirectory,
		Name:       name,
		SourcePath: source,
		Children:   children,
	}
}
