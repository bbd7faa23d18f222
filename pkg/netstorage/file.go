package netstorage

import "time"

// FileType is the kind of a storage entry.
type FileType string

const (
	FileTypeFile    FileType = "file"
	FileTypeDir     FileType = "dir"
	FileTypeSymlink FileType = "symlink"
)

// File is one entry of a directory listing. Path is the directory holding
// the entry. A directory entry owns its Children once they were listed.
type File struct {
	Path  Path
	Type  FileType
	Name  string
	MTime time.Time

	// Set for files.
	Size int64
	MD5  string

	// Set for directories.
	Files int64
	Bytes int64

	// Set for symlinks.
	Target string

	Children []File
}

func (f File) IsFile() bool {
	return f.Type == FileTypeFile
}

func (f File) IsDir() bool {
	return f.Type == FileTypeDir
}

func (f File) IsSymlink() bool {
	return f.Type == FileTypeSymlink
}

// FullPath is the entry's own path: its directory plus its name.
func (f File) FullPath() Path {
	return f.Path.Append(PathFromString(f.Name))
}

func (f File) HasChildren() bool {
	return len(f.Children) > 0
}

// WithChildren returns a copy of f owning children.
func (f File) WithChildren(children []File) File {
	f.Children = children
	return f
}

// Walk calls fn for f and every descendant, depth first, parents before
// children. Returning false from fn skips that entry's children.
func (f File) Walk(fn func(File) bool) {
	if !fn(f) {
		return
	}
	for _, child := range f.Children {
		child.Walk(fn)
	}
}

// DirectoryListing is the ordered content of one directory.
type DirectoryListing struct {
	Directory Path
	Files     []File
}

// WithDirectory returns a copy of l whose entries are re-parented to dir.
// Nested children are re-parented below their new parents.
func (l DirectoryListing) WithDirectory(dir Path) DirectoryListing {
	return DirectoryListing{Directory: dir, Files: reparent(dir, l.Files)}
}

func reparent(dir Path, files []File) []File {
	if files == nil {
		return nil
	}
	out := make([]File, len(files))
	for i, f := range files {
		f.Path = dir
		f.Children = reparent(f.FullPath(), f.Children)
		out[i] = f
	}
	return out
}

// Walk visits every entry of the listing, see File.Walk.
func (l DirectoryListing) Walk(fn func(File) bool) {
	for _, f := range l.Files {
		f.Walk(fn)
	}
}

// Stat is the metadata of a single object.
type Stat struct {
	Path  Path
	Type  FileType
	Name  string
	MTime time.Time
	Size  int64
	MD5   string
}

func (s Stat) IsFile() bool {
	return s.Type == FileTypeFile
}

func (s Stat) IsDir() bool {
	return s.Type == FileTypeDir
}

func (s Stat) IsSymlink() bool {
	return s.Type == FileTypeSymlink
}

// DiskUsage summarizes a directory tree as reported by the du action.
type DiskUsage struct {
	Directory Path
	Files     int64
	Bytes     int64
}
