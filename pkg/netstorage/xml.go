package netstorage

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"time"

	"golang.org/x/net/html/charset"
)

// ListingXML is the body of stat and dir responses.
type ListingXML struct {
	XMLName   xml.Name  `xml:"stat"`
	Directory string    `xml:"directory,attr"`
	Files     []FileXML `xml:"file"`
}

// FileXML is one file element. Only the attributes relevant to its type are
// present on the wire.
type FileXML struct {
	Type   string `xml:"type,attr"`
	Name   string `xml:"name,attr"`
	MTime  int64  `xml:"mtime,attr"`
	Size   int64  `xml:"size,attr,omitempty"`
	MD5    string `xml:"md5,attr,omitempty"`
	Files  int64  `xml:"files,attr,omitempty"`
	Bytes  int64  `xml:"bytes,attr,omitempty"`
	Target string `xml:"target,attr,omitempty"`
}

// DiskUsageXML is the body of du responses.
type DiskUsageXML struct {
	XMLName   xml.Name `xml:"du"`
	Directory string   `xml:"directory,attr"`
	Info      struct {
		Files int64 `xml:"files,attr"`
		Bytes int64 `xml:"bytes,attr"`
	} `xml:"du-info"`
}

// ParseDirectoryListing reads a dir response. The listing's directory is
// the one reported by the server; entries keep the server's order.
func ParseDirectoryListing(data []byte) (*DirectoryListing, error) {
	var doc listingDocument
	if err := decodeXML(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	dir := PathFromString(doc.Directory)
	files := make([]File, 0, len(doc.Files))
	for _, fx := range doc.Files {
		files = append(files, fx.toFile(dir))
	}
	return &DirectoryListing{Directory: dir, Files: files}, nil
}

// ParseStat reads a stat response for path. It expects exactly one file
// element.
func ParseStat(path Path, data []byte) (*Stat, error) {
	var doc listingDocument
	if err := decodeXML(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(doc.Files) != 1 {
		return nil, fmt.Errorf("%w: stat returned %d file elements", ErrMalformedResponse, len(doc.Files))
	}

	fx := doc.Files[0]
	return &Stat{
		Path:  path,
		Type:  FileType(fx.Type),
		Name:  fx.Name,
		MTime: time.Unix(fx.MTime, 0),
		Size:  fx.Size,
		MD5:   fx.MD5,
	}, nil
}

// ParseDiskUsage reads a du response.
func ParseDiskUsage(data []byte) (*DiskUsage, error) {
	var doc DiskUsageXML
	if err := decodeXML(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return &DiskUsage{
		Directory: PathFromString(doc.Directory),
		Files:     doc.Info.Files,
		Bytes:     doc.Info.Bytes,
	}, nil
}

// decodeXML unmarshals data into v. Responses are declared as ISO-8859-1.
func decodeXML(data []byte, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(data))
	dec.CharsetReader = charset.NewReaderLabel
	return dec.Decode(v)
}

// listingDocument accepts any root element name; list and dir answers
// differ only in it.
type listingDocument struct {
	Directory string    `xml:"directory,attr"`
	Files     []FileXML `xml:"file"`
}

func (fx FileXML) toFile(dir Path) File {
	f := File{
		Path:  dir,
		Type:  FileType(fx.Type),
		Name:  fx.Name,
		MTime: time.Unix(fx.MTime, 0),
	}
	switch f.Type {
	case FileTypeFile:
		f.Size = fx.Size
		f.MD5 = fx.MD5
	case FileTypeDir:
		f.Files = fx.Files
		f.Bytes = fx.Bytes
	case FileTypeSymlink:
		f.Target = fx.Target
	}
	return f
}

// NewFileXML renders f as a file element.
func NewFileXML(f File) FileXML {
	fx := FileXML{
		Type:  string(f.Type),
		Name:  f.Name,
		MTime: f.MTime.Unix(),
	}
	switch f.Type {
	case FileTypeFile:
		fx.Size = f.Size
		fx.MD5 = f.MD5
	case FileTypeDir:
		fx.Files = f.Files
		fx.Bytes = f.Bytes
	case FileTypeSymlink:
		fx.Target = f.Target
	}
	return fx
}
