package ui

import "github.com/goodbytes/linkdetect/internal/parser"

// FilesFoundMsg is sent when the files to extract have been discovered.
type FilesFoundMsg struct {
	Err   error
	Files []string
}

// FileExtractedMsg is sent when the links of a single file are extracted.
type FileExtractedMsg struct {
	Result parser.FileResult
}

// ExtractionCompleteMsg is sent when every file has been extracted.
type ExtractionCompleteMsg struct{}
