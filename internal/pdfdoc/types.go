package pdfdoc

// Token is a positioned piece of text extracted from a PDF page.
// Coordinates are in PDF points: X grows left to right, Y bottom to top.
type Token struct {
	Text string
	X    float64
	Y    float64
	W    float64
}

// PageTokens holds the positioned text of a single page.
type PageTokens struct {
	Number int
	Tokens []Token
}

// Document is the positioned text content of a whole PDF file.
type Document struct {
	Path  string
	Pages []PageTokens
	Size  int64
}

// FileInfo describes a PDF file found during a directory scan.
type FileInfo struct {
	Path         string
	Name         string
	Size         int64
	ModifiedTime string
}

// ValidateResult is the outcome of validating a single PDF file.
type ValidateResult struct {
	Path    string
	Valid   bool
	Message string
}
