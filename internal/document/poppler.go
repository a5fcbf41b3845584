// Package document reads PDF documents through the poppler command-line tools.
package document

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds a single tool invocation.
const DefaultTimeout = 60 * time.Second

// Tools names the poppler executables. Empty fields use the binary name on PATH.
type Tools struct {
	PdfInfo   string
	PdfToText string
	PdfToPPM  string
	// Ghostscript is the page-count fallback when pdfinfo is unavailable.
	Ghostscript string
}

// Runner executes a command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

// Poppler reads page counts, page text and first-page renders from PDF files.
type Poppler struct {
	tools   Tools
	timeout time.Duration
	run     Runner
}

// NewPoppler creates a reader. A zero timeout selects DefaultTimeout.
func NewPoppler(tools Tools, timeout time.Duration) *Poppler {
	if tools.PdfInfo == "" {
		tools.PdfInfo = "pdfinfo"
	}
	if tools.PdfToText == "" {
		tools.PdfToText = "pdftotext"
	}
	if tools.PdfToPPM == "" {
		tools.PdfToPPM = "pdftoppm"
	}
	if tools.Ghostscript == "" {
		tools.Ghostscript = "gs"
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Poppler{tools: tools, timeout: timeout, run: execRunner}
}

// PageCount counts the pages of a PDF file.
// It tries pdfinfo first, then falls back to ghostscript.
func (p *Poppler) PageCount(ctx context.Context, path string) (int, error) {
	out, infoErr := p.exec(ctx, p.tools.PdfInfo, path)
	if infoErr == nil {
		count, err := ParsePdfinfoPages(out)
		if err == nil {
			return count, nil
		}
		infoErr = err
	}

	script := fmt.Sprintf("(%s) (r) file runpdfbegin pdfpagecount = quit", path)
	if out, err := p.exec(ctx, p.tools.Ghostscript, "-q", "-dNODISPLAY", "-dNOSAFER", "-c", script); err == nil {
		if count, err := strconv.Atoi(strings.TrimSpace(string(out))); err == nil {
			return count, nil
		}
	}

	return 0, &ToolError{Tool: p.tools.PdfInfo, Path: path, Message: "failed to count PDF pages", Cause: infoErr}
}

// ExtractText returns the text of one page, numbered from 1.
func (p *Poppler) ExtractText(ctx context.Context, page int, path string) (string, error) {
	if page < 1 {
		return "", &ToolError{Tool: p.tools.PdfToText, Path: path, Message: fmt.Sprintf("invalid page number %d", page)}
	}
	n := strconv.Itoa(page)
	out, err := p.exec(ctx, p.tools.PdfToText, "-f", n, "-l", n, "-enc", "UTF-8", path, "-")
	if err != nil {
		return "", &ToolError{Tool: p.tools.PdfToText, Path: path, Message: fmt.Sprintf("failed to extract text of page %d", page), Cause: err}
	}
	// pdftotext terminates every page with a form feed
	return strings.TrimRight(string(out), "\f\n"), nil
}

// RenderFirstPage rasterizes page 1 to PNG bytes.
func (p *Poppler) RenderFirstPage(ctx context.Context, path string) ([]byte, error) {
	dir, err := os.MkdirTemp("", "pdf-render-*")
	if err != nil {
		return nil, &ToolError{Tool: p.tools.PdfToPPM, Path: path, Message: "failed to create render directory", Cause: err}
	}
	defer os.RemoveAll(dir)

	root := filepath.Join(dir, "page")
	if _, err := p.exec(ctx, p.tools.PdfToPPM, "-png", "-f", "1", "-l", "1", "-singlefile", path, root); err != nil {
		return nil, &ToolError{Tool: p.tools.PdfToPPM, Path: path, Message: "failed to render first page", Cause: err}
	}

	data, err := os.ReadFile(root + ".png")
	if err != nil {
		return nil, &ToolError{Tool: p.tools.PdfToPPM, Path: path, Message: "rendered page not found", Cause: err}
	}
	return data, nil
}

func (p *Poppler) exec(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	return p.run(ctx, name, args...)
}

// ParsePdfinfoPages reads the "Pages: N" line of pdfinfo output.
func ParsePdfinfoPages(output []byte) (int, error) {
	for _, line := range strings.Split(string(output), "\n") {
		if !strings.HasPrefix(line, "Pages:") {
			continue
		}
		parts := strings.Fields(line)
		if len(parts) >= 2 {
			if count, err := strconv.Atoi(parts[1]); err == nil {
				return count, nil
			}
		}
	}
	return 0, fmt.Errorf("could not parse page count from pdfinfo output")
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s command failed: %w: %s", name, err, msg)
		}
		return nil, fmt.Errorf("%s command failed: %w", name, err)
	}
	return stdout.Bytes(), nil
}
