// Package extract converts attachment bytes into plain text. Conversion is
// best-effort with staged fallbacks: docconv first, then a layout-aware
// pdftotext pass for PDFs, and a headless LibreOffice conversion for legacy
// .doc files that docconv cannot read.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"code.sajari.com/docconv"
)

// ConvertTimeout bounds the external converter for legacy binary formats.
const ConvertTimeout = 30 * time.Second

// Extractor is the text-extraction capability the identification and
// attribute steps consume.
type Extractor interface {
	Extract(ctx context.Context, data []byte, filename string) (string, error)
}

// DocExtractor implements Extractor with docconv plus command-line fallbacks.
type DocExtractor struct {
	// SofficePath locates the LibreOffice binary for .doc conversion;
	// empty means "soffice" from PATH.
	SofficePath string
}

// New returns a DocExtractor with defaults.
func New() *DocExtractor {
	return &DocExtractor{}
}

// Extract converts document bytes to text. Supported: .pdf, .docx, .doc.
func (e *DocExtractor) Extract(ctx context.Context, data []byte, filename string) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return e.extractPDF(ctx, data, filename)
	case ".docx":
		return convert(data, filename)
	case ".doc":
		return e.extractDoc(ctx, data, filename)
	default:
		return "", fmt.Errorf("unsupported file type: %s", filename)
	}
}

func convert(data []byte, filename string) (string, error) {
	mime := docconv.MimeTypeByExtension(filename)
	res, err := docconv.Convert(bytes.NewReader(data), mime, true)
	if err != nil {
		return "", fmt.Errorf("failed to convert %s: %w", filename, err)
	}
	return res.Body, nil
}

// extractPDF runs docconv first and falls back to a layout-preserving
// pdftotext pass, mirroring how scanned or oddly-encoded PDFs defeat one
// extractor but not the other.
func (e *DocExtractor) extractPDF(ctx context.Context, data []byte, filename string) (string, error) {
	if text, err := convert(data, filename); err == nil && strings.TrimSpace(text) != "" {
		return text, nil
	}

	tmp, err := writeTemp(data, ".pdf")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp)

	cmd := exec.CommandContext(ctx, "pdftotext", "-layout", tmp, "-")
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("pdf fallback extraction failed for %s: %w", filename, err)
	}
	return string(output), nil
}

// extractDoc converts a legacy .doc to .docx via headless LibreOffice under a
// timeout, then extracts from the converted file. If conversion fails the
// original bytes go straight through docconv as a last resort.
func (e *DocExtractor) extractDoc(ctx context.Context, data []byte, filename string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "extract")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(tmpDir)

	docPath := filepath.Join(tmpDir, "input.doc")
	if err := os.WriteFile(docPath, data, 0600); err != nil {
		return "", err
	}

	soffice := e.SofficePath
	if soffice == "" {
		soffice = "soffice"
	}

	cctx, cancel := context.WithTimeout(ctx, ConvertTimeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, soffice, "--headless", "--convert-to", "docx", "--outdir", tmpDir, docPath)
	if err := cmd.Run(); err == nil {
		docxPath := filepath.Join(tmpDir, "input.docx")
		if res, err := docconv.ConvertPath(docxPath); err == nil {
			return res.Body, nil
		}
	}

	// Conversion unavailable or timed out; try the original bytes directly.
	return convert(data, filename)
}

func writeTemp(data []byte, ext string) (string, error) {
	f, err := os.CreateTemp("", "extract-*"+ext)
	if err != nil {
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
