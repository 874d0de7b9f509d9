package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"reportprint/domain/printjobs"
	"reportprint/logging"
)

// DateLayout is the YYYY/MM/DD form used on the command line and in history.
const DateLayout = "2006/01/02"

var officeExtensions = map[string]bool{
	".doc":  true,
	".docx": true,
	".docm": true,
}

// ParseDate reads a YYYY/MM/DD date in local time.
func ParseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY/MM/DD: %w", s, err)
	}
	return d, nil
}

// PageCounter reports the number of pages in a PDF.
type PageCounter func(path string) (int, error)

// PDFPageCount reads the PDF cross-reference with pdfcpu.
func PDFPageCount(path string) (int, error) {
	ctx, err := api.ReadContextFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read PDF context: %w", err)
	}
	return ctx.PageCount, nil
}

// Result is the outcome of a folder scan.
type Result struct {
	Jobs printjobs.JobList
	// MissingCompanions lists folders with matching PDFs but no office documents.
	MissingCompanions []string
}

// Scanner builds job lists from a report folder tree.
type Scanner struct {
	pages  PageCounter
	logger *logging.Logger
}

func New(pages PageCounter) *Scanner {
	if pages == nil {
		pages = PDFPageCount
	}
	return &Scanner{
		pages:  pages,
		logger: logging.Default().WithComponent("scanner"),
	}
}

// Collect walks the direct sub-folders of root in name order. In each folder,
// PDFs modified on date become jobs; if there was at least one, every office
// document in that folder follows them.
func (s *Scanner) Collect(root string, date time.Time) (Result, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read parent folder %s: %w", root, err)
	}

	var result Result
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())

		pdfs, docs, err := s.scanFolder(dir, date)
		if err != nil {
			s.logger.Warn("skipping unreadable folder", "folder", dir, "error", err)
			continue
		}
		if len(pdfs) == 0 {
			continue
		}

		result.Jobs = append(result.Jobs, pdfs...)
		result.Jobs = append(result.Jobs, docs...)
		if len(docs) == 0 {
			result.MissingCompanions = append(result.MissingCompanions, entry.Name())
		}
	}

	s.logger.Info("scan complete",
		"root", root,
		"date", date.Format(DateLayout),
		"jobs", len(result.Jobs),
		"missing_companions", len(result.MissingCompanions))
	return result, nil
}

func (s *Scanner) scanFolder(dir string, date time.Time) (pdfs, docs printjobs.JobList, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		path := filepath.Join(dir, name)

		switch {
		case ext == ".pdf":
			info, err := entry.Info()
			if err != nil || !sameDay(info.ModTime(), date) {
				continue
			}
			job := printjobs.NewJob(printjobs.KindDocumentA, path, name)
			if n, err := s.pages(path); err == nil {
				job.PageCount = n
			} else {
				s.logger.Debug("page count unavailable", "path", path, "error", err)
			}
			pdfs = append(pdfs, job)
		case officeExtensions[ext] && !strings.HasPrefix(name, "~$"):
			docs = append(docs, printjobs.NewJob(printjobs.KindDocumentB, path, name))
		}
	}
	return pdfs, docs, nil
}

func sameDay(a, b time.Time) bool {
	a = a.In(time.Local)
	b = b.In(time.Local)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// SelectOptions narrows a scanned job list without a GUI.
type SelectOptions struct {
	// Kinds keeps only these kinds. Empty keeps all.
	Kinds []printjobs.Kind
	// Exclude drops jobs whose file name matches any glob.
	Exclude []string
}

// Select filters jobs, preserving order.
func Select(jobs printjobs.JobList, opts SelectOptions) (printjobs.JobList, error) {
	for _, pattern := range opts.Exclude {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
	}

	keep := make(printjobs.JobList, 0, len(jobs))
	for _, job := range jobs {
		if len(opts.Kinds) > 0 && !containsKind(opts.Kinds, job.Kind) {
			continue
		}
		if excluded(job.DisplayName, opts.Exclude) {
			continue
		}
		keep = append(keep, job)
	}
	return keep, nil
}

func containsKind(kinds []printjobs.Kind, k printjobs.Kind) bool {
	for _, want := range kinds {
		if want == k {
			return true
		}
	}
	return false
}

func excluded(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
