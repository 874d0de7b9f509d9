package printjobs

import "fmt"

// Kind selects the submission mechanism for a job.
type Kind int

const (
	// KindDocumentA is a PDF report, printed through the PDF submitter.
	KindDocumentA Kind = iota
	// KindDocumentB is a companion office document, printed through the office submitter.
	KindDocumentB
)

// String returns the short label used in logs and history rows.
func (k Kind) String() string {
	switch k {
	case KindDocumentA:
		return "pdf"
	case KindDocumentB:
		return "word"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "pdf":
		return KindDocumentA, nil
	case "word":
		return KindDocumentB, nil
	default:
		return 0, fmt.Errorf("unknown job kind: %q", s)
	}
}

// Job is a single file to print. Jobs are built once and never mutated.
type Job struct {
	Kind        Kind
	SourcePath  string
	DisplayName string
	PageCount   int // 0 when unknown
}

// NewJob builds a job for path.
func NewJob(kind Kind, path, displayName string) Job {
	return Job{Kind: kind, SourcePath: path, DisplayName: displayName}
}

// JobList is the ordered sequence of jobs handed to a run.
type JobList []Job

// CountByKind returns how many jobs of each kind the list holds.
func (l JobList) CountByKind() map[Kind]int {
	counts := make(map[Kind]int, 2)
	for _, j := range l {
		counts[j.Kind]++
	}
	return counts
}

// Clone returns a copy so the caller's slice can't be changed underneath a run.
func (l JobList) Clone() JobList {
	out := make(JobList, len(l))
	copy(out, l)
	return out
}
