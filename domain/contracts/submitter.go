package contracts

import "context"

// Submitter hands one file to an external print mechanism. A nil error means
// the mechanism accepted the file; it says nothing about the paper coming out.
type Submitter interface {
	Submit(ctx context.Context, path string) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, path string) error

func (f SubmitterFunc) Submit(ctx context.Context, path string) error {
	return f(ctx, path)
}

// Checker is implemented by submitters that can verify their setup, such as
// the presence of an external program, before any file is handed to them.
type Checker interface {
	Check() error
}
