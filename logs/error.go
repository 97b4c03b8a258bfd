package logs

import (
	"context"
	"errors"
	"fmt"
)

type SpanError struct {
	Err  error
	Span Span
}

func (s *SpanError) Error() string {
	return fmt.Sprintf("%v (span %s)", s.Err, s.Span)
}

func (s *SpanError) Unwrap() error {
	return s.Err
}

// WrapSpan tags err with the span of ctx, once.
func WrapSpan(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}
	v := ctx.Value(SpanKey)
	if v == nil {
		return err
	}
	var spanErr *SpanError
	if errors.As(err, &spanErr) {
		return err
	}
	return &SpanError{
		Err:  err,
		Span: v.(Span),
	}
}
