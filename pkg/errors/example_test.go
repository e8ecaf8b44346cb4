package errors_test

import (
	"fmt"
	"io"

	"github.com/ajitpratap0/colconv/pkg/errors"
)

// Example demonstrates basic error creation with details.
func Example() {
	err := errors.New(errors.ErrorTypeConfig, "cannot convert Duration to Int").
		WithDetail("source", "Duration").
		WithDetail("target", "Int")

	fmt.Println(err.Error())

	// Output:
	// config: cannot convert Duration to Int
}

// ExampleWrap shows how to wrap existing errors with context.
func ExampleWrap() {
	err := errors.Wrap(io.ErrUnexpectedEOF, errors.ErrorTypeFile, "failed to read CSV file").
		WithDetail("file", "data.csv")

	if errors.IsType(err, errors.ErrorTypeFile) {
		fmt.Println("This is a file error")
	}
	if errors.Is(err, io.ErrUnexpectedEOF) {
		fmt.Println("Cause preserved")
	}

	// Output:
	// This is a file error
	// Cause preserved
}

// ExampleIsRetryable separates transient failures from permanent ones.
func ExampleIsRetryable() {
	fmt.Println(errors.IsRetryable(errors.New(errors.ErrorTypeConnection, "connection refused")))
	fmt.Println(errors.IsRetryable(errors.New(errors.ErrorTypeConfig, "unknown column")))

	// Output:
	// true
	// false
}

// ExampleTypeOf reads the category of a wrapped error.
func ExampleTypeOf() {
	err := fmt.Errorf("pipeline: %w", errors.New(errors.ErrorTypeData, "row has 3 values, header has 2"))
	fmt.Println(errors.TypeOf(err))
	fmt.Println(errors.TypeOf(io.EOF))

	// Output:
	// data
	// internal
}
