package synthesis

import "fmt"

// RepairExhaustedError means the provider's output still failed
// validation after all repair attempts were used. It is a terminal
// synthesis failure: stub content is never substituted for an explicit
// provider-mode generation.
type RepairExhaustedError struct {
	Attempts int
	LastErr  error
}

func (e *RepairExhaustedError) Error() string {
	return fmt.Sprintf("model output invalid after %d repair attempts: %v", e.Attempts, e.LastErr)
}

func (e *RepairExhaustedError) Unwrap() error {
	return e.LastErr
}
