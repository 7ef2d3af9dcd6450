package genai

import "fmt"

// FallbackPolicy decides when a failed edit call is reissued with an
// alternate instruction. The condition for "the model refused" is
// provider-specific, so both the predicate and the rewrite are injectable
// rather than hard-coded control flow.
type FallbackPolicy struct {
	// ShouldRetry reports whether the error warrants one alternate attempt.
	ShouldRetry func(err error) bool
	// Rewrite produces the alternate instruction. Returning false skips the
	// retry.
	Rewrite func(instruction string) (string, bool)
}

// DefaultFallbackPolicy retries exactly the case where the model answered
// with text instead of an image, using a plainer phrasing of the same
// instruction. Refusals of this shape are usually prompt-sensitive.
func DefaultFallbackPolicy() *FallbackPolicy {
	return &FallbackPolicy{
		ShouldRetry: IsTextResponse,
		Rewrite: func(instruction string) (string, bool) {
			return fmt.Sprintf(
				"Apply this change to the photo and return only the edited image, no commentary: %s",
				instruction,
			), true
		},
	}
}

// NoFallback disables alternate attempts entirely.
func NoFallback() *FallbackPolicy {
	return &FallbackPolicy{
		ShouldRetry: func(error) bool { return false },
		Rewrite:     func(string) (string, bool) { return "", false },
	}
}
