package objpool

import (
	"errors"
	"fmt"
	"testing"
)

// TestErrPoolClosedMatchesThroughWrapping verifies errors.Is compatibility
// for the package sentinel.
func TestErrPoolClosedMatchesThroughWrapping(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("acquire: %w", ErrPoolClosed)
	if !errors.Is(wrapped, ErrPoolClosed) {
		t.Error("errors.Is should match ErrPoolClosed through wrapping")
	}
	if errors.Is(errors.New("pool is closed"), ErrPoolClosed) {
		t.Error("errors.Is should not match an errors.New with the same text")
	}
}
