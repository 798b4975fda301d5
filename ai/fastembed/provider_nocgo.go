//go:build !cgo

package fastembed

import (
	"fmt"

	"github.com/poiesic/cyclonekb/ai"
)

// NewProvider always fails in builds without cgo because the ONNX runtime
// binding needs it.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: binary built without cgo", ai.ErrUnavailable)
}
