// Package feeds reads the three source systems and reshapes their rows,
// documents and elements into raw person records. Feeds do no normalization
// beyond trimming; every parsing rule lives in the normalize package.
package feeds

import (
	"context"

	"github.com/Ramsey-B/fern/pkg/models"
)

// Feed reads one source system in full.
type Feed interface {
	Source() models.Source
	Read(ctx context.Context) ([]models.RawPersonRecord, error)
}
