package driven

import (
	"context"
	"errors"

	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
)

// ErrRFDNotFound indicates the RFD content API has no RFD with the requested number.
var ErrRFDNotFound = errors.New("rfd not found")

// RFDSource defines the driven port for the RFD content API.
// FetchRFD returns ErrRFDNotFound for unknown numbers.
type RFDSource interface {
	FetchRFD(ctx context.Context, number int) (*model.RFD, error)
	ListRFDs(ctx context.Context) ([]model.RFDSummary, error)
}
