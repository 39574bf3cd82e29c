package recordings

import (
	"context"

	"github.com/google/uuid"

	"github.com/JaimeStill/soundslike/pkg/pagination"
	"github.com/JaimeStill/soundslike/pkg/storage"
)

// System defines the public contract for recording domain operations.
type System interface {
	Handler(maxUploadSize int64) *Handler

	Submit(ctx context.Context, cmd SubmitCommand) (*Recording, error)

	// Random returns one approved recording chosen uniformly.
	Random(ctx context.Context) (*Recording, error)

	// Count returns the number of approved recordings.
	Count(ctx context.Context) (int, error)

	// Audio opens the recording's blob. With approvedOnly set, unapproved
	// recordings report ErrNotFound. The caller must close the blob body.
	Audio(ctx context.Context, id uuid.UUID, approvedOnly bool) (*storage.Blob, error)

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Recording], error)

	Find(ctx context.Context, id uuid.UUID) (*Recording, error)
	Update(ctx context.Context, id uuid.UUID, cmd UpdateCommand) (*Recording, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
