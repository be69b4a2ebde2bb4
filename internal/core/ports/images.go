package ports

import "context"

// ImageUpload is an uploaded file held in memory.
type ImageUpload struct {
	Filename string `json:"filename"`
	Data     []byte `json:"image"    validate:"imagefile,max=10485760"`
}

// ImageStore persists uploaded images and resolves them to public URLs.
type ImageStore interface {
	Save(ctx context.Context, upload ImageUpload) (url string, err error)
	Delete(ctx context.Context, url string) error
}

// ImageJanitor removes images that are no longer referenced by any record.
// Discard must not block the caller.
type ImageJanitor interface {
	Discard(userID string, urls []string)
}

// RegistrationLock serialises concurrent registrations of the same (email, role).
type RegistrationLock interface {
	Acquire(ctx context.Context, email, role string) (bool, error)
	Release(ctx context.Context, email, role string) error
}
