package model

import (
	"time"

	"convertbox/internal/domain"
)

// Upload is a stored binary artifact (source or converted) owned by exactly
// one user. ID is assigned by the database on first save.
type Upload struct {
	ID        int64
	Name      string
	Data      []byte
	CreatedAt time.Time
	UserID    string

	// ByteSize mirrors len(Data) for listings that skip the blob column.
	ByteSize int64
}

func NewUpload(name string, data []byte, userID string) (*Upload, error) {
	if name == "" || userID == "" {
		return nil, domain.ErrInvalidArgument
	}
	if len(data) == 0 {
		return nil, domain.ErrEmptyUpload
	}
	return &Upload{
		Name:      name,
		Data:      data,
		CreatedAt: time.Now(),
		UserID:    userID,
		ByteSize:  int64(len(data)),
	}, nil
}

func (u *Upload) Size() int64 {
	if u.Data != nil {
		return int64(len(u.Data))
	}
	return u.ByteSize
}
