package usecase

import (
	"context"
	"crypto/sha1"
	"encoding/hex"

	"github.com/example/colormatch/internal/repository"
)

// AnalysisStore defines the result cache operations needed by the use case.
type AnalysisStore interface {
	Save(ctx context.Context, record *repository.AnalysisRecord) error
	FindByRequestID(ctx context.Context, requestID string) (*repository.AnalysisRecord, error)
	FindByHash(ctx context.Context, requestID, hash string) (*repository.AnalysisRecord, error)
}

func imageHash(imageBytes []byte) string {
	sum := sha1.Sum(imageBytes)
	return hex.EncodeToString(sum[:])
}
