package material

import (
	"context"
	"fmt"
	"io"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/domain"
	"github.com/MixxMasterMike123/b8s-reseller-app-sub008/internal/pkg/id"
)

// DownloadURLTTL is how long a presigned material link stays valid.
const DownloadURLTTL = 15 * time.Minute

// Service manages marketing material files: metadata in DynamoDB, content in
// S3. Generic materials are visible to every reseller; customer-specific ones
// only to their customer and admins.
type Service interface {
	Upload(ctx context.Context, in UploadInput) (*domain.MarketingMaterial, error)
	List(ctx context.Context) ([]domain.MarketingMaterial, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.MarketingMaterial, error)
	DownloadURL(ctx context.Context, materialID string) (string, error)
	Delete(ctx context.Context, materialID string) error
}

// UploadInput carries one file upload.
type UploadInput struct {
	Name        string
	ContentType string
	Size        int64
	CustomerID  string
	UploadedBy  string
	Body        io.Reader
}

type materialStore interface {
	Put(ctx context.Context, m *domain.MarketingMaterial) error
	Get(ctx context.Context, materialID string) (*domain.MarketingMaterial, error)
	List(ctx context.Context) ([]domain.MarketingMaterial, error)
	ListByCustomer(ctx context.Context, customerID string) ([]domain.MarketingMaterial, error)
	Delete(ctx context.Context, materialID string) error
}

type blobStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	materials materialStore
	blobs     blobStore
	logger    *zap.Logger
}

func NewService(materials materialStore, blobs blobStore, logger *zap.Logger) Service {
	return &service{materials: materials, blobs: blobs, logger: logger}
}

// Upload stores the file in S3 first, then the metadata record. A metadata
// write failure removes the orphaned blob.
func (s *service) Upload(ctx context.Context, in UploadInput) (*domain.MarketingMaterial, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: material name required", domain.ErrBadRequest)
	}

	materialID := id.New()
	key := blobKey(materialID, in.Name)
	if _, err := s.blobs.Upload(ctx, key, in.Body, in.ContentType); err != nil {
		return nil, fmt.Errorf("upload material: %w", err)
	}

	m := &domain.MarketingMaterial{
		MaterialID:  materialID,
		Name:        in.Name,
		Key:         key,
		Size:        in.Size,
		ContentType: in.ContentType,
		CustomerID:  in.CustomerID,
		UploadedBy:  in.UploadedBy,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.materials.Put(ctx, m); err != nil {
		if derr := s.blobs.Delete(ctx, key); derr != nil {
			s.logger.Warn("orphaned blob cleanup failed", zap.String("key", key), zap.Error(derr))
		}
		return nil, err
	}

	s.logger.Info("material uploaded",
		zap.String("material_id", m.MaterialID),
		zap.String("name", m.Name),
		zap.Int64("size", m.Size))
	return m, nil
}

func (s *service) List(ctx context.Context) ([]domain.MarketingMaterial, error) {
	return s.materials.List(ctx)
}

func (s *service) ListByCustomer(ctx context.Context, customerID string) ([]domain.MarketingMaterial, error) {
	return s.materials.ListByCustomer(ctx, customerID)
}

// DownloadURL issues a short-lived presigned link for the material's blob.
func (s *service) DownloadURL(ctx context.Context, materialID string) (string, error) {
	m, err := s.materials.Get(ctx, materialID)
	if err != nil {
		return "", err
	}
	return s.blobs.PresignedURL(ctx, m.Key, DownloadURLTTL)
}

// Delete removes the metadata record first so the material disappears from
// listings even when the blob delete fails.
func (s *service) Delete(ctx context.Context, materialID string) error {
	m, err := s.materials.Get(ctx, materialID)
	if err != nil {
		return err
	}
	if err := s.materials.Delete(ctx, materialID); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, m.Key); err != nil {
		s.logger.Warn("material blob delete failed", zap.String("key", m.Key), zap.Error(err))
	}
	return nil
}

func blobKey(materialID, name string) string {
	return fmt.Sprintf("materials/%s/%s", materialID, path.Base(name))
}
