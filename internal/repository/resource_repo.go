package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studyhub/internal/model"
)

type ResourceRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewResourceRepository(db *pgxpool.Pool, logger *zap.Logger) *ResourceRepository {
	return &ResourceRepository{db: db, logger: logger}
}

func (r *ResourceRepository) Insert(ctx context.Context, res *model.Resource) (int, error) {
	query := `
        INSERT INTO resources (group_id, uploaded_by, title, type, path_or_url, uploaded_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query,
		res.GroupID,
		res.UploadedBy,
		res.Title,
		res.Type,
		res.PathOrURL,
		res.UploadedAt,
	).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert resource",
			zap.Int("group_id", res.GroupID),
			zap.Error(err),
		)
		return 0, err
	}
	r.logger.Info("Resource recorded",
		zap.Int("resource_id", id),
		zap.String("type", res.Type),
	)
	return id, nil
}

func (r *ResourceRepository) ListByGroup(ctx context.Context, groupID int) ([]model.Resource, error) {
	query := `
        SELECT id, group_id, uploaded_by, title, type, path_or_url, uploaded_at
        FROM resources
        WHERE group_id = $1
        ORDER BY uploaded_at DESC
    `
	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		r.logger.Error("Failed to query resources", zap.Int("group_id", groupID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	resources := []model.Resource{}
	for rows.Next() {
		var res model.Resource
		if err := rows.Scan(&res.ID, &res.GroupID, &res.UploadedBy, &res.Title, &res.Type, &res.PathOrURL, &res.UploadedAt); err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	return resources, rows.Err()
}
