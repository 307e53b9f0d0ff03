package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"studyhub/internal/model"
)

type GroupRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewGroupRepository(db *pgxpool.Pool, logger *zap.Logger) *GroupRepository {
	return &GroupRepository{db: db, logger: logger}
}

func (r *GroupRepository) Insert(ctx context.Context, g *model.Group) (int, error) {
	query := `
        INSERT INTO groups (name, description, created_by, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id
    `
	var id int
	err := r.db.QueryRow(ctx, query, g.Name, g.Description, g.CreatedBy, g.CreatedAt).Scan(&id)
	if err != nil {
		r.logger.Error("Failed to insert group", zap.String("name", g.Name), zap.Error(err))
		return 0, err
	}
	r.logger.Info("Group created", zap.Int("group_id", id), zap.String("name", g.Name))
	return id, nil
}

// FindByID returns (nil, nil) when the group does not exist.
func (r *GroupRepository) FindByID(ctx context.Context, id int) (*model.Group, error) {
	query := `SELECT id, name, COALESCE(description, ''), created_by, created_at FROM groups WHERE id = $1`

	var g model.Group
	err := r.db.QueryRow(ctx, query, id).Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *GroupRepository) ListByUser(ctx context.Context, userID int) ([]model.Group, error) {
	query := `
        SELECT g.id, g.name, COALESCE(g.description, ''), g.created_by, g.created_at
        FROM groups g
        JOIN memberships m ON m.group_id = g.id
        WHERE m.user_id = $1
        ORDER BY g.created_at DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query groups", zap.Int("user_id", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	groups := []model.Group{}
	for rows.Next() {
		var g model.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedBy, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (r *GroupRepository) AddMember(ctx context.Context, groupID, userID int, role string) error {
	query := `
        INSERT INTO memberships (group_id, user_id, role, joined_at)
        VALUES ($1, $2, $3, NOW())
        ON CONFLICT (group_id, user_id) DO NOTHING
    `
	_, err := r.db.Exec(ctx, query, groupID, userID, role)
	if err != nil {
		r.logger.Error("Failed to add member",
			zap.Int("group_id", groupID),
			zap.Int("user_id", userID),
			zap.Error(err),
		)
		return err
	}
	r.logger.Info("Member added",
		zap.Int("group_id", groupID),
		zap.Int("user_id", userID),
		zap.String("role", role),
	)
	return nil
}

func (r *GroupRepository) IsMember(ctx context.Context, groupID, userID int) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM memberships WHERE group_id = $1 AND user_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, groupID, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *GroupRepository) ListMembers(ctx context.Context, groupID int) ([]model.Member, error) {
	query := `
        SELECT u.id, u.name, u.email, m.role, m.joined_at
        FROM memberships m
        JOIN users u ON u.id = m.user_id
        WHERE m.group_id = $1
        ORDER BY m.joined_at
    `
	rows, err := r.db.Query(ctx, query, groupID)
	if err != nil {
		r.logger.Error("Failed to query members", zap.Int("group_id", groupID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	members := []model.Member{}
	for rows.Next() {
		var m model.Member
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.Role, &m.JoinedAt); err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
