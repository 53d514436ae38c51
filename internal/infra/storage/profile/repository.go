package profile

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-LessonService/pkg/psqlbuilder"
)

// Repository читает профили пользователей (таблицы ведет сервис профилей)
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория профилей
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetTutorProfile получает параметры уроков тьютора
func (r *Repository) GetTutorProfile(ctx context.Context, tutorID uuid.UUID) (*domain.TutorProfile, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("tutor_id", "hourly_rate_cents", "lesson_minutes").
		From("tutor_profiles").
		Where(squirrel.Eq{"tutor_id": tutorID.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetTutorProfile - build select query: %w", ErrBuildQuery, err)
	}

	var p domain.TutorProfile
	err = executor.QueryRowContext(ctx, query, args...).Scan(&p.TutorID, &p.HourlyRateCents, &p.LessonMinutes)
	if err == sql.ErrNoRows {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetTutorProfile - scan profile: %w", ErrScanRow, err)
	}

	return &p, nil
}

// GetByIDs получает публичные профили пользователей, индексированные по ID
// Отсутствующие ID просто не попадают в результат
func (r *Repository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Profile, error) {
	result := make(map[uuid.UUID]*domain.Profile, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	rawIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		rawIDs = append(rawIDs, id.String())
	}

	query, args, err := psqlbuilder.Select("id", "role", "display_name", "avatar_url").
		From("profiles").
		Where(squirrel.Eq{"id": rawIDs}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - execute select: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Profile
		if err := rows.Scan(&p.ID, &p.Role, &p.DisplayName, &p.AvatarURL); err != nil {
			return nil, fmt.Errorf("%w: GetByIDs - scan row: %w", ErrScanRow, err)
		}
		result[p.ID] = &p
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: GetByIDs - rows error: %w", ErrScanRow, err)
	}

	return result, nil
}
