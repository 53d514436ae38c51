package hold

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-LessonService/pkg/psqlbuilder"
)

// Repository репозиторий для работы с hold слотов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория hold
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Place атомарно ставит hold на слот
// Вставляет строку или заменяет существующую, только если она истекла к моменту now.
// Если у слота есть живой hold, возвращает ErrHoldConflict.
func (r *Repository) Place(ctx context.Context, hold *domain.Hold, now time.Time) (*domain.Hold, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("lesson_holds").
		Columns("id", "slot_id", "student_id", "expires_at", "created_at").
		Values(hold.ID, hold.SlotID, hold.StudentID, hold.ExpiresAt, now).
		Suffix(`ON CONFLICT (slot_id) DO UPDATE SET
			id = EXCLUDED.id,
			student_id = EXCLUDED.student_id,
			expires_at = EXCLUDED.expires_at,
			created_at = EXCLUDED.created_at
		WHERE lesson_holds.expires_at <= ?
		RETURNING created_at`, now).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Place - build upsert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&hold.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrHoldConflict
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Place - execute upsert: %w", ErrExecQuery, err)
	}

	return hold, nil
}

// GetBySlotID получает hold слота (в том числе истекший)
func (r *Repository) GetBySlotID(ctx context.Context, slotID int64) (*domain.Hold, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Select("id", "slot_id", "student_id", "expires_at", "created_at").
		From("lesson_holds").
		Where(squirrel.Eq{"slot_id": slotID})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySlotID - build select query: %w", ErrBuildQuery, err)
	}

	var hold domain.Hold
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&hold.ID,
		&hold.SlotID,
		&hold.StudentID,
		&hold.ExpiresAt,
		&hold.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrHoldNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetBySlotID - scan hold: %w", ErrScanRow, err)
	}

	return &hold, nil
}

// DeleteBySlotID удаляет hold слота
// Возвращает false, если удалять было нечего
func (r *Repository) DeleteBySlotID(ctx context.Context, slotID int64) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("lesson_holds").
		Where(squirrel.Eq{"slot_id": slotID}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: DeleteBySlotID - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: DeleteBySlotID - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: DeleteBySlotID - get rows affected: %w", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// DeleteExpired удаляет истекшие hold
// Корректность не зависит от этой очистки: статус слота вычисляется лениво
func (r *Repository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("lesson_holds").
		Where(squirrel.LtOrEq{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteExpired - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteExpired - execute delete: %w", ErrExecQuery, err)
	}

	purged, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteExpired - get rows affected: %w", ErrExecQuery, err)
	}

	return purged, nil
}
