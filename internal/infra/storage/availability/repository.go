package availability

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-LessonService/pkg/psqlbuilder"
)

// Repository репозиторий шаблонов доступности и отпусков тьюторов
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория доступности
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetPattern получает шаблон доступности тьютора
func (r *Repository) GetPattern(ctx context.Context, tutorID uuid.UUID) (*domain.AvailabilityPattern, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("tutor_id", "timezone", "hours_by_weekday", "updated_at").
		From("tutor_availability_patterns").
		Where(squirrel.Eq{"tutor_id": tutorID.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetPattern - build select query: %w", ErrBuildQuery, err)
	}

	var (
		pattern domain.AvailabilityPattern
		raw     []byte
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&pattern.TutorID,
		&pattern.Timezone,
		&raw,
		&pattern.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrPatternNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetPattern - scan pattern: %w", ErrScanRow, err)
	}

	if err := json.Unmarshal(raw, &pattern.HoursByWeekday); err != nil {
		return nil, fmt.Errorf("%w: GetPattern - decode hours: %w", ErrEncodePattern, err)
	}

	return &pattern, nil
}

// UpsertPattern создает или заменяет шаблон доступности тьютора
func (r *Repository) UpsertPattern(ctx context.Context, pattern *domain.AvailabilityPattern) (*domain.AvailabilityPattern, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	hours := pattern.HoursByWeekday
	if hours == nil {
		hours = map[time.Weekday][]int{}
	}
	raw, err := json.Marshal(hours)
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertPattern - encode hours: %w", ErrEncodePattern, err)
	}

	query, args, err := psqlbuilder.Insert("tutor_availability_patterns").
		Columns("tutor_id", "timezone", "hours_by_weekday", "updated_at").
		Values(pattern.TutorID, pattern.Timezone, string(raw), squirrel.Expr("NOW()")).
		Suffix(`ON CONFLICT (tutor_id) DO UPDATE SET
			timezone = EXCLUDED.timezone,
			hours_by_weekday = EXCLUDED.hours_by_weekday,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertPattern - build upsert query: %w", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&pattern.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: UpsertPattern - execute upsert: %w", ErrExecQuery, err)
	}

	return pattern, nil
}

// ListTutorIDsWithPattern получает ID всех тьюторов с опубликованным шаблоном
func (r *Repository) ListTutorIDsWithPattern(ctx context.Context) ([]uuid.UUID, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("tutor_id").
		From("tutor_availability_patterns").
		Where("hours_by_weekday <> '{}'::jsonb").
		OrderBy("tutor_id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListTutorIDsWithPattern - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListTutorIDsWithPattern - execute select: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	tutorIDs := make([]uuid.UUID, 0)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("%w: ListTutorIDsWithPattern - scan row: %w", ErrScanRow, err)
		}
		tutorIDs = append(tutorIDs, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListTutorIDsWithPattern - rows error: %w", ErrScanRow, err)
	}

	return tutorIDs, nil
}

// CreateTimeOff добавляет окно отпуска
func (r *Repository) CreateTimeOff(ctx context.Context, timeOff *domain.TimeOff) (*domain.TimeOff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("tutor_time_off").
		Columns("tutor_id", "starts_at", "ends_at", "reason").
		Values(timeOff.TutorID, timeOff.StartsAt, timeOff.EndsAt, timeOff.Reason).
		Suffix("RETURNING id, created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: CreateTimeOff - build insert query: %w", ErrBuildQuery, err)
	}

	if err := executor.QueryRowContext(ctx, query, args...).Scan(&timeOff.ID, &timeOff.CreatedAt); err != nil {
		return nil, fmt.Errorf("%w: CreateTimeOff - execute insert: %w", ErrExecQuery, err)
	}

	return timeOff, nil
}

// ListTimeOff получает окна отпуска тьютора, пересекающиеся с [from, to)
func (r *Repository) ListTimeOff(ctx context.Context, tutorID uuid.UUID, from, to time.Time) ([]domain.TimeOff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id", "tutor_id", "starts_at", "ends_at", "reason", "created_at").
		From("tutor_time_off").
		Where(squirrel.Eq{"tutor_id": tutorID.String()}).
		Where(squirrel.Lt{"starts_at": to}).
		Where(squirrel.Gt{"ends_at": from}).
		OrderBy("starts_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListTimeOff - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListTimeOff - execute select: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	windows := make([]domain.TimeOff, 0)
	for rows.Next() {
		var t domain.TimeOff
		if err := rows.Scan(&t.ID, &t.TutorID, &t.StartsAt, &t.EndsAt, &t.Reason, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: ListTimeOff - scan row: %w", ErrScanRow, err)
		}
		windows = append(windows, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListTimeOff - rows error: %w", ErrScanRow, err)
	}

	return windows, nil
}
