package slot

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	"github.com/m04kA/SMC-LessonService/pkg/dbmetrics"
	"github.com/m04kA/SMC-LessonService/pkg/psqlbuilder"
)

const uniqueViolation = "23505"

// slotColumns колонки слота вместе с присоединенным hold (может быть NULL)
var slotColumns = []string{
	"s.id",
	"s.tutor_id",
	"s.starts_at",
	"s.ends_at",
	"s.price_cents",
	"s.status",
	"s.source",
	"s.room_id",
	"s.created_at",
	"s.updated_at",
	"h.id",
	"h.student_id",
	"h.expires_at",
	"h.created_at",
}

// Repository репозиторий для работы со слотами
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория слотов
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

func selectSlots() squirrel.SelectBuilder {
	return psqlbuilder.Select(slotColumns...).
		From("lesson_slots s").
		LeftJoin("lesson_holds h ON h.slot_id = s.id")
}

// GetByID получает слот по ID вместе с его hold
// Внутри транзакции строка слота блокируется (FOR UPDATE OF s)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := selectSlots().Where(squirrel.Eq{"s.id": id})
	if dbmetrics.IsInTransaction(ctx) {
		builder = builder.Suffix("FOR UPDATE OF s")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %w", ErrBuildQuery, err)
	}

	slot, err := scanSlot(executor.QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan slot: %w", ErrScanRow, err)
	}

	return slot, nil
}

// List получает слоты тьютора по фильтру, отсортированные по времени начала
// now используется фильтром OnlyAvailable для ленивой оценки истекших hold
func (r *Repository) List(ctx context.Context, filter domain.SlotFilter, now time.Time) ([]*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := selectSlots().
		Where(squirrel.Eq{"s.tutor_id": filter.TutorID.String()}).
		OrderBy("s.starts_at ASC")

	if filter.From != nil {
		builder = builder.Where(squirrel.GtOrEq{"s.starts_at": *filter.From})
	}
	if filter.To != nil {
		builder = builder.Where(squirrel.Lt{"s.starts_at": *filter.To})
	}
	if filter.OnlyAvailable {
		builder = builder.
			Where(squirrel.Eq{"s.status": domain.SlotStatusAvailable}).
			Where(squirrel.Gt{"s.starts_at": now}).
			Where(squirrel.Or{
				squirrel.Eq{"h.id": nil},
				squirrel.LtOrEq{"h.expires_at": now},
			})
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %w", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute select: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	slots := make([]*domain.Slot, 0)
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: List - scan row: %w", ErrScanRow, err)
		}
		slots = append(slots, slot)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: List - rows error: %w", ErrScanRow, err)
	}

	return slots, nil
}

// Create создает слот вручную
func (r *Repository) Create(ctx context.Context, slot *domain.Slot) (*domain.Slot, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("lesson_slots").
		Columns("tutor_id", "starts_at", "ends_at", "price_cents", "status", "source").
		Values(slot.TutorID, slot.StartsAt, slot.EndsAt, slot.PriceCents, slot.Status, slot.Source).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %w", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&slot.ID, &slot.CreatedAt, &slot.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return nil, ErrSlotAlreadyExists
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return slot, nil
}

// InsertPatternSlots вставляет слоты шаблона, пропуская уже занятые моменты
// Существующие строки любого статуса не изменяются. Возвращает число созданных слотов.
func (r *Repository) InsertPatternSlots(
	ctx context.Context,
	tutorID uuid.UUID,
	starts []time.Time,
	duration time.Duration,
	priceCents int,
) (int, error) {
	if len(starts) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Insert("lesson_slots").
		Columns("tutor_id", "starts_at", "ends_at", "price_cents", "status", "source")
	for _, at := range starts {
		builder = builder.Values(tutorID, at, at.Add(duration), priceCents, domain.SlotStatusAvailable, domain.SlotSourcePattern)
	}

	query, args, err := builder.
		Suffix("ON CONFLICT (tutor_id, starts_at) DO NOTHING").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: InsertPatternSlots - build insert query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: InsertPatternSlots - execute insert: %w", ErrExecQuery, err)
	}

	created, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: InsertPatternSlots - get rows affected: %w", ErrExecQuery, err)
	}

	return int(created), nil
}

// DeleteUnclaimedPatternSlots удаляет слоты шаблона из ids, если они всё ещё свободны
// Слот с живым hold или уже начавшийся не удаляется. Возвращает число удаленных.
func (r *Repository) DeleteUnclaimedPatternSlots(ctx context.Context, ids []int64, now time.Time) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("lesson_slots").
		Where(squirrel.Eq{"id": ids}).
		Where(squirrel.Eq{"status": domain.SlotStatusAvailable}).
		Where(squirrel.Eq{"source": domain.SlotSourcePattern}).
		Where(squirrel.Gt{"starts_at": now}).
		Where("NOT EXISTS (SELECT 1 FROM lesson_holds h WHERE h.slot_id = lesson_slots.id AND h.expires_at > ?)", now).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteUnclaimedPatternSlots - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteUnclaimedPatternSlots - execute delete: %w", ErrExecQuery, err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: DeleteUnclaimedPatternSlots - get rows affected: %w", ErrExecQuery, err)
	}

	return int(removed), nil
}

// MarkBooked переводит слот из available в booked и назначает комнату
// Если слот уже не available, возвращает ErrSlotNotAvailable
func (r *Repository) MarkBooked(ctx context.Context, id int64, roomID string) error {
	return r.transition(ctx, "MarkBooked", id, domain.SlotStatusAvailable, domain.SlotStatusBooked, &roomID)
}

// Cancel переводит свободный слот в canceled
func (r *Repository) Cancel(ctx context.Context, id int64) error {
	return r.transition(ctx, "Cancel", id, domain.SlotStatusAvailable, domain.SlotStatusCanceled, nil)
}

func (r *Repository) transition(
	ctx context.Context,
	op string,
	id int64,
	from, to domain.SlotStatus,
	roomID *string,
) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	builder := psqlbuilder.Update("lesson_slots").
		Set("status", to).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": from})
	if roomID != nil {
		builder = builder.Set("room_id", *roomID)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %w", ErrBuildQuery, op, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: %s - get rows affected: %w", ErrExecQuery, op, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotAvailable
	}

	return nil
}

// Delete удаляет свободный слот
func (r *Repository) Delete(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Delete("lesson_slots").
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": domain.SlotStatusAvailable}).
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: Delete - build delete query: %w", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: Delete - execute delete: %w", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: Delete - get rows affected: %w", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrSlotNotAvailable
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSlot(row rowScanner) (*domain.Slot, error) {
	var (
		slot          domain.Slot
		holdID        uuid.NullUUID
		holdStudentID uuid.NullUUID
		holdExpiresAt sql.NullTime
		holdCreatedAt sql.NullTime
	)

	err := row.Scan(
		&slot.ID,
		&slot.TutorID,
		&slot.StartsAt,
		&slot.EndsAt,
		&slot.PriceCents,
		&slot.Status,
		&slot.Source,
		&slot.RoomID,
		&slot.CreatedAt,
		&slot.UpdatedAt,
		&holdID,
		&holdStudentID,
		&holdExpiresAt,
		&holdCreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if holdID.Valid {
		slot.Hold = &domain.Hold{
			ID:        holdID.UUID,
			SlotID:    slot.ID,
			StudentID: holdStudentID.UUID,
			ExpiresAt: holdExpiresAt.Time,
			CreatedAt: holdCreatedAt.Time,
		}
	}

	return &slot, nil
}
