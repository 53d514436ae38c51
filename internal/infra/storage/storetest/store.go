// Package storetest содержит in-memory реализации репозиториев для тестов
// Ошибки совпадают с ошибками настоящих репозиториев, CAS-операции атомарны под мьютексом.
package storetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-LessonService/internal/domain"
	availabilityRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/availability"
	bookingRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/booking"
	holdRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/hold"
	profileRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/profile"
	slotRepo "github.com/m04kA/SMC-LessonService/internal/infra/storage/slot"
)

// Store общее in-memory состояние
type Store struct {
	mu sync.Mutex

	slots         map[int64]*domain.Slot
	holds         map[int64]*domain.Hold
	bookings      map[int64]*domain.Booking
	patterns      map[uuid.UUID]*domain.AvailabilityPattern
	timeOff       []domain.TimeOff
	tutorProfiles map[uuid.UUID]*domain.TutorProfile
	profiles      map[uuid.UUID]*domain.Profile

	nextSlotID    int64
	nextBookingID int64
	nextTimeOffID int64

	// Ошибки для имитации сбоев
	BookingsErr error
	ProfilesErr error
	SlotsErr    error
	PatternErr  error
}

// NewStore создает пустое хранилище
func NewStore() *Store {
	return &Store{
		slots:         make(map[int64]*domain.Slot),
		holds:         make(map[int64]*domain.Hold),
		bookings:      make(map[int64]*domain.Booking),
		patterns:      make(map[uuid.UUID]*domain.AvailabilityPattern),
		tutorProfiles: make(map[uuid.UUID]*domain.TutorProfile),
		profiles:      make(map[uuid.UUID]*domain.Profile),
	}
}

// AddSlot добавляет слот и возвращает его ID
func (s *Store) AddSlot(slot domain.Slot) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSlotID++
	slot.ID = s.nextSlotID
	slot.Hold = nil
	if slot.Source == "" {
		slot.Source = domain.SlotSourceManual
	}
	s.slots[slot.ID] = &slot
	return slot.ID
}

// AddHold кладет hold напрямую
func (s *Store) AddHold(hold domain.Hold) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.holds[hold.SlotID] = &hold
}

// AddProfile добавляет публичный профиль
func (s *Store) AddProfile(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[p.ID] = &p
}

// AddTutorProfile добавляет параметры уроков тьютора
func (s *Store) AddTutorProfile(p domain.TutorProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tutorProfiles[p.TutorID] = &p
}

// SetPattern сохраняет шаблон доступности
func (s *Store) SetPattern(p domain.AvailabilityPattern) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patterns[p.TutorID] = &p
}

// AddTimeOff добавляет окно отпуска
func (s *Store) AddTimeOff(t domain.TimeOff) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTimeOffID++
	t.ID = s.nextTimeOffID
	s.timeOff = append(s.timeOff, t)
}

// Slot возвращает копию слота с hold
func (s *Store) Slot(id int64) *domain.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slotCopy(id)
}

// Hold возвращает копию hold слота
func (s *Store) Hold(slotID int64) *domain.Hold {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.holds[slotID]
	if !ok {
		return nil
	}
	cp := *h
	return &cp
}

// Bookings возвращает все бронирования
func (s *Store) Bookings() []domain.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Booking, 0, len(s.bookings))
	for _, b := range s.bookings {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TutorSlots возвращает слоты тьютора по возрастанию времени
func (s *Store) TutorSlots(tutorID uuid.UUID) []*domain.Slot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.Slot, 0)
	for id, slot := range s.slots {
		if slot.TutorID == tutorID {
			out = append(out, s.slotCopy(id))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out
}

func (s *Store) slotCopy(id int64) *domain.Slot {
	slot, ok := s.slots[id]
	if !ok {
		return nil
	}
	cp := *slot
	if h, ok := s.holds[id]; ok {
		hc := *h
		cp.Hold = &hc
	}
	return &cp
}

// Slots репозиторий слотов
type Slots struct{ S *Store }

func (r Slots) GetByID(_ context.Context, id int64) (*domain.Slot, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.SlotsErr != nil {
		return nil, r.S.SlotsErr
	}
	slot := r.S.slotCopy(id)
	if slot == nil {
		return nil, slotRepo.ErrSlotNotFound
	}
	return slot, nil
}

func (r Slots) List(_ context.Context, filter domain.SlotFilter, now time.Time) ([]*domain.Slot, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.SlotsErr != nil {
		return nil, r.S.SlotsErr
	}
	out := make([]*domain.Slot, 0)
	for id, slot := range r.S.slots {
		if slot.TutorID != filter.TutorID {
			continue
		}
		if filter.From != nil && slot.StartsAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && !slot.StartsAt.Before(*filter.To) {
			continue
		}
		cp := r.S.slotCopy(id)
		if filter.OnlyAvailable && (cp.EffectiveStatus(now) != domain.SlotStatusAvailable || cp.HasStarted(now)) {
			continue
		}
		out = append(out, cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out, nil
}

func (r Slots) Create(_ context.Context, slot *domain.Slot) (*domain.Slot, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	for _, existing := range r.S.slots {
		if existing.TutorID == slot.TutorID && existing.StartsAt.Equal(slot.StartsAt) {
			return nil, slotRepo.ErrSlotAlreadyExists
		}
	}
	r.S.nextSlotID++
	slot.ID = r.S.nextSlotID
	cp := *slot
	cp.Hold = nil
	r.S.slots[cp.ID] = &cp
	return slot, nil
}

func (r Slots) InsertPatternSlots(_ context.Context, tutorID uuid.UUID, starts []time.Time, duration time.Duration, priceCents int) (int, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	created := 0
	for _, at := range starts {
		exists := false
		for _, existing := range r.S.slots {
			if existing.TutorID == tutorID && existing.StartsAt.Equal(at) {
				exists = true
				break
			}
		}
		if exists {
			continue
		}
		r.S.nextSlotID++
		end := at.Add(duration)
		r.S.slots[r.S.nextSlotID] = &domain.Slot{
			ID:         r.S.nextSlotID,
			TutorID:    tutorID,
			StartsAt:   at,
			EndsAt:     &end,
			PriceCents: priceCents,
			Status:     domain.SlotStatusAvailable,
			Source:     domain.SlotSourcePattern,
		}
		created++
	}
	return created, nil
}

func (r Slots) DeleteUnclaimedPatternSlots(_ context.Context, ids []int64, now time.Time) (int, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	removed := 0
	for _, id := range ids {
		slot := r.S.slotCopy(id)
		if slot == nil || slot.Source != domain.SlotSourcePattern || slot.EffectiveStatus(now) != domain.SlotStatusAvailable || slot.HasStarted(now) {
			continue
		}
		delete(r.S.slots, id)
		delete(r.S.holds, id)
		removed++
	}
	return removed, nil
}

func (r Slots) MarkBooked(_ context.Context, id int64, roomID string) error {
	return r.transition(id, domain.SlotStatusBooked, &roomID)
}

func (r Slots) Cancel(_ context.Context, id int64) error {
	return r.transition(id, domain.SlotStatusCanceled, nil)
}

func (r Slots) transition(id int64, to domain.SlotStatus, roomID *string) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	slot, ok := r.S.slots[id]
	if !ok || slot.Status != domain.SlotStatusAvailable {
		return slotRepo.ErrSlotNotAvailable
	}
	slot.Status = to
	if roomID != nil {
		slot.RoomID = roomID
	}
	return nil
}

func (r Slots) Delete(_ context.Context, id int64) error {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	slot, ok := r.S.slots[id]
	if !ok || slot.Status != domain.SlotStatusAvailable {
		return slotRepo.ErrSlotNotAvailable
	}
	delete(r.S.slots, id)
	delete(r.S.holds, id)
	return nil
}

// Holds репозиторий hold
type Holds struct{ S *Store }

func (r Holds) Place(_ context.Context, hold *domain.Hold, now time.Time) (*domain.Hold, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if existing, ok := r.S.holds[hold.SlotID]; ok && existing.IsLive(now) {
		return nil, holdRepo.ErrHoldConflict
	}
	hold.CreatedAt = now
	cp := *hold
	r.S.holds[hold.SlotID] = &cp
	return hold, nil
}

func (r Holds) GetBySlotID(_ context.Context, slotID int64) (*domain.Hold, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	h, ok := r.S.holds[slotID]
	if !ok {
		return nil, holdRepo.ErrHoldNotFound
	}
	cp := *h
	return &cp, nil
}

func (r Holds) DeleteBySlotID(_ context.Context, slotID int64) (bool, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	_, ok := r.S.holds[slotID]
	delete(r.S.holds, slotID)
	return ok, nil
}

func (r Holds) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	var purged int64
	for id, h := range r.S.holds {
		if !h.IsLive(now) {
			delete(r.S.holds, id)
			purged++
		}
	}
	return purged, nil
}

// Bookings репозиторий бронирований
type Bookings struct{ S *Store }

func (r Bookings) Create(_ context.Context, booking *domain.Booking) (*domain.Booking, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if booking.SlotID != nil {
		for _, b := range r.S.bookings {
			if b.SlotID != nil && *b.SlotID == *booking.SlotID && b.IsActive() {
				return nil, bookingRepo.ErrSlotAlreadyBooked
			}
		}
	}
	r.S.nextBookingID++
	booking.ID = r.S.nextBookingID
	cp := *booking
	r.S.bookings[cp.ID] = &cp
	return booking, nil
}

func (r Bookings) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	b, ok := r.S.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	cp := *b
	return &cp, nil
}

func (r Bookings) GetActiveBySlotIDs(_ context.Context, slotIDs []int64) (map[int64]*domain.Booking, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.BookingsErr != nil {
		return nil, r.S.BookingsErr
	}
	wanted := make(map[int64]struct{}, len(slotIDs))
	for _, id := range slotIDs {
		wanted[id] = struct{}{}
	}
	out := make(map[int64]*domain.Booking)
	for _, b := range r.S.bookings {
		if b.SlotID == nil || !b.IsActive() {
			continue
		}
		if _, ok := wanted[*b.SlotID]; ok {
			cp := *b
			out[*b.SlotID] = &cp
		}
	}
	return out, nil
}

func (r Bookings) GetByParticipant(_ context.Context, filter domain.UserBookingsFilter) ([]*domain.Booking, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	out := make([]*domain.Booking, 0)
	for _, b := range r.S.bookings {
		owner := b.StudentID
		if filter.Principal.Role == domain.RoleTutor {
			owner = b.TutorID
		}
		if owner != filter.Principal.UserID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		cp := *b
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.After(out[j].StartsAt) })
	return out, nil
}

func (r Bookings) CompletePast(_ context.Context, now time.Time, defaultDuration time.Duration) (int64, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	var completed int64
	for _, b := range r.S.bookings {
		end := b.StartsAt.Add(defaultDuration)
		if b.EndsAt != nil {
			end = *b.EndsAt
		}
		if b.Status == domain.BookingStatusBooked && !end.After(now) {
			b.Status = domain.BookingStatusCompleted
			completed++
		}
	}
	return completed, nil
}

// Availability репозиторий шаблонов и отпусков
type Availability struct{ S *Store }

func (r Availability) GetPattern(_ context.Context, tutorID uuid.UUID) (*domain.AvailabilityPattern, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.PatternErr != nil {
		return nil, r.S.PatternErr
	}
	p, ok := r.S.patterns[tutorID]
	if !ok {
		return nil, availabilityRepo.ErrPatternNotFound
	}
	cp := *p
	return &cp, nil
}

func (r Availability) UpsertPattern(_ context.Context, pattern *domain.AvailabilityPattern) (*domain.AvailabilityPattern, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.PatternErr != nil {
		return nil, r.S.PatternErr
	}
	cp := *pattern
	r.S.patterns[pattern.TutorID] = &cp
	return pattern, nil
}

func (r Availability) ListTutorIDsWithPattern(_ context.Context) ([]uuid.UUID, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	out := make([]uuid.UUID, 0, len(r.S.patterns))
	for id, p := range r.S.patterns {
		if !p.IsEmpty() {
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out, nil
}

func (r Availability) CreateTimeOff(_ context.Context, t *domain.TimeOff) (*domain.TimeOff, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	r.S.nextTimeOffID++
	t.ID = r.S.nextTimeOffID
	r.S.timeOff = append(r.S.timeOff, *t)
	return t, nil
}

func (r Availability) ListTimeOff(_ context.Context, tutorID uuid.UUID, from, to time.Time) ([]domain.TimeOff, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	out := make([]domain.TimeOff, 0)
	for _, t := range r.S.timeOff {
		if t.TutorID == tutorID && t.StartsAt.Before(to) && t.EndsAt.After(from) {
			out = append(out, t)
		}
	}
	return out, nil
}

// Profiles репозиторий профилей
type Profiles struct{ S *Store }

func (r Profiles) GetTutorProfile(_ context.Context, tutorID uuid.UUID) (*domain.TutorProfile, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	p, ok := r.S.tutorProfiles[tutorID]
	if !ok {
		return nil, profileRepo.ErrProfileNotFound
	}
	cp := *p
	return &cp, nil
}

func (r Profiles) GetByIDs(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*domain.Profile, error) {
	r.S.mu.Lock()
	defer r.S.mu.Unlock()
	if r.S.ProfilesErr != nil {
		return nil, r.S.ProfilesErr
	}
	out := make(map[uuid.UUID]*domain.Profile)
	for _, id := range ids {
		if p, ok := r.S.profiles[id]; ok {
			cp := *p
			out[id] = &cp
		}
	}
	return out, nil
}
