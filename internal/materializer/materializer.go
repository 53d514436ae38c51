// Package materializer превращает недельный шаблон доступности тьютора в конкретные моменты начала слотов
package materializer

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
)

// ResolveLocalHour переводит локальное время (дата + час) в зоне loc в абсолютный момент
// Смещение зоны берется на конкретную дату: пробуются смещения за сутки до и после,
// кандидат принимается, только если при обратном переводе в loc дает те же дату и час.
// Несуществующее время (весенний переход) возвращает ok=false,
// неоднозначное (осенний переход) - более ранний момент.
func ResolveLocalHour(year int, month time.Month, day, hour int, loc *time.Location) (time.Time, bool) {
	naive := time.Date(year, month, day, hour, 0, 0, 0, time.UTC)

	var (
		best  time.Time
		found bool
	)
	for _, sample := range []time.Time{naive.Add(-24 * time.Hour), naive.Add(24 * time.Hour)} {
		_, offset := sample.In(loc).Zone()
		candidate := naive.Add(-time.Duration(offset) * time.Second)

		local := candidate.In(loc)
		if local.Year() != year || local.Month() != month || local.Day() != day ||
			local.Hour() != hour || local.Minute() != 0 {
			continue
		}
		if !found || candidate.Before(best) {
			best = candidate
			found = true
		}
	}

	return best, found
}

// InPattern сообщает, совпадает ли момент at с часом шаблона
// Для неоднозначного часа шаблону принадлежит только более раннее его вхождение
func InPattern(pattern *domain.AvailabilityPattern, loc *time.Location, at time.Time) bool {
	local := at.In(loc)
	if local.Minute() != 0 || local.Second() != 0 || local.Nanosecond() != 0 {
		return false
	}
	if !pattern.HasHour(local.Weekday(), local.Hour()) {
		return false
	}
	resolved, ok := ResolveLocalHour(local.Year(), local.Month(), local.Day(), local.Hour(), loc)
	return ok && resolved.Equal(at)
}

// Plan возвращает отсортированные моменты начала слотов в окне [from, to)
// Даты перебираются в зоне тьютора. Моменты не позже now и попадающие в отпуск отбрасываются.
func Plan(pattern *domain.AvailabilityPattern, timeOff []domain.TimeOff, from, to, now time.Time) ([]time.Time, error) {
	loc, err := pattern.Location()
	if err != nil {
		return nil, err
	}
	if !to.After(from) {
		return nil, fmt.Errorf("materializer: empty window %s..%s", from.Format(time.RFC3339), to.Format(time.RFC3339))
	}

	startLocal := from.In(loc)
	endLocal := to.In(loc)
	// Календарная арифметика в UTC, чтобы AddDate не зависел от переходов
	day := time.Date(startLocal.Year(), startLocal.Month(), startLocal.Day(), 0, 0, 0, 0, time.UTC)
	lastDay := time.Date(endLocal.Year(), endLocal.Month(), endLocal.Day(), 0, 0, 0, 0, time.UTC)

	starts := make([]time.Time, 0)
	for ; !day.After(lastDay); day = day.AddDate(0, 0, 1) {
		hours := pattern.HoursByWeekday[day.Weekday()]
		for _, hour := range hours {
			at, ok := ResolveLocalHour(day.Year(), day.Month(), day.Day(), hour, loc)
			if !ok {
				continue
			}
			if at.Before(from) || !at.Before(to) {
				continue
			}
			if !at.After(now) {
				continue
			}
			if domain.InTimeOff(timeOff, at) {
				continue
			}
			starts = append(starts, at)
		}
	}

	sort.Slice(starts, func(i, j int) bool { return starts[i].Before(starts[j]) })
	return starts, nil
}

// Reconciliation результат сравнения плана с уже существующими слотами
type Reconciliation struct {
	Create []time.Time // моменты без слота
	Prune  []int64     // id слотов шаблона, которые больше не нужны
}

// Reconcile сравнивает план с существующими слотами окна
// Существующий слот любого статуса блокирует создание на тот же момент.
// Удаляются только будущие слоты шаблона в статусе available без живого hold,
// которые попали в отпуск или выпали из шаблона.
func Reconcile(
	planned []time.Time,
	existing []*domain.Slot,
	pattern *domain.AvailabilityPattern,
	timeOff []domain.TimeOff,
	now time.Time,
) (*Reconciliation, error) {
	loc, err := pattern.Location()
	if err != nil {
		return nil, err
	}

	taken := make(map[int64]struct{}, len(existing))
	for _, slot := range existing {
		taken[slot.StartsAt.Unix()] = struct{}{}
	}

	result := &Reconciliation{
		Create: make([]time.Time, 0),
		Prune:  make([]int64, 0),
	}

	for _, at := range planned {
		if _, ok := taken[at.Unix()]; ok {
			continue
		}
		taken[at.Unix()] = struct{}{}
		result.Create = append(result.Create, at)
	}

	for _, slot := range existing {
		if slot.Source != domain.SlotSourcePattern {
			continue
		}
		if slot.EffectiveStatus(now) != domain.SlotStatusAvailable || slot.HasStarted(now) {
			continue
		}
		if domain.InTimeOff(timeOff, slot.StartsAt) || !InPattern(pattern, loc, slot.StartsAt) {
			result.Prune = append(result.Prune, slot.ID)
		}
	}

	return result, nil
}
