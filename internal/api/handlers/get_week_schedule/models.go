package get_week_schedule

import (
	"time"

	"github.com/m04kA/SMC-LessonService/internal/domain"
)

// StudentResponse студент забронированного часа
type StudentResponse struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"displayName"`
	AvatarURL   *string `json:"avatarUrl,omitempty"`
}

// CellResponse час расписания
type CellResponse struct {
	StartsAt time.Time        `json:"startsAt"`
	Hour     int              `json:"hour"`
	Status   string           `json:"status"`
	Reason   *string          `json:"reason,omitempty"`
	SlotID   *int64           `json:"slotId,omitempty"`
	Student  *StudentResponse `json:"student,omitempty"`
}

// DayResponse день расписания
type DayResponse struct {
	Date    string         `json:"date"` // YYYY-MM-DD в часовом поясе тьютора
	Weekday string         `json:"weekday"`
	Cells   []CellResponse `json:"cells"`
}

// WeekScheduleResponse HTTP response model
type WeekScheduleResponse struct {
	TutorID   string        `json:"tutorId"`
	Timezone  string        `json:"timezone"`
	WeekStart string        `json:"weekStart"`
	Days      []DayResponse `json:"days"`
	Warnings  []string      `json:"warnings"`
}

// FromDomainSchedule конвертирует domain модель в HTTP response
func FromDomainSchedule(s *domain.WeekSchedule) *WeekScheduleResponse {
	resp := &WeekScheduleResponse{
		TutorID:   s.TutorID.String(),
		Timezone:  s.Timezone,
		WeekStart: s.WeekStart.Format(domain.DateFormat),
		Days:      make([]DayResponse, 0, len(s.Days)),
		Warnings:  s.Warnings,
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}

	for _, day := range s.Days {
		dayResp := DayResponse{
			Date:    day.Date.Format(domain.DateFormat),
			Weekday: day.Weekday.String(),
			Cells:   make([]CellResponse, 0, len(day.Cells)),
		}

		for _, cell := range day.Cells {
			cellResp := CellResponse{
				StartsAt: cell.StartsAt,
				Hour:     cell.Hour,
				Status:   string(cell.Status),
				SlotID:   cell.SlotID,
			}
			if cell.Reason != nil {
				reason := string(*cell.Reason)
				cellResp.Reason = &reason
			}
			if cell.Student != nil {
				cellResp.Student = &StudentResponse{
					ID:          cell.Student.ID.String(),
					DisplayName: cell.Student.DisplayName,
					AvatarURL:   cell.Student.AvatarURL,
				}
			}
			dayResp.Cells = append(dayResp.Cells, cellResp)
		}

		resp.Days = append(resp.Days, dayResp)
	}

	return resp
}
