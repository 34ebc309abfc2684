package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/campushub/portal/internal/model"
	"github.com/campushub/portal/internal/render"
	"github.com/campushub/portal/internal/service"
)

func (s *Server) getMe(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"user": currentUser(c),
		"role": currentRole(c),
	})
}

func (s *Server) listAdvisors(c *gin.Context) {
	users, err := s.users.List(c.Request.Context())
	if err != nil {
		s.respondError(c, err)
		return
	}

	advisors := make([]*model.User, 0)
	for _, u := range users {
		if u.IsAdvisor() {
			advisors = append(advisors, u)
		}
	}
	c.JSON(http.StatusOK, advisors)
}

func (s *Server) listAppointments(c *gin.Context) {
	user := currentUser(c)
	appts, err := s.scheduling.ListAppointmentsForUser(c.Request.Context(), user.ID)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if appts == nil {
		appts = []*model.Appointment{}
	}
	c.JSON(http.StatusOK, appts)
}

func (s *Server) listBookableSlots(c *gin.Context) {
	date := c.Query("date")
	times, err := s.scheduling.ListBookableSlots(c.Request.Context(), c.Param("id"), date)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if times == nil {
		times = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "times": times})
}

func (s *Server) isSlotOccupied(c *gin.Context) {
	occupied, err := s.scheduling.IsOccupied(c.Request.Context(), c.Param("id"), c.Query("date"), c.Query("time"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"occupied": occupied})
}

func (s *Server) toggleAvailability(c *gin.Context) {
	var req struct {
		Date string `json:"date" binding:"required"`
		Time string `json:"time" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	actor := currentUser(c)
	outcome, err := s.scheduling.ToggleAvailability(c.Request.Context(), actor.ID, c.Param("id"), req.Date, req.Time)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"outcome": outcome})
}

func (s *Server) bookAppointment(c *gin.Context) {
	var req struct {
		StudentID string `json:"student_id"`
		AdvisorID string `json:"advisor_id" binding:"required"`
		Date      string `json:"date" binding:"required"`
		Time      string `json:"time" binding:"required"`
		Notes     string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	actor := currentUser(c)
	studentID := actor.ID
	// Only admins book on behalf of another student.
	if req.StudentID != "" && req.StudentID != actor.ID {
		if actor.Role != model.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "permission denied"})
			return
		}
		studentID = req.StudentID
	}

	startsAt, err := time.ParseInLocation(
		model.DateLayout+" "+model.TimeLayout,
		fmt.Sprintf("%s %s", req.Date, req.Time),
		time.UTC,
	)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date or time"})
		return
	}

	appt, err := s.scheduling.BookAppointment(c.Request.Context(), studentID, req.AdvisorID, startsAt, req.Notes)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, appt)
}

func (s *Server) updateAppointment(c *gin.Context) {
	var req struct {
		StudentID *string `json:"student_id"`
		AdvisorID *string `json:"advisor_id"`
		Date      *string `json:"date"`
		Time      *string `json:"time"`
		Status    *string `json:"status"`
		Notes     *string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	id := c.Param("id")
	if err := s.checkAppointmentAccess(c, id); err != nil {
		s.respondError(c, err)
		return
	}

	params := service.UpdateAppointmentParams{
		StudentID: req.StudentID,
		AdvisorID: req.AdvisorID,
		Notes:     req.Notes,
	}

	if req.Date != nil || req.Time != nil {
		if req.Date == nil || req.Time == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "date and time must be provided together"})
			return
		}
		startsAt, err := time.ParseInLocation(
			model.DateLayout+" "+model.TimeLayout,
			fmt.Sprintf("%s %s", *req.Date, *req.Time),
			time.UTC,
		)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date or time"})
			return
		}
		params.StartsAt = &startsAt
	}

	if req.Status != nil {
		status, ok := model.ParseAppointmentStatus(*req.Status)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		params.Status = &status
	}

	appt, err := s.scheduling.UpdateAppointment(c.Request.Context(), id, params)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, appt)
}

func (s *Server) cancelAppointment(c *gin.Context) {
	id := c.Param("id")
	if err := s.checkAppointmentAccess(c, id); err != nil {
		s.respondError(c, err)
		return
	}

	if err := s.scheduling.CancelAppointment(c.Request.Context(), id); err != nil {
		s.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) renderSchedule(c *gin.Context) {
	advisorID := c.Param("id")
	date := c.Query("date")

	advisor, err := s.users.Get(c.Request.Context(), advisorID)
	if err != nil {
		s.respondError(c, err)
		return
	}

	slots, occupied, err := s.scheduling.ListDaySlots(c.Request.Context(), advisorID, date)
	if err != nil {
		s.respondError(c, err)
		return
	}

	png, err := render.DaySchedule(advisor.Name, date, slots, occupied)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

// checkAppointmentAccess lets appointment participants and appointment
// managers through.
func (s *Server) checkAppointmentAccess(c *gin.Context, id string) error {
	appt, err := s.scheduling.GetAppointment(c.Request.Context(), id)
	if err != nil {
		return err
	}

	actor := currentUser(c)
	role := currentRole(c)
	if appt.StudentID == actor.ID || appt.AdvisorID == actor.ID {
		return nil
	}
	if role.Has(model.PermManageAppointments) && actor.Role == model.RoleAdmin {
		return nil
	}
	return model.ErrPermissionDenied
}
