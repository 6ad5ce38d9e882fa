package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	attendancedomain "github.com/erayastyle/ops-hub/internal/attendance/domain"
	"github.com/gin-gonic/gin"
)

func (s *Server) CheckIn(c *gin.Context) {
	user := currentUser(c)
	record, err := s.attendancesvc.CheckIn(c.Request.Context(), user.ID, user.Name)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (s *Server) CheckOut(c *gin.Context) {
	user := currentUser(c)
	record, err := s.attendancesvc.CheckOut(c.Request.Context(), user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (s *Server) AttendanceStatus(c *gin.Context) {
	user := currentUser(c)
	record, err := s.attendancesvc.Open(c.Request.Context(), user.ID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"checked_in": record != nil,
		"record":     record,
	})
}

// attendanceRange reads the common filters; employees are pinned to
// their own records regardless of the user_id parameter.
func (s *Server) attendanceRange(c *gin.Context) (attendancedomain.RecordsRequest, error) {
	startDate, endDate, err := parseDateRange(c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		return attendancedomain.RecordsRequest{}, newValidationError("start_date", "invalid_time", "invalid date")
	}

	user := currentUser(c)
	userID := strings.TrimSpace(c.Query("user_id"))
	if !user.Role.Manages() {
		userID = user.ID
	}

	return attendancedomain.RecordsRequest{
		UserID:    userID,
		StartDate: startDate,
		EndDate:   endDate,
	}, nil
}

func (s *Server) AttendanceRecords(c *gin.Context) {
	req, err := s.attendanceRange(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	records, err := s.attendancesvc.Records(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (s *Server) AttendanceReport(c *gin.Context) {
	req, err := s.attendanceRange(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rows, err := s.attendancesvc.Report(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"report": rows})
}

func (s *Server) AttendanceOvertime(c *gin.Context) {
	req, err := s.attendanceRange(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	rows, err := s.attendancesvc.Overtime(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"overtime": rows})
}

func (s *Server) AttendanceExport(c *gin.Context) {
	req, err := s.attendanceRange(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	stamp := time.Now().UTC().Format("2006-01-02")
	switch strings.ToLower(strings.TrimSpace(c.Query("format"))) {
	case "", "csv":
		data, err := s.attendancesvc.ExportCSV(c.Request.Context(), req)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=attendance-%s.csv", stamp))
		c.Data(http.StatusOK, "text/csv", data)
	case "xlsx":
		data, err := s.attendancesvc.ExportXLSX(c.Request.Context(), req)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=attendance-%s.xlsx", stamp))
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	default:
		AbortWithError(c, newValidationError("format", "invalid_format", "format must be csv or xlsx"))
	}
}
