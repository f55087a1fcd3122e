package attendancehandler

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jung-kurt/gofpdf"

	"campushr/internal/domain/attendance"
	"campushr/internal/domain/auth"
	"campushr/internal/transport/http/api"
	"campushr/internal/transport/http/middleware"
	"campushr/internal/transport/http/shared"
)

type Handler struct {
	Service *attendance.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *attendance.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Perms: perms}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/attendance", func(r chi.Router) {
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite, h.Perms)).Post("/check-in", h.handleCheckIn)
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite, h.Perms)).Post("/check-out", h.handleCheckOut)
		r.With(middleware.RequirePermission(auth.PermCalendarManage, h.Perms)).Post("/auto-checkout", h.handleAutoCheckout)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/records", h.handleRecords)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/records/export", h.handleRecordsExport)
		r.With(middleware.RequirePermission(auth.PermAttendanceWrite, h.Perms)).Post("/overtime", h.handleRequestOvertime)
		r.With(middleware.RequirePermission(auth.PermOvertimeApprove, h.Perms)).Get("/overtime/pending", h.handlePendingOvertime)
		r.With(middleware.RequirePermission(auth.PermOvertimeApprove, h.Perms)).Post("/overtime/{requestID}/decide", h.handleDecideOvertime)
		r.With(middleware.RequirePermission(auth.PermAttendanceRead, h.Perms)).Get("/holidays", h.handleListHolidays)
		r.With(middleware.RequirePermission(auth.PermCalendarManage, h.Perms)).Post("/holidays", h.handleCreateHoliday)
		r.With(middleware.RequirePermission(auth.PermCalendarManage, h.Perms)).Delete("/holidays/{holidayID}", h.handleDeleteHoliday)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/statement", h.handleStatement)
		r.With(middleware.RequirePermission(auth.PermPayrollRead, h.Perms)).Get("/statement/pdf", h.handleStatementPDF)
	})
}

func (h *Handler) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.StaffID == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "staff identity required", reqID)
		return
	}

	rec, err := h.Service.CheckIn(r.Context(), user.TenantID, user.StaffID)
	if err != nil {
		h.failAttendance(w, err, reqID)
		return
	}
	api.Created(w, rec, reqID)
}

func (h *Handler) handleCheckOut(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.StaffID == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "staff identity required", reqID)
		return
	}

	rec, err := h.Service.CheckOut(r.Context(), user.TenantID, user.StaffID)
	if err != nil {
		h.failAttendance(w, err, reqID)
		return
	}
	api.Success(w, rec, reqID)
}

type autoCheckoutRequest struct {
	Date string `json:"date"`
}

func (h *Handler) handleAutoCheckout(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload autoCheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	day, err := shared.ParseDate(payload.Date)
	if err != nil || day.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD", reqID)
		return
	}

	closed, err := h.Service.AutoCheckout(r.Context(), user.TenantID, day)
	if err != nil {
		h.failAttendance(w, err, reqID)
		return
	}
	api.Success(w, map[string]int{"closed": closed}, reqID)
}

func (h *Handler) handleRecords(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	staffID, start, end, err := h.recordQuery(r, user)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), reqID)
		return
	}

	records, err := h.Service.Records(r.Context(), user.TenantID, staffID, start, end)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_list_failed", "failed to list records", reqID)
		return
	}
	api.Success(w, records, reqID)
}

func (h *Handler) handleRecordsExport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	staffID, start, end, err := h.recordQuery(r, user)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", err.Error(), reqID)
		return
	}

	records, err := h.Service.Records(r.Context(), user.TenantID, staffID, start, end)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "attendance_export_failed", "failed to export records", reqID)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", "attachment; filename=attendance.csv")
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "check_in", "check_out", "status", "total_hours"}); err != nil {
		slog.Warn("attendance export header write failed", "err", err)
	}
	for _, rec := range records {
		checkIn, checkOut := "", ""
		if rec.CheckIn != nil {
			checkIn = rec.CheckIn.Format(time.RFC3339)
		}
		if rec.CheckOut != nil {
			checkOut = rec.CheckOut.Format(time.RFC3339)
		}
		row := []string{rec.WorkDate.Format("2006-01-02"), checkIn, checkOut, rec.Status, fmt.Sprintf("%.2f", rec.TotalHours)}
		if err := writer.Write(row); err != nil {
			slog.Warn("attendance export row write failed", "err", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		slog.Warn("attendance export flush failed", "err", err)
	}
}

type overtimeRequestPayload struct {
	Date   string  `json:"date"`
	Hours  float64 `json:"hours"`
	Reason string  `json:"reason"`
}

func (h *Handler) handleRequestOvertime(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok || user.StaffID == "" {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "staff identity required", reqID)
		return
	}

	var payload overtimeRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	day, err := shared.ParseDate(payload.Date)
	if err != nil || day.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD", reqID)
		return
	}

	req, err := h.Service.RequestOvertime(r.Context(), user.TenantID, user.StaffID, day, payload.Hours, payload.Reason)
	if err != nil {
		h.failAttendance(w, err, reqID)
		return
	}
	api.Created(w, req, reqID)
}

func (h *Handler) handlePendingOvertime(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	pending, err := h.Service.PendingOvertime(r.Context(), user.TenantID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "overtime_pending_failed", "failed to list pending overtime", reqID)
		return
	}
	api.Success(w, pending, reqID)
}

type overtimeDecisionPayload struct {
	Decision string `json:"decision"`
}

func (h *Handler) handleDecideOvertime(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload overtimeDecisionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	err := h.Service.DecideOvertime(r.Context(), user.TenantID, chi.URLParam(r, "requestID"), payload.Decision, user.UserID)
	if err != nil {
		h.failAttendance(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"status": payload.Decision}, reqID)
}

func (h *Handler) handleListHolidays(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	start, end, err := rangeQuery(r)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_date", err.Error(), reqID)
		return
	}

	holidays, err := h.Service.Holidays(r.Context(), user.TenantID, start, end)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "holidays_failed", "failed to list holidays", reqID)
		return
	}
	api.Success(w, holidays, reqID)
}

type holidayPayload struct {
	Date string `json:"date"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func (h *Handler) handleCreateHoliday(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	var payload holidayPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}
	day, err := shared.ParseDate(payload.Date)
	if err != nil || day.IsZero() {
		api.Fail(w, http.StatusBadRequest, "invalid_date", "date must be YYYY-MM-DD", reqID)
		return
	}

	id, err := h.Service.CreateHoliday(r.Context(), user.TenantID, day, payload.Name, payload.Kind)
	if err != nil {
		h.failAttendance(w, err, reqID)
		return
	}
	api.Created(w, map[string]string{"id": id}, reqID)
}

func (h *Handler) handleDeleteHoliday(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	if err := h.Service.DeleteHoliday(r.Context(), user.TenantID, chi.URLParam(r, "holidayID")); err != nil {
		h.failAttendance(w, err, reqID)
		return
	}
	api.Success(w, map[string]string{"status": "deleted"}, reqID)
}

func (h *Handler) handleStatement(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	staffID, err := h.statementStaffID(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
		return
	}

	statement, err := h.Service.MonthlyStatement(r.Context(), user.TenantID, staffID)
	if err != nil {
		h.failAttendance(w, err, reqID)
		return
	}
	api.Success(w, statement, reqID)
}

func (h *Handler) handleStatementPDF(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", reqID)
		return
	}

	staffID, err := h.statementStaffID(r, user)
	if err != nil {
		api.Fail(w, http.StatusForbidden, "forbidden", err.Error(), reqID)
		return
	}

	statement, err := h.Service.MonthlyStatement(r.Context(), user.TenantID, staffID)
	if err != nil {
		h.failAttendance(w, err, reqID)
		return
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Salary Statement")
	pdf.Ln(12)
	pdf.SetFont("Helvetica", "", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Staff: %s", statement.StaffName))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Period: %s to %s", statement.PeriodStart.Format("2006-01-02"), statement.PeriodEnd.Format("2006-01-02")))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Days present: %d", statement.Summary.DaysPresent))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Weekends: %d", statement.Summary.Weekends))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Paid holidays: %d", statement.Summary.PaidHolidays))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Paid leave days: %.1f", statement.Summary.PaidLeaveDays))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Payable days: %.1f", statement.Summary.PayableDays))
	pdf.Ln(10)
	pdf.Cell(0, 8, fmt.Sprintf("Per-day salary: %.2f", statement.Salary.PerDaySalary))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Earned salary: %.2f", statement.Salary.EarnedSalary))
	pdf.Ln(7)
	pdf.Cell(0, 8, fmt.Sprintf("Overtime pay: %.2f", statement.Salary.OvertimePay))
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Total earnings: %.2f", statement.Salary.TotalEarnings))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=salary-statement.pdf")
	if err := pdf.Output(w); err != nil {
		slog.Warn("salary statement pdf write failed", "err", err)
	}
}

func (h *Handler) recordQuery(r *http.Request, user auth.UserContext) (string, time.Time, time.Time, error) {
	staffID := user.StaffID
	if raw := r.URL.Query().Get("staffId"); raw != "" {
		if !auth.ApproverRoles[user.RoleName] && user.RoleName != auth.RoleAdmin {
			return "", time.Time{}, time.Time{}, errors.New("cannot view another staff member's records")
		}
		staffID = raw
	}
	if staffID == "" {
		return "", time.Time{}, time.Time{}, errors.New("staffId required")
	}
	start, end, err := rangeQuery(r)
	if err != nil {
		return "", time.Time{}, time.Time{}, err
	}
	return staffID, start, end, nil
}

func (h *Handler) statementStaffID(r *http.Request, user auth.UserContext) (string, error) {
	staffID := user.StaffID
	if raw := r.URL.Query().Get("staffId"); raw != "" {
		if !auth.ApproverRoles[user.RoleName] && user.RoleName != auth.RoleAdmin {
			return "", errors.New("cannot view another staff member's statement")
		}
		staffID = raw
	}
	if staffID == "" {
		return "", errors.New("staffId required")
	}
	return staffID, nil
}

func rangeQuery(r *http.Request) (time.Time, time.Time, error) {
	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("from must be YYYY-MM-DD")
		}
		start = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := shared.ParseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("to must be YYYY-MM-DD")
		}
		end = parsed
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, errors.New("to must be on or after from")
	}
	return start, end, nil
}

func (h *Handler) failAttendance(w http.ResponseWriter, err error, reqID string) {
	switch {
	case errors.Is(err, attendance.ErrNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", "record not found", reqID)
	case errors.Is(err, attendance.ErrValidation):
		api.FailWithDetails(w, http.StatusBadRequest, "validation_error", "validation failed", err.Error(), reqID)
	case errors.Is(err, attendance.ErrInvalidState), errors.Is(err, attendance.ErrConflict):
		api.Fail(w, http.StatusConflict, "conflict", err.Error(), reqID)
	default:
		api.Fail(w, http.StatusInternalServerError, "attendance_operation_failed", "attendance operation failed", reqID)
	}
}
