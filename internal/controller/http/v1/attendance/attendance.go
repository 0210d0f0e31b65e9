package attendance

import (
	"bytes"
	"fmt"
	"net/http"
	"path/filepath"
	"reflect"

	"attendance/tracker/foundation/web"
	"attendance/tracker/internal/auth"
	"attendance/tracker/internal/entity"
	"attendance/tracker/internal/service/export"

	"github.com/pkg/errors"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypePDF  = "application/pdf"
)

type Controller struct {
	attendance Attendance
}

func NewController(attendance Attendance) *Controller {
	return &Controller{attendance}
}

func (uc Controller) CheckIn(c *web.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return c.RespondError(err)
	}

	response, err := uc.attendance.CheckIn(c.Ctx, claims.UserId)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":    response,
		"message": "Checked in successfully",
		"status":  true,
	}, http.StatusOK)
}

func (uc Controller) CheckOut(c *web.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return c.RespondError(err)
	}

	response, err := uc.attendance.CheckOut(c.Ctx, claims.UserId)
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data":    response,
		"message": "Checked out successfully",
		"status":  true,
	}, http.StatusOK)
}

func (uc Controller) GetMine(c *web.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return c.RespondError(err)
	}

	list, err := uc.attendance.ListOwnOrDelegated(c.Ctx, claims, auth.GetTarget(c.Ctx))
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": list,
			"count":   len(list),
		},
		"status": true,
	}, http.StatusOK)
}

func (uc Controller) GetAll(c *web.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return c.RespondError(err)
	}

	list, err := uc.attendance.ListAll(c.Ctx, claims, listFilter(c))
	if err != nil {
		return c.RespondError(err)
	}

	return c.Respond(map[string]interface{}{
		"data": map[string]interface{}{
			"results": list,
			"count":   len(list),
		},
		"status": true,
	}, http.StatusOK)
}

// ExportAll sends the admin listing as csv (default) or xlsx.
func (uc Controller) ExportAll(c *web.Context) error {
	format := "csv"
	if f, ok := c.GetQueryFunc(reflect.String, "format").(*string); ok {
		format = *f
	}

	claims, err := claimsFrom(c)
	if err != nil {
		return c.RespondError(err)
	}

	list, err := uc.attendance.ListAll(c.Ctx, claims, listFilter(c))
	if err != nil {
		return c.RespondError(err)
	}

	var buf bytes.Buffer
	switch format {
	case "csv":
		err = export.AllCSV(&buf, list)
	case "xlsx":
		err = export.AllXLSX(&buf, list)
	default:
		return c.RespondError(web.NewRequestError(errors.Errorf("unsupported format %q", format), http.StatusBadRequest))
	}
	if err != nil {
		return c.RespondError(errors.Wrap(err, "exporting attendance"))
	}

	return attachment(c, "attendance_records."+format, buf.Bytes())
}

// GetReport returns one month of records with its summary as json, csv or pdf.
func (uc Controller) GetReport(c *web.Context) error {
	var month, format string
	if m, ok := c.GetQueryFunc(reflect.String, "month").(*string); ok {
		month = *m
	}
	format = "json"
	if f, ok := c.GetQueryFunc(reflect.String, "format").(*string); ok {
		format = *f
	}

	claims, err := claimsFrom(c)
	if err != nil {
		return c.RespondError(err)
	}

	report, err := uc.attendance.MonthlyReport(c.Ctx, claims, auth.GetTarget(c.Ctx), month)
	if err != nil {
		return c.RespondError(err)
	}

	var buf bytes.Buffer
	switch format {
	case "json":
		return c.Respond(map[string]interface{}{
			"data":   report,
			"status": true,
		}, http.StatusOK)
	case "csv":
		err = export.MonthlyCSV(&buf, report.Records)
	case "pdf":
		title := fmt.Sprintf("Monthly report %s, user %d", report.Month, report.UserID)
		summary := []string{
			fmt.Sprintf("Total days marked: %d", report.Summary.Total),
			fmt.Sprintf("Full days (in and out): %d", report.Summary.FullDays),
			fmt.Sprintf("Half days (only in): %d", report.Summary.HalfDays),
			fmt.Sprintf("Total worked hours: %s", report.Summary.TotalHours),
		}
		err = export.MonthlyPDF(&buf, title, summary, report.Records)
	default:
		return c.RespondError(web.NewRequestError(errors.Errorf("unsupported format %q", format), http.StatusBadRequest))
	}
	if err != nil {
		return c.RespondError(errors.Wrap(err, "exporting report"))
	}

	return attachment(c, fmt.Sprintf("monthly_report_%s_%d.%s", report.Month, report.UserID, format), buf.Bytes())
}

func listFilter(c *web.Context) entity.AttendanceFilter {
	var filter entity.AttendanceFilter

	if search, ok := c.GetQueryFunc(reflect.String, "search").(*string); ok {
		filter.Search = search
	}

	return filter
}

func claimsFrom(c *web.Context) (auth.Claims, error) {
	claims, ok := auth.GetClaims(c.Ctx)
	if !ok {
		return auth.Claims{}, web.NewRequestError(errors.New("missing credentials"), http.StatusUnauthorized)
	}
	return claims, nil
}

func attachment(c *web.Context, filename string, body []byte) error {
	contentType := "application/octet-stream"
	switch filepath.Ext(filename) {
	case ".csv":
		contentType = contentTypeCSV
	case ".xlsx":
		contentType = contentTypeXLSX
	case ".pdf":
		contentType = contentTypePDF
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, body)
	return nil
}
