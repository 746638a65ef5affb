package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"voiceguide-backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) Orders(c echo.Context) error {
	report, err := h.reportService.Orders(c.Request().Context(), c.QueryParam("from_date"), c.QueryParam("to_date"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, report)
}

func (h *ReportHandler) Order(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	item, err := h.reportService.Order(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, item)
}

func (h *ReportHandler) Stats(c echo.Context) error {
	stats, err := h.reportService.Stats(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *ReportHandler) ExportOrders(c echo.Context) error {
	buf, err := h.reportService.ExportOrders(c.Request().Context(), c.QueryParam("from_date"), c.QueryParam("to_date"))
	if err != nil {
		return err
	}

	filename := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}
