package api

import (
	"net/http"

	"bitbucket.org/mmdatafocus/foodpos/reports"
	"github.com/gin-gonic/gin"
)

const (
	csvContentType  = "text/csv; charset=utf-8"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

func (h *handler) daily() reports.DailyReport {
	return reports.BuildDaily(h.terminal.Sales(), h.now())
}

func (h *handler) dailyReport(c *gin.Context) {
	c.JSON(http.StatusOK, h.daily())
}

func (h *handler) dailyCSV(c *gin.Context) {
	c.Header("Content-Disposition", "attachment; filename=bilan_du_jour.csv")
	c.Data(http.StatusOK, csvContentType, []byte(reports.DailyCSV(h.daily())))
}

func (h *handler) dailyXLSX(c *gin.Context) {
	c.Header("Content-Type", xlsxContentType)
	c.Header("Content-Disposition", "attachment; filename=bilan_du_jour.xlsx")
	c.Status(http.StatusOK)
	if err := reports.WriteDailyXLSX(c.Writer, h.daily()); err != nil {
		_ = c.Error(err)
	}
}

func (h *handler) salesCSV(c *gin.Context) {
	c.Header("Content-Disposition", "attachment; filename=ventes.csv")
	c.Data(http.StatusOK, csvContentType, []byte(reports.SalesCSV(h.terminal.Sales())))
}
