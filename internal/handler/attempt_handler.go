package handler

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yourusername/exam-api/internal/domain/entity"
	"github.com/yourusername/exam-api/internal/handler/dto"
	"github.com/yourusername/exam-api/internal/service"
)

// AttemptSubmitter оценивает отправленные ответы
type AttemptSubmitter interface {
	Submit(ctx context.Context, identity entity.Identity, in service.SubmitInput) (*service.ExamResult, error)
}

// AttemptReporter выдает все попытки по экзамену для отчета
type AttemptReporter interface {
	ExamAttemptsReport(ctx context.Context, companyID, examID uint) (*entity.Exam, []entity.ExamAttempt, error)
}

// AttemptHandler обрабатывает сдачу попыток и экспорт результатов
type AttemptHandler struct {
	submitter AttemptSubmitter
	reporter  AttemptReporter
}

// NewAttemptHandler создает новый обработчик попыток
func NewAttemptHandler(submitter AttemptSubmitter, reporter AttemptReporter) *AttemptHandler {
	return &AttemptHandler{
		submitter: submitter,
		reporter:  reporter,
	}
}

// SubmitAttempt оценивает ответы и возвращает агрегированный результат
func (h *AttemptHandler) SubmitAttempt(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req dto.SubmitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.submitter.Submit(c.Request.Context(), identity, req.ToInput())
	if err != nil {
		handleError(c, "AttemptHandler", err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

var attemptReportHeaders = []string{"Attempt ID", "Employee ID", "Attempt #", "Correct", "Total", "Percentage", "Passed", "Duration (sec)", "Submitted At"}

// ExportExamAttempts экспортирует попытки по экзамену в CSV или Excel
// GET /api/v1/exams/:id/attempts/export?format=csv|xlsx
func (h *AttemptHandler) ExportExamAttempts(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	examID, ok := requireParam(c, "examID")
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be csv or xlsx", "error_type": "validation"})
		return
	}

	exam, attempts, err := h.reporter.ExamAttemptsReport(c.Request.Context(), identity.CompanyID, examID)
	if err != nil {
		handleError(c, "AttemptHandler", err)
		return
	}

	filename := fmt.Sprintf("exam_%d_attempts_%s", exam.ID, time.Now().Format("2006-01-02"))

	switch format {
	case "xlsx":
		h.exportXLSX(c, attempts, filename)
	default:
		h.exportCSV(c, attempts, filename)
	}
}

func attemptReportRow(a entity.ExamAttempt) []string {
	passed := "No"
	if a.Passed {
		passed = "Yes"
	}
	return []string{
		strconv.FormatUint(uint64(a.ID), 10),
		strconv.FormatUint(uint64(a.EmployeeID), 10),
		strconv.Itoa(a.AttemptNumber),
		strconv.Itoa(a.CorrectAnswers),
		strconv.Itoa(a.TotalQuestions),
		strconv.Itoa(a.Percentage),
		passed,
		strconv.Itoa(a.DurationSeconds),
		a.SubmittedAt.UTC().Format(time.RFC3339),
	}
}

// exportCSV экспортирует попытки в CSV с правильным экранированием спецсимволов
func (h *AttemptHandler) exportCSV(c *gin.Context, attempts []entity.ExamAttempt, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(attemptReportHeaders)
	for _, a := range attempts {
		row := attemptReportRow(a)
		for i := range row {
			row[i] = sanitizeForExcel(row[i])
		}
		writer.Write(row)
	}
}

// exportXLSX экспортирует попытки в Excel с использованием StreamWriter
func (h *AttemptHandler) exportXLSX(c *gin.Context, attempts []entity.ExamAttempt, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Attempts"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[AttemptHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	headers := make([]interface{}, 0, len(attemptReportHeaders))
	for _, title := range attemptReportHeaders {
		headers = append(headers, title)
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[AttemptHandler] Ошибка записи заголовков: %v", err)
	}

	for i, a := range attempts {
		rowNum := i + 2 // 1 строка - заголовки
		passed := "No"
		if a.Passed {
			passed = "Yes"
		}
		row := []interface{}{
			a.ID, a.EmployeeID, a.AttemptNumber, a.CorrectAnswers, a.TotalQuestions,
			a.Percentage, passed, a.DurationSeconds,
			sanitizeForExcel(a.SubmittedAt.UTC().Format(time.RFC3339)),
		}
		if err := sw.SetRow(fmt.Sprintf("A%d", rowNum), row); err != nil {
			log.Printf("[AttemptHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[AttemptHandler] Ошибка при Flush: %v", err)
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[AttemptHandler] Ошибка записи Excel в response: %v", err)
	}
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r':
		return "'" + s
	}
	return s
}
