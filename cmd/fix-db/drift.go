package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// examDrift - экзамен, у которого total_questions расходится с числом строк exam_questions
type examDrift struct {
	ExamID         int64
	CompanyID      int64
	TotalQuestions int
	RowCount       int
}

// assignmentDrift - назначение, у которого attempts_used расходится с числом попыток
type assignmentDrift struct {
	AssignmentID int64
	CompanyID    int64
	AttemptsUsed int
	AttemptCount int
	MaxAttempts  int
}

type driftReport struct {
	Exams       []examDrift
	Assignments []assignmentDrift
}

const examDriftQuery = `
SELECT e.id, e.company_id, e.total_questions, COUNT(eq.id)
FROM exams e
LEFT JOIN exam_questions eq ON eq.exam_id = e.id
GROUP BY e.id, e.company_id, e.total_questions
HAVING e.total_questions <> COUNT(eq.id)
ORDER BY e.id`

const assignmentDriftQuery = `
SELECT a.id, a.company_id, a.attempts_used, COUNT(t.id), a.max_attempts
FROM exam_assignments a
LEFT JOIN exam_attempts t ON t.assignment_id = a.id
GROUP BY a.id, a.company_id, a.attempts_used, a.max_attempts
HAVING a.attempts_used <> COUNT(t.id)
ORDER BY a.id`

// Счетчик не превышает max_attempts: иначе нарушится CHECK и бюджет уйдет в минус
const fixAttemptsQuery = `
UPDATE exam_assignments a
SET attempts_used = LEAST(c.cnt, a.max_attempts), updated_at = NOW()
FROM (
    SELECT a2.id, COUNT(t.id) AS cnt
    FROM exam_assignments a2
    LEFT JOIN exam_attempts t ON t.assignment_id = a2.id
    GROUP BY a2.id
) c
WHERE c.id = a.id AND a.attempts_used <> LEAST(c.cnt, a.max_attempts)`

func loadDrift(ctx context.Context, db *sql.DB) (*driftReport, error) {
	report := &driftReport{}

	rows, err := db.QueryContext(ctx, examDriftQuery)
	if err != nil {
		return nil, fmt.Errorf("exam drift query: %w", err)
	}
	for rows.Next() {
		var d examDrift
		if err := rows.Scan(&d.ExamID, &d.CompanyID, &d.TotalQuestions, &d.RowCount); err != nil {
			rows.Close()
			return nil, err
		}
		report.Exams = append(report.Exams, d)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	rows, err = db.QueryContext(ctx, assignmentDriftQuery)
	if err != nil {
		return nil, fmt.Errorf("assignment drift query: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var d assignmentDrift
		if err := rows.Scan(&d.AssignmentID, &d.CompanyID, &d.AttemptsUsed, &d.AttemptCount, &d.MaxAttempts); err != nil {
			return nil, err
		}
		report.Assignments = append(report.Assignments, d)
	}
	return report, rows.Err()
}

// fixAttemptDrift выравнивает счетчики попыток в одной транзакции
func fixAttemptDrift(ctx context.Context, db *sql.DB) (int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, fixAttemptsQuery)
	if err != nil {
		return 0, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return affected, nil
}

// renderDrift печатает отчет таблицами. Расхождения экзаменов только показываются:
// total_questions считается источником истины.
func renderDrift(w io.Writer, report *driftReport) {
	if len(report.Exams) == 0 {
		fmt.Fprintln(w, color.GreenString("Exams: no question-count drift"))
	} else {
		fmt.Fprintln(w, color.YellowString("Exams with question-count drift (report only)"))
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Exam ID", "Company ID", "total_questions", "exam_questions rows"})
		for _, d := range report.Exams {
			table.Append([]string{
				strconv.FormatInt(d.ExamID, 10),
				strconv.FormatInt(d.CompanyID, 10),
				strconv.Itoa(d.TotalQuestions),
				strconv.Itoa(d.RowCount),
			})
		}
		table.Render()
	}

	if len(report.Assignments) == 0 {
		fmt.Fprintln(w, color.GreenString("Assignments: no attempt-counter drift"))
		return
	}
	fmt.Fprintln(w, color.YellowString("Assignments with attempt-counter drift"))
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Assignment ID", "Company ID", "attempts_used", "attempts", "max_attempts"})
	for _, d := range report.Assignments {
		table.Append([]string{
			strconv.FormatInt(d.AssignmentID, 10),
			strconv.FormatInt(d.CompanyID, 10),
			strconv.Itoa(d.AttemptsUsed),
			strconv.Itoa(d.AttemptCount),
			strconv.Itoa(d.MaxAttempts),
		})
	}
	table.Render()
}
