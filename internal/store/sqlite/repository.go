// Package sqlite is the persistent record store backend.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

var _ store.Store = (*Repository)(nil)

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

func nullJSON(m json.RawMessage) sql.NullString {
	return sql.NullString{String: string(m), Valid: len(m) > 0}
}

// --- milestones ---

const milestoneColumns = `id, user_id, title, description, target_amount, current_amount,
	start_date, target_date, category, status, salary_snapshot, model_snapshot, plan,
	celebrations_half_shown, celebrations_done_shown, created_at, updated_at`

func scanMilestone(row interface{ Scan(...any) error }) (core.Milestone, error) {
	var (
		m                           core.Milestone
		startDate, targetDate       sql.NullTime
		salarySnap, modelSnap, plan sql.NullString
	)
	err := row.Scan(&m.ID, &m.UserID, &m.Title, &m.Description, &m.TargetAmount,
		&m.CurrentAmount, &startDate, &targetDate, &m.Category, &m.Status,
		&salarySnap, &modelSnap, &plan,
		&m.CelebrationsHalfShown, &m.CelebrationsDoneShown, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return core.Milestone{}, err
	}
	if startDate.Valid {
		m.StartDate = startDate.Time
	}
	if targetDate.Valid {
		m.TargetDate = targetDate.Time
	}
	if salarySnap.Valid {
		m.SalarySnapshot = json.RawMessage(salarySnap.String)
	}
	if modelSnap.Valid {
		m.ModelSnapshot = json.RawMessage(modelSnap.String)
	}
	if plan.Valid {
		m.Plan = json.RawMessage(plan.String)
	}
	return m, nil
}

func (r *Repository) ListMilestones(ctx context.Context, userID string) ([]core.Milestone, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+milestoneColumns+` FROM milestones WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list milestones: %w", err)
	}
	defer rows.Close()

	var out []core.Milestone
	for rows.Next() {
		m, err := scanMilestone(rows)
		if err != nil {
			return nil, fmt.Errorf("scan milestone: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) GetMilestone(ctx context.Context, userID, id string) (core.Milestone, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+milestoneColumns+` FROM milestones WHERE id = ? AND user_id = ?`,
		id, userID)
	m, err := scanMilestone(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Milestone{}, core.ErrNotFound
	}
	if err != nil {
		return core.Milestone{}, fmt.Errorf("get milestone: %w", err)
	}
	return m, nil
}

func (r *Repository) CreateMilestone(ctx context.Context, m core.Milestone) (core.Milestone, error) {
	m.ID = uuid.NewString()
	m.CreatedAt = time.Now().UTC()
	m.UpdatedAt = m.CreatedAt

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO milestones (`+milestoneColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.Title, m.Description, m.TargetAmount, m.CurrentAmount,
		nullTime(m.StartDate), nullTime(m.TargetDate), m.Category, m.Status,
		nullJSON(m.SalarySnapshot), nullJSON(m.ModelSnapshot), nullJSON(m.Plan),
		m.CelebrationsHalfShown, m.CelebrationsDoneShown, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return core.Milestone{}, fmt.Errorf("create milestone: %w", err)
	}

	slog.InfoContext(ctx, "Milestone created", "id", m.ID, "title", m.Title)
	return m, nil
}

func (r *Repository) UpdateMilestone(ctx context.Context, m core.Milestone) (core.Milestone, error) {
	m.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx,
		`UPDATE milestones SET title = ?, description = ?, target_amount = ?,
		 start_date = ?, target_date = ?, category = ?, status = ?,
		 celebrations_half_shown = ?, celebrations_done_shown = ?, updated_at = ?
		 WHERE id = ? AND user_id = ?`,
		m.Title, m.Description, m.TargetAmount,
		nullTime(m.StartDate), nullTime(m.TargetDate), m.Category, m.Status,
		m.CelebrationsHalfShown, m.CelebrationsDoneShown, m.UpdatedAt,
		m.ID, m.UserID)
	if err != nil {
		return core.Milestone{}, fmt.Errorf("update milestone: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Milestone{}, core.ErrNotFound
	}
	return r.GetMilestone(ctx, m.UserID, m.ID)
}

func (r *Repository) DeleteMilestone(ctx context.Context, userID, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin milestone delete: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM milestones WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete milestone: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	// Contributions belong to the milestone; expenses keep their dangling
	// reference and aggregation treats it as absent.
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM contributions WHERE milestone_id = ?`, id); err != nil {
		return fmt.Errorf("delete milestone contributions: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit milestone delete: %w", err)
	}
	slog.InfoContext(ctx, "Milestone deleted", "id", id)
	return nil
}

func (r *Repository) SetMilestoneCurrentAmount(ctx context.Context, id string, amount float64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE milestones SET current_amount = ?, updated_at = ? WHERE id = ?`,
		amount, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set milestone current amount: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// --- expenses ---

const expenseColumns = `id, user_id, amount, description, date, category, milestone_id, created_at`

func scanExpense(row interface{ Scan(...any) error }) (core.Expense, error) {
	var e core.Expense
	err := row.Scan(&e.ID, &e.UserID, &e.Amount, &e.Description, &e.Date,
		&e.Category, &e.MilestoneID, &e.CreatedAt)
	return e, err
}

func (r *Repository) ListExpenses(ctx context.Context, f store.ExpenseFilter) ([]core.Expense, error) {
	query := `SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = ?`
	args := []any{f.UserID}
	var conds []string
	if f.MilestoneID != "" {
		conds = append(conds, `milestone_id = ?`)
		args = append(args, f.MilestoneID)
	}
	if f.Category != "" {
		conds = append(conds, `category = ?`)
		args = append(args, f.Category)
	}
	if !f.From.IsZero() {
		conds = append(conds, `date >= ?`)
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		conds = append(conds, `date <= ?`)
		args = append(args, f.To)
	}
	if len(conds) > 0 {
		query += ` AND ` + strings.Join(conds, ` AND `)
	}
	query += ` ORDER BY date DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) GetExpense(ctx context.Context, userID, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE id = ? AND user_id = ?`,
		id, userID)
	e, err := scanExpense(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, core.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *Repository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	e.ID = uuid.NewString()
	e.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (`+expenseColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.UserID, e.Amount, e.Description, e.Date, e.Category, e.MilestoneID, e.CreatedAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}

	slog.InfoContext(ctx, "Expense created", "id", e.ID, "amount", e.Amount, "category", e.Category)
	return e, nil
}

func (r *Repository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET amount = ?, description = ?, date = ?, category = ?, milestone_id = ?
		 WHERE id = ? AND user_id = ?`,
		e.Amount, e.Description, e.Date, e.Category, e.MilestoneID, e.ID, e.UserID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.Expense{}, core.ErrNotFound
	}
	return r.GetExpense(ctx, e.UserID, e.ID)
}

func (r *Repository) DeleteExpense(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM expenses WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

// --- contributions ---

func (r *Repository) ListContributions(ctx context.Context, milestoneID string) ([]core.Contribution, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, milestone_id, user_id, month_key, amount, created_at, updated_at
		 FROM contributions WHERE milestone_id = ? ORDER BY month_key DESC`,
		milestoneID)
	if err != nil {
		return nil, fmt.Errorf("list contributions: %w", err)
	}
	defer rows.Close()

	var out []core.Contribution
	for rows.Next() {
		var c core.Contribution
		if err := rows.Scan(&c.ID, &c.MilestoneID, &c.UserID, &c.MonthKey,
			&c.Amount, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan contribution: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) UpsertContribution(ctx context.Context, c core.Contribution) (core.Contribution, error) {
	now := time.Now().UTC()
	id := uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO contributions (id, milestone_id, user_id, month_key, amount, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (milestone_id, month_key)
		 DO UPDATE SET amount = excluded.amount, updated_at = excluded.updated_at`,
		id, c.MilestoneID, c.UserID, c.MonthKey, c.Amount, now, now)
	if err != nil {
		return core.Contribution{}, fmt.Errorf("upsert contribution: %w", err)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT id, milestone_id, user_id, month_key, amount, created_at, updated_at
		 FROM contributions WHERE milestone_id = ? AND month_key = ?`,
		c.MilestoneID, c.MonthKey)
	var out core.Contribution
	if err := row.Scan(&out.ID, &out.MilestoneID, &out.UserID, &out.MonthKey,
		&out.Amount, &out.CreatedAt, &out.UpdatedAt); err != nil {
		return core.Contribution{}, fmt.Errorf("read back contribution: %w", err)
	}
	return out, nil
}

// --- mood entries ---

func (r *Repository) ListMoodEntries(ctx context.Context, userID string, since time.Time) ([]core.MoodEntry, error) {
	query := `SELECT user_id, date, score, emotional_insight FROM mood_entries WHERE user_id = ?`
	args := []any{userID}
	if !since.IsZero() {
		query += ` AND date >= ?`
		args = append(args, since)
	}
	query += ` ORDER BY date ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list mood entries: %w", err)
	}
	defer rows.Close()

	var out []core.MoodEntry
	for rows.Next() {
		var e core.MoodEntry
		if err := rows.Scan(&e.UserID, &e.Date, &e.Score, &e.EmotionalInsight); err != nil {
			return nil, fmt.Errorf("scan mood entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) UpsertMoodEntry(ctx context.Context, e core.MoodEntry) (core.MoodEntry, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO mood_entries (user_id, date, score, emotional_insight)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (user_id, date)
		 DO UPDATE SET score = excluded.score, emotional_insight = excluded.emotional_insight`,
		e.UserID, e.Date, e.Score, e.EmotionalInsight)
	if err != nil {
		return core.MoodEntry{}, fmt.Errorf("upsert mood entry: %w", err)
	}
	return e, nil
}

// --- salaries ---

const salaryColumns = `id, user_id, month, amount, model_id, created_at, updated_at`

func scanSalary(row interface{ Scan(...any) error }) (core.Salary, error) {
	var s core.Salary
	err := row.Scan(&s.ID, &s.UserID, &s.Month, &s.Amount, &s.ModelID, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

func (r *Repository) ListSalaries(ctx context.Context, userID string) ([]core.Salary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+salaryColumns+` FROM salaries WHERE user_id = ? ORDER BY month DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list salaries: %w", err)
	}
	defer rows.Close()

	var out []core.Salary
	for rows.Next() {
		s, err := scanSalary(rows)
		if err != nil {
			return nil, fmt.Errorf("scan salary: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) LatestSalary(ctx context.Context, userID string) (core.Salary, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+salaryColumns+` FROM salaries WHERE user_id = ? ORDER BY month DESC LIMIT 1`,
		userID)
	s, err := scanSalary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Salary{}, core.ErrNotFound
	}
	if err != nil {
		return core.Salary{}, fmt.Errorf("latest salary: %w", err)
	}
	return s, nil
}

func (r *Repository) UpsertSalary(ctx context.Context, s core.Salary) (core.Salary, error) {
	now := time.Now().UTC()
	id := uuid.NewString()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO salaries (`+salaryColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id, month)
		 DO UPDATE SET amount = excluded.amount, model_id = excluded.model_id, updated_at = excluded.updated_at`,
		id, s.UserID, s.Month, s.Amount, s.ModelID, now, now)
	if err != nil {
		return core.Salary{}, fmt.Errorf("upsert salary: %w", err)
	}

	row := r.db.QueryRowContext(ctx,
		`SELECT `+salaryColumns+` FROM salaries WHERE user_id = ? AND month = ?`,
		s.UserID, s.Month)
	out, err := scanSalary(row)
	if err != nil {
		return core.Salary{}, fmt.Errorf("read back salary: %w", err)
	}
	return out, nil
}

func (r *Repository) GetSalaryInfo(ctx context.Context, userID string) (core.SalaryInfo, error) {
	var info core.SalaryInfo
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id, monthly_amount, updated_at FROM salary_info WHERE user_id = ?`,
		userID).Scan(&info.UserID, &info.MonthlyAmount, &info.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SalaryInfo{}, core.ErrNotFound
	}
	if err != nil {
		return core.SalaryInfo{}, fmt.Errorf("get salary info: %w", err)
	}
	return info, nil
}

func (r *Repository) UpsertSalaryInfo(ctx context.Context, info core.SalaryInfo) (core.SalaryInfo, error) {
	info.UpdatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO salary_info (user_id, monthly_amount, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_id)
		 DO UPDATE SET monthly_amount = excluded.monthly_amount, updated_at = excluded.updated_at`,
		info.UserID, info.MonthlyAmount, info.UpdatedAt)
	if err != nil {
		return core.SalaryInfo{}, fmt.Errorf("upsert salary info: %w", err)
	}
	return info, nil
}

// --- extra savings ---

func (r *Repository) ListExtraSavings(ctx context.Context, userID string) ([]core.ExtraSaving, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, amount, note, created_at FROM extra_savings
		 WHERE user_id = ? ORDER BY created_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list extra savings: %w", err)
	}
	defer rows.Close()

	var out []core.ExtraSaving
	for rows.Next() {
		var s core.ExtraSaving
		if err := rows.Scan(&s.ID, &s.UserID, &s.Amount, &s.Note, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan extra saving: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) CreateExtraSaving(ctx context.Context, s core.ExtraSaving) (core.ExtraSaving, error) {
	s.ID = uuid.NewString()
	s.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO extra_savings (id, user_id, amount, note, created_at) VALUES (?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Amount, s.Note, s.CreatedAt)
	if err != nil {
		return core.ExtraSaving{}, fmt.Errorf("create extra saving: %w", err)
	}
	return s, nil
}

func (r *Repository) DeleteExtraSaving(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM extra_savings WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete extra saving: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}
