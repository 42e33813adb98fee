package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/domain/employee"
	"github.com/Mgabr90/mansoura-attendance-system-sub000/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const employeeColumns = `
	id, chat_id, full_name, phone_number, department, position,
	is_active, is_admin, registered_at, updated_at, deactivated_at`

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	err := row.Scan(
		&e.ID, &e.ChatID, &e.FullName, &e.PhoneNumber, &e.Department, &e.Position,
		&e.IsActive, &e.IsAdmin, &e.RegisteredAt, &e.UpdatedAt, &e.DeactivatedAt,
	)
	return e, err
}

func (r *employeeRepository) getOne(ctx context.Context, where string, arg interface{}) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEmployee(q.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE `+where, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	if _, err := uuid.Parse(id); err != nil {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return r.getOne(ctx, "id = $1", id)
}

// GetByChatID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByChatID(ctx context.Context, chatID string) (employee.Employee, error) {
	return r.getOne(ctx, "chat_id = $1", chatID)
}

// Upsert implements employee.EmployeeRepository.
func (r *employeeRepository) Upsert(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	query := `
		INSERT INTO employees (id, chat_id, full_name, phone_number, department, position, is_active, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (chat_id) DO UPDATE SET
			full_name = EXCLUDED.full_name,
			phone_number = EXCLUDED.phone_number,
			department = COALESCE(EXCLUDED.department, employees.department),
			position = COALESCE(EXCLUDED.position, employees.position),
			updated_at = NOW()
		RETURNING ` + employeeColumns

	saved, err := scanEmployee(q.QueryRow(ctx, query,
		e.ID, e.ChatID, e.FullName, e.PhoneNumber, e.Department, e.Position, e.IsActive, e.IsAdmin,
	))
	if err != nil {
		return employee.Employee{}, fmt.Errorf("failed to upsert employee: %w", err)
	}
	return saved, nil
}

func filterClause(filter employee.EmployeeFilter) (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	if filter.ActiveOnly {
		conds = append(conds, "is_active = TRUE")
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		conds = append(conds, fmt.Sprintf("department = $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// List implements employee.EmployeeRepository.
func (r *employeeRepository) List(ctx context.Context, filter employee.EmployeeFilter) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	where, args := filterClause(filter)
	rows, err := q.Query(ctx, `SELECT `+employeeColumns+` FROM employees`+where+` ORDER BY full_name`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating employees: %w", err)
	}
	return employees, nil
}

// Count implements employee.EmployeeRepository.
func (r *employeeRepository) Count(ctx context.Context, filter employee.EmployeeFilter) (int, error) {
	q := GetQuerier(ctx, r.db)

	where, args := filterClause(filter)
	var count int
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM employees`+where, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count employees: %w", err)
	}
	return count, nil
}

// Deactivate implements employee.EmployeeRepository.
func (r *employeeRepository) Deactivate(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := uuid.Parse(id); err != nil {
		return employee.ErrEmployeeNotFound
	}

	var wasActive bool
	err := q.QueryRow(ctx, `
		UPDATE employees AS e SET
			is_active = FALSE,
			deactivated_at = COALESCE(e.deactivated_at, NOW()),
			updated_at = NOW()
		FROM (SELECT id, is_active FROM employees WHERE id = $1 FOR UPDATE) AS prev
		WHERE e.id = prev.id
		RETURNING prev.is_active`, id,
	).Scan(&wasActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.ErrEmployeeNotFound
		}
		return fmt.Errorf("failed to deactivate employee: %w", err)
	}
	if !wasActive {
		return employee.ErrEmployeeAlreadyInactive
	}
	return nil
}
