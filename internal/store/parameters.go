package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ecodesign-mdao/lca-core/internal/formula"
	"github.com/ecodesign-mdao/lca-core/pkg/models"
)

// UpsertParameter creates or overwrites a parameter by name. Names are
// globally unique; re-upserting an existing name replaces amount and metadata
// rather than duplicating the row.
func (s *Store) UpsertParameter(ctx context.Context, p models.Parameter) error {
	return upsertParameter(ctx, s.db, p)
}

// UpsertParameter creates or overwrites a parameter inside the surrounding
// transaction.
func (t *Tx) UpsertParameter(ctx context.Context, p models.Parameter) error {
	return upsertParameter(ctx, t.tx, p)
}

func upsertParameter(ctx context.Context, q querier, p models.Parameter) error {
	if !formula.ValidName(p.Name) {
		return &ValidationError{Reason: fmt.Sprintf("parameter name %q is not a valid identifier", p.Name)}
	}
	if !validScalar(p.Amount) {
		return &ValidationError{Reason: fmt.Sprintf("parameter %s: amount must be a finite scalar", p.Name)}
	}
	_, err := q.ExecContext(ctx, `
		INSERT INTO parameters (name, amount, source_variable, source_units, target_units)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			amount=excluded.amount,
			source_variable=excluded.source_variable,
			source_units=excluded.source_units,
			target_units=excluded.target_units`,
		p.Name, p.Amount, p.SourceVariable, p.SourceUnits, p.TargetUnits)
	if err != nil {
		return fmt.Errorf("failed to upsert parameter %s: %w", p.Name, err)
	}
	return nil
}

// Parameter fetches a parameter by name.
func (s *Store) Parameter(ctx context.Context, name string) (*models.Parameter, error) {
	var p models.Parameter
	err := s.db.QueryRowContext(ctx, `
		SELECT name, amount, source_variable, source_units, target_units
		FROM parameters WHERE name = ?`, name).
		Scan(&p.Name, &p.Amount, &p.SourceVariable, &p.SourceUnits, &p.TargetUnits)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "parameter", Ref: name}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load parameter %s: %w", name, err)
	}
	return &p, nil
}

// Parameters returns every parameter ordered by name.
func (s *Store) Parameters(ctx context.Context) ([]models.Parameter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, amount, source_variable, source_units, target_units
		FROM parameters ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query parameters: %w", err)
	}
	defer rows.Close()

	var params []models.Parameter
	for rows.Next() {
		var p models.Parameter
		if err := rows.Scan(&p.Name, &p.Amount, &p.SourceVariable, &p.SourceUnits, &p.TargetUnits); err != nil {
			return nil, fmt.Errorf("failed to scan parameter: %w", err)
		}
		params = append(params, p)
	}
	return params, rows.Err()
}

// ParametersWithSource returns every parameter that is fed by a simulation
// output, i.e. has a non-empty source variable.
func (s *Store) ParametersWithSource(ctx context.Context) ([]models.Parameter, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, amount, source_variable, source_units, target_units
		FROM parameters WHERE source_variable != '' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sourced parameters: %w", err)
	}
	defer rows.Close()

	var params []models.Parameter
	for rows.Next() {
		var p models.Parameter
		if err := rows.Scan(&p.Name, &p.Amount, &p.SourceVariable, &p.SourceUnits, &p.TargetUnits); err != nil {
			return nil, fmt.Errorf("failed to scan parameter: %w", err)
		}
		params = append(params, p)
	}
	return params, rows.Err()
}

// BulkUpdateParameters applies all updates atomically; if any single update
// is invalid the whole batch is rejected and the store keeps its pre-call
// state.
func (s *Store) BulkUpdateParameters(ctx context.Context, updates map[string]float64) error {
	return s.InTx(ctx, func(tx *Tx) error {
		return tx.BulkUpdateParameters(ctx, updates)
	})
}

// BulkUpdateParameters applies all updates inside the surrounding
// transaction. An unknown name or non-scalar value fails the whole batch.
func (t *Tx) BulkUpdateParameters(ctx context.Context, updates map[string]float64) error {
	for name, value := range updates {
		if !validScalar(value) {
			return &ValidationError{Reason: fmt.Sprintf("parameter %s: amount must be a finite scalar", name)}
		}
		res, err := t.tx.ExecContext(ctx, `UPDATE parameters SET amount = ? WHERE name = ?`, value, name)
		if err != nil {
			return fmt.Errorf("failed to update parameter %s: %w", name, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read update result for %s: %w", name, err)
		}
		if affected == 0 {
			return &NotFoundError{Kind: "parameter", Ref: name}
		}
	}
	return nil
}

// ParameterSnapshot returns a {name: amount} view of all parameters.
func (s *Store) ParameterSnapshot(ctx context.Context) (map[string]float64, error) {
	return parameterSnapshot(ctx, s.db)
}

// ParameterSnapshot returns a {name: amount} view of all parameters as seen
// by the surrounding transaction.
func (t *Tx) ParameterSnapshot(ctx context.Context) (map[string]float64, error) {
	return parameterSnapshot(ctx, t.tx)
}

func parameterSnapshot(ctx context.Context, q querier) (map[string]float64, error) {
	rows, err := q.QueryContext(ctx, `SELECT name, amount FROM parameters`)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot parameters: %w", err)
	}
	defer rows.Close()

	snapshot := make(map[string]float64)
	for rows.Next() {
		var name string
		var amount float64
		if err := rows.Scan(&name, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan parameter: %w", err)
		}
		snapshot[name] = amount
	}
	return snapshot, rows.Err()
}

// RenameParameter safely renames a parameter and rewrites the single-name
// exchange formulas that reference it. Compound formulas written by external
// callers are not rewritten; the registrar only ever writes single names.
func (s *Store) RenameParameter(ctx context.Context, oldName, newName string) error {
	if oldName == newName {
		return nil
	}
	if !formula.ValidName(newName) {
		return &ValidationError{Reason: fmt.Sprintf("parameter name %q is not a valid identifier", newName)}
	}
	return s.InTx(ctx, func(tx *Tx) error {
		var exists int
		if err := tx.tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM parameters WHERE name = ?`, newName).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check name %s: %w", newName, err)
		}
		if exists > 0 {
			return &ValidationError{Reason: fmt.Sprintf("parameter %s already exists", newName)}
		}
		res, err := tx.tx.ExecContext(ctx,
			`UPDATE parameters SET name = ? WHERE name = ?`, newName, oldName)
		if err != nil {
			return fmt.Errorf("failed to rename parameter %s: %w", oldName, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			return &NotFoundError{Kind: "parameter", Ref: oldName}
		}
		if _, err := tx.tx.ExecContext(ctx,
			`UPDATE exchanges SET formula = ? WHERE formula = ?`, newName, oldName); err != nil {
			return fmt.Errorf("failed to rewrite formulas for %s: %w", oldName, err)
		}
		return nil
	})
}
