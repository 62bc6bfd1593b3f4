package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ecodesign-mdao/lca-core/pkg/models"
)

const exchangeColumns = `
	e.id, e.parent_id, e.target_id, e.amount, e.formula, e.kind,
	p.db_name, p.code, t.db_name, t.code`

const exchangeJoin = `
	FROM exchanges e
	JOIN nodes p ON p.id = e.parent_id
	JOIN nodes t ON t.id = e.target_id`

// UpsertExchange replaces the exchange between parent and target. At most one
// exchange exists per (parent, target) pair: any prior edge is deleted before
// the new one is inserted, so re-registration is idempotent. Returns the
// resolved parent node id.
func (s *Store) UpsertExchange(ctx context.Context, parent, target models.NodeKey, amount float64, formulaExpr string, kind models.ExchangeKind) (int64, error) {
	var parentID int64
	err := s.InTx(ctx, func(tx *Tx) error {
		var err error
		parentID, err = tx.UpsertExchange(ctx, parent, target, amount, formulaExpr, kind)
		return err
	})
	if err != nil {
		return 0, err
	}
	return parentID, nil
}

// UpsertExchange replaces the exchange between parent and target inside the
// surrounding transaction.
func (t *Tx) UpsertExchange(ctx context.Context, parent, target models.NodeKey, amount float64, formulaExpr string, kind models.ExchangeKind) (int64, error) {
	if !kind.Valid() {
		return 0, &ValidationError{Reason: fmt.Sprintf("unknown exchange kind %q", kind)}
	}
	if !validScalar(amount) {
		return 0, &ValidationError{Reason: "exchange amount must be a finite scalar"}
	}
	parentID, err := resolveNode(ctx, t.tx, parent)
	if err != nil {
		return 0, err
	}
	targetID, err := resolveNode(ctx, t.tx, target)
	if err != nil {
		return 0, err
	}
	if _, err := t.tx.ExecContext(ctx,
		`DELETE FROM exchanges WHERE parent_id = ? AND target_id = ?`, parentID, targetID); err != nil {
		return 0, fmt.Errorf("failed to delete prior exchange: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx,
		`INSERT INTO exchanges (parent_id, target_id, amount, formula, kind) VALUES (?, ?, ?, ?, ?)`,
		parentID, targetID, amount, formulaExpr, string(kind)); err != nil {
		return 0, fmt.Errorf("failed to insert exchange: %w", err)
	}
	return parentID, nil
}

// Exchange fetches the exchange between two node keys, if any.
func (s *Store) Exchange(ctx context.Context, parent, target models.NodeKey) (*models.Exchange, error) {
	parentID, err := s.Resolve(ctx, parent)
	if err != nil {
		return nil, err
	}
	targetID, err := s.Resolve(ctx, target)
	if err != nil {
		return nil, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT`+exchangeColumns+exchangeJoin+` WHERE e.parent_id = ? AND e.target_id = ?`,
		parentID, targetID)
	ex, err := scanExchange(row.Scan)
	if err == sql.ErrNoRows {
		return nil, &NotFoundError{Kind: "exchange", Ref: fmt.Sprintf("%s -> %s", parent, target)}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load exchange: %w", err)
	}
	return ex, nil
}

// ExchangesOf returns every exchange whose parent is the given node.
func (s *Store) ExchangesOf(ctx context.Context, parentID int64) ([]models.Exchange, error) {
	return queryExchanges(ctx, s.db,
		`SELECT`+exchangeColumns+exchangeJoin+` WHERE e.parent_id = ? ORDER BY e.id`, parentID)
}

// AddExchangesToGroup tags every exchange of parentID with group. Membership
// is additive and idempotent; repeated calls are no-ops beyond the first.
func (s *Store) AddExchangesToGroup(ctx context.Context, group string, parentID int64) error {
	return addExchangesToGroup(ctx, s.db, group, parentID)
}

// AddExchangesToGroup tags every exchange of parentID with group inside the
// surrounding transaction.
func (t *Tx) AddExchangesToGroup(ctx context.Context, group string, parentID int64) error {
	return addExchangesToGroup(ctx, t.tx, group, parentID)
}

func addExchangesToGroup(ctx context.Context, q querier, group string, parentID int64) error {
	if group == "" {
		return &ValidationError{Reason: "group name is required"}
	}
	_, err := q.ExecContext(ctx, `
		INSERT OR IGNORE INTO exchange_groups (exchange_id, group_name)
		SELECT id, ? FROM exchanges WHERE parent_id = ?`, group, parentID)
	if err != nil {
		return fmt.Errorf("failed to tag exchanges of node %d into group %s: %w", parentID, group, err)
	}
	return nil
}

// ExchangesInGroup returns every exchange tagged with group.
func (s *Store) ExchangesInGroup(ctx context.Context, group string) ([]models.Exchange, error) {
	return exchangesInGroup(ctx, s.db, group)
}

// ExchangesInGroup returns every exchange tagged with group as seen by the
// surrounding transaction.
func (t *Tx) ExchangesInGroup(ctx context.Context, group string) ([]models.Exchange, error) {
	return exchangesInGroup(ctx, t.tx, group)
}

func exchangesInGroup(ctx context.Context, q querier, group string) ([]models.Exchange, error) {
	return queryExchanges(ctx, q, `
		SELECT`+exchangeColumns+exchangeJoin+`
		JOIN exchange_groups g ON g.exchange_id = e.id
		WHERE g.group_name = ? ORDER BY e.id`, group)
}

// UpdateExchangeAmount writes a resolved formula result into an exchange.
// Only the recalculation engine calls this.
func (t *Tx) UpdateExchangeAmount(ctx context.Context, exchangeID int64, amount float64) error {
	if !validScalar(amount) {
		return &ValidationError{Reason: "exchange amount must be a finite scalar"}
	}
	res, err := t.tx.ExecContext(ctx, `UPDATE exchanges SET amount = ? WHERE id = ?`, amount, exchangeID)
	if err != nil {
		return fmt.Errorf("failed to update exchange %d: %w", exchangeID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return &NotFoundError{Kind: "exchange", Ref: fmt.Sprintf("id=%d", exchangeID)}
	}
	return nil
}

func queryExchanges(ctx context.Context, q querier, query string, args ...any) ([]models.Exchange, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exchanges: %w", err)
	}
	defer rows.Close()

	var exchanges []models.Exchange
	for rows.Next() {
		ex, err := scanExchange(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exchange: %w", err)
		}
		exchanges = append(exchanges, *ex)
	}
	return exchanges, rows.Err()
}

func scanExchange(scan func(dest ...any) error) (*models.Exchange, error) {
	var ex models.Exchange
	var kind string
	err := scan(&ex.ID, &ex.ParentID, &ex.TargetID, &ex.Amount, &ex.Formula, &kind,
		&ex.ParentKey.Database, &ex.ParentKey.Code, &ex.TargetKey.Database, &ex.TargetKey.Code)
	if err != nil {
		return nil, err
	}
	ex.Kind = models.ExchangeKind(kind)
	return &ex, nil
}
