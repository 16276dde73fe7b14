package storage

import (
	"fmt"

	"whiteboard/internal/domain"
)

// ApprovalStore reads and resolves agent actions queued in mcp_approvals by
// a standalone MCP process.
type ApprovalStore struct {
	db *DB
}

func NewApprovalStore(db *DB) *ApprovalStore {
	return &ApprovalStore{db: db}
}

func (s *ApprovalStore) Pending() ([]domain.PendingAction, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, tool, description, created_at, metadata FROM mcp_approvals WHERE status = 'pending' ORDER BY created_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	var out []domain.PendingAction
	for rows.Next() {
		var a domain.PendingAction
		if err := rows.Scan(&a.ID, &a.Tool, &a.Description, &a.CreatedAt, &a.Metadata); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *ApprovalStore) IsPending(id string) (bool, error) {
	var count int
	err := s.db.conn.QueryRow(
		`SELECT COUNT(*) FROM mcp_approvals WHERE id = ? AND status = 'pending'`, id,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Resolve marks a pending action approved or rejected. The requesting
// process deletes the row once it has read the answer.
func (s *ApprovalStore) Resolve(id string, approved bool) error {
	status := "rejected"
	if approved {
		status = "approved"
	}
	res, err := s.db.conn.Exec(
		`UPDATE mcp_approvals SET status = ? WHERE id = ? AND status = 'pending'`, status, id,
	)
	if err != nil {
		return fmt.Errorf("resolve approval: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("resolve approval %s: not pending", id)
	}
	return nil
}
