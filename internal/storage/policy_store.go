package storage

import (
	"database/sql"
	"fmt"

	"prio/internal/engine"
	"prio/internal/errors"
	"prio/internal/policy"
)

// PolicyStore reads and writes prioritization policies.
type PolicyStore struct {
	db *DB
}

// NewPolicyStore creates a policy store over an open database.
func NewPolicyStore(db *DB) *PolicyStore {
	return &PolicyStore{db: db}
}

const policyColumns = `id, name, description, risk_weight, criticite_weight,
	effort_weight, coverage_weight, recency_weight, default_budget, is_default, is_active`

// ListActive returns active policies ordered default-first, then by name.
func (s *PolicyStore) ListActive() ([]policy.Policy, error) {
	rows, err := s.db.Query(fmt.Sprintf(`
		SELECT %s FROM prioritization_policies
		WHERE is_active = 1
		ORDER BY is_default DESC, name
	`, policyColumns))
	if err != nil {
		return nil, errors.New(errors.StoreUnavailable, "failed to list policies", err)
	}
	defer rows.Close()

	var policies []policy.Policy
	for rows.Next() {
		p, err := scanPolicy(rows)
		if err != nil {
			return nil, err
		}
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

// GetByName returns the active policy with the given name.
func (s *PolicyStore) GetByName(name string) (*policy.Policy, error) {
	row := s.db.QueryRow(fmt.Sprintf(`
		SELECT %s FROM prioritization_policies
		WHERE name = ? AND is_active = 1
	`, policyColumns), name)

	p, err := scanPolicy(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.PolicyNotFound, "no policy named "+name, nil)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetDefault returns the default active policy.
func (s *PolicyStore) GetDefault() (*policy.Policy, error) {
	row := s.db.QueryRow(fmt.Sprintf(`
		SELECT %s FROM prioritization_policies
		WHERE is_default = 1 AND is_active = 1
		LIMIT 1
	`, policyColumns))

	p, err := scanPolicy(row)
	if err == sql.ErrNoRows {
		return nil, errors.New(errors.PolicyNotFound, "no default policy configured", nil)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Upsert inserts or replaces a policy by name. Used to apply POLICIES.toml
// overrides on top of the seeded presets.
func (s *PolicyStore) Upsert(p policy.Policy) error {
	if err := p.Validate(); err != nil {
		return err
	}

	return s.db.WithTx(func(tx *sql.Tx) error {
		if p.IsDefault {
			// At most one default policy.
			if _, err := tx.Exec(`UPDATE prioritization_policies SET is_default = 0`); err != nil {
				return err
			}
		}
		_, err := tx.Exec(`
			INSERT INTO prioritization_policies (
				name, description, risk_weight, criticite_weight, effort_weight,
				coverage_weight, recency_weight, default_budget, is_default, is_active
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(name) DO UPDATE SET
				description = excluded.description,
				risk_weight = excluded.risk_weight,
				criticite_weight = excluded.criticite_weight,
				effort_weight = excluded.effort_weight,
				coverage_weight = excluded.coverage_weight,
				recency_weight = excluded.recency_weight,
				default_budget = excluded.default_budget,
				is_default = excluded.is_default,
				is_active = excluded.is_active
		`, p.Name, p.Description, p.Weights.Risk, p.Weights.Crit, p.Weights.Effort,
			p.Weights.Coverage, p.Weights.Recency, p.DefaultBudget,
			boolToInt(p.IsDefault), boolToInt(p.IsActive))
		return err
	})
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPolicy(row rowScanner) (policy.Policy, error) {
	var p policy.Policy
	var w engine.Weights
	var isDefault, isActive int
	err := row.Scan(&p.ID, &p.Name, &p.Description,
		&w.Risk, &w.Crit, &w.Effort, &w.Coverage, &w.Recency,
		&p.DefaultBudget, &isDefault, &isActive)
	if err != nil {
		return policy.Policy{}, err
	}
	p.Weights = w
	p.IsDefault = isDefault != 0
	p.IsActive = isActive != 0
	return p, nil
}
